// Package domain contains persistence models for daily footprint rollups.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Breakdown splits a daily total across emission categories. Transportation
// and shopping are derived from recorded data; the remaining categories are
// reserved until their data sources exist.
type Breakdown struct {
	Transportation float64 `gorm:"not null;default:0" json:"transportation"`
	Shopping       float64 `gorm:"not null;default:0" json:"shopping"`
	Food           float64 `gorm:"not null;default:0" json:"food"`
	Energy         float64 `gorm:"not null;default:0" json:"energy"`
	Other          float64 `gorm:"not null;default:0" json:"other"`
}

// Comparison holds the percent change of the day's total against earlier
// baselines. Zero when the baseline is missing or empty.
type Comparison struct {
	PreviousDay   float64 `gorm:"not null;default:0" json:"previous_day"`
	PreviousWeek  float64 `gorm:"not null;default:0" json:"previous_week"`
	PreviousMonth float64 `gorm:"not null;default:0" json:"previous_month"`
	Average       float64 `gorm:"not null;default:0" json:"average"`
}

// InsightType classifies a generated insight.
type InsightType string

const (
	InsightTip         InsightType = "tip"
	InsightWarning     InsightType = "warning"
	InsightAchievement InsightType = "achievement"
	InsightSuggestion  InsightType = "suggestion"
)

// InsightPriority orders insights for display.
type InsightPriority string

const (
	PriorityLow    InsightPriority = "low"
	PriorityMedium InsightPriority = "medium"
	PriorityHigh   InsightPriority = "high"
)

// Insight is a short human-readable observation about the day.
type Insight struct {
	Type     InsightType     `json:"type"`
	Message  string          `json:"message"`
	Priority InsightPriority `json:"priority"`
	Category string          `json:"category,omitempty"`
}

// DailyFootprint is the per-user, per-day rollup. One row per (user, day),
// upserted atomically so concurrent recalculations never produce duplicates.
type DailyFootprint struct {
	ID             snowflake.ID   `gorm:"primaryKey" json:"id"`
	UserID         snowflake.ID   `gorm:"not null;uniqueIndex:ux_daily_footprints_user_date" json:"user_id"`
	Date           time.Time      `gorm:"not null;uniqueIndex:ux_daily_footprints_user_date" json:"date"`
	Total          float64        `gorm:"not null;default:0" json:"total"`
	Breakdown      Breakdown      `gorm:"embedded;embeddedPrefix:breakdown_" json:"breakdown"`
	DailyGoal      float64        `gorm:"not null;default:20" json:"daily_goal"`
	IsGoalAchieved bool           `gorm:"not null;default:false" json:"is_goal_achieved"`
	GoalProgress   float64        `gorm:"not null;default:0" json:"goal_progress"`
	Comparison     Comparison     `gorm:"embedded;embeddedPrefix:comparison_" json:"comparison"`
	Insights       datatypes.JSON `gorm:"type:jsonb;not null;default:'[]'" json:"insights"`
	IsCalculated   bool           `gorm:"not null;default:false" json:"is_calculated"`
	LastCalculated *time.Time     `json:"last_calculated,omitempty"`
	CreatedAt      time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (DailyFootprint) TableName() string { return "daily_footprints" }

// GoalProgressPct clamps the stored progress to the displayable 0..100
// range. The raw value stays unclamped so overshoot is not lost.
func (f DailyFootprint) GoalProgressPct() float64 {
	if f.GoalProgress < 0 {
		return 0
	}
	if f.GoalProgress > 100 {
		return 100
	}
	return f.GoalProgress
}

// DayStart truncates t to midnight UTC, the canonical key for a daily row.
func DayStart(t time.Time) time.Time {
	utc := t.UTC()
	return time.Date(utc.Year(), utc.Month(), utc.Day(), 0, 0, 0, 0, time.UTC)
}
