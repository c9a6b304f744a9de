// Package domain contains read models for footprint reporting.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

// Period selects the bucket size for trend aggregation.
type Period string

const (
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
)

func (p Period) Valid() bool {
	switch p {
	case PeriodDay, PeriodWeek, PeriodMonth:
		return true
	default:
		return false
	}
}

// UserStats summarizes a user's calculated daily rollups over a range.
// All fields are zero when the range holds no data.
type UserStats struct {
	TotalKg        float64 `json:"total_kg"`
	AverageDailyKg float64 `json:"average_daily_kg"`
	MaxDailyKg     float64 `json:"max_daily_kg"`
	MinDailyKg     float64 `json:"min_daily_kg"`
	DaysTracked    int64   `json:"days_tracked"`
	Transportation float64 `json:"transportation"`
	Shopping       float64 `json:"shopping"`
	Food           float64 `json:"food"`
	Energy         float64 `json:"energy"`
	Other          float64 `json:"other"`
}

// TrendPoint is one bucket on a footprint trend line. Category fields
// sum the per-day breakdowns of every rollup in the bucket.
type TrendPoint struct {
	Bucket         string  `json:"bucket"`
	TotalKg        float64 `json:"total_kg"`
	Days           int64   `json:"days"`
	Transportation float64 `json:"transportation"`
	Shopping       float64 `json:"shopping"`
	Food           float64 `json:"food"`
	Energy         float64 `json:"energy"`
	Other          float64 `json:"other"`
}

// LeaderboardEntry ranks users by average daily footprint, lowest first.
type LeaderboardEntry struct {
	Rank           int          `json:"rank" gorm:"-"`
	UserID         snowflake.ID `json:"user_id"`
	Name           string       `json:"name"`
	AvatarURL      string       `json:"avatar_url,omitempty"`
	AverageDailyKg float64      `json:"average_daily_kg"`
	TotalKg        float64      `json:"total_kg"`
	DaysTracked    int64        `json:"days_tracked"`
}

// CategoryEntry aggregates invoice items by category.
type CategoryEntry struct {
	Category    string  `json:"category"`
	Amount      float64 `json:"amount"`
	FootprintKg float64 `json:"footprint_kg"`
	ItemCount   int64   `json:"item_count"`
}

// StoreEntry aggregates invoices by store.
type StoreEntry struct {
	StoreName   string    `json:"store_name"`
	VisitCount  int64     `json:"visit_count"`
	TotalAmount float64   `json:"total_amount"`
	FootprintKg float64   `json:"footprint_kg"`
	LastVisit   time.Time `json:"last_visit"`
}

// MovementStats summarizes recorded movements over a range.
type MovementStats struct {
	MovementCount    int64   `json:"movement_count"`
	TotalDistanceKm  float64 `json:"total_distance_km"`
	TotalDurationMin float64 `json:"total_duration_min"`
	TotalFootprintKg float64 `json:"total_footprint_kg"`
}

type Service interface {
	UserStats(ctx context.Context, from, to time.Time) (UserStats, error)
	Trends(ctx context.Context, from, to time.Time, period Period) ([]TrendPoint, error)
	// Leaderboard is a cross-user ranking; lower average footprint ranks
	// higher.
	Leaderboard(ctx context.Context, from, to time.Time, limit int) ([]LeaderboardEntry, error)
	CategoryDistribution(ctx context.Context, from, to time.Time) ([]CategoryEntry, error)
	StoreStats(ctx context.Context, from, to time.Time) ([]StoreEntry, error)
	MovementStats(ctx context.Context, from, to time.Time) (MovementStats, error)
}

var (
	ErrInvalidUser   = errors.New("invalid_user")
	ErrInvalidRange  = errors.New("invalid_range")
	ErrInvalidPeriod = errors.New("invalid_period")
	ErrInvalidLimit  = errors.New("invalid_limit")
)
