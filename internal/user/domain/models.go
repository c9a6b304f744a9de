// Package domain contains persistence models for user accounts.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// User is an account identified by an opaque API token. DailyGoalKg feeds
// the daily rollup goal check.
type User struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	Name        string       `gorm:"type:text;not null" json:"name"`
	Email       string       `gorm:"type:text;not null;uniqueIndex:ux_users_email" json:"email"`
	AvatarURL   string       `gorm:"type:text;not null;default:''" json:"avatar_url,omitempty"`
	APIToken    string       `gorm:"type:text;not null;uniqueIndex:ux_users_api_token" json:"-"`
	DailyGoalKg float64      `gorm:"not null;default:20" json:"daily_goal_kg"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (User) TableName() string { return "users" }
