package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	// Upsert inserts the rollup or, when a row for (user, date) already
	// exists, overwrites its calculated fields in a single statement.
	Upsert(ctx context.Context, db *gorm.DB, footprint *DailyFootprint) error
	FindByDate(ctx context.Context, db *gorm.DB, userID snowflake.ID, date time.Time) (*DailyFootprint, error)
	List(ctx context.Context, db *gorm.DB, userID snowflake.ID, from, to time.Time) ([]DailyFootprint, error)
	SumMovements(ctx context.Context, db *gorm.DB, userID snowflake.ID, from, to time.Time) (float64, error)
	SumInvoices(ctx context.Context, db *gorm.DB, userID snowflake.ID, from, to time.Time) (float64, error)
	AverageTotal(ctx context.Context, db *gorm.DB, userID snowflake.ID) (float64, error)
	UserDailyGoal(ctx context.Context, db *gorm.DB, userID snowflake.ID) (float64, bool, error)
	SetUserDailyGoal(ctx context.Context, db *gorm.DB, userID snowflake.ID, goalKg float64, now time.Time) error
}
