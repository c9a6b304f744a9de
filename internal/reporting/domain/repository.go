package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	footprintdomain "github.com/ecotrail/ecotrail/internal/footprint/domain"
	"gorm.io/gorm"
)

type Repository interface {
	UserStats(ctx context.Context, db *gorm.DB, userID snowflake.ID, from, to time.Time) (UserStats, error)
	// DailyTotals returns the calculated rollups in the range, ascending
	// by date, for bucketing by the caller.
	DailyTotals(ctx context.Context, db *gorm.DB, userID snowflake.ID, from, to time.Time) ([]footprintdomain.DailyFootprint, error)
	Leaderboard(ctx context.Context, db *gorm.DB, from, to time.Time, limit int) ([]LeaderboardEntry, error)
	CategoryDistribution(ctx context.Context, db *gorm.DB, userID snowflake.ID, from, to time.Time) ([]CategoryEntry, error)
	StoreStats(ctx context.Context, db *gorm.DB, userID snowflake.ID, from, to time.Time, limit int) ([]StoreEntry, error)
	MovementStats(ctx context.Context, db *gorm.DB, userID snowflake.ID, from, to time.Time) (MovementStats, error)
}
