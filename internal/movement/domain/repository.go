package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/ecotrail/ecotrail/pkg/db/pagination"
	"gorm.io/gorm"
)

type ListMovementFilter struct {
	Type MovementType
	From *time.Time
	To   *time.Time
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, movement *Movement) error
	InsertBatch(ctx context.Context, db *gorm.DB, movements []*Movement) error
	FindByID(ctx context.Context, db *gorm.DB, userID, id snowflake.ID) (*Movement, error)
	List(ctx context.Context, db *gorm.DB, userID snowflake.ID, filter ListMovementFilter, page pagination.Pagination) ([]*Movement, error)
	UpdateAnnotations(ctx context.Context, db *gorm.DB, movement *Movement) error
	Delete(ctx context.Context, db *gorm.DB, userID, id snowflake.ID) (int64, error)
	TypeDistribution(ctx context.Context, db *gorm.DB, userID snowflake.ID, from, to time.Time) ([]TypeDistributionEntry, error)
}
