package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/ecotrail/ecotrail/internal/movement/domain"
	"github.com/ecotrail/ecotrail/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, movement *domain.Movement) error {
	return db.WithContext(ctx).Create(movement).Error
}

func (r *repo) InsertBatch(ctx context.Context, db *gorm.DB, movements []*domain.Movement) error {
	if len(movements) == 0 {
		return nil
	}
	return db.WithContext(ctx).Create(movements).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, userID, id snowflake.ID) (*domain.Movement, error) {
	var movement domain.Movement
	err := db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, id).
		First(&movement).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &movement, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, userID snowflake.ID, filter domain.ListMovementFilter, page pagination.Pagination) ([]*domain.Movement, error) {
	var movements []*domain.Movement
	stmt := db.WithContext(ctx).
		Model(&domain.Movement{}).
		Where("user_id = ?", userID)
	if filter.Type != "" {
		stmt = stmt.Where("type = ?", filter.Type)
	}
	if filter.From != nil {
		stmt = stmt.Where("occurred_at >= ?", *filter.From)
	}
	if filter.To != nil {
		stmt = stmt.Where("occurred_at <= ?", *filter.To)
	}
	if page.PageToken != "" {
		cursor, err := pagination.DecodeCursor(page.PageToken)
		if err == nil {
			// Bind a time.Time, not the raw cursor string, so the
			// comparison works on every engine's timestamp encoding.
			if at, ok := cursor.OccurredAtTime(); ok {
				stmt = stmt.Where("occurred_at < ?", at)
			}
		}
	}
	if page.PageSize > 0 {
		stmt = stmt.Limit(page.PageSize + 1)
	}
	err := stmt.
		Order("occurred_at desc, id desc").
		Find(&movements).Error
	if err != nil {
		return nil, err
	}
	return movements, nil
}

func (r *repo) UpdateAnnotations(ctx context.Context, db *gorm.DB, movement *domain.Movement) error {
	return db.WithContext(ctx).Exec(
		`UPDATE movements
		 SET notes = ?, is_verified = ?, verification_method = ?, updated_at = ?
		 WHERE user_id = ? AND id = ?`,
		movement.Notes,
		movement.IsVerified,
		movement.VerificationMethod,
		movement.UpdatedAt,
		movement.UserID,
		movement.ID,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, userID, id snowflake.ID) (int64, error) {
	result := db.WithContext(ctx).Exec(
		`DELETE FROM movements WHERE user_id = ? AND id = ?`,
		userID,
		id,
	)
	return result.RowsAffected, result.Error
}

func (r *repo) TypeDistribution(ctx context.Context, db *gorm.DB, userID snowflake.ID, from, to time.Time) ([]domain.TypeDistributionEntry, error) {
	var entries []domain.TypeDistributionEntry
	err := db.WithContext(ctx).Raw(
		`SELECT type,
		        COUNT(*) AS count,
		        COALESCE(SUM(distance_km), 0) AS distance_km,
		        COALESCE(SUM(carbon_footprint_kg), 0) AS carbon_footprint_kg
		 FROM movements
		 WHERE user_id = ? AND occurred_at >= ? AND occurred_at <= ?
		 GROUP BY type
		 ORDER BY carbon_footprint_kg DESC`,
		userID,
		from,
		to,
	).Scan(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}
