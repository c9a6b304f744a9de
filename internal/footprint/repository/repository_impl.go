package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/ecotrail/ecotrail/internal/footprint/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

// Upsert relies on the unique index over (user_id, date). Losing the insert
// race turns the statement into an update of the calculated columns, so
// concurrent recalculations converge on a single row.
func (r *repo) Upsert(ctx context.Context, db *gorm.DB, footprint *domain.DailyFootprint) error {
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"total",
			"breakdown_transportation",
			"breakdown_shopping",
			"breakdown_food",
			"breakdown_energy",
			"breakdown_other",
			"daily_goal",
			"is_goal_achieved",
			"goal_progress",
			"comparison_previous_day",
			"comparison_previous_week",
			"comparison_previous_month",
			"comparison_average",
			"insights",
			"is_calculated",
			"last_calculated",
			"updated_at",
		}),
	}).Create(footprint).Error
}

func (r *repo) FindByDate(ctx context.Context, db *gorm.DB, userID snowflake.ID, date time.Time) (*domain.DailyFootprint, error) {
	var footprint domain.DailyFootprint
	err := db.WithContext(ctx).
		Where("user_id = ? AND date = ?", userID, date).
		First(&footprint).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &footprint, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, userID snowflake.ID, from, to time.Time) ([]domain.DailyFootprint, error) {
	var footprints []domain.DailyFootprint
	err := db.WithContext(ctx).
		Where("user_id = ? AND date >= ? AND date <= ?", userID, from, to).
		Order("date asc").
		Find(&footprints).Error
	if err != nil {
		return nil, err
	}
	return footprints, nil
}

func (r *repo) SumMovements(ctx context.Context, db *gorm.DB, userID snowflake.ID, from, to time.Time) (float64, error) {
	var total float64
	err := db.WithContext(ctx).Raw(
		`SELECT COALESCE(SUM(carbon_footprint_kg), 0)
		 FROM movements
		 WHERE user_id = ? AND occurred_at >= ? AND occurred_at < ?`,
		userID,
		from,
		to,
	).Scan(&total).Error
	return total, err
}

func (r *repo) SumInvoices(ctx context.Context, db *gorm.DB, userID snowflake.ID, from, to time.Time) (float64, error) {
	var total float64
	err := db.WithContext(ctx).Raw(
		`SELECT COALESCE(SUM(carbon_footprint_kg), 0)
		 FROM invoices
		 WHERE user_id = ? AND occurred_at >= ? AND occurred_at < ?`,
		userID,
		from,
		to,
	).Scan(&total).Error
	return total, err
}

func (r *repo) AverageTotal(ctx context.Context, db *gorm.DB, userID snowflake.ID) (float64, error) {
	var average float64
	err := db.WithContext(ctx).Raw(
		`SELECT COALESCE(AVG(total), 0)
		 FROM daily_footprints
		 WHERE user_id = ? AND is_calculated = ?`,
		userID,
		true,
	).Scan(&average).Error
	return average, err
}

func (r *repo) UserDailyGoal(ctx context.Context, db *gorm.DB, userID snowflake.ID) (float64, bool, error) {
	var goals []float64
	err := db.WithContext(ctx).Raw(
		`SELECT daily_goal_kg FROM users WHERE id = ?`,
		userID,
	).Scan(&goals).Error
	if err != nil {
		return 0, false, err
	}
	if len(goals) == 0 {
		return 0, false, nil
	}
	return goals[0], true, nil
}

func (r *repo) SetUserDailyGoal(ctx context.Context, db *gorm.DB, userID snowflake.ID, goalKg float64, now time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE users SET daily_goal_kg = ?, updated_at = ? WHERE id = ?`,
		goalKg,
		now,
		userID,
	).Error
}
