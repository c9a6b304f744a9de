package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	footprintdomain "github.com/ecotrail/ecotrail/internal/footprint/domain"
	"github.com/ecotrail/ecotrail/internal/reporting/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) UserStats(ctx context.Context, db *gorm.DB, userID snowflake.ID, from, to time.Time) (domain.UserStats, error) {
	var stats domain.UserStats
	err := db.WithContext(ctx).Raw(
		`SELECT COALESCE(SUM(total), 0) AS total_kg,
		        COALESCE(AVG(total), 0) AS average_daily_kg,
		        COALESCE(MAX(total), 0) AS max_daily_kg,
		        COALESCE(MIN(total), 0) AS min_daily_kg,
		        COUNT(*) AS days_tracked,
		        COALESCE(SUM(breakdown_transportation), 0) AS transportation,
		        COALESCE(SUM(breakdown_shopping), 0) AS shopping,
		        COALESCE(SUM(breakdown_food), 0) AS food,
		        COALESCE(SUM(breakdown_energy), 0) AS energy,
		        COALESCE(SUM(breakdown_other), 0) AS other
		 FROM daily_footprints
		 WHERE user_id = ? AND date >= ? AND date <= ? AND is_calculated = ?`,
		userID,
		from,
		to,
		true,
	).Scan(&stats).Error
	return stats, err
}

func (r *repo) DailyTotals(ctx context.Context, db *gorm.DB, userID snowflake.ID, from, to time.Time) ([]footprintdomain.DailyFootprint, error) {
	var footprints []footprintdomain.DailyFootprint
	err := db.WithContext(ctx).
		Where("user_id = ? AND date >= ? AND date <= ? AND is_calculated = ?", userID, from, to, true).
		Order("date asc").
		Find(&footprints).Error
	if err != nil {
		return nil, err
	}
	return footprints, nil
}

func (r *repo) Leaderboard(ctx context.Context, db *gorm.DB, from, to time.Time, limit int) ([]domain.LeaderboardEntry, error) {
	var entries []domain.LeaderboardEntry
	err := db.WithContext(ctx).Raw(
		`SELECT u.id AS user_id,
		        u.name AS name,
		        u.avatar_url AS avatar_url,
		        COALESCE(AVG(f.total), 0) AS average_daily_kg,
		        COALESCE(SUM(f.total), 0) AS total_kg,
		        COUNT(*) AS days_tracked
		 FROM daily_footprints f
		 JOIN users u ON u.id = f.user_id
		 WHERE f.date >= ? AND f.date <= ? AND f.is_calculated = ?
		 GROUP BY u.id, u.name, u.avatar_url
		 ORDER BY average_daily_kg ASC, u.id ASC
		 LIMIT ?`,
		from,
		to,
		true,
		limit,
	).Scan(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repo) CategoryDistribution(ctx context.Context, db *gorm.DB, userID snowflake.ID, from, to time.Time) ([]domain.CategoryEntry, error) {
	var entries []domain.CategoryEntry
	err := db.WithContext(ctx).Raw(
		`SELECT ii.category AS category,
		        COALESCE(SUM(ii.price * ii.quantity), 0) AS amount,
		        COALESCE(SUM(ii.carbon_footprint_kg), 0) AS footprint_kg,
		        COUNT(*) AS item_count
		 FROM invoice_items ii
		 JOIN invoices i ON i.id = ii.invoice_id
		 WHERE ii.user_id = ? AND i.occurred_at >= ? AND i.occurred_at <= ?
		 GROUP BY ii.category
		 ORDER BY amount DESC`,
		userID,
		from,
		to,
	).Scan(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// storeRow carries last_visit as text. Aggregates like MAX() lose the
// column's declared type on sqlite, so the driver hands back a string
// instead of a time.Time; the value is parsed after scanning.
type storeRow struct {
	StoreName   string
	VisitCount  int64
	TotalAmount float64
	FootprintKg float64
	LastVisit   string
}

var lastVisitLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
}

func parseLastVisit(value string) time.Time {
	for _, layout := range lastVisitLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

func (r *repo) StoreStats(ctx context.Context, db *gorm.DB, userID snowflake.ID, from, to time.Time, limit int) ([]domain.StoreEntry, error) {
	var rows []storeRow
	err := db.WithContext(ctx).Raw(
		`SELECT store_name,
		        COUNT(*) AS visit_count,
		        COALESCE(SUM(total_amount), 0) AS total_amount,
		        COALESCE(SUM(carbon_footprint_kg), 0) AS footprint_kg,
		        MAX(occurred_at) AS last_visit
		 FROM invoices
		 WHERE user_id = ? AND occurred_at >= ? AND occurred_at <= ?
		 GROUP BY store_name
		 ORDER BY total_amount DESC
		 LIMIT ?`,
		userID,
		from,
		to,
		limit,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	entries := make([]domain.StoreEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, domain.StoreEntry{
			StoreName:   row.StoreName,
			VisitCount:  row.VisitCount,
			TotalAmount: row.TotalAmount,
			FootprintKg: row.FootprintKg,
			LastVisit:   parseLastVisit(row.LastVisit),
		})
	}
	return entries, nil
}

func (r *repo) MovementStats(ctx context.Context, db *gorm.DB, userID snowflake.ID, from, to time.Time) (domain.MovementStats, error) {
	var stats domain.MovementStats
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(*) AS movement_count,
		        COALESCE(SUM(distance_km), 0) AS total_distance_km,
		        COALESCE(SUM(duration_min), 0) AS total_duration_min,
		        COALESCE(SUM(carbon_footprint_kg), 0) AS total_footprint_kg
		 FROM movements
		 WHERE user_id = ? AND occurred_at >= ? AND occurred_at <= ?`,
		userID,
		from,
		to,
	).Scan(&stats).Error
	return stats, err
}
