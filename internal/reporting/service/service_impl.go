package service

import (
	"context"
	"fmt"
	"time"

	footprintdomain "github.com/ecotrail/ecotrail/internal/footprint/domain"
	"github.com/ecotrail/ecotrail/internal/reporting/domain"
	"github.com/ecotrail/ecotrail/internal/usercontext"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	defaultLeaderboardLimit = 10
	maxLeaderboardLimit     = 100
	storeStatsLimit         = 20
)

type Params struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo domain.Repository
}

type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:   p.DB,
		log:  p.Log.Named("reporting.service"),
		repo: p.Repo,
	}
}

func (s *Service) UserStats(ctx context.Context, from, to time.Time) (domain.UserStats, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok || userID == 0 {
		return domain.UserStats{}, domain.ErrInvalidUser
	}
	if err := validateRange(from, to); err != nil {
		return domain.UserStats{}, err
	}

	return s.repo.UserStats(ctx, s.db, userID, from, to)
}

// Trends buckets the calculated daily rollups in application code so the
// bucketing behaves the same on every SQL engine.
func (s *Service) Trends(ctx context.Context, from, to time.Time, period domain.Period) ([]domain.TrendPoint, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok || userID == 0 {
		return nil, domain.ErrInvalidUser
	}
	if err := validateRange(from, to); err != nil {
		return nil, err
	}
	if period == "" {
		period = domain.PeriodDay
	}
	if !period.Valid() {
		return nil, domain.ErrInvalidPeriod
	}

	footprints, err := s.repo.DailyTotals(ctx, s.db, userID, footprintdomain.DayStart(from), footprintdomain.DayStart(to))
	if err != nil {
		return nil, err
	}

	points := []domain.TrendPoint{}
	index := map[string]int{}
	for _, footprint := range footprints {
		bucket := bucketLabel(footprint.Date, period)
		at, ok := index[bucket]
		if !ok {
			at = len(points)
			index[bucket] = at
			points = append(points, domain.TrendPoint{Bucket: bucket})
		}
		points[at].TotalKg += footprint.Total
		points[at].Days++
		points[at].Transportation += footprint.Breakdown.Transportation
		points[at].Shopping += footprint.Breakdown.Shopping
		points[at].Food += footprint.Breakdown.Food
		points[at].Energy += footprint.Breakdown.Energy
		points[at].Other += footprint.Breakdown.Other
	}
	return points, nil
}

func (s *Service) Leaderboard(ctx context.Context, from, to time.Time, limit int) ([]domain.LeaderboardEntry, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok || userID == 0 {
		return nil, domain.ErrInvalidUser
	}
	if err := validateRange(from, to); err != nil {
		return nil, err
	}
	if limit < 0 || limit > maxLeaderboardLimit {
		return nil, domain.ErrInvalidLimit
	}
	if limit == 0 {
		limit = defaultLeaderboardLimit
	}

	entries, err := s.repo.Leaderboard(ctx, s.db, from, to, limit)
	if err != nil {
		return nil, err
	}
	for at := range entries {
		entries[at].Rank = at + 1
	}
	if entries == nil {
		entries = []domain.LeaderboardEntry{}
	}
	return entries, nil
}

func (s *Service) CategoryDistribution(ctx context.Context, from, to time.Time) ([]domain.CategoryEntry, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok || userID == 0 {
		return nil, domain.ErrInvalidUser
	}
	if err := validateRange(from, to); err != nil {
		return nil, err
	}

	entries, err := s.repo.CategoryDistribution(ctx, s.db, userID, from, to)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []domain.CategoryEntry{}
	}
	return entries, nil
}

func (s *Service) StoreStats(ctx context.Context, from, to time.Time) ([]domain.StoreEntry, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok || userID == 0 {
		return nil, domain.ErrInvalidUser
	}
	if err := validateRange(from, to); err != nil {
		return nil, err
	}

	entries, err := s.repo.StoreStats(ctx, s.db, userID, from, to, storeStatsLimit)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []domain.StoreEntry{}
	}
	return entries, nil
}

func (s *Service) MovementStats(ctx context.Context, from, to time.Time) (domain.MovementStats, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok || userID == 0 {
		return domain.MovementStats{}, domain.ErrInvalidUser
	}
	if err := validateRange(from, to); err != nil {
		return domain.MovementStats{}, err
	}

	return s.repo.MovementStats(ctx, s.db, userID, from, to)
}

func validateRange(from, to time.Time) error {
	if from.IsZero() || to.IsZero() || to.Before(from) {
		return domain.ErrInvalidRange
	}
	return nil
}

func bucketLabel(date time.Time, period domain.Period) string {
	switch period {
	case domain.PeriodWeek:
		year, week := date.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", year, week)
	case domain.PeriodMonth:
		return date.Format("2006-01")
	default:
		return date.Format("2006-01-02")
	}
}
