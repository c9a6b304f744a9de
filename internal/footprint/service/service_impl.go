package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/ecotrail/ecotrail/internal/clock"
	"github.com/ecotrail/ecotrail/internal/config"
	"github.com/ecotrail/ecotrail/internal/footprint/domain"
	"github.com/ecotrail/ecotrail/internal/usercontext"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	Cfg   config.Config
	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	cfg   config.Config
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		cfg:   p.Cfg,
		db:    p.DB,
		log:   p.Log.Named("footprint.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) CalculateDaily(ctx context.Context, date time.Time) (domain.DailyFootprint, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok || userID == 0 {
		return domain.DailyFootprint{}, domain.ErrInvalidUser
	}
	if date.IsZero() {
		return domain.DailyFootprint{}, domain.ErrInvalidDate
	}

	dayStart := domain.DayStart(date)
	dayEnd := dayStart.AddDate(0, 0, 1)

	transportation, err := s.repo.SumMovements(ctx, s.db, userID, dayStart, dayEnd)
	if err != nil {
		return domain.DailyFootprint{}, err
	}
	shopping, err := s.repo.SumInvoices(ctx, s.db, userID, dayStart, dayEnd)
	if err != nil {
		return domain.DailyFootprint{}, err
	}

	breakdown := domain.Breakdown{
		Transportation: transportation,
		Shopping:       shopping,
	}
	total := breakdown.Transportation + breakdown.Shopping + breakdown.Food + breakdown.Energy + breakdown.Other

	goal, err := s.dailyGoal(ctx, userID)
	if err != nil {
		return domain.DailyFootprint{}, err
	}

	var goalProgress float64
	if goal > 0 {
		goalProgress = total / goal * 100
	}

	comparison, err := s.buildComparison(ctx, userID, dayStart, total)
	if err != nil {
		return domain.DailyFootprint{}, err
	}

	insights, err := encodeInsights(buildInsights(total, goal, breakdown, comparison))
	if err != nil {
		return domain.DailyFootprint{}, err
	}

	now := s.clock.Now()
	footprint := &domain.DailyFootprint{
		ID:             s.genID.Generate(),
		UserID:         userID,
		Date:           dayStart,
		Total:          total,
		Breakdown:      breakdown,
		DailyGoal:      goal,
		IsGoalAchieved: total <= goal,
		GoalProgress:   goalProgress,
		Comparison:     comparison,
		Insights:       insights,
		IsCalculated:   true,
		LastCalculated: &now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repo.Upsert(ctx, s.db, footprint); err != nil {
		return domain.DailyFootprint{}, err
	}

	// The upsert keeps the original row id when one already exists, so
	// read the canonical row back.
	stored, err := s.repo.FindByDate(ctx, s.db, userID, dayStart)
	if err != nil {
		return domain.DailyFootprint{}, err
	}
	if stored == nil {
		return domain.DailyFootprint{}, domain.ErrNotFound
	}

	s.log.Debug("daily footprint calculated",
		zap.String("user_id", userID.String()),
		zap.Time("date", dayStart),
		zap.Float64("total", stored.Total),
	)

	return *stored, nil
}

func (s *Service) GetByDate(ctx context.Context, date time.Time) (domain.DailyFootprint, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok || userID == 0 {
		return domain.DailyFootprint{}, domain.ErrInvalidUser
	}
	if date.IsZero() {
		return domain.DailyFootprint{}, domain.ErrInvalidDate
	}

	footprint, err := s.repo.FindByDate(ctx, s.db, userID, domain.DayStart(date))
	if err != nil {
		return domain.DailyFootprint{}, err
	}
	if footprint == nil {
		return domain.DailyFootprint{}, domain.ErrNotFound
	}
	return *footprint, nil
}

func (s *Service) List(ctx context.Context, req domain.ListFootprintRequest) ([]domain.DailyFootprint, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok || userID == 0 {
		return nil, domain.ErrInvalidUser
	}
	if req.From.IsZero() || req.To.IsZero() || req.To.Before(req.From) {
		return nil, domain.ErrInvalidRange
	}

	footprints, err := s.repo.List(ctx, s.db, userID, domain.DayStart(req.From), domain.DayStart(req.To))
	if err != nil {
		return nil, err
	}
	if footprints == nil {
		footprints = []domain.DailyFootprint{}
	}
	return footprints, nil
}

func (s *Service) SetDailyGoal(ctx context.Context, goalKg float64) (domain.DailyFootprint, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok || userID == 0 {
		return domain.DailyFootprint{}, domain.ErrInvalidUser
	}
	// Zero is a legal goal, only negatives are rejected.
	if goalKg < 0 {
		return domain.DailyFootprint{}, domain.ErrInvalidGoal
	}

	if err := s.repo.SetUserDailyGoal(ctx, s.db, userID, goalKg, s.clock.Now()); err != nil {
		return domain.DailyFootprint{}, err
	}

	return s.CalculateDaily(ctx, s.clock.Now())
}

func (s *Service) dailyGoal(ctx context.Context, userID snowflake.ID) (float64, error) {
	goal, found, err := s.repo.UserDailyGoal(ctx, s.db, userID)
	if err != nil {
		return 0, err
	}
	if !found || goal < 0 {
		return s.cfg.DefaultDailyGoalKg, nil
	}
	return goal, nil
}

func (s *Service) buildComparison(ctx context.Context, userID snowflake.ID, dayStart time.Time, total float64) (domain.Comparison, error) {
	var comparison domain.Comparison

	baselines := []struct {
		date   time.Time
		target *float64
	}{
		{dayStart.AddDate(0, 0, -1), &comparison.PreviousDay},
		{dayStart.AddDate(0, 0, -7), &comparison.PreviousWeek},
		{dayStart.AddDate(0, -1, 0), &comparison.PreviousMonth},
	}
	for _, baseline := range baselines {
		previous, err := s.repo.FindByDate(ctx, s.db, userID, baseline.date)
		if err != nil {
			return domain.Comparison{}, err
		}
		if previous != nil {
			*baseline.target = percentChange(total, previous.Total)
		}
	}

	average, err := s.repo.AverageTotal(ctx, s.db, userID)
	if err != nil {
		return domain.Comparison{}, err
	}
	comparison.Average = percentChange(total, average)

	return comparison, nil
}

// percentChange reports how far value sits from baseline, in percent.
// Zero when the baseline is empty.
func percentChange(value, baseline float64) float64 {
	if baseline <= 0 {
		return 0
	}
	return (value - baseline) / baseline * 100
}

func buildInsights(total, goal float64, breakdown domain.Breakdown, comparison domain.Comparison) []domain.Insight {
	insights := []domain.Insight{}

	if total > 0 {
		if total <= goal {
			insights = append(insights, domain.Insight{
				Type:     domain.InsightAchievement,
				Priority: domain.PriorityMedium,
				Message:  fmt.Sprintf("You stayed within your daily goal of %.1f kg CO2.", goal),
			})
		} else {
			insights = append(insights, domain.Insight{
				Type:     domain.InsightWarning,
				Priority: domain.PriorityHigh,
				Message:  fmt.Sprintf("You exceeded your daily goal of %.1f kg CO2 by %.1f kg.", goal, total-goal),
			})
		}

		if category, value := dominantCategory(breakdown); value > 0 {
			insights = append(insights, domain.Insight{
				Type:     domain.InsightTip,
				Priority: domain.PriorityLow,
				Message:  fmt.Sprintf("%s contributed the most to today's footprint (%.1f kg CO2).", category, value),
				Category: category,
			})
		}
	}

	if comparison.PreviousDay <= -5 {
		insights = append(insights, domain.Insight{
			Type:     domain.InsightAchievement,
			Priority: domain.PriorityLow,
			Message:  fmt.Sprintf("Your footprint is down %.0f%% compared to yesterday.", -comparison.PreviousDay),
		})
	} else if comparison.PreviousDay >= 5 {
		insights = append(insights, domain.Insight{
			Type:     domain.InsightSuggestion,
			Priority: domain.PriorityMedium,
			Message:  fmt.Sprintf("Your footprint is up %.0f%% compared to yesterday, try a lighter day tomorrow.", comparison.PreviousDay),
		})
	}

	return insights
}

func dominantCategory(breakdown domain.Breakdown) (string, float64) {
	categories := []struct {
		name  string
		value float64
	}{
		{"transportation", breakdown.Transportation},
		{"shopping", breakdown.Shopping},
		{"food", breakdown.Food},
		{"energy", breakdown.Energy},
		{"other", breakdown.Other},
	}
	best := categories[0]
	for _, category := range categories[1:] {
		if category.value > best.value {
			best = category
		}
	}
	return best.name, best.value
}

func encodeInsights(insights []domain.Insight) (datatypes.JSON, error) {
	encoded, err := json.Marshal(insights)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(encoded), nil
}
