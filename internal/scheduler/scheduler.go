// Package scheduler periodically refreshes daily footprint rollups so
// clients that never call the calculate endpoint still see current numbers.
package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/ecotrail/ecotrail/internal/clock"
	footprintdomain "github.com/ecotrail/ecotrail/internal/footprint/domain"
	"github.com/ecotrail/ecotrail/internal/usercontext"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrInvalidConfig = errors.New("scheduler: invalid configuration")

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	FootprintSvc footprintdomain.Service
	Clock        clock.Clock
	Config       Config `optional:"true"`
}

type Scheduler struct {
	db           *gorm.DB
	log          *zap.Logger
	cfg          Config
	clock        clock.Clock
	footprintSvc footprintdomain.Service
}

func New(p Params) (*Scheduler, error) {
	if p.DB == nil || p.Log == nil || p.FootprintSvc == nil || p.Clock == nil {
		return nil, ErrInvalidConfig
	}
	return &Scheduler{
		db:           p.DB,
		log:          p.Log.Named("scheduler"),
		cfg:          p.Config.withDefaults(),
		clock:        p.Clock,
		footprintSvc: p.FootprintSvc,
	}, nil
}

// RunForever sweeps on the configured interval until ctx is canceled.
func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.RunInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Sweep(ctx); err != nil {
				s.log.Warn("sweep failed", zap.Error(err))
			}
		}
	}
}

// Sweep recalculates today's rollup for every user with activity today.
// Each user is processed independently; one failure does not stop the rest.
func (s *Scheduler) Sweep(ctx context.Context) error {
	now := s.clock.Now()
	dayStart := footprintdomain.DayStart(now)
	dayEnd := dayStart.AddDate(0, 0, 1)

	userIDs, err := s.activeUsers(ctx, dayStart, dayEnd)
	if err != nil {
		return err
	}

	var failed int
	for _, userID := range userIDs {
		userCtx := usercontext.WithUserID(ctx, userID)
		if _, err := s.footprintSvc.CalculateDaily(userCtx, now); err != nil {
			failed++
			s.log.Warn("daily recalculation failed",
				zap.String("user_id", userID.String()),
				zap.Error(err),
			)
		}
	}

	s.log.Debug("sweep complete",
		zap.Int("users", len(userIDs)),
		zap.Int("failed", failed),
	)
	return nil
}

func (s *Scheduler) activeUsers(ctx context.Context, from, to time.Time) ([]snowflake.ID, error) {
	var userIDs []snowflake.ID
	err := s.db.WithContext(ctx).Raw(
		`SELECT user_id FROM movements WHERE occurred_at >= ? AND occurred_at < ?
		 UNION
		 SELECT user_id FROM invoices WHERE occurred_at >= ? AND occurred_at < ?
		 LIMIT ?`,
		from, to,
		from, to,
		s.cfg.BatchSize,
	).Scan(&userIDs).Error
	if err != nil {
		return nil, err
	}
	return userIDs, nil
}
