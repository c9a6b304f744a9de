package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/ecotrail/ecotrail/internal/clock"
	"github.com/ecotrail/ecotrail/internal/emission"
	"github.com/ecotrail/ecotrail/internal/geo"
	"github.com/ecotrail/ecotrail/internal/movement/classifier"
	"github.com/ecotrail/ecotrail/internal/movement/domain"
	"github.com/ecotrail/ecotrail/internal/usercontext"
	"github.com/ecotrail/ecotrail/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("movement.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Record(ctx context.Context, req domain.RecordMovementRequest) (domain.Movement, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok || userID == 0 {
		return domain.Movement{}, domain.ErrInvalidUser
	}

	movement, err := s.build(userID, req)
	if err != nil {
		return domain.Movement{}, err
	}

	if err := s.repo.Insert(ctx, s.db, movement); err != nil {
		return domain.Movement{}, err
	}

	s.log.Debug("movement recorded",
		zap.String("movement_id", movement.ID.String()),
		zap.String("type", string(movement.Type)),
		zap.Float64("distance_km", movement.DistanceKm),
	)

	return *movement, nil
}

func (s *Service) RecordBatch(ctx context.Context, reqs []domain.RecordMovementRequest) ([]domain.Movement, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok || userID == 0 {
		return nil, domain.ErrInvalidUser
	}

	movements := make([]*domain.Movement, 0, len(reqs))
	for _, req := range reqs {
		movement, err := s.build(userID, req)
		if err != nil {
			return nil, err
		}
		movements = append(movements, movement)
	}

	if err := s.repo.InsertBatch(ctx, s.db, movements); err != nil {
		return nil, err
	}

	out := make([]domain.Movement, 0, len(movements))
	for _, movement := range movements {
		out = append(out, *movement)
	}
	return out, nil
}

// build validates a request and derives the missing fields: distance via
// Haversine, duration from the fix timestamps, mode from average speed and
// the footprint from the emission factor table.
func (s *Service) build(userID snowflake.ID, req domain.RecordMovementRequest) (*domain.Movement, error) {
	if err := validateLocation(req.StartLocation); err != nil {
		return nil, err
	}
	if err := validateLocation(req.EndLocation); err != nil {
		return nil, err
	}
	if !req.EndLocation.Timestamp.After(req.StartLocation.Timestamp) {
		return nil, domain.ErrInvalidTimestamps
	}

	distanceKm := geo.Haversine(
		req.StartLocation.Latitude, req.StartLocation.Longitude,
		req.EndLocation.Latitude, req.EndLocation.Longitude,
	)
	if req.DistanceKm != nil {
		if *req.DistanceKm < 0 {
			return nil, domain.ErrInvalidDistance
		}
		distanceKm = *req.DistanceKm
	}

	durationMin := req.EndLocation.Timestamp.Sub(req.StartLocation.Timestamp).Minutes()
	if req.DurationMin != nil {
		if *req.DurationMin < 0 {
			return nil, domain.ErrInvalidDuration
		}
		durationMin = *req.DurationMin
	}

	var speedKmh float64
	if durationMin > 0 {
		speedKmh = distanceKm / (durationMin / 60)
	}

	movementType := req.Type
	if movementType == "" {
		movementType = classifier.ClassifySpeed(speedKmh)
	}
	if !movementType.Valid() {
		return nil, domain.ErrInvalidType
	}

	passengers := req.Passengers
	if passengers == 0 {
		passengers = 1
	}
	if passengers < 1 {
		return nil, domain.ErrInvalidPassengers
	}

	verification := req.VerificationMethod
	if verification == "" {
		verification = domain.VerificationGPS
	}
	if !verification.Valid() {
		return nil, domain.ErrInvalidVerification
	}

	now := s.clock.Now()
	speed := speedKmh

	return &domain.Movement{
		ID:                 s.genID.Generate(),
		UserID:             userID,
		Type:               movementType,
		StartLocation:      req.StartLocation,
		EndLocation:        req.EndLocation,
		DistanceKm:         distanceKm,
		DurationMin:        durationMin,
		CarbonFootprintKg:  emission.ForMovement(movementType, distanceKm),
		SpeedKmh:           &speed,
		VehicleType:        strings.TrimSpace(req.VehicleType),
		FuelType:           strings.TrimSpace(req.FuelType),
		Passengers:         passengers,
		VerificationMethod: verification,
		Notes:              strings.TrimSpace(req.Notes),
		OccurredAt:         req.EndLocation.Timestamp,
		CreatedAt:          now,
		UpdatedAt:          now,
	}, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Movement, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok || userID == 0 {
		return domain.Movement{}, domain.ErrInvalidUser
	}

	movementID, err := parseID(id)
	if err != nil {
		return domain.Movement{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, userID, movementID)
	if err != nil {
		return domain.Movement{}, err
	}
	if item == nil {
		return domain.Movement{}, domain.ErrNotFound
	}

	return *item, nil
}

func (s *Service) List(ctx context.Context, req domain.ListMovementRequest) (domain.ListMovementResponse, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok || userID == 0 {
		return domain.ListMovementResponse{}, domain.ErrInvalidUser
	}

	if req.Type != "" && !req.Type.Valid() {
		return domain.ListMovementResponse{}, domain.ErrInvalidType
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	items, err := s.repo.List(ctx, s.db, userID, domain.ListMovementFilter{
		Type: req.Type,
		From: req.From,
		To:   req.To,
	}, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  pageSize,
	})
	if err != nil {
		return domain.ListMovementResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(movement *domain.Movement) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:         movement.ID.String(),
			OccurredAt: movement.OccurredAt.Format(time.RFC3339Nano),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > pageSize {
		items = items[:pageSize]
	}

	movements := make([]domain.Movement, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		movements = append(movements, *item)
	}

	resp := domain.ListMovementResponse{Movements: movements}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}

	return resp, nil
}

func (s *Service) UpdateAnnotations(ctx context.Context, req domain.UpdateAnnotationsRequest) (domain.Movement, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok || userID == 0 {
		return domain.Movement{}, domain.ErrInvalidUser
	}

	movementID, err := parseID(req.ID)
	if err != nil {
		return domain.Movement{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, userID, movementID)
	if err != nil {
		return domain.Movement{}, err
	}
	if item == nil {
		return domain.Movement{}, domain.ErrNotFound
	}

	if req.Notes != nil {
		item.Notes = strings.TrimSpace(*req.Notes)
	}
	if req.IsVerified != nil {
		item.IsVerified = *req.IsVerified
	}
	if req.VerificationMethod != nil {
		if !req.VerificationMethod.Valid() {
			return domain.Movement{}, domain.ErrInvalidVerification
		}
		item.VerificationMethod = *req.VerificationMethod
	}
	item.UpdatedAt = s.clock.Now()

	if err := s.repo.UpdateAnnotations(ctx, s.db, item); err != nil {
		return domain.Movement{}, err
	}

	return *item, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok || userID == 0 {
		return domain.ErrInvalidUser
	}

	movementID, err := parseID(id)
	if err != nil {
		return err
	}

	affected, err := s.repo.Delete(ctx, s.db, userID, movementID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Service) TypeDistribution(ctx context.Context, from, to time.Time) ([]domain.TypeDistributionEntry, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok || userID == 0 {
		return nil, domain.ErrInvalidUser
	}

	entries, err := s.repo.TypeDistribution(ctx, s.db, userID, from, to)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []domain.TypeDistributionEntry{}
	}
	return entries, nil
}

func validateLocation(loc domain.Location) error {
	if loc.Latitude < -90 || loc.Latitude > 90 {
		return domain.ErrInvalidLatitude
	}
	if loc.Longitude < -180 || loc.Longitude > 180 {
		return domain.ErrInvalidLongitude
	}
	if loc.Accuracy < 0 {
		return domain.ErrInvalidAccuracy
	}
	if loc.Timestamp.IsZero() {
		return domain.ErrInvalidTimestamps
	}
	return nil
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
