package domain

import (
	"context"
	"errors"
	"time"

	"github.com/ecotrail/ecotrail/pkg/db/pagination"
)

type RecordMovementRequest struct {
	Type               MovementType
	StartLocation      Location
	EndLocation        Location
	DistanceKm         *float64
	DurationMin        *float64
	VehicleType        string
	FuelType           string
	Passengers         int
	VerificationMethod VerificationMethod
	Notes              string
}

type ListMovementRequest struct {
	PageToken string
	PageSize  int
	Type      MovementType
	From      *time.Time
	To        *time.Time
}

type ListMovementResponse struct {
	pagination.PageInfo
	Movements []Movement `json:"movements"`
}

type UpdateAnnotationsRequest struct {
	ID                 string
	Notes              *string
	IsVerified         *bool
	VerificationMethod *VerificationMethod
}

type TypeDistributionEntry struct {
	Type              MovementType `json:"type"`
	Count             int64        `json:"count"`
	DistanceKm        float64      `json:"distance_km"`
	CarbonFootprintKg float64      `json:"carbon_footprint_kg"`
}

type Service interface {
	Record(ctx context.Context, req RecordMovementRequest) (Movement, error)
	RecordBatch(ctx context.Context, reqs []RecordMovementRequest) ([]Movement, error)
	GetByID(ctx context.Context, id string) (Movement, error)
	List(ctx context.Context, req ListMovementRequest) (ListMovementResponse, error)
	UpdateAnnotations(ctx context.Context, req UpdateAnnotationsRequest) (Movement, error)
	Delete(ctx context.Context, id string) error
	TypeDistribution(ctx context.Context, from, to time.Time) ([]TypeDistributionEntry, error)
}

var (
	ErrInvalidUser         = errors.New("invalid_user")
	ErrInvalidType         = errors.New("invalid_type")
	ErrInvalidLatitude     = errors.New("invalid_latitude")
	ErrInvalidLongitude    = errors.New("invalid_longitude")
	ErrInvalidAccuracy     = errors.New("invalid_accuracy")
	ErrInvalidTimestamps   = errors.New("invalid_timestamps")
	ErrInvalidDistance     = errors.New("invalid_distance")
	ErrInvalidDuration     = errors.New("invalid_duration")
	ErrInvalidPassengers   = errors.New("invalid_passengers")
	ErrInvalidVerification = errors.New("invalid_verification_method")
	ErrInvalidID           = errors.New("invalid_id")
	ErrNotFound            = errors.New("not_found")
)
