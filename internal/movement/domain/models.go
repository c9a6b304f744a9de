// Package domain contains persistence models for movement tracking.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// MovementType classifies the transport mode of a trip.
type MovementType string

const (
	TypeWalking         MovementType = "walking"
	TypeCycling         MovementType = "cycling"
	TypeDriving         MovementType = "driving"
	TypePublicTransport MovementType = "public_transport"
	TypeFlying          MovementType = "flying"
	TypeUnknown         MovementType = "unknown"
)

// Valid reports whether the value is a known transport mode.
func (t MovementType) Valid() bool {
	switch t {
	case TypeWalking, TypeCycling, TypeDriving, TypePublicTransport, TypeFlying, TypeUnknown:
		return true
	default:
		return false
	}
}

// VerificationMethod records how a movement was captured.
type VerificationMethod string

const (
	VerificationGPS    VerificationMethod = "gps"
	VerificationManual VerificationMethod = "manual"
	VerificationSensor VerificationMethod = "sensor"
	VerificationAPI    VerificationMethod = "api"
)

func (v VerificationMethod) Valid() bool {
	switch v {
	case VerificationGPS, VerificationManual, VerificationSensor, VerificationAPI:
		return true
	default:
		return false
	}
}

// Location is a single GPS fix. Immutable once recorded.
type Location struct {
	Latitude  float64   `gorm:"not null" json:"latitude"`
	Longitude float64   `gorm:"not null" json:"longitude"`
	Altitude  *float64  `json:"altitude,omitempty"`
	Accuracy  float64   `gorm:"not null;default:0" json:"accuracy"`
	Timestamp time.Time `gorm:"not null" json:"timestamp"`
}

// Movement represents one detected or manually entered trip between two
// fixes. Records are never mutated after creation except for notes and
// verification fields.
type Movement struct {
	ID                snowflake.ID       `gorm:"primaryKey" json:"id"`
	UserID            snowflake.ID       `gorm:"not null;index:idx_movements_user_occurred" json:"user_id"`
	Type              MovementType       `gorm:"type:text;not null;index" json:"type"`
	StartLocation     Location           `gorm:"embedded;embeddedPrefix:start_" json:"start_location"`
	EndLocation       Location           `gorm:"embedded;embeddedPrefix:end_" json:"end_location"`
	DistanceKm        float64            `gorm:"not null;default:0" json:"distance_km"`
	DurationMin       float64            `gorm:"not null;default:0" json:"duration_min"`
	CarbonFootprintKg float64            `gorm:"not null;default:0" json:"carbon_footprint_kg"`
	SpeedKmh          *float64           `json:"speed_kmh,omitempty"`
	VehicleType       string             `gorm:"type:text;not null;default:''" json:"vehicle_type,omitempty"`
	FuelType          string             `gorm:"type:text;not null;default:''" json:"fuel_type,omitempty"`
	Passengers        int                `gorm:"not null;default:1" json:"passengers"`
	IsVerified        bool               `gorm:"not null;default:false" json:"is_verified"`
	VerificationMethod VerificationMethod `gorm:"type:text;not null;default:'gps'" json:"verification_method"`
	Notes             string             `gorm:"type:text;not null;default:''" json:"notes,omitempty"`
	OccurredAt        time.Time          `gorm:"not null;index:idx_movements_user_occurred" json:"occurred_at"`
	CreatedAt         time.Time          `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt         time.Time          `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Movement) TableName() string { return "movements" }

// AverageSpeedKmh derives speed from distance and duration.
func (m Movement) AverageSpeedKmh() float64 {
	if m.DurationMin == 0 {
		return 0
	}
	return m.DistanceKm / (m.DurationMin / 60)
}
