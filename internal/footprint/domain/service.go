package domain

import (
	"context"
	"errors"
	"time"
)

type ListFootprintRequest struct {
	From time.Time
	To   time.Time
}

type Service interface {
	// CalculateDaily recomputes the rollup for the user's given day from
	// the movements and invoices recorded on it. Safe to call repeatedly
	// and from concurrent writers.
	CalculateDaily(ctx context.Context, date time.Time) (DailyFootprint, error)
	GetByDate(ctx context.Context, date time.Time) (DailyFootprint, error)
	List(ctx context.Context, req ListFootprintRequest) ([]DailyFootprint, error)
	// SetDailyGoal updates the user's goal and refreshes today's rollup
	// against it.
	SetDailyGoal(ctx context.Context, goalKg float64) (DailyFootprint, error)
}

var (
	ErrInvalidUser  = errors.New("invalid_user")
	ErrInvalidDate  = errors.New("invalid_date")
	ErrInvalidRange = errors.New("invalid_range")
	ErrInvalidGoal  = errors.New("invalid_goal")
	ErrNotFound     = errors.New("not_found")
)
