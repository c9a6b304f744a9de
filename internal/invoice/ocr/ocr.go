// Package ocr defines the boundary to an external receipt-recognition
// service. Recognition failures never fail invoice entry; callers fall back
// to manual entry.
package ocr

import (
	"context"
	"errors"
)

// ErrUnavailable signals that the recognition backend cannot serve the
// request right now.
var ErrUnavailable = errors.New("ocr_unavailable")

// Result holds what the recognizer extracted from a receipt image.
type Result struct {
	StoreName   string
	TotalAmount float64
	Items       []string
	Confidence  float64
}

// Recognizer extracts receipt fields from an image.
type Recognizer interface {
	Recognize(ctx context.Context, image []byte) (Result, error)
}

type unavailable struct{}

// NewUnavailable returns a Recognizer with no backend configured. Every
// call reports ErrUnavailable so the caller routes the user to manual entry.
func NewUnavailable() Recognizer {
	return unavailable{}
}

func (unavailable) Recognize(ctx context.Context, image []byte) (Result, error) {
	return Result{}, ErrUnavailable
}
