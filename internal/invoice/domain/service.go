package domain

import (
	"context"
	"errors"
	"time"

	"github.com/ecotrail/ecotrail/pkg/db/pagination"
)

type ItemInput struct {
	Name              string
	Quantity          float64
	Price             float64
	Category          ItemCategory
	CarbonFootprintKg float64
}

type RecordInvoiceRequest struct {
	Type               InvoiceType
	StoreName          string
	StoreCategory      string
	TotalAmount        float64
	Items              []ItemInput
	OCRData            map[string]any
	VerificationMethod VerificationMethod
	Notes              string
	OccurredAt         time.Time
}

type UpdateInvoiceRequest struct {
	ID        string
	StoreName *string
	Items     []ItemInput
	Notes     *string
}

type ListInvoiceRequest struct {
	PageToken string
	PageSize  int
	Type      InvoiceType
	StoreName string
	From      *time.Time
	To        *time.Time
}

type ListInvoiceResponse struct {
	pagination.PageInfo
	Invoices []Invoice `json:"invoices"`
}

// ScanResult is what the OCR boundary produced for a receipt image, or a
// signal that the caller must fall back to manual entry.
type ScanResult struct {
	ManualEntryRequired bool     `json:"manual_entry_required"`
	StoreName           string   `json:"store_name,omitempty"`
	TotalAmount         float64  `json:"total_amount,omitempty"`
	Items               []string `json:"items,omitempty"`
	Confidence          float64  `json:"confidence,omitempty"`
}

type Service interface {
	Record(ctx context.Context, req RecordInvoiceRequest) (Invoice, error)
	RecordBatch(ctx context.Context, reqs []RecordInvoiceRequest) ([]Invoice, error)
	GetByID(ctx context.Context, id string) (Invoice, error)
	List(ctx context.Context, req ListInvoiceRequest) (ListInvoiceResponse, error)
	Update(ctx context.Context, req UpdateInvoiceRequest) (Invoice, error)
	Delete(ctx context.Context, id string) error
	Scan(ctx context.Context, image []byte) (ScanResult, error)
}

var (
	ErrInvalidUser          = errors.New("invalid_user")
	ErrInvalidType          = errors.New("invalid_type")
	ErrInvalidStoreName     = errors.New("invalid_store_name")
	ErrInvalidTotalAmount   = errors.New("invalid_total_amount")
	ErrInvalidItemName      = errors.New("invalid_item_name")
	ErrInvalidItemQuantity  = errors.New("invalid_item_quantity")
	ErrInvalidItemPrice     = errors.New("invalid_item_price")
	ErrInvalidItemCategory  = errors.New("invalid_item_category")
	ErrInvalidItemFootprint = errors.New("invalid_item_footprint")
	ErrInvalidVerification  = errors.New("invalid_verification_method")
	ErrInvalidOccurredAt    = errors.New("invalid_occurred_at")
	ErrInvalidID            = errors.New("invalid_id")
	ErrNotFound             = errors.New("not_found")
)
