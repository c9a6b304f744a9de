// Package domain contains persistence models for invoice records.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// InvoiceType distinguishes how an invoice entered the system.
type InvoiceType string

const (
	TypeElectronic InvoiceType = "electronic"
	TypePaper      InvoiceType = "paper"
	TypeScanned    InvoiceType = "scanned"
)

func (t InvoiceType) Valid() bool {
	switch t {
	case TypeElectronic, TypePaper, TypeScanned:
		return true
	default:
		return false
	}
}

// ItemCategory classifies a purchased line item.
type ItemCategory string

const (
	CategoryFood        ItemCategory = "food"
	CategoryClothing    ItemCategory = "clothing"
	CategoryElectronics ItemCategory = "electronics"
	CategoryHome        ItemCategory = "home"
	CategoryHealth      ItemCategory = "health"
	CategoryBeauty      ItemCategory = "beauty"
	CategorySports      ItemCategory = "sports"
	CategoryBooks       ItemCategory = "books"
	CategoryToys        ItemCategory = "toys"
	CategoryAutomotive  ItemCategory = "automotive"
	CategoryGarden      ItemCategory = "garden"
	CategoryOffice      ItemCategory = "office"
	CategoryOther       ItemCategory = "other"
)

func (c ItemCategory) Valid() bool {
	switch c {
	case CategoryFood, CategoryClothing, CategoryElectronics, CategoryHome,
		CategoryHealth, CategoryBeauty, CategorySports, CategoryBooks,
		CategoryToys, CategoryAutomotive, CategoryGarden, CategoryOffice,
		CategoryOther:
		return true
	default:
		return false
	}
}

// VerificationMethod records how an invoice was captured.
type VerificationMethod string

const (
	VerificationOCR        VerificationMethod = "ocr"
	VerificationManual     VerificationMethod = "manual"
	VerificationAPI        VerificationMethod = "api"
	VerificationElectronic VerificationMethod = "electronic"
)

func (v VerificationMethod) Valid() bool {
	switch v {
	case VerificationOCR, VerificationManual, VerificationAPI, VerificationElectronic:
		return true
	default:
		return false
	}
}

// Invoice represents a shopping receipt with its line items. The invoice
// footprint is always the sum of its item footprints, recomputed on every
// save.
type Invoice struct {
	ID                 snowflake.ID       `gorm:"primaryKey" json:"id"`
	UserID             snowflake.ID       `gorm:"not null;index:idx_invoices_user_occurred" json:"user_id"`
	Type               InvoiceType        `gorm:"type:text;not null" json:"type"`
	StoreName          string             `gorm:"type:text;not null;index" json:"store_name"`
	StoreCategory      string             `gorm:"type:text;not null;default:'other'" json:"store_category,omitempty"`
	TotalAmount        float64            `gorm:"not null;default:0" json:"total_amount"`
	CarbonFootprintKg  float64            `gorm:"not null;default:0" json:"carbon_footprint_kg"`
	OCRData            datatypes.JSONMap  `gorm:"type:jsonb;not null;default:'{}'" json:"ocr_data,omitempty"`
	IsVerified         bool               `gorm:"not null;default:false" json:"is_verified"`
	VerificationMethod VerificationMethod `gorm:"type:text;not null;default:'manual'" json:"verification_method"`
	Notes              string             `gorm:"type:text;not null;default:''" json:"notes,omitempty"`
	OccurredAt         time.Time          `gorm:"not null;index:idx_invoices_user_occurred" json:"occurred_at"`
	CreatedAt          time.Time          `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt          time.Time          `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	Items []InvoiceItem `gorm:"-" json:"items"`
}

// TableName sets the database table name.
func (Invoice) TableName() string { return "invoices" }

// InvoiceItem represents a line on an invoice. The item footprint is an
// externally sourced estimate, not derived here.
type InvoiceItem struct {
	ID                snowflake.ID `gorm:"primaryKey" json:"id"`
	InvoiceID         snowflake.ID `gorm:"not null;index" json:"invoice_id"`
	UserID            snowflake.ID `gorm:"not null;index" json:"user_id"`
	Name              string       `gorm:"type:text;not null" json:"name"`
	Quantity          float64      `gorm:"not null" json:"quantity"`
	Price             float64      `gorm:"not null;default:0" json:"price"`
	Category          ItemCategory `gorm:"type:text;not null;index" json:"category"`
	CarbonFootprintKg float64      `gorm:"not null;default:0" json:"carbon_footprint_kg"`
	CreatedAt         time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (InvoiceItem) TableName() string { return "invoice_items" }

// TotalFootprintKg sums line-item footprints. Invoked explicitly before
// every persist so the stored invoice footprint never drifts from its items.
func TotalFootprintKg(items []InvoiceItem) float64 {
	var total float64
	for _, item := range items {
		total += item.CarbonFootprintKg
	}
	return total
}
