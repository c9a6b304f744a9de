package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/ecotrail/ecotrail/pkg/db/pagination"
	"gorm.io/gorm"
)

type ListInvoiceFilter struct {
	Type      InvoiceType
	StoreName string
	From      *time.Time
	To        *time.Time
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, invoice *Invoice) error
	FindByID(ctx context.Context, db *gorm.DB, userID, id snowflake.ID) (*Invoice, error)
	List(ctx context.Context, db *gorm.DB, userID snowflake.ID, filter ListInvoiceFilter, page pagination.Pagination) ([]*Invoice, error)
	ReplaceItems(ctx context.Context, db *gorm.DB, invoice *Invoice) error
	Delete(ctx context.Context, db *gorm.DB, userID, id snowflake.ID) (int64, error)
}
