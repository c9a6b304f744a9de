package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/ecotrail/ecotrail/internal/invoice/domain"
	"github.com/ecotrail/ecotrail/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, invoice *domain.Invoice) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(invoice).Error; err != nil {
			return err
		}
		if len(invoice.Items) == 0 {
			return nil
		}
		return tx.Create(invoice.Items).Error
	})
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, userID, id snowflake.ID) (*domain.Invoice, error) {
	var invoice domain.Invoice
	err := db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, id).
		First(&invoice).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	if err := r.loadItems(ctx, db, &invoice); err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, userID snowflake.ID, filter domain.ListInvoiceFilter, page pagination.Pagination) ([]*domain.Invoice, error) {
	var invoices []*domain.Invoice
	stmt := db.WithContext(ctx).
		Model(&domain.Invoice{}).
		Where("user_id = ?", userID)
	if filter.Type != "" {
		stmt = stmt.Where("type = ?", filter.Type)
	}
	if filter.StoreName != "" {
		stmt = stmt.Where("store_name = ?", filter.StoreName)
	}
	if filter.From != nil {
		stmt = stmt.Where("occurred_at >= ?", *filter.From)
	}
	if filter.To != nil {
		stmt = stmt.Where("occurred_at <= ?", *filter.To)
	}
	if page.PageToken != "" {
		cursor, err := pagination.DecodeCursor(page.PageToken)
		if err == nil {
			if at, ok := cursor.OccurredAtTime(); ok {
				stmt = stmt.Where("occurred_at < ?", at)
			}
		}
	}
	if page.PageSize > 0 {
		stmt = stmt.Limit(page.PageSize + 1)
	}
	err := stmt.
		Order("occurred_at desc, id desc").
		Find(&invoices).Error
	if err != nil {
		return nil, err
	}
	for _, invoice := range invoices {
		if err := r.loadItems(ctx, db, invoice); err != nil {
			return nil, err
		}
	}
	return invoices, nil
}

func (r *repo) ReplaceItems(ctx context.Context, db *gorm.DB, invoice *domain.Invoice) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Exec(
			`DELETE FROM invoice_items WHERE invoice_id = ?`,
			invoice.ID,
		).Error
		if err != nil {
			return err
		}
		if len(invoice.Items) > 0 {
			if err := tx.Create(invoice.Items).Error; err != nil {
				return err
			}
		}
		return tx.Exec(
			`UPDATE invoices
			 SET store_name = ?, total_amount = ?, carbon_footprint_kg = ?, notes = ?, updated_at = ?
			 WHERE user_id = ? AND id = ?`,
			invoice.StoreName,
			invoice.TotalAmount,
			invoice.CarbonFootprintKg,
			invoice.Notes,
			invoice.UpdatedAt,
			invoice.UserID,
			invoice.ID,
		).Error
	})
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, userID, id snowflake.ID) (int64, error) {
	var affected int64
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Exec(
			`DELETE FROM invoice_items WHERE user_id = ? AND invoice_id = ?`,
			userID,
			id,
		).Error
		if err != nil {
			return err
		}
		result := tx.Exec(
			`DELETE FROM invoices WHERE user_id = ? AND id = ?`,
			userID,
			id,
		)
		affected = result.RowsAffected
		return result.Error
	})
	return affected, err
}

func (r *repo) loadItems(ctx context.Context, db *gorm.DB, invoice *domain.Invoice) error {
	items := []domain.InvoiceItem{}
	err := db.WithContext(ctx).
		Where("invoice_id = ?", invoice.ID).
		Order("id asc").
		Find(&items).Error
	if err != nil {
		return err
	}
	invoice.Items = items
	return nil
}
