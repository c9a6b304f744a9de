package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/ecotrail/ecotrail/internal/clock"
	"github.com/ecotrail/ecotrail/internal/invoice/domain"
	"github.com/ecotrail/ecotrail/internal/invoice/ocr"
	"github.com/ecotrail/ecotrail/internal/usercontext"
	"github.com/ecotrail/ecotrail/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	Repo       domain.Repository
	Recognizer ocr.Recognizer
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	clock      clock.Clock
	repo       domain.Repository
	recognizer ocr.Recognizer
}

func New(p Params) domain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("invoice.service"),
		genID:      p.GenID,
		clock:      p.Clock,
		repo:       p.Repo,
		recognizer: p.Recognizer,
	}
}

func (s *Service) Record(ctx context.Context, req domain.RecordInvoiceRequest) (domain.Invoice, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok || userID == 0 {
		return domain.Invoice{}, domain.ErrInvalidUser
	}

	invoice, err := s.build(userID, req)
	if err != nil {
		return domain.Invoice{}, err
	}

	if err := s.repo.Insert(ctx, s.db, invoice); err != nil {
		return domain.Invoice{}, err
	}

	s.log.Debug("invoice recorded",
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("store_name", invoice.StoreName),
		zap.Float64("carbon_footprint_kg", invoice.CarbonFootprintKg),
	)

	return *invoice, nil
}

func (s *Service) RecordBatch(ctx context.Context, reqs []domain.RecordInvoiceRequest) ([]domain.Invoice, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok || userID == 0 {
		return nil, domain.ErrInvalidUser
	}

	invoices := make([]*domain.Invoice, 0, len(reqs))
	for _, req := range reqs {
		invoice, err := s.build(userID, req)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, invoice)
	}

	out := make([]domain.Invoice, 0, len(invoices))
	for _, invoice := range invoices {
		if err := s.repo.Insert(ctx, s.db, invoice); err != nil {
			return nil, err
		}
		out = append(out, *invoice)
	}
	return out, nil
}

// build validates a request and assembles the invoice with its items. The
// stored invoice footprint is recomputed from the items here, never taken
// from the request.
func (s *Service) build(userID snowflake.ID, req domain.RecordInvoiceRequest) (*domain.Invoice, error) {
	invoiceType := req.Type
	if invoiceType == "" {
		invoiceType = domain.TypePaper
	}
	if !invoiceType.Valid() {
		return nil, domain.ErrInvalidType
	}

	storeName := strings.TrimSpace(req.StoreName)
	if storeName == "" {
		return nil, domain.ErrInvalidStoreName
	}

	if req.TotalAmount < 0 {
		return nil, domain.ErrInvalidTotalAmount
	}

	verification := req.VerificationMethod
	if verification == "" {
		verification = domain.VerificationManual
	}
	if !verification.Valid() {
		return nil, domain.ErrInvalidVerification
	}

	occurredAt := req.OccurredAt
	if occurredAt.IsZero() {
		return nil, domain.ErrInvalidOccurredAt
	}

	now := s.clock.Now()
	invoiceID := s.genID.Generate()

	items, err := s.buildItems(userID, invoiceID, req.Items, now)
	if err != nil {
		return nil, err
	}

	storeCategory := strings.TrimSpace(req.StoreCategory)
	if storeCategory == "" {
		storeCategory = "other"
	}

	ocrData := datatypes.JSONMap{}
	for key, value := range req.OCRData {
		ocrData[key] = value
	}

	return &domain.Invoice{
		ID:                 invoiceID,
		UserID:             userID,
		Type:               invoiceType,
		StoreName:          storeName,
		StoreCategory:      storeCategory,
		TotalAmount:        req.TotalAmount,
		CarbonFootprintKg:  domain.TotalFootprintKg(items),
		OCRData:            ocrData,
		VerificationMethod: verification,
		Notes:              strings.TrimSpace(req.Notes),
		OccurredAt:         occurredAt,
		CreatedAt:          now,
		UpdatedAt:          now,
		Items:              items,
	}, nil
}

func (s *Service) buildItems(userID, invoiceID snowflake.ID, inputs []domain.ItemInput, now time.Time) ([]domain.InvoiceItem, error) {
	items := make([]domain.InvoiceItem, 0, len(inputs))
	for _, input := range inputs {
		name := strings.TrimSpace(input.Name)
		if name == "" {
			return nil, domain.ErrInvalidItemName
		}
		if input.Quantity <= 0 {
			return nil, domain.ErrInvalidItemQuantity
		}
		if input.Price < 0 {
			return nil, domain.ErrInvalidItemPrice
		}
		if input.CarbonFootprintKg < 0 {
			return nil, domain.ErrInvalidItemFootprint
		}
		category := input.Category
		if category == "" {
			category = domain.CategoryOther
		}
		if !category.Valid() {
			return nil, domain.ErrInvalidItemCategory
		}
		items = append(items, domain.InvoiceItem{
			ID:                s.genID.Generate(),
			InvoiceID:         invoiceID,
			UserID:            userID,
			Name:              name,
			Quantity:          input.Quantity,
			Price:             input.Price,
			Category:          category,
			CarbonFootprintKg: input.CarbonFootprintKg,
			CreatedAt:         now,
		})
	}
	return items, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Invoice, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok || userID == 0 {
		return domain.Invoice{}, domain.ErrInvalidUser
	}

	invoiceID, err := parseID(id)
	if err != nil {
		return domain.Invoice{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, userID, invoiceID)
	if err != nil {
		return domain.Invoice{}, err
	}
	if item == nil {
		return domain.Invoice{}, domain.ErrNotFound
	}

	return *item, nil
}

func (s *Service) List(ctx context.Context, req domain.ListInvoiceRequest) (domain.ListInvoiceResponse, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok || userID == 0 {
		return domain.ListInvoiceResponse{}, domain.ErrInvalidUser
	}

	if req.Type != "" && !req.Type.Valid() {
		return domain.ListInvoiceResponse{}, domain.ErrInvalidType
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	items, err := s.repo.List(ctx, s.db, userID, domain.ListInvoiceFilter{
		Type:      req.Type,
		StoreName: strings.TrimSpace(req.StoreName),
		From:      req.From,
		To:        req.To,
	}, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  pageSize,
	})
	if err != nil {
		return domain.ListInvoiceResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(invoice *domain.Invoice) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:         invoice.ID.String(),
			OccurredAt: invoice.OccurredAt.Format(time.RFC3339Nano),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > pageSize {
		items = items[:pageSize]
	}

	invoices := make([]domain.Invoice, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		invoices = append(invoices, *item)
	}

	resp := domain.ListInvoiceResponse{Invoices: invoices}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}

	return resp, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateInvoiceRequest) (domain.Invoice, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok || userID == 0 {
		return domain.Invoice{}, domain.ErrInvalidUser
	}

	invoiceID, err := parseID(req.ID)
	if err != nil {
		return domain.Invoice{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, userID, invoiceID)
	if err != nil {
		return domain.Invoice{}, err
	}
	if item == nil {
		return domain.Invoice{}, domain.ErrNotFound
	}

	if req.StoreName != nil {
		storeName := strings.TrimSpace(*req.StoreName)
		if storeName == "" {
			return domain.Invoice{}, domain.ErrInvalidStoreName
		}
		item.StoreName = storeName
	}
	if req.Notes != nil {
		item.Notes = strings.TrimSpace(*req.Notes)
	}

	now := s.clock.Now()
	if req.Items != nil {
		items, err := s.buildItems(userID, item.ID, req.Items, now)
		if err != nil {
			return domain.Invoice{}, err
		}
		item.Items = items
	}
	item.CarbonFootprintKg = domain.TotalFootprintKg(item.Items)
	item.UpdatedAt = now

	if err := s.repo.ReplaceItems(ctx, s.db, item); err != nil {
		return domain.Invoice{}, err
	}

	return *item, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok || userID == 0 {
		return domain.ErrInvalidUser
	}

	invoiceID, err := parseID(id)
	if err != nil {
		return err
	}

	affected, err := s.repo.Delete(ctx, s.db, userID, invoiceID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Scan runs the receipt image through the recognizer. Recognition failure
// is not an error for the caller: the result flags that the invoice must be
// entered manually instead.
func (s *Service) Scan(ctx context.Context, image []byte) (domain.ScanResult, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok || userID == 0 {
		return domain.ScanResult{}, domain.ErrInvalidUser
	}

	result, err := s.recognizer.Recognize(ctx, image)
	if err != nil {
		if errors.Is(err, ocr.ErrUnavailable) {
			s.log.Warn("ocr unavailable, falling back to manual entry",
				zap.String("user_id", userID.String()),
			)
			return domain.ScanResult{ManualEntryRequired: true}, nil
		}
		return domain.ScanResult{}, err
	}

	return domain.ScanResult{
		StoreName:   result.StoreName,
		TotalAmount: result.TotalAmount,
		Items:       result.Items,
		Confidence:  result.Confidence,
	}, nil
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
