package server

import (
	"encoding/base64"
	"net/http"
	"strings"
	"time"

	invoicedomain "github.com/ecotrail/ecotrail/internal/invoice/domain"
	"github.com/ecotrail/ecotrail/pkg/db/pagination"
	"github.com/gin-gonic/gin"
)

type invoiceItemPayload struct {
	Name              string  `json:"name"`
	Quantity          float64 `json:"quantity"`
	Price             float64 `json:"price"`
	Category          string  `json:"category"`
	CarbonFootprintKg float64 `json:"carbon_footprint_kg"`
}

func (p invoiceItemPayload) toDomain() invoicedomain.ItemInput {
	return invoicedomain.ItemInput{
		Name:              p.Name,
		Quantity:          p.Quantity,
		Price:             p.Price,
		Category:          invoicedomain.ItemCategory(strings.TrimSpace(p.Category)),
		CarbonFootprintKg: p.CarbonFootprintKg,
	}
}

type recordInvoiceRequest struct {
	Type               string               `json:"type"`
	StoreName          string               `json:"store_name"`
	StoreCategory      string               `json:"store_category"`
	TotalAmount        float64              `json:"total_amount"`
	Items              []invoiceItemPayload `json:"items"`
	OCRData            map[string]any       `json:"ocr_data"`
	VerificationMethod string               `json:"verification_method"`
	Notes              string               `json:"notes"`
	OccurredAt         time.Time            `json:"occurred_at"`
}

func (r recordInvoiceRequest) toDomain() invoicedomain.RecordInvoiceRequest {
	items := make([]invoicedomain.ItemInput, 0, len(r.Items))
	for _, item := range r.Items {
		items = append(items, item.toDomain())
	}
	return invoicedomain.RecordInvoiceRequest{
		Type:               invoicedomain.InvoiceType(strings.TrimSpace(r.Type)),
		StoreName:          r.StoreName,
		StoreCategory:      r.StoreCategory,
		TotalAmount:        r.TotalAmount,
		Items:              items,
		OCRData:            r.OCRData,
		VerificationMethod: invoicedomain.VerificationMethod(strings.TrimSpace(r.VerificationMethod)),
		Notes:              r.Notes,
		OccurredAt:         r.OccurredAt,
	}
}

func (s *Server) RecordInvoice(c *gin.Context) {
	var req recordInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.invoiceSvc.Record(c.Request.Context(), req.toDomain())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if s.obsMetrics != nil {
		s.obsMetrics.RecordInvoice(c.Request.Context(), string(resp.Type))
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) RecordInvoiceBatch(c *gin.Context) {
	var req struct {
		Invoices []recordInvoiceRequest `json:"invoices"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Invoices) == 0 {
		AbortWithError(c, invalidRequestError())
		return
	}

	reqs := make([]invoicedomain.RecordInvoiceRequest, 0, len(req.Invoices))
	for _, item := range req.Invoices {
		reqs = append(reqs, item.toDomain())
	}

	resp, err := s.invoiceSvc.RecordBatch(c.Request.Context(), reqs)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if s.obsMetrics != nil {
		for _, item := range resp {
			s.obsMetrics.RecordInvoice(c.Request.Context(), string(item.Type))
		}
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ScanInvoice(c *gin.Context) {
	var req struct {
		Image string `json:"image"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Image) == "" {
		AbortWithError(c, invalidRequestError())
		return
	}

	image, err := base64.StdEncoding.DecodeString(req.Image)
	if err != nil {
		AbortWithError(c, newValidationError("image", "invalid_image", "invalid image"))
		return
	}

	resp, err := s.invoiceSvc.Scan(c.Request.Context(), image)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if resp.ManualEntryRequired && s.obsMetrics != nil {
		s.obsMetrics.RecordOCRFallback(c.Request.Context())
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListInvoices(c *gin.Context) {
	var query struct {
		pagination.Pagination
		Type      string `form:"type"`
		StoreName string `form:"store_name"`
		From      string `form:"from"`
		To        string `form:"to"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	from, err := parseOptionalTime(query.From, false)
	if err != nil {
		AbortWithError(c, newValidationError("from", "invalid_from", "invalid from"))
		return
	}

	to, err := parseOptionalTime(query.To, true)
	if err != nil {
		AbortWithError(c, newValidationError("to", "invalid_to", "invalid to"))
		return
	}

	resp, err := s.invoiceSvc.List(c.Request.Context(), invoicedomain.ListInvoiceRequest{
		PageToken: query.PageToken,
		PageSize:  query.PageSize,
		Type:      invoicedomain.InvoiceType(strings.TrimSpace(query.Type)),
		StoreName: query.StoreName,
		From:      from,
		To:        to,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetInvoice(c *gin.Context) {
	resp, err := s.invoiceSvc.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateInvoice(c *gin.Context) {
	var req struct {
		StoreName *string              `json:"store_name"`
		Items     []invoiceItemPayload `json:"items"`
		Notes     *string              `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	var items []invoicedomain.ItemInput
	if req.Items != nil {
		items = make([]invoicedomain.ItemInput, 0, len(req.Items))
		for _, item := range req.Items {
			items = append(items, item.toDomain())
		}
	}

	resp, err := s.invoiceSvc.Update(c.Request.Context(), invoicedomain.UpdateInvoiceRequest{
		ID:        strings.TrimSpace(c.Param("id")),
		StoreName: req.StoreName,
		Items:     items,
		Notes:     req.Notes,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteInvoice(c *gin.Context) {
	if err := s.invoiceSvc.Delete(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": true}})
}
