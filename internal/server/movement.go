package server

import (
	"net/http"
	"strings"
	"time"

	movementdomain "github.com/ecotrail/ecotrail/internal/movement/domain"
	"github.com/ecotrail/ecotrail/pkg/db/pagination"
	"github.com/gin-gonic/gin"
)

type locationPayload struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Altitude  *float64  `json:"altitude"`
	Accuracy  float64   `json:"accuracy"`
	Timestamp time.Time `json:"timestamp"`
}

func (p locationPayload) toDomain() movementdomain.Location {
	return movementdomain.Location{
		Latitude:  p.Latitude,
		Longitude: p.Longitude,
		Altitude:  p.Altitude,
		Accuracy:  p.Accuracy,
		Timestamp: p.Timestamp,
	}
}

type recordMovementRequest struct {
	Type               string          `json:"type"`
	StartLocation      locationPayload `json:"start_location"`
	EndLocation        locationPayload `json:"end_location"`
	DistanceKm         *float64        `json:"distance_km"`
	DurationMin        *float64        `json:"duration_min"`
	VehicleType        string          `json:"vehicle_type"`
	FuelType           string          `json:"fuel_type"`
	Passengers         int             `json:"passengers"`
	VerificationMethod string          `json:"verification_method"`
	Notes              string          `json:"notes"`
}

func (r recordMovementRequest) toDomain() movementdomain.RecordMovementRequest {
	return movementdomain.RecordMovementRequest{
		Type:               movementdomain.MovementType(strings.TrimSpace(r.Type)),
		StartLocation:      r.StartLocation.toDomain(),
		EndLocation:        r.EndLocation.toDomain(),
		DistanceKm:         r.DistanceKm,
		DurationMin:        r.DurationMin,
		VehicleType:        r.VehicleType,
		FuelType:           r.FuelType,
		Passengers:         r.Passengers,
		VerificationMethod: movementdomain.VerificationMethod(strings.TrimSpace(r.VerificationMethod)),
		Notes:              r.Notes,
	}
}

func (s *Server) RecordMovement(c *gin.Context) {
	var req recordMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.movementSvc.Record(c.Request.Context(), req.toDomain())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if s.obsMetrics != nil {
		s.obsMetrics.RecordMovement(c.Request.Context(), string(resp.Type))
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) RecordMovementBatch(c *gin.Context) {
	var req struct {
		Movements []recordMovementRequest `json:"movements"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Movements) == 0 {
		AbortWithError(c, invalidRequestError())
		return
	}

	reqs := make([]movementdomain.RecordMovementRequest, 0, len(req.Movements))
	for _, item := range req.Movements {
		reqs = append(reqs, item.toDomain())
	}

	resp, err := s.movementSvc.RecordBatch(c.Request.Context(), reqs)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if s.obsMetrics != nil {
		for _, item := range resp {
			s.obsMetrics.RecordMovement(c.Request.Context(), string(item.Type))
		}
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListMovements(c *gin.Context) {
	var query struct {
		pagination.Pagination
		Type string `form:"type"`
		From string `form:"from"`
		To   string `form:"to"`
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

	resp, err := s.movementSvc.List(c.Request.Context(), movementdomain.ListMovementRequest{
		PageToken: query.PageToken,
		PageSize:  query.PageSize,
		Type:      movementdomain.MovementType(strings.TrimSpace(query.Type)),
		From:      from,
		To:        to,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetMovement(c *gin.Context) {
	resp, err := s.movementSvc.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateMovementAnnotations(c *gin.Context) {
	var req struct {
		Notes              *string `json:"notes"`
		IsVerified         *bool   `json:"is_verified"`
		VerificationMethod *string `json:"verification_method"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	var verification *movementdomain.VerificationMethod
	if req.VerificationMethod != nil {
		method := movementdomain.VerificationMethod(strings.TrimSpace(*req.VerificationMethod))
		verification = &method
	}

	resp, err := s.movementSvc.UpdateAnnotations(c.Request.Context(), movementdomain.UpdateAnnotationsRequest{
		ID:                 strings.TrimSpace(c.Param("id")),
		Notes:              req.Notes,
		IsVerified:         req.IsVerified,
		VerificationMethod: verification,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteMovement(c *gin.Context) {
	if err := s.movementSvc.Delete(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": true}})
}

func (s *Server) MovementTypeDistribution(c *gin.Context) {
	from, to, err := parseRange(c.Query("from"), c.Query("to"))
	if err != nil {
		AbortWithError(c, newValidationError("range", "invalid_range", "invalid range"))
		return
	}

	resp, err := s.movementSvc.TypeDistribution(c.Request.Context(), from, to)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
