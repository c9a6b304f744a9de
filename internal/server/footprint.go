package server

import (
	"net/http"

	footprintdomain "github.com/ecotrail/ecotrail/internal/footprint/domain"
	"github.com/gin-gonic/gin"
)

func (s *Server) CalculateDailyFootprint(c *gin.Context) {
	var req struct {
		Date string `json:"date"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	date, err := parseRequiredTime(req.Date, false)
	if err != nil {
		AbortWithError(c, newValidationError("date", "invalid_date", "invalid date"))
		return
	}

	resp, err := s.footprintSvc.CalculateDaily(c.Request.Context(), date)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if s.obsMetrics != nil {
		s.obsMetrics.RecordFootprintRecompute(c.Request.Context())
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetDailyFootprint(c *gin.Context) {
	date, err := parseRequiredTime(c.Query("date"), false)
	if err != nil {
		AbortWithError(c, newValidationError("date", "invalid_date", "invalid date"))
		return
	}

	resp, err := s.footprintSvc.GetByDate(c.Request.Context(), date)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListDailyFootprints(c *gin.Context) {
	from, to, err := parseRange(c.Query("from"), c.Query("to"))
	if err != nil {
		AbortWithError(c, newValidationError("range", "invalid_range", "invalid range"))
		return
	}

	resp, err := s.footprintSvc.List(c.Request.Context(), footprintdomain.ListFootprintRequest{
		From: from,
		To:   to,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) SetDailyGoal(c *gin.Context) {
	var req struct {
		DailyGoalKg float64 `json:"daily_goal_kg"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.footprintSvc.SetDailyGoal(c.Request.Context(), req.DailyGoalKg)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
