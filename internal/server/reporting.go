package server

import (
	"net/http"
	"strconv"
	"strings"

	reportingdomain "github.com/ecotrail/ecotrail/internal/reporting/domain"
	"github.com/gin-gonic/gin"
)

func (s *Server) UserStats(c *gin.Context) {
	from, to, err := parseRange(c.Query("from"), c.Query("to"))
	if err != nil {
		AbortWithError(c, newValidationError("range", "invalid_range", "invalid range"))
		return
	}

	resp, err := s.reportingSvc.UserStats(c.Request.Context(), from, to)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) MovementStats(c *gin.Context) {
	from, to, err := parseRange(c.Query("from"), c.Query("to"))
	if err != nil {
		AbortWithError(c, newValidationError("range", "invalid_range", "invalid range"))
		return
	}

	resp, err := s.reportingSvc.MovementStats(c.Request.Context(), from, to)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) Trends(c *gin.Context) {
	from, to, err := parseRange(c.Query("from"), c.Query("to"))
	if err != nil {
		AbortWithError(c, newValidationError("range", "invalid_range", "invalid range"))
		return
	}

	period := reportingdomain.Period(strings.TrimSpace(c.Query("period")))
	resp, err := s.reportingSvc.Trends(c.Request.Context(), from, to, period)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) Leaderboard(c *gin.Context) {
	from, to, err := parseRange(c.Query("from"), c.Query("to"))
	if err != nil {
		AbortWithError(c, newValidationError("range", "invalid_range", "invalid range"))
		return
	}

	limit := 0
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil {
			AbortWithError(c, newValidationError("limit", "invalid_limit", "invalid limit"))
			return
		}
	}

	resp, err := s.reportingSvc.Leaderboard(c.Request.Context(), from, to, limit)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CategoryDistribution(c *gin.Context) {
	from, to, err := parseRange(c.Query("from"), c.Query("to"))
	if err != nil {
		AbortWithError(c, newValidationError("range", "invalid_range", "invalid range"))
		return
	}

	resp, err := s.reportingSvc.CategoryDistribution(c.Request.Context(), from, to)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) StoreStats(c *gin.Context) {
	from, to, err := parseRange(c.Query("from"), c.Query("to"))
	if err != nil {
		AbortWithError(c, newValidationError("range", "invalid_range", "invalid range"))
		return
	}

	resp, err := s.reportingSvc.StoreStats(c.Request.Context(), from, to)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
