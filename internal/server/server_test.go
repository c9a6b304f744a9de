package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/ecotrail/ecotrail/internal/clock"
	"github.com/ecotrail/ecotrail/internal/config"
	footprintdomain "github.com/ecotrail/ecotrail/internal/footprint/domain"
	footprintrepository "github.com/ecotrail/ecotrail/internal/footprint/repository"
	footprintservice "github.com/ecotrail/ecotrail/internal/footprint/service"
	invoicedomain "github.com/ecotrail/ecotrail/internal/invoice/domain"
	"github.com/ecotrail/ecotrail/internal/invoice/ocr"
	invoicerepository "github.com/ecotrail/ecotrail/internal/invoice/repository"
	invoiceservice "github.com/ecotrail/ecotrail/internal/invoice/service"
	movementdomain "github.com/ecotrail/ecotrail/internal/movement/domain"
	movementrepository "github.com/ecotrail/ecotrail/internal/movement/repository"
	movementservice "github.com/ecotrail/ecotrail/internal/movement/service"
	reportingrepository "github.com/ecotrail/ecotrail/internal/reporting/repository"
	reportingservice "github.com/ecotrail/ecotrail/internal/reporting/service"
	userdomain "github.com/ecotrail/ecotrail/internal/user/domain"
	userrepository "github.com/ecotrail/ecotrail/internal/user/repository"
	userservice "github.com/ecotrail/ecotrail/internal/user/service"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupServer(t *testing.T) *Server {
	t.Helper()

	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&userdomain.User{},
		&movementdomain.Movement{},
		&invoicedomain.Invoice{},
		&invoicedomain.InvoiceItem{},
		&footprintdomain.DailyFootprint{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	cfg := config.Config{DefaultDailyGoalKg: 20}
	log := zap.NewNop()
	clk := clock.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	engine := gin.New()
	engine.Use(ErrorHandlingMiddleware())

	return NewServer(ServerParams{
		Gin:   engine,
		Cfg:   cfg,
		DB:    db,
		GenID: node,
		UserSvc: userservice.New(userservice.Params{
			Cfg: cfg, DB: db, Log: log, GenID: node, Clock: clk,
			Repo: userrepository.Provide(),
		}),
		MovementSvc: movementservice.New(movementservice.Params{
			DB: db, Log: log, GenID: node, Clock: clk,
			Repo: movementrepository.Provide(),
		}),
		InvoiceSvc: invoiceservice.New(invoiceservice.Params{
			DB: db, Log: log, GenID: node, Clock: clk,
			Repo: invoicerepository.Provide(), Recognizer: ocr.NewUnavailable(),
		}),
		FootprintSvc: footprintservice.New(footprintservice.Params{
			Cfg: cfg, DB: db, Log: log, GenID: node, Clock: clk,
			Repo: footprintrepository.Provide(),
		}),
		ReportingSvc: reportingservice.New(reportingservice.Params{
			DB: db, Log: log,
			Repo: reportingrepository.Provide(),
		}),
	})
}

func doJSON(t *testing.T, s *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Buffer
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewBuffer(encoded)
	} else {
		reader = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func registerTestUser(t *testing.T, s *Server) string {
	t.Helper()

	w := doJSON(t, s, http.MethodPost, "/api/users", "", gin.H{
		"name":  "Alex",
		"email": "alex@example.com",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			APIToken string `json:"api_token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Data.APIToken)
	return resp.Data.APIToken
}

func TestAuthRequired(t *testing.T) {
	s := setupServer(t)

	w := doJSON(t, s, http.MethodGet, "/api/users/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, s, http.MethodGet, "/api/users/me", "bogus-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token := registerTestUser(t, s)
	w = doJSON(t, s, http.MethodGet, "/api/users/me", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRecordMovementEndpoint(t *testing.T) {
	s := setupServer(t)
	token := registerTestUser(t, s)

	start := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	w := doJSON(t, s, http.MethodPost, "/api/movements", token, gin.H{
		"type": "driving",
		"start_location": gin.H{
			"latitude": 25.0330, "longitude": 121.5654, "accuracy": 5,
			"timestamp": start.Format(time.RFC3339),
		},
		"end_location": gin.H{
			"latitude": 25.1230, "longitude": 121.5654, "accuracy": 5,
			"timestamp": start.Add(10 * time.Minute).Format(time.RFC3339),
		},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data movementdomain.Movement `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, movementdomain.TypeDriving, resp.Data.Type)
	assert.InDelta(t, 10.0, resp.Data.DistanceKm, 0.05)
}

func TestRecordMovementValidationError(t *testing.T) {
	s := setupServer(t)
	token := registerTestUser(t, s)

	start := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	w := doJSON(t, s, http.MethodPost, "/api/movements", token, gin.H{
		"start_location": gin.H{
			"latitude": 91.0, "longitude": 0.0, "accuracy": 5,
			"timestamp": start.Format(time.RFC3339),
		},
		"end_location": gin.H{
			"latitude": 25.0, "longitude": 121.0, "accuracy": 5,
			"timestamp": start.Add(10 * time.Minute).Format(time.RFC3339),
		},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid_latitude")
}

func TestDailyFootprintEndpoint(t *testing.T) {
	s := setupServer(t)
	token := registerTestUser(t, s)

	start := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	w := doJSON(t, s, http.MethodPost, "/api/movements", token, gin.H{
		"type": "driving",
		"start_location": gin.H{
			"latitude": 25.0330, "longitude": 121.5654, "accuracy": 5,
			"timestamp": start.Format(time.RFC3339),
		},
		"end_location": gin.H{
			"latitude": 25.1230, "longitude": 121.5654, "accuracy": 5,
			"timestamp": start.Add(10 * time.Minute).Format(time.RFC3339),
		},
		"distance_km": 10.0,
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, s, http.MethodPost, "/api/carbon/daily/calculate", token, gin.H{
		"date": "2026-03-01",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data footprintdomain.DailyFootprint `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.InDelta(t, 1.92, resp.Data.Total, 1e-9)
	assert.True(t, resp.Data.IsGoalAchieved)

	w = doJSON(t, s, http.MethodGet, "/api/carbon/daily?date=2026-03-01", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, s, http.MethodGet, "/api/carbon/daily?date=2026-03-02", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestScanInvoiceFallsBack(t *testing.T) {
	s := setupServer(t)
	token := registerTestUser(t, s)

	w := doJSON(t, s, http.MethodPost, "/api/invoices/scan", token, gin.H{
		"image": "cmVjZWlwdA==",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"manual_entry_required":true`)
}

func TestLeaderboardEndpoint(t *testing.T) {
	s := setupServer(t)
	token := registerTestUser(t, s)

	path := fmt.Sprintf("/api/carbon/leaderboard?from=%s&to=%s", "2026-02-01", "2026-03-01")
	w := doJSON(t, s, http.MethodGet, path, token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, s, http.MethodGet, "/api/carbon/leaderboard?from=2026-03-01&to=2026-02-01", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
