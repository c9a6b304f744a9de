package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/ecotrail/ecotrail/internal/config"
	"github.com/ecotrail/ecotrail/internal/footprint"
	footprintdomain "github.com/ecotrail/ecotrail/internal/footprint/domain"
	"github.com/ecotrail/ecotrail/internal/invoice"
	invoicedomain "github.com/ecotrail/ecotrail/internal/invoice/domain"
	"github.com/ecotrail/ecotrail/internal/movement"
	movementdomain "github.com/ecotrail/ecotrail/internal/movement/domain"
	"github.com/ecotrail/ecotrail/internal/observability"
	obsmiddleware "github.com/ecotrail/ecotrail/internal/observability/logger"
	obsmetrics "github.com/ecotrail/ecotrail/internal/observability/metrics"
	obstracing "github.com/ecotrail/ecotrail/internal/observability/tracing"
	"github.com/ecotrail/ecotrail/internal/reporting"
	reportingdomain "github.com/ecotrail/ecotrail/internal/reporting/domain"
	"github.com/ecotrail/ecotrail/internal/user"
	userdomain "github.com/ecotrail/ecotrail/internal/user/domain"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	movement.Module,
	invoice.Module,
	footprint.Module,
	reporting.Module,
	user.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine       *gin.Engine
	cfg          config.Config
	db           *gorm.DB
	genID        *snowflake.Node
	userSvc      userdomain.Service
	movementSvc  movementdomain.Service
	invoiceSvc   invoicedomain.Service
	footprintSvc footprintdomain.Service
	reportingSvc reportingdomain.Service
	obsMetrics   *obsmetrics.Metrics
}

type ServerParams struct {
	fx.In

	Gin          *gin.Engine
	Cfg          config.Config
	DB           *gorm.DB
	GenID        *snowflake.Node
	UserSvc      userdomain.Service
	MovementSvc  movementdomain.Service
	InvoiceSvc   invoicedomain.Service
	FootprintSvc footprintdomain.Service
	ReportingSvc reportingdomain.Service
	ObsMetrics   *obsmetrics.Metrics `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:       p.Gin,
		cfg:          p.Cfg,
		db:           p.DB,
		genID:        p.GenID,
		userSvc:      p.UserSvc,
		movementSvc:  p.MovementSvc,
		invoiceSvc:   p.InvoiceSvc,
		footprintSvc: p.FootprintSvc,
		reportingSvc: p.ReportingSvc,
		obsMetrics:   p.ObsMetrics,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	api.POST("/users", s.RegisterUser)

	authed := api.Group("")
	authed.Use(s.AuthRequired())

	authed.GET("/users/me", s.Me)
	authed.PATCH("/users/me", s.UpdateProfile)

	authed.POST("/movements", s.RecordMovement)
	authed.POST("/movements/batch", s.RecordMovementBatch)
	authed.GET("/movements", s.ListMovements)
	authed.GET("/movements/distribution", s.MovementTypeDistribution)
	authed.GET("/movements/:id", s.GetMovement)
	authed.PATCH("/movements/:id", s.UpdateMovementAnnotations)
	authed.DELETE("/movements/:id", s.DeleteMovement)

	authed.POST("/invoices", s.RecordInvoice)
	authed.POST("/invoices/batch", s.RecordInvoiceBatch)
	authed.POST("/invoices/scan", s.ScanInvoice)
	authed.GET("/invoices", s.ListInvoices)
	authed.GET("/invoices/:id", s.GetInvoice)
	authed.PATCH("/invoices/:id", s.UpdateInvoice)
	authed.DELETE("/invoices/:id", s.DeleteInvoice)

	authed.POST("/carbon/daily/calculate", s.CalculateDailyFootprint)
	authed.GET("/carbon/daily", s.GetDailyFootprint)
	authed.GET("/carbon/daily/range", s.ListDailyFootprints)
	authed.PUT("/carbon/goal", s.SetDailyGoal)
	authed.GET("/carbon/stats", s.UserStats)
	authed.GET("/carbon/stats/movements", s.MovementStats)
	authed.GET("/carbon/trends", s.Trends)
	authed.GET("/carbon/leaderboard", s.Leaderboard)
	authed.GET("/carbon/categories", s.CategoryDistribution)
	authed.GET("/carbon/stores", s.StoreStats)
}
