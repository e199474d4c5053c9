package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/trash2cash/platform/internal/account"
	accountdomain "github.com/trash2cash/platform/internal/account/domain"
	"github.com/trash2cash/platform/internal/alert"
	"github.com/trash2cash/platform/internal/audit"
	auditdomain "github.com/trash2cash/platform/internal/audit/domain"
	"github.com/trash2cash/platform/internal/bin"
	bindomain "github.com/trash2cash/platform/internal/bin/domain"
	"github.com/trash2cash/platform/internal/camera"
	"github.com/trash2cash/platform/internal/classifier"
	"github.com/trash2cash/platform/internal/config"
	"github.com/trash2cash/platform/internal/disposal"
	disposaldomain "github.com/trash2cash/platform/internal/disposal/domain"
	"github.com/trash2cash/platform/internal/hardware"
	"github.com/trash2cash/platform/internal/identity"
	"github.com/trash2cash/platform/internal/issue"
	issuedomain "github.com/trash2cash/platform/internal/issue/domain"
	"github.com/trash2cash/platform/internal/notification"
	notificationdomain "github.com/trash2cash/platform/internal/notification/domain"
	"github.com/trash2cash/platform/internal/observability"
	obsmiddleware "github.com/trash2cash/platform/internal/observability/logger"
	obsmetrics "github.com/trash2cash/platform/internal/observability/metrics"
	obstracing "github.com/trash2cash/platform/internal/observability/tracing"
	"github.com/trash2cash/platform/internal/points"
	"github.com/trash2cash/platform/internal/profile"
	profiledomain "github.com/trash2cash/platform/internal/profile/domain"
	"github.com/trash2cash/platform/internal/providers"
	"github.com/trash2cash/platform/internal/ratelimit"
	"github.com/trash2cash/platform/internal/redemption"
	"github.com/trash2cash/platform/internal/reference"
	referencedomain "github.com/trash2cash/platform/internal/reference/domain"
	redemptiondomain "github.com/trash2cash/platform/internal/redemption/domain"
	"github.com/trash2cash/platform/internal/telemetry"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	config.Module,
	fx.Provide(registerGin),
	providers.Module,
	alert.Module,
	account.Module,
	profile.Module,
	identity.Module,
	bin.Module,
	points.Module,
	classifier.Module,
	disposal.Module,
	redemption.Module,
	issue.Module,
	notification.Module,
	camera.Module,
	hardware.Module,
	ratelimit.Module,
	telemetry.Module,
	audit.Module,
	reference.Module,
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
	engine *gin.Engine
	cfg    config.Config
	db     *gorm.DB
	genID  *snowflake.Node

	accounts      accountdomain.Service
	profiles      profiledomain.Service
	resolver      *identity.Resolver
	bins          bindomain.Service
	disposals     disposaldomain.Service
	redemptions   redemptiondomain.Service
	issues        issuedomain.Service
	notifications notificationdomain.Service
	cameras       *camera.Registry
	controller    *hardware.Controller
	limiter       *ratelimit.DisposeLimiter
	audits        auditdomain.Service
	references    referencedomain.Repository
	obsMetrics    *obsmetrics.Metrics
}

type ServerParams struct {
	fx.In

	Gin           *gin.Engine
	Cfg           config.Config
	DB            *gorm.DB
	GenID         *snowflake.Node
	Accounts      accountdomain.Service
	Profiles      profiledomain.Service
	Resolver      *identity.Resolver
	Bins          bindomain.Service
	Disposals     disposaldomain.Service
	Redemptions   redemptiondomain.Service
	Issues        issuedomain.Service
	Notifications notificationdomain.Service
	Cameras       *camera.Registry
	Controller    *hardware.Controller
	Limiter       *ratelimit.DisposeLimiter `optional:"true"`
	Audits        auditdomain.Service
	References    referencedomain.Repository
	ObsMetrics    *obsmetrics.Metrics `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:        p.Gin,
		cfg:           p.Cfg,
		db:            p.DB,
		genID:         p.GenID,
		accounts:      p.Accounts,
		profiles:      p.Profiles,
		resolver:      p.Resolver,
		bins:          p.Bins,
		disposals:     p.Disposals,
		redemptions:   p.Redemptions,
		issues:        p.Issues,
		notifications: p.Notifications,
		cameras:       p.Cameras,
		controller:    p.Controller,
		limiter:       p.Limiter,
		audits:        p.Audits,
		references:    p.References,
		obsMetrics:    p.ObsMetrics,
	}

	svc.registerAPIRoutes()
	svc.registerAdminRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	// -------- Mobile app --------
	api.POST("/mobile/register", s.Register)
	api.POST("/mobile/login", s.Login)
	api.GET("/mobile/profile/:id", s.GetProfile)
	api.POST("/mobile/profile/:id/qr", s.RegenerateQR)

	// -------- QR scanning at the bin --------
	api.POST("/qr/scan", s.ScanQR)
	api.POST("/qr/validate", s.ValidateQR)
	api.POST("/qr/start-disposal", s.StartDisposal)
	api.GET("/qr/status", s.QRStatus)

	// -------- Camera scan sessions --------
	api.POST("/camera/start", s.StartCameraSession)
	api.POST("/camera/:id/stop", s.StopCameraSession)
	api.GET("/camera/:id/frame", s.GetCameraFrame)
	api.POST("/camera/:id/frame", s.SubmitCameraFrame)
	api.GET("/camera/:id/qr", s.GetCameraQR)
	api.DELETE("/camera/:id/qr", s.ClearCameraQR)

	// -------- Disposals --------
	api.POST("/dispose", s.Dispose)
	api.GET("/disposals", s.ListDisposals)

	// -------- Bins --------
	api.GET("/bins", s.ListBins)
	api.POST("/bins", s.RegisterBin)
	api.GET("/bins/:code", s.GetBin)
	api.POST("/bins/:code/checkin", s.BinCheckin)

	// -------- Redemptions --------
	api.POST("/redemptions", s.SubmitRedemption)
	api.GET("/redemptions", s.ListRedemptions)
	api.GET("/redemptions/:id", s.GetRedemption)

	// -------- Issues --------
	api.POST("/issues", s.SubmitIssue)
	api.GET("/issues", s.ListIssues)
	api.GET("/issues/:id", s.GetIssue)

	// -------- Reference data --------
	api.GET("/reference/bill-providers", s.ListBillProviders)
	api.GET("/reference/charities", s.ListCharities)

	// -------- Notifications --------
	api.GET("/notifications", s.ListNotifications)
	api.POST("/notifications/:id/read", s.MarkNotificationRead)
	api.POST("/notifications/read-all", s.MarkAllNotificationsRead)
}

func (s *Server) registerAdminRoutes() {
	admin := s.engine.Group("/admin")

	admin.POST("/bins/:id/status", s.SetBinStatus)

	admin.POST("/redemptions/:id/approve", s.ApproveRedemption)
	admin.POST("/redemptions/:id/reject", s.RejectRedemption)
	admin.POST("/redemptions/:id/complete", s.CompleteRedemption)

	admin.POST("/issues/:id/status", s.SetIssueStatus)

	admin.GET("/audit-logs", s.ListAuditLogs)
}
