package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	auditdomain "github.com/prompttemplates/marketplace/internal/audit/domain"
	authdomain "github.com/prompttemplates/marketplace/internal/auth/domain"
	"github.com/prompttemplates/marketplace/internal/config"
	"github.com/prompttemplates/marketplace/internal/observability/logger"
	"github.com/prompttemplates/marketplace/internal/observability/metrics"
	paymentdomain "github.com/prompttemplates/marketplace/internal/payment/domain"
	settingsdomain "github.com/prompttemplates/marketplace/internal/settings/domain"
	"github.com/prompttemplates/marketplace/internal/stats"
	"github.com/prompttemplates/marketplace/internal/storage"
	templatedomain "github.com/prompttemplates/marketplace/internal/template/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	Cfg         config.Config
	Log         *zap.Logger
	DB          *gorm.DB
	TemplateSvc templatedomain.Service
	SettingsSvc settingsdomain.Service
	PaymentSvc  paymentdomain.Service
	AuthSvc     authdomain.Service
	StatsSvc    stats.Service
	AuditSvc    auditdomain.Service `optional:"true"`
	Store       *storage.Store
	Metrics     *metrics.Provider
}

type Server struct {
	cfg         config.Config
	log         *zap.Logger
	db          *gorm.DB
	templateSvc templatedomain.Service
	settingsSvc settingsdomain.Service
	paymentSvc  paymentdomain.Service
	authSvc     authdomain.Service
	statsSvc    stats.Service
	auditSvc    auditdomain.Service
	store       *storage.Store
	metrics     *metrics.Provider

	loginLimiter   *rateLimiter
	paymentLimiter *rateLimiter
}

func NewServer(p Params) *Server {
	return &Server{
		cfg:            p.Cfg,
		log:            p.Log.Named("server"),
		db:             p.DB,
		templateSvc:    p.TemplateSvc,
		settingsSvc:    p.SettingsSvc,
		paymentSvc:     p.PaymentSvc,
		authSvc:        p.AuthSvc,
		statsSvc:       p.StatsSvc,
		auditSvc:       p.AuditSvc,
		store:          p.Store,
		metrics:        p.Metrics,
		loginLimiter:   newRateLimiter(p.Cfg.LoginRateLimit, p.Cfg.RateLimitWindow),
		paymentLimiter: newRateLimiter(p.Cfg.PaymentRateLimit, p.Cfg.RateLimitWindow),
	}
}

func NewEngine(cfg config.Config, log *zap.Logger, httpMetrics *metrics.HTTPMetrics) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(logger.GinMiddleware(logger.MiddlewareConfig{
		Log:       log,
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	engine.Use(metrics.GinMiddleware(httpMetrics))
	return engine
}

// RegisterRoutes mounts the public and admin APIs.
func (s *Server) RegisterRoutes(engine *gin.Engine) {
	engine.GET("/healthz", s.Healthz)
	engine.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	engine.GET("/download/:transactionId", s.DownloadPurchase)

	api := engine.Group("/api")
	{
		api.GET("/templates", s.ListTemplates)
		api.GET("/settings", s.GetSettings)
		api.POST("/auth/login", s.rateLimited(s.loginLimiter), s.Login)
		api.POST("/payments/mpesa", s.rateLimited(s.paymentLimiter), s.InitiatePayment)
		api.GET("/payments/status", s.PaymentStatus)

		admin := api.Group("", s.AdminRequired())
		{
			admin.GET("/auth/validate", s.ValidateSession)
			admin.POST("/templates", s.CreateTemplate)
			admin.DELETE("/templates/:id", s.DeleteTemplate)
			admin.POST("/settings", s.UpdateSettings)
			admin.GET("/stats", s.Stats)
			admin.GET("/payments/recent", s.RecentPayments)
		}
	}

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, envelope{Success: false, Message: "Endpoint not found"})
	})
}

// RunHTTP starts the HTTP listener under the fx lifecycle.
func RunHTTP(lc fx.Lifecycle, cfg config.Config, log *zap.Logger, engine *gin.Engine) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}
