// @title           PromptTemplates API
// @version         1.0
// @description     Template marketplace storefront & back-office API

// @host      localhost:3000
// @BasePath  /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prompttemplates/marketplace/internal/audit"
	"github.com/prompttemplates/marketplace/internal/auth"
	"github.com/prompttemplates/marketplace/internal/clock"
	"github.com/prompttemplates/marketplace/internal/config"
	"github.com/prompttemplates/marketplace/internal/migration"
	"github.com/prompttemplates/marketplace/internal/observability"
	"github.com/prompttemplates/marketplace/internal/payment"
	"github.com/prompttemplates/marketplace/internal/revenue"
	"github.com/prompttemplates/marketplace/internal/seed"
	"github.com/prompttemplates/marketplace/internal/server"
	"github.com/prompttemplates/marketplace/internal/settings"
	"github.com/prompttemplates/marketplace/internal/stats"
	"github.com/prompttemplates/marketplace/internal/storage"
	"github.com/prompttemplates/marketplace/internal/template"
	"github.com/prompttemplates/marketplace/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,

		audit.Module,
		auth.Module,
		storage.Module,
		template.Module,
		settings.Module,
		payment.Module,
		stats.Module,
		revenue.Module,

		fx.Invoke(Bootstrap),

		fx.Provide(server.NewEngine),
		fx.Provide(server.NewServer),
		fx.Invoke(func(s *server.Server, engine *gin.Engine) {
			s.RegisterRoutes(engine)
		}),
		fx.Invoke(server.RunHTTP),
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}

// Bootstrap migrates the schema and seeds first-start defaults.
func Bootstrap(handle *gorm.DB, log *zap.Logger, cfg config.Config, node *snowflake.Node) error {
	if err := migration.Apply(handle, log); err != nil {
		return err
	}
	if cfg.SeedDefaults && !cfg.IsProduction() {
		return seed.EnsureDefaults(handle, node)
	}
	return nil
}
