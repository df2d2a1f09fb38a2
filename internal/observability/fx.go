package observability

import (
	"github.com/prompttemplates/marketplace/internal/observability/logger"
	"github.com/prompttemplates/marketplace/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

var Module = fx.Module("observability",
	fx.Provide(logger.New),
	fx.Provide(metrics.NewProvider),
	fx.Provide(metrics.NewHTTPMetrics),
	fx.Provide(metrics.NewPaymentMetrics),
	fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
		return &fxevent.ZapLogger{Logger: log}
	}),
)
