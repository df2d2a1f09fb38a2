package payment

import (
	"time"

	"github.com/prompttemplates/marketplace/internal/clock"
	"github.com/prompttemplates/marketplace/internal/config"
	"github.com/prompttemplates/marketplace/internal/payment/gateway"
	"github.com/prompttemplates/marketplace/internal/payment/gateway/mpesa"
	"github.com/prompttemplates/marketplace/internal/payment/service"
	"go.uber.org/fx"
)

var Module = fx.Module("payment.service",
	fx.Provide(func(cfg config.Config, clk clock.Clock) *gateway.Registry {
		return gateway.NewRegistry(mpesa.New(cfg.PaymentSuccessRate, clk, time.Now().UnixNano()))
	}),
	fx.Provide(service.NewService),
)
