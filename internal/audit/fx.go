package audit

import (
	"github.com/prompttemplates/marketplace/internal/audit/service"
	"go.uber.org/fx"
)

var Module = fx.Module("audit.service",
	fx.Provide(service.NewService),
)
