package export

import (
	"github.com/shelfpulselabs/shelfpulse/internal/export/service"
	"go.uber.org/fx"
)

var Module = fx.Module("export.service",
	fx.Provide(service.NewService),
)
