package ingest

import (
	"context"

	"github.com/shelfpulselabs/shelfpulse/internal/ingest/service"
	"go.uber.org/fx"
)

var Module = fx.Module("ingest.service",
	fx.Provide(service.NewService),
	fx.Provide(service.NewWatcher),
	fx.Invoke(registerWatcher),
)

func registerWatcher(lc fx.Lifecycle, w *service.Watcher) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error { return w.Start(ctx) },
		OnStop:  func(ctx context.Context) error { return w.Stop(ctx) },
	})
}
