package observability

import (
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

func fxLogger(log *zap.Logger) fxevent.Logger {
	l := &fxevent.ZapLogger{Logger: log.Named("fx")}
	l.UseLogLevel(zap.DebugLevel)
	return l
}
