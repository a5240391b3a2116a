// Package observability provides the shared zap logger and prometheus
// registry for all services.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/shelfpulselabs/shelfpulse/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var Module = fx.Module("observability",
	fx.Provide(NewLogger),
	fx.Provide(NewRegistry),
	fx.Provide(NewTransformMetrics),
	fx.Provide(NewTelemetry),
	fx.WithLogger(fxLogger),
)

func NewLogger(cfg config.Config) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if cfg.Log.Level != "" {
		if err := level.Set(cfg.Log.Level); err != nil {
			return nil, err
		}
	}

	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(level)
	return zcfg.Build()
}

func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// TransformMetrics tracks pipeline runs end to end.
type TransformMetrics struct {
	Runs        *prometheus.CounterVec
	RunDuration prometheus.Histogram
	InsightRows prometheus.Gauge
	DroppedRows prometheus.Counter
}

func NewTransformMetrics(reg *prometheus.Registry) *TransformMetrics {
	m := &TransformMetrics{
		Runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shelfpulse",
			Name:      "transform_runs_total",
			Help:      "Transform runs by outcome.",
		}, []string{"outcome"}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "shelfpulse",
			Name:      "transform_run_duration_seconds",
			Help:      "Wall time of a full transform run.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
		}),
		InsightRows: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "shelfpulse",
			Name:      "transform_insight_rows",
			Help:      "City insight rows produced by the last run.",
		}),
		DroppedRows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "shelfpulse",
			Name:      "ingest_dropped_events_total",
			Help:      "Raw events dropped at the enrichment join for missing reference mappings.",
		}),
	}
	reg.MustRegister(m.Runs, m.RunDuration, m.InsightRows, m.DroppedRows)
	return m
}
