// Package server exposes the HTTP API: event ingestion, reference uploads,
// transform runs, and insight reads.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shelfpulselabs/shelfpulse/internal/config"
	exportdomain "github.com/shelfpulselabs/shelfpulse/internal/export/domain"
	ingestdomain "github.com/shelfpulselabs/shelfpulse/internal/ingest/domain"
	insightsdomain "github.com/shelfpulselabs/shelfpulse/internal/insights/domain"
	referencedomain "github.com/shelfpulselabs/shelfpulse/internal/reference/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("server",
	fx.Provide(NewServer),
	fx.Invoke(registerServer),
)

type Server struct {
	log *zap.Logger
	cfg config.Config
	db  *gorm.DB

	ingestSvc    ingestdomain.Service
	referenceSvc referencedomain.Service
	insightsSvc  insightsdomain.Service
	exportSvc    exportdomain.Service
	registry     *prometheus.Registry

	httpServer *http.Server
}

type ServerParam struct {
	fx.In

	Log          *zap.Logger
	Config       config.Config
	DB           *gorm.DB
	IngestSvc    ingestdomain.Service
	ReferenceSvc referencedomain.Service
	InsightsSvc  insightsdomain.Service
	ExportSvc    exportdomain.Service
	Registry     *prometheus.Registry `optional:"true"`
}

func NewServer(p ServerParam) *Server {
	return &Server{
		log:          p.Log.Named("server"),
		cfg:          p.Config,
		db:           p.DB,
		ingestSvc:    p.IngestSvc,
		referenceSvc: p.ReferenceSvc,
		insightsSvc:  p.InsightsSvc,
		exportSvc:    p.ExportSvc,
		registry:     p.Registry,
	}
}

func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(s.requestLogger())

	r.GET("/readyz", s.Readiness)
	if s.registry != nil {
		// The gorm stats plugin registers against the default registerer,
		// so gather it alongside our own registry.
		gatherer := prometheus.Gatherers{s.registry, prometheus.DefaultGatherer}
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	v1 := r.Group("/v1")
	{
		v1.POST("/events", s.IngestEvents)
		v1.POST("/events/csv", s.IngestCSV)

		v1.PUT("/reference/stores", s.ReplaceStoreCities)
		v1.PUT("/reference/categories", s.ReplaceCategoryRefs)

		v1.POST("/transform/run", s.RunTransform)

		v1.GET("/insights", s.ListInsights)
		v1.GET("/insights/export", s.ExportInsights)
		v1.GET("/availability/:sku", s.GetAvailability)
	}
	return r
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debug("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}

func registerServer(lc fx.Lifecycle, s *Server) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			s.httpServer = &http.Server{
				Addr:              s.cfg.Server.Addr,
				Handler:           s.Router(),
				ReadHeaderTimeout: 10 * time.Second,
			}
			go func() {
				if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					s.log.Error("http server", zap.Error(err))
				}
			}()
			s.log.Info("http server listening", zap.String("addr", s.cfg.Server.Addr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if s.httpServer == nil {
				return nil
			}
			return s.httpServer.Shutdown(ctx)
		},
	})
}
