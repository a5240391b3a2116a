package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shelfpulselabs/shelfpulse/internal/cache"
	"github.com/shelfpulselabs/shelfpulse/internal/clock"
	"github.com/shelfpulselabs/shelfpulse/internal/config"
	ingestdomain "github.com/shelfpulselabs/shelfpulse/internal/ingest/domain"
	ingestrepository "github.com/shelfpulselabs/shelfpulse/internal/ingest/repository"
	insightsdomain "github.com/shelfpulselabs/shelfpulse/internal/insights/domain"
	"github.com/shelfpulselabs/shelfpulse/internal/insights/repository"
	"github.com/shelfpulselabs/shelfpulse/internal/observability"
	"github.com/shelfpulselabs/shelfpulse/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock

	genID      *snowflake.Node
	workers    int
	repo       insightsdomain.Repository
	ingestRepo ingestdomain.Repository
	ingestSvc  ingestdomain.Service
	cache      cache.AvailabilityCache
	metrics    *observability.TransformMetrics
}

type ServiceParam struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	Clock     clock.Clock
	GenID     *snowflake.Node
	Config    config.Config
	IngestSvc ingestdomain.Service
	Cache     cache.AvailabilityCache         `optional:"true"`
	Metrics   *observability.TransformMetrics `optional:"true"`
}

func NewService(p ServiceParam) insightsdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("insights.service"),
		clock: p.Clock,

		genID:      p.GenID,
		workers:    p.Config.Transform.Workers,
		repo:       repository.Provide(),
		ingestRepo: ingestrepository.Provide(),
		ingestSvc:  p.IngestSvc,
		cache:      p.Cache,
		metrics:    p.Metrics,
	}
}

// Run executes the full derived-metrics transform: enrichment rebuild, sold
// quantity estimation, daily aggregation, availability and mode resolution,
// and the final assembly. The published city insight set is replaced in one
// transaction, so readers never observe a partial result.
func (s *Service) Run(ctx context.Context) (insightsdomain.RunSummary, error) {
	started := time.Now()
	runID := s.genID.Generate()
	log := s.log.With(zap.String("run_id", runID.String()))

	summary := insightsdomain.RunSummary{RunID: runID}

	enrichResult, err := s.ingestSvc.Enrich(ctx)
	if err != nil {
		return summary, s.failRun(err)
	}
	summary.RawEvents = enrichResult.RawEvents
	summary.Dropped = enrichResult.DroppedStore + enrichResult.DroppedCategory

	snapshots, err := s.ingestRepo.ListEnrichedSnapshots(ctx, s.db)
	if err != nil {
		return summary, s.failRun(err)
	}
	if len(snapshots) == 0 {
		return summary, insightsdomain.ErrNoSnapshots
	}
	summary.Snapshots = len(snapshots)

	rawListings, err := s.ingestRepo.ListRawListings(ctx, s.db)
	if err != nil {
		return summary, s.failRun(err)
	}

	records := EstimateSoldQuantities(snapshots, s.workers)
	summary.Groups = countGroups(snapshots)

	dailySummaries := AggregateDaily(records)
	availability := ComputeAvailability(snapshots, rawListings)
	modes := ResolveModes(snapshots)

	insights := AssembleInsights(dailySummaries, availability, modes, s.genID, runID, s.clock.Now(ctx))
	summary.InsightRows = len(insights)

	if err := s.repo.ReplaceCityInsights(ctx, s.db, insights); err != nil {
		return summary, s.failRun(err)
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			log.Warn("invalidate availability cache", zap.Error(err))
		}
	}

	summary.Duration = time.Since(started)
	if s.metrics != nil {
		s.metrics.Runs.WithLabelValues("success").Inc()
		s.metrics.RunDuration.Observe(summary.Duration.Seconds())
		s.metrics.InsightRows.Set(float64(summary.InsightRows))
	}
	log.Info("transform run complete",
		zap.Int("raw_events", summary.RawEvents),
		zap.Int("snapshots", summary.Snapshots),
		zap.Int("groups", summary.Groups),
		zap.Int("insight_rows", summary.InsightRows),
		zap.Int("dropped_at_join", summary.Dropped),
		zap.Duration("duration", summary.Duration))

	return summary, nil
}

func (s *Service) failRun(err error) error {
	if s.metrics != nil {
		s.metrics.Runs.WithLabelValues("error").Inc()
	}
	return err
}

func countGroups(snapshots []ingestdomain.EnrichedSnapshot) int {
	return len(partitionByStoreSku(snapshots))
}

func (s *Service) List(ctx context.Context, req insightsdomain.ListInsightsRequest) (insightsdomain.ListInsightsResponse, error) {
	page := pagination.Pagination{PageToken: req.PageToken, PageSize: req.PageSize}
	rows, total, err := s.repo.ListCityInsights(ctx, s.db, req, page)
	if err != nil {
		return insightsdomain.ListInsightsResponse{}, err
	}

	resp := insightsdomain.ListInsightsResponse{Insights: rows}
	resp.TotalSize = total
	resp.NextPageToken = page.NextToken(len(rows))
	return resp, nil
}

func (s *Service) Availability(ctx context.Context, skuID string) (*insightsdomain.SkuAvailabilityView, error) {
	skuID = strings.TrimSpace(skuID)
	if skuID == "" {
		return nil, insightsdomain.ErrInvalidSkuID
	}

	if s.cache != nil {
		if view, ok := s.cache.Get(ctx, skuID); ok {
			return view, nil
		}
	}

	storesInStock, listedStores, err := s.repo.SkuFootprint(ctx, s.db, skuID)
	if err != nil {
		return nil, err
	}
	listedDark, err := s.repo.RawSkuFootprint(ctx, s.db, skuID)
	if err != nil {
		return nil, err
	}
	totalDark, err := s.repo.TotalDarkStores(ctx, s.db)
	if err != nil {
		return nil, err
	}

	view := &insightsdomain.SkuAvailabilityView{SkuID: skuID}
	if listedStores > 0 || listedDark > 0 {
		view.StoresInStock = &storesInStock
		view.ListedStores = &listedStores
		view.ListedDarkStores = &listedDark

		wtOSALs := float64(0)
		if listedStores > 0 {
			wtOSALs = float64(storesInStock) / float64(listedStores) * 100
		}
		wtOSA := float64(0)
		if totalDark > 0 {
			wtOSA = float64(storesInStock) / float64(totalDark) * 100
		}
		view.WtOSALs = &wtOSALs
		view.WtOSA = &wtOSA
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, skuID, view); err != nil {
			s.log.Warn("cache availability view", zap.Error(err))
		}
	}
	return view, nil
}
