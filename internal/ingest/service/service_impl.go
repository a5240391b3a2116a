package service

import (
	"context"
	"crypto/rand"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/oklog/ulid/v2"
	"github.com/shelfpulselabs/shelfpulse/internal/clock"
	ingestdomain "github.com/shelfpulselabs/shelfpulse/internal/ingest/domain"
	"github.com/shelfpulselabs/shelfpulse/internal/ingest/repository"
	"github.com/shelfpulselabs/shelfpulse/internal/observability"
	referencedomain "github.com/shelfpulselabs/shelfpulse/internal/reference/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	clock   clock.Clock
	genID   *snowflake.Node
	repo    ingestdomain.Repository
	refSvc  referencedomain.Service
	metrics *observability.TransformMetrics
}

type ServiceParam struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	Clock   clock.Clock
	GenID   *snowflake.Node
	RefSvc  referencedomain.Service
	Metrics *observability.TransformMetrics `optional:"true"`
}

func NewService(p ServiceParam) ingestdomain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("ingest.service"),
		clock:   p.Clock,
		genID:   p.GenID,
		repo:    repository.Provide(),
		refSvc:  p.RefSvc,
		metrics: p.Metrics,
	}
}

func (s *Service) IngestEvents(ctx context.Context, events []ingestdomain.CreateEventRequest) (int, error) {
	if len(events) == 0 {
		return 0, ingestdomain.ErrEmptyBatch
	}

	now := s.clock.Now(ctx)
	rows := make([]ingestdomain.RawEvent, 0, len(events))
	for _, ev := range events {
		row, err := s.buildRawEvent(ev, now)
		if err != nil {
			return 0, err
		}
		rows = append(rows, row)
	}

	if err := s.repo.InsertRawEvents(ctx, s.db, rows); err != nil {
		return 0, err
	}
	s.log.Info("ingested raw events", zap.Int("count", len(rows)))
	return len(rows), nil
}

func (s *Service) buildRawEvent(ev ingestdomain.CreateEventRequest, now time.Time) (ingestdomain.RawEvent, error) {
	storeID := strings.TrimSpace(ev.StoreID)
	skuID := strings.TrimSpace(ev.SkuID)
	if storeID == "" {
		return ingestdomain.RawEvent{}, ingestdomain.ErrInvalidStoreID
	}
	if skuID == "" {
		return ingestdomain.RawEvent{}, ingestdomain.ErrInvalidSkuID
	}
	if ev.RecordedAt.IsZero() {
		return ingestdomain.RawEvent{}, ingestdomain.ErrInvalidRecordedAt
	}
	if ev.Inventory < 0 {
		return ingestdomain.RawEvent{}, ingestdomain.ErrInvalidInventory
	}

	id := ulid.MustNew(ulid.Timestamp(ev.RecordedAt.UTC()), rand.Reader)
	return ingestdomain.RawEvent{
		ID:           id.String(),
		RecordedAt:   ev.RecordedAt.UTC(),
		L1CategoryID: ev.L1CategoryID,
		L2CategoryID: ev.L2CategoryID,
		StoreID:      storeID,
		SkuID:        skuID,
		SkuName:      ev.SkuName,
		SellingPrice: ev.SellingPrice,
		MRP:          ev.MRP,
		Inventory:    ev.Inventory,
		ImageURL:     ev.ImageURL,
		BrandID:      ev.BrandID,
		Brand:        ev.Brand,
		Unit:         ev.Unit,
		CreatedAt:    now,
	}, nil
}

func (s *Service) Enrich(ctx context.Context) (ingestdomain.EnrichResult, error) {
	var result ingestdomain.EnrichResult

	events, err := s.repo.ListRawEvents(ctx, s.db)
	if err != nil {
		return result, err
	}
	result.RawEvents = len(events)

	cityByStore, err := s.refSvc.StoreCityIndex(ctx)
	if err != nil {
		return result, err
	}
	categories, err := s.refSvc.CategoryIndex(ctx)
	if err != nil {
		return result, err
	}

	now := s.clock.Now(ctx)
	enriched := make([]ingestdomain.EnrichedSnapshot, 0, len(events))
	for _, ev := range events {
		city, ok := cityByStore[ev.StoreID]
		if !ok {
			result.DroppedStore++
			continue
		}
		cat, ok := categories[referencedomain.CategoryKey{L1: ev.L1CategoryID, L2: ev.L2CategoryID}]
		if !ok {
			result.DroppedCategory++
			continue
		}

		enriched = append(enriched, ingestdomain.EnrichedSnapshot{
			ID:              s.genID.Generate(),
			RecordedAt:      ev.RecordedAt,
			StoreID:         ev.StoreID,
			CityName:        city,
			SkuID:           ev.SkuID,
			SkuName:         ev.SkuName,
			BrandID:         ev.BrandID,
			Brand:           ev.Brand,
			ImageURL:        ev.ImageURL,
			CategoryID:      ev.L1CategoryID,
			CategoryName:    cat.L1Category,
			SubCategoryID:   ev.L2CategoryID,
			SubCategoryName: cat.L2Category,
			MRP:             ev.MRP,
			SellingPrice:    ev.SellingPrice,
			Inventory:       ev.Inventory,
			CreatedAt:       now,
		})
	}
	result.Enriched = len(enriched)

	if err := s.repo.ReplaceEnrichedSnapshots(ctx, s.db, enriched); err != nil {
		return result, err
	}

	dropped := result.DroppedStore + result.DroppedCategory
	if dropped > 0 {
		// Expected when reference data lags behind the scrape.
		s.log.Warn("dropped raw events at enrichment join",
			zap.Int("missing_store_mapping", result.DroppedStore),
			zap.Int("missing_category_mapping", result.DroppedCategory))
		if s.metrics != nil {
			s.metrics.DroppedRows.Add(float64(dropped))
		}
	}
	s.log.Info("rebuilt enriched snapshots",
		zap.Int("raw_events", result.RawEvents),
		zap.Int("enriched", result.Enriched))

	return result, nil
}
