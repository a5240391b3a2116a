package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/shelfpulselabs/shelfpulse/internal/clock"
	ingestdomain "github.com/shelfpulselabs/shelfpulse/internal/ingest/domain"
	referencedomain "github.com/shelfpulselabs/shelfpulse/internal/reference/domain"
	referenceservice "github.com/shelfpulselabs/shelfpulse/internal/reference/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var testNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func setupIngestService(t *testing.T) (ingestdomain.Service, referencedomain.Service, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&ingestdomain.RawEvent{},
		&ingestdomain.EnrichedSnapshot{},
		&referencedomain.StoreCity{},
		&referencedomain.CategoryRef{},
	))
	t.Cleanup(func() {
		for _, table := range []string{"raw_events", "enriched_snapshots", "store_cities", "category_refs"} {
			db.Exec("DELETE FROM " + table)
		}
	})

	log := zap.NewNop()
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	clk := clock.Fixed{T: testNow}

	refSvc := referenceservice.NewService(referenceservice.ServiceParam{DB: db, Log: log, Clock: clk})
	svc := NewService(ServiceParam{DB: db, Log: log, Clock: clk, GenID: node, RefSvc: refSvc})
	return svc, refSvc, db
}

func testEvent(storeID, skuID string, at time.Time, inventory int64) ingestdomain.CreateEventRequest {
	return ingestdomain.CreateEventRequest{
		RecordedAt:   at,
		L1CategoryID: 1,
		L2CategoryID: 10,
		StoreID:      storeID,
		SkuID:        skuID,
		Inventory:    inventory,
	}
}

func TestIngestEvents(t *testing.T) {
	svc, _, db := setupIngestService(t)
	ctx := context.Background()

	at := time.Date(2026, 3, 14, 6, 0, 0, 0, time.UTC)
	count, err := svc.IngestEvents(ctx, []ingestdomain.CreateEventRequest{
		testEvent("store-1", "sku-1", at, 10),
		testEvent("store-1", "sku-1", at.Add(time.Hour), 7),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	var rows []ingestdomain.RawEvent
	require.NoError(t, db.Order("recorded_at").Find(&rows).Error)
	require.Len(t, rows, 2)
	assert.NotEmpty(t, rows[0].ID)
	assert.NotEqual(t, rows[0].ID, rows[1].ID)
	assert.Equal(t, int64(10), rows[0].Inventory)
}

func TestIngestEventsValidation(t *testing.T) {
	svc, _, _ := setupIngestService(t)
	ctx := context.Background()
	at := time.Date(2026, 3, 14, 6, 0, 0, 0, time.UTC)

	cases := []struct {
		name  string
		event ingestdomain.CreateEventRequest
		want  error
	}{
		{"missing store", testEvent("  ", "sku-1", at, 1), ingestdomain.ErrInvalidStoreID},
		{"missing sku", testEvent("store-1", "", at, 1), ingestdomain.ErrInvalidSkuID},
		{"zero timestamp", testEvent("store-1", "sku-1", time.Time{}, 1), ingestdomain.ErrInvalidRecordedAt},
		{"negative inventory", testEvent("store-1", "sku-1", at, -1), ingestdomain.ErrInvalidInventory},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.IngestEvents(ctx, []ingestdomain.CreateEventRequest{tc.event})
			assert.ErrorIs(t, err, tc.want)
		})
	}

	_, err := svc.IngestEvents(ctx, nil)
	assert.ErrorIs(t, err, ingestdomain.ErrEmptyBatch)
}

const csvHeaderLine = "timestamp,l1_category_id,l2_category_id,store_id,sku_id,sku_name,selling_price,mrp,inventory,image_url,brand_id,brand,unit\n"

func TestIngestCSV(t *testing.T) {
	svc, _, db := setupIngestService(t)
	ctx := context.Background()

	body := csvHeaderLine +
		"2026-03-14T06:00:00Z,1,10,store-1,sku-1,Whole Milk 1L,64,68,24,,br-1,Acme,1 unit\n" +
		"2026-03-14T07:00:00Z,1,10,store-1,sku-1,Whole Milk 1L,,,18,,br-1,Acme,1 unit\n"

	count, err := svc.IngestCSV(ctx, strings.NewReader(body))
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	var rows []ingestdomain.RawEvent
	require.NoError(t, db.Order("recorded_at").Find(&rows).Error)
	require.Len(t, rows, 2)
	require.NotNil(t, rows[0].SellingPrice)
	assert.InDelta(t, 64.0, *rows[0].SellingPrice, 1e-9)
	// Blank price columns stay absent rather than zero.
	assert.Nil(t, rows[1].SellingPrice)
	assert.Nil(t, rows[1].MRP)
}

func TestIngestCSVRejectsWholeBatch(t *testing.T) {
	svc, _, db := setupIngestService(t)
	ctx := context.Background()

	body := csvHeaderLine +
		"2026-03-14T06:00:00Z,1,10,store-1,sku-1,Milk,64,68,24,,,,unit\n" +
		"not-a-timestamp,1,10,store-1,sku-1,Milk,64,68,18,,,,unit\n"

	_, err := svc.IngestCSV(ctx, strings.NewReader(body))
	assert.ErrorIs(t, err, ingestdomain.ErrMalformedCSV)

	// The valid first row must not have been ingested.
	var count int64
	require.NoError(t, db.Model(&ingestdomain.RawEvent{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestIngestCSVBadHeader(t *testing.T) {
	svc, _, _ := setupIngestService(t)

	body := "timestamp,store_id\n2026-03-14T06:00:00Z,store-1\n"
	_, err := svc.IngestCSV(context.Background(), strings.NewReader(body))
	assert.ErrorIs(t, err, ingestdomain.ErrMalformedCSV)
}

func TestEnrich(t *testing.T) {
	svc, refSvc, db := setupIngestService(t)
	ctx := context.Background()

	_, err := refSvc.ReplaceStoreCities(ctx, referencedomain.ReplaceStoreCitiesRequest{
		Stores: []referencedomain.StoreCityInput{{StoreID: "store-1", CityName: "bangalore"}},
	})
	require.NoError(t, err)
	_, err = refSvc.ReplaceCategoryRefs(ctx, referencedomain.ReplaceCategoryRefsRequest{
		Categories: []referencedomain.CategoryRefInput{
			{L1CategoryID: 1, L2CategoryID: 10, L1Category: "Dairy", L2Category: "Milk"},
		},
	})
	require.NoError(t, err)

	at := time.Date(2026, 3, 14, 6, 0, 0, 0, time.UTC)
	events := []ingestdomain.CreateEventRequest{
		testEvent("store-1", "sku-1", at, 10),
		// Unknown store, dropped at the join.
		testEvent("store-9", "sku-1", at, 5),
	}
	// Unknown category pair, dropped at the join.
	badCat := testEvent("store-1", "sku-2", at, 3)
	badCat.L2CategoryID = 99
	events = append(events, badCat)

	_, err = svc.IngestEvents(ctx, events)
	require.NoError(t, err)

	result, err := svc.Enrich(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, result.RawEvents)
	assert.Equal(t, 1, result.Enriched)
	assert.Equal(t, 1, result.DroppedStore)
	assert.Equal(t, 1, result.DroppedCategory)

	var snapshots []ingestdomain.EnrichedSnapshot
	require.NoError(t, db.Find(&snapshots).Error)
	require.Len(t, snapshots, 1)
	assert.Equal(t, "bangalore", snapshots[0].CityName)
	assert.Equal(t, "Dairy", snapshots[0].CategoryName)
	assert.Equal(t, "Milk", snapshots[0].SubCategoryName)
}

func TestEnrichRebuildsWholesale(t *testing.T) {
	svc, refSvc, db := setupIngestService(t)
	ctx := context.Background()

	_, err := refSvc.ReplaceStoreCities(ctx, referencedomain.ReplaceStoreCitiesRequest{
		Stores: []referencedomain.StoreCityInput{{StoreID: "store-1", CityName: "bangalore"}},
	})
	require.NoError(t, err)
	_, err = refSvc.ReplaceCategoryRefs(ctx, referencedomain.ReplaceCategoryRefsRequest{
		Categories: []referencedomain.CategoryRefInput{
			{L1CategoryID: 1, L2CategoryID: 10, L1Category: "Dairy", L2Category: "Milk"},
		},
	})
	require.NoError(t, err)

	at := time.Date(2026, 3, 14, 6, 0, 0, 0, time.UTC)
	_, err = svc.IngestEvents(ctx, []ingestdomain.CreateEventRequest{testEvent("store-1", "sku-1", at, 10)})
	require.NoError(t, err)

	_, err = svc.Enrich(ctx)
	require.NoError(t, err)
	_, err = svc.Enrich(ctx)
	require.NoError(t, err)

	// Re-running does not duplicate snapshots.
	var count int64
	require.NoError(t, db.Model(&ingestdomain.EnrichedSnapshot{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
