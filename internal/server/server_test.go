package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/shelfpulselabs/shelfpulse/internal/clock"
	"github.com/shelfpulselabs/shelfpulse/internal/config"
	exportservice "github.com/shelfpulselabs/shelfpulse/internal/export/service"
	ingestdomain "github.com/shelfpulselabs/shelfpulse/internal/ingest/domain"
	ingestservice "github.com/shelfpulselabs/shelfpulse/internal/ingest/service"
	insightsdomain "github.com/shelfpulselabs/shelfpulse/internal/insights/domain"
	insightsservice "github.com/shelfpulselabs/shelfpulse/internal/insights/service"
	referencedomain "github.com/shelfpulselabs/shelfpulse/internal/reference/domain"
	referenceservice "github.com/shelfpulselabs/shelfpulse/internal/reference/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupTestServer(t *testing.T) *Server {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&ingestdomain.RawEvent{},
		&ingestdomain.EnrichedSnapshot{},
		&referencedomain.StoreCity{},
		&referencedomain.CategoryRef{},
		&insightsdomain.CityInsight{},
	))
	t.Cleanup(func() {
		for _, table := range []string{"raw_events", "enriched_snapshots", "store_cities", "category_refs", "city_insights"} {
			db.Exec("DELETE FROM " + table)
		}
	})

	log := zap.NewNop()
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	clk := clock.SystemClock{}
	cfg := config.Config{
		Export:    config.ExportConfig{Dir: t.TempDir()},
		Transform: config.TransformConfig{Workers: 2},
	}

	refSvc := referenceservice.NewService(referenceservice.ServiceParam{DB: db, Log: log, Clock: clk})
	ingestSvc := ingestservice.NewService(ingestservice.ServiceParam{DB: db, Log: log, Clock: clk, GenID: node, RefSvc: refSvc})
	insightsSvc := insightsservice.NewService(insightsservice.ServiceParam{
		DB: db, Log: log, Clock: clk, GenID: node, Config: cfg, IngestSvc: ingestSvc,
	})
	exportSvc := exportservice.NewService(exportservice.ServiceParam{DB: db, Log: log, Config: cfg})

	return NewServer(ServerParam{
		Log:          log,
		Config:       cfg,
		DB:           db,
		IngestSvc:    ingestSvc,
		ReferenceSvc: refSvc,
		InsightsSvc:  insightsSvc,
		ExportSvc:    exportSvc,
	})
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func seedPipeline(t *testing.T, router http.Handler) {
	t.Helper()

	w := doJSON(t, router, http.MethodPut, "/v1/reference/stores", referencedomain.ReplaceStoreCitiesRequest{
		Stores: []referencedomain.StoreCityInput{
			{StoreID: "store-1", CityName: "bangalore"},
			{StoreID: "store-2", CityName: "bangalore"},
		},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, router, http.MethodPut, "/v1/reference/categories", referencedomain.ReplaceCategoryRefsRequest{
		Categories: []referencedomain.CategoryRefInput{
			{L1CategoryID: 1, L2CategoryID: 10, L1Category: "Dairy", L2Category: "Milk"},
		},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	base := time.Date(2026, 3, 14, 6, 0, 0, 0, time.UTC)
	events := make([]ingestdomain.CreateEventRequest, 0, 4)
	for i, inv := range []int64{10, 4, 4, 2} {
		mrp := 100.0
		sp := 80.0
		events = append(events, ingestdomain.CreateEventRequest{
			RecordedAt:   base.Add(time.Duration(i) * time.Hour),
			L1CategoryID: 1,
			L2CategoryID: 10,
			StoreID:      "store-1",
			SkuID:        "sku-1",
			SkuName:      "Whole Milk 1L",
			MRP:          &mrp,
			SellingPrice: &sp,
			Inventory:    inv,
		})
	}
	w = doJSON(t, router, http.MethodPost, "/v1/events", events)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func TestServerPipeline(t *testing.T) {
	s := setupTestServer(t)
	router := s.Router()

	seedPipeline(t, router)

	w := doJSON(t, router, http.MethodPost, "/v1/transform/run", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var runResp struct {
		Data insightsdomain.RunSummary `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &runResp))
	assert.Equal(t, 4, runResp.Data.Snapshots)
	assert.Equal(t, 1, runResp.Data.InsightRows)

	w = doJSON(t, router, http.MethodGet, "/v1/insights?city=bangalore", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var listResp struct {
		Data []insightsdomain.CityInsight `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listResp))
	require.Len(t, listResp.Data, 1)
	row := listResp.Data[0]
	assert.Equal(t, "sku-1", row.SkuID)
	// 10->4 sells 6, 4->4 sells 0, 4->2 sells 2, last row 0.
	assert.Equal(t, int64(8), row.EstQtySold)
	assert.Equal(t, "Dairy", row.CategoryName)
	assert.Equal(t, "Milk", row.SubCategoryName)
}

func TestServerAvailability(t *testing.T) {
	s := setupTestServer(t)
	router := s.Router()

	seedPipeline(t, router)
	w := doJSON(t, router, http.MethodPost, "/v1/transform/run", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, router, http.MethodGet, "/v1/availability/sku-1", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Data insightsdomain.SkuAvailabilityView `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Data.WtOSALs)
	assert.InDelta(t, 100.0, *resp.Data.WtOSALs, 1e-9)

	// The in-stock figure has its own key. "ds_count" on insight rows is
	// the listed-store count, so the availability payload must not reuse it.
	var raw struct {
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
	assert.Contains(t, raw.Data, "stores_in_stock")
	assert.NotContains(t, raw.Data, "ds_count")
}

func TestServerValidation(t *testing.T) {
	s := setupTestServer(t)
	router := s.Router()

	// Empty batch is rejected.
	w := doJSON(t, router, http.MethodPost, "/v1/events", []ingestdomain.CreateEventRequest{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Transform without snapshots is a 404.
	w = doJSON(t, router, http.MethodPost, "/v1/transform/run", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Bad date filter.
	w = doJSON(t, router, http.MethodGet, "/v1/insights?date=14-03-2026", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Unknown export format.
	w = doJSON(t, router, http.MethodGet, "/v1/insights/export?format=xlsx", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestServerReadiness(t *testing.T) {
	s := setupTestServer(t)
	router := s.Router()

	w := doJSON(t, router, http.MethodGet, "/readyz", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ready")
}

func TestServerExportCSV(t *testing.T) {
	s := setupTestServer(t)
	router := s.Router()

	seedPipeline(t, router)
	w := doJSON(t, router, http.MethodPost, "/v1/transform/run", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, router, http.MethodGet, "/v1/insights/export?format=csv", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".csv")
	assert.Contains(t, w.Body.String(), "sku-1")
}
