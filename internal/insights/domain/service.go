package domain

import (
	"context"
	"errors"
	"time"

	"github.com/shelfpulselabs/shelfpulse/pkg/db/pagination"
)

type ListInsightsRequest struct {
	Date      *time.Time `json:"date,omitempty"`
	CityName  string     `json:"city_name"`
	SkuID     string     `json:"sku_id"`
	PageToken string     `json:"page_token"`
	PageSize  int32      `json:"page_size"`
}

type ListInsightsResponse struct {
	pagination.PageInfo
	Insights []CityInsight `json:"insights"`
}

type Service interface {
	// Run executes the full derived-metrics transform and atomically
	// replaces the published city insight set.
	Run(ctx context.Context) (RunSummary, error)

	List(ctx context.Context, req ListInsightsRequest) (ListInsightsResponse, error)

	// Availability returns the whole-batch availability figures for one
	// sku, as of the last transform run.
	Availability(ctx context.Context, skuID string) (*SkuAvailabilityView, error)
}

// SkuAvailabilityView is the API shape of per-sku availability.
type SkuAvailabilityView struct {
	SkuID            string   `json:"sku_id"`
	StoresInStock    *int64   `json:"stores_in_stock,omitempty"`
	ListedStores     *int64   `json:"listed_stores,omitempty"`
	ListedDarkStores *int64   `json:"listed_ds_count,omitempty"`
	WtOSA            *float64 `json:"wt_osa,omitempty"`
	WtOSALs          *float64 `json:"wt_osa_ls,omitempty"`
}

var (
	ErrNoSnapshots     = errors.New("no_enriched_snapshots")
	ErrInvalidSkuID    = errors.New("invalid_sku_id")
	ErrInsightNotFound = errors.New("insight_not_found")
)
