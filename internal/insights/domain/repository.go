package domain

import (
	"context"

	"github.com/shelfpulselabs/shelfpulse/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	// ReplaceCityInsights deletes the prior published set and inserts the
	// new one in a single transaction.
	ReplaceCityInsights(ctx context.Context, db *gorm.DB, rows []CityInsight) error

	ListCityInsights(ctx context.Context, db *gorm.DB, req ListInsightsRequest, page pagination.Pagination) ([]CityInsight, int64, error)
	ListAllCityInsights(ctx context.Context, db *gorm.DB) ([]CityInsight, error)

	// SkuFootprint aggregates the mapped footprint of one sku; both counts
	// are zero when the sku is absent from the enriched set.
	SkuFootprint(ctx context.Context, db *gorm.DB, skuID string) (storesInStock, listedStores int64, err error)

	// RawSkuFootprint counts distinct stores carrying the sku in the raw,
	// pre-join event set.
	RawSkuFootprint(ctx context.Context, db *gorm.DB, skuID string) (int64, error)

	// TotalDarkStores counts distinct stores across the entire raw batch.
	TotalDarkStores(ctx context.Context, db *gorm.DB) (int64, error)
}
