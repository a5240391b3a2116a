package domain

import (
	"context"
	"errors"
	"io"
	"time"
)

type CreateEventRequest struct {
	RecordedAt   time.Time `json:"timestamp" validate:"required"`
	L1CategoryID int64     `json:"l1_category_id" validate:"required"`
	L2CategoryID int64     `json:"l2_category_id" validate:"required"`
	StoreID      string    `json:"store_id" validate:"required,min=1"`
	SkuID        string    `json:"sku_id" validate:"required,min=1"`
	SkuName      string    `json:"sku_name"`
	SellingPrice *float64  `json:"selling_price,omitempty"`
	MRP          *float64  `json:"mrp,omitempty"`
	Inventory    int64     `json:"inventory"`
	ImageURL     string    `json:"image_url"`
	BrandID      string    `json:"brand_id"`
	Brand        string    `json:"brand"`
	Unit         string    `json:"unit"`
}

// EnrichResult reports the outcome of rebuilding the enriched snapshot set.
type EnrichResult struct {
	RawEvents       int `json:"raw_events"`
	Enriched        int `json:"enriched"`
	DroppedStore    int `json:"dropped_store"`
	DroppedCategory int `json:"dropped_category"`
}

type Service interface {
	IngestEvents(ctx context.Context, events []CreateEventRequest) (int, error)
	IngestCSV(ctx context.Context, r io.Reader) (int, error)

	// Enrich rebuilds enriched_snapshots from the full raw event set by
	// inner-joining both reference mappings. Rows missing either mapping
	// are dropped and counted.
	Enrich(ctx context.Context) (EnrichResult, error)
}

var (
	ErrEmptyBatch        = errors.New("empty_batch")
	ErrInvalidStoreID    = errors.New("invalid_store_id")
	ErrInvalidSkuID      = errors.New("invalid_sku_id")
	ErrInvalidRecordedAt = errors.New("invalid_recorded_at")
	ErrInvalidInventory  = errors.New("invalid_inventory")
	ErrMalformedCSV      = errors.New("malformed_csv")
)
