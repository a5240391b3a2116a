// Package domain contains the raw scrape events and the enriched snapshots
// produced by the reference join.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// RawEvent is one scraped observation exactly as collected, before any
// reference mapping is applied. Append-only.
type RawEvent struct {
	ID           string    `gorm:"primaryKey" json:"id"`
	RecordedAt   time.Time `gorm:"not null;index" json:"recorded_at"`
	L1CategoryID int64     `gorm:"not null" json:"l1_category_id"`
	L2CategoryID int64     `gorm:"not null" json:"l2_category_id"`
	StoreID      string    `gorm:"not null;index:ix_raw_events_store_sku,priority:1" json:"store_id"`
	SkuID        string    `gorm:"not null;index:ix_raw_events_store_sku,priority:2" json:"sku_id"`
	SkuName      string    `json:"sku_name"`
	SellingPrice *float64  `json:"selling_price,omitempty"`
	MRP          *float64  `json:"mrp,omitempty"`
	Inventory    int64     `gorm:"not null" json:"inventory"`
	ImageURL     string    `json:"image_url"`
	BrandID      string    `json:"brand_id"`
	Brand        string    `json:"brand"`
	Unit         string    `json:"unit"`
	CreatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (RawEvent) TableName() string { return "raw_events" }

// EnrichedSnapshot is a raw event that survived both reference joins.
// Immutable once produced; the enrichment pass rebuilds the table wholesale.
type EnrichedSnapshot struct {
	ID              snowflake.ID `gorm:"primaryKey" json:"id"`
	RecordedAt      time.Time    `gorm:"not null;index:ix_enriched_snapshots_store_sku,priority:3" json:"recorded_at"`
	StoreID         string       `gorm:"not null;index:ix_enriched_snapshots_store_sku,priority:1" json:"store_id"`
	CityName        string       `gorm:"not null" json:"city_name"`
	SkuID           string       `gorm:"not null;index:ix_enriched_snapshots_store_sku,priority:2;index:ix_enriched_snapshots_sku" json:"sku_id"`
	SkuName         string       `json:"sku_name"`
	BrandID         string       `json:"brand_id"`
	Brand           string       `json:"brand"`
	ImageURL        string       `json:"image_url"`
	CategoryID      int64        `gorm:"not null" json:"category_id"`
	CategoryName    string       `json:"category_name"`
	SubCategoryID   int64        `gorm:"not null" json:"sub_category_id"`
	SubCategoryName string       `json:"sub_category_name"`
	MRP             *float64     `json:"mrp,omitempty"`
	SellingPrice    *float64     `json:"selling_price,omitempty"`
	Inventory       int64        `gorm:"not null" json:"inventory"`
	CreatedAt       time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (EnrichedSnapshot) TableName() string { return "enriched_snapshots" }

// RawListing is the (store, sku) projection of the raw event set used by the
// availability calculation; it deliberately ignores city mapping.
type RawListing struct {
	StoreID string
	SkuID   string
}
