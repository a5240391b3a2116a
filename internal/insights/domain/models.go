// Package domain contains the intermediate records of the derived-metrics
// transform and the persisted city insight rows.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	ingestdomain "github.com/shelfpulselabs/shelfpulse/internal/ingest/domain"
)

// SoldQuantityRecord is an enriched snapshot extended with the lookahead
// inventory and the estimated units sold in the interval to the next
// observation of the same (store, sku).
type SoldQuantityRecord struct {
	Snapshot ingestdomain.EnrichedSnapshot

	// NextInventory is the inventory of the chronologically following
	// observation in the same (store, sku) group; nil on the last row.
	NextInventory *int64

	// EstQtySold is never negative.
	EstQtySold int64
}

// DailySkuSummary aggregates sold-quantity records to the
// (date, city, sku) grain.
type DailySkuSummary struct {
	Date     time.Time
	CityName string
	SkuID    string

	SkuName         string
	BrandID         string
	Brand           string
	ImageURL        string
	CategoryID      int64
	CategoryName    string
	SubCategoryID   int64
	SubCategoryName string

	Inventory   int64
	EstQtySold  int64
	EstSalesMRP float64
	EstSalesSP  float64

	// Discount is the mean of (mrp-sp)/mrp over rows with a usable mrp,
	// rounded to 4 decimal places; nil when no row qualifies.
	Discount *float64
}

// SkuAvailability counts the mapped store footprint of one sku over the
// whole batch.
type SkuAvailability struct {
	StoresInStock     int64
	TotalListedStores int64
}

// AvailabilityResult carries every availability figure the assembler needs.
type AvailabilityResult struct {
	PerSku map[string]SkuAvailability

	// ListedDarkStores counts distinct stores per sku from the raw,
	// pre-join event set; it may exceed the mapped footprint.
	ListedDarkStores map[string]int64

	// TotalDarkStores is the distinct store count across the entire raw
	// batch, all skus.
	TotalDarkStores int64
}

// WtOSALs is the sku's in-stock share of its own mapped footprint, in
// percent. Zero denominator yields 0.
func (r AvailabilityResult) WtOSALs(skuID string) float64 {
	avail, ok := r.PerSku[skuID]
	if !ok || avail.TotalListedStores == 0 {
		return 0
	}
	return float64(avail.StoresInStock) / float64(avail.TotalListedStores) * 100
}

// WtOSA is the sku's in-stock share of the whole fleet, in percent. Zero
// denominator yields 0.
func (r AvailabilityResult) WtOSA(skuID string) float64 {
	if r.TotalDarkStores == 0 {
		return 0
	}
	avail, ok := r.PerSku[skuID]
	if !ok {
		return 0
	}
	return float64(avail.StoresInStock) / float64(r.TotalDarkStores) * 100
}

// ModeValue holds the most frequently observed prices for one sku. A field
// is nil when the sku never carried that price.
type ModeValue struct {
	MRPMode          *float64
	SellingPriceMode *float64
}

// CityInsight is the final output row, one per (date, city, sku), rebuilt
// wholesale on every transform run.
type CityInsight struct {
	ID    snowflake.ID `gorm:"primaryKey" json:"id"`
	RunID snowflake.ID `gorm:"not null" json:"run_id"`

	InsightDate time.Time `gorm:"column:insight_date;not null;uniqueIndex:ux_city_insights_grain,priority:1" json:"date"`
	CityName    string    `gorm:"not null;uniqueIndex:ux_city_insights_grain,priority:2" json:"city_name"`
	SkuID       string    `gorm:"not null;uniqueIndex:ux_city_insights_grain,priority:3;index:ix_city_insights_sku" json:"sku_id"`

	SkuName         string `json:"sku_name"`
	BrandID         string `json:"brand_id"`
	Brand           string `json:"brand"`
	ImageURL        string `json:"image_url"`
	CategoryID      int64  `gorm:"not null" json:"category_id"`
	CategoryName    string `json:"category_name"`
	SubCategoryID   int64  `gorm:"not null" json:"sub_category_id"`
	SubCategoryName string `json:"sub_category_name"`

	Inventory   int64    `gorm:"not null" json:"inventory"`
	EstQtySold  int64    `gorm:"not null" json:"est_qty_sold"`
	EstSalesMRP float64  `gorm:"column:est_sales_mrp;not null" json:"est_sales_mrp"`
	EstSalesSP  float64  `gorm:"column:est_sales_sp;not null" json:"est_sales_sp"`
	Discount    *float64 `json:"discount,omitempty"`

	ListedDSCount    *int64   `gorm:"column:listed_ds_count" json:"listed_ds_count,omitempty"`
	DSCount          *int64   `gorm:"column:ds_count" json:"ds_count,omitempty"`
	WtOSA            *float64 `gorm:"column:wt_osa" json:"wt_osa,omitempty"`
	WtOSALs          *float64 `gorm:"column:wt_osa_ls" json:"wt_osa_ls,omitempty"`
	MRPMode          *float64 `gorm:"column:mrp_mode" json:"mrp_mode,omitempty"`
	SellingPriceMode *float64 `gorm:"column:selling_price_mode" json:"selling_price_mode,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (CityInsight) TableName() string { return "city_insights" }

// RunSummary reports one completed transform run.
type RunSummary struct {
	RunID       snowflake.ID  `json:"run_id"`
	RawEvents   int           `json:"raw_events"`
	Snapshots   int           `json:"snapshots"`
	Groups      int           `json:"groups"`
	InsightRows int           `json:"insight_rows"`
	Dropped     int           `json:"dropped_at_join"`
	Duration    time.Duration `json:"duration"`
}
