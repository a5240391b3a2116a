package service

import (
	"testing"
	"time"

	ingestdomain "github.com/shelfpulselabs/shelfpulse/internal/ingest/domain"
	insightsdomain "github.com/shelfpulselabs/shelfpulse/internal/insights/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func soldRecord(storeID, skuID, city string, at time.Time, inventory, estSold int64, mrp, sp *float64) insightsdomain.SoldQuantityRecord {
	return insightsdomain.SoldQuantityRecord{
		Snapshot: ingestdomain.EnrichedSnapshot{
			StoreID:      storeID,
			SkuID:        skuID,
			CityName:     city,
			RecordedAt:   at,
			Inventory:    inventory,
			MRP:          mrp,
			SellingPrice: sp,
		},
		EstQtySold: estSold,
	}
}

func TestAggregateDailyGrainAndSums(t *testing.T) {
	day1 := time.Date(2026, 3, 14, 8, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 3, 15, 8, 0, 0, 0, time.UTC)

	records := []insightsdomain.SoldQuantityRecord{
		soldRecord("store-1", "sku-1", "bangalore", day1, 10, 6, floatPtr(100), floatPtr(80)),
		soldRecord("store-2", "sku-1", "bangalore", day1.Add(time.Hour), 4, 2, floatPtr(100), floatPtr(80)),
		soldRecord("store-3", "sku-1", "mumbai", day1, 7, 1, floatPtr(100), floatPtr(90)),
		soldRecord("store-1", "sku-1", "bangalore", day2, 20, 5, floatPtr(100), floatPtr(80)),
	}

	summaries := AggregateDaily(records)
	require.Len(t, summaries, 3)

	// Sorted by date, city, sku.
	blr := summaries[0]
	assert.Equal(t, "bangalore", blr.CityName)
	assert.Equal(t, time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), blr.Date)
	assert.Equal(t, int64(14), blr.Inventory) // 10 + 4
	assert.Equal(t, int64(8), blr.EstQtySold) // 6 + 2
	assert.InDelta(t, 800.0, blr.EstSalesMRP, 1e-9)
	assert.InDelta(t, 640.0, blr.EstSalesSP, 1e-9)

	mum := summaries[1]
	assert.Equal(t, "mumbai", mum.CityName)
	assert.Equal(t, int64(1), mum.EstQtySold)

	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), summaries[2].Date)
}

func TestAggregateDailyDiscount(t *testing.T) {
	day := time.Date(2026, 3, 14, 8, 0, 0, 0, time.UTC)

	records := []insightsdomain.SoldQuantityRecord{
		// (100-80)/100 = 0.2 and (200-170)/200 = 0.15 average to 0.175.
		soldRecord("store-1", "sku-1", "bangalore", day, 10, 0, floatPtr(100), floatPtr(80)),
		soldRecord("store-2", "sku-1", "bangalore", day, 10, 0, floatPtr(200), floatPtr(170)),
		// Zero mrp rows are excluded from the ratio entirely.
		soldRecord("store-3", "sku-1", "bangalore", day, 10, 0, floatPtr(0), floatPtr(5)),
		// Absent mrp likewise.
		soldRecord("store-4", "sku-1", "bangalore", day, 10, 0, nil, floatPtr(5)),
	}

	summaries := AggregateDaily(records)
	require.Len(t, summaries, 1)
	require.NotNil(t, summaries[0].Discount)
	assert.InDelta(t, 0.175, *summaries[0].Discount, 1e-9)
}

func TestAggregateDailyDiscountRounding(t *testing.T) {
	day := time.Date(2026, 3, 14, 8, 0, 0, 0, time.UTC)

	// (100-66.67)/100 = 0.3333 after rounding to four decimals.
	records := []insightsdomain.SoldQuantityRecord{
		soldRecord("store-1", "sku-1", "bangalore", day, 1, 0, floatPtr(100), floatPtr(66.67)),
	}

	summaries := AggregateDaily(records)
	require.Len(t, summaries, 1)
	require.NotNil(t, summaries[0].Discount)
	assert.InDelta(t, 0.3333, *summaries[0].Discount, 1e-12)
}

func TestAggregateDailyNoPricedRows(t *testing.T) {
	day := time.Date(2026, 3, 14, 8, 0, 0, 0, time.UTC)

	records := []insightsdomain.SoldQuantityRecord{
		soldRecord("store-1", "sku-1", "bangalore", day, 10, 3, nil, nil),
	}

	summaries := AggregateDaily(records)
	require.Len(t, summaries, 1)
	assert.Nil(t, summaries[0].Discount)
	assert.Zero(t, summaries[0].EstSalesMRP)
	assert.Zero(t, summaries[0].EstSalesSP)
	assert.Equal(t, int64(3), summaries[0].EstQtySold)
}

func TestAggregateDailyAbsentSellingPriceCountsAsFullDiscount(t *testing.T) {
	day := time.Date(2026, 3, 14, 8, 0, 0, 0, time.UTC)

	records := []insightsdomain.SoldQuantityRecord{
		soldRecord("store-1", "sku-1", "bangalore", day, 10, 0, floatPtr(100), nil),
	}

	summaries := AggregateDaily(records)
	require.Len(t, summaries, 1)
	require.NotNil(t, summaries[0].Discount)
	assert.InDelta(t, 1.0, *summaries[0].Discount, 1e-9)
}

func TestAggregateDailyRepresentativeIsEarliest(t *testing.T) {
	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

	late := soldRecord("store-1", "sku-1", "bangalore", day.Add(10*time.Hour), 5, 0, nil, nil)
	late.Snapshot.SkuName = "Later Name"
	early := soldRecord("store-2", "sku-1", "bangalore", day.Add(2*time.Hour), 5, 0, nil, nil)
	early.Snapshot.SkuName = "Earlier Name"

	// Input order must not matter.
	summaries := AggregateDaily([]insightsdomain.SoldQuantityRecord{late, early})
	require.Len(t, summaries, 1)
	assert.Equal(t, "Earlier Name", summaries[0].SkuName)
}

func floatPtr(v float64) *float64 {
	return &v
}
