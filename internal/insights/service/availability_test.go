package service

import (
	"testing"

	ingestdomain "github.com/shelfpulselabs/shelfpulse/internal/ingest/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeAvailability(t *testing.T) {
	snapshots := []ingestdomain.EnrichedSnapshot{
		{StoreID: "store-1", SkuID: "sku-1", Inventory: 5},
		{StoreID: "store-1", SkuID: "sku-1", Inventory: 0},
		{StoreID: "store-2", SkuID: "sku-1", Inventory: 0},
		{StoreID: "store-3", SkuID: "sku-1", Inventory: 2},
		{StoreID: "store-1", SkuID: "sku-2", Inventory: 0},
	}
	// The raw listing set is wider than the mapped one: store-4 never
	// matched a city but still lists both skus.
	rawListings := []ingestdomain.RawListing{
		{StoreID: "store-1", SkuID: "sku-1"},
		{StoreID: "store-2", SkuID: "sku-1"},
		{StoreID: "store-3", SkuID: "sku-1"},
		{StoreID: "store-4", SkuID: "sku-1"},
		{StoreID: "store-1", SkuID: "sku-2"},
		{StoreID: "store-4", SkuID: "sku-2"},
	}

	result := ComputeAvailability(snapshots, rawListings)

	require.Contains(t, result.PerSku, "sku-1")
	// Any positive inventory snapshot marks the store in stock for the
	// whole batch.
	assert.Equal(t, int64(2), result.PerSku["sku-1"].StoresInStock)
	assert.Equal(t, int64(3), result.PerSku["sku-1"].TotalListedStores)

	assert.Equal(t, int64(0), result.PerSku["sku-2"].StoresInStock)
	assert.Equal(t, int64(1), result.PerSku["sku-2"].TotalListedStores)

	assert.Equal(t, int64(4), result.ListedDarkStores["sku-1"])
	assert.Equal(t, int64(2), result.ListedDarkStores["sku-2"])
	assert.Equal(t, int64(4), result.TotalDarkStores)
}

func TestAvailabilityRatios(t *testing.T) {
	snapshots := []ingestdomain.EnrichedSnapshot{
		{StoreID: "store-1", SkuID: "sku-1", Inventory: 5},
		{StoreID: "store-2", SkuID: "sku-1", Inventory: 0},
	}
	rawListings := []ingestdomain.RawListing{
		{StoreID: "store-1", SkuID: "sku-1"},
		{StoreID: "store-2", SkuID: "sku-1"},
		{StoreID: "store-3", SkuID: "sku-2"},
		{StoreID: "store-4", SkuID: "sku-2"},
	}

	result := ComputeAvailability(snapshots, rawListings)

	// 1 of 2 listed stores in stock, 1 of 4 dark stores overall.
	assert.InDelta(t, 50.0, result.WtOSALs("sku-1"), 1e-9)
	assert.InDelta(t, 25.0, result.WtOSA("sku-1"), 1e-9)
}

func TestAvailabilityRatiosZeroDenominator(t *testing.T) {
	result := ComputeAvailability(nil, nil)

	assert.Zero(t, result.WtOSALs("missing"))
	assert.Zero(t, result.WtOSA("missing"))
}
