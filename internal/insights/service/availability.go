package service

import (
	ingestdomain "github.com/shelfpulselabs/shelfpulse/internal/ingest/domain"
	insightsdomain "github.com/shelfpulselabs/shelfpulse/internal/insights/domain"
)

// ComputeAvailability derives whole-batch store footprints per sku. The
// mapped counts come from the enriched set; the dark-store counts come from
// the raw pre-join set, so a sku's listed dark stores may exceed its mapped
// footprint.
func ComputeAvailability(
	snapshots []ingestdomain.EnrichedSnapshot,
	rawListings []ingestdomain.RawListing,
) insightsdomain.AvailabilityResult {
	inStock := make(map[string]map[string]struct{})
	listed := make(map[string]map[string]struct{})
	for _, snap := range snapshots {
		addStore(listed, snap.SkuID, snap.StoreID)
		if snap.Inventory > 0 {
			addStore(inStock, snap.SkuID, snap.StoreID)
		}
	}

	rawPerSku := make(map[string]map[string]struct{})
	allStores := make(map[string]struct{})
	for _, l := range rawListings {
		addStore(rawPerSku, l.SkuID, l.StoreID)
		allStores[l.StoreID] = struct{}{}
	}

	result := insightsdomain.AvailabilityResult{
		PerSku:           make(map[string]insightsdomain.SkuAvailability, len(listed)),
		ListedDarkStores: make(map[string]int64, len(rawPerSku)),
		TotalDarkStores:  int64(len(allStores)),
	}
	for skuID, stores := range listed {
		result.PerSku[skuID] = insightsdomain.SkuAvailability{
			StoresInStock:     int64(len(inStock[skuID])),
			TotalListedStores: int64(len(stores)),
		}
	}
	for skuID, stores := range rawPerSku {
		result.ListedDarkStores[skuID] = int64(len(stores))
	}
	return result
}

func addStore(m map[string]map[string]struct{}, skuID, storeID string) {
	stores, ok := m[skuID]
	if !ok {
		stores = make(map[string]struct{})
		m[skuID] = stores
	}
	stores[storeID] = struct{}{}
}
