package service

import (
	ingestdomain "github.com/shelfpulselabs/shelfpulse/internal/ingest/domain"
	insightsdomain "github.com/shelfpulselabs/shelfpulse/internal/insights/domain"
)

// ResolveModes computes, per sku, the most frequently observed mrp and
// selling price across the whole batch. Frequency ties break toward the
// numerically smallest value, so the result does not depend on input order.
func ResolveModes(snapshots []ingestdomain.EnrichedSnapshot) map[string]insightsdomain.ModeValue {
	mrpCounts := make(map[string]map[float64]int)
	spCounts := make(map[string]map[float64]int)
	for _, snap := range snapshots {
		if snap.MRP != nil {
			countValue(mrpCounts, snap.SkuID, *snap.MRP)
		}
		if snap.SellingPrice != nil {
			countValue(spCounts, snap.SkuID, *snap.SellingPrice)
		}
	}

	modes := make(map[string]insightsdomain.ModeValue)
	for skuID, counts := range mrpCounts {
		mode := modes[skuID]
		mode.MRPMode = pickMode(counts)
		modes[skuID] = mode
	}
	for skuID, counts := range spCounts {
		mode := modes[skuID]
		mode.SellingPriceMode = pickMode(counts)
		modes[skuID] = mode
	}
	return modes
}

func countValue(m map[string]map[float64]int, skuID string, value float64) {
	counts, ok := m[skuID]
	if !ok {
		counts = make(map[float64]int)
		m[skuID] = counts
	}
	counts[value]++
}

func pickMode(counts map[float64]int) *float64 {
	var best float64
	bestCount := 0
	for value, count := range counts {
		if count > bestCount || (count == bestCount && value < best) {
			best = value
			bestCount = count
		}
	}
	if bestCount == 0 {
		return nil
	}
	return &best
}
