package service

import (
	"math"
	"runtime"
	"sort"
	"sync"

	ingestdomain "github.com/shelfpulselabs/shelfpulse/internal/ingest/domain"
	insightsdomain "github.com/shelfpulselabs/shelfpulse/internal/insights/domain"
)

// soldWindowSize bounds the trailing depletion history used to impute sales
// across a restock.
const soldWindowSize = 3

type groupKey struct {
	StoreID string
	SkuID   string
}

// EstimateSoldQuantities partitions snapshots by (store, sku) and derives a
// sold-quantity record for every snapshot. Groups are independent and are
// processed concurrently; `workers` bounds the fan-out (0 means GOMAXPROCS).
// The result preserves no global order.
func EstimateSoldQuantities(snapshots []ingestdomain.EnrichedSnapshot, workers int) []insightsdomain.SoldQuantityRecord {
	groups := partitionByStoreSku(snapshots)
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(groups) {
		workers = len(groups)
	}
	if workers == 0 {
		return nil
	}

	keys := make([]groupKey, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}

	results := make([][]insightsdomain.SoldQuantityRecord, len(keys))
	var wg sync.WaitGroup
	jobs := make(chan int)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = estimateGroup(groups[keys[i]])
			}
		}()
	}
	for i := range keys {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	out := make([]insightsdomain.SoldQuantityRecord, 0, len(snapshots))
	for _, records := range results {
		out = append(out, records...)
	}
	return out
}

func partitionByStoreSku(snapshots []ingestdomain.EnrichedSnapshot) map[groupKey][]ingestdomain.EnrichedSnapshot {
	groups := make(map[groupKey][]ingestdomain.EnrichedSnapshot)
	for _, snap := range snapshots {
		key := groupKey{StoreID: snap.StoreID, SkuID: snap.SkuID}
		groups[key] = append(groups[key], snap)
	}
	return groups
}

// estimateGroup derives sold quantities for one (store, sku) timeline.
//
// Inventory is the only observable signal. A drop between consecutive
// snapshots is unambiguous sales; a rise is a restock that masks sales and
// is imputed from the trailing mean of recently observed depletion; no
// movement and no successor both yield zero.
func estimateGroup(rows []ingestdomain.EnrichedSnapshot) []insightsdomain.SoldQuantityRecord {
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].RecordedAt.Before(rows[j].RecordedAt)
	})

	records := make([]insightsdomain.SoldQuantityRecord, len(rows))

	// sold[i] is the observed depletion of row i: defined only when the
	// successor's inventory is at or below the row's own (a drop, or zero
	// for no movement). Rises and the final row stay nil; imputed values
	// never feed later windows.
	sold := make([]*int64, len(rows))

	for i, row := range rows {
		rec := insightsdomain.SoldQuantityRecord{Snapshot: row}

		if i+1 < len(rows) {
			next := rows[i+1].Inventory
			rec.NextInventory = &next

			if next <= row.Inventory {
				observed := row.Inventory - next
				sold[i] = &observed
			}

			switch {
			case next < row.Inventory:
				rec.EstQtySold = row.Inventory - next
			case next > row.Inventory:
				rec.EstQtySold = avgPrevSales(sold, i)
			default:
				rec.EstQtySold = 0
			}
		}
		// Last row: no successor, no sales assumed for the unbounded
		// trailing interval.

		records[i] = rec
	}
	return records
}

// avgPrevSales returns the rounded mean of the observed sold quantities over
// the soldWindowSize rows immediately preceding row i, ignoring rows without
// an observed depletion; 0 when none qualify.
func avgPrevSales(sold []*int64, i int) int64 {
	var sum int64
	var n int64
	for j := i - 1; j >= 0 && j >= i-soldWindowSize; j-- {
		if sold[j] == nil {
			continue
		}
		sum += *sold[j]
		n++
	}
	if n == 0 {
		return 0
	}
	mean := float64(sum) / float64(n)
	return int64(math.Floor(mean + 0.5))
}
