package service

import (
	"sort"
	"time"

	insightsdomain "github.com/shelfpulselabs/shelfpulse/internal/insights/domain"
	"github.com/shopspring/decimal"
)

type dayKey struct {
	Date     time.Time
	CityName string
	SkuID    string
}

// AggregateDaily rolls sold-quantity records up to the (date, city, sku)
// grain. Descriptive attributes are taken from the earliest record of the
// group so repeated runs pick the same representative. Output is sorted by
// key for determinism.
func AggregateDaily(records []insightsdomain.SoldQuantityRecord) []insightsdomain.DailySkuSummary {
	type accumulator struct {
		first insightsdomain.SoldQuantityRecord

		inventory  int64
		estQtySold int64
		salesMRP   decimal.Decimal
		salesSP    decimal.Decimal

		discountSum decimal.Decimal
		discountN   int64
	}

	groups := make(map[dayKey]*accumulator)
	for _, rec := range records {
		snap := rec.Snapshot
		key := dayKey{
			Date:     snap.RecordedAt.UTC().Truncate(24 * time.Hour),
			CityName: snap.CityName,
			SkuID:    snap.SkuID,
		}

		acc, ok := groups[key]
		if !ok {
			acc = &accumulator{first: rec}
			groups[key] = acc
		} else if snap.RecordedAt.Before(acc.first.Snapshot.RecordedAt) {
			acc.first = rec
		}

		acc.inventory += snap.Inventory
		acc.estQtySold += rec.EstQtySold

		qty := decimal.NewFromInt(rec.EstQtySold)
		// Absent prices contribute zero sales value, never an undefined
		// result.
		if snap.MRP != nil {
			acc.salesMRP = acc.salesMRP.Add(qty.Mul(decimal.NewFromFloat(*snap.MRP)))
		}
		if snap.SellingPrice != nil {
			acc.salesSP = acc.salesSP.Add(qty.Mul(decimal.NewFromFloat(*snap.SellingPrice)))
		}

		if snap.MRP != nil && *snap.MRP != 0 {
			mrp := decimal.NewFromFloat(*snap.MRP)
			sp := decimal.Zero
			if snap.SellingPrice != nil {
				sp = decimal.NewFromFloat(*snap.SellingPrice)
			}
			acc.discountSum = acc.discountSum.Add(mrp.Sub(sp).Div(mrp))
			acc.discountN++
		}
	}

	summaries := make([]insightsdomain.DailySkuSummary, 0, len(groups))
	for key, acc := range groups {
		first := acc.first.Snapshot
		summary := insightsdomain.DailySkuSummary{
			Date:            key.Date,
			CityName:        key.CityName,
			SkuID:           key.SkuID,
			SkuName:         first.SkuName,
			BrandID:         first.BrandID,
			Brand:           first.Brand,
			ImageURL:        first.ImageURL,
			CategoryID:      first.CategoryID,
			CategoryName:    first.CategoryName,
			SubCategoryID:   first.SubCategoryID,
			SubCategoryName: first.SubCategoryName,
			Inventory:       acc.inventory,
			EstQtySold:      acc.estQtySold,
			EstSalesMRP:     acc.salesMRP.InexactFloat64(),
			EstSalesSP:      acc.salesSP.InexactFloat64(),
		}
		if acc.discountN > 0 {
			discount, _ := acc.discountSum.
				Div(decimal.NewFromInt(acc.discountN)).
				Round(4).
				Float64()
			summary.Discount = &discount
		}
		summaries = append(summaries, summary)
	}

	sort.Slice(summaries, func(i, j int) bool {
		a, b := summaries[i], summaries[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if a.CityName != b.CityName {
			return a.CityName < b.CityName
		}
		return a.SkuID < b.SkuID
	})
	return summaries
}
