package service

import (
	"time"

	"github.com/bwmarrin/snowflake"
	insightsdomain "github.com/shelfpulselabs/shelfpulse/internal/insights/domain"
)

// AssembleInsights left-joins the daily summaries with the availability and
// mode lookups. Every summary row survives; unmatched lookups leave the
// corresponding fields nil. Cardinality equals the summary set's.
func AssembleInsights(
	summaries []insightsdomain.DailySkuSummary,
	availability insightsdomain.AvailabilityResult,
	modes map[string]insightsdomain.ModeValue,
	genID *snowflake.Node,
	runID snowflake.ID,
	now time.Time,
) []insightsdomain.CityInsight {
	insights := make([]insightsdomain.CityInsight, 0, len(summaries))
	for _, summary := range summaries {
		insight := insightsdomain.CityInsight{
			ID:    genID.Generate(),
			RunID: runID,

			InsightDate: summary.Date,
			CityName:    summary.CityName,
			SkuID:       summary.SkuID,

			SkuName:         summary.SkuName,
			BrandID:         summary.BrandID,
			Brand:           summary.Brand,
			ImageURL:        summary.ImageURL,
			CategoryID:      summary.CategoryID,
			CategoryName:    summary.CategoryName,
			SubCategoryID:   summary.SubCategoryID,
			SubCategoryName: summary.SubCategoryName,

			Inventory:   summary.Inventory,
			EstQtySold:  summary.EstQtySold,
			EstSalesMRP: summary.EstSalesMRP,
			EstSalesSP:  summary.EstSalesSP,
			Discount:    summary.Discount,

			CreatedAt: now,
		}

		if avail, ok := availability.PerSku[summary.SkuID]; ok {
			dsCount := avail.TotalListedStores
			insight.DSCount = &dsCount
			wtOSA := availability.WtOSA(summary.SkuID)
			wtOSALs := availability.WtOSALs(summary.SkuID)
			insight.WtOSA = &wtOSA
			insight.WtOSALs = &wtOSALs
		}
		if listed, ok := availability.ListedDarkStores[summary.SkuID]; ok {
			insight.ListedDSCount = &listed
		}
		if mode, ok := modes[summary.SkuID]; ok {
			insight.MRPMode = mode.MRPMode
			insight.SellingPriceMode = mode.SellingPriceMode
		}

		insights = append(insights, insight)
	}
	return insights
}
