package repository

import (
	"context"
	"time"

	insightsdomain "github.com/shelfpulselabs/shelfpulse/internal/insights/domain"
	"github.com/shelfpulselabs/shelfpulse/pkg/db/option"
	"github.com/shelfpulselabs/shelfpulse/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() insightsdomain.Repository {
	return &repo{}
}

func (r *repo) ReplaceCityInsights(ctx context.Context, db *gorm.DB, rows []insightsdomain.CityInsight) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(`DELETE FROM city_insights`).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.CreateInBatches(rows, 500).Error
	})
}

func (r *repo) ListCityInsights(ctx context.Context, db *gorm.DB, req insightsdomain.ListInsightsRequest, page pagination.Pagination) ([]insightsdomain.CityInsight, int64, error) {
	stmt := db.WithContext(ctx).Model(&insightsdomain.CityInsight{})

	if req.Date != nil {
		day := req.Date.UTC().Truncate(24 * time.Hour)
		stmt = stmt.Where("insight_date >= ? AND insight_date < ?", day, day.Add(24*time.Hour))
	}
	if req.CityName != "" {
		stmt = stmt.Where("city_name = ?", req.CityName)
	}
	if req.SkuID != "" {
		stmt = stmt.Where("sku_id = ?", req.SkuID)
	}

	var total int64
	if err := stmt.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []insightsdomain.CityInsight
	stmt = stmt.Order("insight_date, city_name, sku_id")
	stmt = option.ApplyPagination(page).Apply(stmt)
	if err := stmt.Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *repo) ListAllCityInsights(ctx context.Context, db *gorm.DB) ([]insightsdomain.CityInsight, error) {
	var rows []insightsdomain.CityInsight
	err := db.WithContext(ctx).
		Model(&insightsdomain.CityInsight{}).
		Order("insight_date, city_name, sku_id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repo) SkuFootprint(ctx context.Context, db *gorm.DB, skuID string) (int64, int64, error) {
	var row struct {
		StoresInStock int64
		ListedStores  int64
	}
	err := db.WithContext(ctx).Raw(
		`SELECT
		   COUNT(DISTINCT CASE WHEN inventory > 0 THEN store_id END) AS stores_in_stock,
		   COUNT(DISTINCT store_id) AS listed_stores
		 FROM enriched_snapshots WHERE sku_id = ?`,
		skuID,
	).Scan(&row).Error
	if err != nil {
		return 0, 0, err
	}
	return row.StoresInStock, row.ListedStores, nil
}

func (r *repo) RawSkuFootprint(ctx context.Context, db *gorm.DB, skuID string) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(DISTINCT store_id) FROM raw_events WHERE sku_id = ?`,
		skuID,
	).Scan(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *repo) TotalDarkStores(ctx context.Context, db *gorm.DB) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(DISTINCT store_id) FROM raw_events`,
	).Scan(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
