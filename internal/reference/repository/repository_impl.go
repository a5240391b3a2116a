package repository

import (
	"context"

	referencedomain "github.com/shelfpulselabs/shelfpulse/internal/reference/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() referencedomain.Repository {
	return &repo{}
}

func (r *repo) ReplaceStoreCities(ctx context.Context, db *gorm.DB, rows []referencedomain.StoreCity) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(`DELETE FROM store_cities`).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.CreateInBatches(rows, 500).Error
	})
}

func (r *repo) ReplaceCategoryRefs(ctx context.Context, db *gorm.DB, rows []referencedomain.CategoryRef) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(`DELETE FROM category_refs`).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.CreateInBatches(rows, 500).Error
	})
}

func (r *repo) ListStoreCities(ctx context.Context, db *gorm.DB) ([]referencedomain.StoreCity, error) {
	var rows []referencedomain.StoreCity
	err := db.WithContext(ctx).
		Raw(`SELECT store_id, city_name, created_at, updated_at FROM store_cities`).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repo) ListCategoryRefs(ctx context.Context, db *gorm.DB) ([]referencedomain.CategoryRef, error) {
	var rows []referencedomain.CategoryRef
	err := db.WithContext(ctx).
		Raw(`SELECT l1_category_id, l2_category_id, l1_category, l2_category, created_at, updated_at FROM category_refs`).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
