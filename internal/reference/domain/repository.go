package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	ReplaceStoreCities(ctx context.Context, db *gorm.DB, rows []StoreCity) error
	ReplaceCategoryRefs(ctx context.Context, db *gorm.DB, rows []CategoryRef) error
	ListStoreCities(ctx context.Context, db *gorm.DB) ([]StoreCity, error)
	ListCategoryRefs(ctx context.Context, db *gorm.DB) ([]CategoryRef, error)
}
