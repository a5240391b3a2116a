// Package domain contains the reference mappings resolved during enrichment.
package domain

import (
	"errors"
	"time"
)

// StoreCity maps a dark store to the city it serves. Stores without a row
// here are excluded from the enriched set.
type StoreCity struct {
	StoreID   string    `gorm:"primaryKey" json:"store_id"`
	CityName  string    `gorm:"not null" json:"city_name"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (StoreCity) TableName() string { return "store_cities" }

// CategoryRef names an (l1, l2) category pair.
type CategoryRef struct {
	L1CategoryID int64     `gorm:"primaryKey;autoIncrement:false" json:"l1_category_id"`
	L2CategoryID int64     `gorm:"primaryKey;autoIncrement:false" json:"l2_category_id"`
	L1Category   string    `gorm:"not null" json:"l1_category"`
	L2Category   string    `gorm:"not null" json:"l2_category"`
	CreatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (CategoryRef) TableName() string { return "category_refs" }

var (
	ErrEmptyStoreID  = errors.New("empty_store_id")
	ErrEmptyCityName = errors.New("empty_city_name")
	ErrEmptyCategory = errors.New("empty_category")
)
