// Package seed loads a small demo dataset for local development: a handful
// of dark stores across two cities, one category tree, and a day of
// inventory snapshots.
package seed

import (
	"context"
	"crypto/rand"
	"errors"
	"time"

	"github.com/oklog/ulid/v2"
	ingestdomain "github.com/shelfpulselabs/shelfpulse/internal/ingest/domain"
	referencedomain "github.com/shelfpulselabs/shelfpulse/internal/reference/domain"
	"gorm.io/gorm"
)

// EnsureDemoData seeds reference mappings and raw events when the tables are
// empty. Safe to call on every startup.
func EnsureDemoData(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureReferenceData(ctx, tx); err != nil {
			return err
		}
		return ensureRawEvents(ctx, tx)
	})
}

func ensureReferenceData(ctx context.Context, tx *gorm.DB) error {
	var count int64
	if err := tx.Model(&referencedomain.StoreCity{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	now := time.Now().UTC()
	stores := []referencedomain.StoreCity{
		{StoreID: "blr-ds-001", CityName: "bangalore", CreatedAt: now},
		{StoreID: "blr-ds-002", CityName: "bangalore", CreatedAt: now},
		{StoreID: "blr-ds-003", CityName: "bangalore", CreatedAt: now},
		{StoreID: "bom-ds-001", CityName: "mumbai", CreatedAt: now},
		{StoreID: "bom-ds-002", CityName: "mumbai", CreatedAt: now},
	}
	if err := tx.Create(&stores).Error; err != nil {
		return err
	}

	categories := []referencedomain.CategoryRef{
		{L1CategoryID: 1, L2CategoryID: 10, L1Category: "Dairy", L2Category: "Milk", CreatedAt: now},
		{L1CategoryID: 1, L2CategoryID: 11, L1Category: "Dairy", L2Category: "Curd", CreatedAt: now},
		{L1CategoryID: 2, L2CategoryID: 20, L1Category: "Snacks", L2Category: "Chips", CreatedAt: now},
	}
	return tx.Create(&categories).Error
}

type demoSeries struct {
	storeID string
	skuID   string
	skuName string
	l1, l2  int64
	mrp     float64
	sp      float64
	invs    []int64
}

func ensureRawEvents(ctx context.Context, tx *gorm.DB) error {
	var count int64
	if err := tx.Model(&ingestdomain.RawEvent{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	base := time.Now().UTC().AddDate(0, 0, -1).Truncate(24 * time.Hour).Add(6 * time.Hour)
	series := []demoSeries{
		{"blr-ds-001", "sku-milk-1l", "Whole Milk 1L", 1, 10, 68, 64, []int64{24, 18, 18, 40, 31}},
		{"blr-ds-002", "sku-milk-1l", "Whole Milk 1L", 1, 10, 68, 62, []int64{12, 7, 2, 0}},
		{"bom-ds-001", "sku-milk-1l", "Whole Milk 1L", 1, 10, 70, 66, []int64{9, 9, 5}},
		{"blr-ds-001", "sku-curd-400g", "Set Curd 400g", 1, 11, 55, 50, []int64{16, 11, 8, 8}},
		{"bom-ds-002", "sku-chips-salt", "Salted Chips 90g", 2, 20, 30, 25, []int64{40, 33, 28, 60, 52}},
		// Unmapped store, dropped at the enrichment join but still counted
		// in the raw footprints.
		{"pun-ds-999", "sku-milk-1l", "Whole Milk 1L", 1, 10, 70, 68, []int64{5, 3}},
	}

	rows := make([]ingestdomain.RawEvent, 0, 32)
	for _, s := range series {
		for i, inv := range s.invs {
			mrp, sp := s.mrp, s.sp
			rows = append(rows, ingestdomain.RawEvent{
				ID:           ulid.MustNew(ulid.Timestamp(base), rand.Reader).String(),
				RecordedAt:   base.Add(time.Duration(i) * 3 * time.Hour),
				L1CategoryID: s.l1,
				L2CategoryID: s.l2,
				StoreID:      s.storeID,
				SkuID:        s.skuID,
				SkuName:      s.skuName,
				MRP:          &mrp,
				SellingPrice: &sp,
				Inventory:    inv,
				Unit:         "1 unit",
				CreatedAt:    time.Now().UTC(),
			})
		}
	}
	return tx.WithContext(ctx).Create(&rows).Error
}
