package repository

import (
	"context"

	ingestdomain "github.com/shelfpulselabs/shelfpulse/internal/ingest/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() ingestdomain.Repository {
	return &repo{}
}

func (r *repo) InsertRawEvents(ctx context.Context, db *gorm.DB, events []ingestdomain.RawEvent) error {
	if len(events) == 0 {
		return nil
	}
	return db.WithContext(ctx).CreateInBatches(events, 500).Error
}

func (r *repo) ListRawEvents(ctx context.Context, db *gorm.DB) ([]ingestdomain.RawEvent, error) {
	var events []ingestdomain.RawEvent
	err := db.WithContext(ctx).
		Model(&ingestdomain.RawEvent{}).
		Order("store_id, sku_id, recorded_at").
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (r *repo) ListRawListings(ctx context.Context, db *gorm.DB) ([]ingestdomain.RawListing, error) {
	var listings []ingestdomain.RawListing
	err := db.WithContext(ctx).
		Raw(`SELECT DISTINCT store_id, sku_id FROM raw_events`).
		Scan(&listings).Error
	if err != nil {
		return nil, err
	}
	return listings, nil
}

func (r *repo) ReplaceEnrichedSnapshots(ctx context.Context, db *gorm.DB, rows []ingestdomain.EnrichedSnapshot) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(`DELETE FROM enriched_snapshots`).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.CreateInBatches(rows, 500).Error
	})
}

func (r *repo) ListEnrichedSnapshots(ctx context.Context, db *gorm.DB) ([]ingestdomain.EnrichedSnapshot, error) {
	var rows []ingestdomain.EnrichedSnapshot
	err := db.WithContext(ctx).
		Model(&ingestdomain.EnrichedSnapshot{}).
		Order("store_id, sku_id, recorded_at").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
