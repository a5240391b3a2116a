package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	InsertRawEvents(ctx context.Context, db *gorm.DB, events []RawEvent) error
	ListRawEvents(ctx context.Context, db *gorm.DB) ([]RawEvent, error)
	ListRawListings(ctx context.Context, db *gorm.DB) ([]RawListing, error)
	ReplaceEnrichedSnapshots(ctx context.Context, db *gorm.DB, rows []EnrichedSnapshot) error
	ListEnrichedSnapshots(ctx context.Context, db *gorm.DB) ([]EnrichedSnapshot, error)
}
