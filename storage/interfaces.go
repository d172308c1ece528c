package storage

import (
	"context"
	"errors"
	"time"

	"annonces-abidjan/models"
)

// ErrNotFound is returned by Get when no listing has the requested id.
var ErrNotFound = errors.New("storage: listing not found")

// ListingStore is the interface any storage backend must satisfy.
type ListingStore interface {
	// Save inserts listings, ignoring ids that are already stored, and
	// returns how many rows were actually inserted.
	Save(ctx context.Context, listings []*models.Listing) (int, error)
	// All returns every stored listing matching f, newest first.
	All(ctx context.Context, f models.Filters) ([]*models.Listing, error)
	// Today returns the listings published on day matching f, newest first.
	Today(ctx context.Context, day time.Time, f models.Filters) ([]*models.Listing, error)
	Get(ctx context.Context, id int64) (*models.Listing, error)
	// Neighborhoods returns the distinct neighborhood names, sorted.
	Neighborhoods(ctx context.Context) ([]string, error)
	Statistics(ctx context.Context, day time.Time) (models.Statistics, error)
	// Clear deletes every stored listing.
	Clear(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}

// RawListingWriter is the interface for persisting unprocessed scraped data.
type RawListingWriter interface {
	WriteRaw(listings []*models.RawListing) error
	Close() error
}

func withDefaultImage(l *models.Listing) *models.Listing {
	if l.Image == "" {
		l.Image = models.DefaultImage
	}
	return l
}
