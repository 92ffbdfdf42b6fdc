package domain

import (
	"context"
	"time"
)

// RecordStore is the abstract append-only tabular store behind the three
// logical tables. Appends are atomic per call; ReplaceObservations is used
// only by the deduplicator and rewrites the whole observations table.
type RecordStore interface {
	ReadStoreDirectory(ctx context.Context) ([]StoreDirectoryEntry, error)
	ReadCatalog(ctx context.Context) ([]CatalogEntry, error)
	ReadObservations(ctx context.Context) ([]PriceObservation, error)

	AppendCatalog(ctx context.Context, entries []CatalogEntry) error
	AppendObservations(ctx context.Context, rows []PriceObservation) error
	ReplaceObservations(ctx context.Context, rows []PriceObservation) error
}

// Extractor converts a receipt image into a structured payload. knownNames is
// the list of catalog normalized names the extractor should prefer when
// proposing its own normalizations.
type Extractor interface {
	Extract(ctx context.Context, image []byte, contentType string, knownNames []string) (*ExtractedReceipt, error)
	Close() error
}

// Geocoder resolves a free-text address to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (Coordinates, error)
}

// Router computes the road distance in kilometers between two points.
type Router interface {
	RoadDistanceKm(ctx context.Context, from, to Coordinates) (float64, error)
}

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) (interface{}, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}
