package domain

import "errors"

var (
	// ErrNoResults is returned when a comparison query matches no observations
	ErrNoResults = errors.New("no matching price observations")

	// ErrInvalidReceipt is returned when an extraction payload is malformed or empty
	ErrInvalidReceipt = errors.New("invalid receipt payload")

	// ErrExtractionFailed is returned when the extraction service could not read the image
	ErrExtractionFailed = errors.New("receipt extraction failed")

	// ErrCacheMiss is returned when a key is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrGeocodeFailed is returned when an address cannot be resolved to coordinates
	ErrGeocodeFailed = errors.New("address could not be geocoded")

	// ErrRouteFailed is returned when the routing service cannot produce a road distance
	ErrRouteFailed = errors.New("road distance lookup failed")

	// ErrStorageFailure is returned when the backing record store rejects a read or write
	ErrStorageFailure = errors.New("record store operation failed")
)
