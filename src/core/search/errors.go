package search

import "errors"

var (
	// ErrInvalidQuery signals malformed client input. Returned before any
	// backend is contacted.
	ErrInvalidQuery = errors.New("invalid search query")

	// ErrNoProviderAvailable signals that a semantic query could not be
	// matched to any configured provider.
	ErrNoProviderAvailable = errors.New("no semantic search provider available")

	// ErrBackendUnavailable signals a failure from the full-text index,
	// vector index, metadata store, or CDN signing service.
	ErrBackendUnavailable = errors.New("search backend unavailable")

	// ErrQueryTooComplex is surfaced by the full-text adapter when the index
	// rejects a query for too many boolean clauses. The service retries once
	// with the simplified query before giving up.
	ErrQueryTooComplex = errors.New("query too complex")

	// ErrSearchTimeout signals that the per-request time budget elapsed.
	ErrSearchTimeout = errors.New("search timed out")
)
