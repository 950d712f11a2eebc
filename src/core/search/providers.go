package search

import (
	"context"
)

// PredicateOp is the operator of a vector metadata predicate.
type PredicateOp string

const (
	PredicateAnd         PredicateOp = "and"
	PredicateEqual       PredicateOp = "eq"
	PredicateNotEqual    PredicateOp = "neq"
	PredicateContainsAny PredicateOp = "contains_any"
)

// VectorPredicate is a boolean predicate over vector metadata, expressed as
// an explicit variant per operator rather than backend-specific filter types.
// Leaf operators use Field and Values; PredicateAnd uses Operands.
type VectorPredicate struct {
	Op       PredicateOp
	Field    string
	Values   []string
	Operands []VectorPredicate
}

// Equal matches vectors whose field equals value.
func Equal(field, value string) VectorPredicate {
	return VectorPredicate{Op: PredicateEqual, Field: field, Values: []string{value}}
}

// NotEqual matches vectors whose field differs from value.
func NotEqual(field, value string) VectorPredicate {
	return VectorPredicate{Op: PredicateNotEqual, Field: field, Values: []string{value}}
}

// ContainsAny matches vectors whose field equals any of the values.
func ContainsAny(field string, values ...string) VectorPredicate {
	return VectorPredicate{Op: PredicateContainsAny, Field: field, Values: values}
}

// And combines predicates conjunctively.
func And(operands ...VectorPredicate) VectorPredicate {
	return VectorPredicate{Op: PredicateAnd, Operands: operands}
}

// VectorQuery is one bounded nearest-neighbor query. Limit must not exceed
// the index cap of 30; adapters clamp it.
type VectorQuery struct {
	Embedding []float32
	Limit     int
	Where     *VectorPredicate
}

// VectorIndex is the outbound port to the vector index service.
type VectorIndex interface {
	// Query returns up to Limit nearest neighbors with their raw distances
	// and metadata.
	Query(ctx context.Context, q VectorQuery) ([]VectorHit, error)
}

// KeywordHit is one full-text hit with its relevance score and document.
type KeywordHit struct {
	AssetID string
	Score   float64
	Source  Document
}

// KeywordResult is the full-text index's answer: a page of hits, the total
// match count, and any requested facet buckets.
type KeywordResult struct {
	Hits   []KeywordHit
	Total  int64
	Facets *Facets
}

// FullTextIndex is the outbound port to the full-text index service. A
// complexity rejection is reported as ErrQueryTooComplex.
type FullTextIndex interface {
	Search(ctx context.Context, body map[string]interface{}) (*KeywordResult, error)
}

// MetadataStore is the outbound port to the asset metadata store. The only
// read shape is a single batched multi-get.
type MetadataStore interface {
	// GetDocuments returns the stored document for each found asset ID;
	// missing IDs are absent from the map.
	GetDocuments(ctx context.Context, assetIDs []string) (map[string]Document, error)
}

// ObjectRef names one stored object for URL signing.
type ObjectRef struct {
	Bucket string
	Key    string
}

// URLSigner is the outbound port to the CDN URL signing service.
type URLSigner interface {
	// SignBatch returns one signed URL per ref, positionally. A failed entry
	// yields an empty string; only a whole-batch failure returns an error.
	SignBatch(ctx context.Context, refs []ObjectRef) ([]string, error)
}

// ProviderStore is the outbound port to the provider configuration store.
// Read-only from this subsystem.
type ProviderStore interface {
	ListProviders(ctx context.Context) ([]ProviderConfig, error)
}

// Embedder turns query text into an embedding vector for ProviderPlusStore
// providers.
type Embedder interface {
	GetEmbedding(ctx context.Context, text string) ([]float32, error)
}

// RankedHit is a scored asset reference returned by a turnkey semantic
// service. Scores are already normalized to [0,1] by the service.
type RankedHit struct {
	AssetID string
	Score   float64
}

// SemanticRequest is the query forwarded to an ExternalSemanticService
// provider.
type SemanticRequest struct {
	Text      string
	MediaType string
	Limit     int
}

// SemanticService is the outbound port to a turnkey semantic search backend.
type SemanticService interface {
	Search(ctx context.Context, req SemanticRequest) ([]RankedHit, error)
}

// ProviderResolver maps a provider configuration to the concrete client that
// serves it.
type ProviderResolver interface {
	Embedder(p ProviderConfig) (Embedder, error)
	Semantic(p ProviderConfig) (SemanticService, error)
}
