package search

// Mode selects the search path: literal keyword matching against the
// full-text index, or semantic similarity through a provider.
type Mode int

const (
	ModeKeyword Mode = iota
	ModeSemantic
)

func (m Mode) String() string {
	if m == ModeSemantic {
		return "semantic"
	}
	return "keyword"
}

// FilterOp is the comparison applied by a query filter.
type FilterOp string

const (
	FilterEq    FilterOp = "eq"
	FilterRange FilterOp = "range"
	FilterTerms FilterOp = "terms"
)

// RangeValue holds the bounds of a range filter. Either side may be nil.
type RangeValue struct {
	GTE interface{}
	LTE interface{}
}

// Filter restricts search results on a single metadata field.
type Filter struct {
	Field string
	Op    FilterOp
	Value interface{}
}

// SearchQuery is the validated, normalized form of an inbound request.
// Built by PlanQuery; treated as immutable afterwards.
type SearchQuery struct {
	Text              string
	Mode              Mode
	Page              int
	PageSize          int
	MinScore          float64
	Filters           []Filter
	FacetsRequested   bool
	MediaType         string
	StorageIdentifier string
}

// Offset is the derived pagination offset.
func (q SearchQuery) Offset() int {
	return (q.Page - 1) * q.PageSize
}

// VectorScope says whether a stored vector represents a whole asset or a
// clip of one.
type VectorScope string

const (
	ScopeAsset VectorScope = "asset"
	ScopeClip  VectorScope = "clip"
)

// VectorHit is one neighbor returned by the vector index.
type VectorHit struct {
	Key             string
	Distance        float64
	AssetID         string
	Scope           VectorScope
	EmbeddingOption string
	MediaType       string
	StartOffsetSec  float64
	EndOffsetSec    float64
}

// ClipHit is a clip-level match attached to a SearchHit, ordered descending
// by score within the parent asset.
type ClipHit struct {
	Key             string  `json:"key"`
	Score           float64 `json:"score"`
	EmbeddingOption string  `json:"embeddingOption,omitempty"`
	StartOffsetSec  float64 `json:"startOffsetSec"`
	EndOffsetSec    float64 `json:"endOffsetSec"`
}

// Document is an asset's stored metadata document, opaque to this subsystem.
type Document map[string]interface{}

// SearchHit is one ranked asset in a response.
type SearchHit struct {
	AssetID      string    `json:"assetId"`
	Score        float64   `json:"score"`
	Source       Document  `json:"sourceDocument,omitempty"`
	Clips        []ClipHit `json:"clips,omitempty"`
	ThumbnailURL string    `json:"thumbnailUrl,omitempty"`
	ProxyURL     string    `json:"proxyUrl,omitempty"`
}

// FacetBucket is a single aggregation bucket.
type FacetBucket struct {
	Key   string `json:"key"`
	Count int64  `json:"count"`
}

// Facets holds the aggregations computed alongside a keyword query.
type Facets struct {
	FileTypes       []FacetBucket `json:"fileTypes,omitempty"`
	AssetTypes      []FacetBucket `json:"assetTypes,omitempty"`
	Extensions      []FacetBucket `json:"extensions,omitempty"`
	SizeBuckets     []FacetBucket `json:"sizeBuckets,omitempty"`
	IngestionMonths []FacetBucket `json:"ingestionMonths,omitempty"`
}

// SearchMetadata describes the result set as a whole.
type SearchMetadata struct {
	TotalResults int64   `json:"totalResults"`
	Page         int     `json:"page"`
	PageSize     int     `json:"pageSize"`
	SearchTerm   string  `json:"searchTerm"`
	Facets       *Facets `json:"facets,omitempty"`
}

// SearchResponse is the per-request result envelope. Never persisted.
// Warnings carries non-fatal degradations (failed URL signing, failed facet
// aggregation) without failing the request.
type SearchResponse struct {
	Metadata SearchMetadata `json:"searchMetadata"`
	Results  []SearchHit    `json:"results"`
	Warnings []string       `json:"warnings,omitempty"`
}

// ProviderArchitecture distinguishes turnkey semantic services from
// embedder-plus-vector-store pairings.
type ProviderArchitecture string

const (
	ArchitectureExternalSemanticService ProviderArchitecture = "external_semantic_service"
	ArchitectureProviderPlusStore       ProviderArchitecture = "provider_plus_store"
)

// ProviderLocation marks where a provider runs.
type ProviderLocation string

const (
	LocationInternal ProviderLocation = "internal"
	LocationExternal ProviderLocation = "external"
)

// ProviderConfig describes one configured semantic-search backend.
type ProviderConfig struct {
	ID            string
	Architecture  ProviderArchitecture
	Location      ProviderLocation
	MediaTypes    []string
	Semantic      bool
	Default       bool
	Endpoint      string
	CredentialRef string
}

// SupportsMedia reports whether the provider can handle the given media
// type. An empty constraint matches every provider.
func (p ProviderConfig) SupportsMedia(mediaType string) bool {
	if mediaType == "" {
		return true
	}
	for _, mt := range p.MediaTypes {
		if mt == mediaType {
			return true
		}
	}
	return false
}

// ProviderStatus is the per-provider record returned by the status endpoint.
type ProviderStatus struct {
	ID           string               `json:"id"`
	Available    bool                 `json:"available"`
	Architecture ProviderArchitecture `json:"architecture"`
	Location     ProviderLocation     `json:"location"`
	MediaTypes   []string             `json:"mediaTypes"`
	Semantic     bool                 `json:"semantic"`
}
