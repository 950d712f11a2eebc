package search

import (
	"fmt"
	"strings"
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 500

	// DefaultMinScore is the confidence threshold applied to semantic hits
	// when the request does not set one.
	DefaultMinScore = 0.5
)

// RawQuery carries the unvalidated request parameters exactly as they
// arrived on the wire.
type RawQuery struct {
	Text              string
	Page              int
	PageSize          int
	Semantic          bool
	MediaType         string
	Extension         string
	SizeGTE           int64
	SizeLTE           int64
	IngestedGTE       string
	IngestedLTE       string
	MinScore          float64
	StorageIdentifier string
	Facets            bool
}

// PlanQuery validates a raw request and normalizes it into a SearchQuery.
// Pure transform; rejects bad input with ErrInvalidQuery.
func PlanQuery(raw RawQuery) (SearchQuery, error) {
	text := strings.TrimSpace(raw.Text)
	if text == "" && raw.StorageIdentifier == "" {
		return SearchQuery{}, fmt.Errorf("%w: search text is required", ErrInvalidQuery)
	}
	// A storage-identifier lookup is an exact match served by the full-text
	// path; semantic mode has nothing to embed without text.
	if text == "" && raw.Semantic {
		return SearchQuery{}, fmt.Errorf("%w: semantic search requires search text", ErrInvalidQuery)
	}

	page := raw.Page
	if page == 0 {
		page = 1
	}
	if page < 1 {
		return SearchQuery{}, fmt.Errorf("%w: page must be >= 1, got %d", ErrInvalidQuery, raw.Page)
	}

	pageSize := raw.PageSize
	if pageSize == 0 {
		pageSize = DefaultPageSize
	}
	if pageSize < 1 || pageSize > MaxPageSize {
		return SearchQuery{}, fmt.Errorf("%w: pageSize must be in [1,%d], got %d", ErrInvalidQuery, MaxPageSize, raw.PageSize)
	}

	minScore := raw.MinScore
	if minScore <= 0 {
		minScore = DefaultMinScore
	}
	if minScore > 1 {
		return SearchQuery{}, fmt.Errorf("%w: min_score must be in (0,1], got %v", ErrInvalidQuery, raw.MinScore)
	}

	mode := ModeKeyword
	if raw.Semantic {
		mode = ModeSemantic
	}

	q := SearchQuery{
		Text:              text,
		Mode:              mode,
		Page:              page,
		PageSize:          pageSize,
		MinScore:          minScore,
		FacetsRequested:   raw.Facets,
		MediaType:         raw.MediaType,
		StorageIdentifier: raw.StorageIdentifier,
		Filters:           planFilters(raw),
	}

	return q, nil
}

func planFilters(raw RawQuery) []Filter {
	var filters []Filter

	if raw.MediaType != "" {
		filters = append(filters, Filter{Field: "assetType", Op: FilterEq, Value: raw.MediaType})
	}
	if raw.Extension != "" {
		filters = append(filters, Filter{Field: "extension", Op: FilterEq, Value: raw.Extension})
	}
	if raw.SizeGTE > 0 || raw.SizeLTE > 0 {
		rv := RangeValue{}
		if raw.SizeGTE > 0 {
			rv.GTE = raw.SizeGTE
		}
		if raw.SizeLTE > 0 {
			rv.LTE = raw.SizeLTE
		}
		filters = append(filters, Filter{Field: "fileSize", Op: FilterRange, Value: rv})
	}
	if raw.IngestedGTE != "" || raw.IngestedLTE != "" {
		rv := RangeValue{}
		if raw.IngestedGTE != "" {
			rv.GTE = raw.IngestedGTE
		}
		if raw.IngestedLTE != "" {
			rv.LTE = raw.IngestedLTE
		}
		filters = append(filters, Filter{Field: "ingestedAt", Op: FilterRange, Value: rv})
	}

	return filters
}
