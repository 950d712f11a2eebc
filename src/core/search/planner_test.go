package search_test

import (
	"errors"
	"testing"

	"mediasearch/src/core/search"
)

func TestPlanQuery(t *testing.T) {
	tests := []struct {
		name    string
		raw     search.RawQuery
		wantErr bool
		check   func(t *testing.T, q search.SearchQuery)
	}{
		{
			name: "defaults applied",
			raw:  search.RawQuery{Text: "sunset"},
			check: func(t *testing.T, q search.SearchQuery) {
				if q.Page != 1 {
					t.Errorf("Page = %d, want 1", q.Page)
				}
				if q.PageSize != search.DefaultPageSize {
					t.Errorf("PageSize = %d, want %d", q.PageSize, search.DefaultPageSize)
				}
				if q.MinScore != search.DefaultMinScore {
					t.Errorf("MinScore = %v, want %v", q.MinScore, search.DefaultMinScore)
				}
				if q.Mode != search.ModeKeyword {
					t.Errorf("Mode = %v, want keyword", q.Mode)
				}
			},
		},
		{
			name: "semantic mode",
			raw:  search.RawQuery{Text: "sunset", Semantic: true},
			check: func(t *testing.T, q search.SearchQuery) {
				if q.Mode != search.ModeSemantic {
					t.Errorf("Mode = %v, want semantic", q.Mode)
				}
			},
		},
		{
			name: "offset derived from page",
			raw:  search.RawQuery{Text: "sunset", Page: 3, PageSize: 20},
			check: func(t *testing.T, q search.SearchQuery) {
				if got := q.Offset(); got != 40 {
					t.Errorf("Offset() = %d, want 40", got)
				}
			},
		},
		{
			name:    "empty text rejected",
			raw:     search.RawQuery{Text: "   "},
			wantErr: true,
		},
		{
			name: "storage identifier allows empty text",
			raw:  search.RawQuery{StorageIdentifier: "bucket-a/object-1"},
			check: func(t *testing.T, q search.SearchQuery) {
				if q.StorageIdentifier != "bucket-a/object-1" {
					t.Errorf("StorageIdentifier = %q", q.StorageIdentifier)
				}
			},
		},
		{
			name:    "semantic with storage identifier only rejected",
			raw:     search.RawQuery{StorageIdentifier: "bucket-a/object-1", Semantic: true},
			wantErr: true,
		},
		{
			name:    "negative page rejected",
			raw:     search.RawQuery{Text: "sunset", Page: -1},
			wantErr: true,
		},
		{
			name:    "page size over cap rejected",
			raw:     search.RawQuery{Text: "sunset", PageSize: 501},
			wantErr: true,
		},
		{
			name:    "min score over one rejected",
			raw:     search.RawQuery{Text: "sunset", MinScore: 1.5},
			wantErr: true,
		},
		{
			name: "filters planned from constraints",
			raw: search.RawQuery{
				Text:        "sunset",
				MediaType:   "video",
				Extension:   "mp4",
				SizeGTE:     1024,
				IngestedGTE: "2026-01-01",
			},
			check: func(t *testing.T, q search.SearchQuery) {
				if len(q.Filters) != 4 {
					t.Fatalf("len(Filters) = %d, want 4", len(q.Filters))
				}
				if q.Filters[0].Field != "assetType" || q.Filters[0].Op != search.FilterEq {
					t.Errorf("first filter = %+v, want assetType eq", q.Filters[0])
				}
				if q.Filters[2].Op != search.FilterRange {
					t.Errorf("size filter op = %v, want range", q.Filters[2].Op)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := search.PlanQuery(tt.raw)
			if tt.wantErr {
				if !errors.Is(err, search.ErrInvalidQuery) {
					t.Fatalf("PlanQuery() error = %v, want ErrInvalidQuery", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("PlanQuery() unexpected error = %v", err)
			}
			if tt.check != nil {
				tt.check(t, q)
			}
		})
	}
}
