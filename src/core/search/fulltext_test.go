package search_test

import (
	"testing"

	"mediasearch/src/core/search"
)

func boolClause(t *testing.T, body map[string]interface{}) map[string]interface{} {
	t.Helper()
	query, ok := body["query"].(map[string]interface{})
	if !ok {
		t.Fatalf("body has no query: %v", body)
	}
	b, ok := query["bool"].(map[string]interface{})
	if !ok {
		t.Fatalf("query has no bool clause: %v", query)
	}
	return b
}

func shouldClauses(t *testing.T, body map[string]interface{}) []interface{} {
	t.Helper()
	should, ok := boolClause(t, body)["should"].([]interface{})
	if !ok {
		t.Fatalf("bool has no should clauses")
	}
	return should
}

// clauseBoost digs the boost value out of a single should clause regardless
// of its query type.
func clauseBoost(t *testing.T, clause interface{}) float64 {
	t.Helper()
	outer, ok := clause.(map[string]interface{})
	if !ok || len(outer) != 1 {
		t.Fatalf("unexpected clause shape: %v", clause)
	}
	for _, inner := range outer {
		fields, ok := inner.(map[string]interface{})
		if !ok {
			t.Fatalf("unexpected clause body: %v", inner)
		}
		if boost, ok := fields["boost"].(float64); ok {
			return boost
		}
		for _, v := range fields {
			params, ok := v.(map[string]interface{})
			if !ok {
				continue
			}
			if boost, ok := params["boost"].(float64); ok {
				return boost
			}
		}
	}
	t.Fatalf("no boost found in clause: %v", clause)
	return 0
}

func mustPlan(t *testing.T, raw search.RawQuery) search.SearchQuery {
	t.Helper()
	q, err := search.PlanQuery(raw)
	if err != nil {
		t.Fatalf("PlanQuery() error = %v", err)
	}
	return q
}

func TestBuildKeywordQueryMultiTerm(t *testing.T) {
	q := mustPlan(t, search.RawQuery{Text: "golden gate sunset", Page: 2, PageSize: 10})
	body := search.BuildKeywordQuery(q)

	if body["from"] != 10 || body["size"] != 10 {
		t.Errorf("pagination = from %v size %v, want 10/10", body["from"], body["size"])
	}

	should := shouldClauses(t, body)
	if len(should) != 4 {
		t.Fatalf("len(should) = %d, want 4", len(should))
	}

	wantBoosts := []float64{4.0, 3.0, 2.0, 1.0}
	for i, want := range wantBoosts {
		if got := clauseBoost(t, should[i]); got != want {
			t.Errorf("clause %d boost = %v, want %v", i, got, want)
		}
	}

	if msm := boolClause(t, body)["minimum_should_match"]; msm != 1 {
		t.Errorf("minimum_should_match = %v, want 1", msm)
	}
}

func TestBuildKeywordQuerySingleTerm(t *testing.T) {
	q := mustPlan(t, search.RawQuery{Text: "sunset"})
	body := search.BuildKeywordQuery(q)

	should := shouldClauses(t, body)
	if len(should) != 5 {
		t.Fatalf("len(should) = %d, want 5", len(should))
	}

	wantBoosts := []float64{4.0, 3.0, 2.0, 1.0, 0.7}
	for i, want := range wantBoosts {
		if got := clauseBoost(t, should[i]); got != want {
			t.Errorf("clause %d boost = %v, want %v", i, got, want)
		}
	}
}

func TestBuildKeywordQueryStorageIdentifierFastPath(t *testing.T) {
	q := mustPlan(t, search.RawQuery{StorageIdentifier: "bucket-a/object-1"})
	body := search.BuildKeywordQuery(q)

	b := boolClause(t, body)
	if _, hasShould := b["should"]; hasShould {
		t.Error("fast path should not build the boosted should tree")
	}
	must, ok := b["must"].([]interface{})
	if !ok || len(must) != 1 {
		t.Fatalf("fast path must clause = %v, want single term", b["must"])
	}
}

func TestBuildKeywordQueryFilters(t *testing.T) {
	q := mustPlan(t, search.RawQuery{Text: "sunset", MediaType: "video", SizeGTE: 1024, SizeLTE: 4096})
	body := search.BuildKeywordQuery(q)

	filters, ok := boolClause(t, body)["filter"].([]interface{})
	if !ok {
		t.Fatal("bool has no filter clauses")
	}
	if len(filters) != 2 {
		t.Fatalf("len(filter) = %d, want 2", len(filters))
	}
}

func TestBuildKeywordQueryFacets(t *testing.T) {
	q := mustPlan(t, search.RawQuery{Text: "sunset", Facets: true})
	body := search.BuildKeywordQuery(q)

	aggs, ok := body["aggs"].(map[string]interface{})
	if !ok {
		t.Fatal("facets requested but body has no aggs")
	}
	for _, name := range []string{"file_types", "asset_types", "extensions", "size_buckets", "ingestion_months"} {
		if _, ok := aggs[name]; !ok {
			t.Errorf("missing aggregation %q", name)
		}
	}

	// Facets ride along in the same round trip, never a second query.
	if _, ok := body["query"]; !ok {
		t.Error("aggs body lost the primary query")
	}
}

func TestBuildSimplifiedQuery(t *testing.T) {
	q := mustPlan(t, search.RawQuery{Text: "golden gate sunset over water and sky"})
	body := search.BuildSimplifiedQuery(q)

	should := shouldClauses(t, body)
	if len(should) != 2 {
		t.Fatalf("len(should) = %d, want 2", len(should))
	}
	if got := clauseBoost(t, should[0]); got != 2.0 {
		t.Errorf("name clause boost = %v, want 2.0", got)
	}
	if got := clauseBoost(t, should[1]); got != 1.0 {
		t.Errorf("type clause boost = %v, want 1.0", got)
	}
}
