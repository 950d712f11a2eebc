package elastic_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/elastic/go-elasticsearch/v8"

	"mediasearch/src/core/search"
	"mediasearch/src/storage/elastic"
)

// stubTransport answers every request with a canned status and body,
// recording the request path for assertions.
type stubTransport struct {
	status int
	body   string
	paths  []string
}

func (t *stubTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	t.paths = append(t.paths, req.URL.Path)
	return &http.Response{
		StatusCode: t.status,
		Header: http.Header{
			"Content-Type":      []string{"application/json"},
			"X-Elastic-Product": []string{"Elasticsearch"},
		},
		Body:    io.NopCloser(strings.NewReader(t.body)),
		Request: req,
	}, nil
}

func newSDK(t *testing.T, transport *stubTransport) *elastic.SDK {
	t.Helper()
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{"http://elasticsearch.test:9200"},
		Transport: transport,
	})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return elastic.NewSDK(client, "media-assets", "media-documents")
}

func TestSearchDecodesHitsAndFacets(t *testing.T) {
	transport := &stubTransport{status: http.StatusOK, body: `{
		"hits": {
			"total": {"value": 2},
			"hits": [
				{"_id": "asset-a", "_score": 4.2, "_source": {"fileName": "a.mp4"}},
				{"_id": "asset-b", "_score": 1.1, "_source": {"fileName": "b.jpg"}}
			]
		},
		"aggregations": {
			"asset_types": {"buckets": [
				{"key": "video", "doc_count": 12},
				{"key": "image", "doc_count": 7}
			]},
			"ingestion_months": {"buckets": [
				{"key": 1767225600000, "key_as_string": "2026-01", "doc_count": 3}
			]}
		}
	}`}
	sdk := newSDK(t, transport)

	result, err := sdk.Search(context.Background(), map[string]interface{}{"query": map[string]interface{}{}})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	if result.Total != 2 {
		t.Errorf("Total = %d, want 2", result.Total)
	}
	if len(result.Hits) != 2 || result.Hits[0].AssetID != "asset-a" || result.Hits[0].Score != 4.2 {
		t.Errorf("Hits = %+v, want asset-a first with score 4.2", result.Hits)
	}
	if result.Hits[0].Source["fileName"] != "a.mp4" {
		t.Errorf("Source not decoded: %v", result.Hits[0].Source)
	}

	if result.Facets == nil {
		t.Fatal("Facets = nil, want decoded aggregations")
	}
	if len(result.Facets.AssetTypes) != 2 || result.Facets.AssetTypes[0].Key != "video" {
		t.Errorf("AssetTypes = %+v", result.Facets.AssetTypes)
	}
	if len(result.Facets.IngestionMonths) != 1 || result.Facets.IngestionMonths[0].Key != "2026-01" {
		t.Errorf("IngestionMonths = %+v, want key_as_string preferred", result.Facets.IngestionMonths)
	}
}

func TestSearchClassifiesTooManyClauses(t *testing.T) {
	transport := &stubTransport{status: http.StatusBadRequest, body: `{
		"error": {
			"type": "search_phase_execution_exception",
			"reason": "all shards failed",
			"root_cause": [
				{"type": "too_many_nested_clauses", "reason": "Query contains too many nested clauses"}
			]
		}
	}`}
	sdk := newSDK(t, transport)

	_, err := sdk.Search(context.Background(), map[string]interface{}{})
	if !errors.Is(err, search.ErrQueryTooComplex) {
		t.Fatalf("Search() error = %v, want ErrQueryTooComplex", err)
	}
}

func TestSearchOtherErrorIsBackendUnavailable(t *testing.T) {
	transport := &stubTransport{status: http.StatusInternalServerError, body: `{
		"error": {"type": "internal_error", "reason": "boom"}
	}`}
	sdk := newSDK(t, transport)

	_, err := sdk.Search(context.Background(), map[string]interface{}{})
	if !errors.Is(err, search.ErrBackendUnavailable) {
		t.Fatalf("Search() error = %v, want ErrBackendUnavailable", err)
	}
	if errors.Is(err, search.ErrQueryTooComplex) {
		t.Fatal("generic failure misclassified as complexity rejection")
	}
}

func TestGetDocumentsSkipsMissing(t *testing.T) {
	transport := &stubTransport{status: http.StatusOK, body: `{
		"docs": [
			{"_id": "asset-a", "found": true, "_source": {"fileName": "a.mp4"}},
			{"_id": "asset-gone", "found": false}
		]
	}`}
	sdk := newSDK(t, transport)

	docs, err := sdk.GetDocuments(context.Background(), []string{"asset-a", "asset-gone"})
	if err != nil {
		t.Fatalf("GetDocuments() error = %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("len(docs) = %d, want 1", len(docs))
	}
	if docs["asset-a"]["fileName"] != "a.mp4" {
		t.Errorf("docs[asset-a] = %v", docs["asset-a"])
	}
	if _, ok := docs["asset-gone"]; ok {
		t.Error("missing document must not appear in the map")
	}
}

func TestGetDocumentsEmptyInput(t *testing.T) {
	transport := &stubTransport{status: http.StatusOK, body: `{}`}
	sdk := newSDK(t, transport)

	docs, err := sdk.GetDocuments(context.Background(), nil)
	if err != nil {
		t.Fatalf("GetDocuments() error = %v", err)
	}
	if len(docs) != 0 {
		t.Errorf("docs = %v, want empty", docs)
	}
	if len(transport.paths) != 0 {
		t.Errorf("requests = %v, want none for empty input", transport.paths)
	}
}
