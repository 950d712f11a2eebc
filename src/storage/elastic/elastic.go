package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"mediasearch/src/core/search"
)

// SDK encapsulates the Elasticsearch operations this system needs: the
// boosted keyword search with aggregations, and the batched document
// multi-get backing the metadata store port.
type SDK struct {
	client        *elasticsearch.Client
	searchIndex   string
	documentIndex string
}

func NewSDK(client *elasticsearch.Client, searchIndex, documentIndex string) *SDK {
	return &SDK{
		client:        client,
		searchIndex:   searchIndex,
		documentIndex: documentIndex,
	}
}

// searchResponse is the explicit schema for the subset of the search reply
// this system reads. No runtime shape probing; unexpected bodies fail the
// decode.
type searchResponse struct {
	Hits struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
		Hits []struct {
			ID     string          `json:"_id"`
			Score  float64         `json:"_score"`
			Source search.Document `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
	Aggregations map[string]aggregation `json:"aggregations"`
}

type aggregation struct {
	Buckets []struct {
		Key         json.RawMessage `json:"key"`
		KeyAsString string          `json:"key_as_string"`
		DocCount    int64           `json:"doc_count"`
	} `json:"buckets"`
}

type errorResponse struct {
	Error struct {
		Type      string `json:"type"`
		Reason    string `json:"reason"`
		RootCause []struct {
			Type   string `json:"type"`
			Reason string `json:"reason"`
		} `json:"root_cause"`
	} `json:"error"`
}

// Search issues one query body against the search index and decodes hits,
// total, and facet buckets. A rejection for boolean clause complexity is
// reported as search.ErrQueryTooComplex so the caller can fall back to the
// simplified query.
func (s *SDK) Search(ctx context.Context, body map[string]interface{}) (*search.KeywordResult, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode search body: %w", err)
	}

	res, err := s.client.Search(
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(s.searchIndex),
		s.client.Search.WithBody(bytes.NewReader(payload)),
		s.client.Search.WithTrackTotalHits(true),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: elasticsearch search: %v", search.ErrBackendUnavailable, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, decodeError(res)
	}

	var decoded searchResponse
	if err := json.NewDecoder(res.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("%w: decoding search response: %v", search.ErrBackendUnavailable, err)
	}

	result := &search.KeywordResult{
		Total: decoded.Hits.Total.Value,
		Hits:  make([]search.KeywordHit, 0, len(decoded.Hits.Hits)),
	}
	for _, hit := range decoded.Hits.Hits {
		result.Hits = append(result.Hits, search.KeywordHit{
			AssetID: hit.ID,
			Score:   hit.Score,
			Source:  hit.Source,
		})
	}
	if len(decoded.Aggregations) > 0 {
		result.Facets = decodeFacets(decoded.Aggregations)
	}

	return result, nil
}

// decodeError classifies an error reply. Too-many-clauses rejections map to
// ErrQueryTooComplex; everything else is a backend failure.
func decodeError(res *esapi.Response) error {
	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("%w: elasticsearch error status %s", search.ErrBackendUnavailable, res.Status())
	}

	var decoded errorResponse
	if json.Unmarshal(raw, &decoded) == nil {
		reasons := decoded.Error.Type + " " + decoded.Error.Reason
		for _, rc := range decoded.Error.RootCause {
			reasons += " " + rc.Type + " " + rc.Reason
		}
		if strings.Contains(reasons, "too_many_clauses") || strings.Contains(reasons, "too_many_nested_clauses") {
			return fmt.Errorf("%w: %s", search.ErrQueryTooComplex, decoded.Error.Reason)
		}
	}

	return fmt.Errorf("%w: elasticsearch status %s: %s", search.ErrBackendUnavailable, res.Status(), string(raw))
}

func decodeFacets(aggs map[string]aggregation) *search.Facets {
	facets := &search.Facets{}
	facets.FileTypes = decodeBuckets(aggs["file_types"])
	facets.AssetTypes = decodeBuckets(aggs["asset_types"])
	facets.Extensions = decodeBuckets(aggs["extensions"])
	facets.SizeBuckets = decodeBuckets(aggs["size_buckets"])
	facets.IngestionMonths = decodeBuckets(aggs["ingestion_months"])
	return facets
}

func decodeBuckets(agg aggregation) []search.FacetBucket {
	if len(agg.Buckets) == 0 {
		return nil
	}
	buckets := make([]search.FacetBucket, 0, len(agg.Buckets))
	for _, b := range agg.Buckets {
		key := b.KeyAsString
		if key == "" {
			// Terms keys are strings; histogram keys without key_as_string
			// arrive as raw JSON scalars.
			var s string
			if json.Unmarshal(b.Key, &s) == nil {
				key = s
			} else {
				key = string(b.Key)
			}
		}
		buckets = append(buckets, search.FacetBucket{Key: key, Count: b.DocCount})
	}
	return buckets
}

// mgetResponse is the explicit schema for the multi-get reply.
type mgetResponse struct {
	Docs []struct {
		ID     string          `json:"_id"`
		Found  bool            `json:"found"`
		Source search.Document `json:"_source"`
	} `json:"docs"`
}

// GetDocuments fetches asset documents in one batched multi-get. Missing
// assets are simply absent from the returned map.
func (s *SDK) GetDocuments(ctx context.Context, assetIDs []string) (map[string]search.Document, error) {
	if len(assetIDs) == 0 {
		return map[string]search.Document{}, nil
	}

	payload, err := json.Marshal(map[string]interface{}{"ids": assetIDs})
	if err != nil {
		return nil, fmt.Errorf("failed to encode mget body: %w", err)
	}

	res, err := s.client.Mget(
		bytes.NewReader(payload),
		s.client.Mget.WithContext(ctx),
		s.client.Mget.WithIndex(s.documentIndex),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: elasticsearch mget: %v", search.ErrBackendUnavailable, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("%w: elasticsearch mget status %s", search.ErrBackendUnavailable, res.Status())
	}

	var decoded mgetResponse
	if err := json.NewDecoder(res.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("%w: decoding mget response: %v", search.ErrBackendUnavailable, err)
	}

	documents := make(map[string]search.Document, len(decoded.Docs))
	for _, doc := range decoded.Docs {
		if doc.Found {
			documents[doc.ID] = doc.Source
		}
	}
	return documents, nil
}
