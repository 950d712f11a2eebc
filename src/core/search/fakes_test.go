package search_test

import (
	"context"

	"mediasearch/src/core/search"
)

type fakeVectorIndex struct {
	queryFn func(ctx context.Context, q search.VectorQuery) ([]search.VectorHit, error)
	queries []search.VectorQuery
}

func (f *fakeVectorIndex) Query(ctx context.Context, q search.VectorQuery) ([]search.VectorHit, error) {
	f.queries = append(f.queries, q)
	return f.queryFn(ctx, q)
}

type fakeFullTextIndex struct {
	searchFn func(ctx context.Context, body map[string]interface{}) (*search.KeywordResult, error)
	bodies   []map[string]interface{}
}

func (f *fakeFullTextIndex) Search(ctx context.Context, body map[string]interface{}) (*search.KeywordResult, error) {
	f.bodies = append(f.bodies, body)
	return f.searchFn(ctx, body)
}

type fakeMetadataStore struct {
	documents map[string]search.Document
	err       error
	calls     int
}

func (f *fakeMetadataStore) GetDocuments(ctx context.Context, assetIDs []string) (map[string]search.Document, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	found := make(map[string]search.Document)
	for _, id := range assetIDs {
		if doc, ok := f.documents[id]; ok {
			found[id] = doc
		}
	}
	return found, nil
}

type fakeSigner struct {
	err     error
	calls   int
	lastLen int
}

func (f *fakeSigner) SignBatch(ctx context.Context, refs []search.ObjectRef) ([]string, error) {
	f.calls++
	f.lastLen = len(refs)
	if f.err != nil {
		return nil, f.err
	}
	urls := make([]string, len(refs))
	for i, ref := range refs {
		if ref.Bucket != "" && ref.Key != "" {
			urls[i] = "https://cdn.example/" + ref.Bucket + "/" + ref.Key + "?sig=x"
		}
	}
	return urls, nil
}

type fakeProviderStore struct {
	providers []search.ProviderConfig
	err       error
	calls     int
}

func (f *fakeProviderStore) ListProviders(ctx context.Context) ([]search.ProviderConfig, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.providers, nil
}

type fakeEmbedder struct {
	embedFn func(ctx context.Context, text string) ([]float32, error)
}

func (f *fakeEmbedder) GetEmbedding(ctx context.Context, text string) ([]float32, error) {
	if f.embedFn != nil {
		return f.embedFn(ctx, text)
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

type fakeSemanticService struct {
	hits     []search.RankedHit
	err      error
	requests []search.SemanticRequest
}

func (f *fakeSemanticService) Search(ctx context.Context, req search.SemanticRequest) ([]search.RankedHit, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	hits := f.hits
	if req.Limit > 0 && len(hits) > req.Limit {
		hits = hits[:req.Limit]
	}
	return hits, nil
}

type fakeResolver struct {
	embedder search.Embedder
	semantic search.SemanticService
}

func (f *fakeResolver) Embedder(p search.ProviderConfig) (search.Embedder, error) {
	return f.embedder, nil
}

func (f *fakeResolver) Semantic(p search.ProviderConfig) (search.SemanticService, error) {
	return f.semantic, nil
}
