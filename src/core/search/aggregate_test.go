package search_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"mediasearch/src/core/search"
)

func docsFor(ids ...string) map[string]search.Document {
	docs := make(map[string]search.Document, len(ids))
	for _, id := range ids {
		docs[id] = search.Document{"fileName": id + ".mp4"}
	}
	return docs
}

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestAggregateClipOnlyAssetTakesBestClipScore(t *testing.T) {
	store := &fakeMetadataStore{documents: docsFor("asset-a")}
	agg := search.NewAggregator(store)

	hits := []search.VectorHit{
		{Key: "a#1", Distance: 0.8, AssetID: "asset-a", Scope: search.ScopeClip},
		{Key: "a#2", Distance: 0.2, AssetID: "asset-a", Scope: search.ScopeClip},
		{Key: "a#3", Distance: 1.4, AssetID: "asset-a", Scope: search.ScopeClip},
	}

	results, err := agg.Aggregate(context.Background(), hits)
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("len(results) = %d, want 1", len(results))
	}

	// Best clip (distance 0.2 -> score 0.9) stands in for the missing
	// asset-scope score.
	if !approxEqual(results[0].Score, 0.9) {
		t.Errorf("Score = %v, want 0.9", results[0].Score)
	}
	if len(results[0].Clips) != 3 {
		t.Fatalf("len(Clips) = %d, want 3", len(results[0].Clips))
	}
	for i := 1; i < len(results[0].Clips); i++ {
		if results[0].Clips[i].Score > results[0].Clips[i-1].Score {
			t.Errorf("clips not sorted descending at %d", i)
		}
	}
}

func TestAggregateAssetScopeScoreWinsOverClips(t *testing.T) {
	store := &fakeMetadataStore{documents: docsFor("asset-a")}
	agg := search.NewAggregator(store)

	// Asset-scope score 0.7 is lower than the best clip's 0.95 but still
	// wins: clip scores only substitute when no asset-scope vector matched.
	hits := []search.VectorHit{
		{Key: "a#asset", Distance: 0.6, AssetID: "asset-a", Scope: search.ScopeAsset},
		{Key: "a#clip", Distance: 0.1, AssetID: "asset-a", Scope: search.ScopeClip},
	}

	results, err := agg.Aggregate(context.Background(), hits)
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("len(results) = %d, want 1", len(results))
	}
	if !approxEqual(results[0].Score, 0.7) {
		t.Errorf("Score = %v, want asset-scope 0.7", results[0].Score)
	}
	if len(results[0].Clips) != 1 {
		t.Errorf("len(Clips) = %d, want 1 (clips still attached)", len(results[0].Clips))
	}
}

func TestAggregateDedupesByVectorKey(t *testing.T) {
	store := &fakeMetadataStore{documents: docsFor("asset-a")}
	agg := search.NewAggregator(store)

	// The discovery union and the per-asset second pass can both return the
	// same vector; the key dedupes it.
	hits := []search.VectorHit{
		{Key: "a#1", Distance: 0.4, AssetID: "asset-a", Scope: search.ScopeClip},
		{Key: "a#1", Distance: 0.4, AssetID: "asset-a", Scope: search.ScopeClip},
	}

	results, err := agg.Aggregate(context.Background(), hits)
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}
	if len(results[0].Clips) != 1 {
		t.Errorf("len(Clips) = %d, want 1 after key dedupe", len(results[0].Clips))
	}
}

func TestAggregateBatchesMetadataRead(t *testing.T) {
	store := &fakeMetadataStore{documents: docsFor("asset-a", "asset-b", "asset-c")}
	agg := search.NewAggregator(store)

	hits := []search.VectorHit{
		{Key: "a#1", Distance: 0.2, AssetID: "asset-a", Scope: search.ScopeClip},
		{Key: "b#1", Distance: 0.4, AssetID: "asset-b", Scope: search.ScopeClip},
		{Key: "c#1", Distance: 0.6, AssetID: "asset-c", Scope: search.ScopeClip},
	}

	if _, err := agg.Aggregate(context.Background(), hits); err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}
	if store.calls != 1 {
		t.Errorf("metadata store calls = %d, want 1 batched multi-get", store.calls)
	}
}

func TestAggregateDropsAssetWithoutDocument(t *testing.T) {
	store := &fakeMetadataStore{documents: docsFor("asset-a")}
	agg := search.NewAggregator(store)

	hits := []search.VectorHit{
		{Key: "a#1", Distance: 0.2, AssetID: "asset-a", Scope: search.ScopeClip},
		{Key: "orphan#1", Distance: 0.1, AssetID: "asset-orphan", Scope: search.ScopeClip},
	}

	results, err := agg.Aggregate(context.Background(), hits)
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}
	if len(results) != 1 || results[0].AssetID != "asset-a" {
		t.Errorf("results = %v, want only asset-a", results)
	}
}

func TestAggregateDeterministicOrdering(t *testing.T) {
	store := &fakeMetadataStore{documents: docsFor("asset-a", "asset-b", "asset-c")}
	agg := search.NewAggregator(store)

	// asset-b and asset-c tie on score; asset ID breaks the tie.
	hits := []search.VectorHit{
		{Key: "c#1", Distance: 0.4, AssetID: "asset-c", Scope: search.ScopeClip},
		{Key: "b#1", Distance: 0.4, AssetID: "asset-b", Scope: search.ScopeClip},
		{Key: "a#1", Distance: 0.2, AssetID: "asset-a", Scope: search.ScopeClip},
	}

	for i := 0; i < 3; i++ {
		results, err := agg.Aggregate(context.Background(), hits)
		if err != nil {
			t.Fatalf("Aggregate() error = %v", err)
		}
		want := []string{"asset-a", "asset-b", "asset-c"}
		for j, id := range want {
			if results[j].AssetID != id {
				t.Fatalf("run %d: results[%d] = %s, want %s", i, j, results[j].AssetID, id)
			}
		}
	}
}

func TestAggregateStoreFailure(t *testing.T) {
	store := &fakeMetadataStore{err: errors.New("mget failed")}
	agg := search.NewAggregator(store)

	hits := []search.VectorHit{{Key: "a#1", Distance: 0.2, AssetID: "asset-a", Scope: search.ScopeClip}}
	if _, err := agg.Aggregate(context.Background(), hits); !errors.Is(err, search.ErrBackendUnavailable) {
		t.Fatalf("Aggregate() error = %v, want ErrBackendUnavailable", err)
	}
}

func TestAggregateEmptyInput(t *testing.T) {
	store := &fakeMetadataStore{}
	agg := search.NewAggregator(store)

	results, err := agg.Aggregate(context.Background(), nil)
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}
	if results == nil || len(results) != 0 {
		t.Errorf("results = %v, want empty non-nil slice", results)
	}
	if store.calls != 0 {
		t.Errorf("metadata store calls = %d, want 0 for empty input", store.calls)
	}
}

func TestAttachDocuments(t *testing.T) {
	store := &fakeMetadataStore{documents: docsFor("asset-a", "asset-b")}
	agg := search.NewAggregator(store)

	ranked := []search.RankedHit{
		{AssetID: "asset-b", Score: 0.9},
		{AssetID: "asset-a", Score: 0.6},
		{AssetID: "asset-missing", Score: 0.99},
	}

	results, err := agg.AttachDocuments(context.Background(), ranked)
	if err != nil {
		t.Fatalf("AttachDocuments() error = %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("len(results) = %d, want 2 (missing doc dropped)", len(results))
	}
	if results[0].AssetID != "asset-b" || results[1].AssetID != "asset-a" {
		t.Errorf("order = %s, %s, want asset-b then asset-a", results[0].AssetID, results[1].AssetID)
	}
	if results[0].Source == nil {
		t.Error("Source document not attached")
	}
}
