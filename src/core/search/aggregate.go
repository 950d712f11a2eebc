package search

import (
	"context"
	"fmt"
	"sort"

	"mediasearch/src/log"
)

// Aggregator groups clip-level vector hits under their parent asset, merges
// scores, and attaches metadata documents in a single batched read.
type Aggregator struct {
	store MetadataStore
}

func NewAggregator(store MetadataStore) *Aggregator {
	return &Aggregator{store: store}
}

type assetGroup struct {
	assetScore float64
	hasAsset   bool
	clips      []ClipHit
}

// Aggregate turns raw vector hits into ranked SearchHits. Final score
// policy: a positive asset-scope score wins; otherwise the best clip score
// substitutes (logged). Ordering: score descending, asset ID ascending on
// ties so pagination is reproducible.
func (a *Aggregator) Aggregate(ctx context.Context, hits []VectorHit) ([]SearchHit, error) {
	groups := make(map[string]*assetGroup)
	seen := make(map[string]bool)

	for _, hit := range hits {
		if hit.AssetID == "" || seen[hit.Key] {
			continue
		}
		seen[hit.Key] = true

		g, ok := groups[hit.AssetID]
		if !ok {
			g = &assetGroup{}
			groups[hit.AssetID] = g
		}

		score := NormalizeDistance(hit.Distance)
		switch hit.Scope {
		case ScopeAsset:
			if !g.hasAsset || score > g.assetScore {
				g.assetScore = score
				g.hasAsset = true
			}
		case ScopeClip:
			g.clips = append(g.clips, ClipHit{
				Key:             hit.Key,
				Score:           score,
				EmbeddingOption: hit.EmbeddingOption,
				StartOffsetSec:  hit.StartOffsetSec,
				EndOffsetSec:    hit.EndOffsetSec,
			})
		}
	}

	if len(groups) == 0 {
		return []SearchHit{}, nil
	}

	assetIDs := make([]string, 0, len(groups))
	for id := range groups {
		assetIDs = append(assetIDs, id)
	}
	sort.Strings(assetIDs)

	documents, err := a.store.GetDocuments(ctx, assetIDs)
	if err != nil {
		return nil, fmt.Errorf("%w: metadata multi-get: %v", ErrBackendUnavailable, err)
	}

	results := make([]SearchHit, 0, len(groups))
	for _, assetID := range assetIDs {
		g := groups[assetID]

		doc, found := documents[assetID]
		if !found {
			log.Info("dropping candidate asset without metadata document", "asset_id", assetID)
			continue
		}

		sort.Slice(g.clips, func(i, j int) bool {
			if g.clips[i].Score != g.clips[j].Score {
				return g.clips[i].Score > g.clips[j].Score
			}
			return g.clips[i].Key < g.clips[j].Key
		})

		score := g.assetScore
		if !g.hasAsset || g.assetScore <= 0 {
			if len(g.clips) == 0 {
				continue
			}
			score = g.clips[0].Score
			log.Debug("substituting best clip score for missing asset-scope score",
				"asset_id", assetID, "score", score)
		}

		results = append(results, SearchHit{
			AssetID: assetID,
			Score:   score,
			Source:  doc,
			Clips:   g.clips,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].AssetID < results[j].AssetID
	})

	return results, nil
}

// AttachDocuments builds SearchHits for hits that arrive already ranked from
// a turnkey semantic service, fetching all metadata in one batched read.
func (a *Aggregator) AttachDocuments(ctx context.Context, ranked []RankedHit) ([]SearchHit, error) {
	if len(ranked) == 0 {
		return []SearchHit{}, nil
	}

	assetIDs := make([]string, 0, len(ranked))
	for _, h := range ranked {
		assetIDs = append(assetIDs, h.AssetID)
	}

	documents, err := a.store.GetDocuments(ctx, assetIDs)
	if err != nil {
		return nil, fmt.Errorf("%w: metadata multi-get: %v", ErrBackendUnavailable, err)
	}

	results := make([]SearchHit, 0, len(ranked))
	for _, h := range ranked {
		doc, found := documents[h.AssetID]
		if !found {
			log.Info("dropping candidate asset without metadata document", "asset_id", h.AssetID)
			continue
		}
		results = append(results, SearchHit{
			AssetID: h.AssetID,
			Score:   h.Score,
			Source:  doc,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].AssetID < results[j].AssetID
	})

	return results, nil
}
