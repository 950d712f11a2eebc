package search

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/panjf2000/ants/v2"

	"mediasearch/src/log"
)

const (
	// MaxNeighbors is the hard cap the vector index places on a single
	// nearest-neighbor query.
	MaxNeighbors = 30

	// maxDiscoveryRounds bounds the exclusion-filtered re-queries issued
	// after the unfiltered round 0.
	maxDiscoveryRounds = 3

	// minUniqueAssets is the diversity target that stops discovery early.
	minUniqueAssets = 5

	// DefaultPoolSize bounds concurrent per-asset vector fetches.
	DefaultPoolSize = 10
)

// videoEmbeddingOptions is the allow-list of embedding flavors relevant when
// re-fetching a video asset's vectors. Image and audio assets skip this
// filter.
var videoEmbeddingOptions = []string{"clip", "keyframe", "transcript"}

// DiscoveryEngine surfaces a diverse set of candidate assets from a vector
// index that caps every query at MaxNeighbors results. A single query risks
// returning only clips of one or two dominant assets; the engine re-queries
// with a growing exclusion filter until enough distinct assets are seen.
type DiscoveryEngine struct {
	index VectorIndex
	pool  *ants.Pool
}

func NewDiscoveryEngine(index VectorIndex, poolSize int) (*DiscoveryEngine, error) {
	if poolSize < 1 {
		poolSize = DefaultPoolSize
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create discovery worker pool: %w", err)
	}
	return &DiscoveryEngine{
		index: index,
		pool:  pool,
	}, nil
}

// Release frees the worker pool. The engine must not be used afterwards.
func (e *DiscoveryEngine) Release() {
	e.pool.Release()
}

// Discovered is the outcome of the diverse-sampling rounds: the distinct
// asset IDs seen, each with the media type carried on its vectors, plus the
// union of all raw hits.
type Discovered struct {
	MediaTypes map[string]string // asset ID -> media type
	Hits       []VectorHit
}

// Discover runs round 0 without exclusions, then up to maxDiscoveryRounds
// re-queries that exclude every asset already seen, stopping early once
// minUniqueAssets are found or a round surfaces nothing new. A failed round
// after round 0 is logged and absorbed; discovery degrades, it does not
// abort the search.
func (e *DiscoveryEngine) Discover(ctx context.Context, embedding []float32) (*Discovered, error) {
	discovered := &Discovered{MediaTypes: make(map[string]string)}

	for round := 0; round <= maxDiscoveryRounds; round++ {
		q := VectorQuery{
			Embedding: embedding,
			Limit:     MaxNeighbors,
		}
		if len(discovered.MediaTypes) > 0 {
			where := exclusionPredicate(discovered.MediaTypes)
			q.Where = &where
		}

		hits, err := e.index.Query(ctx, q)
		if err != nil {
			if round == 0 {
				return nil, fmt.Errorf("%w: vector discovery round 0: %v", ErrBackendUnavailable, err)
			}
			log.Error(err, "vector discovery round failed, keeping accumulated assets",
				"round", round, "discovered", len(discovered.MediaTypes))
			return discovered, nil
		}

		fresh := 0
		for _, hit := range hits {
			if hit.AssetID == "" {
				continue
			}
			if _, seen := discovered.MediaTypes[hit.AssetID]; !seen {
				discovered.MediaTypes[hit.AssetID] = hit.MediaType
				fresh++
			}
		}
		discovered.Hits = append(discovered.Hits, hits...)

		log.Debug("vector discovery round complete",
			"round", round, "hits", len(hits), "fresh_assets", fresh, "discovered", len(discovered.MediaTypes))

		if len(discovered.MediaTypes) >= minUniqueAssets {
			break
		}
		if round > 0 && fresh == 0 {
			// The index has no neighbors outside the excluded set.
			break
		}
		if round == 0 && len(hits) == 0 {
			break
		}
	}

	return discovered, nil
}

// exclusionPredicate builds the "none of these assets" filter for the next
// round. Asset IDs are sorted so the predicate is deterministic for a given
// discovered set.
func exclusionPredicate(discovered map[string]string) VectorPredicate {
	ids := make([]string, 0, len(discovered))
	for id := range discovered {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	operands := make([]VectorPredicate, 0, len(ids))
	for _, id := range ids {
		operands = append(operands, NotEqual("assetId", id))
	}
	if len(operands) == 1 {
		return operands[0]
	}
	return And(operands...)
}

// FetchAssetVectors re-queries the index scoped to a single asset so the
// aggregation stage sees the asset's complete set of matching vectors, not
// just the neighbors that survived the capped discovery rounds. Video assets
// additionally restrict the embedding flavor to the relevant allow-list.
func (e *DiscoveryEngine) FetchAssetVectors(ctx context.Context, embedding []float32, assetID, mediaType string) ([]VectorHit, error) {
	where := Equal("assetId", assetID)
	if mediaType == "video" {
		where = And(where, ContainsAny("embeddingOption", videoEmbeddingOptions...))
	}

	hits, err := e.index.Query(ctx, VectorQuery{
		Embedding: embedding,
		Limit:     MaxNeighbors,
		Where:     &where,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: fetching vectors for asset %s: %v", ErrBackendUnavailable, assetID, err)
	}
	return hits, nil
}

// FetchAll runs the per-asset second pass concurrently on the bounded worker
// pool and returns the union of every asset's vectors. Result order is not
// meaningful; the aggregation stage re-sorts deterministically.
func (e *DiscoveryEngine) FetchAll(ctx context.Context, embedding []float32, discovered *Discovered) ([]VectorHit, error) {
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		all      []VectorHit
		firstErr error
	)

	for assetID, mediaType := range discovered.MediaTypes {
		assetID, mediaType := assetID, mediaType
		wg.Add(1)
		err := e.pool.Submit(func() {
			defer wg.Done()

			if ctx.Err() != nil {
				return
			}
			hits, err := e.FetchAssetVectors(ctx, embedding, assetID, mediaType)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return
			}
			all = append(all, hits...)
		})
		if err != nil {
			wg.Done()
			return nil, fmt.Errorf("failed to submit vector fetch for asset %s: %w", assetID, err)
		}
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return all, nil
}
