package weaviate

import (
	"context"
	"fmt"

	"github.com/weaviate/weaviate-go-client/v4/weaviate"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/filters"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"

	"mediasearch/src/core/search"
)

// Property names on the media vector class.
const (
	propVectorKey       = "vectorKey"
	propAssetID         = "assetId"
	propScope           = "scope"
	propEmbeddingOption = "embeddingOption"
	propMediaType       = "mediaType"
	propStartOffsetSec  = "startOffsetSec"
	propEndOffsetSec    = "endOffsetSec"
)

// SDK encapsulates vector queries against the media vector class. The index
// caps a single query at search.MaxNeighbors results; larger limits are
// clamped.
type SDK struct {
	client    *weaviate.Client
	className string
}

func NewSDK(client *weaviate.Client, className string) *SDK {
	return &SDK{
		client:    client,
		className: className,
	}
}

// Query performs a nearest-neighbor search with an optional metadata
// predicate and returns hits with their raw cosine distances.
func (w *SDK) Query(ctx context.Context, q search.VectorQuery) ([]search.VectorHit, error) {
	fields := []graphql.Field{
		{Name: propVectorKey},
		{Name: propAssetID},
		{Name: propScope},
		{Name: propEmbeddingOption},
		{Name: propMediaType},
		{Name: propStartOffsetSec},
		{Name: propEndOffsetSec},
		{Name: "_additional { distance }"},
	}

	limit := q.Limit
	if limit <= 0 || limit > search.MaxNeighbors {
		limit = search.MaxNeighbors
	}

	query := w.client.GraphQL().Get().
		WithClassName(w.className).
		WithFields(fields...).
		WithNearVector(w.client.GraphQL().NearVectorArgBuilder().WithVector(q.Embedding)).
		WithLimit(limit)

	if q.Where != nil {
		where, err := toWhereFilter(*q.Where)
		if err != nil {
			return nil, err
		}
		query = query.WithWhere(where)
	}

	result, err := query.Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query vectors: %w", err)
	}
	if len(result.Errors) > 0 {
		return nil, fmt.Errorf("vector query returned errors: %v", result.Errors[0].Message)
	}

	return w.decodeHits(result.Data)
}

// toWhereFilter translates the backend-neutral predicate into a weaviate
// where filter. Unknown operators are a programming error and fail loudly.
func toWhereFilter(p search.VectorPredicate) (*filters.WhereBuilder, error) {
	switch p.Op {
	case search.PredicateEqual:
		return filters.Where().
			WithPath([]string{p.Field}).
			WithOperator(filters.Equal).
			WithValueText(p.Values...), nil
	case search.PredicateNotEqual:
		return filters.Where().
			WithPath([]string{p.Field}).
			WithOperator(filters.NotEqual).
			WithValueText(p.Values...), nil
	case search.PredicateContainsAny:
		return filters.Where().
			WithPath([]string{p.Field}).
			WithOperator(filters.ContainsAny).
			WithValueText(p.Values...), nil
	case search.PredicateAnd:
		operands := make([]*filters.WhereBuilder, 0, len(p.Operands))
		for _, op := range p.Operands {
			built, err := toWhereFilter(op)
			if err != nil {
				return nil, err
			}
			operands = append(operands, built)
		}
		return filters.Where().
			WithOperator(filters.And).
			WithOperands(operands), nil
	default:
		return nil, fmt.Errorf("unsupported vector predicate operator %q", p.Op)
	}
}

func (w *SDK) decodeHits(data map[string]models.JSONObject) ([]search.VectorHit, error) {
	get, ok := data["Get"].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("unexpected vector query response: missing Get")
	}
	objects, ok := get[w.className].([]interface{})
	if !ok {
		return []search.VectorHit{}, nil
	}

	hits := make([]search.VectorHit, 0, len(objects))
	for _, obj := range objects {
		props, ok := obj.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("unexpected vector query response: object is not a map")
		}
		hit, err := decodeHit(props)
		if err != nil {
			return nil, err
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

// decodeHit decodes one result object against the explicit property schema.
func decodeHit(props map[string]interface{}) (search.VectorHit, error) {
	additional, ok := props["_additional"].(map[string]interface{})
	if !ok {
		return search.VectorHit{}, fmt.Errorf("vector hit missing _additional metadata")
	}
	distance, ok := additional["distance"].(float64)
	if !ok {
		return search.VectorHit{}, fmt.Errorf("vector hit missing distance")
	}

	assetID := stringProp(props, propAssetID)
	if assetID == "" {
		return search.VectorHit{}, fmt.Errorf("vector hit missing assetId")
	}

	return search.VectorHit{
		Key:             stringProp(props, propVectorKey),
		Distance:        distance,
		AssetID:         assetID,
		Scope:           search.VectorScope(stringProp(props, propScope)),
		EmbeddingOption: stringProp(props, propEmbeddingOption),
		MediaType:       stringProp(props, propMediaType),
		StartOffsetSec:  floatProp(props, propStartOffsetSec),
		EndOffsetSec:    floatProp(props, propEndOffsetSec),
	}, nil
}

func stringProp(props map[string]interface{}, name string) string {
	v, _ := props[name].(string)
	return v
}

func floatProp(props map[string]interface{}, name string) float64 {
	v, _ := props[name].(float64)
	return v
}
