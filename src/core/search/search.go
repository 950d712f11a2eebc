package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mediasearch/src/log"
)

// DefaultTimeout is the per-request time budget.
const DefaultTimeout = 15 * time.Second

// Stages of the per-request state machine, used for error context. Done and
// Failed are implicit terminal states.
const (
	stagePlanning    = "planning"
	stageRouting     = "routing"
	stageQuerying    = "querying"
	stageDiscovering = "discovering"
	stageAggregating = "aggregating"
	stageAssembling  = "assembling"
)

// Service runs the full search pipeline: planning, routing, querying,
// discovery and aggregation for the semantic path, then assembly. Stateless
// per request apart from the router's provider cache.
type Service struct {
	fulltext   FullTextIndex
	router     *Router
	discovery  *DiscoveryEngine
	aggregator *Aggregator
	assembler  *Assembler
	resolver   ProviderResolver
	timeout    time.Duration
}

func NewService(
	fulltext FullTextIndex,
	router *Router,
	discovery *DiscoveryEngine,
	aggregator *Aggregator,
	assembler *Assembler,
	resolver ProviderResolver,
	timeout time.Duration,
) *Service {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Service{
		fulltext:   fulltext,
		router:     router,
		discovery:  discovery,
		aggregator: aggregator,
		assembler:  assembler,
		resolver:   resolver,
		timeout:    timeout,
	}
}

// Search answers one request within the configured time budget. Exceeding
// the budget aborts in-flight sub-calls and surfaces ErrSearchTimeout
// instead of a partial result.
func (s *Service) Search(ctx context.Context, raw RawQuery) (*SearchResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	q, err := PlanQuery(raw)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	resp, stage, err := s.run(ctx, q)
	if err != nil {
		err = s.mapTimeout(ctx, err)
		log.Error(err, "search failed", "stage", stage, "mode", q.Mode.String(), "term", q.Text)
		return nil, err
	}

	log.Info("search complete",
		"mode", q.Mode.String(),
		"term", q.Text,
		"total", resp.Metadata.TotalResults,
		"returned", len(resp.Results),
		"elapsed", time.Since(started).String())
	return resp, nil
}

func (s *Service) run(ctx context.Context, q SearchQuery) (*SearchResponse, string, error) {
	// Keyword mode always bypasses provider selection; this is a hard rule.
	if q.Mode == ModeKeyword {
		return s.keywordSearch(ctx, q)
	}

	provider, err := s.router.Select(ctx, q)
	if err != nil {
		return nil, stageRouting, err
	}
	log.Debug("provider selected", "provider", provider.ID, "architecture", string(provider.Architecture))

	switch provider.Architecture {
	case ArchitectureExternalSemanticService:
		return s.externalSemanticSearch(ctx, q, provider)
	case ArchitectureProviderPlusStore:
		return s.providerStoreSearch(ctx, q, provider)
	default:
		return nil, stageRouting, fmt.Errorf("%w: unknown provider architecture %q", ErrNoProviderAvailable, provider.Architecture)
	}
}

// keywordSearch issues the boosted query, retrying exactly once with the
// simplified two-clause query when the index rejects it for complexity.
func (s *Service) keywordSearch(ctx context.Context, q SearchQuery) (*SearchResponse, string, error) {
	result, err := s.fulltext.Search(ctx, BuildKeywordQuery(q))
	if errors.Is(err, ErrQueryTooComplex) {
		log.Info("full query rejected for complexity, retrying simplified", "term", q.Text)
		result, err = s.fulltext.Search(ctx, BuildSimplifiedQuery(q))
		if errors.Is(err, ErrQueryTooComplex) {
			// The two-clause fallback was rejected too; no further retries.
			err = fmt.Errorf("%w: simplified query rejected: %v", ErrBackendUnavailable, err)
		}
	}
	if err != nil {
		return nil, stageQuerying, err
	}

	resp, err := s.assembler.AssembleKeyword(ctx, q, result)
	if err != nil {
		return nil, stageAssembling, err
	}
	return resp, "", nil
}

func (s *Service) externalSemanticSearch(ctx context.Context, q SearchQuery, provider ProviderConfig) (*SearchResponse, string, error) {
	svc, err := s.resolver.Semantic(provider)
	if err != nil {
		return nil, stageRouting, fmt.Errorf("%w: resolving provider %s: %v", ErrNoProviderAvailable, provider.ID, err)
	}

	// The candidate list must not depend on the requested page: totalResults
	// counts every hit clearing the threshold, so the cap is the maximum
	// page window, never the current one.
	ranked, err := svc.Search(ctx, SemanticRequest{
		Text:      q.Text,
		MediaType: q.MediaType,
		Limit:     MaxPageSize,
	})
	if err != nil {
		return nil, stageQuerying, fmt.Errorf("%w: external semantic service %s: %v", ErrBackendUnavailable, provider.ID, err)
	}

	hits, err := s.aggregator.AttachDocuments(ctx, ranked)
	if err != nil {
		return nil, stageAggregating, err
	}

	resp, err := s.assembler.AssembleSemantic(ctx, q, hits)
	if err != nil {
		return nil, stageAssembling, err
	}
	return resp, "", nil
}

func (s *Service) providerStoreSearch(ctx context.Context, q SearchQuery, provider ProviderConfig) (*SearchResponse, string, error) {
	embedder, err := s.resolver.Embedder(provider)
	if err != nil {
		return nil, stageRouting, fmt.Errorf("%w: resolving provider %s: %v", ErrNoProviderAvailable, provider.ID, err)
	}

	embedding, err := embedder.GetEmbedding(ctx, q.Text)
	if err != nil {
		return nil, stageQuerying, fmt.Errorf("%w: query embedding: %v", ErrBackendUnavailable, err)
	}

	discovered, err := s.discovery.Discover(ctx, embedding)
	if err != nil {
		return nil, stageDiscovering, err
	}
	if len(discovered.MediaTypes) == 0 {
		return s.emptySemanticResponse(q), "", nil
	}

	vectors, err := s.discovery.FetchAll(ctx, embedding, discovered)
	if err != nil {
		return nil, stageDiscovering, err
	}
	// The capped discovery hits back up the per-asset fetch; the aggregator
	// dedupes by vector key.
	vectors = append(vectors, discovered.Hits...)

	hits, err := s.aggregator.Aggregate(ctx, vectors)
	if err != nil {
		return nil, stageAggregating, err
	}

	resp, err := s.assembler.AssembleSemantic(ctx, q, hits)
	if err != nil {
		return nil, stageAssembling, err
	}
	return resp, "", nil
}

func (s *Service) emptySemanticResponse(q SearchQuery) *SearchResponse {
	return &SearchResponse{
		Metadata: SearchMetadata{
			TotalResults: 0,
			Page:         q.Page,
			PageSize:     q.PageSize,
			SearchTerm:   q.Text,
		},
		Results: []SearchHit{},
	}
}

// ProviderStatuses exposes the router's view for the status endpoint.
func (s *Service) ProviderStatuses(ctx context.Context) []ProviderStatus {
	return s.router.Status(ctx)
}

func (s *Service) mapTimeout(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: budget of %s exceeded", ErrSearchTimeout, s.timeout)
	}
	return err
}
