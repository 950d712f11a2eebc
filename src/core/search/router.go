package search

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"mediasearch/src/log"
)

// DefaultProviderTTL bounds how long a provider configuration snapshot is
// served before a reload.
const DefaultProviderTTL = 60 * time.Second

type providerSnapshot struct {
	providers   []ProviderConfig
	refreshedAt time.Time
}

// Router decides which backend answers a query and owns the provider
// configuration cache. Reads go through an atomic snapshot pointer so a
// refresh in progress never blocks concurrent readers of the stale-but-valid
// snapshot; refreshes themselves are serialized.
type Router struct {
	store ProviderStore
	ttl   time.Duration

	snapshot  atomic.Pointer[providerSnapshot]
	refreshMu sync.Mutex
}

func NewRouter(store ProviderStore, ttl time.Duration) *Router {
	if ttl <= 0 {
		ttl = DefaultProviderTTL
	}
	return &Router{
		store: store,
		ttl:   ttl,
	}
}

// Select picks exactly one provider for a semantic query, in order of
// preference: an external semantic service matching the media constraint, a
// semantic-capable provider-plus-store pairing, then any default provider.
// Keyword queries must never reach here; the service routes them straight to
// the full-text path.
func (r *Router) Select(ctx context.Context, q SearchQuery) (ProviderConfig, error) {
	providers := r.Providers(ctx)

	for _, p := range providers {
		if p.Architecture == ArchitectureExternalSemanticService && p.SupportsMedia(q.MediaType) {
			return p, nil
		}
	}
	for _, p := range providers {
		if p.Architecture == ArchitectureProviderPlusStore && p.Semantic {
			return p, nil
		}
	}
	for _, p := range providers {
		if p.Default {
			return p, nil
		}
	}

	return ProviderConfig{}, ErrNoProviderAvailable
}

// Providers returns the current provider snapshot, reloading it when the
// cache is empty or the TTL elapsed. A failed reload degrades to the
// previous snapshot if one exists, otherwise to empty (keyword-only).
func (r *Router) Providers(ctx context.Context) []ProviderConfig {
	snap := r.snapshot.Load()
	if snap != nil && time.Since(snap.refreshedAt) < r.ttl {
		return snap.providers
	}
	return r.refresh(ctx)
}

func (r *Router) refresh(ctx context.Context) []ProviderConfig {
	r.refreshMu.Lock()
	defer r.refreshMu.Unlock()

	// Another request may have refreshed while we waited on the lock.
	if snap := r.snapshot.Load(); snap != nil && time.Since(snap.refreshedAt) < r.ttl {
		return snap.providers
	}

	providers, err := r.store.ListProviders(ctx)
	if err != nil {
		log.Error(err, "failed to reload provider configuration, keeping previous snapshot")
		prev := r.snapshot.Load()
		var kept []ProviderConfig
		if prev != nil {
			kept = prev.providers
		}
		// Re-stamp so a dead config store is not hammered on every request.
		r.snapshot.Store(&providerSnapshot{providers: kept, refreshedAt: time.Now()})
		return kept
	}

	r.snapshot.Store(&providerSnapshot{providers: providers, refreshedAt: time.Now()})
	log.Debug("provider configuration reloaded", "count", len(providers))
	return providers
}

// Status reports availability and capabilities per configured provider.
func (r *Router) Status(ctx context.Context) []ProviderStatus {
	providers := r.Providers(ctx)
	statuses := make([]ProviderStatus, 0, len(providers))
	for _, p := range providers {
		statuses = append(statuses, ProviderStatus{
			ID:           p.ID,
			Available:    true,
			Architecture: p.Architecture,
			Location:     p.Location,
			MediaTypes:   p.MediaTypes,
			Semantic:     p.Semantic,
		})
	}
	return statuses
}
