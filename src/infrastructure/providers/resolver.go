package providers

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"mediasearch/src/core/search"
	"mediasearch/src/infrastructure/integrations/ollama"
	"mediasearch/src/infrastructure/integrations/openai"
	"mediasearch/src/infrastructure/integrations/semantic"
)

// Config carries the credentials the resolver can hand out. A provider row
// names which credential it uses through its credentialRef.
type Config struct {
	OllamaURL     string
	OllamaModel   string
	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string
	HTTPTimeout   time.Duration
}

// Resolver maps provider configuration rows to concrete backend clients,
// caching one client per provider.
type Resolver struct {
	cfg Config

	mu        sync.Mutex
	embedders map[string]search.Embedder
	semantics map[string]search.SemanticService
}

func NewResolver(cfg Config) *Resolver {
	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = 30 * time.Second
	}
	return &Resolver{
		cfg:       cfg,
		embedders: make(map[string]search.Embedder),
		semantics: make(map[string]search.SemanticService),
	}
}

// Embedder returns the embedding client for a ProviderPlusStore provider,
// selected by its credentialRef ("ollama" or "openai").
func (r *Resolver) Embedder(p search.ProviderConfig) (search.Embedder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if embedder, ok := r.embedders[p.ID]; ok {
		return embedder, nil
	}

	var embedder search.Embedder
	switch p.CredentialRef {
	case "ollama":
		baseURL := p.Endpoint
		if baseURL == "" {
			baseURL = r.cfg.OllamaURL
		}
		embedder = ollama.NewClient(baseURL, r.cfg.OllamaModel, &http.Client{Timeout: r.cfg.HTTPTimeout})
	case "openai":
		embedder = openai.NewClient(r.cfg.OpenAIAPIKey, r.cfg.OpenAIBaseURL, r.cfg.OpenAIModel)
	default:
		return nil, fmt.Errorf("unknown embedding credential ref %q for provider %s", p.CredentialRef, p.ID)
	}

	r.embedders[p.ID] = embedder
	return embedder, nil
}

// Semantic returns the client for an ExternalSemanticService provider.
func (r *Resolver) Semantic(p search.ProviderConfig) (search.SemanticService, error) {
	if p.Endpoint == "" {
		return nil, fmt.Errorf("provider %s has no endpoint", p.ID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if svc, ok := r.semantics[p.ID]; ok {
		return svc, nil
	}

	svc := semantic.NewClient(p.Endpoint, &http.Client{Timeout: r.cfg.HTTPTimeout})
	r.semantics[p.ID] = svc
	return svc, nil
}
