package providerctrl

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"mediasearch/src/core/search"
)

// Provider is the stored configuration row for one semantic-search backend.
type Provider struct {
	ID            int64     `gorm:"primaryKey" json:"id"`
	Name          string    `gorm:"not null;uniqueIndex" json:"name"`
	Architecture  string    `gorm:"not null" json:"architecture"`
	Location      string    `gorm:"not null" json:"location"`
	MediaTypes    string    `gorm:"column:media_types" json:"media_types"` // comma-separated
	Semantic      bool      `json:"semantic"`
	IsDefault     bool      `gorm:"column:is_default" json:"is_default"`
	Endpoint      string    `json:"endpoint"`
	CredentialRef string    `gorm:"column:credential_ref" json:"credential_ref"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ProviderService reads provider configuration. The search subsystem only
// lists; Create exists for the seeding CLI.
type ProviderService struct {
	db        *gorm.DB
	snowflake *snowflake.Node
}

func NewProviderService(db *gorm.DB) (*ProviderService, error) {
	// Initialize snowflake node
	node, err := snowflake.NewNode(2) // Node number 2 for providers
	if err != nil {
		return nil, fmt.Errorf("failed to create snowflake node: %v", err)
	}

	return &ProviderService{
		db:        db,
		snowflake: node,
	}, nil
}

// ListProviders returns every configured provider mapped to the search
// domain model, ordered by name for stable selection.
func (s *ProviderService) ListProviders(ctx context.Context) ([]search.ProviderConfig, error) {
	var rows []Provider
	result := s.db.WithContext(ctx).Order("name ASC").Find(&rows)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list providers: %v", result.Error)
	}

	providers := make([]search.ProviderConfig, 0, len(rows))
	for _, row := range rows {
		providers = append(providers, toConfig(row))
	}
	return providers, nil
}

func (s *ProviderService) Create(ctx context.Context, cfg search.ProviderConfig, name string) (*Provider, error) {
	provider := &Provider{
		ID:            s.snowflake.Generate().Int64(),
		Name:          name,
		Architecture:  string(cfg.Architecture),
		Location:      string(cfg.Location),
		MediaTypes:    strings.Join(cfg.MediaTypes, ","),
		Semantic:      cfg.Semantic,
		IsDefault:     cfg.Default,
		Endpoint:      cfg.Endpoint,
		CredentialRef: cfg.CredentialRef,
	}

	result := s.db.WithContext(ctx).Create(provider)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to create provider: %v", result.Error)
	}

	return provider, nil
}

func toConfig(row Provider) search.ProviderConfig {
	var mediaTypes []string
	if row.MediaTypes != "" {
		mediaTypes = strings.Split(row.MediaTypes, ",")
	}
	return search.ProviderConfig{
		ID:            fmt.Sprintf("%d", row.ID),
		Architecture:  search.ProviderArchitecture(row.Architecture),
		Location:      search.ProviderLocation(row.Location),
		MediaTypes:    mediaTypes,
		Semantic:      row.Semantic,
		Default:       row.IsDefault,
		Endpoint:      row.Endpoint,
		CredentialRef: row.CredentialRef,
	}
}
