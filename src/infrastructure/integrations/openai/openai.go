package openai

import (
	"context"
	"fmt"

	goopenai "github.com/sashabaranov/go-openai"
)

const DefaultModel = string(goopenai.SmallEmbedding3)

// Client is an OpenAI-compatible embedding client bound to one model.
type Client struct {
	api   *goopenai.Client
	model string
}

// NewClient creates an embedding client. A non-empty baseURL points it at an
// OpenAI-compatible gateway instead of the public API.
func NewClient(apiKey, baseURL, model string) *Client {
	cfg := goopenai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = DefaultModel
	}

	return &Client{
		api:   goopenai.NewClientWithConfig(cfg),
		model: model,
	}
}

// GetEmbedding generates an embedding vector for the given text
func (c *Client) GetEmbedding(ctx context.Context, text string) ([]float32, error) {
	resp, err := c.api.CreateEmbeddings(ctx, goopenai.EmbeddingRequestStrings{
		Input: []string{text},
		Model: goopenai.EmbeddingModel(c.model),
	})
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("embedding response contained no data")
	}

	return resp.Data[0].Embedding, nil
}
