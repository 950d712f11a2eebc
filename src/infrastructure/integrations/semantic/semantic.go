package semantic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"mediasearch/src/core/search"
)

// Client talks to a turnkey semantic-search service that performs the whole
// similarity search itself and returns ranked asset references.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

func NewClient(baseURL string, c *http.Client) *Client {
	return &Client{
		httpClient: c,
		baseURL:    baseURL,
	}
}

type searchRequest struct {
	Query     string `json:"query"`
	MediaType string `json:"mediaType,omitempty"`
	Limit     int    `json:"limit,omitempty"`
}

type searchResponse struct {
	Hits []struct {
		AssetID string  `json:"assetId"`
		Score   float64 `json:"score"`
	} `json:"hits"`
}

// Search forwards the query and returns the service's ranked hits. Scores
// arrive already normalized to [0,1].
func (c *Client) Search(ctx context.Context, req search.SemanticRequest) ([]search.RankedHit, error) {
	jsonData, err := json.Marshal(searchRequest{
		Query:     req.Text,
		MediaType: req.MediaType,
		Limit:     req.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("error marshaling request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/search", c.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("semantic search failed with status %s", resp.Status)
	}

	var decoded searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("error decoding response: %w", err)
	}

	hits := make([]search.RankedHit, 0, len(decoded.Hits))
	for _, h := range decoded.Hits {
		hits = append(hits, search.RankedHit{AssetID: h.AssetID, Score: h.Score})
	}
	return hits, nil
}
