package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/nuntius/internal/common"
	"github.com/ternarybob/nuntius/internal/httpclient"
	"github.com/ternarybob/nuntius/internal/models"
)

// Client fetches tracked companies and their articles from the discovery
// API. The API is read-only: one GET authenticated with a static
// bearer-style header token.
type Client struct {
	config *common.DiscoveryConfig
	logger arbor.ILogger
	client *http.Client
}

// NewClient creates a discovery client from configuration
func NewClient(config *common.DiscoveryConfig, logger arbor.ILogger) *Client {
	return &Client{
		config: config,
		logger: logger,
		client: httpclient.NewDefaultHTTPClient(config.RequestTimeout),
	}
}

// Companies lists all tracked companies with their discovered articles
func (c *Client) Companies(ctx context.Context) ([]models.Company, error) {
	url := c.config.BaseURL + "/companies"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build discovery request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.config.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.Token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("discovery request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("discovery returned status %d", resp.StatusCode)
	}

	var companies []models.Company
	if err := json.NewDecoder(resp.Body).Decode(&companies); err != nil {
		return nil, fmt.Errorf("failed to decode discovery response: %w", err)
	}

	c.logger.Debug().
		Int("companies", len(companies)).
		Str("url", url).
		Msg("Discovery fetch completed")

	return companies, nil
}
