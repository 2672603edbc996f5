package client

import (
	"context"
	"net/url"
	"time"

	"github.com/donaldgifford/meli-lister/internal/listing"
)

type choicesResponse struct {
	Choices []listing.Choice `json:"choices"`
}

// Currencies returns the marketplace currencies as (id, description) pairs.
func (c *Client) Currencies(ctx context.Context) ([]listing.Choice, error) {
	var resp choicesResponse
	if err := c.get(ctx, "/api/v1/reference/currencies", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Choices, nil
}

// ListingTypes returns the listing types of siteID. An empty siteID uses the
// server's configured site.
func (c *Client) ListingTypes(ctx context.Context, siteID string) ([]listing.Choice, error) {
	var query url.Values
	if siteID != "" {
		query = url.Values{"site_id": {siteID}}
	}

	var resp choicesResponse
	if err := c.get(ctx, "/api/v1/reference/listing-types", query, &resp); err != nil {
		return nil, err
	}
	return resp.Choices, nil
}

// Quota is the outbound marketplace quota reported by the server.
type Quota struct {
	DailyLimit int64     `json:"daily_limit"`
	DailyUsed  int64     `json:"daily_used"`
	Remaining  int64     `json:"remaining"`
	ResetAt    time.Time `json:"reset_at"`
}

// GetQuota returns the server's marketplace quota status.
func (c *Client) GetQuota(ctx context.Context) (*Quota, error) {
	var q Quota
	if err := c.get(ctx, "/api/v1/quota", nil, &q); err != nil {
		return nil, err
	}
	return &q, nil
}

// Ready reports whether the server's session backend is reachable.
func (c *Client) Ready(ctx context.Context) error {
	return c.get(ctx, "/readyz", nil, nil)
}
