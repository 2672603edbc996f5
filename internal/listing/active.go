package listing

import (
	"context"
	"fmt"
	"net/url"

	"github.com/donaldgifford/meli-lister/internal/meli"
	"github.com/donaldgifford/meli-lister/internal/metrics"
)

// StatusActive is the remote status of a listing that is live.
const StatusActive = "active"

// Summary is the read-only projection of an active listing.
type Summary struct {
	ID        string  `json:"id"`
	Permalink string  `json:"permalink"`
	Price     float64 `json:"price"`
	Title     string  `json:"title"`
}

// ListActive searches the items of userID and fetches each one in turn,
// keeping those whose status is active. Lookups are sequential; a slow item
// delays the whole result.
func ListActive(ctx context.Context, api meli.API, userID string) ([]Summary, error) {
	ids, err := searchItems(ctx, api, userID)
	if err != nil {
		return nil, err
	}
	metrics.ActiveListingsFetched.Observe(float64(len(ids)))

	summaries := make([]Summary, 0, len(ids))
	for _, id := range ids {
		item, err := getItem(ctx, api, id.String())
		if err != nil {
			return nil, err
		}
		if item.Status != StatusActive {
			continue
		}
		summaries = append(summaries, Summary{
			ID:        item.ID,
			Permalink: item.Permalink,
			Price:     item.Price,
			Title:     item.Title,
		})
	}
	return summaries, nil
}

func searchItems(ctx context.Context, api meli.API, userID string) ([]meli.ID, error) {
	resp, err := api.Get(ctx, "/users/"+url.PathEscape(userID)+"/items/search", nil)
	if err != nil {
		return nil, fmt.Errorf("searching items: %w", err)
	}
	if !resp.OK() {
		return nil, fmt.Errorf("searching items: %w",
			&RemoteError{Status: resp.StatusCode, Body: string(resp.Body)})
	}

	var search meli.ItemSearch
	if err := resp.Decode(&search); err != nil {
		return nil, fmt.Errorf("searching items: %w", err)
	}
	return search.Results, nil
}

func getItem(ctx context.Context, api meli.API, id string) (*meli.Item, error) {
	resp, err := api.Get(ctx, "/items/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, fmt.Errorf("fetching item %s: %w", id, err)
	}
	if !resp.OK() {
		return nil, fmt.Errorf("fetching item %s: %w", id,
			&RemoteError{Status: resp.StatusCode, Body: string(resp.Body)})
	}

	var item meli.Item
	if err := resp.Decode(&item); err != nil {
		return nil, fmt.Errorf("fetching item %s: %w", id, err)
	}
	return &item, nil
}
