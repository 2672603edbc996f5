package listing

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/donaldgifford/meli-lister/internal/meli"
	"github.com/donaldgifford/meli-lister/internal/metrics"
)

// Created is the result of an accepted listing.
type Created struct {
	ID        string `json:"id"`
	Permalink string `json:"permalink,omitempty"`
}

// NewItemFromDraft serializes d into the marketplace item-creation body.
func NewItemFromDraft(d Draft) (meli.NewItem, error) {
	price, err := FormatPrice(d.Price)
	if err != nil {
		return meli.NewItem{}, err
	}

	item := meli.NewItem{
		Title:              d.Title,
		CategoryID:         d.CategoryID,
		Price:              price,
		CurrencyID:         d.CurrencyID,
		BuyingMode:         d.BuyingMode,
		ListingTypeID:      d.ListingTypeID,
		Condition:          d.Condition,
		Description:        d.Description,
		Warranty:           d.Warranty,
		AcceptsMercadoPago: d.AcceptsMercadoPago,
		VideoID:            d.VideoID,
		SellerCustomField:  d.SellerCustomField,
	}
	if d.Quantity > 0 {
		q := d.Quantity
		item.AvailableQuantity = &q
	}
	return item, nil
}

// Create posts d as a new item. Only a 201 counts as success; any other
// status is returned as a *RemoteError carrying the body verbatim. The
// request is never retried.
func Create(ctx context.Context, api meli.API, d Draft, log *slog.Logger) (*Created, error) {
	item, err := NewItemFromDraft(d)
	if err != nil {
		return nil, err
	}

	resp, err := api.Post(ctx, "/items", item, nil)
	if err != nil {
		return nil, fmt.Errorf("creating listing: %w", err)
	}

	if resp.StatusCode != http.StatusCreated {
		metrics.ListingsRejectedTotal.Inc()
		log.Warn("listing rejected by marketplace",
			"status", resp.StatusCode,
			"category_id", d.CategoryID,
		)
		return nil, &RemoteError{Status: resp.StatusCode, Body: string(resp.Body)}
	}

	var created meli.CreatedItem
	if err := resp.Decode(&created); err != nil {
		return nil, fmt.Errorf("creating listing: %w", err)
	}

	metrics.ListingsCreatedTotal.Inc()
	log.Info("listing created", "item_id", created.ID.String())
	return &Created{ID: created.ID.String(), Permalink: created.Permalink}, nil
}

// AttachRemoteError adds the verbatim body of a *RemoteError to fe as a
// form-level message and reports whether err was one.
func AttachRemoteError(fe *FormErrors, err error) bool {
	re, ok := asRemote(err)
	if !ok {
		return false
	}
	fe.AddNonField(re.Body)
	return true
}
