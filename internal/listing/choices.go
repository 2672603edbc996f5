// Package listing assembles the listing form from marketplace reference data
// and implements the create and active-listings operations.
package listing

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/donaldgifford/meli-lister/internal/meli"
)

// DefaultSiteID is the marketplace site listing types are fetched for.
const DefaultSiteID = "MLA"

// ErrChoicesUnavailable is returned when a reference list cannot be fetched,
// decoded, or comes back empty. The form is never built from partial data.
var ErrChoicesUnavailable = errors.New("listing reference data unavailable")

// Choice is one allowed value of a choice field with its display label.
type Choice struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Choices holds the dynamic choice lists of the listing form.
type Choices struct {
	Currencies   []Choice
	ListingTypes []Choice
}

// Static choice lists.
var (
	BuyingModes = []Choice{
		{Value: "buy_it_now", Label: "Buy it now"},
		{Value: "auction", Label: "Auction"},
	}
	Conditions = []Choice{
		{Value: "new", Label: "New"},
		{Value: "used", Label: "Used"},
		{Value: "not_specified", Label: "Not specified"},
	}
)

// FetchChoices performs both reference lookups. Either failure fails the
// whole call.
func FetchChoices(ctx context.Context, api meli.API, siteID string) (*Choices, error) {
	currencies, err := FetchCurrencies(ctx, api)
	if err != nil {
		return nil, err
	}
	types, err := FetchListingTypes(ctx, api, siteID)
	if err != nil {
		return nil, err
	}
	return &Choices{Currencies: currencies, ListingTypes: types}, nil
}

// FetchCurrencies maps GET /currencies/ to (id, description) pairs.
func FetchCurrencies(ctx context.Context, api meli.API) ([]Choice, error) {
	var currencies []meli.Currency
	if err := fetchList(ctx, api, "/currencies/", &currencies); err != nil {
		return nil, fmt.Errorf("%w: currencies: %w", ErrChoicesUnavailable, err)
	}

	choices := make([]Choice, 0, len(currencies))
	for _, c := range currencies {
		choices = append(choices, Choice{Value: c.ID, Label: c.Description})
	}
	return choices, nil
}

// FetchListingTypes maps GET /sites/{siteID}/listing_types/ to (id, name)
// pairs.
func FetchListingTypes(ctx context.Context, api meli.API, siteID string) ([]Choice, error) {
	if siteID == "" {
		siteID = DefaultSiteID
	}

	var types []meli.ListingType
	if err := fetchList(ctx, api, "/sites/"+siteID+"/listing_types/", &types); err != nil {
		return nil, fmt.Errorf("%w: listing types: %w", ErrChoicesUnavailable, err)
	}

	choices := make([]Choice, 0, len(types))
	for _, lt := range types {
		choices = append(choices, Choice{Value: lt.ID, Label: lt.Name})
	}
	return choices, nil
}

func fetchList[T any](ctx context.Context, api meli.API, path string, dst *[]T) error {
	resp, err := api.Get(ctx, path, nil)
	if err != nil {
		return err
	}
	if !resp.OK() {
		return &RemoteError{Status: resp.StatusCode, Body: string(resp.Body)}
	}
	if err := resp.Decode(dst); err != nil {
		return err
	}
	if len(*dst) == 0 {
		return fmt.Errorf("empty response from %s", path)
	}
	return nil
}

// RemoteError is a non-2xx marketplace response carried verbatim.
type RemoteError struct {
	Status int
	Body   string
}

// ErrRemoteRejection matches every *RemoteError via errors.Is.
var ErrRemoteRejection = errors.New("marketplace rejected the request")

func (e *RemoteError) Error() string {
	return fmt.Sprintf("marketplace returned %d %s: %s", e.Status, http.StatusText(e.Status), e.Body)
}

// Is makes errors.Is(err, ErrRemoteRejection) true.
func (*RemoteError) Is(target error) bool {
	return target == ErrRemoteRejection
}

// HTTPStatus returns the marketplace status code.
func (e *RemoteError) HTTPStatus() int {
	return e.Status
}

func asRemote(err error) (*RemoteError, bool) {
	var re *RemoteError
	ok := errors.As(err, &re)
	return re, ok
}
