package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/donaldgifford/meli-lister/internal/auth"
	"github.com/donaldgifford/meli-lister/internal/listing"
	"github.com/donaldgifford/meli-lister/internal/meli"
	"github.com/donaldgifford/meli-lister/internal/session"
)

// APIHandler serves the JSON API. It shares the browser session with the
// HTML pages.
type APIHandler struct {
	flow   *auth.Flow
	siteID string
	log    *slog.Logger
}

// NewAPIHandler creates a new APIHandler.
func NewAPIHandler(flow *auth.Flow, siteID string, log *slog.Logger) *APIHandler {
	return &APIHandler{flow: flow, siteID: siteID, log: log}
}

// --- Input/Output types ---

// SessionOutput is the response for the session endpoint.
type SessionOutput struct {
	Body struct {
		State  string `json:"state"             example:"authenticated" doc:"Login handshake state" enum:"unauthenticated,pending_authorization,authenticated"`
		UserID string `json:"user_id,omitempty" example:"202593498"     doc:"Marketplace user id once authenticated"`
	}
}

// ChoicesOutput is the response for the reference-data endpoints.
type ChoicesOutput struct {
	Body struct {
		Choices []listing.Choice `json:"choices"`
	}
}

// ActiveListingsOutput is the response for the active listings endpoint.
type ActiveListingsOutput struct {
	Body struct {
		Listings []listing.Summary `json:"listings"`
		Total    int               `json:"total"`
	}
}

// CreateListingInput is the request for publishing a listing.
type CreateListingInput struct {
	Body struct {
		Title              string `json:"title"                         minLength:"1" maxLength:"255" doc:"Listing title"`
		CategoryID         string `json:"category_id"                   minLength:"1"                 doc:"Marketplace category id" example:"MLA9558"`
		Price              string `json:"price"                         minLength:"1"                 doc:"Positive decimal with at most 2 decimal places" example:"10.50"`
		CurrencyID         string `json:"currency_id"                   minLength:"1"                 doc:"Currency id from /api/v1/reference/currencies" example:"ARS"`
		Quantity           int    `json:"available_quantity,omitempty"  minimum:"1"                   doc:"Available quantity"`
		BuyingMode         string `json:"buying_mode"                   enum:"buy_it_now,auction"     doc:"Buying mode"`
		ListingTypeID      string `json:"listing_type_id"               minLength:"1"                 doc:"Listing type id from /api/v1/reference/listing-types" example:"free"`
		Condition          string `json:"condition"                     enum:"new,used,not_specified" doc:"Item condition"`
		Description        string `json:"description,omitempty"                                       doc:"Plain-text description"`
		VideoID            string `json:"video_id,omitempty"                                          doc:"Video id"`
		Warranty           string `json:"warranty,omitempty"                                          doc:"Warranty text"`
		SellerCustomField  string `json:"seller_custom_field,omitempty"                               doc:"Seller custom field"`
		AcceptsMercadoPago bool   `json:"accepts_mercadopago,omitempty"                               doc:"Accept MercadoPago payments"`
	}
}

// CreateListingOutput is the response for a published listing.
type CreateListingOutput struct {
	Body listing.Created
}

// --- Handlers ---

// GetSession reports the login state of the calling browser session.
func (*APIHandler) GetSession(ctx context.Context, _ *struct{}) (*SessionOutput, error) {
	creds, ok := session.FromContext(ctx)
	if !ok {
		return nil, huma.Error500InternalServerError("request has no session")
	}

	resp := &SessionOutput{}
	resp.Body.State = auth.StateOf(creds).String()
	resp.Body.UserID, _ = creds.Get(session.FieldUserID)
	return resp, nil
}

// ListCurrencies returns the currencies a listing can be priced in.
func (h *APIHandler) ListCurrencies(ctx context.Context, _ *struct{}) (*ChoicesOutput, error) {
	api, err := h.flow.AppClient()
	if err != nil {
		return nil, h.apiError(ctx, err)
	}

	choices, err := listing.FetchCurrencies(ctx, api)
	if err != nil {
		return nil, h.apiError(ctx, err)
	}

	resp := &ChoicesOutput{}
	resp.Body.Choices = choices
	return resp, nil
}

// ListingTypesInput selects the marketplace site.
type ListingTypesInput struct {
	SiteID string `query:"site_id" pattern:"^[A-Z]{3}$" doc:"Marketplace site id; defaults to the configured site" example:"MLA"`
}

// ListListingTypes returns the listing types of a site.
func (h *APIHandler) ListListingTypes(ctx context.Context, input *ListingTypesInput) (*ChoicesOutput, error) {
	api, err := h.flow.AppClient()
	if err != nil {
		return nil, h.apiError(ctx, err)
	}

	siteID := h.siteID
	if input.SiteID != "" {
		siteID = input.SiteID
	}

	choices, err := listing.FetchListingTypes(ctx, api, siteID)
	if err != nil {
		return nil, h.apiError(ctx, err)
	}

	resp := &ChoicesOutput{}
	resp.Body.Choices = choices
	return resp, nil
}

// ListActiveListings returns the active listings of the signed-in user.
func (h *APIHandler) ListActiveListings(ctx context.Context, _ *struct{}) (*ActiveListingsOutput, error) {
	a, err := h.require(ctx)
	if err != nil {
		return nil, h.apiError(ctx, err)
	}

	summaries, err := listing.ListActive(ctx, a.Client, a.UserID)
	if err != nil {
		return nil, h.apiError(ctx, err)
	}

	resp := &ActiveListingsOutput{}
	resp.Body.Listings = summaries
	resp.Body.Total = len(summaries)
	return resp, nil
}

// CreateListing validates and publishes a listing.
func (h *APIHandler) CreateListing(ctx context.Context, input *CreateListingInput) (*CreateListingOutput, error) {
	a, err := h.require(ctx)
	if err != nil {
		return nil, h.apiError(ctx, err)
	}

	choices, err := listing.FetchChoices(ctx, a.Client, h.siteID)
	if err != nil {
		return nil, h.apiError(ctx, err)
	}

	b := input.Body
	draft := listing.Draft{
		Title:              b.Title,
		CategoryID:         b.CategoryID,
		Price:              b.Price,
		CurrencyID:         b.CurrencyID,
		Quantity:           b.Quantity,
		BuyingMode:         b.BuyingMode,
		ListingTypeID:      b.ListingTypeID,
		Condition:          b.Condition,
		Description:        b.Description,
		VideoID:            b.VideoID,
		Warranty:           b.Warranty,
		SellerCustomField:  b.SellerCustomField,
		AcceptsMercadoPago: b.AcceptsMercadoPago,
	}

	if err := listing.NewForm(*choices).Validate(draft); err != nil {
		return nil, h.apiError(ctx, err)
	}

	created, err := listing.Create(ctx, a.Client, draft, h.log)
	if err != nil {
		return nil, h.apiError(ctx, err)
	}

	return &CreateListingOutput{Body: *created}, nil
}

func (h *APIHandler) require(ctx context.Context) (*auth.Authenticated, error) {
	creds, ok := session.FromContext(ctx)
	if !ok {
		return nil, errNoSession
	}
	return h.flow.Require(creds)
}

// apiError maps domain errors to huma status errors. An expired marketplace
// token clears the session.
func (h *APIHandler) apiError(ctx context.Context, err error) error {
	if auth.NeedsLogin(err) {
		if creds, ok := session.FromContext(ctx); ok && auth.Expired(err) {
			h.flow.Logout(creds)
		}
		return huma.Error401Unauthorized("login required")
	}

	var fe *listing.FormErrors
	if errors.As(err, &fe) {
		details := make([]error, 0, len(fe.Fields))
		for field, msgs := range fe.Fields {
			for _, msg := range msgs {
				details = append(details, &huma.ErrorDetail{
					Location: "body." + field,
					Message:  msg,
				})
			}
		}
		return huma.Error422UnprocessableEntity("invalid listing", details...)
	}

	switch {
	case errors.Is(err, meli.ErrTransport):
		return huma.Error503ServiceUnavailable("marketplace service unavailable")
	case errors.Is(err, meli.ErrDailyLimitReached):
		return huma.Error429TooManyRequests("marketplace daily request limit reached")
	case errors.Is(err, listing.ErrChoicesUnavailable):
		return huma.Error502BadGateway(err.Error())
	}

	var re *listing.RemoteError
	if errors.As(err, &re) {
		if re.Status >= http.StatusInternalServerError {
			return huma.Error502BadGateway(re.Body)
		}
		return huma.Error422UnprocessableEntity(re.Body)
	}

	h.log.Error("api request failed", "error", err)
	return huma.Error500InternalServerError("internal server error")
}

// RegisterAPIRoutes registers the JSON API with the Huma API.
func RegisterAPIRoutes(api huma.API, h *APIHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "get-session",
		Method:      http.MethodGet,
		Path:        "/api/v1/session",
		Summary:     "Get session state",
		Description: "Returns the login state of the calling browser session.",
		Tags:        []string{"session"},
	}, h.GetSession)

	huma.Register(api, huma.Operation{
		OperationID: "list-currencies",
		Method:      http.MethodGet,
		Path:        "/api/v1/reference/currencies",
		Summary:     "List currencies",
		Description: "Returns the marketplace currencies as value/label pairs.",
		Tags:        []string{"reference"},
	}, h.ListCurrencies)

	huma.Register(api, huma.Operation{
		OperationID: "list-listing-types",
		Method:      http.MethodGet,
		Path:        "/api/v1/reference/listing-types",
		Summary:     "List listing types",
		Description: "Returns the listing types of a site (default: the configured site) as value/label pairs.",
		Tags:        []string{"reference"},
	}, h.ListListingTypes)

	huma.Register(api, huma.Operation{
		OperationID: "list-active-listings",
		Method:      http.MethodGet,
		Path:        "/api/v1/listings/active",
		Summary:     "List active listings",
		Description: "Returns the listings of the signed-in user whose status is active.",
		Tags:        []string{"listings"},
	}, h.ListActiveListings)

	huma.Register(api, huma.Operation{
		OperationID:   "create-listing",
		Method:        http.MethodPost,
		Path:          "/api/v1/listings",
		Summary:       "Publish a listing",
		Description:   "Validates the listing against live reference data and publishes it.",
		Tags:          []string{"listings"},
		DefaultStatus: http.StatusCreated,
	}, h.CreateListing)
}
