package web_test

import (
	"bytes"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/meli-lister/internal/listing"
	"github.com/donaldgifford/meli-lister/internal/web"
)

func render(t *testing.T, page string, data any) string {
	t.Helper()

	r, err := web.NewRenderer()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, page, data, nil))
	return buf.String()
}

func TestRender_Login(t *testing.T) {
	t.Parallel()

	out := render(t, web.PageLogin, web.LoginPage{
		AuthURL: "https://auth.mercadolibre.com.ar/authorization?client_id=1&response_type=code",
	})
	assert.Contains(t, out, `href="https://auth.mercadolibre.com.ar/authorization?client_id=1&amp;response_type=code"`)
}

func TestRender_Home(t *testing.T) {
	t.Parallel()

	out := render(t, web.PageHome, web.HomePage{Authenticated: true, UserID: "202593498", Created: "MLA3135"})
	assert.Contains(t, out, "202593498")
	assert.Contains(t, out, "Listing MLA3135 created.")

	out = render(t, web.PageHome, web.HomePage{})
	assert.Contains(t, out, `href="/login"`)
}

func TestRender_ActiveListings(t *testing.T) {
	t.Parallel()

	out := render(t, web.PageActiveListings, web.ActiveListingsPage{
		Listings: []listing.Summary{{ID: "MLA1", Permalink: "https://example.com/MLA1", Price: 10.5, Title: "<b>Item</b>"}},
	})
	assert.Contains(t, out, "MLA1")
	assert.Contains(t, out, "10.50")
	assert.Contains(t, out, "&lt;b&gt;Item&lt;/b&gt;")

	out = render(t, web.PageActiveListings, web.ActiveListingsPage{})
	assert.Contains(t, out, "No active listings.")
}

func TestRender_ListItem(t *testing.T) {
	t.Parallel()

	errs := &listing.FormErrors{}
	errs.AddNonField(`{"error_message": "Category ID non-existent"}`)
	errs.Add("price", "Enter a number greater than zero with at most 2 decimal places.")

	page := web.NewListItemPage(listing.Choices{
		Currencies:   []listing.Choice{{Value: "ARS", Label: "Peso Argentino"}},
		ListingTypes: []listing.Choice{{Value: "free", Label: "Gratuita"}},
	}, listing.Draft{Title: "My item", CurrencyID: "ARS", Quantity: 2}, errs)

	out := render(t, web.PageListItem, page)
	assert.Contains(t, out, "Category ID non-existent")
	assert.Contains(t, out, "at most 2 decimal places")
	assert.Contains(t, out, `<option value="ARS" selected>Peso Argentino</option>`)
	assert.Contains(t, out, `<option value="free">Gratuita</option>`)
	assert.Contains(t, out, `value="My item"`)
	assert.Contains(t, out, `value="2"`)
	assert.Contains(t, out, `<option value="buy_it_now">Buy it now</option>`)
}

func TestRender_ListItemWithoutErrors(t *testing.T) {
	t.Parallel()

	out := render(t, web.PageListItem, web.NewListItemPage(listing.Choices{}, listing.Draft{}, nil))
	assert.NotContains(t, out, `class="error"`)
}

func TestRender_Error(t *testing.T) {
	t.Parallel()

	out := render(t, web.PageError, web.ErrorPage{
		Status:  http.StatusServiceUnavailable,
		Title:   "Service unavailable",
		Message: "marketplace service unavailable",
	})
	assert.Contains(t, out, "Service unavailable")
}

func TestRender_UnknownPage(t *testing.T) {
	t.Parallel()

	r, err := web.NewRenderer()
	require.NoError(t, err)

	var buf bytes.Buffer
	assert.Error(t, r.Render(&buf, "missing", nil, nil))
}
