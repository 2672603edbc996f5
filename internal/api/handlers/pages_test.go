package handlers_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/meli-lister/internal/meli"
	"github.com/donaldgifford/meli-lister/internal/session"
)

func validListingForm() url.Values {
	return url.Values{
		"title":               {"Item de test - No Ofertar"},
		"category_id":         {"MLA9558"},
		"price":               {"10.5"},
		"currency_id":         {"ARS"},
		"available_quantity":  {"1"},
		"buying_mode":         {"buy_it_now"},
		"listing_type_id":     {"free"},
		"condition":           {"new"},
		"accepts_mercadopago": {"on"},
	}
}

func (s *testServer) postForm(target string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	return s.do(http.MethodPost, target, form.Encode(), echo.MIMEApplicationForm, cookie)
}

func TestLogin(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	s.api.EXPECT().AuthURL(testCallbackURL).
		Return("https://auth.mercadolibre.com.ar/authorization?client_id=app-id")

	rec := s.get("/login", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "https://auth.mercadolibre.com.ar/authorization?client_id=app-id")

	values := s.sessionValues(t, responseCookie(t, rec))
	assert.Equal(t, map[session.Field]string{
		session.FieldClientID:     "app-id",
		session.FieldClientSecret: "app-secret",
	}, values)
}

func TestAuthorize_WithoutSessionRedirectsWithoutAPICall(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)

	rec := s.get("/authorize?code=TG-123", nil)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get(echo.HeaderLocation))
	assert.Empty(t, s.built, "no marketplace client may be built")
}

func TestAuthorize_MissingCodeRedirects(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	s.api.EXPECT().AuthURL(testCallbackURL).Return("https://auth.example.com")

	cookie := responseCookie(t, s.get("/login", nil))
	built := len(s.built)

	rec := s.get("/authorize", cookie)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get(echo.HeaderLocation))
	assert.Len(t, s.built, built)
}

func TestLoginAuthorizeFlow(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	s.api.EXPECT().AuthURL(testCallbackURL).Return("https://auth.example.com")
	s.api.EXPECT().Authorize(mock.Anything, "TG-123", testCallbackURL).Return(nil)
	s.api.EXPECT().Get(mock.Anything, "/users/me", mock.Anything).
		Return(okJSON(`{"id":202593498,"nickname":"TESTUSER"}`), nil)
	s.api.EXPECT().Credentials().Return(meli.Credentials{
		ClientID:     "app-id",
		ClientSecret: "app-secret",
		AccessToken:  "APP_USR-token",
		RefreshToken: "TG-refresh",
	})

	cookie := responseCookie(t, s.get("/login", nil))

	rec := s.get("/authorize?code=TG-123", cookie)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get(echo.HeaderLocation))

	values := s.sessionValues(t, cookie)
	assert.Equal(t, "APP_USR-token", values[session.FieldAccessToken])
	assert.Equal(t, "TG-refresh", values[session.FieldRefreshToken])
	assert.Equal(t, testUserID, values[session.FieldUserID])

	home := s.get("/", cookie)
	require.Equal(t, http.StatusOK, home.Code)
	assert.Contains(t, home.Body.String(), testUserID)
}

func TestAuthorize_RejectedCodeRedirectsToLogin(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	s.api.EXPECT().AuthURL(testCallbackURL).Return("https://auth.example.com")
	s.api.EXPECT().Authorize(mock.Anything, "used", testCallbackURL).
		Return(&meli.APIError{StatusCode: http.StatusBadRequest, Body: `{"error":"invalid_grant"}`})

	cookie := responseCookie(t, s.get("/login", nil))
	rec := s.get("/authorize?code=used", cookie)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get(echo.HeaderLocation))
}

func TestAuthorize_TransportFailureIs503(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	s.api.EXPECT().AuthURL(testCallbackURL).Return("https://auth.example.com")
	s.api.EXPECT().Authorize(mock.Anything, "TG-123", testCallbackURL).
		Return(fmt.Errorf("%w: connection refused", meli.ErrTransport))

	cookie := responseCookie(t, s.get("/login", nil))
	rec := s.get("/authorize?code=TG-123", cookie)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "marketplace service unavailable")
}

func TestHome_Unauthenticated(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	rec := s.get("/?created=MLA3135", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "You are not signed in.")
	assert.Contains(t, rec.Body.String(), "Listing MLA3135 created.")
}

func TestActiveListings(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	s.api.EXPECT().Get(mock.Anything, "/users/202593498/items/search", mock.Anything).
		Return(okJSON(`{"results":["A","B"]}`), nil)
	s.api.EXPECT().Get(mock.Anything, "/items/A", mock.Anything).
		Return(okJSON(`{"id":"A","title":"Active item","price":99.9,"permalink":"https://example.com/A","status":"active"}`), nil)
	s.api.EXPECT().Get(mock.Anything, "/items/B", mock.Anything).
		Return(okJSON(`{"id":"B","title":"Paused item","price":5,"permalink":"https://example.com/B","status":"paused"}`), nil)

	rec := s.get("/active_listings", s.authenticatedCookie(t))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Active item")
	assert.Contains(t, body, "99.90")
	assert.NotContains(t, body, "Paused item")

	require.NotEmpty(t, s.built)
	assert.Equal(t, "APP_USR-token", s.built[0].AccessToken)
}

func TestActiveListings_Unauthenticated(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	rec := s.get("/active_listings", nil)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get(echo.HeaderLocation))
	assert.Empty(t, s.built)
}

func TestActiveListings_ExpiredTokenForcesLogin(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	s.api.EXPECT().Get(mock.Anything, "/users/202593498/items/search", mock.Anything).
		Return(&meli.Response{StatusCode: http.StatusUnauthorized, Body: []byte(`{"message":"invalid_token"}`)}, nil)

	cookie := s.authenticatedCookie(t)
	rec := s.get("/active_listings", cookie)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get(echo.HeaderLocation))
	assert.Equal(t, 0, s.store.Len(), "expired session must be deleted")
}

func TestActiveListings_TransportFailure(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	s.api.EXPECT().Get(mock.Anything, "/users/202593498/items/search", mock.Anything).
		Return(nil, fmt.Errorf("%w: i/o timeout", meli.ErrTransport))

	rec := s.get("/active_listings", s.authenticatedCookie(t))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestListItemForm(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	s.expectChoices()

	rec := s.get("/list_item", s.authenticatedCookie(t))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `<option value="ARS">Peso Argentino</option>`)
	assert.Contains(t, body, `<option value="free">Gratuita</option>`)
}

func TestListItemForm_ReferenceDataFailure(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	s.api.EXPECT().Get(mock.Anything, "/currencies/", mock.Anything).
		Return(&meli.Response{StatusCode: http.StatusInternalServerError, Body: []byte(`{"message":"boom"}`)}, nil)

	rec := s.get("/list_item", s.authenticatedCookie(t))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.NotContains(t, rec.Body.String(), "<form")
}

func TestListItemSubmit_Created(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	s.expectChoices()
	s.api.EXPECT().Post(mock.Anything, "/items", mock.AnythingOfType("meli.NewItem"), mock.Anything).
		Return(&meli.Response{StatusCode: http.StatusCreated, Body: []byte(`{"id": 3135}`)}, nil)

	rec := s.postForm("/list_item", validListingForm(), s.authenticatedCookie(t))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/?created=3135", rec.Header().Get(echo.HeaderLocation))
}

func TestListItemSubmit_RemoteRejection(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	s.expectChoices()
	s.api.EXPECT().Post(mock.Anything, "/items", mock.Anything, mock.Anything).
		Return(&meli.Response{
			StatusCode: http.StatusBadRequest,
			Body:       []byte(`{"error_message": "Category ID non-existent"}`),
		}, nil)

	rec := s.postForm("/list_item", validListingForm(), s.authenticatedCookie(t))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get(echo.HeaderLocation))
	assert.Contains(t, rec.Body.String(), "Category ID non-existent")
	assert.Contains(t, rec.Body.String(), `value="Item de test - No Ofertar"`)
}

func TestListItemSubmit_InvalidDraftMakesNoPost(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	s.expectChoices()

	form := validListingForm()
	form.Set("price", "10.555")
	form.Set("currency_id", "USD")

	rec := s.postForm("/list_item", form, s.authenticatedCookie(t))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "at most 2 decimal places")
	assert.Contains(t, body, "USD is not one of the available choices")
	s.api.AssertNotCalled(t, "Post", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestListItemSubmit_Unauthenticated(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	rec := s.postForm("/list_item", validListingForm(), nil)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get(echo.HeaderLocation))
}

func TestLogout(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	cookie := s.authenticatedCookie(t)

	rec := s.get("/logout", cookie)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get(echo.HeaderLocation))
	assert.Equal(t, 0, s.store.Len())

	expired := responseCookie(t, rec)
	assert.Equal(t, -1, expired.MaxAge)

	// A second logout with the stale cookie ends in the same state.
	rec = s.get("/logout", cookie)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, 0, s.store.Len())
	assert.Empty(t, s.sessionValues(t, cookie))
}
