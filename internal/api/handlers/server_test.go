package handlers_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/danielgtaylor/huma/v2/adapters/humaecho"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/meli-lister/api/openapi"
	"github.com/donaldgifford/meli-lister/internal/api/handlers"
	mw "github.com/donaldgifford/meli-lister/internal/api/middleware"
	"github.com/donaldgifford/meli-lister/internal/auth"
	"github.com/donaldgifford/meli-lister/internal/meli"
	"github.com/donaldgifford/meli-lister/internal/meli/mocks"
	"github.com/donaldgifford/meli-lister/internal/session"
	"github.com/donaldgifford/meli-lister/internal/store"
	"github.com/donaldgifford/meli-lister/internal/web"
)

const (
	testCallbackURL = "http://localhost:8080/authorize"
	testUserID      = "202593498"
)

// testServer wires the page and API handlers the way the serve command does,
// with a mocked marketplace client.
type testServer struct {
	e       *echo.Echo
	store   *store.MemoryStore
	manager *session.Manager
	api     *mocks.MockAPI
	built   []meli.Credentials
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	s := &testServer{
		store: store.NewMemoryStore(),
		api:   mocks.NewMockAPI(t),
	}

	mgr, err := session.NewManager(s.store, []byte("test-signing-key-0123456789abcdef"))
	require.NoError(t, err)
	s.manager = mgr

	factory := func(creds meli.Credentials) (meli.API, error) {
		s.built = append(s.built, creds)
		if err := creds.Validate(); err != nil {
			return nil, err
		}
		return s.api, nil
	}
	flow := auth.NewFlow(auth.Config{
		ClientID:     "app-id",
		ClientSecret: "app-secret",
		CallbackURL:  testCallbackURL,
	}, factory, log)

	renderer, err := web.NewRenderer()
	require.NoError(t, err)

	e := echo.New()
	e.Renderer = renderer
	e.HTTPErrorHandler = mw.ErrorHandler(log)
	e.Use(session.Middleware(mgr))

	handlers.RegisterPageRoutes(e, handlers.NewPagesHandler(flow, "MLA", log))
	humaAPI := humaecho.New(e, openapi.Config("test"))
	handlers.RegisterAPIRoutes(humaAPI, handlers.NewAPIHandler(flow, "MLA", log))

	s.e = e
	return s
}

func (s *testServer) do(method, target, body, contentType string, cookie *http.Cookie) *httptest.ResponseRecorder {
	var r io.Reader = http.NoBody
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}

	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) get(target string, cookie *http.Cookie) *httptest.ResponseRecorder {
	return s.do(http.MethodGet, target, "", "", cookie)
}

// authenticatedCookie persists a fully authenticated session and returns its
// cookie.
func (s *testServer) authenticatedCookie(t *testing.T) *http.Cookie {
	t.Helper()

	c := session.NewCredentials("authenticated-session")
	c.Set(session.FieldClientID, "app-id")
	c.Set(session.FieldClientSecret, "app-secret")
	c.Set(session.FieldAccessToken, "APP_USR-token")
	c.Set(session.FieldRefreshToken, "TG-refresh")
	c.Set(session.FieldUserID, testUserID)

	cookie, err := s.manager.Commit(context.Background(), c)
	require.NoError(t, err)
	require.NotNil(t, cookie)
	return cookie
}

// sessionValues returns the stored fields of the session behind cookie.
func (s *testServer) sessionValues(t *testing.T, cookie *http.Cookie) map[session.Field]string {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	req.AddCookie(cookie)
	c, err := s.manager.Load(context.Background(), req)
	require.NoError(t, err)
	return c.Values()
}

func responseCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	return cookies[0]
}

func okJSON(body string) *meli.Response {
	return &meli.Response{StatusCode: http.StatusOK, Body: []byte(body)}
}

func (s *testServer) expectChoices() {
	s.api.EXPECT().Get(mock.Anything, "/currencies/", mock.Anything).
		Return(okJSON(`[{"id":"ARS","description":"Peso Argentino"}]`), nil)
	s.api.EXPECT().Get(mock.Anything, "/sites/MLA/listing_types/", mock.Anything).
		Return(okJSON(`[{"site_id":"MLA","id":"free","name":"Gratuita"}]`), nil)
}
