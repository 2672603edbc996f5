package middleware_test

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mw "github.com/donaldgifford/meli-lister/internal/api/middleware"
	"github.com/donaldgifford/meli-lister/internal/listing"
	"github.com/donaldgifford/meli-lister/internal/meli"
	"github.com/donaldgifford/meli-lister/internal/web"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestErrorHandler(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		path       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{
			name:       "transport failure is 503 on html route",
			path:       "/active_listings",
			err:        fmt.Errorf("searching items: %w", fmt.Errorf("%w: dial tcp", meli.ErrTransport)),
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   "marketplace service unavailable",
		},
		{
			name:       "transport failure is 503 json on api route",
			path:       "/api/v1/listings/active",
			err:        fmt.Errorf("%w: timeout", meli.ErrTransport),
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   `"error":"marketplace service unavailable"`,
		},
		{
			name:       "reference data failure is 502",
			path:       "/list_item",
			err:        fmt.Errorf("%w: currencies: boom", listing.ErrChoicesUnavailable),
			wantStatus: http.StatusBadGateway,
			wantBody:   "currencies: boom",
		},
		{
			name:       "reference data transport failure is 503",
			path:       "/list_item",
			err:        fmt.Errorf("%w: currencies: %w", listing.ErrChoicesUnavailable, meli.ErrTransport),
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   "marketplace service unavailable",
		},
		{
			name:       "remote rejection on read path shows body",
			path:       "/active_listings",
			err:        fmt.Errorf("fetching item A: %w", &listing.RemoteError{Status: http.StatusNotFound, Body: `{"message":"item not found"}`}),
			wantStatus: http.StatusBadGateway,
			wantBody:   "item not found",
		},
		{
			name:       "daily limit is 429",
			path:       "/api/v1/listings/active",
			err:        meli.ErrDailyLimitReached,
			wantStatus: http.StatusTooManyRequests,
			wantBody:   "daily request limit",
		},
		{
			name:       "echo http error keeps its code",
			path:       "/nope",
			err:        echo.ErrNotFound,
			wantStatus: http.StatusNotFound,
			wantBody:   "Not Found",
		},
		{
			name:       "unknown error is 500 without details",
			path:       "/",
			err:        errors.New("secret detail"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   "internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r, err := web.NewRenderer()
			require.NoError(t, err)

			e := echo.New()
			e.Renderer = r
			e.HTTPErrorHandler = mw.ErrorHandler(discardLogger())

			req := httptest.NewRequest(http.MethodGet, tt.path, http.NoBody)
			rec := httptest.NewRecorder()
			e.HTTPErrorHandler(tt.err, e.NewContext(req, rec))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantBody)
			assert.NotContains(t, rec.Body.String(), "secret detail")
		})
	}
}

func TestErrorHandler_WithoutRenderer(t *testing.T) {
	t.Parallel()

	e := echo.New()
	h := mw.ErrorHandler(discardLogger())

	rec := httptest.NewRecorder()
	h(fmt.Errorf("%w: reset", meli.ErrTransport), e.NewContext(httptest.NewRequest(http.MethodGet, "/", http.NoBody), rec))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "marketplace service unavailable", rec.Body.String())
}

func TestErrorHandler_CommittedResponse(t *testing.T) {
	t.Parallel()

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", http.NoBody), rec)
	require.NoError(t, c.String(http.StatusOK, "done"))

	mw.ErrorHandler(discardLogger())(errors.New("late"), c)
	assert.Equal(t, "done", rec.Body.String())
}
