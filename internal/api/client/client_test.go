package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/meli-lister/internal/listing"
)

func TestClient_ConnectionRefused(t *testing.T) {
	t.Parallel()

	c := New("http://127.0.0.1:1") // nothing listening
	_, err := c.Currencies(context.Background())
	require.ErrorIs(t, err, ErrServerUnavailable)
	assert.Contains(t, err.Error(), "API server not running at http://127.0.0.1:1")
}

func TestClient_HTTPError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"detail":"reference data unavailable"}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.Currencies(context.Background())

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Contains(t, err.Error(), "API error (HTTP 502)")
	assert.Contains(t, err.Error(), "reference data unavailable")
}

func TestClient_Currencies(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/reference/currencies", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"value":"ARS","label":"Peso Argentino"},{"value":"USD","label":"Dólar"}]}`))
	}))
	defer srv.Close()

	c := New(srv.URL + "/")
	got, err := c.Currencies(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []listing.Choice{
		{Value: "ARS", Label: "Peso Argentino"},
		{Value: "USD", Label: "Dólar"},
	}, got)
}

func TestClient_ListingTypes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		siteID    string
		wantQuery string
	}{
		{name: "server default site", siteID: "", wantQuery: ""},
		{name: "explicit site", siteID: "MLB", wantQuery: "site_id=MLB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/v1/reference/listing-types", r.URL.Path)
				assert.Equal(t, tt.wantQuery, r.URL.RawQuery)
				_, _ = w.Write([]byte(`{"choices":[{"value":"free","label":"Gratuita"}]}`))
			}))
			defer srv.Close()

			got, err := New(srv.URL).ListingTypes(context.Background(), tt.siteID)
			require.NoError(t, err)
			assert.Equal(t, []listing.Choice{{Value: "free", Label: "Gratuita"}}, got)
		})
	}
}

func TestClient_GetQuota(t *testing.T) {
	t.Parallel()

	reset := time.Date(2026, 6, 16, 14, 30, 0, 0, time.UTC)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/quota", r.URL.Path)
		_ = json.NewEncoder(w).Encode(Quota{
			DailyLimit: 5000,
			DailyUsed:  142,
			Remaining:  4858,
			ResetAt:    reset,
		})
	}))
	defer srv.Close()

	q, err := New(srv.URL).GetQuota(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(5000), q.DailyLimit)
	assert.Equal(t, int64(142), q.DailyUsed)
	assert.Equal(t, int64(4858), q.Remaining)
	assert.True(t, reset.Equal(q.ResetAt))
}

func TestClient_Ready(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  int
		wantErr bool
	}{
		{name: "ready", status: http.StatusOK},
		{name: "unavailable", status: http.StatusServiceUnavailable, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/readyz", r.URL.Path)
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"status":"x"}`))
			}))
			defer srv.Close()

			err := New(srv.URL).Ready(context.Background())
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestWithHTTPClient(t *testing.T) {
	t.Parallel()

	custom := &http.Client{}
	c := New("http://example.com", WithHTTPClient(custom))
	assert.Same(t, custom, c.httpClient)
}
