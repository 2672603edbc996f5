package main

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	fx, err := loadFixture(filepath.Join("testdata", "reference.json"))
	if err != nil {
		t.Fatalf("loading fixture: %v", err)
	}
	srv := httptest.NewServer(newMux(testLogger(), fx))
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, method, target, body string, header http.Header) *http.Response {
	t.Helper()
	var r io.Reader = http.NoBody
	if body != "" {
		r = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, target, r)
	if err != nil {
		t.Fatalf("creating request: %v", err)
	}
	for k, v := range header {
		req.Header[k] = v
	}
	client := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("sending request: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func bearer() http.Header {
	return http.Header{"Authorization": {"Bearer " + mockAccessToken}}
}

func decode(t *testing.T, resp *http.Response, dst any) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
}

func TestLoadFixture(t *testing.T) {
	fx, err := loadFixture(filepath.Join("testdata", "reference.json"))
	if err != nil {
		t.Fatalf("loading fixture: %v", err)
	}
	if len(fx.Currencies) == 0 || len(fx.ListingTypes) == 0 {
		t.Fatal("expected reference data in fixture")
	}
	if len(fx.Items) != 2 {
		t.Errorf("items=%d, want 2", len(fx.Items))
	}
}

func TestAuthorization_RedirectsWithCode(t *testing.T) {
	srv := newTestServer(t)

	q := url.Values{
		"response_type": {"code"},
		"client_id":     {"app-id"},
		"redirect_uri":  {"http://localhost:8080/authorize"},
	}
	resp := do(t, http.MethodGet, srv.URL+"/authorization?"+q.Encode(), "", nil)

	if resp.StatusCode != http.StatusFound {
		t.Fatalf("status=%d, want %d", resp.StatusCode, http.StatusFound)
	}
	want := "http://localhost:8080/authorize?code=TG-mock-app-id"
	if got := resp.Header.Get("Location"); got != want {
		t.Errorf("location=%s, want %s", got, want)
	}
}

func TestToken(t *testing.T) {
	srv := newTestServer(t)
	form := http.Header{"Content-Type": {"application/x-www-form-urlencoded"}}

	tests := []struct {
		name       string
		body       url.Values
		wantStatus int
		wantError  string
	}{
		{
			name: "authorization code exchanged",
			body: url.Values{
				"grant_type":    {"authorization_code"},
				"client_id":     {"app-id"},
				"client_secret": {"app-secret"},
				"code":          {"TG-mock-app-id"},
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "unknown code",
			body: url.Values{
				"grant_type":    {"authorization_code"},
				"client_id":     {"app-id"},
				"client_secret": {"app-secret"},
				"code":          {"bogus"},
			},
			wantStatus: http.StatusBadRequest,
			wantError:  "invalid_grant",
		},
		{
			name: "missing client secret",
			body: url.Values{
				"grant_type": {"authorization_code"},
				"client_id":  {"app-id"},
				"code":       {"TG-mock-app-id"},
			},
			wantStatus: http.StatusUnauthorized,
			wantError:  "invalid_client",
		},
		{
			name:       "unsupported grant",
			body:       url.Values{"grant_type": {"client_credentials"}},
			wantStatus: http.StatusBadRequest,
			wantError:  "unsupported_grant_type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, http.MethodPost, srv.URL+"/oauth/token", tt.body.Encode(), form)
			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("status=%d, want %d", resp.StatusCode, tt.wantStatus)
			}

			var body map[string]any
			decode(t, resp, &body)
			if tt.wantError != "" {
				if body["error"] != tt.wantError {
					t.Errorf("error=%v, want %s", body["error"], tt.wantError)
				}
				return
			}
			if body["access_token"] != mockAccessToken {
				t.Errorf("access_token=%v, want %s", body["access_token"], mockAccessToken)
			}
			if body["user_id"] != float64(mockUserID) {
				t.Errorf("user_id=%v, want %d", body["user_id"], mockUserID)
			}
			if body["refresh_token"] == "" {
				t.Error("expected refresh_token")
			}
		})
	}
}

func TestUsersMe_RequiresToken(t *testing.T) {
	srv := newTestServer(t)

	if resp := do(t, http.MethodGet, srv.URL+"/users/me", "", nil); resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status=%d, want %d", resp.StatusCode, http.StatusUnauthorized)
	}

	resp := do(t, http.MethodGet, srv.URL+"/users/me", "", bearer())
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status=%d, want %d", resp.StatusCode, http.StatusOK)
	}
	var me map[string]any
	decode(t, resp, &me)
	if me["id"] != float64(mockUserID) {
		t.Errorf("id=%v, want %d", me["id"], mockUserID)
	}
}

func TestReferenceData(t *testing.T) {
	srv := newTestServer(t)

	resp := do(t, http.MethodGet, srv.URL+"/currencies/", "", nil)
	var currencies []map[string]any
	decode(t, resp, &currencies)
	if len(currencies) != 3 || currencies[0]["id"] != "ARS" {
		t.Errorf("unexpected currencies: %v", currencies)
	}

	resp = do(t, http.MethodGet, srv.URL+"/sites/MLB/listing_types/", "", nil)
	var types []listingType
	decode(t, resp, &types)
	if len(types) != 3 {
		t.Fatalf("listing types=%d, want 3", len(types))
	}
	for _, lt := range types {
		if lt.SiteID != "MLB" {
			t.Errorf("site_id=%s, want MLB", lt.SiteID)
		}
	}
}

func TestCreateAndSearchItems(t *testing.T) {
	srv := newTestServer(t)
	header := bearer()
	header.Set("Content-Type", "application/json")

	body := `{"title":"Item de test","category_id":"MLA9558","price":"10.50",` +
		`"currency_id":"ARS","available_quantity":2,"buying_mode":"buy_it_now",` +
		`"listing_type_id":"free","condition":"new"}`
	resp := do(t, http.MethodPost, srv.URL+"/items", body, header)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status=%d, want %d", resp.StatusCode, http.StatusCreated)
	}
	var created item
	decode(t, resp, &created)
	if created.ID == "" || created.Status != "active" || created.Price != 10.5 {
		t.Errorf("unexpected created item: %+v", created)
	}

	resp = do(t, http.MethodGet, srv.URL+"/users/202593498/items/search", "", bearer())
	var search struct {
		Results []string `json:"results"`
	}
	decode(t, resp, &search)
	if len(search.Results) != 3 || search.Results[2] != created.ID {
		t.Errorf("results=%v, want 3 ids ending in %s", search.Results, created.ID)
	}

	resp = do(t, http.MethodGet, srv.URL+"/items/MLA900000002", "", nil)
	var paused item
	decode(t, resp, &paused)
	if paused.Status != "paused" {
		t.Errorf("status=%s, want paused", paused.Status)
	}
}

func TestCreateItem_ValidationError(t *testing.T) {
	srv := newTestServer(t)
	header := bearer()
	header.Set("Content-Type", "application/json")

	resp := do(t, http.MethodPost, srv.URL+"/items", `{"title":"x","category_id":"ZZZ","price":"1"}`, header)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status=%d, want %d", resp.StatusCode, http.StatusBadRequest)
	}

	var e apiError
	decode(t, resp, &e)
	if e.Error != "validation_error" || len(e.Cause) != 1 {
		t.Fatalf("unexpected error body: %+v", e)
	}
	if !strings.Contains(e.Cause[0], `"ZZZ" non-existent`) {
		t.Errorf("cause=%s, want category message", e.Cause[0])
	}
}

func TestItem_NotFound(t *testing.T) {
	srv := newTestServer(t)

	resp := do(t, http.MethodGet, srv.URL+"/items/MLA1", "", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status=%d, want %d", resp.StatusCode, http.StatusNotFound)
	}
}
