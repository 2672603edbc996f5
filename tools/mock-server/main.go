// Package main implements a mock MercadoLibre API for local development.
// It serves the OAuth authorization and token endpoints, reference data from
// a JSON fixture and an in-memory item catalog for a single seller, so the
// web app can be exercised end to end without a registered application.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	mockUserID      = 202593498
	mockNickname    = "TETE2870021"
	mockAccessToken = "APP_USR-mock-access-token"
	mockCodePrefix  = "TG-mock-"
)

type fixture struct {
	Currencies   []json.RawMessage `json:"currencies"`
	ListingTypes []listingType     `json:"listing_types"`
	Items        []item            `json:"items"`
}

type listingType struct {
	SiteID string `json:"site_id"`
	ID     string `json:"id"`
	Name   string `json:"name"`
}

type item struct {
	ID                string  `json:"id"`
	Title             string  `json:"title"`
	CategoryID        string  `json:"category_id"`
	Price             float64 `json:"price"`
	CurrencyID        string  `json:"currency_id"`
	AvailableQuantity int     `json:"available_quantity"`
	BuyingMode        string  `json:"buying_mode,omitempty"`
	ListingTypeID     string  `json:"listing_type_id,omitempty"`
	Condition         string  `json:"condition"`
	Permalink         string  `json:"permalink"`
	Status            string  `json:"status"`
}

type newItem struct {
	Title             string `json:"title"`
	CategoryID        string `json:"category_id"`
	Price             string `json:"price"`
	CurrencyID        string `json:"currency_id"`
	AvailableQuantity *int   `json:"available_quantity"`
	BuyingMode        string `json:"buying_mode"`
	ListingTypeID     string `json:"listing_type_id"`
	Condition         string `json:"condition"`
}

type apiError struct {
	Message string   `json:"message"`
	Error   string   `json:"error"`
	Status  int      `json:"status"`
	Cause   []string `json:"cause"`
}

// catalog is the seller's item store.
type catalog struct {
	mu    sync.Mutex
	seq   int
	order []string
	items map[string]item
}

func newCatalog(seed []item) *catalog {
	c := &catalog{items: make(map[string]item, len(seed)), seq: 900000100}
	for _, it := range seed {
		if it.Permalink == "" {
			it.Permalink = permalink(it.ID)
		}
		c.items[it.ID] = it
		c.order = append(c.order, it.ID)
	}
	return c
}

func (c *catalog) add(it item) item {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.seq++
	it.ID = "MLA" + strconv.Itoa(c.seq)
	it.Permalink = permalink(it.ID)
	it.Status = "active"
	c.items[it.ID] = it
	c.order = append(c.order, it.ID)
	return it
}

func (c *catalog) get(id string) (item, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	it, ok := c.items[id]
	return it, ok
}

func (c *catalog) ids() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.order...)
}

func permalink(id string) string {
	return "http://articulo.mercadolibre.com.ar/" + id
}

func main() {
	port := flag.Int("port", 8089, "port to listen on")
	fixtureFile := flag.String("fixture", "tools/mock-server/testdata/reference.json", "path to reference data fixture")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	fx, err := loadFixture(*fixtureFile)
	if err != nil {
		logger.Error("failed to load fixture", "path", *fixtureFile, "error", err)
		os.Exit(1)
	}
	logger.Info("loaded fixture",
		"currencies", len(fx.Currencies),
		"listing_types", len(fx.ListingTypes),
		"items", len(fx.Items),
	)

	addr := fmt.Sprintf(":%d", *port)
	logger.Info("starting mock MercadoLibre server", "addr", addr)

	srv := &http.Server{
		Addr:         addr,
		Handler:      requestLogger(logger, newMux(logger, fx)),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func loadFixture(path string) (*fixture, error) {
	data, err := os.ReadFile(path) //nolint:gosec // fixture path from trusted CLI flag
	if err != nil {
		return nil, fmt.Errorf("reading fixture: %w", err)
	}
	var fx fixture
	if err := json.Unmarshal(data, &fx); err != nil {
		return nil, fmt.Errorf("parsing fixture: %w", err)
	}
	return &fx, nil
}

func newMux(logger *slog.Logger, fx *fixture) *http.ServeMux {
	items := newCatalog(fx.Items)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /authorization", authorizationHandler(logger))
	mux.HandleFunc("POST /oauth/token", tokenHandler(logger))
	mux.HandleFunc("GET /users/me", requireToken(meHandler()))
	mux.HandleFunc("GET /currencies/", currenciesHandler(fx.Currencies))
	mux.HandleFunc("GET /sites/{site}/listing_types/", listingTypesHandler(fx.ListingTypes))
	mux.HandleFunc("POST /items", requireToken(createItemHandler(logger, items)))
	mux.HandleFunc("GET /items/{id}", itemHandler(items))
	mux.HandleFunc("GET /users/{id}/items/search", requireToken(searchHandler(items)))
	return mux
}

func requestLogger(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Debug("request", "method", r.Method, "path", r.URL.Path, "query", r.URL.RawQuery)
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck,gosec // best-effort write to HTTP response in mock server
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string, cause ...string) {
	if cause == nil {
		cause = []string{}
	}
	writeJSON(w, status, apiError{Message: message, Error: code, Status: status, Cause: cause})
}

// authorizationHandler approves every request and sends the browser back to
// redirect_uri with a code.
func authorizationHandler(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		redirectURI := q.Get("redirect_uri")
		if q.Get("client_id") == "" || redirectURI == "" {
			writeError(w, http.StatusBadRequest, "invalid_request", "client_id and redirect_uri are required")
			return
		}

		target, err := url.Parse(redirectURI)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "malformed redirect_uri")
			return
		}
		params := target.Query()
		params.Set("code", mockCodePrefix+q.Get("client_id"))
		target.RawQuery = params.Encode()

		logger.Info("authorized mock user", "redirect", target.Host+target.Path)
		http.Redirect(w, r, target.String(), http.StatusFound)
	}
}

func tokenHandler(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
			return
		}

		if r.PostForm.Get("grant_type") != "authorization_code" {
			writeError(w, http.StatusBadRequest, "unsupported_grant_type", "only authorization_code is supported")
			return
		}
		if r.PostForm.Get("client_id") == "" || r.PostForm.Get("client_secret") == "" {
			writeError(w, http.StatusUnauthorized, "invalid_client", "client authentication failed")
			return
		}
		if !strings.HasPrefix(r.PostForm.Get("code"), mockCodePrefix) {
			writeError(w, http.StatusBadRequest, "invalid_grant", "Error validating grant. Your authorization code or refresh token may be expired or it was already used")
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"access_token":  mockAccessToken,
			"token_type":    "bearer",
			"expires_in":    21600,
			"scope":         "offline_access read write",
			"user_id":       mockUserID,
			"refresh_token": "TG-mock-refresh-" + strconv.FormatInt(int64(os.Getpid()), 16),
		})
		logger.Info("issued mock token")
	}
}

// requireToken rejects requests without the mock bearer token the way the
// marketplace rejects an expired one.
func requireToken(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+mockAccessToken {
			writeError(w, http.StatusUnauthorized, "not_found", "invalid access token")
			return
		}
		next(w, r)
	}
}

func meHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"id":       mockUserID,
			"nickname": mockNickname,
			"site_id":  "MLA",
		})
	}
}

func currenciesHandler(currencies []json.RawMessage) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, currencies)
	}
}

func listingTypesHandler(types []listingType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		site := r.PathValue("site")
		out := make([]listingType, 0, len(types))
		for _, lt := range types {
			lt.SiteID = site
			out = append(out, lt)
		}
		if len(out) == 0 {
			writeError(w, http.StatusNotFound, "not_found", "Site not found")
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func createItemHandler(logger *slog.Logger, items *catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req newItem
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "body.invalid", "malformed JSON body")
			return
		}

		var causes []string
		if strings.TrimSpace(req.Title) == "" {
			causes = append(causes, "item.title is required")
		}
		if !strings.HasPrefix(req.CategoryID, "MLA") {
			causes = append(causes, "Category "+strconv.Quote(req.CategoryID)+" non-existent")
		}
		price, err := strconv.ParseFloat(req.Price, 64)
		if err != nil || price <= 0 {
			causes = append(causes, "item.price is not valid")
		}
		if len(causes) > 0 {
			writeError(w, http.StatusBadRequest, "validation_error", "Validation error", causes...)
			return
		}

		qty := 1
		if req.AvailableQuantity != nil {
			qty = *req.AvailableQuantity
		}

		created := items.add(item{
			Title:             req.Title,
			CategoryID:        req.CategoryID,
			Price:             price,
			CurrencyID:        req.CurrencyID,
			AvailableQuantity: qty,
			BuyingMode:        req.BuyingMode,
			ListingTypeID:     req.ListingTypeID,
			Condition:         req.Condition,
		})
		logger.Info("created item", "id", created.ID, "title", created.Title)
		writeJSON(w, http.StatusCreated, created)
	}
}

func itemHandler(items *catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		it, ok := items.get(r.PathValue("id"))
		if !ok {
			writeError(w, http.StatusNotFound, "not_found", "Item with id "+r.PathValue("id")+" not found")
			return
		}
		writeJSON(w, http.StatusOK, it)
	}
}

func searchHandler(items *catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") != strconv.Itoa(mockUserID) {
			writeError(w, http.StatusForbidden, "forbidden", "Caller is not the owner of the items")
			return
		}

		ids := items.ids()
		writeJSON(w, http.StatusOK, map[string]any{
			"seller_id": strconv.Itoa(mockUserID),
			"results":   ids,
			"paging": map[string]int{
				"limit":  50,
				"offset": 0,
				"total":  len(ids),
			},
		})
	}
}
