package meli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/donaldgifford/meli-lister/internal/metrics"
)

const (
	defaultAPIURL  = "https://api.mercadolibre.com"
	defaultAuthURL = "https://auth.mercadolibre.com.ar"
)

var tracer = otel.Tracer("github.com/donaldgifford/meli-lister/internal/meli")

// Client implements API over HTTP.
type Client struct {
	apiURL      string
	authURL     string
	client      *http.Client
	rateLimiter *RateLimiter

	mu    sync.RWMutex
	creds Credentials
}

// Option configures the Client.
type Option func(*Client)

// WithAPIURL overrides the default API base URL.
func WithAPIURL(u string) Option {
	return func(c *Client) {
		c.apiURL = strings.TrimRight(u, "/")
	}
}

// WithAuthURL overrides the default authorization site.
func WithAuthURL(u string) Option {
	return func(c *Client) {
		c.authURL = strings.TrimRight(u, "/")
	}
}

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.client = hc
	}
}

// WithRateLimiter makes every request wait on r first.
func WithRateLimiter(r *RateLimiter) Option {
	return func(c *Client) {
		c.rateLimiter = r
	}
}

// NewClient creates a new MercadoLibre client. The bundle must carry a
// client id and secret.
func NewClient(creds Credentials, opts ...Option) (*Client, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}

	c := &Client{
		apiURL:  defaultAPIURL,
		authURL: defaultAuthURL,
		client:  &http.Client{Timeout: 30 * time.Second},
		creds:   creds,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Credentials implements API.
func (c *Client) Credentials() Credentials {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.creds
}

// Get implements API. The access token is attached when present.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.do(ctx, http.MethodGet, path, nil, query)
}

// Post implements API. body is JSON-encoded.
func (c *Client) Post(
	ctx context.Context,
	path string,
	body any,
	query url.Values,
) (*Response, error) {
	return c.do(ctx, http.MethodPost, path, body, query)
}

func (c *Client) do(
	ctx context.Context,
	method, path string,
	body any,
	query url.Values,
) (*Response, error) {
	endpoint := endpointLabel(path)

	ctx, span := tracer.Start(ctx, "meli "+method+" "+endpoint,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("url.template", endpoint),
		),
	)
	defer span.End()

	if c.rateLimiter != nil {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			if errors.Is(err, ErrDailyLimitReached) {
				metrics.MarketplaceDailyLimitHits.Inc()
			}
			span.SetStatus(codes.Error, "rate limited")
			return nil, fmt.Errorf("rate limit: %w", err)
		}
		metrics.MarketplaceDailyUsage.Set(float64(c.rateLimiter.DailyCount()))
	}

	var bodyReader io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	u := c.apiURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("creating HTTP request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Credentials().AccessToken; token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		metrics.MarketplaceRequestsTotal.WithLabelValues(method, endpoint, "error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport failure")
		return nil, fmt.Errorf("%w: %s %s: %w", ErrTransport, method, endpoint, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("%w: reading response body: %w", ErrTransport, err)
	}

	status := strconv.Itoa(resp.StatusCode)
	metrics.MarketplaceRequestDuration.
		WithLabelValues(method, endpoint).
		Observe(time.Since(start).Seconds())
	metrics.MarketplaceRequestsTotal.WithLabelValues(method, endpoint, status).Inc()

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	if resp.StatusCode >= http.StatusInternalServerError {
		span.SetStatus(codes.Error, resp.Status)
	}

	return &Response{StatusCode: resp.StatusCode, Body: data}, nil
}

// endpointLabel collapses id-like path segments so metric and span names stay
// low-cardinality: /items/MLA123 becomes /items/{id}.
func endpointLabel(path string) string {
	segs := strings.Split(path, "/")
	for i, s := range segs {
		if strings.IndexFunc(s, unicode.IsDigit) >= 0 {
			segs[i] = "{id}"
		}
	}
	return strings.Join(segs, "/")
}
