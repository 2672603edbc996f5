// Package meli provides a MercadoLibre API client abstracted behind interfaces
// for testability.
package meli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
)

// ErrIncompleteCredentials is returned when a client is built without a
// client id or client secret.
var ErrIncompleteCredentials = errors.New("client id and client secret are required")

// ErrTransport wraps network and connectivity failures talking to the
// marketplace. Non-2xx responses are not transport failures.
var ErrTransport = errors.New("marketplace transport failure")

// Credentials is the immutable credential bundle a client is built from.
// AccessToken and RefreshToken are empty until authorization completes.
type Credentials struct {
	ClientID     string
	ClientSecret string
	AccessToken  string
	RefreshToken string
}

// Validate reports whether the bundle can construct a client.
func (c Credentials) Validate() error {
	if c.ClientID == "" || c.ClientSecret == "" {
		return ErrIncompleteCredentials
	}
	return nil
}

// Authenticated reports whether an access token is attached.
func (c Credentials) Authenticated() bool {
	return c.AccessToken != ""
}

// Response is a raw marketplace response. Callers inspect StatusCode and
// decide whether a 4xx/5xx is fatal to their use-case.
type Response struct {
	StatusCode int
	Body       []byte
}

// OK reports whether the status code is 2xx.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Decode unmarshals the JSON body into dst.
func (r *Response) Decode(dst any) error {
	if err := json.Unmarshal(r.Body, dst); err != nil {
		return fmt.Errorf("decoding marketplace response: %w", err)
	}
	return nil
}

// API defines the interface for interacting with the MercadoLibre API.
type API interface {
	// AuthURL builds the user-facing authorization URL. No network call.
	AuthURL(redirectURI string) string
	// Authorize exchanges a one-time code for access and refresh tokens and
	// keeps them on the client.
	Authorize(ctx context.Context, code, redirectURI string) error
	Get(ctx context.Context, path string, query url.Values) (*Response, error)
	Post(ctx context.Context, path string, body any, query url.Values) (*Response, error)
	// Credentials returns the current bundle, including tokens obtained by
	// Authorize.
	Credentials() Credentials
}

// Factory builds an API client for a credential bundle.
type Factory func(creds Credentials) (API, error)

// NewFactory returns a Factory that builds HTTP clients sharing opts.
func NewFactory(opts ...Option) Factory {
	return func(creds Credentials) (API, error) {
		return NewClient(creds, opts...)
	}
}
