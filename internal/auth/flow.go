// Package auth implements the OAuth-style login handshake against the
// marketplace and the guard every protected operation goes through.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/donaldgifford/meli-lister/internal/meli"
	"github.com/donaldgifford/meli-lister/internal/metrics"
	"github.com/donaldgifford/meli-lister/internal/session"
)

// ErrMissingCode is returned when the authorization callback carries no code.
var ErrMissingCode = errors.New("authorization code is missing")

// State is the position of a session in the login handshake.
type State int

const (
	StateUnauthenticated State = iota
	StatePendingAuthorization
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StatePendingAuthorization:
		return "pending_authorization"
	case StateAuthenticated:
		return "authenticated"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// StateOf derives the handshake state from the stored credentials.
func StateOf(c *session.Credentials) State {
	if !c.Has(session.FieldClientID) || !c.Has(session.FieldClientSecret) {
		return StateUnauthenticated
	}
	for _, f := range session.Fields {
		if !c.Has(f) {
			return StatePendingAuthorization
		}
	}
	return StateAuthenticated
}

// Config holds the application credentials issued by the marketplace.
type Config struct {
	ClientID     string
	ClientSecret string
	CallbackURL  string
}

// Flow drives the login handshake.
type Flow struct {
	cfg     Config
	factory meli.Factory
	log     *slog.Logger
}

// NewFlow creates a Flow that builds marketplace clients with factory.
func NewFlow(cfg Config, factory meli.Factory, log *slog.Logger) *Flow {
	return &Flow{
		cfg:     cfg,
		factory: factory,
		log:     log,
	}
}

// BeginLogin resets the session to the configured application credentials
// and returns the marketplace authorization URL.
func (f *Flow) BeginLogin(c *session.Credentials) (string, error) {
	c.Clear()
	c.Set(session.FieldClientID, f.cfg.ClientID)
	c.Set(session.FieldClientSecret, f.cfg.ClientSecret)

	api, err := f.factory(meli.Credentials{
		ClientID:     f.cfg.ClientID,
		ClientSecret: f.cfg.ClientSecret,
	})
	if err != nil {
		return "", fmt.Errorf("building marketplace client: %w", err)
	}

	metrics.LoginsStartedTotal.Inc()
	return api.AuthURL(f.cfg.CallbackURL), nil
}

// CompleteAuthorization exchanges code for tokens, resolves the marketplace
// user and stores both in the session. When the session holds no client
// credentials or code is empty it fails before any marketplace call.
func (f *Flow) CompleteAuthorization(ctx context.Context, c *session.Credentials, code string) error {
	creds, err := appCredentials(c)
	if err != nil {
		metrics.AuthorizationsTotal.WithLabelValues("missing_credentials").Inc()
		return err
	}
	if code == "" {
		metrics.AuthorizationsTotal.WithLabelValues("missing_code").Inc()
		return ErrMissingCode
	}

	api, err := f.factory(creds)
	if err != nil {
		return fmt.Errorf("building marketplace client: %w", err)
	}

	if err := api.Authorize(ctx, code, f.cfg.CallbackURL); err != nil {
		metrics.AuthorizationsTotal.WithLabelValues("rejected").Inc()
		return fmt.Errorf("exchanging authorization code: %w", err)
	}

	resp, err := api.Get(ctx, "/users/me", nil)
	if err != nil {
		return fmt.Errorf("resolving marketplace user: %w", err)
	}
	if !resp.OK() {
		metrics.AuthorizationsTotal.WithLabelValues("rejected").Inc()
		return fmt.Errorf("resolving marketplace user: %w",
			&meli.APIError{StatusCode: resp.StatusCode, Body: string(resp.Body)})
	}

	var user meli.User
	if err := resp.Decode(&user); err != nil {
		return fmt.Errorf("resolving marketplace user: %w", err)
	}

	tokens := api.Credentials()
	c.Set(session.FieldAccessToken, tokens.AccessToken)
	c.Set(session.FieldRefreshToken, tokens.RefreshToken)
	c.Set(session.FieldUserID, user.ID.String())

	metrics.AuthorizationsTotal.WithLabelValues("success").Inc()
	f.log.Info("marketplace authorization completed", "user_id", user.ID.String())
	return nil
}

// Logout removes every credential from the session.
func (*Flow) Logout(c *session.Credentials) {
	c.Clear()
}

// Authenticated is the result of a successful Require.
type Authenticated struct {
	Client meli.API
	UserID string
}

// Require is the single guard of every protected operation. It fails with a
// *session.MissingCredentialError naming the first absent field.
func (f *Flow) Require(c *session.Credentials) (*Authenticated, error) {
	values := make(map[session.Field]string, len(session.Fields))
	for _, field := range session.Fields {
		v, err := c.Get(field)
		if err != nil {
			return nil, err
		}
		values[field] = v
	}

	api, err := f.factory(meli.Credentials{
		ClientID:     values[session.FieldClientID],
		ClientSecret: values[session.FieldClientSecret],
		AccessToken:  values[session.FieldAccessToken],
		RefreshToken: values[session.FieldRefreshToken],
	})
	if err != nil {
		return nil, fmt.Errorf("building marketplace client: %w", err)
	}

	return &Authenticated{Client: api, UserID: values[session.FieldUserID]}, nil
}

// AppClient returns an anonymous client built from the application
// credentials, for reference-data lookups.
func (f *Flow) AppClient() (meli.API, error) {
	return f.factory(meli.Credentials{
		ClientID:     f.cfg.ClientID,
		ClientSecret: f.cfg.ClientSecret,
	})
}

func appCredentials(c *session.Credentials) (meli.Credentials, error) {
	id, err := c.Get(session.FieldClientID)
	if err != nil {
		return meli.Credentials{}, err
	}
	secret, err := c.Get(session.FieldClientSecret)
	if err != nil {
		return meli.Credentials{}, err
	}
	return meli.Credentials{ClientID: id, ClientSecret: secret}, nil
}

// NeedsLogin reports whether err should send the user back to the login
// entry point instead of being shown.
func NeedsLogin(err error) bool {
	return errors.Is(err, session.ErrMissingCredential) ||
		errors.Is(err, ErrMissingCode) ||
		Expired(err)
}

// Expired reports whether err carries a 401 from the marketplace, meaning the
// stored access token is no longer accepted.
func Expired(err error) bool {
	var sc interface{ HTTPStatus() int }
	return errors.As(err, &sc) && sc.HTTPStatus() == http.StatusUnauthorized
}
