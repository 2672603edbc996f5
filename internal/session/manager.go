package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/donaldgifford/meli-lister/internal/metrics"
	"github.com/donaldgifford/meli-lister/internal/store"
)

const (
	defaultCookieName = "meli_session"
	defaultTTL        = 24 * time.Hour
)

// ErrWeakSigningKey is returned when the cookie signing key is too short.
var ErrWeakSigningKey = errors.New("session signing key must be at least 32 bytes")

// sessionClaims is the payload of the session cookie. The cookie carries only
// the session id; credentials stay server-side.
type sessionClaims struct {
	SID string `json:"sid"`
	jwt.RegisteredClaims
}

// Manager loads and persists Credentials for HTTP requests.
type Manager struct {
	store      store.SessionStore
	signingKey []byte
	cookieName string
	ttl        time.Duration
	secure     bool
	nowFunc    func() time.Time
	log        *slog.Logger
}

// ManagerOption configures the Manager.
type ManagerOption func(*Manager)

// WithCookieName overrides the session cookie name.
func WithCookieName(name string) ManagerOption {
	return func(m *Manager) {
		m.cookieName = name
	}
}

// WithTTL overrides the session lifetime.
func WithTTL(ttl time.Duration) ManagerOption {
	return func(m *Manager) {
		m.ttl = ttl
	}
}

// WithSecureCookie sets the Secure attribute on the session cookie.
func WithSecureCookie(secure bool) ManagerOption {
	return func(m *Manager) {
		m.secure = secure
	}
}

// WithManagerNowFunc overrides the time function for testing.
func WithManagerNowFunc(f func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.nowFunc = f
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) ManagerOption {
	return func(m *Manager) {
		m.log = l
	}
}

// NewManager creates a Manager persisting sessions in s and signing cookies
// with key.
func NewManager(s store.SessionStore, key []byte, opts ...ManagerOption) (*Manager, error) {
	if len(key) < 32 {
		return nil, ErrWeakSigningKey
	}

	m := &Manager{
		store:      s,
		signingKey: key,
		cookieName: defaultCookieName,
		ttl:        defaultTTL,
		nowFunc:    time.Now,
		log:        slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Load returns the session referenced by the request cookie, or a new empty
// session when the cookie is absent, invalid, or refers to an expired
// session. Only backend failures are returned as errors.
func (m *Manager) Load(ctx context.Context, r *http.Request) (*Credentials, error) {
	if cookie, err := r.Cookie(m.cookieName); err == nil {
		sid, err := m.parse(cookie.Value)
		if err != nil {
			m.log.Debug("ignoring invalid session cookie", "error", err)
		} else {
			values, err := m.store.Load(ctx, sid)
			switch {
			case err == nil:
				return restore(sid, values), nil
			case !errors.Is(err, store.ErrNotFound):
				return nil, fmt.Errorf("loading session: %w", err)
			}
		}
	}

	metrics.SessionsCreatedTotal.Inc()
	return NewCredentials(uuid.NewString()), nil
}

// Commit persists pending changes of c and returns the cookie the response
// must carry, or nil when nothing changed. A cleared session is deleted from
// the backend in a single operation and its cookie expired.
func (m *Manager) Commit(ctx context.Context, c *Credentials) (*http.Cookie, error) {
	values, dirty, cleared := c.snapshot()
	if !dirty {
		return nil, nil
	}

	if cleared && len(values) == 0 {
		if !c.IsNew() {
			if err := m.store.Delete(ctx, c.ID()); err != nil {
				return nil, fmt.Errorf("deleting session: %w", err)
			}
		}
		c.markSaved()
		return m.expiredCookie(), nil
	}

	if err := m.store.Save(ctx, c.ID(), values, m.ttl); err != nil {
		return nil, fmt.Errorf("saving session: %w", err)
	}
	c.markSaved()

	token, err := m.sign(c.ID())
	if err != nil {
		return nil, fmt.Errorf("signing session cookie: %w", err)
	}
	return m.cookie(token, int(m.ttl.Seconds())), nil
}

func (m *Manager) sign(sid string) (string, error) {
	now := m.nowFunc()
	claims := sessionClaims{
		SID: sid,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.signingKey)
}

func (m *Manager) parse(token string) (string, error) {
	claims := &sessionClaims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return m.signingKey, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.nowFunc),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", err
	}
	if claims.SID == "" {
		return "", errors.New("session cookie carries no session id")
	}
	return claims.SID, nil
}

func (m *Manager) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     m.cookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (m *Manager) expiredCookie() *http.Cookie {
	return m.cookie("", -1)
}

// Ping checks the session backend.
func (m *Manager) Ping(ctx context.Context) error {
	return m.store.Ping(ctx)
}
