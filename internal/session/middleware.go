package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

type ctxKey struct{}

const echoKey = "session"

// NewContext returns a copy of ctx carrying c.
func NewContext(ctx context.Context, c *Credentials) context.Context {
	return context.WithValue(ctx, ctxKey{}, c)
}

// FromContext returns the Credentials stored in ctx by the middleware.
func FromContext(ctx context.Context) (*Credentials, bool) {
	c, ok := ctx.Value(ctxKey{}).(*Credentials)
	return c, ok
}

// FromEcho returns the Credentials attached to an echo request.
func FromEcho(c echo.Context) (*Credentials, bool) {
	creds, ok := c.Get(echoKey).(*Credentials)
	return creds, ok
}

// Middleware returns Echo middleware that loads the session before the
// handler and commits it just before the response headers are written, so
// the session cookie can still be set. Requests matched by any skipper pass
// through without a session.
func Middleware(m *Manager, skippers ...middleware.Skipper) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			for _, skip := range skippers {
				if skip(c) {
					return next(c)
				}
			}

			req := c.Request()

			creds, err := m.Load(req.Context(), req)
			if err != nil {
				return fmt.Errorf("loading session: %w", err)
			}

			c.Set(echoKey, creds)
			c.SetRequest(req.WithContext(NewContext(req.Context(), creds)))

			var once sync.Once
			commit := func() {
				once.Do(func() {
					cookie, err := m.Commit(c.Request().Context(), creds)
					if err != nil {
						m.log.Error("committing session", "error", err)
						return
					}
					if cookie != nil {
						c.SetCookie(cookie)
					}
				})
			}
			c.Response().Before(commit)

			err = next(c)
			if !c.Response().Committed {
				commit()
			}
			return err
		}
	}
}
