package middleware

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/donaldgifford/meli-lister/internal/listing"
	"github.com/donaldgifford/meli-lister/internal/meli"
	"github.com/donaldgifford/meli-lister/internal/web"
)

// Messages shown for errors that are not echo.HTTPErrors.
const (
	msgUnavailable   = "marketplace service unavailable"
	msgDailyLimit    = "marketplace daily request limit reached"
	msgInternalError = "internal server error"
)

// ErrorHandler returns the top-level echo.HTTPErrorHandler. Marketplace
// transport failures become 503. JSON API paths get a JSON body, every other
// path the HTML error page.
func ErrorHandler(log *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, msg := classify(err)
		if status >= http.StatusInternalServerError {
			log.Error("request failed",
				"method", c.Request().Method,
				"path", c.Request().URL.Path,
				"status", status,
				"error", err,
			)
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(status)
			return
		}

		if wantsJSON(c.Request()) {
			_ = c.JSON(status, map[string]string{"error": msg})
			return
		}

		if c.Echo().Renderer != nil {
			page := web.ErrorPage{Status: status, Title: http.StatusText(status), Message: msg}
			if rerr := c.Render(status, web.PageError, page); rerr == nil {
				return
			}
		}
		_ = c.String(status, msg)
	}
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, meli.ErrTransport):
		return http.StatusServiceUnavailable, msgUnavailable
	case errors.Is(err, meli.ErrDailyLimitReached):
		return http.StatusTooManyRequests, msgDailyLimit
	case errors.Is(err, listing.ErrChoicesUnavailable),
		errors.Is(err, listing.ErrRemoteRejection):
		return http.StatusBadGateway, err.Error()
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprint(he.Message)
	}
	return http.StatusInternalServerError, msgInternalError
}

func wantsJSON(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, "/api/") ||
		strings.Contains(r.Header.Get(echo.HeaderAccept), echo.MIMEApplicationJSON)
}
