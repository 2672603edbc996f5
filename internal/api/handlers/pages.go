package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/donaldgifford/meli-lister/internal/auth"
	"github.com/donaldgifford/meli-lister/internal/listing"
	"github.com/donaldgifford/meli-lister/internal/meli"
	"github.com/donaldgifford/meli-lister/internal/session"
	"github.com/donaldgifford/meli-lister/internal/web"
)

const loginPath = "/login"

// Initial values of an empty listing form.
const (
	initialPrice    = "1"
	initialQuantity = 1
)

// errNoSession is returned when a handler runs without the session
// middleware.
var errNoSession = errors.New("request has no session")

// PagesHandler serves the HTML pages.
type PagesHandler struct {
	flow   *auth.Flow
	siteID string
	log    *slog.Logger
}

// NewPagesHandler creates a new PagesHandler. Listing types are fetched for
// siteID.
func NewPagesHandler(flow *auth.Flow, siteID string, log *slog.Logger) *PagesHandler {
	return &PagesHandler{flow: flow, siteID: siteID, log: log}
}

// RegisterPageRoutes registers the HTML routes.
func RegisterPageRoutes(e *echo.Echo, h *PagesHandler) {
	e.GET("/", h.Home)
	e.GET(loginPath, h.Login)
	e.GET("/authorize", h.Authorize)
	e.GET("/active_listings", h.ActiveListings)
	e.GET("/list_item", h.ListItemForm)
	e.POST("/list_item", h.ListItemSubmit)
	e.GET("/logout", h.Logout)
}

func credentials(c echo.Context) (*session.Credentials, error) {
	creds, ok := session.FromEcho(c)
	if !ok {
		return nil, errNoSession
	}
	return creds, nil
}

// toLogin sends the user to the login page when err is an authentication
// problem and returns err unchanged otherwise. An expired token also clears
// the session.
func (h *PagesHandler) toLogin(c echo.Context, creds *session.Credentials, err error) error {
	if !auth.NeedsLogin(err) {
		return err
	}
	if auth.Expired(err) {
		h.log.Info("marketplace token rejected, forcing login")
		h.flow.Logout(creds)
	}
	return c.Redirect(http.StatusFound, loginPath)
}

// Home renders the landing page.
func (*PagesHandler) Home(c echo.Context) error {
	creds, err := credentials(c)
	if err != nil {
		return err
	}

	userID, _ := creds.Get(session.FieldUserID)
	return c.Render(http.StatusOK, web.PageHome, web.HomePage{
		Authenticated: auth.StateOf(creds) == auth.StateAuthenticated,
		UserID:        userID,
		Created:       c.QueryParam("created"),
	})
}

// Login stores the application credentials in the session and renders the
// link to the marketplace authorization page.
func (h *PagesHandler) Login(c echo.Context) error {
	creds, err := credentials(c)
	if err != nil {
		return err
	}

	authURL, err := h.flow.BeginLogin(creds)
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, web.PageLogin, web.LoginPage{AuthURL: authURL})
}

// Authorize is the marketplace callback. Any failure other than a transport
// error sends the user back to the login page.
func (h *PagesHandler) Authorize(c echo.Context) error {
	creds, err := credentials(c)
	if err != nil {
		return err
	}

	err = h.flow.CompleteAuthorization(c.Request().Context(), creds, c.QueryParam("code"))
	switch {
	case err == nil:
		return c.Redirect(http.StatusFound, "/")
	case errors.Is(err, meli.ErrTransport):
		return err
	default:
		h.log.Warn("authorization failed", "error", err)
		return c.Redirect(http.StatusFound, loginPath)
	}
}

// ActiveListings renders the active listings of the signed-in user.
func (h *PagesHandler) ActiveListings(c echo.Context) error {
	creds, err := credentials(c)
	if err != nil {
		return err
	}

	a, err := h.flow.Require(creds)
	if err != nil {
		return h.toLogin(c, creds, err)
	}

	summaries, err := listing.ListActive(c.Request().Context(), a.Client, a.UserID)
	if err != nil {
		return h.toLogin(c, creds, err)
	}

	return c.Render(http.StatusOK, web.PageActiveListings, web.ActiveListingsPage{Listings: summaries})
}

// ListItemForm renders an empty listing form.
func (h *PagesHandler) ListItemForm(c echo.Context) error {
	creds, err := credentials(c)
	if err != nil {
		return err
	}

	a, err := h.flow.Require(creds)
	if err != nil {
		return h.toLogin(c, creds, err)
	}

	choices, err := listing.FetchChoices(c.Request().Context(), a.Client, h.siteID)
	if err != nil {
		return h.toLogin(c, creds, err)
	}

	draft := listing.Draft{Price: initialPrice, Quantity: initialQuantity}
	return c.Render(http.StatusOK, web.PageListItem, web.NewListItemPage(*choices, draft, nil))
}

// ListItemSubmit validates and publishes a listing. Validation problems and
// marketplace rejections re-render the form with the messages attached.
func (h *PagesHandler) ListItemSubmit(c echo.Context) error {
	creds, err := credentials(c)
	if err != nil {
		return err
	}

	a, err := h.flow.Require(creds)
	if err != nil {
		return h.toLogin(c, creds, err)
	}

	ctx := c.Request().Context()

	choices, err := listing.FetchChoices(ctx, a.Client, h.siteID)
	if err != nil {
		return h.toLogin(c, creds, err)
	}

	values, err := c.FormParams()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed form submission")
	}

	draft, err := listing.NewForm(*choices).Bind(values)
	if err != nil {
		var fe *listing.FormErrors
		if !errors.As(err, &fe) {
			return err
		}
		return c.Render(http.StatusOK, web.PageListItem, web.NewListItemPage(*choices, draft, fe))
	}

	created, err := listing.Create(ctx, a.Client, draft, h.log)
	if err != nil {
		if auth.Expired(err) {
			return h.toLogin(c, creds, err)
		}
		fe := &listing.FormErrors{}
		if !listing.AttachRemoteError(fe, err) {
			return err
		}
		return c.Render(http.StatusOK, web.PageListItem, web.NewListItemPage(*choices, draft, fe))
	}

	return c.Redirect(http.StatusSeeOther, "/?created="+url.QueryEscape(created.ID))
}

// Logout clears the session and returns to the login page.
func (h *PagesHandler) Logout(c echo.Context) error {
	creds, err := credentials(c)
	if err != nil {
		return err
	}

	h.flow.Logout(creds)
	return c.Redirect(http.StatusFound, loginPath)
}
