package meli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// APIError is a non-2xx marketplace response surfaced as an error by the
// few operations that cannot hand a Response back to the caller.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("marketplace API error (status %d): %s", e.StatusCode, e.Body)
}

// HTTPStatus returns the marketplace status code.
func (e *APIError) HTTPStatus() int {
	return e.StatusCode
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	UserID       int64  `json:"user_id"`
}

// AuthURL implements API. It is a pure function of the client id and the
// redirect URI.
func (c *Client) AuthURL(redirectURI string) string {
	params := url.Values{
		"response_type": {"code"},
		"client_id":     {c.Credentials().ClientID},
		"redirect_uri":  {redirectURI},
	}
	return c.authURL + "/authorization?" + params.Encode()
}

// Authorize implements API using the authorization_code grant.
func (c *Client) Authorize(ctx context.Context, code, redirectURI string) error {
	creds := c.Credentials()
	form := url.Values{
		"grant_type":    {"authorization_code"},
		"client_id":     {creds.ClientID},
		"client_secret": {creds.ClientSecret},
		"code":          {code},
		"redirect_uri":  {redirectURI},
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.apiURL+"/oauth/token",
		strings.NewReader(form.Encode()),
	)
	if err != nil {
		return fmt.Errorf("creating token request: %w", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: executing token request: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: reading token response: %w", ErrTransport, err)
	}

	if resp.StatusCode != http.StatusOK {
		return &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var tok tokenResponse
	if err := json.Unmarshal(body, &tok); err != nil {
		return fmt.Errorf("parsing token response: %w", err)
	}
	if tok.AccessToken == "" {
		return errors.New("token response carried no access token")
	}

	c.mu.Lock()
	c.creds.AccessToken = tok.AccessToken
	c.creds.RefreshToken = tok.RefreshToken
	c.mu.Unlock()

	return nil
}
