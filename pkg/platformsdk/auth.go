package platformsdk

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// LoginScopes are the scopes the storefront requests on the authorization
// redirect: enough to read the buyer's profile and balance, nothing more.
const LoginScopes = "read_user read_balance"

// BuildAuthorizeURL constructs the platform authorization URL for the
// redirect-based login flow. The user's browser is navigated there; the
// platform sends it back to redirectURI with code and state query parameters.
//
// The state value must be generated fresh per handshake and persisted by the
// caller before navigating, so it can be compared on return.
func (c *Client) BuildAuthorizeURL(redirectURI, state string) string {
	params := url.Values{}
	params.Set("response_type", "code")
	params.Set("client_id", c.ShopID)
	params.Set("redirect_uri", redirectURI)
	params.Set("scope", LoginScopes)
	params.Set("state", state)

	return fmt.Sprintf("%s/auth/authorize?%s", c.BaseURL, params.Encode())
}

// VerifyToken asks the platform whether a stored bearer token is still valid.
// On success it returns the current profile for that session, including the
// up-to-date balance. A rejected or expired token yields a typed *Error.
func (c *Client) VerifyToken(ctx context.Context, token string) (*User, error) {
	var resp verifyResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/verify-token.php", token, nil, &resp); err != nil {
		return nil, err
	}

	if !resp.Success {
		return nil, &Error{
			StatusCode: http.StatusUnauthorized,
			Message:    envelopeMessage(resp.Error, resp.Message, "token is invalid or expired"),
		}
	}

	user := resp.User
	return &user, nil
}

// ExchangeCode finishes the OAuth handshake by trading the authorization code
// for a bearer token and the associated profile. redirectURI must match the
// value used on the authorization redirect.
func (c *Client) ExchangeCode(ctx context.Context, code, redirectURI string) (*LoginResult, error) {
	payload := map[string]string{
		"code":         code,
		"shop_id":      c.ShopID,
		"redirect_uri": redirectURI,
	}

	var resp sessionResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/oauth-callback.php", "", payload, &resp); err != nil {
		return nil, err
	}

	if !resp.Success || resp.Token == "" {
		return nil, &Error{
			StatusCode: http.StatusUnauthorized,
			Message:    envelopeMessage(resp.Error, resp.Message, "authorization code was rejected"),
		}
	}

	return &LoginResult{User: resp.User, Token: resp.Token}, nil
}

// Login performs a password-based login against the platform. Prefer the
// redirect flow; this exists for the storefront's inline login form.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	payload := map[string]string{
		"username": username,
		"password": password,
	}

	var resp sessionResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/login.php", "", payload, &resp); err != nil {
		return nil, err
	}

	if !resp.Success || resp.Token == "" {
		return nil, &Error{
			StatusCode: http.StatusUnauthorized,
			Message:    envelopeMessage(resp.Error, resp.Message, "invalid username or password"),
		}
	}

	return &LoginResult{User: resp.User, Token: resp.Token}, nil
}
