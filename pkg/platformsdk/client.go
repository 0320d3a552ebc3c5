package platformsdk

import (
	"net/http"
	"strings"
	"time"
)

// Client is a client for the marketplace platform hosting the shop.
// The zero value is not usable; construct one with NewClient.
type Client struct {
	// BaseURL is the platform root, e.g. "https://chommo.store".
	// API endpoints live under BaseURL/api, the browser-facing
	// authorization endpoint under BaseURL/auth.
	BaseURL string

	// ShopID identifies this shop to the platform. It doubles as the
	// OAuth client_id on the authorization redirect.
	ShopID string

	HTTPClient *http.Client
}

// NewClient creates a platform client for the given shop.
func NewClient(baseURL, shopID string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		ShopID:  shopID,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// url builds a complete URL by appending the path to the base URL.
func (c *Client) url(path string) string {
	return c.BaseURL + path
}
