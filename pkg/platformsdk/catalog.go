package platformsdk

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// catalogEnvelope wraps every catalog read: data is only meaningful when
// success is true.
type catalogEnvelope[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

func catalogGet[T any](ctx context.Context, c *Client, path string) (T, error) {
	var resp catalogEnvelope[T]
	if err := c.doJSON(ctx, http.MethodGet, path, "", nil, &resp); err != nil {
		var zero T
		return zero, err
	}

	if !resp.Success {
		var zero T
		return zero, &Error{
			StatusCode: http.StatusOK,
			Message:    envelopeMessage(resp.Error, resp.Message, "catalog request failed"),
		}
	}

	return resp.Data, nil
}

// ShopInfo fetches the merchant profile for this shop.
func (c *Client) ShopInfo(ctx context.Context) (Shop, error) {
	path := fmt.Sprintf("/api/shop/info.php?shop_id=%s", url.QueryEscape(c.ShopID))
	return catalogGet[Shop](ctx, c, path)
}

// Products fetches one page of the shop's product listing.
func (c *Client) Products(ctx context.Context, page, limit int) ([]Product, error) {
	path := fmt.Sprintf("/api/shop/products.php?shop_id=%s&page=%d&limit=%d",
		url.QueryEscape(c.ShopID), page, limit)
	return catalogGet[[]Product](ctx, c, path)
}

// Product fetches a single product by ID.
func (c *Client) Product(ctx context.Context, productID string) (Product, error) {
	path := fmt.Sprintf("/api/shop/product.php?id=%s", url.QueryEscape(productID))
	return catalogGet[Product](ctx, c, path)
}

// Search fetches one page of products matching the query.
func (c *Client) Search(ctx context.Context, query string, page int) ([]Product, error) {
	path := fmt.Sprintf("/api/shop/search.php?shop_id=%s&q=%s&page=%d",
		url.QueryEscape(c.ShopID), url.QueryEscape(query), page)
	return catalogGet[[]Product](ctx, c, path)
}
