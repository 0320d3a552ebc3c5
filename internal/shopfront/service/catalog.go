package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/chommo/shopfront/pkg/platformsdk"
)

// Catalog is a read-through cache over the platform's shop endpoints. The
// storefront renders every page from these, so a short TTL keeps the
// platform out of the hot path without letting stock counts go very stale.
type Catalog struct {
	Platform *platformsdk.Client
	Logger   *slog.Logger

	cache *cache.Cache
}

// NewCatalog builds a catalog with the given cache TTL. Expired entries are
// swept at twice the TTL.
func NewCatalog(platform *platformsdk.Client, logger *slog.Logger, ttl time.Duration) *Catalog {
	return &Catalog{
		Platform: platform,
		Logger:   logger,
		cache:    cache.New(ttl, 2*ttl),
	}
}

// ShopInfo returns the merchant profile.
func (c *Catalog) ShopInfo(ctx context.Context) (platformsdk.Shop, error) {
	return cachedFetch(ctx, c, "shop:info", func(ctx context.Context) (platformsdk.Shop, error) {
		return c.Platform.ShopInfo(ctx)
	})
}

// Products returns one page of the product listing.
func (c *Catalog) Products(ctx context.Context, page, limit int) ([]platformsdk.Product, error) {
	key := fmt.Sprintf("products:%d:%d", page, limit)
	return cachedFetch(ctx, c, key, func(ctx context.Context) ([]platformsdk.Product, error) {
		return c.Platform.Products(ctx, page, limit)
	})
}

// Product returns a single product.
func (c *Catalog) Product(ctx context.Context, productID string) (platformsdk.Product, error) {
	key := "product:" + productID
	return cachedFetch(ctx, c, key, func(ctx context.Context) (platformsdk.Product, error) {
		return c.Platform.Product(ctx, productID)
	})
}

// Search returns one page of products matching the query. Search results
// are not cached; queries are too varied to be worth the memory.
func (c *Catalog) Search(ctx context.Context, query string, page int) ([]platformsdk.Product, error) {
	return c.Platform.Search(ctx, query, page)
}

// cachedFetch serves key from the cache, falling back to fetch and storing
// the result. Errors are never cached.
func cachedFetch[T any](ctx context.Context, c *Catalog, key string, fetch func(context.Context) (T, error)) (T, error) {
	if hit, ok := c.cache.Get(key); ok {
		if value, ok := hit.(T); ok {
			return value, nil
		}
	}

	value, err := fetch(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	c.cache.SetDefault(key, value)
	return value, nil
}
