package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/jcmexdev/storefront-core/internal/pkg/cache"
	"github.com/jcmexdev/storefront-core/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/storefront-core/internal/storefront/core/ports"
)

var _ ports.ProductCatalog = (*CachedProductCatalog)(nil)

// DefaultCatalogCacheTTL bounds how long a cached product record may serve
// reads before the catalog service is consulted again.
const DefaultCatalogCacheTTL = 5 * time.Minute

// CachedProductCatalog decorates a ProductCatalog with a read-through cache.
// Cache failures are logged and absorbed; the catalog service remains the
// source of truth.
type CachedProductCatalog struct {
	next  ports.ProductCatalog
	cache cache.Cache
	ttl   time.Duration
}

func NewCachedProductCatalog(next ports.ProductCatalog, c cache.Cache, ttl time.Duration) *CachedProductCatalog {
	if ttl <= 0 {
		ttl = DefaultCatalogCacheTTL
	}
	return &CachedProductCatalog{next: next, cache: c, ttl: ttl}
}

func (c *CachedProductCatalog) GetProduct(ctx context.Context, id string) (entity.Product, error) {
	key := c.cache.GenerateKey("product", id)
	if cached, err := c.cache.Get(ctx, key); err != nil {
		slog.WarnContext(ctx, "catalog cache read failed", "key", key, "error", err)
	} else if cached != "" {
		var product entity.Product
		if err := json.Unmarshal([]byte(cached), &product); err == nil {
			return product, nil
		}
		slog.WarnContext(ctx, "catalog cache entry corrupt, evicting", "key", key)
		_ = c.cache.Delete(ctx, key)
	}

	product, err := c.next.GetProduct(ctx, id)
	if err != nil {
		return entity.Product{}, err
	}

	if encoded, err := json.Marshal(product); err == nil {
		if err := c.cache.Set(ctx, key, string(encoded), c.ttl); err != nil {
			slog.WarnContext(ctx, "catalog cache write failed", "key", key, "error", err)
		}
	}
	return product, nil
}

// ListProducts always hits the catalog service. The listing drives the home
// page where a stale roster is more visible than a stale detail record.
func (c *CachedProductCatalog) ListProducts(ctx context.Context) ([]entity.Product, error) {
	return c.next.ListProducts(ctx)
}
