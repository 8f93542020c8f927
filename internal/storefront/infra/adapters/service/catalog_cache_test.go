package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jcmexdev/storefront-core/internal/pkg/cache"
	"github.com/jcmexdev/storefront-core/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/storefront-core/internal/storefront/core/domain/money"
	"github.com/jcmexdev/storefront-core/internal/storefront/core/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ cache.Cache = (*memCache)(nil)

type memCache struct {
	entries map[string]string
	failing bool
}

func newMemCache() *memCache {
	return &memCache{entries: make(map[string]string)}
}

func (m *memCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if m.failing {
		return errors.New("cache down")
	}
	m.entries[key] = value.(string)
	return nil
}

func (m *memCache) Get(ctx context.Context, key string) (string, error) {
	if m.failing {
		return "", errors.New("cache down")
	}
	return m.entries[key], nil
}

func (m *memCache) Delete(ctx context.Context, key string) error {
	delete(m.entries, key)
	return nil
}

func (m *memCache) GenerateKey(operation, key string) string {
	return fmt.Sprintf("test:%s:%s", operation, key)
}

var _ ports.ProductCatalog = (*countingCatalog)(nil)

type countingCatalog struct {
	gets int
	next ports.ProductCatalog
}

func (c *countingCatalog) GetProduct(ctx context.Context, id string) (entity.Product, error) {
	c.gets++
	return c.next.GetProduct(ctx, id)
}

func (c *countingCatalog) ListProducts(ctx context.Context) ([]entity.Product, error) {
	return c.next.ListProducts(ctx)
}

func TestCachedCatalogServesSecondLookupFromCache(t *testing.T) {
	ctx := context.Background()
	inner := &countingCatalog{next: NewFakeProductCatalog()}
	cached := NewCachedProductCatalog(inner, newMemCache(), time.Minute)

	first, err := cached.GetProduct(ctx, "OLJCESPC7Z")
	require.NoError(t, err)
	assert.Equal(t, 1, inner.gets)

	second, err := cached.GetProduct(ctx, "OLJCESPC7Z")
	require.NoError(t, err)
	assert.Equal(t, 1, inner.gets, "second lookup must not hit the catalog")
	assert.Equal(t, first, second)
	assert.Equal(t, money.New("USD", 19, 990000000), second.Price)
}

func TestCachedCatalogMissPassesThrough(t *testing.T) {
	inner := &countingCatalog{next: NewFakeProductCatalog()}
	cached := NewCachedProductCatalog(inner, newMemCache(), time.Minute)

	_, err := cached.GetProduct(context.Background(), "NOPE")
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestCachedCatalogToleratesCacheOutage(t *testing.T) {
	ctx := context.Background()
	inner := &countingCatalog{next: NewFakeProductCatalog()}
	cached := NewCachedProductCatalog(inner, &memCache{failing: true}, time.Minute)

	product, err := cached.GetProduct(ctx, "OLJCESPC7Z")
	require.NoError(t, err)
	assert.Equal(t, "Sunglasses", product.Name)
	assert.Equal(t, 1, inner.gets)

	_, err = cached.GetProduct(ctx, "OLJCESPC7Z")
	require.NoError(t, err)
	assert.Equal(t, 2, inner.gets, "catalog remains the source of truth when the cache is down")
}
