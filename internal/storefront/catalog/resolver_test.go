package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/storefront-core/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/storefront-core/internal/storefront/core/domain/money"
	"github.com/jcmexdev/storefront-core/internal/storefront/core/ports"
)

// mockCatalog implements ports.ProductCatalog for testing.
type mockCatalog struct {
	products map[string]entity.Product
	err      error
}

func (m *mockCatalog) GetProduct(_ context.Context, id string) (entity.Product, error) {
	if m.err != nil {
		return entity.Product{}, m.err
	}
	p, ok := m.products[id]
	if !ok {
		return entity.Product{}, ports.ErrNotFound
	}
	return p, nil
}

func (m *mockCatalog) ListProducts(context.Context) ([]entity.Product, error) {
	return nil, errors.New("not used")
}

func product(id string, units int64) entity.Product {
	return entity.Product{ID: id, Name: "Product " + id, Price: money.New("USD", units, 0)}
}

func TestResolveItems_PreservesCartOrder(t *testing.T) {
	mock := &mockCatalog{products: map[string]entity.Product{
		"P1": product("P1", 10),
		"P2": product("P2", 20),
		"P3": product("P3", 30),
	}}
	r := NewResolver(mock)

	items := []entity.CartItem{
		{ProductID: "P3", Quantity: 1},
		{ProductID: "P1", Quantity: 2},
		{ProductID: "P2", Quantity: 3},
	}

	resolved, err := r.ResolveItems(context.Background(), items)

	require.NoError(t, err)
	require.Len(t, resolved, 3)
	assert.Equal(t, "P3", resolved[0].Product.ID)
	assert.Equal(t, "P1", resolved[1].Product.ID)
	assert.Equal(t, "P2", resolved[2].Product.ID)
	assert.Equal(t, int32(2), resolved[1].Item.Quantity)
}

func TestResolveItems_OmitsNotFound(t *testing.T) {
	mock := &mockCatalog{products: map[string]entity.Product{
		"P1": product("P1", 10),
	}}
	r := NewResolver(mock)

	resolved, err := r.ResolveItems(context.Background(), []entity.CartItem{
		{ProductID: "P1", Quantity: 1},
		{ProductID: "GONE", Quantity: 1},
	})

	require.NoError(t, err)
	require.Len(t, resolved, 1)
	assert.Equal(t, "P1", resolved[0].Product.ID)
}

func TestResolveItems_InvalidQuantity(t *testing.T) {
	r := NewResolver(&mockCatalog{products: map[string]entity.Product{"P1": product("P1", 10)}})

	_, err := r.ResolveItems(context.Background(), []entity.CartItem{
		{ProductID: "P1", Quantity: 0},
	})

	var iq *InvalidQuantityError
	require.ErrorAs(t, err, &iq)
	assert.Equal(t, "P1", iq.ProductID)
}

func TestResolveItems_TransportErrorPropagates(t *testing.T) {
	boom := &ports.UnavailableError{Service: "product-catalog", Op: "GetProduct", Err: errors.New("down")}
	r := NewResolver(&mockCatalog{err: boom})

	_, err := r.ResolveItems(context.Background(), []entity.CartItem{
		{ProductID: "P1", Quantity: 1},
	})

	assert.True(t, ports.IsUnavailable(err))
}

func TestProduct_NotFoundIsNotAnError(t *testing.T) {
	r := NewResolver(&mockCatalog{products: map[string]entity.Product{}})

	_, ok, err := r.Product(context.Background(), "missing")

	require.NoError(t, err)
	assert.False(t, ok)
}
