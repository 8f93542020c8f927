package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/jcmexdev/storefront-core/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/storefront-core/internal/storefront/core/ports"
)

// Ensure fakeCheckoutService implements the port at compile time.
var _ ports.CheckoutService = (*fakeCheckoutService)(nil)

// fakeCheckoutService is an in-memory implementation of ports.CheckoutService
// intended for local development and manual testing only. Do NOT use in
// production.
//
// It mirrors the deployed service's contract: the user id doubles as the cart
// id, placing an order drains the cart, and submissions carrying an already
// seen idempotency key return the originally placed order without applying
// the mutation again.
type fakeCheckoutService struct {
	cart    ports.CartService
	catalog ports.ProductCatalog

	mu     sync.Mutex
	placed map[string]entity.OrderRecord // idempotency key -> order
	orders map[string][]entity.OrderRecord
}

// NewFakeCheckoutService returns an in-memory CheckoutService for
// development/testing. Orders are priced from the given catalog and drain the
// user's cart in the given cart service.
func NewFakeCheckoutService(cart ports.CartService, catalog ports.ProductCatalog) ports.CheckoutService {
	return &fakeCheckoutService{
		cart:    cart,
		catalog: catalog,
		placed:  make(map[string]entity.OrderRecord),
		orders:  make(map[string][]entity.OrderRecord),
	}
}

func (f *fakeCheckoutService) PlaceOrder(ctx context.Context, req ports.PlaceOrderRequest) (entity.OrderRecord, error) {
	f.mu.Lock()
	if order, ok := f.placed[req.IdempotencyKey]; ok {
		f.mu.Unlock()
		return order, nil
	}
	f.mu.Unlock()

	items, err := f.cart.GetItems(ctx, req.UserID)
	if err != nil {
		return entity.OrderRecord{}, fmt.Errorf("PlaceOrder: read cart: %w", err)
	}

	orderItems := make([]entity.OrderItem, 0, len(items))
	for _, item := range items {
		product, err := f.catalog.GetProduct(ctx, item.ProductID)
		if err != nil {
			return entity.OrderRecord{}, fmt.Errorf("PlaceOrder: price %s: %w", item.ProductID, err)
		}
		orderItems = append(orderItems, entity.OrderItem{Item: item, Cost: product.Price})
	}

	order := entity.OrderRecord{
		OrderID:         uuid.NewString(),
		Items:           orderItems,
		ShippingCost:    req.Quote.Cost,
		ShippingAddress: req.Address,
	}

	f.mu.Lock()
	// Re-check under the lock so a concurrent replay of the same key cannot
	// place two orders.
	if existing, ok := f.placed[req.IdempotencyKey]; ok {
		f.mu.Unlock()
		return existing, nil
	}
	f.placed[req.IdempotencyKey] = order
	f.orders[req.UserID] = append(f.orders[req.UserID], order)
	f.mu.Unlock()

	if err := f.cart.EmptyCart(ctx, req.UserID); err != nil {
		return entity.OrderRecord{}, fmt.Errorf("PlaceOrder: empty cart: %w", err)
	}
	return order, nil
}

func (f *fakeCheckoutService) ListOrders(ctx context.Context, userID string) ([]entity.OrderRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	orders := make([]entity.OrderRecord, len(f.orders[userID]))
	copy(orders, f.orders[userID])
	return orders, nil
}
