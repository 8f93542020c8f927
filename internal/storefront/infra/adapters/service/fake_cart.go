package service

import (
	"context"
	"sync"
	"time"

	"github.com/jcmexdev/storefront-core/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/storefront-core/internal/storefront/core/ports"
)

// Ensure fakeCartService implements the port at compile time.
var _ ports.CartService = (*fakeCartService)(nil)

// fakeCartService is an in-memory implementation of ports.CartService intended
// for local development and manual testing only. Do NOT use in production.
type fakeCartService struct {
	mu    sync.Mutex
	carts map[string][]entity.CartItem
}

// NewFakeCartService returns an in-memory CartService for development/testing.
func NewFakeCartService() ports.CartService {
	return &fakeCartService{carts: make(map[string][]entity.CartItem)}
}

func (f *fakeCartService) GetItems(ctx context.Context, cartID string) ([]entity.CartItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	items := make([]entity.CartItem, len(f.carts[cartID]))
	copy(items, f.carts[cartID])
	return items, nil
}

func (f *fakeCartService) AddItem(ctx context.Context, cartID string, item entity.CartItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if item.AddedAt.IsZero() {
		item.AddedAt = time.Now().UTC()
	}
	for i, existing := range f.carts[cartID] {
		if existing.ProductID == item.ProductID {
			f.carts[cartID][i].Quantity += item.Quantity
			return nil
		}
	}
	f.carts[cartID] = append(f.carts[cartID], item)
	return nil
}

func (f *fakeCartService) EmptyCart(ctx context.Context, cartID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.carts, cartID)
	return nil
}
