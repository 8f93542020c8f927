// Package catalog resolves product references against the product catalog
// service. Unknown products are tolerated by omission so one bad reference
// never blanks a whole cart or order.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jcmexdev/storefront-core/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/storefront-core/internal/storefront/core/ports"
)

// InvalidQuantityError reports a cart line whose quantity violates the
// positive-quantity invariant. The cart service owns that invariant, so an
// observed violation is a data error, not something to skip silently.
type InvalidQuantityError struct {
	ProductID string
	Quantity  int32
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("catalog: cart line %q has invalid quantity %d", e.ProductID, e.Quantity)
}

// Resolver fetches product records for cart and order lines.
type Resolver struct {
	catalog ports.ProductCatalog
}

func NewResolver(catalog ports.ProductCatalog) *Resolver {
	return &Resolver{catalog: catalog}
}

// Product fetches a single product. The ok result is false for a catalog
// miss; err is reserved for transport failures.
func (r *Resolver) Product(ctx context.Context, id string) (entity.Product, bool, error) {
	p, err := r.catalog.GetProduct(ctx, id)
	if errors.Is(err, ports.ErrNotFound) {
		return entity.Product{}, false, nil
	}
	if err != nil {
		return entity.Product{}, false, err
	}
	return p, true, nil
}

// ResolveItems pairs each cart line with its product record. Lines resolve
// concurrently but the result keeps the cart's insertion order. Lines whose
// product is not found are omitted; a non-positive quantity aborts with an
// InvalidQuantityError.
func (r *Resolver) ResolveItems(ctx context.Context, items []entity.CartItem) ([]entity.ProductItem, error) {
	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, &InvalidQuantityError{ProductID: item.ProductID, Quantity: item.Quantity}
		}
	}

	type slot struct {
		item entity.ProductItem
		ok   bool
		err  error
	}
	slots := make([]slot, len(items))

	var wg sync.WaitGroup
	for i, item := range items {
		wg.Add(1)
		go func() {
			defer wg.Done()
			product, ok, err := r.Product(ctx, item.ProductID)
			if err != nil {
				slots[i] = slot{err: err}
				return
			}
			if ok {
				slots[i] = slot{item: entity.ProductItem{Product: product, Item: item}, ok: ok}
			}
		}()
	}
	wg.Wait()

	resolved := make([]entity.ProductItem, 0, len(items))
	for _, s := range slots {
		if s.err != nil {
			return nil, s.err
		}
		if s.ok {
			resolved = append(resolved, s.item)
		}
	}
	return resolved, nil
}
