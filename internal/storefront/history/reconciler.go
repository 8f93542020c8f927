// Package history lazily resolves the product details of past orders so the
// UI can render each order progressively, line by line, instead of waiting
// for the whole history.
package history

import (
	"context"
	"log/slog"
	"sync"

	"github.com/jcmexdev/storefront-core/internal/storefront/catalog"
	"github.com/jcmexdev/storefront-core/internal/storefront/core/domain/entity"
)

// Update is one progressive snapshot of an order's resolved lines. Items only
// ever grows between updates for the same order; each line appears exactly
// once, fully resolved.
type Update struct {
	OrderID string
	Items   []entity.ProductItem
}

// Reconciler resolves order lines against the catalog.
type Reconciler struct {
	resolver *catalog.Resolver
}

func NewReconciler(resolver *catalog.Resolver) *Reconciler {
	return &Reconciler{resolver: resolver}
}

// Resolve walks every order concurrently, resolving its lines one by one and
// calling apply with a fresh snapshot after each resolved line. Orders never
// block each other; within one order, lines resolve in record order so the
// rendering grows stably.
//
// Lines whose product is gone from the catalog are omitted. A transport
// failure on one line is logged and skips that line without failing the
// order; the remaining lines still render. Resolve returns once every order
// has been walked. apply may be called from multiple goroutines, one per
// order, but never concurrently for the same order.
func (r *Reconciler) Resolve(ctx context.Context, orders []entity.OrderRecord, apply func(Update)) {
	var wg sync.WaitGroup
	for _, order := range orders {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.resolveOrder(ctx, order, apply)
		}()
	}
	wg.Wait()
}

func (r *Reconciler) resolveOrder(ctx context.Context, order entity.OrderRecord, apply func(Update)) {
	items := make([]entity.ProductItem, 0, len(order.Items))
	for _, line := range order.Items {
		if ctx.Err() != nil {
			return
		}
		product, ok, err := r.resolver.Product(ctx, line.Item.ProductID)
		if err != nil {
			slog.WarnContext(ctx, "skipping unresolvable order line",
				"order_id", order.OrderID, "product_id", line.Item.ProductID, "error", err)
			continue
		}
		if !ok {
			// Product no longer in the catalog; the rest of the order
			// still renders.
			continue
		}
		items = append(items, entity.ProductItem{Product: product, Item: line.Item})

		snapshot := make([]entity.ProductItem, len(items))
		copy(snapshot, items)
		apply(Update{OrderID: order.OrderID, Items: snapshot})
	}
}
