// Package cartview derives the renderable cart view: cart lines joined with
// their product records, a fresh shipping quote, and all money converted to
// the user's currency.
//
// Recomputation is generation-tagged. Every input change (cart contents,
// selected currency) bumps a generation counter; a recomputation carries the
// generation it started from and its result is discarded unapplied if a newer
// generation exists by the time it completes. This guarantees an older, slower
// recomputation can never overwrite a newer, faster one.
package cartview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jcmexdev/storefront-core/internal/storefront/catalog"
	"github.com/jcmexdev/storefront-core/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/storefront-core/internal/storefront/core/domain/money"
	"github.com/jcmexdev/storefront-core/internal/storefront/core/ports"
	"github.com/jcmexdev/storefront-core/internal/storefront/currency"
	"github.com/jcmexdev/storefront-core/internal/storefront/shipping"
)

// ErrStaleResult reports that a completed recomputation was discarded because
// its inputs changed while it was in flight. The current view is unchanged.
var ErrStaleResult = errors.New("cartview: result discarded, inputs changed during recomputation")

// ErrClosed reports a refresh attempted after the aggregator was torn down.
var ErrClosed = errors.New("cartview: aggregator closed")

// shippingConversionID keys the quote cost inside the batched conversion
// request so it can be told apart from product prices.
const shippingConversionID = "__shipping__"

// View is one consistent rendering of the cart. It is a frozen value: the
// aggregator hands out copies, so a later recomputation cannot mutate a view
// already held by a caller.
type View struct {
	Generation   uint64
	CurrencyCode string
	Items        []entity.ProductItem
	// Quote is the shipping quote exactly as issued by the shipping service.
	// It must be forwarded unmodified when placing the order.
	Quote entity.ShippingQuote
	// Shipping is the quote cost converted to CurrencyCode, for display and
	// totals.
	Shipping money.Money
	Total    money.Money
	Empty    bool
}

func (v View) clone() View {
	out := v
	out.Items = make([]entity.ProductItem, len(v.Items))
	copy(out.Items, v.Items)
	return out
}

// Config fixes the collaborator addressing and per-session inputs.
type Config struct {
	CartID   string
	Address  entity.Address
	Currency string // initial selected currency, e.g. "USD"
}

// Aggregator owns the per-session cart view state. It is the only writer of
// that state; all mutation goes through its mutex.
type Aggregator struct {
	cart      ports.CartService
	resolver  *catalog.Resolver
	quoter    *shipping.Quoter
	converter *currency.Client
	onUpdate  func(View)

	mu       sync.Mutex
	cartID   string
	address  entity.Address
	currency string
	gen      uint64
	view     *View
	closed   bool
}

// Option configures optional Aggregator behavior.
type Option func(*Aggregator)

// WithOnUpdate registers a callback invoked with a copy of every applied view.
// The callback runs outside the aggregator's lock.
func WithOnUpdate(fn func(View)) Option {
	return func(a *Aggregator) { a.onUpdate = fn }
}

func New(cfg Config, cart ports.CartService, resolver *catalog.Resolver, quoter *shipping.Quoter, converter *currency.Client, opts ...Option) *Aggregator {
	a := &Aggregator{
		cart:      cart,
		resolver:  resolver,
		quoter:    quoter,
		converter: converter,
		cartID:    cfg.CartID,
		address:   cfg.Address,
		currency:  cfg.Currency,
	}
	if a.currency == "" {
		a.currency = "USD"
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// SetCurrency records a new selected currency and bumps the generation,
// invalidating any in-flight recomputation. It does not recompute by itself;
// call Refresh (possibly from another goroutine) afterwards.
func (a *Aggregator) SetCurrency(code string) uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	if code != a.currency {
		a.currency = code
		a.gen++
	}
	return a.gen
}

// CartChanged bumps the generation after a cart mutation (add, empty) so that
// stale recomputations and the current shipping quote are both invalidated.
func (a *Aggregator) CartChanged() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.gen++
	return a.gen
}

// Currency returns the currently selected currency.
func (a *Aggregator) Currency() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.currency
}

// View returns a copy of the last applied view, if any.
func (a *Aggregator) View() (View, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.view == nil {
		return View{}, false
	}
	return a.view.clone(), true
}

// Close tears the aggregator down. In-flight recomputations complete but
// their results are discarded; no state is mutated after Close returns.
func (a *Aggregator) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closed = true
}

// Refresh recomputes the view for the inputs as of the call. If the inputs
// change while the recomputation is in flight the result is discarded and
// ErrStaleResult is returned; the previously applied view stays current.
//
// If the rate service is unavailable the last good view is kept and the
// currency.UnavailableError is returned so the caller can surface a
// non-fatal warning instead of a blank page.
func (a *Aggregator) Refresh(ctx context.Context) (View, error) {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return View{}, ErrClosed
	}
	gen := a.gen
	cartID, address, code := a.cartID, a.address, a.currency
	a.mu.Unlock()

	view, err := a.compute(ctx, cartID, address, code)
	if err != nil {
		var unavailable *currency.UnavailableError
		if errors.As(err, &unavailable) {
			slog.WarnContext(ctx, "conversion unavailable, keeping last converted view",
				"cart_id", cartID, "currency", code, "error", err)
			if last, ok := a.View(); ok {
				return last, err
			}
		}
		return View{}, err
	}

	view.Generation = gen
	return a.apply(view, gen)
}

func (a *Aggregator) apply(view View, gen uint64) (View, error) {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return View{}, ErrClosed
	}
	if gen != a.gen {
		a.mu.Unlock()
		return View{}, ErrStaleResult
	}
	a.view = &view
	onUpdate := a.onUpdate
	a.mu.Unlock()

	if onUpdate != nil {
		onUpdate(view.clone())
	}
	return view.clone(), nil
}

// compute runs the five causally ordered aggregation steps: read cart lines,
// resolve products, request a quote for the just-resolved item set, convert
// everything in one batch, total up.
func (a *Aggregator) compute(ctx context.Context, cartID string, address entity.Address, code string) (View, error) {
	items, err := a.cart.GetItems(ctx, cartID)
	if err != nil {
		return View{}, fmt.Errorf("cartview: read cart %q: %w", cartID, err)
	}

	if len(items) == 0 {
		zero := money.New(code, 0, 0)
		return View{CurrencyCode: code, Shipping: zero, Total: zero, Empty: true}, nil
	}

	productItems, err := a.resolver.ResolveItems(ctx, items)
	if err != nil {
		return View{}, fmt.Errorf("cartview: resolve products: %w", err)
	}

	quote, err := a.quoter.RequestQuote(ctx, address, items)
	if err != nil {
		return View{}, fmt.Errorf("cartview: request shipping quote: %w", err)
	}

	batch := make([]ports.ConversionItem, 0, len(productItems)+1)
	batch = append(batch, ports.ConversionItem{ID: shippingConversionID, Amount: quote.Cost})
	for i, pi := range productItems {
		batch = append(batch, ports.ConversionItem{
			ID:     fmt.Sprintf("item-%d", i),
			Amount: pi.Product.Price,
		})
	}
	converted, err := a.converter.Convert(ctx, batch, code)
	if err != nil {
		return View{}, err
	}

	shippingCost := converted[0].Amount
	resolved := make([]entity.ProductItem, len(productItems))
	for i, pi := range productItems {
		pi.Product.Price = converted[i+1].Amount
		resolved[i] = pi
	}

	total := money.New(code, 0, 0)
	for _, pi := range resolved {
		line := money.Scale(pi.Product.Price, int64(pi.Item.Quantity))
		total, err = money.Add(total, line)
		if err != nil {
			return View{}, fmt.Errorf("cartview: total line %q: %w", pi.Product.ID, err)
		}
	}
	total, err = money.Add(total, shippingCost)
	if err != nil {
		return View{}, fmt.Errorf("cartview: add shipping: %w", err)
	}

	return View{
		CurrencyCode: code,
		Items:        resolved,
		Quote:        quote,
		Shipping:     shippingCost,
		Total:        total,
	}, nil
}
