// Package storefront assembles the orchestration core behind one per-user
// session façade. All backend addressing is injected once through Config and
// Backends at construction; nothing is looked up ambiently per call.
package storefront

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jcmexdev/storefront-core/internal/storefront/cartview"
	"github.com/jcmexdev/storefront-core/internal/storefront/catalog"
	"github.com/jcmexdev/storefront-core/internal/storefront/checkout"
	"github.com/jcmexdev/storefront-core/internal/storefront/checkout/mutationlog"
	"github.com/jcmexdev/storefront-core/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/storefront-core/internal/storefront/core/domain/money"
	"github.com/jcmexdev/storefront-core/internal/storefront/core/ports"
	"github.com/jcmexdev/storefront-core/internal/storefront/currency"
	"github.com/jcmexdev/storefront-core/internal/storefront/history"
	"github.com/jcmexdev/storefront-core/internal/storefront/shipping"
)

// ErrCartEmpty reports a placement attempted with nothing in the cart.
var ErrCartEmpty = errors.New("storefront: cart is empty")

// Config fixes a session's identity and collaborator inputs.
type Config struct {
	UserID   string
	CartID   string
	Address  entity.Address
	Currency string        // initial selected currency, defaults to USD
	QuoteTTL time.Duration // 0 means shipping.DefaultQuoteTTL
}

// Backends enumerates the five backend services the session orchestrates.
type Backends struct {
	Cart      ports.CartService
	Catalog   ports.ProductCatalog
	Shipping  ports.ShippingService
	Checkout  ports.CheckoutService
	Converter ports.CurrencyConverter
}

// OrderView is a historical order with its lines resolved for rendering.
type OrderView struct {
	OrderID      string               `json:"orderId"`
	Items        []entity.ProductItem `json:"items"`
	ShippingCost money.Money          `json:"shippingCost"`
	Total        money.Money          `json:"total"`
}

// Session is the library entry point consumed by the presentation layer.
type Session struct {
	cfg          Config
	backends     Backends
	resolver     *catalog.Resolver
	converter    *currency.Client
	aggregator   *cartview.Aggregator
	orchestrator *checkout.Orchestrator
	reconciler   *history.Reconciler

	unavailable atomic.Uint64
}

// Option configures optional Session behavior.
type Option func(*sessionOptions)

type sessionOptions struct {
	mutationLog mutationlog.Repository
	onView      func(cartview.View)
}

// WithMutationLog attaches a durable placement audit log.
func WithMutationLog(repo mutationlog.Repository) Option {
	return func(o *sessionOptions) { o.mutationLog = repo }
}

// WithViewListener registers a callback for every applied cart view.
func WithViewListener(fn func(cartview.View)) Option {
	return func(o *sessionOptions) { o.onView = fn }
}

func NewSession(cfg Config, backends Backends, opts ...Option) *Session {
	var options sessionOptions
	for _, opt := range opts {
		opt(&options)
	}
	if cfg.Currency == "" {
		cfg.Currency = "USD"
	}

	resolver := catalog.NewResolver(backends.Catalog)
	converter := currency.NewClient(backends.Converter)
	quoter := shipping.NewQuoter(backends.Shipping, cfg.QuoteTTL)

	var aggOpts []cartview.Option
	if options.onView != nil {
		aggOpts = append(aggOpts, cartview.WithOnUpdate(options.onView))
	}
	aggregator := cartview.New(cartview.Config{
		CartID:   cfg.CartID,
		Address:  cfg.Address,
		Currency: cfg.Currency,
	}, backends.Cart, resolver, quoter, converter, aggOpts...)

	var checkoutOpts []checkout.Option
	if options.mutationLog != nil {
		checkoutOpts = append(checkoutOpts, checkout.WithMutationLog(options.mutationLog))
	}

	return &Session{
		cfg:          cfg,
		backends:     backends,
		resolver:     resolver,
		converter:    converter,
		aggregator:   aggregator,
		orchestrator: checkout.NewOrchestrator(backends.Checkout, checkoutOpts...),
		reconciler:   history.NewReconciler(resolver),
	}
}

// Products lists the catalog priced in the selected currency.
func (s *Session) Products(ctx context.Context) ([]entity.Product, error) {
	products, err := s.backends.Catalog.ListProducts(ctx)
	if err != nil {
		return nil, s.observe(fmt.Errorf("storefront: list products: %w", err))
	}
	converted, err := s.converter.ConvertProducts(ctx, products, s.aggregator.Currency())
	if err != nil {
		return nil, s.observe(err)
	}
	return converted, nil
}

// Product resolves one product priced in the selected currency. The ok result
// is false for a catalog miss.
func (s *Session) Product(ctx context.Context, id string) (entity.Product, bool, error) {
	product, ok, err := s.resolver.Product(ctx, id)
	if err != nil || !ok {
		return entity.Product{}, false, s.observe(err)
	}
	converted, err := s.converter.ConvertProducts(ctx, []entity.Product{product}, s.aggregator.Currency())
	if err != nil {
		return entity.Product{}, false, s.observe(err)
	}
	return converted[0], true, nil
}

// AddToCart adds a line to the cart and invalidates the current view.
func (s *Session) AddToCart(ctx context.Context, productID string, quantity int32) error {
	if quantity <= 0 {
		return &catalog.InvalidQuantityError{ProductID: productID, Quantity: quantity}
	}
	err := s.backends.Cart.AddItem(ctx, s.cfg.CartID, entity.CartItem{
		ProductID: productID,
		Quantity:  quantity,
		AddedAt:   time.Now().UTC(),
	})
	if err != nil {
		return s.observe(fmt.Errorf("storefront: add to cart: %w", err))
	}
	s.aggregator.CartChanged()
	return nil
}

// EmptyCart clears the cart and invalidates the current view.
func (s *Session) EmptyCart(ctx context.Context) error {
	if err := s.backends.Cart.EmptyCart(ctx, s.cfg.CartID); err != nil {
		return s.observe(fmt.Errorf("storefront: empty cart: %w", err))
	}
	s.aggregator.CartChanged()
	return nil
}

// CartView recomputes and returns the current cart view. On a transient
// conversion outage the last good view is returned alongside the error.
func (s *Session) CartView(ctx context.Context) (cartview.View, error) {
	view, err := s.aggregator.Refresh(ctx)
	return view, s.observe(err)
}

// CurrentView returns the last applied view without recomputing.
func (s *Session) CurrentView() (cartview.View, bool) {
	return s.aggregator.View()
}

// SetCurrency switches the selected currency and recomputes the view. A
// recomputation overtaken by a newer currency change reports
// cartview.ErrStaleResult and leaves the newer result in place.
func (s *Session) SetCurrency(ctx context.Context, code string) (cartview.View, error) {
	s.aggregator.SetCurrency(code)
	view, err := s.aggregator.Refresh(ctx)
	return view, s.observe(err)
}

// Currency returns the currently selected currency code.
func (s *Session) Currency() string {
	return s.aggregator.Currency()
}

// Currencies lists the codes the rate service supports.
func (s *Session) Currencies(ctx context.Context) ([]string, error) {
	codes, err := s.converter.SupportedCurrencies(ctx)
	return codes, s.observe(err)
}

// PlaceOrder submits the current view as an order. The orchestrator works on
// a frozen snapshot, so a concurrent view recomputation cannot change an
// order already being submitted.
func (s *Session) PlaceOrder(ctx context.Context, card entity.CreditCardInfo, email string) (checkout.Mutation, error) {
	view, ok := s.aggregator.View()
	if !ok {
		var err error
		view, err = s.aggregator.Refresh(ctx)
		if err != nil {
			return checkout.Mutation{}, s.observe(err)
		}
	}
	if view.Empty {
		return checkout.Mutation{}, ErrCartEmpty
	}

	m, err := s.orchestrator.PlaceOrder(ctx, view, s.cfg.UserID, s.cfg.Address, card, email)
	if err != nil {
		return m, s.observe(err)
	}
	// The backend empties the cart as part of the placement transaction.
	s.aggregator.CartChanged()
	return m, nil
}

// ResubmitOrder retries a failed placement under its original idempotency key.
func (s *Session) ResubmitOrder(ctx context.Context, key string) (checkout.Mutation, error) {
	m, err := s.orchestrator.Resubmit(ctx, key)
	return m, s.observe(err)
}

// PendingMutations lists in-flight placements so the UI can disable the
// place-order action.
func (s *Session) PendingMutations() []checkout.Mutation {
	return s.orchestrator.Pending()
}

// Mutations lists every placement tracked this session.
func (s *Session) Mutations() []checkout.Mutation {
	return s.orchestrator.Mutations()
}

// Orders returns the order history with every line resolved. Lines whose
// product has left the catalog are omitted; the rest of the order renders.
func (s *Session) Orders(ctx context.Context) ([]OrderView, error) {
	records, err := s.backends.Checkout.ListOrders(ctx, s.cfg.UserID)
	if err != nil {
		return nil, s.observe(fmt.Errorf("storefront: list orders: %w", err))
	}

	resolved := make(map[string][]entity.ProductItem, len(records))
	var mu sync.Mutex
	s.reconciler.Resolve(ctx, records, func(u history.Update) {
		mu.Lock()
		resolved[u.OrderID] = u.Items
		mu.Unlock()
	})

	views := make([]OrderView, 0, len(records))
	for _, rec := range records {
		total, err := orderTotal(rec)
		if err != nil {
			return nil, err
		}
		views = append(views, OrderView{
			OrderID:      rec.OrderID,
			Items:        resolved[rec.OrderID],
			ShippingCost: rec.ShippingCost,
			Total:        total,
		})
	}
	return views, nil
}

// ResolveOrders streams progressive line resolutions to apply, for consumers
// that render order history incrementally.
func (s *Session) ResolveOrders(ctx context.Context, orders []entity.OrderRecord, apply func(history.Update)) {
	s.reconciler.Resolve(ctx, orders, apply)
}

// UnavailableCount reports how many transient backend outages this session
// has observed across all operations.
func (s *Session) UnavailableCount() uint64 {
	return s.unavailable.Load()
}

// Close tears the session down; late async completions become no-ops.
func (s *Session) Close() {
	s.aggregator.Close()
}

// observe counts transient-unavailable failures and passes err through.
func (s *Session) observe(err error) error {
	if err == nil {
		return nil
	}
	var conv *currency.UnavailableError
	if ports.IsUnavailable(err) || errors.As(err, &conv) {
		s.unavailable.Add(1)
	}
	return err
}

// orderTotal sums an order's stored line costs plus shipping, in the currency
// the order was placed in.
func orderTotal(rec entity.OrderRecord) (money.Money, error) {
	total := money.New(rec.ShippingCost.CurrencyCode, 0, 0)
	for _, line := range rec.Items {
		var err error
		total, err = money.Add(total, money.Scale(line.Cost, int64(line.Item.Quantity)))
		if err != nil {
			return money.Money{}, fmt.Errorf("storefront: total order %q: %w", rec.OrderID, err)
		}
	}
	return money.Add(total, rec.ShippingCost)
}
