// Package checkout submits the order-placement mutation and tracks its
// lifecycle. Every user-initiated submission gets a fresh idempotency key and
// a PendingMutation entry the UI can watch to disable resubmission; the key
// guarantees the backend applies duplicate submissions at most once.
package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jcmexdev/storefront-core/internal/storefront/cartview"
	"github.com/jcmexdev/storefront-core/internal/storefront/checkout/mutationlog"
	"github.com/jcmexdev/storefront-core/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/storefront-core/internal/storefront/core/ports"
)

// ErrQuoteStale reports a placement attempted with an absent or expired
// shipping quote. No mutation is recorded; the caller must re-derive the cart
// view (which requests a fresh quote) before resubmitting.
var ErrQuoteStale = errors.New("checkout: shipping quote absent or expired")

// ErrUnknownMutation reports a resubmit for a key this orchestrator never
// issued.
var ErrUnknownMutation = errors.New("checkout: unknown idempotency key")

// ErrNotResubmittable reports a resubmit of a mutation that is not in the
// Failed state. Pending mutations are already in flight; Succeeded ones are
// done — submitting again would be a new user action with a new key.
var ErrNotResubmittable = errors.New("checkout: mutation is not in a failed state")

// PlacementError reports that the checkout backend rejected or could not
// process the mutation. It is surfaced verbatim and never auto-retried: the
// "failure" may have been a late success, and a blind retry under a new key
// would risk a double charge.
type PlacementError struct {
	IdempotencyKey string
	Err            error
}

func (e *PlacementError) Error() string {
	return fmt.Sprintf("checkout: place order (key %s): %v", e.IdempotencyKey, e.Err)
}

func (e *PlacementError) Unwrap() error { return e.Err }

// Status is the lifecycle state of one submission attempt.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusSucceeded Status = "SUCCEEDED"
	StatusFailed    Status = "FAILED"
)

// Mutation is the tracked state of one user-initiated placement. The Items
// snapshot is kept because the backend empties the cart on success, so the
// cart can no longer tell the UI what was just ordered.
type Mutation struct {
	IdempotencyKey string
	Request        ports.PlaceOrderRequest
	Items          []entity.ProductItem
	Status         Status
	Order          *entity.OrderRecord
	Err            error
	StartedAt      time.Time
	ResolvedAt     time.Time
}

// Orchestrator drives order placement against the checkout service. It is the
// only writer of its mutation map.
type Orchestrator struct {
	checkout ports.CheckoutService
	log      mutationlog.Repository // nil-safe: audit skipped if nil
	now      func() time.Time
	newKey   func() string

	mu        sync.Mutex
	mutations map[string]*Mutation
	keys      []string // insertion order, for stable listings
}

// Option configures optional Orchestrator behavior.
type Option func(*Orchestrator)

// WithMutationLog attaches a durable audit log written at every transition.
func WithMutationLog(repo mutationlog.Repository) Option {
	return func(o *Orchestrator) { o.log = repo }
}

// WithClock overrides the time source (tests).
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// WithKeyFactory overrides idempotency key generation (tests).
func WithKeyFactory(newKey func() string) Option {
	return func(o *Orchestrator) { o.newKey = newKey }
}

func NewOrchestrator(checkout ports.CheckoutService, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		checkout:  checkout,
		now:       time.Now,
		newKey:    uuid.NewString,
		mutations: make(map[string]*Mutation),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// PlaceOrder submits the frozen cart snapshot as an order. It generates a
// fresh idempotency key, records a Pending mutation visible through Pending(),
// and blocks until the backend resolves the call.
//
// The snapshot's quote must still be valid; otherwise ErrQuoteStale is
// returned and nothing is recorded or sent.
func (o *Orchestrator) PlaceOrder(ctx context.Context, snapshot cartview.View, userID string, address entity.Address, card entity.CreditCardInfo, email string) (Mutation, error) {
	if snapshot.Quote.Expired(o.now()) {
		return Mutation{}, ErrQuoteStale
	}

	key := o.newKey()
	req := ports.PlaceOrderRequest{
		IdempotencyKey: key,
		UserID:         userID,
		UserCurrency:   snapshot.CurrencyCode,
		Address:        address,
		CreditCard:     card,
		Quote:          snapshot.Quote,
		Email:          email,
	}

	items := make([]entity.ProductItem, len(snapshot.Items))
	copy(items, snapshot.Items)

	o.mu.Lock()
	o.mutations[key] = &Mutation{
		IdempotencyKey: key,
		Request:        req,
		Items:          items,
		Status:         StatusPending,
		StartedAt:      o.now(),
	}
	o.keys = append(o.keys, key)
	o.mu.Unlock()

	o.audit(ctx, mutationlog.NewEntry(ctx, key, mutationlog.StatusStarted, "", marshalRequest(req), ""))

	return o.submit(ctx, key, req)
}

// Resubmit replays a failed submission with its original request and the same
// idempotency key. Retrying the same click reuses the key, so a backend that
// already applied the "failed" attempt will not apply it twice.
func (o *Orchestrator) Resubmit(ctx context.Context, key string) (Mutation, error) {
	o.mu.Lock()
	m, ok := o.mutations[key]
	if !ok {
		o.mu.Unlock()
		return Mutation{}, ErrUnknownMutation
	}
	if m.Status != StatusFailed {
		status := m.Status
		o.mu.Unlock()
		return Mutation{}, fmt.Errorf("%w (status %s)", ErrNotResubmittable, status)
	}
	if m.Request.Quote.Expired(o.now()) {
		o.mu.Unlock()
		return Mutation{}, ErrQuoteStale
	}
	m.Status = StatusPending
	m.Err = nil
	m.ResolvedAt = time.Time{}
	req := m.Request
	o.mu.Unlock()

	o.audit(ctx, mutationlog.NewEntry(ctx, key, mutationlog.StatusResubmitted, "", "", ""))

	return o.submit(ctx, key, req)
}

func (o *Orchestrator) submit(ctx context.Context, key string, req ports.PlaceOrderRequest) (Mutation, error) {
	order, err := o.checkout.PlaceOrder(ctx, req)
	if err != nil {
		placement := &PlacementError{IdempotencyKey: key, Err: err}
		o.transition(key, func(m *Mutation) {
			m.Status = StatusFailed
			m.Err = placement
			m.ResolvedAt = o.now()
		})
		o.audit(ctx, mutationlog.NewEntry(ctx, key, mutationlog.StatusFailed, "", "", err.Error()))
		m, _ := o.Mutation(key)
		return m, placement
	}

	o.transition(key, func(m *Mutation) {
		m.Status = StatusSucceeded
		m.Order = &order
		m.ResolvedAt = o.now()
	})
	o.audit(ctx, mutationlog.NewEntry(ctx, key, mutationlog.StatusSucceeded, order.OrderID, "", ""))
	m, _ := o.Mutation(key)
	return m, nil
}

func (o *Orchestrator) transition(key string, mutate func(*Mutation)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if m, ok := o.mutations[key]; ok {
		mutate(m)
	}
}

// Mutation returns a copy of the tracked state for one idempotency key.
func (o *Orchestrator) Mutation(key string) (Mutation, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	m, ok := o.mutations[key]
	if !ok {
		return Mutation{}, false
	}
	return copyMutation(m), true
}

// Pending returns the in-flight submissions in start order. The UI disables
// the place-order action while this is non-empty.
func (o *Orchestrator) Pending() []Mutation {
	return o.list(func(m *Mutation) bool { return m.Status == StatusPending })
}

// Mutations returns every tracked submission in start order.
func (o *Orchestrator) Mutations() []Mutation {
	return o.list(func(*Mutation) bool { return true })
}

func (o *Orchestrator) list(keep func(*Mutation) bool) []Mutation {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]Mutation, 0, len(o.keys))
	for _, key := range o.keys {
		if m := o.mutations[key]; keep(m) {
			out = append(out, copyMutation(m))
		}
	}
	return out
}

func (o *Orchestrator) audit(ctx context.Context, entry *mutationlog.Entry) {
	if o.log == nil {
		return
	}
	if err := o.log.Save(ctx, entry); err != nil {
		slog.ErrorContext(ctx, "failed to write mutation log",
			"idempotency_key", entry.IdempotencyKey, "status", entry.Status, "error", err)
	}
}

func copyMutation(m *Mutation) Mutation {
	out := *m
	out.Items = make([]entity.ProductItem, len(m.Items))
	copy(out.Items, m.Items)
	return out
}

func marshalRequest(req ports.PlaceOrderRequest) string {
	b, err := json.Marshal(req)
	if err != nil {
		return ""
	}
	return string(b)
}
