package checkout

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/storefront-core/internal/storefront/cartview"
	"github.com/jcmexdev/storefront-core/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/storefront-core/internal/storefront/core/domain/money"
	"github.com/jcmexdev/storefront-core/internal/storefront/core/ports"
)

// mockCheckout implements ports.CheckoutService for testing. It applies each
// idempotency key at most once, like the real backend.
type mockCheckout struct {
	err     error
	gate    chan struct{} // when set, PlaceOrder blocks until closed
	applied map[string]entity.OrderRecord
	calls   int
}

func newMockCheckout() *mockCheckout {
	return &mockCheckout{applied: make(map[string]entity.OrderRecord)}
}

func (m *mockCheckout) PlaceOrder(_ context.Context, req ports.PlaceOrderRequest) (entity.OrderRecord, error) {
	m.calls++
	if m.gate != nil {
		<-m.gate
	}
	if m.err != nil {
		return entity.OrderRecord{}, m.err
	}
	if existing, ok := m.applied[req.IdempotencyKey]; ok {
		return existing, nil
	}
	order := entity.OrderRecord{
		OrderID:      "order-" + req.IdempotencyKey,
		ShippingCost: req.Quote.Cost,
	}
	m.applied[req.IdempotencyKey] = order
	return order, nil
}

func (m *mockCheckout) ListOrders(context.Context, string) ([]entity.OrderRecord, error) {
	out := make([]entity.OrderRecord, 0, len(m.applied))
	for _, o := range m.applied {
		out = append(out, o)
	}
	return out, nil
}

func snapshot(expiresAt time.Time) cartview.View {
	return cartview.View{
		CurrencyCode: "USD",
		Items: []entity.ProductItem{{
			Product: entity.Product{ID: "P1", Price: money.New("USD", 10, 0)},
			Item:    entity.CartItem{ProductID: "P1", Quantity: 2},
		}},
		Quote: entity.ShippingQuote{
			ID:        "q1",
			Cost:      money.New("USD", 5, 0),
			ExpiresAt: expiresAt,
		},
		Shipping: money.New("USD", 5, 0),
		Total:    money.New("USD", 25, 0),
	}
}

func TestPlaceOrder_Succeeds(t *testing.T) {
	backend := newMockCheckout()
	o := NewOrchestrator(backend)

	m, err := o.PlaceOrder(context.Background(), snapshot(time.Now().Add(time.Hour)),
		"user-1", entity.Address{City: "Mountain View"}, entity.CreditCardInfo{}, "someone@example.com")

	require.NoError(t, err)
	assert.Equal(t, StatusSucceeded, m.Status)
	require.NotNil(t, m.Order)
	assert.Equal(t, "order-"+m.IdempotencyKey, m.Order.OrderID)
	// The ordered item snapshot survives even after the cart is emptied.
	require.Len(t, m.Items, 1)
	assert.Equal(t, "P1", m.Items[0].Product.ID)
	assert.Empty(t, o.Pending())
}

func TestPlaceOrder_ExpiredQuote(t *testing.T) {
	backend := newMockCheckout()
	o := NewOrchestrator(backend)

	_, err := o.PlaceOrder(context.Background(), snapshot(time.Now().Add(-time.Minute)),
		"user-1", entity.Address{}, entity.CreditCardInfo{}, "someone@example.com")

	require.ErrorIs(t, err, ErrQuoteStale)
	// No mutation recorded, no backend call made.
	assert.Equal(t, 0, backend.calls)
	assert.Empty(t, o.Mutations())
}

func TestPlaceOrder_MissingQuote(t *testing.T) {
	o := NewOrchestrator(newMockCheckout())

	view := snapshot(time.Now().Add(time.Hour))
	view.Quote = entity.ShippingQuote{}

	_, err := o.PlaceOrder(context.Background(), view,
		"user-1", entity.Address{}, entity.CreditCardInfo{}, "someone@example.com")

	assert.ErrorIs(t, err, ErrQuoteStale)
}

func TestPlaceOrder_FreshKeyPerClick(t *testing.T) {
	backend := newMockCheckout()
	o := NewOrchestrator(backend)

	view := snapshot(time.Now().Add(time.Hour))
	m1, err := o.PlaceOrder(context.Background(), view, "user-1", entity.Address{}, entity.CreditCardInfo{}, "a@example.com")
	require.NoError(t, err)
	m2, err := o.PlaceOrder(context.Background(), view, "user-1", entity.Address{}, entity.CreditCardInfo{}, "a@example.com")
	require.NoError(t, err)

	assert.NotEqual(t, m1.IdempotencyKey, m2.IdempotencyKey)
	assert.Len(t, backend.applied, 2)
}

func TestPlaceOrder_PendingVisibleWhileInFlight(t *testing.T) {
	backend := newMockCheckout()
	backend.gate = make(chan struct{})
	o := NewOrchestrator(backend)

	done := make(chan Mutation, 1)
	go func() {
		m, _ := o.PlaceOrder(context.Background(), snapshot(time.Now().Add(time.Hour)),
			"user-1", entity.Address{}, entity.CreditCardInfo{}, "a@example.com")
		done <- m
	}()

	// Wait for the pending entry to appear, then release the backend.
	require.Eventually(t, func() bool { return len(o.Pending()) == 1 }, time.Second, time.Millisecond)
	pending := o.Pending()[0]
	assert.Equal(t, StatusPending, pending.Status)

	close(backend.gate)
	m := <-done
	assert.Equal(t, StatusSucceeded, m.Status)
	assert.Empty(t, o.Pending())
}

func TestResubmit_ReusesKeyAndAppliesOnce(t *testing.T) {
	backend := newMockCheckout()
	o := NewOrchestrator(backend)

	// First attempt fails after the backend has (unknown to us) applied it.
	backend.err = errors.New("connection reset")
	view := snapshot(time.Now().Add(time.Hour))
	m, err := o.PlaceOrder(context.Background(), view, "user-1", entity.Address{}, entity.CreditCardInfo{}, "a@example.com")

	var pe *PlacementError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, StatusFailed, m.Status)

	backend.err = nil
	retried, err := o.Resubmit(context.Background(), m.IdempotencyKey)

	require.NoError(t, err)
	assert.Equal(t, StatusSucceeded, retried.Status)
	assert.Equal(t, m.IdempotencyKey, retried.IdempotencyKey)
	// Same key throughout: the backend applied exactly one order.
	assert.Len(t, backend.applied, 1)
}

func TestResubmit_RejectsNonFailed(t *testing.T) {
	backend := newMockCheckout()
	o := NewOrchestrator(backend)

	m, err := o.PlaceOrder(context.Background(), snapshot(time.Now().Add(time.Hour)),
		"user-1", entity.Address{}, entity.CreditCardInfo{}, "a@example.com")
	require.NoError(t, err)

	_, err = o.Resubmit(context.Background(), m.IdempotencyKey)
	assert.ErrorIs(t, err, ErrNotResubmittable)

	_, err = o.Resubmit(context.Background(), "no-such-key")
	assert.ErrorIs(t, err, ErrUnknownMutation)
}

func TestMutations_StartOrder(t *testing.T) {
	backend := newMockCheckout()
	keys := []string{"key-a", "key-b"}
	o := NewOrchestrator(backend, WithKeyFactory(func() string {
		k := keys[0]
		keys = keys[1:]
		return k
	}))

	view := snapshot(time.Now().Add(time.Hour))
	_, err := o.PlaceOrder(context.Background(), view, "u", entity.Address{}, entity.CreditCardInfo{}, "a@example.com")
	require.NoError(t, err)
	_, err = o.PlaceOrder(context.Background(), view, "u", entity.Address{}, entity.CreditCardInfo{}, "a@example.com")
	require.NoError(t, err)

	all := o.Mutations()
	require.Len(t, all, 2)
	assert.Equal(t, "key-a", all[0].IdempotencyKey)
	assert.Equal(t, "key-b", all[1].IdempotencyKey)
}
