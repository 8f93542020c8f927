package shipping

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/storefront-core/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/storefront-core/internal/storefront/core/domain/money"
	"github.com/jcmexdev/storefront-core/internal/storefront/core/ports"
)

// mockShipping implements ports.ShippingService for testing.
type mockShipping struct {
	lastTTL   time.Duration
	lastItems []entity.CartItem
	quote     entity.ShippingQuote
}

func (m *mockShipping) GetQuote(_ context.Context, _ entity.Address, items []entity.CartItem, ttl time.Duration) (entity.ShippingQuote, error) {
	m.lastTTL = ttl
	m.lastItems = items
	return m.quote, nil
}

func TestRequestQuote_PassesConfiguredTTL(t *testing.T) {
	mock := &mockShipping{quote: entity.ShippingQuote{
		ID:        "q1",
		Cost:      money.New("USD", 8, 990_000_000),
		ExpiresAt: time.Now().Add(time.Minute),
	}}
	q := NewQuoter(mock, 30*time.Second)

	items := []entity.CartItem{{ProductID: "P1", Quantity: 2}}
	quote, err := q.RequestQuote(context.Background(), entity.Address{City: "Mountain View"}, items)

	require.NoError(t, err)
	assert.Equal(t, "q1", quote.ID)
	assert.Equal(t, 30*time.Second, mock.lastTTL)
	assert.Equal(t, items, mock.lastItems)
}

func TestNewQuoter_DefaultTTL(t *testing.T) {
	q := NewQuoter(&mockShipping{}, 0)
	assert.Equal(t, DefaultQuoteTTL, q.TTL())
}

func TestQuoteExpired(t *testing.T) {
	now := time.Now()

	live := entity.ShippingQuote{ID: "q", ExpiresAt: now.Add(time.Second)}
	stale := entity.ShippingQuote{ID: "q", ExpiresAt: now.Add(-time.Second)}

	assert.False(t, live.Expired(now))
	assert.True(t, stale.Expired(now))
	assert.True(t, entity.ShippingQuote{}.Expired(now))
}

var _ ports.ShippingService = (*mockShipping)(nil)
