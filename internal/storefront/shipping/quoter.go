// Package shipping requests time-bounded shipping quotes. A quote is tied to
// the exact item set it was requested for: callers re-request on every cart
// change instead of caching across mutations.
package shipping

import (
	"context"
	"time"

	"github.com/jcmexdev/storefront-core/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/storefront-core/internal/storefront/core/ports"
)

// DefaultQuoteTTL mirrors the expiration window the web client has always
// asked for.
const DefaultQuoteTTL = 5000 * time.Second

// Quoter requests quotes with a fixed TTL policy.
type Quoter struct {
	shipping ports.ShippingService
	ttl      time.Duration
}

// NewQuoter builds a Quoter. A non-positive ttl falls back to DefaultQuoteTTL.
func NewQuoter(shipping ports.ShippingService, ttl time.Duration) *Quoter {
	if ttl <= 0 {
		ttl = DefaultQuoteTTL
	}
	return &Quoter{shipping: shipping, ttl: ttl}
}

// RequestQuote asks the shipping service for a quote covering the given items.
// The service computes the expiry from its own clock.
func (q *Quoter) RequestQuote(ctx context.Context, address entity.Address, items []entity.CartItem) (entity.ShippingQuote, error) {
	return q.shipping.GetQuote(ctx, address, items, q.ttl)
}

// TTL returns the expiration window requested with each quote.
func (q *Quoter) TTL() time.Duration { return q.ttl }
