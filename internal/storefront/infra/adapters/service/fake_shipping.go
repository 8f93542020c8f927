package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jcmexdev/storefront-core/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/storefront-core/internal/storefront/core/domain/money"
	"github.com/jcmexdev/storefront-core/internal/storefront/core/ports"
)

// Ensure fakeShippingService implements the port at compile time.
var _ ports.ShippingService = (*fakeShippingService)(nil)

// fakeShippingService quotes a flat USD 8.99 for any shipment. Intended for
// local development and manual testing only. Do NOT use in production.
type fakeShippingService struct {
	now func() time.Time
}

// NewFakeShippingService returns an in-memory ShippingService for
// development/testing.
func NewFakeShippingService() ports.ShippingService {
	return &fakeShippingService{now: time.Now}
}

func (f *fakeShippingService) GetQuote(ctx context.Context, address entity.Address, items []entity.CartItem, ttl time.Duration) (entity.ShippingQuote, error) {
	return entity.ShippingQuote{
		ID:        uuid.NewString(),
		Cost:      money.New("USD", 8, 990000000),
		ExpiresAt: f.now().UTC().Add(ttl),
	}, nil
}
