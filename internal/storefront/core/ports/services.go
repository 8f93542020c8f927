// Package ports declares the interfaces of the backend services the
// storefront core orchestrates. The core depends on these abstractions only;
// transport adapters (JSON/HTTP, in-memory fakes) live in infra.
package ports

import (
	"context"
	"time"

	"github.com/jcmexdev/storefront-core/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/storefront-core/internal/storefront/core/domain/money"
)

// CartService is the user's cart, addressed by cart id.
type CartService interface {
	GetItems(ctx context.Context, cartID string) ([]entity.CartItem, error)
	AddItem(ctx context.Context, cartID string, item entity.CartItem) error
	EmptyCart(ctx context.Context, cartID string) error
}

// ProductCatalog resolves product records. GetProduct returns ErrNotFound for
// unknown ids; callers absorb the miss by omitting the requesting line.
type ProductCatalog interface {
	GetProduct(ctx context.Context, id string) (entity.Product, error)
	ListProducts(ctx context.Context) ([]entity.Product, error)
}

// ShippingService quotes shipping for an address and a set of cart items.
// The returned quote's expiry is computed by the service.
type ShippingService interface {
	GetQuote(ctx context.Context, address entity.Address, items []entity.CartItem, ttl time.Duration) (entity.ShippingQuote, error)
}

// PlaceOrderRequest is the checkout mutation payload. IdempotencyKey is
// caller-generated; the checkout service must process duplicate submissions
// carrying the same key at most once.
type PlaceOrderRequest struct {
	IdempotencyKey string                `json:"idempotencyKey"`
	UserID         string                `json:"userId"`
	UserCurrency   string                `json:"userCurrency"`
	Address        entity.Address        `json:"address"`
	CreditCard     entity.CreditCardInfo `json:"creditCard"`
	Quote          entity.ShippingQuote  `json:"quote"`
	Email          string                `json:"email"`
}

// CheckoutService places orders and lists order history.
type CheckoutService interface {
	PlaceOrder(ctx context.Context, req PlaceOrderRequest) (entity.OrderRecord, error)
	ListOrders(ctx context.Context, userID string) ([]entity.OrderRecord, error)
}

// ConversionItem carries one money amount through a batched conversion,
// keyed by a caller-supplied id so results can be re-associated.
type ConversionItem struct {
	ID     string      `json:"id"`
	Amount money.Money `json:"amount"`
}

// CurrencyConverter converts batches of amounts to a target currency via the
// external rate service.
type CurrencyConverter interface {
	Convert(ctx context.Context, items []ConversionItem, toCode string) ([]ConversionItem, error)
	SupportedCurrencies(ctx context.Context) ([]string, error)
}
