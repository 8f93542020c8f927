// Package entity defines the domain records exchanged with the backend
// services. The storefront core only ever holds read-only copies; the durable
// state lives in the services themselves.
package entity

import (
	"time"

	"github.com/jcmexdev/storefront-core/internal/storefront/core/domain/money"
)

// CartItem is one line of the user's cart, owned by the cart service.
type CartItem struct {
	ProductID string    `json:"productId"`
	Quantity  int32     `json:"quantity"`
	AddedAt   time.Time `json:"addedAt,omitzero"`
}

// Product is a catalog record, owned by the product catalog service.
type Product struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Picture     string      `json:"picture"`
	Price       money.Money `json:"price"`
}

// ProductItem pairs a cart line with its resolved product. It is a transient
// view-model value, recomputed per render cycle and never persisted.
type ProductItem struct {
	Product Product  `json:"product"`
	Item    CartItem `json:"item"`
}

// Address is a shipping destination.
type Address struct {
	StreetAddress string `json:"streetAddress"`
	City          string `json:"city"`
	State         string `json:"state"`
	Country       string `json:"country"`
	ZipCode       int32  `json:"zipCode"`
}

// CreditCardInfo is the payment instrument forwarded to the checkout service.
type CreditCardInfo struct {
	Number          string `json:"creditCardNumber"`
	CVV             int32  `json:"creditCardCvv"`
	ExpirationYear  int32  `json:"creditCardExpirationYear"`
	ExpirationMonth int32  `json:"creditCardExpirationMonth"`
}

// ShippingQuote is a time-bounded offer from the shipping service. ExpiresAt
// is computed by the quoting service, not the client, so clock skew between
// the two cannot extend a quote's life.
//
// A quote must be attached unmodified to the order that consumes it and must
// be re-requested once it expires or the cart contents change.
type ShippingQuote struct {
	ID        string      `json:"id"`
	Cost      money.Money `json:"cost"`
	ExpiresAt time.Time   `json:"expiresAt"`
}

// Expired reports whether the quote is no longer usable at the given instant.
// The zero value is always expired.
func (q ShippingQuote) Expired(now time.Time) bool {
	return q.ID == "" || !q.ExpiresAt.After(now)
}

// OrderItem is one line of a placed order, priced at order time.
type OrderItem struct {
	Item CartItem    `json:"item"`
	Cost money.Money `json:"cost"`
}

// OrderRecord is a historical order as reported by the checkout service.
type OrderRecord struct {
	OrderID         string      `json:"orderId"`
	Items           []OrderItem `json:"items"`
	ShippingCost    money.Money `json:"shippingCost"`
	ShippingAddress Address     `json:"shippingAddress"`
}
