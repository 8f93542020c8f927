package httpx

import (
	"time"

	"github.com/jcmexdev/storefront-core/internal/storefront"
	"github.com/jcmexdev/storefront-core/internal/storefront/cartview"
	"github.com/jcmexdev/storefront-core/internal/storefront/checkout"
	"github.com/jcmexdev/storefront-core/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/storefront-core/internal/storefront/core/domain/money"
)

type AddCartItemRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int32  `json:"quantity" validate:"required,gt=0"`
}

type SetCurrencyRequest struct {
	CurrencyCode string `json:"currencyCode" validate:"required,len=3,uppercase"`
}

type CreditCardDTO struct {
	Number          string `json:"creditCardNumber" validate:"required,credit_card"`
	CVV             int32  `json:"creditCardCvv" validate:"required,min=100,max=9999"`
	ExpirationYear  int32  `json:"creditCardExpirationYear" validate:"required,min=2000"`
	ExpirationMonth int32  `json:"creditCardExpirationMonth" validate:"required,min=1,max=12"`
}

type PlaceOrderRequest struct {
	Email      string        `json:"email" validate:"required,email"`
	CreditCard CreditCardDTO `json:"creditCard" validate:"required"`
}

type ProductListResponse struct {
	Products []entity.Product `json:"products"`
}

type CurrencyListResponse struct {
	CurrencyCodes []string `json:"currencyCodes"`
}

type CartResponse struct {
	CurrencyCode   string               `json:"currencyCode"`
	Items          []entity.ProductItem `json:"items"`
	ShippingCost   money.Money          `json:"shippingCost"`
	Total          money.Money          `json:"total"`
	QuoteExpiresAt time.Time            `json:"quoteExpiresAt,omitzero"`
	Empty          bool                 `json:"empty"`
}

type MutationResponse struct {
	IdempotencyKey string               `json:"idempotencyKey"`
	Status         string               `json:"status"`
	OrderID        string               `json:"orderId,omitempty"`
	Items          []entity.ProductItem `json:"items,omitempty"`
	Error          string               `json:"error,omitempty"`
	StartedAt      time.Time            `json:"startedAt"`
	ResolvedAt     time.Time            `json:"resolvedAt,omitzero"`
}

type MutationListResponse struct {
	Mutations []MutationResponse `json:"mutations"`
}

type OrderListResponse struct {
	Orders []storefront.OrderView `json:"orders"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func mapCartToResponse(view cartview.View) CartResponse {
	return CartResponse{
		CurrencyCode:   view.CurrencyCode,
		Items:          view.Items,
		ShippingCost:   view.Shipping,
		Total:          view.Total,
		QuoteExpiresAt: view.Quote.ExpiresAt,
		Empty:          view.Empty,
	}
}

func mapMutationToResponse(m checkout.Mutation) MutationResponse {
	resp := MutationResponse{
		IdempotencyKey: m.IdempotencyKey,
		Status:         string(m.Status),
		Items:          m.Items,
		StartedAt:      m.StartedAt,
		ResolvedAt:     m.ResolvedAt,
	}
	if m.Order != nil {
		resp.OrderID = m.Order.OrderID
	}
	if m.Err != nil {
		resp.Error = m.Err.Error()
	}
	return resp
}
