package service

import (
	"context"
	"net/http"
	"time"

	"github.com/jcmexdev/storefront-core/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/storefront-core/internal/storefront/core/ports"
)

var _ ports.ShippingService = (*HTTPShippingService)(nil)

// HTTPShippingService requests shipping quotes over JSON/HTTP. The requested
// lifetime travels in the payload; the service computes and returns the
// quote's absolute expiry.
type HTTPShippingService struct {
	baseURL string
	client  *http.Client
}

func NewHTTPShippingService(baseURL string, client *http.Client) *HTTPShippingService {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPShippingService{baseURL: baseURL, client: client}
}

type quoteRequest struct {
	Address                entity.Address    `json:"address"`
	Items                  []entity.CartItem `json:"items"`
	QuoteExpirationSeconds int64             `json:"quoteExpirationSeconds"`
}

func (s *HTTPShippingService) GetQuote(ctx context.Context, address entity.Address, items []entity.CartItem, ttl time.Duration) (entity.ShippingQuote, error) {
	req := quoteRequest{
		Address:                address,
		Items:                  items,
		QuoteExpirationSeconds: int64(ttl / time.Second),
	}
	var quote entity.ShippingQuote
	url := s.baseURL + "/quotes"
	if err := doJSON(ctx, s.client, "shipping", "GetQuote", http.MethodPost, url, req, &quote, nil); err != nil {
		return entity.ShippingQuote{}, err
	}
	return quote, nil
}
