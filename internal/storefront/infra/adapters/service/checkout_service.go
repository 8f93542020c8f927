package service

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/jcmexdev/storefront-core/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/storefront-core/internal/storefront/core/ports"
)

var _ ports.CheckoutService = (*HTTPCheckoutService)(nil)

// HTTPCheckoutService submits order placements over JSON/HTTP. The caller's
// idempotency key rides in the x-idempotency-key header so the service can
// deduplicate replays of the same mutation.
type HTTPCheckoutService struct {
	baseURL string
	client  *http.Client
}

func NewHTTPCheckoutService(baseURL string, client *http.Client) *HTTPCheckoutService {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPCheckoutService{baseURL: baseURL, client: client}
}

type orderListResponse struct {
	Orders []entity.OrderRecord `json:"orders"`
}

func (s *HTTPCheckoutService) PlaceOrder(ctx context.Context, req ports.PlaceOrderRequest) (entity.OrderRecord, error) {
	header := http.Header{}
	header.Set("x-idempotency-key", req.IdempotencyKey)

	var order entity.OrderRecord
	u := s.baseURL + "/orders"
	if err := doJSON(ctx, s.client, "checkout", "PlaceOrder", http.MethodPost, u, req, &order, header); err != nil {
		return entity.OrderRecord{}, err
	}
	return order, nil
}

func (s *HTTPCheckoutService) ListOrders(ctx context.Context, userID string) ([]entity.OrderRecord, error) {
	var resp orderListResponse
	u := fmt.Sprintf("%s/orders?userId=%s", s.baseURL, url.QueryEscape(userID))
	if err := doJSON(ctx, s.client, "checkout", "ListOrders", http.MethodGet, u, nil, &resp, nil); err != nil {
		return nil, err
	}
	return resp.Orders, nil
}
