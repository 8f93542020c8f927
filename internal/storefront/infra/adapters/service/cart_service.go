package service

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jcmexdev/storefront-core/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/storefront-core/internal/storefront/core/ports"
)

// Ensure the adapter implements the port at compile time.
var _ ports.CartService = (*HTTPCartService)(nil)

// HTTPCartService talks to the deployed cart service over JSON/HTTP.
type HTTPCartService struct {
	baseURL string
	client  *http.Client
}

func NewHTTPCartService(baseURL string, client *http.Client) *HTTPCartService {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPCartService{baseURL: baseURL, client: client}
}

type cartItemsResponse struct {
	Items []entity.CartItem `json:"items"`
}

func (s *HTTPCartService) GetItems(ctx context.Context, cartID string) ([]entity.CartItem, error) {
	var resp cartItemsResponse
	url := fmt.Sprintf("%s/carts/%s/items", s.baseURL, cartID)
	if err := doJSON(ctx, s.client, "cart", "GetItems", http.MethodGet, url, nil, &resp, nil); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

func (s *HTTPCartService) AddItem(ctx context.Context, cartID string, item entity.CartItem) error {
	url := fmt.Sprintf("%s/carts/%s/items", s.baseURL, cartID)
	return doJSON(ctx, s.client, "cart", "AddItem", http.MethodPost, url, item, nil, nil)
}

func (s *HTTPCartService) EmptyCart(ctx context.Context, cartID string) error {
	url := fmt.Sprintf("%s/carts/%s/empty", s.baseURL, cartID)
	return doJSON(ctx, s.client, "cart", "EmptyCart", http.MethodPost, url, nil, nil, nil)
}
