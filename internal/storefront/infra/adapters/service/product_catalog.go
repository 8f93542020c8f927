package service

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jcmexdev/storefront-core/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/storefront-core/internal/storefront/core/ports"
)

var _ ports.ProductCatalog = (*HTTPProductCatalog)(nil)

// HTTPProductCatalog talks to the deployed product catalog over JSON/HTTP.
// A 404 from the service surfaces as ports.ErrNotFound so callers can omit
// the missing line instead of failing the render.
type HTTPProductCatalog struct {
	baseURL string
	client  *http.Client
}

func NewHTTPProductCatalog(baseURL string, client *http.Client) *HTTPProductCatalog {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPProductCatalog{baseURL: baseURL, client: client}
}

type productListResponse struct {
	Products []entity.Product `json:"products"`
}

func (s *HTTPProductCatalog) GetProduct(ctx context.Context, id string) (entity.Product, error) {
	var product entity.Product
	url := fmt.Sprintf("%s/products/%s", s.baseURL, id)
	if err := doJSON(ctx, s.client, "product-catalog", "GetProduct", http.MethodGet, url, nil, &product, nil); err != nil {
		return entity.Product{}, err
	}
	return product, nil
}

func (s *HTTPProductCatalog) ListProducts(ctx context.Context) ([]entity.Product, error) {
	var resp productListResponse
	url := s.baseURL + "/products"
	if err := doJSON(ctx, s.client, "product-catalog", "ListProducts", http.MethodGet, url, nil, &resp, nil); err != nil {
		return nil, err
	}
	return resp.Products, nil
}
