package service

import (
	"context"
	"net/http"

	"github.com/jcmexdev/storefront-core/internal/storefront/core/ports"
)

var _ ports.CurrencyConverter = (*HTTPCurrencyConverter)(nil)

// HTTPCurrencyConverter converts batched amounts through the rate service.
type HTTPCurrencyConverter struct {
	baseURL string
	client  *http.Client
}

func NewHTTPCurrencyConverter(baseURL string, client *http.Client) *HTTPCurrencyConverter {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPCurrencyConverter{baseURL: baseURL, client: client}
}

type convertRequest struct {
	Items  []ports.ConversionItem `json:"items"`
	ToCode string                 `json:"toCode"`
}

type convertResponse struct {
	Items []ports.ConversionItem `json:"items"`
}

type currencyListResponse struct {
	CurrencyCodes []string `json:"currencyCodes"`
}

func (s *HTTPCurrencyConverter) Convert(ctx context.Context, items []ports.ConversionItem, toCode string) ([]ports.ConversionItem, error) {
	req := convertRequest{Items: items, ToCode: toCode}
	var resp convertResponse
	url := s.baseURL + "/convert"
	if err := doJSON(ctx, s.client, "currency", "Convert", http.MethodPost, url, req, &resp, nil); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

func (s *HTTPCurrencyConverter) SupportedCurrencies(ctx context.Context) ([]string, error) {
	var resp currencyListResponse
	url := s.baseURL + "/currencies"
	if err := doJSON(ctx, s.client, "currency", "SupportedCurrencies", http.MethodGet, url, nil, &resp, nil); err != nil {
		return nil, err
	}
	return resp.CurrencyCodes, nil
}
