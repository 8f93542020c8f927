package httpx

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jcmexdev/storefront-core/internal/storefront"
	"github.com/jcmexdev/storefront-core/internal/storefront/infra/adapters/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*httptest.Server, *storefront.Session) {
	t.Helper()
	cart := service.NewFakeCartService()
	catalog := service.NewFakeProductCatalog()
	session := storefront.NewSession(storefront.Config{
		UserID: "user-1",
		CartID: "user-1",
	}, storefront.Backends{
		Cart:      cart,
		Catalog:   catalog,
		Shipping:  service.NewFakeShippingService(),
		Checkout:  service.NewFakeCheckoutService(cart, catalog),
		Converter: service.NewFakeCurrencyConverter(),
	})
	t.Cleanup(session.Close)

	server := httptest.NewServer(NewRouter(NewHandler(session)))
	t.Cleanup(server.Close)
	return server, session
}

func doRequest(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestHealth(t *testing.T) {
	server, _ := newTestServer(t)
	resp := doRequest(t, http.MethodGet, server.URL+"/health", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestListProducts(t *testing.T) {
	server, _ := newTestServer(t)
	resp := doRequest(t, http.MethodGet, server.URL+"/api/products", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body ProductListResponse
	decodeBody(t, resp, &body)
	assert.NotEmpty(t, body.Products)
	for _, p := range body.Products {
		assert.Equal(t, "USD", p.Price.CurrencyCode)
	}
}

func TestGetProductNotFound(t *testing.T) {
	server, _ := newTestServer(t)
	resp := doRequest(t, http.MethodGet, server.URL+"/api/products/NOPE", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	var body ErrorResponse
	decodeBody(t, resp, &body)
	assert.Equal(t, "product_not_found", body.Error)
}

func TestCartLifecycle(t *testing.T) {
	server, _ := newTestServer(t)

	resp := doRequest(t, http.MethodPost, server.URL+"/api/cart/items", AddCartItemRequest{
		ProductID: "OLJCESPC7Z",
		Quantity:  2,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var cart CartResponse
	decodeBody(t, resp, &cart)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, int32(2), cart.Items[0].Item.Quantity)
	assert.Equal(t, "USD", cart.Total.CurrencyCode)
	assert.False(t, cart.Empty)

	resp = doRequest(t, http.MethodPost, server.URL+"/api/cart/empty", nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp = doRequest(t, http.MethodGet, server.URL+"/api/cart", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &cart)
	assert.True(t, cart.Empty)
}

func TestAddCartItemRejectsNonPositiveQuantity(t *testing.T) {
	server, _ := newTestServer(t)

	resp := doRequest(t, http.MethodPost, server.URL+"/api/cart/items", map[string]any{
		"productId": "OLJCESPC7Z",
		"quantity":  0,
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSetCurrencyRepricesCart(t *testing.T) {
	server, _ := newTestServer(t)

	resp := doRequest(t, http.MethodPost, server.URL+"/api/cart/items", AddCartItemRequest{
		ProductID: "6E92ZMYYFZ",
		Quantity:  1,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doRequest(t, http.MethodPut, server.URL+"/api/currency", SetCurrencyRequest{CurrencyCode: "EUR"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var cart CartResponse
	decodeBody(t, resp, &cart)
	assert.Equal(t, "EUR", cart.CurrencyCode)
	assert.Equal(t, "EUR", cart.Total.CurrencyCode)
}

func TestCheckoutPlacesOrder(t *testing.T) {
	server, _ := newTestServer(t)

	resp := doRequest(t, http.MethodPost, server.URL+"/api/cart/items", AddCartItemRequest{
		ProductID: "OLJCESPC7Z",
		Quantity:  1,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doRequest(t, http.MethodPost, server.URL+"/api/checkout", PlaceOrderRequest{
		Email: "someone@example.com",
		CreditCard: CreditCardDTO{
			Number:          "4111111111111111",
			CVV:             123,
			ExpirationYear:  2030,
			ExpirationMonth: 1,
		},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var mutation MutationResponse
	decodeBody(t, resp, &mutation)
	assert.Equal(t, "SUCCEEDED", mutation.Status)
	assert.NotEmpty(t, mutation.OrderID)
	assert.NotEmpty(t, mutation.IdempotencyKey)
	require.Len(t, mutation.Items, 1)

	resp = doRequest(t, http.MethodGet, server.URL+"/api/orders", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var orders OrderListResponse
	decodeBody(t, resp, &orders)
	require.Len(t, orders.Orders, 1)
	assert.Equal(t, mutation.OrderID, orders.Orders[0].OrderID)
}

func TestCheckoutEmptyCartConflicts(t *testing.T) {
	server, _ := newTestServer(t)

	resp := doRequest(t, http.MethodPost, server.URL+"/api/checkout", PlaceOrderRequest{
		Email: "someone@example.com",
		CreditCard: CreditCardDTO{
			Number:          "4111111111111111",
			CVV:             123,
			ExpirationYear:  2030,
			ExpirationMonth: 1,
		},
	})
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	var body ErrorResponse
	decodeBody(t, resp, &body)
	assert.Equal(t, "cart_empty", body.Error)
}

func TestCheckoutRejectsInvalidPayload(t *testing.T) {
	server, _ := newTestServer(t)

	resp := doRequest(t, http.MethodPost, server.URL+"/api/checkout", map[string]any{
		"email": "not-an-email",
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPendingCheckoutsEmpty(t *testing.T) {
	server, _ := newTestServer(t)

	resp := doRequest(t, http.MethodGet, server.URL+"/api/checkout/pending", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body MutationListResponse
	decodeBody(t, resp, &body)
	assert.Empty(t, body.Mutations)
}

func TestResubmitUnknownKey(t *testing.T) {
	server, _ := newTestServer(t)

	resp := doRequest(t, http.MethodPost, server.URL+"/api/checkout/nope/resubmit", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	var body ErrorResponse
	decodeBody(t, resp, &body)
	assert.Equal(t, "unknown_mutation", body.Error)
}
