package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jcmexdev/storefront-core/internal/storefront/infra/httpx/middlewares"
)

func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middlewares.AttachRequestMetadata)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", handler.Health)

	r.Route("/api", func(r chi.Router) {
		r.Get("/currencies", handler.ListCurrencies)
		r.Put("/currency", handler.SetCurrency)

		r.Get("/products", handler.ListProducts)
		r.Get("/products/{id}", handler.GetProduct)

		r.Get("/cart", handler.GetCart)
		r.Post("/cart/items", handler.AddCartItem)
		r.Post("/cart/empty", handler.EmptyCart)

		r.Post("/checkout", handler.Checkout)
		r.Post("/checkout/{key}/resubmit", handler.ResubmitCheckout)
		r.Get("/checkout/pending", handler.PendingCheckouts)

		r.Get("/orders", handler.ListOrders)
	})

	return r
}
