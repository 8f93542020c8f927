package httpx

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/jcmexdev/storefront-core/internal/storefront"
	"github.com/jcmexdev/storefront-core/internal/storefront/cartview"
	"github.com/jcmexdev/storefront-core/internal/storefront/catalog"
	"github.com/jcmexdev/storefront-core/internal/storefront/checkout"
	"github.com/jcmexdev/storefront-core/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/storefront-core/internal/storefront/core/ports"
	"github.com/jcmexdev/storefront-core/internal/storefront/currency"
	"github.com/jcmexdev/storefront-core/internal/storefront/infra/httpx/middlewares"
)

// Handler exposes one storefront session over HTTP.
type Handler struct {
	session  *storefront.Session
	validate *validator.Validate
}

func NewHandler(session *storefront.Session) *Handler {
	return &Handler{
		session:  session,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) ListCurrencies(w http.ResponseWriter, r *http.Request) {
	codes, err := h.session.Currencies(r.Context())
	if err != nil {
		h.writeMappedError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, CurrencyListResponse{CurrencyCodes: codes})
}

// ListProducts lists the catalog priced in the session currency. An optional
// ?currency= query switches the session currency first.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	if code := r.URL.Query().Get("currency"); code != "" && code != h.session.Currency() {
		if _, err := h.session.SetCurrency(r.Context(), code); err != nil && !errors.Is(err, cartview.ErrStaleResult) {
			h.writeMappedError(w, r, err)
			return
		}
	}
	products, err := h.session.Products(r.Context())
	if err != nil {
		h.writeMappedError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ProductListResponse{Products: products})
}

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	product, ok, err := h.session.Product(r.Context(), id)
	if err != nil {
		h.writeMappedError(w, r, err)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "product_not_found", "")
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	view, err := h.session.CartView(r.Context())
	h.writeCart(w, r, view, err)
}

func (h *Handler) AddCartItem(w http.ResponseWriter, r *http.Request) {
	var req AddCartItemRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.session.AddToCart(r.Context(), req.ProductID, req.Quantity); err != nil {
		h.writeMappedError(w, r, err)
		return
	}
	view, err := h.session.CartView(r.Context())
	h.writeCart(w, r, view, err)
}

func (h *Handler) EmptyCart(w http.ResponseWriter, r *http.Request) {
	if err := h.session.EmptyCart(r.Context()); err != nil {
		h.writeMappedError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) SetCurrency(w http.ResponseWriter, r *http.Request) {
	var req SetCurrencyRequest
	if !h.decode(w, r, &req) {
		return
	}
	view, err := h.session.SetCurrency(r.Context(), req.CurrencyCode)
	h.writeCart(w, r, view, err)
}

func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req PlaceOrderRequest
	if !h.decode(w, r, &req) {
		return
	}

	slog.InfoContext(r.Context(), "placing order",
		"request_id", middlewares.RequestID(r.Context()),
		"email", req.Email,
	)

	card := entity.CreditCardInfo{
		Number:          req.CreditCard.Number,
		CVV:             req.CreditCard.CVV,
		ExpirationYear:  req.CreditCard.ExpirationYear,
		ExpirationMonth: req.CreditCard.ExpirationMonth,
	}
	m, err := h.session.PlaceOrder(r.Context(), card, req.Email)
	if err != nil {
		var placement *checkout.PlacementError
		if errors.As(err, &placement) {
			// The mutation is recorded and resubmittable; tell the client
			// which key to retry under.
			writeJSON(w, http.StatusBadGateway, mapMutationToResponse(m))
			return
		}
		h.writeMappedError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, mapMutationToResponse(m))
}

func (h *Handler) ResubmitCheckout(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	m, err := h.session.ResubmitOrder(r.Context(), key)
	if err != nil {
		var placement *checkout.PlacementError
		if errors.As(err, &placement) {
			writeJSON(w, http.StatusBadGateway, mapMutationToResponse(m))
			return
		}
		h.writeMappedError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapMutationToResponse(m))
}

func (h *Handler) PendingCheckouts(w http.ResponseWriter, r *http.Request) {
	pending := h.session.PendingMutations()
	mutations := make([]MutationResponse, 0, len(pending))
	for _, m := range pending {
		mutations = append(mutations, mapMutationToResponse(m))
	}
	writeJSON(w, http.StatusOK, MutationListResponse{Mutations: mutations})
}

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.session.Orders(r.Context())
	if err != nil {
		h.writeMappedError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, OrderListResponse{Orders: orders})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return false
	}
	if err := h.validate.Struct(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return false
	}
	return true
}

// writeCart renders a cart view, tolerating the two errors that still carry a
// servable view: a recomputation overtaken by a newer one, and a conversion
// outage answered from the last good view.
func (h *Handler) writeCart(w http.ResponseWriter, r *http.Request, view cartview.View, err error) {
	if err != nil {
		var conv *currency.UnavailableError
		servable := errors.Is(err, cartview.ErrStaleResult) ||
			(errors.As(err, &conv) && view.CurrencyCode != "")
		if !servable {
			h.writeMappedError(w, r, err)
			return
		}
		slog.WarnContext(r.Context(), "serving cart despite refresh error",
			"request_id", middlewares.RequestID(r.Context()),
			"error", err,
		)
	}
	writeJSON(w, http.StatusOK, mapCartToResponse(view))
}

func (h *Handler) writeMappedError(w http.ResponseWriter, r *http.Request, err error) {
	var invalidQty *catalog.InvalidQuantityError
	var convUnavailable *currency.UnavailableError
	switch {
	case errors.Is(err, ports.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.As(err, &invalidQty):
		writeError(w, http.StatusBadRequest, "invalid_quantity", err.Error())
	case errors.Is(err, storefront.ErrCartEmpty):
		writeError(w, http.StatusConflict, "cart_empty", err.Error())
	case errors.Is(err, checkout.ErrQuoteStale):
		writeError(w, http.StatusConflict, "quote_stale", err.Error())
	case errors.Is(err, checkout.ErrNotResubmittable):
		writeError(w, http.StatusConflict, "not_resubmittable", err.Error())
	case errors.Is(err, checkout.ErrUnknownMutation):
		writeError(w, http.StatusNotFound, "unknown_mutation", err.Error())
	case errors.Is(err, cartview.ErrClosed):
		writeError(w, http.StatusServiceUnavailable, "session_closed", err.Error())
	case ports.IsUnavailable(err), errors.As(err, &convUnavailable):
		writeError(w, http.StatusBadGateway, "upstream_unavailable", err.Error())
	default:
		slog.ErrorContext(r.Context(), "unhandled storefront error",
			"request_id", middlewares.RequestID(r.Context()),
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, ErrorResponse{
		Error:   code,
		Message: msg,
	})
}
