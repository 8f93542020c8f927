package middlewares

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
)

// contextKey is an unexported type for context keys in this package.
// Using a custom type prevents collisions with keys from other packages
// that might use the same underlying string value.
type contextKey string

const (
	HeaderXRequestId      = "x-request-id"
	HeaderXIdempotencyKey = "x-idempotency-key"

	// ContextKeyRequestID is the context key for the request ID.
	ContextKeyRequestID contextKey = HeaderXRequestId
	// ContextKeyIdempotencyKey is the context key for a caller-supplied
	// idempotency key.
	ContextKeyIdempotencyKey contextKey = HeaderXIdempotencyKey
)

// AttachRequestMetadata copies the chi request id and the caller's optional
// x-idempotency-key header into the context so handlers and logs downstream
// can correlate the request.
func AttachRequestMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := middleware.GetReqID(r.Context())

		ctx := context.WithValue(r.Context(), ContextKeyRequestID, requestID)
		if key := r.Header.Get(HeaderXIdempotencyKey); key != "" {
			ctx = context.WithValue(ctx, ContextKeyIdempotencyKey, key)
		}

		w.Header().Set(HeaderXRequestId, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestID returns the request id attached by AttachRequestMetadata, or ""
// when the middleware did not run.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(ContextKeyRequestID).(string)
	return id
}
