package mutationlog

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// TraceInfo holds the OTel identifiers extracted from a context.
type TraceInfo struct {
	TraceID string // W3C trace ID, 32 lowercase hex chars
	SpanID  string // W3C span ID, 16 lowercase hex chars
}

// ExtractTraceInfo reads the active OpenTelemetry span from ctx. If the
// context carries no valid span (e.g. in unit tests) both fields are empty.
func ExtractTraceInfo(ctx context.Context) TraceInfo {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.IsValid() {
		return TraceInfo{}
	}
	return TraceInfo{
		TraceID: sc.TraceID().String(),
		SpanID:  sc.SpanID().String(),
	}
}

// NewEntry builds an Entry with trace info extracted from ctx.
func NewEntry(ctx context.Context, key string, status Status, orderID, payload, detail string) *Entry {
	ti := ExtractTraceInfo(ctx)
	return &Entry{
		IdempotencyKey: key,
		Status:         status,
		OrderID:        orderID,
		Payload:        payload,
		Detail:         detail,
		TraceID:        ti.TraceID,
		SpanID:         ti.SpanID,
		UpdatedAt:      time.Now().UTC(),
	}
}
