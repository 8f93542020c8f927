// Package mutationlog defines a durable audit trail of order-placement
// mutations.
//
// The live pending-mutation map is in-memory and per-session; this log is the
// durable record of every transition a placement went through. It serves two
// purposes:
//
//  1. Observability: query the table to see what happened to a submission and
//     correlate it with a distributed trace via the trace_id field.
//
//  2. Support: given a user-reported idempotency key, reconstruct whether the
//     backend ever acknowledged the order.
package mutationlog

import "time"

// Status is the lifecycle state recorded by one log row.
type Status string

const (
	StatusStarted     Status = "STARTED"
	StatusSucceeded   Status = "SUCCEEDED"
	StatusFailed      Status = "FAILED"
	StatusResubmitted Status = "RESUBMITTED"
)

// Entry is a single row in the mutation_logs table, a point-in-time snapshot
// of one placement attempt.
type Entry struct {
	// IdempotencyKey identifies the user-initiated submission. All rows for
	// one click (including resubmissions) share the key.
	IdempotencyKey string

	// Status is the lifecycle state at the time this row was written.
	Status Status

	// OrderID is the backend-assigned order id, set on SUCCEEDED rows.
	OrderID string

	// Payload is the JSON-serialised placement request. Stored once on
	// STARTED so a submission can be reconstructed from the log.
	Payload string

	// Detail carries the failure reason on FAILED rows.
	Detail string

	// TraceID is the W3C trace ID extracted from the OpenTelemetry span that
	// was active when this row was written.
	TraceID string

	// SpanID pinpoints the exact span within the trace.
	SpanID string

	// UpdatedAt is the wall-clock time of this entry.
	UpdatedAt time.Time
}
