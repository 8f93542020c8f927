package mutationlog

import "context"

// Repository is the port for persisting mutation log entries. The checkout
// orchestrator depends on this abstraction, not on SQLite directly, so the
// implementation can be swapped for Postgres or an in-memory fake in tests.
type Repository interface {
	// Save persists a new log entry. Each call appends a row; the table is
	// an append-only audit log, not an upsert.
	Save(ctx context.Context, entry *Entry) error
}
