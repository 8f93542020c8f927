// Package sqlite provides a SQLite-backed implementation of
// mutationlog.Repository.
//
// WAL mode is enabled on Open so that readers never block writers and vice
// versa — the checkout goroutine writes while a status endpoint may be
// reading.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jcmexdev/storefront-core/internal/storefront/checkout/mutationlog"

	// Register the pure-Go SQLite driver. modernc.org/sqlite avoids CGO,
	// which keeps Docker (Alpine) builds simple.
	_ "modernc.org/sqlite"
)

// schema is the DDL executed once on startup. The table is append-only: each
// row is an immutable event in a placement's lifecycle.
const schema = `
CREATE TABLE IF NOT EXISTS mutation_logs (
    id               INTEGER PRIMARY KEY AUTOINCREMENT,

    -- Idempotency key of the user-initiated submission. Not UNIQUE because
    -- multiple rows exist per submission (one per transition).
    idempotency_key  TEXT        NOT NULL,

    -- Lifecycle state at the time this row was written.
    status           TEXT        NOT NULL,

    -- Backend order id, empty until SUCCEEDED.
    order_id         TEXT        NOT NULL DEFAULT '',

    -- JSON placement request. Written once on STARTED, NULL after.
    payload          TEXT,

    -- Failure reason on FAILED rows.
    detail           TEXT        NOT NULL DEFAULT '',

    -- W3C trace_id / span_id from the active OTel span.
    trace_id         TEXT        NOT NULL DEFAULT '',
    span_id          TEXT        NOT NULL DEFAULT '',

    -- RFC3339 stored as TEXT, SQLite idiom.
    updated_at       TEXT        NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_mutation_logs_key ON mutation_logs(idempotency_key, updated_at);
CREATE INDEX IF NOT EXISTS idx_mutation_logs_trace_id ON mutation_logs(trace_id);
`

// Repository is the SQLite implementation of mutationlog.Repository.
type Repository struct {
	db *sql.DB
}

// Open opens (or creates) the database at the given path and applies the
// schema.
func Open(path string) (*Repository, error) {
	// WAL enables concurrent readers; busy_timeout waits for locks instead
	// of failing immediately.
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}

	// SQLite performs best with a single writer connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: apply schema: %w", err)
	}

	return &Repository{db: db}, nil
}

// Close releases the database connection.
func (r *Repository) Close() error {
	return r.db.Close()
}

// Save inserts a new log entry. Safe to call concurrently.
func (r *Repository) Save(ctx context.Context, entry *mutationlog.Entry) error {
	const q = `
		INSERT INTO mutation_logs
			(idempotency_key, status, order_id, payload, detail, trace_id, span_id, updated_at)
		VALUES
			(?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, q,
		entry.IdempotencyKey,
		string(entry.Status),
		entry.OrderID,
		nullableString(entry.Payload),
		entry.Detail,
		entry.TraceID,
		entry.SpanID,
		entry.UpdatedAt.UTC().Format("2006-01-02T15:04:05.999999999Z"),
	)
	if err != nil {
		return fmt.Errorf("sqlite: save mutation log for %q: %w", entry.IdempotencyKey, err)
	}
	return nil
}

// History returns all entries for an idempotency key, oldest first.
func (r *Repository) History(ctx context.Context, key string) ([]mutationlog.Entry, error) {
	const q = `
		SELECT idempotency_key, status, order_id, COALESCE(payload,''), detail,
		       trace_id, span_id, updated_at
		FROM   mutation_logs
		WHERE  idempotency_key = ?
		ORDER  BY updated_at ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, q, key)
	if err != nil {
		return nil, fmt.Errorf("sqlite: history for %q: %w", key, err)
	}
	defer rows.Close()

	var entries []mutationlog.Entry
	for rows.Next() {
		var e mutationlog.Entry
		var updatedAt string
		if err := rows.Scan(
			&e.IdempotencyKey, &e.Status, &e.OrderID, &e.Payload, &e.Detail,
			&e.TraceID, &e.SpanID, &updatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scan mutation log: %w", err)
		}
		ts, err := parseRFC3339(updatedAt)
		if err != nil {
			return nil, err
		}
		e.UpdatedAt = ts
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// nullableString maps "" to NULL so the payload column stays NULL on
// transition rows.
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
