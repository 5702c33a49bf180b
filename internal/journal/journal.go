// CLAUDE:SUMMARY Persists capture activity to SQLite: session lifecycle, captures, fallbacks, simulations, resets.
// Package journal records what each session did. The matrix itself stays
// in memory for the session's lifetime; the journal is the durable trail
// of how it got there.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/hazyhaar/stylewatch/internal/dbopen"
	"github.com/hazyhaar/stylewatch/internal/idgen"
)

// Schema creates the journal tables. Pass to dbopen.WithSchema.
const Schema = `
CREATE TABLE IF NOT EXISTS capture_events (
	event_id   TEXT PRIMARY KEY,
	session_id TEXT NOT NULL,
	kind       TEXT NOT NULL,
	selector   TEXT NOT NULL DEFAULT '',
	state      TEXT NOT NULL DEFAULT '',
	origin     TEXT NOT NULL DEFAULT '',
	detail     TEXT NOT NULL DEFAULT '',
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_capture_events_session
	ON capture_events(session_id, created_at);
`

// Event kinds.
const (
	KindSessionOpen  = "session_open"
	KindSessionClose = "session_close"
	KindCapture      = "capture"
	KindFallback     = "fallback"
	KindSimulate     = "simulate"
	KindMatrixReset  = "matrix_reset"
)

// Event is one journal row.
type Event struct {
	ID        string `json:"id"`
	SessionID string `json:"session_id"`
	Kind      string `json:"kind"`
	Selector  string `json:"selector,omitempty"`
	State     string `json:"state,omitempty"`
	Origin    string `json:"origin,omitempty"`
	Detail    string `json:"detail,omitempty"` // optional JSON
	CreatedAt int64  `json:"created_at"`
}

// Journal writes capture events. A nil Journal is a valid no-op writer,
// so callers never branch on whether journaling is configured.
type Journal struct {
	db     *sql.DB
	newID  idgen.Generator
	logger *slog.Logger
}

// Option configures a Journal.
type Option func(*Journal)

// WithIDGenerator sets a custom ID generator for event IDs.
func WithIDGenerator(gen idgen.Generator) Option {
	return func(j *Journal) { j.newID = gen }
}

// WithLogger sets the logger used for write failures.
func WithLogger(l *slog.Logger) Option {
	return func(j *Journal) { j.logger = l }
}

// New creates a journal backed by db.
func New(db *sql.DB, opts ...Option) *Journal {
	j := &Journal{
		db:     db,
		newID:  idgen.Prefixed("evt_", idgen.Default),
		logger: slog.Default(),
	}
	for _, o := range opts {
		o(j)
	}
	return j
}

// Record writes an event. Failures are logged but never propagated, so a
// broken journal cannot block a capture.
func (j *Journal) Record(ctx context.Context, ev Event) {
	if j == nil || j.db == nil {
		return
	}
	if ev.ID == "" {
		ev.ID = j.newID()
	}
	if ev.CreatedAt == 0 {
		ev.CreatedAt = time.Now().Unix()
	}
	_, err := dbopen.Exec(ctx, j.db, `
		INSERT INTO capture_events (
			event_id, session_id, kind, selector, state, origin, detail, created_at
		) VALUES (?,?,?,?,?,?,?,?)`,
		ev.ID, ev.SessionID, ev.Kind, ev.Selector, ev.State, ev.Origin, ev.Detail, ev.CreatedAt)
	if err != nil {
		j.logger.Error("journal: event write failed", "error", err, "kind", ev.Kind)
	}
}

// Recent returns the latest events for a session, newest first.
func (j *Journal) Recent(ctx context.Context, sessionID string, limit int) ([]Event, error) {
	if j == nil || j.db == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 50
	}
	rows, err := j.db.QueryContext(ctx, `
		SELECT event_id, session_id, kind, selector, state, origin, detail, created_at
		FROM capture_events
		WHERE session_id = ?
		ORDER BY created_at DESC, event_id DESC
		LIMIT ?`, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("journal: recent: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var ev Event
		if err := rows.Scan(&ev.ID, &ev.SessionID, &ev.Kind, &ev.Selector,
			&ev.State, &ev.Origin, &ev.Detail, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("journal: scan: %w", err)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// Cleanup deletes events older than the retention window. Zero days means
// no cleanup.
func Cleanup(ctx context.Context, db *sql.DB, days int, vacuum bool) error {
	if days <= 0 {
		return nil
	}
	cutoff := time.Now().Unix() - int64(days)*86400
	if _, err := db.ExecContext(ctx, `DELETE FROM capture_events WHERE created_at < ?`, cutoff); err != nil {
		return fmt.Errorf("journal: cleanup: %w", err)
	}
	if vacuum {
		if _, err := db.ExecContext(ctx, "VACUUM"); err != nil {
			return fmt.Errorf("journal: vacuum: %w", err)
		}
	}
	return nil
}
