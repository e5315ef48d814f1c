package audit

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Entry describes one administrative action relayed to the backend.
type Entry struct {
	Action    string
	Actor     string
	Usernames []string
	Status    int
	RequestID string
	At        time.Time
}

// Recorder persists audit entries.
type Recorder interface {
	Record(ctx context.Context, entry Entry) error
}

// LogRecorder writes entries to the service log. Used when no database is configured.
type LogRecorder struct {
	logger *zap.Logger
}

// NewLogRecorder returns a log-backed recorder.
func NewLogRecorder(logger *zap.Logger) *LogRecorder {
	return &LogRecorder{logger: logger}
}

// Record logs the entry.
func (r *LogRecorder) Record(_ context.Context, entry Entry) error {
	r.logger.Info("admin action",
		zap.String("action", entry.Action),
		zap.String("actor", entry.Actor),
		zap.Strings("usernames", entry.Usernames),
		zap.Int("status", entry.Status),
		zap.String("request_id", entry.RequestID),
		zap.Time("at", entry.At),
	)
	return nil
}

const createTable = `
	CREATE TABLE IF NOT EXISTS admin_audit (
		id          BIGSERIAL PRIMARY KEY,
		action      TEXT        NOT NULL,
		actor       TEXT        NOT NULL,
		usernames   TEXT        NOT NULL,
		status      INTEGER     NOT NULL,
		request_id  TEXT        NOT NULL DEFAULT '',
		created_at  TIMESTAMPTZ NOT NULL
	)
`

// PostgresRecorder stores entries in the admin_audit table.
type PostgresRecorder struct {
	db *sql.DB
}

// NewPostgresRecorder returns a recorder on top of an open pool.
func NewPostgresRecorder(db *sql.DB) *PostgresRecorder {
	return &PostgresRecorder{db: db}
}

// EnsureSchema creates the audit table when missing.
func (r *PostgresRecorder) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, createTable)
	return err
}

// Record inserts the entry.
func (r *PostgresRecorder) Record(ctx context.Context, entry Entry) error {
	if entry.Action == "" {
		return errors.New("audit: action is required")
	}
	if entry.At.IsZero() {
		entry.At = time.Now()
	}
	const query = `
		INSERT INTO admin_audit (action, actor, usernames, status, request_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, query,
		entry.Action,
		entry.Actor,
		strings.Join(entry.Usernames, ","),
		entry.Status,
		entry.RequestID,
		entry.At.UTC(),
	)
	return err
}
