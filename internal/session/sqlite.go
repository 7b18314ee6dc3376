package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store on SQLite with a sliding TTL column.
type SQLiteStore struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

// OpenDB opens (and creates if needed) the SQLite database at path with
// WAL mode enabled.
func OpenDB(path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	dsn := path + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

// NewSQLiteStore prepares the session table on an open database.
func NewSQLiteStore(db *sql.DB, ttl time.Duration) (*SQLiteStore, error) {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS sessions (
		key TEXT PRIMARY KEY,
		data TEXT NOT NULL,
		expires_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_sessions_expires ON sessions(expires_at);`
	if _, err := db.Exec(query); err != nil {
		return nil, fmt.Errorf("create session schema: %w", err)
	}
	return &SQLiteStore{db: db, ttl: ttl, now: time.Now}, nil
}

// SetNow overrides the clock, for expiry tests.
func (s *SQLiteStore) SetNow(now func() time.Time) {
	s.now = now
}

// retryBusy retries an operation on SQLITE_BUSY with exponential backoff.
func retryBusy(ctx context.Context, op func() error) error {
	return retry.Do(op,
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(100*time.Millisecond),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return strings.Contains(err.Error(), "database is locked") ||
				strings.Contains(err.Error(), "SQLITE_BUSY")
		}),
	)
}

// Save upserts the record and resets its TTL.
func (s *SQLiteStore) Save(ctx context.Context, rec *Record) error {
	rec.UpdatedAt = s.now()
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal session %s: %w", rec.ID, err)
	}

	key := Key(rec.Module, rec.Tier, rec.ID)
	expiresAt := s.now().Add(s.ttl).Unix()

	err = retryBusy(ctx, func() error {
		_, execErr := s.db.ExecContext(ctx,
			`INSERT INTO sessions (key, data, expires_at) VALUES (?, ?, ?)
			 ON CONFLICT(key) DO UPDATE SET data = excluded.data, expires_at = excluded.expires_at`,
			key, string(data), expiresAt)
		return execErr
	})
	if err != nil {
		return fmt.Errorf("saving session %s: %v: %w", rec.ID, err, ErrUnavailable)
	}
	return nil
}

// Load fetches a record, lazily deleting it when expired. The TTL slides:
// a successful load pushes the expiry forward.
func (s *SQLiteStore) Load(ctx context.Context, module, tier, id string) (*Record, error) {
	key := Key(module, tier, id)
	row := s.db.QueryRowContext(ctx,
		`SELECT data, expires_at FROM sessions WHERE key = ?`, key)

	var data string
	var expiresAt int64
	err := row.Scan(&data, &expiresAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading session %s: %v: %w", id, err, ErrUnavailable)
	}

	if s.now().Unix() > expiresAt {
		// expired rows read as missing; removal is best effort
		_, _ = s.db.ExecContext(ctx, `DELETE FROM sessions WHERE key = ?`, key)
		return nil, nil
	}

	var rec Record
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, fmt.Errorf("decoding session %s: %w", id, err)
	}

	newExpiry := s.now().Add(s.ttl).Unix()
	_, _ = s.db.ExecContext(ctx,
		`UPDATE sessions SET expires_at = ? WHERE key = ?`, newExpiry, key)

	return &rec, nil
}

// Delete removes a session. Deleting a missing session is not an error.
func (s *SQLiteStore) Delete(ctx context.Context, module, tier, id string) error {
	err := retryBusy(ctx, func() error {
		_, execErr := s.db.ExecContext(ctx,
			`DELETE FROM sessions WHERE key = ?`, Key(module, tier, id))
		return execErr
	})
	if err != nil {
		return fmt.Errorf("deleting session %s: %v: %w", id, err, ErrUnavailable)
	}
	return nil
}

// CleanupExpired removes every expired row. Meant for a periodic sweep.
func (s *SQLiteStore) CleanupExpired(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE expires_at < ?`, s.now().Unix())
	if err != nil {
		return 0, fmt.Errorf("cleanup expired sessions: %w", err)
	}
	return res.RowsAffected()
}

var _ Store = (*SQLiteStore)(nil)
