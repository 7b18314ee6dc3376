package almanac

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"

	_ "modernc.org/sqlite"
)

// MonthStore serves almanac content keyed by month ("YYYY-MM").
// An empty content string with nil error means the month has no data.
type MonthStore interface {
	MonthContent(ctx context.Context, month string) (string, error)
	AvailableMonths(ctx context.Context) ([]string, error)
	PutMonth(ctx context.Context, month, content string) error
}

// SQLiteMonthStore keeps almanac months in SQLite.
type SQLiteMonthStore struct {
	db *sql.DB
}

// NewSQLiteMonthStore prepares the almanac table on an open database.
func NewSQLiteMonthStore(db *sql.DB) (*SQLiteMonthStore, error) {
	query := `
	CREATE TABLE IF NOT EXISTS almanac_months (
		month TEXT PRIMARY KEY,
		content TEXT NOT NULL
	);`
	if _, err := db.Exec(query); err != nil {
		return nil, fmt.Errorf("create almanac schema: %w", err)
	}
	return &SQLiteMonthStore{db: db}, nil
}

// MonthContent returns the almanac text for a month, or "" when absent.
func (s *SQLiteMonthStore) MonthContent(ctx context.Context, month string) (string, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT content FROM almanac_months WHERE month = ?`, month)

	var content string
	err := row.Scan(&content)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("scan almanac month: %w", err)
	}
	return content, nil
}

// AvailableMonths lists every month with data, sorted ascending.
func (s *SQLiteMonthStore) AvailableMonths(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT month FROM almanac_months ORDER BY month`)
	if err != nil {
		return nil, fmt.Errorf("query almanac months: %w", err)
	}
	defer rows.Close()

	var months []string
	for rows.Next() {
		var m string
		if err := rows.Scan(&m); err != nil {
			return nil, fmt.Errorf("scan almanac month row: %w", err)
		}
		months = append(months, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate almanac months: %w", err)
	}
	return months, nil
}

// PutMonth inserts or replaces a month's content.
func (s *SQLiteMonthStore) PutMonth(ctx context.Context, month, content string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO almanac_months (month, content) VALUES (?, ?)
		 ON CONFLICT(month) DO UPDATE SET content = excluded.content`,
		month, content)
	if err != nil {
		return fmt.Errorf("upsert almanac month: %w", err)
	}
	return nil
}

var _ MonthStore = (*SQLiteMonthStore)(nil)

// MemMonthStore is an in-memory MonthStore for tests.
type MemMonthStore struct {
	mu     sync.RWMutex
	months map[string]string
}

// NewMemMonthStore creates an empty in-memory store.
func NewMemMonthStore() *MemMonthStore {
	return &MemMonthStore{months: make(map[string]string)}
}

func (s *MemMonthStore) MonthContent(_ context.Context, month string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.months[month], nil
}

func (s *MemMonthStore) AvailableMonths(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	months := make([]string, 0, len(s.months))
	for m := range s.months {
		months = append(months, m)
	}
	sort.Strings(months)
	return months, nil
}

func (s *MemMonthStore) PutMonth(_ context.Context, month, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.months[month] = content
	return nil
}

var _ MonthStore = (*MemMonthStore)(nil)
