package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrUnavailable wraps storage failures. Handlers map it to 503 so clients
// can retry without losing their session.
var ErrUnavailable = errors.New("session store unavailable")

// Key builds the storage key for a session.
func Key(module, tier, id string) string {
	return fmt.Sprintf("session:%s:%s:%s", module, tier, id)
}

// Store persists session records with a sliding TTL.
//
// Load returns (nil, nil) when the session does not exist or has expired;
// an error always means the store itself failed.
type Store interface {
	Save(ctx context.Context, rec *Record) error
	Load(ctx context.Context, module, tier, id string) (*Record, error)
	Delete(ctx context.Context, module, tier, id string) error
}

// MemStore is an in-memory Store for tests. The clock is injectable so
// expiry can be tested without sleeping.
type MemStore struct {
	mu      sync.RWMutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]memEntry

	// FailSaves makes every Save return ErrUnavailable.
	FailSaves bool
}

type memEntry struct {
	rec       Record
	expiresAt time.Time
}

// NewMemStore creates an in-memory store with the given TTL.
func NewMemStore(ttl time.Duration) *MemStore {
	return &MemStore{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]memEntry),
	}
}

// SetNow overrides the clock, for expiry tests.
func (s *MemStore) SetNow(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Save stores a copy of the record and resets its TTL.
func (s *MemStore) Save(_ context.Context, rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailSaves {
		return fmt.Errorf("saving session %s: %w", rec.ID, ErrUnavailable)
	}
	now := s.now()
	copied := *rec
	copied.History = append([]Message(nil), rec.History...)
	copied.Memories = append([]Memory(nil), rec.Memories...)
	copied.UpdatedAt = now
	s.entries[Key(rec.Module, rec.Tier, rec.ID)] = memEntry{
		rec:       copied,
		expiresAt: now.Add(s.ttl),
	}
	return nil
}

// Load returns a copy of the record, or nil if absent or expired.
func (s *MemStore) Load(_ context.Context, module, tier, id string) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := Key(module, tier, id)
	entry, ok := s.entries[key]
	if !ok {
		return nil, nil
	}
	if s.now().After(entry.expiresAt) {
		delete(s.entries, key)
		return nil, nil
	}
	copied := entry.rec
	copied.History = append([]Message(nil), entry.rec.History...)
	copied.Memories = append([]Memory(nil), entry.rec.Memories...)
	return &copied, nil
}

// Delete removes a session. Deleting a missing session is not an error.
func (s *MemStore) Delete(_ context.Context, module, tier, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, Key(module, tier, id))
	return nil
}

// Len reports how many live entries the store holds.
func (s *MemStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

var _ Store = (*MemStore)(nil)
