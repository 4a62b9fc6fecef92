// Package testutil builds throwaway stores and collaborators for tests.
package testutil

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/sunghyun0422/snf.semi/internal/database"
	"github.com/sunghyun0422/snf.semi/internal/service"
)

const (
	AdminUsername = "admin"
	AdminPassword = "admin-password"
	OfferPassword = "offer1234"
)

// TestSeed is the seed every test store is reconciled with.
var TestSeed = database.Seed{
	AdminUsername: AdminUsername,
	AdminPassword: AdminPassword,
	OfferPassword: OfferPassword,
}

// OpenRawDB opens an empty in-memory sqlite store without creating any tables.
func OpenRawDB(t *testing.T) *sql.DB {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, _, err := database.Open(ctx, database.TypeSQLite, ":memory:", "")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return db
}

// SetupTestDB returns an in-memory store with the full schema and seeded singletons.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db := OpenRawDB(t)
	if err := database.NewReconciler(db, database.SQLite, TestSeed).Ensure(context.Background()); err != nil {
		t.Fatalf("Failed to reconcile schema: %v", err)
	}

	return db
}

// Clock is a settable time source.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock(start time.Time) *Clock {
	return &Clock{now: start}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Mailer records what would have been sent.
type Mailer struct {
	Disabled bool
	Err      error

	mu   sync.Mutex
	sent []service.Envelope
}

func (m *Mailer) Enabled() bool {
	return !m.Disabled
}

func (m *Mailer) Send(ctx context.Context, env service.Envelope) error {
	if m.Disabled {
		return service.ErrMailUnavailable
	}
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, env)
	return nil
}

func (m *Mailer) Sent() []service.Envelope {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]service.Envelope(nil), m.sent...)
}

// ObjectStore keeps objects in memory.
type ObjectStore struct {
	mu      sync.Mutex
	next    int
	Objects map[string][]byte
}

func NewObjectStore() *ObjectStore {
	return &ObjectStore{Objects: map[string][]byte{}}
}

func (s *ObjectStore) NewKey() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	return "attachments/test-" + string(rune('a'+s.next-1)), nil
}

func (s *ObjectStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Objects[key] = append([]byte(nil), data...)
	return nil
}

func (s *ObjectStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.Objects[key]
	if !ok {
		return nil, service.ErrNotFound
	}
	return append([]byte(nil), data...), nil
}

func (s *ObjectStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.Objects, key)
	return nil
}
