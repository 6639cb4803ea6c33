// Package memory is an in-process record and user store used for local runs
// and tests.
package memory

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"moneybook/internal/core"
	"moneybook/internal/storage"
)

type entry struct {
	rec core.Record
	seq uint64
}

type Store struct {
	mu      sync.Mutex
	records map[string]entry
	users   map[string]storage.User // keyed by normalised email
	seq     uint64
	now     func() time.Time
}

func New() *Store {
	return &Store{
		records: make(map[string]entry),
		users:   make(map[string]storage.User),
		now:     time.Now,
	}
}

// WithClock replaces the timestamp source. Used by tests.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
	return s
}

func (s *Store) CreateRecord(_ context.Context, n core.NewRecord) (core.Record, error) {
	if err := n.Validate(); err != nil {
		return core.Record{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	rec := n.Record(uuid.NewString(), s.now().UTC())
	s.records[rec.ID] = entry{rec: rec, seq: s.seq}
	return rec, nil
}

func (s *Store) DeleteRecord(_ context.Context, ownerID, id string) (core.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.records[id]
	if !ok || e.rec.OwnerID != ownerID {
		return core.Record{}, storage.ErrNotFound
	}
	delete(s.records, id)
	return e.rec, nil
}

func (s *Store) ListByPeriod(_ context.Context, ownerID string, period core.PeriodKey) ([]core.Record, error) {
	return s.list(func(r core.Record) bool {
		return r.OwnerID == ownerID && r.Period == period
	}), nil
}

func (s *Store) ListByYear(_ context.Context, ownerID string, year int) ([]core.Record, error) {
	first, last := storage.YearBounds(year)
	return s.list(func(r core.Record) bool {
		return r.OwnerID == ownerID && r.Period >= first && r.Period <= last
	}), nil
}

func (s *Store) Owners(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := map[string]struct{}{}
	owners := []string{}
	for _, e := range s.records {
		if _, ok := seen[e.rec.OwnerID]; ok {
			continue
		}
		seen[e.rec.OwnerID] = struct{}{}
		owners = append(owners, e.rec.OwnerID)
	}
	slices.Sort(owners)
	return owners, nil
}

func (s *Store) list(match func(core.Record) bool) []core.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	matched := make([]entry, 0)
	for _, e := range s.records {
		if match(e.rec) {
			matched = append(matched, e)
		}
	}
	// Newest first; insertion order breaks timestamp ties.
	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if !a.rec.CreatedAt.Equal(b.rec.CreatedAt) {
			return a.rec.CreatedAt.After(b.rec.CreatedAt)
		}
		return a.seq > b.seq
	})
	out := make([]core.Record, len(matched))
	for i, e := range matched {
		out[i] = e.rec
	}
	return out
}

func (s *Store) CreateUser(_ context.Context, email, passwordHash string) (storage.User, error) {
	key := normaliseEmail(email)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[key]; ok {
		return storage.User{}, storage.ErrEmailTaken
	}
	u := storage.User{
		ID:           uuid.NewString(),
		Email:        key,
		PasswordHash: passwordHash,
		CreatedAt:    s.now().UTC(),
	}
	s.users[key] = u
	return u, nil
}

func (s *Store) UserByEmail(_ context.Context, email string) (storage.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[normaliseEmail(email)]
	if !ok {
		return storage.User{}, storage.ErrNotFound
	}
	return u, nil
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

// Close is a no-op.
func (s *Store) Close() error { return nil }

func normaliseEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
