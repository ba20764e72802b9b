package credential

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store used when no database is configured and
// as the test double. Semantics match PostgresStore, including the scan
// lookup and the compare-and-swap on rotation.
type MemoryStore struct {
	mu      sync.Mutex
	byID    map[string]*Record
	ordered []string // stable scan order
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: make(map[string]*Record)}
}

// Insert adds a record, assigning an ID when absent. It is a seeding helper
// for dev mode and tests, not part of the Store contract.
func (s *MemoryStore) Insert(rec Record) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.ID == "" {
		id, err := NewID(rec.CreatedAt)
		if err != nil {
			return Record{}, err
		}
		rec.ID = id
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	clone := rec
	s.byID[rec.ID] = &clone
	s.ordered = append(s.ordered, rec.ID)
	return rec, nil
}

// FindByUsername implements Store.
func (s *MemoryStore) FindByUsername(ctx context.Context, username string) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, ErrUnavailable
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range s.ordered {
		if rec := s.byID[id]; rec.Username == username {
			return copyRecord(rec), nil
		}
	}
	return Record{}, ErrNotFound
}

// FindByRefreshSecret implements Store: scan every record with a non-null
// hash and verify each candidate.
func (s *MemoryStore) FindByRefreshSecret(ctx context.Context, plain string, verify VerifySecret) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, ErrUnavailable
	}

	candidates := s.snapshotWithHash()
	for _, rec := range candidates {
		ok, err := verify(plain, *rec.RefreshSecretHash)
		if err != nil {
			continue // malformed stored hash: treat as non-match
		}
		if ok {
			return rec, nil
		}
	}
	return Record{}, ErrNotFound
}

// SetRefreshSecret implements Store.
func (s *MemoryStore) SetRefreshSecret(ctx context.Context, userID string, hash *string, expiresAt *time.Time) error {
	if err := ctx.Err(); err != nil {
		return ErrUnavailable
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.byID[userID]
	if !ok {
		return ErrNotFound
	}
	rec.RefreshSecretHash = copyString(hash)
	rec.RefreshSecretExpiresAt = copyTime(expiresAt)
	return nil
}

// ReplaceRefreshSecret implements Store.
func (s *MemoryStore) ReplaceRefreshSecret(ctx context.Context, userID, observedHash, newHash string, expiresAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return ErrUnavailable
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.byID[userID]
	if !ok {
		return ErrNotFound
	}
	if rec.RefreshSecretHash == nil || *rec.RefreshSecretHash != observedHash {
		return ErrConflict
	}
	rec.RefreshSecretHash = &newHash
	exp := expiresAt
	rec.RefreshSecretExpiresAt = &exp
	return nil
}

// snapshotWithHash copies matching records under the lock so the argon2
// verification loop runs without holding it.
func (s *MemoryStore) snapshotWithHash() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Record
	for _, id := range s.ordered {
		if rec := s.byID[id]; rec.RefreshSecretHash != nil {
			out = append(out, copyRecord(rec))
		}
	}
	return out
}

func copyRecord(rec *Record) Record {
	out := *rec
	out.RefreshSecretHash = copyString(rec.RefreshSecretHash)
	out.RefreshSecretExpiresAt = copyTime(rec.RefreshSecretExpiresAt)
	return out
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
