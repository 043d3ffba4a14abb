package idempotency

import (
	"context"
	"sync"
	"time"

	"orders/internal/core/domain/model/kernel"
	"orders/internal/core/ports"
)

var _ ports.IdempotencyStore = (*MemoryStore)(nil)

type memoryEntry struct {
	id        kernel.UUID
	expiresAt time.Time
}

// MemoryStore keeps claims in process memory. Claims are lost on restart and
// are not shared between replicas.
//
// An expired key is replaced when it is claimed again. Keys nobody asks for
// again are dropped by a sweep that runs at most once per TTL.
type MemoryStore struct {
	mu        sync.Mutex
	ttl       time.Duration
	now       func() time.Time
	nextSweep time.Time
	entries   map[string]memoryEntry
}

// NewMemoryStore creates an empty store.
//
// Parameters:
//   - ttl: how long a key stays bound, DefaultTTL when not positive
//
// Example:
//
//	store := NewMemoryStore(24 * time.Hour)
//	id, err := store.Claim(ctx, "client-key", kernel.NewUUID())
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{ttl: ttl, now: time.Now, entries: make(map[string]memoryEntry)}
}

// Claim binds key to candidate unless a live binding exists, and returns the
// id the key is bound to.
func (s *MemoryStore) Claim(_ context.Context, key string, candidate kernel.UUID) (kernel.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if e, ok := s.entries[key]; ok && now.Before(e.expiresAt) {
		return e.id, nil
	}

	s.entries[key] = memoryEntry{id: candidate, expiresAt: now.Add(s.ttl)}
	s.sweep(now)
	return candidate, nil
}

// sweep drops expired entries once the previous sweep is a TTL old, which
// keeps Claim amortised O(1).
func (s *MemoryStore) sweep(now time.Time) {
	if now.Before(s.nextSweep) {
		return
	}
	s.nextSweep = now.Add(s.ttl)
	for k, e := range s.entries {
		if !now.Before(e.expiresAt) {
			delete(s.entries, k)
		}
	}
}
