package billing

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// nonceTTL bounds how long an intent attempt nonce is remembered. It
// matches the lifetime of a gateway checkout link: after it lapses a
// retried nonce is a fresh attempt, not a replayed one.
const nonceTTL = 24 * time.Hour

// NonceStore remembers which gateway intent was created for an attempt
// nonce so retried CreateIntent calls return the original reference
// instead of creating duplicate gateway resources.
type NonceStore interface {
	// Get returns the intent previously recorded for the nonce key, or
	// (nil, nil) when the nonce is unseen or lapsed.
	Get(ctx context.Context, key string) (*IntentRef, error)

	// Put records the intent created for the nonce key.
	Put(ctx context.Context, key string, ref *IntentRef) error
}

// NonceKey builds the dedup key for an intent attempt. Idempotency is
// scoped per (account, plan, nonce): the same nonce against a different
// plan is a distinct attempt.
func NonceKey(accountID uuid.UUID, planID, nonce string) string {
	return fmt.Sprintf("billing:intent:%s:%s:%s", accountID, planID, nonce)
}

type memoryNonceStore struct {
	mu      sync.Mutex
	entries map[string]nonceEntry
}

type nonceEntry struct {
	ref       IntentRef
	expiresAt time.Time
}

// NewMemoryNonceStore returns a NonceStore backed by a map. Entries lapse
// after the standard nonce TTL; lapsed entries are dropped on access.
func NewMemoryNonceStore() NonceStore {
	return &memoryNonceStore{entries: make(map[string]nonceEntry)}
}

func (s *memoryNonceStore) Get(_ context.Context, key string) (*IntentRef, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok {
		return nil, nil
	}
	if time.Now().After(entry.expiresAt) {
		delete(s.entries, key)
		return nil, nil
	}
	ref := entry.ref
	return &ref, nil
}

func (s *memoryNonceStore) Put(_ context.Context, key string, ref *IntentRef) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = nonceEntry{ref: *ref, expiresAt: time.Now().Add(nonceTTL)}
	return nil
}
