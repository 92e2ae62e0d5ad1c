package billing

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

type memoryStore struct {
	mu   sync.RWMutex
	subs map[string]Subscription
}

// NewMemoryStore returns a SubscriptionStore backed by a map. It carries
// the same optimistic-version semantics as the Postgres store so tests
// exercise the exact conflict paths production sees.
func NewMemoryStore() SubscriptionStore {
	return &memoryStore{subs: make(map[string]Subscription)}
}

func (s *memoryStore) Get(_ context.Context, id string) (*Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sub, ok := s.subs[id]
	if !ok {
		return nil, ErrUnknownSubscription
	}
	return copySubscription(sub), nil
}

func (s *memoryStore) GetBillableByAccount(_ context.Context, accountID uuid.UUID) (*Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, sub := range s.subs {
		if sub.AccountID == accountID && sub.Billable() {
			return copySubscription(sub), nil
		}
	}
	return nil, ErrUnknownSubscription
}

func (s *memoryStore) Create(_ context.Context, sub *Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.subs[sub.ID]; exists {
		return ErrVersionConflict
	}
	// Mirrors the partial unique index on (account_id) for billable rows.
	if sub.Billable() {
		for _, existing := range s.subs {
			if existing.AccountID == sub.AccountID && existing.Billable() {
				return ErrVersionConflict
			}
		}
	}
	sub.Version = 1
	s.subs[sub.ID] = *copySubscription(*sub)
	return nil
}

func (s *memoryStore) Update(_ context.Context, sub *Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.subs[sub.ID]
	if !ok {
		return ErrUnknownSubscription
	}
	if stored.Version != sub.Version {
		return ErrVersionConflict
	}
	sub.Version++
	s.subs[sub.ID] = *copySubscription(*sub)
	return nil
}

// copySubscription deep-copies pointer fields so callers never alias the
// stored row.
func copySubscription(sub Subscription) *Subscription {
	cp := sub
	if sub.LastVerifiedPaymentID != nil {
		v := *sub.LastVerifiedPaymentID
		cp.LastVerifiedPaymentID = &v
	}
	if sub.RenewsAt != nil {
		v := *sub.RenewsAt
		cp.RenewsAt = &v
	}
	return &cp
}
