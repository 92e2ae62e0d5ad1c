package billing

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Account identifies a user/tenant as seen by the billing core. The
// record itself is owned by the external account service; this type is a
// read snapshot of the fields billing decisions depend on.
type Account struct {
	ID        uuid.UUID
	Email     string
	CreatedAt time.Time

	// TrialValidUntil is set once at account creation and never extended.
	TrialValidUntil time.Time

	// SubscriptionID references the account's current subscription, nil
	// when the account never subscribed. Set and cleared only through
	// SetSubscriptionRef.
	SubscriptionID *string
}

// AccountService is the consumed interface of the external account
// service. Implementations must return ErrAccountNotFound for unknown IDs.
type AccountService interface {
	GetAccount(ctx context.Context, id uuid.UUID) (*Account, error)
	SetSubscriptionRef(ctx context.Context, accountID uuid.UUID, subscriptionID *string) error
}

type inMemAccounts struct {
	mu       sync.RWMutex
	accounts map[uuid.UUID]Account
}

// NewInMemAccountService returns an AccountService backed by memory.
// Intended for tests and local development; production deployments point
// the service at the real account system.
func NewInMemAccountService(accounts ...Account) AccountService {
	m := make(map[uuid.UUID]Account, len(accounts))
	for _, a := range accounts {
		m[a.ID] = a
	}
	return &inMemAccounts{accounts: m}
}

func (s *inMemAccounts) GetAccount(_ context.Context, id uuid.UUID) (*Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.accounts[id]
	if !ok {
		return nil, ErrAccountNotFound
	}
	// Copy out so callers cannot mutate the stored record.
	cp := a
	if a.SubscriptionID != nil {
		sid := *a.SubscriptionID
		cp.SubscriptionID = &sid
	}
	return &cp, nil
}

func (s *inMemAccounts) SetSubscriptionRef(_ context.Context, accountID uuid.UUID, subscriptionID *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[accountID]
	if !ok {
		return ErrAccountNotFound
	}
	if subscriptionID == nil {
		a.SubscriptionID = nil
	} else {
		sid := *subscriptionID
		a.SubscriptionID = &sid
	}
	s.accounts[accountID] = a
	return nil
}
