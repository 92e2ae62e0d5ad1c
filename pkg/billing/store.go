package billing

import (
	"context"

	"github.com/google/uuid"
)

// SubscriptionStore defines subscription persistence. Subscriptions are
// keyed by the gateway-issued ID; each account holds at most one billable
// row at a time (enforced by the service, observable via GetBillableByAccount).
type SubscriptionStore interface {
	// Get retrieves a subscription by its gateway-issued ID.
	// Returns ErrUnknownSubscription if no such row exists.
	Get(ctx context.Context, id string) (*Subscription, error)

	// GetBillableByAccount returns the account's current pending or
	// active subscription, or ErrUnknownSubscription when the account
	// holds none.
	GetBillableByAccount(ctx context.Context, accountID uuid.UUID) (*Subscription, error)

	// Create inserts a new subscription at version 1.
	Create(ctx context.Context, sub *Subscription) error

	// Update commits a modified subscription if and only if the stored
	// version still equals sub.Version; on success the stored version and
	// sub.Version are incremented. A lost race returns ErrVersionConflict
	// and leaves the store unchanged.
	Update(ctx context.Context, sub *Subscription) error
}
