package billing

import (
	"time"

	"github.com/google/uuid"
)

// Status represents the current state of a subscription.
type Status string

const (
	StatusPending    Status = "pending"
	StatusActive     Status = "active"
	StatusExpired    Status = "expired"
	StatusSuperseded Status = "superseded"
	StatusCancelled  Status = "cancelled"
)

// Terminal reports whether the status is absorbing: a subscription in a
// terminal state can never become billable again.
func (s Status) Terminal() bool {
	return s == StatusSuperseded || s == StatusCancelled
}

// Subscription represents one gateway-side billing agreement tied to
// exactly one account and one plan. The ID is issued by the gateway and
// globally unique.
type Subscription struct {
	ID        string
	AccountID uuid.UUID
	PlanID    string
	Status    Status

	// LastVerifiedPaymentID is the last payment event applied to this
	// subscription; it is the idempotency marker for callback replays.
	LastVerifiedPaymentID *string

	// RenewsAt is set on every verified payment: one plan interval past
	// the payment. Nil while the subscription is pending.
	RenewsAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time

	// Version increases by one on every committed update and backs the
	// stores' optimistic concurrency control.
	Version int64
}

// StatusAt returns the effective status at the given instant. An active
// subscription whose renewal deadline has passed reads as expired without
// any explicit transition; expiry is evaluated lazily at read time.
func (s *Subscription) StatusAt(now time.Time) Status {
	if s.Status == StatusActive && s.RenewsAt != nil && !now.Before(*s.RenewsAt) {
		return StatusExpired
	}
	return s.Status
}

// Billable reports whether the subscription occupies the account's single
// billable slot: pending or active (even if lazily expired, the row still
// holds the slot until superseded or renewed).
func (s *Subscription) Billable() bool {
	return s.Status == StatusPending || s.Status == StatusActive
}

// HasAppliedPayment reports whether the given payment ID was already
// applied to this subscription.
func (s *Subscription) HasAppliedPayment(paymentID string) bool {
	return s.LastVerifiedPaymentID != nil && *s.LastVerifiedPaymentID == paymentID
}

// PaymentEvent is an inbound gateway-signed assertion that a payment
// completed. It is a message, not an entity: consumed exactly once per
// distinct PaymentID and never persisted beyond LastVerifiedPaymentID.
type PaymentEvent struct {
	SubscriptionID string
	PaymentID      string
	Signature      string
	RawPayload     []byte
}

// VerifiedPayment is the verifier's output: a payment event whose
// signature checked out against the shared secret.
type VerifiedPayment struct {
	SubscriptionID string
	PaymentID      string
	VerifiedAt     time.Time
}
