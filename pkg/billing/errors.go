package billing

import "errors"

var (
	ErrPlanNotFound             = errors.New("billing plan not found")
	ErrInvalidPlanConfiguration = errors.New("invalid billing plan configuration")
	ErrFailedToLoadPlans        = errors.New("failed to load billing plans")

	ErrAccountNotFound = errors.New("billing account not found")

	ErrUnknownSubscription = errors.New("unknown subscription")
	ErrInvalidSignature    = errors.New("payment signature verification failed")
	ErrReplayed            = errors.New("payment event replayed against a terminal subscription")

	// ErrGatewayUnavailable marks transient gateway failures. Callers may
	// retry with backoff; verification failures never map to it.
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")

	// ErrConflictingTransition indicates an ordering or logic bug: the
	// requested transition would move a subscription backwards. It is
	// surfaced, never swallowed.
	ErrConflictingTransition = errors.New("conflicting subscription transition")

	// ErrVersionConflict is returned by stores when an optimistic update
	// loses the race. The service re-reads and re-decides; it never leaks
	// to API clients.
	ErrVersionConflict = errors.New("subscription version conflict")

	ErrNonceStoreFailure = errors.New("intent nonce store failure")
)
