package billing

import (
	"context"
	"time"
)

// GatewayProvider defines the minimal interface for payment gateway
// integrations. The gateway owns the payable intent and issues the
// subscription ID; the billing core never talks to card networks itself.
// Implementations should use official gateway SDKs and keep provider
// quirks internal.
type GatewayProvider interface {
	// CreateIntent creates a payable subscription intent on the gateway
	// side. The call is synchronous, must honor ctx deadlines, and must
	// be safe to retry: the request nonce lets implementations dedupe.
	CreateIntent(ctx context.Context, req IntentRequest) (*IntentRef, error)
}

// CallbackVerifier checks the authenticity of an inbound payment event.
// It performs no state mutation; verification is separated from
// commitment so a forged callback can never touch the store.
type CallbackVerifier interface {
	// VerifyCallback returns nil when the event's signature is authentic,
	// ErrInvalidSignature otherwise. Must compare in constant time.
	VerifyCallback(ctx context.Context, event PaymentEvent) error
}

// IntentRequest contains the data needed to create a gateway intent.
type IntentRequest struct {
	PlanExternalID string // gateway's price/plan identifier
	CustomerID     string // internal account ID
	Email          string // optional billing email
	Nonce          string // caller-supplied attempt nonce for dedup
}

// IntentRef is the gateway's handle for a payable intent. The client
// completes payment against it out-of-process.
type IntentRef struct {
	SubscriptionID string    // gateway-issued subscription ID
	CheckoutURL    string    // hosted checkout URL, if the gateway has one
	ExpiresAt      time.Time // when the intent stops being payable
}
