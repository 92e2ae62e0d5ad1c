package billing

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Signer computes and verifies payment callback signatures using the
// gateway's shared secret. The signature covers the subscription ID and
// payment ID joined with "|", the convention intent-based gateways use to
// bind a payment confirmation to its order:
//
//	signature = hex(HMAC-SHA256(secret, subscriptionID + "|" + paymentID))
//
// Signer implements CallbackVerifier.
type Signer struct {
	secret []byte
}

// NewSigner returns a Signer for the given shared secret.
// Panics on an empty secret so a misconfigured deployment fails at startup
// instead of rejecting every callback at runtime.
func NewSigner(secret string) *Signer {
	if secret == "" {
		panic("billing: callback signing secret is required")
	}
	return &Signer{secret: []byte(secret)}
}

// Sign computes the signature for a (subscriptionID, paymentID) pair.
// Used by tests and by gateway fakes; production signatures come from the
// gateway itself.
func (s *Signer) Sign(subscriptionID, paymentID string) string {
	h := hmac.New(sha256.New, s.secret)
	fmt.Fprintf(h, "%s|%s", subscriptionID, paymentID)
	return hex.EncodeToString(h.Sum(nil))
}

// VerifyCallback recomputes the expected signature and compares it in
// constant time. Any mismatch is ErrInvalidSignature: a hard boundary,
// never retried, because tampering and replay are not transient.
func (s *Signer) VerifyCallback(_ context.Context, event PaymentEvent) error {
	if event.Signature == "" {
		return ErrInvalidSignature
	}

	expected := s.Sign(event.SubscriptionID, event.PaymentID)
	if !hmac.Equal([]byte(expected), []byte(event.Signature)) {
		return ErrInvalidSignature
	}
	return nil
}
