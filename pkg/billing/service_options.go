package billing

import (
	"log/slog"
	"time"
)

// ServiceOption configures a Service instance.
type ServiceOption func(*service)

// WithLogger sets the structured logger. Signature failures and replays
// are logged through it as security events.
func WithLogger(log *slog.Logger) ServiceOption {
	return func(s *service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithReceiptNotifier enables best-effort payment receipts on activation
// and renewal.
func WithReceiptNotifier(n ReceiptNotifier) ServiceOption {
	return func(s *service) {
		s.receipts = n
	}
}

// WithClock overrides the service's time source. Intended for tests that
// need deterministic renewal deadlines.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *service) {
		if now != nil {
			s.now = now
		}
	}
}
