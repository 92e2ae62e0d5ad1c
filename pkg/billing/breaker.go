package billing

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker/v2"
)

// BreakerConfig configures the circuit breaker guarding gateway calls.
type BreakerConfig struct {
	// MaxRequests is the number of probe requests allowed in half-open state.
	MaxRequests uint32 `env:"GATEWAY_BREAKER_MAX_REQUESTS" envDefault:"3"`

	// Interval is the cyclic period over which failure counts are reset
	// while the circuit is closed.
	Interval time.Duration `env:"GATEWAY_BREAKER_INTERVAL" envDefault:"10s"`

	// Timeout is how long the circuit stays open before probing again.
	Timeout time.Duration `env:"GATEWAY_BREAKER_TIMEOUT" envDefault:"30s"`

	// FailureThreshold is the consecutive-failure count that trips the circuit.
	FailureThreshold uint32 `env:"GATEWAY_BREAKER_FAILURES" envDefault:"5"`

	// CallTimeout bounds each individual gateway call.
	CallTimeout time.Duration `env:"GATEWAY_CALL_TIMEOUT" envDefault:"10s"`
}

// DefaultBreakerConfig returns the settings used when none are supplied.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxRequests:      3,
		Interval:         10 * time.Second,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
		CallTimeout:      10 * time.Second,
	}
}

type breakerProvider struct {
	next    GatewayProvider
	breaker *gobreaker.CircuitBreaker[*IntentRef]
	timeout time.Duration
}

// WithBreaker decorates a GatewayProvider with a circuit breaker and a
// per-call timeout. All failures, including an open circuit, surface as
// ErrGatewayUnavailable so callers see a single retryable error class.
func WithBreaker(next GatewayProvider, cfg BreakerConfig) GatewayProvider {
	settings := gobreaker.Settings{
		Name:        "payment-gateway",
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
	}

	return &breakerProvider{
		next:    next,
		breaker: gobreaker.NewCircuitBreaker[*IntentRef](settings),
		timeout: cfg.CallTimeout,
	}
}

func (p *breakerProvider) CreateIntent(ctx context.Context, req IntentRequest) (*IntentRef, error) {
	ref, err := p.breaker.Execute(func() (*IntentRef, error) {
		callCtx, cancel := context.WithTimeout(ctx, p.timeout)
		defer cancel()
		return p.next.CreateIntent(callCtx, req)
	})
	if err != nil {
		if errors.Is(err, ErrGatewayUnavailable) {
			return nil, err
		}
		return nil, errors.Join(ErrGatewayUnavailable, err)
	}
	return ref, nil
}
