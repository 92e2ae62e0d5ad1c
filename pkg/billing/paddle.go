package billing

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	paddle "github.com/PaddleHQ/paddle-go-sdk/v4"
)

// PaddleConfig holds configuration for the Paddle gateway provider.
type PaddleConfig struct {
	APIKey        string `env:"PADDLE_API_KEY,required"`
	WebhookSecret string `env:"PADDLE_WEBHOOK_SECRET,required"`
	Environment   string `env:"PADDLE_ENVIRONMENT" envDefault:"production"`
}

// PaddleProvider implements GatewayProvider and CallbackVerifier on top of
// the Paddle Billing API. Intents are Paddle transactions; callback
// authenticity is checked with Paddle's own webhook signature scheme
// applied to the raw payload.
type PaddleProvider struct {
	client   *paddle.SDK
	verifier *paddle.WebhookVerifier
}

// NewPaddleProvider creates a Paddle-backed gateway provider.
func NewPaddleProvider(cfg PaddleConfig) (*PaddleProvider, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("paddle API key is required")
	}
	if cfg.WebhookSecret == "" {
		return nil, errors.New("paddle webhook secret is required")
	}

	var client *paddle.SDK
	var err error
	switch strings.ToLower(cfg.Environment) {
	case "sandbox":
		client, err = paddle.NewSandbox(cfg.APIKey)
	case "production", "":
		client, err = paddle.New(cfg.APIKey)
	default:
		return nil, fmt.Errorf("invalid paddle environment: %s", cfg.Environment)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create paddle client: %w", err)
	}

	return &PaddleProvider{
		client:   client,
		verifier: paddle.NewWebhookVerifier(cfg.WebhookSecret),
	}, nil
}

// CreateIntent creates a Paddle transaction for the plan's price and
// returns its hosted checkout as the payable intent. The attempt nonce
// rides along in custom data so retried intents stay traceable to one
// logical attempt on the gateway side.
func (p *PaddleProvider) CreateIntent(ctx context.Context, req IntentRequest) (*IntentRef, error) {
	if req.PlanExternalID == "" {
		return nil, errors.New("plan external ID is required")
	}
	if req.CustomerID == "" {
		return nil, errors.New("customer ID is required")
	}

	item := paddle.NewCreateTransactionItemsTransactionItemFromCatalog(&paddle.TransactionItemFromCatalog{
		PriceID:  req.PlanExternalID,
		Quantity: 1,
	})

	txReq := &paddle.CreateTransactionRequest{
		Items: []paddle.CreateTransactionItems{*item},
		CustomData: paddle.CustomData{
			"account_id":    req.CustomerID,
			"attempt_nonce": req.Nonce,
		},
	}
	if req.Email != "" {
		txReq.CustomData["email"] = req.Email
	}

	tx, err := p.client.TransactionsClient.CreateTransaction(ctx, txReq)
	if err != nil {
		return nil, errors.Join(ErrGatewayUnavailable, err)
	}

	var checkoutURL string
	if tx.Checkout != nil && tx.Checkout.URL != nil {
		checkoutURL = *tx.Checkout.URL
	}

	return &IntentRef{
		SubscriptionID: tx.ID,
		CheckoutURL:    checkoutURL,
		// Paddle checkout links expire after 24 hours.
		ExpiresAt: time.Now().Add(24 * time.Hour).UTC(),
	}, nil
}

// VerifyCallback validates the event's raw payload against Paddle's
// webhook signature header. The SDK performs the constant-time HMAC
// comparison internally.
func (p *PaddleProvider) VerifyCallback(ctx context.Context, event PaymentEvent) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "/webhook", bytes.NewReader(event.RawPayload))
	if err != nil {
		return errors.Join(ErrInvalidSignature, err)
	}
	req.Header.Set("Paddle-Signature", event.Signature)

	valid, err := p.verifier.Verify(req)
	if err != nil {
		return errors.Join(ErrInvalidSignature, err)
	}
	if !valid {
		return ErrInvalidSignature
	}
	return nil
}
