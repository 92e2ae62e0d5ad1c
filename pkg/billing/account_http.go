package billing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
)

// AccountClientConfig configures the HTTP client for the account service.
type AccountClientConfig struct {
	BaseURL string        `env:"ACCOUNT_SERVICE_URL,required"`
	Timeout time.Duration `env:"ACCOUNT_SERVICE_TIMEOUT" envDefault:"5s"`
}

type accountClient struct {
	baseURL string
	http    *http.Client
}

// NewAccountClient returns an AccountService talking to the account
// system over HTTP. The account service owns user, trial and subscription
// reference records; this client only reads the snapshot billing needs
// and writes the subscription reference back.
func NewAccountClient(cfg AccountClientConfig) (AccountService, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("account service base URL is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid account service base URL: %w", err)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &accountClient{
		baseURL: cfg.BaseURL,
		http:    &http.Client{Timeout: timeout},
	}, nil
}

type accountPayload struct {
	ID              uuid.UUID `json:"id"`
	Email           string    `json:"email"`
	CreatedAt       time.Time `json:"created_at"`
	TrialValidUntil time.Time `json:"trial_valid_until"`
	SubscriptionID  *string   `json:"subscription_id"`
}

func (c *accountClient) GetAccount(ctx context.Context, id uuid.UUID) (*Account, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/accounts/%s", c.baseURL, id), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("account service request failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, ErrAccountNotFound
	default:
		return nil, fmt.Errorf("account service returned status %d", resp.StatusCode)
	}

	var payload accountPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode account response: %w", err)
	}

	return &Account{
		ID:              payload.ID,
		Email:           payload.Email,
		CreatedAt:       payload.CreatedAt,
		TrialValidUntil: payload.TrialValidUntil,
		SubscriptionID:  payload.SubscriptionID,
	}, nil
}

func (c *accountClient) SetSubscriptionRef(ctx context.Context, accountID uuid.UUID, subscriptionID *string) error {
	body, err := json.Marshal(map[string]*string{"subscription_id": subscriptionID})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut,
		fmt.Sprintf("%s/accounts/%s/subscription", c.baseURL, accountID), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("account service request failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent:
		return nil
	case http.StatusNotFound:
		return ErrAccountNotFound
	default:
		return fmt.Errorf("account service returned status %d", resp.StatusCode)
	}
}
