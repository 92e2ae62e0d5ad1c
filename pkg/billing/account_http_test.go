package billing_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/billingkit/pkg/billing"
)

func TestAccountClient(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("requires base URL", func(t *testing.T) {
		t.Parallel()

		_, err := billing.NewAccountClient(billing.AccountClientConfig{})
		assert.Error(t, err)
	})

	t.Run("get account", func(t *testing.T) {
		t.Parallel()

		accountID := uuid.New()
		subID := "sub_001"
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/accounts/"+accountID.String(), r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{
				"id":                accountID,
				"email":             "owner@example.com",
				"created_at":        time.Now().UTC(),
				"trial_valid_until": time.Now().UTC().AddDate(0, 0, 14),
				"subscription_id":   subID,
			})
		}))
		t.Cleanup(server.Close)

		client, err := billing.NewAccountClient(billing.AccountClientConfig{BaseURL: server.URL})
		require.NoError(t, err)

		account, err := client.GetAccount(ctx, accountID)
		require.NoError(t, err)
		assert.Equal(t, accountID, account.ID)
		assert.Equal(t, "owner@example.com", account.Email)
		require.NotNil(t, account.SubscriptionID)
		assert.Equal(t, subID, *account.SubscriptionID)
	})

	t.Run("unknown account maps to sentinel", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		t.Cleanup(server.Close)

		client, err := billing.NewAccountClient(billing.AccountClientConfig{BaseURL: server.URL})
		require.NoError(t, err)

		_, err = client.GetAccount(ctx, uuid.New())
		assert.ErrorIs(t, err, billing.ErrAccountNotFound)
	})

	t.Run("set subscription reference", func(t *testing.T) {
		t.Parallel()

		accountID := uuid.New()
		var gotBody map[string]*string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPut, r.Method)
			assert.Equal(t, "/accounts/"+accountID.String()+"/subscription", r.URL.Path)
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
			w.WriteHeader(http.StatusNoContent)
		}))
		t.Cleanup(server.Close)

		client, err := billing.NewAccountClient(billing.AccountClientConfig{BaseURL: server.URL})
		require.NoError(t, err)

		subID := "sub_001"
		require.NoError(t, client.SetSubscriptionRef(ctx, accountID, &subID))
		require.NotNil(t, gotBody["subscription_id"])
		assert.Equal(t, subID, *gotBody["subscription_id"])

		require.NoError(t, client.SetSubscriptionRef(ctx, accountID, nil))
		assert.Nil(t, gotBody["subscription_id"])
	})
}
