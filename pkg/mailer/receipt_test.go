package mailer_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/billingkit/pkg/billing"
	"github.com/dmitrymomot/billingkit/pkg/mailer"
)

type captureSender struct {
	sent []mailer.SendEmailParams
}

func (s *captureSender) SendEmail(_ context.Context, params mailer.SendEmailParams) error {
	s.sent = append(s.sent, params)
	return nil
}

func TestReceiptNotifier(t *testing.T) {
	t.Parallel()

	sender := &captureSender{}
	notifier := mailer.NewReceiptNotifier(sender)

	renewsAt := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	sub := &billing.Subscription{
		ID:        "sub_001",
		AccountID: uuid.New(),
		PlanID:    "price_pro_yearly",
		Status:    billing.StatusActive,
		RenewsAt:  &renewsAt,
	}
	plan := billing.Plan{
		ID:       "price_pro_yearly",
		Name:     "Pro Yearly",
		Price:    billing.Money{Amount: 499900, Currency: "INR"},
		Interval: billing.IntervalYearly,
	}

	require.NoError(t, notifier.PaymentReceipt(context.Background(), "owner@example.com", sub, plan))

	require.Len(t, sender.sent, 1)
	msg := sender.sent[0]
	assert.Equal(t, "owner@example.com", msg.SendTo)
	assert.Equal(t, "Payment received: Pro Yearly plan", msg.Subject)
	assert.Contains(t, msg.BodyHTML, "Pro Yearly")
	assert.Contains(t, msg.BodyHTML, "4999.00 INR")
	assert.Contains(t, msg.BodyHTML, "June 1, 2026")
	assert.Equal(t, "payment-receipt", msg.Tag)
}

func TestReceiptNotifierRequiresSender(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { mailer.NewReceiptNotifier(nil) })
}
