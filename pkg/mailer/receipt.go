package mailer

import (
	"context"
	"fmt"

	"github.com/dmitrymomot/billingkit/pkg/billing"
)

type receiptNotifier struct {
	sender EmailSender
}

// NewReceiptNotifier adapts an EmailSender into the billing service's
// ReceiptNotifier. Receipts are informational; the billing core treats
// delivery as best-effort.
func NewReceiptNotifier(sender EmailSender) billing.ReceiptNotifier {
	if sender == nil {
		panic("mailer: EmailSender is required")
	}
	return &receiptNotifier{sender: sender}
}

func (n *receiptNotifier) PaymentReceipt(ctx context.Context, email string, sub *billing.Subscription, plan billing.Plan) error {
	body := fmt.Sprintf(
		`<p>Your payment for the <strong>%s</strong> plan was received.</p>
<p>Amount: %d.%02d %s</p>
<p>Your subscription renews on %s.</p>`,
		plan.Name,
		plan.Price.Amount/100, plan.Price.Amount%100, plan.Price.Currency,
		sub.RenewsAt.Format("January 2, 2006"),
	)

	return n.sender.SendEmail(ctx, SendEmailParams{
		SendTo:   email,
		Subject:  fmt.Sprintf("Payment received: %s plan", plan.Name),
		BodyHTML: body,
		Tag:      "payment-receipt",
	})
}
