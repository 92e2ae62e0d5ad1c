// Package billing implements the subscription lifecycle and
// payment-verification workflow that gates access to paid features:
// trial period, monthly/yearly plans, renewal, and re-subscription after
// expiry.
//
// # Architecture
//
// The package separates verification from commitment and keeps the access
// decision a pure read:
//
//   - Catalog: immutable, ordered set of purchasable plans
//   - Service: intent creation, callback verification, state transitions,
//     entitlement gate
//   - GatewayProvider: abstracts the external payment gateway (Paddle
//     implementation included; any intent-based gateway fits)
//   - CallbackVerifier: authenticates inbound payment events before any
//     state is touched
//   - SubscriptionStore: persistence with optimistic version control
//     (in-memory and Postgres implementations)
//   - AccountService: consumed interface of the external account system
//   - NonceStore: intent attempt dedup (in-memory and Redis)
//
// # State machine
//
// A subscription moves pending → active → expired, with superseded and
// cancelled as absorbing side exits and expired → active as the only
// back-edge (re-subscription). Expiry is lazy: an active subscription
// whose renewal deadline has passed reads as expired on every gate check,
// so no background scheduler is needed for correctness.
//
// # Idempotency
//
// CreateIntent is idempotent per (account, plan, nonce); VerifyPayment is
// idempotent per payment ID. Both are therefore safe to retry, which is
// what makes gateway retries and client refreshes harmless.
//
// # Quick start
//
//	catalog, err := billing.NewCatalog(ctx, billing.NewInMemSource(
//		billing.Plan{
//			ID:       "price_pro_monthly",
//			Name:     "Pro Monthly",
//			Price:    billing.Money{Amount: 49900, Currency: "INR"},
//			Interval: billing.IntervalMonthly,
//		},
//		billing.Plan{
//			ID:       "price_pro_yearly",
//			Name:     "Pro Yearly",
//			Price:    billing.Money{Amount: 499900, Currency: "INR"},
//			Interval: billing.IntervalYearly,
//		},
//	))
//
//	signer := billing.NewSigner(cfg.GatewaySecret)
//	svc := billing.NewService(catalog, accounts, store, provider, signer, nonces,
//		billing.WithLogger(logger),
//	)
//
//	// gate a protected operation
//	if !svc.Entitlement(ctx, accountID, time.Now().UTC()).Entitled {
//		// deny
//	}
package billing
