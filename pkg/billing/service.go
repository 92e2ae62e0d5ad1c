package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Service is the public interface of the billing core: plan catalog
// access, intent creation, payment verification and the entitlement gate.
type Service interface {
	// ListPlans returns the purchasable plans in catalog order.
	ListPlans(ctx context.Context) []Plan

	// CreateIntent asks the gateway for a payable subscription intent and
	// commits a pending subscription once the gateway confirms. Idempotent
	// per (accountID, planID, nonce).
	CreateIntent(ctx context.Context, accountID uuid.UUID, planID, nonce string) (*IntentRef, error)

	// VerifyPayment authenticates a gateway callback and, on success,
	// applies the resulting transition exactly once per distinct payment ID.
	VerifyPayment(ctx context.Context, event PaymentEvent) (*VerifiedPayment, error)

	// GetSubscription returns a subscription by its gateway-issued ID.
	GetSubscription(ctx context.Context, id string) (*Subscription, error)

	// Cancel moves the account's billable subscription into the terminal
	// cancelled state and clears the account's subscription reference.
	Cancel(ctx context.Context, accountID uuid.UUID) error

	// Entitlement decides access from billing state and wall-clock time.
	// It never fails: absence of entitlement is a normal false.
	Entitlement(ctx context.Context, accountID uuid.UUID, now time.Time) Entitlement
}

// Entitlement is the access gate's answer for one account at one instant.
type Entitlement struct {
	Entitled bool
	RenewsAt *time.Time // set when entitlement comes from an active subscription
}

// ReceiptNotifier delivers a payment receipt to the account owner.
// Delivery is best-effort: failures are logged, never propagated into
// billing state.
type ReceiptNotifier interface {
	PaymentReceipt(ctx context.Context, email string, sub *Subscription, plan Plan) error
}

type service struct {
	catalog  *Catalog
	accounts AccountService
	store    SubscriptionStore
	provider GatewayProvider
	verifier CallbackVerifier
	nonces   NonceStore

	receipts ReceiptNotifier
	log      *slog.Logger
	now      func() time.Time

	// subLocks serializes transitions per subscription ID and accountLocks
	// serializes intent creation per account within this process;
	// cross-process writers are fenced by the store's version CAS and the
	// billable-uniqueness constraint.
	subLocks     *keyedMutex
	accountLocks *keyedMutex
}

// NewService wires the billing core. Panics on nil required dependencies
// to fail fast during initialization.
func NewService(catalog *Catalog, accounts AccountService, store SubscriptionStore, provider GatewayProvider, verifier CallbackVerifier, nonces NonceStore, opts ...ServiceOption) Service {
	if catalog == nil {
		panic("billing: Catalog is required")
	}
	if accounts == nil {
		panic("billing: AccountService is required")
	}
	if store == nil {
		panic("billing: SubscriptionStore is required")
	}
	if provider == nil {
		panic("billing: GatewayProvider is required")
	}
	if verifier == nil {
		panic("billing: CallbackVerifier is required")
	}
	if nonces == nil {
		nonces = NewMemoryNonceStore()
	}

	s := &service{
		catalog:      catalog,
		accounts:     accounts,
		store:        store,
		provider:     provider,
		verifier:     verifier,
		nonces:       nonces,
		log:          slog.New(slog.DiscardHandler),
		now:          func() time.Time { return time.Now().UTC() },
		subLocks:     newKeyedMutex(),
		accountLocks: newKeyedMutex(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) ListPlans(_ context.Context) []Plan {
	return s.catalog.List()
}

func (s *service) GetSubscription(ctx context.Context, id string) (*Subscription, error) {
	return s.store.Get(ctx, id)
}

// CreateIntent implements the initiator. No local state is committed until
// the gateway confirms intent creation, and no subscription lock is held
// while waiting on the network.
func (s *service) CreateIntent(ctx context.Context, accountID uuid.UUID, planID, nonce string) (*IntentRef, error) {
	account, err := s.accounts.GetAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	plan, err := s.catalog.Get(planID)
	if err != nil {
		return nil, err
	}

	nonceKey := ""
	if nonce != "" {
		nonceKey = NonceKey(accountID, planID, nonce)
		ref, err := s.nonces.Get(ctx, nonceKey)
		if err != nil {
			return nil, err
		}
		if ref != nil {
			// Retried attempt: return the original gateway reference
			// without creating a duplicate gateway resource.
			return ref, nil
		}
	}

	ref, err := s.provider.CreateIntent(ctx, IntentRequest{
		PlanExternalID: plan.ID,
		CustomerID:     accountID.String(),
		Email:          account.Email,
		Nonce:          nonce,
	})
	if err != nil {
		return nil, err
	}

	// The account may hold at most one billable subscription: any prior
	// pending or active row is superseded before the new pending row lands.
	// Supersede and insert run as one unit under the account lock so
	// concurrent intents for the same account serialize in-process. The
	// lock is taken only after the gateway call returns, never across
	// network I/O. Other processes are fenced by the store's billable
	// uniqueness constraint, which surfaces their wins as a version
	// conflict here and triggers another supersede round.
	unlock := s.accountLocks.Lock(accountID.String())
	defer unlock()

	now := s.now()
	sub := &Subscription{
		ID:        ref.SubscriptionID,
		AccountID: accountID,
		PlanID:    plan.ID,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	var createErr error
	for attempt := 0; attempt < 3; attempt++ {
		if err := s.supersedeBillable(ctx, accountID); err != nil {
			return nil, err
		}
		createErr = s.store.Create(ctx, sub)
		if !errors.Is(createErr, ErrVersionConflict) {
			break
		}
	}
	if errors.Is(createErr, ErrVersionConflict) {
		return nil, fmt.Errorf("%w: account %s already holds a billable subscription", ErrConflictingTransition, accountID)
	}
	if createErr != nil {
		return nil, fmt.Errorf("failed to create pending subscription: %w", createErr)
	}

	if err := s.accounts.SetSubscriptionRef(ctx, accountID, &sub.ID); err != nil {
		return nil, fmt.Errorf("failed to bind subscription to account: %w", err)
	}

	if nonceKey != "" {
		if err := s.nonces.Put(ctx, nonceKey, ref); err != nil {
			// The intent exists either way; losing the nonce record only
			// weakens retry dedup, so log instead of failing the call.
			s.log.WarnContext(ctx, "failed to record intent nonce",
				"account_id", accountID, "plan_id", planID, "error", err)
		}
	}

	s.log.InfoContext(ctx, "subscription intent created",
		"account_id", accountID, "plan_id", planID, "subscription_id", sub.ID)

	return ref, nil
}

// VerifyPayment implements the callback verifier and the verified-payment
// transitions of the state manager. Verification is a hard boundary:
// signature mismatches are never retried and never touch the store.
func (s *service) VerifyPayment(ctx context.Context, event PaymentEvent) (*VerifiedPayment, error) {
	if err := s.verifier.VerifyCallback(ctx, event); err != nil {
		s.log.WarnContext(ctx, "payment callback rejected",
			"subscription_id", event.SubscriptionID, "payment_id", event.PaymentID, "error", err)
		return nil, err
	}

	unlock := s.lockSubscription(event.SubscriptionID)
	defer unlock()

	// Bounded retry against cross-process version races; the store is the
	// serialization point when several instances share it.
	for attempt := 0; attempt < 3; attempt++ {
		verified, err := s.applyVerifiedPayment(ctx, event)
		if errors.Is(err, ErrVersionConflict) {
			continue
		}
		return verified, err
	}
	return nil, ErrConflictingTransition
}

func (s *service) applyVerifiedPayment(ctx context.Context, event PaymentEvent) (*VerifiedPayment, error) {
	sub, err := s.store.Get(ctx, event.SubscriptionID)
	if err != nil {
		return nil, err
	}

	// Idempotency: a gateway retry of an already-applied payment returns
	// the previous result without re-applying side effects.
	if sub.HasAppliedPayment(event.PaymentID) {
		return &VerifiedPayment{
			SubscriptionID: sub.ID,
			PaymentID:      event.PaymentID,
			VerifiedAt:     sub.UpdatedAt,
		}, nil
	}

	if sub.Status.Terminal() {
		// A valid signature against a superseded or cancelled agreement is
		// a stale confirmation; it must not resurrect the subscription.
		s.log.WarnContext(ctx, "payment event replayed against terminal subscription",
			"subscription_id", sub.ID, "payment_id", event.PaymentID, "status", sub.Status)
		return nil, ErrReplayed
	}

	now := s.now()
	effective := sub.StatusAt(now)
	if !CanTransition(effective, StatusActive) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrConflictingTransition, effective, StatusActive)
	}

	plan, err := s.catalog.Get(sub.PlanID)
	if err != nil {
		return nil, err
	}

	// A renewal extends the deadline from whichever is later, so early
	// renewals keep the time already paid for and late ones do not grant
	// retroactive access.
	base := now
	if effective == StatusActive && sub.RenewsAt != nil && sub.RenewsAt.After(now) {
		base = *sub.RenewsAt
	}
	renewsAt := plan.NextRenewal(base)
	paymentID := event.PaymentID

	sub.Status = StatusActive
	sub.LastVerifiedPaymentID = &paymentID
	sub.RenewsAt = &renewsAt
	sub.UpdatedAt = now

	if err := s.store.Update(ctx, sub); err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "payment verified",
		"subscription_id", sub.ID, "payment_id", paymentID, "renews_at", renewsAt)

	s.sendReceipt(ctx, sub, plan)

	return &VerifiedPayment{
		SubscriptionID: sub.ID,
		PaymentID:      paymentID,
		VerifiedAt:     now,
	}, nil
}

// Cancel moves the account's billable subscription into the terminal
// cancelled state.
func (s *service) Cancel(ctx context.Context, accountID uuid.UUID) error {
	sub, err := s.store.GetBillableByAccount(ctx, accountID)
	if err != nil {
		return err
	}

	unlock := s.lockSubscription(sub.ID)
	defer unlock()

	for attempt := 0; attempt < 3; attempt++ {
		sub, err = s.store.Get(ctx, sub.ID)
		if err != nil {
			return err
		}
		if sub.Status == StatusCancelled {
			return nil
		}
		if !CanTransition(sub.Status, StatusCancelled) {
			return fmt.Errorf("%w: %s -> %s", ErrConflictingTransition, sub.Status, StatusCancelled)
		}

		sub.Status = StatusCancelled
		sub.UpdatedAt = s.now()
		err = s.store.Update(ctx, sub)
		if errors.Is(err, ErrVersionConflict) {
			continue
		}
		if err != nil {
			return err
		}

		if err := s.accounts.SetSubscriptionRef(ctx, accountID, nil); err != nil {
			return fmt.Errorf("failed to clear subscription reference: %w", err)
		}

		s.log.InfoContext(ctx, "subscription cancelled",
			"account_id", accountID, "subscription_id", sub.ID)
		return nil
	}
	return ErrConflictingTransition
}

// Entitlement implements the access gate: a pure read that recomputes
// against wall-clock time on every call, so a lapsed renewal deadline is
// reflected immediately without any explicit transition.
func (s *service) Entitlement(ctx context.Context, accountID uuid.UUID, now time.Time) Entitlement {
	account, err := s.accounts.GetAccount(ctx, accountID)
	if err != nil {
		// Fail closed: unknown accounts are simply not entitled.
		return Entitlement{}
	}

	if now.Before(account.TrialValidUntil) {
		return Entitlement{Entitled: true}
	}

	if account.SubscriptionID == nil {
		return Entitlement{}
	}

	sub, err := s.store.Get(ctx, *account.SubscriptionID)
	if err != nil {
		return Entitlement{}
	}

	if sub.StatusAt(now) == StatusActive && sub.RenewsAt != nil && now.Before(*sub.RenewsAt) {
		renews := *sub.RenewsAt
		return Entitlement{Entitled: true, RenewsAt: &renews}
	}
	return Entitlement{}
}

// supersedeBillable marks the account's current billable subscription as
// superseded, if one exists.
func (s *service) supersedeBillable(ctx context.Context, accountID uuid.UUID) error {
	for attempt := 0; attempt < 3; attempt++ {
		prior, err := s.store.GetBillableByAccount(ctx, accountID)
		if errors.Is(err, ErrUnknownSubscription) {
			return nil
		}
		if err != nil {
			return err
		}

		unlock := s.lockSubscription(prior.ID)
		prior.Status = StatusSuperseded
		prior.UpdatedAt = s.now()
		err = s.store.Update(ctx, prior)
		unlock()

		if errors.Is(err, ErrVersionConflict) {
			continue
		}
		if err != nil {
			return err
		}

		s.log.InfoContext(ctx, "subscription superseded",
			"account_id", accountID, "subscription_id", prior.ID)
		return nil
	}
	return ErrConflictingTransition
}

func (s *service) sendReceipt(ctx context.Context, sub *Subscription, plan Plan) {
	if s.receipts == nil {
		return
	}

	account, err := s.accounts.GetAccount(ctx, sub.AccountID)
	if err != nil || account.Email == "" {
		return
	}
	if err := s.receipts.PaymentReceipt(ctx, account.Email, sub, plan); err != nil {
		s.log.WarnContext(ctx, "failed to send payment receipt",
			"account_id", sub.AccountID, "subscription_id", sub.ID, "error", err)
	}
}

func (s *service) lockSubscription(id string) func() {
	return s.subLocks.Lock(id)
}
