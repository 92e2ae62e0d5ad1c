package billing

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/billingkit/core"
	"github.com/dmitrymomot/billingkit/pkg/billing"
)

// accountIDHeader carries the authenticated account identity, set by the
// upstream auth layer.
const accountIDHeader = "X-Account-ID"

type handlers struct {
	svc billing.Service
	log *slog.Logger
}

type planResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	PriceAmount int64  `json:"price_amount"`
	Currency    string `json:"currency"`
	Interval    string `json:"interval"`
}

func (h *handlers) listPlans(w http.ResponseWriter, r *http.Request) {
	plans := h.svc.ListPlans(r.Context())

	resp := make([]planResponse, 0, len(plans))
	for _, p := range plans {
		resp = append(resp, planResponse{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			PriceAmount: p.Price.Amount,
			Currency:    p.Price.Currency,
			Interval:    string(p.Interval),
		})
	}
	core.JSON(w, http.StatusOK, resp)
}

type createIntentRequest struct {
	PlanID string `json:"plan_id"`
	Nonce  string `json:"nonce"`
}

type createIntentResponse struct {
	SubscriptionID string `json:"subscription_id"`
	GatewayRef     string `json:"gateway_ref"`
	CheckoutURL    string `json:"checkout_url,omitempty"`
}

func (h *handlers) createIntent(w http.ResponseWriter, r *http.Request) {
	accountID, ok := h.accountID(w, r)
	if !ok {
		return
	}

	var req createIntentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PlanID == "" {
		core.Error(w, core.ErrBadRequest.WithMessage("plan_id is required"))
		return
	}

	ref, err := h.svc.CreateIntent(r.Context(), accountID, req.PlanID, req.Nonce)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	core.JSON(w, http.StatusCreated, createIntentResponse{
		SubscriptionID: ref.SubscriptionID,
		GatewayRef:     ref.SubscriptionID,
		CheckoutURL:    ref.CheckoutURL,
	})
}

type verifyRequest struct {
	SubscriptionID string `json:"subscription_id"`
	PaymentID      string `json:"payment_id"`
	Signature      string `json:"signature"`
	Payload        string `json:"payload,omitempty"`
}

type verifyResponse struct {
	State    string     `json:"state"`
	RenewsAt *time.Time `json:"renews_at,omitempty"`
}

func (h *handlers) verifyPayment(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil ||
		req.SubscriptionID == "" || req.PaymentID == "" {
		core.Error(w, core.ErrBadRequest.WithMessage("subscription_id and payment_id are required"))
		return
	}

	_, err := h.svc.VerifyPayment(r.Context(), billing.PaymentEvent{
		SubscriptionID: req.SubscriptionID,
		PaymentID:      req.PaymentID,
		Signature:      req.Signature,
		RawPayload:     []byte(req.Payload),
	})
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	// Re-read so the response reflects the committed state, including an
	// idempotent replay of an earlier payment.
	sub, err := h.svc.GetSubscription(r.Context(), req.SubscriptionID)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	core.JSON(w, http.StatusOK, verifyResponse{
		State:    string(sub.StatusAt(time.Now().UTC())),
		RenewsAt: sub.RenewsAt,
	})
}

func (h *handlers) cancel(w http.ResponseWriter, r *http.Request) {
	accountID, ok := h.accountID(w, r)
	if !ok {
		return
	}

	if err := h.svc.Cancel(r.Context(), accountID); err != nil {
		h.renderError(w, r, err)
		return
	}
	core.JSON(w, http.StatusOK, map[string]string{"state": string(billing.StatusCancelled)})
}

type entitlementResponse struct {
	Entitled bool       `json:"entitled"`
	RenewsAt *time.Time `json:"renews_at,omitempty"`
}

func (h *handlers) entitlement(w http.ResponseWriter, r *http.Request) {
	accountID, ok := h.accountID(w, r)
	if !ok {
		return
	}

	ent := h.svc.Entitlement(r.Context(), accountID, time.Now().UTC())
	core.JSON(w, http.StatusOK, entitlementResponse{
		Entitled: ent.Entitled,
		RenewsAt: ent.RenewsAt,
	})
}

func (h *handlers) accountID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw := r.Header.Get(accountIDHeader)
	if raw == "" {
		core.Error(w, core.ErrUnauthorized.WithMessage("missing account identity"))
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		core.Error(w, core.ErrUnauthorized.WithMessage("invalid account identity"))
		return uuid.Nil, false
	}
	return id, true
}

// renderError maps the billing error taxonomy onto HTTP statuses.
// Transient gateway failures invite a retry; verification failures are
// terminal and say so.
func (h *handlers) renderError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, billing.ErrGatewayUnavailable):
		core.Error(w, core.ErrServiceUnavailable.WithMessage("payment could not be confirmed, please retry"))
	case errors.Is(err, billing.ErrInvalidSignature), errors.Is(err, billing.ErrReplayed):
		core.Error(w, core.ErrUnprocessableEntity.WithMessage("payment verification failed"))
	case errors.Is(err, billing.ErrUnknownSubscription),
		errors.Is(err, billing.ErrPlanNotFound),
		errors.Is(err, billing.ErrAccountNotFound):
		core.Error(w, core.ErrNotFound)
	case errors.Is(err, billing.ErrConflictingTransition):
		h.log.ErrorContext(r.Context(), "conflicting subscription transition", "error", err)
		core.Error(w, core.ErrConflict)
	default:
		h.log.ErrorContext(r.Context(), "billing request failed", "error", err)
		core.Error(w, core.ErrInternalServerError)
	}
}
