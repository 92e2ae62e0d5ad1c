// Package billing exposes the billing core over HTTP: plan listing,
// intent creation, payment verification and the entitlement check.
package billing

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/billingkit/pkg/billing"
)

// Router mounts the billing endpoints:
//
//	GET  /plans                  list purchasable plans
//	POST /subscriptions/intent   create a gateway intent for a plan
//	POST /subscriptions/verify   verify a gateway payment callback
//	POST /subscriptions/cancel   cancel the current subscription
//	GET  /entitlement            check access for the calling account
//
// The calling account is identified by the X-Account-ID header; request
// authentication happens upstream.
func Router(svc billing.Service, log *slog.Logger) chi.Router {
	h := &handlers{svc: svc, log: log}
	if h.log == nil {
		h.log = slog.New(slog.DiscardHandler)
	}

	r := chi.NewRouter()
	r.Get("/plans", h.listPlans)
	r.Route("/subscriptions", func(r chi.Router) {
		r.Post("/intent", h.createIntent)
		r.Post("/verify", h.verifyPayment)
		r.Post("/cancel", h.cancel)
	})
	r.Get("/entitlement", h.entitlement)
	return r
}

// Handle returns the router as a plain http.Handler for mounting.
func Handle(svc billing.Service, log *slog.Logger) http.Handler {
	return Router(svc, log)
}
