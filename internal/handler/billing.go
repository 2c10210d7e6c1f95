// Package handler contains the HTTP API surface.
//
// This file implements billing self-service handlers backed by Stripe.
// Checkout only starts a payment flow; the tier changes when the
// webhook confirms the payment, never here.
//
// Routes handled:
//   - POST /api/billing/checkout -> CreateCheckout
//   - POST /api/billing/portal   -> OpenPortal
//   - POST /api/billing/cancel   -> CancelSubscription
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/elijahtye/Tonr/internal/auth"
	"github.com/elijahtye/Tonr/internal/billing"
	"github.com/elijahtye/Tonr/internal/domain"
	"github.com/elijahtye/Tonr/internal/service"
)

// BillingHandler handles billing self-service HTTP requests.
type BillingHandler struct {
	billing     billing.Service
	userService service.UserService
	baseURL     string
	prices      billing.PriceConfig
	logger      *slog.Logger
}

// NewBillingHandler creates a new BillingHandler.
// billingService may be nil when Stripe is not configured (development mode).
func NewBillingHandler(billingService billing.Service, userService service.UserService, baseURL string, prices billing.PriceConfig, logger *slog.Logger) *BillingHandler {
	return &BillingHandler{
		billing:     billingService,
		userService: userService,
		baseURL:     baseURL,
		prices:      prices,
		logger:      logger,
	}
}

// RegisterRoutes registers billing routes on the provided mux.
func (h *BillingHandler) RegisterRoutes(mux *http.ServeMux, requireUser func(http.Handler) http.Handler) {
	mux.Handle("POST /api/billing/checkout", requireUser(http.HandlerFunc(h.CreateCheckout)))
	mux.Handle("POST /api/billing/portal", requireUser(http.HandlerFunc(h.OpenPortal)))
	mux.Handle("POST /api/billing/cancel", requireUser(http.HandlerFunc(h.CancelSubscription)))
}

// CreateCheckout starts a Stripe Checkout session for the pro plan and
// returns the URL the client should redirect to.
func (h *BillingHandler) CreateCheckout(w http.ResponseWriter, r *http.Request) {
	const op = "billing.create_checkout"

	if h.billing == nil {
		ErrorResponse(w, r, h.logger, domain.Internal(nil, op, "Billing is not configured"))
		return
	}

	user := auth.GetUser(r.Context())

	var req struct {
		Interval string `json:"interval"` // "monthly" or "yearly"
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ErrorResponse(w, r, h.logger, domain.Invalid(op, "Invalid request body"))
		return
	}

	var priceID string
	switch req.Interval {
	case "monthly", "":
		priceID = h.prices.ProMonthlyPriceID
	case "yearly":
		priceID = h.prices.ProYearlyPriceID
	default:
		ErrorResponse(w, r, h.logger, domain.Invalid(op, "Interval must be monthly or yearly"))
		return
	}
	if priceID == "" || !h.billing.IsProPrice(priceID) {
		ErrorResponse(w, r, h.logger, domain.Internal(nil, op, "Billing plan is not configured"))
		return
	}

	// Reuse the existing Stripe customer, or create one on first checkout.
	customerID := user.StripeCustomerID
	if customerID == "" {
		created, err := h.billing.CreateCustomer(user.Email, user.Name)
		if err != nil {
			ErrorResponse(w, r, h.logger, domain.Internal(err, op, "Failed to start checkout"))
			return
		}
		customerID = created
		if err := h.userService.SetStripeCustomer(r.Context(), user.ID, customerID); err != nil {
			ErrorResponse(w, r, h.logger, err)
			return
		}
	}

	checkoutURL, err := h.billing.CreateCheckoutSession(
		customerID,
		priceID,
		user.ID.String(),
		h.baseURL+"/billing/success?session_id={CHECKOUT_SESSION_ID}",
		h.baseURL+"/billing/canceled",
	)
	if err != nil {
		ErrorResponse(w, r, h.logger, domain.Internal(err, op, "Failed to start checkout"))
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"url": checkoutURL})
}

// OpenPortal creates a Stripe Customer Portal session for the user.
func (h *BillingHandler) OpenPortal(w http.ResponseWriter, r *http.Request) {
	const op = "billing.open_portal"

	if h.billing == nil {
		ErrorResponse(w, r, h.logger, domain.Internal(nil, op, "Billing is not configured"))
		return
	}

	user := auth.GetUser(r.Context())
	if user.StripeCustomerID == "" {
		ErrorResponse(w, r, h.logger, domain.Invalid(op, "No billing account yet"))
		return
	}

	portalURL, err := h.billing.CreatePortalSession(user.StripeCustomerID, h.baseURL+"/settings")
	if err != nil {
		ErrorResponse(w, r, h.logger, domain.Internal(err, op, "Failed to open billing portal"))
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"url": portalURL})
}

// CancelSubscription asks Stripe to cancel the user's subscription at
// period end. The user's tier does not change here; it changes when the
// customer.subscription.deleted webhook arrives at the end of the period.
func (h *BillingHandler) CancelSubscription(w http.ResponseWriter, r *http.Request) {
	const op = "billing.cancel_subscription"

	if h.billing == nil {
		ErrorResponse(w, r, h.logger, domain.Internal(nil, op, "Billing is not configured"))
		return
	}

	user := auth.GetUser(r.Context())
	if user.StripeSubscriptionID == "" {
		ErrorResponse(w, r, h.logger, domain.Invalid(op, "No active subscription"))
		return
	}

	if err := h.billing.CancelSubscription(user.StripeSubscriptionID); err != nil {
		ErrorResponse(w, r, h.logger, domain.Internal(err, op, "Failed to cancel subscription"))
		return
	}

	h.logger.Info("subscription cancellation scheduled",
		"user_id", user.ID,
		"subscription_id", user.StripeSubscriptionID)

	respondJSON(w, http.StatusOK, map[string]string{"status": "cancellation_scheduled"})
}
