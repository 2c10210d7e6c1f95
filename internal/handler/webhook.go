// Package handler contains the HTTP API surface.
//
// This file implements the Stripe webhook handler. It is the ONLY path
// by which a user reaches the pro tier: no client-facing endpoint can
// grant it.
//
// Route:
//   - POST /webhooks/stripe -> HandleStripeWebhook
//
// This route is PUBLIC (no auth middleware) because Stripe calls it
// directly. Authentication is via the Stripe webhook signature.
//
// Exactly two event types change state:
//   - checkout.session.completed  -> upgrade to pro
//   - customer.subscription.deleted -> return to free
//
// Every other event type is acknowledged and ignored. In particular,
// payment-failure and subscription-update events never touch the tier.
package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/elijahtye/Tonr/internal/billing"
	"github.com/elijahtye/Tonr/internal/metrics"
	"github.com/elijahtye/Tonr/internal/service"
	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v79"
)

// maxWebhookBody caps the webhook payload size (64KB).
const maxWebhookBody = 65536

// WebhookHandler handles incoming webhook events from Stripe.
type WebhookHandler struct {
	billing     billing.Service
	userService service.UserService
	tierService service.TierService
	logger      *slog.Logger
}

// NewWebhookHandler creates a new WebhookHandler.
// billingService may be nil when Stripe is not configured.
func NewWebhookHandler(billingService billing.Service, userService service.UserService, tierService service.TierService, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{
		billing:     billingService,
		userService: userService,
		tierService: tierService,
		logger:      logger,
	}
}

// RegisterRoutes registers webhook routes on the provided mux.
// These routes are PUBLIC - no auth middleware.
func (h *WebhookHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /webhooks/stripe", h.HandleStripeWebhook)
}

// HandleStripeWebhook processes incoming Stripe webhook events.
func (h *WebhookHandler) HandleStripeWebhook(w http.ResponseWriter, r *http.Request) {
	if h.billing == nil {
		h.logger.Warn("stripe webhook received but billing is not configured")
		w.WriteHeader(http.StatusOK)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		h.logger.Error("failed to read webhook body", "error", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	signature := r.Header.Get("Stripe-Signature")
	event, err := h.billing.VerifyWebhookSignature(body, signature)
	if err != nil {
		h.logger.Warn("webhook signature verification failed", "error", err)
		metrics.WebhookEventsTotal.WithLabelValues("unverified", "rejected").Inc()
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	h.logger.Info("stripe webhook received", "type", event.Type, "id", event.ID)

	switch event.Type {
	case "checkout.session.completed":
		h.handleCheckoutCompleted(r.Context(), event)
	case "customer.subscription.deleted":
		h.handleSubscriptionDeleted(r.Context(), event)
	default:
		// Acknowledged but deliberately inert. Tier state moves only on
		// the two events above.
		metrics.WebhookEventsTotal.WithLabelValues(string(event.Type), "ignored").Inc()
		h.logger.Debug("ignored webhook event type", "type", event.Type)
	}

	// Always 200 for verified events so Stripe does not retry events we
	// chose not to act on.
	w.WriteHeader(http.StatusOK)
}

func (h *WebhookHandler) handleCheckoutCompleted(ctx context.Context, event stripe.Event) {
	outcome := "error"
	defer func() {
		metrics.WebhookEventsTotal.WithLabelValues(string(event.Type), outcome).Inc()
	}()

	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		h.logger.Error("failed to parse checkout session", "error", err)
		return
	}

	// The checkout session carries our user ID in client_reference_id,
	// set when the session was created.
	userID, err := uuid.Parse(session.ClientReferenceID)
	if err != nil {
		h.logger.Error("checkout session has no usable client reference",
			"session_id", session.ID,
			"client_reference_id", session.ClientReferenceID)
		return
	}

	var customerID, subscriptionID string
	if session.Customer != nil {
		customerID = session.Customer.ID
	}
	if session.Subscription != nil {
		subscriptionID = session.Subscription.ID
	}

	user, err := h.tierService.OnPaymentCompleted(ctx, userID, customerID, subscriptionID)
	if err != nil {
		h.logger.Error("failed to apply completed payment",
			"user_id", userID,
			"session_id", session.ID,
			"error", err)
		return
	}

	outcome = "applied"
	h.logger.Info("checkout completed, user upgraded",
		"user_id", user.ID,
		"tier", user.Tier,
		"session_id", session.ID)
}

func (h *WebhookHandler) handleSubscriptionDeleted(ctx context.Context, event stripe.Event) {
	outcome := "error"
	defer func() {
		metrics.WebhookEventsTotal.WithLabelValues(string(event.Type), outcome).Inc()
	}()

	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		h.logger.Error("failed to parse subscription deleted event", "error", err)
		return
	}

	if sub.Customer == nil {
		h.logger.Warn("subscription deleted event missing customer", "subscription_id", sub.ID)
		return
	}

	user, err := h.userService.GetByStripeCustomerID(ctx, sub.Customer.ID)
	if err != nil {
		h.logger.Warn("user not found for subscription deletion",
			"customer_id", sub.Customer.ID,
			"subscription_id", sub.ID)
		return
	}

	if _, err := h.tierService.OnSubscriptionCanceled(ctx, user.ID); err != nil {
		h.logger.Error("failed to apply cancellation",
			"user_id", user.ID,
			"error", err)
		return
	}

	outcome = "applied"
	h.logger.Info("subscription deleted, user returned to free",
		"user_id", user.ID,
		"subscription_id", sub.ID)
}
