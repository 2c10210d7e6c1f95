// Package handler contains the HTTP API surface.
//
// This file implements tier selection handlers. The only tier a client
// may request is "free"; asking for anything else - including "pro" - is
// rejected, because the pro tier is granted exclusively by the payment
// webhook.
//
// Routes handled:
//   - GET  /api/tier -> Show
//   - POST /api/tier -> Select
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/elijahtye/Tonr/internal/auth"
	"github.com/elijahtye/Tonr/internal/domain"
	"github.com/elijahtye/Tonr/internal/service"
)

// TierHandler handles tier selection HTTP requests.
type TierHandler struct {
	tierService service.TierService
	logger      *slog.Logger
}

// NewTierHandler creates a new TierHandler.
func NewTierHandler(tierService service.TierService, logger *slog.Logger) *TierHandler {
	return &TierHandler{
		tierService: tierService,
		logger:      logger,
	}
}

// RegisterRoutes registers tier routes on the provided mux.
func (h *TierHandler) RegisterRoutes(mux *http.ServeMux, requireUser func(http.Handler) http.Handler) {
	mux.Handle("GET /api/tier", requireUser(http.HandlerFunc(h.Show)))
	mux.Handle("POST /api/tier", requireUser(http.HandlerFunc(h.Select)))
}

// tierView is the JSON shape of a user's tier state.
type tierView struct {
	Tier               string `json:"tier"`
	SubscriptionStatus string `json:"subscription_status"`
}

// Show returns the authenticated user's current tier.
func (h *TierHandler) Show(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUser(r.Context())
	respondJSON(w, http.StatusOK, tierView{
		Tier:               string(user.Tier),
		SubscriptionStatus: string(user.SubscriptionStatus),
	})
}

// Select handles a tier selection request.
func (h *TierHandler) Select(w http.ResponseWriter, r *http.Request) {
	const op = "handler.select_tier"

	user := auth.GetUser(r.Context())

	var req struct {
		Tier string `json:"tier"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ErrorResponse(w, r, h.logger, domain.Invalid(op, "Invalid request body"))
		return
	}

	// "free" is the only client-selectable tier.
	if req.Tier != string(domain.TierFree) {
		ErrorResponse(w, r, h.logger, domain.InvalidTierRequest(op))
		return
	}

	updated, err := h.tierService.SelectFreeTier(r.Context(), user.ID)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, tierView{
		Tier:               string(updated.Tier),
		SubscriptionStatus: string(updated.SubscriptionStatus),
	})
}
