// Package handler contains the HTTP API surface.
//
// This file implements the usage endpoint.
//
// Routes handled:
//   - GET /api/usage -> Show
package handler

import (
	"log/slog"
	"net/http"

	"github.com/elijahtye/Tonr/internal/auth"
	"github.com/elijahtye/Tonr/internal/service"
)

// UsageHandler handles usage reporting HTTP requests.
type UsageHandler struct {
	entitlements service.EntitlementService
	logger       *slog.Logger
}

// NewUsageHandler creates a new UsageHandler.
func NewUsageHandler(entitlements service.EntitlementService, logger *slog.Logger) *UsageHandler {
	return &UsageHandler{
		entitlements: entitlements,
		logger:       logger,
	}
}

// RegisterRoutes registers usage routes on the provided mux.
func (h *UsageHandler) RegisterRoutes(mux *http.ServeMux, requireUser func(http.Handler) http.Handler) {
	mux.Handle("GET /api/usage", requireUser(http.HandlerFunc(h.Show)))
}

// usageView is the JSON shape of a usage summary.
type usageView struct {
	Tier      string `json:"tier"`
	Used      int64  `json:"used"`
	Limit     int64  `json:"limit"`
	Remaining int64  `json:"remaining"`
	Unlimited bool   `json:"unlimited"`
	CanUse    bool   `json:"can_use"`
}

// Show returns the authenticated user's usage against today's quota.
func (h *UsageHandler) Show(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUser(r.Context())

	summary, err := h.entitlements.GetUsage(r.Context(), user)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, usageView{
		Tier:      string(summary.Tier),
		Used:      summary.Used,
		Limit:     summary.Limit,
		Remaining: summary.Remaining,
		Unlimited: summary.Unlimited,
		CanUse:    summary.CanUse,
	})
}
