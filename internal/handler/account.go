// Package handler contains the HTTP API surface.
//
// This file implements account handlers.
//
// Routes handled:
//   - GET    /api/me      -> Show
//   - PUT    /api/me      -> UpdateProfile
//   - DELETE /api/account -> Delete
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/elijahtye/Tonr/internal/auth"
	"github.com/elijahtye/Tonr/internal/domain"
	"github.com/elijahtye/Tonr/internal/service"
)

// AccountHandler handles account HTTP requests.
type AccountHandler struct {
	userService service.UserService
	logger      *slog.Logger
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(userService service.UserService, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{
		userService: userService,
		logger:      logger,
	}
}

// RegisterRoutes registers account routes on the provided mux.
func (h *AccountHandler) RegisterRoutes(mux *http.ServeMux, requireUser func(http.Handler) http.Handler) {
	mux.Handle("GET /api/me", requireUser(http.HandlerFunc(h.Show)))
	mux.Handle("PUT /api/me", requireUser(http.HandlerFunc(h.UpdateProfile)))
	mux.Handle("DELETE /api/account", requireUser(http.HandlerFunc(h.Delete)))
}

// userView is the JSON shape of an account.
type userView struct {
	ID                 string `json:"id"`
	Email              string `json:"email"`
	Name               string `json:"name,omitempty"`
	Tier               string `json:"tier"`
	SubscriptionStatus string `json:"subscription_status"`
	CreatedAt          string `json:"created_at"`
}

func toUserView(u *domain.User) userView {
	return userView{
		ID:                 u.ID.String(),
		Email:              u.Email,
		Name:               u.Name,
		Tier:               string(u.Tier),
		SubscriptionStatus: string(u.SubscriptionStatus),
		CreatedAt:          u.CreatedAt.Format(time.RFC3339),
	}
}

// Show returns the authenticated user's account.
func (h *AccountHandler) Show(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUser(r.Context())
	respondJSON(w, http.StatusOK, toUserView(user))
}

// UpdateProfile updates the authenticated user's display fields.
func (h *AccountHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUser(r.Context())

	var req struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ErrorResponse(w, r, h.logger, domain.Invalid("account.update_profile", "Invalid request body"))
		return
	}

	updated, err := h.userService.UpdateProfile(r.Context(), user.ID, req.Email, req.Name)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, toUserView(updated))
}

// Delete removes the authenticated user's account and all of their data.
func (h *AccountHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUser(r.Context())

	if err := h.userService.DeleteAccount(r.Context(), user.ID); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
