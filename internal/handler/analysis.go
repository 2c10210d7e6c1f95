// Package handler contains the HTTP API surface.
//
// This file implements the speech analysis handlers.
//
// Routes handled:
//   - POST /api/analyze  -> Analyze
//   - GET  /api/analyses -> History
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/elijahtye/Tonr/internal/auth"
	"github.com/elijahtye/Tonr/internal/domain"
	"github.com/elijahtye/Tonr/internal/service"
	"github.com/google/uuid"
)

// maxAnalyzeBody caps the analyze request payload (256KB, comfortably
// above the scorer's transcript limit).
const maxAnalyzeBody = 256 * 1024

// AnalysisHandler handles speech analysis HTTP requests.
type AnalysisHandler struct {
	analysisService service.AnalysisService
	logger          *slog.Logger
}

// NewAnalysisHandler creates a new AnalysisHandler.
func NewAnalysisHandler(analysisService service.AnalysisService, logger *slog.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		analysisService: analysisService,
		logger:          logger,
	}
}

// RegisterRoutes registers analysis routes on the provided mux.
// The analyze route additionally passes through the rate limiter in main.
func (h *AnalysisHandler) RegisterRoutes(mux *http.ServeMux, requireUser, rateLimit func(http.Handler) http.Handler) {
	mux.Handle("POST /api/analyze", requireUser(rateLimit(http.HandlerFunc(h.Analyze))))
	mux.Handle("GET /api/analyses", requireUser(http.HandlerFunc(h.History)))
}

// analysisView is the JSON shape of a completed analysis.
type analysisView struct {
	ID        string   `json:"id,omitempty"`
	Tonality  string   `json:"tonality"`
	Rating    int      `json:"rating"`
	Feedback  []string `json:"feedback"`
	CreatedAt string   `json:"created_at,omitempty"`
}

func toAnalysisView(a *domain.Analysis) analysisView {
	v := analysisView{
		Tonality: string(a.Tonality),
		Rating:   a.Rating,
		Feedback: a.Feedback,
	}
	if a.ID != uuid.Nil {
		v.ID = a.ID.String()
	}
	if !a.CreatedAt.IsZero() {
		v.CreatedAt = a.CreatedAt.Format(time.RFC3339)
	}
	return v
}

// Analyze runs a speech analysis for the authenticated user.
func (h *AnalysisHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	const op = "handler.analyze"

	user := auth.GetUser(r.Context())

	var req struct {
		Transcript string `json:"transcript"`
		Tonality   string `json:"tonality"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxAnalyzeBody)).Decode(&req); err != nil {
		ErrorResponse(w, r, h.logger, domain.Invalid(op, "Invalid request body"))
		return
	}

	analysis, err := h.analysisService.Analyze(r.Context(), user, req.Transcript, req.Tonality)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, toAnalysisView(analysis))
}

// History returns the authenticated user's recent analyses.
func (h *AnalysisHandler) History(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUser(r.Context())

	limit := int32(0)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			limit = int32(n)
		}
	}

	analyses, err := h.analysisService.History(r.Context(), user.ID, limit)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	views := make([]analysisView, 0, len(analyses))
	for i := range analyses {
		views = append(views, toAnalysisView(&analyses[i]))
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"analyses": views,
	})
}
