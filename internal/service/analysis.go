// Package service contains the business logic layer.
//
// This file implements the analysis orchestrator: the single protected
// path through which a speech analysis runs. It validates input, checks
// entitlements, calls the scorer, and records usage only after a
// successful analysis.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"

	"github.com/elijahtye/Tonr/internal/ai"
	"github.com/elijahtye/Tonr/internal/domain"
	"github.com/elijahtye/Tonr/internal/metrics"
	"github.com/elijahtye/Tonr/internal/repository"
	"github.com/google/uuid"
	"github.com/sqlc-dev/pqtype"
	"golang.org/x/text/unicode/norm"
)

// DefaultHistoryLimit caps how many past analyses a single list request
// returns.
const DefaultHistoryLimit = 50

// =============================================================================
// Interface Definition
// =============================================================================

// AnalysisService orchestrates speech analyses.
type AnalysisService interface {
	// Analyze runs a full analysis for the user: entitlement check, scorer
	// call, persistence, and usage recording, in that order. The request is
	// rejected before any quota is consumed; usage is recorded only after
	// the scorer succeeds.
	Analyze(ctx context.Context, user *domain.User, transcript, tonality string) (*domain.Analysis, error)

	// History returns the user's most recent analyses, newest first.
	History(ctx context.Context, userID uuid.UUID, limit int32) ([]domain.Analysis, error)
}

// AnalysisStore is the subset of repository queries the analysis service
// needs. Satisfied by *repository.Queries.
type AnalysisStore interface {
	CreateAnalysis(ctx context.Context, arg repository.CreateAnalysisParams) (repository.Analysis, error)
	CreateUsageEvent(ctx context.Context, arg repository.CreateUsageEventParams) (repository.UsageEvent, error)
	ListAnalysesByUser(ctx context.Context, arg repository.ListAnalysesByUserParams) ([]repository.Analysis, error)
}

// =============================================================================
// Implementation
// =============================================================================

type analysisService struct {
	store        AnalysisStore
	entitlements EntitlementService
	scorer       ai.Scorer
	logger       *slog.Logger
}

// NewAnalysisService creates a new AnalysisService.
func NewAnalysisService(store AnalysisStore, entitlements EntitlementService, scorer ai.Scorer, logger *slog.Logger) AnalysisService {
	return &analysisService{
		store:        store,
		entitlements: entitlements,
		scorer:       scorer,
		logger:       logger,
	}
}

// Analyze runs a full analysis for the user.
func (s *analysisService) Analyze(ctx context.Context, user *domain.User, transcript, tonality string) (*domain.Analysis, error) {
	const op = "analysis.analyze"

	// Normalize before validating so a transcript of pure whitespace is
	// rejected, and equivalent Unicode sequences compare the same way in
	// history and storage.
	transcript = norm.NFC.String(strings.TrimSpace(transcript))
	if transcript == "" {
		metrics.AnalysesTotal.WithLabelValues("invalid").Inc()
		return nil, domain.Invalid(op, "Transcript is required")
	}

	ton, ok := domain.ParseTonality(tonality)
	if !ok {
		metrics.AnalysesTotal.WithLabelValues("invalid").Inc()
		return nil, domain.Invalid(op, "Unknown tonality: "+tonality)
	}

	// Entitlement gate. Nothing below runs for a denied request, so a
	// denial can never consume quota.
	if err := s.entitlements.CheckAnalysis(ctx, user, ton); err != nil {
		metrics.AnalysesTotal.WithLabelValues("denied").Inc()
		return nil, err
	}

	result, err := s.scorer.ScoreSpeech(ctx, ai.ScoreSpeechParams{
		Transcript: transcript,
		Tonality:   ton,
		UserID:     user.ID,
	})
	if err != nil {
		metrics.AnalysesTotal.WithLabelValues("error").Inc()
		metrics.AIAPICalls.WithLabelValues("error").Inc()
		s.logger.Error("scorer call failed",
			"user_id", user.ID,
			"tonality", ton,
			"error", err,
		)
		if errors.Is(err, ai.EAIInvalidInput) {
			return nil, domain.Invalid(op, "The transcript could not be analyzed")
		}
		return nil, domain.Internal(err, op, "Analysis is temporarily unavailable, please try again")
	}

	metrics.AIAPICalls.WithLabelValues("success").Inc()
	metrics.AITokensTotal.WithLabelValues("input").Add(float64(result.Usage.InputTokens))
	metrics.AITokensTotal.WithLabelValues("output").Add(float64(result.Usage.OutputTokens))
	metrics.AICostCentsTotal.Add(float64(result.Usage.CostCents))

	analysis := &domain.Analysis{
		UserID:     user.ID,
		Tonality:   ton,
		Transcript: transcript,
		Rating:     result.Rating,
		Feedback:   result.Feedback,
	}

	// Persist the analysis and the usage event. Both writes are
	// best-effort: the user already has their result, and failing the
	// request now would charge them a retry for our storage problem.
	saved, err := s.store.CreateAnalysis(ctx, repository.CreateAnalysisParams{
		UserID:      user.ID,
		Tonality:    string(ton),
		Transcript:  transcript,
		Rating:      int32(result.Rating),
		Feedback:    result.Feedback,
		RawResponse: rawResponse(result.RawResponse),
	})
	if err != nil {
		s.logger.Error("failed to persist analysis",
			"user_id", user.ID,
			"error", err,
		)
	} else {
		analysis.ID = saved.ID
		analysis.CreatedAt = saved.CreatedAt
	}

	if _, err := s.store.CreateUsageEvent(ctx, repository.CreateUsageEventParams{
		UserID:   user.ID,
		Tonality: string(ton),
	}); err != nil {
		metrics.UsageEventWriteFailures.Inc()
		s.logger.Error("failed to record usage event",
			"user_id", user.ID,
			"tonality", ton,
			"error", err,
		)
	}

	metrics.AnalysesTotal.WithLabelValues("success").Inc()
	return analysis, nil
}

// History returns the user's most recent analyses, newest first.
func (s *analysisService) History(ctx context.Context, userID uuid.UUID, limit int32) ([]domain.Analysis, error) {
	const op = "analysis.history"

	if limit <= 0 || limit > DefaultHistoryLimit {
		limit = DefaultHistoryLimit
	}

	rows, err := s.store.ListAnalysesByUser(ctx, repository.ListAnalysesByUserParams{
		UserID: userID,
		Limit:  limit,
	})
	if err != nil {
		return nil, domain.Internal(err, op, "failed to list analyses")
	}

	analyses := make([]domain.Analysis, 0, len(rows))
	for _, row := range rows {
		analyses = append(analyses, domain.Analysis{
			ID:         row.ID,
			UserID:     row.UserID,
			Tonality:   domain.Tonality(row.Tonality),
			Transcript: row.Transcript,
			Rating:     int(row.Rating),
			Feedback:   row.Feedback,
			CreatedAt:  row.CreatedAt,
		})
	}
	return analyses, nil
}

// rawResponse wraps the scorer's raw output for the JSONB column,
// dropping anything that is not valid JSON.
func rawResponse(raw []byte) pqtype.NullRawMessage {
	if len(raw) == 0 || !json.Valid(raw) {
		return pqtype.NullRawMessage{}
	}
	return pqtype.NullRawMessage{RawMessage: raw, Valid: true}
}
