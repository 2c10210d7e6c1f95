// Package service contains the business logic layer.
//
// This file implements the entitlement service: it counts same-day usage
// and applies the entitlement policy to admit or deny analysis requests.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/elijahtye/Tonr/internal/domain"
	"github.com/elijahtye/Tonr/internal/metrics"
	"github.com/elijahtye/Tonr/internal/repository"
	"github.com/google/uuid"
)

// =============================================================================
// Interface Definition
// =============================================================================

// EntitlementService decides whether a user may run an analysis and
// reports their standing against the daily quota.
type EntitlementService interface {
	// GetUsage returns the user's usage summary for the current day.
	GetUsage(ctx context.Context, user *domain.User) (*domain.UsageSummary, error)

	// CheckAnalysis admits or denies an analysis request for the given
	// tonality. Returns nil when admitted; a domain error with code
	// EFORBIDDEN and a machine-readable reason when denied.
	CheckAnalysis(ctx context.Context, user *domain.User, tonality domain.Tonality) error

	// CountToday returns the number of usage events the user has recorded
	// within the current calendar day.
	CountToday(ctx context.Context, userID uuid.UUID) (int64, error)
}

// UsageCounter is the subset of repository queries the entitlement
// service needs. Satisfied by *repository.Queries.
type UsageCounter interface {
	CountUsageEventsInRange(ctx context.Context, arg repository.CountUsageEventsInRangeParams) (int64, error)
}

// =============================================================================
// Implementation
// =============================================================================

type entitlementService struct {
	store    UsageCounter
	policy   domain.EntitlementPolicy
	location *time.Location
	logger   *slog.Logger

	// now is swapped out in tests to pin the clock.
	now func() time.Time
}

// NewEntitlementService creates a new EntitlementService.
//
// The location fixes the time zone in which calendar days are computed.
// Every quota decision for every user uses the same zone, so the window
// rolls over at the same wall-clock moment regardless of where the user is.
func NewEntitlementService(store UsageCounter, policy domain.EntitlementPolicy, location *time.Location, logger *slog.Logger) EntitlementService {
	if location == nil {
		location = time.UTC
	}
	return &entitlementService{
		store:    store,
		policy:   policy,
		location: location,
		logger:   logger,
		now:      time.Now,
	}
}

// GetUsage returns the user's usage summary for the current day.
func (s *entitlementService) GetUsage(ctx context.Context, user *domain.User) (*domain.UsageSummary, error) {
	const op = "entitlement.get_usage"

	// Pro has no daily quota; skip the count entirely.
	if user.IsPro() {
		return &domain.UsageSummary{
			Tier:      user.Tier,
			Unlimited: true,
			CanUse:    true,
		}, nil
	}

	used, err := s.CountToday(ctx, user.ID)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to count usage")
	}

	remaining := s.policy.FreeDailyLimit - used
	if remaining < 0 {
		remaining = 0
	}

	return &domain.UsageSummary{
		Tier:      user.Tier,
		Used:      used,
		Limit:     s.policy.FreeDailyLimit,
		Remaining: remaining,
		CanUse:    user.Tier == domain.TierFree && remaining > 0,
	}, nil
}

// CheckAnalysis admits or denies an analysis request.
func (s *entitlementService) CheckAnalysis(ctx context.Context, user *domain.User, tonality domain.Tonality) error {
	const op = "entitlement.check_analysis"

	// Count usage only when the decision can depend on it. Unset and pro
	// tiers resolve without touching the store.
	var used int64
	if user.Tier == domain.TierFree {
		var err error
		used, err = s.CountToday(ctx, user.ID)
		if err != nil {
			return domain.Internal(err, op, "failed to count usage")
		}
	}

	decision := s.policy.Evaluate(user.Tier, tonality, used)
	if !decision.Allowed {
		metrics.AnalysisDenialsTotal.WithLabelValues(decision.Reason).Inc()
		s.logger.Info("analysis denied",
			"user_id", user.ID,
			"tier", user.Tier,
			"tonality", tonality,
			"used", used,
			"reason", decision.Reason,
		)
		return decision.Err(op)
	}

	return nil
}

// CountToday returns the number of usage events within the current
// calendar day.
func (s *entitlementService) CountToday(ctx context.Context, userID uuid.UUID) (int64, error) {
	start, end := s.dayBoundaries()
	return s.store.CountUsageEventsInRange(ctx, repository.CountUsageEventsInRangeParams{
		UserID:      userID,
		CreatedAt:   start,
		CreatedAt_2: end,
	})
}

// dayBoundaries returns the start and end times for the current calendar
// day in the configured zone.
func (s *entitlementService) dayBoundaries() (start, end time.Time) {
	now := s.now().In(s.location)
	start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.location)
	end = start.AddDate(0, 0, 1)
	return start, end
}
