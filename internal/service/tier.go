// Package service contains the business logic layer.
//
// This file implements tier transitions. The tier field is the single
// authoritative gate for entitlements; it only ever changes through the
// three operations defined here. There is no client-facing path to the
// pro tier: only a verified payment webhook can grant it.
package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/elijahtye/Tonr/internal/domain"
	"github.com/elijahtye/Tonr/internal/metrics"
	"github.com/elijahtye/Tonr/internal/repository"
	"github.com/google/uuid"
)

// =============================================================================
// Interface Definition
// =============================================================================

// TierService defines the tier transition operations.
type TierService interface {
	// SelectFreeTier moves a user from the unset tier to free.
	//
	// The operation is idempotent: a user already on free gets their
	// current state back unchanged. It never downgrades: a pro user
	// selecting free is also a no-op, so a retried or stale request can
	// never strip a paid entitlement.
	SelectFreeTier(ctx context.Context, userID uuid.UUID) (*domain.User, error)

	// OnPaymentCompleted applies a verified payment: the user becomes pro
	// with an active subscription, unconditionally. Whatever state the
	// user was in before, a completed payment wins.
	OnPaymentCompleted(ctx context.Context, userID uuid.UUID, customerID, subscriptionID string) (*domain.User, error)

	// OnSubscriptionCanceled returns a user to the free tier with a
	// canceled status. Payment references are retained so a later
	// resubscription reuses the same Stripe customer.
	OnSubscriptionCanceled(ctx context.Context, userID uuid.UUID) (*domain.User, error)
}

// TierStore is the subset of repository queries the tier service needs.
// Satisfied by *repository.Queries.
type TierStore interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (repository.User, error)
	UpdateUserTier(ctx context.Context, arg repository.UpdateUserTierParams) (repository.User, error)
	UpdateUserSubscription(ctx context.Context, arg repository.UpdateUserSubscriptionParams) (repository.User, error)
}

// =============================================================================
// Implementation
// =============================================================================

type tierService struct {
	store  TierStore
	logger *slog.Logger
}

// NewTierService creates a new TierService.
func NewTierService(store TierStore, logger *slog.Logger) TierService {
	return &tierService{
		store:  store,
		logger: logger,
	}
}

// SelectFreeTier moves a user from the unset tier to free.
func (s *tierService) SelectFreeTier(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	const op = "tier.select_free"

	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "user", userID.String())
		}
		return nil, domain.Internal(err, op, "failed to get user")
	}

	// Already free or pro: return current state untouched. Repeating the
	// request changes nothing, and a pro user is never downgraded here.
	if domain.Tier(user.Tier) != domain.TierUnset {
		return repoUserToDomain(user), nil
	}

	updated, err := s.store.UpdateUserTier(ctx, repository.UpdateUserTierParams{
		ID:   userID,
		Tier: string(domain.TierFree),
	})
	if err != nil {
		return nil, domain.Internal(err, op, "failed to update tier")
	}

	metrics.TierTransitionsTotal.WithLabelValues(string(domain.TierFree)).Inc()
	s.logger.Info("user selected free tier", "user_id", userID)

	return repoUserToDomain(updated), nil
}

// OnPaymentCompleted applies a verified payment.
func (s *tierService) OnPaymentCompleted(ctx context.Context, userID uuid.UUID, customerID, subscriptionID string) (*domain.User, error) {
	const op = "tier.payment_completed"

	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "user", userID.String())
		}
		return nil, domain.Internal(err, op, "failed to get user")
	}

	// Keep existing references when the event omits them; a redelivered
	// event must not blank out what an earlier delivery recorded.
	customer := user.StripeCustomerID
	if customerID != "" {
		customer = domain.ToNullString(customerID)
	}
	subscription := user.StripeSubscriptionID
	if subscriptionID != "" {
		subscription = domain.ToNullString(subscriptionID)
	}

	updated, err := s.store.UpdateUserSubscription(ctx, repository.UpdateUserSubscriptionParams{
		ID:                   userID,
		Tier:                 string(domain.TierPro),
		SubscriptionStatus:   string(domain.SubscriptionStatusActive),
		StripeCustomerID:     customer,
		StripeSubscriptionID: subscription,
	})
	if err != nil {
		return nil, domain.Internal(err, op, "failed to apply payment")
	}

	metrics.TierTransitionsTotal.WithLabelValues(string(domain.TierPro)).Inc()
	s.logger.Info("payment completed, user upgraded to pro",
		"user_id", userID,
		"previous_tier", user.Tier)

	return repoUserToDomain(updated), nil
}

// OnSubscriptionCanceled returns a user to the free tier.
func (s *tierService) OnSubscriptionCanceled(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	const op = "tier.subscription_canceled"

	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "user", userID.String())
		}
		return nil, domain.Internal(err, op, "failed to get user")
	}

	updated, err := s.store.UpdateUserSubscription(ctx, repository.UpdateUserSubscriptionParams{
		ID:                 userID,
		Tier:               string(domain.TierFree),
		SubscriptionStatus: string(domain.SubscriptionStatusCanceled),
		// References survive cancellation on purpose.
		StripeCustomerID:     user.StripeCustomerID,
		StripeSubscriptionID: user.StripeSubscriptionID,
	})
	if err != nil {
		return nil, domain.Internal(err, op, "failed to apply cancellation")
	}

	metrics.TierTransitionsTotal.WithLabelValues(string(domain.TierFree)).Inc()
	s.logger.Info("subscription canceled, user returned to free tier",
		"user_id", userID)

	return repoUserToDomain(updated), nil
}
