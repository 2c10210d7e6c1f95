// Package service contains the business logic layer.
//
// Services orchestrate interactions between repositories, external APIs,
// and domain logic. They are responsible for:
// - Input validation
// - Business rule enforcement
// - Error translation (database errors -> domain errors)
package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"

	"github.com/elijahtye/Tonr/internal/domain"
	"github.com/elijahtye/Tonr/internal/repository"
	"github.com/google/uuid"
)

// =============================================================================
// Interface Definition
// =============================================================================

// UserService defines the interface for user account operations.
//
// Accounts are provisioned lazily: the first authenticated request from an
// identity-provider subject creates the local record. There is no register
// or login here; credentials live entirely with the identity provider.
type UserService interface {
	// EnsureUser returns the account for an identity-provider subject,
	// creating it on first contact. New accounts start with an unset tier.
	EnsureUser(ctx context.Context, subject, email, name string) (*domain.User, error)

	// GetByID retrieves a user by their ID.
	// Returns domain.ENOTFOUND if the user does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByStripeCustomerID retrieves a user by their Stripe customer ID.
	// Returns domain.ENOTFOUND if no user carries that customer ID.
	GetByStripeCustomerID(ctx context.Context, customerID string) (*domain.User, error)

	// UpdateProfile updates a user's display fields.
	// Returns domain.ENOTFOUND if the user does not exist.
	UpdateProfile(ctx context.Context, id uuid.UUID, email, name string) (*domain.User, error)

	// SetStripeCustomer records the Stripe customer ID for a user.
	SetStripeCustomer(ctx context.Context, id uuid.UUID, customerID string) error

	// DeleteAccount removes the user and all of their data: analyses,
	// usage events, and finally the account record itself.
	DeleteAccount(ctx context.Context, id uuid.UUID) error
}

// UserStore is the subset of repository queries the user service needs.
// Satisfied by *repository.Queries.
type UserStore interface {
	CreateUser(ctx context.Context, arg repository.CreateUserParams) (repository.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (repository.User, error)
	GetUserByIdentitySubject(ctx context.Context, identitySubject string) (repository.User, error)
	GetUserByStripeCustomerID(ctx context.Context, stripeCustomerID sql.NullString) (repository.User, error)
	UpdateUserProfile(ctx context.Context, arg repository.UpdateUserProfileParams) (repository.User, error)
	UpdateUserStripeCustomer(ctx context.Context, arg repository.UpdateUserStripeCustomerParams) error
	DeleteUser(ctx context.Context, id uuid.UUID) error
	DeleteAnalysesByUser(ctx context.Context, userID uuid.UUID) error
	DeleteUsageEventsByUser(ctx context.Context, userID uuid.UUID) error
}

// =============================================================================
// Implementation
// =============================================================================

type userService struct {
	store  UserStore
	logger *slog.Logger
}

// NewUserService creates a new UserService.
func NewUserService(store UserStore, logger *slog.Logger) UserService {
	return &userService{
		store:  store,
		logger: logger,
	}
}

// EnsureUser returns the account for an identity-provider subject, creating
// it on first contact.
func (s *userService) EnsureUser(ctx context.Context, subject, email, name string) (*domain.User, error) {
	const op = "user.ensure"

	subject = strings.TrimSpace(subject)
	if subject == "" {
		return nil, domain.Invalid(op, "Identity subject is required")
	}

	user, err := s.store.GetUserByIdentitySubject(ctx, subject)
	if err == nil {
		return repoUserToDomain(user), nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, domain.Internal(err, op, "failed to look up user")
	}

	created, err := s.store.CreateUser(ctx, repository.CreateUserParams{
		IdentitySubject: subject,
		Email:           strings.TrimSpace(email),
		Name:            strings.TrimSpace(name),
	})
	if err != nil {
		// A concurrent first request may have raced us to the insert; the
		// unique index on identity_subject makes one of us lose. Re-read.
		if existing, lookupErr := s.store.GetUserByIdentitySubject(ctx, subject); lookupErr == nil {
			return repoUserToDomain(existing), nil
		}
		return nil, domain.Internal(err, op, "failed to create user")
	}

	s.logger.Info("provisioned new account",
		"user_id", created.ID,
		"subject", subject)

	return repoUserToDomain(created), nil
}

// GetByID retrieves a user by their ID.
func (s *userService) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	const op = "user.get_by_id"

	user, err := s.store.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "user", id.String())
		}
		return nil, domain.Internal(err, op, "failed to get user")
	}
	return repoUserToDomain(user), nil
}

// GetByStripeCustomerID retrieves a user by their Stripe customer ID.
func (s *userService) GetByStripeCustomerID(ctx context.Context, customerID string) (*domain.User, error) {
	const op = "user.get_by_stripe_customer"

	if customerID == "" {
		return nil, domain.Invalid(op, "Stripe customer ID is required")
	}

	user, err := s.store.GetUserByStripeCustomerID(ctx, domain.ToNullString(customerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "user", customerID)
		}
		return nil, domain.Internal(err, op, "failed to get user")
	}
	return repoUserToDomain(user), nil
}

// UpdateProfile updates a user's display fields.
func (s *userService) UpdateProfile(ctx context.Context, id uuid.UUID, email, name string) (*domain.User, error) {
	const op = "user.update_profile"

	email = strings.TrimSpace(email)
	name = strings.TrimSpace(name)
	if email == "" {
		return nil, domain.Invalid(op, "Email is required")
	}

	user, err := s.store.UpdateUserProfile(ctx, repository.UpdateUserProfileParams{
		ID:    id,
		Email: email,
		Name:  name,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "user", id.String())
		}
		return nil, domain.Internal(err, op, "failed to update profile")
	}
	return repoUserToDomain(user), nil
}

// SetStripeCustomer records the Stripe customer ID for a user.
func (s *userService) SetStripeCustomer(ctx context.Context, id uuid.UUID, customerID string) error {
	const op = "user.set_stripe_customer"

	if customerID == "" {
		return domain.Invalid(op, "Stripe customer ID is required")
	}

	err := s.store.UpdateUserStripeCustomer(ctx, repository.UpdateUserStripeCustomerParams{
		ID:               id,
		StripeCustomerID: domain.ToNullString(customerID),
	})
	if err != nil {
		return domain.Internal(err, op, "failed to set stripe customer")
	}
	return nil
}

// DeleteAccount removes the user and all of their data.
func (s *userService) DeleteAccount(ctx context.Context, id uuid.UUID) error {
	const op = "user.delete_account"

	// The FK constraints cascade, but we delete children explicitly so the
	// operation works the same against stores without cascade support.
	if err := s.store.DeleteAnalysesByUser(ctx, id); err != nil {
		return domain.Internal(err, op, "failed to delete analyses")
	}
	if err := s.store.DeleteUsageEventsByUser(ctx, id); err != nil {
		return domain.Internal(err, op, "failed to delete usage events")
	}
	if err := s.store.DeleteUser(ctx, id); err != nil {
		return domain.Internal(err, op, "failed to delete user")
	}

	s.logger.Info("deleted account", "user_id", id)
	return nil
}

// =============================================================================
// Conversion
// =============================================================================

// repoUserToDomain converts a repository user row to the domain type.
func repoUserToDomain(u repository.User) *domain.User {
	return &domain.User{
		ID:                   u.ID,
		IdentitySubject:      u.IdentitySubject,
		Email:                u.Email,
		Name:                 u.Name,
		Tier:                 domain.Tier(u.Tier),
		SubscriptionStatus:   domain.SubscriptionStatus(u.SubscriptionStatus),
		StripeCustomerID:     domain.NullStringValue(u.StripeCustomerID),
		StripeSubscriptionID: domain.NullStringValue(u.StripeSubscriptionID),
		CreatedAt:            u.CreatedAt,
		UpdatedAt:            u.UpdatedAt,
	}
}
