package service

import (
	"context"
	"database/sql"
	"log/slog"
	"testing"

	"github.com/elijahtye/Tonr/internal/domain"
	"github.com/elijahtye/Tonr/internal/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func seedUser(store *fakeStore, tier string) uuid.UUID {
	return store.addUser(repository.User{
		IdentitySubject:    "idp|" + uuid.NewString(),
		Email:              "user@example.com",
		Tier:               tier,
		SubscriptionStatus: "none",
	})
}

func TestSelectFreeTier(t *testing.T) {
	ctx := context.Background()

	t.Run("moves an unset user to free", func(t *testing.T) {
		store := newFakeStore()
		id := seedUser(store, "unset")
		svc := NewTierService(store, testLogger())

		user, err := svc.SelectFreeTier(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, domain.TierFree, user.Tier)
	})

	t.Run("is idempotent for a free user", func(t *testing.T) {
		store := newFakeStore()
		id := seedUser(store, "unset")
		svc := NewTierService(store, testLogger())

		first, err := svc.SelectFreeTier(ctx, id)
		require.NoError(t, err)
		second, err := svc.SelectFreeTier(ctx, id)
		require.NoError(t, err)

		assert.Equal(t, domain.TierFree, first.Tier)
		assert.Equal(t, domain.TierFree, second.Tier)
		assert.Equal(t, first.UpdatedAt, second.UpdatedAt, "repeat call must not rewrite the row")
	})

	t.Run("never downgrades a pro user", func(t *testing.T) {
		store := newFakeStore()
		id := store.addUser(repository.User{
			Tier:                 "pro",
			SubscriptionStatus:   "active",
			StripeCustomerID:     sql.NullString{String: "cus_123", Valid: true},
			StripeSubscriptionID: sql.NullString{String: "sub_123", Valid: true},
		})
		svc := NewTierService(store, testLogger())

		user, err := svc.SelectFreeTier(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, domain.TierPro, user.Tier)
		assert.Equal(t, domain.SubscriptionStatusActive, user.SubscriptionStatus)
	})

	t.Run("returns not found for an unknown user", func(t *testing.T) {
		svc := NewTierService(newFakeStore(), testLogger())
		_, err := svc.SelectFreeTier(ctx, uuid.New())
		assert.Equal(t, domain.ENOTFOUND, domain.ErrorCode(err))
	})
}

func TestOnPaymentCompleted(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		fromTier string
	}{
		{"upgrades an unset user", "unset"},
		{"upgrades a free user", "free"},
		{"keeps a pro user pro", "pro"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			id := seedUser(store, tt.fromTier)
			svc := NewTierService(store, testLogger())

			user, err := svc.OnPaymentCompleted(ctx, id, "cus_abc", "sub_abc")
			require.NoError(t, err)

			assert.Equal(t, domain.TierPro, user.Tier)
			assert.Equal(t, domain.SubscriptionStatusActive, user.SubscriptionStatus)
			assert.Equal(t, "cus_abc", user.StripeCustomerID)
			assert.Equal(t, "sub_abc", user.StripeSubscriptionID)
		})
	}

	t.Run("redelivery with empty references keeps existing ones", func(t *testing.T) {
		store := newFakeStore()
		id := store.addUser(repository.User{
			Tier:                 "pro",
			SubscriptionStatus:   "active",
			StripeCustomerID:     sql.NullString{String: "cus_original", Valid: true},
			StripeSubscriptionID: sql.NullString{String: "sub_original", Valid: true},
		})
		svc := NewTierService(store, testLogger())

		user, err := svc.OnPaymentCompleted(ctx, id, "", "")
		require.NoError(t, err)
		assert.Equal(t, "cus_original", user.StripeCustomerID)
		assert.Equal(t, "sub_original", user.StripeSubscriptionID)
	})

	t.Run("returns not found for an unknown user", func(t *testing.T) {
		svc := NewTierService(newFakeStore(), testLogger())
		_, err := svc.OnPaymentCompleted(ctx, uuid.New(), "cus_x", "sub_x")
		assert.Equal(t, domain.ENOTFOUND, domain.ErrorCode(err))
	})
}

func TestOnSubscriptionCanceled(t *testing.T) {
	ctx := context.Background()

	t.Run("returns a pro user to free and keeps payment references", func(t *testing.T) {
		store := newFakeStore()
		id := store.addUser(repository.User{
			Tier:                 "pro",
			SubscriptionStatus:   "active",
			StripeCustomerID:     sql.NullString{String: "cus_keep", Valid: true},
			StripeSubscriptionID: sql.NullString{String: "sub_keep", Valid: true},
		})
		svc := NewTierService(store, testLogger())

		user, err := svc.OnSubscriptionCanceled(ctx, id)
		require.NoError(t, err)

		assert.Equal(t, domain.TierFree, user.Tier)
		assert.Equal(t, domain.SubscriptionStatusCanceled, user.SubscriptionStatus)
		assert.Equal(t, "cus_keep", user.StripeCustomerID)
		assert.Equal(t, "sub_keep", user.StripeSubscriptionID)
	})

	t.Run("returns not found for an unknown user", func(t *testing.T) {
		svc := NewTierService(newFakeStore(), testLogger())
		_, err := svc.OnSubscriptionCanceled(ctx, uuid.New())
		assert.Equal(t, domain.ENOTFOUND, domain.ErrorCode(err))
	})
}

// Full upgrade/cancel/resubscribe lifecycle through the tier service.
func TestTierLifecycle(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	id := seedUser(store, "unset")
	svc := NewTierService(store, testLogger())

	// Select free
	user, err := svc.SelectFreeTier(ctx, id)
	require.NoError(t, err)
	require.Equal(t, domain.TierFree, user.Tier)

	// Upgrade via payment
	user, err = svc.OnPaymentCompleted(ctx, id, "cus_life", "sub_life")
	require.NoError(t, err)
	require.Equal(t, domain.TierPro, user.Tier)

	// Cancel
	user, err = svc.OnSubscriptionCanceled(ctx, id)
	require.NoError(t, err)
	require.Equal(t, domain.TierFree, user.Tier)
	require.Equal(t, "cus_life", user.StripeCustomerID)

	// Resubscribe with a new subscription under the same customer
	user, err = svc.OnPaymentCompleted(ctx, id, "cus_life", "sub_life_2")
	require.NoError(t, err)
	assert.Equal(t, domain.TierPro, user.Tier)
	assert.Equal(t, domain.SubscriptionStatusActive, user.SubscriptionStatus)
	assert.Equal(t, "sub_life_2", user.StripeSubscriptionID)
}
