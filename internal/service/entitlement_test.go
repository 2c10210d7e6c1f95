package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/elijahtye/Tonr/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedNow pins the clock to mid-afternoon on a known day.
var fixedNow = time.Date(2025, time.March, 15, 15, 30, 0, 0, time.UTC)

func newEntitlementService(store *fakeStore, loc *time.Location) EntitlementService {
	svc := NewEntitlementService(store, domain.DefaultEntitlementPolicy(), loc, testLogger())
	svc.(*entitlementService).now = func() time.Time { return fixedNow }
	return svc
}

func freeUser() *domain.User {
	return &domain.User{ID: uuid.New(), Tier: domain.TierFree}
}

func TestGetUsage(t *testing.T) {
	ctx := context.Background()

	t.Run("pro is unlimited and never counts", func(t *testing.T) {
		store := newFakeStore()
		store.countErr = errors.New("count must not be called")
		svc := newEntitlementService(store, time.UTC)

		summary, err := svc.GetUsage(ctx, &domain.User{ID: uuid.New(), Tier: domain.TierPro})
		require.NoError(t, err)
		assert.True(t, summary.Unlimited)
		assert.True(t, summary.CanUse)
	})

	t.Run("free reports remaining quota", func(t *testing.T) {
		store := newFakeStore()
		user := freeUser()
		store.addUsageEvent(user.ID, "neutral", fixedNow.Add(-time.Hour))
		svc := newEntitlementService(store, time.UTC)

		summary, err := svc.GetUsage(ctx, user)
		require.NoError(t, err)
		assert.Equal(t, int64(1), summary.Used)
		assert.Equal(t, int64(3), summary.Limit)
		assert.Equal(t, int64(2), summary.Remaining)
		assert.False(t, summary.Unlimited)
		assert.True(t, summary.CanUse)
	})

	t.Run("free at the limit cannot use", func(t *testing.T) {
		store := newFakeStore()
		user := freeUser()
		for i := 0; i < 3; i++ {
			store.addUsageEvent(user.ID, "neutral", fixedNow.Add(-time.Duration(i+1)*time.Hour))
		}
		svc := newEntitlementService(store, time.UTC)

		summary, err := svc.GetUsage(ctx, user)
		require.NoError(t, err)
		assert.Equal(t, int64(3), summary.Used)
		assert.Equal(t, int64(0), summary.Remaining)
		assert.False(t, summary.CanUse)
	})

	t.Run("unset user reports zero usage and cannot use", func(t *testing.T) {
		svc := newEntitlementService(newFakeStore(), time.UTC)
		summary, err := svc.GetUsage(ctx, &domain.User{ID: uuid.New(), Tier: domain.TierUnset})
		require.NoError(t, err)
		assert.False(t, summary.CanUse)
	})
}

func TestCheckAnalysis(t *testing.T) {
	ctx := context.Background()

	t.Run("admits a free user within quota", func(t *testing.T) {
		store := newFakeStore()
		user := freeUser()
		store.addUsageEvent(user.ID, "neutral", fixedNow.Add(-time.Hour))
		svc := newEntitlementService(store, time.UTC)

		err := svc.CheckAnalysis(ctx, user, domain.TonalityNeutral)
		assert.NoError(t, err)
	})

	t.Run("denies an unset user without counting", func(t *testing.T) {
		store := newFakeStore()
		store.countErr = errors.New("count must not be called")
		svc := newEntitlementService(store, time.UTC)

		err := svc.CheckAnalysis(ctx, &domain.User{ID: uuid.New(), Tier: domain.TierUnset}, domain.TonalityNeutral)
		assert.Equal(t, domain.EFORBIDDEN, domain.ErrorCode(err))
		assert.Equal(t, domain.ReasonTierNotSelected, domain.ErrorReason(err))
	})

	t.Run("denies a free user at the limit", func(t *testing.T) {
		store := newFakeStore()
		user := freeUser()
		for i := 0; i < 3; i++ {
			store.addUsageEvent(user.ID, "neutral", fixedNow.Add(-time.Duration(i+1)*time.Minute))
		}
		svc := newEntitlementService(store, time.UTC)

		err := svc.CheckAnalysis(ctx, user, domain.TonalityNeutral)
		assert.Equal(t, domain.ReasonDailyLimitReached, domain.ErrorReason(err))
	})

	t.Run("denies a free user requesting a paid tonality", func(t *testing.T) {
		svc := newEntitlementService(newFakeStore(), time.UTC)
		err := svc.CheckAnalysis(ctx, freeUser(), domain.TonalityAssertive)
		assert.Equal(t, domain.ReasonTonalityNotAllowed, domain.ErrorReason(err))
	})

	t.Run("admits pro for any tonality without counting", func(t *testing.T) {
		store := newFakeStore()
		store.countErr = errors.New("count must not be called")
		svc := newEntitlementService(store, time.UTC)
		user := &domain.User{ID: uuid.New(), Tier: domain.TierPro}

		for _, ton := range domain.Tonalities {
			assert.NoError(t, svc.CheckAnalysis(ctx, user, ton))
		}
	})

	t.Run("surfaces count failures as internal errors", func(t *testing.T) {
		store := newFakeStore()
		store.countErr = errors.New("connection refused")
		svc := newEntitlementService(store, time.UTC)

		err := svc.CheckAnalysis(ctx, freeUser(), domain.TonalityNeutral)
		assert.Equal(t, domain.EINTERNAL, domain.ErrorCode(err))
	})
}

// The daily window is a calendar day in the configured zone, not a
// rolling 24 hours: usage from before today's midnight never counts,
// however recent it is.
func TestDayWindow(t *testing.T) {
	ctx := context.Background()

	t.Run("yesterday's usage does not count", func(t *testing.T) {
		store := newFakeStore()
		user := freeUser()
		// Three events late yesterday, well within the last 24 hours.
		yesterday := time.Date(2025, time.March, 14, 23, 50, 0, 0, time.UTC)
		for i := 0; i < 3; i++ {
			store.addUsageEvent(user.ID, "neutral", yesterday.Add(time.Duration(i)*time.Minute))
		}
		svc := newEntitlementService(store, time.UTC)

		err := svc.CheckAnalysis(ctx, user, domain.TonalityNeutral)
		assert.NoError(t, err, "quota resets at midnight")
	})

	t.Run("events from the start of today count", func(t *testing.T) {
		store := newFakeStore()
		user := freeUser()
		midnight := time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC)
		for i := 0; i < 3; i++ {
			store.addUsageEvent(user.ID, "neutral", midnight.Add(time.Duration(i)*time.Minute))
		}
		svc := newEntitlementService(store, time.UTC)

		err := svc.CheckAnalysis(ctx, user, domain.TonalityNeutral)
		assert.Equal(t, domain.ReasonDailyLimitReached, domain.ErrorReason(err))
	})

	t.Run("window follows the configured zone", func(t *testing.T) {
		// 15:30 UTC is already March 16 in Auckland (UTC+13 in March).
		auckland, err := time.LoadLocation("Pacific/Auckland")
		require.NoError(t, err)

		store := newFakeStore()
		user := freeUser()
		// Events at 10:00 UTC on March 15 are the same calendar day in
		// UTC, but fall before Auckland's current midnight (11:00 UTC),
		// so in the Auckland window they do not count.
		for i := 0; i < 3; i++ {
			store.addUsageEvent(user.ID, "neutral", time.Date(2025, time.March, 15, 10, 0, 0, 0, time.UTC).Add(time.Duration(i)*time.Minute))
		}
		svc := newEntitlementService(store, auckland)

		checkErr := svc.CheckAnalysis(ctx, user, domain.TonalityNeutral)
		assert.NoError(t, checkErr)
	})
}
