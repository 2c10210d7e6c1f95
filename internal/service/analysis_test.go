package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/elijahtye/Tonr/internal/ai"
	"github.com/elijahtye/Tonr/internal/ai/mock"
	"github.com/elijahtye/Tonr/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAnalysisFixture(store *fakeStore) (AnalysisService, *mock.Provider) {
	scorer := mock.New(testLogger())
	entitlements := newEntitlementService(store, time.UTC)
	svc := NewAnalysisService(store, entitlements, scorer, testLogger())
	return svc, scorer
}

func TestAnalyze(t *testing.T) {
	ctx := context.Background()

	t.Run("free user within quota gets a result and consumes quota", func(t *testing.T) {
		store := newFakeStore()
		store.clock = func() time.Time { return fixedNow }
		user := freeUser()
		svc, scorer := newAnalysisFixture(store)

		analysis, err := svc.Analyze(ctx, user, "Today I want to walk through our quarterly results.", "neutral")
		require.NoError(t, err)

		assert.Equal(t, 1, scorer.ScoreSpeechCalls)
		assert.Equal(t, 72, analysis.Rating)
		assert.NotEmpty(t, analysis.Feedback)
		assert.Equal(t, domain.TonalityNeutral, analysis.Tonality)
		assert.Equal(t, 1, store.usageEventCount(user.ID))
		assert.Len(t, store.analyses, 1)
	})

	t.Run("fourth analysis of the day is denied before the scorer runs", func(t *testing.T) {
		store := newFakeStore()
		store.clock = func() time.Time { return fixedNow }
		user := freeUser()
		for i := 0; i < 3; i++ {
			store.addUsageEvent(user.ID, "neutral", fixedNow.Add(-time.Duration(i+1)*time.Minute))
		}
		svc, scorer := newAnalysisFixture(store)

		_, err := svc.Analyze(ctx, user, "One more practice run.", "neutral")
		assert.Equal(t, domain.ReasonDailyLimitReached, domain.ErrorReason(err))
		assert.Equal(t, 0, scorer.ScoreSpeechCalls, "denied requests must not reach the scorer")
		assert.Equal(t, 3, store.usageEventCount(user.ID), "denied requests must not consume quota")
	})

	t.Run("free user requesting a paid tonality is denied", func(t *testing.T) {
		store := newFakeStore()
		user := freeUser()
		svc, scorer := newAnalysisFixture(store)

		_, err := svc.Analyze(ctx, user, "Let me be direct about this.", "assertive")
		assert.Equal(t, domain.ReasonTonalityNotAllowed, domain.ErrorReason(err))
		assert.Equal(t, 0, scorer.ScoreSpeechCalls)
		assert.Equal(t, 0, store.usageEventCount(user.ID))
	})

	t.Run("unset user is denied", func(t *testing.T) {
		store := newFakeStore()
		svc, _ := newAnalysisFixture(store)

		_, err := svc.Analyze(ctx, &domain.User{ID: uuid.New(), Tier: domain.TierUnset}, "Hello.", "neutral")
		assert.Equal(t, domain.ReasonTierNotSelected, domain.ErrorReason(err))
	})

	t.Run("pro user runs any tonality without quota", func(t *testing.T) {
		store := newFakeStore()
		store.clock = func() time.Time { return fixedNow }
		user := &domain.User{ID: uuid.New(), Tier: domain.TierPro}
		svc, _ := newAnalysisFixture(store)

		for i, ton := range []string{"neutral", "assertive", "composed", "neutral", "assertive"} {
			analysis, err := svc.Analyze(ctx, user, "Practice session transcript.", ton)
			require.NoError(t, err, "analysis %d (%s)", i, ton)
			require.NotNil(t, analysis)
		}
		assert.Equal(t, 5, store.usageEventCount(user.ID), "pro usage is still recorded")
	})

	t.Run("blank transcript is rejected before the entitlement check", func(t *testing.T) {
		store := newFakeStore()
		svc, scorer := newAnalysisFixture(store)

		// An unset user would be denied by entitlements; the validation
		// error taking precedence shows the input check runs first.
		_, err := svc.Analyze(ctx, &domain.User{ID: uuid.New(), Tier: domain.TierUnset}, "   \n\t ", "neutral")
		assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
		assert.Equal(t, 0, scorer.ScoreSpeechCalls)
	})

	t.Run("unknown tonality is rejected", func(t *testing.T) {
		store := newFakeStore()
		svc, _ := newAnalysisFixture(store)

		_, err := svc.Analyze(ctx, freeUser(), "Hello there.", "aggressive")
		assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
	})

	t.Run("transcript is trimmed and unicode-normalized before storage", func(t *testing.T) {
		store := newFakeStore()
		store.clock = func() time.Time { return fixedNow }
		svc, _ := newAnalysisFixture(store)

		// "café" with a decomposed e + combining acute accent.
		decomposed := "  café culture  "
		analysis, err := svc.Analyze(ctx, freeUser(), decomposed, "neutral")
		require.NoError(t, err)
		assert.Equal(t, "café culture", analysis.Transcript)
		assert.Equal(t, "café culture", store.analyses[0].Transcript)
	})

	t.Run("scorer failure returns an error and consumes no quota", func(t *testing.T) {
		store := newFakeStore()
		user := freeUser()
		svc, scorer := newAnalysisFixture(store)
		scorer.ScoreSpeechError = ai.EAIUnavailable

		_, err := svc.Analyze(ctx, user, "This one will fail.", "neutral")
		assert.Equal(t, domain.EINTERNAL, domain.ErrorCode(err))
		assert.Equal(t, 0, store.usageEventCount(user.ID), "failed analyses must not consume quota")
		assert.Empty(t, store.analyses)
	})

	t.Run("scorer input rejection maps to an invalid error", func(t *testing.T) {
		store := newFakeStore()
		svc, scorer := newAnalysisFixture(store)
		scorer.ScoreSpeechError = ai.EAIInvalidInput

		_, err := svc.Analyze(ctx, freeUser(), "Some transcript.", "neutral")
		assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
	})

	t.Run("usage write failure is swallowed", func(t *testing.T) {
		store := newFakeStore()
		store.createUsageEventErr = errors.New("disk full")
		user := freeUser()
		svc, _ := newAnalysisFixture(store)

		analysis, err := svc.Analyze(ctx, user, "The result still comes back.", "neutral")
		require.NoError(t, err, "a usage bookkeeping failure must not fail the analysis")
		assert.NotNil(t, analysis)
	})

	t.Run("analysis persistence failure is swallowed", func(t *testing.T) {
		store := newFakeStore()
		store.createAnalysisErr = errors.New("disk full")
		user := freeUser()
		svc, _ := newAnalysisFixture(store)

		analysis, err := svc.Analyze(ctx, user, "History write fails, result survives.", "neutral")
		require.NoError(t, err)
		assert.Equal(t, 72, analysis.Rating)
		assert.Equal(t, 1, store.usageEventCount(user.ID), "usage is still recorded")
	})
}

func TestHistory(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the user's analyses newest first", func(t *testing.T) {
		store := newFakeStore()
		store.clock = func() time.Time { return fixedNow }
		user := &domain.User{ID: uuid.New(), Tier: domain.TierPro}
		svc, _ := newAnalysisFixture(store)

		for _, ton := range []string{"neutral", "assertive"} {
			_, err := svc.Analyze(ctx, user, "Transcript for "+ton+".", ton)
			require.NoError(t, err)
		}

		history, err := svc.History(ctx, user.ID, 10)
		require.NoError(t, err)
		require.Len(t, history, 2)
		assert.Equal(t, domain.TonalityAssertive, history[0].Tonality)
		assert.Equal(t, domain.TonalityNeutral, history[1].Tonality)
	})

	t.Run("caps the limit", func(t *testing.T) {
		store := newFakeStore()
		svc, _ := newAnalysisFixture(store)

		history, err := svc.History(ctx, uuid.New(), 100000)
		require.NoError(t, err)
		assert.Empty(t, history)
	})

	t.Run("does not leak other users' analyses", func(t *testing.T) {
		store := newFakeStore()
		store.clock = func() time.Time { return fixedNow }
		alice := &domain.User{ID: uuid.New(), Tier: domain.TierPro}
		bob := &domain.User{ID: uuid.New(), Tier: domain.TierPro}
		svc, _ := newAnalysisFixture(store)

		_, err := svc.Analyze(ctx, alice, "Alice's speech.", "neutral")
		require.NoError(t, err)
		_, err = svc.Analyze(ctx, bob, "Bob's speech.", "neutral")
		require.NoError(t, err)

		history, err := svc.History(ctx, alice.ID, 10)
		require.NoError(t, err)
		require.Len(t, history, 1)
		assert.Equal(t, alice.ID, history[0].UserID)
	})
}
