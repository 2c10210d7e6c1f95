package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvaluate_UnsetTierAlwaysDenied(t *testing.T) {
	policy := DefaultEntitlementPolicy()

	// Tier selection gates everything, regardless of tonality or usage.
	for _, tonality := range Tonalities {
		for _, used := range []int64{0, 2, 3, 500} {
			d := policy.Evaluate(TierUnset, tonality, used)
			assert.False(t, d.Allowed, "tonality=%s used=%d", tonality, used)
			assert.Equal(t, ReasonTierNotSelected, d.Reason)
		}
	}
}

func TestEvaluate_FreeTierQuotaBoundary(t *testing.T) {
	policy := DefaultEntitlementPolicy()

	tests := []struct {
		name       string
		used       int64
		wantAllow  bool
		wantReason string
	}{
		{"no usage", 0, true, ""},
		{"one under limit", 2, true, ""},
		{"at limit", 3, false, ReasonDailyLimitReached},
		{"over limit", 4, false, ReasonDailyLimitReached},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := policy.Evaluate(TierFree, TonalityNeutral, tt.used)
			assert.Equal(t, tt.wantAllow, d.Allowed)
			assert.Equal(t, tt.wantReason, d.Reason)
		})
	}
}

func TestEvaluate_FreeTierTonalityGate(t *testing.T) {
	policy := DefaultEntitlementPolicy()

	d := policy.Evaluate(TierFree, TonalityAssertive, 0)
	assert.False(t, d.Allowed)
	assert.Equal(t, ReasonTonalityNotAllowed, d.Reason)

	d = policy.Evaluate(TierFree, TonalityComposed, 1)
	assert.False(t, d.Allowed)
	assert.Equal(t, ReasonTonalityNotAllowed, d.Reason)
}

func TestEvaluate_QuotaCheckPrecedesTonalityCheck(t *testing.T) {
	policy := DefaultEntitlementPolicy()

	// A free user who is both over quota and requesting a paid tonality
	// must see the quota denial.
	d := policy.Evaluate(TierFree, TonalityAssertive, 3)
	assert.False(t, d.Allowed)
	assert.Equal(t, ReasonDailyLimitReached, d.Reason)
}

func TestEvaluate_ProUnrestricted(t *testing.T) {
	policy := DefaultEntitlementPolicy()

	for _, tonality := range Tonalities {
		for _, used := range []int64{0, 3, 1_000_000} {
			d := policy.Evaluate(TierPro, tonality, used)
			assert.True(t, d.Allowed, "tonality=%s used=%d", tonality, used)
		}
	}
}

func TestEvaluate_ConfigurableLimit(t *testing.T) {
	policy := EntitlementPolicy{FreeDailyLimit: 10, FreeTonality: TonalityComposed}

	assert.True(t, policy.Evaluate(TierFree, TonalityComposed, 9).Allowed)
	assert.Equal(t, ReasonDailyLimitReached, policy.Evaluate(TierFree, TonalityComposed, 10).Reason)
	assert.Equal(t, ReasonTonalityNotAllowed, policy.Evaluate(TierFree, TonalityNeutral, 0).Reason)
}

func TestDecision_Err(t *testing.T) {
	assert.Nil(t, Admit.Err("entitlement.check"))

	err := Deny(ReasonDailyLimitReached).Err("entitlement.check")
	assert.NotNil(t, err)
	assert.Equal(t, EFORBIDDEN, err.Code)
	assert.Equal(t, ReasonDailyLimitReached, err.Reason)
	assert.Equal(t, "entitlement.check", err.Op)
	assert.NotEmpty(t, err.Message)
}

func TestParseTonality(t *testing.T) {
	for _, tonality := range Tonalities {
		got, ok := ParseTonality(string(tonality))
		assert.True(t, ok)
		assert.Equal(t, tonality, got)
	}

	_, ok := ParseTonality("sarcastic")
	assert.False(t, ok)

	// Tonalities are case-sensitive on the wire.
	_, ok = ParseTonality("Neutral")
	assert.False(t, ok)
}
