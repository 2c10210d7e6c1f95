// Package domain contains core business types and interfaces.
//
// This file defines the entitlement policy: the pure decision function that
// admits or denies an analysis request for a given tier, tonality, and
// same-day usage count. It has no side effects and no dependencies on the
// store, so it is trivially unit-testable.
package domain

// EntitlementPolicy holds the limits applied to the free tier. It is
// constructed once from configuration and passed to the evaluator, so the
// policy can be tested against different limits.
type EntitlementPolicy struct {
	// FreeDailyLimit is the number of analyses a free-tier user may run per
	// calendar day.
	FreeDailyLimit int64

	// FreeTonality is the only tonality available to the free tier.
	FreeTonality Tonality
}

// DefaultEntitlementPolicy matches the shipped product configuration.
func DefaultEntitlementPolicy() EntitlementPolicy {
	return EntitlementPolicy{
		FreeDailyLimit: 3,
		FreeTonality:   TonalityNeutral,
	}
}

// Decision is the result of evaluating an analysis request against the
// policy. Either Allowed is true, or Reason carries one of the denial
// reason constants.
type Decision struct {
	Allowed bool
	Reason  string
}

// Admit is the allowing decision.
var Admit = Decision{Allowed: true}

// Deny constructs a denying decision with the given reason.
func Deny(reason string) Decision {
	return Decision{Reason: reason}
}

// Evaluate decides whether an analysis request is admitted.
//
// Rules apply in order; the first match wins:
//  1. Tier not yet selected: denied regardless of anything else.
//  2. Free tier over the daily limit: denied. The quota check deliberately
//     precedes the tonality check so a user who is both over quota and
//     requesting a paid tonality sees the quota denial, the more
//     fundamental blocker.
//  3. Free tier requesting a non-free tonality: denied.
//  4. Otherwise admitted (pro is unrestricted).
//
// todayUsed is the count of the user's usage events within the current
// calendar day; counting the window is the caller's job.
func (p EntitlementPolicy) Evaluate(tier Tier, tonality Tonality, todayUsed int64) Decision {
	if tier != TierFree && tier != TierPro {
		return Deny(ReasonTierNotSelected)
	}
	if tier == TierFree && todayUsed >= p.FreeDailyLimit {
		return Deny(ReasonDailyLimitReached)
	}
	if tier == TierFree && tonality != p.FreeTonality {
		return Deny(ReasonTonalityNotAllowed)
	}
	return Admit
}

// Err converts a denying decision into a domain error for the given
// operation. Returns nil for an admitting decision.
func (d Decision) Err(op string) *Error {
	if d.Allowed {
		return nil
	}
	return &Error{
		Code:    EFORBIDDEN,
		Reason:  d.Reason,
		Op:      op,
		Message: denialMessage(d.Reason),
	}
}

func denialMessage(reason string) string {
	switch reason {
	case ReasonTierNotSelected:
		return "Select a plan before running an analysis."
	case ReasonDailyLimitReached:
		return "You've reached today's free analysis limit. Upgrade to Pro for unlimited sessions."
	case ReasonTonalityNotAllowed:
		return "This tonality is available on the Pro plan. The free plan includes the neutral tonality."
	default:
		return "This operation is not permitted."
	}
}

// UsageSummary reports a user's standing against the policy, as exposed by
// the usage endpoint. For pro users Unlimited is true and the numeric
// limit fields are meaningless.
type UsageSummary struct {
	Tier      Tier
	Used      int64
	Limit     int64
	Remaining int64
	Unlimited bool
	CanUse    bool
}
