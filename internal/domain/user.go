// Package domain contains core business types and interfaces.
//
// This file defines the User domain type and the tier/subscription enums.
// These types are separate from the repository models so business logic
// stays decoupled from the database layer.
package domain

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Tier is the user's entitlement level. It is the single authoritative
// field for feature gating; SubscriptionStatus is advisory only.
type Tier string

const (
	// TierUnset is the initial state for every newly created user. Once a
	// user leaves this state they never return to it.
	TierUnset Tier = "unset"
	TierFree  Tier = "free"
	TierPro   Tier = "pro"
)

// Valid reports whether t is a known tier value.
func (t Tier) Valid() bool {
	switch t {
	case TierUnset, TierFree, TierPro:
		return true
	default:
		return false
	}
}

// SubscriptionStatus mirrors the payment provider's view of the
// subscription. Enforcement never reads this field directly; tier and
// status may disagree transiently between webhook deliveries.
type SubscriptionStatus string

const (
	SubscriptionStatusNone     SubscriptionStatus = "none"
	SubscriptionStatusActive   SubscriptionStatus = "active"
	SubscriptionStatusCanceled SubscriptionStatus = "canceled"
	SubscriptionStatusPastDue  SubscriptionStatus = "past_due"
)

// User represents a registered user of the Tonr platform.
//
// Identity (credentials, password handling) lives with the external
// identity provider; the local record is keyed by the provider's subject
// and carries only display fields plus the entitlement state.
type User struct {
	ID                   uuid.UUID
	IdentitySubject      string // Subject claim from the identity provider token
	Email                string // Display only, never used for decisions
	Name                 string // Display only
	Tier                 Tier
	SubscriptionStatus   SubscriptionStatus
	StripeCustomerID     string // Set on first checkout; retained after cancellation
	StripeSubscriptionID string // Set by payment-completed events; retained after cancellation
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// HasSelectedTier reports whether the user has left the initial unset state.
func (u *User) HasSelectedTier() bool {
	return u.Tier == TierFree || u.Tier == TierPro
}

// IsPro reports whether the user is on the pro tier.
func (u *User) IsPro() bool {
	return u.Tier == TierPro
}

// DisplayName returns the user's name or email if name is empty.
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

// =============================================================================
// Conversion helpers from repository types
// =============================================================================

// NullStringValue safely extracts a string from sql.NullString.
func NullStringValue(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// ToNullString converts a string to sql.NullString.
func ToNullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: s, Valid: true}
}
