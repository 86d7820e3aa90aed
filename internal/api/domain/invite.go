package domain

import "time"

// InviteCode is a one-time credential that pre-authorises registration and
// fixes the registrant's role.
//
// Lifecycle: active -> redeemed | expired | deactivated. The three terminal
// states never revert. Expiry is detected lazily at redemption time rather
// than stored.
type InviteCode struct {
	ID        string
	Code      string // random, unguessable, the redemption key
	Role      Role   // granted to whoever redeems the code, immutable
	CreatedBy string
	CreatedAt time.Time
	ExpiresAt time.Time
	UsedBy    *string // nil until redeemed, then permanently set
	UsedAt    *time.Time
	IsActive  bool
}

// Redeemable reports whether the code can still create an account at the
// given instant.
func (i InviteCode) Redeemable(now time.Time) bool {
	return i.IsActive && i.UsedBy == nil && !now.After(i.ExpiresAt)
}

// Status derives the lifecycle state for display purposes.
func (i InviteCode) Status(now time.Time) string {
	switch {
	case i.UsedBy != nil:
		return "redeemed"
	case !i.IsActive:
		return "deactivated"
	case now.After(i.ExpiresAt):
		return "expired"
	default:
		return "active"
	}
}

// InviteWithNames is an InviteCode enriched with display names for listings.
type InviteWithNames struct {
	InviteCode

	CreatedByName string
	UsedByName    string
}
