package auth

// Package auth contains domain-level types for identity, roles, and
// subscription tiers. It is pure and free of framework/adapter concerns.

// Role represents an application's authorization role.
// Keep string form for easy persistence and JSON payloads.
// Valid values are defined as constants below.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Tier represents a subscription tier. Tiers are totally ordered:
// free < standard < enterprise.
type Tier string

const (
	TierFree       Tier = "free"
	TierStandard   Tier = "standard"
	TierEnterprise Tier = "enterprise"
)

// Rank returns the position of the tier in the total order, or -1 for an
// unknown tier so that unknown never satisfies any requirement.
func (t Tier) Rank() int {
	switch t {
	case TierFree:
		return 0
	case TierStandard:
		return 1
	case TierEnterprise:
		return 2
	default:
		return -1
	}
}

// Valid reports whether the tier is one of the known values.
func (t Tier) Valid() bool { return t.Rank() >= 0 }

// User is the canonical user record after normalization. Role and
// SubscriptionTier are always populated; the backend is allowed to omit them
// but the console never holds a user without both.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	// CreatedAt is passed through verbatim; backend timestamp formats drift.
	CreatedAt        string `json:"created_at"`
	IsActive         bool   `json:"is_active"`
	IsAdmin          bool   `json:"is_admin"`
	Role             Role   `json:"role"`
	SubscriptionTier Tier   `json:"subscription_tier"`
	APIKeyCount      int    `json:"api_key_count"`
}

// Normalized returns a copy of the user with the deterministic defaults
// applied: a missing role derives from the legacy IsAdmin flag and a missing
// tier defaults to free. The same rule runs after login, registration, and
// session verification.
func (u User) Normalized() User {
	if u.Role == "" {
		if u.IsAdmin {
			u.Role = RoleAdmin
		} else {
			u.Role = RoleUser
		}
	}
	if u.SubscriptionTier == "" {
		u.SubscriptionTier = TierFree
	}
	return u
}

// NormalizedForRegistration returns a copy of the user as a fresh account:
// role is forced to user and tier to free regardless of any hints in the raw
// payload. New accounts are never auto-admin.
func (u User) NormalizedForRegistration() User {
	u.Role = RoleUser
	u.SubscriptionTier = TierFree
	return u
}

// Session is the authenticated identity plus the opaque bearer token for one
// browser profile. The durable store mirrors it; the backend stays
// authoritative.
type Session struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

// IsAdmin reports whether the session carries admin authority. Both the
// normalized role and the legacy flag are honored, for sessions persisted
// before role normalization existed.
func (s *Session) IsAdmin() bool {
	if s == nil {
		return false
	}
	return s.User.Role == RoleAdmin || s.User.IsAdmin
}

// HasRole reports whether the session satisfies the required role. Admin
// satisfies every role check; otherwise only an exact match passes. A nil
// session never satisfies anything.
func (s *Session) HasRole(required Role) bool {
	if s == nil {
		return false
	}
	if s.IsAdmin() {
		return true
	}
	return s.User.Role == required
}

// TierSatisfies reports whether the session's subscription tier ranks at or
// above the minimum. A nil session never satisfies anything.
func (s *Session) TierSatisfies(minimum Tier) bool {
	if s == nil {
		return false
	}
	return s.User.SubscriptionTier.Rank() >= minimum.Rank()
}
