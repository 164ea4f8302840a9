package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role is the access level of an account.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Status is the lifecycle state of an account. Banned accounts can never
// authenticate; inactive accounts are freshly registered credential accounts
// that have not been activated yet.
type Status string

const (
	StatusInactive Status = "inactive"
	StatusActive   Status = "active"
	StatusBanned   Status = "banned"
)

// Default location values applied when IP geolocation is unavailable.
const (
	DefaultCountryCode = "KE"
	DefaultCountry     = "Kenya"
)

// User represents the account record.
type User struct {
	ID           uuid.UUID
	Email        string // unique, stored lowercase
	Name         string
	Image        *string // profile image URL (provider avatar or uploaded)
	CountryCode  string  // ISO alpha-2
	Country      *string // full English country name
	Role         Role
	Status       Status
	PasswordHash *string // nil for OAuth-only accounts
	ReferralCode string  // unique, 8 lowercase alphanumerics
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasPassword reports whether credential sign-in is possible for the account.
func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}

// IsBanned reports whether the account is blocked from authenticating.
func (u *User) IsBanned() bool {
	return u.Status == StatusBanned
}

// Identity provider constants.
const (
	ProviderGitHub = "github"

	// IdentityTypeOAuth is the provider type for OAuth-based identities.
	IdentityTypeOAuth = "oauth"
)

// LinkedIdentity binds one external-provider account to exactly one user.
// The pair (Provider, ProviderAccountID) is unique across all users.
// Provider tokens are stored verbatim for potential provider API use.
type LinkedIdentity struct {
	ID                uuid.UUID
	UserID            uuid.UUID
	Type              string // "oauth"
	Provider          string
	ProviderAccountID string
	AccessToken       *string
	RefreshToken      *string
	ExpiresAt         *int64 // unix seconds
	TokenType         *string
	Scope             *string
	IDToken           *string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Identity is the normalized payload produced by a successful authentication.
// Optional user fields are already defaulted so downstream consumers (session
// assembly, display) never see zero values.
type Identity struct {
	ID           uuid.UUID
	Email        string
	Name         string
	Image        string
	Role         Role
	Status       Status
	Country      string // ISO alpha-2 code carried in session claims
	ReferralCode string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// SessionUser is the session view reconstructed from token claims on each
// request. CreatedAt/UpdatedAt are presentation read-timestamps stamped at
// reconstruction time, not authoritative record timestamps.
type SessionUser struct {
	ID           string
	Email        string
	Name         string
	Image        string
	Role         Role
	Status       Status
	Country      string
	ReferralCode string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsAdmin reports whether the session belongs to an admin account.
func (s *SessionUser) IsAdmin() bool {
	return s.Role == RoleAdmin
}
