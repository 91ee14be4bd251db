package domain

import "time"

// AuthProvider identifies how an account authenticates.
type AuthProvider string

const (
	ProviderLocal  AuthProvider = "local"
	ProviderGoogle AuthProvider = "google"
	ProviderGitHub AuthProvider = "github"
)

// User represents an identity record in the domain.
//
// PasswordHash and the reset* fields are privileged: repositories only
// populate them through the WithSecrets finders, and they are never
// serialized to callers.
type User struct {
	UserID      string       `json:"userID"` // Primary key (UUID), immutable once assigned
	Email       string       `json:"email"`  // Unique; stored case-sensitive, no normalization
	Provider    AuthProvider `json:"provider"`
	DisplayName string       `json:"displayName,omitempty"`
	AvatarURL   string       `json:"avatar,omitempty"`

	// PasswordHash is set only for locally-registered accounts. OAuth-only
	// accounts carry nil here.
	PasswordHash *string `json:"-"`

	// ProviderUserID is the external identity provider's subject id; only set
	// when Provider != local. (Provider, ProviderUserID) is unique when set.
	ProviderUserID *string `json:"-"`

	// Pending password-reset state. ResetTokenHash holds a one-way hash of
	// the outstanding token; the plaintext is never persisted. At most one
	// non-expired token exists per user; issuing a new one overwrites it.
	ResetTokenHash      *string    `json:"-"`
	ResetTokenExpiresAt *time.Time `json:"-"`
	ResetAttempts       int        `json:"-"`
	LastResetRequestAt  *time.Time `json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// IsLocal reports whether the account authenticates with a password.
func (u *User) IsLocal() bool {
	return u.Provider == ProviderLocal
}

// OAuthUserParams is the verified identity produced by a provider-specific
// verification step (Google ID token validation, GitHub code exchange).
// Email and ProviderUserID are guaranteed non-empty by the verifiers.
type OAuthUserParams struct {
	Provider       AuthProvider
	ProviderUserID string
	Email          string
	DisplayName    string
	AvatarURL      string
}
