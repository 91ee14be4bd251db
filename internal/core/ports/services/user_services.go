package services

import (
	"context"

	"github.com/testaro/testaro_backend/internal/core/domain"
)

// UserReaderSvc defines read operations for user data.
type UserReaderSvc interface {
	// GetUserByID retrieves a user by ID.
	GetUserByID(ctx context.Context, userID string) (*domain.User, error)
}

// UserAuthSvc defines credential verification.
type UserAuthSvc interface {
	// AuthenticateUser verifies an email/password pair. Unknown email and
	// wrong password fail with the identical unauthorized error. The returned
	// user never carries the password hash.
	AuthenticateUser(ctx context.Context, email, password string) (*domain.User, error)
}

// UserRegistrationSvc defines local account registration.
type UserRegistrationSvc interface {
	// RegisterUser creates a local account. Duplicate emails fail with a
	// conflict error regardless of whether the duplicate was detected by the
	// cache, the store lookup, or a late unique-index violation.
	RegisterUser(ctx context.Context, email, password string) (*domain.User, error)
}

// UserOAuthSvc defines OAuth identity resolution.
type UserOAuthSvc interface {
	// FindOrCreateOAuthUser resolves a verified provider identity to a user.
	// It is idempotent for a fixed (provider, providerUserID). An email
	// already owned under a different provider is a conflict: identities are
	// never auto-linked.
	FindOrCreateOAuthUser(ctx context.Context, params domain.OAuthUserParams) (*domain.User, error)
}

// UserSvcFacade combines all user-related service interfaces.
type UserSvcFacade interface {
	UserReaderSvc
	UserAuthSvc
	UserRegistrationSvc
	UserOAuthSvc
}
