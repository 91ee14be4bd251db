package repositories

import (
	"context"
	"time"

	"github.com/testaro/testaro_backend/internal/core/domain"
)

// UserReader defines the public view of user data: secret columns
// (password hash, reset-token state) are never populated by these finders.
type UserReader interface {
	// FindUserByID retrieves a specific user by their ID.
	FindUserByID(ctx context.Context, userID string) (*domain.User, error)

	// FindUserByEmail retrieves a user by exact email match.
	FindUserByEmail(ctx context.Context, email string) (*domain.User, error)

	// FindUserByProviderDetails retrieves a user by exact
	// (provider, providerUserID) match.
	FindUserByProviderDetails(ctx context.Context, provider domain.AuthProvider, providerUserID string) (*domain.User, error)
}

// UserSecretsReader defines the privileged view: finders that additionally
// populate the password hash and pending-reset fields. Only credential
// verification and the password-reset protocol may use it.
type UserSecretsReader interface {
	// FindUserByEmailWithSecrets retrieves a user by exact email match,
	// including the password hash and reset fields.
	FindUserByEmailWithSecrets(ctx context.Context, email string) (*domain.User, error)

	// FindUserByResetTokenHash retrieves the user whose pending reset-token
	// hash matches AND whose token expiry is after now, in a single lookup.
	// An expired token is indistinguishable from an unknown one.
	FindUserByResetTokenHash(ctx context.Context, tokenHash string, now time.Time) (*domain.User, error)
}

// UserWriter defines write operations for user data.
type UserWriter interface {
	// SaveUser persists a new user. A unique-index violation on email or on
	// (provider, provider_user_id) is reported as apperrors.ErrDuplicate.
	SaveUser(ctx context.Context, user domain.User) error

	// SetResetToken stores the hash and expiry of a newly-issued reset token,
	// overwriting any prior pending reset, together with the rolling-window
	// counter state.
	SetResetToken(ctx context.Context, userID string, tokenHash string, expiresAt time.Time, attempts int, requestedAt time.Time) error

	// UpdatePasswordAndClearResetToken persists a new password hash and
	// clears all four reset fields in the same update. This is what makes a
	// redeemed token single-use.
	UpdatePasswordAndClearResetToken(ctx context.Context, userID string, passwordHash string) error
}

// UserRepositoryFacade combines all user-related repository interfaces.
type UserRepositoryFacade interface {
	UserReader
	UserSecretsReader
	UserWriter
}
