package services

import (
	"context"

	"github.com/testaro/testaro_backend/internal/core/domain"
)

// TokenSvcFacade defines the interface for session-token management.
type TokenSvcFacade interface {
	// GeneratePair issues an access token and a refresh token for the given
	// subject, signed concurrently with two independent secrets. It fails
	// fast with an internal error if either secret is unconfigured.
	GeneratePair(ctx context.Context, userID string) (*domain.TokenPair, error)

	// ValidateRefreshToken verifies a refresh token under the refresh secret
	// and returns its subject. Access tokens do not validate here.
	ValidateRefreshToken(ctx context.Context, tokenString string) (string, error)
}

// PasswordResetSvcFacade defines the interface for the password-reset
// protocol.
type PasswordResetSvcFacade interface {
	// ForgotPassword runs the request phase. It returns the same generic
	// acknowledgement whether or not the email maps to a resettable account;
	// the only visible failure is the rolling-window rate limit.
	ForgotPassword(ctx context.Context, email string) (string, error)

	// ResetPassword redeems a single-use reset token and sets the new
	// password. Invalid and expired tokens fail identically.
	ResetPassword(ctx context.Context, token, newPassword string) (string, error)
}

// OAuthVerifierSvcFacade exchanges a provider credential (authorization code)
// for a verified identity. Implementations must fail when the provider does
// not return a verifiable email.
type OAuthVerifierSvcFacade interface {
	VerifyAuthorizationCode(ctx context.Context, code string) (*domain.OAuthUserParams, error)
}
