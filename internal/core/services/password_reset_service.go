package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/testaro/testaro_backend/internal/apperrors"
	"github.com/testaro/testaro_backend/internal/core/ports"
	portsrepo "github.com/testaro/testaro_backend/internal/core/ports/repositories"
	portssvc "github.com/testaro/testaro_backend/internal/core/ports/services"
	"github.com/testaro/testaro_backend/internal/platform/config"
	"github.com/testaro/testaro_backend/internal/utils"
)

const (
	// resetAcknowledgement is returned from the request phase for every
	// non-rate-limited outcome: success, unknown email, OAuth-only account,
	// and even internal failures. The uniform response surface is the sole
	// defense against email enumeration.
	resetAcknowledgement = "If an account with that email exists, a password reset link has been sent."

	resetSuccessMessage = "Your password has been reset successfully."

	invalidResetTokenMsg = "invalid or expired reset token"

	// resetTokenBytes gives 256 bits of token entropy (64 hex chars).
	resetTokenBytes = 32
)

// passwordResetService implements the password-reset protocol: token
// issuance with a per-account rolling-window rate limit, and single-use
// redemption.
type passwordResetService struct {
	userRepo portsrepo.UserRepositoryFacade
	notifier ports.Notifier
	cfg      *config.Config
	logger   *slog.Logger
	now      func() time.Time
}

// NewPasswordResetService creates a new instance of passwordResetService.
func NewPasswordResetService(
	userRepo portsrepo.UserRepositoryFacade,
	notifier ports.Notifier,
	cfg *config.Config,
	logger *slog.Logger,
) portssvc.PasswordResetSvcFacade {
	return &passwordResetService{
		userRepo: userRepo,
		notifier: notifier,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

var _ portssvc.PasswordResetSvcFacade = (*passwordResetService)(nil)

// ForgotPassword runs the request phase of the reset protocol. Apart from the
// rate limit, every outcome returns the identical acknowledgement: internal
// failures are logged and swallowed because a differing response would reveal
// account existence.
func (s *passwordResetService) ForgotPassword(ctx context.Context, email string) (string, error) {
	user, err := s.userRepo.FindUserByEmailWithSecrets(ctx, email)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.logger.ErrorContext(ctx, "reset request lookup failed", slog.String("error", err.Error()))
		}
		return resetAcknowledgement, nil
	}
	if !user.IsLocal() {
		// Nothing to reset; answered identically to an unknown email so the
		// response does not reveal which sign-in method an account uses.
		return resetAcknowledgement, nil
	}

	now := s.now()
	withinWindow := user.LastResetRequestAt != nil && now.Sub(*user.LastResetRequestAt) < s.cfg.ResetRequestWindow
	if withinWindow && user.ResetAttempts >= s.cfg.ResetMaxRequests {
		// The one visibly different outcome. The counter is not advanced on
		// rejection; the window restarts once a request arrives more than a
		// full window after the anchoring one.
		return "", apperrors.NewTooManyRequestsError("too many password reset requests, please try again later")
	}
	attempts := 1
	if withinWindow {
		attempts = user.ResetAttempts + 1
	}

	token, err := utils.GenerateSecureRandomString(resetTokenBytes)
	if err != nil {
		s.logger.ErrorContext(ctx, "reset token generation failed", slog.String("error", err.Error()))
		return resetAcknowledgement, nil
	}
	expiresAt := now.Add(s.cfg.ResetTokenTTL)

	// Only the hash is persisted; a new token overwrites and thereby
	// invalidates any prior pending one.
	if err := s.userRepo.SetResetToken(ctx, user.UserID, utils.HashResetToken(token), expiresAt, attempts, now); err != nil {
		s.logger.ErrorContext(ctx, "reset token persist failed", slog.String("error", err.Error()))
		return resetAcknowledgement, nil
	}

	// The plaintext token travels only inside the reset link.
	resetURL := fmt.Sprintf("%s/reset-password?token=%s", s.cfg.FrontendBaseURL, token)
	if err := s.notifier.Send(ctx, user.Email, ports.NotificationPasswordReset, map[string]string{
		"resetURL":      resetURL,
		"expiryMinutes": strconv.Itoa(int(s.cfg.ResetTokenTTL / time.Minute)),
	}); err != nil {
		// The token already exists and will work if it reaches the user
		// through another channel; the caller must not learn the email
		// failed.
		s.logger.ErrorContext(ctx, "reset email dispatch failed", slog.String("error", err.Error()))
	}

	return resetAcknowledgement, nil
}

// ResetPassword redeems a reset token. The lookup matches the token hash and
// a still-future expiry in one step, so an expired token is indistinguishable
// from a wrong one, and the single update that stores the new password also
// clears the reset fields, making the token single-use.
func (s *passwordResetService) ResetPassword(ctx context.Context, token, newPassword string) (string, error) {
	user, err := s.userRepo.FindUserByResetTokenHash(ctx, utils.HashResetToken(token), s.now())
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return "", apperrors.NewBadRequestError(invalidResetTokenMsg)
		}
		return "", apperrors.NewInternalServerError("failed to reset password").WithCause(err)
	}

	hash, err := utils.HashPassword(newPassword)
	if err != nil {
		return "", apperrors.NewInternalServerError("failed to reset password").WithCause(err)
	}

	if err := s.userRepo.UpdatePasswordAndClearResetToken(ctx, user.UserID, hash); err != nil {
		return "", apperrors.NewInternalServerError("failed to reset password").WithCause(err)
	}

	if err := s.notifier.Send(ctx, user.Email, ports.NotificationPasswordResetDone, map[string]string{
		"email": user.Email,
	}); err != nil {
		s.logger.WarnContext(ctx, "reset confirmation email dispatch failed", slog.String("error", err.Error()))
	}

	return resetSuccessMessage, nil
}
