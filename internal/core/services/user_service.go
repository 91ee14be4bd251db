package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/testaro/testaro_backend/internal/apperrors"
	"github.com/testaro/testaro_backend/internal/core/domain"
	"github.com/testaro/testaro_backend/internal/core/ports"
	portsrepo "github.com/testaro/testaro_backend/internal/core/ports/repositories"
	portssvc "github.com/testaro/testaro_backend/internal/core/ports/services"
	"github.com/testaro/testaro_backend/internal/platform/config"
	"github.com/testaro/testaro_backend/internal/utils"
)

const invalidCredentialsMsg = "invalid email or password"

// userService implements the UserSvcFacade: credential verification, local
// registration with the duplicate-registration cache fast-path, and OAuth
// identity resolution.
type userService struct {
	userRepo    portsrepo.UserRepositoryFacade
	signupGuard ports.SignupGuardCache
	notifier    ports.Notifier
	cfg         *config.Config
	logger      *slog.Logger
}

// NewUserService creates a new instance of userService.
func NewUserService(
	userRepo portsrepo.UserRepositoryFacade,
	signupGuard ports.SignupGuardCache,
	notifier ports.Notifier,
	cfg *config.Config,
	logger *slog.Logger,
) portssvc.UserSvcFacade {
	return &userService{
		userRepo:    userRepo,
		signupGuard: signupGuard,
		notifier:    notifier,
		cfg:         cfg,
		logger:      logger,
	}
}

var _ portssvc.UserSvcFacade = (*userService)(nil)

// GetUserByID retrieves a user through the public repository view.
func (s *userService) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("user not found")
		}
		return nil, apperrors.NewInternalServerError("failed to retrieve user").WithCause(err)
	}
	return user, nil
}

// AuthenticateUser verifies an email/password pair. Unknown email and wrong
// password are deliberately reported with the identical error to avoid
// account enumeration.
func (s *userService) AuthenticateUser(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.userRepo.FindUserByEmailWithSecrets(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewUnauthorizedError(invalidCredentialsMsg)
		}
		s.logger.ErrorContext(ctx, "user lookup failed during login", slog.String("error", err.Error()))
		return nil, apperrors.NewInternalServerError("failed to authenticate").WithCause(err)
	}

	// OAuth-only accounts have no password hash; they fail exactly like a
	// wrong password would.
	if user.PasswordHash == nil || !utils.CheckPasswordHash(password, *user.PasswordHash) {
		return nil, apperrors.NewUnauthorizedError(invalidCredentialsMsg)
	}

	stripSecrets(user)
	return user, nil
}

// RegisterUser creates a local account. The duplicate-registration cache is a
// best-effort fast path; the store's unique index stays authoritative, so a
// lost race still surfaces as the same conflict.
func (s *userService) RegisterUser(ctx context.Context, email, password string) (*domain.User, error) {
	seen, err := s.signupGuard.Seen(ctx, email)
	if err != nil {
		// Cache trouble degrades to a store-backed check only.
		s.logger.WarnContext(ctx, "signup guard lookup failed", slog.String("error", err.Error()))
	} else if seen {
		return nil, apperrors.NewConflictError("an account with this email already exists")
	}

	existing, err := s.userRepo.FindUserByEmail(ctx, email)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, apperrors.NewInternalServerError("failed to register").WithCause(err)
	}
	if existing != nil {
		return nil, apperrors.NewConflictError("an account with this email already exists")
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, apperrors.NewInternalServerError("failed to register").WithCause(err)
	}

	now := time.Now()
	user := domain.User{
		UserID:       uuid.NewString(),
		Email:        email,
		Provider:     domain.ProviderLocal,
		PasswordHash: &hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.userRepo.SaveUser(ctx, user); err != nil {
		switch {
		case errors.Is(err, apperrors.ErrDuplicate):
			// Lost race against a concurrent signup; same outcome as the
			// early check.
			return nil, apperrors.NewConflictError("an account with this email already exists")
		case errors.Is(err, apperrors.ErrValidation):
			return nil, apperrors.NewBadRequestError("invalid registration data")
		default:
			return nil, apperrors.NewInternalServerError("failed to register").WithCause(err)
		}
	}

	if err := s.signupGuard.Remember(ctx, email, s.cfg.SignupGuardTTL); err != nil {
		s.logger.WarnContext(ctx, "signup guard write failed", slog.String("error", err.Error()))
	}
	if err := s.notifier.Send(ctx, user.Email, ports.NotificationWelcome, map[string]string{
		"email": user.Email,
	}); err != nil {
		s.logger.WarnContext(ctx, "welcome email dispatch failed", slog.String("error", err.Error()))
	}

	stripSecrets(&user)
	return &user, nil
}

// FindOrCreateOAuthUser resolves a verified provider identity to a user.
// Repeat logins for a known (provider, providerUserID) return the stored
// record as-is; upstream profile changes are not re-pulled.
func (s *userService) FindOrCreateOAuthUser(ctx context.Context, params domain.OAuthUserParams) (*domain.User, error) {
	user, err := s.userRepo.FindUserByProviderDetails(ctx, params.Provider, params.ProviderUserID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, apperrors.NewInternalServerError("failed to resolve identity").WithCause(err)
	}

	// No record for this provider identity. An existing account under the
	// same email necessarily uses a different sign-in method; refusing to
	// auto-link prevents account takeover via a spoofed email at another
	// provider.
	existing, err := s.userRepo.FindUserByEmail(ctx, params.Email)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, apperrors.NewInternalServerError("failed to resolve identity").WithCause(err)
	}
	if existing != nil {
		return nil, apperrors.NewConflictError("an account with this email already exists; sign in with your original method")
	}

	now := time.Now()
	providerUserID := params.ProviderUserID
	created := domain.User{
		UserID:         uuid.NewString(),
		Email:          params.Email,
		Provider:       params.Provider,
		ProviderUserID: &providerUserID,
		DisplayName:    params.DisplayName,
		AvatarURL:      params.AvatarURL,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.userRepo.SaveUser(ctx, created); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			// Lost race against a concurrent identical request or a
			// concurrent signup under the same email.
			return nil, apperrors.NewConflictError("an account with this email already exists; sign in with your original method")
		}
		return nil, apperrors.NewInternalServerError("failed to resolve identity").WithCause(err)
	}
	return &created, nil
}

// stripSecrets clears the privileged fields before a user leaves the service
// layer on a success path.
func stripSecrets(u *domain.User) {
	u.PasswordHash = nil
	u.ResetTokenHash = nil
	u.ResetTokenExpiresAt = nil
	u.ResetAttempts = 0
	u.LastResetRequestAt = nil
}
