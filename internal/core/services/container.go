package services

import (
	"log/slog"

	"github.com/testaro/testaro_backend/internal/core/ports"
	portsrepo "github.com/testaro/testaro_backend/internal/core/ports/repositories"
	portssvc "github.com/testaro/testaro_backend/internal/core/ports/services"
	"github.com/testaro/testaro_backend/internal/platform/config"
)

// NewServiceContainer wires up all application services.
func NewServiceContainer(
	cfg *config.Config,
	userRepo portsrepo.UserRepositoryFacade,
	signupGuard ports.SignupGuardCache,
	notifier ports.Notifier,
	logger *slog.Logger,
) *portssvc.ServiceContainer {
	return &portssvc.ServiceContainer{
		User:           NewUserService(userRepo, signupGuard, notifier, cfg, logger),
		Token:          NewTokenService(cfg),
		PasswordReset:  NewPasswordResetService(userRepo, notifier, cfg, logger),
		GoogleVerifier: NewGoogleOAuthVerifierService(cfg),
		GitHubVerifier: NewGitHubOAuthVerifierService(cfg),
	}
}
