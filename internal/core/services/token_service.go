package services

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/testaro/testaro_backend/internal/apperrors"
	"github.com/testaro/testaro_backend/internal/core/domain"
	portssvc "github.com/testaro/testaro_backend/internal/core/ports/services"
	"github.com/testaro/testaro_backend/internal/platform/config"
	"github.com/testaro/testaro_backend/internal/utils"
)

// tokenService implements the TokenSvcFacade for dual-token issuance. The
// access and refresh tokens are signed with independent secrets so that
// possession of one secret (or token) cannot mint the other kind.
type tokenService struct {
	cfg *config.Config
}

// NewTokenService creates a new instance of tokenService.
func NewTokenService(cfg *config.Config) portssvc.TokenSvcFacade {
	return &tokenService{cfg: cfg}
}

var _ portssvc.TokenSvcFacade = (*tokenService)(nil)

// GeneratePair issues the access and refresh tokens concurrently. They are
// independent, so neither signing waits on the other.
func (s *tokenService) GeneratePair(ctx context.Context, userID string) (*domain.TokenPair, error) {
	// Fail fast rather than signing with an empty secret.
	if s.cfg.AccessTokenSecret == "" || s.cfg.RefreshTokenSecret == "" {
		return nil, apperrors.NewInternalServerError("token signing is not configured")
	}

	pair := &domain.TokenPair{
		AccessExpiresAt:  time.Now().Add(s.cfg.AccessTokenExpiryDuration),
		RefreshExpiresAt: time.Now().Add(s.cfg.RefreshTokenExpiryDuration),
	}

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		token, err := utils.GenerateJWT(userID, s.cfg.AccessTokenSecret, s.cfg.AccessTokenExpiryDuration, s.cfg.JWTIssuer)
		if err != nil {
			return err
		}
		pair.AccessToken = token
		return nil
	})
	g.Go(func() error {
		token, err := utils.GenerateJWT(userID, s.cfg.RefreshTokenSecret, s.cfg.RefreshTokenExpiryDuration, s.cfg.JWTIssuer)
		if err != nil {
			return err
		}
		pair.RefreshToken = token
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, apperrors.NewInternalServerError("failed to issue tokens").WithCause(err)
	}

	return pair, nil
}

// ValidateRefreshToken verifies a refresh token under the refresh secret and
// returns its subject. An access token presented here fails signature
// validation, since it was signed with the other secret.
func (s *tokenService) ValidateRefreshToken(ctx context.Context, tokenString string) (string, error) {
	if s.cfg.RefreshTokenSecret == "" {
		return "", apperrors.NewInternalServerError("token signing is not configured")
	}
	claims, err := utils.ParseAndValidateJWT(tokenString, s.cfg.RefreshTokenSecret)
	if err != nil {
		return "", apperrors.NewUnauthorizedError("invalid refresh token")
	}
	if claims.Subject == "" {
		return "", apperrors.NewUnauthorizedError("invalid refresh token")
	}
	return claims.Subject, nil
}
