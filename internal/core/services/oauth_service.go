package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/idtoken"

	"github.com/testaro/testaro_backend/internal/apperrors"
	"github.com/testaro/testaro_backend/internal/core/domain"
	portssvc "github.com/testaro/testaro_backend/internal/core/ports/services"
	"github.com/testaro/testaro_backend/internal/platform/config"
)

// googleOAuthVerifierService exchanges a Google authorization code for a
// verified identity. Verification happens on the ID token, not the userinfo
// endpoint, so the email claim is cryptographically bound to the provider.
type googleOAuthVerifierService struct {
	cfg          *config.Config
	oauth2Config *oauth2.Config
}

// NewGoogleOAuthVerifierService creates a new instance of googleOAuthVerifierService.
func NewGoogleOAuthVerifierService(cfg *config.Config) portssvc.OAuthVerifierSvcFacade {
	return &googleOAuthVerifierService{
		cfg: cfg,
		oauth2Config: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			Scopes:       []string{"https://www.googleapis.com/auth/userinfo.email", "https://www.googleapis.com/auth/userinfo.profile"},
			Endpoint:     google.Endpoint,
		},
	}
}

var _ portssvc.OAuthVerifierSvcFacade = (*googleOAuthVerifierService)(nil)

// VerifyAuthorizationCode exchanges the code, validates the returned ID token
// and extracts the verified identity from its claims.
func (s *googleOAuthVerifierService) VerifyAuthorizationCode(ctx context.Context, code string) (*domain.OAuthUserParams, error) {
	if s.cfg.GoogleClientID == "" {
		return nil, apperrors.NewInternalServerError("google OAuth is not configured")
	}

	token, err := s.oauth2Config.Exchange(ctx, code)
	if err != nil {
		return nil, apperrors.NewBadRequestError("invalid or expired authorization code").WithCause(err)
	}

	idTokenString, ok := token.Extra("id_token").(string)
	if !ok || idTokenString == "" {
		return nil, apperrors.NewUnauthorizedError("google did not return an ID token")
	}

	payload, err := idtoken.Validate(ctx, idTokenString, s.cfg.GoogleClientID)
	if err != nil {
		return nil, apperrors.NewUnauthorizedError("invalid google ID token").WithCause(err)
	}

	email, _ := payload.Claims["email"].(string)
	emailVerified, _ := payload.Claims["email_verified"].(bool)
	name, _ := payload.Claims["name"].(string)
	picture, _ := payload.Claims["picture"].(string)

	if payload.Subject == "" || email == "" || !emailVerified {
		return nil, apperrors.NewUnauthorizedError("google did not return a verified email")
	}

	return &domain.OAuthUserParams{
		Provider:       domain.ProviderGoogle,
		ProviderUserID: payload.Subject,
		Email:          email,
		DisplayName:    name,
		AvatarURL:      picture,
	}, nil
}

// githubOAuthVerifierService exchanges a GitHub authorization code for a
// verified identity via the GitHub REST API.
type githubOAuthVerifierService struct {
	cfg          *config.Config
	oauth2Config *oauth2.Config
	apiBaseURL   string
}

// NewGitHubOAuthVerifierService creates a new instance of githubOAuthVerifierService.
func NewGitHubOAuthVerifierService(cfg *config.Config) portssvc.OAuthVerifierSvcFacade {
	return &githubOAuthVerifierService{
		cfg: cfg,
		oauth2Config: &oauth2.Config{
			ClientID:     cfg.GitHubClientID,
			ClientSecret: cfg.GitHubClientSecret,
			RedirectURL:  cfg.GitHubRedirectURL,
			Scopes:       []string{"read:user", "user:email"},
			Endpoint:     github.Endpoint,
		},
		apiBaseURL: "https://api.github.com",
	}
}

var _ portssvc.OAuthVerifierSvcFacade = (*githubOAuthVerifierService)(nil)

// VerifyAuthorizationCode exchanges the code and fetches the user profile.
// GitHub may keep the profile email private, in which case the primary
// verified email is fetched separately; without one the flow fails.
func (s *githubOAuthVerifierService) VerifyAuthorizationCode(ctx context.Context, code string) (*domain.OAuthUserParams, error) {
	if s.cfg.GitHubClientID == "" {
		return nil, apperrors.NewInternalServerError("github OAuth is not configured")
	}

	token, err := s.oauth2Config.Exchange(ctx, code)
	if err != nil {
		return nil, apperrors.NewBadRequestError("invalid or expired authorization code").WithCause(err)
	}

	client := s.oauth2Config.Client(ctx, token)

	var info domain.GitHubUserInfo
	if err := s.getJSON(client, s.apiBaseURL+"/user", &info); err != nil {
		return nil, apperrors.NewInternalServerError("failed to fetch github profile").WithCause(err)
	}
	if info.ID == 0 {
		return nil, apperrors.NewUnauthorizedError("github did not return a user id")
	}

	email := info.Email
	if email == "" {
		email, err = s.fetchPrimaryVerifiedEmail(client)
		if err != nil {
			return nil, err
		}
	}

	displayName := info.Name
	if displayName == "" {
		displayName = info.Login
	}

	return &domain.OAuthUserParams{
		Provider:       domain.ProviderGitHub,
		ProviderUserID: fmt.Sprintf("%d", info.ID),
		Email:          email,
		DisplayName:    displayName,
		AvatarURL:      info.AvatarURL,
	}, nil
}

func (s *githubOAuthVerifierService) fetchPrimaryVerifiedEmail(client *http.Client) (string, error) {
	var emails []struct {
		Email    string `json:"email"`
		Primary  bool   `json:"primary"`
		Verified bool   `json:"verified"`
	}
	if err := s.getJSON(client, s.apiBaseURL+"/user/emails", &emails); err != nil {
		return "", apperrors.NewInternalServerError("failed to fetch github emails").WithCause(err)
	}
	for _, e := range emails {
		if e.Primary && e.Verified {
			return e.Email, nil
		}
	}
	return "", apperrors.NewUnauthorizedError("github did not return a verified email")
}

func (s *githubOAuthVerifierService) getJSON(client *http.Client, url string, out any) error {
	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("github api request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.New("github api returned non-200 status: " + resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode github api response: %w", err)
	}
	return nil
}
