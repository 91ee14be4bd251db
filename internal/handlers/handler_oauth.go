package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/testaro/testaro_backend/internal/core/ports/services"
	"github.com/testaro/testaro_backend/internal/dto"
	"github.com/testaro/testaro_backend/internal/platform/config"
)

// OAuthHandler resolves provider authorization codes into local sessions.
type OAuthHandler struct {
	userService    portssvc.UserSvcFacade
	tokenService   portssvc.TokenSvcFacade
	googleVerifier portssvc.OAuthVerifierSvcFacade
	githubVerifier portssvc.OAuthVerifierSvcFacade
	cfg            *config.Config
}

// NewOAuthHandler creates a new OAuthHandler.
func NewOAuthHandler(services *portssvc.ServiceContainer, cfg *config.Config) *OAuthHandler {
	return &OAuthHandler{
		userService:    services.User,
		tokenService:   services.Token,
		googleVerifier: services.GoogleVerifier,
		githubVerifier: services.GitHubVerifier,
		cfg:            cfg,
	}
}

// registerOAuthRoutes sets up the OAuth code-exchange routes.
func registerOAuthRoutes(rg *gin.Engine, cfg *config.Config, services *portssvc.ServiceContainer) {
	h := NewOAuthHandler(services, cfg)
	oauth := rg.Group("/api/v1/auth/oauth")
	{
		oauth.POST("/google", h.GoogleExchange)
		oauth.POST("/github", h.GitHubExchange)
	}
}

// GoogleExchange godoc
// @Summary Sign in with Google
// @Description Exchanges a Google authorization code for a local session.
// @Tags auth
// @Accept json
// @Produce json
// @Param exchange body dto.ExchangeCodeRequest true "Authorization code"
// @Success 200 {object} dto.AuthResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Email already registered with another method"
// @Router /auth/oauth/google [post]
func (h *OAuthHandler) GoogleExchange(c *gin.Context) {
	h.exchange(c, h.googleVerifier)
}

// GitHubExchange godoc
// @Summary Sign in with GitHub
// @Description Exchanges a GitHub authorization code for a local session.
// @Tags auth
// @Accept json
// @Produce json
// @Param exchange body dto.ExchangeCodeRequest true "Authorization code"
// @Success 200 {object} dto.AuthResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Email already registered with another method"
// @Router /auth/oauth/github [post]
func (h *OAuthHandler) GitHubExchange(c *gin.Context) {
	h.exchange(c, h.githubVerifier)
}

func (h *OAuthHandler) exchange(c *gin.Context, verifier portssvc.OAuthVerifierSvcFacade) {
	var req dto.ExchangeCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
		return
	}

	params, err := verifier.VerifyAuthorizationCode(c.Request.Context(), req.Code)
	if err != nil {
		respondError(c, err)
		return
	}

	user, err := h.userService.FindOrCreateOAuthUser(c.Request.Context(), *params)
	if err != nil {
		respondError(c, err)
		return
	}

	pair, err := h.tokenService.GeneratePair(c.Request.Context(), user.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(
		h.cfg.RefreshTokenCookieName,
		pair.RefreshToken,
		int(h.cfg.RefreshTokenExpiryDuration.Seconds()),
		h.cfg.RefreshTokenCookiePath,
		"",
		h.cfg.IsProduction,
		true,
	)
	c.JSON(http.StatusOK, dto.AuthResponse{
		User:        dto.ToUserResponse(user),
		AccessToken: pair.AccessToken,
	})
}
