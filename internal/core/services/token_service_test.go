package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/testaro/testaro_backend/internal/apperrors"
	portssvc "github.com/testaro/testaro_backend/internal/core/ports/services"
	"github.com/testaro/testaro_backend/internal/core/services"
	"github.com/testaro/testaro_backend/internal/platform/config"
	"github.com/testaro/testaro_backend/internal/utils"
)

type TokenServiceTestSuite struct {
	suite.Suite
	cfg     *config.Config
	service portssvc.TokenSvcFacade
}

func (suite *TokenServiceTestSuite) SetupTest() {
	suite.cfg = testConfig()
	suite.service = services.NewTokenService(suite.cfg)
}

func (suite *TokenServiceTestSuite) TestGeneratePair_Success() {
	ctx := context.Background()
	userID := uuid.NewString()

	pair, err := suite.service.GeneratePair(ctx, userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(pair)
	suite.NotEmpty(pair.AccessToken)
	suite.NotEmpty(pair.RefreshToken)
	suite.NotEqual(pair.AccessToken, pair.RefreshToken)
	suite.WithinDuration(time.Now().Add(suite.cfg.AccessTokenExpiryDuration), pair.AccessExpiresAt, 2*time.Second)
	suite.WithinDuration(time.Now().Add(suite.cfg.RefreshTokenExpiryDuration), pair.RefreshExpiresAt, 2*time.Second)

	// Each token verifies only under its own secret.
	accessClaims, err := utils.ParseAndValidateJWT(pair.AccessToken, suite.cfg.AccessTokenSecret)
	suite.Require().NoError(err)
	suite.Equal(userID, accessClaims.Subject)
	suite.Equal(suite.cfg.JWTIssuer, accessClaims.Issuer)

	refreshClaims, err := utils.ParseAndValidateJWT(pair.RefreshToken, suite.cfg.RefreshTokenSecret)
	suite.Require().NoError(err)
	suite.Equal(userID, refreshClaims.Subject)
}

func (suite *TokenServiceTestSuite) TestGeneratePair_MissingSecretFailsFast() {
	ctx := context.Background()
	suite.cfg.RefreshTokenSecret = ""

	pair, err := suite.service.GeneratePair(ctx, uuid.NewString())

	suite.Nil(pair)
	var appErr *apperrors.AppError
	suite.Require().ErrorAs(err, &appErr)
	suite.Equal(500, appErr.Code)
}

func (suite *TokenServiceTestSuite) TestValidateRefreshToken_Success() {
	ctx := context.Background()
	userID := uuid.NewString()

	pair, err := suite.service.GeneratePair(ctx, userID)
	suite.Require().NoError(err)

	subject, err := suite.service.ValidateRefreshToken(ctx, pair.RefreshToken)

	suite.Require().NoError(err)
	suite.Equal(userID, subject)
}

func (suite *TokenServiceTestSuite) TestValidateRefreshToken_RejectsAccessToken() {
	ctx := context.Background()

	pair, err := suite.service.GeneratePair(ctx, uuid.NewString())
	suite.Require().NoError(err)

	// An access token is signed with the other secret; presenting it at the
	// refresh endpoint must fail signature validation.
	subject, err := suite.service.ValidateRefreshToken(ctx, pair.AccessToken)

	suite.Empty(subject)
	var appErr *apperrors.AppError
	suite.Require().ErrorAs(err, &appErr)
	suite.Equal(401, appErr.Code)
}

func (suite *TokenServiceTestSuite) TestValidateRefreshToken_RejectsGarbage() {
	ctx := context.Background()

	subject, err := suite.service.ValidateRefreshToken(ctx, "not-a-jwt")

	suite.Empty(subject)
	var appErr *apperrors.AppError
	suite.Require().ErrorAs(err, &appErr)
	suite.Equal(401, appErr.Code)
}

func (suite *TokenServiceTestSuite) TestValidateRefreshToken_RejectsExpired() {
	ctx := context.Background()
	userID := uuid.NewString()

	expired, err := utils.GenerateJWT(userID, suite.cfg.RefreshTokenSecret, -time.Minute, suite.cfg.JWTIssuer)
	suite.Require().NoError(err)

	subject, err := suite.service.ValidateRefreshToken(ctx, expired)

	suite.Empty(subject)
	suite.Require().Error(err)
}

func TestTokenServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TokenServiceTestSuite))
}
