package services_test

import (
	"context"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/testaro/testaro_backend/internal/apperrors"
	"github.com/testaro/testaro_backend/internal/core/domain"
	"github.com/testaro/testaro_backend/internal/core/ports"
	portssvc "github.com/testaro/testaro_backend/internal/core/ports/services"
	"github.com/testaro/testaro_backend/internal/core/services"
	"github.com/testaro/testaro_backend/internal/platform/config"
	"github.com/testaro/testaro_backend/internal/utils"
)

var hexTokenHashRe = regexp.MustCompile(`^[0-9a-f]{64}$`)

type PasswordResetServiceTestSuite struct {
	suite.Suite
	mockUserRepo *MockUserRepository
	mockNotifier *MockNotifier
	cfg          *config.Config
	service      portssvc.PasswordResetSvcFacade
}

func (suite *PasswordResetServiceTestSuite) SetupTest() {
	suite.mockUserRepo = new(MockUserRepository)
	suite.mockNotifier = new(MockNotifier)
	suite.cfg = testConfig()
	suite.service = services.NewPasswordResetService(suite.mockUserRepo, suite.mockNotifier, suite.cfg, testLogger())
}

func (suite *PasswordResetServiceTestSuite) localUser(email string) *domain.User {
	hash, err := utils.HashPassword("old-password1")
	suite.Require().NoError(err)
	return &domain.User{
		UserID:       uuid.NewString(),
		Email:        email,
		Provider:     domain.ProviderLocal,
		PasswordHash: &hash,
	}
}

// --- ForgotPassword Tests ---

func (suite *PasswordResetServiceTestSuite) TestForgotPassword_Success() {
	ctx := context.Background()
	user := suite.localUser("user@example.com")
	suite.mockUserRepo.On("FindUserByEmailWithSecrets", ctx, user.Email).Return(user, nil).Once()

	var storedHash string
	suite.mockUserRepo.On("SetResetToken", ctx, user.UserID,
		mock.MatchedBy(func(hash string) bool {
			storedHash = hash
			return hexTokenHashRe.MatchString(hash)
		}),
		mock.MatchedBy(func(expiresAt time.Time) bool {
			return assert.WithinDuration(suite.T(), time.Now().Add(suite.cfg.ResetTokenTTL), expiresAt, 2*time.Second)
		}),
		1, // first request anchors a fresh window
		mock.AnythingOfType("time.Time"),
	).Return(nil).Once()

	var sentData map[string]string
	suite.mockNotifier.On("Send", ctx, user.Email, ports.NotificationPasswordReset,
		mock.MatchedBy(func(data map[string]string) bool {
			sentData = data
			return strings.Contains(data["resetURL"], suite.cfg.FrontendBaseURL+"/reset-password?token=")
		}),
	).Return(nil).Once()

	message, err := suite.service.ForgotPassword(ctx, user.Email)

	suite.Require().NoError(err)
	suite.Contains(message, "If an account with that email exists")

	// The emailed token is the plaintext whose hash was persisted.
	token := strings.TrimPrefix(sentData["resetURL"], suite.cfg.FrontendBaseURL+"/reset-password?token=")
	suite.Equal(storedHash, utils.HashResetToken(token))
	suite.Equal("30", sentData["expiryMinutes"])

	suite.mockUserRepo.AssertExpectations(suite.T())
	suite.mockNotifier.AssertExpectations(suite.T())
}

func (suite *PasswordResetServiceTestSuite) TestForgotPassword_UniformAcknowledgement() {
	ctx := context.Background()
	oauthID := "google-sub-3"
	oauthUser := &domain.User{
		UserID:         uuid.NewString(),
		Email:          "oauth@example.com",
		Provider:       domain.ProviderGoogle,
		ProviderUserID: &oauthID,
	}

	suite.mockUserRepo.On("FindUserByEmailWithSecrets", ctx, "unknown@example.com").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockUserRepo.On("FindUserByEmailWithSecrets", ctx, "oauth@example.com").Return(oauthUser, nil).Once()
	suite.mockUserRepo.On("FindUserByEmailWithSecrets", ctx, "broken@example.com").Return(nil, assert.AnError).Once()

	unknownMsg, unknownErr := suite.service.ForgotPassword(ctx, "unknown@example.com")
	oauthMsg, oauthErr := suite.service.ForgotPassword(ctx, "oauth@example.com")
	brokenMsg, brokenErr := suite.service.ForgotPassword(ctx, "broken@example.com")

	// Unknown email, OAuth-only account, and a failing store all produce the
	// identical acknowledgement.
	suite.NoError(unknownErr)
	suite.NoError(oauthErr)
	suite.NoError(brokenErr)
	suite.Equal(unknownMsg, oauthMsg)
	suite.Equal(unknownMsg, brokenMsg)

	suite.mockUserRepo.AssertNotCalled(suite.T(), "SetResetToken", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	suite.mockNotifier.AssertNotCalled(suite.T(), "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	suite.mockUserRepo.AssertExpectations(suite.T())
}

func (suite *PasswordResetServiceTestSuite) TestForgotPassword_RateLimitedAtWindowMax() {
	ctx := context.Background()
	user := suite.localUser("busy@example.com")
	lastRequest := time.Now().Add(-1 * time.Hour)
	user.ResetAttempts = suite.cfg.ResetMaxRequests
	user.LastResetRequestAt = &lastRequest

	suite.mockUserRepo.On("FindUserByEmailWithSecrets", ctx, user.Email).Return(user, nil).Once()

	message, err := suite.service.ForgotPassword(ctx, user.Email)

	suite.Empty(message)
	var appErr *apperrors.AppError
	suite.Require().ErrorAs(err, &appErr)
	suite.Equal(429, appErr.Code)
	// The rejected request does not advance the counter or touch the token.
	suite.mockUserRepo.AssertNotCalled(suite.T(), "SetResetToken", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	suite.mockUserRepo.AssertExpectations(suite.T())
}

func (suite *PasswordResetServiceTestSuite) TestForgotPassword_CounterIncrementsWithinWindow() {
	ctx := context.Background()
	user := suite.localUser("repeat@example.com")
	lastRequest := time.Now().Add(-2 * time.Hour)
	user.ResetAttempts = 2
	user.LastResetRequestAt = &lastRequest

	suite.mockUserRepo.On("FindUserByEmailWithSecrets", ctx, user.Email).Return(user, nil).Once()
	suite.mockUserRepo.On("SetResetToken", ctx, user.UserID,
		mock.AnythingOfType("string"), mock.AnythingOfType("time.Time"),
		3, mock.AnythingOfType("time.Time"),
	).Return(nil).Once()
	suite.mockNotifier.On("Send", ctx, user.Email, ports.NotificationPasswordReset, mock.Anything).Return(nil).Once()

	_, err := suite.service.ForgotPassword(ctx, user.Email)

	suite.Require().NoError(err)
	suite.mockUserRepo.AssertExpectations(suite.T())
}

func (suite *PasswordResetServiceTestSuite) TestForgotPassword_StaleWindowRestartsCounter() {
	ctx := context.Background()
	user := suite.localUser("patient@example.com")
	lastRequest := time.Now().Add(-25 * time.Hour) // outside the 24h window
	user.ResetAttempts = suite.cfg.ResetMaxRequests
	user.LastResetRequestAt = &lastRequest

	suite.mockUserRepo.On("FindUserByEmailWithSecrets", ctx, user.Email).Return(user, nil).Once()
	suite.mockUserRepo.On("SetResetToken", ctx, user.UserID,
		mock.AnythingOfType("string"), mock.AnythingOfType("time.Time"),
		1, mock.AnythingOfType("time.Time"),
	).Return(nil).Once()
	suite.mockNotifier.On("Send", ctx, user.Email, ports.NotificationPasswordReset, mock.Anything).Return(nil).Once()

	_, err := suite.service.ForgotPassword(ctx, user.Email)

	suite.Require().NoError(err)
	suite.mockUserRepo.AssertExpectations(suite.T())
}

func (suite *PasswordResetServiceTestSuite) TestForgotPassword_PersistFailureStillAcknowledges() {
	ctx := context.Background()
	user := suite.localUser("unlucky@example.com")

	suite.mockUserRepo.On("FindUserByEmailWithSecrets", ctx, user.Email).Return(user, nil).Once()
	suite.mockUserRepo.On("SetResetToken", ctx, user.UserID,
		mock.AnythingOfType("string"), mock.AnythingOfType("time.Time"),
		1, mock.AnythingOfType("time.Time"),
	).Return(assert.AnError).Once()

	message, err := suite.service.ForgotPassword(ctx, user.Email)

	suite.Require().NoError(err)
	suite.Contains(message, "If an account with that email exists")
	// No token reached the store, so no email goes out.
	suite.mockNotifier.AssertNotCalled(suite.T(), "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	suite.mockUserRepo.AssertExpectations(suite.T())
}

func (suite *PasswordResetServiceTestSuite) TestForgotPassword_EmailFailureStillAcknowledges() {
	ctx := context.Background()
	user := suite.localUser("undeliverable@example.com")

	suite.mockUserRepo.On("FindUserByEmailWithSecrets", ctx, user.Email).Return(user, nil).Once()
	suite.mockUserRepo.On("SetResetToken", ctx, user.UserID,
		mock.AnythingOfType("string"), mock.AnythingOfType("time.Time"),
		1, mock.AnythingOfType("time.Time"),
	).Return(nil).Once()
	suite.mockNotifier.On("Send", ctx, user.Email, ports.NotificationPasswordReset, mock.Anything).Return(assert.AnError).Once()

	message, err := suite.service.ForgotPassword(ctx, user.Email)

	suite.Require().NoError(err)
	suite.Contains(message, "If an account with that email exists")
	suite.mockUserRepo.AssertExpectations(suite.T())
	suite.mockNotifier.AssertExpectations(suite.T())
}

// --- ResetPassword Tests ---

func (suite *PasswordResetServiceTestSuite) TestResetPassword_Success() {
	ctx := context.Background()
	user := suite.localUser("resetter@example.com")
	token := "a-plaintext-reset-token"
	newPassword := "brand-new-pass1"

	suite.mockUserRepo.On("FindUserByResetTokenHash", ctx, utils.HashResetToken(token), mock.AnythingOfType("time.Time")).Return(user, nil).Once()
	suite.mockUserRepo.On("UpdatePasswordAndClearResetToken", ctx, user.UserID,
		mock.MatchedBy(func(hash string) bool {
			return hash != newPassword && utils.CheckPasswordHash(newPassword, hash)
		}),
	).Return(nil).Once()
	suite.mockNotifier.On("Send", ctx, user.Email, ports.NotificationPasswordResetDone, mock.Anything).Return(nil).Once()

	message, err := suite.service.ResetPassword(ctx, token, newPassword)

	suite.Require().NoError(err)
	suite.Contains(message, "reset successfully")
	suite.mockUserRepo.AssertExpectations(suite.T())
	suite.mockNotifier.AssertExpectations(suite.T())
}

func (suite *PasswordResetServiceTestSuite) TestResetPassword_UnknownOrExpiredToken() {
	ctx := context.Background()
	token := "either-wrong-or-expired"

	// The repository lookup already folds expiry into the match, so the
	// service sees the same not-found for both cases.
	suite.mockUserRepo.On("FindUserByResetTokenHash", ctx, utils.HashResetToken(token), mock.AnythingOfType("time.Time")).Return(nil, apperrors.ErrNotFound).Once()

	message, err := suite.service.ResetPassword(ctx, token, "brand-new-pass1")

	suite.Empty(message)
	var appErr *apperrors.AppError
	suite.Require().ErrorAs(err, &appErr)
	suite.Equal(400, appErr.Code)
	suite.mockUserRepo.AssertNotCalled(suite.T(), "UpdatePasswordAndClearResetToken", mock.Anything, mock.Anything, mock.Anything)
	suite.mockUserRepo.AssertExpectations(suite.T())
}

func (suite *PasswordResetServiceTestSuite) TestResetPassword_UpdateFailure() {
	ctx := context.Background()
	user := suite.localUser("unlucky2@example.com")
	token := "valid-token"

	suite.mockUserRepo.On("FindUserByResetTokenHash", ctx, utils.HashResetToken(token), mock.AnythingOfType("time.Time")).Return(user, nil).Once()
	suite.mockUserRepo.On("UpdatePasswordAndClearResetToken", ctx, user.UserID, mock.AnythingOfType("string")).Return(assert.AnError).Once()

	message, err := suite.service.ResetPassword(ctx, token, "brand-new-pass1")

	suite.Empty(message)
	var appErr *apperrors.AppError
	suite.Require().ErrorAs(err, &appErr)
	suite.Equal(500, appErr.Code)
	suite.mockNotifier.AssertNotCalled(suite.T(), "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	suite.mockUserRepo.AssertExpectations(suite.T())
}

func TestPasswordResetServiceTestSuite(t *testing.T) {
	suite.Run(t, new(PasswordResetServiceTestSuite))
}
