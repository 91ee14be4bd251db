package utils_test

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/testaro/testaro_backend/internal/utils"
)

func TestGenerateAndParseJWT(t *testing.T) {
	token, err := utils.GenerateJWT("user-123", "secret-a", time.Hour, "testaro-backend")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := utils.ParseAndValidateJWT(token, "secret-a")
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.Subject)
	assert.Equal(t, "testaro-backend", claims.Issuer)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 2*time.Second)
}

func TestParseJWT_WrongSecret(t *testing.T) {
	token, err := utils.GenerateJWT("user-123", "secret-a", time.Hour, "testaro-backend")
	require.NoError(t, err)

	_, err = utils.ParseAndValidateJWT(token, "secret-b")
	assert.Error(t, err)
}

func TestParseJWT_Expired(t *testing.T) {
	token, err := utils.GenerateJWT("user-123", "secret-a", -time.Minute, "testaro-backend")
	require.NoError(t, err)

	_, err = utils.ParseAndValidateJWT(token, "secret-a")
	assert.Error(t, err)
}

func TestHashPasswordRoundTrip(t *testing.T) {
	hash, err := utils.HashPassword("password123")
	require.NoError(t, err)
	assert.NotEqual(t, "password123", hash)

	assert.True(t, utils.CheckPasswordHash("password123", hash))
	assert.False(t, utils.CheckPasswordHash("password124", hash))
}

func TestGenerateSecureRandomString(t *testing.T) {
	a, err := utils.GenerateSecureRandomString(32)
	require.NoError(t, err)
	b, err := utils.GenerateSecureRandomString(32)
	require.NoError(t, err)

	assert.Len(t, a, 64) // hex doubles the byte length
	assert.NotEqual(t, a, b)
}

func TestHashResetToken(t *testing.T) {
	hash := utils.HashResetToken("some-token")

	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{64}$`), hash)
	// Deterministic, so the stored hash can be matched at redemption.
	assert.Equal(t, hash, utils.HashResetToken("some-token"))
	assert.NotEqual(t, hash, utils.HashResetToken("another-token"))
}
