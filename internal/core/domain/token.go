package domain

import "time"

// TokenPair holds the two independently-signed session tokens. The access
// token is short-lived and verified with the access secret; the refresh token
// is long-lived and verified with the refresh secret. Neither secret can
// validate the other's token.
type TokenPair struct {
	AccessToken      string    `json:"accessToken"`
	AccessExpiresAt  time.Time `json:"accessExpiresAt"`
	RefreshToken     string    `json:"-"` // delivered via HTTP-only cookie, never in the body
	RefreshExpiresAt time.Time `json:"-"`
}

// GitHubUserInfo mirrors the fields we consume from the GitHub user API.
type GitHubUserInfo struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
}
