package dto

// AuthResponse represents a successful login, registration, or OAuth
// exchange. The refresh token travels only in the HTTP-only cookie, never in
// the body.
type AuthResponse struct {
	User        UserResponse `json:"user"`
	AccessToken string       `json:"accessToken"`
}

// RefreshResponse represents a successful token refresh.
type RefreshResponse struct {
	AccessToken string `json:"accessToken"`
}

// MessageResponse carries a human-readable acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}
