package dto

import (
	"time"

	"github.com/testaro/testaro_backend/internal/core/domain"
)

// UserResponse is the caller-visible projection of a user. The password hash
// and reset fields never appear here. ID is the canonical identifier;
// LegacyID carries the same value under the `_id` key for clients that still
// read the old field. The aliasing lives only at this transport edge.
type UserResponse struct {
	ID          string    `json:"id"`
	LegacyID    string    `json:"_id"`
	Email       string    `json:"email"`
	Provider    string    `json:"provider"`
	DisplayName string    `json:"displayName,omitempty"`
	Avatar      string    `json:"avatar,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ToUserResponse converts a domain.User to its transport projection.
func ToUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:          user.UserID,
		LegacyID:    user.UserID,
		Email:       user.Email,
		Provider:    string(user.Provider),
		DisplayName: user.DisplayName,
		Avatar:      user.AvatarURL,
		CreatedAt:   user.CreatedAt,
	}
}
