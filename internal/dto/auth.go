package dto

// LoginRequest carries login credentials. Password length bounds are
// enforced here at the transport edge; the auth core assumes pre-validated
// input.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=20"`
}

// RegisterRequest carries registration input. Confirmation equality is an
// input-validation concern and lives here, not in the auth core.
type RegisterRequest struct {
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required,min=8,max=20"`
	ConfirmPassword string `json:"confirmPassword" binding:"required,eqfield=Password"`
}

// ForgotPasswordRequest starts the password-reset protocol.
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetPasswordRequest redeems a reset token.
type ResetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=8,max=20"`
}

// ExchangeCodeRequest carries an OAuth authorization code from the frontend.
type ExchangeCodeRequest struct {
	Code string `json:"code" binding:"required"`
}
