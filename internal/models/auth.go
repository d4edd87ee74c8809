package models

// RequestOTPRequest starts signup by asking for a verification code.
type RequestOTPRequest struct {
	Email string `json:"email" binding:"required,email,max=255"`
	Name  string `json:"name" binding:"required,max=100"`
	Role  string `json:"role" binding:"required,oneof=Mentor Professor Student"`
}

// VerifyOTPRequest confirms the emailed signup code.
type VerifyOTPRequest struct {
	Email   string `json:"email" binding:"required,email,max=255"`
	OTPCode string `json:"otp_code" binding:"required,len=6,numeric"`
}

// SetPasswordRequest completes signup after OTP verification.
type SetPasswordRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Name     string `json:"name" binding:"required,max=100"`
	Role     string `json:"role" binding:"required,oneof=Mentor Professor Student"`
	Password string `json:"password" binding:"required,password_strength"`
}

// LoginRequest authenticates by email, password and role.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,max=255"`
	Role     string `json:"role" binding:"required,oneof=Mentor Professor Student"`
}

// RefreshRequest rotates a refresh token for a new pair.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// LogoutRequest revokes the session tokens.
type LogoutRequest struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// ForgotPasswordRequest asks for a password reset code.
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email,max=255"`
}

// ResetPasswordRequest sets a new password with the emailed code.
type ResetPasswordRequest struct {
	Email       string `json:"email" binding:"required,email,max=255"`
	OTPCode     string `json:"otp_code" binding:"required,len=6,numeric"`
	NewPassword string `json:"new_password" binding:"required,password_strength"`
}

// TokenResponse carries an issued token pair.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// MessageResponse is a generic success payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// AccountResponse is the public view of an account.
type AccountResponse struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       Role   `json:"role"`
	IsVerified bool   `json:"is_verified"`
	CreatedAt  string `json:"created_at"`
}
