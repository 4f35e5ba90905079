package auth

import (
	"github.com/google/uuid"
)

// RegisterInput carries the signup payload.
type RegisterInput struct {
	Username string `json:"username" validate:"required,min=3,max=40"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=128"`
	Phone    string `json:"phone"`
}

// LoginInput carries the credential check payload.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ForgotPasswordInput requests a reset code.
type ForgotPasswordInput struct {
	Email string `json:"email" validate:"required,email"`
}

// VerifyOTPInput checks a reset code.
type VerifyOTPInput struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required,len=6"`
}

// ResetPasswordInput replaces the credential after a reset code was issued.
type ResetPasswordInput struct {
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8,max=128"`
	ConfirmPassword string `json:"confirmPassword" validate:"required"`
}

// AccountDTO is the identity projection returned by register/login.
type AccountDTO struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
	Phone    string    `json:"phone,omitempty"`
	Role     string    `json:"role"`
}

// LoginResult bundles the session token with the account snapshot.
type LoginResult struct {
	Token   string     `json:"token"`
	Account AccountDTO `json:"user"`
}
