package domain

import (
	"time"
)

// User is an account holder. The password hash never leaves the service.
type User struct {
	ID                  int64      `json:"id" db:"id"`
	Name                string     `json:"name" db:"name"`
	Email               string     `json:"email" db:"email"`
	PasswordHash        string     `json:"-" db:"password_hash"`
	EmailVerifiedAt     *time.Time `json:"email_verified_at" db:"email_verified_at"`
	NeedsPasswordChange bool       `json:"needs_password_change" db:"needs_password_change"`
	CreatedAt           time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at" db:"updated_at"`
}

// AccessToken backs a bearer JWT; the token is valid only while this row exists.
type AccessToken struct {
	ID         string     `json:"id" db:"id"` // jti
	UserID     int64      `json:"user_id" db:"user_id"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	LastUsedAt *time.Time `json:"last_used_at" db:"last_used_at"`
	ExpiresAt  time.Time  `json:"expires_at" db:"expires_at"`
}

// RegisterRequest is the body of POST /api/auth/register.
type RegisterRequest struct {
	Name                 string `json:"name" validate:"required,notblank,max=255"`
	Email                string `json:"email" validate:"required,email,max=255"`
	Password             string `json:"password" validate:"required,min=8,max=100"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required,eqfield=Password"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	User                *User  `json:"user"`
	Token               string `json:"token"`
	TokenType           string `json:"token_type"`
	NeedsPasswordChange bool   `json:"needs_password_change"`
}

type ChangePasswordRequest struct {
	CurrentPassword         string `json:"current_password" validate:"required"`
	NewPassword             string `json:"new_password" validate:"required,min=8,max=100"`
	NewPasswordConfirmation string `json:"new_password_confirmation" validate:"required,eqfield=NewPassword"`
}

// UpdateProfileRequest changes name or email; the password has its own endpoint.
type UpdateProfileRequest struct {
	Name  *string `json:"name,omitempty" validate:"omitempty,notblank,max=255"`
	Email *string `json:"email,omitempty" validate:"omitempty,email,max=255"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}
