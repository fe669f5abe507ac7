package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// LoginRequest holds credentials for authenticating a user.
type LoginRequest struct {
	UniqueID string `json:"unique_id" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse returns the issued tokens and user info.
type LoginResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresIn    int64     `json:"expires_in"`
	User         UserInfo  `json:"user"`
	IssuedAt     time.Time `json:"issued_at"`
}

// RefreshTokenRequest exchanges a refresh token for a new access token.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RefreshTokenResponse returns the refreshed tokens.
type RefreshTokenResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresIn    int64     `json:"expires_in"`
	IssuedAt     time.Time `json:"issued_at"`
}

// ChangePasswordRequest rotates the caller's own password.
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

// UserInfo describes the authenticated user in responses. The password
// hash never leaves the service layer.
type UserInfo struct {
	ID           int64    `json:"id"`
	UniqueID     string   `json:"unique_id"`
	Name         string   `json:"name"`
	Email        *string  `json:"email,omitempty"`
	Role         UserRole `json:"role"`
	DepartmentID *int64   `json:"department_id,omitempty"`
	ClassID      *int64   `json:"class_id,omitempty"`
}

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	UserID       int64    `json:"user_id"`
	UniqueID     string   `json:"unique_id"`
	Name         string   `json:"name"`
	Role         UserRole `json:"role"`
	DepartmentID *int64   `json:"department_id,omitempty"`
	jwt.RegisteredClaims
}
