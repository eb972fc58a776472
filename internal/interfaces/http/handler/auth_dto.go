package handler

import (
	"time"

	accountapp "github.com/facturasnap/backend/internal/application/account"
	"github.com/facturasnap/backend/internal/domain/account"
	"github.com/google/uuid"
)

// =====================
// Auth Request DTOs
// =====================

// RegisterRequest represents the request body for account registration
type RegisterRequest struct {
	FirstName      string     `json:"firstName" binding:"required,max=100"`
	MiddleName     string     `json:"middleName" binding:"max=100"`
	LastName       string     `json:"lastName" binding:"required,max=100"`
	SecondLastName string     `json:"secondLastName" binding:"max=100"`
	Email          string     `json:"email" binding:"required,email,max=255"`
	Password       string     `json:"password" binding:"required,min=8,max=128"`
	PlanID         *uuid.UUID `json:"planId"`
}

// LoginRequest represents the request body for user login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshTokenRequest represents the request body for token refresh
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// ChangePasswordRequest represents the request body for password change
type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=8,max=128"`
}

// =====================
// Auth Response DTOs
// =====================

// TokenResponse represents the token data in auth responses
type TokenResponse struct {
	AccessToken           string    `json:"accessToken"`
	RefreshToken          string    `json:"refreshToken"`
	AccessTokenExpiresAt  time.Time `json:"accessTokenExpiresAt"`
	RefreshTokenExpiresAt time.Time `json:"refreshTokenExpiresAt"`
	TokenType             string    `json:"tokenType" example:"Bearer"`
}

// UserResponse represents an account in responses
type UserResponse struct {
	ID             uuid.UUID  `json:"id"`
	FirstName      string     `json:"firstName"`
	MiddleName     string     `json:"middleName,omitempty"`
	LastName       string     `json:"lastName"`
	SecondLastName string     `json:"secondLastName,omitempty"`
	FullName       string     `json:"fullName"`
	Email          string     `json:"email"`
	PlanID         *uuid.UUID `json:"planId,omitempty"`
	LastLoginAt    *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
}

// LoginResponse represents the response body for successful login
type LoginResponse struct {
	Token TokenResponse `json:"token"`
	User  UserResponse  `json:"user"`
}

func toTokenResponse(t *accountapp.TokenResult) TokenResponse {
	return TokenResponse{
		AccessToken:           t.AccessToken,
		RefreshToken:          t.RefreshToken,
		AccessTokenExpiresAt:  t.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: t.RefreshTokenExpiresAt,
		TokenType:             t.TokenType,
	}
}

func toUserResponse(u *account.User) UserResponse {
	return UserResponse{
		ID:             u.ID,
		FirstName:      u.FirstName,
		MiddleName:     u.MiddleName,
		LastName:       u.LastName,
		SecondLastName: u.SecondLastName,
		FullName:       u.FullName(),
		Email:          u.Email,
		PlanID:         u.PlanID,
		LastLoginAt:    u.LastLoginAt,
		CreatedAt:      u.CreatedAt,
	}
}
