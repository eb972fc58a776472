package account

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RegisterInput contains the fields for a new account.
type RegisterInput struct {
	FirstName      string
	MiddleName     string
	LastName       string
	SecondLastName string
	Email          string
	Password       string
	PlanID         *uuid.UUID
}

// LoginInput contains the credentials and client details of a login.
type LoginInput struct {
	Email     string
	Password  string
	UserAgent string
	ClientIP  string
}

// TokenResult is an issued token pair.
type TokenResult struct {
	AccessToken           string
	RefreshToken          string
	AccessTokenExpiresAt  time.Time
	RefreshTokenExpiresAt time.Time
	TokenType             string
}

// LogoutInput identifies the access token being revoked.
type LogoutInput struct {
	UserID  uuid.UUID
	TokenID string
	// ExpiresAt is when the token would have expired on its own.
	ExpiresAt time.Time
}

// PlanInput contains the terms of a payment plan.
type PlanInput struct {
	Description  string
	CreditAmount int
	Price        decimal.Decimal
}
