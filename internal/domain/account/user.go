package account

import (
	"net/mail"
	"strings"
	"time"

	"github.com/facturasnap/backend/internal/domain/shared"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	bcryptCost        = 12
	minPasswordLength = 8
	maxPasswordLength = 72 // bcrypt limit
)

// User is a registered FacturaSnap account.
type User struct {
	shared.BaseEntity
	FirstName      string
	MiddleName     string
	LastName       string
	SecondLastName string
	Email          string
	PasswordHash   string
	PlanID         *uuid.UUID
	LastLoginAt    *time.Time
}

// NewUserParams carries registration input.
type NewUserParams struct {
	FirstName      string
	MiddleName     string
	LastName       string
	SecondLastName string
	Email          string
	Password       string
	PlanID         *uuid.UUID
}

// NewUser validates input and hashes the password.
func NewUser(p NewUserParams) (*User, error) {
	first := strings.TrimSpace(p.FirstName)
	last := strings.TrimSpace(p.LastName)
	if first == "" || last == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "First name and last name are required")
	}
	email, err := normalizeEmail(p.Email)
	if err != nil {
		return nil, err
	}
	hash, err := hashPassword(p.Password)
	if err != nil {
		return nil, err
	}
	return &User{
		BaseEntity:     shared.NewBaseEntity(),
		FirstName:      first,
		MiddleName:     strings.TrimSpace(p.MiddleName),
		LastName:       last,
		SecondLastName: strings.TrimSpace(p.SecondLastName),
		Email:          email,
		PasswordHash:   hash,
		PlanID:         p.PlanID,
	}, nil
}

// FullName joins the non-empty name parts.
func (u *User) FullName() string {
	parts := make([]string, 0, 4)
	for _, p := range []string{u.FirstName, u.MiddleName, u.LastName, u.SecondLastName} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// VerifyPassword reports whether password matches the stored hash.
func (u *User) VerifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// ChangePassword replaces the password after checking the current one.
func (u *User) ChangePassword(current, next string) error {
	if !u.VerifyPassword(current) {
		return shared.NewDomainError("INVALID_PASSWORD", "Current password is incorrect")
	}
	hash, err := hashPassword(next)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	u.Touch()
	return nil
}

// RecordLogin stamps the last successful login.
func (u *User) RecordLogin(at time.Time) {
	u.LastLoginAt = &at
	u.Touch()
}

// UpdateProfile replaces name fields and the selected plan.
func (u *User) UpdateProfile(first, middle, last, secondLast string, planID *uuid.UUID) error {
	first = strings.TrimSpace(first)
	last = strings.TrimSpace(last)
	if first == "" || last == "" {
		return shared.NewDomainError("INVALID_NAME", "First name and last name are required")
	}
	u.FirstName = first
	u.MiddleName = strings.TrimSpace(middle)
	u.LastName = last
	u.SecondLastName = strings.TrimSpace(secondLast)
	u.PlanID = planID
	u.Touch()
	return nil
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", shared.NewDomainError("INVALID_EMAIL", "Email address is not valid")
	}
	return email, nil
}

func hashPassword(password string) (string, error) {
	if len(password) < minPasswordLength {
		return "", shared.NewDomainError("INVALID_PASSWORD", "Password must be at least 8 characters")
	}
	if len(password) > maxPasswordLength {
		return "", shared.NewDomainError("INVALID_PASSWORD", "Password cannot exceed 72 bytes")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", shared.WrapDomainError("PASSWORD_HASH_ERROR", "Failed to hash password", err)
	}
	return string(hash), nil
}
