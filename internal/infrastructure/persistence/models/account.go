package models

import (
	"time"

	"github.com/facturasnap/backend/internal/domain/account"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UserModel is the persistence model for account.User.
type UserModel struct {
	BaseModel
	FirstName      string     `gorm:"type:varchar(100);not null"`
	MiddleName     string     `gorm:"type:varchar(100)"`
	LastName       string     `gorm:"type:varchar(100);not null"`
	SecondLastName string     `gorm:"type:varchar(100)"`
	Email          string     `gorm:"type:varchar(255);not null;uniqueIndex"`
	PasswordHash   string     `gorm:"type:varchar(255);not null"`
	PlanID         *uuid.UUID `gorm:"type:uuid;index"`
	LastLoginAt    *time.Time
}

// TableName returns the table name for GORM
func (UserModel) TableName() string { return "users" }

// ToDomain converts the model to a domain user.
func (m *UserModel) ToDomain() *account.User {
	return &account.User{
		BaseEntity:     m.BaseModel.ToDomain(),
		FirstName:      m.FirstName,
		MiddleName:     m.MiddleName,
		LastName:       m.LastName,
		SecondLastName: m.SecondLastName,
		Email:          m.Email,
		PasswordHash:   m.PasswordHash,
		PlanID:         m.PlanID,
		LastLoginAt:    m.LastLoginAt,
	}
}

// UserModelFromDomain builds a model from a domain user.
func UserModelFromDomain(u *account.User) *UserModel {
	m := &UserModel{
		FirstName:      u.FirstName,
		MiddleName:     u.MiddleName,
		LastName:       u.LastName,
		SecondLastName: u.SecondLastName,
		Email:          u.Email,
		PasswordHash:   u.PasswordHash,
		PlanID:         u.PlanID,
		LastLoginAt:    u.LastLoginAt,
	}
	m.BaseModel.FromDomain(u.BaseEntity)
	return m
}

// PaymentPlanModel is the persistence model for account.PaymentPlan.
type PaymentPlanModel struct {
	BaseModel
	Description  string          `gorm:"type:varchar(255);not null"`
	CreditAmount int             `gorm:"not null"`
	Price        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
}

// TableName returns the table name for GORM
func (PaymentPlanModel) TableName() string { return "payment_plans" }

// ToDomain converts the model to a domain plan.
func (m *PaymentPlanModel) ToDomain() *account.PaymentPlan {
	return &account.PaymentPlan{
		BaseEntity:   m.BaseModel.ToDomain(),
		Description:  m.Description,
		CreditAmount: m.CreditAmount,
		Price:        m.Price,
	}
}

// PaymentPlanModelFromDomain builds a model from a domain plan.
func PaymentPlanModelFromDomain(p *account.PaymentPlan) *PaymentPlanModel {
	m := &PaymentPlanModel{
		Description:  p.Description,
		CreditAmount: p.CreditAmount,
		Price:        p.Price,
	}
	m.BaseModel.FromDomain(p.BaseEntity)
	return m
}

// CreditModel is the persistence model for account.Credit.
type CreditModel struct {
	OwnedModel
	Amount    int        `gorm:"not null"`
	Source    string     `gorm:"type:varchar(20);not null"`
	PlanID    *uuid.UUID `gorm:"type:uuid"`
	InvoiceID *uuid.UUID `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (CreditModel) TableName() string { return "credits" }

// ToDomain converts the model to a domain credit entry.
func (m *CreditModel) ToDomain() *account.Credit {
	return &account.Credit{
		BaseEntity: m.BaseModel.ToDomain(),
		UserID:     m.UserID,
		Amount:     m.Amount,
		Source:     account.CreditSource(m.Source),
		PlanID:     m.PlanID,
		InvoiceID:  m.InvoiceID,
	}
}

// CreditModelFromDomain builds a model from a domain credit entry.
func CreditModelFromDomain(c *account.Credit) *CreditModel {
	m := &CreditModel{
		Amount:    c.Amount,
		Source:    string(c.Source),
		PlanID:    c.PlanID,
		InvoiceID: c.InvoiceID,
	}
	m.BaseModel.FromDomain(c.BaseEntity)
	m.UserID = c.UserID
	return m
}

// SessionModel is the persistence model for account.Session.
type SessionModel struct {
	OwnedModel
	TokenID   string    `gorm:"type:varchar(64);not null;uniqueIndex"`
	ExpiresAt time.Time `gorm:"not null;index"`
	UserAgent string    `gorm:"type:varchar(512)"`
	ClientIP  string    `gorm:"type:varchar(64)"`
}

// TableName returns the table name for GORM
func (SessionModel) TableName() string { return "sessions" }

// ToDomain converts the model to a domain session.
func (m *SessionModel) ToDomain() *account.Session {
	return &account.Session{
		BaseEntity: m.BaseModel.ToDomain(),
		UserID:     m.UserID,
		TokenID:    m.TokenID,
		ExpiresAt:  m.ExpiresAt,
		UserAgent:  m.UserAgent,
		ClientIP:   m.ClientIP,
	}
}

// SessionModelFromDomain builds a model from a domain session.
func SessionModelFromDomain(s *account.Session) *SessionModel {
	m := &SessionModel{
		TokenID:   s.TokenID,
		ExpiresAt: s.ExpiresAt,
		UserAgent: s.UserAgent,
		ClientIP:  s.ClientIP,
	}
	m.BaseModel.FromDomain(s.BaseEntity)
	m.UserID = s.UserID
	return m
}
