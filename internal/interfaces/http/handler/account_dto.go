package handler

import (
	"time"

	"github.com/facturasnap/backend/internal/domain/account"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =====================
// Payment plan DTOs
// =====================

// PlanRequest is the body of plan create and update
type PlanRequest struct {
	Description  string          `json:"description" binding:"required,max=255"`
	CreditAmount int             `json:"creditAmount" binding:"required,gt=0"`
	Price        decimal.Decimal `json:"price" swaggertype:"string" example:"99.00"`
}

// PlanResponse represents a payment plan
type PlanResponse struct {
	ID           uuid.UUID       `json:"id"`
	Description  string          `json:"description"`
	CreditAmount int             `json:"creditAmount"`
	Price        decimal.Decimal `json:"price" swaggertype:"string" example:"99.00"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

func toPlanResponse(p *account.PaymentPlan) PlanResponse {
	return PlanResponse{
		ID:           p.ID,
		Description:  p.Description,
		CreditAmount: p.CreditAmount,
		Price:        p.Price,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

// =====================
// Credit DTOs
// =====================

// CreditRequest is the body of a manual credit adjustment
type CreditRequest struct {
	Amount int `json:"amount" binding:"required"`
}

// PurchaseRequest buys a payment plan's credits
type PurchaseRequest struct {
	PlanID string `json:"planId" binding:"required,uuid"`
}

// CreditResponse represents one credit ledger entry
type CreditResponse struct {
	ID        uuid.UUID  `json:"id"`
	Amount    int        `json:"amount"`
	Source    string     `json:"source" example:"purchase"`
	PlanID    *uuid.UUID `json:"planId,omitempty"`
	InvoiceID *uuid.UUID `json:"invoiceId,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

func toCreditResponse(cr *account.Credit) CreditResponse {
	return CreditResponse{
		ID:        cr.ID,
		Amount:    cr.Amount,
		Source:    string(cr.Source),
		PlanID:    cr.PlanID,
		InvoiceID: cr.InvoiceID,
		CreatedAt: cr.CreatedAt,
	}
}

// =====================
// Session DTOs
// =====================

// SessionResponse represents a login session
type SessionResponse struct {
	ID        uuid.UUID `json:"id"`
	ExpiresAt time.Time `json:"expiresAt"`
	UserAgent string    `json:"userAgent,omitempty"`
	ClientIP  string    `json:"clientIp,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func toSessionResponse(s *account.Session) SessionResponse {
	return SessionResponse{
		ID:        s.ID,
		ExpiresAt: s.ExpiresAt,
		UserAgent: s.UserAgent,
		ClientIP:  s.ClientIP,
		CreatedAt: s.CreatedAt,
	}
}

func mapSlice[T, R any](items []T, fn func(*T) R) []R {
	out := make([]R, len(items))
	for i := range items {
		out[i] = fn(&items[i])
	}
	return out
}
