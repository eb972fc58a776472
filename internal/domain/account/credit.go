package account

import (
	"github.com/facturasnap/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// CreditSource records why a ledger entry exists.
type CreditSource string

const (
	CreditSourceManual      CreditSource = "manual"
	CreditSourcePurchase    CreditSource = "purchase"
	CreditSourceConsumption CreditSource = "consumption"
	CreditSourceRefund      CreditSource = "refund"
)

// Credit is one entry of a user's credit ledger. The balance is the sum
// of all entries; consumption entries are negative.
type Credit struct {
	shared.BaseEntity
	UserID    uuid.UUID
	Amount    int
	Source    CreditSource
	PlanID    *uuid.UUID
	InvoiceID *uuid.UUID
}

// NewManualCredit creates a positive adjustment.
func NewManualCredit(userID uuid.UUID, amount int) (*Credit, error) {
	if amount <= 0 {
		return nil, shared.NewDomainError("INVALID_CREDIT", "Credit amount must be positive")
	}
	return &Credit{
		BaseEntity: shared.NewBaseEntity(),
		UserID:     userID,
		Amount:     amount,
		Source:     CreditSourceManual,
	}, nil
}

// NewPurchaseCredit credits the plan's amount to the user.
func NewPurchaseCredit(userID uuid.UUID, plan *PaymentPlan) *Credit {
	planID := plan.ID
	return &Credit{
		BaseEntity: shared.NewBaseEntity(),
		UserID:     userID,
		Amount:     plan.CreditAmount,
		Source:     CreditSourcePurchase,
		PlanID:     &planID,
	}
}

// NewConsumption debits one credit for a generated invoice.
func NewConsumption(userID uuid.UUID, invoiceID *uuid.UUID) *Credit {
	return &Credit{
		BaseEntity: shared.NewBaseEntity(),
		UserID:     userID,
		Amount:     -1,
		Source:     CreditSourceConsumption,
		InvoiceID:  invoiceID,
	}
}

// NewRefund returns the credit a consumption took. It is used when the
// consumption was reserved for an invoice that was never generated.
func NewRefund(consumption *Credit) *Credit {
	return &Credit{
		BaseEntity: shared.NewBaseEntity(),
		UserID:     consumption.UserID,
		Amount:     -consumption.Amount,
		Source:     CreditSourceRefund,
	}
}

// AttachInvoice links a consumption to the invoice it paid for.
func (c *Credit) AttachInvoice(invoiceID uuid.UUID) {
	c.InvoiceID = &invoiceID
	c.Touch()
}

// SetAmount changes a manual entry. Other sources are immutable.
func (c *Credit) SetAmount(amount int) error {
	if c.Source != CreditSourceManual {
		return shared.NewDomainError("CREDIT_IMMUTABLE", "Only manual credits can be edited")
	}
	if amount <= 0 {
		return shared.NewDomainError("INVALID_CREDIT", "Credit amount must be positive")
	}
	c.Amount = amount
	c.Touch()
	return nil
}
