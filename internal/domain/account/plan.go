package account

import (
	"strings"

	"github.com/facturasnap/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PaymentPlan is a purchasable bundle of invoice credits.
type PaymentPlan struct {
	shared.BaseEntity
	Description  string
	CreditAmount int
	Price        decimal.Decimal
}

// NewPaymentPlan validates and creates a plan.
func NewPaymentPlan(description string, creditAmount int, price decimal.Decimal) (*PaymentPlan, error) {
	p := &PaymentPlan{BaseEntity: shared.NewBaseEntity()}
	if err := p.Update(description, creditAmount, price); err != nil {
		return nil, err
	}
	return p, nil
}

// Update replaces the plan's terms.
func (p *PaymentPlan) Update(description string, creditAmount int, price decimal.Decimal) error {
	description = strings.TrimSpace(description)
	if description == "" {
		return shared.NewDomainError("INVALID_PLAN", "Plan description is required")
	}
	if creditAmount <= 0 {
		return shared.NewDomainError("INVALID_PLAN", "Credit amount must be positive")
	}
	if price.IsNegative() {
		return shared.NewDomainError("INVALID_PLAN", "Price cannot be negative")
	}
	p.Description = description
	p.CreditAmount = creditAmount
	p.Price = price.Round(2)
	p.Touch()
	return nil
}

// PricePerCredit is the unit price, rounded to cents.
func (p *PaymentPlan) PricePerCredit() decimal.Decimal {
	return p.Price.Div(decimal.NewFromInt(int64(p.CreditAmount))).Round(2)
}
