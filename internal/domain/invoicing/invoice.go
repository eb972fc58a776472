package invoicing

import (
	"strings"
	"time"

	"github.com/facturasnap/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Invoice is a generated (or manually recorded) invoice document.
type Invoice struct {
	shared.BaseEntity
	UserID          uuid.UUID
	MerchantID      string
	EstablishmentID *uuid.UUID
	Folio           string
	TransactionDate time.Time
	Subtotal        decimal.Decimal
	Total           decimal.Decimal
	DocumentURL     string
	ArchiveKey      string
}

// InvoiceFields carries the mutable fields of an invoice.
type InvoiceFields struct {
	MerchantID      string
	EstablishmentID *uuid.UUID
	Folio           string
	TransactionDate time.Time
	Subtotal        decimal.Decimal
	Total           decimal.Decimal
	DocumentURL     string
}

// NewInvoice validates and creates an invoice owned by userID.
func NewInvoice(userID uuid.UUID, f InvoiceFields) (*Invoice, error) {
	inv := &Invoice{BaseEntity: shared.NewBaseEntity(), UserID: userID}
	if err := inv.Update(f); err != nil {
		return nil, err
	}
	return inv, nil
}

// NewGeneratedInvoice records the outcome of a successful automation run.
// Amounts are unknown at that point and stay zero.
func NewGeneratedInvoice(userID uuid.UUID, merchantID, folio, documentURL string, at time.Time) *Invoice {
	return &Invoice{
		BaseEntity:      shared.NewBaseEntity(),
		UserID:          userID,
		MerchantID:      merchantID,
		Folio:           folio,
		TransactionDate: at,
		Subtotal:        decimal.Zero,
		Total:           decimal.Zero,
		DocumentURL:     documentURL,
	}
}

// Update validates and replaces all mutable fields.
func (i *Invoice) Update(f InvoiceFields) error {
	folio := strings.TrimSpace(f.Folio)
	if folio == "" {
		return shared.NewDomainError("INVALID_INVOICE", "Folio is required")
	}
	if strings.TrimSpace(f.MerchantID) == "" {
		return shared.NewDomainError("INVALID_INVOICE", "Merchant is required")
	}
	if f.Subtotal.IsNegative() || f.Total.IsNegative() {
		return shared.NewDomainError("INVALID_INVOICE", "Amounts cannot be negative")
	}
	if f.Total.LessThan(f.Subtotal) {
		return shared.NewDomainError("INVALID_INVOICE", "Total cannot be less than subtotal")
	}
	i.MerchantID = strings.ToLower(strings.TrimSpace(f.MerchantID))
	i.EstablishmentID = f.EstablishmentID
	i.Folio = folio
	i.TransactionDate = f.TransactionDate
	i.Subtotal = f.Subtotal.Round(2)
	i.Total = f.Total.Round(2)
	i.DocumentURL = strings.TrimSpace(f.DocumentURL)
	i.Touch()
	return nil
}

// Tax is Total minus Subtotal.
func (i *Invoice) Tax() decimal.Decimal {
	return i.Total.Sub(i.Subtotal)
}

// SetArchiveKey records where the document copy was stored.
func (i *Invoice) SetArchiveKey(key string) {
	i.ArchiveKey = key
	i.Touch()
}
