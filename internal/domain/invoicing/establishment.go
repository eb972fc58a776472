package invoicing

import (
	"strings"

	"github.com/facturasnap/backend/internal/domain/shared"
)

// InvoiceMethod tells how an establishment issues invoices.
type InvoiceMethod string

const (
	InvoiceMethodPortal  InvoiceMethod = "portal"
	InvoiceMethodEmail   InvoiceMethod = "email"
	InvoiceMethodInStore InvoiceMethod = "in_store"
)

// Establishment is a store location.
type Establishment struct {
	shared.BaseEntity
	Name          string
	State         string
	InvoiceMethod InvoiceMethod
	MerchantID    string
}

// NewEstablishment validates and creates an establishment.
func NewEstablishment(name, state string, method InvoiceMethod, merchantID string) (*Establishment, error) {
	e := &Establishment{BaseEntity: shared.NewBaseEntity()}
	if err := e.Update(name, state, method, merchantID); err != nil {
		return nil, err
	}
	return e, nil
}

// Update validates and replaces all fields.
func (e *Establishment) Update(name, state string, method InvoiceMethod, merchantID string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_ESTABLISHMENT", "Name is required")
	}
	switch method {
	case InvoiceMethodPortal, InvoiceMethodEmail, InvoiceMethodInStore:
	case "":
		method = InvoiceMethodPortal
	default:
		return shared.NewDomainError("INVALID_ESTABLISHMENT", "Unknown invoice method")
	}
	e.Name = name
	e.State = strings.TrimSpace(state)
	e.InvoiceMethod = method
	e.MerchantID = strings.ToLower(strings.TrimSpace(merchantID))
	e.Touch()
	return nil
}
