package invoicing

import (
	"net/mail"
	"strings"

	"github.com/facturasnap/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// TaxRecord is a buyer fiscal profile used to request invoices.
type TaxRecord struct {
	shared.BaseEntity
	UserID         uuid.UUID
	BusinessName   string
	TaxID          string
	Street         string
	ExteriorNumber string
	CrossStreets   string
	State          string
	Municipality   string
	Neighborhood   string
	FiscalEmail    string
	PostalCode     string
	TaxRegime      string
	CFDIUsage      string
}

// TaxRecordFields carries the mutable fields of a tax record.
type TaxRecordFields struct {
	BusinessName   string
	TaxID          string
	Street         string
	ExteriorNumber string
	CrossStreets   string
	State          string
	Municipality   string
	Neighborhood   string
	FiscalEmail    string
	PostalCode     string
	TaxRegime      string
	CFDIUsage      string
}

// NewTaxRecord validates and creates a tax record owned by userID.
func NewTaxRecord(userID uuid.UUID, f TaxRecordFields) (*TaxRecord, error) {
	r := &TaxRecord{BaseEntity: shared.NewBaseEntity(), UserID: userID}
	if err := r.Update(f); err != nil {
		return nil, err
	}
	return r, nil
}

// Update validates and replaces all fields.
func (r *TaxRecord) Update(f TaxRecordFields) error {
	if strings.TrimSpace(f.BusinessName) == "" {
		return shared.NewDomainError("INVALID_TAX_RECORD", "Business name is required")
	}
	if !IsValidRFC(f.TaxID) {
		return shared.NewDomainError("INVALID_RFC", "Tax ID is not a valid RFC")
	}
	if f.FiscalEmail != "" {
		if _, err := mail.ParseAddress(f.FiscalEmail); err != nil {
			return shared.NewDomainError("INVALID_EMAIL", "Fiscal email is not valid")
		}
	}
	if f.TaxRegime != "" && !IsValidTaxRegime(f.TaxRegime) {
		return shared.NewDomainError("INVALID_TAX_REGIME", "Unknown tax regime")
	}
	if f.CFDIUsage != "" && !IsValidCFDIUsage(f.CFDIUsage) {
		return shared.NewDomainError("INVALID_CFDI_USAGE", "Unknown CFDI usage")
	}

	r.BusinessName = strings.TrimSpace(f.BusinessName)
	r.TaxID = NormalizeRFC(f.TaxID)
	r.Street = strings.TrimSpace(f.Street)
	r.ExteriorNumber = strings.TrimSpace(f.ExteriorNumber)
	r.CrossStreets = strings.TrimSpace(f.CrossStreets)
	r.State = strings.TrimSpace(f.State)
	r.Municipality = strings.TrimSpace(f.Municipality)
	r.Neighborhood = strings.TrimSpace(f.Neighborhood)
	r.FiscalEmail = strings.ToLower(strings.TrimSpace(f.FiscalEmail))
	r.PostalCode = strings.TrimSpace(f.PostalCode)
	r.TaxRegime = strings.TrimSpace(f.TaxRegime)
	r.CFDIUsage = strings.ToUpper(strings.TrimSpace(f.CFDIUsage))
	r.Touch()
	return nil
}
