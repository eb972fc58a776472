package handler

import (
	"time"

	invoicingapp "github.com/facturasnap/backend/internal/application/invoicing"
	"github.com/facturasnap/backend/internal/domain/invoicing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =====================
// Invoice DTOs
// =====================

// InvoiceRequest is the body of invoice create and update
type InvoiceRequest struct {
	MerchantID      string          `json:"merchantId" binding:"required,max=64"`
	EstablishmentID *uuid.UUID      `json:"establishmentId"`
	Folio           string          `json:"folio" binding:"required,max=64"`
	TransactionDate time.Time       `json:"transactionDate" binding:"required"`
	Subtotal        decimal.Decimal `json:"subtotal" swaggertype:"string" example:"100.00"`
	Total           decimal.Decimal `json:"total" swaggertype:"string" example:"116.00"`
	DocumentURL     string          `json:"documentUrl" binding:"omitempty,url"`
}

func (r InvoiceRequest) fields() invoicing.InvoiceFields {
	return invoicing.InvoiceFields{
		MerchantID:      r.MerchantID,
		EstablishmentID: r.EstablishmentID,
		Folio:           r.Folio,
		TransactionDate: r.TransactionDate,
		Subtotal:        r.Subtotal,
		Total:           r.Total,
		DocumentURL:     r.DocumentURL,
	}
}

// InvoiceResponse represents a stored invoice
type InvoiceResponse struct {
	ID              uuid.UUID       `json:"id"`
	MerchantID      string          `json:"merchantId"`
	EstablishmentID *uuid.UUID      `json:"establishmentId,omitempty"`
	Folio           string          `json:"folio"`
	TransactionDate time.Time       `json:"transactionDate"`
	Subtotal        decimal.Decimal `json:"subtotal" swaggertype:"string"`
	Total           decimal.Decimal `json:"total" swaggertype:"string"`
	DocumentURL     string          `json:"documentUrl,omitempty"`
	Archived        bool            `json:"archived"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

func toInvoiceResponse(inv *invoicing.Invoice) *InvoiceResponse {
	if inv == nil {
		return nil
	}
	return &InvoiceResponse{
		ID:              inv.ID,
		MerchantID:      inv.MerchantID,
		EstablishmentID: inv.EstablishmentID,
		Folio:           inv.Folio,
		TransactionDate: inv.TransactionDate,
		Subtotal:        inv.Subtotal,
		Total:           inv.Total,
		DocumentURL:     inv.DocumentURL,
		Archived:        inv.ArchiveKey != "",
		CreatedAt:       inv.CreatedAt,
		UpdatedAt:       inv.UpdatedAt,
	}
}

// DocumentLinkResponse is a temporary download location for an invoice
type DocumentLinkResponse struct {
	URL       string     `json:"url"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
	Archived  bool       `json:"archived"`
}

func toDocumentLinkResponse(link *invoicingapp.DocumentLink) DocumentLinkResponse {
	resp := DocumentLinkResponse{URL: link.URL, Archived: link.Archived}
	if !link.ExpiresAt.IsZero() {
		exp := link.ExpiresAt
		resp.ExpiresAt = &exp
	}
	return resp
}

// =====================
// Tax record DTOs
// =====================

// TaxRecordRequest is the body of tax record create and update
type TaxRecordRequest struct {
	BusinessName   string `json:"businessName" binding:"required,max=255"`
	TaxID          string `json:"taxId" binding:"required,rfc"`
	Street         string `json:"street" binding:"max=255"`
	ExteriorNumber string `json:"exteriorNumber" binding:"max=32"`
	CrossStreets   string `json:"crossStreets" binding:"max=255"`
	State          string `json:"state" binding:"max=100"`
	Municipality   string `json:"municipality" binding:"max=100"`
	Neighborhood   string `json:"neighborhood" binding:"max=100"`
	FiscalEmail    string `json:"fiscalEmail" binding:"omitempty,email"`
	PostalCode     string `json:"postalCode" binding:"omitempty,numeric,len=5"`
	TaxRegime      string `json:"taxRegime" binding:"omitempty,tax_regime"`
	CFDIUsage      string `json:"cfdiUsage" binding:"omitempty,cfdi_usage"`
}

func (r TaxRecordRequest) fields() invoicing.TaxRecordFields {
	return invoicing.TaxRecordFields{
		BusinessName:   r.BusinessName,
		TaxID:          r.TaxID,
		Street:         r.Street,
		ExteriorNumber: r.ExteriorNumber,
		CrossStreets:   r.CrossStreets,
		State:          r.State,
		Municipality:   r.Municipality,
		Neighborhood:   r.Neighborhood,
		FiscalEmail:    r.FiscalEmail,
		PostalCode:     r.PostalCode,
		TaxRegime:      r.TaxRegime,
		CFDIUsage:      r.CFDIUsage,
	}
}

// TaxRecordResponse represents a stored fiscal profile
type TaxRecordResponse struct {
	ID             uuid.UUID `json:"id"`
	BusinessName   string    `json:"businessName"`
	TaxID          string    `json:"taxId"`
	Street         string    `json:"street,omitempty"`
	ExteriorNumber string    `json:"exteriorNumber,omitempty"`
	CrossStreets   string    `json:"crossStreets,omitempty"`
	State          string    `json:"state,omitempty"`
	Municipality   string    `json:"municipality,omitempty"`
	Neighborhood   string    `json:"neighborhood,omitempty"`
	FiscalEmail    string    `json:"fiscalEmail,omitempty"`
	PostalCode     string    `json:"postalCode,omitempty"`
	TaxRegime      string    `json:"taxRegime,omitempty"`
	CFDIUsage      string    `json:"cfdiUsage,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func toTaxRecordResponse(r *invoicing.TaxRecord) TaxRecordResponse {
	return TaxRecordResponse{
		ID:             r.ID,
		BusinessName:   r.BusinessName,
		TaxID:          r.TaxID,
		Street:         r.Street,
		ExteriorNumber: r.ExteriorNumber,
		CrossStreets:   r.CrossStreets,
		State:          r.State,
		Municipality:   r.Municipality,
		Neighborhood:   r.Neighborhood,
		FiscalEmail:    r.FiscalEmail,
		PostalCode:     r.PostalCode,
		TaxRegime:      r.TaxRegime,
		CFDIUsage:      r.CFDIUsage,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

// =====================
// Establishment DTOs
// =====================

// EstablishmentRequest is the body of establishment create and update
type EstablishmentRequest struct {
	Name          string `json:"name" binding:"required,max=255"`
	State         string `json:"state" binding:"max=100"`
	InvoiceMethod string `json:"invoiceMethod" binding:"omitempty,oneof=portal email in_store"`
	MerchantID    string `json:"merchantId" binding:"max=64"`
}

func (r EstablishmentRequest) input() invoicingapp.EstablishmentInput {
	return invoicingapp.EstablishmentInput{
		Name:          r.Name,
		State:         r.State,
		InvoiceMethod: invoicing.InvoiceMethod(r.InvoiceMethod),
		MerchantID:    r.MerchantID,
	}
}

// EstablishmentResponse represents a store location
type EstablishmentResponse struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	State         string    `json:"state,omitempty"`
	InvoiceMethod string    `json:"invoiceMethod"`
	MerchantID    string    `json:"merchantId,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func toEstablishmentResponse(e *invoicing.Establishment) EstablishmentResponse {
	return EstablishmentResponse{
		ID:            e.ID,
		Name:          e.Name,
		State:         e.State,
		InvoiceMethod: string(e.InvoiceMethod),
		MerchantID:    e.MerchantID,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
}
