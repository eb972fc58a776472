package handler

import (
	"github.com/facturasnap/backend/internal/domain/extraction"
	"github.com/google/uuid"
)

// =====================
// Legacy invoicing DTOs
// =====================

// ExtractTextRequest is the body of POST /extract-text
type ExtractTextRequest struct {
	Base64Image string `json:"base64Image"`
	MerchantID  string `json:"merchantId" example:"super-aki"`
}

// ExtractTextResponse is the success body of POST /extract-text
type ExtractTextResponse struct {
	ExtractedText string `json:"extractedText" example:"482931"`
}

// LegacyGenerateRequest is the body of POST /generar-factura-<merchant>
type LegacyGenerateRequest struct {
	TaxIDField      string `json:"taxIdField" example:"XAXX010101000"`
	FolioField      string `json:"folioField" example:"482931"`
	CFDIUsage       string `json:"cfdiUsage" example:"G03"`
	TaxRegimeOption string `json:"taxRegimeOption" example:"601"`
}

// AutomationRequest converts the legacy body into the core request.
func (r LegacyGenerateRequest) AutomationRequest() extraction.AutomationRequest {
	return extraction.AutomationRequest{
		TaxID:           r.TaxIDField,
		Folio:           r.FolioField,
		CFDIUsage:       r.CFDIUsage,
		TaxRegimeOption: r.TaxRegimeOption,
	}
}

// LegacyGenerateResponse is the success body of POST /generar-factura-<merchant>
type LegacyGenerateResponse struct {
	DocumentURL string `json:"documentUrl" example:"http://factura.superaki.mx/tickets/Descargas/482931.pdf"`
}

// =====================
// Versioned DTOs
// =====================

// ExtractionRequest is the body of POST /api/v1/extractions
type ExtractionRequest struct {
	Base64Image string `json:"base64Image" binding:"required"`
	MerchantID  string `json:"merchantId" binding:"required,max=64"`
}

// ExtractionResponse carries the folio and any extra fields found on a receipt
type ExtractionResponse struct {
	MerchantID string            `json:"merchantId"`
	Folio      string            `json:"folio"`
	Fields     map[string]string `json:"fields,omitempty"`
}

// GenerateInvoiceRequest is the body of POST /api/v1/invoices/generate/:merchant.
// Blank fields are filled from the referenced tax record.
type GenerateInvoiceRequest struct {
	TaxID           string     `json:"taxId" binding:"omitempty,rfc"`
	Folio           string     `json:"folio" binding:"required,max=64"`
	CFDIUsage       string     `json:"cfdiUsage" binding:"max=128"`
	TaxRegimeOption string     `json:"taxRegimeOption" binding:"max=128"`
	TaxRecordID     *uuid.UUID `json:"taxRecordId"`
}

// GenerateInvoiceResponse is the outcome of a generation
type GenerateInvoiceResponse struct {
	DocumentURL string           `json:"documentUrl"`
	Attempts    int              `json:"attempts"`
	Invoice     *InvoiceResponse `json:"invoice,omitempty"`
}

// MerchantResponse describes a registered merchant
type MerchantResponse struct {
	ID                 string   `json:"id" example:"super-aki"`
	DisplayName        string   `json:"displayName" example:"Super Aki"`
	SupportsAutomation bool     `json:"supportsAutomation"`
	OCRLanguage        string   `json:"ocrLanguage" example:"spa"`
	Fields             []string `json:"fields,omitempty"`
}

func toMerchantResponse(m *extraction.MerchantAdapter) MerchantResponse {
	return MerchantResponse{
		ID:                 m.ID(),
		DisplayName:        m.DisplayName(),
		SupportsAutomation: m.SupportsAutomation(),
		OCRLanguage:        m.OCRLanguage(),
		Fields:             m.FieldNames(),
	}
}
