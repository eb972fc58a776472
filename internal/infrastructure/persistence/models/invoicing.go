package models

import (
	"time"

	"github.com/facturasnap/backend/internal/domain/invoicing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceModel is the persistence model for invoicing.Invoice.
type InvoiceModel struct {
	OwnedModel
	MerchantID      string          `gorm:"type:varchar(64);not null;index"`
	EstablishmentID *uuid.UUID      `gorm:"type:uuid;index"`
	Folio           string          `gorm:"type:varchar(64);not null"`
	TransactionDate time.Time       `gorm:"not null"`
	Subtotal        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Total           decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	DocumentURL     string          `gorm:"type:text"`
	ArchiveKey      string          `gorm:"type:varchar(512)"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string { return "invoices" }

// ToDomain converts the model to a domain invoice.
func (m *InvoiceModel) ToDomain() *invoicing.Invoice {
	return &invoicing.Invoice{
		BaseEntity:      m.BaseModel.ToDomain(),
		UserID:          m.UserID,
		MerchantID:      m.MerchantID,
		EstablishmentID: m.EstablishmentID,
		Folio:           m.Folio,
		TransactionDate: m.TransactionDate,
		Subtotal:        m.Subtotal,
		Total:           m.Total,
		DocumentURL:     m.DocumentURL,
		ArchiveKey:      m.ArchiveKey,
	}
}

// InvoiceModelFromDomain builds a model from a domain invoice.
func InvoiceModelFromDomain(i *invoicing.Invoice) *InvoiceModel {
	m := &InvoiceModel{
		MerchantID:      i.MerchantID,
		EstablishmentID: i.EstablishmentID,
		Folio:           i.Folio,
		TransactionDate: i.TransactionDate,
		Subtotal:        i.Subtotal,
		Total:           i.Total,
		DocumentURL:     i.DocumentURL,
		ArchiveKey:      i.ArchiveKey,
	}
	m.BaseModel.FromDomain(i.BaseEntity)
	m.UserID = i.UserID
	return m
}

// TaxRecordModel is the persistence model for invoicing.TaxRecord.
type TaxRecordModel struct {
	OwnedModel
	BusinessName   string `gorm:"type:varchar(255);not null"`
	TaxID          string `gorm:"type:varchar(13);not null"`
	Street         string `gorm:"type:varchar(255)"`
	ExteriorNumber string `gorm:"type:varchar(32)"`
	CrossStreets   string `gorm:"type:varchar(255)"`
	State          string `gorm:"type:varchar(100)"`
	Municipality   string `gorm:"type:varchar(100)"`
	Neighborhood   string `gorm:"type:varchar(100)"`
	FiscalEmail    string `gorm:"type:varchar(255)"`
	PostalCode     string `gorm:"type:varchar(10)"`
	TaxRegime      string `gorm:"type:varchar(8)"`
	CFDIUsage      string `gorm:"column:cfdi_usage;type:varchar(8)"`
}

// TableName returns the table name for GORM
func (TaxRecordModel) TableName() string { return "tax_records" }

// ToDomain converts the model to a domain tax record.
func (m *TaxRecordModel) ToDomain() *invoicing.TaxRecord {
	return &invoicing.TaxRecord{
		BaseEntity:     m.BaseModel.ToDomain(),
		UserID:         m.UserID,
		BusinessName:   m.BusinessName,
		TaxID:          m.TaxID,
		Street:         m.Street,
		ExteriorNumber: m.ExteriorNumber,
		CrossStreets:   m.CrossStreets,
		State:          m.State,
		Municipality:   m.Municipality,
		Neighborhood:   m.Neighborhood,
		FiscalEmail:    m.FiscalEmail,
		PostalCode:     m.PostalCode,
		TaxRegime:      m.TaxRegime,
		CFDIUsage:      m.CFDIUsage,
	}
}

// TaxRecordModelFromDomain builds a model from a domain tax record.
func TaxRecordModelFromDomain(r *invoicing.TaxRecord) *TaxRecordModel {
	m := &TaxRecordModel{
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
	m.BaseModel.FromDomain(r.BaseEntity)
	m.UserID = r.UserID
	return m
}

// EstablishmentModel is the persistence model for invoicing.Establishment.
type EstablishmentModel struct {
	BaseModel
	Name          string `gorm:"type:varchar(255);not null"`
	State         string `gorm:"type:varchar(100)"`
	InvoiceMethod string `gorm:"type:varchar(20);not null"`
	MerchantID    string `gorm:"type:varchar(64);index"`
}

// TableName returns the table name for GORM
func (EstablishmentModel) TableName() string { return "establishments" }

// ToDomain converts the model to a domain establishment.
func (m *EstablishmentModel) ToDomain() *invoicing.Establishment {
	return &invoicing.Establishment{
		BaseEntity:    m.BaseModel.ToDomain(),
		Name:          m.Name,
		State:         m.State,
		InvoiceMethod: invoicing.InvoiceMethod(m.InvoiceMethod),
		MerchantID:    m.MerchantID,
	}
}

// EstablishmentModelFromDomain builds a model from a domain establishment.
func EstablishmentModelFromDomain(e *invoicing.Establishment) *EstablishmentModel {
	m := &EstablishmentModel{
		Name:          e.Name,
		State:         e.State,
		InvoiceMethod: string(e.InvoiceMethod),
		MerchantID:    e.MerchantID,
	}
	m.BaseModel.FromDomain(e.BaseEntity)
	return m
}
