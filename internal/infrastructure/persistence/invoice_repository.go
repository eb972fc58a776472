package persistence

import (
	"context"

	"github.com/facturasnap/backend/internal/domain/invoicing"
	"github.com/facturasnap/backend/internal/domain/shared"
	"github.com/facturasnap/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var invoiceListSpec = listSpec{
	orderable:  map[string]bool{"created_at": true, "transaction_date": true, "total": true, "folio": true},
	searchable: []string{"folio", "merchant_id"},
}

// GormInvoiceRepository implements invoicing.InvoiceRepository
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// FindByIDForUser finds one of the user's invoices
func (r *GormInvoiceRepository) FindByIDForUser(ctx context.Context, userID, id uuid.UUID) (*invoicing.Invoice, error) {
	m, err := first[models.InvoiceModel](ctx, r.db, ownedByID(userID, id))
	if err != nil {
		return nil, err
	}
	return m.ToDomain(), nil
}

// FindAllForUser lists the user's invoices
func (r *GormInvoiceRepository) FindAllForUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]invoicing.Invoice, int64, error) {
	rows, total, err := list[models.InvoiceModel](ctx, r.db, invoiceListSpec, filter, ownedBy(userID))
	if err != nil {
		return nil, 0, err
	}
	return mapDomain(rows, (*models.InvoiceModel).ToDomain), total, nil
}

// Save creates or updates an invoice
func (r *GormInvoiceRepository) Save(ctx context.Context, inv *invoicing.Invoice) error {
	return r.db.WithContext(ctx).Save(models.InvoiceModelFromDomain(inv)).Error
}

// DeleteForUser removes one of the user's invoices
func (r *GormInvoiceRepository) DeleteForUser(ctx context.Context, userID, id uuid.UUID) error {
	return remove[models.InvoiceModel](ctx, r.db, ownedByID(userID, id))
}

var _ invoicing.InvoiceRepository = (*GormInvoiceRepository)(nil)
