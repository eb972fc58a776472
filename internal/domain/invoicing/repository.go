package invoicing

import (
	"context"

	"github.com/facturasnap/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// InvoiceRepository persists invoices.
type InvoiceRepository interface {
	shared.OwnedRepository[Invoice]
}

// TaxRecordRepository persists tax records.
type TaxRecordRepository interface {
	shared.OwnedRepository[TaxRecord]
}

// EstablishmentRepository persists establishments. Establishments are
// shared across users.
type EstablishmentRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Establishment, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Establishment, int64, error)
	Save(ctx context.Context, e *Establishment) error
	Delete(ctx context.Context, id uuid.UUID) error
}
