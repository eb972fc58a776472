package persistence

import (
	"context"

	"github.com/facturasnap/backend/internal/domain/invoicing"
	"github.com/facturasnap/backend/internal/domain/shared"
	"github.com/facturasnap/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var taxRecordListSpec = listSpec{
	orderable:  map[string]bool{"created_at": true, "business_name": true, "tax_id": true},
	searchable: []string{"business_name", "tax_id"},
}

// GormTaxRecordRepository implements invoicing.TaxRecordRepository
type GormTaxRecordRepository struct {
	db *gorm.DB
}

// NewGormTaxRecordRepository creates a new GormTaxRecordRepository
func NewGormTaxRecordRepository(db *gorm.DB) *GormTaxRecordRepository {
	return &GormTaxRecordRepository{db: db}
}

// FindByIDForUser finds one of the user's tax records
func (r *GormTaxRecordRepository) FindByIDForUser(ctx context.Context, userID, id uuid.UUID) (*invoicing.TaxRecord, error) {
	m, err := first[models.TaxRecordModel](ctx, r.db, ownedByID(userID, id))
	if err != nil {
		return nil, err
	}
	return m.ToDomain(), nil
}

// FindAllForUser lists the user's tax records
func (r *GormTaxRecordRepository) FindAllForUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]invoicing.TaxRecord, int64, error) {
	rows, total, err := list[models.TaxRecordModel](ctx, r.db, taxRecordListSpec, filter, ownedBy(userID))
	if err != nil {
		return nil, 0, err
	}
	return mapDomain(rows, (*models.TaxRecordModel).ToDomain), total, nil
}

// Save creates or updates a tax record
func (r *GormTaxRecordRepository) Save(ctx context.Context, rec *invoicing.TaxRecord) error {
	return r.db.WithContext(ctx).Save(models.TaxRecordModelFromDomain(rec)).Error
}

// DeleteForUser removes one of the user's tax records
func (r *GormTaxRecordRepository) DeleteForUser(ctx context.Context, userID, id uuid.UUID) error {
	return remove[models.TaxRecordModel](ctx, r.db, ownedByID(userID, id))
}

var _ invoicing.TaxRecordRepository = (*GormTaxRecordRepository)(nil)
