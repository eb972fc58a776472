package persistence

import (
	"context"

	"github.com/facturasnap/backend/internal/domain/invoicing"
	"github.com/facturasnap/backend/internal/domain/shared"
	"github.com/facturasnap/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var establishmentListSpec = listSpec{
	orderable:  map[string]bool{"created_at": true, "name": true, "state": true},
	searchable: []string{"name", "state", "merchant_id"},
}

// GormEstablishmentRepository implements invoicing.EstablishmentRepository
type GormEstablishmentRepository struct {
	db *gorm.DB
}

// NewGormEstablishmentRepository creates a new GormEstablishmentRepository
func NewGormEstablishmentRepository(db *gorm.DB) *GormEstablishmentRepository {
	return &GormEstablishmentRepository{db: db}
}

// FindByID finds an establishment by id
func (r *GormEstablishmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*invoicing.Establishment, error) {
	m, err := first[models.EstablishmentModel](ctx, r.db, byID(id))
	if err != nil {
		return nil, err
	}
	return m.ToDomain(), nil
}

// FindAll lists establishments
func (r *GormEstablishmentRepository) FindAll(ctx context.Context, filter shared.Filter) ([]invoicing.Establishment, int64, error) {
	rows, total, err := list[models.EstablishmentModel](ctx, r.db, establishmentListSpec, filter, all)
	if err != nil {
		return nil, 0, err
	}
	return mapDomain(rows, (*models.EstablishmentModel).ToDomain), total, nil
}

// Save creates or updates an establishment
func (r *GormEstablishmentRepository) Save(ctx context.Context, e *invoicing.Establishment) error {
	return r.db.WithContext(ctx).Save(models.EstablishmentModelFromDomain(e)).Error
}

// Delete removes an establishment
func (r *GormEstablishmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return remove[models.EstablishmentModel](ctx, r.db, byID(id))
}

var _ invoicing.EstablishmentRepository = (*GormEstablishmentRepository)(nil)
