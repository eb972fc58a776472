package persistence

import (
	"context"

	"github.com/facturasnap/backend/internal/domain/account"
	"github.com/facturasnap/backend/internal/domain/shared"
	"github.com/facturasnap/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var planListSpec = listSpec{
	orderable:  map[string]bool{"created_at": true, "price": true, "credit_amount": true, "description": true},
	searchable: []string{"description"},
}

// GormPaymentPlanRepository implements account.PaymentPlanRepository
type GormPaymentPlanRepository struct {
	db *gorm.DB
}

// NewGormPaymentPlanRepository creates a new GormPaymentPlanRepository
func NewGormPaymentPlanRepository(db *gorm.DB) *GormPaymentPlanRepository {
	return &GormPaymentPlanRepository{db: db}
}

// FindByID finds a plan by id
func (r *GormPaymentPlanRepository) FindByID(ctx context.Context, id uuid.UUID) (*account.PaymentPlan, error) {
	m, err := first[models.PaymentPlanModel](ctx, r.db, byID(id))
	if err != nil {
		return nil, err
	}
	return m.ToDomain(), nil
}

// FindAll lists plans
func (r *GormPaymentPlanRepository) FindAll(ctx context.Context, filter shared.Filter) ([]account.PaymentPlan, int64, error) {
	rows, total, err := list[models.PaymentPlanModel](ctx, r.db, planListSpec, filter, all)
	if err != nil {
		return nil, 0, err
	}
	return mapDomain(rows, (*models.PaymentPlanModel).ToDomain), total, nil
}

// Save creates or updates a plan
func (r *GormPaymentPlanRepository) Save(ctx context.Context, plan *account.PaymentPlan) error {
	return r.db.WithContext(ctx).Save(models.PaymentPlanModelFromDomain(plan)).Error
}

// Delete removes a plan
func (r *GormPaymentPlanRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return remove[models.PaymentPlanModel](ctx, r.db, byID(id))
}

var _ account.PaymentPlanRepository = (*GormPaymentPlanRepository)(nil)
