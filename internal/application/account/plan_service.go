package account

import (
	"context"

	"github.com/facturasnap/backend/internal/domain/account"
	"github.com/facturasnap/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PlanService manages payment plans.
type PlanService struct {
	plans  account.PaymentPlanRepository
	logger *zap.Logger
}

// NewPlanService creates a new PlanService
func NewPlanService(plans account.PaymentPlanRepository, logger *zap.Logger) *PlanService {
	return &PlanService{plans: plans, logger: logger}
}

// List returns a page of plans.
func (s *PlanService) List(ctx context.Context, filter shared.Filter) ([]account.PaymentPlan, int64, error) {
	return s.plans.FindAll(ctx, filter)
}

// Get returns one plan.
func (s *PlanService) Get(ctx context.Context, id uuid.UUID) (*account.PaymentPlan, error) {
	return s.plans.FindByID(ctx, id)
}

// Create adds a plan.
func (s *PlanService) Create(ctx context.Context, input PlanInput) (*account.PaymentPlan, error) {
	plan, err := account.NewPaymentPlan(input.Description, input.CreditAmount, input.Price)
	if err != nil {
		return nil, err
	}
	if err := s.plans.Save(ctx, plan); err != nil {
		return nil, err
	}
	s.logger.Info("Payment plan created", zap.String("plan_id", plan.ID.String()))
	return plan, nil
}

// Update replaces a plan's terms.
func (s *PlanService) Update(ctx context.Context, id uuid.UUID, input PlanInput) (*account.PaymentPlan, error) {
	plan, err := s.plans.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := plan.Update(input.Description, input.CreditAmount, input.Price); err != nil {
		return nil, err
	}
	if err := s.plans.Save(ctx, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// Delete removes a plan.
func (s *PlanService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.plans.Delete(ctx, id)
}
