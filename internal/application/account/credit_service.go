package account

import (
	"context"

	"github.com/facturasnap/backend/internal/domain/account"
	"github.com/facturasnap/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreditService manages a user's credit ledger.
type CreditService struct {
	credits account.CreditRepository
	plans   account.PaymentPlanRepository
	logger  *zap.Logger
}

// NewCreditService creates a new CreditService
func NewCreditService(credits account.CreditRepository, plans account.PaymentPlanRepository, logger *zap.Logger) *CreditService {
	return &CreditService{credits: credits, plans: plans, logger: logger}
}

// List returns a page of the user's ledger entries.
func (s *CreditService) List(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]account.Credit, int64, error) {
	return s.credits.FindAllForUser(ctx, userID, filter)
}

// Get returns one of the user's ledger entries.
func (s *CreditService) Get(ctx context.Context, userID, id uuid.UUID) (*account.Credit, error) {
	return s.credits.FindByIDForUser(ctx, userID, id)
}

// Balance returns the user's available credits.
func (s *CreditService) Balance(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.credits.Balance(ctx, userID)
}

// Create adds a manual credit.
func (s *CreditService) Create(ctx context.Context, userID uuid.UUID, amount int) (*account.Credit, error) {
	credit, err := account.NewManualCredit(userID, amount)
	if err != nil {
		return nil, err
	}
	if err := s.credits.Save(ctx, credit); err != nil {
		return nil, err
	}
	return credit, nil
}

// Update changes the amount of a manual credit.
func (s *CreditService) Update(ctx context.Context, userID, id uuid.UUID, amount int) (*account.Credit, error) {
	credit, err := s.credits.FindByIDForUser(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := credit.SetAmount(amount); err != nil {
		return nil, err
	}
	if err := s.credits.Save(ctx, credit); err != nil {
		return nil, err
	}
	return credit, nil
}

// Delete removes a ledger entry.
func (s *CreditService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return s.credits.DeleteForUser(ctx, userID, id)
}

// Purchase credits the user with the plan's amount.
func (s *CreditService) Purchase(ctx context.Context, userID, planID uuid.UUID) (*account.Credit, error) {
	plan, err := s.plans.FindByID(ctx, planID)
	if err != nil {
		return nil, err
	}
	credit := account.NewPurchaseCredit(userID, plan)
	if err := s.credits.Save(ctx, credit); err != nil {
		return nil, err
	}
	s.logger.Info("Credits purchased",
		zap.String("user_id", userID.String()),
		zap.String("plan_id", planID.String()),
		zap.Int("amount", credit.Amount),
	)
	return credit, nil
}
