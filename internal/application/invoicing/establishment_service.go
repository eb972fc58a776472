package invoicing

import (
	"context"

	"github.com/facturasnap/backend/internal/domain/invoicing"
	"github.com/facturasnap/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EstablishmentInput contains the fields of an establishment.
type EstablishmentInput struct {
	Name          string
	State         string
	InvoiceMethod invoicing.InvoiceMethod
	MerchantID    string
}

// MerchantChecker reports whether a merchant id is registered.
type MerchantChecker func(merchantID string) bool

// EstablishmentService manages the establishment catalog.
type EstablishmentService struct {
	establishments invoicing.EstablishmentRepository
	knownMerchant  MerchantChecker
	logger         *zap.Logger
}

// NewEstablishmentService creates a new EstablishmentService. A nil
// knownMerchant accepts any merchant id.
func NewEstablishmentService(establishments invoicing.EstablishmentRepository, knownMerchant MerchantChecker, logger *zap.Logger) *EstablishmentService {
	return &EstablishmentService{establishments: establishments, knownMerchant: knownMerchant, logger: logger}
}

func (s *EstablishmentService) List(ctx context.Context, filter shared.Filter) ([]invoicing.Establishment, int64, error) {
	return s.establishments.FindAll(ctx, filter)
}

func (s *EstablishmentService) Get(ctx context.Context, id uuid.UUID) (*invoicing.Establishment, error) {
	return s.establishments.FindByID(ctx, id)
}

func (s *EstablishmentService) Create(ctx context.Context, input EstablishmentInput) (*invoicing.Establishment, error) {
	if err := s.checkMerchant(input.MerchantID); err != nil {
		return nil, err
	}
	e, err := invoicing.NewEstablishment(input.Name, input.State, input.InvoiceMethod, input.MerchantID)
	if err != nil {
		return nil, err
	}
	if err := s.establishments.Save(ctx, e); err != nil {
		return nil, err
	}
	s.logger.Info("Establishment created", zap.String("establishment_id", e.ID.String()))
	return e, nil
}

func (s *EstablishmentService) Update(ctx context.Context, id uuid.UUID, input EstablishmentInput) (*invoicing.Establishment, error) {
	if err := s.checkMerchant(input.MerchantID); err != nil {
		return nil, err
	}
	e, err := s.establishments.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := e.Update(input.Name, input.State, input.InvoiceMethod, input.MerchantID); err != nil {
		return nil, err
	}
	if err := s.establishments.Save(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *EstablishmentService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.establishments.Delete(ctx, id)
}

func (s *EstablishmentService) checkMerchant(merchantID string) error {
	if merchantID == "" || s.knownMerchant == nil || s.knownMerchant(merchantID) {
		return nil
	}
	return shared.NewDomainError("UNSUPPORTED_MERCHANT", "Merchant is not registered")
}
