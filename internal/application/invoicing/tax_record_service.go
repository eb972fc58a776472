package invoicing

import (
	"context"

	"github.com/facturasnap/backend/internal/domain/invoicing"
	"github.com/facturasnap/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TaxRecordService manages the caller's fiscal profiles.
type TaxRecordService struct {
	records invoicing.TaxRecordRepository
	logger  *zap.Logger
}

// NewTaxRecordService creates a new TaxRecordService
func NewTaxRecordService(records invoicing.TaxRecordRepository, logger *zap.Logger) *TaxRecordService {
	return &TaxRecordService{records: records, logger: logger}
}

func (s *TaxRecordService) List(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]invoicing.TaxRecord, int64, error) {
	return s.records.FindAllForUser(ctx, userID, filter)
}

func (s *TaxRecordService) Get(ctx context.Context, userID, id uuid.UUID) (*invoicing.TaxRecord, error) {
	return s.records.FindByIDForUser(ctx, userID, id)
}

func (s *TaxRecordService) Create(ctx context.Context, userID uuid.UUID, fields invoicing.TaxRecordFields) (*invoicing.TaxRecord, error) {
	record, err := invoicing.NewTaxRecord(userID, fields)
	if err != nil {
		return nil, err
	}
	if err := s.records.Save(ctx, record); err != nil {
		return nil, err
	}
	s.logger.Info("Tax record created", zap.String("tax_record_id", record.ID.String()))
	return record, nil
}

func (s *TaxRecordService) Update(ctx context.Context, userID, id uuid.UUID, fields invoicing.TaxRecordFields) (*invoicing.TaxRecord, error) {
	record, err := s.records.FindByIDForUser(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := record.Update(fields); err != nil {
		return nil, err
	}
	if err := s.records.Save(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

func (s *TaxRecordService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return s.records.DeleteForUser(ctx, userID, id)
}
