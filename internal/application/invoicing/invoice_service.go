// Package invoicing manages a user's stored invoices, tax records and the
// shared establishment catalog.
package invoicing

import (
	"context"
	"time"

	"github.com/facturasnap/backend/internal/domain/invoicing"
	"github.com/facturasnap/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultLinkTTL is how long a document link stays valid.
const DefaultLinkTTL = 15 * time.Minute

var errNoArchivedDocument = shared.NewDomainError("DOCUMENT_NOT_ARCHIVED", "Invoice has no archived document")

// DocumentLinker issues temporary download links for archived documents.
type DocumentLinker interface {
	PresignDownload(ctx context.Context, key string, ttl time.Duration) (string, time.Time, error)
}

// DocumentLink is a temporary download location.
type DocumentLink struct {
	URL       string
	ExpiresAt time.Time
	Archived  bool
}

// InvoiceService manages the caller's invoices.
type InvoiceService struct {
	invoices       invoicing.InvoiceRepository
	establishments invoicing.EstablishmentRepository
	linker         DocumentLinker
	linkTTL        time.Duration
	logger         *zap.Logger
}

// NewInvoiceService creates a new InvoiceService. linker may be nil when no
// archive is configured.
func NewInvoiceService(
	invoices invoicing.InvoiceRepository,
	establishments invoicing.EstablishmentRepository,
	linker DocumentLinker,
	logger *zap.Logger,
) *InvoiceService {
	return &InvoiceService{
		invoices:       invoices,
		establishments: establishments,
		linker:         linker,
		linkTTL:        DefaultLinkTTL,
		logger:         logger,
	}
}

// List returns a page of the user's invoices.
func (s *InvoiceService) List(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]invoicing.Invoice, int64, error) {
	return s.invoices.FindAllForUser(ctx, userID, filter)
}

// Get returns one of the user's invoices.
func (s *InvoiceService) Get(ctx context.Context, userID, id uuid.UUID) (*invoicing.Invoice, error) {
	return s.invoices.FindByIDForUser(ctx, userID, id)
}

// Create records an invoice obtained outside the automation.
func (s *InvoiceService) Create(ctx context.Context, userID uuid.UUID, fields invoicing.InvoiceFields) (*invoicing.Invoice, error) {
	if err := s.checkEstablishment(ctx, fields.EstablishmentID); err != nil {
		return nil, err
	}
	inv, err := invoicing.NewInvoice(userID, fields)
	if err != nil {
		return nil, err
	}
	if err := s.invoices.Save(ctx, inv); err != nil {
		return nil, err
	}
	s.logger.Info("Invoice created",
		zap.String("invoice_id", inv.ID.String()),
		zap.String("merchant_id", inv.MerchantID),
	)
	return inv, nil
}

// Update replaces an invoice's fields.
func (s *InvoiceService) Update(ctx context.Context, userID, id uuid.UUID, fields invoicing.InvoiceFields) (*invoicing.Invoice, error) {
	inv, err := s.invoices.FindByIDForUser(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkEstablishment(ctx, fields.EstablishmentID); err != nil {
		return nil, err
	}
	if err := inv.Update(fields); err != nil {
		return nil, err
	}
	if err := s.invoices.Save(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

// Delete removes one of the user's invoices.
func (s *InvoiceService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return s.invoices.DeleteForUser(ctx, userID, id)
}

// DocumentLink returns where the invoice document can be downloaded. An
// archived copy is preferred over the merchant portal link.
func (s *InvoiceService) DocumentLink(ctx context.Context, userID, id uuid.UUID) (*DocumentLink, error) {
	inv, err := s.invoices.FindByIDForUser(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if inv.ArchiveKey != "" && s.linker != nil {
		url, expires, err := s.linker.PresignDownload(ctx, inv.ArchiveKey, s.linkTTL)
		if err == nil {
			return &DocumentLink{URL: url, ExpiresAt: expires, Archived: true}, nil
		}
		s.logger.Warn("Failed to presign archived document",
			zap.String("invoice_id", inv.ID.String()),
			zap.Error(err),
		)
	}
	if inv.DocumentURL == "" {
		return nil, errNoArchivedDocument
	}
	return &DocumentLink{URL: inv.DocumentURL}, nil
}

func (s *InvoiceService) checkEstablishment(ctx context.Context, id *uuid.UUID) error {
	if id == nil {
		return nil
	}
	_, err := s.establishments.FindByID(ctx, *id)
	return err
}
