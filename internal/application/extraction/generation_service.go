package extraction

import (
	"context"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/facturasnap/backend/internal/domain/account"
	"github.com/facturasnap/backend/internal/domain/extraction"
	"github.com/facturasnap/backend/internal/domain/invoicing"
	"github.com/facturasnap/backend/internal/domain/shared"
	"github.com/facturasnap/backend/internal/infrastructure/logger"
	"github.com/facturasnap/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// GenerationConfig is the caller-side policy around an automation run.
type GenerationConfig struct {
	// RunTimeout bounds a whole run including retries (0 disables).
	RunTimeout time.Duration
	// RetryAttempts is the total number of runs; values below 1 mean 1.
	RetryAttempts uint
	RetryDelay    time.Duration
	// RetryableKinds lists the failure kinds that trigger another run.
	RetryableKinds []extraction.Kind
	// ConsumeCredits reserves one credit per run and refunds it when the
	// run fails.
	ConsumeCredits bool
	// ArchiveTimeout bounds the document copy to storage.
	ArchiveTimeout time.Duration
	// LockTTL caps how long a folio stays locked if the holder dies
	// without releasing it. Defaults to RunTimeout plus a minute.
	LockTTL time.Duration
}

// DefaultGenerationConfig retries only navigation failures, once.
func DefaultGenerationConfig() GenerationConfig {
	return GenerationConfig{
		RunTimeout:     2 * time.Minute,
		RetryAttempts:  1,
		RetryDelay:     2 * time.Second,
		RetryableKinds: []extraction.Kind{extraction.KindNavigationFailed},
		ArchiveTimeout: 30 * time.Second,
	}
}

// GenerateInput is one request to generate an invoice on a merchant portal.
type GenerateInput struct {
	MerchantID string
	// UserID is nil for anonymous calls. Anonymous calls are rejected when
	// credits are consumed and never persist an invoice.
	UserID *uuid.UUID
	// TaxRecordID fills empty request fields from a stored tax record.
	TaxRecordID *uuid.UUID
	Request     extraction.AutomationRequest
}

// GenerateResult is the outcome of a successful generation.
type GenerateResult struct {
	DocumentURL string
	Attempts    int
	Invoice     *invoicing.Invoice
}

// GenerationService runs merchant automations under the configured retry
// policy and records the outcome for signed-in users.
type GenerationService struct {
	merchants  MerchantResolver
	automation Automation
	credits    account.CreditRepository
	invoices   invoicing.InvoiceRepository
	taxRecords invoicing.TaxRecordRepository
	archiver   DocumentArchiver
	lock       GenerationLock
	config     GenerationConfig
	retryable  map[extraction.Kind]bool
	metrics    *telemetry.InvoicingMetrics
	logger     *zap.Logger
}

// GenerationDeps groups the optional collaborators of GenerationService.
// Nil repositories disable the matching feature.
type GenerationDeps struct {
	Credits    account.CreditRepository
	Invoices   invoicing.InvoiceRepository
	TaxRecords invoicing.TaxRecordRepository
	Archiver   DocumentArchiver
	Lock       GenerationLock
	Metrics    *telemetry.InvoicingMetrics
}

// NewGenerationService creates a GenerationService.
func NewGenerationService(
	merchants MerchantResolver,
	automation Automation,
	deps GenerationDeps,
	config GenerationConfig,
	logger *zap.Logger,
) *GenerationService {
	retryable := make(map[extraction.Kind]bool, len(config.RetryableKinds))
	for _, k := range config.RetryableKinds {
		retryable[k] = true
	}
	if config.RetryAttempts < 1 {
		config.RetryAttempts = 1
	}
	if config.LockTTL <= 0 {
		config.LockTTL = config.RunTimeout + time.Minute
	}
	return &GenerationService{
		merchants:  merchants,
		automation: automation,
		credits:    deps.Credits,
		invoices:   deps.Invoices,
		taxRecords: deps.TaxRecords,
		archiver:   deps.Archiver,
		lock:       deps.Lock,
		config:     config,
		retryable:  retryable,
		metrics:    deps.Metrics,
		logger:     logger,
	}
}

// Generate drives the merchant's portal until it yields a document URL.
func (s *GenerationService) Generate(ctx context.Context, input GenerateInput) (result *GenerateResult, err error) {
	start := time.Now()
	merchantID := extraction.NormalizeMerchantID(input.MerchantID)
	ctx, span := telemetry.StartServiceSpan(ctx, "generation", "generate", telemetry.SpanAttrMerchantID, merchantID)
	defer func() {
		telemetry.RecordError(span, err)
		span.End()
		s.metrics.RecordAutomation(ctx, merchantID, outcome(err), time.Since(start))
	}()
	log := logger.Enrich(ctx, s.logger).With(zap.String("merchant_id", merchantID))

	adapter, err := s.merchants.Resolve(merchantID)
	if err != nil {
		return nil, err
	}
	script, ok := adapter.Script()
	if !ok {
		return nil, extraction.NewError(extraction.KindUnsupportedMerchant, "merchant does not support automated invoicing")
	}

	req, err := s.buildRequest(ctx, input)
	if err != nil {
		return nil, err
	}

	release, err := s.acquire(ctx, adapter.ID(), req.Folio)
	if err != nil {
		return nil, err
	}
	defer release()

	reservation, err := s.reserveCredit(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	runCtx := ctx
	if s.config.RunTimeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, s.config.RunTimeout)
		defer cancel()
	}

	attempts := 0
	documentURL, err := retry.DoWithData(
		func() (string, error) {
			attempts++
			return s.automation.Run(runCtx, adapter.ID(), script, req)
		},
		retry.Context(runCtx),
		retry.Attempts(s.config.RetryAttempts),
		retry.Delay(s.config.RetryDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return s.retryable[extraction.KindOf(err)]
		}),
		retry.OnRetry(func(n uint, err error) {
			log.Warn("Retrying automation",
				zap.Uint("attempt", n+1),
				zap.String("kind", string(extraction.KindOf(err))),
			)
		}),
	)
	if err != nil {
		if extraction.KindOf(err) == "" {
			if ctxErr := runCtx.Err(); ctxErr != nil {
				err = extraction.WrapError(extraction.KindCancelled, "automation cancelled", ctxErr)
			}
		}
		s.refund(ctx, log, reservation)
		return nil, err
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrAttempt, attempts)

	result = &GenerateResult{DocumentURL: documentURL, Attempts: attempts}
	if input.UserID != nil {
		result.Invoice = s.record(ctx, log, *input.UserID, adapter.ID(), req.Folio, documentURL, reservation)
	}
	return result, nil
}

// buildRequest normalizes the request, filling blanks from the referenced
// tax record.
func (s *GenerationService) buildRequest(ctx context.Context, input GenerateInput) (extraction.AutomationRequest, error) {
	req := input.Request
	if input.TaxRecordID != nil {
		if input.UserID == nil {
			return req, shared.ErrUnauthorized
		}
		if s.taxRecords == nil {
			return req, extraction.NewError(extraction.KindInvalidInput, "tax records are not available")
		}
		rec, err := s.taxRecords.FindByIDForUser(ctx, *input.UserID, *input.TaxRecordID)
		if err != nil {
			return req, err
		}
		if req.TaxID == "" {
			req.TaxID = rec.TaxID
		}
		if req.CFDIUsage == "" {
			req.CFDIUsage = rec.CFDIUsage
		}
		if req.TaxRegimeOption == "" {
			req.TaxRegimeOption = rec.TaxRegime
		}
	}
	req = req.Normalize()
	return req, req.Validate()
}

// acquire locks merchantID/folio for the duration of a run. A lock backend
// failure is logged and the run proceeds unlocked.
func (s *GenerationService) acquire(ctx context.Context, merchantID, folio string) (func(), error) {
	noop := func() {}
	if s.lock == nil {
		return noop, nil
	}
	key := merchantID + ":" + folio
	token, ok, err := s.lock.Acquire(ctx, key, s.config.LockTTL)
	if err != nil {
		logger.Enrich(ctx, s.logger).Warn("Generation lock unavailable", zap.String("key", key), zap.Error(err))
		return noop, nil
	}
	if !ok {
		return nil, shared.ErrGenerationInProgress
	}
	return func() {
		if err := s.lock.Release(context.WithoutCancel(ctx), key, token); err != nil {
			s.logger.Warn("Failed to release generation lock", zap.String("key", key), zap.Error(err))
		}
	}, nil
}

// reserveCredit debits one credit before the run. It returns nil when
// credits are not consumed.
func (s *GenerationService) reserveCredit(ctx context.Context, userID *uuid.UUID) (*account.Credit, error) {
	if !s.config.ConsumeCredits {
		return nil, nil
	}
	if userID == nil {
		return nil, shared.ErrUnauthorized
	}
	if s.credits == nil {
		return nil, nil
	}
	reservation := account.NewConsumption(*userID, nil)
	if err := s.credits.Consume(ctx, reservation); err != nil {
		return nil, err
	}
	return reservation, nil
}

// refund returns a reserved credit after a failed run.
func (s *GenerationService) refund(ctx context.Context, log *zap.Logger, reservation *account.Credit) {
	if reservation == nil {
		return
	}
	entry := account.NewRefund(reservation)
	if err := s.credits.Save(context.WithoutCancel(ctx), entry); err != nil {
		log.Error("Failed to refund reserved credit",
			zap.Stringer("user_id", reservation.UserID),
			zap.Stringer("reservation_id", reservation.ID),
			zap.Error(err))
	}
}

// record persists the invoice, links the reserved credit to it and
// archives the document. The document already exists at this point, so
// failures are logged and the caller still gets the URL.
func (s *GenerationService) record(ctx context.Context, log *zap.Logger, userID uuid.UUID, merchantID, folio, documentURL string, reservation *account.Credit) *invoicing.Invoice {
	if s.invoices == nil {
		return nil
	}
	inv := invoicing.NewGeneratedInvoice(userID, merchantID, folio, documentURL, time.Now())
	if err := s.invoices.Save(ctx, inv); err != nil {
		log.Error("Failed to save generated invoice", zap.Error(err))
		return nil
	}

	if reservation != nil {
		reservation.AttachInvoice(inv.ID)
		if err := s.credits.Save(context.WithoutCancel(ctx), reservation); err != nil {
			log.Warn("Failed to link credit to invoice", zap.Stringer("invoice_id", inv.ID), zap.Error(err))
		}
	}

	if s.archiver != nil {
		archiveCtx := context.WithoutCancel(ctx)
		if s.config.ArchiveTimeout > 0 {
			var cancel context.CancelFunc
			archiveCtx, cancel = context.WithTimeout(archiveCtx, s.config.ArchiveTimeout)
			defer cancel()
		}
		key, err := s.archiver.Archive(archiveCtx, userID, inv.ID, documentURL)
		if err != nil {
			log.Warn("Failed to archive invoice document", zap.Stringer("invoice_id", inv.ID), zap.Error(err))
			return inv
		}
		inv.SetArchiveKey(key)
		if err := s.invoices.Save(archiveCtx, inv); err != nil {
			log.Error("Failed to store archive key", zap.Stringer("invoice_id", inv.ID), zap.Error(err))
		}
	}
	return inv
}
