package extraction

import (
	"context"
	"strings"
	"time"

	"github.com/facturasnap/backend/internal/domain/extraction"
	"github.com/facturasnap/backend/internal/infrastructure/logger"
	"github.com/facturasnap/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// ExtractionService turns a receipt photo into the merchant's folio.
type ExtractionService struct {
	merchants    MerchantResolver
	preprocessor Preprocessor
	recognizer   Recognizer
	metrics      *telemetry.InvoicingMetrics
	logger       *zap.Logger
}

// NewExtractionService creates an ExtractionService. metrics may be nil.
func NewExtractionService(
	merchants MerchantResolver,
	preprocessor Preprocessor,
	recognizer Recognizer,
	metrics *telemetry.InvoicingMetrics,
	logger *zap.Logger,
) *ExtractionService {
	return &ExtractionService{
		merchants:    merchants,
		preprocessor: preprocessor,
		recognizer:   recognizer,
		metrics:      metrics,
		logger:       logger,
	}
}

// Extract validates req, recognizes the receipt text and pulls out the
// folio. A receipt without a folio fails with NotFound.
func (s *ExtractionService) Extract(ctx context.Context, req extraction.ExtractionRequest) (result *extraction.ExtractionResult, err error) {
	merchantID := extraction.NormalizeMerchantID(req.MerchantID)
	telemetry.WithProfilingLabels(ctx, telemetry.OperationLabels(telemetry.ProfilingOperationExtract, merchantID), func(ctx context.Context) {
		result, err = s.extract(ctx, merchantID, req)
	})
	return result, err
}

func (s *ExtractionService) extract(ctx context.Context, merchantID string, req extraction.ExtractionRequest) (result *extraction.ExtractionResult, err error) {
	start := time.Now()
	ctx, span := telemetry.StartServiceSpan(ctx, "extraction", "extract", telemetry.SpanAttrMerchantID, merchantID)
	defer func() {
		telemetry.RecordError(span, err)
		span.End()
		s.metrics.RecordExtraction(ctx, merchantID, outcome(err), time.Since(start))
	}()
	log := logger.Enrich(ctx, s.logger).With(zap.String("merchant_id", merchantID))

	if err := req.Validate(); err != nil {
		return nil, err
	}
	adapter, err := s.merchants.Resolve(merchantID)
	if err != nil {
		return nil, err
	}

	scope := telemetry.NewProfilingScope(telemetry.OperationLabels(telemetry.ProfilingOperationExtract, merchantID))
	var raster []byte
	scope.WithRegion(telemetry.ProfilingRegionPreprocess).Run(ctx, func(ctx context.Context) {
		raster, err = s.preprocessor.Preprocess(ctx, req.Image)
	})
	if err != nil {
		return nil, err
	}

	var text string
	scope.WithRegion(telemetry.ProfilingRegionOCR).Run(ctx, func(ctx context.Context) {
		text, err = s.recognizer.Recognize(ctx, raster, adapter.OCRLanguage(), adapter.OCRConfig())
	})
	if err != nil {
		if extraction.KindOf(err) == "" {
			err = extraction.WrapError(extraction.KindRecognitionFailed, "text recognition failed", err)
		}
		log.Error("Recognition failed", zap.Error(err))
		return nil, err
	}

	folio, err := extraction.ExtractFolio(text, adapter.FolioPattern())
	if err != nil {
		log.Info("Folio not found in receipt", zap.Int("text_length", len(text)))
		return nil, err
	}

	log.Info("Folio extracted", zap.String("folio", folio), zap.Duration("duration", time.Since(start)))
	return &extraction.ExtractionResult{
		MerchantID: adapter.ID(),
		Folio:      folio,
		Fields:     extraction.ExtractFields(text, adapter),
		RawText:    text,
	}, nil
}

// Merchants lists the registered merchant adapters.
func (s *ExtractionService) Merchants() []*extraction.MerchantAdapter {
	return s.merchants.List()
}

// outcome labels err for metrics.
func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	if kind := extraction.KindOf(err); kind != "" {
		return strings.ToLower(string(kind))
	}
	return "error"
}
