package handler

import (
	"net/http"

	extractionapp "github.com/facturasnap/backend/internal/application/extraction"
	"github.com/facturasnap/backend/internal/domain/extraction"
	"github.com/facturasnap/backend/internal/infrastructure/imaging"
	"github.com/facturasnap/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ExtractionHandler serves receipt extraction and invoice generation
type ExtractionHandler struct {
	BaseHandler
	extractor *extractionapp.ExtractionService
	generator *extractionapp.GenerationService
	assembler *ResultAssembler
}

// NewExtractionHandler creates a new extraction handler
func NewExtractionHandler(
	extractor *extractionapp.ExtractionService,
	generator *extractionapp.GenerationService,
	assembler *ResultAssembler,
) *ExtractionHandler {
	return &ExtractionHandler{
		extractor: extractor,
		generator: generator,
		assembler: assembler,
	}
}

// ExtractText godoc
// @ID           extractText
// @Summary      Extract the invoicing folio from a receipt photo
// @Description  Runs OCR over a base64 receipt image and returns the merchant folio
// @Tags         invoicing
// @Accept       json
// @Produce      json
// @Param        request body ExtractTextRequest true "Receipt image"
// @Success      200 {object} ExtractTextResponse
// @Failure      400 {object} LegacyErrorResponse
// @Failure      404 {object} LegacyErrorResponse
// @Failure      500 {object} LegacyErrorResponse
// @Router       /extract-text [post]
func (h *ExtractionHandler) ExtractText(c *gin.Context) {
	var req ExtractTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.assembler.WriteLegacyError(c, extraction.WrapError(extraction.KindInvalidInput, "invalid request body", err))
		return
	}

	result, err := h.extract(c, req.Base64Image, req.MerchantID)
	if err != nil {
		h.assembler.WriteLegacyError(c, err)
		return
	}
	c.JSON(http.StatusOK, ExtractTextResponse{ExtractedText: result.Folio})
}

// Extract godoc
// @ID           createExtraction
// @Summary      Extract receipt fields
// @Description  Runs OCR over a base64 receipt image and returns the folio and extra merchant fields
// @Tags         invoicing
// @Accept       json
// @Produce      json
// @Param        request body ExtractionRequest true "Receipt image"
// @Success      200 {object} APIResponse[ExtractionResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /extractions [post]
func (h *ExtractionHandler) Extract(c *gin.Context) {
	var req ExtractionRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.extract(c, req.Base64Image, req.MerchantID)
	if err != nil {
		h.assembler.WriteError(c, err)
		return
	}
	h.Success(c, ExtractionResponse{
		MerchantID: result.MerchantID,
		Folio:      result.Folio,
		Fields:     result.Fields,
	})
}

func (h *ExtractionHandler) extract(c *gin.Context, payload, merchantID string) (*extraction.ExtractionResult, error) {
	c.Set(middleware.MerchantIDKey, extraction.NormalizeMerchantID(merchantID))
	image, err := imaging.DecodeBase64(payload)
	if err != nil {
		return nil, err
	}
	return h.extractor.Extract(c.Request.Context(), extraction.ExtractionRequest{
		Image:      image,
		MerchantID: merchantID,
	})
}

// LegacyGenerate returns the handler of POST /generar-factura-<merchantID>.
// Each merchant gets its own route so the path needs no wildcard.
//
// @ID           generateInvoiceLegacy
// @Summary      Generate an invoice on a merchant portal
// @Description  Drives the merchant's self-service portal and returns the document URL
// @Tags         invoicing
// @Accept       json
// @Produce      json
// @Param        merchant path string true "Merchant id, e.g. super-aki"
// @Param        request body LegacyGenerateRequest true "Invoice request"
// @Success      200 {object} LegacyGenerateResponse
// @Failure      400 {object} LegacyErrorResponse
// @Failure      402 {object} LegacyErrorResponse
// @Failure      409 {object} LegacyErrorResponse
// @Failure      500 {object} LegacyErrorResponse
// @Router       /generar-factura-{merchant} [post]
func (h *ExtractionHandler) LegacyGenerate(merchantID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.MerchantIDKey, merchantID)

		var req LegacyGenerateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			h.assembler.WriteLegacyError(c, extraction.WrapError(extraction.KindInvalidInput, "invalid request body", err))
			return
		}

		result, err := h.generator.Generate(c.Request.Context(), extractionapp.GenerateInput{
			MerchantID: merchantID,
			UserID:     optionalUser(c),
			Request:    req.AutomationRequest(),
		})
		if err != nil {
			h.assembler.WriteLegacyError(c, err)
			return
		}
		c.JSON(http.StatusOK, LegacyGenerateResponse{DocumentURL: result.DocumentURL})
	}
}

// Generate godoc
// @ID           generateInvoice
// @Summary      Generate an invoice on a merchant portal
// @Description  Drives the merchant's self-service portal, records the invoice and consumes a credit when enabled
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        merchant path string true "Merchant id"
// @Param        request body GenerateInvoiceRequest true "Invoice request"
// @Success      200 {object} APIResponse[GenerateInvoiceResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      402 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /invoices/generate/{merchant} [post]
func (h *ExtractionHandler) Generate(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req GenerateInvoiceRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.generator.Generate(c.Request.Context(), extractionapp.GenerateInput{
		MerchantID:  c.Param("merchant"),
		UserID:      &userID,
		TaxRecordID: req.TaxRecordID,
		Request: extraction.AutomationRequest{
			TaxID:           req.TaxID,
			Folio:           req.Folio,
			CFDIUsage:       req.CFDIUsage,
			TaxRegimeOption: req.TaxRegimeOption,
		},
	})
	if err != nil {
		h.assembler.WriteError(c, err)
		return
	}

	h.Success(c, GenerateInvoiceResponse{
		DocumentURL: result.DocumentURL,
		Attempts:    result.Attempts,
		Invoice:     toInvoiceResponse(result.Invoice),
	})
}

// ListMerchants godoc
// @ID           listMerchants
// @Summary      List supported merchants
// @Tags         merchants
// @Produce      json
// @Success      200 {object} APIResponse[[]MerchantResponse]
// @Security     BearerAuth
// @Router       /merchants [get]
func (h *ExtractionHandler) ListMerchants(c *gin.Context) {
	merchants := h.extractor.Merchants()
	resp := make([]MerchantResponse, len(merchants))
	for i, m := range merchants {
		resp[i] = toMerchantResponse(m)
	}
	h.Success(c, resp)
}

// optionalUser returns the caller's id when a valid token was presented.
func optionalUser(c *gin.Context) *uuid.UUID {
	if id, ok := middleware.GetJWTUserUUID(c); ok {
		return &id
	}
	return nil
}
