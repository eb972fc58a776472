package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/facturasnap/backend/internal/domain/extraction"
	"github.com/facturasnap/backend/internal/domain/shared"
	"github.com/facturasnap/backend/internal/infrastructure/logger"
	"github.com/facturasnap/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// FolioNotFoundMessage is the legacy body message when a receipt has no folio.
const FolioNotFoundMessage = "No se encontró el número de FOLIO FACTURACION."

// Outcome is how a failure is presented to API callers.
type Outcome struct {
	Status int
	Code   string
	// Message is the enveloped API message.
	Message string
	// LegacyMessage is the Spanish message of the unversioned routes.
	LegacyMessage string
}

type outcomeTemplate struct {
	status        int
	code          string
	message       string
	legacyMessage string
}

var (
	automationFault = outcomeTemplate{http.StatusInternalServerError, dto.ErrCodeAutomationFailed,
		"The invoice could not be generated", "No se pudo generar la factura."}

	kindOutcomes = map[extraction.Kind]outcomeTemplate{
		extraction.KindInvalidInput: {http.StatusBadRequest, dto.ErrCodeInvalidInput,
			"", "La solicitud no es válida."},
		extraction.KindInvalidImageFormat: {http.StatusBadRequest, dto.ErrCodeInvalidImageFormat,
			"The image could not be decoded", "La imagen no es válida."},
		extraction.KindNotFound: {http.StatusNotFound, dto.ErrCodeFolioNotFound,
			"No invoicing folio was found on the receipt", FolioNotFoundMessage},
		extraction.KindUnsupportedMerchant: {http.StatusBadRequest, dto.ErrCodeUnsupportedMerchant,
			"", "Establecimiento no válido."},
		extraction.KindRecognitionFailed: {http.StatusInternalServerError, dto.ErrCodeRecognitionFailed,
			"The receipt could not be processed", "Error al procesar la imagen."},
		extraction.KindCancelled: {dto.StatusClientClosedRequest, dto.ErrCodeCancelled,
			"The request was cancelled", "La solicitud fue cancelada."},
	}

	optionNotFoundClient = outcomeTemplate{http.StatusBadRequest, dto.ErrCodeOptionNotFound,
		"A selected option is not offered by the merchant portal", "La opción seleccionada no existe en el formulario."}

	domainLegacyMessages = map[string]string{
		dto.ErrCodeInsufficientCredits: "No cuentas con créditos suficientes.",
		dto.ErrCodeUnauthorized:        "Se requiere iniciar sesión.",
		dto.ErrCodeNotFound:            "Registro no encontrado.",
		dto.ErrCodeGenerationInFlight:  "La factura de este folio ya se está generando.",
	}
)

// ResultAssembler maps core and collaborator failures onto HTTP statuses
// and response bodies. Automation faults always get a generic message;
// the root cause is only logged.
type ResultAssembler struct {
	optionNotFoundAsClientError bool
}

// NewResultAssembler creates a ResultAssembler. With
// optionNotFoundAsClientError an option missing from the portal form is a
// 400 instead of a 500.
func NewResultAssembler(optionNotFoundAsClientError bool) *ResultAssembler {
	return &ResultAssembler{optionNotFoundAsClientError: optionNotFoundAsClientError}
}

// Classify returns the caller-facing outcome of err.
func (a *ResultAssembler) Classify(err error) Outcome {
	var extErr *extraction.Error
	if errors.As(err, &extErr) {
		return a.classifyKind(extErr)
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		code := dto.NormalizeErrorCode(domainErr.Code)
		legacy, ok := domainLegacyMessages[code]
		if !ok {
			legacy = domainErr.Message
		}
		return Outcome{
			Status:        dto.GetHTTPStatus(code),
			Code:          code,
			Message:       domainErr.Message,
			LegacyMessage: legacy,
		}
	}

	if errors.Is(err, context.Canceled) {
		return kindOutcomes[extraction.KindCancelled].outcome("")
	}

	return Outcome{
		Status:        http.StatusInternalServerError,
		Code:          dto.ErrCodeInternal,
		Message:       "An unexpected error occurred",
		LegacyMessage: "Error interno del servidor.",
	}
}

func (a *ResultAssembler) classifyKind(err *extraction.Error) Outcome {
	if err.Kind == extraction.KindOptionNotFound && a.optionNotFoundAsClientError {
		return optionNotFoundClient.outcome("")
	}
	if err.Kind.IsAutomationFault() {
		return automationFault.outcome("")
	}
	if tpl, ok := kindOutcomes[err.Kind]; ok {
		// Input errors carry caller-safe messages.
		return tpl.outcome(err.Message)
	}
	return automationFault.outcome("")
}

func (t outcomeTemplate) outcome(message string) Outcome {
	if t.message != "" {
		message = t.message
	}
	return Outcome{Status: t.status, Code: t.code, Message: message, LegacyMessage: t.legacyMessage}
}

// WriteError writes the enveloped error response for err.
func (a *ResultAssembler) WriteError(c *gin.Context, err error) {
	out := a.Classify(err)
	a.log(c, err, out)
	c.JSON(out.Status, dto.NewErrorResponseWithRequestID(out.Code, out.Message, getRequestID(c)))
}

// WriteLegacyError writes the {message} body of the unversioned routes.
func (a *ResultAssembler) WriteLegacyError(c *gin.Context, err error) {
	out := a.Classify(err)
	a.log(c, err, out)
	c.JSON(out.Status, dto.MessageResponse{Message: out.LegacyMessage})
}

func (a *ResultAssembler) log(c *gin.Context, err error, out Outcome) {
	log := logger.FromGin(c)
	fields := []zap.Field{
		zap.Error(err),
		zap.Int("status", out.Status),
		zap.String("code", out.Code),
	}
	var extErr *extraction.Error
	if errors.As(err, &extErr) {
		fields = append(fields,
			zap.String("kind", string(extErr.Kind)),
			zap.String("state", extErr.State.String()),
			zap.String("selector", extErr.Selector),
		)
	}
	if out.Status >= http.StatusInternalServerError {
		log.Error("Request failed", fields...)
		return
	}
	log.Info("Request rejected", fields...)
}
