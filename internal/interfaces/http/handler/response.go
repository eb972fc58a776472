package handler

import "github.com/facturasnap/backend/internal/interfaces/http/dto"

// APIResponse represents a generic API response for OpenAPI documentation
// @Description Standard API response wrapper with typed data field
type APIResponse[T any] struct {
	Success bool           `json:"success"`
	Data    T              `json:"data,omitempty"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
	Meta    *dto.Meta      `json:"meta,omitempty"`
}

// ErrorResponse represents an error API response for OpenAPI documentation
// @Description Standard error response
type ErrorResponse struct {
	Success bool           `json:"success" example:"false"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
}

// LegacyErrorResponse is the body of the unversioned invoicing routes on failure
// @Description Error body of /extract-text and /generar-factura-*
type LegacyErrorResponse struct {
	Message string `json:"message" example:"No se encontró el número de FOLIO FACTURACION."`
}

// BalanceData represents a credit balance in responses
// @Description Credit balance
type BalanceData struct {
	Balance int `json:"balance" example:"25"`
}
