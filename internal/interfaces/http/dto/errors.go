package dto

import (
	"net/http"
	"strings"
)

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
)

// Validation error codes
const (
	ErrCodeValidation         = "ERR_VALIDATION"
	ErrCodeValidationRequired = "ERR_VALIDATION_REQUIRED"
	ErrCodeValidationFormat   = "ERR_VALIDATION_FORMAT"
)

// Authentication error codes
const (
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	ErrCodeForbidden    = "ERR_FORBIDDEN"
	ErrCodeTokenExpired = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid = "ERR_TOKEN_INVALID"
	ErrCodeTokenRevoked = "ERR_TOKEN_REVOKED"
	// ErrCodeInvalidCredentials and ErrCodeUserNotFound keep the codes
	// clients already branch on.
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeUserNotFound       = "USER_NOT_FOUND"
)

// Resource error codes
const (
	ErrCodeNotFound      = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"
	ErrCodeConflict      = "ERR_CONFLICT"
)

// Business rule error codes
const (
	ErrCodeBusinessRule        = "ERR_BUSINESS_RULE"
	ErrCodeCreditImmutable     = "CREDIT_IMMUTABLE"
	ErrCodeInsufficientCredits = "INSUFFICIENT_CREDITS"
	ErrCodeDocumentNotArchived = "DOCUMENT_NOT_ARCHIVED"
	ErrCodeGenerationInFlight  = "GENERATION_IN_PROGRESS"
)

// Extraction and automation error codes
const (
	ErrCodeInvalidImageFormat  = "INVALID_IMAGE_FORMAT"
	ErrCodeFolioNotFound       = "FOLIO_NOT_FOUND"
	ErrCodeUnsupportedMerchant = "UNSUPPORTED_MERCHANT"
	ErrCodeRecognitionFailed   = "RECOGNITION_FAILED"
	ErrCodeAutomationFailed    = "AUTOMATION_FAILED"
	ErrCodeOptionNotFound      = "OPTION_NOT_FOUND"
	ErrCodeCancelled           = "REQUEST_CANCELLED"
)

// Input error codes
const (
	ErrCodeBadRequest   = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	ErrCodeInvalidJSON  = "ERR_INVALID_JSON"
	ErrCodeTooLarge     = "ERR_REQUEST_TOO_LARGE"
)

// Rate limiting error codes
const (
	ErrCodeRateLimited = "ERR_RATE_LIMITED"
)

// StatusClientClosedRequest is reported when the caller went away before a
// response could be written.
const StatusClientClosedRequest = 499

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	// General errors
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	// Validation errors -> 400 Bad Request
	ErrCodeValidation:         http.StatusBadRequest,
	ErrCodeValidationRequired: http.StatusBadRequest,
	ErrCodeValidationFormat:   http.StatusBadRequest,

	// Auth errors
	ErrCodeUnauthorized:       http.StatusUnauthorized,
	ErrCodeForbidden:          http.StatusForbidden,
	ErrCodeTokenExpired:       http.StatusUnauthorized,
	ErrCodeTokenInvalid:       http.StatusUnauthorized,
	ErrCodeTokenRevoked:       http.StatusUnauthorized,
	ErrCodeInvalidCredentials: http.StatusUnauthorized,
	ErrCodeUserNotFound:       http.StatusNotFound,

	// Resource errors
	ErrCodeNotFound:      http.StatusNotFound,
	ErrCodeAlreadyExists: http.StatusConflict,
	ErrCodeConflict:      http.StatusConflict,

	// Business rule errors
	ErrCodeBusinessRule:        http.StatusUnprocessableEntity,
	ErrCodeCreditImmutable:     http.StatusUnprocessableEntity,
	ErrCodeInsufficientCredits: http.StatusPaymentRequired,
	ErrCodeDocumentNotArchived: http.StatusNotFound,
	ErrCodeGenerationInFlight:  http.StatusConflict,

	// Extraction and automation
	ErrCodeInvalidImageFormat:  http.StatusBadRequest,
	ErrCodeFolioNotFound:       http.StatusNotFound,
	ErrCodeUnsupportedMerchant: http.StatusBadRequest,
	ErrCodeRecognitionFailed:   http.StatusInternalServerError,
	ErrCodeAutomationFailed:    http.StatusInternalServerError,
	ErrCodeOptionNotFound:      http.StatusInternalServerError,
	ErrCodeCancelled:           StatusClientClosedRequest,

	// Input errors -> 400 Bad Request
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,
	ErrCodeInvalidJSON:  http.StatusBadRequest,
	ErrCodeTooLarge:     http.StatusRequestEntityTooLarge,

	// Rate limiting -> 429 Too Many Requests
	ErrCodeRateLimited: http.StatusTooManyRequests,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unmapped INVALID_* codes are field validation failures and map to 400;
// anything else unknown is a 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	if strings.HasPrefix(code, "INVALID_") {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// LegacyErrorCodeMapping maps domain error codes to standardized codes
var LegacyErrorCodeMapping = map[string]string{
	"NOT_FOUND":        ErrCodeNotFound,
	"ALREADY_EXISTS":   ErrCodeAlreadyExists,
	"INVALID_INPUT":    ErrCodeInvalidInput,
	"UNAUTHORIZED":     ErrCodeUnauthorized,
	"FORBIDDEN":        ErrCodeForbidden,
	"VALIDATION_ERROR": ErrCodeValidation,
	"BAD_REQUEST":      ErrCodeBadRequest,
	"INTERNAL_ERROR":   ErrCodeInternal,
	"TOKEN_EXPIRED":    ErrCodeTokenExpired,
	"TOKEN_INVALID":    ErrCodeTokenInvalid,
	"TOKEN_REVOKED":    ErrCodeTokenRevoked,
}

// NormalizeErrorCode converts a domain error code to the standardized format
// If the code is already in the new format or unknown, returns it as-is
func NormalizeErrorCode(code string) string {
	if newCode, ok := LegacyErrorCodeMapping[code]; ok {
		return newCode
	}
	return code
}
