package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/facturasnap/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupValidator(t *testing.T) {
	SetupValidator()
	SetupValidator()

	v, ok := binding.Validator.Engine().(*validator.Validate)
	assert.True(t, ok)
	assert.NotNil(t, v)
}

func TestFormatValidationErrors(t *testing.T) {
	type TestStruct struct {
		Email string `json:"email" binding:"required,email"`
		RFC   string `json:"rfc" binding:"required,rfc"`
	}

	SetupValidator()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/test", func(c *gin.Context) {
		var req TestStruct
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	})

	t.Run("returns validation errors for invalid input", func(t *testing.T) {
		body := strings.NewReader(`{"email": "invalid", "rfc": "NOPE"}`)
		req := httptest.NewRequest("POST", "/test", body)
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

		assert.False(t, resp.Success)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
		assert.Equal(t, "Request validation failed", resp.Error.Message)
		require.Len(t, resp.Error.Details, 2)
		assert.Equal(t, "email", resp.Error.Details[0].Field)
		assert.Equal(t, "rfc", resp.Error.Details[1].Field)
		assert.Equal(t, "Invalid RFC", resp.Error.Details[1].Message)
	})

	t.Run("returns success for valid input", func(t *testing.T) {
		body := strings.NewReader(`{"email": "ana@example.com", "rfc": "peca800101ab1"}`)
		req := httptest.NewRequest("POST", "/test", body)
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestSATValidations(t *testing.T) {
	type Input struct {
		RFC    string `json:"rfc" validate:"rfc"`
		Usage  string `json:"usage" validate:"cfdi_usage"`
		Regime string `json:"regime" validate:"tax_regime"`
	}

	v := validator.New()
	RegisterValidations(v)

	assert.NoError(t, v.Struct(Input{RFC: "XAXX010101000", Usage: "G03", Regime: "601"}))
	assert.NoError(t, v.Struct(Input{RFC: "PECA800101AB1", Usage: "s01", Regime: "626"}))

	err := v.Struct(Input{RFC: "XAXX0101", Usage: "Z99", Regime: "999"})
	require.Error(t, err)

	var fieldErrs validator.ValidationErrors
	require.ErrorAs(t, err, &fieldErrs)
	require.Len(t, fieldErrs, 3)
	assert.Equal(t, "rfc", fieldErrs[0].Field())
	assert.Equal(t, "Unknown CFDI usage code", getValidationMessage(fieldErrs[1]))
	assert.Equal(t, "Unknown tax regime code", getValidationMessage(fieldErrs[2]))
}

func TestGetValidationMessage(t *testing.T) {
	type TestStruct struct {
		Required string `validate:"required"`
		Email    string `validate:"email"`
		Min      string `validate:"min=5"`
		Max      string `validate:"max=3"`
		UUID     string `validate:"uuid"`
		OneOf    string `validate:"oneof=a b c"`
		URL      string `validate:"url"`
	}

	v := validator.New()
	err := v.Struct(TestStruct{Email: "invalid", Min: "ab", Max: "too long", UUID: "x", OneOf: "d", URL: "nope"})
	require.Error(t, err)

	expected := map[string]string{
		"Required": "This field is required",
		"Email":    "Invalid email format",
		"Min":      "Must be at least 5 characters",
		"Max":      "Must be at most 3 characters",
		"UUID":     "Invalid UUID format",
		"OneOf":    "Must be one of: a b c",
		"URL":      "Invalid URL format",
	}

	var fieldErrs validator.ValidationErrors
	require.ErrorAs(t, err, &fieldErrs)
	for _, e := range fieldErrs {
		t.Run(e.Field(), func(t *testing.T) {
			assert.Equal(t, expected[e.Field()], getValidationMessage(e))
		})
	}
}

func TestHandleValidationError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	type Input struct {
		Name string `json:"name" binding:"required"`
	}

	router := gin.New()
	router.Use(RequestID())
	router.POST("/test", func(c *gin.Context) {
		var input Input
		if err := c.ShouldBindJSON(&input); err != nil {
			HandleValidationError(c, err)
			return
		}
	})

	req := httptest.NewRequest("POST", "/test", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(RequestIDHeader, "req-42")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), dto.ErrCodeValidation)
	assert.Contains(t, w.Body.String(), `"request_id":"req-42"`)
}
