package persistence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSortOrder(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty string returns DESC", "", "DESC"},
		{"ASC uppercase returns ASC", "ASC", "ASC"},
		{"asc lowercase returns ASC", "asc", "ASC"},
		{"DESC uppercase returns DESC", "DESC", "DESC"},
		{"invalid value returns DESC", "INVALID", "DESC"},
		{"sql injection attempt returns DESC", "ASC; DROP TABLE users;--", "DESC"},
		{"whitespace around ASC returns ASC", "  asc  ", "ASC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ValidateSortOrder(tt.input))
		})
	}
}

func TestValidateSortField(t *testing.T) {
	allowed := invoiceListSpec.orderable

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty string returns default", "", defaultSortField},
		{"valid field returns field", "folio", "folio"},
		{"whitespace around valid field returns field", "  total  ", "total"},
		{"unknown field returns default", "password_hash", defaultSortField},
		{"case sensitive", "FOLIO", defaultSortField},
		{"field with spaces injection returns default", "folio users", defaultSortField},
		{"field with quotes injection returns default", "folio'--", defaultSortField},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ValidateSortField(tt.input, allowed, defaultSortField))
		})
	}
}

func TestListSpecsAllowDefaultSort(t *testing.T) {
	specs := map[string]listSpec{
		"credits":        creditListSpec,
		"establishments": establishmentListSpec,
		"invoices":       invoiceListSpec,
		"plans":          planListSpec,
		"sessions":       sessionListSpec,
		"tax_records":    taxRecordListSpec,
	}
	for name, spec := range specs {
		assert.True(t, spec.orderable[defaultSortField], "%s must be orderable by %s", name, defaultSortField)
	}
}

func TestSQLInjectionPrevention(t *testing.T) {
	payloads := []string{
		"id; DROP TABLE users;--",
		"id' OR '1'='1",
		"id UNION SELECT * FROM users",
		"id, (SELECT password_hash FROM users)",
		"CASE WHEN 1=1 THEN id ELSE folio END",
		"id/**/;DROP TABLE users",
		"id\n; DROP TABLE users",
		"' OR ''='",
	}

	for _, payload := range payloads {
		t.Run(payload[:min(len(payload), 30)], func(t *testing.T) {
			assert.Equal(t, defaultSortField, ValidateSortField(payload, invoiceListSpec.orderable, defaultSortField))
			assert.Equal(t, "DESC", ValidateSortOrder(payload))
		})
	}
}
