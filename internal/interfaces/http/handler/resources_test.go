package handler

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanHandler_CRUD(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	_, token := env.newUser(t, "ana@example.mx")

	w := env.do(t, http.MethodPost, "/api/v1/plans", token, map[string]any{
		"description": "Paquete 10", "creditAmount": 10, "price": "99.00",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	plan := decode[PlanResponse](t, w).Data
	assert.Equal(t, "99", plan.Price.String())

	w = env.do(t, http.MethodPut, "/api/v1/plans/"+plan.ID.String(), token, map[string]any{
		"description": "Paquete 25", "creditAmount": 25, "price": "199.50",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 25, decode[PlanResponse](t, w).Data.CreditAmount)

	w = env.do(t, http.MethodGet, "/api/v1/plans", token, nil)
	list := decode[[]PlanResponse](t, w)
	require.Len(t, list.Data, 1)
	assert.EqualValues(t, 1, list.Meta.Total)

	w = env.do(t, http.MethodDelete, "/api/v1/plans/"+plan.ID.String(), token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = env.do(t, http.MethodGet, "/api/v1/plans/"+plan.ID.String(), token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPlanHandler_Validation(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	_, token := env.newUser(t, "ana@example.mx")

	w := env.do(t, http.MethodPost, "/api/v1/plans", token, map[string]any{"description": "x", "creditAmount": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodGet, "/api/v1/plans/not-a-uuid", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreditHandler_LedgerFlow(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	_, token := env.newUser(t, "ana@example.mx")

	w := env.do(t, http.MethodPost, "/api/v1/plans", token, map[string]any{
		"description": "Paquete 10", "creditAmount": 10, "price": "99.00",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	plan := decode[PlanResponse](t, w).Data

	w = env.do(t, http.MethodPost, "/api/v1/credits/purchase", token, map[string]string{"planId": plan.ID.String()})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	purchase := decode[CreditResponse](t, w).Data
	assert.Equal(t, "purchase", purchase.Source)
	assert.Equal(t, 10, purchase.Amount)

	w = env.do(t, http.MethodPost, "/api/v1/credits", token, map[string]int{"amount": 3})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	manual := decode[CreditResponse](t, w).Data
	assert.Equal(t, "manual", manual.Source)

	w = env.do(t, http.MethodGet, "/api/v1/credits/balance", token, nil)
	assert.Equal(t, 13, decode[BalanceData](t, w).Data.Balance)

	w = env.do(t, http.MethodPut, "/api/v1/credits/"+manual.ID.String(), token, map[string]int{"amount": 5})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.do(t, http.MethodPut, "/api/v1/credits/"+purchase.ID.String(), token, map[string]int{"amount": 50})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = env.do(t, http.MethodGet, "/api/v1/credits", token, nil)
	assert.Len(t, decode[[]CreditResponse](t, w).Data, 2)

	w = env.do(t, http.MethodGet, "/api/v1/credits/balance", token, nil)
	assert.Equal(t, 15, decode[BalanceData](t, w).Data.Balance)
}

func TestCreditHandler_PurchaseValidation(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	_, token := env.newUser(t, "ana@example.mx")

	w := env.do(t, http.MethodPost, "/api/v1/credits/purchase", token, map[string]string{"planId": "nope"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/api/v1/credits/purchase", token, map[string]string{"planId": uuid.NewString()})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreditHandler_UserScoped(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	_, ana := env.newUser(t, "ana@example.mx")
	_, luis := env.newUser(t, "luis@example.mx")

	w := env.do(t, http.MethodPost, "/api/v1/credits", ana, map[string]int{"amount": 3})
	require.Equal(t, http.StatusCreated, w.Code)
	credit := decode[CreditResponse](t, w).Data

	w = env.do(t, http.MethodGet, "/api/v1/credits/"+credit.ID.String(), luis, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodDelete, "/api/v1/credits/"+credit.ID.String(), luis, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSessionHandler_ListAndDelete(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/api/v1/auth/register", "", registerBody()).Code)
	login := decode[LoginResponse](t, env.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "ana@example.mx", "password": testPassword,
	}))
	token := login.Data.Token.AccessToken

	w := env.do(t, http.MethodGet, "/api/v1/sessions", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	sessions := decode[[]SessionResponse](t, w).Data
	require.Len(t, sessions, 1)

	w = env.do(t, http.MethodDelete, "/api/v1/sessions/"+sessions[0].ID.String(), token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = env.do(t, http.MethodGet, "/api/v1/sessions", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func taxRecordBody() map[string]string {
	return map[string]string{
		"businessName": "Comercial Sureste SA de CV",
		"taxId":        testRFC,
		"fiscalEmail":  "facturas@example.mx",
		"postalCode":   "97000",
		"taxRegime":    "601",
		"cfdiUsage":    "G03",
	}
}

func TestTaxRecordHandler_CRUD(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	_, token := env.newUser(t, "ana@example.mx")

	w := env.do(t, http.MethodPost, "/api/v1/tax-records", token, taxRecordBody())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	rec := decode[TaxRecordResponse](t, w).Data
	assert.Equal(t, testRFC, rec.TaxID)

	body := taxRecordBody()
	body["municipality"] = "Mérida"
	w = env.do(t, http.MethodPut, "/api/v1/tax-records/"+rec.ID.String(), token, body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Mérida", decode[TaxRecordResponse](t, w).Data.Municipality)

	w = env.do(t, http.MethodGet, "/api/v1/tax-records", token, nil)
	assert.Len(t, decode[[]TaxRecordResponse](t, w).Data, 1)

	w = env.do(t, http.MethodDelete, "/api/v1/tax-records/"+rec.ID.String(), token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestTaxRecordHandler_RejectsBadSATCodes(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	_, token := env.newUser(t, "ana@example.mx")

	for field, value := range map[string]string{
		"taxId":     "XYZ",
		"cfdiUsage": "Z99",
		"taxRegime": "999",
	} {
		body := taxRecordBody()
		body[field] = value
		w := env.do(t, http.MethodPost, "/api/v1/tax-records", token, body)
		assert.Equal(t, http.StatusBadRequest, w.Code, field)
		assert.Contains(t, w.Body.String(), field, field)
	}
}

func TestGenerate_V1FillsFromTaxRecord(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	_, token := env.newUser(t, "ana@example.mx")

	w := env.do(t, http.MethodPost, "/api/v1/tax-records", token, taxRecordBody())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	rec := decode[TaxRecordResponse](t, w).Data

	w = env.do(t, http.MethodPost, "/api/v1/invoices/generate/super-aki", token, map[string]string{
		"folio":       "482931",
		"taxRecordId": rec.ID.String(),
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, testRFC, env.automation.lastR.TaxID)
	assert.Equal(t, "G03", env.automation.lastR.CFDIUsage)
	assert.Equal(t, "601", env.automation.lastR.TaxRegimeOption)
}

func TestInvoiceHandler_CRUD(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	_, token := env.newUser(t, "ana@example.mx")

	w := env.do(t, http.MethodPost, "/api/v1/establishments", token, map[string]string{
		"name": "Super Aki Centro", "state": "Yucatán", "invoiceMethod": "portal", "merchantId": "super-aki",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	est := decode[EstablishmentResponse](t, w).Data

	body := map[string]any{
		"merchantId":      "super-aki",
		"establishmentId": est.ID.String(),
		"folio":           "482931",
		"transactionDate": "2026-03-14T12:00:00Z",
		"subtotal":        "100.00",
		"total":           "116.00",
		"documentUrl":     "http://factura.superaki.mx/tickets/Descargas/482931.pdf",
	}
	w = env.do(t, http.MethodPost, "/api/v1/invoices", token, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	inv := decode[*InvoiceResponse](t, w).Data
	require.NotNil(t, inv)
	assert.Equal(t, "116", inv.Total.String())
	assert.False(t, inv.Archived)

	w = env.do(t, http.MethodGet, "/api/v1/invoices/"+inv.ID.String()+"/document", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	link := decode[DocumentLinkResponse](t, w).Data
	assert.Equal(t, body["documentUrl"], link.URL)
	assert.False(t, link.Archived)

	body["folio"] = "482932"
	w = env.do(t, http.MethodPut, "/api/v1/invoices/"+inv.ID.String(), token, body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "482932", decode[*InvoiceResponse](t, w).Data.Folio)

	w = env.do(t, http.MethodGet, "/api/v1/invoices?search=482932", token, nil)
	assert.Len(t, decode[[]*InvoiceResponse](t, w).Data, 1)

	w = env.do(t, http.MethodDelete, "/api/v1/invoices/"+inv.ID.String(), token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = env.do(t, http.MethodGet, "/api/v1/invoices/"+inv.ID.String(), token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestInvoiceHandler_UnknownEstablishment(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	_, token := env.newUser(t, "ana@example.mx")

	w := env.do(t, http.MethodPost, "/api/v1/invoices", token, map[string]any{
		"merchantId":      "super-aki",
		"establishmentId": uuid.NewString(),
		"folio":           "1",
		"transactionDate": "2026-03-14T12:00:00Z",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestEstablishmentHandler_CRUD(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	_, token := env.newUser(t, "ana@example.mx")

	w := env.do(t, http.MethodPost, "/api/v1/establishments", token, map[string]string{
		"name": "Bodega Aurrera Norte", "merchantId": "bodega-aurrera",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	est := decode[EstablishmentResponse](t, w).Data
	assert.Equal(t, "portal", est.InvoiceMethod)

	w = env.do(t, http.MethodPut, "/api/v1/establishments/"+est.ID.String(), token, map[string]string{
		"name": "Bodega Aurrera Norte", "invoiceMethod": "in_store", "merchantId": "bodega-aurrera",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "in_store", decode[EstablishmentResponse](t, w).Data.InvoiceMethod)

	w = env.do(t, http.MethodGet, "/api/v1/establishments?search=Norte", token, nil)
	assert.Len(t, decode[[]EstablishmentResponse](t, w).Data, 1)

	w = env.do(t, http.MethodDelete, "/api/v1/establishments/"+est.ID.String(), token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestEstablishmentHandler_RejectsUnknownMerchant(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	_, token := env.newUser(t, "ana@example.mx")

	w := env.do(t, http.MethodPost, "/api/v1/establishments", token, map[string]string{
		"name": "Oxxo", "merchantId": "oxxo",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/api/v1/establishments", token, map[string]string{
		"name": "Oxxo", "invoiceMethod": "fax",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
