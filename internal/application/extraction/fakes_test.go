package extraction

import (
	"context"
	"regexp"
	"sync"
	"testing"

	"github.com/facturasnap/backend/internal/domain/account"
	"github.com/facturasnap/backend/internal/domain/extraction"
	"github.com/facturasnap/backend/internal/domain/invoicing"
	"github.com/facturasnap/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const navigateCall = "navigate"

// fakeSession is a scripted form driver. failOn names the selector (or
// navigateCall) whose call returns failErr; block makes that call wait for
// its context instead.
type fakeSession struct {
	mu      sync.Mutex
	failOn  string
	failErr error
	block   bool
	href    string
	calls   []string
	values  map[string]string
	closed  int
}

func newFakeSession() *fakeSession {
	return &fakeSession{href: "Descargas/factura-482931.pdf", values: map[string]string{}}
}

func (f *fakeSession) act(ctx context.Context, name, value string) error {
	f.mu.Lock()
	f.calls = append(f.calls, name)
	if value != "" {
		f.values[name] = value
	}
	fail, block, err := f.failOn == name, f.block, f.failErr
	f.mu.Unlock()

	if !fail {
		return nil
	}
	if block {
		<-ctx.Done()
		return ctx.Err()
	}
	return err
}

func (f *fakeSession) Navigate(ctx context.Context, url string) error {
	return f.act(ctx, navigateCall, url)
}

func (f *fakeSession) Fill(ctx context.Context, selector, value string) error {
	return f.act(ctx, selector, value)
}

func (f *fakeSession) Click(ctx context.Context, selector string) error {
	return f.act(ctx, selector, "")
}

func (f *fakeSession) Select(ctx context.Context, selector, value string) error {
	return f.act(ctx, selector, value)
}

func (f *fakeSession) Attribute(ctx context.Context, selector, name string) (string, error) {
	if err := f.act(ctx, selector, ""); err != nil {
		return "", err
	}
	return f.href, nil
}

func (f *fakeSession) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed++
	return nil
}

func (f *fakeSession) closeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func browserFor(s *fakeSession) Browser {
	return BrowserFunc(func(ctx context.Context) (FormSession, error) { return s, nil })
}

func testScript() extraction.AutomationScript {
	return extraction.AutomationScript{
		StartURL: "http://portal.test/tickets/Paginas/Captura.aspx",
		BaseURL:  "http://portal.test/tickets/",
		Steps: []extraction.Step{
			{State: extraction.StateTaxIDEntered, Action: extraction.ActionFill, Selector: "#rfc", Value: extraction.ValueTaxID},
			{State: extraction.StateFolioEntered, Action: extraction.ActionClick, Selector: "#byFolio"},
			{State: extraction.StateFolioEntered, Action: extraction.ActionFill, Selector: "#folio", Value: extraction.ValueFolio},
			{State: extraction.StateCFDIUsageSelected, Action: extraction.ActionSelect, Selector: "#cfdi", Value: extraction.ValueCFDIUsage},
			{State: extraction.StateTaxRegimeSelected, Action: extraction.ActionSelect, Selector: "#regime", Value: extraction.ValueTaxRegime},
			{State: extraction.StateSubmitted, Action: extraction.ActionClick, Selector: "#submit"},
			{State: extraction.StateDocumentLinkExtracted, Action: extraction.ActionExtractLink, Selector: "#pdf"},
		},
	}
}

func testRequest() extraction.AutomationRequest {
	return extraction.AutomationRequest{
		TaxID:           "CSU010203AB1",
		Folio:           "482931",
		CFDIUsage:       "G03 - Gastos en general",
		TaxRegimeOption: "601 - General de Ley Personas Morales",
	}
}

func testRegistry(t *testing.T) *extraction.Registry {
	t.Helper()
	script := testScript()
	withScript, err := extraction.NewMerchantAdapter(extraction.MerchantAdapterParams{
		ID:           "super-aki",
		OCRConfig:    extraction.DefaultOCRConfig(),
		FolioPattern: regexp.MustCompile(`FOLIO ?FACTURACION:\s*(\d+)`),
		Fields:       map[string]*regexp.Regexp{"total": regexp.MustCompile(`TOTAL\s*\$?\s*([\d.,]+)`)},
		Script:       &script,
	})
	require.NoError(t, err)
	ocrOnly, err := extraction.NewMerchantAdapter(extraction.MerchantAdapterParams{
		ID:           "bodega-aurrera",
		FolioPattern: regexp.MustCompile(`TR#\s*(\d+)`),
	})
	require.NoError(t, err)
	reg, err := extraction.NewRegistry(withScript, ocrOnly)
	require.NoError(t, err)
	return reg
}

type mockAutomation struct{ mock.Mock }

func (m *mockAutomation) Run(ctx context.Context, merchantID string, script extraction.AutomationScript, req extraction.AutomationRequest) (string, error) {
	args := m.Called(ctx, merchantID, script, req)
	return args.String(0), args.Error(1)
}

type mockCreditRepository struct{ mock.Mock }

func (m *mockCreditRepository) FindByIDForUser(ctx context.Context, userID, id uuid.UUID) (*account.Credit, error) {
	args := m.Called(ctx, userID, id)
	c, _ := args.Get(0).(*account.Credit)
	return c, args.Error(1)
}

func (m *mockCreditRepository) FindAllForUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]account.Credit, int64, error) {
	args := m.Called(ctx, userID, filter)
	c, _ := args.Get(0).([]account.Credit)
	return c, args.Get(1).(int64), args.Error(2)
}

func (m *mockCreditRepository) Save(ctx context.Context, c *account.Credit) error {
	return m.Called(ctx, c).Error(0)
}

func (m *mockCreditRepository) DeleteForUser(ctx context.Context, userID, id uuid.UUID) error {
	return m.Called(ctx, userID, id).Error(0)
}

func (m *mockCreditRepository) Balance(ctx context.Context, userID uuid.UUID) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *mockCreditRepository) Consume(ctx context.Context, entry *account.Credit) error {
	return m.Called(ctx, entry).Error(0)
}

type memInvoices struct {
	mu    sync.Mutex
	saved map[uuid.UUID]invoicing.Invoice
	saves int
}

func newMemInvoices() *memInvoices {
	return &memInvoices{saved: map[uuid.UUID]invoicing.Invoice{}}
}

func (r *memInvoices) FindByIDForUser(_ context.Context, userID, id uuid.UUID) (*invoicing.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.saved[id]
	if !ok || inv.UserID != userID {
		return nil, shared.ErrNotFound
	}
	return &inv, nil
}

func (r *memInvoices) FindAllForUser(_ context.Context, userID uuid.UUID, _ shared.Filter) ([]invoicing.Invoice, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []invoicing.Invoice
	for _, inv := range r.saved {
		if inv.UserID == userID {
			out = append(out, inv)
		}
	}
	return out, int64(len(out)), nil
}

func (r *memInvoices) Save(_ context.Context, inv *invoicing.Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saved[inv.ID] = *inv
	r.saves++
	return nil
}

func (r *memInvoices) DeleteForUser(_ context.Context, userID, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.saved, id)
	return nil
}

type stubTaxRecords struct {
	record *invoicing.TaxRecord
}

func (s stubTaxRecords) FindByIDForUser(_ context.Context, userID, id uuid.UUID) (*invoicing.TaxRecord, error) {
	if s.record == nil || s.record.ID != id || s.record.UserID != userID {
		return nil, shared.ErrNotFound
	}
	return s.record, nil
}

func (s stubTaxRecords) FindAllForUser(context.Context, uuid.UUID, shared.Filter) ([]invoicing.TaxRecord, int64, error) {
	return nil, 0, nil
}

func (s stubTaxRecords) Save(context.Context, *invoicing.TaxRecord) error { return nil }

func (s stubTaxRecords) DeleteForUser(context.Context, uuid.UUID, uuid.UUID) error { return nil }

type archiverFunc func(ctx context.Context, userID, invoiceID uuid.UUID, documentURL string) (string, error)

func (f archiverFunc) Archive(ctx context.Context, userID, invoiceID uuid.UUID, documentURL string) (string, error) {
	return f(ctx, userID, invoiceID, documentURL)
}
