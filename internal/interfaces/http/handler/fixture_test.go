package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"regexp"
	"sync"
	"testing"
	"time"

	accountapp "github.com/facturasnap/backend/internal/application/account"
	extractionapp "github.com/facturasnap/backend/internal/application/extraction"
	invoicingapp "github.com/facturasnap/backend/internal/application/invoicing"
	"github.com/facturasnap/backend/internal/domain/account"
	"github.com/facturasnap/backend/internal/domain/extraction"
	"github.com/facturasnap/backend/internal/infrastructure/auth"
	"github.com/facturasnap/backend/internal/infrastructure/config"
	"github.com/facturasnap/backend/internal/infrastructure/persistence"
	"github.com/facturasnap/backend/internal/infrastructure/persistence/models"
	"github.com/facturasnap/backend/internal/interfaces/http/dto"
	"github.com/facturasnap/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	testRFC      = "CSU010203AB1"
	testPassword = "s3cret-pass"
)

type fakePreprocessor struct{}

func (fakePreprocessor) Preprocess(_ context.Context, data []byte) ([]byte, error) {
	return data, nil
}

// fakeRecognizer returns text for every image.
type fakeRecognizer struct {
	mu   sync.Mutex
	text string
	err  error
}

func (r *fakeRecognizer) set(text string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.text, r.err = text, err
}

func (r *fakeRecognizer) Recognize(context.Context, []byte, string, extraction.OCRConfig) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.text, r.err
}

// fakeAutomation answers every run with url or err.
type fakeAutomation struct {
	mu    sync.Mutex
	url   string
	err   error
	runs  int
	lastR extraction.AutomationRequest
}

func (a *fakeAutomation) set(url string, err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.url, a.err = url, err
}

func (a *fakeAutomation) Run(_ context.Context, _ string, _ extraction.AutomationScript, req extraction.AutomationRequest) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.runs++
	a.lastR = req
	return a.url, a.err
}

func (a *fakeAutomation) runCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.runs
}

type envOptions struct {
	consumeCredits              bool
	optionNotFoundAsClientError bool
}

type testEnv struct {
	engine     *gin.Engine
	db         *gorm.DB
	jwt        *auth.JWTService
	recognizer *fakeRecognizer
	automation *fakeAutomation
}

func testRegistry(t *testing.T) *extraction.Registry {
	t.Helper()
	script := extraction.AutomationScript{
		StartURL: "http://portal.test/tickets/Paginas/Captura.aspx",
		BaseURL:  "http://portal.test/tickets/",
		Steps: []extraction.Step{
			{State: extraction.StateTaxIDEntered, Action: extraction.ActionFill, Selector: "#rfc", Value: extraction.ValueTaxID},
			{State: extraction.StateDocumentLinkExtracted, Action: extraction.ActionExtractLink, Selector: "#pdf"},
		},
	}
	superAki, err := extraction.NewMerchantAdapter(extraction.MerchantAdapterParams{
		ID:           "super-aki",
		DisplayName:  "Super Aki",
		FolioPattern: regexp.MustCompile(`FOLIO ?FACTURACION:\s*(\d+)`),
		Script:       &script,
	})
	require.NoError(t, err)
	bodega, err := extraction.NewMerchantAdapter(extraction.MerchantAdapterParams{
		ID:           "bodega-aurrera",
		FolioPattern: regexp.MustCompile(`TR#\s*(\d+)`),
	})
	require.NoError(t, err)
	reg, err := extraction.NewRegistry(superAki, bodega)
	require.NoError(t, err)
	return reg
}

func newTestEnv(t *testing.T, opts envOptions) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(models.All()...))

	log := zap.NewNop()
	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-that-is-long-enough-123456",
		AccessTokenExpiration:  time.Hour,
		RefreshTokenExpiration: 24 * time.Hour,
		Issuer:                 "facturasnap",
	})
	blacklist := auth.NewInMemoryTokenBlacklist()

	users := persistence.NewGormUserRepository(db)
	plans := persistence.NewGormPaymentPlanRepository(db)
	sessions := persistence.NewGormSessionRepository(db)
	credits := persistence.NewGormCreditRepository(db)
	invoices := persistence.NewGormInvoiceRepository(db)
	taxRecords := persistence.NewGormTaxRecordRepository(db)
	establishments := persistence.NewGormEstablishmentRepository(db)

	registry := testRegistry(t)
	recognizer := &fakeRecognizer{}
	automation := &fakeAutomation{url: "http://portal.test/tickets/Descargas/factura.pdf"}

	genCfg := extractionapp.DefaultGenerationConfig()
	genCfg.RetryDelay = time.Millisecond
	genCfg.ConsumeCredits = opts.consumeCredits

	extractor := extractionapp.NewExtractionService(registry, fakePreprocessor{}, recognizer, nil, log)
	generator := extractionapp.NewGenerationService(registry, automation, extractionapp.GenerationDeps{
		Credits:    credits,
		Invoices:   invoices,
		TaxRecords: taxRecords,
	}, genCfg, log)

	authH := NewAuthHandler(accountapp.NewAuthService(users, plans, sessions, jwtService, blacklist, log))
	planH := NewPlanHandler(accountapp.NewPlanService(plans, log))
	creditH := NewCreditHandler(accountapp.NewCreditService(credits, plans, log))
	sessionH := NewSessionHandler(accountapp.NewSessionService(sessions, blacklist, log))
	invoiceH := NewInvoiceHandler(invoicingapp.NewInvoiceService(invoices, establishments, nil, log))
	taxH := NewTaxRecordHandler(invoicingapp.NewTaxRecordService(taxRecords, log))
	estH := NewEstablishmentHandler(invoicingapp.NewEstablishmentService(establishments, func(id string) bool {
		_, err := registry.Resolve(id)
		return err == nil
	}, log))
	extH := NewExtractionHandler(extractor, generator, NewResultAssembler(opts.optionNotFoundAsClientError))

	jwtCfg := middleware.JWTMiddlewareConfig{JWTService: jwtService, TokenBlacklist: blacklist}

	r := gin.New()
	r.Use(middleware.RequestID())
	r.POST("/extract-text", extH.ExtractText)
	for _, m := range registry.List() {
		r.POST("/generar-factura-"+m.ID(), middleware.OptionalJWTAuthMiddleware(jwtCfg), extH.LegacyGenerate(m.ID()))
	}

	api := r.Group("/api/v1")
	api.POST("/auth/register", authH.Register)
	api.POST("/auth/login", authH.Login)
	api.POST("/auth/refresh", authH.RefreshToken)

	secured := api.Group("", middleware.JWTAuthMiddlewareWithConfig(jwtCfg))
	secured.POST("/auth/logout", authH.Logout)
	secured.GET("/auth/me", authH.Me)
	secured.PUT("/auth/password", authH.ChangePassword)
	secured.GET("/merchants", extH.ListMerchants)
	secured.POST("/extractions", extH.Extract)
	secured.POST("/invoices/generate/:merchant", extH.Generate)
	secured.GET("/plans", planH.List)
	secured.POST("/plans", planH.Create)
	secured.GET("/plans/:id", planH.Get)
	secured.PUT("/plans/:id", planH.Update)
	secured.DELETE("/plans/:id", planH.Delete)
	secured.GET("/credits", creditH.List)
	secured.GET("/credits/balance", creditH.Balance)
	secured.POST("/credits", creditH.Create)
	secured.POST("/credits/purchase", creditH.Purchase)
	secured.GET("/credits/:id", creditH.Get)
	secured.PUT("/credits/:id", creditH.Update)
	secured.DELETE("/credits/:id", creditH.Delete)
	secured.GET("/sessions", sessionH.List)
	secured.DELETE("/sessions/:id", sessionH.Delete)
	secured.GET("/invoices", invoiceH.List)
	secured.POST("/invoices", invoiceH.Create)
	secured.GET("/invoices/:id", invoiceH.Get)
	secured.PUT("/invoices/:id", invoiceH.Update)
	secured.DELETE("/invoices/:id", invoiceH.Delete)
	secured.GET("/invoices/:id/document", invoiceH.Document)
	secured.GET("/tax-records", taxH.List)
	secured.POST("/tax-records", taxH.Create)
	secured.GET("/tax-records/:id", taxH.Get)
	secured.PUT("/tax-records/:id", taxH.Update)
	secured.DELETE("/tax-records/:id", taxH.Delete)
	secured.GET("/establishments", estH.List)
	secured.POST("/establishments", estH.Create)
	secured.GET("/establishments/:id", estH.Get)
	secured.PUT("/establishments/:id", estH.Update)
	secured.DELETE("/establishments/:id", estH.Delete)

	return &testEnv{
		engine:     r,
		db:         db,
		jwt:        jwtService,
		recognizer: recognizer,
		automation: automation,
	}
}

// newUser stores an account and returns its id with a valid access token.
func (e *testEnv) newUser(t *testing.T, email string) (uuid.UUID, string) {
	t.Helper()
	u, err := account.NewUser(account.NewUserParams{
		FirstName: "Ana",
		LastName:  "Pech",
		Email:     email,
		Password:  testPassword,
	})
	require.NoError(t, err)
	require.NoError(t, persistence.NewGormUserRepository(e.db).Save(context.Background(), u))
	pair, err := e.jwt.GenerateTokenPair(u.ID, u.Email)
	require.NoError(t, err)
	return u.ID, pair.AccessToken
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

// envelope decodes a success envelope whose data is T.
type envelope[T any] struct {
	Success bool           `json:"success"`
	Data    T              `json:"data"`
	Error   *dto.ErrorInfo `json:"error"`
	Meta    *dto.Meta      `json:"meta"`
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) envelope[T] {
	t.Helper()
	var out envelope[T]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func legacyMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var out dto.MessageResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out.Message
}
