package router

import (
	"net/http"
	"testing"

	"github.com/facturasnap/backend/internal/interfaces/http/handler"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func testHandlers() Handlers {
	return Handlers{
		Auth:          &handler.AuthHandler{},
		Plan:          &handler.PlanHandler{},
		Credit:        &handler.CreditHandler{},
		Session:       &handler.SessionHandler{},
		Invoice:       &handler.InvoiceHandler{},
		TaxRecord:     &handler.TaxRecordHandler{},
		Establishment: &handler.EstablishmentHandler{},
		Extraction:    &handler.ExtractionHandler{},
		System:        handler.NewSystemHandler("facturasnap", "test", nil),
	}
}

func routeSet(engine *gin.Engine) map[string]bool {
	set := map[string]bool{}
	for _, r := range engine.Routes() {
		set[r.Method+" "+r.Path] = true
	}
	return set
}

func TestMount_RegistersRoutes(t *testing.T) {
	engine := gin.New()
	Mount(engine, []string{"super-aki", "bodega-aurrera"}, testHandlers(), Guards{})

	routes := routeSet(engine)
	for _, want := range []string{
		"POST /extract-text",
		"POST /generar-factura-super-aki",
		"POST /generar-factura-bodega-aurrera",
		"GET /health",
		"POST /api/v1/auth/register",
		"POST /api/v1/auth/login",
		"POST /api/v1/auth/refresh",
		"POST /api/v1/auth/logout",
		"GET /api/v1/auth/me",
		"PUT /api/v1/auth/password",
		"GET /api/v1/plans",
		"DELETE /api/v1/plans/:id",
		"GET /api/v1/credits/balance",
		"POST /api/v1/credits/purchase",
		"PUT /api/v1/credits/:id",
		"GET /api/v1/sessions",
		"DELETE /api/v1/sessions/:id",
		"POST /api/v1/invoices/generate/:merchant",
		"GET /api/v1/invoices/:id/document",
		"POST /api/v1/tax-records",
		"PUT /api/v1/establishments/:id",
		"GET /api/v1/merchants",
		"POST /api/v1/extractions",
		"GET /api/v1/system/info",
		"GET /api/v1/system/health",
	} {
		assert.True(t, routes[want], want)
	}
}

func TestMount_AuthGuardCoversAPIOnly(t *testing.T) {
	engine := gin.New()
	guard := func(c *gin.Context) {
		c.AbortWithStatus(http.StatusUnauthorized)
	}
	Mount(engine, nil, testHandlers(), Guards{Auth: guard})

	assert.Equal(t, http.StatusUnauthorized, serve(engine, http.MethodGet, "/api/v1/system/info").Code)
	assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/health").Code)
}

func TestMount_AuthRateLimitOnCredentialRoutes(t *testing.T) {
	engine := gin.New()
	limited := func(c *gin.Context) {
		c.AbortWithStatus(http.StatusTooManyRequests)
	}
	Mount(engine, nil, testHandlers(), Guards{AuthRateLimit: limited})

	for _, path := range []string{"/api/v1/auth/login", "/api/v1/auth/register", "/api/v1/auth/refresh"} {
		assert.Equal(t, http.StatusTooManyRequests, serve(engine, http.MethodPost, path).Code, path)
	}
	assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/api/v1/system/ping").Code)
}

func TestPublicPaths(t *testing.T) {
	paths := PublicPaths("/api/v1")
	assert.Contains(t, paths, "/api/v1/auth/login")
	assert.NotContains(t, paths, "/api/v1/auth/me")
}
