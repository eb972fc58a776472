package router

import (
	"github.com/facturasnap/backend/internal/interfaces/http/handler"
	"github.com/gin-gonic/gin"
)

// LegacyGeneratePrefix is the path prefix of the per-merchant generation
// routes kept for existing mobile clients.
const LegacyGeneratePrefix = "/generar-factura-"

// Handlers are the HTTP handlers mounted by Mount.
type Handlers struct {
	Auth          *handler.AuthHandler
	Plan          *handler.PlanHandler
	Credit        *handler.CreditHandler
	Session       *handler.SessionHandler
	Invoice       *handler.InvoiceHandler
	TaxRecord     *handler.TaxRecordHandler
	Establishment *handler.EstablishmentHandler
	Extraction    *handler.ExtractionHandler
	System        *handler.SystemHandler
}

// Guards is the per-route middleware applied by Mount.
type Guards struct {
	// Auth is applied to the whole API group. It must let PublicPaths
	// through.
	Auth gin.HandlerFunc
	// OptionalAuth identifies the caller on legacy routes when a token is
	// presented.
	OptionalAuth gin.HandlerFunc
	// AuthRateLimit throttles the credential endpoints. Optional.
	AuthRateLimit gin.HandlerFunc
}

// PublicPaths lists the API routes served without an access token.
func PublicPaths(basePath string) []string {
	return []string{
		basePath + "/auth/register",
		basePath + "/auth/login",
		basePath + "/auth/refresh",
		basePath + "/system/info",
		basePath + "/system/ping",
		basePath + "/system/health",
	}
}

// Mount registers every FacturaSnap route on engine. merchantIDs are the
// registered merchants; each one gets a legacy generation route.
func Mount(engine *gin.Engine, merchantIDs []string, h Handlers, g Guards) *Router {
	mountLegacy(engine, merchantIDs, h, g)
	engine.GET("/health", h.System.Health)

	r := NewRouter(engine, WithAPIVersion("v1"))
	if g.Auth != nil {
		r.Use(g.Auth)
	}

	authRoutes := NewDomainGroup("auth", "/auth")
	authRoutes.POST("/register", with(g.AuthRateLimit, h.Auth.Register)...)
	authRoutes.POST("/login", with(g.AuthRateLimit, h.Auth.Login)...)
	authRoutes.POST("/refresh", with(g.AuthRateLimit, h.Auth.RefreshToken)...)
	authRoutes.POST("/logout", h.Auth.Logout)
	authRoutes.GET("/me", h.Auth.Me)
	authRoutes.PUT("/password", h.Auth.ChangePassword)

	planRoutes := NewDomainGroup("plans", "/plans")
	planRoutes.GET("", h.Plan.List).
		POST("", h.Plan.Create).
		GET("/:id", h.Plan.Get).
		PUT("/:id", h.Plan.Update).
		DELETE("/:id", h.Plan.Delete)

	creditRoutes := NewDomainGroup("credits", "/credits")
	creditRoutes.GET("", h.Credit.List).
		POST("", h.Credit.Create).
		GET("/balance", h.Credit.Balance).
		POST("/purchase", h.Credit.Purchase).
		GET("/:id", h.Credit.Get).
		PUT("/:id", h.Credit.Update).
		DELETE("/:id", h.Credit.Delete)

	sessionRoutes := NewDomainGroup("sessions", "/sessions")
	sessionRoutes.GET("", h.Session.List).
		DELETE("/:id", h.Session.Delete)

	invoiceRoutes := NewDomainGroup("invoices", "/invoices")
	invoiceRoutes.GET("", h.Invoice.List).
		POST("", h.Invoice.Create).
		POST("/generate/:merchant", h.Extraction.Generate).
		GET("/:id", h.Invoice.Get).
		GET("/:id/document", h.Invoice.Document).
		PUT("/:id", h.Invoice.Update).
		DELETE("/:id", h.Invoice.Delete)

	taxRecordRoutes := NewDomainGroup("tax-records", "/tax-records")
	taxRecordRoutes.GET("", h.TaxRecord.List).
		POST("", h.TaxRecord.Create).
		GET("/:id", h.TaxRecord.Get).
		PUT("/:id", h.TaxRecord.Update).
		DELETE("/:id", h.TaxRecord.Delete)

	establishmentRoutes := NewDomainGroup("establishments", "/establishments")
	establishmentRoutes.GET("", h.Establishment.List).
		POST("", h.Establishment.Create).
		GET("/:id", h.Establishment.Get).
		PUT("/:id", h.Establishment.Update).
		DELETE("/:id", h.Establishment.Delete)

	merchantRoutes := NewDomainGroup("merchants", "/merchants")
	merchantRoutes.GET("", h.Extraction.ListMerchants)

	extractionRoutes := NewDomainGroup("extractions", "/extractions")
	extractionRoutes.POST("", h.Extraction.Extract)

	systemRoutes := NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", h.System.GetSystemInfo).
		GET("/ping", h.System.Ping).
		GET("/health", h.System.Health)

	r.Register(authRoutes).
		Register(planRoutes).
		Register(creditRoutes).
		Register(sessionRoutes).
		Register(invoiceRoutes).
		Register(taxRecordRoutes).
		Register(establishmentRoutes).
		Register(merchantRoutes).
		Register(extractionRoutes).
		Register(systemRoutes)
	r.Setup()
	return r
}

// mountLegacy registers the unversioned routes. They answer with a bare
// {message} body instead of the API envelope.
func mountLegacy(engine *gin.Engine, merchantIDs []string, h Handlers, g Guards) {
	engine.POST("/extract-text", h.Extraction.ExtractText)
	for _, id := range merchantIDs {
		engine.POST(LegacyGeneratePrefix+id, with(g.OptionalAuth, h.Extraction.LegacyGenerate(id))...)
	}
}

func with(mw gin.HandlerFunc, h gin.HandlerFunc) []gin.HandlerFunc {
	if mw == nil {
		return []gin.HandlerFunc{h}
	}
	return []gin.HandlerFunc{mw, h}
}
