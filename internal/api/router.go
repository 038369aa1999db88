package api

import (
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/99minutos/storefront/docs"
	"github.com/99minutos/storefront/internal/api/handler"
	"github.com/99minutos/storefront/internal/api/middleware"
	"github.com/99minutos/storefront/internal/core/domain"
	"github.com/99minutos/storefront/internal/core/ports"
	"github.com/99minutos/storefront/internal/core/service"
)

// Deps is everything the router needs. Services are built by the caller.
type Deps struct {
	Log       zerolog.Logger
	Store     ports.SessionStore
	Guard     *service.SessionGuard
	Screens   *service.Screens
	Auth      ports.AuthService
	Profiles  ports.ProfileService
	Listings  ports.ListingService
	Checkout  ports.CheckoutService
	Catalog   ports.CatalogService
	Countdown *service.Countdown
	// Checks are run by the readiness probe, keyed by dependency name.
	Checks map[string]handler.Check
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))
	e.Use(middleware.Metrics())

	// --- Handlers ---
	sessionHandler := handler.NewSessionHandler(d.Auth, d.Guard)
	catalogHandler := handler.NewCatalogHandler(d.Screens.Catalog, d.Catalog)
	listingHandler := handler.NewListingHandler(d.Screens.Listings, d.Listings)
	orderHandler := handler.NewOrderHandler(d.Screens, d.Checkout)
	profileHandler := handler.NewProfileHandler(d.Profiles)
	promoHandler := handler.NewPromoHandler(d.Countdown)

	requireSession := middleware.RequireSession(d.Store)
	members := middleware.RBAC(domain.RoleUser, domain.RoleAdmin)

	// --- Health probes and tooling (no session required) ---
	e.GET("/health", handler.NewHealthHandler().Liveness)
	e.GET("/health/ready", handler.NewReadinessHandler(d.Checks).Readiness)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	v1 := e.Group("/v1")

	// --- Session ---
	v1.POST("/session/login", sessionHandler.Login)
	v1.POST("/session/register", sessionHandler.Register)
	v1.POST("/session/logout", sessionHandler.Logout)
	v1.POST("/session/refresh", sessionHandler.Refresh, requireSession)
	v1.GET("/session", sessionHandler.Current, requireSession)

	// --- Public storefront ---
	v1.GET("/catalog", catalogHandler.Catalog)
	v1.GET("/categories", catalogHandler.Categories)
	v1.GET("/products/:id", catalogHandler.Product)
	v1.GET("/users/:username", profileHandler.Public)
	v1.GET("/promo/countdown", promoHandler.Countdown)

	// --- Logged-in user ---
	me := v1.Group("/me", requireSession, members)
	me.GET("/listings", listingHandler.List)
	me.POST("/listings", listingHandler.Create)
	me.GET("/listings/stats", listingHandler.Stats)
	me.PUT("/listings/:id", listingHandler.Update)
	me.PUT("/listings/:id/status", listingHandler.UpdateStatus)
	me.DELETE("/listings/:id", listingHandler.Delete)
	me.POST("/listings/bulk", listingHandler.Bulk)
	me.GET("/orders", orderHandler.List)
	me.PUT("/orders/:id/status", orderHandler.UpdateStatus)
	me.GET("/profile", profileHandler.Get)
	me.PATCH("/profile", profileHandler.Patch)

	v1.POST("/checkout", orderHandler.Checkout, requireSession, members)

	return e
}

// requestLogger logs one line per request through zerolog.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
