// routes.go - Route registration helpers
// This file provides a clean way to register all API routes
package api

import (
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pdftools/backend/internal/observability"
	"github.com/pdftools/backend/internal/registry"
	"github.com/pdftools/backend/internal/theme"
	"golang.org/x/time/rate"
)

// rateLimiterVisitorTTL is how long an idle client's bucket is kept.
const rateLimiterVisitorTTL = 3 * time.Minute

// Dependencies holds all handler dependencies
type Dependencies struct {
	Registry      *registry.Registry
	Sessions      SessionManager
	Version       string
	MaxFiles      int
	DefaultTheme  theme.Preference
	SecureCookies bool
	WSMaxKB       int
	Logger        observability.Logger
}

// Handlers holds all handler instances
type Handlers struct {
	Health  HealthHandler
	Catalog CatalogHandler
	Theme   ThemeHandler
	Wizard  WizardHandler
	Stream  StreamHandler
}

// NewHandlers creates all handler instances
func NewHandlers(deps *Dependencies) *Handlers {
	return &Handlers{
		Health:  NewHealthHandler(deps.Version, deps.Sessions),
		Catalog: NewCatalogHandler(deps.Registry, deps.MaxFiles),
		Theme:   NewThemeHandler(deps.DefaultTheme, deps.SecureCookies),
		Wizard:  NewWizardHandler(deps.Sessions, deps.Logger),
		Stream:  NewWebSocketHandler(deps.Sessions, deps.WSMaxKB, deps.Logger),
	}
}

// RegisterRoutes registers all API routes on the /api group
func RegisterRoutes(api *echo.Group, handlers *Handlers) {
	// Health check
	api.GET("/health", handlers.Health.HandleHealth)

	// Catalog routes
	api.GET("/tools", handlers.Catalog.HandleListTools)
	api.GET("/tools/:id", handlers.Catalog.HandleGetTool)
	api.GET("/categories", handlers.Catalog.HandleListCategories)
	api.GET("/categories/:id/tools", handlers.Catalog.HandleCategoryTools)
	api.GET("/plans", handlers.Catalog.HandleListPlans)

	// Theme routes
	api.GET("/theme", handlers.Theme.HandleGetTheme)
	api.POST("/theme/toggle", handlers.Theme.HandleToggleTheme)

	// Wizard session routes
	wizardGroup := api.Group("/wizard")
	wizardGroup.POST("", handlers.Wizard.HandleStartWizard)
	wizardGroup.GET("/:sessionId", handlers.Wizard.HandleGetWizard)
	wizardGroup.DELETE("/:sessionId", handlers.Wizard.HandleEndWizard)
	wizardGroup.GET("/:sessionId/msgpack", handlers.Wizard.HandleGetWizardMsgpack)
	wizardGroup.GET("/:sessionId/progress", handlers.Wizard.HandleProgressStream)
	wizardGroup.GET("/:sessionId/ws", handlers.Stream.HandleWizardStream)
	wizardGroup.POST("/:sessionId/keepalive", handlers.Wizard.HandleKeepAlive)

	wizardGroup.POST("/:sessionId/files", handlers.Wizard.HandleAddFiles)
	wizardGroup.DELETE("/:sessionId/files", handlers.Wizard.HandleClearFiles)
	wizardGroup.DELETE("/:sessionId/files/:index", handlers.Wizard.HandleRemoveFile)

	wizardGroup.POST("/:sessionId/continue", handlers.Wizard.HandleContinue)
	wizardGroup.POST("/:sessionId/back", handlers.Wizard.HandleBack)
	wizardGroup.POST("/:sessionId/process", handlers.Wizard.HandleProcess)
	wizardGroup.POST("/:sessionId/reset", handlers.Wizard.HandleReset)
	wizardGroup.PUT("/:sessionId/settings", handlers.Wizard.HandleUpdateSettings)
	wizardGroup.GET("/:sessionId/download", handlers.Wizard.HandleDownload)
}

// RateLimitConfig configures per-client API rate limiting
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// Enabled reports whether rate limiting should be applied.
func (c RateLimitConfig) Enabled() bool {
	return c.RequestsPerSecond > 0
}

// NewRateLimiter returns a per-IP token bucket limiter for the API group.
// Streaming endpoints are skipped; a disabled config yields a no-op.
func NewRateLimiter(cfg RateLimitConfig, logger observability.Logger) echo.MiddlewareFunc {
	if logger == nil {
		logger = observability.Discard()
	}
	if !cfg.Enabled() {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = int(cfg.RequestsPerSecond)
	}

	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Skipper: func(c echo.Context) bool {
			return IsStreamPath(c.Request().URL.Path)
		},
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(cfg.RequestsPerSecond),
			Burst:     burst,
			ExpiresIn: rateLimiterVisitorTTL,
		}),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return NewBadRequestError("cannot identify client", err)
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			logger.WarnContext(c.Request().Context(), "rate limit exceeded",
				"method", c.Request().Method,
				"path", c.Request().URL.Path,
				"client", identifier)
			c.Response().Header().Set("Retry-After", "1")
			return NewTooManyRequestsError()
		},
	})
}

// RequestIDMiddleware assigns X-Request-ID and stores it in the request
// context so context-aware log calls carry it.
func RequestIDMiddleware() echo.MiddlewareFunc {
	return middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		RequestIDHandler: func(c echo.Context, id string) {
			req := c.Request()
			c.SetRequest(req.WithContext(observability.WithRequestID(req.Context(), id)))
		},
	})
}

// IsStreamPath reports whether path is a long-lived SSE or WebSocket endpoint.
func IsStreamPath(path string) bool {
	return strings.HasPrefix(path, "/api/wizard/") &&
		(strings.HasSuffix(path, "/ws") || strings.HasSuffix(path, "/progress"))
}

// SetupMiddleware configures the error handler and the API group middleware
func SetupMiddleware(e *echo.Echo, api *echo.Group, limit RateLimitConfig, logger observability.Logger, showDetails bool) {
	// Use custom error handler
	e.HTTPErrorHandler = NewErrorHandler(logger, showDetails)

	api.Use(RequestIDMiddleware())
	api.Use(NewRateLimiter(limit, logger))
	api.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Response().Header().Set(echo.HeaderCacheControl, "no-store")
			return next(c)
		}
	})
}
