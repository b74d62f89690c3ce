package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pdftools/backend/internal/api"
	"github.com/pdftools/backend/internal/config"
	"github.com/pdftools/backend/internal/observability"
	"github.com/pdftools/backend/internal/registry"
	"github.com/pdftools/backend/internal/session"
	"github.com/pdftools/backend/internal/web"
	"github.com/pdftools/backend/internal/wizard"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if configPath == "" {
				exePath, err := os.Executable()
				if err != nil {
					return fmt.Errorf("failed to get executable path: %w", err)
				}
				configPath = filepath.Join(filepath.Dir(exePath), config.DefaultFileName)
			}

			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, configPath)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to the XML config (default: "+config.DefaultFileName+" next to the executable)")
	return cmd
}

func serve(ctx context.Context, cfg *config.AppConfig, configPath string) error {
	logger := observability.NewLogger(cfg.LogConfig())

	e, sessions, err := newServer(cfg, logger)
	if err != nil {
		return err
	}

	s := newHTTPServer(cfg, logger)

	printBanner(cfg, configPath)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := e.StartServer(s); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		runCleanup(gctx, sessions, cfg.CleanupInterval(), cfg.SessionTimeout(), logger)
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := e.Shutdown(shutdownCtx)
		sessions.Shutdown()
		return err
	})

	return g.Wait()
}

// newHTTPServer applies the configured timeouts. net/http errors go to the
// structured logger.
func newHTTPServer(cfg *config.AppConfig, logger observability.Logger) *http.Server {
	return &http.Server{
		Addr:         cfg.GetServerAddr(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.WithComponent("http").Slog().Handler(), slog.LevelError),
	}
}

// newServer wires the registry, sessions and HTTP routes.
func newServer(cfg *config.AppConfig, logger observability.Logger) (*echo.Echo, *session.Manager, error) {
	reg := registry.Default()

	sessions := session.NewManager(reg, session.Options{
		MaxSessions: cfg.Sessions.MaxSessions,
		KeepAlive:   cfg.KeepAlive(),
		Wizard: wizard.Options{
			Simulation: cfg.Simulation(),
			MaxFiles:   cfg.Wizard.MaxFiles,
		},
		Logger: logger,
	})

	renderer, err := web.NewRenderer()
	if err != nil {
		return nil, nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.Renderer = renderer

	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Skipper: func(c echo.Context) bool {
			if !cfg.Advanced.EnableRequestLogging {
				return true
			}
			path := c.Request().URL.Path
			return api.IsStreamPath(path) ||
				strings.HasPrefix(path, "/static/") ||
				path == "/api/health"
		},
	}))

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 1024 * 4,
	}))

	if cfg.Advanced.RequestTimeoutSeconds > 0 {
		e.Use(middleware.TimeoutWithConfig(middleware.TimeoutConfig{
			Timeout:      time.Duration(cfg.Advanced.RequestTimeoutSeconds) * time.Second,
			Skipper:      isStream,
			ErrorMessage: "Request timeout",
		}))
	}

	if cfg.Advanced.EnableCompression {
		e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
			Level:   cfg.Advanced.CompressionLevel,
			Skipper: isStream,
		}))
	}

	e.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	if cfg.Server.EnableCORS {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: splitOrigins(cfg.Server.AllowOrigins),
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		}))
	}

	apiGroup := e.Group("/api")
	api.SetupMiddleware(e, apiGroup, api.RateLimitConfig{
		RequestsPerSecond: cfg.Security.RateLimitPerSecond,
		Burst:             cfg.Security.RateLimitBurst,
	}, logger, strings.EqualFold(cfg.Advanced.LogLevel, "debug"))

	api.RegisterRoutes(apiGroup, api.NewHandlers(&api.Dependencies{
		Registry:      reg,
		Sessions:      sessions,
		Version:       Version,
		MaxFiles:      cfg.Wizard.MaxFiles,
		DefaultTheme:  cfg.DefaultTheme(),
		SecureCookies: cfg.Security.SecureCookies,
		WSMaxKB:       cfg.Advanced.WebSocketMaxMessageSize,
		Logger:        logger,
	}))

	if err := web.RegisterStaticRoutes(e); err != nil {
		return nil, nil, fmt.Errorf("registering static routes: %w", err)
	}
	web.RegisterPageRoutes(e, web.NewPages(reg, cfg.DefaultTheme(), cfg.Wizard.MaxFiles, Version, logger))

	return e, sessions, nil
}

// runCleanup drops idle sessions every interval until ctx is done.
func runCleanup(ctx context.Context, sessions *session.Manager, interval, maxAge time.Duration, logger observability.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := sessions.CleanupOldSessions(maxAge); n > 0 {
				logger.Info("expired sessions removed", "count", n, "remaining", sessions.Len())
			}
		}
	}
}

func isStream(c echo.Context) bool {
	return api.IsStreamPath(c.Request().URL.Path) ||
		c.Request().Header.Get(echo.HeaderAccept) == "text/event-stream"
}

func splitOrigins(raw string) []string {
	origins := make([]string, 0)
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return origins
}

func printBanner(cfg *config.AppConfig, configPath string) {
	fmt.Printf("\n")
	fmt.Printf("╔═══════════════════════════════════════════════════════════╗\n")
	fmt.Printf("║           PDFTools Server                                 ║\n")
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Version:    %-45s║\n", Version)
	fmt.Printf("║  Build Time: %-45s║\n", BuildTime)
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Config:    %-46s║\n", configPath)
	fmt.Printf("║  Listen:    http://%-38s║\n", cfg.GetServerAddr())
	fmt.Printf("╚═══════════════════════════════════════════════════════════╝\n")
	fmt.Printf("\n")
	fmt.Printf("Open http://localhost:%d in your browser\n\n", cfg.Server.Port)
}
