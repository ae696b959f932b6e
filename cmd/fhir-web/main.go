package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ehr/fhirweb/internal/config"
	"github.com/ehr/fhirweb/internal/domain/admin"
	"github.com/ehr/fhirweb/internal/domain/identity"
	"github.com/ehr/fhirweb/internal/platform/fhir"
	"github.com/ehr/fhirweb/internal/platform/middleware"
	"github.com/ehr/fhirweb/internal/platform/render"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "fhir-web",
		Short: "Web forms for registering and searching people on a FHIR server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(pingCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the web server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func pingCmd() *cobra.Command {
	var baseURL string
	cmd := &cobra.Command{
		Use:   "ping",
		Short: "Read the FHIR server's capability statement",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if baseURL == "" {
				baseURL = cfg.FHIRBaseURL
			}
			return runPing(cmd.Context(), cmd.OutOrStdout(), cfg, baseURL)
		},
	}
	cmd.Flags().StringVar(&baseURL, "url", "", "FHIR base URL (defaults to FHIR_BASE_URL)")
	return cmd
}

// newLogger writes human-readable lines in development and JSON otherwise.
func newLogger(cfg *config.Config, out io.Writer) zerolog.Logger {
	if cfg.IsDev() {
		return zerolog.New(zerolog.ConsoleWriter{Out: out, NoColor: true}).With().Timestamp().Logger()
	}
	return zerolog.New(out).With().Timestamp().Logger()
}

func clientOptions(cfg *config.Config) fhir.ClientOptions {
	return fhir.ClientOptions{
		Timeout:     cfg.FHIRTimeout,
		BearerToken: cfg.FHIRBearerToken,
	}
}

func runServer() error {
	// Config
	cfg, err := config.Load()
	if err != nil {
		bootLogger := zerolog.New(os.Stderr).With().Timestamp().Logger()
		bootLogger.Fatal().Err(err).Msg("failed to load config")
	}

	// Logger
	logger := newLogger(cfg, os.Stdout)

	// FHIR target
	target, err := fhir.NewTarget(fhir.NewConnector(clientOptions(cfg)), fhir.ServerConfig{
		AppID:   cfg.FHIRAppID,
		BaseURL: cfg.FHIRBaseURL,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to set up FHIR client")
	}
	logger.Info().Str("fhir_base_url", cfg.FHIRBaseURL).Str("app_id", cfg.FHIRAppID).Msg("FHIR target configured")

	e, err := newServer(cfg, logger, target)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build server")
	}

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}

// newServer wires middleware, templates and routes around target.
func newServer(cfg *config.Config, logger zerolog.Logger, target *fhir.Target) (*echo.Echo, error) {
	renderer, err := render.New()
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = renderer

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.BodyLimit(cfg.BodyLimitBytes()))
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.RequestTimeout(cfg.RequestTimeout))
	if cfg.CSRFEnabled {
		e.Use(echomw.CSRFWithConfig(echomw.CSRFConfig{
			TokenLookup:    "form:csrf_token",
			ContextKey:     render.CSRFContextKey,
			CookiePath:     "/",
			CookieHTTPOnly: true,
			CookieSecure:   cfg.IsProduction(),
			CookieSameSite: http.SameSiteStrictMode,
		}))
	}

	g := e.Group("")

	identitySvc := identity.NewService(target)
	identity.NewHandler(identitySvc, logger).RegisterRoutes(g)
	admin.NewHandler(target, logger).RegisterRoutes(g)

	return e, nil
}

func runPing(ctx context.Context, out io.Writer, cfg *config.Config, baseURL string) error {
	client, err := fhir.Connect(fhir.ServerConfig{AppID: cfg.FHIRAppID, BaseURL: baseURL}, clientOptions(cfg))
	if err != nil {
		return err
	}
	cs, err := client.Capabilities(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s: FHIR %s", baseURL, cs.FhirVersion)
	if cs.Software != nil && cs.Software.Name != "" {
		fmt.Fprintf(out, " (%s %s)", cs.Software.Name, cs.Software.Version)
	}
	fmt.Fprintln(out)
	return nil
}
