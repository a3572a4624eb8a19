package cli

import (
	"context"
	"fmt"
	"time"

	"skillmatch/internal/config"
	"skillmatch/internal/observability"
	"skillmatch/internal/server"

	"github.com/spf13/cobra"
)

// formOverhead is the room left for form fields on top of the upload limit
const formOverhead = 1 << 20

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the guided web interface and JSON API",
	Long: `Start an HTTP server with the five-step guided resume analyzer at /
and a JSON API.

Available endpoints:
- GET/POST /: Guided upload, domain, matching, score and suggestions
- GET /api/domains: Job domains and their required skills
- POST /api/match: Match resume text against a domain
- POST /api/suggestions: Improvement suggestions for a list of skills
- POST /api/extract: Extract text from a DOCX resume
- GET /health: Health check with AI model status
- GET /stats: Server statistics and rate limiting info

TLS Configuration:
- Use --tls-mode to set TLS mode: disabled, server
- Use --cert-file and --key-file for TLS certificates`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringP("port", "p", "", "Port to listen on (default from config)")
	serveCmd.Flags().String("host", "", "Host to bind to (default from config)")
	serveCmd.Flags().String("tls-mode", "", "TLS mode: disabled, server (overrides config)")
	serveCmd.Flags().String("cert-file", "", "Server certificate file (PEM, overrides config)")
	serveCmd.Flags().String("key-file", "", "Server private key file (PEM, overrides config)")
}

// applyServeFlags copies explicitly set flags over the loaded configuration
func applyServeFlags(cmd *cobra.Command, cfg *config.Config) {
	override := func(flagName string, target *string) {
		if cmd.Flags().Changed(flagName) {
			*target, _ = cmd.Flags().GetString(flagName)
		}
	}

	override("port", &cfg.Server.Port)
	override("host", &cfg.Server.Host)
	override("tls-mode", &cfg.Server.TLS.Mode)
	override("cert-file", &cfg.Server.TLS.CertFile)
	override("key-file", &cfg.Server.TLS.KeyFile)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	applyServeFlags(cmd, cfg)

	// Validate TLS configuration after applying overrides
	if err := cfg.ValidateTLSConfig(); err != nil {
		return fmt.Errorf("invalid TLS configuration: %w", err)
	}

	om, err := observability.NewObservabilityManager(observability.GetObservabilityConfig(cfg, Version))
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := om.Shutdown(ctx); err != nil {
			logger.LogError(err, "Failed to shutdown observability")
		}
	}()

	c, err := newComponents(cfg, logger)
	if err != nil {
		return err
	}
	defer c.close(logger)

	c.ai.SetTracker(om.TrackAI)
	c.engine.SetObserver(om)

	serverCfg := server.ServerConfig{
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		Version:        Version,
		TLSConfig:      cfg.Server.TLS,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxRequestSize: maxRequestSize(cfg.App.MaxFileSize),
		RateLimit:      &cfg.Server.RateLimit,
	}
	deps := server.Dependencies{
		Engine:        c.engine,
		Extractor:     c.extractor,
		AI:            c.ai,
		Observability: om,
	}
	return server.NewServer(cfg, serverCfg, deps, logger).Start(cmd.Context())
}

func maxRequestSize(maxFileSize int64) int64 {
	if maxFileSize <= 0 {
		return 0
	}
	return maxFileSize + formOverhead
}
