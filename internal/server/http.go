package server

import (
	"context"
	"html/template"
	"time"

	"skillmatch/internal/ai"
	"skillmatch/internal/config"
	appErrors "skillmatch/internal/errors"
	"skillmatch/internal/extract"
	"skillmatch/internal/flow"
	"skillmatch/internal/observability"
	"skillmatch/internal/types"

	"github.com/go-playground/validator/v10"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// DomainsResponse is returned by GET /api/domains
type DomainsResponse struct {
	Domains  []types.DomainInfo `json:"domains"`
	Warnings []string           `json:"warnings,omitempty"`
}

// ExtractResponse is returned by POST /api/extract
type ExtractResponse struct {
	Name    string   `json:"name"`
	Text    string   `json:"text"`
	Preview string   `json:"preview"`
	Found   []string `json:"found"`
}

// SuggestionsResponse is returned by POST /api/suggestions
type SuggestionsResponse struct {
	Suggestions []types.Suggestion `json:"suggestions"`
}

// SuggestionService generates suggestions and reports on the model behind them
type SuggestionService interface {
	flow.Suggester
	Configured() bool
	GetModelInfo(ctx context.Context) *ai.ModelInfo
	GetCircuitBreakerStats() map[string]any
}

// Server holds configuration for the HTTP server
type Server struct {
	Host    string
	Port    string
	Version string

	// Full application configuration
	AppConfig *config.Config

	// TLS Configuration
	TLSConfig config.TLSConfig

	// Timeout configurations
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// Request size limit
	MaxRequestSize int64

	// Rate limiting
	RateLimit   *config.RateLimitConfig
	RateLimiter *RateLimiter

	// Logger
	Logger *appErrors.Logger

	engine    *flow.Engine
	extractor *extract.Extractor
	ai        SuggestionService
	obs       *observability.ObservabilityManager
	validate  *validator.Validate
	page      *template.Template
}

// ServerConfig holds configuration for creating a Server instance
type ServerConfig struct {
	Host           string
	Port           string
	Version        string
	TLSConfig      config.TLSConfig
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxRequestSize int64
	RateLimit      *config.RateLimitConfig
}

// Dependencies are the components the handlers delegate to. AI and
// Observability may be nil.
type Dependencies struct {
	Engine        *flow.Engine
	Extractor     *extract.Extractor
	AI            SuggestionService
	Observability *observability.ObservabilityManager
}

// NewServer creates a new Server instance from a ServerConfig struct
func NewServer(appCfg *config.Config, cfg ServerConfig, deps Dependencies, logger *appErrors.Logger) *Server {
	var rateLimiter *RateLimiter
	if cfg.RateLimit != nil && cfg.RateLimit.Enabled {
		rateLimiter = NewRateLimiter(
			cfg.RateLimit.RequestsPerMin,
			cfg.RateLimit.BurstCapacity,
			logger,
		)
	}

	return &Server{
		Host:           cfg.Host,
		Port:           cfg.Port,
		Version:        cfg.Version,
		AppConfig:      appCfg,
		TLSConfig:      cfg.TLSConfig,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxRequestSize: cfg.MaxRequestSize,
		RateLimit:      cfg.RateLimit,
		RateLimiter:    rateLimiter,
		Logger:         logger,
		engine:         deps.Engine,
		extractor:      deps.Extractor,
		ai:             deps.AI,
		obs:            deps.Observability,
		validate:       validator.New(validator.WithRequiredStructEnabled()),
		page:           pageTemplate,
	}
}

func (s *Server) documentExtracted(ctx context.Context, size int, err error) {
	s.obs.DocumentExtracted(ctx, int64(size), err)
}

func (s *Server) rateLimitHit(ctx context.Context, path string) {
	s.obs.RateLimitHit(ctx, path)
}
