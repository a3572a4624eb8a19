package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime"
	"net/http"
	"time"

	appErrors "skillmatch/internal/errors"
)

const defaultHealthCheckTimeout = 10 * time.Second

// getHealthCheckTimeout returns the configured model check timeout
func (s *Server) getHealthCheckTimeout() time.Duration {
	if s.AppConfig == nil {
		return defaultHealthCheckTimeout
	}
	hc := s.AppConfig.Observability.HealthCheck
	if hc.AIModelCheckTimeout > 0 {
		return hc.AIModelCheckTimeout
	}
	if hc.Timeout > 0 {
		return hc.Timeout
	}
	return defaultHealthCheckTimeout
}

// healthHandler reports dictionary and AI model status. Missing
// dictionaries or an unavailable model make the service degraded.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]any{
		"status":  "healthy",
		"service": "skillmatch",
		"version": s.Version,
	}
	overallHealthy := true

	catalog := s.engine.Catalog()
	catalogStatus := map[string]any{
		"skills":  catalog.Skills.Len(),
		"domains": catalog.Domains.Len(),
	}
	if len(catalog.Warnings) > 0 {
		overallHealthy = false
		catalogStatus["warnings"] = catalog.Warnings
	}
	response["catalog"] = catalogStatus

	if s.ai != nil {
		ctx, cancel := context.WithTimeout(r.Context(), s.getHealthCheckTimeout())
		defer cancel()

		modelInfo := s.ai.GetModelInfo(ctx)
		response["ai_model"] = modelInfo
		response["circuit_breakers"] = s.ai.GetCircuitBreakerStats()
		if modelInfo == nil || !modelInfo.Available {
			overallHealthy = false
		}
	} else {
		overallHealthy = false
		response["ai_model"] = map[string]any{
			"available": false,
			"error":     "AI suggestions are not configured",
		}
	}

	status := http.StatusOK
	if !overallHealthy {
		response["status"] = "degraded"
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, response)
}

// statsHandler provides server statistics including rate limiting info
func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	catalog := s.engine.Catalog()

	response := map[string]any{
		"service": "skillmatch",
		"version": s.Version,
		"server": map[string]any{
			"max_request_size_bytes": s.MaxRequestSize,
		},
		"catalog": map[string]any{
			"skills":   catalog.Skills.Len(),
			"domains":  catalog.Domains.Len(),
			"warnings": len(catalog.Warnings),
		},
	}

	if s.RateLimiter != nil {
		response["rate_limiting"] = s.RateLimiter.GetStats()
	} else {
		response["rate_limiting"] = map[string]any{
			"enabled": false,
		}
	}

	if s.RateLimit != nil {
		response["rate_limit_config"] = map[string]any{
			"enabled":          s.RateLimit.Enabled,
			"requests_per_min": s.RateLimit.RequestsPerMin,
			"burst_capacity":   s.RateLimit.BurstCapacity,
		}
	}

	if s.ai != nil {
		response["circuit_breakers"] = s.ai.GetCircuitBreakerStats()
	}

	writeJSON(w, http.StatusOK, response)
}

// decodeAndValidate parses a JSON request body into v and runs the struct
// validation tags
func (s *Server) decodeAndValidate(r *http.Request, v any) error {
	if err := parseJSONRequest(r, v); err != nil {
		return err
	}
	if err := s.validate.Struct(v); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	return nil
}

// parseJSONRequest parses JSON request body into the provided struct
func parseJSONRequest(r *http.Request, v any) error {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "application/json" {
		return fmt.Errorf("content-type must be application/json")
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return fmt.Errorf("request body too large (limit is %d bytes)", maxBytesErr.Limit)
		}
		return fmt.Errorf("failed to read request body: %w", err)
	}
	defer func() {
		if err := r.Body.Close(); err != nil {
			log.Printf("Failed to close request body: %v", err)
		}
	}()

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}

	return nil
}

// writeJSON writes v with the given status
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

// writeErrorResponse writes a standardized error response
func writeErrorResponse(w http.ResponseWriter, error, code, message string, statusCode int) {
	writeJSON(w, statusCode, ErrorResponse{
		Error:   error,
		Code:    code,
		Message: message,
	})
}

// writeAppError writes err with a status derived from its code
func writeAppError(w http.ResponseWriter, err error) {
	code := appErrors.CodeOf(err)
	message := err.Error()
	var appErr *appErrors.AppError
	if errors.As(err, &appErr) {
		message = appErr.Message
	}
	writeErrorResponse(w, http.StatusText(statusForCode(code)), code, message, statusForCode(code))
}

func statusForCode(code string) int {
	switch code {
	case appErrors.ErrCodeUnknownDomain:
		return http.StatusNotFound
	case appErrors.ErrCodeUnsupportedDocument:
		return http.StatusUnsupportedMediaType
	case appErrors.ErrCodeMalformedDocument, appErrors.ErrCodeNoRequiredSkills:
		return http.StatusUnprocessableEntity
	case appErrors.ErrCodeInvalidRequest:
		return http.StatusBadRequest
	case appErrors.ErrCodeAINotConfigured:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
