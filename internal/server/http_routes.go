package server

import (
	"context"
	"net/http"

	appErrors "skillmatch/internal/errors"

	"github.com/google/uuid"
)

// RequestIDHeader carries the request ID in both directions
const RequestIDHeader = "X-Request-ID"

type requestIDKey struct{}

type route struct {
	pattern string
	summary string
	handler http.HandlerFunc
}

// routes lists every endpoint with the one-line summary printed at startup
func (s *Server) routes() []route {
	return []route{
		{"GET /{$}", "Guided resume analyzer", s.pageHandler},
		{"POST /{$}", "Submit the guided form", s.pageHandler},
		{"GET /api/domains", "List job domains", s.domainsHandler},
		{"POST /api/match", "Match resume text against a domain", s.matchHandler},
		{"POST /api/suggestions", "Improvement suggestions for skills", s.suggestionsHandler},
		{"POST /api/extract", "Extract text from a DOCX resume", s.extractHandler},
		{"GET /health", "Health check", s.healthHandler},
		{"GET /stats", "Server statistics", s.statsHandler},
	}
}

// setupRoutes registers the routes and wraps them in the middleware chain
func (s *Server) setupRoutes() http.Handler {
	mux := http.NewServeMux()
	for _, rt := range s.routes() {
		mux.HandleFunc(rt.pattern, rt.handler)
	}
	return s.requestIDMiddleware(s.rateLimitMiddleware(s.requestSizeLimitMiddleware(mux)))
}

// requestIDMiddleware tags every request with an ID, reusing a well-formed
// incoming one
func (s *Server) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)

		ctx := context.WithValue(r.Context(), requestIDKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requestSizeLimitMiddleware limits the size of incoming requests
func (s *Server) requestSizeLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.MaxRequestSize > 0 {
			r.Body = http.MaxBytesReader(w, r.Body, s.MaxRequestSize)
		}

		next.ServeHTTP(w, r)
	})
}

// RequestID returns the ID assigned to the request carried by ctx
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// requestLogger returns the server logger annotated with the request ID
func (s *Server) requestLogger(r *http.Request) *appErrors.Logger {
	if id := RequestID(r.Context()); id != "" {
		return s.Logger.With("request_id", id)
	}
	return s.Logger
}
