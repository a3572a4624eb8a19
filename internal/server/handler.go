package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	appErrors "skillmatch/internal/errors"
	"skillmatch/internal/extract"
	"skillmatch/internal/flow"
	"skillmatch/internal/match"
	"skillmatch/internal/types"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// resumeField is the multipart field carrying the uploaded document
const resumeField = "resume"

// domainsHandler lists every domain with its required skills in file order
func (s *Server) domainsHandler(w http.ResponseWriter, r *http.Request) {
	catalog := s.engine.Catalog()

	response := DomainsResponse{Domains: []types.DomainInfo{}}
	for _, name := range catalog.Domains.Names() {
		required, _ := catalog.Domains.Required(name)
		response.Domains = append(response.Domains, types.DomainInfo{Name: name, Required: required})
	}
	for _, warning := range catalog.Warnings {
		response.Warnings = append(response.Warnings, warning.Message)
	}

	writeJSON(w, http.StatusOK, response)
}

// matchHandler scores raw resume text against a domain
func (s *Server) matchHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("skillmatch.api").Start(r.Context(), "api.match")
	defer span.End()

	var req types.MatchRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.String("error.type", "validation"))
		writeErrorResponse(w, "Invalid request body", appErrors.ErrCodeInvalidRequest, err.Error(), http.StatusBadRequest)
		return
	}

	span.SetAttributes(
		attribute.Int("request.resume_length", len(req.ResumeText)),
		attribute.String("request.domain", *req.Domain),
	)

	it := s.engine.Evaluate(ctx, flow.Input{
		Resume:       &flow.Resume{Text: req.ResumeText},
		Domain:       *req.Domain,
		DomainChosen: true,
	})
	if it.DomainError != nil {
		span.RecordError(it.DomainError)
		writeAppError(w, it.DomainError)
		return
	}
	if appErrors.HasCode(it.ScoreError, appErrors.ErrCodeNoRequiredSkills) {
		writeAppError(w, it.ScoreError)
		return
	}

	writeJSON(w, http.StatusOK, it.Report())
}

// suggestionsHandler generates one suggestion per requested skill. Per-skill
// failures are reported inside the response, never as a request failure.
func (s *Server) suggestionsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("skillmatch.api").Start(r.Context(), "api.suggestions")
	defer span.End()

	var req types.SuggestionsRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		span.RecordError(err)
		writeErrorResponse(w, "Invalid request body", appErrors.ErrCodeInvalidRequest, err.Error(), http.StatusBadRequest)
		return
	}
	if s.ai == nil || !s.ai.Configured() {
		writeErrorResponse(w, "AI suggestions unavailable", appErrors.ErrCodeAINotConfigured,
			"AI suggestions are not configured", http.StatusServiceUnavailable)
		return
	}

	span.SetAttributes(attribute.Int("request.skills", len(req.Skills)))
	suggestions := s.ai.SuggestAll(ctx, req.Skills)

	writeJSON(w, http.StatusOK, SuggestionsResponse{Suggestions: suggestions})
}

// extractHandler returns the text of an uploaded DOCX together with the
// dictionary skills it mentions
func (s *Server) extractHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	name, data, err := readUpload(r)
	if err != nil {
		writeUploadError(w, err)
		return
	}
	if data == nil {
		writeErrorResponse(w, "Missing resume", appErrors.ErrCodeInvalidRequest,
			fmt.Sprintf("multipart field %q is required", resumeField), http.StatusBadRequest)
		return
	}

	text, err := s.extractor.Extract(ctx, name, data)
	s.documentExtracted(ctx, len(data), err)
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ExtractResponse{
		Name:    name,
		Text:    text,
		Preview: extract.Preview(text, s.previewLength()),
		Found:   match.Found(text, s.engine.Catalog().Skills),
	})
}

// readUpload reads the resume part of a multipart form. It returns a nil
// slice without error when the form carries no file or is not multipart.
func readUpload(r *http.Request) (string, []byte, error) {
	file, header, err := r.FormFile(resumeField)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return "", nil, nil
	}
	if err != nil {
		return "", nil, err
	}
	defer file.Close() //nolint:errcheck

	data, err := io.ReadAll(file)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read upload: %w", err)
	}
	return header.Filename, data, nil
}

// writeUploadError maps multipart parsing failures to a response
func writeUploadError(w http.ResponseWriter, err error) {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		writeErrorResponse(w, "Request too large", appErrors.ErrCodeUnsupportedDocument,
			fmt.Sprintf("request body too large (limit is %d bytes)", maxBytesErr.Limit), http.StatusRequestEntityTooLarge)
		return
	}
	writeErrorResponse(w, "Invalid upload", appErrors.ErrCodeInvalidRequest, err.Error(), http.StatusBadRequest)
}

func (s *Server) previewLength() int {
	if s.AppConfig == nil {
		return 0
	}
	return s.AppConfig.App.PreviewLength
}
