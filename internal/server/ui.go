package server

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	appErrors "skillmatch/internal/errors"
	"skillmatch/internal/flow"
	"skillmatch/internal/utils"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplate = template.Must(template.New("index.html").ParseFS(templateFS, "templates/index.html"))

// Form fields of the guided page
const (
	fieldResumeText = "resumeText"
	fieldResumeName = "resumeName"
	fieldDomain     = "domain"
	fieldView       = "view"

	viewSuggestions = "suggestions"

	// domainNone is the placeholder option. Domain names never contain a
	// colon, so it cannot collide with a real domain, including the empty one.
	domainNone = ":none"
)

// pageData is what the guided page template renders
type pageData struct {
	Interaction *flow.Interaction
	Sections    map[string]flow.Section
	RequestID   string
	Version     string
}

// pageHandler renders the five-section guided page. Every POST re-evaluates
// the whole flow from the submitted fields; the extracted text is carried
// forward in a hidden field so the upload does not have to be repeated.
func (s *Server) pageHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("skillmatch.ui").Start(r.Context(), "ui.page")
	defer span.End()

	var in flow.Input
	if r.Method == http.MethodPost {
		var err error
		in, err = s.readPageInput(r)
		if err != nil {
			span.RecordError(err)
			in.ExtractErr = err
		}
	}

	it := s.engine.Evaluate(ctx, in)
	span.SetAttributes(attribute.String("flow.stage", it.Stage.String()))

	sections := it.Sections()
	data := pageData{
		Interaction: it,
		Sections:    make(map[string]flow.Section, len(sections)),
		RequestID:   RequestID(r.Context()),
		Version:     s.Version,
	}
	for _, section := range sections {
		data.Sections[section.Key] = section
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.page.Execute(w, data); err != nil {
		s.requestLogger(r).LogError(err, "Failed to render page")
	}
}

// readPageInput collects the flow input from a form post. A freshly
// uploaded file replaces any carried-forward text.
func (s *Server) readPageInput(r *http.Request) (flow.Input, error) {
	in := flow.Input{}

	name, data, err := readUpload(r)
	if err != nil {
		// Parsing failed before any field could be read
		return in, uploadError(err)
	}

	if domain := r.FormValue(fieldDomain); domain != domainNone && len(r.Form[fieldDomain]) > 0 {
		in.Domain = domain
		in.DomainChosen = true
	}
	in.WantSuggestions = r.FormValue(fieldView) == viewSuggestions

	if data != nil {
		text, err := s.extractor.Extract(r.Context(), name, data)
		s.documentExtracted(r.Context(), len(data), err)
		if err != nil {
			return in, err
		}
		in.Resume = &flow.Resume{Name: name, Text: text}
		return in, nil
	}

	// Browsers submit form values with CRLF line endings
	if text := strings.ReplaceAll(r.FormValue(fieldResumeText), "\r\n", "\n"); text != "" {
		in.Resume = &flow.Resume{Name: r.FormValue(fieldResumeName), Text: text}
	}
	return in, nil
}

// uploadError turns a form parsing failure into a message for the upload section
func uploadError(err error) error {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return appErrors.NewValidationError(appErrors.ErrCodeUnsupportedDocument,
			fmt.Sprintf("upload exceeds the %s limit", utils.FormatFileSize(maxBytesErr.Limit)), err)
	}
	return appErrors.NewValidationError(appErrors.ErrCodeInvalidRequest, "cannot read the submitted form", err)
}
