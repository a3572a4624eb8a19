// Package flow drives the five-stage guided screening: upload, domain pick,
// skill matching, score and suggestions. Every interaction is evaluated from
// scratch out of the inputs the user currently provides; nothing is cached
// between interactions.
package flow

import (
	"context"

	"skillmatch/internal/errors"
	"skillmatch/internal/extract"
	"skillmatch/internal/match"
	"skillmatch/internal/skills"
	"skillmatch/internal/types"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// Stage is how far through the guided flow an interaction got
type Stage int

const (
	StageNoUpload Stage = iota
	StageDomainUnselected
	StageDomainSelected
	StageScoredAwaitingView
	StageSuggestionsView
)

func (s Stage) String() string {
	switch s {
	case StageNoUpload:
		return "no_upload"
	case StageDomainUnselected:
		return "domain_unselected"
	case StageDomainSelected:
		return "domain_selected"
	case StageScoredAwaitingView:
		return "scored_awaiting_view"
	case StageSuggestionsView:
		return "suggestions_view"
	default:
		return "unknown"
	}
}

// Resume is an uploaded document after successful extraction
type Resume struct {
	Name string
	Text string
}

// Input is everything the user has provided for one interaction
type Input struct {
	// Resume is nil until a document has been uploaded and extracted
	Resume *Resume
	// ExtractErr is the failure of the latest upload attempt, if any
	ExtractErr error
	Domain     string
	// DomainChosen marks Domain as selected even when it is empty, since
	// the domain file may define a domain with an empty name
	DomainChosen bool
	// WantSuggestions requests the AI suggestions view
	WantSuggestions bool
}

// Suggester generates per-skill suggestions with failures isolated per skill
type Suggester interface {
	SuggestAll(ctx context.Context, skills []string) []types.Suggestion
}

// Observer is notified of completed scores
type Observer interface {
	ResumeScored(ctx context.Context, domain string, score *types.Score)
}

// Engine evaluates interactions against the loaded dictionaries
type Engine struct {
	catalog       *skills.Catalog
	suggester     Suggester
	observer      Observer
	previewLength int
	logger        *errors.Logger
}

// NewEngine creates an engine. suggester may be nil, in which case every
// suggestion reports that AI is not configured.
func NewEngine(catalog *skills.Catalog, suggester Suggester, previewLength int, logger *errors.Logger) *Engine {
	return &Engine{
		catalog:       catalog,
		suggester:     suggester,
		previewLength: previewLength,
		logger:        logger,
	}
}

// SetObserver installs a score observer
func (e *Engine) SetObserver(o Observer) {
	e.observer = o
}

// Catalog returns the dictionaries the engine matches against
func (e *Engine) Catalog() *skills.Catalog {
	return e.catalog
}

// Evaluate recomputes the whole flow for in. The suggestion generator is
// only called when suggestions are requested and a score exists.
func (e *Engine) Evaluate(ctx context.Context, in Input) *Interaction {
	ctx, span := otel.Tracer("skillmatch.flow").Start(ctx, "flow.evaluate")
	defer span.End()

	it := &Interaction{
		Domains:  e.catalog.Domains.Names(),
		Domain:       in.Domain,
		DomainChosen: in.DomainChosen || in.Domain != "",
		Warnings:     e.catalog.Warnings,
	}
	defer func() {
		span.SetAttributes(
			attribute.String("flow.stage", it.Stage.String()),
			attribute.Bool("flow.suggestions_requested", in.WantSuggestions),
		)
	}()

	if in.ExtractErr != nil {
		it.UploadError = in.ExtractErr
		it.Stage = StageNoUpload
		return it
	}
	if in.Resume == nil {
		it.Stage = StageNoUpload
		return it
	}

	it.ResumeName = in.Resume.Name
	it.ResumeText = in.Resume.Text
	it.Preview = extract.Preview(in.Resume.Text, e.previewLength)
	it.Found = match.Found(in.Resume.Text, e.catalog.Skills)

	if !it.DomainChosen {
		it.Stage = StageDomainUnselected
		return it
	}

	required, err := e.catalog.Required(in.Domain)
	if err != nil {
		it.DomainError = err
		it.Stage = StageDomainUnselected
		return it
	}
	it.Required = required

	result, err := match.Match(in.Resume.Text, e.catalog.Skills, required)
	it.Result = &result
	it.Stage = StageDomainSelected
	if err != nil {
		it.ScoreError = err
		return it
	}

	score, err := match.Evaluate(result)
	if err != nil {
		it.ScoreError = err
		return it
	}
	it.Score = score
	it.Stage = StageScoredAwaitingView
	span.SetAttributes(
		attribute.Float64("match.score", score.Percent),
		attribute.String("match.band", string(score.Band)),
	)
	if e.observer != nil {
		e.observer.ResumeScored(ctx, in.Domain, score)
	}

	if in.WantSuggestions {
		it.SuggestionsRequested = true
		it.Suggestions = e.suggest(ctx, result.Missing)
		it.Stage = StageSuggestionsView
	}
	return it
}

func (e *Engine) suggest(ctx context.Context, missing []string) []types.Suggestion {
	if len(missing) == 0 {
		return []types.Suggestion{}
	}
	if e.suggester == nil {
		out := make([]types.Suggestion, len(missing))
		for i, skill := range missing {
			out[i] = types.Suggestion{
				Skill: skill,
				Error: errors.NewConfigError(errors.ErrCodeAINotConfigured,
					"AI suggestions are not configured", nil).Error(),
			}
		}
		return out
	}

	suggestions := e.suggester.SuggestAll(ctx, missing)
	failed := 0
	for _, s := range suggestions {
		if s.Failed() {
			failed++
		}
	}
	if failed > 0 && e.logger != nil {
		e.logger.Warn("Some suggestions could not be generated",
			"failed", failed,
			"total", len(suggestions))
	}
	return suggestions
}
