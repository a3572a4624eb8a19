package observability

import (
	"context"
	"fmt"
	"time"

	"skillmatch/internal/ai"
	"skillmatch/internal/types"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
)

// instruments are the application metrics, created once per meter provider
type instruments struct {
	aiDuration  metric.Float64Histogram
	aiRequests  metric.Int64Counter
	aiErrors    metric.Int64Counter
	aiTokens    metric.Int64Histogram
	scored      metric.Int64Counter
	extracted   metric.Int64Counter
	docSize     metric.Int64Histogram
	rateLimited metric.Int64Counter
}

func newInstruments(meter metric.Meter) (*instruments, error) {
	var (
		in  instruments
		err error
	)

	counters := []struct {
		target *metric.Int64Counter
		name   string
		desc   string
	}{
		{&in.aiRequests, "skillmatch_ai_requests_total", "Total number of AI suggestion requests"},
		{&in.aiErrors, "skillmatch_ai_errors_total", "Total number of failed AI suggestion requests"},
		{&in.scored, "skillmatch_resumes_scored_total", "Total number of resumes scored against a domain"},
		{&in.extracted, "skillmatch_documents_extracted_total", "Total number of uploaded documents processed"},
		{&in.rateLimited, "skillmatch_rate_limit_hits_total", "Total number of requests rejected by the rate limiter"},
	}
	for _, c := range counters {
		if *c.target, err = meter.Int64Counter(c.name, metric.WithDescription(c.desc)); err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", c.name, err)
		}
	}

	in.aiDuration, err = meter.Float64Histogram("skillmatch_ai_processing_duration_seconds",
		metric.WithDescription("Time spent generating one AI suggestion"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, fmt.Errorf("failed to create skillmatch_ai_processing_duration_seconds: %w", err)
	}

	in.aiTokens, err = meter.Int64Histogram("skillmatch_ai_token_usage",
		metric.WithDescription("Token usage per AI request, by token_type"),
		metric.WithUnit("tokens"))
	if err != nil {
		return nil, fmt.Errorf("failed to create skillmatch_ai_token_usage: %w", err)
	}

	in.docSize, err = meter.Int64Histogram("skillmatch_document_size_bytes",
		metric.WithDescription("Size of uploaded resume documents"),
		metric.WithUnit("By"))
	if err != nil {
		return nil, fmt.Errorf("failed to create skillmatch_document_size_bytes: %w", err)
	}

	return &in, nil
}

// TrackAI runs fn inside an "ai.<operation>" span and records duration,
// outcome and token usage. It satisfies ai.Tracker.
func (om *ObservabilityManager) TrackAI(ctx context.Context, operation string, fn func(context.Context) (*ai.TokenUsage, error)) error {
	if om == nil || om.instruments == nil || !om.config.Switches.AI {
		_, err := fn(ctx)
		return err
	}

	ctx, span := om.Tracer("skillmatch.ai").Start(ctx, "ai."+operation)
	defer span.End()

	start := time.Now()
	usage, err := fn(ctx)
	elapsed := time.Since(start).Seconds()

	attrs := metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.Bool("success", err == nil),
	)
	om.instruments.aiRequests.Add(ctx, 1, attrs)
	if om.config.Switches.AIDuration {
		om.instruments.aiDuration.Record(ctx, elapsed, attrs)
	}
	if err != nil {
		om.instruments.aiErrors.Add(ctx, 1, attrs)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	if usage != nil {
		span.SetAttributes(
			attribute.Int64("ai.tokens.input", usage.InputTokens),
			attribute.Int64("ai.tokens.output", usage.OutputTokens),
			attribute.Int64("ai.tokens.total", usage.TotalTokens),
		)
		if om.config.Switches.AITokens {
			for tokenType, n := range map[string]int64{
				"input":  usage.InputTokens,
				"output": usage.OutputTokens,
				"total":  usage.TotalTokens,
			} {
				om.instruments.aiTokens.Record(ctx, n, metric.WithAttributes(
					attribute.String("operation", operation),
					attribute.String("token_type", tokenType),
				))
			}
		}
	}
	return err
}

// ResumeScored counts a scored resume, labelled by band when configured
func (om *ObservabilityManager) ResumeScored(ctx context.Context, domain string, score *types.Score) {
	if om == nil || om.instruments == nil || !om.config.Switches.Business || score == nil {
		return
	}
	var attrs []attribute.KeyValue
	if om.config.Switches.ScoreBands {
		attrs = append(attrs, attribute.String("band", string(score.Band)))
	}
	om.instruments.scored.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// DocumentExtracted counts an upload and records its size when configured
func (om *ObservabilityManager) DocumentExtracted(ctx context.Context, size int64, err error) {
	if om == nil || om.instruments == nil || !om.config.Switches.Business {
		return
	}
	om.instruments.extracted.Add(ctx, 1, metric.WithAttributes(attribute.Bool("success", err == nil)))
	if om.config.Switches.DocumentSize {
		om.instruments.docSize.Record(ctx, size)
	}
}

// RateLimitHit counts a rejected request
func (om *ObservabilityManager) RateLimitHit(ctx context.Context, path string) {
	if om == nil || om.instruments == nil || !om.config.Switches.RateLimits {
		return
	}
	om.instruments.rateLimited.Add(ctx, 1, metric.WithAttributes(attribute.String("endpoint", path)))
}
