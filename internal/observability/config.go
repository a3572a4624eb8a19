package observability

import (
	"time"

	"skillmatch/internal/config"
)

const defaultCollectionInterval = 15 * time.Second

// ObservabilityConfig is the resolved telemetry setup for one process
type ObservabilityConfig struct {
	ServiceName     string
	ServiceVersion  string
	ServiceInstance string
	Enabled         bool
	Tracing         bool
	Metrics         bool
	ConsoleOutput   bool
	PrettyPrint     bool
	SampleRate      float64
	Interval        time.Duration
	Prometheus      PrometheusConfig
	OTLP            config.OTLPConfig
	Switches        MetricSwitches
}

// PrometheusConfig locates the scrape endpoint
type PrometheusConfig struct {
	Enabled  bool
	Endpoint string
	Port     string
}

// MetricSwitches turns individual instrument groups on or off
type MetricSwitches struct {
	AI           bool
	AIDuration   bool
	AITokens     bool
	Business     bool
	ScoreBands   bool
	DocumentSize bool
	RateLimits   bool
}

func allSwitches() MetricSwitches {
	return MetricSwitches{
		AI: true, AIDuration: true, AITokens: true,
		Business: true, ScoreBands: true, DocumentSize: true,
		RateLimits: true,
	}
}

// GetObservabilityConfig resolves cfg into an ObservabilityConfig. A nil cfg
// yields console tracing with every metric group on.
func GetObservabilityConfig(cfg *config.Config, version string) ObservabilityConfig {
	if cfg == nil {
		return ObservabilityConfig{
			ServiceName:    "skillmatch",
			ServiceVersion: version,
			Enabled:        true,
			Tracing:        true,
			Metrics:        true,
			ConsoleOutput:  true,
			PrettyPrint:    true,
			SampleRate:     1.0,
			Interval:       defaultCollectionInterval,
			Prometheus:     PrometheusConfig{Endpoint: "/metrics", Port: "9090"},
			Switches:       allSwitches(),
		}
	}

	o := cfg.Observability
	out := ObservabilityConfig{
		ServiceName:     o.ServiceName,
		ServiceVersion:  o.ServiceVersion,
		ServiceInstance: o.ServiceInstance,
		Enabled:         o.Enabled,
		Tracing:         o.Tracing.Enabled,
		Metrics:         o.Metrics.Enabled,
		ConsoleOutput:   o.ConsoleOutput,
		PrettyPrint:     o.Console.PrettyPrint,
		SampleRate:      o.SampleRate,
		Interval:        o.Metrics.CollectionInterval,
		Prometheus: PrometheusConfig{
			Enabled:  o.Prometheus.Enabled,
			Endpoint: o.Prometheus.Endpoint,
			Port:     o.Prometheus.Port,
		},
		OTLP: o.OTLP,
		Switches: MetricSwitches{
			AI:           o.CustomMetrics.AIOperations.Enabled,
			AIDuration:   o.CustomMetrics.AIOperations.TrackDuration,
			AITokens:     o.CustomMetrics.AIOperations.TrackTokenUsage,
			Business:     o.CustomMetrics.BusinessMetrics.Enabled,
			ScoreBands:   o.CustomMetrics.BusinessMetrics.TrackScoreBands,
			DocumentSize: o.CustomMetrics.BusinessMetrics.TrackDocumentSize,
			RateLimits:   o.CustomMetrics.Infrastructure.Enabled && o.CustomMetrics.Infrastructure.TrackRateLimits,
		},
	}

	if out.ServiceVersion == "" {
		out.ServiceVersion = version
	}
	if out.ServiceInstance == "" {
		out.ServiceInstance = out.ServiceName + "-1"
	}
	if out.Interval <= 0 {
		out.Interval = defaultCollectionInterval
	}
	if o.Tracing.SampleRate > 0 && o.Tracing.SampleRate < out.SampleRate {
		out.SampleRate = o.Tracing.SampleRate
	}
	return out
}
