package observability

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/trace"
)

// spanExporter picks the console exporter, then OTLP. It returns nil when
// spans have nowhere to go.
func spanExporter(cfg ObservabilityConfig) (trace.SpanExporter, error) {
	switch {
	case cfg.ConsoleOutput:
		var opts []stdouttrace.Option
		if cfg.PrettyPrint {
			opts = append(opts, stdouttrace.WithPrettyPrint())
		}
		return stdouttrace.New(opts...)
	case cfg.OTLP.Enabled:
		opts := []otlptracehttp.Option{otlptracehttp.WithEndpointURL(cfg.OTLP.Endpoint)}
		if cfg.OTLP.Insecure {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		if len(cfg.OTLP.Headers) > 0 {
			opts = append(opts, otlptracehttp.WithHeaders(cfg.OTLP.Headers))
		}
		return otlptracehttp.New(context.Background(), opts...)
	default:
		return nil, nil
	}
}

// metricReaders builds one reader per configured sink. The returned shutdown
// funcs stop anything the readers started on their own, such as the scrape server.
func metricReaders(cfg ObservabilityConfig) ([]sdkmetric.Reader, []func(context.Context) error, error) {
	var (
		readers   []sdkmetric.Reader
		shutdowns []func(context.Context) error
	)

	if cfg.ConsoleOutput {
		exporter, err := stdoutmetric.New()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create console metric exporter: %w", err)
		}
		readers = append(readers, sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(cfg.Interval)))
	}

	if cfg.OTLP.Enabled {
		opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpointURL(cfg.OTLP.Endpoint)}
		if cfg.OTLP.Insecure {
			opts = append(opts, otlpmetrichttp.WithInsecure())
		}
		if len(cfg.OTLP.Headers) > 0 {
			opts = append(opts, otlpmetrichttp.WithHeaders(cfg.OTLP.Headers))
		}
		exporter, err := otlpmetrichttp.New(context.Background(), opts...)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create OTLP metrics exporter: %w", err)
		}
		readers = append(readers, sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(cfg.Interval)))
	}

	if cfg.Prometheus.Enabled {
		reader, server, err := startPrometheus(cfg.Prometheus)
		if err != nil {
			return nil, nil, err
		}
		readers = append(readers, reader)
		shutdowns = append(shutdowns, server.Shutdown)
	}

	return readers, shutdowns, nil
}

// startPrometheus registers the OTel Prometheus bridge and serves the default
// registry on its own port. The port is bound before returning so a clash
// fails startup instead of a background goroutine.
func startPrometheus(cfg PrometheusConfig) (sdkmetric.Reader, *http.Server, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create Prometheus exporter: %w", err)
	}

	listener, err := net.Listen("tcp", ":"+cfg.Port)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to bind Prometheus port %s: %w", cfg.Port, err)
	}

	mux := http.NewServeMux()
	mux.Handle(cfg.Endpoint, promhttp.Handler())

	server := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fmt.Printf("Prometheus server error: %v\n", err)
		}
	}()

	return exporter, server, nil
}
