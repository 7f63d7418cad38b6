package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// Config controls the OTLP trace exporter
type Config struct {
	Enabled     bool    `toml:"enabled" env:"ENABLED"`
	Endpoint    string  `toml:"endpoint" env:"ENDPOINT"`
	ServiceName string  `toml:"service_name" env:"SERVICE_NAME"`
	SampleRatio float64 `toml:"sample_ratio" env:"SAMPLE_RATIO"`
}

func DefaultConfig() Config {
	return Config{
		ServiceName: "gohye-trades",
		SampleRatio: 1,
	}
}

func (c Config) Validate() error {
	if c.SampleRatio < 0 || c.SampleRatio > 1 {
		return fmt.Errorf("otel.sample_ratio must be within [0, 1], got %v", c.SampleRatio)
	}
	if c.Enabled && c.Endpoint == "" {
		return fmt.Errorf("otel.endpoint is required when tracing is enabled")
	}
	return nil
}

// Setup initialises OpenTelemetry tracing. Tracing is opt-in: when disabled
// or without an endpoint it returns a no-op shutdown and registers nothing,
// so spans go to the global no-op provider.
//
// The returned shutdown function flushes pending spans.
func Setup(ctx context.Context, cfg Config) (shutdown func(context.Context) error, err error) {
	noop := func(context.Context) error { return nil }

	if !cfg.Enabled || cfg.Endpoint == "" {
		return noop, nil
	}

	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpointURL(cfg.Endpoint),
	)
	if err != nil {
		return noop, fmt.Errorf("failed to create otlp exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
		),
	)
	if err != nil {
		return noop, fmt.Errorf("failed to build otel resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRatio))),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	return tp.Shutdown, nil
}
