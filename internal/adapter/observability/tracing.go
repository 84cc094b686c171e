// Package observability wires process-wide logging, tracing and HTTP metrics.
package observability

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"

	"github.com/fairyhunter13/smart-resume-matcher/internal/config"
)

// SamplingRatio is the fraction of root traces kept. An explicit
// OTEL_TRACES_SAMPLER_ARG wins; otherwise prod keeps 10% and other
// environments keep everything.
func SamplingRatio(cfg config.Config) float64 {
	if raw := strings.TrimSpace(cfg.TraceSampleRatio); raw != "" {
		if r, err := strconv.ParseFloat(raw, 64); err == nil && r >= 0 && r <= 1 {
			return r
		}
	}
	if cfg.IsProd() {
		return 0.1
	}
	return 1.0
}

// SetupTracing installs an OTLP/gRPC tracer provider and W3C propagation
// when OTEL_EXPORTER_OTLP_ENDPOINT is set. The returned func flushes and
// stops the provider; it is nil when tracing is disabled.
func SetupTracing(cfg config.Config) (func(context.Context) error, error) {
	if cfg.OTLPEndpoint == "" {
		slog.Info("tracing disabled", slog.String("reason", "OTEL_EXPORTER_OTLP_ENDPOINT empty"))
		return nil, nil
	}
	ctx := context.Background()
	exporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(cfg.OTLPEndpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("op=observability.setup_tracing: exporter: %w", err)
	}
	res, err := resource.New(ctx, resource.WithAttributes(
		semconv.ServiceName(cfg.OTELServiceName),
		semconv.DeploymentEnvironment(cfg.AppEnv),
	))
	if err != nil {
		return nil, fmt.Errorf("op=observability.setup_tracing: resource: %w", err)
	}

	ratio := SamplingRatio(cfg)
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{},
	))
	slog.Info("tracing enabled", slog.String("endpoint", cfg.OTLPEndpoint), slog.Float64("sampling_ratio", ratio))
	return tp.Shutdown, nil
}
