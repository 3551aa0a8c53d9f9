// Package otel wires f1mcp tool and health signals into OpenTelemetry.
package otel

import (
	"context"
	"errors"
	"fmt"
	"strings"

	otelapi "go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// DefaultServiceName is reported as service.name when none is configured.
const DefaultServiceName = "f1mcp"

// Config selects the trace exporter. An empty Endpoint leaves the global
// providers untouched.
type Config struct {
	Endpoint    string
	ServiceName string
}

// ShutdownFunc flushes and stops exporters installed by Setup.
type ShutdownFunc func(context.Context) error

// Setup installs a global tracer provider exporting to an OTLP/HTTP endpoint.
func Setup(ctx context.Context, cfg Config) (ShutdownFunc, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return func(context.Context) error { return nil }, nil
	}
	service := strings.TrimSpace(cfg.ServiceName)
	if service == "" {
		service = DefaultServiceName
	}

	var opts []otlptracehttp.Option
	if strings.Contains(endpoint, "://") {
		opts = append(opts, otlptracehttp.WithEndpointURL(endpoint))
	} else {
		opts = append(opts, otlptracehttp.WithEndpoint(endpoint))
	}
	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("otel: create trace exporter: %w", err)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewSchemaless(attribute.String("service.name", service))),
	)
	otelapi.SetTracerProvider(provider)

	return func(ctx context.Context) error {
		return errors.Join(provider.ForceFlush(ctx), provider.Shutdown(ctx))
	}, nil
}

// GlobalToolObserver builds a ToolObserver from the global meter and tracer providers.
func GlobalToolObserver() (*ToolObserver, error) {
	return NewToolObserver(
		otelapi.GetMeterProvider().Meter("f1mcp/tool"),
		otelapi.GetTracerProvider().Tracer("f1mcp/tool"),
	)
}
