package tracing

import (
	"context"
	"fmt"

	"github.com/Gobusters/ectologger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/sbosshardt/cure-contributors/pkg/tracing/exporters"
)

const (
	ExporterNone    = "none"
	ExporterConsole = "console"
	ExporterOTLP    = "otlp"
)

// Config selects and configures the span exporter.
type Config struct {
	ServiceName string
	Exporter    string
	OTLP        exporters.OTLPConfig
}

// Provider owns the SDK tracer provider installed by Setup.
type Provider struct {
	tp *sdktrace.TracerProvider
}

// Setup installs a tracer provider for cfg.Exporter. With ExporterNone the
// package tracer stays unset and spans are no-ops.
func Setup(ctx context.Context, cfg Config, logger ectologger.Logger) (*Provider, error) {
	var opt sdktrace.TracerProviderOption
	switch cfg.Exporter {
	case "", ExporterNone:
		SetTracer(nil)
		return &Provider{}, nil
	case ExporterConsole:
		opt = sdktrace.WithSyncer(exporters.NewConsoleExporter(logger))
	case ExporterOTLP:
		exp, err := exporters.NewOTLPExporter(ctx, cfg.OTLP)
		if err != nil {
			return nil, err
		}
		opt = sdktrace.WithBatcher(exp)
	default:
		return nil, fmt.Errorf("unsupported trace exporter: %s (use 'none', 'console' or 'otlp')", cfg.Exporter)
	}

	tp := sdktrace.NewTracerProvider(
		opt,
		sdktrace.WithResource(resource.NewSchemaless(attribute.String("service.name", cfg.ServiceName))),
	)
	otel.SetTracerProvider(tp)
	SetTracer(tp.Tracer(cfg.ServiceName))

	return &Provider{tp: tp}, nil
}

// Shutdown flushes pending spans.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p == nil || p.tp == nil {
		return nil
	}
	SetTracer(nil)
	return p.tp.Shutdown(ctx)
}
