// Package tracing sets up OpenTelemetry for the API server and gives the store
// and HTTP layers a small span API.
package tracing

import (
	"context"
	"fmt"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"google.golang.org/grpc/credentials/insecure"
	utilerrors "k8s.io/apimachinery/pkg/util/errors"

	options "github.com/kart-io/sbs-x/pkg/options/tracing"
)

// Provider owns the SDK tracer provider. A disabled Provider leaves the otel
// globals untouched, so every span is a no-op.
type Provider struct {
	tp *sdktrace.TracerProvider
}

type exporterFunc func(ctx context.Context, o *options.Options) (sdktrace.SpanExporter, error)

var exporters = map[options.ExporterType]exporterFunc{
	options.ExporterOTLPGRPC: func(ctx context.Context, o *options.Options) (sdktrace.SpanExporter, error) {
		opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(o.Endpoint), otlptracegrpc.WithHeaders(o.Headers)}
		if o.Insecure {
			opts = append(opts, otlptracegrpc.WithTLSCredentials(insecure.NewCredentials()))
		}
		return otlptrace.New(ctx, otlptracegrpc.NewClient(opts...))
	},
	options.ExporterOTLPHTTP: func(ctx context.Context, o *options.Options) (sdktrace.SpanExporter, error) {
		opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(o.Endpoint), otlptracehttp.WithHeaders(o.Headers)}
		if o.Insecure {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		return otlptrace.New(ctx, otlptracehttp.NewClient(opts...))
	},
	options.ExporterStdout: func(context.Context, *options.Options) (sdktrace.SpanExporter, error) {
		return stdouttrace.New(stdouttrace.WithWriter(os.Stderr))
	},
	options.ExporterNoop: func(context.Context, *options.Options) (sdktrace.SpanExporter, error) {
		return discard{}, nil
	},
}

// NewProvider validates o and, when tracing is enabled, installs a global
// tracer provider and W3C propagators.
func NewProvider(ctx context.Context, o *options.Options) (*Provider, error) {
	if o == nil {
		o = options.NewOptions()
	}
	if err := o.Complete(); err != nil {
		return nil, err
	}
	if errs := o.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("invalid tracing options: %w", utilerrors.NewAggregate(errs))
	}
	if !o.Enabled {
		return &Provider{}, nil
	}

	newExporter, ok := exporters[o.ExporterType]
	if !ok {
		return nil, fmt.Errorf("unsupported exporter type %q", o.ExporterType)
	}
	exp, err := newExporter(ctx, o)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s exporter: %w", o.ExporterType, err)
	}

	res, err := resource.New(ctx,
		resource.WithFromEnv(),
		resource.WithTelemetrySDK(),
		resource.WithHost(),
		resource.WithAttributes(
			semconv.ServiceName(o.ServiceName),
			semconv.ServiceVersion(o.ServiceVersion),
			semconv.DeploymentEnvironment(o.Environment),
		),
	)
	if err != nil {
		_ = exp.Shutdown(ctx)
		return nil, fmt.Errorf("failed to build resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler(o)),
		sdktrace.WithBatcher(exp,
			sdktrace.WithBatchTimeout(o.BatchTimeout),
			sdktrace.WithExportTimeout(o.ExportTimeout),
		),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	return &Provider{tp: tp}, nil
}

func sampler(o *options.Options) sdktrace.Sampler {
	switch o.SamplerType {
	case options.SamplerAlwaysOn:
		return sdktrace.AlwaysSample()
	case options.SamplerAlwaysOff:
		return sdktrace.NeverSample()
	case options.SamplerRatio:
		return sdktrace.TraceIDRatioBased(o.SamplerRatio)
	default:
		return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(o.SamplerRatio))
	}
}

// Enabled reports whether spans are exported.
func (p *Provider) Enabled() bool {
	return p.tp != nil
}

// Shutdown flushes pending spans and stops the exporter.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p.tp == nil {
		return nil
	}
	return p.tp.Shutdown(ctx)
}

type discard struct{}

func (discard) ExportSpans(context.Context, []sdktrace.ReadOnlySpan) error { return nil }
func (discard) Shutdown(context.Context) error                             { return nil }
