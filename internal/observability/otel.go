// Package observability configures OpenTelemetry tracing for the lawdesk
// processes. The admin API, the bot and the batch jobs export under one
// service name and are told apart by the process.role resource attribute.
package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"google.golang.org/grpc/credentials"

	"github.com/tbourn/lawdesk/internal/config"
)

// Process roles.
const (
	RoleAPI  = "api"
	RoleBot  = "bot"
	RoleJobs = "jobs"
)

// RoleKey is the resource attribute carrying the process role.
const RoleKey = attribute.Key("process.role")

// ShutdownFunc flushes and stops the tracer provider.
type ShutdownFunc func(context.Context) error

// Within calls f with a context that expires after d.
func (f ShutdownFunc) Within(d time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()
	return f(ctx)
}

func noop(context.Context) error { return nil }

// Replaced in tests.
var (
	newExporter = func(ctx context.Context, cfg config.OTELConfig) (sdktrace.SpanExporter, error) {
		opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.Endpoint)}
		if cfg.Insecure {
			opts = append(opts, otlptracegrpc.WithInsecure())
		} else {
			opts = append(opts, otlptracegrpc.WithTLSCredentials(credentials.NewClientTLSFromCert(nil, "")))
		}
		return otlptrace.New(ctx, otlptracegrpc.NewClient(opts...))
	}

	newResource = func(ctx context.Context, service, role, version string) (*resource.Resource, error) {
		return resource.New(ctx,
			resource.WithAttributes(
				semconv.ServiceName(service),
				semconv.ServiceVersion(version),
				RoleKey.String(role),
			),
		)
	}
)

// Sampler returns a parent-based sampler for ratio. Ratios outside (0,1)
// sample nothing or everything.
func Sampler(ratio float64) sdktrace.Sampler {
	switch {
	case ratio <= 0:
		return sdktrace.ParentBased(sdktrace.NeverSample())
	case ratio >= 1:
		return sdktrace.ParentBased(sdktrace.AlwaysSample())
	default:
		return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))
	}
}

// Setup installs the global tracer provider and propagator for a process
// with the given role. When tracing is disabled the globals are left alone
// and the returned shutdown does nothing. On error the globals are
// unchanged.
func Setup(ctx context.Context, cfg config.OTELConfig, role, version string) (ShutdownFunc, error) {
	if !cfg.Enabled {
		return noop, nil
	}

	exp, err := newExporter(ctx, cfg)
	if err != nil {
		return nil, err
	}
	res, err := newResource(ctx, cfg.ServiceName, role, version)
	if err != nil {
		_ = exp.Shutdown(ctx)
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithSampler(Sampler(cfg.SampleRatio)),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{},
	))
	return tp.Shutdown, nil
}
