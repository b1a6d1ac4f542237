package observability

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/signalsfoundry/surfacegeom/internal/logging"
)

// ErrTracingConfig reports an unusable tracing setting.
var ErrTracingConfig = errors.New("invalid tracing config")

// Exporter names where spans are sent. It implements flag.Value.
type Exporter string

const (
	ExporterStdout Exporter = "stdout"
	ExporterOTLP   Exporter = "otlp"
)

// ParseExporter accepts stdout, otlp and the otlpgrpc alias, in any case.
func ParseExporter(s string) (Exporter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "stdout":
		return ExporterStdout, nil
	case "otlp", "otlpgrpc":
		return ExporterOTLP, nil
	default:
		return "", fmt.Errorf("%w: unsupported exporter %q", ErrTracingConfig, s)
	}
}

func (e Exporter) String() string { return string(e) }

// Set parses s into e.
func (e *Exporter) Set(s string) error {
	v, err := ParseExporter(s)
	if err != nil {
		return err
	}
	*e = v
	return nil
}

// TracingConfig governs span export for the geometry server.
type TracingConfig struct {
	Enabled     bool
	ServiceName string
	Exporter    Exporter
	// Endpoint and Insecure apply to the OTLP exporter only.
	Endpoint    string
	Insecure    bool
	SampleRatio float64

	// Attributes are appended to the trace resource after the service identity.
	Attributes []attribute.KeyValue
	// Writer receives stdout exporter output. Nil means os.Stdout.
	Writer io.Writer
}

// DefaultTracingConfig returns tracing switched off, with stdout export and
// full sampling once enabled.
func DefaultTracingConfig() TracingConfig {
	return TracingConfig{
		ServiceName: "geom-server",
		Exporter:    ExporterStdout,
		Endpoint:    "localhost:4317",
		Insecure:    true,
		SampleRatio: 1,
	}
}

// TracingConfigFromEnv overlays GEOM_TRACING_* and GEOM_OTLP_* variables on
// DefaultTracingConfig. Empty variables are ignored; unparsable ones are
// reported with ErrTracingConfig. Pass os.LookupEnv outside tests.
func TracingConfigFromEnv(lookup func(string) (string, bool)) (TracingConfig, error) {
	cfg := DefaultTracingConfig()
	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	var errs []error
	if v, ok := get("GEOM_TRACING_ENABLED"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: GEOM_TRACING_ENABLED=%q", ErrTracingConfig, v))
		} else {
			cfg.Enabled = b
		}
	}
	if v, ok := get("GEOM_TRACING_EXPORTER"); ok {
		if err := cfg.Exporter.Set(v); err != nil {
			errs = append(errs, fmt.Errorf("GEOM_TRACING_EXPORTER: %w", err))
		}
	}
	if v, ok := get("GEOM_TRACING_SERVICE_NAME"); ok {
		cfg.ServiceName = v
	}
	if v, ok := get("GEOM_TRACING_SAMPLE_RATIO"); ok {
		r, err := strconv.ParseFloat(v, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: GEOM_TRACING_SAMPLE_RATIO=%q", ErrTracingConfig, v))
		} else {
			cfg.SampleRatio = r
		}
	}
	if v, ok := get("GEOM_OTLP_ENDPOINT"); ok {
		cfg.Endpoint = v
	}
	if v, ok := get("GEOM_OTLP_INSECURE"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: GEOM_OTLP_INSECURE=%q", ErrTracingConfig, v))
		} else {
			cfg.Insecure = b
		}
	}

	if err := errors.Join(errs...); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// Validate checks the settings InitTracing depends on.
func (c TracingConfig) Validate() error {
	if _, err := ParseExporter(string(c.Exporter)); err != nil {
		return err
	}
	if strings.TrimSpace(c.ServiceName) == "" {
		return fmt.Errorf("%w: empty service name", ErrTracingConfig)
	}
	if math.IsNaN(c.SampleRatio) || c.SampleRatio < 0 || c.SampleRatio > 1 {
		return fmt.Errorf("%w: sample ratio %v outside [0, 1]", ErrTracingConfig, c.SampleRatio)
	}
	if c.Exporter == ExporterOTLP && c.Endpoint == "" {
		return fmt.Errorf("%w: otlp exporter needs an endpoint", ErrTracingConfig)
	}
	return nil
}

// InitTracing installs the global tracer provider and propagators described
// by cfg and returns the function that flushes and stops export. A disabled
// config installs a no-op provider.
func InitTracing(ctx context.Context, cfg TracingConfig, log logging.Logger) (func(context.Context) error, error) {
	if log == nil {
		log = logging.Noop()
	}
	propagator := propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{})

	if !cfg.Enabled {
		otel.SetTracerProvider(noop.NewTracerProvider())
		otel.SetTextMapPropagator(propagator)
		log.Debug(ctx, "tracing disabled")
		return func(context.Context) error { return nil }, nil
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	res, err := cfg.resource(ctx)
	if err != nil {
		return nil, err
	}
	exp, err := cfg.exporter(ctx)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRatio))),
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagator)

	log.Info(ctx, "tracing enabled",
		logging.String("service_name", cfg.ServiceName),
		logging.String("exporter", cfg.Exporter.String()),
		logging.Float64("sample_ratio", cfg.SampleRatio),
		logging.Int("resource_attributes", res.Len()),
	)
	return tp.Shutdown, nil
}

func (c TracingConfig) resource(ctx context.Context) (*resource.Resource, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(
			attribute.String("service.name", c.ServiceName),
			attribute.String("service.namespace", "surfacegeom"),
		),
		resource.WithAttributes(c.Attributes...),
		resource.WithHost(),
		resource.WithProcessRuntimeVersion(),
		resource.WithTelemetrySDK(),
	)
	if err != nil {
		return nil, fmt.Errorf("trace resource: %w", err)
	}
	return res, nil
}

func (c TracingConfig) exporter(ctx context.Context) (sdktrace.SpanExporter, error) {
	switch c.Exporter {
	case ExporterOTLP:
		opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(c.Endpoint)}
		if c.Insecure {
			opts = append(opts, otlptracegrpc.WithInsecure())
		}
		return otlptrace.New(ctx, otlptracegrpc.NewClient(opts...))
	default:
		w := c.Writer
		if w == nil {
			w = os.Stdout
		}
		return stdouttrace.New(stdouttrace.WithWriter(w), stdouttrace.WithoutTimestamps())
	}
}

// ShutdownWithTimeout runs shutdown with a five second budget and logs, rather
// than returns, its failure.
func ShutdownWithTimeout(ctx context.Context, shutdown func(context.Context) error, log logging.Logger) {
	if shutdown == nil {
		return
	}
	if log == nil {
		log = logging.Noop()
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		log.Warn(ctx, "tracing shutdown failed", logging.Err(err))
	}
}
