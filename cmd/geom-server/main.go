package main

import (
	"context"
	"errors"
	"flag"
	"net"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.opentelemetry.io/otel/attribute"
	"google.golang.org/grpc"

	"github.com/signalsfoundry/surfacegeom/internal/geomrpc"
	"github.com/signalsfoundry/surfacegeom/internal/logging"
	"github.com/signalsfoundry/surfacegeom/internal/observability"
	"github.com/signalsfoundry/surfacegeom/kernelpool"
)

// Config holds the server settings. Tracing starts from the GEOM_TRACING_*
// environment and is overridden by flags.
type Config struct {
	ListenAddress  string
	MetricsAddress string
	KernelsPath    string
	Tracing        observability.TracingConfig
}

func main() {
	log := logging.NewFromEnv()

	tracing, err := observability.TracingConfigFromEnv(os.LookupEnv)
	if err != nil {
		log.Error(context.Background(), "invalid tracing environment", logging.Err(err))
		os.Exit(2)
	}
	cfg := Config{Tracing: tracing}
	flag.StringVar(&cfg.ListenAddress, "grpc-addr", ":50061", "TCP address the geometry gRPC server listens on")
	flag.StringVar(&cfg.MetricsAddress, "metrics-addr", ":9091", "HTTP address for Prometheus /metrics (empty disables)")
	flag.StringVar(&cfg.KernelsPath, "kernels", "", "Path to a JSON kernel-pool file with instrument FOV definitions")
	flag.BoolVar(&cfg.Tracing.Enabled, "tracing", cfg.Tracing.Enabled, "export OpenTelemetry spans")
	flag.Var(&cfg.Tracing.Exporter, "tracing-exporter", "span exporter: stdout or otlp")
	flag.StringVar(&cfg.Tracing.Endpoint, "otlp-endpoint", cfg.Tracing.Endpoint, "OTLP gRPC collector address")
	flag.Float64Var(&cfg.Tracing.SampleRatio, "trace-sample-ratio", cfg.Tracing.SampleRatio, "fraction of root spans sampled, 0 to 1")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	lis, err := net.Listen("tcp", cfg.ListenAddress)
	if err != nil {
		log.Error(ctx, "failed to listen for gRPC", logging.String("addr", cfg.ListenAddress), logging.Err(err))
		os.Exit(1)
	}

	if err := run(ctx, cfg, log, lis); err != nil {
		log.Error(ctx, "geometry server exited", logging.Err(err))
		os.Exit(1)
	}
}

// run serves GeometryService on lis until ctx is cancelled. Spans are flushed
// before it returns.
func run(ctx context.Context, cfg Config, log logging.Logger, lis net.Listener) error {
	cfg.Tracing.Attributes = append(cfg.Tracing.Attributes,
		attribute.String("geometry.grpc_addr", lis.Addr().String()),
		attribute.String("geometry.kernels", cfg.KernelsPath),
		attribute.StringSlice("geometry.solvers", observability.Solvers()),
	)
	shutdownTracing, err := observability.InitTracing(ctx, cfg.Tracing, log)
	if err != nil {
		return err
	}
	defer observability.ShutdownWithTimeout(context.Background(), shutdownTracing, log)

	collector, err := observability.NewGeometryCollector(nil)
	if err != nil {
		return err
	}

	pool := kernelpool.New()
	unsubscribe := pool.Subscribe(func(kernelpool.Event) {
		collector.SetKernelPoolVariables(pool.Len())
	})
	defer unsubscribe()

	if err := loadKernels(ctx, log, pool, cfg.KernelsPath); err != nil {
		return err
	}

	var metricsSrv *http.Server
	if cfg.MetricsAddress != "" {
		metricsSrv = serveMetrics(cfg.MetricsAddress, collector, log)
	}

	server := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(
			geomrpc.RequestIDUnaryServerInterceptor(log),
			geomrpc.TracingUnaryServerInterceptor(),
			collector.UnaryServerInterceptor(),
		),
	)
	geomrpc.RegisterGeometryServiceServer(server, geomrpc.NewServer(pool, log, collector))

	serveErr := make(chan error, 1)
	log.Info(ctx, "starting geometry gRPC server", logging.String("addr", lis.Addr().String()))
	go func() {
		serveErr <- server.Serve(lis)
	}()

	select {
	case <-ctx.Done():
		log.Info(context.Background(), "shutting down geometry server")
		server.GracefulStop()
		err = nil
	case err = <-serveErr:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if metricsSrv != nil {
		_ = metricsSrv.Shutdown(shutdownCtx)
	}
	return err
}

func serveMetrics(addr string, collector *observability.GeometryCollector, log logging.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Warn(context.Background(), "metrics server exited", logging.Err(err))
		}
	}()

	log.Info(context.Background(), "serving Prometheus metrics", logging.String("addr", addr))
	return srv
}

func loadKernels(ctx context.Context, log logging.Logger, pool *kernelpool.Pool, path string) error {
	if path == "" {
		log.Info(ctx, "no kernel file configured; FOV lookups will report missing data")
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	names, err := pool.Load(f)
	if err != nil {
		return err
	}
	log.Info(ctx, "loaded kernel pool",
		logging.String("path", path),
		logging.Int("variables", len(names)),
	)
	return nil
}
