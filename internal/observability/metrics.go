package observability

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

// GeometryCollector bundles Prometheus metrics for the geometry service and
// provides helpers to wire them into gRPC servers and HTTP handlers.
type GeometryCollector struct {
	gatherer prometheus.Gatherer

	RPCRequests  *prometheus.CounterVec
	RPCDurations *prometheus.HistogramVec

	Solves           *prometheus.CounterVec
	SolverIterations *prometheus.HistogramVec

	KernelPoolVariables prometheus.Gauge
}

// NewGeometryCollector registers geometry metrics against the provided
// registerer, defaulting to the global Prometheus registry when nil.
func NewGeometryCollector(reg prometheus.Registerer) (*GeometryCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	requests, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "geometry_rpc_requests_total",
		Help: "Total number of handled geometry RPCs, labeled by service, method, and gRPC status code.",
	}, []string{"service", "method", "code"}), "geometry_rpc_requests_total")
	if err != nil {
		return nil, err
	}

	durations, err := register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "geometry_rpc_duration_seconds",
		Help:    "Geometry RPC latency in seconds.",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	}, []string{"service", "method"}), "geometry_rpc_duration_seconds")
	if err != nil {
		return nil, err
	}

	solves, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "geometry_solves_total",
		Help: "Geometry solver invocations, labeled by solver and outcome.",
	}, []string{"solver", "outcome"}), "geometry_solves_total")
	if err != nil {
		return nil, err
	}

	iterations, err := register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "geometry_solver_iterations",
		Help:    "Root-finding iterations used by iterative geometry solvers.",
		Buckets: []float64{0, 1, 2, 4, 8, 16, 32, 64, 128, 256},
	}, []string{"solver"}), "geometry_solver_iterations")
	if err != nil {
		return nil, err
	}

	variables, err := register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "kernel_pool_variables",
		Help: "Current number of variables in the kernel pool.",
	}), "kernel_pool_variables")
	if err != nil {
		return nil, err
	}

	return &GeometryCollector{
		gatherer:            gatherer,
		RPCRequests:         requests,
		RPCDurations:        durations,
		Solves:              solves,
		SolverIterations:    iterations,
		KernelPoolVariables: variables,
	}, nil
}

// UnaryServerInterceptor records request counts and durations for unary RPCs.
func (c *GeometryCollector) UnaryServerInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		if c == nil {
			return resp, err
		}

		fullMethod := ""
		if info != nil {
			fullMethod = info.FullMethod
		}
		service, method := SplitMethod(fullMethod)
		code := status.Code(err).String()

		c.RPCRequests.WithLabelValues(service, method, code).Inc()
		c.RPCDurations.WithLabelValues(service, method).Observe(time.Since(start).Seconds())
		return resp, err
	}
}

// Handler exposes a ready-to-use /metrics handler.
func (c *GeometryCollector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetKernelPoolVariables updates the kernel pool size gauge.
func (c *GeometryCollector) SetKernelPoolVariables(n int) {
	if c == nil {
		return
	}
	c.KernelPoolVariables.Set(float64(n))
}

// SplitMethod parses a fully-qualified gRPC method name into service and method
// components. It tolerates empty strings and partial paths, returning
// "unknown"/"unknown" when parsing fails.
func SplitMethod(fullMethod string) (string, string) {
	fullMethod = strings.TrimPrefix(fullMethod, "/")
	parts := strings.Split(fullMethod, "/")
	if len(parts) < 2 {
		return "unknown", "unknown"
	}
	service := parts[len(parts)-2]
	method := parts[len(parts)-1]
	if dot := strings.LastIndex(service, "."); dot >= 0 && dot+1 < len(service) {
		service = service[dot+1:]
	}
	if service == "" {
		service = "unknown"
	}
	if method == "" {
		method = "unknown"
	}
	return service, method
}

// register adds c to reg, returning the collector already registered under
// the same descriptor when there is one of the same type.
func register[C prometheus.Collector](reg prometheus.Registerer, c C, name string) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
			return c, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return c, err
	}
	return c, nil
}
