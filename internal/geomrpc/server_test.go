package geomrpc

import (
	"context"
	"math"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/signalsfoundry/surfacegeom/core"
	"github.com/signalsfoundry/surfacegeom/internal/logging"
	"github.com/signalsfoundry/surfacegeom/internal/observability"
	"github.com/signalsfoundry/surfacegeom/kernelpool"
)

const fovKernel = `{
	"INS-999003_FOV_FRAME": "999003_FRAME",
	"INS-999003_FOV_SHAPE": "RECTANGLE",
	"INS-999003_BORESIGHT": [0.0, 0.0, 1.0],
	"INS-999003_FOV_BOUNDARY_CORNERS": [
		 0.01,  0.02, 1.0,
		-0.01,  0.02, 1.0,
		-0.01, -0.02, 1.0,
		 0.01, -0.02, 1.0
	]
}`

type geomTestEnv struct {
	ctx       context.Context
	client    *Client
	collector *observability.GeometryCollector
}

func newGeomTestEnv(t *testing.T) *geomTestEnv {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)

	pool := kernelpool.New()
	if _, err := pool.Load(strings.NewReader(fovKernel)); err != nil {
		t.Fatalf("Load: %v", err)
	}

	collector, err := observability.NewGeometryCollector(prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("NewGeometryCollector: %v", err)
	}

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(
		RequestIDUnaryServerInterceptor(logging.Noop()),
		TracingUnaryServerInterceptor(),
		collector.UnaryServerInterceptor(),
	))
	RegisterGeometryServiceServer(srv, NewServer(pool, logging.Noop(), collector))

	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Serve(lis) }()
	t.Cleanup(func() {
		srv.Stop()
		<-serveErr
	})

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("grpc.NewClient: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	return &geomTestEnv{ctx: ctx, client: NewClient(conn), collector: collector}
}

func mustStruct(t *testing.T, fields map[string]interface{}) *structpb.Struct {
	t.Helper()
	s, err := structpb.NewStruct(fields)
	if err != nil {
		t.Fatalf("NewStruct: %v", err)
	}
	return s
}

func vectorOf(t *testing.T, resp *structpb.Struct, name string) core.Vector3 {
	t.Helper()
	v, err := VectorFromValue(resp.GetFields()[name])
	if err != nil {
		t.Fatalf("field %q: %v", name, err)
	}
	return v
}

func assertClose(t *testing.T, label string, got, want core.Vector3) {
	t.Helper()
	if !got.ApproxEqual(want, 1e-9, 1e-9) {
		t.Fatalf("%s = %v, want %v", label, got, want)
	}
}

func TestSurfaceInterceptRPC(t *testing.T) {
	env := newGeomTestEnv(t)

	resp, err := env.client.SurfaceIntercept(env.ctx, mustStruct(t, map[string]interface{}{
		"radii":     []interface{}{1, 1, 1},
		"vertex":    []interface{}{2, 0, 0},
		"direction": []interface{}{-1, 0, 0},
	}))
	if err != nil {
		t.Fatalf("SurfaceIntercept: %v", err)
	}
	if !resp.GetFields()["found"].GetBoolValue() {
		t.Fatalf("found = false, want true")
	}
	assertClose(t, "point", vectorOf(t, resp, "point"), core.Vector3{X: 1})
	if r := resp.GetFields()["range"].GetNumberValue(); math.Abs(r-1) > 1e-12 {
		t.Fatalf("range = %v, want 1", r)
	}

	miss, err := env.client.SurfaceIntercept(env.ctx, mustStruct(t, map[string]interface{}{
		"radii":     []interface{}{1, 1, 1},
		"vertex":    []interface{}{2, 0, 0},
		"direction": []interface{}{1, 0, 0},
	}))
	if err != nil {
		t.Fatalf("SurfaceIntercept miss: %v", err)
	}
	if miss.GetFields()["found"].GetBoolValue() {
		t.Fatalf("found = true for a ray pointing away")
	}
	if _, ok := miss.GetFields()["point"]; ok {
		t.Fatalf("miss response carries a point")
	}

	if got := testutil.ToFloat64(env.collector.Solves.WithLabelValues(observability.SolverIntercept, observability.OutcomeOK)); got != 1 {
		t.Fatalf("intercept ok solves = %v, want 1", got)
	}
	if got := testutil.ToFloat64(env.collector.Solves.WithLabelValues(observability.SolverIntercept, observability.OutcomeNotFound)); got != 1 {
		t.Fatalf("intercept not_found solves = %v, want 1", got)
	}
}

func TestNearPointRPC(t *testing.T) {
	env := newGeomTestEnv(t)

	resp, err := env.client.NearPoint(env.ctx, mustStruct(t, map[string]interface{}{
		"radii": []interface{}{1, 1, 1},
		"point": []interface{}{3, 4, 12},
	}))
	if err != nil {
		t.Fatalf("NearPoint: %v", err)
	}
	assertClose(t, "point", vectorOf(t, resp, "point"), core.Vector3{X: 3, Y: 4, Z: 12}.Scale(1.0/13))
	if d := resp.GetFields()["distance"].GetNumberValue(); math.Abs(d-12) > 1e-9 {
		t.Fatalf("distance = %v, want 12", d)
	}
	if resp.GetFields()["inside"].GetBoolValue() {
		t.Fatalf("inside = true for an exterior point")
	}
	if got := testutil.ToFloat64(env.collector.Solves.WithLabelValues(observability.SolverNearPoint, observability.OutcomeOK)); got != 1 {
		t.Fatalf("near point solves = %v, want 1", got)
	}
}

func TestNearPointRPCOnNamedBody(t *testing.T) {
	env := newGeomTestEnv(t)

	resp, err := env.client.NearPoint(env.ctx, mustStruct(t, map[string]interface{}{
		"body":  "wgs84",
		"point": []interface{}{7000, 0, 0},
	}))
	if err != nil {
		t.Fatalf("NearPoint: %v", err)
	}
	a := core.WGS84Earth().Radii()[0]
	assertClose(t, "point", vectorOf(t, resp, "point"), core.Vector3{X: a})
}

func TestLineNearPointRPC(t *testing.T) {
	env := newGeomTestEnv(t)

	resp, err := env.client.LineNearPoint(env.ctx, mustStruct(t, map[string]interface{}{
		"radii":     []interface{}{1, 1, 1},
		"point":     []interface{}{3, 4, 12},
		"direction": []interface{}{-4, 3, 0},
	}))
	if err != nil {
		t.Fatalf("LineNearPoint: %v", err)
	}
	assertClose(t, "point", vectorOf(t, resp, "point"), core.Vector3{X: 3, Y: 4, Z: 12}.Scale(1.0/13))
	if d := resp.GetFields()["distance"].GetNumberValue(); math.Abs(d-12) > 1e-9 {
		t.Fatalf("distance = %v, want 12", d)
	}
	if resp.GetFields()["intersects"].GetBoolValue() {
		t.Fatalf("intersects = true for a missing line")
	}
}

func TestGetFOVRPC(t *testing.T) {
	env := newGeomTestEnv(t)

	resp, err := env.client.GetFOV(env.ctx, mustStruct(t, map[string]interface{}{"instrument": -999003}))
	if err != nil {
		t.Fatalf("GetFOV: %v", err)
	}
	if got := resp.GetFields()["shape"].GetStringValue(); got != "RECTANGLE" {
		t.Fatalf("shape = %q", got)
	}
	if got := resp.GetFields()["frame"].GetStringValue(); got != "999003_FRAME" {
		t.Fatalf("frame = %q", got)
	}
	assertClose(t, "boresight", vectorOf(t, resp, "boresight"), core.ZAxis)

	boundary := resp.GetFields()["boundary"].GetListValue().GetValues()
	if len(boundary) != 4 {
		t.Fatalf("boundary has %d vectors, want 4", len(boundary))
	}
	first, err := VectorFromValue(boundary[0])
	if err != nil {
		t.Fatalf("boundary[0]: %v", err)
	}
	assertClose(t, "boundary[0]", first, core.Vector3{X: 0.01, Y: 0.02, Z: 1})
}

func TestConvertUnitsRPC(t *testing.T) {
	env := newGeomTestEnv(t)

	resp, err := env.client.ConvertUnits(env.ctx, mustStruct(t, map[string]interface{}{
		"value": 180,
		"from":  "DEGREES",
		"to":    "radians",
	}))
	if err != nil {
		t.Fatalf("ConvertUnits: %v", err)
	}
	if got := resp.GetFields()["value"].GetNumberValue(); math.Abs(got-math.Pi) > 1e-15 {
		t.Fatalf("value = %v, want pi", got)
	}
}

func TestLimbRPC(t *testing.T) {
	env := newGeomTestEnv(t)

	resp, err := env.client.Limb(env.ctx, mustStruct(t, map[string]interface{}{
		"radii":     []interface{}{1, 1, 1},
		"viewpoint": []interface{}{2, 0, 0},
	}))
	if err != nil {
		t.Fatalf("Limb: %v", err)
	}
	assertClose(t, "center", vectorOf(t, resp, "center"), core.Vector3{X: 0.5})
	for _, name := range []string{"semi_major", "semi_minor"} {
		if n := vectorOf(t, resp, name).Norm(); math.Abs(n-math.Sqrt(3)/2) > 1e-12 {
			t.Fatalf("|%s| = %v, want sqrt(3)/2", name, n)
		}
	}
}

func TestRPCErrorCodes(t *testing.T) {
	env := newGeomTestEnv(t)

	tests := []struct {
		name   string
		method string
		req    map[string]interface{}
		code   codes.Code
	}{
		{
			name:   "missing field",
			method: MethodNearPoint,
			req:    map[string]interface{}{"radii": []interface{}{1, 1, 1}},
			code:   codes.InvalidArgument,
		},
		{
			name:   "missing body",
			method: MethodNearPoint,
			req:    map[string]interface{}{"point": []interface{}{1, 2, 3}},
			code:   codes.InvalidArgument,
		},
		{
			name:   "short vector",
			method: MethodNearPoint,
			req:    map[string]interface{}{"radii": []interface{}{1, 1, 1}, "point": []interface{}{1, 2}},
			code:   codes.InvalidArgument,
		},
		{
			name:   "bad radii",
			method: MethodNearPoint,
			req:    map[string]interface{}{"radii": []interface{}{1, 0, 1}, "point": []interface{}{1, 2, 3}},
			code:   codes.InvalidArgument,
		},
		{
			name:   "unknown body",
			method: MethodLimb,
			req:    map[string]interface{}{"body": "mars", "viewpoint": []interface{}{1e4, 0, 0}},
			code:   codes.InvalidArgument,
		},
		{
			name:   "zero direction",
			method: MethodSurfaceIntercept,
			req: map[string]interface{}{
				"radii":     []interface{}{1, 1, 1},
				"vertex":    []interface{}{2, 0, 0},
				"direction": []interface{}{0, 0, 0},
			},
			code: codes.InvalidArgument,
		},
		{
			name:   "NaN direction",
			method: MethodSurfaceIntercept,
			req: map[string]interface{}{
				"radii":     []interface{}{1, 1, 1},
				"vertex":    []interface{}{5, 0, 0},
				"direction": []interface{}{math.NaN(), 0, 0},
			},
			code: codes.InvalidArgument,
		},
		{
			name:   "infinite line point",
			method: MethodLineNearPoint,
			req: map[string]interface{}{
				"radii":     []interface{}{1, 1, 1},
				"point":     []interface{}{math.Inf(1), 0, 0},
				"direction": []interface{}{0, 1, 0},
			},
			code: codes.InvalidArgument,
		},
		{
			name:   "viewpoint inside",
			method: MethodLimb,
			req:    map[string]interface{}{"radii": []interface{}{1, 1, 1}, "viewpoint": []interface{}{0.5, 0, 0}},
			code:   codes.InvalidArgument,
		},
		{
			name:   "unknown instrument",
			method: MethodGetFOV,
			req:    map[string]interface{}{"instrument": -1},
			code:   codes.NotFound,
		},
		{
			name:   "fractional instrument",
			method: MethodGetFOV,
			req:    map[string]interface{}{"instrument": 1.5},
			code:   codes.InvalidArgument,
		},
		{
			name:   "incompatible units",
			method: MethodConvertUnits,
			req:    map[string]interface{}{"value": 1, "from": "KM", "to": "DEGREES"},
			code:   codes.InvalidArgument,
		},
		{
			name:   "unknown unit",
			method: MethodConvertUnits,
			req:    map[string]interface{}{"value": 1, "from": "furlongs", "to": "KM"},
			code:   codes.InvalidArgument,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.client.Call(env.ctx, tc.method, tc.req)
			if code := status.Code(err); code != tc.code {
				t.Fatalf("%s code = %v, want %v (err %v)", tc.method, code, tc.code, err)
			}
		})
	}

	if got := testutil.ToFloat64(env.collector.RPCRequests.WithLabelValues("GeometryService", MethodGetFOV, "NotFound")); got != 1 {
		t.Fatalf("GetFOV NotFound requests = %v, want 1", got)
	}
}

func TestRequestIDRoundTrip(t *testing.T) {
	env := newGeomTestEnv(t)

	ctx := metadata.AppendToOutgoingContext(env.ctx, RequestIDMetadataKey, "req-42")
	var header metadata.MD
	_, err := env.client.Call(ctx, MethodConvertUnits, map[string]interface{}{
		"value": 1, "from": "KM", "to": "METERS",
	}, grpc.Header(&header))
	if err != nil {
		t.Fatalf("ConvertUnits: %v", err)
	}
	if got := header.Get(RequestIDMetadataKey); len(got) != 1 || got[0] != "req-42" {
		t.Fatalf("x-request-id header = %v, want [req-42]", got)
	}

	header = nil
	if _, err := env.client.Call(env.ctx, MethodConvertUnits, map[string]interface{}{
		"value": 1, "from": "KM", "to": "METERS",
	}, grpc.Header(&header)); err != nil {
		t.Fatalf("ConvertUnits: %v", err)
	}
	if got := header.Get(RequestIDMetadataKey); len(got) != 1 || got[0] == "" {
		t.Fatalf("expected a generated request id, got %v", got)
	}
}

func TestRequestIDInterceptorAttachesLogger(t *testing.T) {
	base := logging.Noop()
	interceptor := RequestIDUnaryServerInterceptor(base)
	info := &grpc.UnaryServerInfo{FullMethod: FullMethod(MethodLimb)}

	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs(RequestIDMetadataKey, "abc"))
	_, err := interceptor(ctx, nil, info, func(ctx context.Context, req interface{}) (interface{}, error) {
		if got := logging.RequestIDFromContext(ctx); got != "abc" {
			t.Fatalf("request id = %q, want abc", got)
		}
		if logging.FromContext(ctx, nil) == nil {
			t.Fatalf("no logger on context")
		}
		return nil, nil
	})
	if err != nil {
		t.Fatalf("interceptor: %v", err)
	}
}
