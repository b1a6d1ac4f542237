package geomrpc

import (
	"context"
	"fmt"
	"math"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/signalsfoundry/surfacegeom/core"
	"github.com/signalsfoundry/surfacegeom/fov"
	"github.com/signalsfoundry/surfacegeom/internal/logging"
	"github.com/signalsfoundry/surfacegeom/internal/observability"
	"github.com/signalsfoundry/surfacegeom/units"
)

// Server implements GeometryServiceServer on top of the core solvers and a
// kernel pool used for FOV lookups.
type Server struct {
	pool   fov.Pool
	log    logging.Logger
	solves observability.SolveRecorder
}

// NewServer builds a Server. A nil logger or recorder disables logging or
// solver metrics respectively.
func NewServer(pool fov.Pool, log logging.Logger, solves observability.SolveRecorder) *Server {
	if log == nil {
		log = logging.Noop()
	}
	if solves == nil {
		solves = observability.NopSolveRecorder{}
	}
	return &Server{pool: pool, log: log, solves: solves}
}

var _ GeometryServiceServer = (*Server)(nil)

// SurfaceIntercept: {radii|body, vertex, direction} -> {found, point, range}.
func (s *Server) SurfaceIntercept(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	e, err := ellipsoidField(req)
	if err != nil {
		return nil, ToStatusError(err)
	}
	vertex, err := vectorField(req, "vertex")
	if err != nil {
		return nil, ToStatusError(err)
	}
	dir, err := vectorField(req, "direction")
	if err != nil {
		return nil, ToStatusError(err)
	}
	ray, err := core.NewRay(vertex, dir)
	if err != nil {
		return nil, ToStatusError(err)
	}

	var x core.RayEllipsoidIntercept
	s.solve(ctx, observability.SolverIntercept, func() (string, int, error) {
		x = core.NewRayEllipsoidIntercept(ray, e)
		if !x.Found() {
			return observability.OutcomeNotFound, -1, nil
		}
		return observability.OutcomeOK, -1, nil
	})

	out := map[string]interface{}{"found": x.Found()}
	if p, ok := x.Lookup(); ok {
		t, _ := x.Range()
		out["point"] = vectorValue(p)
		out["range"] = t
	}
	return newResponse(out)
}

// NearPoint: {radii|body, point} -> {point, distance, inside, iterations}.
func (s *Server) NearPoint(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	e, err := ellipsoidField(req)
	if err != nil {
		return nil, ToStatusError(err)
	}
	p, err := vectorField(req, "point")
	if err != nil {
		return nil, ToStatusError(err)
	}

	var np core.EllipsoidPointNearPoint
	if err := s.solve(ctx, observability.SolverNearPoint, func() (string, int, error) {
		var err error
		np, err = core.NewEllipsoidPointNearPoint(e, p)
		return observability.OutcomeOK, np.Iterations(), err
	}); err != nil {
		return nil, ToStatusError(err)
	}

	return newResponse(map[string]interface{}{
		"point":      vectorValue(np.NearPoint()),
		"distance":   np.Distance(),
		"inside":     np.Inside(),
		"iterations": float64(np.Iterations()),
	})
}

// LineNearPoint: {radii|body, point, direction} -> {point, distance, intersects}.
func (s *Server) LineNearPoint(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	e, err := ellipsoidField(req)
	if err != nil {
		return nil, ToStatusError(err)
	}
	p, err := vectorField(req, "point")
	if err != nil {
		return nil, ToStatusError(err)
	}
	dir, err := vectorField(req, "direction")
	if err != nil {
		return nil, ToStatusError(err)
	}
	line, err := core.NewLine(p, dir)
	if err != nil {
		return nil, ToStatusError(err)
	}

	var ln core.EllipsoidLineNearPoint
	if err := s.solve(ctx, observability.SolverLineNearPoint, func() (string, int, error) {
		var err error
		ln, err = core.NewEllipsoidLineNearPoint(e, line)
		return observability.OutcomeOK, ln.Iterations(), err
	}); err != nil {
		return nil, ToStatusError(err)
	}

	return newResponse(map[string]interface{}{
		"point":      vectorValue(ln.NearPoint()),
		"distance":   ln.Distance(),
		"intersects": ln.Intersects(),
	})
}

// GetFOV: {instrument} -> {instrument, shape, frame, boresight, boundary}.
func (s *Server) GetFOV(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	raw, err := numberField(req, "instrument")
	if err != nil {
		return nil, ToStatusError(err)
	}
	if raw != math.Trunc(raw) || math.Abs(raw) > math.MaxInt32 {
		return nil, ToStatusError(fmt.Errorf("%w: instrument %v is not an integer ID", ErrInvalidRequest, raw))
	}
	if s.pool == nil {
		return nil, ToStatusError(fmt.Errorf("%w: no kernel pool configured", fov.ErrDataUnavailable))
	}

	var f fov.FOV
	if err := s.solve(ctx, observability.SolverFOV, func() (string, int, error) {
		var err error
		f, err = fov.New(s.pool, int(raw))
		return observability.OutcomeOK, -1, err
	}); err != nil {
		return nil, ToStatusError(err)
	}

	return newResponse(map[string]interface{}{
		"instrument": f.Instrument().String(),
		"shape":      string(f.Shape()),
		"frame":      f.ReferenceFrame().Name(),
		"boresight":  vectorValue(f.Boresight()),
		"boundary":   vectorsValue(f.Boundary()),
	})
}

// ConvertUnits: {value, from, to} -> {value}.
func (s *Server) ConvertUnits(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	value, err := numberField(req, "value")
	if err != nil {
		return nil, ToStatusError(err)
	}
	from, err := stringField(req, "from")
	if err != nil {
		return nil, ToStatusError(err)
	}
	to, err := stringField(req, "to")
	if err != nil {
		return nil, ToStatusError(err)
	}
	converted, err := units.ConvertNames(value, from, to)
	if err != nil {
		return nil, ToStatusError(err)
	}
	return newResponse(map[string]interface{}{"value": converted})
}

// Limb: {radii|body, viewpoint} -> {center, semi_major, semi_minor}.
func (s *Server) Limb(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	e, err := ellipsoidField(req)
	if err != nil {
		return nil, ToStatusError(err)
	}
	vp, err := vectorField(req, "viewpoint")
	if err != nil {
		return nil, ToStatusError(err)
	}

	var limb core.Ellipse
	if err := s.solve(ctx, observability.SolverLimb, func() (string, int, error) {
		var err error
		limb, err = e.Limb(vp)
		return observability.OutcomeOK, -1, err
	}); err != nil {
		return nil, ToStatusError(err)
	}

	return newResponse(map[string]interface{}{
		"center":     vectorValue(limb.Center()),
		"semi_major": vectorValue(limb.SemiMajor()),
		"semi_minor": vectorValue(limb.SemiMinor()),
	})
}

// solve runs fn inside a child span and records its outcome. A non-nil error
// overrides the outcome fn reports.
func (s *Server) solve(ctx context.Context, solver string, fn func() (outcome string, iterations int, err error)) error {
	ctx, span := StartChildSpan(ctx, "geometry."+solver, attribute.String("solver", solver))
	defer span.End()

	outcome, iterations, err := fn()
	if err != nil {
		outcome = observability.OutcomeError
		iterations = -1
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logging.FromContext(ctx, s.log).Warn(ctx, "geometry solve failed",
			logging.String("solver", solver),
			logging.Err(err),
		)
	}
	span.SetAttributes(attribute.String("outcome", outcome))
	s.solves.ObserveSolve(solver, outcome, iterations)
	return err
}
