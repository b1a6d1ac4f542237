package geomrpc

import (
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/signalsfoundry/surfacegeom/core"
	"github.com/signalsfoundry/surfacegeom/fov"
	"github.com/signalsfoundry/surfacegeom/kernelpool"
	"github.com/signalsfoundry/surfacegeom/orbit"
	"github.com/signalsfoundry/surfacegeom/units"
)

// ToStatusError maps geometry errors onto gRPC status codes.
func ToStatusError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	switch {
	case errors.Is(err, fov.ErrFrameMissing),
		errors.Is(err, fov.ErrDataUnavailable),
		errors.Is(err, kernelpool.ErrVariableNotFound):
		return status.Error(codes.NotFound, err.Error())

	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, core.ErrZeroVector),
		errors.Is(err, core.ErrNonFinite),
		errors.Is(err, core.ErrInvalidAxis),
		errors.Is(err, core.ErrIndexOutOfRange),
		errors.Is(err, core.ErrViewpointInside),
		errors.Is(err, units.ErrUnrecognizedUnit),
		errors.Is(err, units.ErrIncompatibleUnits),
		errors.Is(err, fov.ErrInvalidShape),
		errors.Is(err, fov.ErrInvalidBoundary),
		errors.Is(err, fov.ErrInvalidAngle),
		errors.Is(err, orbit.ErrUnknownBody):
		return status.Error(codes.InvalidArgument, err.Error())

	case errors.Is(err, core.ErrPointNotFound):
		return status.Error(codes.FailedPrecondition, err.Error())

	default:
		return status.Error(codes.Internal, err.Error())
	}
}
