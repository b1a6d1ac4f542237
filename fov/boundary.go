package fov

import (
	"fmt"
	"math"

	"github.com/signalsfoundry/surfacegeom/core"
	"github.com/signalsfoundry/surfacegeom/units"
)

// cornersBoundary reads explicit boundary vectors, falling back to the
// legacy FOV_BOUNDARY keyword.
func cornersBoundary(pool Pool, k keys, shape Shape) ([]core.Vector3, error) {
	if shape == ShapePoint {
		return nil, nil
	}
	values, err := pool.Doubles(k.name("FOV_BOUNDARY_CORNERS"))
	if err != nil {
		legacy, legacyErr := pool.Doubles(k.name("FOV_BOUNDARY"))
		if legacyErr != nil {
			return nil, fmt.Errorf("%w: %w", ErrDataUnavailable, err)
		}
		values = legacy
	}
	if len(values)%3 != 0 {
		return nil, fmt.Errorf("%w: %d boundary values is not a multiple of 3", ErrInvalidBoundary, len(values))
	}
	out := make([]core.Vector3, 0, len(values)/3)
	for i := 0; i < len(values); i += 3 {
		out = append(out, core.Vector3{X: values[i], Y: values[i+1], Z: values[i+2]})
	}
	return out, nil
}

// anglesBoundary derives boundary vectors from a reference vector and the
// half-angles measured from the boresight. With r the reference direction
// orthogonal to the boresight b and c = b × r, the rectangle corners are
// hat(b ± tan(ref)·r ± tan(cross)·c) ordered (+,+), (-,+), (-,-), (+,-).
func anglesBoundary(pool Pool, k keys, shape Shape, boresight core.Vector3) ([]core.Vector3, error) {
	switch shape {
	case ShapePoint:
		return nil, nil
	case ShapePolygon:
		return nil, fmt.Errorf("%w: %s cannot be specified by angles", ErrInvalidShape, shape)
	}

	b, err := boresight.Hat()
	if err != nil {
		return nil, fmt.Errorf("%w: boresight: %w", ErrInvalidBoundary, err)
	}
	ref, err := vectorValue(pool, k.name("FOV_REF_VECTOR"))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDataUnavailable, err)
	}
	r, err := ref.Perp(b).Hat()
	if err != nil {
		return nil, fmt.Errorf("%w: reference vector %s is parallel to the boresight", ErrInvalidBoundary, ref)
	}
	c := b.Cross(r)

	unitName, err := stringValue(pool, k.name("FOV_ANGLE_UNITS"))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDataUnavailable, err)
	}
	unit, err := units.ParseAngular(unitName)
	if err != nil {
		return nil, fmt.Errorf("%w: angle units: %w", ErrInvalidAngle, err)
	}

	halfAngle := func(suffix string) (float64, error) {
		v, err := scalarValue(pool, k.name(suffix))
		if err != nil {
			return 0, fmt.Errorf("%w: %w", ErrDataUnavailable, err)
		}
		rad, err := units.Convert(v, unit, units.Radians)
		if err != nil {
			return 0, fmt.Errorf("%w: %w", ErrInvalidAngle, err)
		}
		if !(rad >= 0 && rad < math.Pi/2) {
			return 0, fmt.Errorf("%w: %s = %g %s, must be in [0, 90) degrees", ErrInvalidAngle, suffix, v, unit)
		}
		return math.Tan(rad), nil
	}

	tanRef, err := halfAngle("FOV_REF_ANGLE")
	if err != nil {
		return nil, err
	}
	if shape == ShapeCircle {
		return hats(core.LCom(1, b, tanRef, r))
	}

	tanCross, err := halfAngle("FOV_CROSS_ANGLE")
	if err != nil {
		return nil, err
	}
	if shape == ShapeEllipse {
		return hats(core.LCom(1, b, tanRef, r), core.LCom(1, b, tanCross, c))
	}
	return hats(
		core.LCom3(1, b, tanRef, r, tanCross, c),
		core.LCom3(1, b, -tanRef, r, tanCross, c),
		core.LCom3(1, b, -tanRef, r, -tanCross, c),
		core.LCom3(1, b, tanRef, r, -tanCross, c),
	)
}

func hats(vs ...core.Vector3) ([]core.Vector3, error) {
	out := make([]core.Vector3, len(vs))
	for i, v := range vs {
		u, err := v.Hat()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidBoundary, err)
		}
		out[i] = u
	}
	return out, nil
}
