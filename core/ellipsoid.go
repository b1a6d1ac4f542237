package core

import (
	"fmt"
	"math"
)

// EarthRadiusKm is the mean Earth radius used by SphericalEarth.
const EarthRadiusKm = 6371.0

// Ellipsoid is a triaxial ellipsoid centred at the origin with semi-axes
// a, b, c along X, Y, Z. The zero value is the unit sphere.
type Ellipsoid struct {
	a, b, c float64
}

// UnitSphere returns the ellipsoid with radii (1, 1, 1).
func UnitSphere() Ellipsoid {
	return Ellipsoid{a: 1, b: 1, c: 1}
}

// NewEllipsoid builds an ellipsoid from three strictly positive, finite
// semi-axis lengths.
func NewEllipsoid(a, b, c float64) (Ellipsoid, error) {
	for i, r := range [3]float64{a, b, c} {
		if !(r > 0) || math.IsInf(r, 0) {
			return Ellipsoid{}, fmt.Errorf("%w: radius %d is %v, must be positive", ErrInvalidAxis, i+1, r)
		}
	}
	return Ellipsoid{a: a, b: b, c: c}, nil
}

// NewEllipsoidFromRadii is NewEllipsoid for a radii array.
func NewEllipsoidFromRadii(radii []float64) (Ellipsoid, error) {
	if len(radii) != 3 {
		return Ellipsoid{}, fmt.Errorf("%w: need 3 radii, got %d", ErrInvalidAxis, len(radii))
	}
	return NewEllipsoid(radii[0], radii[1], radii[2])
}

// WGS84Earth returns the WGS-84 reference ellipsoid in kilometres.
func WGS84Earth() Ellipsoid {
	const a, f = 6378.137, 1 / 298.257223563
	return Ellipsoid{a: a, b: a, c: a * (1 - f)}
}

// WGS72Earth returns the WGS-72 reference ellipsoid in kilometres.
func WGS72Earth() Ellipsoid {
	const a, f = 6378.135, 1 / 298.26
	return Ellipsoid{a: a, b: a, c: a * (1 - f)}
}

// SphericalEarth returns a sphere of radius EarthRadiusKm.
func SphericalEarth() Ellipsoid {
	return Ellipsoid{a: EarthRadiusKm, b: EarthRadiusKm, c: EarthRadiusKm}
}

func (e Ellipsoid) axes() (float64, float64, float64) {
	if e.a == 0 && e.b == 0 && e.c == 0 {
		return 1, 1, 1
	}
	return e.a, e.b, e.c
}

// Radii returns the semi-axis lengths.
func (e Ellipsoid) Radii() [3]float64 {
	a, b, c := e.axes()
	return [3]float64{a, b, c}
}

// MaxRadius returns the longest semi-axis.
func (e Ellipsoid) MaxRadius() float64 {
	a, b, c := e.axes()
	return math.Max(a, math.Max(b, c))
}

// MinRadius returns the shortest semi-axis.
func (e Ellipsoid) MinRadius() float64 {
	a, b, c := e.axes()
	return math.Min(a, math.Min(b, c))
}

// ToCanonical scales p by (1/a, 1/b, 1/c), mapping the ellipsoid onto the
// unit sphere. The map is linear, so rays and lines keep their parameterisation.
func (e Ellipsoid) ToCanonical(p Vector3) Vector3 {
	a, b, c := e.axes()
	return Vector3{X: p.X / a, Y: p.Y / b, Z: p.Z / c}
}

// FromCanonical is the inverse of ToCanonical.
func (e Ellipsoid) FromCanonical(u Vector3) Vector3 {
	a, b, c := e.axes()
	return Vector3{X: u.X * a, Y: u.Y * b, Z: u.Z * c}
}

// Level returns (x/a)² + (y/b)² + (z/c)²: below 1 inside, 1 on the surface.
func (e Ellipsoid) Level(p Vector3) float64 {
	u := e.ToCanonical(p)
	return u.Dot(u)
}

// Contains reports whether p is inside or on the surface.
func (e Ellipsoid) Contains(p Vector3) bool {
	return e.Level(p) <= 1
}

// Normal returns the outward unit normal at surface point p. Points off the
// surface get the normal of the level surface through them.
func (e Ellipsoid) Normal(p Vector3) (Vector3, error) {
	a, b, c := e.axes()
	// Scaling by the smallest radius keeps the gradient well conditioned.
	m := math.Min(a, math.Min(b, c))
	g := Vector3{
		X: p.X * (m / a) / a,
		Y: p.Y * (m / b) / b,
		Z: p.Z * (m / c) / c,
	}
	n, err := g.Hat()
	if err != nil {
		return Vector3{}, fmt.Errorf("normal at origin: %w", err)
	}
	return n, nil
}

// Limb returns the limb of the ellipsoid as seen from viewpoint, which must
// be outside the ellipsoid.
func (e Ellipsoid) Limb(viewpoint Vector3) (Ellipse, error) {
	v := e.ToCanonical(viewpoint)
	vv := v.Dot(v)
	if vv <= 1 {
		return Ellipse{}, fmt.Errorf("%w: %s", ErrViewpointInside, viewpoint)
	}
	// In the canonical frame the limb is a circle in the plane normal to v.
	center := v.Scale(1 / vv)
	radius := math.Sqrt(1 - 1/vv)
	e1, e2, err := perpBasis(v)
	if err != nil {
		return Ellipse{}, err
	}
	return NewEllipse(
		e.FromCanonical(center),
		e.FromCanonical(e1.Scale(radius)),
		e.FromCanonical(e2.Scale(radius)),
	), nil
}

func (e Ellipsoid) String() string {
	a, b, c := e.axes()
	return fmt.Sprintf("Ellipsoid Radii:\n(%24.16e, %24.16e, %24.16e)", a, b, c)
}
