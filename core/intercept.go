package core

import (
	"fmt"
	"math"
)

// RayEllipsoidIntercept is the first forward intersection of a ray with an
// ellipsoid, if there is one.
type RayEllipsoidIntercept struct {
	ray       Ray
	ellipsoid Ellipsoid
	found     bool
	point     Vector3
	t         float64
}

// NewRayEllipsoidIntercept intersects r with e. A ray whose vertex lies on the
// surface intercepts at the vertex; a tangent ray intercepts at the tangency point.
func NewRayEllipsoidIntercept(r Ray, e Ellipsoid) RayEllipsoidIntercept {
	res := RayEllipsoidIntercept{ray: r, ellipsoid: e}

	t1, t2, ok := unitSphereRoots(e.ToCanonical(r.Vertex()), e.ToCanonical(r.Direction()))
	if !ok || t2 < 0 {
		return res
	}
	t := t1
	if t < 0 {
		t = t2
	}
	res.found = true
	res.t = t
	res.point = r.At(t)
	return res
}

// Found reports whether the ray hits the ellipsoid.
func (x RayEllipsoidIntercept) Found() bool { return x.found }

// Intercept returns the intercept point, or ErrPointNotFound.
func (x RayEllipsoidIntercept) Intercept() (Vector3, error) {
	if !x.found {
		return Vector3{}, fmt.Errorf("%w: ray %s misses %s", ErrPointNotFound, x.ray, x.ellipsoid.radiiString())
	}
	return x.point, nil
}

// Lookup returns the intercept point and whether it exists.
func (x RayEllipsoidIntercept) Lookup() (Vector3, bool) { return x.point, x.found }

// Range returns the distance from the ray vertex to the intercept.
func (x RayEllipsoidIntercept) Range() (float64, bool) { return x.t, x.found }

// Ray returns the input ray.
func (x RayEllipsoidIntercept) Ray() Ray { return x.ray }

// Ellipsoid returns the input ellipsoid.
func (x RayEllipsoidIntercept) Ellipsoid() Ellipsoid { return x.ellipsoid }

// unitSphereRoots solves |v + t·d|² = 1 for t and returns the roots in
// ascending order, or ok=false when the line misses the sphere.
func unitSphereRoots(v, d Vector3) (t1, t2 float64, ok bool) {
	dd := d.Dot(d)
	if dd == 0 {
		return 0, 0, false
	}
	// Closest approach to the center decides hit, tangency or miss without
	// forming the cancellation-prone discriminant b² - ac.
	tc := -v.Dot(d) / dd
	closest := v.Add(d.Scale(tc))
	cc := closest.Dot(closest)
	if cc > 1 {
		return 0, 0, false
	}
	h := math.Sqrt((1 - cc) / dd)

	// The larger-magnitude root has no cancellation; the other follows from
	// the product of roots, (|v|²-1)/|d|², which is exactly 0 on the surface.
	far := tc + math.Copysign(h, tc)
	if far == 0 {
		return 0, 0, true
	}
	near := ((v.Dot(v) - 1) / dd) / far
	if near > far {
		near, far = far, near
	}
	return near, far, true
}

func (e Ellipsoid) radiiString() string {
	a, b, c := e.axes()
	return fmt.Sprintf("ellipsoid(%g, %g, %g)", a, b, c)
}
