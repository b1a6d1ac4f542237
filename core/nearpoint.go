package core

import (
	"fmt"
	"math"
	"sort"
)

// EllipsoidPointNearPoint is the point of an ellipsoid's surface nearest to a
// given point, together with the distance between them.
//
// Distance is unsigned for interior and exterior points alike; Inside
// reports which side of the surface the point is on.
type EllipsoidPointNearPoint struct {
	ellipsoid  Ellipsoid
	point      Vector3
	near       Vector3
	distance   float64
	inside     bool
	iterations int
}

// NewEllipsoidPointNearPoint finds the surface point of e nearest to p.
//
// When p is the center, every point at the shortest semi-axis is nearest;
// the positive end of the shortest axis is returned, ties going to X, then Y.
func NewEllipsoidPointNearPoint(e Ellipsoid, p Vector3) (EllipsoidPointNearPoint, error) {
	radii := e.Radii()
	coords := p.Array()

	// Order the axes longest first. The sort is stable so equal radii keep
	// X, Y, Z order.
	order := []int{0, 1, 2}
	sort.SliceStable(order, func(i, j int) bool { return radii[order[i]] > radii[order[j]] })

	// Normalise by the longest radius to keep intermediate values near 1.
	scale := radii[order[0]]
	var es, ys [3]float64
	for k, axis := range order {
		es[k] = radii[axis] / scale
		ys[k] = math.Abs(coords[axis]) / scale
	}

	xs, iters, err := nearPointEllipsoid(es, ys)
	if err != nil {
		return EllipsoidPointNearPoint{}, fmt.Errorf("near point of %s to %s: %w", e.radiiString(), p, err)
	}

	var near [3]float64
	for k, axis := range order {
		near[axis] = xs[k] * scale
		if coords[axis] < 0 {
			near[axis] = -near[axis]
		}
	}
	nearVec := Vector3{X: near[0], Y: near[1], Z: near[2]}

	return EllipsoidPointNearPoint{
		ellipsoid:  e,
		point:      p,
		near:       nearVec,
		distance:   nearVec.DistanceTo(p),
		inside:     e.Level(p) < 1,
		iterations: iters,
	}, nil
}

// NearPoint returns the nearest surface point.
func (n EllipsoidPointNearPoint) NearPoint() Vector3 { return n.near }

// Distance returns |point - nearPoint|, never negative.
func (n EllipsoidPointNearPoint) Distance() float64 { return n.distance }

// Inside reports whether the input point is strictly inside the ellipsoid.
func (n EllipsoidPointNearPoint) Inside() bool { return n.inside }

// Iterations returns the number of root-finding iterations used.
func (n EllipsoidPointNearPoint) Iterations() int { return n.iterations }

// Point returns the input point.
func (n EllipsoidPointNearPoint) Point() Vector3 { return n.point }

// Ellipsoid returns the input ellipsoid.
func (n EllipsoidPointNearPoint) Ellipsoid() Ellipsoid { return n.ellipsoid }
