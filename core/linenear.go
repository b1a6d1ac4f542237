package core

import (
	"fmt"
	"math"
)

// EllipsoidLineNearPoint is the point of an ellipsoid's surface closest to an
// infinite line, and the distance between them.
type EllipsoidLineNearPoint struct {
	ellipsoid  Ellipsoid
	line       Line
	near       Vector3
	distance   float64
	intersects bool
	iterations int
}

// NewEllipsoidLineNearPoint finds the surface point of e closest to l.
//
// If the line meets the ellipsoid the result is the first intersection in the
// line's direction from its point (or, failing that, in the opposite
// direction) and the distance is zero.
//
// Otherwise the closest point lies on the set of surface points whose normal is
// orthogonal to the line, an ellipse through the center. Projecting along
// the line onto the plane orthogonal to it turns that ellipse into a planar
// ellipse and the line into a single point, the projection of the line's
// closest approach to the center; the planar near point is then solved as for
// EllipsoidPointNearPoint and lifted back onto the surface.
func NewEllipsoidLineNearPoint(e Ellipsoid, l Line) (EllipsoidLineNearPoint, error) {
	res := EllipsoidLineNearPoint{ellipsoid: e, line: l}

	if p, ok := NewRayEllipsoidIntercept(l.Ray(), e).Lookup(); ok {
		res.near, res.intersects = p, true
		return res, nil
	}
	back, err := NewRay(l.Point(), l.Direction().Negate())
	if err != nil {
		return res, err
	}
	if p, ok := NewRayEllipsoidIntercept(back, e).Lookup(); ok {
		res.near, res.intersects = p, true
		return res, nil
	}

	d := l.Direction()
	project := func(v Vector3) Vector3 { return v.Perp(d) }

	// Generators of the ellipse where the surface normal is orthogonal to d.
	e1, e2, err := perpBasis(e.ToCanonical(d))
	if err != nil {
		return res, fmt.Errorf("line direction: %w", err)
	}
	g1, g2 := e.FromCanonical(e1), e.FromCanonical(e2)

	// Semi-axes of the projected ellipse and the matching surface points.
	t1, t2, c, s := semiAxes(project(g1), project(g2))
	u1, u2 := LCom(c, g1, s, g2), LCom(-s, g1, c, g2)
	a, b := t1.Norm(), t2.Norm()
	if b == 0 {
		return res, fmt.Errorf("%w: projected limb of %s is degenerate", ErrNoConvergence, e.radiiString())
	}

	q := project(l.Point())
	qa, qb := q.Dot(t1)/a, q.Dot(t2)/b

	x0, x1, iters, err := nearPointEllipse(1, b/a, math.Abs(qa)/a, math.Abs(qb)/a)
	if err != nil {
		return res, fmt.Errorf("line near point of %s: %w", e.radiiString(), err)
	}
	cosT, sinT := x0, x1*a/b
	if qa < 0 {
		cosT = -cosT
	}
	if qb < 0 {
		sinT = -sinT
	}

	res.near = LCom(cosT, u1, sinT, u2)
	_, res.distance = l.NearPoint(res.near)
	res.iterations = iters
	return res, nil
}

// NearPoint returns the surface point closest to the line.
func (n EllipsoidLineNearPoint) NearPoint() Vector3 { return n.near }

// Distance returns the minimum distance between line and surface, never negative.
func (n EllipsoidLineNearPoint) Distance() float64 { return n.distance }

// Intersects reports whether the line meets the ellipsoid.
func (n EllipsoidLineNearPoint) Intersects() bool { return n.intersects }

// Iterations returns the number of root-finding iterations used.
func (n EllipsoidLineNearPoint) Iterations() int { return n.iterations }

// Line returns the input line.
func (n EllipsoidLineNearPoint) Line() Line { return n.line }

// Ellipsoid returns the input ellipsoid.
func (n EllipsoidLineNearPoint) Ellipsoid() Ellipsoid { return n.ellipsoid }
