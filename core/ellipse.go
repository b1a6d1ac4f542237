package core

import (
	"fmt"
	"math"
)

// Ellipse is a planar ellipse in 3-space given by its center and orthogonal
// semi-axis vectors, the semi-major first.
type Ellipse struct {
	center    Vector3
	semiMajor Vector3
	semiMinor Vector3
}

// NewEllipse builds the ellipse { center + cos(t)·v1 + sin(t)·v2 }. The
// generating vectors need not be orthogonal or ordered; degenerate inputs
// give a degenerate ellipse.
func NewEllipse(center, v1, v2 Vector3) Ellipse {
	major, minor, _, _ := semiAxes(v1, v2)
	return Ellipse{center: center, semiMajor: major, semiMinor: minor}
}

// Center returns the ellipse center.
func (e Ellipse) Center() Vector3 { return e.center }

// SemiMajor returns the semi-major axis vector.
func (e Ellipse) SemiMajor() Vector3 { return e.semiMajor }

// SemiMinor returns the semi-minor axis vector.
func (e Ellipse) SemiMinor() Vector3 { return e.semiMinor }

// PointAt returns center + cos(t)·semiMajor + sin(t)·semiMinor.
func (e Ellipse) PointAt(t float64) Vector3 {
	s, c := math.Sincos(t)
	return e.center.Add(LCom(c, e.semiMajor, s, e.semiMinor))
}

func (e Ellipse) String() string {
	return fmt.Sprintf("Ellipse{center: %s, semiMajor: %s, semiMinor: %s}", e.center, e.semiMajor, e.semiMinor)
}

// semiAxes converts the generating vectors of an ellipse into orthogonal
// semi-axes. It returns major = c·v1 + s·v2 and minor = -s·v1 + c·v2 together
// with the (c, s) pair so callers can apply the same combination to other
// vectors.
func semiAxes(v1, v2 Vector3) (major, minor Vector3, c, s float64) {
	// Work with scaled copies so the dot products cannot overflow.
	scale := math.Max(v1.Norm(), v2.Norm())
	if scale == 0 {
		return Vector3{}, Vector3{}, 1, 0
	}
	u1, u2 := v1.Scale(1/scale), v2.Scale(1/scale)
	a, b, d := u1.Dot(u1), u1.Dot(u2), u2.Dot(u2)

	// |c·u1 + s·u2|² is maximised at twice the angle atan2(2b, a-d).
	theta := 0.5 * math.Atan2(2*b, a-d)
	s, c = math.Sincos(theta)
	major = LCom(c, v1, s, v2)
	minor = LCom(-s, v1, c, v2)
	if minor.Norm() > major.Norm() {
		// Rounding on near-circular inputs can invert the order.
		major, minor = minor, major.Negate()
		c, s = -s, c
	}
	return major, minor, c, s
}
