package core

import (
	"fmt"
	"math"
)

const (
	// rootRelTol is the relative step size at which the Newton iteration is
	// considered converged.
	rootRelTol = 1e-14
	// maxRootIterations bounds a single root solve.
	maxRootIterations = 200
)

// decreasingRoot finds the root of f, which must be decreasing and convex on
// [lo, hi] with f(lo) >= 0 >= f(hi). Newton steps are taken from lo and
// replaced by bisection whenever one would leave the current bracket.
func decreasingRoot(f func(s float64) (val, slope float64), lo, hi float64) (float64, int, error) {
	s := lo
	for i := 1; i <= maxRootIterations; i++ {
		val, slope := f(s)
		if val == 0 {
			return s, i, nil
		}
		if val > 0 {
			lo = s
		} else {
			hi = s
		}

		next := math.NaN()
		if slope < 0 {
			next = s - val/slope
		}
		if !(next > lo && next < hi) {
			next = 0.5 * (lo + hi)
		}
		if math.Abs(next-s) <= rootRelTol*math.Max(1, math.Abs(s)) || next == lo || next == hi {
			return next, i, nil
		}
		s = next
	}
	return s, maxRootIterations, fmt.Errorf("%w: root bracket [%g, %g] after %d iterations", ErrNoConvergence, lo, hi, maxRootIterations)
}

// nearPointEllipse finds the point (x0, x1) of the ellipse with semi-axes
// e0 >= e1 > 0 nearest to (y0, y1), where y0, y1 >= 0. The solution lies in
// the first quadrant.
func nearPointEllipse(e0, e1, y0, y1 float64) (x0, x1 float64, iters int, err error) {
	if y1 > 0 {
		if y0 > 0 {
			z0, z1 := y0/e0, y1/e1
			g := z0*z0 + z1*z1 - 1
			if g == 0 {
				return y0, y1, 0, nil
			}
			r0 := (e0 / e1) * (e0 / e1)
			n0 := r0 * z0
			hi := 0.0
			if g > 0 {
				hi = math.Hypot(n0, z1) - 1
			}
			s, n, err := decreasingRoot(func(s float64) (float64, float64) {
				q0, q1 := n0/(s+r0), z1/(s+1)
				return q0*q0 + q1*q1 - 1, -2 * (q0*q0/(s+r0) + q1*q1/(s+1))
			}, z1-1, hi)
			if err != nil {
				return 0, 0, n, err
			}
			return r0 * y0 / (s + r0), y1 / (s + 1), n, nil
		}
		return 0, e1, 0, nil
	}

	// On the major axis the near point leaves the axis when the point is
	// close enough to the center.
	numer0, denom0 := e0*y0, e0*e0-e1*e1
	if numer0 < denom0 {
		xde0 := numer0 / denom0
		return e0 * xde0, e1 * math.Sqrt(1-xde0*xde0), 0, nil
	}
	return e0, 0, 0, nil
}

// nearPointEllipsoid finds the point of the ellipsoid with semi-axes
// e0 >= e1 >= e2 > 0 nearest to (y0, y1, y2), all coordinates non-negative.
func nearPointEllipsoid(e [3]float64, y [3]float64) (x [3]float64, iters int, err error) {
	e0, e1, e2 := e[0], e[1], e[2]
	y0, y1, y2 := y[0], y[1], y[2]

	if y2 > 0 {
		switch {
		case y1 > 0 && y0 > 0:
			z0, z1, z2 := y0/e0, y1/e1, y2/e2
			g := z0*z0 + z1*z1 + z2*z2 - 1
			if g == 0 {
				return y, 0, nil
			}
			r0 := (e0 / e2) * (e0 / e2)
			r1 := (e1 / e2) * (e1 / e2)
			n0, n1 := r0*z0, r1*z1
			hi := 0.0
			if g > 0 {
				hi = Vector3{X: n0, Y: n1, Z: z2}.Norm() - 1
			}
			s, n, err := decreasingRoot(func(s float64) (float64, float64) {
				q0, q1, q2 := n0/(s+r0), n1/(s+r1), z2/(s+1)
				val := q0*q0 + q1*q1 + q2*q2 - 1
				slope := -2 * (q0*q0/(s+r0) + q1*q1/(s+r1) + q2*q2/(s+1))
				return val, slope
			}, z2-1, hi)
			if err != nil {
				return x, n, err
			}
			return [3]float64{r0 * y0 / (s + r0), r1 * y1 / (s + r1), y2 / (s + 1)}, n, nil
		case y1 > 0:
			x1, x2, n, err := nearPointEllipse(e1, e2, y1, y2)
			return [3]float64{0, x1, x2}, n, err
		case y0 > 0:
			x0, x2, n, err := nearPointEllipse(e0, e2, y0, y2)
			return [3]float64{x0, 0, x2}, n, err
		default:
			return [3]float64{0, 0, e2}, 0, nil
		}
	}

	// y2 == 0: the near point may leave the plane z = 0 for points close to
	// the smallest axis.
	denom0, denom1 := e0*e0-e2*e2, e1*e1-e2*e2
	numer0, numer1 := e0*y0, e1*y1
	if numer0 < denom0 && numer1 < denom1 {
		xde0, xde1 := numer0/denom0, numer1/denom1
		discr := 1 - xde0*xde0 - xde1*xde1
		if discr > 0 {
			return [3]float64{e0 * xde0, e1 * xde1, e2 * math.Sqrt(discr)}, 0, nil
		}
	}
	x0, x1, n, err := nearPointEllipse(e0, e1, y0, y1)
	return [3]float64{x0, x1, 0}, n, err
}
