package core

import (
	"fmt"
	"math"
)

// LineOfSight reports whether the straight segment between p1 and p2 stays
// clear of the ellipsoid. Segments that graze the surface are blocked.
func (e Ellipsoid) LineOfSight(p1, p2 Vector3) bool {
	// Work in the canonical frame, where the ellipsoid is the unit sphere and
	// the segment is still a segment.
	c1, c2 := e.ToCanonical(p1), e.ToCanonical(p2)
	v := c2.Sub(c1)
	a := v.Dot(v)
	if a == 0 {
		// Degenerate case: same point. Outside is visible, inside is blocked.
		return c1.Dot(c1) > 1
	}

	// t* minimises |c1 + t v|^2 over t ∈ [0, 1].
	t := -c1.Dot(v) / a
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	closest := c1.Add(v.Scale(t))
	return closest.Dot(closest) > 1
}

// ElevationDegrees returns the elevation of target above the local horizon
// of observer, in degrees. The horizon is the plane normal to the ellipsoid
// at the surface point nearest the observer, so for points on the surface
// this is the geodetic elevation. 0° = horizon, 90° = zenith.
func (e Ellipsoid) ElevationDegrees(observer, target Vector3) (float64, error) {
	v := target.Sub(observer)
	if v.IsZero() {
		return 90, nil
	}

	np, err := NewEllipsoidPointNearPoint(e, observer)
	if err != nil {
		return 0, fmt.Errorf("observer zenith: %w", err)
	}
	zenith, err := e.Normal(np.NearPoint())
	if err != nil {
		return 0, fmt.Errorf("observer zenith: %w", err)
	}

	// Elevation is measured from local horizon (90° − zenith angle).
	return 90.0 - v.Sep(zenith)*180.0/math.Pi, nil
}
