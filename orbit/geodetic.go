package orbit

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/signalsfoundry/surfacegeom/core"
)

// SubPoint is the surface point beneath a satellite.
type SubPoint struct {
	Time         time.Time
	Position     core.Vector3 // Earth-fixed, km
	Surface      core.Vector3 // nearest surface point, km
	AltitudeKm   float64      // negative below the surface
	LatitudeDeg  float64      // geodetic
	LongitudeDeg float64
}

// SubPoint propagates to t and projects the position onto body.
func (p *Propagator) SubPoint(t time.Time, body core.Ellipsoid) (SubPoint, error) {
	pos, err := p.PositionECEF(t)
	if err != nil {
		return SubPoint{}, err
	}
	return SubPointOf(t, pos, body)
}

// SubPointOf projects an Earth-fixed position onto body.
func SubPointOf(t time.Time, pos core.Vector3, body core.Ellipsoid) (SubPoint, error) {
	np, err := core.NewEllipsoidPointNearPoint(body, pos)
	if err != nil {
		return SubPoint{}, fmt.Errorf("sub-point: %w", err)
	}
	lat, lon, err := Geodetic(body, np.NearPoint())
	if err != nil {
		return SubPoint{}, fmt.Errorf("sub-point: %w", err)
	}
	alt := np.Distance()
	if np.Inside() {
		alt = -alt
	}
	return SubPoint{
		Time:         t,
		Position:     pos,
		Surface:      np.NearPoint(),
		AltitudeKm:   alt,
		LatitudeDeg:  lat,
		LongitudeDeg: lon,
	}, nil
}

// Geodetic returns the geodetic latitude and longitude in degrees of a
// surface point, taken from the outward normal there.
func Geodetic(body core.Ellipsoid, surface core.Vector3) (latDeg, lonDeg float64, err error) {
	n, err := body.Normal(surface)
	if err != nil {
		return 0, 0, err
	}
	lat := math.Asin(math.Max(-1, math.Min(1, n.Z)))
	lon := math.Atan2(n.Y, n.X)
	return lat * 180 / math.Pi, lon * 180 / math.Pi, nil
}

// GeodeticToECEF returns the Earth-fixed position of a point at the given
// geodetic latitude, longitude (degrees) and height above body (km).
func GeodeticToECEF(body core.Ellipsoid, latDeg, lonDeg, altKm float64) core.Vector3 {
	lat, lon := latDeg*math.Pi/180, lonDeg*math.Pi/180
	slat, clat := math.Sincos(lat)
	slon, clon := math.Sincos(lon)
	n := core.Vector3{X: clat * clon, Y: clat * slon, Z: slat}

	// The surface point with outward normal n is (a²nx, b²ny, c²nz) scaled
	// onto the ellipsoid.
	r := body.Radii()
	g := core.Vector3{X: r[0] * r[0] * n.X, Y: r[1] * r[1] * n.Y, Z: r[2] * r[2] * n.Z}
	k := 1 / math.Sqrt(g.Dot(n))
	return g.Scale(k).Add(n.Scale(altKm))
}

// Body resolves a reference body name to its ellipsoid and the matching
// SGP4 gravity model: wgs84, wgs72 or sphere.
func Body(name string) (core.Ellipsoid, Gravity, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "wgs84":
		return core.WGS84Earth(), GravityWGS84, nil
	case "wgs72":
		return core.WGS72Earth(), GravityWGS72, nil
	case "sphere":
		return core.SphericalEarth(), GravityWGS72, nil
	}
	return core.Ellipsoid{}, 0, fmt.Errorf("%w %q (want wgs84, wgs72 or sphere)", ErrUnknownBody, name)
}
