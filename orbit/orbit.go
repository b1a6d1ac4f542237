// Package orbit propagates two-line element sets with SGP4 and relates the
// resulting positions to a reference ellipsoid.
package orbit

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	satellite "github.com/joshuaferrara/go-satellite"

	"github.com/signalsfoundry/surfacegeom/core"
)

var (
	ErrPropagation = errors.New("orbit propagation failed")
	ErrUnknownBody = errors.New("unknown body")
)

// Gravity selects the SGP4 gravity model.
type Gravity int

const (
	GravityWGS72 Gravity = iota
	GravityWGS84
)

// equatorialRadius is the Earth radius in km of the gravity model's constants.
func (g Gravity) equatorialRadius() float64 {
	if g == GravityWGS84 {
		return core.WGS84Earth().MaxRadius()
	}
	return core.WGS72Earth().MaxRadius()
}

func (g Gravity) String() string {
	switch g {
	case GravityWGS72:
		return "wgs72"
	case GravityWGS84:
		return "wgs84"
	default:
		return fmt.Sprintf("Gravity(%d)", int(g))
	}
}

// Propagator evaluates a TLE with SGP4. Positions have one-second resolution.
type Propagator struct {
	sat     satellite.Satellite
	gravity Gravity
	catalog string
}

// NewPropagator parses a TLE. Malformed lines, non-numeric fields and element
// sets SGP4 cannot initialise fail with ErrPropagation.
func NewPropagator(line1, line2 string, g Gravity) (*Propagator, error) {
	line1, line2 = strings.TrimRight(line1, " \r\n"), strings.TrimRight(line2, " \r\n")
	if err := validateTLE(line1, line2); err != nil {
		return nil, err
	}
	// TLEToSat exits the process on a field it cannot convert.
	if err := checkTLEFields(line1, line2); err != nil {
		return nil, err
	}

	var sat satellite.Satellite
	switch g {
	case GravityWGS72:
		sat = satellite.TLEToSat(line1, line2, satellite.GravityWGS72)
	case GravityWGS84:
		sat = satellite.TLEToSat(line1, line2, satellite.GravityWGS84)
	default:
		return nil, fmt.Errorf("%w: unknown gravity model %v", ErrPropagation, g)
	}
	if sat.Error != 0 {
		return nil, fmt.Errorf("%w: satellite %s: sgp4 error %d: %s", ErrPropagation, strings.TrimSpace(line1[2:7]), sat.Error, sat.ErrorStr)
	}

	return &Propagator{
		sat:     sat,
		gravity: g,
		catalog: strings.TrimSpace(line1[2:7]),
	}, nil
}

// CatalogNumber returns the satellite catalog number from line 1.
func (p *Propagator) CatalogNumber() string { return p.catalog }

// Gravity returns the gravity model in use.
func (p *Propagator) Gravity() Gravity { return p.gravity }

// PositionECI returns the TEME position and velocity (km, km/s) at t. A
// position inside the gravity model's equatorial radius means the orbit has
// decayed and fails with ErrPropagation.
func (p *Propagator) PositionECI(t time.Time) (pos, vel core.Vector3, err error) {
	t = t.UTC()
	year, month, day := t.Date()
	hour, min, sec := t.Clock()

	eci, v := satellite.Propagate(p.sat, year, int(month), day, hour, min, sec)
	pos = core.Vector3{X: eci.X, Y: eci.Y, Z: eci.Z}
	vel = core.Vector3{X: v.X, Y: v.Y, Z: v.Z}
	if !pos.IsFinite() || !vel.IsFinite() || pos.IsZero() {
		return core.Vector3{}, core.Vector3{}, fmt.Errorf("%w: satellite %s at %s", ErrPropagation, p.catalog, t.Format(time.RFC3339))
	}
	if r := pos.Norm(); r < p.gravity.equatorialRadius() {
		return core.Vector3{}, core.Vector3{}, fmt.Errorf("%w: satellite %s decayed at %s (radius %.3f km)", ErrPropagation, p.catalog, t.Format(time.RFC3339), r)
	}
	return pos, vel, nil
}

// PositionECEF returns the Earth-fixed position in km at t.
func (p *Propagator) PositionECEF(t time.Time) (core.Vector3, error) {
	eci, _, err := p.PositionECI(t)
	if err != nil {
		return core.Vector3{}, err
	}
	t = t.UTC()
	year, month, day := t.Date()
	hour, min, sec := t.Clock()
	jd := satellite.JDay(year, int(month), day, hour, min, sec)
	gmst := satellite.ThetaG_JD(jd)
	ecef := satellite.ECIToECEF(satellite.Vector3{X: eci.X, Y: eci.Y, Z: eci.Z}, gmst)
	return core.Vector3{X: ecef.X, Y: ecef.Y, Z: ecef.Z}, nil
}

func validateTLE(line1, line2 string) error {
	const minLen = 69
	if len(line1) < minLen || len(line2) < minLen {
		return fmt.Errorf("%w: TLE lines must be %d characters, got %d and %d", ErrPropagation, minLen, len(line1), len(line2))
	}
	if !strings.HasPrefix(line1, "1 ") || !strings.HasPrefix(line2, "2 ") {
		return fmt.Errorf("%w: TLE lines must start with \"1 \" and \"2 \"", ErrPropagation)
	}
	if strings.TrimSpace(line1[2:7]) != strings.TrimSpace(line2[2:7]) {
		return fmt.Errorf("%w: catalog numbers differ: %q vs %q", ErrPropagation, line1[2:7], line2[2:7])
	}
	return nil
}

type tleField struct {
	name    string
	text    string
	integer bool
}

// tleFields returns the numeric columns of a TLE, reshaped the way the SGP4
// parser reads them. Implied decimal points and exponents are made explicit.
func tleFields(line1, line2 string) []tleField {
	squeeze := func(s string) string { return strings.Replace(s, " ", "", 2) }
	return []tleField{
		{name: "catalog number", text: strings.TrimSpace(line1[2:7]), integer: true},
		{name: "epoch year", text: line1[18:20], integer: true},
		{name: "epoch day", text: line1[20:32]},
		{name: "mean motion first derivative", text: squeeze(line1[33:43])},
		{name: "mean motion second derivative", text: squeeze(line1[44:45] + "." + line1[45:50] + "e" + line1[50:52])},
		{name: "bstar", text: squeeze(line1[53:54] + "." + line1[54:59] + "e" + line1[59:61])},
		{name: "inclination", text: squeeze(line2[8:16])},
		{name: "right ascension", text: squeeze(line2[17:25])},
		{name: "eccentricity", text: "." + line2[26:33]},
		{name: "argument of perigee", text: squeeze(line2[34:42])},
		{name: "mean anomaly", text: squeeze(line2[43:51])},
		{name: "mean motion", text: squeeze(line2[52:63])},
	}
}

func checkTLEFields(line1, line2 string) error {
	for _, f := range tleFields(line1, line2) {
		var err error
		if f.integer {
			_, err = strconv.ParseInt(f.text, 10, 0)
		} else {
			_, err = strconv.ParseFloat(f.text, 64)
		}
		if err != nil {
			return fmt.Errorf("%w: TLE %s %q is not numeric", ErrPropagation, f.name, f.text)
		}
	}
	return nil
}
