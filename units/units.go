// Package units defines the angular and distance unit vocabularies used by the
// geometry packages, together with checked conversion between units of the
// same kind.
package units

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	// ErrUnrecognizedUnit is returned when a unit name is not in any vocabulary.
	ErrUnrecognizedUnit = errors.New("unrecognized unit")
	// ErrIncompatibleUnits is returned when an operation mixes angular and
	// distance units.
	ErrIncompatibleUnits = errors.New("incompatible units")
)

// Kind partitions units into angular and distance vocabularies.
type Kind int

const (
	KindAngular Kind = iota + 1
	KindDistance
)

func (k Kind) String() string {
	switch k {
	case KindAngular:
		return "ANGULAR"
	case KindDistance:
		return "DISTANCE"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// CanonicalName returns the name of the kind's canonical unit.
func (k Kind) CanonicalName() string {
	switch k {
	case KindAngular:
		return Radians.String()
	case KindDistance:
		return Kilometers.String()
	default:
		return ""
	}
}

// Unit is implemented by AngularUnit and DistanceUnit.
type Unit interface {
	Kind() Kind
	// Factor is the number of canonical units (radians or kilometres) in one
	// of this unit.
	Factor() float64
	String() string
}

// AngularUnit enumerates the supported angle units.
type AngularUnit int

const (
	Radians AngularUnit = iota
	Degrees
	Arcminutes
	Arcseconds
	HourAngle
	MinuteAngle
	SecondAngle
)

// DistanceUnit enumerates the supported length units.
type DistanceUnit int

const (
	Kilometers DistanceUnit = iota
	Meters
	Centimeters
	Millimeters
	AU
	Feet
	Inches
	Yards
	StatuteMiles
	NauticalMiles
	LightSeconds
	LightYears
)

type descriptor struct {
	name    string
	factor  float64
	aliases []string
}

// The tables are indexed by the enum value and never mutated after package
// initialisation.
var angularTable = [...]descriptor{
	Radians:     {name: "RADIANS", factor: 1.0, aliases: []string{"RADIAN", "RAD"}},
	Degrees:     {name: "DEGREES", factor: math.Pi / 180.0, aliases: []string{"DEGREE", "DEG"}},
	Arcminutes:  {name: "ARCMINUTES", factor: math.Pi / 10800.0, aliases: []string{"ARCMINUTE"}},
	Arcseconds:  {name: "ARCSECONDS", factor: math.Pi / 648000.0, aliases: []string{"ARCSECOND"}},
	HourAngle:   {name: "HOURANGLE", factor: math.Pi / 12.0},
	MinuteAngle: {name: "MINUTEANGLE", factor: math.Pi / 720.0},
	SecondAngle: {name: "SECONDANGLE", factor: math.Pi / 43200.0},
}

var distanceTable = [...]descriptor{
	Kilometers:    {name: "KM", factor: 1.0, aliases: []string{"KILOMETERS", "KILOMETER"}},
	Meters:        {name: "METERS", factor: 1e-3, aliases: []string{"M", "METER"}},
	Centimeters:   {name: "CM", factor: 1e-5, aliases: []string{"CENTIMETERS", "CENTIMETER"}},
	Millimeters:   {name: "MM", factor: 1e-6, aliases: []string{"MILLIMETERS", "MILLIMETER"}},
	AU:            {name: "AU", factor: 1.4959787061368887e8},
	Feet:          {name: "FEET", factor: 3.048e-4, aliases: []string{"FOOT", "FT"}},
	Inches:        {name: "INCHES", factor: 2.54e-5, aliases: []string{"INCH"}},
	Yards:         {name: "YARDS", factor: 9.144e-4, aliases: []string{"YARD"}},
	StatuteMiles:  {name: "STATUTE_MILES", factor: 1.609344, aliases: []string{"MILES"}},
	NauticalMiles: {name: "NAUTICAL_MILES", factor: 1.852},
	LightSeconds:  {name: "LIGHTSECS", factor: 299792.458, aliases: []string{"LIGHTSECONDS"}},
	LightYears:    {name: "LIGHTYEARS", factor: 9.4607304725808e12},
}

type entry struct {
	kind  Kind
	index int
}

var byName = buildIndex()

func buildIndex() map[string]entry {
	idx := make(map[string]entry, 2*(len(angularTable)+len(distanceTable)))
	for i, d := range angularTable {
		idx[d.name] = entry{kind: KindAngular, index: i}
		for _, a := range d.aliases {
			idx[a] = entry{kind: KindAngular, index: i}
		}
	}
	for i, d := range distanceTable {
		idx[d.name] = entry{kind: KindDistance, index: i}
		for _, a := range d.aliases {
			idx[a] = entry{kind: KindDistance, index: i}
		}
	}
	return idx
}

func (u AngularUnit) valid() bool { return u >= 0 && int(u) < len(angularTable) }

// Kind reports KindAngular.
func (u AngularUnit) Kind() Kind { return KindAngular }

// Factor returns the number of radians in one u.
func (u AngularUnit) Factor() float64 {
	if !u.valid() {
		return math.NaN()
	}
	return angularTable[u].factor
}

// ToRadians is an alias of Factor.
func (u AngularUnit) ToRadians() float64 { return u.Factor() }

func (u AngularUnit) String() string {
	if !u.valid() {
		return fmt.Sprintf("AngularUnit(%d)", int(u))
	}
	return angularTable[u].name
}

func (u DistanceUnit) valid() bool { return u >= 0 && int(u) < len(distanceTable) }

// Kind reports KindDistance.
func (u DistanceUnit) Kind() Kind { return KindDistance }

// Factor returns the number of kilometres in one u.
func (u DistanceUnit) Factor() float64 {
	if !u.valid() {
		return math.NaN()
	}
	return distanceTable[u].factor
}

// ToKm is an alias of Factor.
func (u DistanceUnit) ToKm() float64 { return u.Factor() }

func (u DistanceUnit) String() string {
	if !u.valid() {
		return fmt.Sprintf("DistanceUnit(%d)", int(u))
	}
	return distanceTable[u].name
}

// AngularUnits returns every angular unit in declaration order.
func AngularUnits() []AngularUnit {
	out := make([]AngularUnit, len(angularTable))
	for i := range angularTable {
		out[i] = AngularUnit(i)
	}
	return out
}

// DistanceUnits returns every distance unit in declaration order.
func DistanceUnits() []DistanceUnit {
	out := make([]DistanceUnit, len(distanceTable))
	for i := range distanceTable {
		out[i] = DistanceUnit(i)
	}
	return out
}

// Parse resolves a unit name of either kind. Matching is case-insensitive and
// accepts the canonical names plus a few common aliases.
func Parse(name string) (Unit, error) {
	e, ok := byName[normalize(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnrecognizedUnit, name)
	}
	if e.kind == KindAngular {
		return AngularUnit(e.index), nil
	}
	return DistanceUnit(e.index), nil
}

// ParseAngular resolves an angular unit name. A valid distance unit name
// yields ErrIncompatibleUnits.
func ParseAngular(name string) (AngularUnit, error) {
	u, err := Parse(name)
	if err != nil {
		return 0, err
	}
	a, ok := u.(AngularUnit)
	if !ok {
		return 0, fmt.Errorf("%w: %s is a %s unit, want %s", ErrIncompatibleUnits, u, u.Kind(), KindAngular)
	}
	return a, nil
}

// ParseDistance resolves a distance unit name. A valid angular unit name
// yields ErrIncompatibleUnits.
func ParseDistance(name string) (DistanceUnit, error) {
	u, err := Parse(name)
	if err != nil {
		return 0, err
	}
	d, ok := u.(DistanceUnit)
	if !ok {
		return 0, fmt.Errorf("%w: %s is a %s unit, want %s", ErrIncompatibleUnits, u, u.Kind(), KindDistance)
	}
	return d, nil
}

// Compatible reports whether a and b belong to the same kind.
func Compatible(a, b Unit) bool {
	if a == nil || b == nil {
		return false
	}
	return a.Kind() == b.Kind()
}

// known reports whether u is a declared unit with a usable factor.
func known(u Unit) bool {
	switch u := u.(type) {
	case AngularUnit:
		return u.valid()
	case DistanceUnit:
		return u.valid()
	default:
		f := u.Factor()
		return f > 0 && !math.IsInf(f, 0)
	}
}

// Convert expresses value, given in from, in to. Units outside the declared
// enumerations fail with ErrUnrecognizedUnit.
func Convert(value float64, from, to Unit) (float64, error) {
	if from == nil || to == nil {
		return 0, fmt.Errorf("%w: nil unit", ErrUnrecognizedUnit)
	}
	for _, u := range [...]Unit{from, to} {
		if !known(u) {
			return 0, fmt.Errorf("%w: %s", ErrUnrecognizedUnit, u)
		}
	}
	if !Compatible(from, to) {
		return 0, fmt.Errorf("%w: cannot convert %s to %s", ErrIncompatibleUnits, from, to)
	}
	if from == to {
		return value, nil
	}
	return value * from.Factor() / to.Factor(), nil
}

// ConvertNames is Convert with units given by name.
func ConvertNames(value float64, from, to string) (float64, error) {
	f, err := Parse(from)
	if err != nil {
		return 0, err
	}
	t, err := Parse(to)
	if err != nil {
		return 0, err
	}
	return Convert(value, f, t)
}

func normalize(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}
