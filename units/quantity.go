package units

import (
	"fmt"
	"strconv"
)

// Quantity is a scalar tagged with its unit.
type Quantity struct {
	Value float64
	Unit  Unit
}

// Angle returns a quantity in the given angular unit.
func Angle(v float64, u AngularUnit) Quantity { return Quantity{Value: v, Unit: u} }

// Distance returns a quantity in the given distance unit.
func Distance(v float64, u DistanceUnit) Quantity { return Quantity{Value: v, Unit: u} }

// In converts q to the target unit.
func (q Quantity) In(to Unit) (Quantity, error) {
	v, err := Convert(q.Value, q.Unit, to)
	if err != nil {
		return Quantity{}, err
	}
	return Quantity{Value: v, Unit: to}, nil
}

// Canonical converts q to radians or kilometres.
func (q Quantity) Canonical() (float64, error) {
	if q.Unit == nil || !known(q.Unit) {
		return 0, fmt.Errorf("%w: %v", ErrUnrecognizedUnit, q.Unit)
	}
	return q.Value * q.Unit.Factor(), nil
}

// Radians returns an angular quantity in radians.
func (q Quantity) Radians() (float64, error) { return q.canonicalOf(KindAngular) }

// Kilometers returns a distance quantity in kilometres.
func (q Quantity) Kilometers() (float64, error) { return q.canonicalOf(KindDistance) }

func (q Quantity) canonicalOf(k Kind) (float64, error) {
	if q.Unit == nil || !known(q.Unit) {
		return 0, fmt.Errorf("%w: %v", ErrUnrecognizedUnit, q.Unit)
	}
	if q.Unit.Kind() != k {
		return 0, fmt.Errorf("%w: %s is not a %s unit", ErrIncompatibleUnits, q.Unit, k)
	}
	return q.Value * q.Unit.Factor(), nil
}

func (q Quantity) String() string {
	name := "<nil>"
	if q.Unit != nil {
		name = q.Unit.String()
	}
	return strconv.FormatFloat(q.Value, 'g', -1, 64) + " " + name
}
