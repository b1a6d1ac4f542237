package core

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/spatial/r3"
)

// Vector3 is an immutable 3-vector. Positions are in kilometres unless noted.
type Vector3 struct {
	X, Y, Z float64
}

// Basis vectors.
var (
	XAxis = Vector3{X: 1}
	YAxis = Vector3{Y: 1}
	ZAxis = Vector3{Z: 1}
)

// NewVector3FromArray copies the first three elements of a.
func NewVector3FromArray(a []float64) (Vector3, error) {
	if len(a) != 3 {
		return Vector3{}, fmt.Errorf("%w: vector needs 3 elements, got %d", ErrIndexOutOfRange, len(a))
	}
	return Vector3{X: a[0], Y: a[1], Z: a[2]}, nil
}

// Array returns the components as a fresh array.
func (v Vector3) Array() [3]float64 { return [3]float64{v.X, v.Y, v.Z} }

// Slice returns the components as a fresh slice.
func (v Vector3) Slice() []float64 { return []float64{v.X, v.Y, v.Z} }

// Elt returns component i (0, 1 or 2).
func (v Vector3) Elt(i int) (float64, error) {
	switch i {
	case 0:
		return v.X, nil
	case 1:
		return v.Y, nil
	case 2:
		return v.Z, nil
	}
	return 0, fmt.Errorf("%w: index must be in range 0:2 but was %d", ErrIndexOutOfRange, i)
}

// Add returns v + other.
func (v Vector3) Add(other Vector3) Vector3 {
	return Vector3{X: v.X + other.X, Y: v.Y + other.Y, Z: v.Z + other.Z}
}

// Sub returns v - other.
func (v Vector3) Sub(other Vector3) Vector3 {
	return Vector3{X: v.X - other.X, Y: v.Y - other.Y, Z: v.Z - other.Z}
}

// Scale returns s*v.
func (v Vector3) Scale(s float64) Vector3 {
	return Vector3{X: s * v.X, Y: s * v.Y, Z: s * v.Z}
}

// Negate returns -v.
func (v Vector3) Negate() Vector3 {
	return Vector3{X: -v.X, Y: -v.Y, Z: -v.Z}
}

// Dot returns the dot product of two vectors.
func (v Vector3) Dot(other Vector3) float64 {
	return v.X*other.X + v.Y*other.Y + v.Z*other.Z
}

// Cross returns v × other.
func (v Vector3) Cross(other Vector3) Vector3 {
	return Vector3{
		X: v.Y*other.Z - v.Z*other.Y,
		Y: v.Z*other.X - v.X*other.Z,
		Z: v.X*other.Y - v.Y*other.X,
	}
}

// Norm returns the Euclidean norm. Components are scaled by the largest
// magnitude first so that squaring cannot overflow or underflow.
func (v Vector3) Norm() float64 {
	vmax := math.Max(math.Max(math.Abs(v.X), math.Abs(v.Y)), math.Abs(v.Z))
	if vmax == 0 {
		return 0
	}
	x, y, z := v.X/vmax, v.Y/vmax, v.Z/vmax
	return vmax * math.Sqrt(x*x+y*y+z*z)
}

// DistanceTo returns the straight-line distance between two points.
func (v Vector3) DistanceTo(other Vector3) float64 {
	return v.Sub(other).Norm()
}

// IsZero reports whether every component is exactly zero.
func (v Vector3) IsZero() bool {
	return v.X == 0 && v.Y == 0 && v.Z == 0
}

// IsFinite reports whether no component is NaN or infinite.
func (v Vector3) IsFinite() bool {
	for _, c := range v.Array() {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// Hat returns the unit vector along v. It fails with ErrZeroVector for the
// zero vector rather than returning an arbitrary direction.
func (v Vector3) Hat() (Vector3, error) {
	n := v.Norm()
	if n == 0 {
		return Vector3{}, ErrZeroVector
	}
	return Vector3{X: v.X / n, Y: v.Y / n, Z: v.Z / n}, nil
}

// UCross returns the unitized cross product v × other.
func (v Vector3) UCross(other Vector3) (Vector3, error) {
	// Pre-scaling keeps the cross product representable for tiny or huge inputs.
	a, err := v.Hat()
	if err != nil {
		return Vector3{}, fmt.Errorf("ucross: %w", err)
	}
	b, err := other.Hat()
	if err != nil {
		return Vector3{}, fmt.Errorf("ucross: %w", err)
	}
	c, err := a.Cross(b).Hat()
	if err != nil {
		return Vector3{}, fmt.Errorf("ucross of parallel vectors: %w", err)
	}
	return c, nil
}

// LCom returns a*v1 + b*v2.
func LCom(a float64, v1 Vector3, b float64, v2 Vector3) Vector3 {
	return v1.Scale(a).Add(v2.Scale(b))
}

// LCom3 returns a*v1 + b*v2 + c*v3.
func LCom3(a float64, v1 Vector3, b float64, v2 Vector3, c float64, v3 Vector3) Vector3 {
	return LCom(a, v1, b, v2).Add(v3.Scale(c))
}

// Proj returns the orthogonal projection of v onto other. The projection
// onto the zero vector is the zero vector.
func (v Vector3) Proj(other Vector3) Vector3 {
	u, err := other.Hat()
	if err != nil {
		return Vector3{}
	}
	return u.Scale(v.Dot(u))
}

// Perp returns the component of v orthogonal to other.
func (v Vector3) Perp(other Vector3) Vector3 {
	if other.IsZero() {
		return v
	}
	return v.Sub(v.Proj(other))
}

// Sep returns the angular separation of v and other in radians, in [0, π].
// Either input being zero yields 0.
func (v Vector3) Sep(other Vector3) float64 {
	u1, err := v.Hat()
	if err != nil {
		return 0
	}
	u2, err := other.Hat()
	if err != nil {
		return 0
	}
	// The half-chord form avoids the precision loss of acos near 0 and π.
	if u1.Dot(u2) > 0 {
		return 2 * math.Asin(0.5*u1.Sub(u2).Norm())
	}
	if u1.Dot(u2) < 0 {
		return math.Pi - 2*math.Asin(0.5*u1.Add(u2).Norm())
	}
	return math.Pi / 2
}

// Rotate expresses v in a frame rotated by angle radians about coordinate
// axis 1, 2 or 3. Equivalently v is rotated by -angle about that axis.
func (v Vector3) Rotate(axisIndex int, angle float64) (Vector3, error) {
	m, err := AxisRotation(axisIndex, angle)
	if err != nil {
		return Vector3{}, err
	}
	return m.MulVec(v), nil
}

// RotateAbout rotates v counterclockwise by angle radians about axis.
func (v Vector3) RotateAbout(axis Vector3, angle float64) (Vector3, error) {
	u, err := axis.Hat()
	if err != nil {
		return Vector3{}, fmt.Errorf("rotation axis: %w", err)
	}
	rot := r3.NewRotation(angle, r3.Vec{X: u.X, Y: u.Y, Z: u.Z})
	p := rot.Rotate(r3.Vec{X: v.X, Y: v.Y, Z: v.Z})
	return Vector3{X: p.X, Y: p.Y, Z: p.Z}, nil
}

// ApproxEqual reports whether each component of v and other agrees within the
// absolute or relative tolerance.
func (v Vector3) ApproxEqual(other Vector3, absTol, relTol float64) bool {
	return scalar.EqualWithinAbsOrRel(v.X, other.X, absTol, relTol) &&
		scalar.EqualWithinAbsOrRel(v.Y, other.Y, absTol, relTol) &&
		scalar.EqualWithinAbsOrRel(v.Z, other.Z, absTol, relTol)
}

func (v Vector3) String() string {
	return fmt.Sprintf("(%24.16e, %24.16e, %24.16e)", v.X, v.Y, v.Z)
}

// perpBasis returns two unit vectors that, with hat(v), form a right-handed
// orthonormal basis. v must be non-zero.
func perpBasis(v Vector3) (Vector3, Vector3, error) {
	u, err := v.Hat()
	if err != nil {
		return Vector3{}, Vector3{}, err
	}
	// Seed with the coordinate axis least aligned with v.
	seed := XAxis
	ax, ay, az := math.Abs(u.X), math.Abs(u.Y), math.Abs(u.Z)
	if ay <= ax && ay <= az {
		seed = YAxis
	} else if az <= ax && az <= ay {
		seed = ZAxis
	}
	e1, err := seed.Perp(u).Hat()
	if err != nil {
		return Vector3{}, Vector3{}, err
	}
	e2 := u.Cross(e1)
	return e1, e2, nil
}
