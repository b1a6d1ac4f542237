package core

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Matrix33 is an immutable 3x3 matrix.
type Matrix33 struct {
	m *mat.Dense
}

// NewMatrix33 builds a matrix from nine row-major elements.
func NewMatrix33(rowMajor [9]float64) Matrix33 {
	data := make([]float64, 9)
	copy(data, rowMajor[:])
	return Matrix33{m: mat.NewDense(3, 3, data)}
}

// Identity33 returns the 3x3 identity.
func Identity33() Matrix33 {
	return NewMatrix33([9]float64{1, 0, 0, 0, 1, 0, 0, 0, 1})
}

// AxisRotation returns the matrix that rotates a reference frame by angle
// radians about coordinate axis 1, 2 or 3.
func AxisRotation(axisIndex int, angle float64) (Matrix33, error) {
	s, c := math.Sincos(angle)
	switch axisIndex {
	case 1:
		return NewMatrix33([9]float64{1, 0, 0, 0, c, s, 0, -s, c}), nil
	case 2:
		return NewMatrix33([9]float64{c, 0, -s, 0, 1, 0, s, 0, c}), nil
	case 3:
		return NewMatrix33([9]float64{c, s, 0, -s, c, 0, 0, 0, 1}), nil
	}
	return Matrix33{}, fmt.Errorf("%w: axis index must be 1, 2 or 3 but was %d", ErrIndexOutOfRange, axisIndex)
}

// At returns element (i, j).
func (m Matrix33) At(i, j int) float64 {
	if m.m == nil {
		return Identity33().m.At(i, j)
	}
	return m.m.At(i, j)
}

// MulVec returns m·v.
func (m Matrix33) MulVec(v Vector3) Vector3 {
	if m.m == nil {
		return v
	}
	var out mat.VecDense
	out.MulVec(m.m, mat.NewVecDense(3, v.Slice()))
	return Vector3{X: out.AtVec(0), Y: out.AtVec(1), Z: out.AtVec(2)}
}

// Mul returns m·other.
func (m Matrix33) Mul(other Matrix33) Matrix33 {
	if m.m == nil {
		return other
	}
	if other.m == nil {
		return m
	}
	var out mat.Dense
	out.Mul(m.m, other.m)
	return Matrix33{m: &out}
}

// Transpose returns mᵀ, which is the inverse for a rotation.
func (m Matrix33) Transpose() Matrix33 {
	if m.m == nil {
		return m
	}
	return Matrix33{m: mat.DenseCopyOf(m.m.T())}
}
