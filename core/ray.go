package core

import "fmt"

// Ray is a half-line: a vertex and a unit direction.
type Ray struct {
	vertex    Vector3
	direction Vector3
}

// DefaultRay returns the ray from the origin along +Z.
func DefaultRay() Ray {
	return Ray{direction: ZAxis}
}

// NewRay builds a ray. The direction is stored unitized; a zero direction
// fails with ErrZeroVector and a NaN or infinite component with ErrNonFinite.
func NewRay(vertex, direction Vector3) (Ray, error) {
	if !vertex.IsFinite() {
		return Ray{}, fmt.Errorf("ray vertex %s: %w", vertex, ErrNonFinite)
	}
	if !direction.IsFinite() {
		return Ray{}, fmt.Errorf("ray direction %s: %w", direction, ErrNonFinite)
	}
	u, err := direction.Hat()
	if err != nil {
		return Ray{}, fmt.Errorf("ray direction: %w", err)
	}
	return Ray{vertex: vertex, direction: u}, nil
}

// Vertex returns the ray's vertex.
func (r Ray) Vertex() Vector3 { return r.vertex }

// Direction returns the ray's unit direction. The zero Ray reports +Z.
func (r Ray) Direction() Vector3 {
	if r.direction.IsZero() {
		return ZAxis
	}
	return r.direction
}

// At returns vertex + t*direction.
func (r Ray) At(t float64) Vector3 {
	return r.vertex.Add(r.Direction().Scale(t))
}

func (r Ray) String() string {
	return fmt.Sprintf("Ray{vertex: %s, direction: %s}", r.vertex, r.Direction())
}
