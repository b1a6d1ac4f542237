package core

import "fmt"

// Line is an infinite line through a point. The direction is stored with
// unit length but its sign is kept as given; both senses lie on the line.
type Line struct {
	point     Vector3
	direction Vector3
}

// DefaultLine returns the line through the origin along the Z axis.
func DefaultLine() Line {
	return Line{direction: ZAxis}
}

// NewLine builds a line through point with the given direction. A zero
// direction fails with ErrZeroVector and a NaN or infinite component with
// ErrNonFinite.
func NewLine(point, direction Vector3) (Line, error) {
	if !point.IsFinite() {
		return Line{}, fmt.Errorf("line point %s: %w", point, ErrNonFinite)
	}
	if !direction.IsFinite() {
		return Line{}, fmt.Errorf("line direction %s: %w", direction, ErrNonFinite)
	}
	u, err := direction.Hat()
	if err != nil {
		return Line{}, fmt.Errorf("line direction: %w", err)
	}
	return Line{point: point, direction: u}, nil
}

// LineFromRay returns the line containing r.
func LineFromRay(r Ray) Line {
	return Line{point: r.Vertex(), direction: r.Direction()}
}

// Point returns the line's reference point.
func (l Line) Point() Vector3 { return l.point }

// Direction returns the line's unit direction. The zero Line reports +Z.
func (l Line) Direction() Vector3 {
	if l.direction.IsZero() {
		return ZAxis
	}
	return l.direction
}

// Ray returns the ray starting at the line's point along its direction.
func (l Line) Ray() Ray {
	return Ray{vertex: l.point, direction: l.Direction()}
}

// At returns point + t*direction.
func (l Line) At(t float64) Vector3 {
	return l.point.Add(l.Direction().Scale(t))
}

// NearPoint returns the point on the line closest to p and its distance from p.
func (l Line) NearPoint(p Vector3) (Vector3, float64) {
	d := l.Direction()
	t := p.Sub(l.point).Dot(d)
	np := l.At(t)
	return np, np.DistanceTo(p)
}

func (l Line) String() string {
	return fmt.Sprintf("Line{point: %s, direction: %s}", l.point, l.Direction())
}
