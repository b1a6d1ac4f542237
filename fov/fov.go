// Package fov assembles an instrument field of view from kernel-pool data.
package fov

import (
	"errors"
	"fmt"
	"strings"

	"github.com/signalsfoundry/surfacegeom/core"
	"github.com/signalsfoundry/surfacegeom/model"
)

var (
	ErrFrameMissing    = errors.New("fov frame missing")
	ErrDataUnavailable = errors.New("fov data unavailable")
	ErrInvalidShape    = errors.New("invalid fov shape")
	ErrInvalidBoundary = errors.New("invalid fov boundary")
	ErrInvalidAngle    = errors.New("invalid fov angle")
)

// Pool is the read side of a kernel pool.
type Pool interface {
	Doubles(name string) ([]float64, error)
	Strings(name string) ([]string, error)
}

// Shape is the FOV shape tag.
type Shape string

const (
	ShapePoint     Shape = "POINT"
	ShapeCircle    Shape = "CIRCLE"
	ShapeEllipse   Shape = "ELLIPSE"
	ShapeRectangle Shape = "RECTANGLE"
	ShapePolygon   Shape = "POLYGON"
)

// ParseShape resolves a shape tag, ignoring case and surrounding blanks.
func ParseShape(s string) (Shape, error) {
	switch sh := Shape(strings.ToUpper(strings.TrimSpace(s))); sh {
	case ShapePoint, ShapeCircle, ShapeEllipse, ShapeRectangle, ShapePolygon:
		return sh, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidShape, s)
}

// ValidBoundaryCount reports whether n boundary vectors suit the shape.
func (s Shape) ValidBoundaryCount(n int) bool {
	switch s {
	case ShapePoint:
		return n == 0
	case ShapeCircle:
		return n == 1
	case ShapeEllipse:
		return n == 2
	case ShapeRectangle:
		return n == 4
	case ShapePolygon:
		return n >= 3
	}
	return false
}

// FOV is an instrument's field of view: a shape, a boresight and boundary
// vectors expressed in a reference frame.
type FOV struct {
	instrument model.Instrument
	shape      Shape
	frame      model.ReferenceFrame
	boresight  core.Vector3
	boundary   []core.Vector3
}

// New reads the field of view of instrument id from pool.
func New(pool Pool, id int) (FOV, error) {
	return NewForInstrument(pool, model.Instrument{ID: id})
}

// NewForInstrument reads the field of view of inst from pool. A missing frame
// keyword fails with ErrFrameMissing; other missing keywords fail with
// ErrDataUnavailable.
func NewForInstrument(pool Pool, inst model.Instrument) (FOV, error) {
	k := keys{prefix: inst.KeywordPrefix()}

	frame, err := stringValue(pool, k.name("FOV_FRAME"))
	if err != nil {
		return FOV{}, fmt.Errorf("%w: %s: %w", ErrFrameMissing, inst, err)
	}

	shapeName, err := stringValue(pool, k.name("FOV_SHAPE"))
	if err != nil {
		return FOV{}, fmt.Errorf("%w: %s: %w", ErrDataUnavailable, inst, err)
	}
	shape, err := ParseShape(shapeName)
	if err != nil {
		return FOV{}, fmt.Errorf("%s: %w", inst, err)
	}

	boresight, err := vectorValue(pool, k.name("BORESIGHT"))
	if err != nil {
		return FOV{}, fmt.Errorf("%w: %s: %w", ErrDataUnavailable, inst, err)
	}

	class := "CORNERS"
	if v, err := pool.Strings(k.name("FOV_CLASS_SPEC")); err == nil && len(v) > 0 {
		class = strings.ToUpper(strings.TrimSpace(v[0]))
	}

	var boundary []core.Vector3
	switch class {
	case "CORNERS":
		boundary, err = cornersBoundary(pool, k, shape)
	case "ANGLES":
		boundary, err = anglesBoundary(pool, k, shape, boresight)
	default:
		err = fmt.Errorf("%w: unknown class spec %q", ErrDataUnavailable, class)
	}
	if err != nil {
		return FOV{}, fmt.Errorf("%s: %w", inst, err)
	}
	if !shape.ValidBoundaryCount(len(boundary)) {
		return FOV{}, fmt.Errorf("%w: %s: %s has %d boundary vectors", ErrInvalidBoundary, inst, shape, len(boundary))
	}

	return FOV{
		instrument: inst,
		shape:      shape,
		frame:      model.NewReferenceFrame(frame),
		boresight:  boresight,
		boundary:   boundary,
	}, nil
}

// Instrument returns the owning instrument.
func (f FOV) Instrument() model.Instrument { return f.instrument }

// Shape returns the shape tag.
func (f FOV) Shape() Shape { return f.shape }

// ReferenceFrame returns the frame the vectors are expressed in.
func (f FOV) ReferenceFrame() model.ReferenceFrame { return f.frame }

// Boresight returns the boresight exactly as stored in the pool.
func (f FOV) Boresight() core.Vector3 { return f.boresight }

// Boundary returns a copy of the boundary vectors. It is empty for POINT.
func (f FOV) Boundary() []core.Vector3 {
	return append([]core.Vector3{}, f.boundary...)
}

func (f FOV) String() string {
	return fmt.Sprintf("FOV{%s %s frame=%s boresight=%s boundary=%d}", f.instrument, f.shape, f.frame, f.boresight, len(f.boundary))
}

type keys struct{ prefix string }

func (k keys) name(suffix string) string { return k.prefix + suffix }

func stringValue(pool Pool, name string) (string, error) {
	v, err := pool.Strings(name)
	if err != nil {
		return "", err
	}
	if len(v) == 0 || strings.TrimSpace(v[0]) == "" {
		return "", fmt.Errorf("%s is empty", name)
	}
	return strings.TrimSpace(v[0]), nil
}

func vectorValue(pool Pool, name string) (core.Vector3, error) {
	v, err := pool.Doubles(name)
	if err != nil {
		return core.Vector3{}, err
	}
	if len(v) != 3 {
		return core.Vector3{}, fmt.Errorf("%s has %d values, want 3", name, len(v))
	}
	return core.Vector3{X: v[0], Y: v[1], Z: v[2]}, nil
}

func scalarValue(pool Pool, name string) (float64, error) {
	v, err := pool.Doubles(name)
	if err != nil {
		return 0, err
	}
	if len(v) != 1 {
		return 0, fmt.Errorf("%s has %d values, want 1", name, len(v))
	}
	return v[0], nil
}
