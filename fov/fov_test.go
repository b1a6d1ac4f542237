package fov

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/signalsfoundry/surfacegeom/core"
	"github.com/signalsfoundry/surfacegeom/kernelpool"
)

var approx = cmpopts.EquateApprox(0, 1e-14)

func loadPool(t *testing.T, doc string) *kernelpool.Pool {
	t.Helper()
	pool := kernelpool.New()
	if _, err := pool.Load(strings.NewReader(doc)); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return pool
}

const rectangleKernel = `{
	"INS-999003_FOV_FRAME": "999003_FRAME",
	"INS-999003_FOV_SHAPE": "RECTANGLE",
	"INS-999003_BORESIGHT": [0.0, 0.0, 1.0],
	"INS-999003_FOV_BOUNDARY_CORNERS": [
		 0.01,  0.02, 1.0,
		-0.01,  0.02, 1.0,
		-0.01, -0.02, 1.0,
		 0.01, -0.02, 1.0
	]
}`

func TestFOVFrameMissing(t *testing.T) {
	pool := kernelpool.New()
	_, err := New(pool, -999001)
	if !errors.Is(err, ErrFrameMissing) {
		t.Fatalf("New(unknown instrument) err = %v, want ErrFrameMissing", err)
	}
	if !errors.Is(err, kernelpool.ErrVariableNotFound) {
		t.Fatalf("pool error not wrapped: %v", err)
	}
}

func TestFOVRectangleCorners(t *testing.T) {
	f, err := New(loadPool(t, rectangleKernel), -999003)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if f.Shape() != ShapeRectangle {
		t.Fatalf("Shape = %q", f.Shape())
	}
	if got := f.ReferenceFrame().Name(); got != "999003_FRAME" {
		t.Fatalf("ReferenceFrame = %q", got)
	}
	if f.Boresight() != core.ZAxis {
		t.Fatalf("Boresight = %v", f.Boresight())
	}
	if f.Instrument().ID != -999003 {
		t.Fatalf("Instrument = %v", f.Instrument())
	}

	want := []core.Vector3{
		{X: 0.01, Y: 0.02, Z: 1},
		{X: -0.01, Y: 0.02, Z: 1},
		{X: -0.01, Y: -0.02, Z: 1},
		{X: 0.01, Y: -0.02, Z: 1},
	}
	if diff := cmp.Diff(want, f.Boundary()); diff != "" {
		t.Fatalf("Boundary mismatch (-want +got):\n%s", diff)
	}

	b := f.Boundary()
	b[0] = core.Vector3{}
	if f.Boundary()[0] != want[0] {
		t.Fatalf("Boundary returned an alias of internal state")
	}
}

func TestFOVBoresightKeptAsStored(t *testing.T) {
	pool := loadPool(t, rectangleKernel)
	_ = pool.PutDoubles("INS-999003_BORESIGHT", []float64{0, 0, 5})
	f, err := New(pool, -999003)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if f.Boresight() != (core.Vector3{Z: 5}) {
		t.Fatalf("Boresight = %v, want unnormalised (0, 0, 5)", f.Boresight())
	}
}

func TestFOVLegacyBoundaryKeyword(t *testing.T) {
	pool := loadPool(t, `{
		"INS-7_FOV_FRAME": "F7",
		"INS-7_FOV_SHAPE": "polygon",
		"INS-7_BORESIGHT": [1, 0, 0],
		"INS-7_FOV_BOUNDARY": [1, 0.1, 0, 1, -0.1, 0.1, 1, -0.1, -0.1]
	}`)
	f, err := New(pool, -7)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if f.Shape() != ShapePolygon || len(f.Boundary()) != 3 {
		t.Fatalf("got %s with %d vectors", f.Shape(), len(f.Boundary()))
	}
}

func TestFOVPointHasNoBoundary(t *testing.T) {
	pool := loadPool(t, `{
		"INS-5_FOV_FRAME": "F5",
		"INS-5_FOV_SHAPE": "POINT",
		"INS-5_BORESIGHT": [0, 1, 0]
	}`)
	f, err := New(pool, -5)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if len(f.Boundary()) != 0 {
		t.Fatalf("POINT boundary = %v", f.Boundary())
	}
}

func TestFOVErrors(t *testing.T) {
	base := map[string]string{
		"frame":     `"INS-9_FOV_FRAME": "F9"`,
		"shape":     `"INS-9_FOV_SHAPE": "RECTANGLE"`,
		"boresight": `"INS-9_BORESIGHT": [0, 0, 1]`,
		"corners":   `"INS-9_FOV_BOUNDARY_CORNERS": [1,1,1, -1,1,1, -1,-1,1, 1,-1,1]`,
	}
	build := func(override map[string]string) string {
		parts := make([]string, 0, len(base))
		for k, v := range base {
			if o, ok := override[k]; ok {
				v = o
			}
			if v != "" {
				parts = append(parts, v)
			}
		}
		return "{" + strings.Join(parts, ",") + "}"
	}

	tests := []struct {
		name     string
		override map[string]string
		wantErr  error
	}{
		{name: "missing shape", override: map[string]string{"shape": ""}, wantErr: ErrDataUnavailable},
		{name: "unknown shape", override: map[string]string{"shape": `"INS-9_FOV_SHAPE": "HEXAGON"`}, wantErr: ErrInvalidShape},
		{name: "missing boresight", override: map[string]string{"boresight": ""}, wantErr: ErrDataUnavailable},
		{name: "short boresight", override: map[string]string{"boresight": `"INS-9_BORESIGHT": [0, 1]`}, wantErr: ErrDataUnavailable},
		{name: "missing corners", override: map[string]string{"corners": ""}, wantErr: ErrDataUnavailable},
		{name: "ragged corners", override: map[string]string{"corners": `"INS-9_FOV_BOUNDARY_CORNERS": [1, 2, 3, 4]`}, wantErr: ErrInvalidBoundary},
		{name: "wrong count", override: map[string]string{"corners": `"INS-9_FOV_BOUNDARY_CORNERS": [1, 2, 3, 4, 5, 6]`}, wantErr: ErrInvalidBoundary},
		{name: "frame empty", override: map[string]string{"frame": `"INS-9_FOV_FRAME": " "`}, wantErr: ErrFrameMissing},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := New(loadPool(t, build(tc.override)), -9)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("New err = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func anglesKernel(shape, extra string) string {
	return `{
		"INS-42_FOV_FRAME": "F42",
		"INS-42_FOV_SHAPE": "` + shape + `",
		"INS-42_BORESIGHT": [0, 0, 2],
		"INS-42_FOV_CLASS_SPEC": "ANGLES",
		"INS-42_FOV_REF_VECTOR": [3, 0, 1],
		"INS-42_FOV_ANGLE_UNITS": "DEGREES"` + extra + `
	}`
}

func TestFOVAnglesRectangle(t *testing.T) {
	pool := loadPool(t, anglesKernel("RECTANGLE", `,
		"INS-42_FOV_REF_ANGLE": 45,
		"INS-42_FOV_CROSS_ANGLE": 45`))
	f, err := New(pool, -42)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	s := 1 / math.Sqrt(3)
	want := []core.Vector3{
		{X: s, Y: s, Z: s},
		{X: -s, Y: s, Z: s},
		{X: -s, Y: -s, Z: s},
		{X: s, Y: -s, Z: s},
	}
	if diff := cmp.Diff(want, f.Boundary(), approx); diff != "" {
		t.Fatalf("Boundary mismatch (-want +got):\n%s", diff)
	}
	if f.Boresight() != (core.Vector3{Z: 2}) {
		t.Fatalf("Boresight = %v", f.Boresight())
	}
}

func TestFOVAnglesCircleAndEllipse(t *testing.T) {
	circle, err := New(loadPool(t, anglesKernel("CIRCLE", `,
		"INS-42_FOV_REF_ANGLE": 45`)), -42)
	if err != nil {
		t.Fatalf("New(circle): %v", err)
	}
	h := math.Sqrt2 / 2
	if diff := cmp.Diff([]core.Vector3{{X: h, Z: h}}, circle.Boundary(), approx); diff != "" {
		t.Fatalf("circle boundary mismatch (-want +got):\n%s", diff)
	}

	ellipse, err := New(loadPool(t, anglesKernel("ELLIPSE", `,
		"INS-42_FOV_REF_ANGLE": 30,
		"INS-42_FOV_CROSS_ANGLE": 60`)), -42)
	if err != nil {
		t.Fatalf("New(ellipse): %v", err)
	}
	r3 := math.Sqrt(3) / 2
	want := []core.Vector3{{X: 0.5, Z: r3}, {Y: r3, Z: 0.5}}
	if diff := cmp.Diff(want, ellipse.Boundary(), cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Fatalf("ellipse boundary mismatch (-want +got):\n%s", diff)
	}
}

func TestFOVAnglesErrors(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr error
	}{
		{
			name: "polygon",
			doc: anglesKernel("POLYGON", `,
				"INS-42_FOV_REF_ANGLE": 10`),
			wantErr: ErrInvalidShape,
		},
		{
			name: "right angle",
			doc: anglesKernel("CIRCLE", `,
				"INS-42_FOV_REF_ANGLE": 90`),
			wantErr: ErrInvalidAngle,
		},
		{
			name: "negative angle",
			doc: anglesKernel("RECTANGLE", `,
				"INS-42_FOV_REF_ANGLE": 10,
				"INS-42_FOV_CROSS_ANGLE": -1`),
			wantErr: ErrInvalidAngle,
		},
		{
			name: "missing cross angle",
			doc: anglesKernel("ELLIPSE", `,
				"INS-42_FOV_REF_ANGLE": 10`),
			wantErr: ErrDataUnavailable,
		},
		{
			name: "distance units",
			doc: strings.Replace(anglesKernel("CIRCLE", `,
				"INS-42_FOV_REF_ANGLE": 10`), `"DEGREES"`, `"KM"`, 1),
			wantErr: ErrInvalidAngle,
		},
		{
			name: "reference along boresight",
			doc: strings.Replace(anglesKernel("CIRCLE", `,
				"INS-42_FOV_REF_ANGLE": 10`), `[3, 0, 1]`, `[0, 0, -4]`, 1),
			wantErr: ErrInvalidBoundary,
		},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := New(loadPool(t, tc.doc), -42)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("New err = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestParseShape(t *testing.T) {
	for _, name := range []string{"point", " Circle ", "ELLIPSE", "rectangle", "Polygon"} {
		if _, err := ParseShape(name); err != nil {
			t.Fatalf("ParseShape(%q): %v", name, err)
		}
	}
	if _, err := ParseShape("CONE"); !errors.Is(err, ErrInvalidShape) {
		t.Fatalf("ParseShape(CONE) err = %v", err)
	}
}
