package geomrpc

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/signalsfoundry/surfacegeom/core"
	"github.com/signalsfoundry/surfacegeom/orbit"
)

// ErrInvalidRequest is returned when a request body is missing a field or a
// field has the wrong shape.
var ErrInvalidRequest = errors.New("invalid request")

func field(req *structpb.Struct, name string) (*structpb.Value, error) {
	v, ok := req.GetFields()[name]
	if !ok || v == nil {
		return nil, fmt.Errorf("%w: missing field %q", ErrInvalidRequest, name)
	}
	return v, nil
}

func numberField(req *structpb.Struct, name string) (float64, error) {
	v, err := field(req, name)
	if err != nil {
		return 0, err
	}
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, fmt.Errorf("%w: field %q must be a number", ErrInvalidRequest, name)
	}
	return n.NumberValue, nil
}

func stringField(req *structpb.Struct, name string) (string, error) {
	v, err := field(req, name)
	if err != nil {
		return "", err
	}
	s, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return "", fmt.Errorf("%w: field %q must be a string", ErrInvalidRequest, name)
	}
	return s.StringValue, nil
}

func numbersField(req *structpb.Struct, name string, n int) ([]float64, error) {
	v, err := field(req, name)
	if err != nil {
		return nil, err
	}
	list, ok := v.GetKind().(*structpb.Value_ListValue)
	if !ok || len(list.ListValue.GetValues()) != n {
		return nil, fmt.Errorf("%w: field %q must be a list of %d numbers", ErrInvalidRequest, name, n)
	}
	out := make([]float64, 0, n)
	for _, item := range list.ListValue.GetValues() {
		num, ok := item.GetKind().(*structpb.Value_NumberValue)
		if !ok {
			return nil, fmt.Errorf("%w: field %q must be a list of %d numbers", ErrInvalidRequest, name, n)
		}
		out = append(out, num.NumberValue)
	}
	return out, nil
}

func vectorField(req *structpb.Struct, name string) (core.Vector3, error) {
	xs, err := numbersField(req, name, 3)
	if err != nil {
		return core.Vector3{}, err
	}
	return core.NewVector3FromArray(xs)
}

// ellipsoidField reads the target body from either "radii" (three semi-axis
// lengths) or "body" (wgs84, wgs72 or sphere).
func ellipsoidField(req *structpb.Struct) (core.Ellipsoid, error) {
	if _, ok := req.GetFields()["radii"]; ok {
		radii, err := numbersField(req, "radii", 3)
		if err != nil {
			return core.Ellipsoid{}, err
		}
		return core.NewEllipsoidFromRadii(radii)
	}
	if _, ok := req.GetFields()["body"]; ok {
		name, err := stringField(req, "body")
		if err != nil {
			return core.Ellipsoid{}, err
		}
		e, _, err := orbit.Body(name)
		return e, err
	}
	return core.Ellipsoid{}, fmt.Errorf("%w: one of \"radii\" or \"body\" is required", ErrInvalidRequest)
}

func vectorValue(v core.Vector3) []interface{} {
	return []interface{}{v.X, v.Y, v.Z}
}

func vectorsValue(vs []core.Vector3) []interface{} {
	out := make([]interface{}, 0, len(vs))
	for _, v := range vs {
		out = append(out, vectorValue(v))
	}
	return out
}

func newResponse(fields map[string]interface{}) (*structpb.Struct, error) {
	resp, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("encode response: %w", err)
	}
	return resp, nil
}

// VectorFromValue decodes a three-element list value.
func VectorFromValue(v *structpb.Value) (core.Vector3, error) {
	list := v.GetListValue().GetValues()
	if len(list) != 3 {
		return core.Vector3{}, fmt.Errorf("%w: expected a list of 3 numbers", ErrInvalidRequest)
	}
	return core.Vector3{X: list[0].GetNumberValue(), Y: list[1].GetNumberValue(), Z: list[2].GetNumberValue()}, nil
}
