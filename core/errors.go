package core

import "errors"

var (
	ErrZeroVector      = errors.New("zero vector")
	ErrPointNotFound   = errors.New("point not found")
	ErrInvalidAxis     = errors.New("invalid ellipsoid axis")
	ErrNoConvergence   = errors.New("no convergence")
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrViewpointInside = errors.New("viewpoint is not outside the ellipsoid")
	ErrNonFinite       = errors.New("non-finite vector component")
)
