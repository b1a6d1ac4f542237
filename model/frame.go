package model

// ReferenceFrame is a handle to a reference frame known only by name.
// Resolving the name to a rotation is left to the caller.
type ReferenceFrame struct {
	name string
}

// NewReferenceFrame returns the frame with the given name.
func NewReferenceFrame(name string) ReferenceFrame {
	return ReferenceFrame{name: name}
}

// Name returns the frame name.
func (f ReferenceFrame) Name() string { return f.name }

func (f ReferenceFrame) String() string { return f.name }
