package wavefront

import (
	"errors"
	"fmt"
)

// Parse errors.
var (
	ErrSyntax           = errors.New("malformed directive")
	ErrUnknownMaterial  = errors.New("unknown material")
	ErrNoActiveMaterial = errors.New("no active material")
	ErrIndexOutOfRange  = errors.New("index out of range")
)

// LineError locates a parse failure in a geometry or material file.
type LineError struct {
	Path string
	Line int
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("%s:%d: %v", e.Path, e.Line, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}
