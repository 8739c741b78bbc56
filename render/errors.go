package render

import (
	"errors"
	"fmt"
)

// Common render errors.
var (
	// ErrNotReady is returned by Render until both a shader program and
	// an image have been loaded.
	ErrNotReady = errors.New("render: pipeline not ready")

	// ErrNilDevice is returned when a pipeline is created without a device.
	ErrNilDevice = errors.New("render: nil device provider")

	// ErrMissingEntryPoint is wrapped by CompileError when the shader does
	// not declare the vs_main or fs_main entry point.
	ErrMissingEntryPoint = errors.New("render: missing entry point")

	// ErrEmptyImage is wrapped by DecodeError for zero-sized images.
	ErrEmptyImage = errors.New("render: empty image")
)

// CompileError reports a shader that failed to compile. The previously
// loaded program stays active.
type CompileError struct {
	Err error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("render: compile shader: %v", e.Err)
}

func (e *CompileError) Unwrap() error { return e.Err }

// DecodeError reports image bytes that could not be decoded. The
// previously loaded image stays active.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("render: decode image: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
