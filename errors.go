package skyline

import "errors"

// Renderer failure taxonomy. All three are unrecoverable for the
// renderer instance: they stem from static environment or shader-source
// conditions that will not change within the instance's lifetime, so
// there is no retry policy. Callers should surface the error in place
// of the rendering surface.
var (
	// ErrEnvironmentUnsupported indicates no hardware-accelerated
	// rendering context is available (no usable backend, adapter, or
	// device).
	ErrEnvironmentUnsupported = errors.New("skyline: environment unsupported")

	// ErrCompileFailure indicates a shader stage failed to compile.
	ErrCompileFailure = errors.New("skyline: shader compile failure")

	// ErrLinkFailure indicates the shader program failed to link into
	// an executable pipeline.
	ErrLinkFailure = errors.New("skyline: program link failure")

	// ErrRendererClosed is returned by operations on a Renderer after
	// Close.
	ErrRendererClosed = errors.New("skyline: renderer is closed")

	// ErrNoProgram indicates neither a GPU program factory was
	// registered (blank-import skyline/gpu) nor an explicit program
	// supplied via WithProgram.
	ErrNoProgram = errors.New("skyline: no render program available")
)
