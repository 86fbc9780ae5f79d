//go:build !nogpu

package gpu

import "github.com/gogpu/skyline"

// Factory builds GPU programs. Registered with the root package by the
// skyline/gpu blank-import package.
type Factory struct{}

var _ skyline.ProgramFactory = Factory{}

// Name returns the factory identifier.
func (Factory) Name() string { return "wgsl-compute" }

// New builds a GPU program, optionally sharing the device exposed by
// provider (a gpucontext.DeviceProvider with HAL access).
func (Factory) New(provider any) (skyline.Program, error) {
	return NewProgram(provider)
}
