//go:build !nogpu

// Package gpu registers the WGSL compute program factory for
// hardware-accelerated scene rendering.
//
// Import this package to let skyline.New build its program on the GPU:
//
//	import _ "github.com/gogpu/skyline/gpu" // enable GPU rendering
//
// Registration only installs the factory; the GPU environment is
// acquired when a Renderer is constructed, and acquisition failures
// surface there as skyline.ErrEnvironmentUnsupported.
package gpu

import (
	"github.com/gogpu/gpucontext"

	"github.com/gogpu/skyline"
	gpuimpl "github.com/gogpu/skyline/internal/gpu"
)

func init() {
	skyline.RegisterProgramFactory(gpuimpl.Factory{})
}

// WithSharedDevice returns a renderer option that reuses the GPU device
// exposed by an external provider (e.g., a gogpu window) instead of
// creating a separate one. The provider must also implement HAL access
// (HalDevice/HalQueue) for direct pipeline construction.
func WithSharedDevice(provider gpucontext.DeviceProvider) skyline.Option {
	return skyline.WithDeviceProvider(provider)
}
