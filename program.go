package skyline

import "sync"

// FrameInput carries the per-frame uniform inputs a Program receives
// from the host: the backing-store resolution, the elapsed animation
// time, and the three render parameters. It is recomputed every frame
// and never retained.
type FrameInput struct {
	// Elapsed is the animation time in seconds since the renderer's
	// start epoch.
	Elapsed float64

	// Width and Height are the backing-store pixel dimensions.
	Width, Height int

	// Speed is the horizontal scroll rate multiplier.
	Speed float64

	// Octaves is the number of FBM layers, capped at 6 inside the
	// accumulation loop.
	Octaves int

	// Scale is the base spatial frequency of the height field.
	Scale float64
}

// Program renders one frame of the procedural scene into a pixel
// buffer. Implementations: the WGSL compute pipeline (skyline/gpu) and
// the CPU reference (NewSoftwareProgram).
//
// Render must write every pixel of dst. A non-nil error is terminal:
// the host stops the render loop and never retries.
type Program interface {
	Render(dst *Pixmap, in FrameInput) error

	// Close releases program resources. The program must not be used
	// after Close.
	Close()
}

// ProgramFactory builds Programs. GPU backend packages register a
// factory via RegisterProgramFactory; users opt in with a blank import:
//
//	import _ "github.com/gogpu/skyline/gpu" // enables GPU rendering
type ProgramFactory interface {
	// Name returns the factory name (e.g., "wgsl-compute").
	Name() string

	// New builds a program. provider is an optional
	// gpucontext.DeviceProvider for GPU device sharing; pass nil to let
	// the program acquire its own device.
	New(provider any) (Program, error)
}

var (
	factoryMu      sync.RWMutex
	programFactory ProgramFactory
)

// RegisterProgramFactory registers the program factory used by New when
// no explicit program is supplied. Only one factory can be registered;
// subsequent calls replace the previous one.
func RegisterProgramFactory(f ProgramFactory) {
	factoryMu.Lock()
	programFactory = f
	factoryMu.Unlock()
	if f != nil {
		propagateLogger(f, Logger())
	}
}

// Factory returns the currently registered program factory, or nil.
func Factory() ProgramFactory {
	factoryMu.RLock()
	f := programFactory
	factoryMu.RUnlock()
	return f
}
