package skyline

import "github.com/gogpu/skyline/internal/noise"

// Defaults for the renderer configuration surface.
const (
	// DefaultSpeed is the default horizontal scroll rate multiplier.
	DefaultSpeed = 1.0

	// DefaultOctaves is the default number of FBM layers.
	DefaultOctaves = 5

	// DefaultScale is the default base spatial frequency.
	DefaultScale = 2.0

	// DefaultLabel is the default accessibility label for the
	// rendering region.
	DefaultLabel = "Animated mountain landscape"

	// MaxOctaves is the supported FBM layer cap. Requests above it are
	// silently truncated inside the accumulation loop.
	MaxOctaves = noise.MaxOctaves
)

// Params is the renderer configuration, supplied at construction and
// immutable for the renderer's lifetime. The same values are re-sent to
// the program every frame as part of FrameInput.
type Params struct {
	Speed   float64
	Octaves int
	Scale   float64
	Label   string
}

// DefaultParams returns the default configuration.
func DefaultParams() Params {
	return Params{
		Speed:   DefaultSpeed,
		Octaves: DefaultOctaves,
		Scale:   DefaultScale,
		Label:   DefaultLabel,
	}
}
