// Package noise implements the hash-based value noise and fractal
// accumulation that drive the terrain height field.
//
// The kernel is a two-stage fractional/dot-product hash: deterministic,
// bounded to [0, 1), and visually decorrelated. It depends on no external
// random source, so the same coordinate always hashes to the same value —
// terrain features stay put while the camera drifts over them.
package noise

import "math"

// Hash constants. Hand-tuned; the exact values are not load-bearing as
// long as the output looks uncorrelated, but they must match the WGSL
// shader (internal/gpu/shaders/scene.wgsl).
const (
	hashScaleX = 123.34
	hashScaleY = 456.21
	hashOffset = 45.32
)

// KernelFunc is a 2D coordinate hash returning a scalar in [0, 1).
// The Sampler's kernel is swappable so tests can instrument it.
type KernelFunc func(x, y float64) float64

// Kernel is the default noise kernel: scale, fract, perturb by a
// self-dot-product, then fract the product of the two components.
func Kernel(x, y float64) float64 {
	px := fract(x * hashScaleX)
	py := fract(y * hashScaleY)
	d := px*(px+hashOffset) + py*(py+hashOffset)
	px += d
	py += d
	return fract(px * py)
}

// Sampler evaluates smoothed value noise and FBM sums over a kernel.
// The zero value is not usable; construct with NewSampler.
type Sampler struct {
	kernel KernelFunc
}

// NewSampler returns a sampler backed by the default kernel.
func NewSampler() *Sampler {
	return &Sampler{kernel: Kernel}
}

// NewSamplerWithKernel returns a sampler backed by a custom kernel.
// Used by tests to count kernel evaluations; k must not be nil.
func NewSamplerWithKernel(k KernelFunc) *Sampler {
	return &Sampler{kernel: k}
}

// Smooth returns bilinear-interpolated value noise at (x, y).
//
// The four cell-corner hashes are blended with smoothstep-weighted
// coordinates rather than raw linear weights. Linear weights leave
// visible grid-aligned creases in the height field; smoothing the
// weight removes them.
func (s *Sampler) Smooth(x, y float64) float64 {
	ix := math.Floor(x)
	iy := math.Floor(y)
	fx := x - ix
	fy := y - iy

	// Smoothstep the interpolation weights.
	ux := fx * fx * (3 - 2*fx)
	uy := fy * fy * (3 - 2*fy)

	a := s.kernel(ix, iy)
	b := s.kernel(ix+1, iy)
	c := s.kernel(ix, iy+1)
	d := s.kernel(ix+1, iy+1)

	return lerp(lerp(a, b, ux), lerp(c, d, ux), uy)
}

func fract(x float64) float64 {
	return x - math.Floor(x)
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
