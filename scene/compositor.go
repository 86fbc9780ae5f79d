// Package scene composits the procedural terrain/sky image.
//
// The compositor maps a normalized screen coordinate (aspect-corrected,
// origin centered, y-up) and the current animation time to a final RGB
// color. It is the CPU reference for the WGSL shader in
// internal/gpu/shaders/scene.wgsl; the two share every constant and must
// stay in sync.
package scene

import (
	"math"

	"github.com/gogpu/skyline/internal/noise"
)

// Hand-tuned composition constants. Changing any of them changes the
// image; the WGSL shader carries the same literals.
const (
	driftRate = 0.2 // horizontal scroll per second per unit of speed
	fieldFreq = 1.5 // height-field sampling frequency multiplier

	silhouetteEps  = 0.01 // width of the soft silhouette band
	horizonOffset  = 0.2  // raises the terrain line above screen center
	mountainShade  = 0.6  // how strongly height darkens the rock
	mountainFloor  = 0.35 // minimum rock brightness factor
	glowStrength   = 0.012
	glowCenterX    = 0.35
	glowCenterY    = 0.18
	fogLow, fogHig = 0.35, 0.95
	fogAmount      = 0.6
)

// Palette. Sky is a vertical gradient between horizon and zenith;
// outside [0,1] the gradient extrapolates linearly, an accepted
// cosmetic edge case at extreme aspect ratios.
var (
	skyHorizon = [3]float64{0.82, 0.52, 0.44}
	skyZenith  = [3]float64{0.16, 0.22, 0.42}
	rockColor  = [3]float64{0.10, 0.09, 0.12}
	glowColor  = [3]float64{1.00, 0.75, 0.45}
)

// Compositor produces the final per-pixel color of the animated scene.
// It is not safe for concurrent mutation; renderers own one instance.
type Compositor struct {
	speed   float64
	octaves int
	scale   float64
	sampler *noise.Sampler
}

// New creates a compositor. octaves is truncated to the supported
// maximum inside the FBM loop; speed and scale are used as given.
func New(speed float64, octaves int, scale float64) *Compositor {
	return &Compositor{
		speed:   speed,
		octaves: octaves,
		scale:   scale,
		sampler: noise.NewSampler(),
	}
}

// NewWithSampler creates a compositor over a custom noise sampler.
// Tests use this to instrument kernel evaluations.
func NewWithSampler(speed float64, octaves int, scale float64, s *noise.Sampler) *Compositor {
	return &Compositor{speed: speed, octaves: octaves, scale: scale, sampler: s}
}

// Height returns the terrain height sample for the given scene
// coordinate at time t, in approximately [0, 1).
func (c *Compositor) Height(x, y, t float64) float64 {
	sx := x + t*c.speed*driftRate
	return c.sampler.FBM(sx*fieldFreq, y*fieldFreq, c.octaves, c.scale)
}

// ColorAt returns the final color for the normalized screen coordinate
// (x, y) at animation time t seconds. Stage order is significant: each
// stage's output feeds the next.
func (c *Compositor) ColorAt(x, y, t float64) (r, g, b float64) {
	h := c.Height(x, y, t)

	// Sky gradient, deliberately unclamped.
	sr, sg, sb := mix3(skyHorizon, skyZenith, y+0.5)

	// Soft silhouette: 0 inside the mountain, 1 in the sky, with a
	// band of width silhouetteEps to keep the edge alias-free.
	mask := smoothstep(h-silhouetteEps, h, y+horizonOffset)

	// Height-darkened rock blended against the sky.
	shade := 1 - h*mountainShade
	if shade < mountainFloor {
		shade = mountainFloor
	}
	mr := rockColor[0] * shade
	mg := rockColor[1] * shade
	mb := rockColor[2] * shade
	r = mr + (sr-mr)*mask
	g = mg + (sg-mg)*mask
	b = mb + (sb-mb)*mask

	// Sun bloom: a single point-light falloff term. Unclamped, so the
	// center can blow out; that is the intended look.
	dx := x - glowCenterX
	dy := y - glowCenterY
	glow := glowStrength / (math.Hypot(dx, dy) + 1e-4)
	r += glowColor[0] * glow
	g += glowColor[1] * glow
	b += glowColor[2] * glow

	// Atmospheric fog pulls distant/high terrain back toward the sky.
	fog := smoothstep(fogLow, fogHig, y+h) * fogAmount
	r += (sr - r) * fog
	g += (sg - g) * fog
	b += (sb - b) * fog

	return r, g, b
}

func mix3(a, b [3]float64, t float64) (x, y, z float64) {
	x = a[0] + (b[0]-a[0])*t
	y = a[1] + (b[1]-a[1])*t
	z = a[2] + (b[2]-a[2])*t
	return
}

func smoothstep(edge0, edge1, x float64) float64 {
	t := (x - edge0) / (edge1 - edge0)
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return t * t * (3 - 2*t)
}
