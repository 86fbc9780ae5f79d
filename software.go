package skyline

import (
	"errors"

	"github.com/gogpu/skyline/scene"
)

// SoftwareProgram is the CPU reference implementation of the scene
// shader. It computes the same noise, FBM, and compositing math as the
// WGSL pipeline, pixel by pixel.
//
// It exists for tests, offline snapshots, and hosts without a GPU
// requirement — it is never used as an automatic fallback.
type SoftwareProgram struct {
	comp    *scene.Compositor
	speed   float64
	octaves int
	scale   float64
}

var _ Program = (*SoftwareProgram)(nil)

// NewSoftwareProgram creates the CPU reference program.
func NewSoftwareProgram() *SoftwareProgram {
	return &SoftwareProgram{}
}

// Render fills dst with one frame of the scene. The compositor is
// rebuilt only when the frame parameters change.
func (p *SoftwareProgram) Render(dst *Pixmap, in FrameInput) error {
	if dst == nil {
		return errors.New("skyline: nil render target")
	}
	w, h := dst.Width(), dst.Height()
	if w <= 0 || h <= 0 {
		return nil
	}

	if p.comp == nil || p.speed != in.Speed || p.octaves != in.Octaves || p.scale != in.Scale {
		p.comp = scene.New(in.Speed, in.Octaves, in.Scale)
		p.speed = in.Speed
		p.octaves = in.Octaves
		p.scale = in.Scale
	}

	fh := float64(h)
	fw := float64(w)
	for py := 0; py < h; py++ {
		// Normalized scene coordinate: origin centered, y up,
		// aspect-corrected by the viewport height.
		ny := (0.5*fh - (float64(py) + 0.5)) / fh
		for px := 0; px < w; px++ {
			nx := ((float64(px) + 0.5) - 0.5*fw) / fh
			cr, cg, cb := p.comp.ColorAt(nx, ny, in.Elapsed)
			dst.SetPixel(px, py, RGBA{R: cr, G: cg, B: cb, A: 1})
		}
	}
	return nil
}

// Close releases nothing; the CPU program holds no external resources.
func (p *SoftwareProgram) Close() {}
