package gpu

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/gogpu/skyline"
)

func TestFrameParamsSize(t *testing.T) {
	// The WGSL Params block is 8 scalar fields of 4 bytes; any padding
	// drift between the Go struct and the shader corrupts every uniform
	// after the mismatch.
	if frameParamsSize != 32 {
		t.Fatalf("frameParamsSize = %d, want 32", frameParamsSize)
	}
}

func TestPackFrameParamsLayout(t *testing.T) {
	in := skyline.FrameInput{
		Elapsed: 2.5,
		Width:   1280,
		Height:  720,
		Speed:   1.5,
		Octaves: 5,
		Scale:   2,
	}
	b := packFrameParams(in)
	if len(b) != 32 {
		t.Fatalf("packed length = %d, want 32", len(b))
	}

	le := binary.LittleEndian
	if got := le.Uint32(b[0:]); got != 1280 {
		t.Errorf("width word = %d, want 1280", got)
	}
	if got := le.Uint32(b[4:]); got != 720 {
		t.Errorf("height word = %d, want 720", got)
	}
	if got := le.Uint32(b[8:]); got != 5 {
		t.Errorf("octaves word = %d, want 5", got)
	}
	if got := math.Float32frombits(le.Uint32(b[16:])); got != 2.5 {
		t.Errorf("time word = %v, want 2.5", got)
	}
	if got := math.Float32frombits(le.Uint32(b[20:])); got != 1.5 {
		t.Errorf("speed word = %v, want 1.5", got)
	}
	if got := math.Float32frombits(le.Uint32(b[24:])); got != 2 {
		t.Errorf("scale word = %v, want 2", got)
	}
}

func TestPackFrameParamsFloorsNegativeOctaves(t *testing.T) {
	b := packFrameParams(skyline.FrameInput{Octaves: -7})
	if got := binary.LittleEndian.Uint32(b[8:]); got != 0 {
		t.Errorf("octaves word = %d, want 0 for negative input", got)
	}
}
