package gpu

import (
	"unsafe"

	"github.com/gogpu/skyline"
)

// frameParams mirrors the Params uniform block in shaders/scene.wgsl.
// Field order and padding must match the WGSL struct layout exactly.
type frameParams struct {
	Width   uint32
	Height  uint32
	Octaves uint32
	Pad0    uint32
	Time    float32
	Speed   float32
	Scale   float32
	Pad1    float32
}

// frameParamsSize is the byte size of the uniform block.
const frameParamsSize = uint64(unsafe.Sizeof(frameParams{}))

// packFrameParams serializes a FrameInput for uniform upload. Negative
// octave counts are floored at zero; counts above the shader's fixed
// loop bound are truncated by the loop itself.
func packFrameParams(in skyline.FrameInput) []byte {
	octaves := in.Octaves
	if octaves < 0 {
		octaves = 0
	}
	p := frameParams{
		Width:   uint32(in.Width),  //nolint:gosec // dimensions always fit uint32
		Height:  uint32(in.Height), //nolint:gosec // dimensions always fit uint32
		Octaves: uint32(octaves),   //nolint:gosec // floored at zero above
		Time:    float32(in.Elapsed),
		Speed:   float32(in.Speed),
		Scale:   float32(in.Scale),
	}
	return structToBytes(unsafe.Pointer(&p), unsafe.Sizeof(p)) //nolint:gosec // safe struct access
}

func structToBytes(ptr unsafe.Pointer, size uintptr) []byte {
	b := make([]byte, size)
	copy(b, unsafe.Slice((*byte)(ptr), size)) //nolint:gosec // safe struct serialization
	return b
}
