package gpu

import (
	_ "embed"
	"fmt"

	"github.com/gogpu/naga"

	"github.com/gogpu/skyline"
)

// Embedded WGSL shader source, compiled at build time via go:embed.

//go:embed shaders/scene.wgsl
var sceneShaderSource string

// compileToSPIRV compiles WGSL source to a SPIR-V word slice.
// A naga failure is a CompileFailure: the source is static, so the
// error is terminal for the renderer instance.
func compileToSPIRV(wgslSource string) ([]uint32, error) {
	if wgslSource == "" {
		return nil, fmt.Errorf("%w: empty shader source", skyline.ErrCompileFailure)
	}

	spirvBytes, err := naga.Compile(wgslSource)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", skyline.ErrCompileFailure, err)
	}

	// SPIR-V is little-endian 32-bit words.
	spirvCode := make([]uint32, len(spirvBytes)/4)
	for i := range spirvCode {
		spirvCode[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}

	return spirvCode, nil
}

// SceneShaderSource returns the WGSL source for the scene shader.
func SceneShaderSource() string {
	return sceneShaderSource
}
