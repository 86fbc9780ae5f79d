// Package skyline renders an animated procedural mountain/sky scene.
//
// # Overview
//
// skyline synthesizes a drifting fractal terrain silhouette under a
// gradient sky from hash-based value noise — no textures, no meshes,
// no external assets. The pixel program (noise kernel, fractal
// accumulation, scene compositing) runs as a WGSL compute shader on the
// GoGPU WebGPU stack; a bit-equivalent CPU implementation backs the
// test suite and offline rendering.
//
// # Quick Start
//
//	import (
//	    "github.com/gogpu/skyline"
//	    _ "github.com/gogpu/skyline/gpu" // enable GPU rendering
//	)
//
//	r, err := skyline.New(skyline.WithOctaves(5), skyline.WithSpeed(1))
//	if err != nil {
//	    // EnvironmentUnsupported / CompileFailure / LinkFailure:
//	    // show an error panel instead of the scene.
//	}
//	r.SetClientSize(800, 450, 2) // backing store becomes 1600x900
//	r.OnFrame(func(frame *skyline.Pixmap) { present(frame) })
//	r.Start()
//	defer r.Close()
//
// # Architecture
//
//   - Public API: Renderer, Params, Program, Pixmap, RGBA
//   - scene: the compositor (CPU reference for the shader)
//   - internal/noise: hash kernel and FBM accumulation
//   - internal/gpu: WGSL pipeline on gogpu/wgpu
//
// # Coordinate System
//
// The compositor works in normalized scene coordinates: origin at the
// screen center, y up, x scaled so that one unit equals the viewport
// height (aspect-corrected). Pixmap output uses the usual raster
// layout, origin top-left, y down.
//
// # Failure Model
//
// Renderer construction fails fast: a missing GPU environment, a shader
// that does not compile, or a pipeline that does not link are terminal
// for the instance and are never retried. There is no automatic CPU
// fallback; NewSoftwareProgram is an explicit choice.
package skyline

// Version information
const (
	// Version is the current version of the library
	Version = "0.2.0"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 2

	// VersionPatch is the patch version
	VersionPatch = 0
)
