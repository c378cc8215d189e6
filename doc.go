// Package helio provides 3D visualization primitives for solar
// spectroheliograph data.
//
// # Overview
//
// helio turns 2D scalar fields produced by a spectroheliograph processing
// pipeline into renderable geometry and textures:
//
//   - spectral line surfaces: a scalar field of intensity over
//     (slit position × wavelength offset) becomes a closed solid mesh whose
//     height encodes intensity (package mesh)
//   - spherical tomography: a stack of solar disk images at increasing
//     wavelength offsets becomes concentric textured hemispheres composited
//     back to front with alpha and MAX blending (package tomo)
//
// The root package holds the shared vocabulary: scalar fields, intensity
// scale modes, the heat-map gradient, disk ellipses and camera state.
// Rendering back ends live in render (software rasterizer) and gpu (wgpu
// texture/buffer upload). Snapshots and video export live in export.
//
// # Quick Start
//
//	field, _ := helio.NewField(intensities, xPositions, offsets)
//
//	var b mesh.SurfaceBuilder
//	buf, _ := b.Build(field, mesh.SurfaceOptions{
//	    XCount: 128,
//	    ZCount: 128,
//	    Scale:  helio.ScaleLinear,
//	})
//
// # Threading
//
// Graphics state (sessions, targets, GPU handles) is single-threaded by
// design: touch it only from the goroutine that owns the rendering loop.
// Long-running work such as video encoding runs on worker goroutines and
// requests frames through export.FrameServer.
package helio
