// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package render defines render targets, draw plans and a software
// rasterizer for helio geometry.
//
// Sessions (tomo.Session, surface viewers) produce ordered draw plans;
// renderers consume them against a target. The software renderer works on
// CPU pixels and needs no graphics device, which keeps compositing order
// and blending testable. GPU-backed rendering reuses the same plan types
// with textures and buffers uploaded through package gpu.
package render

import (
	"github.com/gogpu/helio"
	"github.com/gogpu/helio/mesh"
)

// BlendMode selects how a draw combines with what the target already
// holds.
type BlendMode uint8

const (
	// BlendNone overwrites the target (used for the opaque base shell).
	BlendNone BlendMode = iota

	// BlendAlpha is standard source-over alpha blending.
	BlendAlpha

	// BlendMax keeps the per-channel maximum of source and destination.
	// Prominence bands use it so their brightness only shows where it
	// exceeds what the shells already drew, avoiding a ring artifact
	// bleeding onto the disk face.
	BlendMax
)

// Draw is one element of a render plan: a mesh drawn with a texture under
// a blend mode. DepthWrite controls whether the draw updates the depth
// buffer; outer tomography shells leave it off so they never z-fight while
// still being occluded by the base shell.
type Draw struct {
	Mesh       *mesh.Buffer
	Texture    *Texture
	Blend      BlendMode
	DepthWrite bool
}

// Renderer consumes a draw plan against a target using the given camera.
type Renderer interface {
	Render(target Target, plan []Draw, cam helio.Camera) error
}
