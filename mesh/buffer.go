// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package mesh builds procedural geometry for solar visualization: closed
// spectral surface solids, textured hemispheres and prominence bands.
//
// All builders emit a [Buffer], a plain vertex/texcoord/face triple with no
// graphics-API dependency. Back ends (render.Software, gpu.Uploader) consume
// buffers without knowing how they were produced.
package mesh

import (
	"errors"
	"fmt"
)

// Buffer errors.
var (
	// ErrTexCoordMismatch is returned when the texcoord count does not
	// match the vertex count.
	ErrTexCoordMismatch = errors.New("mesh: texcoord count does not match vertex count")

	// ErrFaceIndexRange is returned when a face references a vertex that
	// does not exist.
	ErrFaceIndexRange = errors.New("mesh: face index out of range")

	// ErrBufferShape is returned when position, texcoord or face slices
	// have lengths that are not multiples of their element size.
	ErrBufferShape = errors.New("mesh: buffer slice length is not a multiple of its element size")
)

// Buffer holds mesh geometry: vertex positions as (x, y, z) triples,
// texture coordinates as (u, v) pairs, and triangle faces as vertex index
// triples. Texture coordinates index in lockstep with positions, so
// len(TexCoords)/2 always equals len(Positions)/3.
//
// A Buffer is ownership-exclusive: builders either allocate a fresh one or
// mutate Positions and TexCoords of one they previously produced, but Faces
// are never rewritten in place. Rewriting positions while keeping faces is
// the cheap path for interactive parameter changes.
type Buffer struct {
	Positions []float32
	TexCoords []float32
	Faces     []uint32
}

// NewBuffer allocates a buffer sized for the given vertex and triangle
// counts.
func NewBuffer(vertices, triangles int) *Buffer {
	return &Buffer{
		Positions: make([]float32, vertices*3),
		TexCoords: make([]float32, vertices*2),
		Faces:     make([]uint32, triangles*3),
	}
}

// VertexCount returns the number of vertices.
func (b *Buffer) VertexCount() int { return len(b.Positions) / 3 }

// TriangleCount returns the number of triangle faces.
func (b *Buffer) TriangleCount() int { return len(b.Faces) / 3 }

// Validate checks the buffer invariants: slice shapes, texcoord/vertex
// lockstep, and face index bounds.
func (b *Buffer) Validate() error {
	if len(b.Positions)%3 != 0 || len(b.TexCoords)%2 != 0 || len(b.Faces)%3 != 0 {
		return ErrBufferShape
	}
	if len(b.TexCoords)/2 != len(b.Positions)/3 {
		return fmt.Errorf("%w: %d texcoords for %d vertices",
			ErrTexCoordMismatch, len(b.TexCoords)/2, len(b.Positions)/3)
	}
	n := uint32(b.VertexCount())
	for i, idx := range b.Faces {
		if idx >= n {
			return fmt.Errorf("%w: face element %d references vertex %d of %d",
				ErrFaceIndexRange, i, idx, n)
		}
	}
	return nil
}

// setVertex writes position (x, y, z) and texcoord (u, v) for vertex i.
func (b *Buffer) setVertex(i int, x, y, z, u, v float32) {
	b.Positions[i*3+0] = x
	b.Positions[i*3+1] = y
	b.Positions[i*3+2] = z
	b.TexCoords[i*2+0] = u
	b.TexCoords[i*2+1] = v
}
