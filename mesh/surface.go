// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package mesh

import (
	"errors"
	"fmt"

	"github.com/gogpu/helio"
)

// SurfaceSize is the footprint of a spectral surface in 3D units. Surface
// heights span half of it, so the solid fits a cube of this size.
const SurfaceSize = 400.0

// HeightScale is the multiplier from scaled intensity to vertex height.
const HeightScale = SurfaceSize * 0.5

// ErrResolutionTooLow is returned when a requested mesh resolution has
// fewer than two samples on an axis. A single-sample axis has no quads and
// a zero-length spacing divisor.
var ErrResolutionTooLow = errors.New("mesh: surface resolution must be at least 2x2")

// SurfaceOptions configures a surface build.
type SurfaceOptions struct {
	// XCount and ZCount are the mesh resolution. When they differ from the
	// field dimensions, the field is subsampled by integer-ratio index
	// mapping. Both must be at least 2.
	XCount, ZCount int

	// Scale transforms normalized intensity before it drives height and
	// color.
	Scale helio.ScaleMode

	// PreserveAspect shrinks the smaller-range axis so the footprint
	// matches the data's physical aspect ratio. Ignored when either axis
	// range is zero.
	PreserveAspect bool
}

// SurfaceBuilder builds closed spectral surface solids: a height-mapped top
// grid, four side walls, and a flat bottom, so the surface reads as a slab
// from any angle instead of a see-through sheet.
//
// The builder caches the last buffer it produced. A rebuild at the same
// (XCount, ZCount) mutates that buffer's positions and texcoords in place
// and leaves the face array untouched, which keeps interactive scale and
// slider changes allocation-free. Any resolution change discards the cache.
//
// A SurfaceBuilder is not safe for concurrent use.
type SurfaceBuilder struct {
	buf        *Buffer
	lastXCount int
	lastZCount int
}

// Invalidate drops the cached buffer, forcing the next Build to allocate.
func (sb *SurfaceBuilder) Invalidate() {
	sb.buf = nil
	sb.lastXCount = 0
	sb.lastZCount = 0
}

// SurfaceExtent returns the 3D footprint for a field under the given
// options: SurfaceSize on both axes, with the smaller-range axis shrunk
// proportionally when aspect preservation is on. Zero-range axes disable
// aspect correction.
func SurfaceExtent(f *helio.Field, opts SurfaceOptions) (xSize, zSize float32) {
	xSize, zSize = SurfaceSize, SurfaceSize
	if !opts.PreserveAspect {
		return xSize, zSize
	}
	xRange, zRange := f.XRange(), f.ZRange()
	if xRange == 0 || zRange == 0 {
		return xSize, zSize
	}
	aspect := xRange / zRange
	if aspect > 1 {
		zSize = float32(SurfaceSize / aspect)
	} else {
		xSize = float32(SurfaceSize * aspect)
	}
	return xSize, zSize
}

// Build produces the surface solid for a field. The returned buffer is
// owned by the builder: it is reused across builds at the same resolution
// (pointer identity preserved) and must not be retained past the next Build
// or Invalidate call.
func (sb *SurfaceBuilder) Build(f *helio.Field, opts SurfaceOptions) (*Buffer, error) {
	if opts.XCount < 2 || opts.ZCount < 2 {
		return nil, fmt.Errorf("%w: got %dx%d", ErrResolutionTooLow, opts.XCount, opts.ZCount)
	}

	reuse := sb.buf != nil && sb.lastXCount == opts.XCount && sb.lastZCount == opts.ZCount
	if !reuse {
		sb.buf = NewBuffer(surfaceVertexCount(opts.XCount, opts.ZCount),
			surfaceTriangleCount(opts.XCount, opts.ZCount))
		sb.lastXCount = opts.XCount
		sb.lastZCount = opts.ZCount
		sb.writeFaces(opts.XCount, opts.ZCount)
	}
	sb.writeVertices(f, opts)
	return sb.buf, nil
}

func surfaceVertexCount(xCount, zCount int) int {
	surface := xCount * zCount
	walls := xCount*4 + zCount*4
	return surface + walls + 4
}

func surfaceTriangleCount(xCount, zCount int) int {
	surface := (xCount - 1) * (zCount - 1) * 2
	walls := ((xCount-1)*2 + (zCount-1)*2) * 2
	return surface + walls + 2
}

// srcIndex maps a mesh grid index to a source sample index. When the mesh
// resolution equals the source resolution the mapping is the identity,
// avoiding integer-division resampling error.
func srcIndex(i, meshCount, fullCount int) int {
	if meshCount == fullCount {
		return i
	}
	return i * (fullCount - 1) / (meshCount - 1)
}

// writeVertices fills positions and texcoords. Surface vertices carry
// height scale(normalized)*HeightScale and texcoord (scaled, 0.5) so a 1D
// color ramp texture acts as the material; wall bottom and floor vertices
// pin height to zero with texcoord (0, 0.5).
func (sb *SurfaceBuilder) writeVertices(f *helio.Field, opts SurfaceOptions) {
	xCount, zCount := opts.XCount, opts.ZCount
	fullX, fullZ := f.Width(), f.Height()
	xSize, zSize := SurfaceExtent(f, opts)

	xStep := xSize / float32(xCount-1)
	zStep := zSize / float32(zCount-1)

	scaled := func(x, z int) float32 {
		return float32(opts.Scale.Apply(f.NormalizedIntensity(x, z)))
	}

	idx := 0

	// Top surface grid, z-major.
	for z := 0; z < zCount; z++ {
		sz := srcIndex(z, zCount, fullZ)
		zPos := float32(z) * zStep
		for x := 0; x < xCount; x++ {
			sx := srcIndex(x, xCount, fullX)
			s := scaled(sx, sz)
			sb.buf.setVertex(idx, float32(x)*xStep, s*HeightScale, zPos, s, 0.5)
			idx++
		}
	}

	srcZBack := srcIndex(zCount-1, zCount, fullZ)
	srcXRight := srcIndex(xCount-1, xCount, fullX)

	// Front and back walls: top/bottom vertex pairs along x.
	for x := 0; x < xCount; x++ {
		sx := srcIndex(x, xCount, fullX)
		xPos := float32(x) * xStep

		front := scaled(sx, 0)
		sb.buf.setVertex(idx, xPos, front*HeightScale, 0, front, 0.5)
		idx++
		sb.buf.setVertex(idx, xPos, 0, 0, 0, 0.5)
		idx++

		back := scaled(sx, srcZBack)
		sb.buf.setVertex(idx, xPos, back*HeightScale, zSize, back, 0.5)
		idx++
		sb.buf.setVertex(idx, xPos, 0, zSize, 0, 0.5)
		idx++
	}

	// Left and right walls: top/bottom vertex pairs along z.
	for z := 0; z < zCount; z++ {
		sz := srcIndex(z, zCount, fullZ)
		zPos := float32(z) * zStep

		left := scaled(0, sz)
		sb.buf.setVertex(idx, 0, left*HeightScale, zPos, left, 0.5)
		idx++
		sb.buf.setVertex(idx, 0, 0, zPos, 0, 0.5)
		idx++

		right := scaled(srcXRight, sz)
		sb.buf.setVertex(idx, xSize, right*HeightScale, zPos, right, 0.5)
		idx++
		sb.buf.setVertex(idx, xSize, 0, zPos, 0, 0.5)
		idx++
	}

	// Bottom corners.
	sb.buf.setVertex(idx, 0, 0, 0, 0, 0.5)
	idx++
	sb.buf.setVertex(idx, xSize, 0, 0, 0, 0.5)
	idx++
	sb.buf.setVertex(idx, xSize, 0, zSize, 0, 0.5)
	idx++
	sb.buf.setVertex(idx, 0, 0, zSize, 0, 0.5)
}

// writeFaces triangulates the solid. Called only on (re)allocation: face
// topology depends solely on the resolution, never on the data.
func (sb *SurfaceBuilder) writeFaces(xCount, zCount int) {
	faces := sb.buf.Faces
	fi := 0
	tri := func(a, b, c int) {
		faces[fi+0] = uint32(a)
		faces[fi+1] = uint32(b)
		faces[fi+2] = uint32(c)
		fi += 3
	}

	// Top surface: two triangles per quad.
	for z := 0; z < zCount-1; z++ {
		row := z * xCount
		next := (z + 1) * xCount
		for x := 0; x < xCount-1; x++ {
			p00 := row + x
			p10 := p00 + 1
			p01 := next + x
			p11 := p01 + 1
			tri(p00, p10, p11)
			tri(p00, p11, p01)
		}
	}

	wallBase := xCount * zCount

	// Front wall: vertices interleave (frontTop, frontBottom, backTop,
	// backBottom) per x column.
	for x := 0; x < xCount-1; x++ {
		topLeft := wallBase + x*4
		bottomLeft := topLeft + 1
		topRight := wallBase + (x+1)*4
		bottomRight := topRight + 1
		tri(topLeft, bottomLeft, bottomRight)
		tri(topLeft, bottomRight, topRight)
	}

	// Back wall, wound the other way so it faces outward.
	backBase := wallBase + 2
	for x := 0; x < xCount-1; x++ {
		topLeft := backBase + x*4
		bottomLeft := topLeft + 1
		topRight := backBase + (x+1)*4
		bottomRight := topRight + 1
		tri(topLeft, topRight, bottomRight)
		tri(topLeft, bottomRight, bottomLeft)
	}

	// Left wall.
	sideBase := wallBase + xCount*4
	for z := 0; z < zCount-1; z++ {
		topLeft := sideBase + z*4
		bottomLeft := topLeft + 1
		topRight := sideBase + (z+1)*4
		bottomRight := topRight + 1
		tri(topLeft, topRight, bottomRight)
		tri(topLeft, bottomRight, bottomLeft)
	}

	// Right wall.
	rightBase := sideBase + 2
	for z := 0; z < zCount-1; z++ {
		topLeft := rightBase + z*4
		bottomLeft := topLeft + 1
		topRight := rightBase + (z+1)*4
		bottomRight := topRight + 1
		tri(topLeft, bottomLeft, bottomRight)
		tri(topLeft, bottomRight, topRight)
	}

	// Bottom slab.
	bottomBase := wallBase + xCount*4 + zCount*4
	tri(bottomBase, bottomBase+1, bottomBase+2)
	tri(bottomBase, bottomBase+2, bottomBase+3)
}
