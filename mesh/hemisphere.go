// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package mesh

import (
	"github.com/chewxy/math32"

	"github.com/gogpu/helio"
)

// DefaultDivisions is the hemisphere grid resolution used by viewer
// sessions. Tests use coarser grids.
const DefaultDivisions = 256

// HemisphereOptions configures hemisphere geometry for one shell.
type HemisphereOptions struct {
	// Radius is the hemisphere radius in world units.
	Radius float32

	// Divisions is the grid resolution across the disk diameter. Values
	// below 2 fall back to DefaultDivisions.
	Divisions int

	// Disk maps normalized surface coordinates to source-image texture
	// coordinates.
	Disk helio.Disk

	// ImageWidth and ImageHeight are the source texture dimensions the
	// disk mapping is expressed against.
	ImageWidth, ImageHeight int
}

func (o HemisphereOptions) divisions() int {
	if o.Divisions < 2 {
		return DefaultDivisions
	}
	return o.Divisions
}

// Hemisphere rasterizes the front half of a sphere over a unit-disk grid.
// The (x, y) plane in [-1, 1]² is swept on a fixed grid; cells entirely
// outside the unit disk are skipped, vertices outside it are projected
// radially back onto the circle with z pinned to zero, and inside vertices
// get z = sqrt(1-x²-y²). UVs come from the disk ellipse mapping, so the
// source disk image wraps onto the curved surface wherever the disk sits in
// the frame.
//
// Geometry is emitted as independent triangles (no vertex sharing): the
// limb clamping makes shared-vertex topology irregular, and the buffer is
// uploaded once per rebuild, not per frame.
func Hemisphere(opts HemisphereOptions) *Buffer {
	div := opts.divisions()
	step := 2.0 / float32(div)

	buf := &Buffer{}
	emit := func(nx, ny float32) {
		px, py := nx, ny
		var z float32
		rsq := nx*nx + ny*ny
		if rsq >= 1 {
			s := 1 / math32.Sqrt(rsq)
			px, py = nx*s, ny*s
		} else {
			z = math32.Sqrt(1 - rsq)
		}
		u, v := opts.Disk.UV(float64(nx), float64(ny), opts.ImageWidth, opts.ImageHeight)
		buf.Faces = append(buf.Faces, uint32(buf.VertexCount()))
		buf.Positions = append(buf.Positions, px*opts.Radius, py*opts.Radius, z*opts.Radius)
		buf.TexCoords = append(buf.TexCoords, float32(u), float32(v))
	}

	for i := 0; i < div; i++ {
		nx1 := -1 + float32(i)*step
		nx2 := -1 + float32(i+1)*step
		for j := 0; j < div; j++ {
			ny1 := -1 + float32(j)*step
			ny2 := -1 + float32(j+1)*step

			r1 := nx1*nx1 + ny1*ny1
			r2 := nx2*nx2 + ny1*ny1
			r3 := nx2*nx2 + ny2*ny2
			r4 := nx1*nx1 + ny2*ny2
			if r1 > 1 && r2 > 1 && r3 > 1 && r4 > 1 {
				continue
			}

			emit(nx1, ny1)
			emit(nx2, ny1)
			emit(nx2, ny2)

			emit(nx1, ny1)
			emit(nx2, ny2)
			emit(nx1, ny2)
		}
	}
	return buf
}

// BandOptions configures a prominence band.
type BandOptions struct {
	// Radius is the limb radius the band starts from, normally the
	// outermost shell's.
	Radius float32

	// Divisions controls tessellation: the band uses twice this many
	// angular segments. Values below 2 fall back to DefaultDivisions.
	Divisions int

	// RadialSteps subdivides the band radially. Values below 1 fall back
	// to 8.
	RadialSteps int

	// MaxExtent is the outer edge as a multiple of Radius. Values at or
	// below 1 fall back to 1.25, matching how far beyond the limb the
	// source frames carry usable prominence signal.
	MaxExtent float32

	// Disk, ImageWidth and ImageHeight define the texture mapping, as in
	// HemisphereOptions.
	Disk                    helio.Disk
	ImageWidth, ImageHeight int
}

func (o BandOptions) defaults() BandOptions {
	if o.Divisions < 2 {
		o.Divisions = DefaultDivisions
	}
	if o.RadialSteps < 1 {
		o.RadialSteps = 8
	}
	if o.MaxExtent <= 1 {
		o.MaxExtent = 1.25
	}
	return o
}

// ProminenceBand builds the flat radial ring that carries prominence data
// beyond the disk edge. It sits at a constant z offset just in front of the
// limb plane and samples the source image from the disk edge outward; quads
// whose UVs leave [0, 1] are dropped rather than clamped, so frame borders
// never smear into the ring. The band is meant to be drawn with MAX
// blending so prominence brightness only shows where it exceeds what the
// shells already drew.
func ProminenceBand(opts BandOptions) *Buffer {
	opts = opts.defaults()
	angular := opts.Divisions * 2
	zOffset := 0.01 * opts.Radius

	buf := &Buffer{}
	emit := func(x, y, u, v float32) {
		buf.Faces = append(buf.Faces, uint32(buf.VertexCount()))
		buf.Positions = append(buf.Positions, x, y, zOffset)
		buf.TexCoords = append(buf.TexCoords, u, v)
	}

	cu := float32(opts.Disk.CenterX / float64(opts.ImageWidth))
	cv := float32(opts.Disk.CenterY / float64(opts.ImageHeight))
	ru := float32(opts.Disk.SemiX / float64(opts.ImageWidth))
	rv := float32(opts.Disk.SemiY / float64(opts.ImageHeight))

	for i := 0; i < angular; i++ {
		a1 := 2 * math32.Pi * float32(i) / float32(angular)
		a2 := 2 * math32.Pi * float32(i+1) / float32(angular)
		cos1, sin1 := math32.Cos(a1), math32.Sin(a1)
		cos2, sin2 := math32.Cos(a2), math32.Sin(a2)

		for j := 0; j < opts.RadialSteps; j++ {
			t1 := float32(j) / float32(opts.RadialSteps)
			t2 := float32(j+1) / float32(opts.RadialSteps)

			// Image sampling runs from the disk edge (1.0) outward.
			imgR1 := 1 + t1*(opts.MaxExtent-1)
			imgR2 := 1 + t2*(opts.MaxExtent-1)

			u1 := cu + cos1*imgR1*ru
			v1 := cv - sin1*imgR1*rv
			u2 := cu + cos2*imgR1*ru
			v2 := cv - sin2*imgR1*rv
			u3 := cu + cos2*imgR2*ru
			v3 := cv - sin2*imgR2*rv
			u4 := cu + cos1*imgR2*ru
			v4 := cv - sin1*imgR2*rv

			if outsideUnit(u1, v1) || outsideUnit(u2, v2) ||
				outsideUnit(u3, v3) || outsideUnit(u4, v4) {
				continue
			}

			r1 := opts.Radius * imgR1
			r2 := opts.Radius * imgR2

			emit(cos1*r1, sin1*r1, u1, v1)
			emit(cos2*r1, sin2*r1, u2, v2)
			emit(cos2*r2, sin2*r2, u3, v3)

			emit(cos1*r1, sin1*r1, u1, v1)
			emit(cos2*r2, sin2*r2, u3, v3)
			emit(cos1*r2, sin1*r2, u4, v4)
		}
	}
	return buf
}

func outsideUnit(u, v float32) bool {
	return u < 0 || u > 1 || v < 0 || v > 1
}
