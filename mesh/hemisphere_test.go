// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package mesh

import (
	"math"
	"testing"

	"github.com/gogpu/helio"
)

func TestHemisphereGeometry(t *testing.T) {
	const radius = 2.0
	buf := Hemisphere(HemisphereOptions{
		Radius:      radius,
		Divisions:   16,
		Disk:        helio.CenteredDisk(100, 100),
		ImageWidth:  100,
		ImageHeight: 100,
	})
	if err := buf.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if buf.TriangleCount() == 0 {
		t.Fatal("no triangles emitted")
	}
	if len(buf.Faces)%3 != 0 {
		t.Fatalf("face count %d not a multiple of 3", len(buf.Faces))
	}

	for i := 0; i < buf.VertexCount(); i++ {
		x := float64(buf.Positions[i*3])
		y := float64(buf.Positions[i*3+1])
		z := float64(buf.Positions[i*3+2])

		// Front half only: depth never goes behind the limb plane.
		if z < 0 {
			t.Fatalf("vertex %d has z = %v, want >= 0", i, z)
		}
		// Every vertex sits on the sphere of the shell radius.
		r := math.Sqrt(x*x + y*y + z*z)
		if math.Abs(r-radius) > 1e-3 {
			t.Fatalf("vertex %d at distance %v, want %v", i, r, radius)
		}

		u := buf.TexCoords[i*2]
		v := buf.TexCoords[i*2+1]
		if u < 0 || u > 1 || v < 0 || v > 1 {
			t.Fatalf("vertex %d UV (%v, %v) outside [0, 1]", i, u, v)
		}
	}
}

// Corner cells of the [-1, 1]² sweep lie entirely outside the unit disk
// and are skipped, so the hemisphere has fewer triangles than the full
// grid would.
func TestHemisphereSkipsOutsideCells(t *testing.T) {
	const div = 16
	buf := Hemisphere(HemisphereOptions{
		Radius:      1,
		Divisions:   div,
		Disk:        helio.CenteredDisk(64, 64),
		ImageWidth:  64,
		ImageHeight: 64,
	})
	if got, full := buf.TriangleCount(), div*div*2; got >= full {
		t.Errorf("TriangleCount = %d, want fewer than the full grid's %d", got, full)
	}
}

func TestHemisphereDefaultDivisions(t *testing.T) {
	opts := HemisphereOptions{Divisions: 0}
	if got := opts.divisions(); got != DefaultDivisions {
		t.Errorf("divisions() = %d, want %d", got, DefaultDivisions)
	}
	opts.Divisions = 1
	if got := opts.divisions(); got != DefaultDivisions {
		t.Errorf("divisions() = %d, want %d", got, DefaultDivisions)
	}
}

func TestProminenceBandGeometry(t *testing.T) {
	const radius = 1.5
	// The disk must sit well inside the frame so the band's UV footprint
	// stays in range.
	buf := ProminenceBand(BandOptions{
		Radius:      radius,
		Divisions:   32,
		RadialSteps: 4,
		MaxExtent:   1.25,
		Disk:        helio.Disk{CenterX: 50, CenterY: 50, SemiX: 25, SemiY: 25},
		ImageWidth:  100,
		ImageHeight: 100,
	})
	if err := buf.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if buf.TriangleCount() == 0 {
		t.Fatal("no triangles emitted")
	}

	wantZ := float32(0.01 * radius)
	for i := 0; i < buf.VertexCount(); i++ {
		x := float64(buf.Positions[i*3])
		y := float64(buf.Positions[i*3+1])
		z := buf.Positions[i*3+2]

		// The band is flat, floating just in front of the limb plane.
		if z != wantZ {
			t.Fatalf("vertex %d z = %v, want %v", i, z, wantZ)
		}

		// Radial extent spans [radius, radius*maxExtent].
		r := math.Sqrt(x*x + y*y)
		if r < radius-1e-3 || r > radius*1.25+1e-3 {
			t.Fatalf("vertex %d at radial distance %v, want within [%v, %v]",
				i, r, radius, radius*1.25)
		}

		u := buf.TexCoords[i*2]
		v := buf.TexCoords[i*2+1]
		if u < 0 || u > 1 || v < 0 || v > 1 {
			t.Fatalf("vertex %d UV (%v, %v) outside [0, 1]", i, u, v)
		}
	}
}

// Quads whose texture footprint leaves the source frame are dropped, not
// clamped: a disk near the frame edge yields a band with a gap instead of
// smeared border pixels.
func TestProminenceBandDropsOutOfFrameQuads(t *testing.T) {
	centered := ProminenceBand(BandOptions{
		Radius: 1, Divisions: 32, RadialSteps: 4,
		Disk:       helio.Disk{CenterX: 50, CenterY: 50, SemiX: 25, SemiY: 25},
		ImageWidth: 100, ImageHeight: 100,
	})
	offCenter := ProminenceBand(BandOptions{
		Radius: 1, Divisions: 32, RadialSteps: 4,
		Disk:       helio.Disk{CenterX: 10, CenterY: 50, SemiX: 25, SemiY: 25},
		ImageWidth: 100, ImageHeight: 100,
	})
	if offCenter.TriangleCount() >= centered.TriangleCount() {
		t.Errorf("off-center band has %d triangles, centered has %d; want fewer",
			offCenter.TriangleCount(), centered.TriangleCount())
	}
}

func TestBandDefaults(t *testing.T) {
	o := BandOptions{}.defaults()
	if o.Divisions != DefaultDivisions {
		t.Errorf("Divisions = %d, want %d", o.Divisions, DefaultDivisions)
	}
	if o.RadialSteps != 8 {
		t.Errorf("RadialSteps = %d, want 8", o.RadialSteps)
	}
	if o.MaxExtent != 1.25 {
		t.Errorf("MaxExtent = %v, want 1.25", o.MaxExtent)
	}
}
