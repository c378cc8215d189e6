// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package mesh

import (
	"errors"
	"math"
	"testing"

	"github.com/gogpu/helio"
)

func uniformField(t *testing.T, w, h int, v float32) *helio.Field {
	t.Helper()
	samples := make([][]float32, h)
	for z := range samples {
		samples[z] = make([]float32, w)
		for x := range samples[z] {
			samples[z][x] = v
		}
	}
	f, err := helio.NewField(samples, nil, nil)
	if err != nil {
		t.Fatalf("NewField: %v", err)
	}
	return f
}

func TestSurfaceBuildCounts(t *testing.T) {
	f := uniformField(t, 4, 4, 1)
	var sb SurfaceBuilder
	buf, err := sb.Build(f, SurfaceOptions{XCount: 4, ZCount: 4})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	// 16 surface + 32 wall + 4 bottom vertices.
	if got := buf.VertexCount(); got != 52 {
		t.Errorf("VertexCount = %d, want 52", got)
	}
	// 18 surface + 24 wall + 2 bottom triangles.
	if got := buf.TriangleCount(); got != 44 {
		t.Errorf("TriangleCount = %d, want 44", got)
	}
	if err := buf.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

// A flat field normalizes to 0.5 everywhere, so every surface vertex sits
// at exactly half the height scale while wall bottoms and the floor stay
// at zero.
func TestSurfaceBuildUniformHeights(t *testing.T) {
	f := uniformField(t, 4, 4, 3)
	var sb SurfaceBuilder
	buf, err := sb.Build(f, SurfaceOptions{XCount: 4, ZCount: 4})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	const wantTop = 0.5 * HeightScale
	for i := 0; i < 16; i++ {
		if y := buf.Positions[i*3+1]; y != wantTop {
			t.Errorf("surface vertex %d height = %v, want %v", i, y, wantTop)
		}
		if u := buf.TexCoords[i*2]; u != 0.5 {
			t.Errorf("surface vertex %d texcoord u = %v, want 0.5", i, u)
		}
	}

	// Walls interleave top, bottom per sample column.
	for i := 16; i < 48; i++ {
		y := buf.Positions[i*3+1]
		if (i-16)%2 == 0 {
			if y != wantTop {
				t.Errorf("wall top vertex %d height = %v, want %v", i, y, wantTop)
			}
		} else if y != 0 {
			t.Errorf("wall bottom vertex %d height = %v, want 0", i, y)
		}
	}

	for i := 48; i < 52; i++ {
		if y := buf.Positions[i*3+1]; y != 0 {
			t.Errorf("floor vertex %d height = %v, want 0", i, y)
		}
	}
}

func TestSurfaceBuildScaleAffectsHeight(t *testing.T) {
	samples := [][]float32{
		{0, 1},
		{0, 1},
	}
	f, err := helio.NewField(samples, nil, nil)
	if err != nil {
		t.Fatalf("NewField: %v", err)
	}

	var sb SurfaceBuilder
	linear, err := sb.Build(f, SurfaceOptions{XCount: 2, ZCount: 2, Scale: helio.ScaleLinear})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	// Vertex 1 samples intensity 1; heights at the endpoints agree across
	// scale modes.
	if y := linear.Positions[1*3+1]; y != HeightScale {
		t.Errorf("linear height = %v, want %v", y, float32(HeightScale))
	}

	var sb2 SurfaceBuilder
	squared, err := sb2.Build(f, SurfaceOptions{XCount: 2, ZCount: 2, Scale: helio.ScaleSquare})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if y := squared.Positions[1*3+1]; y != HeightScale {
		t.Errorf("squared height = %v, want %v", y, float32(HeightScale))
	}
}

// Rebuilding at the same resolution reuses the buffer and leaves the face
// array untouched; topology depends only on resolution.
func TestSurfaceBuildCacheReuse(t *testing.T) {
	var sb SurfaceBuilder
	opts := SurfaceOptions{XCount: 4, ZCount: 4}

	first, err := sb.Build(uniformField(t, 4, 4, 1), opts)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	facesBefore := append([]uint32(nil), first.Faces...)

	second, err := sb.Build(uniformField(t, 8, 8, 2), opts)
	if err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	if first != second {
		t.Fatal("rebuild at same resolution allocated a new buffer")
	}
	if &first.Faces[0] != &second.Faces[0] {
		t.Error("face array was reallocated")
	}
	for i, f := range facesBefore {
		if second.Faces[i] != f {
			t.Fatalf("face element %d changed: %d -> %d", i, f, second.Faces[i])
		}
	}

	third, err := sb.Build(uniformField(t, 4, 4, 1), SurfaceOptions{XCount: 5, ZCount: 4})
	if err != nil {
		t.Fatalf("resize build: %v", err)
	}
	if third == second {
		t.Error("resolution change did not allocate a new buffer")
	}
}

func TestSurfaceBuildInvalidate(t *testing.T) {
	var sb SurfaceBuilder
	opts := SurfaceOptions{XCount: 3, ZCount: 3}
	first, _ := sb.Build(uniformField(t, 3, 3, 1), opts)
	sb.Invalidate()
	second, _ := sb.Build(uniformField(t, 3, 3, 1), opts)
	if first == second {
		t.Error("Invalidate did not drop the cached buffer")
	}
}

func TestSurfaceBuildResolutionTooLow(t *testing.T) {
	var sb SurfaceBuilder
	f := uniformField(t, 4, 4, 1)
	for _, opts := range []SurfaceOptions{
		{XCount: 1, ZCount: 4},
		{XCount: 4, ZCount: 1},
	} {
		if _, err := sb.Build(f, opts); !errors.Is(err, ErrResolutionTooLow) {
			t.Errorf("Build(%dx%d) err = %v, want ErrResolutionTooLow", opts.XCount, opts.ZCount, err)
		}
	}
}

func TestSurfaceExtentAspect(t *testing.T) {
	samples := make([][]float32, 3)
	for z := range samples {
		samples[z] = make([]float32, 5)
	}
	// x range 40, z range 10: aspect 4.
	f, err := helio.NewField(samples,
		[]float64{0, 10, 20, 30, 40}, []float64{0, 5, 10})
	if err != nil {
		t.Fatalf("NewField: %v", err)
	}

	x, z := SurfaceExtent(f, SurfaceOptions{PreserveAspect: true})
	if x != SurfaceSize {
		t.Errorf("xSize = %v, want %v", x, float32(SurfaceSize))
	}
	if math.Abs(float64(z)-SurfaceSize/4) > 1e-3 {
		t.Errorf("zSize = %v, want %v", z, SurfaceSize/4)
	}

	x, z = SurfaceExtent(f, SurfaceOptions{})
	if x != SurfaceSize || z != SurfaceSize {
		t.Errorf("without PreserveAspect: (%v, %v), want square", x, z)
	}
}

// The mesh can be coarser than the data; endpoint rows and columns must
// still sample the endpoint data.
func TestSrcIndex(t *testing.T) {
	tests := []struct {
		i, mesh, full int
		want          int
	}{
		{0, 4, 8, 0},
		{3, 4, 8, 7},
		{0, 4, 4, 0},
		{2, 4, 4, 2},
		{1, 3, 7, 3},
	}
	for _, tt := range tests {
		if got := srcIndex(tt.i, tt.mesh, tt.full); got != tt.want {
			t.Errorf("srcIndex(%d, %d, %d) = %d, want %d", tt.i, tt.mesh, tt.full, got, tt.want)
		}
	}
}
