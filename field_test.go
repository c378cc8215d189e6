package helio

import (
	"errors"
	"math"
	"testing"
)

func mustField(t *testing.T, samples [][]float32) *Field {
	t.Helper()
	f, err := NewField(samples, nil, nil)
	if err != nil {
		t.Fatalf("NewField: %v", err)
	}
	return f
}

func TestNewFieldErrors(t *testing.T) {
	tests := []struct {
		name    string
		samples [][]float32
		xPos    []float64
		zPos    []float64
		wantErr error
	}{
		{"empty", nil, nil, nil, ErrEmptyField},
		{"empty row", [][]float32{{}}, nil, nil, ErrEmptyField},
		{"ragged", [][]float32{{1, 2}, {3}}, nil, nil, ErrRaggedField},
		{"x mismatch", [][]float32{{1, 2}}, []float64{0}, nil, ErrAxisMismatch},
		{"z mismatch", [][]float32{{1, 2}}, nil, []float64{0, 1}, ErrAxisMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewField(tt.samples, tt.xPos, tt.zPos)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestFieldMinMax(t *testing.T) {
	f := mustField(t, [][]float32{{3, -1}, {4, 2}})
	lo, hi := f.MinMax()
	if lo != -1 || hi != 4 {
		t.Errorf("MinMax = (%v, %v), want (-1, 4)", lo, hi)
	}
}

func TestNormalizedIntensity(t *testing.T) {
	f := mustField(t, [][]float32{{0, 2}, {4, 2}})
	tests := []struct {
		x, z int
		want float64
	}{
		{0, 0, 0},
		{1, 0, 0.5},
		{0, 1, 1},
	}
	for _, tt := range tests {
		if got := f.NormalizedIntensity(tt.x, tt.z); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("NormalizedIntensity(%d, %d) = %v, want %v", tt.x, tt.z, got, tt.want)
		}
	}
}

// A flat field has zero dynamic range; it must normalize to mid-level
// rather than divide by zero.
func TestNormalizedIntensityZeroRange(t *testing.T) {
	f := mustField(t, [][]float32{{7, 7}, {7, 7}})
	if got := f.NormalizedIntensity(1, 1); got != 0.5 {
		t.Errorf("NormalizedIntensity = %v, want 0.5", got)
	}
}

func TestDefaultAxisPositions(t *testing.T) {
	f := mustField(t, [][]float32{{0, 0, 0}, {0, 0, 0}})
	if got := f.XRange(); got != 2 {
		t.Errorf("XRange = %v, want 2", got)
	}
	if got := f.ZRange(); got != 1 {
		t.Errorf("ZRange = %v, want 1", got)
	}
}

func TestDownsample(t *testing.T) {
	src := make([][]float32, 8)
	for z := range src {
		src[z] = make([]float32, 8)
		for x := range src[z] {
			src[z][x] = float32(x)
		}
	}
	f := mustField(t, src)

	g := f.Downsample(4, 4)
	if g.Width() != 4 || g.Height() != 4 {
		t.Fatalf("size = %dx%d, want 4x4", g.Width(), g.Height())
	}
	// A horizontal gradient survives downsampling along rows.
	for x := 0; x < 3; x++ {
		if g.At(x+1, 0) <= g.At(x, 0) {
			t.Errorf("gradient not preserved: At(%d,0)=%v, At(%d,0)=%v",
				x, g.At(x, 0), x+1, g.At(x+1, 0))
		}
	}
}

func TestDownsampleUniform(t *testing.T) {
	src := [][]float32{
		{3, 3, 3, 3},
		{3, 3, 3, 3},
		{3, 3, 3, 3},
		{3, 3, 3, 3},
	}
	g := mustField(t, src).Downsample(2, 2)
	for z := 0; z < 2; z++ {
		for x := 0; x < 2; x++ {
			if g.At(x, z) != 3 {
				t.Errorf("At(%d, %d) = %v, want 3", x, z, g.At(x, z))
			}
		}
	}
}
