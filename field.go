package helio

import (
	"errors"
	"fmt"
)

// Field errors.
var (
	// ErrEmptyField is returned when constructing a field with no samples.
	ErrEmptyField = errors.New("helio: field has no samples")

	// ErrRaggedField is returned when sample rows have different lengths.
	ErrRaggedField = errors.New("helio: field rows must all have the same length")

	// ErrAxisMismatch is returned when axis position arrays do not match
	// the sample grid dimensions.
	ErrAxisMismatch = errors.New("helio: axis positions do not match field dimensions")
)

// Field is an immutable rectangular grid of float32 samples with optional
// physical axis positions. Samples are indexed as (x, z) where x runs along
// a row and z selects the row. For solar disk images, x and z are pixel
// columns and rows; for spectral surfaces, x is the slit position and z the
// wavelength offset index.
//
// The sample data is borrowed from the caller and must not be mutated after
// construction.
type Field struct {
	samples [][]float32
	xPos    []float64
	zPos    []float64
	min     float32
	max     float32
}

// NewField creates a field from row-major samples (samples[z][x]) and
// physical axis positions. Either position slice may be nil, in which case
// unit spacing starting at zero is assumed. Non-uniform spacing is allowed.
func NewField(samples [][]float32, xPositions, zPositions []float64) (*Field, error) {
	if len(samples) == 0 || len(samples[0]) == 0 {
		return nil, ErrEmptyField
	}
	width := len(samples[0])
	for i, row := range samples {
		if len(row) != width {
			return nil, fmt.Errorf("%w: row %d has %d samples, want %d", ErrRaggedField, i, len(row), width)
		}
	}
	if xPositions == nil {
		xPositions = unitPositions(width)
	}
	if zPositions == nil {
		zPositions = unitPositions(len(samples))
	}
	if len(xPositions) != width || len(zPositions) != len(samples) {
		return nil, fmt.Errorf("%w: got %dx%d positions for a %dx%d grid",
			ErrAxisMismatch, len(xPositions), len(zPositions), width, len(samples))
	}

	f := &Field{samples: samples, xPos: xPositions, zPos: zPositions}
	f.min, f.max = scanMinMax(samples)
	return f, nil
}

func unitPositions(n int) []float64 {
	p := make([]float64, n)
	for i := range p {
		p[i] = float64(i)
	}
	return p
}

func scanMinMax(samples [][]float32) (lo, hi float32) {
	lo, hi = samples[0][0], samples[0][0]
	for _, row := range samples {
		for _, v := range row {
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
	}
	return lo, hi
}

// Width returns the number of samples along the x axis.
func (f *Field) Width() int { return len(f.samples[0]) }

// Height returns the number of samples along the z axis.
func (f *Field) Height() int { return len(f.samples) }

// At returns the raw sample at (x, z).
func (f *Field) At(x, z int) float32 { return f.samples[z][x] }

// MinMax returns the minimum and maximum sample values.
func (f *Field) MinMax() (lo, hi float32) { return f.min, f.max }

// XPositions returns the physical positions of the x axis samples.
func (f *Field) XPositions() []float64 { return f.xPos }

// ZPositions returns the physical positions of the z axis samples.
func (f *Field) ZPositions() []float64 { return f.zPos }

// XRange returns the physical extent of the x axis.
func (f *Field) XRange() float64 { return f.xPos[len(f.xPos)-1] - f.xPos[0] }

// ZRange returns the physical extent of the z axis.
func (f *Field) ZRange() float64 { return f.zPos[len(f.zPos)-1] - f.zPos[0] }

// NormalizedIntensity returns the sample at (x, z) normalized to [0, 1]
// over the whole field. A field with zero range normalizes to 0.5
// everywhere, so degenerate data renders as a flat mid-level surface
// instead of failing.
func (f *Field) NormalizedIntensity(x, z int) float64 {
	r := f.max - f.min
	if r == 0 {
		return 0.5
	}
	v := float64((f.samples[z][x] - f.min) / r)
	return Clamp01(v)
}

// Downsample returns a new field of the given dimensions using bilinear
// interpolation. Axis positions are resampled linearly. Used when a field
// exceeds the device texture size limit; downsampling keeps float precision
// so per-field normalization still sees the full dynamic range.
func (f *Field) Downsample(width, height int) *Field {
	srcW, srcH := f.Width(), f.Height()
	out := make([][]float32, height)
	scaleX := float32(srcW) / float32(width)
	scaleY := float32(srcH) / float32(height)

	for y := 0; y < height; y++ {
		row := make([]float32, width)
		for x := 0; x < width; x++ {
			srcX := float32(x) * scaleX
			srcY := float32(y) * scaleY

			x0, y0 := int(srcX), int(srcY)
			x1 := min(x0+1, srcW-1)
			y1 := min(y0+1, srcH-1)

			fx := srcX - float32(x0)
			fy := srcY - float32(y0)

			v00 := f.samples[y0][x0]
			v10 := f.samples[y0][x1]
			v01 := f.samples[y1][x0]
			v11 := f.samples[y1][x1]

			row[x] = (1-fx)*(1-fy)*v00 +
				fx*(1-fy)*v10 +
				(1-fx)*fy*v01 +
				fx*fy*v11
		}
		out[y] = row
	}

	g, err := NewField(out, resamplePositions(f.xPos, width), resamplePositions(f.zPos, height))
	if err != nil {
		// Dimensions are constructed consistently above.
		panic(err)
	}
	return g
}

func resamplePositions(pos []float64, n int) []float64 {
	if n == len(pos) {
		return pos
	}
	out := make([]float64, n)
	for i := range out {
		t := float64(i) / float64(n-1) * float64(len(pos)-1)
		j := int(t)
		if j >= len(pos)-1 {
			out[i] = pos[len(pos)-1]
			continue
		}
		frac := t - float64(j)
		out[i] = pos[j] + (pos[j+1]-pos[j])*frac
	}
	return out
}
