package helio

import (
	"fmt"
	"math"
)

// ScaleMode selects the transformation applied to normalized intensity
// values before they drive surface height and color.
type ScaleMode uint8

const (
	// ScaleLinear maps values unchanged.
	ScaleLinear ScaleMode = iota
	// ScaleSquare squares values, emphasizing high intensities.
	ScaleSquare
	// ScaleLog2 maps x to log2(1+x), compressing high intensities.
	ScaleLog2
	// ScaleLog10 maps x to log10(1+9x), a stronger compression than log2
	// for highlighting faint features.
	ScaleLog10
)

// String returns the scale mode name.
func (m ScaleMode) String() string {
	switch m {
	case ScaleLinear:
		return "linear"
	case ScaleSquare:
		return "square"
	case ScaleLog2:
		return "log2"
	case ScaleLog10:
		return "log10"
	}
	return fmt.Sprintf("ScaleMode(%d)", uint8(m))
}

// Apply transforms a normalized intensity value. Every mode maps 0 to 0 and
// 1 to 1 exactly and is monotonic in between.
//
// Apply panics if v is outside [0, 1]: callers must clamp upstream. An
// out-of-range value here means a normalization bug, not bad input data.
func (m ScaleMode) Apply(v float64) float64 {
	if v < 0 || v > 1 {
		panic(fmt.Sprintf("helio: normalized intensity must be in [0, 1], got %v", v))
	}
	switch m {
	case ScaleLinear:
		return v
	case ScaleSquare:
		return v * v
	case ScaleLog2:
		return math.Log1p(v) / math.Ln2
	case ScaleLog10:
		return math.Log10(1 + 9*v)
	}
	return v
}

// HeatColor converts a normalized intensity to a color on the fixed
// heat-map gradient: blue at 0, through green and red, to magenta at 1.
// The gradient is a 4-segment piecewise-linear interpolation, continuous at
// the segment boundaries 0.25, 0.5 and 0.75. The legend color bar and the
// mesh ramp texture both sample this function, so they agree bit for bit.
func HeatColor(t float64) RGBA {
	switch {
	case t < 0.25:
		r := t / 0.25
		return RGB(0, r, 1-r*0.5)
	case t < 0.5:
		r := (t - 0.25) / 0.25
		return RGB(r, 1, 0.5-r*0.5)
	case t < 0.75:
		r := (t - 0.5) / 0.25
		return RGB(1, 1-r, 0)
	default:
		r := (t - 0.75) / 0.25
		return RGB(1, 0, r*0.5)
	}
}

// ColorRamp samples HeatColor at n evenly spaced points from 0 to 1
// inclusive. The result serves as a 1D material texture for surface meshes
// and as the legend color bar. n must be at least 2.
func ColorRamp(n int) []RGBA {
	if n < 2 {
		n = 2
	}
	ramp := make([]RGBA, n)
	for i := range ramp {
		ramp[i] = HeatColor(float64(i) / float64(n-1))
	}
	return ramp
}

// RampBytes flattens a color ramp into an RGBA8 byte buffer suitable for
// upload as an n×1 texture.
func RampBytes(ramp []RGBA) []byte {
	buf := make([]byte, len(ramp)*4)
	for i, c := range ramp {
		r, g, b, a := c.Bytes()
		buf[i*4+0] = r
		buf[i*4+1] = g
		buf[i*4+2] = b
		buf[i*4+3] = a
	}
	return buf
}
