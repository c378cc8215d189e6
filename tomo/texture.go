// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package tomo

import (
	"fmt"

	"github.com/gogpu/helio"
	"github.com/gogpu/helio/render"
)

// ColorMode selects how shell intensities map to texture colors.
type ColorMode uint8

const (
	// ColorMono renders each shell as grayscale from its per-shell
	// normalized intensity.
	ColorMono ColorMode = iota

	// ColorRedToBlue colorizes shells by radial position, red at the
	// innermost shell through blue at the outermost.
	ColorRedToBlue

	// ColorBlueToRed is ColorRedToBlue with the hue span reversed.
	ColorBlueToRed
)

// String returns the color mode name.
func (m ColorMode) String() string {
	switch m {
	case ColorMono:
		return "mono"
	case ColorRedToBlue:
		return "red-to-blue"
	case ColorBlueToRed:
		return "blue-to-red"
	}
	return fmt.Sprintf("ColorMode(%d)", uint8(m))
}

// zeroRangeEpsilon guards per-shell normalization: a flat layer normalizes
// to 0.5 everywhere instead of dividing by a vanishing range.
const zeroRangeEpsilon = 1e-3

// ShellTexture is a built shell texture plus the average in-disk color,
// which hosts use for shell list swatches.
type ShellTexture struct {
	Texture      *render.Texture
	AverageColor helio.RGBA
}

// shellNormalizer captures a shell's per-layer normalization.
type shellNormalizer struct {
	min float32
	rng float32
}

func newShellNormalizer(f *helio.Field) shellNormalizer {
	lo, hi := f.MinMax()
	return shellNormalizer{min: lo, rng: hi - lo}
}

func (n shellNormalizer) normalize(raw float32) float64 {
	if n.rng <= zeroRangeEpsilon {
		return 0.5
	}
	return helio.Clamp01(float64((raw - n.min) / n.rng))
}

// buildShellTexture converts one shell field to an RGBA texture.
//
// Alpha policy: the base (innermost) shell is fully opaque. Every other
// shell derives alpha from darkness — absorption features become opaque,
// bright quiet-sun regions become transparent — which is what lets the
// shells stack into an onion view without hiding each other's features. In
// colorized modes the opacity threshold rises toward mid-stack shells so
// middle layers stay visible.
func buildShellTexture(f *helio.Field, isBase bool, colorPos float64, mode ColorMode, disk helio.Disk) ShellTexture {
	w, h := f.Width(), f.Height()
	tex := render.NewTexture(w, h)
	norm := newShellNormalizer(f)

	var avgR, avgG, avgB float64
	diskPixels := 0

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := norm.normalize(f.At(x, y))

			var r, g, b float64
			var alpha uint8

			if mode == ColorMono {
				r, g, b = v, v, v
				if isBase {
					alpha = 255
				} else {
					alpha = uint8(255 - int(v*255))
				}
			} else {
				c := colorForIntensity(v, colorPos, mode)
				r, g, b = c.R, c.G, c.B
				if isBase {
					alpha = 255
				} else {
					alpha = colorizedAlpha(v, colorPos)
				}
			}

			dx := (float64(x) - disk.CenterX) / disk.SemiX
			dy := (float64(y) - disk.CenterY) / disk.SemiY
			if dx*dx+dy*dy <= 1 {
				avgR += r
				avgG += g
				avgB += b
				diskPixels++
			}

			tex.Set(x, y, uint8(r*255), uint8(g*255), uint8(b*255), alpha)
		}
	}

	avg := helio.Gray(0.5)
	if diskPixels > 0 {
		avg = helio.RGB(avgR/float64(diskPixels), avgG/float64(diskPixels), avgB/float64(diskPixels))
	}
	return ShellTexture{Texture: tex, AverageColor: avg}
}

// colorForIntensity maps per-shell intensity and radial position to a
// color. Hue spans 240° from the innermost to the outermost shell;
// lightness stays in [0.3, 0.7] so saturation survives at both ends.
func colorForIntensity(intensity, colorPos float64, mode ColorMode) helio.RGBA {
	if mode == ColorBlueToRed {
		colorPos = 1 - colorPos
	}
	hue := colorPos * 240
	return helio.HSL(hue, 0.9, 0.3+intensity*0.4)
}

// colorizedAlpha implements the threshold alpha policy for non-base shells
// in colorized modes: pixels darker than the threshold become opaque in
// proportion to their darkness, brighter pixels are fully transparent. The
// threshold is 0.5 at the stack ends and 0.7 mid-stack.
func colorizedAlpha(intensity, colorPos float64) uint8 {
	middleness := 1 - 2*abs(colorPos-0.5)
	threshold := 0.5 + middleness*0.2
	if intensity >= threshold {
		return 0
	}
	darkness := (threshold - intensity) / threshold
	return uint8(darkness * 255)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// buildProminenceTexture converts the outermost shell's field to a fully
// opaque grayscale texture. Prominences always render gray: their band is
// MAX-blended, and tinting it would leak hue into the composited limb.
func buildProminenceTexture(f *helio.Field) *render.Texture {
	w, h := f.Width(), f.Height()
	tex := render.NewTexture(w, h)
	norm := newShellNormalizer(f)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			gray := uint8(norm.normalize(f.At(x, y)) * 255)
			tex.Set(x, y, gray, gray, gray, 255)
		}
	}
	return tex
}
