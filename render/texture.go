// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

// Texture is a CPU-side RGBA8 texture. It is the unit of exchange between
// texture builders (tomo), the software renderer, and the GPU upload
// adapter.
type Texture struct {
	// Pixels holds width*height*4 bytes, row-major RGBA.
	Pixels []byte
	Width  int
	Height int
}

// NewTexture allocates a zeroed texture.
func NewTexture(width, height int) *Texture {
	return &Texture{
		Pixels: make([]byte, width*height*4),
		Width:  width,
		Height: height,
	}
}

// Set writes one pixel.
func (t *Texture) Set(x, y int, r, g, b, a uint8) {
	i := (y*t.Width + x) * 4
	t.Pixels[i+0] = r
	t.Pixels[i+1] = g
	t.Pixels[i+2] = b
	t.Pixels[i+3] = a
}

// At returns one pixel.
func (t *Texture) At(x, y int) (r, g, b, a uint8) {
	i := (y*t.Width + x) * 4
	return t.Pixels[i+0], t.Pixels[i+1], t.Pixels[i+2], t.Pixels[i+3]
}

// Sample returns the texel nearest to texture coordinates (u, v) in
// [0, 1]², clamping to the edge. Nearest sampling is enough for the
// software renderer; the GPU path uses a linear sampler.
func (t *Texture) Sample(u, v float32) (r, g, b, a uint8) {
	x := int(u * float32(t.Width))
	y := int(v * float32(t.Height))
	if x < 0 {
		x = 0
	} else if x >= t.Width {
		x = t.Width - 1
	}
	if y < 0 {
		y = 0
	} else if y >= t.Height {
		y = t.Height - 1
	}
	return t.At(x, y)
}
