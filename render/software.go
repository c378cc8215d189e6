// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"
	"github.com/gogpu/helio"
)

// Software rendering errors.
var (
	// ErrNoPixels is returned when the target has no CPU pixel access.
	ErrNoPixels = errors.New("render: target has no CPU pixel access")

	// ErrNilTexture is returned when a draw carries no texture.
	ErrNilTexture = errors.New("render: draw has nil texture")
)

// Software is a CPU renderer: perspective projection, depth-buffered
// rasterization with perspective-correct texturing, and per-draw blending.
// It renders draw plans exactly as a GPU pipeline would, which makes
// compositing order and blending verifiable without a graphics device.
//
// The zero value is not usable; call NewSoftware.
type Software struct {
	// FOVDegrees is the vertical field of view.
	FOVDegrees float32

	// Near and Far are the clip plane distances. The defaults suit shell
	// viewing; surface viewers orbit at hundreds of world units and must
	// raise Far accordingly.
	Near float32
	Far  float32

	depth []float32
}

// NewSoftware creates a software renderer with a 45 degree field of view
// and clip planes at 0.1 and 100.
func NewSoftware() *Software {
	return &Software{
		FOVDegrees: 45,
		Near:       0.1,
		Far:        100,
	}
}

// Render draws the plan in order against the target. The target is not
// cleared; callers clear it (and pick the background) before rendering.
// The depth buffer is reset on every call.
func (s *Software) Render(target Target, plan []Draw, cam helio.Camera) error {
	pix := target.Pixels()
	if pix == nil {
		return ErrNoPixels
	}
	w, h := target.Width(), target.Height()

	if len(s.depth) < w*h {
		s.depth = make([]float32, w*h)
	}
	for i := range w * h {
		s.depth[i] = math32.Inf(1)
	}

	view := viewMatrix(cam)
	proj := perspective(s.FOVDegrees*math32.Pi/180, float32(w)/float32(h), s.Near, s.Far)

	for di, d := range plan {
		if d.Texture == nil {
			return fmt.Errorf("%w (draw %d)", ErrNilTexture, di)
		}
		if err := d.Mesh.Validate(); err != nil {
			return fmt.Errorf("render: draw %d: %w", di, err)
		}
		s.drawMesh(pix, target.Stride(), w, h, d, view, proj)
	}
	return nil
}

// mat4 is a column-major 4x4 matrix.
type mat4 [16]float32

func identity() mat4 {
	return mat4{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}
}

func (m mat4) mul(n mat4) mat4 {
	var r mat4
	for c := 0; c < 4; c++ {
		for row := 0; row < 4; row++ {
			var sum float32
			for k := 0; k < 4; k++ {
				sum += m[k*4+row] * n[c*4+k]
			}
			r[c*4+row] = sum
		}
	}
	return r
}

// transform applies the matrix to a point, returning clip coordinates.
func (m mat4) transform(x, y, z float32) (cx, cy, cz, cw float32) {
	cx = m[0]*x + m[4]*y + m[8]*z + m[12]
	cy = m[1]*x + m[5]*y + m[9]*z + m[13]
	cz = m[2]*x + m[6]*y + m[10]*z + m[14]
	cw = m[3]*x + m[7]*y + m[11]*z + m[15]
	return
}

func rotateX(deg float32) mat4 {
	s, c := math32.Sincos(deg * math32.Pi / 180)
	m := identity()
	m[5], m[9] = c, -s
	m[6], m[10] = s, c
	return m
}

func rotateY(deg float32) mat4 {
	s, c := math32.Sincos(deg * math32.Pi / 180)
	m := identity()
	m[0], m[8] = c, s
	m[2], m[10] = -s, c
	return m
}

func translate(x, y, z float32) mat4 {
	m := identity()
	m[12], m[13], m[14] = x, y, z
	return m
}

// viewMatrix builds the world-to-eye transform for an orbit camera: the
// scene is rotated under a fixed camera looking down -Z from the origin.
func viewMatrix(cam helio.Camera) mat4 {
	rot := rotateX(float32(cam.RotationX)).mul(rotateY(float32(cam.RotationY)))
	return translate(0, 0, -float32(cam.Distance)).mul(rot)
}

func perspective(fovY, aspect, near, far float32) mat4 {
	f := 1 / math32.Tan(fovY/2)
	var m mat4
	m[0] = f / aspect
	m[5] = f
	m[10] = far / (near - far)
	m[11] = -1
	m[14] = near * far / (near - far)
	return m
}

// screenVertex is a projected vertex ready for rasterization.
type screenVertex struct {
	x, y float32 // screen space
	z    float32 // NDC depth
	w    float32 // 1/clip.w, for perspective-correct interpolation
	u, v float32 // texcoords pre-divided by clip.w
}

func (s *Software) drawMesh(pix []byte, stride, w, h int, d Draw, view, proj mat4) {
	mvp := proj.mul(view)
	pos := d.Mesh.Positions
	tc := d.Mesh.TexCoords
	faces := d.Mesh.Faces

	var tri [3]screenVertex
	for f := 0; f+2 < len(faces); f += 3 {
		clipped := false
		for k := 0; k < 3; k++ {
			i := faces[f+k]
			cx, cy, cz, cw := mvp.transform(pos[3*i], pos[3*i+1], pos[3*i+2])
			if cw <= 0 {
				clipped = true
				break
			}
			inv := 1 / cw
			tri[k] = screenVertex{
				x: (cx*inv + 1) * 0.5 * float32(w),
				y: (1 - cy*inv) * 0.5 * float32(h),
				z: cz * inv,
				w: inv,
				u: tc[2*i] * inv,
				v: tc[2*i+1] * inv,
			}
		}
		// Near-plane clipping is skipped; shells never straddle the
		// camera at valid orbit distances.
		if clipped {
			continue
		}
		s.rasterize(pix, stride, w, h, d, tri)
	}
}

func (s *Software) rasterize(pix []byte, stride, w, h int, d Draw, tri [3]screenVertex) {
	minX := int(math32.Floor(min(tri[0].x, tri[1].x, tri[2].x)))
	maxX := int(math32.Ceil(max(tri[0].x, tri[1].x, tri[2].x)))
	minY := int(math32.Floor(min(tri[0].y, tri[1].y, tri[2].y)))
	maxY := int(math32.Ceil(max(tri[0].y, tri[1].y, tri[2].y)))
	minX, maxX = max(minX, 0), min(maxX, w-1)
	minY, maxY = max(minY, 0), min(maxY, h-1)
	if minX > maxX || minY > maxY {
		return
	}

	area := edge(tri[0], tri[1], tri[2].x, tri[2].y)
	if area == 0 {
		return
	}
	inv := 1 / area

	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			px, py := float32(x)+0.5, float32(y)+0.5
			w0 := edge(tri[1], tri[2], px, py) * inv
			w1 := edge(tri[2], tri[0], px, py) * inv
			w2 := edge(tri[0], tri[1], px, py) * inv
			// Accept either winding; culling is a GPU-side concern and
			// hemispheres only ever show their front.
			if (w0 < 0 || w1 < 0 || w2 < 0) && (w0 > 0 || w1 > 0 || w2 > 0) {
				continue
			}

			z := w0*tri[0].z + w1*tri[1].z + w2*tri[2].z
			di := y*w + x
			if z >= s.depth[di] {
				continue
			}

			invW := w0*tri[0].w + w1*tri[1].w + w2*tri[2].w
			u := (w0*tri[0].u + w1*tri[1].u + w2*tri[2].u) / invW
			v := (w0*tri[0].v + w1*tri[1].v + w2*tri[2].v) / invW
			r, g, b, a := d.Texture.Sample(u, v)

			pi := y*stride + x*4
			blendPixel(pix[pi:pi+4:pi+4], d.Blend, r, g, b, a)
			if d.DepthWrite {
				s.depth[di] = z
			}
		}
	}
}

func edge(a, b screenVertex, px, py float32) float32 {
	return (b.x-a.x)*(py-a.y) - (b.y-a.y)*(px-a.x)
}

func blendPixel(dst []byte, mode BlendMode, r, g, b, a uint8) {
	switch mode {
	case BlendNone:
		dst[0], dst[1], dst[2], dst[3] = r, g, b, 255
	case BlendAlpha:
		sa := uint32(a)
		da := 255 - sa
		dst[0] = uint8((uint32(r)*sa + uint32(dst[0])*da) / 255)
		dst[1] = uint8((uint32(g)*sa + uint32(dst[1])*da) / 255)
		dst[2] = uint8((uint32(b)*sa + uint32(dst[2])*da) / 255)
		dst[3] = uint8(sa + uint32(dst[3])*da/255)
	case BlendMax:
		dst[0] = max(dst[0], r)
		dst[1] = max(dst[1], g)
		dst[2] = max(dst[2], b)
		dst[3] = max(dst[3], a)
	}
}

// Ensure Software implements Renderer.
var _ Renderer = (*Software)(nil)
