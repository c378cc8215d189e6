// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package gpu uploads helio textures and mesh buffers to a GPU through
// gogpu/wgpu/hal. The host application owns the device and queue; helio
// receives them and never creates its own.
package gpu

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/helio"
	"github.com/gogpu/helio/mesh"
	"github.com/gogpu/helio/render"
	"github.com/gogpu/wgpu/hal"
)

// Upload errors.
var (
	// ErrNilDevice is returned when creating an uploader without a device.
	ErrNilDevice = errors.New("gpu: hal device is nil")

	// ErrNilQueue is returned when creating an uploader without a queue.
	ErrNilQueue = errors.New("gpu: hal queue is nil")

	// ErrUploaderClosed is returned when uploading after Close.
	ErrUploaderClosed = errors.New("gpu: uploader is closed")

	// ErrTextureTooLarge is returned when a texture exceeds the device
	// limit. Callers downsample and retry; see tomo.SessionOptions.
	ErrTextureTooLarge = errors.New("gpu: texture exceeds device limit")

	// ErrEmptyMesh is returned when uploading a mesh with no vertices.
	ErrEmptyMesh = errors.New("gpu: mesh has no vertices")

	// ErrNoHALAccess is returned when a device handle does not expose its
	// underlying hal device and queue.
	ErrNoHALAccess = errors.New("gpu: device handle does not expose HAL types")
)

// TextureID identifies an uploaded texture.
type TextureID uint64

// MeshID identifies an uploaded mesh buffer pair.
type MeshID uint64

// uploadedTexture tracks one texture and its default view.
type uploadedTexture struct {
	texture hal.Texture
	view    hal.TextureView
	width   uint32
	height  uint32
}

// uploadedMesh tracks the retained buffers of one mesh: interleaved
// position/texcoord vertex data plus a 32-bit index buffer.
type uploadedMesh struct {
	vertex  hal.Buffer
	index   hal.Buffer
	indices uint32
}

// Uploader owns the GPU-side copies of shell textures and hemisphere
// meshes. Geometry is retained: meshes are uploaded once and redrawn every
// frame by index, never re-emitted per frame.
//
// Thread safety: Uploader is safe for concurrent use; hal resource maps
// are mutex-protected, matching how the host shares its queue.
type Uploader struct {
	mu     sync.RWMutex
	device hal.Device
	queue  hal.Queue
	limits gputypes.Limits
	closed bool

	nextID   atomic.Uint64
	textures map[TextureID]*uploadedTexture
	meshes   map[MeshID]*uploadedMesh
}

// NewUploader wraps a host-provided device and queue. If limits is nil the
// spec default limits are assumed.
func NewUploader(device hal.Device, queue hal.Queue, limits *gputypes.Limits) (*Uploader, error) {
	if device == nil {
		return nil, ErrNilDevice
	}
	if queue == nil {
		return nil, ErrNilQueue
	}
	lim := gputypes.DefaultLimits()
	if limits != nil {
		lim = *limits
	}
	u := &Uploader{
		device:   device,
		queue:    queue,
		limits:   lim,
		textures: make(map[TextureID]*uploadedTexture),
		meshes:   make(map[MeshID]*uploadedMesh),
	}
	u.nextID.Store(1)
	return u, nil
}

// NewUploaderFromHandle wraps the device behind a host-provided handle.
// The handle must expose HalDevice() any and HalQueue() any returning
// hal.Device and hal.Queue, the way gogpu device providers do; a
// CPU-only handle such as render.NullDeviceHandle yields ErrNoHALAccess.
func NewUploaderFromHandle(handle render.DeviceHandle, limits *gputypes.Limits) (*Uploader, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := handle.(halProvider)
	if !ok {
		return nil, ErrNoHALAccess
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("%w: HalDevice is not hal.Device", ErrNoHALAccess)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("%w: HalQueue is not hal.Queue", ErrNoHALAccess)
	}
	return NewUploader(device, queue, limits)
}

// MaxTextureSize returns the device's 2D texture dimension limit.
// tomo sessions pass it as SessionOptions.MaxTextureSize so shell images
// larger than the device allows get downsampled before upload.
func (u *Uploader) MaxTextureSize() int {
	return int(u.limits.MaxTextureDimension2D)
}

func (u *Uploader) newID() uint64 {
	return u.nextID.Add(1) - 1
}

// UploadTexture creates a GPU texture from CPU pixels and writes the data
// through the queue.
func (u *Uploader) UploadTexture(tex *render.Texture, label string) (TextureID, error) {
	limit := int(u.limits.MaxTextureDimension2D)
	if tex.Width > limit || tex.Height > limit {
		return 0, fmt.Errorf("%w: %dx%d, limit %d", ErrTextureTooLarge, tex.Width, tex.Height, limit)
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	if u.closed {
		return 0, ErrUploaderClosed
	}

	w, h := uint32(tex.Width), uint32(tex.Height)
	desc := &hal.TextureDescriptor{
		Label: label,
		Size: hal.Extent3D{
			Width:              w,
			Height:             h,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	}
	halTex, err := u.device.CreateTexture(desc)
	if err != nil {
		return 0, fmt.Errorf("gpu: create texture %q: %w", label, err)
	}

	dst := &hal.ImageCopyTexture{
		Texture:  halTex,
		MipLevel: 0,
		Origin:   hal.Origin3D{},
		Aspect:   gputypes.TextureAspectAll,
	}
	layout := &hal.ImageDataLayout{
		Offset:       0,
		BytesPerRow:  w * 4,
		RowsPerImage: h,
	}
	size := &hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1}
	u.queue.WriteTexture(dst, tex.Pixels, layout, size)

	view, err := u.device.CreateTextureView(halTex, &hal.TextureViewDescriptor{
		Label:  label + " view",
		Format: gputypes.TextureFormatUndefined,
		Aspect: gputypes.TextureAspectAll,
	})
	if err != nil {
		u.device.DestroyTexture(halTex)
		return 0, fmt.Errorf("gpu: create texture view %q: %w", label, err)
	}

	id := TextureID(u.newID())
	u.textures[id] = &uploadedTexture{texture: halTex, view: view, width: w, height: h}
	helio.Logger().Debug("texture uploaded", "id", id, "label", label, "size", [2]uint32{w, h})
	return id, nil
}

// TextureView returns the view of an uploaded texture, or nil if the ID is
// unknown or released.
func (u *Uploader) TextureView(id TextureID) hal.TextureView {
	u.mu.RLock()
	defer u.mu.RUnlock()
	if t, ok := u.textures[id]; ok {
		return t.view
	}
	return nil
}

// ReleaseTexture destroys an uploaded texture. Unknown IDs are ignored.
func (u *Uploader) ReleaseTexture(id TextureID) {
	u.mu.Lock()
	t, ok := u.textures[id]
	if ok {
		delete(u.textures, id)
	}
	u.mu.Unlock()

	if ok {
		u.device.DestroyTextureView(t.view)
		u.device.DestroyTexture(t.texture)
	}
}

// UploadMesh creates retained vertex and index buffers for a mesh. Vertex
// data is interleaved as x, y, z, u, v per vertex to match the render
// pipeline's single vertex buffer layout.
func (u *Uploader) UploadMesh(buf *mesh.Buffer, label string) (MeshID, error) {
	if err := buf.Validate(); err != nil {
		return 0, fmt.Errorf("gpu: mesh %q: %w", label, err)
	}
	n := buf.VertexCount()
	if n == 0 {
		return 0, fmt.Errorf("%w (%q)", ErrEmptyMesh, label)
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	if u.closed {
		return 0, ErrUploaderClosed
	}

	vertexData := interleave(buf)
	vbuf, err := u.device.CreateBuffer(&hal.BufferDescriptor{
		Label: label + " vertices",
		Size:  uint64(len(vertexData)),
		Usage: gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return 0, fmt.Errorf("gpu: create vertex buffer %q: %w", label, err)
	}
	u.queue.WriteBuffer(vbuf, 0, vertexData)

	indexData := indexBytes(buf.Faces)
	ibuf, err := u.device.CreateBuffer(&hal.BufferDescriptor{
		Label: label + " indices",
		Size:  uint64(len(indexData)),
		Usage: gputypes.BufferUsageIndex | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		u.device.DestroyBuffer(vbuf)
		return 0, fmt.Errorf("gpu: create index buffer %q: %w", label, err)
	}
	u.queue.WriteBuffer(ibuf, 0, indexData)

	id := MeshID(u.newID())
	u.meshes[id] = &uploadedMesh{vertex: vbuf, index: ibuf, indices: uint32(len(buf.Faces))}
	return id, nil
}

// MeshBuffers returns the vertex buffer, index buffer and index count of
// an uploaded mesh. All results are zero for unknown IDs.
func (u *Uploader) MeshBuffers(id MeshID) (vertex, index hal.Buffer, indexCount uint32) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	if m, ok := u.meshes[id]; ok {
		return m.vertex, m.index, m.indices
	}
	return nil, nil, 0
}

// ReleaseMesh destroys an uploaded mesh's buffers. Unknown IDs are
// ignored.
func (u *Uploader) ReleaseMesh(id MeshID) {
	u.mu.Lock()
	m, ok := u.meshes[id]
	if ok {
		delete(u.meshes, id)
	}
	u.mu.Unlock()

	if ok {
		u.device.DestroyBuffer(m.vertex)
		u.device.DestroyBuffer(m.index)
	}
}

// Close releases every live resource. The uploader is unusable afterwards;
// Close is idempotent.
func (u *Uploader) Close() {
	u.mu.Lock()
	if u.closed {
		u.mu.Unlock()
		return
	}
	u.closed = true
	textures := u.textures
	meshes := u.meshes
	u.textures = nil
	u.meshes = nil
	u.mu.Unlock()

	for _, t := range textures {
		u.device.DestroyTextureView(t.view)
		u.device.DestroyTexture(t.texture)
	}
	for _, m := range meshes {
		u.device.DestroyBuffer(m.vertex)
		u.device.DestroyBuffer(m.index)
	}
	helio.Logger().Debug("uploader closed", "textures", len(textures), "meshes", len(meshes))
}

// interleave packs positions and texcoords into the x, y, z, u, v vertex
// layout as little-endian float32 bytes.
func interleave(buf *mesh.Buffer) []byte {
	n := buf.VertexCount()
	out := make([]byte, 0, n*5*4)
	for i := 0; i < n; i++ {
		out = appendFloat32(out, buf.Positions[3*i])
		out = appendFloat32(out, buf.Positions[3*i+1])
		out = appendFloat32(out, buf.Positions[3*i+2])
		out = appendFloat32(out, buf.TexCoords[2*i])
		out = appendFloat32(out, buf.TexCoords[2*i+1])
	}
	return out
}

func indexBytes(faces []uint32) []byte {
	out := make([]byte, 0, len(faces)*4)
	for _, f := range faces {
		out = append(out, byte(f), byte(f>>8), byte(f>>16), byte(f>>24))
	}
	return out
}

func appendFloat32(out []byte, f float32) []byte {
	bits := math.Float32bits(f)
	return append(out, byte(bits), byte(bits>>8), byte(bits>>16), byte(bits>>24))
}
