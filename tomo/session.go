// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package tomo

import (
	"errors"

	"github.com/gogpu/helio"
	"github.com/gogpu/helio/mesh"
	"github.com/gogpu/helio/render"
)

// BaseRadius is the world-space radius of the innermost shell.
const BaseRadius = 0.8

// DefaultRadialExaggeration spreads shells apart for visibility; the true
// radial separation of wavelength slices is far too small to see.
const DefaultRadialExaggeration = 0.2

// Session errors.
var (
	// ErrNotLoaded is returned when a plan is requested before textures
	// are loaded.
	ErrNotLoaded = errors.New("tomo: session textures not loaded")

	// ErrDisposed is returned when using a session after Dispose, or
	// disposing it twice. Resource release is an exactly-once contract.
	ErrDisposed = errors.New("tomo: session already disposed")
)

// State is the texture lifecycle state of a session.
type State uint8

const (
	// StateUnloaded means no textures exist yet.
	StateUnloaded State = iota
	// StateTexturesLoaded means textures are built and geometry can be
	// planned.
	StateTexturesLoaded
	// StateRendering means at least one plan has been produced since
	// loading.
	StateRendering
)

// SessionOptions configures a render session.
type SessionOptions struct {
	// ColorMode is the initial shell coloring.
	ColorMode ColorMode

	// RadialExaggeration scales shell separation; zero falls back to
	// DefaultRadialExaggeration.
	RadialExaggeration float64

	// Divisions is the hemisphere grid resolution; zero falls back to
	// mesh.DefaultDivisions.
	Divisions int

	// MaxTextureSize caps texture dimensions, normally the device limit.
	// All shells are downsampled uniformly when the source exceeds it.
	// Zero means unlimited.
	MaxTextureSize int
}

// Session owns the renderable state of one tomography stack: textures,
// cached hemisphere geometry, visibility and coloring parameters. It moves
// through StateUnloaded → StateTexturesLoaded → StateRendering; parameter
// changes that invalidate textures (color mode, contrast enhancement) set a
// reload flag honored on the next Plan call without re-validating the shell
// stack.
//
// A Session is single-threaded, like every holder of graphics state in
// helio: drive it only from the rendering goroutine.
type Session struct {
	data *Data
	opts SessionOptions

	state            State
	needsReload      bool
	contrastEnhanced bool
	showProminences  bool
	disposed         bool

	// hidden holds pixel shifts of shells excluded from plans. Keyed by
	// pixel shift rather than index so toggling never touches the shell
	// collection itself.
	hidden map[float64]struct{}

	// Working fields after the uniform downsampling pass.
	fields         []*helio.Field
	enhancedFields []*helio.Field
	texWidth       int
	texHeight      int

	textures   []ShellTexture
	prominence *render.Texture

	// Geometry caches, invalidated by radial exaggeration changes.
	hemispheres map[int]*mesh.Buffer
	band        *mesh.Buffer
	bandShell   int
}

// NewSession creates a session for a validated shell stack.
func NewSession(data *Data, opts SessionOptions) *Session {
	if opts.RadialExaggeration == 0 {
		opts.RadialExaggeration = DefaultRadialExaggeration
	}
	if opts.Divisions == 0 {
		opts.Divisions = mesh.DefaultDivisions
	}
	return &Session{
		data:        data,
		opts:        opts,
		hidden:      make(map[float64]struct{}),
		hemispheres: make(map[int]*mesh.Buffer),
		bandShell:   -1,
	}
}

// State returns the current lifecycle state.
func (s *Session) State() State { return s.state }

// Data returns the underlying shell stack.
func (s *Session) Data() *Data { return s.data }

// NeedsReload reports whether a parameter change has invalidated the
// loaded textures.
func (s *Session) NeedsReload() bool { return s.needsReload }

// ColorMode returns the active color mode.
func (s *Session) ColorMode() ColorMode { return s.opts.ColorMode }

// SetColorMode switches shell coloring, scheduling a texture reload.
func (s *Session) SetColorMode(m ColorMode) {
	if s.opts.ColorMode != m {
		s.opts.ColorMode = m
		s.needsReload = true
	}
}

// ContrastEnhanced reports whether enhanced shell variants are in use.
func (s *Session) ContrastEnhanced() bool { return s.contrastEnhanced }

// HasContrastEnhancement reports whether the stack carries enhanced
// variants at all.
func (s *Session) HasContrastEnhancement() bool { return s.data.HasEnhanced() }

// SetContrastEnhanced toggles enhanced shell variants, scheduling a
// texture reload. The toggle is remembered even when the stack has no
// enhanced variants; rendering then keeps using the raw fields.
func (s *Session) SetContrastEnhanced(enhanced bool) {
	if s.contrastEnhanced != enhanced {
		s.contrastEnhanced = enhanced
		s.needsReload = true
	}
}

// ShowProminences reports whether the prominence band is drawn.
func (s *Session) ShowProminences() bool { return s.showProminences }

// SetShowProminences toggles the prominence band. Textures are unaffected;
// the band texture is always built at load time.
func (s *Session) SetShowProminences(show bool) { s.showProminences = show }

// RadialExaggeration returns the shell separation factor.
func (s *Session) RadialExaggeration() float64 { return s.opts.RadialExaggeration }

// SetRadialExaggeration changes shell separation and drops cached
// geometry; textures are unaffected.
func (s *Session) SetRadialExaggeration(e float64) {
	if s.opts.RadialExaggeration == e {
		return
	}
	s.opts.RadialExaggeration = e
	s.hemispheres = make(map[int]*mesh.Buffer)
	s.band = nil
	s.bandShell = -1
}

// SetShellVisible toggles the shell identified by its pixel shift.
func (s *Session) SetShellVisible(pixelShift float64, visible bool) {
	if visible {
		delete(s.hidden, pixelShift)
	} else {
		s.hidden[pixelShift] = struct{}{}
	}
}

// IsShellVisible reports whether the shell with the given pixel shift is
// included in plans.
func (s *Session) IsShellVisible(pixelShift float64) bool {
	_, hidden := s.hidden[pixelShift]
	return !hidden
}

// ShellRadius converts a shell's normalized radius to world space under
// the current exaggeration.
func (s *Session) ShellRadius(normalizedRadius float64) float64 {
	return BaseRadius * (1 + (normalizedRadius-1)*s.opts.RadialExaggeration)
}

// LoadTextures builds all shell textures and the prominence texture. It is
// a no-op when textures are already loaded; call ReloadTextures (or just
// Plan) after parameter changes instead.
func (s *Session) LoadTextures() error {
	if s.disposed {
		return ErrDisposed
	}
	if s.state != StateUnloaded {
		return nil
	}
	s.preprocess()
	s.createTextures()
	s.state = StateTexturesLoaded
	return nil
}

// ReloadTextures rebuilds textures after a parameter change, keeping the
// preprocessed fields and the parsed shell stack.
func (s *Session) ReloadTextures() error {
	if s.disposed {
		return ErrDisposed
	}
	if !s.needsReload || s.state == StateUnloaded {
		return nil
	}
	s.textures = nil
	s.prominence = nil
	s.state = StateUnloaded
	s.createTextures()
	s.state = StateTexturesLoaded
	s.needsReload = false
	return nil
}

// preprocess applies the uniform downsampling pass once per session.
func (s *Session) preprocess() {
	w, h := s.data.Width(), s.data.Height()
	s.texWidth, s.texHeight = w, h

	limit := s.opts.MaxTextureSize
	if limit > 0 && (w > limit || h > limit) {
		scale := min(float64(limit)/float64(w), float64(limit)/float64(h))
		s.texWidth = int(float64(w) * scale)
		s.texHeight = int(float64(h) * scale)
		helio.Logger().Warn("downsampling shell textures to device limit",
			"from", [2]int{w, h}, "to", [2]int{s.texWidth, s.texHeight}, "limit", limit)
	}

	s.fields = make([]*helio.Field, s.data.Count())
	s.enhancedFields = make([]*helio.Field, s.data.Count())
	for i, shell := range s.data.Shells() {
		s.fields[i] = s.resized(shell.Field)
		if shell.Enhanced != nil {
			s.enhancedFields[i] = s.resized(shell.Enhanced)
		}
	}
}

func (s *Session) resized(f *helio.Field) *helio.Field {
	if f.Width() == s.texWidth && f.Height() == s.texHeight {
		return f
	}
	return f.Downsample(s.texWidth, s.texHeight)
}

// activeField returns the field rendered for shell i under the current
// contrast setting.
func (s *Session) activeField(i int) *helio.Field {
	if s.contrastEnhanced && s.enhancedFields[i] != nil {
		return s.enhancedFields[i]
	}
	return s.fields[i]
}

// scaledDisk maps a shell's disk ellipse into downsampled texture space.
func (s *Session) scaledDisk(shell Shell) helio.Disk {
	d := shell.EffectiveDisk()
	sx := float64(s.texWidth) / float64(s.data.Width())
	sy := float64(s.texHeight) / float64(s.data.Height())
	return helio.Disk{
		CenterX: d.CenterX * sx,
		CenterY: d.CenterY * sy,
		SemiX:   d.SemiX * sx,
		SemiY:   d.SemiY * sy,
	}
}

func (s *Session) createTextures() {
	shells := s.data.Shells()
	minRadius, radiusRange := s.data.radiusSpan()

	s.textures = make([]ShellTexture, len(shells))
	for i, shell := range shells {
		isBase := abs(shell.NormalizedRadius-minRadius) < 1e-4
		colorPos := (shell.NormalizedRadius - minRadius) / radiusRange
		s.textures[i] = buildShellTexture(s.activeField(i), isBase, colorPos,
			s.opts.ColorMode, s.scaledDisk(shell))
	}

	// The outermost shell's frame carries the prominence signal.
	s.prominence = buildProminenceTexture(s.activeField(len(shells) - 1))

	helio.Logger().Debug("shell textures created",
		"shells", len(shells), "size", [2]int{s.texWidth, s.texHeight},
		"mode", s.opts.ColorMode.String())
}

// ShellTextures returns the built textures in shell order. Valid only
// while loaded.
func (s *Session) ShellTextures() []ShellTexture { return s.textures }

// hemisphere returns the cached hemisphere geometry for shell i.
func (s *Session) hemisphere(i int) *mesh.Buffer {
	if buf, ok := s.hemispheres[i]; ok {
		return buf
	}
	shell := s.data.Shells()[i]
	buf := mesh.Hemisphere(mesh.HemisphereOptions{
		Radius:      float32(s.ShellRadius(shell.NormalizedRadius)),
		Divisions:   s.opts.Divisions,
		Disk:        s.scaledDisk(shell),
		ImageWidth:  s.texWidth,
		ImageHeight: s.texHeight,
	})
	s.hemispheres[i] = buf
	return buf
}

// prominenceBand returns the cached band geometry anchored at shell i.
func (s *Session) prominenceBand(i int) *mesh.Buffer {
	if s.band != nil && s.bandShell == i {
		return s.band
	}
	shell := s.data.Shells()[i]
	s.band = mesh.ProminenceBand(mesh.BandOptions{
		Radius:      float32(s.ShellRadius(shell.NormalizedRadius)),
		Divisions:   s.opts.Divisions,
		Disk:        s.scaledDisk(shell),
		ImageWidth:  s.texWidth,
		ImageHeight: s.texHeight,
	})
	s.bandShell = i
	return s.band
}

// Plan produces the ordered draw list for the current frame:
//
//  1. innermost visible shell, no blending, depth writes on
//  2. remaining visible shells in ascending radius order, alpha blended,
//     depth writes off so outer shells never z-fight yet still sit behind
//     the base shell's silhouette
//  3. the prominence band (when enabled), MAX blended, anchored at the
//     outermost visible shell
//
// Plan honors a pending texture reload first. Hidden shells are skipped
// without touching the underlying stack.
func (s *Session) Plan() ([]render.Draw, error) {
	if s.disposed {
		return nil, ErrDisposed
	}
	if s.state == StateUnloaded {
		return nil, ErrNotLoaded
	}
	if err := s.ReloadTextures(); err != nil {
		return nil, err
	}
	s.state = StateRendering

	visible := make([]int, 0, s.data.Count())
	for i, shell := range s.data.Shells() {
		if s.IsShellVisible(shell.PixelShift) {
			visible = append(visible, i)
		}
	}
	if len(visible) == 0 {
		return nil, nil
	}

	plan := make([]render.Draw, 0, len(visible)+1)
	plan = append(plan, render.Draw{
		Mesh:       s.hemisphere(visible[0]),
		Texture:    s.textures[visible[0]].Texture,
		Blend:      render.BlendNone,
		DepthWrite: true,
	})
	for _, i := range visible[1:] {
		plan = append(plan, render.Draw{
			Mesh:       s.hemisphere(i),
			Texture:    s.textures[i].Texture,
			Blend:      render.BlendAlpha,
			DepthWrite: false,
		})
	}

	if s.showProminences {
		outer := visible[len(visible)-1]
		plan = append(plan, render.Draw{
			Mesh:       s.prominenceBand(outer),
			Texture:    s.prominence,
			Blend:      render.BlendMax,
			DepthWrite: false,
		})
	}
	return plan, nil
}

// Dispose releases texture and geometry memory. It must be called exactly
// once per loaded session; a second call returns ErrDisposed. GPU handles
// uploaded from this session's textures are owned by the uploader and
// released separately.
func (s *Session) Dispose() error {
	if s.disposed {
		return ErrDisposed
	}
	s.disposed = true
	s.textures = nil
	s.prominence = nil
	s.fields = nil
	s.enhancedFields = nil
	s.hemispheres = nil
	s.band = nil
	s.state = StateUnloaded
	return nil
}
