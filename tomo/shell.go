// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package tomo implements spherical tomography: a stack of solar disk
// images at increasing wavelength offsets rendered as concentric textured
// hemispheres. The innermost shell is drawn opaque; outer shells derive
// transparency from brightness so their dark absorption features stack into
// a pseudo-3D view of spectral depth, and prominence signal beyond the limb
// is drawn as a MAX-blended band.
package tomo

import (
	"errors"
	"fmt"
	"sort"

	"github.com/gogpu/helio"
)

// Shell construction errors.
var (
	// ErrNoShells is returned when constructing a data set with no shells.
	ErrNoShells = errors.New("tomo: data set has no shells")

	// ErrNilShellField is returned when a shell carries no scalar field.
	// There is no partial-shell degradation: one unreadable shell fails
	// the whole set.
	ErrNilShellField = errors.New("tomo: shell field is nil")

	// ErrShellSizeMismatch is returned when shells have differing image
	// dimensions.
	ErrShellSizeMismatch = errors.New("tomo: all shells must share the same image dimensions")
)

// Shell describes one wavelength slice of a tomography stack.
type Shell struct {
	// Field is the disk image for this wavelength offset.
	Field *helio.Field

	// Enhanced is an optional contrast-enhanced variant of Field.
	Enhanced *helio.Field

	// Disk is the fitted disk ellipse for the image. Nil means no fit is
	// available and a centered full-frame disk is assumed.
	Disk *helio.Disk

	// PixelShift is the shift from line center in pixels (negative = blue
	// wing). It identifies the shell for visibility toggling.
	PixelShift float64

	// WavelengthOffset is the offset from line center in Angstroms.
	WavelengthOffset float64

	// NormalizedRadius orders shells for display: 1.0 at the innermost,
	// increasing outward.
	NormalizedRadius float64
}

// EffectiveDisk returns the shell's disk ellipse, or the centered
// full-frame fallback when no fit is attached.
func (s Shell) EffectiveDisk() helio.Disk {
	if s.Disk != nil {
		return *s.Disk
	}
	return helio.CenteredDisk(s.Field.Width(), s.Field.Height())
}

// Data is an immutable, validated tomography stack, sorted ascending by
// normalized radius.
type Data struct {
	shells []Shell
	width  int
	height int
}

// NewData validates and orders a shell stack. All shells must carry a
// field of identical dimensions. Disk ellipses extending past the frame are
// logged at warning level but accepted: partial discs are a real observing
// condition and rejecting them is known to misfire on discs touching the
// frame edge.
func NewData(shells []Shell) (*Data, error) {
	if len(shells) == 0 {
		return nil, ErrNoShells
	}
	for i, s := range shells {
		if s.Field == nil {
			return nil, fmt.Errorf("%w (shell %d, pixel shift %v)", ErrNilShellField, i, s.PixelShift)
		}
	}
	w, h := shells[0].Field.Width(), shells[0].Field.Height()
	for i, s := range shells {
		if s.Field.Width() != w || s.Field.Height() != h {
			return nil, fmt.Errorf("%w: shell %d is %dx%d, want %dx%d",
				ErrShellSizeMismatch, i, s.Field.Width(), s.Field.Height(), w, h)
		}
		if s.Enhanced != nil && (s.Enhanced.Width() != w || s.Enhanced.Height() != h) {
			return nil, fmt.Errorf("%w: enhanced shell %d is %dx%d, want %dx%d",
				ErrShellSizeMismatch, i, s.Enhanced.Width(), s.Enhanced.Height(), w, h)
		}
		if s.Disk != nil {
			if err := s.Disk.ValidateBounds(w, h); err != nil {
				helio.Logger().Warn("disk ellipse out of frame", "shell", i,
					"pixelShift", s.PixelShift, "err", err)
			}
		}
	}

	sorted := make([]Shell, len(shells))
	copy(sorted, shells)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].NormalizedRadius < sorted[j].NormalizedRadius
	})
	return &Data{shells: sorted, width: w, height: h}, nil
}

// Count returns the number of shells.
func (d *Data) Count() int { return len(d.shells) }

// Shells returns the shells in ascending radius order. The slice is shared;
// treat it as read-only.
func (d *Data) Shells() []Shell { return d.shells }

// Width returns the common image width.
func (d *Data) Width() int { return d.width }

// Height returns the common image height.
func (d *Data) Height() int { return d.height }

// HasEnhanced reports whether every shell carries a contrast-enhanced
// variant.
func (d *Data) HasEnhanced() bool {
	for _, s := range d.shells {
		if s.Enhanced == nil {
			return false
		}
	}
	return true
}

// MinPixelShift returns the smallest pixel shift in the stack.
func (d *Data) MinPixelShift() float64 {
	m := d.shells[0].PixelShift
	for _, s := range d.shells[1:] {
		if s.PixelShift < m {
			m = s.PixelShift
		}
	}
	return m
}

// MaxPixelShift returns the largest pixel shift in the stack.
func (d *Data) MaxPixelShift() float64 {
	m := d.shells[0].PixelShift
	for _, s := range d.shells[1:] {
		if s.PixelShift > m {
			m = s.PixelShift
		}
	}
	return m
}

// radiusSpan returns the smallest normalized radius and the radius range.
// A degenerate range (all shells at the same radius) is widened to 1 so
// color positions stay finite.
func (d *Data) radiusSpan() (minRadius, radiusRange float64) {
	minRadius = d.shells[0].NormalizedRadius
	maxRadius := d.shells[len(d.shells)-1].NormalizedRadius
	radiusRange = maxRadius - minRadius
	if radiusRange < 1e-4 {
		radiusRange = 1
	}
	return minRadius, radiusRange
}
