package helio

import (
	"errors"
	"fmt"
)

// ErrDiskOutOfFrame is returned by [Disk.ValidateBounds] when the fitted
// ellipse extends past the source image frame.
var ErrDiskOutOfFrame = errors.New("helio: disk ellipse extends outside the image frame")

// Disk is a fitted solar disk ellipse in source-image pixel space: center
// point plus semi-axis lengths. It is produced by an external disk-fitting
// algorithm and read-only to the renderers. Its role is to map a
// hemisphere's normalized surface coordinates back into source-image
// texture coordinates, so the disk wraps correctly onto the curved surface
// regardless of where the disk sits in the source frame.
type Disk struct {
	// CenterX, CenterY locate the disk center in pixels.
	CenterX, CenterY float64
	// SemiX, SemiY are the semi-axis lengths in pixels.
	SemiX, SemiY float64
}

// CenteredDisk returns the fallback disk used when no ellipse fit is
// available: centered in a width×height frame and touching its edges.
func CenteredDisk(width, height int) Disk {
	return Disk{
		CenterX: float64(width) / 2,
		CenterY: float64(height) / 2,
		SemiX:   float64(width) / 2,
		SemiY:   float64(height) / 2,
	}
}

// UV maps normalized device coordinates (nx, ny) in [-1, 1]² to
// pixel-fraction texture coordinates for a width×height source image.
// nx=ny=0 is the disk center; |n|=1 is the limb. The v axis is flipped
// because image rows grow downward.
func (d Disk) UV(nx, ny float64, width, height int) (u, v float64) {
	cu := d.CenterX / float64(width)
	cv := d.CenterY / float64(height)
	ru := d.SemiX / float64(width)
	rv := d.SemiY / float64(height)
	return cu + nx*ru, cv - ny*rv
}

// ValidateBounds reports whether the ellipse fits inside a width×height
// frame. Partial disks are a real observing condition (the telescope can be
// aimed at the limb), so callers typically log the returned error and
// proceed; rejecting here is known to produce false positives on discs that
// merely touch the frame edge.
func (d Disk) ValidateBounds(width, height int) error {
	if d.CenterX-d.SemiX < 0 || d.CenterY-d.SemiY < 0 ||
		d.CenterX+d.SemiX > float64(width) || d.CenterY+d.SemiY > float64(height) {
		return fmt.Errorf("%w: center (%.1f, %.1f) semi-axes (%.1f, %.1f) in %dx%d",
			ErrDiskOutOfFrame, d.CenterX, d.CenterY, d.SemiX, d.SemiY, width, height)
	}
	return nil
}
