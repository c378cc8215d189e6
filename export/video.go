// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package export

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"os"

	xdraw "golang.org/x/image/draw"

	"github.com/gogpu/helio"
)

// Animation export errors.
var (
	// ErrNoFrames is returned when encoding with a zero frame count.
	ErrNoFrames = errors.New("export: frame count must be positive")

	// ErrNilFrame is returned when the frame source yields a nil image.
	ErrNilFrame = errors.New("export: frame source returned nil image")
)

// FrameFunc produces the frame with the given index. Frames are requested
// strictly in order, one at a time; implementations usually forward to
// FrameServer.Capture with a per-frame camera.
type FrameFunc func(ctx context.Context, frame int) (*image.RGBA, error)

// ProgressFunc reports encoding progress after each frame.
type ProgressFunc func(done, total int)

// EncodeOptions configures an animation export.
type EncodeOptions struct {
	// Path is the output file path.
	Path string

	// FrameCount is the number of frames to request.
	FrameCount int

	// FPS is the playback rate. Zero falls back to 24.
	FPS int

	// Width and Height set the output size. Zero means the size of the
	// first frame; frames of other sizes are rescaled.
	Width  int
	Height int

	// Quality trades file size for color fidelity, 1 (smallest) to 5
	// (best). Zero falls back to 3.
	Quality int

	// Progress, when set, is called after each encoded frame.
	Progress ProgressFunc
}

func (o *EncodeOptions) defaults() {
	if o.FPS <= 0 {
		o.FPS = 24
	}
	if o.Quality <= 0 {
		o.Quality = 3
	} else if o.Quality > 5 {
		o.Quality = 5
	}
}

// Encoder writes a frame sequence to one or more files and returns the
// paths produced.
//
// Cancellation contract: when ctx is canceled mid-export, the encoder
// stops promptly, removes its partial output and returns the context
// error. Partial output from an I/O failure is kept for inspection.
type Encoder interface {
	Encode(ctx context.Context, opts EncodeOptions, frames FrameFunc) ([]string, error)
}

// GIFEncoder encodes an animation as a palettized GIF using
// Floyd-Steinberg dithering. Quality selects the palette size, 16 colors
// at quality 1 up to the format maximum of 256 at quality 5.
type GIFEncoder struct{}

// paletteSize maps quality 1..5 to a palette size.
func paletteSize(quality int) int {
	return min(16<<(quality-1), 256)
}

// Encode implements Encoder.
func (GIFEncoder) Encode(ctx context.Context, opts EncodeOptions, frames FrameFunc) ([]string, error) {
	opts.defaults()
	if opts.FrameCount <= 0 {
		return nil, ErrNoFrames
	}

	pal := palette.Plan9[:paletteSize(opts.Quality)]
	delay := 100 / opts.FPS
	anim := &gif.GIF{
		Image:     make([]*image.Paletted, 0, opts.FrameCount),
		Delay:     make([]int, 0, opts.FrameCount),
		LoopCount: 0,
	}

	for i := 0; i < opts.FrameCount; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		frame, err := frames(ctx, i)
		if err != nil {
			return nil, fmt.Errorf("export: frame %d: %w", i, err)
		}
		if frame == nil {
			return nil, fmt.Errorf("%w (frame %d)", ErrNilFrame, i)
		}
		if opts.Width == 0 {
			opts.Width = frame.Bounds().Dx()
			opts.Height = frame.Bounds().Dy()
		}
		frame = rescale(frame, opts.Width, opts.Height)

		paletted := image.NewPaletted(frame.Bounds(), pal)
		draw.FloydSteinberg.Draw(paletted, frame.Bounds(), frame, image.Point{})
		anim.Image = append(anim.Image, paletted)
		anim.Delay = append(anim.Delay, delay)

		if opts.Progress != nil {
			opts.Progress(i+1, opts.FrameCount)
		}
	}

	f, err := os.Create(opts.Path)
	if err != nil {
		return nil, fmt.Errorf("export: create %s: %w", opts.Path, err)
	}
	if err := gif.EncodeAll(f, anim); err != nil {
		f.Close()
		// The partial file stays on disk, per the Encoder contract.
		return nil, fmt.Errorf("export: encode %s: %w", opts.Path, err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("export: close %s: %w", opts.Path, err)
	}

	helio.Logger().Info("animation exported", "path", opts.Path,
		"frames", opts.FrameCount, "fps", opts.FPS, "palette", len(pal))
	return []string{opts.Path}, nil
}

// PNGSequenceEncoder writes each frame as a numbered PNG next to the
// requested path, for piping into an external video encoder. Quality and
// FPS are ignored; the frame files carry no timing.
type PNGSequenceEncoder struct{}

// Encode implements Encoder. Output files are named path-000000.png,
// path-000001.png and so on. On cancellation all files written so far are
// removed.
func (PNGSequenceEncoder) Encode(ctx context.Context, opts EncodeOptions, frames FrameFunc) ([]string, error) {
	opts.defaults()
	if opts.FrameCount <= 0 {
		return nil, ErrNoFrames
	}

	paths := make([]string, 0, opts.FrameCount)
	for i := 0; i < opts.FrameCount; i++ {
		if err := ctx.Err(); err != nil {
			removeAll(paths)
			return nil, err
		}
		frame, err := frames(ctx, i)
		if err != nil {
			// Frame sources forward ctx errors (FrameServer.Capture does);
			// those are cancellation, not I/O failure.
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				removeAll(paths)
				return nil, err
			}
			return paths, fmt.Errorf("export: frame %d: %w", i, err)
		}
		if frame == nil {
			return paths, fmt.Errorf("%w (frame %d)", ErrNilFrame, i)
		}
		if opts.Width == 0 {
			opts.Width = frame.Bounds().Dx()
			opts.Height = frame.Bounds().Dy()
		}
		frame = rescale(frame, opts.Width, opts.Height)

		p := fmt.Sprintf("%s-%06d.png", opts.Path, i)
		if err := SavePNG(frame, p); err != nil {
			return paths, err
		}
		paths = append(paths, p)

		if opts.Progress != nil {
			opts.Progress(i+1, opts.FrameCount)
		}
	}
	return paths, nil
}

func removeAll(paths []string) {
	for _, p := range paths {
		os.Remove(p)
	}
}

// rescale resizes a frame with bilinear filtering when its size differs
// from the output size.
func rescale(img *image.RGBA, w, h int) *image.RGBA {
	if img.Bounds().Dx() == w && img.Bounds().Dy() == h {
		return img
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.BiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Over, nil)
	return dst
}

// OrbitCameras returns the per-frame camera for a full-revolution orbit
// animation: frame i rotates the start camera by i/frames of 360 degrees
// about the vertical axis.
func OrbitCameras(start helio.Camera, frames int) func(i int) helio.Camera {
	return func(i int) helio.Camera {
		cam := start
		cam.RotationY = start.RotationY + 360*float64(i)/float64(frames)
		return cam
	}
}
