// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package export

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/gogpu/helio"
)

func solidFrame(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestGIFEncode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orbit.gif")
	var progress []int
	paths, err := GIFEncoder{}.Encode(context.Background(), EncodeOptions{
		Path:       path,
		FrameCount: 3,
		FPS:        10,
		Progress:   func(done, total int) { progress = append(progress, done) },
	}, func(_ context.Context, i int) (*image.RGBA, error) {
		shade := uint8(60 * (i + 1))
		return solidFrame(16, 16, color.RGBA{R: shade, G: shade, B: shade, A: 255}), nil
	})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(paths) != 1 || paths[0] != path {
		t.Fatalf("paths = %v, want [%s]", paths, path)
	}
	if len(progress) != 3 || progress[2] != 3 {
		t.Errorf("progress = %v, want [1 2 3]", progress)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	anim, err := gif.DecodeAll(f)
	if err != nil {
		t.Fatalf("DecodeAll: %v", err)
	}
	if len(anim.Image) != 3 {
		t.Errorf("decoded %d frames, want 3", len(anim.Image))
	}
	if anim.Delay[0] != 10 {
		t.Errorf("delay = %d, want 10 (100/fps)", anim.Delay[0])
	}
}

func TestGIFEncodeRescalesFrames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scaled.gif")
	_, err := GIFEncoder{}.Encode(context.Background(), EncodeOptions{
		Path:       path,
		FrameCount: 1,
		Width:      8,
		Height:     8,
	}, func(_ context.Context, _ int) (*image.RGBA, error) {
		return solidFrame(32, 32, color.RGBA{R: 255, A: 255}), nil
	})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	f, _ := os.Open(path)
	defer f.Close()
	anim, err := gif.DecodeAll(f)
	if err != nil {
		t.Fatalf("DecodeAll: %v", err)
	}
	if got := anim.Image[0].Bounds(); got.Dx() != 8 || got.Dy() != 8 {
		t.Errorf("frame bounds = %v, want 8x8", got)
	}
}

func TestGIFEncodeNoFrames(t *testing.T) {
	_, err := GIFEncoder{}.Encode(context.Background(), EncodeOptions{Path: "x.gif"}, nil)
	if !errors.Is(err, ErrNoFrames) {
		t.Errorf("Encode = %v, want ErrNoFrames", err)
	}
}

func TestPaletteSize(t *testing.T) {
	tests := []struct{ quality, want int }{
		{1, 16},
		{2, 32},
		{3, 64},
		{4, 128},
		{5, 256},
	}
	for _, tt := range tests {
		if got := paletteSize(tt.quality); got != tt.want {
			t.Errorf("paletteSize(%d) = %d, want %d", tt.quality, got, tt.want)
		}
	}
}

func TestPNGSequenceEncode(t *testing.T) {
	base := filepath.Join(t.TempDir(), "frames")
	paths, err := PNGSequenceEncoder{}.Encode(context.Background(), EncodeOptions{
		Path:       base,
		FrameCount: 2,
	}, func(_ context.Context, _ int) (*image.RGBA, error) {
		return solidFrame(4, 4, color.RGBA{A: 255}), nil
	})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("paths = %v, want 2 files", paths)
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("missing output %s: %v", p, err)
		}
	}
}

// User cancellation removes the partial sequence; the contract is no
// half-finished exports left behind.
func TestPNGSequenceEncodeCancelCleansUp(t *testing.T) {
	base := filepath.Join(t.TempDir(), "frames")
	ctx, cancel := context.WithCancel(context.Background())

	paths, err := PNGSequenceEncoder{}.Encode(ctx, EncodeOptions{
		Path:       base,
		FrameCount: 5,
	}, func(_ context.Context, i int) (*image.RGBA, error) {
		if i == 1 {
			cancel()
		}
		return solidFrame(4, 4, color.RGBA{A: 255}), nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Encode = %v, want context.Canceled", err)
	}
	if paths != nil {
		t.Errorf("paths = %v, want nil after cancel", paths)
	}
	matches, _ := filepath.Glob(base + "-*.png")
	if len(matches) != 0 {
		t.Errorf("partial files left behind: %v", matches)
	}
}

// A frame source that returns the context error, the way FrameServer.Capture
// does, is cancellation too: the partial sequence must still be removed.
func TestPNGSequenceEncodeCancelFromFrameSource(t *testing.T) {
	base := filepath.Join(t.TempDir(), "frames")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	paths, err := PNGSequenceEncoder{}.Encode(ctx, EncodeOptions{
		Path:       base,
		FrameCount: 5,
	}, func(ctx context.Context, i int) (*image.RGBA, error) {
		if i == 2 {
			cancel()
			return nil, ctx.Err()
		}
		return solidFrame(4, 4, color.RGBA{A: 255}), nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Encode = %v, want context.Canceled", err)
	}
	if paths != nil {
		t.Errorf("paths = %v, want nil after cancel", paths)
	}
	matches, _ := filepath.Glob(base + "-*.png")
	if len(matches) != 0 {
		t.Errorf("partial files left behind: %v", matches)
	}
}

// An encode failure is not cancellation: the partial file stays on disk
// for inspection.
func TestGIFEncodeKeepsPartialOnFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "huge.gif")
	// GIF image blocks cap dimensions at 65535; rescaling past that makes
	// gif.EncodeAll fail after the header is written.
	_, err := GIFEncoder{}.Encode(context.Background(), EncodeOptions{
		Path:       path,
		FrameCount: 1,
		Width:      1 << 16,
		Height:     1,
	}, func(_ context.Context, _ int) (*image.RGBA, error) {
		return solidFrame(4, 4, color.RGBA{A: 255}), nil
	})
	if err == nil {
		t.Fatal("Encode succeeded for an unencodable frame size")
	}
	if errors.Is(err, context.Canceled) {
		t.Fatalf("Encode = %v, want an encode failure", err)
	}
	if _, statErr := os.Stat(path); statErr != nil {
		t.Errorf("partial file removed on encode failure: %v", statErr)
	}
}

func TestSavePNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snap.png")
	if err := SavePNG(solidFrame(4, 4, color.RGBA{R: 9, A: 255}), path); err != nil {
		t.Fatalf("SavePNG: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("missing file: %v", err)
	}
}

func TestOrbitCameras(t *testing.T) {
	start := helio.Camera{Distance: 3, RotationY: 10}
	at := OrbitCameras(start, 4)

	if got := at(0); got != start {
		t.Errorf("frame 0 = %+v, want start pose", got)
	}
	if got := at(1).RotationY; math.Abs(got-100) > 1e-9 {
		t.Errorf("frame 1 RotationY = %v, want 100", got)
	}
	if got := at(2).Distance; got != 3 {
		t.Errorf("frame 2 Distance = %v, want unchanged", got)
	}
}
