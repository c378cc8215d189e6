// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package export writes rendered frames to disk: single-frame PNG
// snapshots and rotating-view animations. Frame capture from a live
// render loop goes through FrameServer so export never touches graphics
// state from the wrong goroutine.
package export

import (
	"fmt"
	"image"
	"image/png"
	"os"
)

// SavePNG writes an image to path as PNG. The file is created or
// truncated; a partial file from a failed encode is removed.
func SavePNG(img image.Image, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export: create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("export: encode %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return fmt.Errorf("export: close %s: %w", path, err)
	}
	return nil
}
