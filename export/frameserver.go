// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package export

import (
	"context"
	"errors"
	"image"
	"sync"

	"github.com/gogpu/helio"
)

// ErrServerClosed is returned by Capture after the frame server shuts
// down.
var ErrServerClosed = errors.New("export: frame server closed")

// frameRequest is one capture rendezvous: the camera to render with and
// the channel the rendered frame comes back on.
type frameRequest struct {
	cam   helio.Camera
	reply chan *image.RGBA
}

// FrameServer hands frames from the rendering goroutine to an exporter.
//
// Rendering state is single-threaded, so the exporter never renders
// itself: it posts a request carrying the camera pose it wants, and the
// render loop answers on its next iteration by calling TryServe. The
// request channel holds a single slot, which makes capture a strict
// request/response rendezvous: at most one frame is in flight, and the
// exporter's pace is naturally throttled to the render loop's.
type FrameServer struct {
	requests  chan frameRequest
	done      chan struct{}
	closeOnce sync.Once
}

// NewFrameServer creates an open frame server.
func NewFrameServer() *FrameServer {
	return &FrameServer{
		requests: make(chan frameRequest, 1),
		done:     make(chan struct{}),
	}
}

// Capture requests one frame rendered with the given camera and blocks
// until the render loop answers, the context is canceled, or the server
// closes. Called from the exporter goroutine.
func (s *FrameServer) Capture(ctx context.Context, cam helio.Camera) (*image.RGBA, error) {
	req := frameRequest{cam: cam, reply: make(chan *image.RGBA, 1)}
	select {
	case s.requests <- req:
	case <-s.done:
		return nil, ErrServerClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case img := <-req.reply:
		return img, nil
	case <-s.done:
		return nil, ErrServerClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// TryServe answers a pending capture request, if any, by invoking render
// with the requested camera. It never blocks and returns whether a frame
// was served. Called from the rendering goroutine, typically once per
// frame.
func (s *FrameServer) TryServe(render func(cam helio.Camera) *image.RGBA) bool {
	select {
	case req := <-s.requests:
		req.reply <- render(req.cam)
		return true
	default:
		return false
	}
}

// Close shuts the server down, unblocking any waiting Capture with
// ErrServerClosed. Close is idempotent.
func (s *FrameServer) Close() {
	s.closeOnce.Do(func() { close(s.done) })
}
