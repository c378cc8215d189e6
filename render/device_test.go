// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"reflect"
	"testing"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

func TestNullDeviceHandle(t *testing.T) {
	handle := NullDeviceHandle{}

	if handle.Device() != nil {
		t.Error("Device() != nil for null handle")
	}
	if handle.Queue() != nil {
		t.Error("Queue() != nil for null handle")
	}
	if handle.Adapter() != nil {
		t.Error("Adapter() != nil for null handle")
	}
	if got := handle.SurfaceFormat(); got != gputypes.TextureFormatUndefined {
		t.Errorf("SurfaceFormat() = %v, want TextureFormatUndefined", got)
	}
	if info := handle.AdapterInfo(); !reflect.DeepEqual(info, gpucontext.AdapterInfo{}) {
		t.Errorf("AdapterInfo() = %+v, want zero value", info)
	}
}

func TestDeviceHandleAlias(t *testing.T) {
	// DeviceHandle must stay assignable to gpucontext.DeviceProvider so
	// host providers plug in without adaptation.
	acceptProvider := func(_ gpucontext.DeviceProvider) {}
	acceptProvider(NullDeviceHandle{})
}
