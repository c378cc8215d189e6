// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package mesh

import (
	"errors"
	"testing"
)

func TestNewBuffer(t *testing.T) {
	b := NewBuffer(4, 2)
	if b.VertexCount() != 4 {
		t.Errorf("VertexCount = %d, want 4", b.VertexCount())
	}
	if b.TriangleCount() != 2 {
		t.Errorf("TriangleCount = %d, want 2", b.TriangleCount())
	}
	if err := b.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestBufferValidate(t *testing.T) {
	tests := []struct {
		name    string
		buf     Buffer
		wantErr error
	}{
		{
			"valid",
			Buffer{
				Positions: []float32{0, 0, 0, 1, 0, 0, 0, 1, 0},
				TexCoords: []float32{0, 0, 1, 0, 0, 1},
				Faces:     []uint32{0, 1, 2},
			},
			nil,
		},
		{
			"position shape",
			Buffer{Positions: []float32{0, 0}},
			ErrBufferShape,
		},
		{
			"texcoord mismatch",
			Buffer{
				Positions: []float32{0, 0, 0, 1, 0, 0, 0, 1, 0},
				TexCoords: []float32{0, 0},
			},
			ErrTexCoordMismatch,
		},
		{
			"face out of range",
			Buffer{
				Positions: []float32{0, 0, 0, 1, 0, 0, 0, 1, 0},
				TexCoords: []float32{0, 0, 1, 0, 0, 1},
				Faces:     []uint32{0, 1, 3},
			},
			ErrFaceIndexRange,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.buf.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestSetVertex(t *testing.T) {
	b := NewBuffer(2, 0)
	b.setVertex(1, 1, 2, 3, 0.25, 0.75)
	if b.Positions[3] != 1 || b.Positions[4] != 2 || b.Positions[5] != 3 {
		t.Errorf("Positions = %v", b.Positions[3:6])
	}
	if b.TexCoords[2] != 0.25 || b.TexCoords[3] != 0.75 {
		t.Errorf("TexCoords = %v", b.TexCoords[2:4])
	}
}
