// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"fmt"

	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"
)

// ShaderCompileError reports a WGSL compilation failure with the compiler
// output attached, so shader bugs surface with their diagnostics instead
// of an opaque failure.
type ShaderCompileError struct {
	Label string
	Log   string
	Err   error
}

func (e *ShaderCompileError) Error() string {
	if e.Log != "" {
		return fmt.Sprintf("gpu: compile shader %q: %v\n%s", e.Label, e.Err, e.Log)
	}
	return fmt.Sprintf("gpu: compile shader %q: %v", e.Label, e.Err)
}

func (e *ShaderCompileError) Unwrap() error { return e.Err }

// shellWGSL is the shared pipeline for hemisphere shells and prominence
// bands: position and UV through a model-view-projection matrix, textured
// fragment output. Blending and depth-write differences between shells are
// pipeline state, not shader logic.
const shellWGSL = `
struct Uniforms {
    mvp: mat4x4<f32>,
};

@group(0) @binding(0) var<uniform> uniforms: Uniforms;
@group(0) @binding(1) var shell_texture: texture_2d<f32>;
@group(0) @binding(2) var shell_sampler: sampler;

struct VertexInput {
    @location(0) position: vec3<f32>,
    @location(1) uv: vec2<f32>,
};

struct VertexOutput {
    @builtin(position) clip_position: vec4<f32>,
    @location(0) uv: vec2<f32>,
};

@vertex
fn vs_main(in: VertexInput) -> VertexOutput {
    var out: VertexOutput;
    out.clip_position = uniforms.mvp * vec4<f32>(in.position, 1.0);
    out.uv = in.uv;
    return out;
}

@fragment
fn fs_main(in: VertexOutput) -> @location(0) vec4<f32> {
    return textureSample(shell_texture, shell_sampler, in.uv);
}
`

// surfaceWGSL shades the emission line surface mesh. The texture is a 1D
// color ramp addressed by the scaled intensity baked into the U
// coordinate.
const surfaceWGSL = `
struct Uniforms {
    mvp: mat4x4<f32>,
};

@group(0) @binding(0) var<uniform> uniforms: Uniforms;
@group(0) @binding(1) var ramp_texture: texture_2d<f32>;
@group(0) @binding(2) var ramp_sampler: sampler;

struct VertexInput {
    @location(0) position: vec3<f32>,
    @location(1) uv: vec2<f32>,
};

struct VertexOutput {
    @builtin(position) clip_position: vec4<f32>,
    @location(0) uv: vec2<f32>,
};

@vertex
fn vs_main(in: VertexInput) -> VertexOutput {
    var out: VertexOutput;
    out.clip_position = uniforms.mvp * vec4<f32>(in.position, 1.0);
    out.uv = in.uv;
    return out;
}

@fragment
fn fs_main(in: VertexOutput) -> @location(0) vec4<f32> {
    let base = textureSample(ramp_texture, ramp_sampler, in.uv);
    return vec4<f32>(base.rgb, 1.0);
}
`

// CompileShellShader compiles the shell pipeline shader to a HAL module.
func CompileShellShader(device hal.Device) (hal.ShaderModule, error) {
	return compileWGSL(device, "helio shell", shellWGSL)
}

// CompileSurfaceShader compiles the surface pipeline shader to a HAL
// module.
func CompileSurfaceShader(device hal.Device) (hal.ShaderModule, error) {
	return compileWGSL(device, "helio surface", surfaceWGSL)
}

func compileWGSL(device hal.Device, label, source string) (hal.ShaderModule, error) {
	words, err := compileToSPIRV(label, source)
	if err != nil {
		return nil, err
	}
	module, err := device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label: label,
		Source: hal.ShaderSource{
			SPIRV: words,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create shader module %q: %w", label, err)
	}
	return module, nil
}

// compileToSPIRV compiles WGSL source to SPIR-V words. SPIR-V is
// little-endian 32-bit words; naga emits bytes.
func compileToSPIRV(label, source string) ([]uint32, error) {
	spirv, err := naga.Compile(source)
	if err != nil {
		return nil, &ShaderCompileError{Label: label, Log: err.Error(), Err: err}
	}
	words := make([]uint32, len(spirv)/4)
	for i := range words {
		words[i] = uint32(spirv[i*4]) |
			uint32(spirv[i*4+1])<<8 |
			uint32(spirv[i*4+2])<<16 |
			uint32(spirv[i*4+3])<<24
	}
	return words, nil
}
