// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package render is the rendering side of the viewer: it compiles the
// WGSL shader program, decodes the image and composes frames.
//
// # Key Principle
//
// render RECEIVES a GPU device from the host, it does NOT create one. The
// host hands over a gpucontext.DeviceProvider once device negotiation
// finishes; until then there is no [Device] and the application is not
// constructed.
//
// # Pipeline
//
// A [Pipeline] holds the current shader program and the current image.
// Loading either one is transactional: on failure the previous program or
// image stays active and the error is returned to the caller.
//
//	p := render.NewPipeline(dev, 800, 600)
//	if err := p.LoadShader(src); err != nil {
//	    // previous program still active
//	}
//	_ = p.LoadImage(png)
//	frame, err := p.Render(render.Uniforms{Scale: 1})
//
// # Uniforms
//
// The view state travels to the shader in a 32-byte uniform block
// (multiple of 16 bytes, little-endian):
//
//	offset  0: dim.x   f32
//	offset  4: dim.y   f32
//	offset  8: pos.x   f32
//	offset 12: pos.y   f32
//	offset 16: scale   f32
//	offset 20: padding (12 bytes, zero)
//
// # Bind Group Layout
//
//	binding 0: texture_2d<f32>      (fragment)
//	binding 1: sampler, linear      (fragment)
//	binding 2: sampler, nearest     (fragment)
//	binding 3: uniform buffer View  (vertex | fragment)
//
// # Composition
//
// Frames are composed on the CPU with gg: the window is cleared to green
// and the image is drawn fitted to the window, then panned and zoomed by
// the view uniforms.
package render
