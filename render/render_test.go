package render

import (
	"bytes"
	"encoding/binary"
	"errors"
	"image"
	"image/color"
	"image/png"
	"math"
	"testing"

	"github.com/gogpu/gputypes"
)

const validShader = `
@vertex
fn vs_main(@builtin(vertex_index) index: u32) -> @builtin(position) vec4<f32> {
    let x = f32(index & 1u);
    let y = f32(index >> 1u);
    return vec4<f32>(x * 2.0 - 1.0, 1.0 - y * 2.0, 0.0, 1.0);
}

@fragment
fn fs_main() -> @location(0) vec4<f32> {
    return vec4<f32>(1.0, 0.0, 0.0, 1.0);
}
`

func encodePNG(t *testing.T, w, h int, c color.RGBA) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.SetRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return buf.Bytes()
}

func newSoftwarePipeline(t *testing.T, w, h int) *Pipeline {
	t.Helper()
	dev, err := NewDevice(SoftwareHandle{}, nil)
	if err != nil {
		t.Fatalf("NewDevice: %v", err)
	}
	p, err := NewPipeline(dev, w, h)
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}
	t.Cleanup(func() { _ = p.Close() })
	return p
}

func TestUniformsBytes(t *testing.T) {
	u := Uniforms{Dim: [2]float32{640, 480}, Pos: [2]float32{0.25, -0.5}, Scale: 2}
	b := u.Bytes()

	want := []float32{640, 480, 0.25, -0.5, 2, 0, 0, 0}
	for i, w := range want {
		got := math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
		if got != w {
			t.Errorf("word %d = %v, want %v", i, got, w)
		}
	}
	if UniformSize%16 != 0 {
		t.Errorf("UniformSize = %d, not a multiple of 16", UniformSize)
	}
}

func TestBindGroupLayout(t *testing.T) {
	entries := BindGroupLayout()
	if len(entries) != 4 {
		t.Fatalf("len(entries) = %d, want 4", len(entries))
	}
	for i, e := range entries {
		if int(e.Binding) != i {
			t.Errorf("entries[%d].Binding = %d", i, e.Binding)
		}
	}
	if entries[BindingTexture].Texture == nil {
		t.Error("binding 0 should be a texture")
	}
	if entries[BindingLinearSampler].Sampler == nil || entries[BindingNearestSampler].Sampler == nil {
		t.Error("bindings 1 and 2 should be samplers")
	}
	u := entries[BindingUniforms]
	if u.Buffer == nil || u.Buffer.Type != gputypes.BufferBindingTypeUniform {
		t.Fatal("binding 3 should be a uniform buffer")
	}
	if u.Visibility != gputypes.ShaderStageVertex|gputypes.ShaderStageFragment {
		t.Errorf("binding 3 visibility = %v", u.Visibility)
	}
}

func TestCompile(t *testing.T) {
	prog, err := Compile(validShader)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if len(prog.SPIRV) == 0 {
		t.Fatal("empty SPIR-V")
	}
	// SPIR-V magic number.
	if prog.SPIRV[0] != 0x07230203 {
		t.Errorf("magic = %#x", prog.SPIRV[0])
	}
}

func TestCompileMissingEntryPoints(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"no vertex", "@fragment\nfn fs_main() -> @location(0) vec4<f32> { return vec4<f32>(1.0); }"},
		{"no fragment", "@vertex\nfn vs_main() -> @builtin(position) vec4<f32> { return vec4<f32>(1.0); }"},
		{"renamed", "@vertex fn vs_main2() {} @fragment fn fs_main() {}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(tt.src)
			if !errors.Is(err, ErrMissingEntryPoint) {
				t.Errorf("err = %v, want ErrMissingEntryPoint", err)
			}
		})
	}
}

func TestLoadShaderKeepsPrevious(t *testing.T) {
	p := newSoftwarePipeline(t, 16, 16)
	if err := p.LoadShader(validShader); err != nil {
		t.Fatalf("LoadShader: %v", err)
	}
	before := p.Program()

	err := p.LoadShader("@vertex fn vs_main( @fragment fn fs_main(")
	var ce *CompileError
	if !errors.As(err, &ce) {
		t.Fatalf("err = %v, want *CompileError", err)
	}
	if p.Program() != before {
		t.Error("failed compile replaced the active program")
	}
}

func TestLoadImageKeepsPrevious(t *testing.T) {
	p := newSoftwarePipeline(t, 16, 16)
	if err := p.LoadImage(encodePNG(t, 3, 2, color.RGBA{R: 255, A: 255})); err != nil {
		t.Fatalf("LoadImage: %v", err)
	}
	if w, h := p.ImageSize(); w != 3 || h != 2 {
		t.Fatalf("ImageSize = %dx%d, want 3x2", w, h)
	}

	err := p.LoadImage([]byte("not an image"))
	var de *DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("err = %v, want *DecodeError", err)
	}
	if w, h := p.ImageSize(); w != 3 || h != 2 {
		t.Errorf("ImageSize after failure = %dx%d, want 3x2", w, h)
	}
}

func TestRenderNotReady(t *testing.T) {
	p := newSoftwarePipeline(t, 16, 16)
	if _, err := p.Render(Uniforms{Scale: 1}); !errors.Is(err, ErrNotReady) {
		t.Errorf("err = %v, want ErrNotReady", err)
	}
	if err := p.LoadShader(validShader); err != nil {
		t.Fatal(err)
	}
	if _, err := p.Render(Uniforms{Scale: 1}); !errors.Is(err, ErrNotReady) {
		t.Errorf("shader only: err = %v, want ErrNotReady", err)
	}
}

func TestRenderComposesImage(t *testing.T) {
	p := newSoftwarePipeline(t, 64, 48)
	if err := p.LoadShader(validShader); err != nil {
		t.Fatal(err)
	}
	if err := p.LoadImage(encodePNG(t, 8, 8, color.RGBA{R: 255, A: 255})); err != nil {
		t.Fatal(err)
	}

	frame, err := p.Render(Uniforms{Dim: [2]float32{8, 8}, Scale: 0.5})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if b := frame.Bounds(); b.Dx() != 64 || b.Dy() != 48 {
		t.Fatalf("frame = %v, want 64x48", b)
	}

	corner := frame.RGBAAt(0, 0)
	if corner.G < 200 || corner.R > 50 {
		t.Errorf("corner = %v, want the green clear color", corner)
	}
	center := frame.RGBAAt(32, 24)
	if center.R < 200 || center.G > 50 {
		t.Errorf("center = %v, want the red image", center)
	}
}

func TestResizeClamps(t *testing.T) {
	p := newSoftwarePipeline(t, 10, 10)
	p.Resize(0, -5)
	if w, h := p.Size(); w != 1 || h != 1 {
		t.Errorf("Size = %dx%d, want 1x1", w, h)
	}
	p.Resize(32, 16)
	if w, h := p.Size(); w != 32 || h != 16 {
		t.Errorf("Size = %dx%d, want 32x16", w, h)
	}
}

func TestNewPipelineNilDevice(t *testing.T) {
	if _, err := NewPipeline(nil, 1, 1); !errors.Is(err, ErrNilDevice) {
		t.Errorf("err = %v, want ErrNilDevice", err)
	}
}

func TestErrorMessages(t *testing.T) {
	cause := errors.New("boom")
	if got := (&CompileError{Err: cause}).Error(); got != "render: compile shader: boom" {
		t.Errorf("CompileError = %q", got)
	}
	if got := (&DecodeError{Err: cause}).Error(); got != "render: decode image: boom" {
		t.Errorf("DecodeError = %q", got)
	}
}
