package render

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"

	// Image decoders accepted by LoadImage.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/gogpu/gg"

	"github.com/gogpu/gglive"
)

// ClearColor is the background behind the image.
var ClearColor = gg.RGB(0, 1, 0)

// nearestAbove is the zoom factor above which pixels are sampled with the
// nearest filter, matching the shader's sampler choice.
const nearestAbove = 4

// Pipeline holds the active shader program and image and composes frames.
// It is used from the dispatch loop goroutine only.
type Pipeline struct {
	dev     *Device
	width   int
	height  int
	dc      *gg.Context
	program *Program
	image   *gg.ImageBuf
	dim     [2]int
}

// NewPipeline returns a pipeline for a width×height surface on dev.
func NewPipeline(dev *Device, width, height int) (*Pipeline, error) {
	if dev == nil {
		return nil, ErrNilDevice
	}
	p := &Pipeline{dev: dev}
	p.Resize(width, height)
	return p, nil
}

// Device returns the device the pipeline compiles against.
func (p *Pipeline) Device() *Device { return p.dev }

// LoadShader compiles src and makes it the active program. On failure
// the previous program stays active and a *CompileError is returned.
func (p *Pipeline) LoadShader(src string) error {
	prog, err := Compile(src)
	if err != nil {
		return &CompileError{Err: err}
	}
	p.dev.installShader(prog.SPIRV)
	p.program = prog
	gglive.Logger().Debug("render: shader loaded", "words", len(prog.SPIRV))
	return nil
}

// LoadImage decodes data (PNG, JPEG, GIF, BMP, TIFF or WebP) and makes it
// the active image. On failure the previous image stays active and a
// *DecodeError is returned.
func (p *Pipeline) LoadImage(data []byte) error {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return &DecodeError{Err: err}
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return &DecodeError{Err: fmt.Errorf("%w: %dx%d", ErrEmptyImage, b.Dx(), b.Dy())}
	}
	p.image = gg.ImageBufFromImage(img)
	p.dim = [2]int{b.Dx(), b.Dy()}
	gglive.Logger().Debug("render: image loaded", "format", format, "width", b.Dx(), "height", b.Dy())
	return nil
}

// Program returns the active shader program, or nil.
func (p *Pipeline) Program() *Program { return p.program }

// ImageSize returns the size of the active image, or zero.
func (p *Pipeline) ImageSize() (width, height int) { return p.dim[0], p.dim[1] }

// Ready reports whether both a program and an image are loaded.
func (p *Pipeline) Ready() bool { return p.program != nil && p.image != nil }

// Size returns the surface size.
func (p *Pipeline) Size() (width, height int) { return p.width, p.height }

// Resize sets the surface size. Dimensions are clamped to at least 1.
func (p *Pipeline) Resize(width, height int) {
	width, height = max(width, 1), max(height, 1)
	if p.dc != nil && width == p.width && height == p.height {
		return
	}
	if p.dc != nil {
		_ = p.dc.Close()
	}
	p.width, p.height = width, height
	p.dc = gg.NewContext(width, height)
}

// Render composes one frame with the view state u.
func (p *Pipeline) Render(u Uniforms) (*image.RGBA, error) {
	if !p.Ready() || p.dc == nil {
		return nil, ErrNotReady
	}
	scale := float64(u.Scale)
	if scale <= 0 {
		scale = 1
	}
	w, h := float64(p.width), float64(p.height)

	// Screen position of the image's top-left corner: the inverse of the
	// shader's uv = (s - 0.5) / scale + 0.5 - pos.
	x0 := ((float64(u.Pos[0])-0.5)*scale + 0.5) * w
	y0 := ((float64(u.Pos[1])-0.5)*scale + 0.5) * h

	interp := gg.InterpBilinear
	if scale > nearestAbove {
		interp = gg.InterpNearest
	}

	p.dc.ClearWithColor(ClearColor)
	p.dc.DrawImageEx(p.image, gg.DrawImageOptions{
		X:             x0,
		Y:             y0,
		DstWidth:      w * scale,
		DstHeight:     h * scale,
		Interpolation: interp,
		Opacity:       1,
		BlendMode:     gg.BlendNormal,
	})
	return toRGBA(p.dc.Image()), nil
}

// Close releases the composition surface.
func (p *Pipeline) Close() error {
	if p.dc == nil {
		return nil
	}
	err := p.dc.Close()
	p.dc = nil
	return err
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba
}
