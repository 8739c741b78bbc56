package app

import (
	"math"

	"github.com/gogpu/gglive/event"
	"github.com/gogpu/gglive/render"
)

// Zoom and pan tuning.
const (
	zoomBase      = 1.1
	pixelZoomStep = 0.1
	panDivisor    = 500
	arrowStep     = 0.1
)

// View is the pan/zoom state.
type View struct {
	Dim   [2]float32
	Pos   [2]float32
	Scale float32
}

// NewView returns the initial view: centred, unscaled.
func NewView() View {
	return View{Scale: 1}
}

// Reset returns the view to its initial position and scale. The image
// dimensions are kept.
func (v *View) Reset() {
	v.Pos = [2]float32{}
	v.Scale = 1
}

func (v *View) zoom(exp float64) {
	v.Scale *= float32(math.Pow(zoomBase, exp))
}

// Wheel applies a mouse wheel scroll.
func (v *View) Wheel(ev event.MouseWheel) {
	switch ev.Unit {
	case event.LineDelta:
		v.zoom(ev.Y)
	case event.PixelDelta:
		v.zoom(ev.Y * pixelZoomStep)
	}
}

// Pinch applies a pinch gesture.
func (v *View) Pinch(delta float64) { v.zoom(delta) }

// Pan applies a pan gesture.
func (v *View) Pan(dx, dy float64) {
	v.Pos[0] += float32(dx) / panDivisor / v.Scale
	v.Pos[1] += float32(dy) / panDivisor / v.Scale
}

// Key applies an arrow key press. It reports whether the key moved the
// view.
func (v *View) Key(k event.Key) bool {
	step := arrowStep / v.Scale
	switch k {
	case event.KeyLeft:
		v.Pos[0] += step
	case event.KeyRight:
		v.Pos[0] -= step
	case event.KeyUp:
		v.Pos[1] -= step
	case event.KeyDown:
		v.Pos[1] += step
	default:
		return false
	}
	return true
}

// Uniforms returns the view as shader uniforms.
func (v View) Uniforms() render.Uniforms {
	return render.Uniforms{Dim: v.Dim, Pos: v.Pos, Scale: v.Scale}
}
