// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gogpuhost

import (
	"context"
	"image"
	"sync"
	"sync/atomic"

	"github.com/gogpu/gpucontext"

	"github.com/gogpu/gglive/event"
	"github.com/gogpu/gglive/loop"
	"github.com/gogpu/gglive/render"
)

// poster is the part of the dispatch loop the bridge feeds.
type poster interface {
	PostWindowEvent(id loop.WindowID, ev event.WindowEvent)
}

// bridge connects gogpu callbacks, which run on the gogpu main loop, with
// the dispatch loop and the construction goroutine.
type bridge struct {
	l poster

	win atomic.Pointer[loop.Window]

	devices  chan render.DeviceHandle
	provided sync.Once

	closed    chan struct{}
	closeOnce sync.Once

	// Last size reported to the loop. Only the gogpu main loop touches it.
	width, height int
}

func newBridge() *bridge {
	return &bridge{
		devices: make(chan render.DeviceHandle, 1),
		closed:  make(chan struct{}),
	}
}

// attach is the loop's window hook.
func (b *bridge) attach(w *loop.Window) {
	b.win.CompareAndSwap(nil, w)
}

// provide hands the negotiated device to OpenDevice. Later calls are
// ignored.
func (b *bridge) provide(h render.DeviceHandle) {
	b.provided.Do(func() { b.devices <- h })
}

// OpenDevice blocks until gogpu has a GPU context, the window closes or
// ctx ends.
func (b *bridge) OpenDevice(ctx context.Context, _ *loop.Window) (render.DeviceHandle, error) {
	select {
	case h := <-b.devices:
		return h, nil
	case <-b.closed:
		return nil, errWindowClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// resize reports a surface size change. It reports nothing before the
// loop window exists; the first report after that always goes out.
func (b *bridge) resize(width, height int) {
	w := b.win.Load()
	if w == nil || (width == b.width && height == b.height) {
		return
	}
	b.width, b.height = width, height
	b.l.PostWindowEvent(w.ID(), event.Resized{Width: width, Height: height})
}

func (b *bridge) redraw() {
	if w := b.win.Load(); w != nil {
		w.RequestRedraw()
	}
}

// frame returns the last presented frame, or nil.
func (b *bridge) frame() *image.RGBA {
	w := b.win.Load()
	if w == nil {
		return nil
	}
	return w.Frame()
}

// subscribe routes src's input callbacks into the loop. Detailed scroll
// events are used when src offers them, for their delta unit.
func (b *bridge) subscribe(src gpucontext.EventSource) {
	src.OnKeyPress(func(k gpucontext.Key, _ gpucontext.Modifiers) { b.key(k, true) })
	src.OnKeyRelease(func(k gpucontext.Key, _ gpucontext.Modifiers) { b.key(k, false) })
	src.OnFocus(b.focus)
	if ses, ok := src.(gpucontext.ScrollEventSource); ok {
		ses.OnScrollEvent(b.scrollEvent)
		return
	}
	src.OnScroll(func(dx, dy float64) { b.scroll(event.LineDelta, dx, dy) })
}

func (b *bridge) post(ev event.WindowEvent) {
	if w := b.win.Load(); w != nil {
		b.l.PostWindowEvent(w.ID(), ev)
	}
}

func (b *bridge) key(k gpucontext.Key, pressed bool) {
	ek := keyFor(k)
	if ek == event.KeyUnknown {
		return
	}
	b.post(event.KeyboardInput{Key: ek, Pressed: pressed})
}

func (b *bridge) focus(focused bool) {
	b.post(event.Focused{Focused: focused})
}

// scroll posts a wheel event. gpucontext deltas are positive for
// scrolling down; wheel deltas are positive for scrolling up.
func (b *bridge) scroll(unit event.ScrollUnit, dx, dy float64) {
	if dx == 0 && dy == 0 {
		return
	}
	b.post(event.MouseWheel{Unit: unit, X: -dx, Y: -dy})
}

func (b *bridge) scrollEvent(ev gpucontext.ScrollEvent) {
	unit := event.LineDelta
	if ev.DeltaMode == gpucontext.ScrollDeltaPixel {
		unit = event.PixelDelta
	}
	b.scroll(unit, ev.DeltaX, ev.DeltaY)
}

// close reports the window closing. It is safe to call more than once.
func (b *bridge) close() {
	b.closeOnce.Do(func() {
		close(b.closed)
		b.post(event.CloseRequested{})
	})
}

func keyFor(k gpucontext.Key) event.Key {
	switch k {
	case gpucontext.KeySpace:
		return event.KeySpace
	case gpucontext.KeyEscape:
		return event.KeyEscape
	case gpucontext.KeyLeft:
		return event.KeyLeft
	case gpucontext.KeyRight:
		return event.KeyRight
	case gpucontext.KeyUp:
		return event.KeyUp
	case gpucontext.KeyDown:
		return event.KeyDown
	default:
		return event.KeyUnknown
	}
}
