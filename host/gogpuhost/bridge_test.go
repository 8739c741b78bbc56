package gogpuhost

import (
	"context"
	"errors"
	"image"
	"testing"
	"time"

	"github.com/gogpu/gpucontext"

	"github.com/gogpu/gglive/event"
	"github.com/gogpu/gglive/loop"
	"github.com/gogpu/gglive/render"
)

type posted struct {
	id loop.WindowID
	ev event.WindowEvent
}

type recorder struct{ got []posted }

func (r *recorder) PostWindowEvent(id loop.WindowID, ev event.WindowEvent) {
	r.got = append(r.got, posted{id, ev})
}

func attached(t *testing.T) (*bridge, *recorder, *loop.Window) {
	t.Helper()
	l := loop.New[int]()
	w, err := l.CreateWindow(loop.WindowAttributes{Title: "t", Width: 640, Height: 480})
	if err != nil {
		t.Fatalf("CreateWindow: %v", err)
	}
	rec := &recorder{}
	b := newBridge()
	b.l = rec
	b.attach(w)
	return b, rec, w
}

func TestBridgeResizeDeduplicates(t *testing.T) {
	b, rec, w := attached(t)

	b.resize(800, 600)
	b.resize(800, 600)
	b.resize(1024, 768)

	if len(rec.got) != 2 {
		t.Fatalf("posted %d events, want 2", len(rec.got))
	}
	if rec.got[0].id != w.ID() {
		t.Errorf("id = %d, want %d", rec.got[0].id, w.ID())
	}
	if got := rec.got[1].ev; got != (event.Resized{Width: 1024, Height: 768}) {
		t.Errorf("second event = %#v", got)
	}
}

func TestBridgeIgnoresInputBeforeWindow(t *testing.T) {
	rec := &recorder{}
	b := newBridge()
	b.l = rec

	b.resize(800, 600)
	b.key(gpucontext.KeySpace, true)
	b.scroll(event.LineDelta, 0, 1)
	b.redraw()
	b.close()

	if len(rec.got) != 0 {
		t.Fatalf("posted %v before the window existed", rec.got)
	}
	if b.frame() != nil {
		t.Error("frame before window should be nil")
	}
}

// events records the callbacks a bridge subscribes with.
type events struct {
	gpucontext.NullEventSource
	press, release func(gpucontext.Key, gpucontext.Modifiers)
	scroll         func(float64, float64)
	focus          func(bool)
}

func (e *events) OnKeyPress(fn func(gpucontext.Key, gpucontext.Modifiers))   { e.press = fn }
func (e *events) OnKeyRelease(fn func(gpucontext.Key, gpucontext.Modifiers)) { e.release = fn }
func (e *events) OnScroll(fn func(float64, float64))                         { e.scroll = fn }
func (e *events) OnFocus(fn func(bool))                                      { e.focus = fn }

// scrollEvents additionally offers detailed scroll events.
type scrollEvents struct {
	events
	detailed func(gpucontext.ScrollEvent)
}

func (e *scrollEvents) OnScrollEvent(fn func(gpucontext.ScrollEvent)) { e.detailed = fn }

func TestBridgeKeys(t *testing.T) {
	b, rec, _ := attached(t)
	src := &events{}
	b.subscribe(src)

	tests := []struct {
		key  gpucontext.Key
		want event.Key
	}{
		{gpucontext.KeySpace, event.KeySpace},
		{gpucontext.KeyEscape, event.KeyEscape},
		{gpucontext.KeyLeft, event.KeyLeft},
		{gpucontext.KeyRight, event.KeyRight},
		{gpucontext.KeyUp, event.KeyUp},
		{gpucontext.KeyDown, event.KeyDown},
	}
	for _, tt := range tests {
		rec.got = nil
		src.press(tt.key, 0)
		src.release(tt.key, 0)
		if len(rec.got) != 2 {
			t.Fatalf("%v: posted %d events, want 2", tt.want, len(rec.got))
		}
		if got := rec.got[0].ev; got != (event.KeyboardInput{Key: tt.want, Pressed: true}) {
			t.Errorf("%v press = %#v", tt.want, got)
		}
		if got := rec.got[1].ev; got != (event.KeyboardInput{Key: tt.want, Pressed: false}) {
			t.Errorf("%v release = %#v", tt.want, got)
		}
	}

	rec.got = nil
	src.press(gpucontext.KeyTab, 0)
	if len(rec.got) != 0 {
		t.Errorf("unmapped key posted %v", rec.got)
	}
}

func TestBridgeScroll(t *testing.T) {
	b, rec, _ := attached(t)
	src := &events{}
	b.subscribe(src)

	src.scroll(0, -2)
	src.scroll(0, 0)

	if len(rec.got) != 1 {
		t.Fatalf("posted %d events, want 1", len(rec.got))
	}
	want := event.MouseWheel{Unit: event.LineDelta, Y: 2}
	if rec.got[0].ev != want {
		t.Errorf("event = %#v, want %#v", rec.got[0].ev, want)
	}
}

func TestBridgeScrollEvent(t *testing.T) {
	b, rec, _ := attached(t)
	src := &scrollEvents{}
	b.subscribe(src)

	if src.scroll != nil {
		t.Fatal("basic scroll should not be subscribed when detailed events exist")
	}
	src.detailed(gpucontext.ScrollEvent{DeltaY: 30, DeltaMode: gpucontext.ScrollDeltaPixel})
	src.detailed(gpucontext.ScrollEvent{DeltaY: -1, DeltaMode: gpucontext.ScrollDeltaLine})

	if len(rec.got) != 2 {
		t.Fatalf("posted %d events, want 2", len(rec.got))
	}
	if want := (event.MouseWheel{Unit: event.PixelDelta, Y: -30}); rec.got[0].ev != want {
		t.Errorf("pixel event = %#v, want %#v", rec.got[0].ev, want)
	}
	if want := (event.MouseWheel{Unit: event.LineDelta, Y: 1}); rec.got[1].ev != want {
		t.Errorf("line event = %#v, want %#v", rec.got[1].ev, want)
	}
}

func TestBridgeFocus(t *testing.T) {
	b, rec, _ := attached(t)
	src := &events{}
	b.subscribe(src)

	src.focus(false)
	if len(rec.got) != 1 || rec.got[0].ev != (event.Focused{Focused: false}) {
		t.Errorf("posted %v, want one Focused{false}", rec.got)
	}
}

func TestBridgeFrame(t *testing.T) {
	b, _, w := attached(t)
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	w.Present(img)
	if b.frame() != img {
		t.Error("frame should return the presented image")
	}
}

func TestBridgeCloseOnce(t *testing.T) {
	b, rec, _ := attached(t)
	b.close()
	b.close()
	if len(rec.got) != 1 {
		t.Fatalf("posted %d events, want 1", len(rec.got))
	}
	if _, ok := rec.got[0].ev.(event.CloseRequested); !ok {
		t.Errorf("event = %#v, want CloseRequested", rec.got[0].ev)
	}
}

func TestOpenDevice(t *testing.T) {
	b := newBridge()
	done := make(chan render.DeviceHandle, 1)
	go func() {
		h, err := b.OpenDevice(context.Background(), nil)
		if err != nil {
			t.Errorf("OpenDevice: %v", err)
		}
		done <- h
	}()

	b.provide(render.SoftwareHandle{})
	b.provide(nil)

	select {
	case h := <-done:
		if _, ok := h.(render.SoftwareHandle); !ok {
			t.Errorf("handle = %T, want SoftwareHandle", h)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("OpenDevice did not return")
	}
}

func TestOpenDeviceAfterClose(t *testing.T) {
	b := newBridge()
	b.l = &recorder{}
	b.close()
	if _, err := b.OpenDevice(context.Background(), nil); !errors.Is(err, errWindowClosed) {
		t.Errorf("err = %v, want %v", err, errWindowClosed)
	}
}

func TestOpenDeviceContext(t *testing.T) {
	b := newBridge()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := b.OpenDevice(ctx, nil); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
