package loop

import (
	"image"
	"sync"
	"sync/atomic"

	"github.com/gogpu/gglive/event"
)

// WindowID identifies a window created by a loop. IDs are never reused
// within a process.
type WindowID uint64

var nextWindowID atomic.Uint64

// WindowAttributes configures a window at creation.
type WindowAttributes struct {
	Title  string
	Width  int
	Height int
}

// Window is a host window. It is owned by the loop's window arena for the
// lifetime of the process and shared by pointer with the application and
// the host; all methods are safe for concurrent use.
type Window struct {
	id    WindowID
	title string
	post  func(WindowID, event.WindowEvent)
	hook  func(*Window, *image.RGBA)

	mu     sync.Mutex
	width  int
	height int

	redrawPending atomic.Bool
	frame         atomic.Pointer[image.RGBA]
	frames        atomic.Uint64
}

func newWindow(attrs WindowAttributes, post func(WindowID, event.WindowEvent), hook func(*Window, *image.RGBA)) *Window {
	return &Window{
		id:     WindowID(nextWindowID.Add(1)),
		title:  attrs.Title,
		post:   post,
		hook:   hook,
		width:  attrs.Width,
		height: attrs.Height,
	}
}

// ID returns the window identifier.
func (w *Window) ID() WindowID { return w.id }

// Title returns the window title.
func (w *Window) Title() string { return w.title }

// Size returns the current inner size in pixels.
func (w *Window) Size() (width, height int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.width, w.height
}

// setSize records a new inner size. The loop calls it before dispatching
// a Resized event so handlers observe a consistent size.
func (w *Window) setSize(width, height int) {
	w.mu.Lock()
	w.width, w.height = width, height
	w.mu.Unlock()
}

// RequestRedraw schedules a RedrawRequested event for this window.
// Requests made while one is already pending are coalesced.
func (w *Window) RequestRedraw() {
	if w.redrawPending.CompareAndSwap(false, true) {
		w.post(w.id, event.RedrawRequested{})
	}
}

// Present publishes a rendered frame for the host to display.
func (w *Window) Present(img *image.RGBA) {
	w.frame.Store(img)
	w.frames.Add(1)
	if w.hook != nil {
		w.hook(w, img)
	}
}

// Frame returns the most recently presented frame, or nil.
func (w *Window) Frame() *image.RGBA {
	return w.frame.Load()
}

// FrameCount returns how many frames have been presented.
func (w *Window) FrameCount() uint64 {
	return w.frames.Load()
}

// arena holds every window of a loop. Entries are never removed: a window
// lives as long as the process.
type arena struct {
	mu      sync.RWMutex
	windows map[WindowID]*Window
	order   []WindowID
}

func (a *arena) add(w *Window) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.windows == nil {
		a.windows = make(map[WindowID]*Window)
	}
	a.windows[w.id] = w
	a.order = append(a.order, w.id)
}

func (a *arena) get(id WindowID) (*Window, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	w, ok := a.windows[id]
	return w, ok
}

func (a *arena) all() []*Window {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]*Window, 0, len(a.order))
	for _, id := range a.order {
		out = append(out, a.windows[id])
	}
	return out
}
