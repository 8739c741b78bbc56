// Package event defines the events that flow through the gglive dispatch
// loop and the queue that carries them.
//
// Two families exist: window events ([WindowEvent]) originate from the
// host windowing system, and user events ([Event]) originate from
// background producers such as the asset watcher. Both are delivered on the
// single dispatch goroutine.
package event

import "fmt"

// Event is a user event delivered to the application through the event
// bridge. Implementations are plain values and must be safe to hand to
// another goroutine once sent.
type Event interface {
	isEvent()
}

// AssetChanged carries the full contents of a watched asset after a
// completed write, or the initial snapshot taken when watching starts.
type AssetChanged struct {
	Name  string
	Bytes []byte
}

func (AssetChanged) isEvent() {}

// String returns a short description that does not dump the payload.
func (e AssetChanged) String() string {
	return fmt.Sprintf("AssetChanged(%s, %d bytes)", e.Name, len(e.Bytes))
}

// WindowEvent is an event produced by the host for a specific window.
type WindowEvent interface {
	isWindowEvent()
}

// ScrollUnit distinguishes wheel deltas reported in lines from those
// reported in pixels (trackpads).
type ScrollUnit uint8

const (
	// LineDelta reports scroll amounts in lines.
	LineDelta ScrollUnit = iota
	// PixelDelta reports scroll amounts in physical pixels.
	PixelDelta
)

// MouseWheel reports a scroll of the mouse wheel or trackpad.
type MouseWheel struct {
	Unit ScrollUnit
	X, Y float64
}

// PinchGesture reports a two-finger pinch. Positive deltas zoom in.
type PinchGesture struct {
	Delta float64
}

// PanGesture reports a two-finger pan in pixels.
type PanGesture struct {
	DX, DY float64
}

// KeyboardInput reports a key press or release.
type KeyboardInput struct {
	Key     Key
	Pressed bool
}

// Resized reports the new inner size of the window in pixels.
type Resized struct {
	Width, Height int
}

// RedrawRequested asks the application to render a frame.
type RedrawRequested struct{}

// CloseRequested reports that the user asked to close the window.
type CloseRequested struct{}

// Focused reports a focus change.
type Focused struct {
	Focused bool
}

func (MouseWheel) isWindowEvent()      {}
func (PinchGesture) isWindowEvent()    {}
func (PanGesture) isWindowEvent()      {}
func (KeyboardInput) isWindowEvent()   {}
func (Resized) isWindowEvent()         {}
func (RedrawRequested) isWindowEvent() {}
func (CloseRequested) isWindowEvent()  {}
func (Focused) isWindowEvent()         {}

// Key identifies a physical key. Only the keys gglive reacts to are named.
type Key uint16

const (
	KeyUnknown Key = iota
	KeyLeft
	KeyRight
	KeyUp
	KeyDown
	KeySpace
	KeyEscape
)

var keyNames = [...]string{
	KeyUnknown: "Unknown",
	KeyLeft:    "Left",
	KeyRight:   "Right",
	KeyUp:      "Up",
	KeyDown:    "Down",
	KeySpace:   "Space",
	KeyEscape:  "Escape",
}

// String returns the key name.
func (k Key) String() string {
	if int(k) < len(keyNames) {
		return keyNames[k]
	}
	return fmt.Sprintf("Key(%d)", uint16(k))
}

// DeviceEvent is a raw device event not tied to a window, such as
// unaccelerated mouse motion.
type DeviceEvent struct {
	DeviceID uint32
	DX, DY   float64
}

// StartCause describes why the loop woke up for a new batch of events.
type StartCause uint8

const (
	// StartInit is the cause of the very first batch.
	StartInit StartCause = iota
	// StartWaitCancelled means new events arrived while the loop was idle.
	StartWaitCancelled
	// StartPoll means the loop woke without waiting.
	StartPoll
)

// String returns the cause name.
func (c StartCause) String() string {
	switch c {
	case StartInit:
		return "Init"
	case StartWaitCancelled:
		return "WaitCancelled"
	case StartPoll:
		return "Poll"
	default:
		return fmt.Sprintf("StartCause(%d)", uint8(c))
	}
}
