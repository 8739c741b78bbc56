package loop

import "github.com/gogpu/gglive/event"

// ActiveLoop is the view of a running loop that handlers receive on every
// callback. It must only be used from the dispatch goroutine.
type ActiveLoop interface {
	// CreateWindow registers a new window with the host.
	CreateWindow(attrs WindowAttributes) (*Window, error)

	// Window looks up a window created by this loop.
	Window(id WindowID) (*Window, bool)

	// Exit stops the loop after the current event.
	Exit()

	// Fail stops the loop after the current event; Run returns err.
	Fail(err error)
}

// Handler is the callback surface the dispatch loop drives. T is the type
// of user events delivered through the loop's [Proxy].
//
// Every method is called on the dispatch goroutine and must return
// promptly: the loop cannot process further input until it does.
type Handler[T any] interface {
	// Resumed is the activation signal. It is delivered when the host
	// makes the application active, at least once per run.
	Resumed(el ActiveLoop)

	// Suspended is delivered when the host deactivates the application.
	Suspended(el ActiveLoop)

	// Exiting is delivered once, after the loop stops dispatching.
	Exiting(el ActiveLoop)

	// NewEvents is delivered before each batch of queued events.
	NewEvents(el ActiveLoop, cause event.StartCause)

	// WindowEvent delivers an event for one of the loop's windows.
	WindowEvent(el ActiveLoop, id WindowID, ev event.WindowEvent)

	// UserEvent delivers a value sent through a Proxy.
	UserEvent(el ActiveLoop, ev T)

	// DeviceEvent delivers a raw device event.
	DeviceEvent(el ActiveLoop, ev event.DeviceEvent)

	// AboutToWait is delivered after a batch, before the loop idles.
	AboutToWait(el ActiveLoop)

	// MemoryWarning is delivered when the host reports memory pressure.
	MemoryWarning(el ActiveLoop)
}

// NopHandler implements every Handler method as a no-op. Embed it to
// implement only the callbacks you need.
type NopHandler[T any] struct{}

func (NopHandler[T]) Resumed(ActiveLoop)                                  {}
func (NopHandler[T]) Suspended(ActiveLoop)                                {}
func (NopHandler[T]) Exiting(ActiveLoop)                                  {}
func (NopHandler[T]) NewEvents(ActiveLoop, event.StartCause)              {}
func (NopHandler[T]) WindowEvent(ActiveLoop, WindowID, event.WindowEvent) {}
func (NopHandler[T]) UserEvent(ActiveLoop, T)                             {}
func (NopHandler[T]) DeviceEvent(ActiveLoop, event.DeviceEvent)           {}
func (NopHandler[T]) AboutToWait(ActiveLoop)                              {}
func (NopHandler[T]) MemoryWarning(ActiveLoop)                            {}
