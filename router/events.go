package router

import (
	"errors"

	"github.com/gogpu/gglive/event"
	"github.com/gogpu/gglive/loop"
)

// ErrConstruction wraps failures of the construction future.
var ErrConstruction = errors.New("router: application construction failed")

// Application is the fully initialized application. Once installed it
// receives every callback directly.
type Application = loop.Handler[event.Event]

// ProxyEvent is the user event type of a routed loop. It is one of
// [InitEvent], [AppEvent] or [InitFailed].
type ProxyEvent interface {
	isProxyEvent()
}

// InitEvent delivers the constructed application. It is sent exactly once
// by the construction future.
type InitEvent struct {
	App Application
}

// AppEvent wraps an application-level event.
type AppEvent struct {
	Event event.Event
}

// InitFailed reports that construction failed. The router stops the loop
// with Err.
type InitFailed struct {
	Err error
}

func (InitEvent) isProxyEvent()  {}
func (AppEvent) isProxyEvent()   {}
func (InitFailed) isProxyEvent() {}

// SendEvent is the event bridge: a cheap, copyable handle that injects
// application events into the loop from any goroutine. All copies deliver
// into the same queue.
type SendEvent struct {
	proxy loop.Proxy[ProxyEvent]
}

// NewSendEvent wraps a loop proxy.
func NewSendEvent(proxy loop.Proxy[ProxyEvent]) SendEvent {
	return SendEvent{proxy: proxy}
}

// Send enqueues ev for the application. It fails only with
// loop.ErrLoopClosed, after which there is no recipient left.
func (s SendEvent) Send(ev event.Event) error {
	return s.proxy.Send(AppEvent{Event: ev})
}
