// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package router implements the deferred-init router: a loop handler that
// stands in for an application whose construction cannot complete
// synchronously.
//
// On the first activation signal the router starts the construction
// future on its [Executor] and returns immediately. Every window and
// application event that arrives while construction is outstanding is
// buffered. When the future completes, an [InitEvent] travels through the
// loop queue like any other event; the router installs the application,
// activates it, and replays the buffered window events and then the
// buffered application events, each in arrival order. From then on it
// forwards every callback unchanged.
//
// The router is a three-state machine (uninit → waiting → ready) with no
// way back. Each state is its own type; a transition consumes the old
// state value and installs a new one.
package router

import (
	"errors"
	"fmt"

	"github.com/gogpu/gglive"
	"github.com/gogpu/gglive/event"
	"github.com/gogpu/gglive/loop"
)

// Constructor starts building the application. It runs on the dispatch
// goroutine during the first activation, so it may create windows and
// start background producers, and returns the future that finishes the
// work asynchronously. send is the bridge the application's producers
// use to reach the loop.
type Constructor func(el loop.ActiveLoop, send SendEvent) Future

// Phase names a router state.
type Phase uint8

const (
	// PhaseUninit: no activation seen yet.
	PhaseUninit Phase = iota
	// PhaseWaiting: construction in flight, events are buffered.
	PhaseWaiting
	// PhaseReady: the application is installed.
	PhaseReady
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseUninit:
		return "uninit"
	case PhaseWaiting:
		return "waiting"
	case PhaseReady:
		return "ready"
	default:
		return fmt.Sprintf("Phase(%d)", uint8(p))
	}
}

type state interface {
	phase() Phase
}

// uninit holds the proxy that will carry the InitEvent.
type uninit struct {
	proxy loop.Proxy[ProxyEvent]
}

type windowEntry struct {
	id loop.WindowID
	ev event.WindowEvent
}

// waiting buffers events observed while construction is outstanding.
type waiting struct {
	windowEvents []windowEntry
	userEvents   []event.Event
}

// ready holds the live application.
type ready struct {
	app Application
}

func (*uninit) phase() Phase  { return PhaseUninit }
func (*waiting) phase() Phase { return PhaseWaiting }
func (*ready) phase() Phase   { return PhaseReady }

// Option configures a Router.
type Option func(*Router)

// WithExecutor sets the executor that runs the construction future.
// The default is GoExecutor.
func WithExecutor(e Executor) Option {
	return func(r *Router) {
		r.exec = e
	}
}

// Router is a loop.Handler[ProxyEvent] that defers to an application
// constructed asynchronously. It must only be used from the dispatch
// goroutine.
type Router struct {
	state     state
	construct Constructor
	exec      Executor
}

var _ loop.Handler[ProxyEvent] = (*Router)(nil)

// New creates a router in the uninit state. proxy must belong to the loop
// the router will be run on.
func New(proxy loop.Proxy[ProxyEvent], construct Constructor, opts ...Option) *Router {
	r := &Router{
		state:     &uninit{proxy: proxy},
		construct: construct,
		exec:      GoExecutor{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Phase returns the current state.
func (r *Router) Phase() Phase {
	return r.state.phase()
}

// Pending returns the number of buffered window and application events.
// Both are zero outside the waiting state.
func (r *Router) Pending() (windowEvents, userEvents int) {
	if s, ok := r.state.(*waiting); ok {
		return len(s.windowEvents), len(s.userEvents)
	}
	return 0, 0
}

// Resumed handles the activation signal. The first one starts
// construction; later ones are ignored until the application is ready,
// then forwarded.
func (r *Router) Resumed(el loop.ActiveLoop) {
	switch s := r.state.(type) {
	case *uninit:
		r.state = &waiting{}
		r.start(el, s.proxy)
	case *waiting:
		// Construction already in flight.
	case *ready:
		s.app.Resumed(el)
	}
}

func (r *Router) start(el loop.ActiveLoop, proxy loop.Proxy[ProxyEvent]) {
	gglive.Logger().Info("starting application construction")
	future := r.construct(el, NewSendEvent(proxy))
	r.exec.Go(func() {
		var ev ProxyEvent
		app, err := runFuture(future)
		switch {
		case err != nil:
			ev = InitFailed{Err: fmt.Errorf("%w: %w", ErrConstruction, err)}
		case app == nil:
			ev = InitFailed{Err: fmt.Errorf("%w: future returned no application", ErrConstruction)}
		default:
			ev = InitEvent{App: app}
		}
		if err := proxy.Send(ev); err != nil {
			// The loop is gone; there is no one left to deliver to.
			gglive.Logger().Error("cannot deliver construction result", "err", err)
		}
	})
}

func runFuture(f Future) (Application, error) {
	if f == nil {
		return nil, errors.New("nil future")
	}
	return f()
}

// WindowEvent buffers while waiting and forwards once ready.
func (r *Router) WindowEvent(el loop.ActiveLoop, id loop.WindowID, ev event.WindowEvent) {
	switch s := r.state.(type) {
	case *uninit:
		// No window can exist before activation.
	case *waiting:
		s.windowEvents = append(s.windowEvents, windowEntry{id: id, ev: ev})
		gglive.Logger().Debug("buffered window event", "window", id, "event", fmt.Sprintf("%T", ev))
	case *ready:
		s.app.WindowEvent(el, id, ev)
	}
}

// UserEvent handles the router's own events and application events.
func (r *Router) UserEvent(el loop.ActiveLoop, ev ProxyEvent) {
	switch ev := ev.(type) {
	case InitEvent:
		r.install(el, ev.App)
	case InitFailed:
		if _, ok := r.state.(*waiting); !ok {
			gglive.Logger().Warn("ignoring construction failure", "phase", r.state.phase(), "err", ev.Err)
			return
		}
		gglive.Logger().Error("application construction failed", "err", ev.Err)
		el.Fail(ev.Err)
	case AppEvent:
		switch s := r.state.(type) {
		case *uninit:
			// Nothing can produce application events yet.
		case *waiting:
			s.userEvents = append(s.userEvents, ev.Event)
		case *ready:
			s.app.UserEvent(el, ev.Event)
		}
	}
}

// install performs the waiting → ready transition and replays the
// buffered events through app.
func (r *Router) install(el loop.ActiveLoop, app Application) {
	s, ok := r.state.(*waiting)
	if !ok {
		gglive.Logger().Warn("ignoring init event", "phase", r.state.phase())
		return
	}
	if app == nil {
		gglive.Logger().Warn("ignoring init event without application")
		return
	}

	// The application never saw the host's activation signal.
	app.Resumed(el)
	r.state = &ready{app: app}

	gglive.Logger().Info("application ready",
		"replay_window_events", len(s.windowEvents),
		"replay_user_events", len(s.userEvents))
	for _, we := range s.windowEvents {
		app.WindowEvent(el, we.id, we.ev)
	}
	for _, ue := range s.userEvents {
		app.UserEvent(el, ue)
	}
}

// Suspended forwards once ready.
func (r *Router) Suspended(el loop.ActiveLoop) {
	if s, ok := r.state.(*ready); ok {
		s.app.Suspended(el)
	}
}

// Exiting forwards once ready.
func (r *Router) Exiting(el loop.ActiveLoop) {
	if s, ok := r.state.(*ready); ok {
		s.app.Exiting(el)
	}
}

// NewEvents forwards once ready.
func (r *Router) NewEvents(el loop.ActiveLoop, cause event.StartCause) {
	if s, ok := r.state.(*ready); ok {
		s.app.NewEvents(el, cause)
	}
}

// DeviceEvent forwards once ready.
func (r *Router) DeviceEvent(el loop.ActiveLoop, ev event.DeviceEvent) {
	if s, ok := r.state.(*ready); ok {
		s.app.DeviceEvent(el, ev)
	}
}

// AboutToWait forwards once ready.
func (r *Router) AboutToWait(el loop.ActiveLoop) {
	if s, ok := r.state.(*ready); ok {
		s.app.AboutToWait(el)
	}
}

// MemoryWarning forwards once ready.
func (r *Router) MemoryWarning(el loop.ActiveLoop) {
	if s, ok := r.state.(*ready); ok {
		s.app.MemoryWarning(el)
	}
}
