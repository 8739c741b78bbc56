// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package loop implements the synchronous dispatch loop that drives a
// gglive application.
//
// A Loop owns one FIFO queue. Hosts (window systems), background
// goroutines (through a [Proxy]) and the loop's own windows all enqueue
// into it, and [Loop.Run] drains it on a single goroutine, calling the
// [Handler] for each item in arrival order. Producers never block.
package loop

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync/atomic"

	"github.com/gogpu/gglive"
	"github.com/gogpu/gglive/event"
)

// Common loop errors.
var (
	// ErrLoopClosed is returned when sending to a loop that has terminated.
	ErrLoopClosed = errors.New("loop: event loop closed")

	// ErrLoopRunning is returned when Run is called on a loop that is
	// already running or has already run.
	ErrLoopRunning = errors.New("loop: event loop already started")

	// ErrInvalidWindowSize is returned by CreateWindow for non-positive sizes.
	ErrInvalidWindowSize = errors.New("loop: invalid window size")
)

type itemKind uint8

const (
	kindResumed itemKind = iota
	kindSuspended
	kindWindow
	kindUser
	kindDevice
	kindMemoryWarning
	kindExit
)

type item[T any] struct {
	kind   itemKind
	window WindowID
	wev    event.WindowEvent
	user   T
	dev    event.DeviceEvent
}

// Option configures a Loop during creation.
type Option func(*options)

type options struct {
	name        string
	windowHook  func(*Window)
	presentHook func(*Window, *image.RGBA)
}

// WithName sets the name used in log records.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithWindowHook registers fn to be called, on the dispatch goroutine,
// for every window the loop creates. Hosts use it to attach the window
// to a real surface.
func WithWindowHook(fn func(*Window)) Option {
	return func(o *options) {
		o.windowHook = fn
	}
}

// WithPresentHook registers fn to be called for every frame presented to
// a window, on the goroutine that presents it. Headless hosts use it to
// capture frames.
func WithPresentHook(fn func(*Window, *image.RGBA)) Option {
	return func(o *options) {
		o.presentHook = fn
	}
}

// Loop is a single-consumer dispatch loop for user events of type T.
//
// Host methods (Resume, PostWindowEvent, ...) and Proxy.Send are safe to
// call from any goroutine. Run must be called exactly once.
type Loop[T any] struct {
	opts    options
	queue   event.Queue[item[T]]
	wake    chan struct{}
	windows arena

	started atomic.Bool
	closed  atomic.Bool

	// Owned by the dispatch goroutine.
	exiting bool
	err     error
}

// New creates a Loop ready to accept events. Events posted before Run are
// queued and dispatched once Run starts.
func New[T any](opts ...Option) *Loop[T] {
	l := &Loop[T]{
		opts: options{name: "gglive"},
		wake: make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(&l.opts)
	}
	l.queue.Init()
	return l
}

func (l *Loop[T]) post(it item[T]) {
	l.queue.Send(it)
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Resume posts the activation signal.
func (l *Loop[T]) Resume() { l.post(item[T]{kind: kindResumed}) }

// Suspend posts a suspend notification.
func (l *Loop[T]) Suspend() { l.post(item[T]{kind: kindSuspended}) }

// MemoryWarning posts a memory pressure notification.
func (l *Loop[T]) MemoryWarning() { l.post(item[T]{kind: kindMemoryWarning}) }

// RequestExit asks the loop to stop once it reaches this request.
func (l *Loop[T]) RequestExit() { l.post(item[T]{kind: kindExit}) }

// PostWindowEvent posts an event for window id.
func (l *Loop[T]) PostWindowEvent(id WindowID, ev event.WindowEvent) {
	l.post(item[T]{kind: kindWindow, window: id, wev: ev})
}

// PostDeviceEvent posts a raw device event.
func (l *Loop[T]) PostDeviceEvent(ev event.DeviceEvent) {
	l.post(item[T]{kind: kindDevice, dev: ev})
}

// Proxy returns a handle for sending user events from other goroutines.
func (l *Loop[T]) Proxy() Proxy[T] {
	return Proxy[T]{l: l}
}

// Windows returns every window created so far, in creation order.
func (l *Loop[T]) Windows() []*Window {
	return l.windows.all()
}

// Closed reports whether the loop has terminated.
func (l *Loop[T]) Closed() bool {
	return l.closed.Load()
}

// CreateWindow implements ActiveLoop.
func (l *Loop[T]) CreateWindow(attrs WindowAttributes) (*Window, error) {
	if attrs.Width <= 0 || attrs.Height <= 0 {
		return nil, fmt.Errorf("%w: width=%d, height=%d", ErrInvalidWindowSize, attrs.Width, attrs.Height)
	}
	w := newWindow(attrs, l.PostWindowEvent, l.opts.presentHook)
	l.windows.add(w)
	if l.opts.windowHook != nil {
		l.opts.windowHook(w)
	}
	gglive.Logger().Debug("window created", "loop", l.opts.name, "id", w.id, "title", attrs.Title)
	return w, nil
}

// Window implements ActiveLoop.
func (l *Loop[T]) Window(id WindowID) (*Window, bool) {
	return l.windows.get(id)
}

// Exit implements ActiveLoop.
func (l *Loop[T]) Exit() {
	l.exiting = true
}

// Fail implements ActiveLoop.
func (l *Loop[T]) Fail(err error) {
	if l.err == nil {
		l.err = err
	}
	l.exiting = true
}

// Run dispatches queued events to h until the loop exits. It returns the
// error passed to Fail, or nil for a normal exit (Exit, RequestExit or
// ctx cancellation). Exiting is delivered exactly once on the way out.
func (l *Loop[T]) Run(ctx context.Context, h Handler[T]) error {
	if !l.started.CompareAndSwap(false, true) {
		return ErrLoopRunning
	}

	cause := event.StartInit
	for !l.exiting {
		h.NewEvents(l, cause)
		l.drain(h)
		if l.exiting {
			break
		}
		h.AboutToWait(l)
		if l.exiting {
			break
		}
		if l.queue.Len() > 0 {
			cause = event.StartPoll
			continue
		}
		select {
		case <-ctx.Done():
			gglive.Logger().Debug("loop context done", "loop", l.opts.name, "err", ctx.Err())
			l.exiting = true
		case <-l.wake:
			cause = event.StartWaitCancelled
		}
	}

	l.closed.Store(true)
	h.Exiting(l)
	return l.err
}

func (l *Loop[T]) drain(h Handler[T]) {
	for !l.exiting {
		it, ok := l.queue.Next()
		if !ok {
			return
		}
		l.dispatch(h, it)
	}
}

func (l *Loop[T]) dispatch(h Handler[T], it item[T]) {
	switch it.kind {
	case kindResumed:
		h.Resumed(l)
	case kindSuspended:
		h.Suspended(l)
	case kindWindow:
		if w, ok := l.windows.get(it.window); ok {
			switch ev := it.wev.(type) {
			case event.RedrawRequested:
				w.redrawPending.Store(false)
			case event.Resized:
				w.setSize(ev.Width, ev.Height)
			}
		}
		h.WindowEvent(l, it.window, it.wev)
	case kindUser:
		h.UserEvent(l, it.user)
	case kindDevice:
		h.DeviceEvent(l, it.dev)
	case kindMemoryWarning:
		h.MemoryWarning(l)
	case kindExit:
		l.exiting = true
	}
}

// Proxy sends user events into a Loop from any goroutine. Proxies are
// cheap values; copies deliver into the same queue.
type Proxy[T any] struct {
	l *Loop[T]
}

// Send enqueues v for delivery to the loop's handler. It never blocks.
// It returns ErrLoopClosed if the loop has terminated.
func (p Proxy[T]) Send(v T) error {
	if p.l == nil || p.l.closed.Load() {
		return ErrLoopClosed
	}
	p.l.post(item[T]{kind: kindUser, user: v})
	return nil
}
