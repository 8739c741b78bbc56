// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package watch

import (
	"slices"
	"sync"
	"time"

	"github.com/gogpu/gglive"
	"github.com/gogpu/gglive/event"
)

// notification is a filtered raw change: the asset name and, for sources
// that carry contents, the new bytes.
type notification struct {
	name    string
	data    []byte
	hasData bool
}

// engine is the goroutine shared by the fs and delegated variants. It is
// the only owner of the watch set. R is the source's raw notification
// type; classify maps a raw notification to an asset change, or reports
// that it is not a completed write.
type engine[R any] struct {
	sink     Sink
	read     func(name string) ([]byte, error)
	classify func(R) (notification, bool)
	raw      <-chan R
	errs     <-chan error
	opts     options

	cmds     chan Command
	quit     chan struct{}
	done     chan struct{}
	quitOnce sync.Once

	// Owned by the engine goroutine.
	set     map[string]struct{}
	pending map[string]notification
	due     map[string]time.Time
	timer   *time.Timer
}

func newEngine[R any](sink Sink, raw <-chan R, errs <-chan error,
	classify func(R) (notification, bool), read func(string) ([]byte, error), opts options) *engine[R] {
	return &engine[R]{
		sink:     sink,
		read:     read,
		classify: classify,
		raw:      raw,
		errs:     errs,
		opts:     opts,
		cmds:     make(chan Command, opts.queueSize),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
		set:      make(map[string]struct{}),
		pending:  make(map[string]notification),
		due:      make(map[string]time.Time),
	}
}

// send enqueues cmd, blocking while the queue is full. It fails only once
// the engine goroutine has exited.
func (e *engine[R]) send(cmd Command) error {
	select {
	case <-e.done:
		return ErrClosed
	default:
	}
	select {
	case e.cmds <- cmd:
		return nil
	case <-e.done:
		return ErrClosed
	}
}

// stop asks the goroutine to exit and waits for it.
func (e *engine[R]) stop() {
	e.quitOnce.Do(func() { close(e.quit) })
	<-e.done
}

func (e *engine[R]) run() {
	defer close(e.done)
	defer func() {
		if e.timer != nil {
			e.timer.Stop()
		}
	}()

	var settled <-chan time.Time
	for {
		select {
		case <-e.quit:
			return

		case cmd := <-e.cmds:
			if !e.apply(cmd) {
				return
			}

		case r, ok := <-e.raw:
			if !ok {
				gglive.Logger().Debug("watch: notification source closed")
				return
			}
			if !e.drainCommands() {
				return
			}
			n, ok := e.classify(r)
			if !ok {
				continue
			}
			if _, watched := e.set[n.name]; !watched {
				continue
			}
			if e.opts.settle == 0 {
				if !e.emit(n) {
					return
				}
				continue
			}
			e.pending[n.name] = n
			e.due[n.name] = time.Now().Add(e.opts.settle)
			settled = e.arm()

		case err, ok := <-e.errs:
			if !ok {
				e.errs = nil
				continue
			}
			e.opts.reporter(err)

		case <-settled:
			settled = nil
			if !e.drainCommands() || !e.flush(time.Now()) {
				return
			}
			settled = e.arm()
		}
	}
}

// arm sets the timer for the earliest pending deadline. Each name settles
// on its own: changes to one name never postpone another.
func (e *engine[R]) arm() <-chan time.Time {
	if len(e.due) == 0 {
		return nil
	}
	var next time.Time
	for _, t := range e.due {
		if next.IsZero() || t.Before(next) {
			next = t
		}
	}
	d := max(time.Until(next), 0)
	if e.timer == nil {
		e.timer = time.NewTimer(d)
	} else {
		e.timer.Reset(d)
	}
	return e.timer.C
}

// drainCommands applies every queued command without blocking. It returns
// false if the sink is gone.
func (e *engine[R]) drainCommands() bool {
	for {
		select {
		case cmd := <-e.cmds:
			if !e.apply(cmd) {
				return false
			}
		default:
			return true
		}
	}
}

func (e *engine[R]) apply(cmd Command) bool {
	switch cmd.Action {
	case Start:
		e.set[cmd.Name] = struct{}{}
		gglive.Logger().Debug("watch: start", "name", cmd.Name)
		return e.emit(notification{name: cmd.Name})
	case Stop:
		delete(e.set, cmd.Name)
		delete(e.pending, cmd.Name)
		delete(e.due, cmd.Name)
		gglive.Logger().Debug("watch: stop", "name", cmd.Name)
	}
	return true
}

// flush emits every pending change whose deadline has passed and whose
// name is still watched.
func (e *engine[R]) flush(now time.Time) bool {
	names := make([]string, 0, len(e.due))
	for name, t := range e.due {
		if !t.After(now) {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	for _, name := range names {
		n := e.pending[name]
		delete(e.pending, name)
		delete(e.due, name)
		if _, watched := e.set[name]; !watched {
			continue
		}
		if !e.emit(n) {
			return false
		}
	}
	return true
}

// emit reads the asset if needed and sends it. Read failures are
// swallowed: the next completed write triggers another attempt. It
// returns false when the sink rejects the event, which means the loop
// has terminated.
func (e *engine[R]) emit(n notification) bool {
	data := n.data
	if !n.hasData {
		var err error
		data, err = e.read(n.name)
		if err != nil {
			gglive.Logger().Debug("watch: read failed", "name", n.name, "err", err)
			return true
		}
	}
	if err := e.sink.Send(event.AssetChanged{Name: n.name, Bytes: data}); err != nil {
		gglive.Logger().Info("watch: sink closed, stopping", "err", err)
		return false
	}
	return true
}
