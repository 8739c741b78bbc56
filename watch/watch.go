// Package watch turns changes to named assets into AssetChanged events.
//
// A [Watcher] maintains a set of watched names. Starting to watch a name
// immediately emits its current contents, so consumers handle the first
// load and every reload on the same path. Three variants exist and are
// selected at startup through the registry (see [Open]):
//
//   - "fs": fsnotify on a directory (non-recursive), one goroutine
//   - "bundled": a static fs.FS (embedded assets), no goroutine
//   - "delegated": the host pushes new contents, one goroutine
//
// The goroutine-backed variants own their watch set exclusively. Consumer
// requests travel over a bounded FIFO command channel, and pending
// commands are applied before every notification is filtered, so a
// notification is never checked against a set older than the last
// request that was accepted.
package watch

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/gogpu/gglive"
	"github.com/gogpu/gglive/event"
)

// Common watcher errors.
var (
	// ErrClosed is returned when sending a command to a watcher whose
	// goroutine has exited. Consumers treat it as "watching unavailable".
	ErrClosed = errors.New("watch: watcher closed")

	// ErrInvalidName is returned for names that are not a single path
	// element.
	ErrInvalidName = errors.New("watch: invalid asset name")

	// ErrUnknownKind is returned by Open for unregistered variants.
	ErrUnknownKind = errors.New("watch: unknown watcher kind")

	// ErrNoSink is returned when a watcher is created without a sink.
	ErrNoSink = errors.New("watch: nil sink")
)

// Sink receives AssetChanged events. router.SendEvent implements it.
type Sink interface {
	Send(ev event.Event) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ev event.Event) error

// Send implements Sink.
func (f SinkFunc) Send(ev event.Event) error { return f(ev) }

// Watcher is the capability every variant provides.
type Watcher interface {
	// ListFiles returns the names the variant can serve.
	ListFiles() ([]string, error)

	// StartWatching adds name to the watch set and emits its current
	// contents when readable. Starting an already watched name does not
	// register it twice.
	StartWatching(name string) error

	// StopWatching removes name from the watch set. A notification already
	// in flight may still be delivered once.
	StopWatching(name string) error

	// ErrorReporter returns a function for reporting asynchronous errors
	// that have no caller to return to, such as GPU validation errors.
	ErrorReporter() func(error)

	// Close stops the watcher and releases its resources.
	Close() error
}

// Action is the kind of a watch command.
type Action uint8

const (
	// Start adds a name to the watch set.
	Start Action = iota
	// Stop removes a name from the watch set.
	Stop
)

// String returns the action name.
func (a Action) String() string {
	switch a {
	case Start:
		return "start"
	case Stop:
		return "stop"
	default:
		return fmt.Sprintf("Action(%d)", uint8(a))
	}
}

// Command is a request from the consumer to the watcher goroutine.
type Command struct {
	Name   string
	Action Action
}

// Default tuning values.
const (
	DefaultQueueSize = 16
	DefaultSettle    = 50 * time.Millisecond
)

// Option configures a watcher during creation.
type Option func(*options)

type options struct {
	queueSize int
	settle    time.Duration
	reporter  func(error)
}

func defaultOptions() options {
	return options{
		queueSize: DefaultQueueSize,
		settle:    DefaultSettle,
		reporter:  logReporter,
	}
}

func buildOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithQueueSize sets the capacity of the command channel. Senders block
// while it is full; commands are never dropped.
func WithQueueSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.queueSize = n
		}
	}
}

// WithSettle sets how long a changed asset must stay quiet before it is
// read. Each name settles on its own. Bursts of partial writes within the
// window collapse into one read of the completed file. Zero reads on every
// notification.
//
// The fs variant has no close-after-write notification, so quiet time is
// all it can observe: a writer that pauses longer than d mid-file gets a
// truncated read. The next write triggers a fresh read, and a rejected
// asset leaves the previous one active. Raise d for slow writers.
func WithSettle(d time.Duration) Option {
	return func(o *options) {
		if d >= 0 {
			o.settle = d
		}
	}
}

// WithErrorReporter overrides the error reporter. The default logs at
// error level.
func WithErrorReporter(fn func(error)) Option {
	return func(o *options) {
		if fn != nil {
			o.reporter = fn
		}
	}
}

func logReporter(err error) {
	gglive.Logger().Error("watch: reported error", "err", err)
}

func validName(name string) error {
	if name == "" || name == "." || name == ".." || filepath.Base(name) != name {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}
