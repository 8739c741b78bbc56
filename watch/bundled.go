package watch

import (
	"errors"
	"fmt"
	"io/fs"
	"sync/atomic"

	"github.com/gogpu/gglive"
	"github.com/gogpu/gglive/event"
)

// Bundled serves assets from a static fs.FS, typically embedded at build
// time. It has no goroutine and never reports changes: StartWatching emits
// the bundled contents once, and StopWatching has nothing to stop.
type Bundled struct {
	fsys     fs.FS
	sink     Sink
	reporter func(error)
	closed   atomic.Bool
}

var _ Watcher = (*Bundled)(nil)

// NewBundled returns a static provider over fsys.
func NewBundled(fsys fs.FS, sink Sink, opts ...Option) (*Bundled, error) {
	if sink == nil {
		return nil, ErrNoSink
	}
	if fsys == nil {
		return nil, errors.New("watch: nil bundle")
	}
	return &Bundled{fsys: fsys, sink: sink, reporter: buildOptions(opts).reporter}, nil
}

// ListFiles returns the regular files at the root of the bundle.
func (b *Bundled) ListFiles() ([]string, error) {
	entries, err := fs.ReadDir(b.fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("watch: list bundle: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Type().IsRegular() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// StartWatching emits the bundled contents of name. Names not in the
// bundle are ignored.
func (b *Bundled) StartWatching(name string) error {
	if b.closed.Load() {
		return ErrClosed
	}
	if err := validName(name); err != nil {
		return err
	}
	data, err := fs.ReadFile(b.fsys, name)
	if err != nil {
		gglive.Logger().Debug("watch: not bundled", "name", name, "err", err)
		return nil
	}
	return b.sink.Send(event.AssetChanged{Name: name, Bytes: data})
}

// StopWatching implements Watcher.
func (b *Bundled) StopWatching(name string) error {
	if b.closed.Load() {
		return ErrClosed
	}
	return validName(name)
}

// ErrorReporter implements Watcher.
func (b *Bundled) ErrorReporter() func(error) { return b.reporter }

// Close implements Watcher.
func (b *Bundled) Close() error {
	b.closed.Store(true)
	return nil
}
