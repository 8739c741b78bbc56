package watch

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/gogpu/gglive"
)

// FS watches assets in one directory with fsnotify.
//
// Only Write and Create notifications count as changes: editors that save
// through a temporary file and rename it produce a Create for the target.
// Writes are coalesced per name by the settle window so a file is read
// once its writer has finished.
type FS struct {
	dir     string
	fsw     *fsnotify.Watcher
	engine  *engine[fsnotify.Event]
	options options
}

var _ Watcher = (*FS)(nil)

// NewFS starts watching dir (non-recursively) and returns once the
// notification subsystem is ready. Failure to initialize it is returned
// to the caller, which should treat it as fatal.
func NewFS(dir string, sink Sink, opts ...Option) (*FS, error) {
	if sink == nil {
		return nil, ErrNoSink
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("watch: resolve %q: %w", dir, err)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create notifier: %w", err)
	}
	if err := fsw.Add(abs); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("watch: watch %q: %w", abs, err)
	}

	w := &FS{dir: abs, fsw: fsw, options: buildOptions(opts)}
	w.engine = newEngine(sink, fsw.Events, fsw.Errors, classifyFS, w.readFile, w.options)
	go w.engine.run()

	gglive.Logger().Info("watch: fs watcher started", "dir", abs)
	return w, nil
}

// classifyFS keeps writes and creates. fsnotify has no close-after-write
// event, so completion is left to the settle window.
func classifyFS(ev fsnotify.Event) (notification, bool) {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
		return notification{}, false
	}
	return notification{name: filepath.Base(ev.Name)}, true
}

func (w *FS) readFile(name string) ([]byte, error) {
	return os.ReadFile(filepath.Join(w.dir, name))
}

// Dir returns the absolute watched directory.
func (w *FS) Dir() string { return w.dir }

// ListFiles returns the regular files in the watched directory.
func (w *FS) ListFiles() ([]string, error) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return nil, fmt.Errorf("watch: list %q: %w", w.dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Type().IsRegular() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// StartWatching implements Watcher.
func (w *FS) StartWatching(name string) error {
	if err := validName(name); err != nil {
		return err
	}
	return w.engine.send(Command{Name: name, Action: Start})
}

// StopWatching implements Watcher.
func (w *FS) StopWatching(name string) error {
	if err := validName(name); err != nil {
		return err
	}
	return w.engine.send(Command{Name: name, Action: Stop})
}

// ErrorReporter implements Watcher.
func (w *FS) ErrorReporter() func(error) { return w.options.reporter }

// Close stops the watcher goroutine and the notifier.
func (w *FS) Close() error {
	w.engine.stop()
	return w.fsw.Close()
}
