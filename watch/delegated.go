package watch

import (
	"fmt"
	"io/fs"
	"slices"
	"sync"
)

// HostSource is an asset channel provided by the host, for runtimes where
// the process cannot watch files itself (a browser page fed by a dev
// server, a mobile shell pushing assets).
type HostSource interface {
	// Files returns the names the host can provide.
	Files() []string

	// Read returns the current contents of name.
	Read(name string) ([]byte, error)

	// Subscribe registers fn to be called, on any goroutine, with new
	// contents whenever the host learns an asset changed. The returned
	// function cancels the subscription.
	Subscribe(fn func(name string, data []byte)) (cancel func())
}

// Delegated is a watcher whose change notifications come from a
// HostSource. Host callbacks only enqueue; the engine goroutine owns the
// watch set and filters.
type Delegated struct {
	src     HostSource
	engine  *engine[notification]
	cancel  func()
	options options
}

var _ Watcher = (*Delegated)(nil)

// NewDelegated subscribes to src and starts the engine goroutine.
func NewDelegated(src HostSource, sink Sink, opts ...Option) (*Delegated, error) {
	if sink == nil {
		return nil, ErrNoSink
	}
	if src == nil {
		return nil, fmt.Errorf("watch: nil host source")
	}
	o := buildOptions(opts)
	raw := make(chan notification, o.queueSize)

	d := &Delegated{src: src, options: o}
	d.engine = newEngine(sink, raw, nil, func(n notification) (notification, bool) { return n, true }, src.Read, o)
	d.cancel = src.Subscribe(func(name string, data []byte) {
		select {
		case raw <- notification{name: name, data: data, hasData: true}:
		case <-d.engine.done:
		}
	})
	go d.engine.run()
	return d, nil
}

// ListFiles implements Watcher.
func (d *Delegated) ListFiles() ([]string, error) {
	files := slices.Clone(d.src.Files())
	slices.Sort(files)
	return files, nil
}

// StartWatching implements Watcher.
func (d *Delegated) StartWatching(name string) error {
	if err := validName(name); err != nil {
		return err
	}
	return d.engine.send(Command{Name: name, Action: Start})
}

// StopWatching implements Watcher.
func (d *Delegated) StopWatching(name string) error {
	if err := validName(name); err != nil {
		return err
	}
	return d.engine.send(Command{Name: name, Action: Stop})
}

// ErrorReporter implements Watcher.
func (d *Delegated) ErrorReporter() func(error) { return d.options.reporter }

// Close cancels the subscription and stops the engine.
func (d *Delegated) Close() error {
	if d.cancel != nil {
		d.cancel()
	}
	d.engine.stop()
	return nil
}

// MemorySource is an in-memory HostSource. Put stores new contents and
// notifies subscribers, the way a host pushes an updated asset.
type MemorySource struct {
	mu    sync.Mutex
	files map[string][]byte
	subs  map[int]func(string, []byte)
	next  int
}

var _ HostSource = (*MemorySource)(nil)

// NewMemorySource returns a source preloaded with files.
func NewMemorySource(files map[string][]byte) *MemorySource {
	m := &MemorySource{files: make(map[string][]byte), subs: make(map[int]func(string, []byte))}
	for name, data := range files {
		m.files[name] = slices.Clone(data)
	}
	return m
}

// NewMemorySourceFS preloads a source from the regular files at the root
// of fsys.
func NewMemorySourceFS(fsys fs.FS) (*MemorySource, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("watch: read bundle: %w", err)
	}
	files := make(map[string][]byte, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		data, err := fs.ReadFile(fsys, e.Name())
		if err != nil {
			return nil, fmt.Errorf("watch: read %q: %w", e.Name(), err)
		}
		files[e.Name()] = data
	}
	return NewMemorySource(files), nil
}

// Files implements HostSource.
func (m *MemorySource) Files() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.files))
	for name := range m.files {
		names = append(names, name)
	}
	return names
}

// Read implements HostSource.
func (m *MemorySource) Read(name string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.files[name]
	if !ok {
		return nil, fmt.Errorf("watch: %q: %w", name, fs.ErrNotExist)
	}
	return slices.Clone(data), nil
}

// Subscribe implements HostSource.
func (m *MemorySource) Subscribe(fn func(name string, data []byte)) func() {
	m.mu.Lock()
	id := m.next
	m.next++
	m.subs[id] = fn
	m.mu.Unlock()
	return func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	}
}

// Put stores data under name and notifies every subscriber.
func (m *MemorySource) Put(name string, data []byte) {
	m.mu.Lock()
	m.files[name] = slices.Clone(data)
	subs := make([]func(string, []byte), 0, len(m.subs))
	for _, fn := range m.subs {
		subs = append(subs, fn)
	}
	m.mu.Unlock()
	for _, fn := range subs {
		fn(name, slices.Clone(data))
	}
}
