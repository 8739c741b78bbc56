package watch

import (
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDelegated(t *testing.T, sink Sink, src *MemorySource, opts ...Option) *Delegated {
	t.Helper()
	d, err := NewDelegated(src, sink, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })
	return d
}

func TestDelegatedSnapshotAndPush(t *testing.T) {
	src := NewMemorySource(map[string][]byte{"shader.wgsl": []byte("v1")})
	sink := newSink()
	d := newTestDelegated(t, sink, src, WithSettle(0))

	require.NoError(t, d.StartWatching("shader.wgsl"))
	assert.Equal(t, "v1", string(sink.next(t).Bytes))

	src.Put("shader.wgsl", []byte("v2"))
	ev := sink.next(t)
	assert.Equal(t, "shader.wgsl", ev.Name)
	assert.Equal(t, "v2", string(ev.Bytes))
}

func TestDelegatedFiltersUnwatched(t *testing.T) {
	src := NewMemorySource(map[string][]byte{"a": []byte("1")})
	sink := newSink()
	d := newTestDelegated(t, sink, src, WithSettle(0))

	require.NoError(t, d.StartWatching("a"))
	sink.next(t)

	src.Put("b", []byte("2"))
	sink.none(t, 50*time.Millisecond)

	require.NoError(t, d.StopWatching("a"))
	src.Put("a", []byte("3"))
	sink.none(t, 50*time.Millisecond)
}

func TestDelegatedSettleCoalesces(t *testing.T) {
	src := NewMemorySource(map[string][]byte{"a": []byte("0")})
	sink := newSink()
	d := newTestDelegated(t, sink, src, WithSettle(30*time.Millisecond))

	require.NoError(t, d.StartWatching("a"))
	sink.next(t)

	src.Put("a", []byte("1"))
	src.Put("a", []byte("2"))
	src.Put("a", []byte("3"))
	assert.Equal(t, "3", string(sink.next(t).Bytes))
	sink.none(t, 100*time.Millisecond)
}

func TestDelegatedSettleIsPerName(t *testing.T) {
	src := NewMemorySource(map[string][]byte{"a": []byte("0"), "b": []byte("0")})
	sink := newSink()
	d := newTestDelegated(t, sink, src, WithSettle(50*time.Millisecond))

	require.NoError(t, d.StartWatching("a"))
	require.NoError(t, d.StartWatching("b"))
	sink.next(t)
	sink.next(t)

	start := time.Now()
	src.Put("b", []byte("1"))

	// Keep a busy well past b's settle window.
	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		tick := time.NewTicker(10 * time.Millisecond)
		defer tick.Stop()
		for {
			select {
			case <-stop:
				return
			case <-tick.C:
				src.Put("a", []byte("x"))
			}
		}
	}()
	t.Cleanup(func() {
		close(stop)
		<-done
	})

	ev := sink.next(t)
	assert.Equal(t, "b", ev.Name)
	assert.Equal(t, "1", string(ev.Bytes))
	assert.Less(t, time.Since(start), 400*time.Millisecond)
}

func TestDelegatedCloseUnsubscribes(t *testing.T) {
	src := NewMemorySource(nil)
	d, err := NewDelegated(src, newSink())
	require.NoError(t, err)
	assert.Len(t, src.subs, 1)

	require.NoError(t, d.Close())
	assert.Empty(t, src.subs)
	assert.ErrorIs(t, d.StartWatching("a"), ErrClosed)
	// Pushing after close must not block.
	src.Put("a", []byte("x"))
}

func TestDelegatedSinkFailure(t *testing.T) {
	src := NewMemorySource(map[string][]byte{"a": []byte("1")})
	d := newTestDelegated(t, failingSink(), src)
	require.NoError(t, d.StartWatching("a"))
	requireClosedEventually(t, d)
}

func TestDelegatedListFiles(t *testing.T) {
	src := NewMemorySource(map[string][]byte{"b": nil, "a": nil})
	d := newTestDelegated(t, newSink(), src)
	names, err := d.ListFiles()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, names)
}

func TestMemorySource(t *testing.T) {
	src, err := NewMemorySourceFS(fstest.MapFS{
		"a.txt":     {Data: []byte("hello")},
		"sub/b.txt": {Data: []byte("nested")},
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a.txt"}, src.Files())

	data, err := src.Read("a.txt")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	_, err = src.Read("missing")
	assert.Error(t, err)

	var got []string
	cancel := src.Subscribe(func(name string, data []byte) { got = append(got, name+"="+string(data)) })
	src.Put("a.txt", []byte("bye"))
	cancel()
	src.Put("a.txt", []byte("ignored"))
	assert.Equal(t, []string{"a.txt=bye"}, got)
}

func TestNewDelegatedErrors(t *testing.T) {
	_, err := NewDelegated(NewMemorySource(nil), nil)
	assert.ErrorIs(t, err, ErrNoSink)
	_, err = NewDelegated(nil, newSink())
	assert.Error(t, err)
}
