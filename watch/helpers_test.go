package watch

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gogpu/gglive/event"
)

const waitFor = 2 * time.Second

type chanSink chan event.AssetChanged

func newSink() chanSink { return make(chanSink, 64) }

func (s chanSink) Send(ev event.Event) error {
	if ac, ok := ev.(event.AssetChanged); ok {
		s <- ac
	}
	return nil
}

func (s chanSink) next(t *testing.T) event.AssetChanged {
	t.Helper()
	select {
	case ev := <-s:
		return ev
	case <-time.After(waitFor):
		t.Fatal("timed out waiting for AssetChanged")
		return event.AssetChanged{}
	}
}

func (s chanSink) none(t *testing.T, d time.Duration) {
	t.Helper()
	select {
	case ev := <-s:
		t.Fatalf("unexpected %v", ev)
	case <-time.After(d):
	}
}

var errSinkGone = errors.New("sink gone")

func failingSink() Sink {
	return SinkFunc(func(event.Event) error { return errSinkGone })
}

func requireClosedEventually(t *testing.T, w Watcher) {
	t.Helper()
	require.Eventually(t, func() bool {
		return errors.Is(w.StartWatching("late.txt"), ErrClosed)
	}, waitFor, 5*time.Millisecond)
}
