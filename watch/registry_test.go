package watch

import (
	"errors"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinKinds(t *testing.T) {
	assert.Subset(t, Available(), []string{KindFS, KindBundled, KindDelegated})
	for _, kind := range []string{KindFS, KindBundled, KindDelegated} {
		assert.True(t, IsRegistered(kind), kind)
	}
	assert.False(t, IsRegistered("nope"))
}

func TestOpenUnknownKind(t *testing.T) {
	_, err := Open("nope", Config{Sink: newSink()})
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestOpenMissingInput(t *testing.T) {
	for _, kind := range []string{KindFS, KindBundled, KindDelegated} {
		_, err := Open(kind, Config{Sink: newSink()})
		assert.ErrorIs(t, err, ErrUnsupported, kind)
	}
}

func TestDefaultPriority(t *testing.T) {
	sink := newSink()
	bundle := fstest.MapFS{"a": {Data: []byte("1")}}

	w, err := Default(Config{Bundle: bundle, Sink: sink})
	require.NoError(t, err)
	assert.IsType(t, &Bundled{}, w)
	require.NoError(t, w.Close())

	w, err = Default(Config{Source: NewMemorySource(nil), Bundle: bundle, Sink: sink})
	require.NoError(t, err)
	assert.IsType(t, &Delegated{}, w)
	require.NoError(t, w.Close())

	w, err = Default(Config{Dir: t.TempDir(), Source: NewMemorySource(nil), Bundle: bundle, Sink: sink})
	require.NoError(t, err)
	assert.IsType(t, &FS{}, w)
	require.NoError(t, w.Close())

	_, err = Default(Config{Sink: sink})
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestDefaultStopsOnBrokenKind(t *testing.T) {
	_, err := Default(Config{Dir: "/definitely/not/here", Bundle: fstest.MapFS{}, Sink: newSink()})
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrUnsupported))
}

func TestRegisterCustomKind(t *testing.T) {
	const kind = "custom-test"
	var opened bool
	Register(kind, func(cfg Config) (Watcher, error) {
		opened = true
		return NewBundled(fstest.MapFS{}, cfg.Sink)
	})
	t.Cleanup(func() { Unregister(kind) })

	w, err := Open(kind, Config{Sink: newSink()})
	require.NoError(t, err)
	assert.True(t, opened)
	assert.NotNil(t, w)

	Unregister(kind)
	assert.False(t, IsRegistered(kind))
}

func TestActionString(t *testing.T) {
	assert.Equal(t, "start", Start.String())
	assert.Equal(t, "stop", Stop.String())
	assert.Equal(t, "Action(9)", Action(9).String())
}
