// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package watch

import (
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"sync"
)

// Built-in watcher kinds.
const (
	KindFS        = "fs"
	KindBundled   = "bundled"
	KindDelegated = "delegated"
)

// Config carries everything a factory may need. Each kind uses the fields
// it understands and fails with ErrUnsupported when its input is missing.
type Config struct {
	// Dir is the asset directory for the fs kind.
	Dir string

	// Bundle is the static asset tree for the bundled kind.
	Bundle fs.FS

	// Source is the host channel for the delegated kind.
	Source HostSource

	// Sink receives AssetChanged events. Required.
	Sink Sink

	// Options are applied to the created watcher.
	Options []Option
}

// ErrUnsupported is returned by a factory whose required Config field is
// unset.
var ErrUnsupported = errors.New("watch: kind not usable with this config")

// Factory creates a watcher from cfg.
type Factory func(cfg Config) (Watcher, error)

var (
	registryMu sync.RWMutex
	factories  = make(map[string]Factory)
	// Priority order for Default (first usable wins).
	kindPriority = []string{KindFS, KindDelegated, KindBundled}
)

func init() {
	Register(KindFS, func(cfg Config) (Watcher, error) {
		if cfg.Dir == "" {
			return nil, fmt.Errorf("%w: %s needs Dir", ErrUnsupported, KindFS)
		}
		return NewFS(cfg.Dir, cfg.Sink, cfg.Options...)
	})
	Register(KindBundled, func(cfg Config) (Watcher, error) {
		if cfg.Bundle == nil {
			return nil, fmt.Errorf("%w: %s needs Bundle", ErrUnsupported, KindBundled)
		}
		return NewBundled(cfg.Bundle, cfg.Sink, cfg.Options...)
	})
	Register(KindDelegated, func(cfg Config) (Watcher, error) {
		if cfg.Source == nil {
			return nil, fmt.Errorf("%w: %s needs Source", ErrUnsupported, KindDelegated)
		}
		return NewDelegated(cfg.Source, cfg.Sink, cfg.Options...)
	})
}

// Register registers a watcher factory under name, replacing any previous
// registration.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	factories[name] = factory
}

// Unregister removes a kind from the registry.
// This is useful for testing.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(factories, name)
}

// Available returns the registered kinds, sorted.
func Available() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// IsRegistered checks if a kind is registered.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := factories[name]
	return ok
}

// Open creates a watcher of the given kind.
func Open(kind string, cfg Config) (Watcher, error) {
	registryMu.RLock()
	factory, ok := factories[kind]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return factory(cfg)
}

// Default opens the first kind, in priority order, whose factory accepts
// cfg. Factories that fail for any reason other than ErrUnsupported stop
// the search, since a configured but broken watcher should not silently
// fall back to another.
func Default(cfg Config) (Watcher, error) {
	registryMu.RLock()
	var extra []string
	for name := range factories {
		if !slices.Contains(kindPriority, name) {
			extra = append(extra, name)
		}
	}
	registryMu.RUnlock()
	slices.Sort(extra)
	order := append(slices.Clone(kindPriority), extra...)

	for _, kind := range order {
		w, err := Open(kind, cfg)
		switch {
		case err == nil:
			return w, nil
		case errors.Is(err, ErrUnsupported), errors.Is(err, ErrUnknownKind):
			continue
		default:
			return nil, err
		}
	}
	return nil, fmt.Errorf("%w: no kind accepts the config", ErrUnsupported)
}
