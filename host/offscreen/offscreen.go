// Package offscreen is a headless host. It creates no OS window: the
// loop's window is backed by memory, the device is the software device
// (opened after a configurable latency), presented frames can be written
// to PNG files and input comes from a script.
package offscreen

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/gogpu/gglive"
	"github.com/gogpu/gglive/app"
	"github.com/gogpu/gglive/event"
	"github.com/gogpu/gglive/loop"
)

// Options configures the host.
type Options struct {
	// DeviceLatency delays the software device.
	DeviceLatency time.Duration

	// FramesDir receives frame-NNNN.png for every presented frame when set.
	FramesDir string

	// MaxFrames exits the loop after this many presented frames. Zero
	// runs until the context ends or the application exits.
	MaxFrames int

	// Script is played into the window once it exists.
	Script []Input
}

// Host runs the application without a window system.
type Host struct {
	opts   Options
	frames atomic.Int64

	mu       sync.Mutex
	writeErr error
}

// New returns a host with opts.
func New(opts Options) *Host {
	return &Host{opts: opts}
}

// Frames returns how many frames were presented.
func (h *Host) Frames() int { return int(h.frames.Load()) }

// Run activates the loop, plays the script and dispatches until the
// application exits, MaxFrames is reached or ctx ends.
func (h *Host) Run(ctx context.Context, p app.Platform) error {
	p.Devices = app.SoftwareDevices{Latency: h.opts.DeviceLatency}

	if h.opts.FramesDir != "" {
		if err := os.MkdirAll(h.opts.FramesDir, 0o755); err != nil {
			return fmt.Errorf("offscreen: frames dir: %w", err)
		}
	}

	windows := make(chan *loop.Window, 1)
	var l *app.Loop
	l = app.NewLoop(
		loop.WithName("offscreen"),
		loop.WithWindowHook(func(w *loop.Window) {
			select {
			case windows <- w:
			default:
			}
		}),
		loop.WithPresentHook(func(_ *loop.Window, img *image.RGBA) {
			n := h.frames.Add(1)
			h.writeFrame(int(n), img)
			if h.opts.MaxFrames > 0 && n >= int64(h.opts.MaxFrames) {
				l.RequestExit()
			}
		}),
	)

	g, gctx := errgroup.WithContext(ctx)
	done := make(chan struct{})
	g.Go(func() error {
		defer close(done)
		return app.Run(gctx, l, p)
	})
	g.Go(func() error {
		select {
		case w := <-windows:
			return h.play(gctx, done, l, w)
		case <-done:
			return nil
		}
	})

	l.Resume()
	if err := g.Wait(); err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.writeErr
}

// play reports the initial size and then the scripted input.
func (h *Host) play(ctx context.Context, done <-chan struct{}, l *app.Loop, w *loop.Window) error {
	width, height := w.Size()
	l.PostWindowEvent(w.ID(), event.Resized{Width: width, Height: height})

	for _, in := range h.opts.Script {
		if in.After > 0 {
			t := time.NewTimer(in.After)
			select {
			case <-t.C:
			case <-done:
				t.Stop()
				return nil
			case <-ctx.Done():
				t.Stop()
				return nil
			}
		}
		gglive.Logger().Debug("offscreen: input", "event", fmt.Sprintf("%T", in.Event))
		l.PostWindowEvent(w.ID(), in.Event)
	}
	return nil
}

func (h *Host) writeFrame(n int, img *image.RGBA) {
	if h.opts.FramesDir == "" {
		return
	}
	path := filepath.Join(h.opts.FramesDir, fmt.Sprintf("frame-%04d.png", n))
	err := writePNG(path, img)
	if err != nil {
		gglive.Logger().Warn("offscreen: write frame", "path", path, "err", err)
		h.mu.Lock()
		h.writeErr = errors.Join(h.writeErr, err)
		h.mu.Unlock()
	}
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
