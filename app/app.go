// Package app is the viewer application: a pan/zoom view over one image
// drawn through a hot-reloadable shader.
//
// The application cannot exist until the GPU device is negotiated, so it
// is built by a construction future (see [Constructor]) and installed by
// the router once ready. Everything the host reported in the meantime is
// replayed to it in order.
package app

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/gogpu/gglive"
	"github.com/gogpu/gglive/event"
	"github.com/gogpu/gglive/loop"
	"github.com/gogpu/gglive/render"
	"github.com/gogpu/gglive/router"
	"github.com/gogpu/gglive/watch"
)

// ErrInvalidShaderText is returned for shader bytes that are not UTF-8.
var ErrInvalidShaderText = errors.New("app: shader is not valid UTF-8")

// App is the fully constructed application.
type App struct {
	loop.NopHandler[event.Event]

	window   *loop.Window
	watcher  watch.Watcher
	device   *render.Device
	pipeline *render.Pipeline

	imageName  string
	shaderName string

	view View
}

var _ router.Application = (*App)(nil)

func newApp(p Platform, win *loop.Window, w watch.Watcher, dev *render.Device, pipe *render.Pipeline) *App {
	return &App{
		window:     win,
		watcher:    w,
		device:     dev,
		pipeline:   pipe,
		imageName:  p.ImageName,
		shaderName: p.ShaderName,
		view:       NewView(),
	}
}

// View returns the current view state.
func (a *App) View() View { return a.view }

// Window returns the application window.
func (a *App) Window() *loop.Window { return a.window }

// Pipeline returns the rendering pipeline.
func (a *App) Pipeline() *render.Pipeline { return a.pipeline }

// WindowEvent handles input and window lifecycle for the app's window.
func (a *App) WindowEvent(el loop.ActiveLoop, id loop.WindowID, ev event.WindowEvent) {
	if id != a.window.ID() {
		return
	}
	switch ev := ev.(type) {
	case event.MouseWheel:
		a.view.Wheel(ev)
		a.window.RequestRedraw()
	case event.PinchGesture:
		a.view.Pinch(ev.Delta)
		a.window.RequestRedraw()
	case event.PanGesture:
		a.view.Pan(ev.DX, ev.DY)
		gglive.Logger().Debug("app: pan", "pos", a.view.Pos)
		a.window.RequestRedraw()
	case event.KeyboardInput:
		if !ev.Pressed {
			return
		}
		switch ev.Key {
		case event.KeyEscape:
			el.Exit()
		case event.KeySpace:
			a.view.Reset()
			a.window.RequestRedraw()
		default:
			if a.view.Key(ev.Key) {
				a.window.RequestRedraw()
			}
		}
	case event.Resized:
		a.pipeline.Resize(ev.Width, ev.Height)
		a.window.RequestRedraw()
	case event.RedrawRequested:
		a.redraw()
	case event.CloseRequested:
		el.Exit()
	}
}

func (a *App) redraw() {
	if !a.pipeline.Ready() {
		gglive.Logger().Debug("app: skipping redraw, assets not loaded")
		return
	}
	frame, err := a.pipeline.Render(a.view.Uniforms())
	if err != nil {
		gglive.Logger().Warn("app: render failed", "err", err)
		return
	}
	a.window.Present(frame)
}

// UserEvent applies asset changes. A failed load keeps the previous
// asset active.
func (a *App) UserEvent(_ loop.ActiveLoop, ev event.Event) {
	changed, ok := ev.(event.AssetChanged)
	if !ok {
		return
	}
	var err error
	switch changed.Name {
	case a.imageName:
		err = a.loadImage(changed.Bytes)
	case a.shaderName:
		err = a.loadShader(changed.Bytes)
	default:
		return
	}
	if err != nil {
		gglive.Logger().Warn("app: asset rejected", "name", changed.Name, "err", err)
		return
	}
	gglive.Logger().Info("app: asset loaded", "name", changed.Name, "bytes", len(changed.Bytes))
	a.window.RequestRedraw()
}

func (a *App) loadImage(data []byte) error {
	if err := a.pipeline.LoadImage(data); err != nil {
		return err
	}
	w, h := a.pipeline.ImageSize()
	a.view.Dim = [2]float32{float32(w), float32(h)}
	return nil
}

func (a *App) loadShader(data []byte) error {
	if !utf8.Valid(data) {
		return ErrInvalidShaderText
	}
	return a.pipeline.LoadShader(string(data))
}

// Exiting releases the watcher and the GPU objects.
func (a *App) Exiting(loop.ActiveLoop) {
	if err := a.watcher.Close(); err != nil {
		gglive.Logger().Warn("app: close watcher", "err", err)
	}
	if err := a.pipeline.Close(); err != nil {
		gglive.Logger().Warn("app: close pipeline", "err", err)
	}
	a.device.Close()
}

// Constructor returns the construction routine for p. The synchronous
// part runs on the loop at activation: it creates the window, opens the
// watcher with the event bridge as its sink and starts watching both
// assets. The returned future negotiates the device and assembles the
// App; it runs off the loop.
func Constructor(ctx context.Context, p Platform) router.Constructor {
	p = p.withDefaults()
	return func(el loop.ActiveLoop, send router.SendEvent) router.Future {
		win, err := el.CreateWindow(loop.WindowAttributes{Title: p.Title, Width: p.Width, Height: p.Height})
		if err != nil {
			return failed(fmt.Errorf("create window: %w", err))
		}

		wp := p
		wp.Watch.Sink = send
		watcher, err := wp.openWatcher()
		if err != nil {
			return failed(fmt.Errorf("open watcher: %w", err))
		}
		for _, name := range []string{p.ImageName, p.ShaderName} {
			if err := watcher.StartWatching(name); err != nil {
				gglive.Logger().Warn("app: watching unavailable", "name", name, "err", err)
			}
		}

		return func() (router.Application, error) {
			handle, err := p.Devices.OpenDevice(ctx, win)
			if err != nil {
				_ = watcher.Close()
				return nil, fmt.Errorf("open device: %w", err)
			}
			dev, err := render.NewDevice(handle, watcher.ErrorReporter())
			if err != nil {
				_ = watcher.Close()
				return nil, err
			}
			width, height := win.Size()
			pipe, err := render.NewPipeline(dev, width, height)
			if err != nil {
				dev.Close()
				_ = watcher.Close()
				return nil, err
			}
			return newApp(p, win, watcher, dev, pipe), nil
		}
	}
}

func failed(err error) router.Future {
	return func() (router.Application, error) { return nil, err }
}

// Loop is the dispatch loop type the application runs on.
type Loop = loop.Loop[router.ProxyEvent]

// NewLoop returns a dispatch loop for the application.
func NewLoop(opts ...loop.Option) *Loop {
	return loop.New[router.ProxyEvent](opts...)
}

// Run routes l through a deferred-init router for p and dispatches until
// the loop exits. The host posts activation and window events into l
// from its own goroutines. A construction failure is returned.
func Run(ctx context.Context, l *Loop, p Platform, opts ...router.Option) error {
	r := router.New(l.Proxy(), Constructor(ctx, p), opts...)
	err := l.Run(ctx, r)
	if err != nil {
		// Construction aborted by cancellation is part of a normal exit.
		if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
			return nil
		}
		return err
	}
	gglive.Logger().Info("app: loop exited", "phase", r.Phase())
	return nil
}
