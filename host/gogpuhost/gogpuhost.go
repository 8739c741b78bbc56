// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package gogpuhost runs the application in a native window provided by
// github.com/gogpu/gogpu.
//
// The gogpu main loop owns the calling goroutine. The dispatch loop runs
// beside it: window callbacks are translated into loop events, the GPU
// context provider becomes the application's device once gogpu has
// negotiated it, and presented frames are uploaded through a ggcanvas
// every time gogpu draws.
package gogpuhost

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/gogpu/gg"
	_ "github.com/gogpu/gg/gpu" // GPU accelerator for canvas drawing; falls back to CPU
	"github.com/gogpu/gg/integration/ggcanvas"
	"github.com/gogpu/gogpu"

	"github.com/gogpu/gglive"
	"github.com/gogpu/gglive/app"
	"github.com/gogpu/gglive/loop"
)

var errWindowClosed = errors.New("gogpuhost: window closed")

// Run opens the window described by p and blocks until it closes, the
// application exits or ctx ends.
func Run(ctx context.Context, p app.Platform) error {
	if p.Width < app.MinWidth {
		p.Width = app.MinWidth
	}
	if p.Height < app.MinHeight {
		p.Height = app.MinHeight
	}

	b := newBridge()
	l := app.NewLoop(
		loop.WithName("gogpu"),
		loop.WithWindowHook(b.attach),
	)
	b.l = l
	p.Devices = b

	gapp := gogpu.NewApp(gogpu.DefaultConfig().
		WithTitle(p.Title).
		WithSize(p.Width, p.Height).
		WithContinuousRender(true))

	var canvas *ggcanvas.Canvas
	gapp.OnDraw(func(dc *gogpu.Context) {
		if l.Closed() {
			gapp.Quit()
			return
		}
		if provider := gapp.GPUContextProvider(); provider != nil {
			b.provide(provider)
		}

		w, h := dc.Width(), dc.Height()
		if w <= 0 || h <= 0 {
			return
		}
		b.resize(w, h)
		b.redraw()

		frame := b.frame()
		if frame == nil {
			return
		}
		if canvas == nil {
			provider := gapp.GPUContextProvider()
			if provider == nil {
				return
			}
			var err error
			canvas, err = ggcanvas.New(provider, w, h)
			if err != nil {
				gglive.Logger().Error("gogpuhost: create canvas", "err", err)
				gapp.Quit()
				return
			}
		}
		if cw, ch := canvas.Size(); cw != w || ch != h {
			if err := canvas.Resize(w, h); err != nil {
				gglive.Logger().Warn("gogpuhost: resize canvas", "err", err)
				return
			}
		}

		if err := canvas.Draw(func(cc *gg.Context) {
			cc.DrawImage(gg.ImageBufFromImage(frame), 0, 0)
		}); err != nil {
			gglive.Logger().Warn("gogpuhost: draw", "err", err)
			return
		}
		if err := canvas.RenderTo(dc.AsTextureDrawer()); err != nil {
			gglive.Logger().Warn("gogpuhost: render", "err", err)
		}
	})

	b.subscribe(gapp.EventSource())

	gapp.OnClose(func() {
		b.close()
		if canvas != nil {
			_ = canvas.Close()
		}
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := app.Run(gctx, l, p)
		if err != nil {
			gglive.Logger().Error("gogpuhost: application failed", "err", err)
		}
		return err
	})

	l.Resume()
	runErr := gapp.Run()

	// The window is gone; make sure the dispatch loop follows.
	b.close()
	l.RequestExit()
	if err := g.Wait(); err != nil {
		return err
	}
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}
	return nil
}
