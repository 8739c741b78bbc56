package app

import (
	"context"
	"time"

	"github.com/gogpu/gglive/assets"
	"github.com/gogpu/gglive/loop"
	"github.com/gogpu/gglive/render"
	"github.com/gogpu/gglive/watch"
)

// Minimum initial window size.
const (
	MinWidth  = 640
	MinHeight = 480
)

// DeviceOpener negotiates a GPU device for a window. OpenDevice runs on
// the construction goroutine and may block until the device is available.
type DeviceOpener interface {
	OpenDevice(ctx context.Context, w *loop.Window) (render.DeviceHandle, error)
}

// DeviceOpenerFunc adapts a function to DeviceOpener.
type DeviceOpenerFunc func(ctx context.Context, w *loop.Window) (render.DeviceHandle, error)

// OpenDevice implements DeviceOpener.
func (f DeviceOpenerFunc) OpenDevice(ctx context.Context, w *loop.Window) (render.DeviceHandle, error) {
	return f(ctx, w)
}

// SoftwareDevices opens the CPU device after Latency, standing in for
// adapter and device negotiation.
type SoftwareDevices struct {
	Latency time.Duration
}

// OpenDevice implements DeviceOpener.
func (s SoftwareDevices) OpenDevice(ctx context.Context, _ *loop.Window) (render.DeviceHandle, error) {
	if s.Latency > 0 {
		t := time.NewTimer(s.Latency)
		defer t.Stop()
		select {
		case <-t.C:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return render.SoftwareHandle{}, nil
}

// Platform is everything host-specific the application needs to be
// constructed.
type Platform struct {
	// Title and initial size of the window. The size is raised to at
	// least MinWidth×MinHeight.
	Title         string
	Width, Height int

	// Asset names. Empty names use the bundled defaults.
	ImageName  string
	ShaderName string

	// WatchKind selects the watcher variant by registry name. Empty picks
	// the first usable kind for Watch.
	WatchKind string
	Watch     watch.Config

	// Devices negotiates the GPU device. Nil uses SoftwareDevices.
	Devices DeviceOpener
}

func (p Platform) withDefaults() Platform {
	if p.Title == "" {
		p.Title = "gglive"
	}
	p.Width = max(p.Width, MinWidth)
	p.Height = max(p.Height, MinHeight)
	if p.ImageName == "" {
		p.ImageName = assets.ImageName
	}
	if p.ShaderName == "" {
		p.ShaderName = assets.ShaderName
	}
	if p.Devices == nil {
		p.Devices = SoftwareDevices{}
	}
	return p
}

func (p Platform) openWatcher() (watch.Watcher, error) {
	if p.WatchKind == "" {
		return watch.Default(p.Watch)
	}
	return watch.Open(p.WatchKind, p.Watch)
}
