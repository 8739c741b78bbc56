// Command gglive shows an image through a WGSL shader and reloads both
// whenever they change on disk.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gogpu/gglive"
	"github.com/gogpu/gglive/app"
	"github.com/gogpu/gglive/assets"
	"github.com/gogpu/gglive/config"
	"github.com/gogpu/gglive/event"
	"github.com/gogpu/gglive/host/gogpuhost"
	"github.com/gogpu/gglive/host/offscreen"
	"github.com/gogpu/gglive/watch"
)

func main() {
	var (
		configPath = flag.String("config", "gglive.toml", "TOML configuration file")
		host       = flag.String("host", "", "host: gogpu or offscreen")
		watchKind  = flag.String("watch", "", "watcher kind ("+fmt.Sprint(watch.Available())+")")
		dir        = flag.String("dir", "", "asset directory for the fs watcher")
		image      = flag.String("image", "", "image asset name")
		shader     = flag.String("shader", "", "shader asset name")
		frames     = flag.Int("frames", -1, "offscreen: stop after this many frames")
		framesDir  = flag.String("frames-dir", "", "offscreen: write presented frames here")
		script     = flag.String("script", "", "offscreen: input script, e.g. \"wait:100ms,wheel:2,key:space\"")
		level      = flag.String("log-level", "", "log level: debug, info, warn, error")
		list       = flag.Bool("list", false, "list the assets the watcher can serve and exit")
		version    = flag.Bool("version", false, "print the version and exit")
	)
	flag.Parse()

	if *version {
		fmt.Println("gglive", gglive.Version)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fatal(err)
	}
	overrideString(&cfg.Host.Kind, *host)
	overrideString(&cfg.Watch.Kind, *watchKind)
	overrideString(&cfg.Watch.Dir, *dir)
	overrideString(&cfg.Assets.Image, *image)
	overrideString(&cfg.Assets.Shader, *shader)
	overrideString(&cfg.Host.FramesDir, *framesDir)
	overrideString(&cfg.Log.Level, *level)
	if *frames >= 0 {
		cfg.Host.Frames = *frames
	}
	if err := cfg.Validate(); err != nil {
		fatal(err)
	}

	lvl, _ := cfg.SlogLevel()
	gglive.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))

	p := platform(cfg)

	if *list {
		if err := listAssets(p); err != nil {
			fatal(err)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	switch cfg.Host.Kind {
	case config.HostOffscreen:
		var inputs []offscreen.Input
		if *script != "" {
			if inputs, err = offscreen.ParseScript(*script); err != nil {
				fatal(err)
			}
		}
		h := offscreen.New(offscreen.Options{
			DeviceLatency: cfg.Host.DeviceLatency.Duration,
			FramesDir:     cfg.Host.FramesDir,
			MaxFrames:     cfg.Host.Frames,
			Script:        inputs,
		})
		err = h.Run(ctx, p)
		gglive.Logger().Info("offscreen host done", "frames", h.Frames(), "elapsed", time.Since(start))
	default:
		err = gogpuhost.Run(ctx, p)
	}
	if err != nil {
		fatal(err)
	}
}

func platform(cfg *config.Config) app.Platform {
	dir := cfg.Watch.Dir
	if cfg.Watch.Kind == "" {
		// Without an explicit kind a missing directory falls back to the
		// bundled assets instead of failing.
		if fi, err := os.Stat(dir); err != nil || !fi.IsDir() {
			gglive.Logger().Info("asset directory not found, using bundled assets", "dir", dir)
			dir = ""
		}
	}
	return app.Platform{
		Title:      cfg.Window.Title,
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		ImageName:  cfg.Assets.Image,
		ShaderName: cfg.Assets.Shader,
		WatchKind:  cfg.Watch.Kind,
		Watch: watch.Config{
			Dir:     dir,
			Bundle:  assets.FS(),
			Options: cfg.WatchOptions(),
		},
	}
}

func listAssets(p app.Platform) error {
	p.Watch.Sink = watch.SinkFunc(func(event.Event) error { return nil })
	var (
		w   watch.Watcher
		err error
	)
	if p.WatchKind == "" {
		w, err = watch.Default(p.Watch)
	} else {
		w, err = watch.Open(p.WatchKind, p.Watch)
	}
	if err != nil {
		return err
	}
	defer w.Close()

	names, err := w.ListFiles()
	if err != nil {
		return err
	}
	for _, name := range names {
		fmt.Println(name)
	}
	return nil
}

func overrideString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func fatal(err error) {
	if errors.Is(err, config.ErrInvalid) {
		fmt.Fprintln(os.Stderr, "gglive:", err)
		os.Exit(2)
	}
	gglive.Logger().Error("gglive failed", "err", err)
	fmt.Fprintln(os.Stderr, "gglive:", err)
	os.Exit(1)
}
