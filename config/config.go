// Package config loads gglive settings from TOML.
//
// Values are layered: built-in defaults, then the TOML file, then GGLIVE_*
// environment variables. Command-line flags are applied by the caller on
// top of the result.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/gogpu/gglive/assets"
	"github.com/gogpu/gglive/watch"
)

// Host kinds.
const (
	HostOffscreen = "offscreen"
	HostGoGPU     = "gogpu"
)

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("config: invalid")

// Config is the complete gglive configuration.
type Config struct {
	Window WindowConfig `toml:"window"`
	Watch  WatchConfig  `toml:"watch"`
	Assets AssetsConfig `toml:"assets"`
	Host   HostConfig   `toml:"host"`
	Log    LogConfig    `toml:"log"`
}

// WindowConfig describes the initial window.
type WindowConfig struct {
	Title  string `toml:"title"`
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
}

// WatchConfig selects and tunes the asset watcher.
type WatchConfig struct {
	// Kind is a watcher registry name; empty picks the first usable one.
	Kind      string   `toml:"kind"`
	Dir       string   `toml:"dir"`
	Settle    Duration `toml:"settle"`
	QueueSize int      `toml:"queue_size"`
}

// AssetsConfig names the watched assets.
type AssetsConfig struct {
	Image  string `toml:"image"`
	Shader string `toml:"shader"`
}

// HostConfig selects the host.
type HostConfig struct {
	Kind string `toml:"kind"`

	// FramesDir, when set, receives every frame the offscreen host
	// presents as a PNG.
	FramesDir string `toml:"frames_dir"`

	// Frames stops the offscreen host after this many presented frames.
	// Zero runs until interrupted.
	Frames int `toml:"frames"`

	// DeviceLatency delays the offscreen device, standing in for adapter
	// negotiation.
	DeviceLatency Duration `toml:"device_latency"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level string `toml:"level"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:  "gglive",
			Width:  800,
			Height: 600,
		},
		Watch: WatchConfig{
			Dir:       "assets",
			Settle:    Duration{watch.DefaultSettle},
			QueueSize: watch.DefaultQueueSize,
		},
		Assets: AssetsConfig{
			Image:  assets.ImageName,
			Shader: assets.ShaderName,
		},
		Host: HostConfig{
			Kind:          HostGoGPU,
			DeviceLatency: Duration{50 * time.Millisecond},
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads the TOML file at path over the defaults. An empty path or a
// missing file yields the defaults. Environment overrides are applied in
// both cases.
func Load(path string) (*Config, error) {
	if path == "" {
		cfg := Default()
		applyEnvOverrides(cfg)
		return cfg, nil
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := Default()
			applyEnvOverrides(cfg)
			return cfg, nil
		}
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()
	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes TOML from r over the defaults.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := Default()
	md, err := toml.NewDecoder(r).Decode(cfg)
	if err != nil {
		return nil, err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown keys: %v", undecoded)
	}
	applyEnvOverrides(cfg)
	return cfg, nil
}

// applyEnvOverrides checks environment variables and overrides config values.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("GGLIVE_HOST"); v != "" {
		cfg.Host.Kind = v
	}
	if v := os.Getenv("GGLIVE_WATCH"); v != "" {
		cfg.Watch.Kind = v
	}
	if v := os.Getenv("GGLIVE_DIR"); v != "" {
		cfg.Watch.Dir = v
	}
	if v := os.Getenv("GGLIVE_FRAMES_DIR"); v != "" {
		cfg.Host.FramesDir = v
	}
	if v := os.Getenv("GGLIVE_FRAMES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Host.Frames = n
		}
	}
	if v := os.Getenv("GGLIVE_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case c.Window.Width <= 0 || c.Window.Height <= 0:
		return fmt.Errorf("%w: window size %dx%d", ErrInvalid, c.Window.Width, c.Window.Height)
	case c.Watch.QueueSize <= 0:
		return fmt.Errorf("%w: watch.queue_size %d", ErrInvalid, c.Watch.QueueSize)
	case c.Watch.Kind != "" && !watch.IsRegistered(c.Watch.Kind):
		return fmt.Errorf("%w: watch.kind %q (have %v)", ErrInvalid, c.Watch.Kind, watch.Available())
	case c.Assets.Image == "" || c.Assets.Shader == "":
		return fmt.Errorf("%w: asset names must be set", ErrInvalid)
	case c.Assets.Image == c.Assets.Shader:
		return fmt.Errorf("%w: image and shader share the name %q", ErrInvalid, c.Assets.Image)
	case !slices.Contains([]string{HostOffscreen, HostGoGPU}, c.Host.Kind):
		return fmt.Errorf("%w: host.kind %q", ErrInvalid, c.Host.Kind)
	case c.Host.Frames < 0:
		return fmt.Errorf("%w: host.frames %d", ErrInvalid, c.Host.Frames)
	}
	if _, err := c.SlogLevel(); err != nil {
		return fmt.Errorf("%w: log.level: %w", ErrInvalid, err)
	}
	return nil
}

// SlogLevel parses the log level ("debug", "info", "warn", "error").
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo, err
	}
	return level, nil
}

// WatchOptions returns the watcher options for the configured tuning.
func (c *Config) WatchOptions() []watch.Option {
	return []watch.Option{
		watch.WithQueueSize(c.Watch.QueueSize),
		watch.WithSettle(c.Watch.Settle.Duration),
	}
}
