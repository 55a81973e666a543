// Package config loads logicview settings from a TOML file and the
// environment.
//
// Precedence, lowest first: built-in defaults, the config file, then
// LOGICVIEW_* environment variables (for example LOGICVIEW_LAYOUT_ELEMENT_WIDTH
// or LOGICVIEW_SERVER_ADDR).
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/kelseyhightower/envconfig"

	errs "github.com/matzehuels/logicview/pkg/errors"
	"github.com/matzehuels/logicview/pkg/view"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "LOGICVIEW"

// Config is the complete application configuration.
type Config struct {
	Layout LayoutConfig `toml:"layout" envconfig:"LAYOUT"`
	Editor EditorConfig `toml:"editor" envconfig:"EDITOR"`
	Server ServerConfig `toml:"server" envconfig:"SERVER"`
	Cache  CacheConfig  `toml:"cache" envconfig:"CACHE"`
	Log    LogConfig    `toml:"log" envconfig:"LOG"`
}

// LayoutConfig holds the default sizes of new elements and gates.
type LayoutConfig struct {
	ElementWidth  int `toml:"element_width" envconfig:"ELEMENT_WIDTH"`
	ElementHeight int `toml:"element_height" envconfig:"ELEMENT_HEIGHT"`
	GateWidth     int `toml:"gate_width" envconfig:"GATE_WIDTH"`
	GateHeight    int `toml:"gate_height" envconfig:"GATE_HEIGHT"`
	BitWidth      int `toml:"bit_width" envconfig:"BIT_WIDTH"`
}

// EditorConfig tunes the terminal editor.
type EditorConfig struct {
	// PanX and PanY are the canvas distances moved by one pan keystroke.
	PanX int `toml:"pan_x" envconfig:"PAN_X"`
	PanY int `toml:"pan_y" envconfig:"PAN_Y"`
	// Scale is how many canvas units one terminal cell covers.
	Scale int `toml:"scale" envconfig:"SCALE"`
	// PinBase is the first pin id handed to the simulation engine.
	PinBase uint64 `toml:"pin_base" envconfig:"PIN_BASE"`
}

// ServerConfig configures the inspection server.
type ServerConfig struct {
	Addr            string   `toml:"addr" envconfig:"ADDR"`
	ShutdownTimeout Duration `toml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
}

// CacheConfig controls the rendered diagram cache. A zero TTL keeps entries
// until the cache is cleared.
type CacheConfig struct {
	TTL Duration `toml:"ttl" envconfig:"TTL"`
}

// LogConfig selects the log level.
type LogConfig struct {
	Level string `toml:"level" envconfig:"LEVEL"`
}

// Duration is a time.Duration written as a string such as "5s" in both the
// config file and the environment.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

var levels = []string{"debug", "info", "warn", "error"}

// Default returns the built-in configuration.
func Default() *Config {
	l := view.DefaultLayout()
	return &Config{
		Layout: LayoutConfig{
			ElementWidth:  l.ElementWidth,
			ElementHeight: l.ElementHeight,
			GateWidth:     l.GateWidth,
			GateHeight:    l.GateHeight,
			BitWidth:      l.BitWidth,
		},
		Editor: EditorConfig{
			PanX:    2 * l.ElementWidth,
			PanY:    2 * l.ElementHeight,
			Scale:   10,
			PinBase: 1000,
		},
		Server: ServerConfig{
			Addr:            ":8080",
			ShutdownTimeout: Duration{5 * time.Second},
		},
		Cache: CacheConfig{TTL: Duration{7 * 24 * time.Hour}},
		Log:   LogConfig{Level: "info"},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/logicview/config.toml or the
// platform's equivalent.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "logicview", "config.toml"), nil
}

// Load builds the configuration. An empty path means [DefaultPath], which may
// be absent; an explicit path must exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err == nil {
			path = p
		}
	}
	if path != "" {
		if err := cfg.decodeFile(path); err != nil {
			if explicit || !errors.Is(err, fs.ErrNotExist) {
				return nil, err
			}
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "environment overrides")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decodeFile(path string) error {
	md, err := toml.DecodeFile(path, c)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return err
		}
		return errs.Wrap(errs.ErrCodeInvalidFormat, err, "config file %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return errs.New(errs.ErrCodeInvalidFormat, "config file %s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	return nil
}

// Validate checks that every size is positive, the cache TTL is not negative
// and the log level is known.
func (c *Config) Validate() error {
	l := c.Layout
	if err := errs.ValidateSize(l.ElementWidth, l.ElementHeight); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidInput, err, "layout element size")
	}
	if err := errs.ValidateSize(l.GateWidth, l.GateHeight); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidInput, err, "layout gate size")
	}
	if err := errs.ValidateBitWidth(l.BitWidth); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidInput, err, "layout bit width")
	}
	if c.Editor.PanX <= 0 || c.Editor.PanY <= 0 || c.Editor.Scale <= 0 {
		return errs.New(errs.ErrCodeInvalidInput, "editor pan and scale must be positive")
	}
	if c.Server.Addr == "" {
		return errs.New(errs.ErrCodeInvalidInput, "server address must not be empty")
	}
	if c.Cache.TTL.Duration < 0 {
		return errs.New(errs.ErrCodeInvalidInput, "cache ttl must not be negative")
	}
	if !slices.Contains(levels, strings.ToLower(c.Log.Level)) {
		return errs.New(errs.ErrCodeInvalidInput, "log level %q (must be one of %s)", c.Log.Level, strings.Join(levels, ", "))
	}
	return nil
}

// ViewLayout returns the layout as scene defaults.
func (c *Config) ViewLayout() view.Layout {
	return view.Layout{
		ElementWidth:  c.Layout.ElementWidth,
		ElementHeight: c.Layout.ElementHeight,
		GateWidth:     c.Layout.GateWidth,
		GateHeight:    c.Layout.GateHeight,
		BitWidth:      c.Layout.BitWidth,
	}
}
