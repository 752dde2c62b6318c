package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/dshills/termcore/internal/canvas"
	"github.com/dshills/termcore/internal/config/loader"
	"github.com/dshills/termcore/internal/logging"
)

// EnvPrefix is the prefix of environment overrides.
const EnvPrefix = "TERMCORE_"

// Duration is a time.Duration written as a Go duration string ("100ms").
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// SchedulerConfig configures request pacing.
type SchedulerConfig struct {
	// Throttle is the minimum spacing between sends sharing a terminator.
	Throttle Duration `toml:"throttle"`
	// StaleTimeout is how long an unanswered request stays outstanding
	// before a new request for the same terminator may evict it.
	StaleTimeout Duration `toml:"stale_timeout"`
	// RunThrottle is the minimum spacing between unforced schedule runs.
	RunThrottle Duration `toml:"run_throttle"`
}

// DriverConfig configures the terminal I/O loop.
type DriverConfig struct {
	Tick          Duration `toml:"tick"`
	EscapeTimeout Duration `toml:"escape_timeout"`
}

// CanvasConfig configures line drawing defaults.
type CanvasConfig struct {
	// Style is the line style used when a layout line names none.
	Style string `toml:"style"`
}

// LoggingConfig configures the logger.
type LoggingConfig struct {
	Level string `toml:"level"`
	// File, when set, receives log output instead of stderr.
	File string `toml:"file"`
}

// Config is the complete termcore configuration.
type Config struct {
	Scheduler SchedulerConfig `toml:"scheduler"`
	Driver    DriverConfig    `toml:"driver"`
	Canvas    CanvasConfig    `toml:"canvas"`
	Logging   LoggingConfig   `toml:"logging"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Scheduler: SchedulerConfig{
			Throttle:     Duration(100 * time.Millisecond),
			StaleTimeout: Duration(5 * time.Second),
			RunThrottle:  Duration(100 * time.Millisecond),
		},
		Driver: DriverConfig{
			Tick:          Duration(50 * time.Millisecond),
			EscapeTimeout: Duration(50 * time.Millisecond),
		},
		Canvas:  CanvasConfig{Style: "single"},
		Logging: LoggingConfig{Level: "info"},
	}
}

// DefaultPath returns the user config file path, or "" when the user
// config directory cannot be determined.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "termcore", "config.toml")
}

// Options configure Load.
type Options struct {
	// FS defaults to the OS file system.
	FS loader.FileSystem
	// Environ defaults to os.Environ.
	Environ []string
	// Required makes a missing file an error.
	Required bool
}

// Load builds the configuration from defaults, the TOML file at path, and
// TERMCORE_ environment overrides, then validates it. An empty path skips
// the file layer.
func Load(path string) (*Config, error) {
	return LoadWithOptions(path, Options{})
}

// LoadWithOptions is Load with explicit sources.
func LoadWithOptions(path string, opts Options) (*Config, error) {
	fsys := opts.FS
	if fsys == nil {
		fsys = loader.DefaultFS()
	}

	var fileLayer map[string]any
	if path != "" {
		if opts.Required {
			if _, err := fsys.Stat(path); errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
			}
		}
		var err error
		fileLayer, err = loader.NewTOMLLoaderWithFS(fsys, path).Load()
		if err != nil {
			return nil, err
		}
	}

	env := loader.NewEnvLoader(EnvPrefix)
	if opts.Environ != nil {
		env = loader.NewEnvLoaderWithEnviron(EnvPrefix, opts.Environ)
	}
	envLayer, err := env.Load()
	if err != nil {
		return nil, err
	}

	merged := loader.DeepMerge(fileLayer, envLayer)
	cfg := Default()
	if len(merged) > 0 {
		if err := decode(path, merged, cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// decode applies a merged raw map on top of cfg.
func decode(source string, raw map[string]any, cfg *Config) error {
	data, err := toml.Marshal(raw)
	if err != nil {
		return fmt.Errorf("encoding merged config: %w", err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		if source == "" {
			source = "<environment>"
		}
		return &ParseError{Path: source, Message: err.Error(), Err: err}
	}
	return nil
}

// Validate checks every setting.
func (c *Config) Validate() error {
	durations := []struct {
		path string
		d    Duration
	}{
		{"scheduler.throttle", c.Scheduler.Throttle},
		{"scheduler.stale_timeout", c.Scheduler.StaleTimeout},
		{"scheduler.run_throttle", c.Scheduler.RunThrottle},
		{"driver.escape_timeout", c.Driver.EscapeTimeout},
	}
	for _, d := range durations {
		if d.d < 0 {
			return &ValidationError{Path: d.path, Message: "must not be negative", Value: d.d.Std()}
		}
	}
	if c.Driver.Tick <= 0 {
		return &ValidationError{Path: "driver.tick", Message: "must be positive", Value: c.Driver.Tick.Std()}
	}
	if _, err := canvas.ParseLineStyle(c.Canvas.Style); err != nil {
		return &ValidationError{Path: "canvas.style", Message: "unknown line style", Value: c.Canvas.Style}
	}
	if _, ok := logging.ParseLevel(c.Logging.Level); !ok {
		return &ValidationError{Path: "logging.level", Message: "unknown log level", Value: c.Logging.Level}
	}
	return nil
}

// LineStyle returns the configured default line style.
func (c *Config) LineStyle() canvas.LineStyle {
	s, err := canvas.ParseLineStyle(c.Canvas.Style)
	if err != nil {
		return canvas.LineSingle
	}
	return s
}

// Logger builds the configured logger. The closer is nil unless a log
// file was opened.
func (c *Config) Logger() (*logging.Logger, func() error, error) {
	level, _ := logging.ParseLevel(c.Logging.Level)
	if c.Logging.File == "" {
		cfg := logging.DefaultConfig()
		cfg.Level = level
		return logging.New(cfg), nil, nil
	}
	l, closer, err := logging.OpenFile(c.Logging.File, level)
	if err != nil {
		return nil, nil, err
	}
	return l, closer.Close, nil
}
