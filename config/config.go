// Package config provides configuration loading and access for the engine.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all engine configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	Scripts   ScriptsConfig   `yaml:"scripts"`
	Assets    AssetsConfig    `yaml:"assets"`
	Audio     AudioConfig     `yaml:"audio"`
	Camera    CameraConfig    `yaml:"camera"`
	Game      GameConfig      `yaml:"game"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Logging   LoggingConfig   `yaml:"logging"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings. Virtual dimensions are the logical
// render target size; the window letterboxes it at whatever scale fits.
type ScreenConfig struct {
	Title         string `yaml:"title"`
	Width         int    `yaml:"width"`
	Height        int    `yaml:"height"`
	VirtualWidth  int    `yaml:"virtual_width"`  // 0 = same as width
	VirtualHeight int    `yaml:"virtual_height"` // 0 = same as height
	TargetFPS     int    `yaml:"target_fps"`
	Resizable     bool   `yaml:"resizable"`
}

// ScriptsConfig holds script loading settings.
type ScriptsConfig struct {
	Dir        string `yaml:"dir"`
	EntryScene string `yaml:"entry_scene"` // Scene hook invoked after setup
}

// AssetsConfig holds asset path settings.
type AssetsConfig struct {
	Dir string `yaml:"dir"`
}

// AudioConfig holds the playback worker settings.
type AudioConfig struct {
	Enabled  bool `yaml:"enabled"`
	BufferMs int  `yaml:"buffer_ms"` // Speaker buffer length in milliseconds
}

// CameraConfig holds viewport constraints.
type CameraConfig struct {
	MinZoom float64 `yaml:"min_zoom"`
	MaxZoom float64 `yaml:"max_zoom"`
}

// GameConfig holds runtime loop settings.
type GameConfig struct {
	Seed      int64   `yaml:"seed"`       // 0 = time-based
	TimeScale float64 `yaml:"time_scale"` // Initial scale applied to the frame delta
	FixedDT   float64 `yaml:"fixed_dt"`   // Headless step size in seconds
	MaxDT     float64 `yaml:"max_dt"`     // Frame delta clamp against spiral of death
}

// TelemetryConfig holds performance capture parameters.
type TelemetryConfig struct {
	Enabled     bool    `yaml:"enabled"`
	StatsWindow float64 `yaml:"stats_window"` // Seconds per aggregation window
	PerfWindow  int     `yaml:"perf_window"`  // Frames kept per stage ring
	OutputDir   string  `yaml:"output_dir"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	Dev   bool   `yaml:"dev"`   // Console encoder with colors
	File  string `yaml:"file"`  // Empty = stderr only
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	ScreenW32  float32 // Screen.Width as float32
	ScreenH32  float32 // Screen.Height as float32
	VirtualW32 float32 // Effective virtual width as float32
	VirtualH32 float32 // Effective virtual height as float32
	FixedDT32  float32 // Game.FixedDT as float32
	MaxDT32    float32 // Game.MaxDT as float32
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if
// path is empty. Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	// Load user config if provided
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	// Compute derived values
	cfg.computeDerived()

	return cfg, nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.ScreenW32 = float32(c.Screen.Width)
	c.Derived.ScreenH32 = float32(c.Screen.Height)

	// Virtual dimensions default to screen size if not specified
	vw := c.Screen.VirtualWidth
	if vw == 0 {
		vw = c.Screen.Width
	}
	vh := c.Screen.VirtualHeight
	if vh == 0 {
		vh = c.Screen.Height
	}
	c.Derived.VirtualW32 = float32(vw)
	c.Derived.VirtualH32 = float32(vh)

	if c.Game.TimeScale <= 0 {
		c.Game.TimeScale = 1.0
	}
	if c.Game.FixedDT <= 0 {
		c.Game.FixedDT = 1.0 / 60.0
	}
	if c.Game.MaxDT <= 0 {
		c.Game.MaxDT = 0.25
	}
	c.Derived.FixedDT32 = float32(c.Game.FixedDT)
	c.Derived.MaxDT32 = float32(c.Game.MaxDT)
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
