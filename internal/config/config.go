package config

import (
	"fmt"
	"math"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/synapse/internal/graph"
	"github.com/san-kum/synapse/internal/param"
	"github.com/san-kum/synapse/internal/render"
)

const (
	EnvPrefix = "SYNAPSE_"

	DefaultFPS   = render.DefaultFPS
	DefaultTheme = "cyan"
	MaxFPS       = 240
)

type Config struct {
	Layers          []int        `yaml:"layers" env:"LAYERS" envSeparator:","`
	EdgeProbability float64      `yaml:"edge_probability" env:"EDGE_PROBABILITY"`
	Intensity       float64      `yaml:"intensity" env:"INTENSITY"`
	Frozen          bool         `yaml:"frozen" env:"FROZEN"`
	FPS             int          `yaml:"fps" env:"FPS"`
	Seed            uint64       `yaml:"seed" env:"SEED"`
	Theme           string       `yaml:"theme" env:"THEME"`
	Shimmer         float64      `yaml:"shimmer" env:"SHIMMER"`
	Tuning          param.Tuning `yaml:"tuning" envPrefix:"TUNING_"`
}

func DefaultConfig() *Config {
	return &Config{
		Layers:          append([]int(nil), graph.DefaultLayers...),
		EdgeProbability: graph.DefaultEdgeProbability,
		FPS:             DefaultFPS,
		Theme:           DefaultTheme,
		Tuning:          param.DefaultTuning(),
	}
}

// Load reads a YAML file over the defaults. Keys missing from the file keep
// their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ApplyEnv overrides fields from SYNAPSE_* variables. Unset variables leave
// the current values alone.
func (c *Config) ApplyEnv() error {
	if err := env.ParseWithOptions(c, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

func (c *Config) Validate() error {
	if err := graph.Validate(c.Layers); err != nil {
		return err
	}
	if c.EdgeProbability < 0 || c.EdgeProbability > 1 {
		return fmt.Errorf("config: edge_probability %v outside [0, 1]", c.EdgeProbability)
	}
	if math.IsNaN(c.Intensity) || math.IsInf(c.Intensity, 0) {
		return fmt.Errorf("config: intensity must be finite, got %v", c.Intensity)
	}
	if c.FPS < 1 || c.FPS > MaxFPS {
		return fmt.Errorf("config: fps %d outside [1, %d]", c.FPS, MaxFPS)
	}
	if c.Shimmer < 0 || c.Shimmer > 1 {
		return fmt.Errorf("config: shimmer %v outside [0, 1]", c.Shimmer)
	}
	return nil
}

// SceneConfig converts c for render.NewScene. The palette is the default;
// callers apply a theme on top.
func (c *Config) SceneConfig() render.Config {
	return render.Config{
		Layers:          append([]int(nil), c.Layers...),
		EdgeProbability: c.EdgeProbability,
		Tuning:          c.Tuning,
		Palette:         render.DefaultPalette(),
		Shimmer:         c.Shimmer,
		Seed:            c.Seed,
	}
}

// Controller returns a parameter store holding the configured knobs.
func (c *Config) Controller() *param.Controller {
	return param.NewController(c.Intensity, c.Frozen)
}
