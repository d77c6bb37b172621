package config

import "sort"

type preset struct {
	description string
	apply       func(*Config)
}

var presets = map[string]preset{
	"calm": {"idle network at the base pulse rate", func(c *Config) {
		c.Intensity = 0
	}},
	"active": {"busy network with accent pulses", func(c *Config) {
		c.Intensity = 0.6
	}},
	"boost": {"maximum activity", func(c *Config) {
		c.Intensity = 1.5
		c.Shimmer = 0.3
	}},
	"frozen": {"static network, no pulses", func(c *Config) {
		c.Frozen = true
	}},
	"dense": {"wider layers with more connections", func(c *Config) {
		c.Layers = []int{16, 24, 24, 24, 16}
		c.EdgeProbability = 0.5
		c.Intensity = 0.3
	}},
	"minimal": {"small monochrome network", func(c *Config) {
		c.Layers = []int{4, 6, 4}
		c.Theme = "minimal"
		c.Shimmer = 0
	}},
}

// GetPreset returns a fresh config with the named preset applied over the
// defaults, or nil for an unknown name.
func GetPreset(name string) *Config {
	p, ok := presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	p.apply(cfg)
	return cfg
}

// ApplyPreset applies the named preset over cfg. It reports false for an
// unknown name.
func ApplyPreset(cfg *Config, name string) bool {
	p, ok := presets[name]
	if !ok {
		return false
	}
	p.apply(cfg)
	return true
}

func DescribePreset(name string) string {
	return presets[name].description
}

// ListPresets returns the preset names in sorted order.
func ListPresets() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
