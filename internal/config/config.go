package config

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultModel = "growth"
	DefaultY0    = 0.0
	DefaultT0    = 0.0
	DefaultTEnd  = 5.0
	DefaultH     = 1e-7
)

// DefaultMethods is the comparison set, in report order.
var DefaultMethods = []string{"euler", "heun", "rk4"}

type Config struct {
	Model  string             `yaml:"model"`
	Params map[string]float64 `yaml:"params,omitempty"`
	Y0     float64            `yaml:"y0"`
	T0     float64            `yaml:"t0"`
	TEnd   float64            `yaml:"t_end"`
	H      float64            `yaml:"h"`
	// Steps, when positive, replaces TEnd with T0 + Steps*H.
	Steps   int      `yaml:"steps,omitempty"`
	Methods []string `yaml:"methods"`
}

func DefaultConfig() *Config {
	return &Config{
		Model:   DefaultModel,
		Y0:      DefaultY0,
		T0:      DefaultT0,
		TEnd:    DefaultTEnd,
		H:       DefaultH,
		Methods: append([]string(nil), DefaultMethods...),
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
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

// Clone returns a deep copy of c.
func (c *Config) Clone() *Config {
	cfg := *c
	cfg.Methods = append([]string(nil), c.Methods...)
	if c.Params != nil {
		cfg.Params = make(map[string]float64, len(c.Params))
		for k, v := range c.Params {
			cfg.Params[k] = v
		}
	}
	return &cfg
}

// EndTime resolves the interval end, honoring Steps when set.
func (c *Config) EndTime() float64 {
	if c.Steps > 0 {
		return c.T0 + float64(c.Steps)*c.H
	}
	return c.TEnd
}

// Validate checks the values that do not need the model or method
// registries. Unknown names are reported when they are resolved.
func (c *Config) Validate() error {
	if c.Model == "" {
		return fmt.Errorf("model must be set")
	}
	if math.IsNaN(c.H) || math.IsInf(c.H, 0) || c.H <= 0 {
		return fmt.Errorf("h must be positive, got %g", c.H)
	}
	for name, v := range map[string]float64{"y0": c.Y0, "t0": c.T0, "t_end": c.TEnd} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%s must be finite, got %g", name, v)
		}
	}
	if c.Steps < 0 {
		return fmt.Errorf("steps must not be negative, got %d", c.Steps)
	}
	if c.Steps == 0 && c.TEnd <= c.T0 {
		return fmt.Errorf("t_end %g must be after t0 %g", c.TEnd, c.T0)
	}
	if len(c.Methods) == 0 {
		return fmt.Errorf("at least one method is required")
	}
	return nil
}
