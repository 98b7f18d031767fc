package config

import "sort"

var Presets = map[string]*Config{
	"demo": {
		Model: "growth", TEnd: 5.0, H: 0.01,
		Methods: DefaultMethods,
	},
	"quick": {
		Model: "growth", TEnd: 5.0, H: 1e-5,
		Methods: DefaultMethods,
	},
	"default": {
		Model: "growth", TEnd: 5.0, H: 1e-7,
		Methods: DefaultMethods,
	},
	"precise": {
		Model: "growth", TEnd: 5.0, H: 1e-8,
		Methods: DefaultMethods,
	},
	"fine": {
		Model: "growth", TEnd: 5.0, H: 5e-8,
		Methods: DefaultMethods,
	},
	"exponential": {
		Model: "exponential", Y0: 1.0, TEnd: 1.0, H: 1e-6,
		Methods: DefaultMethods,
	},
	"cooling": {
		Model: "cooling", Y0: 90.0, TEnd: 10.0, H: 1e-6,
		Params:  map[string]float64{"k": 0.5, "ambient": 20, "drive": 2},
		Methods: DefaultMethods,
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	return p.Clone()
}

// ListPresets returns the preset names in sorted order.
func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
