package automation

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/odebench/internal/config"
	"github.com/san-kum/odebench/internal/experiment"
	"github.com/san-kum/odebench/internal/harness"
	"github.com/san-kum/odebench/internal/ode"
	"github.com/san-kum/odebench/internal/storage"
)

// Scenario is a scripted sequence of comparisons.
type Scenario struct {
	Name        string
	Description string
	Steps       []ScenarioStep
}

// ScenarioStep is a single comparison. Fields left out of the YAML keep
// the value from Preset, or from the defaults when no preset is named.
type ScenarioStep struct {
	Name   string
	Preset string
	Save   bool
	Config *config.Config
}

type scenarioFile struct {
	Name        string      `yaml:"name"`
	Description string      `yaml:"description"`
	Steps       []yaml.Node `yaml:"steps"`
}

type stepHeader struct {
	Name   string `yaml:"name"`
	Preset string `yaml:"preset"`
	Save   bool   `yaml:"save"`
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScenario(data)
}

func ParseScenario(data []byte) (*Scenario, error) {
	var raw scenarioFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	scenario := &Scenario{
		Name:        raw.Name,
		Description: raw.Description,
		Steps:       make([]ScenarioStep, 0, len(raw.Steps)),
	}
	for i, node := range raw.Steps {
		var hdr stepHeader
		if err := node.Decode(&hdr); err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}

		cfg := config.DefaultConfig()
		if hdr.Preset != "" {
			cfg = config.GetPreset(hdr.Preset)
			if cfg == nil {
				return nil, fmt.Errorf("step %d: unknown preset %s", i+1, hdr.Preset)
			}
		}
		if err := node.Decode(cfg); err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}

		if hdr.Name == "" {
			hdr.Name = fmt.Sprintf("step %d", i+1)
		}
		scenario.Steps = append(scenario.Steps, ScenarioStep{
			Name:   hdr.Name,
			Preset: hdr.Preset,
			Save:   hdr.Save,
			Config: cfg,
		})
	}
	return scenario, nil
}

type StepResult struct {
	Name       string
	Config     *config.Config
	Comparison *harness.Comparison
	ReportID   string
}

// RunScenario executes all steps in order. Worker failures stay inside each
// step's comparison; configuration and storage errors stop the scenario and
// return the steps completed so far.
func RunScenario(ctx context.Context, scenario *Scenario, registry *experiment.Registry, logger *slog.Logger, st *storage.Store) ([]StepResult, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		logger.Info("running step", "step", i+1, "of", len(scenario.Steps), "name", step.Name, "model", step.Config.Model)

		exp := experiment.New(step.Config, registry, logger)
		if err := exp.Setup(); err != nil {
			return results, fmt.Errorf("step %d setup: %w", i+1, err)
		}

		cmp, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		res := StepResult{Name: step.Name, Config: step.Config, Comparison: cmp}
		if step.Save && st != nil {
			id, err := st.Save(step.Config, cmp, storage.DetectHost())
			if err != nil {
				return results, fmt.Errorf("step %d save: %w", i+1, err)
			}
			res.ReportID = id
		}
		results = append(results, res)
	}

	return results, nil
}

// ParameterSweep repeats the comparison while one value varies from From to
// To. Param is h, y0, t0, t_end, steps, or a model parameter name.
type ParameterSweep struct {
	Base  *config.Config
	Param string
	From  float64
	To    float64
	Count int
	// Log spaces the values geometrically, which suits step sizes.
	Log bool
}

type SweepResult struct {
	ParamValue float64
	Comparison *harness.Comparison
}

// Values lists the parameter values the sweep visits.
func (s *ParameterSweep) Values() ([]float64, error) {
	if s.Count < 1 {
		return nil, fmt.Errorf("%w: sweep count must be positive, got %d", ode.ErrInvalidConfig, s.Count)
	}
	if s.Log && (s.From <= 0 || s.To <= 0) {
		return nil, fmt.Errorf("%w: log sweep needs positive bounds", ode.ErrInvalidConfig)
	}
	if s.Count == 1 {
		return []float64{s.From}, nil
	}

	out := make([]float64, s.Count)
	for i := range out {
		f := float64(i) / float64(s.Count-1)
		if s.Log {
			out[i] = s.From * math.Pow(s.To/s.From, f)
		} else {
			out[i] = s.From + f*(s.To-s.From)
		}
	}
	out[len(out)-1] = s.To
	return out, nil
}

func (s *ParameterSweep) apply(v float64) *config.Config {
	cfg := s.Base.Clone()
	switch s.Param {
	case "h":
		cfg.H = v
	case "y0":
		cfg.Y0 = v
	case "t0":
		cfg.T0 = v
	case "t_end":
		cfg.TEnd = v
	case "steps":
		cfg.Steps = int(math.Round(v))
	default:
		if cfg.Params == nil {
			cfg.Params = make(map[string]float64)
		}
		cfg.Params[s.Param] = v
	}
	return cfg
}

// RunSweep executes a parameter sweep
func RunSweep(ctx context.Context, sweep *ParameterSweep, registry *experiment.Registry, logger *slog.Logger) ([]SweepResult, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	values, err := sweep.Values()
	if err != nil {
		return nil, err
	}

	results := make([]SweepResult, 0, len(values))
	for i, v := range values {
		exp := experiment.New(sweep.apply(v), registry, logger)
		if err := exp.Setup(); err != nil {
			return results, fmt.Errorf("%s=%g: %w", sweep.Param, v, err)
		}

		cmp, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("%s=%g: %w", sweep.Param, v, err)
		}

		results = append(results, SweepResult{ParamValue: v, Comparison: cmp})
		logger.Info("sweep point", "index", i+1, "of", len(values), sweep.Param, v, "benefit", cmp.Benefit())
	}

	return results, nil
}
