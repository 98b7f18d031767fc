package experiment

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/san-kum/odebench/internal/config"
	"github.com/san-kum/odebench/internal/harness"
	"github.com/san-kum/odebench/internal/integrators"
	"github.com/san-kum/odebench/internal/ode"
)

// Experiment resolves a config into a problem and a harness.
type Experiment struct {
	cfg      *config.Config
	registry *Registry
	logger   *slog.Logger
	harness  *harness.Harness
	methods  []integrators.Integrator
}

func New(cfg *config.Config, registry *Registry, logger *slog.Logger) *Experiment {
	if registry == nil {
		registry = NewRegistry()
	}
	return &Experiment{cfg: cfg, registry: registry, logger: logger}
}

func (e *Experiment) Setup() error {
	if err := e.cfg.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ode.ErrInvalidConfig, err)
	}
	methods, err := e.registry.GetIntegrators(e.cfg.Methods)
	if err != nil {
		return err
	}
	// build once so bad model names and params fail here
	if _, err := e.Problem(); err != nil {
		return err
	}
	e.methods = methods
	e.harness = harness.New(methods, e.logger)
	return nil
}

// Problem builds a new model instance and wraps it as a problem. Each call
// returns an independent but identical derivative function.
func (e *Experiment) Problem() (ode.Problem, error) {
	sys, err := e.registry.GetModel(e.cfg.Model, e.cfg.Params)
	if err != nil {
		return ode.Problem{}, err
	}
	span := ode.Span{T0: e.cfg.T0, TEnd: e.cfg.TEnd, H: e.cfg.H}
	if e.cfg.Steps > 0 {
		span = ode.SpanFromSteps(e.cfg.T0, e.cfg.Steps, e.cfg.H)
	}
	p := ode.Problem{F: sys.Derive, Y0: e.cfg.Y0, Span: span}
	if err := p.Validate(); err != nil {
		return ode.Problem{}, err
	}
	return p, nil
}

// Run executes the concurrent policy over one model instance and the
// serial policy over a second one.
func (e *Experiment) Run(ctx context.Context) (*harness.Comparison, error) {
	if e.harness == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	shared, err := e.Problem()
	if err != nil {
		return nil, err
	}
	serial, err := e.Problem()
	if err != nil {
		return nil, err
	}
	return e.harness.Compare(ctx, shared, serial)
}

// Harness returns the underlying harness for adding observers.
func (e *Experiment) Harness() *harness.Harness {
	return e.harness
}

func (e *Experiment) Methods() []integrators.Integrator {
	return e.methods
}

func (e *Experiment) Config() *config.Config {
	return e.cfg
}
