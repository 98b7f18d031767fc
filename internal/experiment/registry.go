package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/odebench/internal/integrators"
	"github.com/san-kum/odebench/internal/models"
	"github.com/san-kum/odebench/internal/ode"
)

// Configurable models accept named parameters from config files.
type Configurable interface {
	GetParams() map[string]float64
	SetParam(name string, value float64) error
}

type Registry struct {
	models      map[string]func() ode.System
	integrators map[string]func() integrators.Integrator
}

func NewRegistry() *Registry {
	r := &Registry{
		models:      make(map[string]func() ode.System),
		integrators: make(map[string]func() integrators.Integrator),
	}

	r.models["growth"] = func() ode.System { return models.NewGrowth() }
	r.models["exponential"] = func() ode.System { return models.NewExponential() }
	r.models["cooling"] = func() ode.System { return models.NewCooling() }

	r.integrators["euler"] = func() integrators.Integrator { return integrators.NewEuler() }
	r.integrators["heun"] = func() integrators.Integrator { return integrators.NewHeun() }
	r.integrators["rk4"] = func() integrators.Integrator { return integrators.NewRK4() }

	return r
}

// GetModel builds a fresh model and applies params to it.
func (r *Registry) GetModel(name string, params map[string]float64) (ode.System, error) {
	fn, ok := r.models[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s (available: %v)", ode.ErrUnknownModel, name, r.ListModels())
	}
	m := fn()
	if len(params) == 0 {
		return m, nil
	}
	cm, ok := m.(Configurable)
	if !ok {
		return nil, fmt.Errorf("%w: model %s takes no parameters", ode.ErrInvalidConfig, name)
	}
	for k, v := range params {
		if err := cm.SetParam(k, v); err != nil {
			return nil, fmt.Errorf("%w: %v", ode.ErrInvalidConfig, err)
		}
	}
	return m, nil
}

func (r *Registry) GetIntegrator(name string) (integrators.Integrator, error) {
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s (available: %v)", ode.ErrUnknownMethod, name, r.ListIntegrators())
	}
	return fn(), nil
}

func (r *Registry) GetIntegrators(names []string) ([]integrators.Integrator, error) {
	out := make([]integrators.Integrator, 0, len(names))
	for _, name := range names {
		in, err := r.GetIntegrator(name)
		if err != nil {
			return nil, err
		}
		out = append(out, in)
	}
	return out, nil
}

func (r *Registry) ListModels() []string {
	return sortedKeys(r.models)
}

func (r *Registry) ListIntegrators() []string {
	return sortedKeys(r.integrators)
}

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
