package integrators

import (
	"time"

	"github.com/san-kum/odebench/internal/ode"
)

// Integrator advances a scalar ODE with a fixed step. Implementations hold
// no per-run state and may be shared between goroutines.
type Integrator interface {
	Name() string
	// Order is the global order of accuracy.
	Order() int
	// Stages is the number of derivative evaluations per step.
	Stages() int
	Step(f ode.Func, t, y, h float64) float64
	// Integrate takes exactly n steps from (t0, y0) and returns y_n.
	Integrate(f ode.Func, y0, t0 float64, n int, h float64) float64
}

// Defaults returns Euler, Heun and RK4 in that order.
func Defaults() []Integrator {
	return []Integrator{NewEuler(), NewHeun(), NewRK4()}
}

// Timed validates p, then runs in over it and measures wall-clock time
// around the whole call.
func Timed(in Integrator, p ode.Problem) (ode.Result, error) {
	if err := p.Validate(); err != nil {
		return ode.Result{}, err
	}
	n := p.Span.Steps()

	start := time.Now()
	y := in.Integrate(p.F, p.Y0, p.Span.T0, n, p.Span.H)
	elapsed := time.Since(start)

	return ode.Result{Value: y, Elapsed: elapsed, Steps: n}, nil
}

// Trajectory steps through p and records about samples+1 evenly spaced
// points, always including the first and last.
func Trajectory(in Integrator, p ode.Problem, samples int) (times, values []float64, err error) {
	if err := p.Validate(); err != nil {
		return nil, nil, err
	}
	n := p.Span.Steps()
	if samples < 1 {
		samples = 1
	}
	stride := n / samples
	if stride < 1 {
		stride = 1
	}

	times = make([]float64, 0, n/stride+2)
	values = make([]float64, 0, n/stride+2)

	y, t, h := p.Y0, p.Span.T0, p.Span.H
	times = append(times, t)
	values = append(values, y)

	for i := 1; i <= n; i++ {
		y = in.Step(p.F, t, y, h)
		t += h
		if i%stride == 0 || i == n {
			times = append(times, t)
			values = append(values, y)
		}
	}

	return times, values, nil
}
