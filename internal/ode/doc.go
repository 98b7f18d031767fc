// Package ode provides the core primitives for fixed-step integration of a
// scalar ordinary differential equation dy/dt = f(t, y).
//
//   - [Func]: derivative function shared read-only between workers
//   - [System]: any model exposing Derive(t, y)
//   - [Span]: integration interval with a fixed step
//   - [Problem]: derivative, initial value and span bundled for a run
//   - [Result]: final value and wall-clock time of one run
//
// # Example
//
//	growth := models.NewGrowth()
//	p := ode.Problem{F: growth.Derive, Y0: 0, Span: ode.Span{T0: 0, TEnd: 5, H: 1e-3}}
//	res, err := integrators.Timed(integrators.NewRK4(), p)
//
// # Thread Safety
//
// A Func must not mutate shared data. Every integrator in this module keeps
// its running state on the stack, so one Func may be handed to any number of
// goroutines at once.
package ode
