package integrators

import "github.com/san-kum/odebench/internal/ode"

type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Name() string { return "euler" }
func (e *Euler) Order() int   { return 1 }
func (e *Euler) Stages() int  { return 1 }

func (e *Euler) Step(f ode.Func, t, y, h float64) float64 {
	return y + h*f(t, y)
}

func (e *Euler) Integrate(f ode.Func, y0, t0 float64, n int, h float64) float64 {
	y, t := y0, t0
	for i := 0; i < n; i++ {
		y += h * f(t, y)
		t += h
	}
	return y
}
