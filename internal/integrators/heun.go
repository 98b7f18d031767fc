package integrators

import "github.com/san-kum/odebench/internal/ode"

// Heun is the improved Euler predictor-corrector. Both evaluations are
// anchored at the state from the start of the step.
type Heun struct{}

func NewHeun() *Heun {
	return &Heun{}
}

func (m *Heun) Name() string { return "heun" }
func (m *Heun) Order() int   { return 2 }
func (m *Heun) Stages() int  { return 2 }

func (m *Heun) Step(f ode.Func, t, y, h float64) float64 {
	k1 := f(t, y)
	k2 := f(t+h, y+h*k1)
	return y + h/2*(k1+k2)
}

func (m *Heun) Integrate(f ode.Func, y0, t0 float64, n int, h float64) float64 {
	y, t := y0, t0
	halfH := h / 2
	for i := 0; i < n; i++ {
		k1 := f(t, y)
		k2 := f(t+h, y+h*k1)
		y += halfH * (k1 + k2)
		t += h
	}
	return y
}
