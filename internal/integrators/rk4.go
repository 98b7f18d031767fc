package integrators

import "github.com/san-kum/odebench/internal/ode"

type RK4 struct{}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) Name() string { return "rk4" }
func (r *RK4) Order() int   { return 4 }
func (r *RK4) Stages() int  { return 4 }

func (r *RK4) Step(f ode.Func, t, y, h float64) float64 {
	halfH := h / 2
	k1 := f(t, y)
	k2 := f(t+halfH, y+halfH*k1)
	k3 := f(t+halfH, y+halfH*k2)
	k4 := f(t+h, y+h*k3)
	return y + h/6*(k1+2*k2+2*k3+k4)
}

func (r *RK4) Integrate(f ode.Func, y0, t0 float64, n int, h float64) float64 {
	y, t := y0, t0
	halfH := h / 2
	sixthH := h / 6
	for i := 0; i < n; i++ {
		k1 := f(t, y)
		k2 := f(t+halfH, y+halfH*k1)
		k3 := f(t+halfH, y+halfH*k2)
		k4 := f(t+h, y+h*k3)
		y += sixthH * (k1 + 2*k2 + 2*k3 + k4)
		t += h
	}
	return y
}
