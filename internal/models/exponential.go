package models

import (
	"fmt"
	"math"
)

// Exponential is dy/dt = Rate*y with solution y0*exp(Rate*(t-t0)).
type Exponential struct {
	Rate float64
}

func NewExponential() *Exponential {
	return &Exponential{Rate: 1.0}
}

func (e *Exponential) Name() string { return "exponential" }

func (e *Exponential) Derive(t, y float64) float64 {
	return e.Rate * y
}

func (e *Exponential) Exact(y0, t0, t float64) float64 {
	return y0 * math.Exp(e.Rate*(t-t0))
}

func (e *Exponential) GetParams() map[string]float64 {
	return map[string]float64{"rate": e.Rate}
}

func (e *Exponential) SetParam(name string, value float64) error {
	if name != "rate" {
		return fmt.Errorf("exponential: unknown parameter %q", name)
	}
	e.Rate = value
	return nil
}
