package models

import (
	"fmt"
	"math"
)

// Growth is dy/dt = Source - Linear*y - Power*y^Exponent, a source term
// balanced by linear and power-law losses. The defaults give
// 10 - 0.2y - 0.27y^1.5.
type Growth struct {
	Source   float64
	Linear   float64
	Power    float64
	Exponent float64
}

func NewGrowth() *Growth {
	return &Growth{
		Source:   10.0,
		Linear:   0.2,
		Power:    0.27,
		Exponent: 1.5,
	}
}

func (g *Growth) Name() string { return "growth" }

func (g *Growth) Derive(t, y float64) float64 {
	return g.Source - g.Linear*y - g.Power*math.Pow(y, g.Exponent)
}

// Equilibrium returns the positive root of Derive, found by bisection. It
// returns NaN when the losses never overtake the source.
func (g *Growth) Equilibrium() float64 {
	lo, hi := 0.0, 1.0
	for i := 0; g.Derive(0, hi) > 0; i++ {
		if i > 64 {
			return math.NaN()
		}
		lo = hi
		hi *= 2
	}
	for i := 0; i < 200 && hi-lo > 1e-15*hi; i++ {
		mid := 0.5 * (lo + hi)
		if g.Derive(0, mid) > 0 {
			lo = mid
		} else {
			hi = mid
		}
	}
	return 0.5 * (lo + hi)
}

func (g *Growth) GetParams() map[string]float64 {
	return map[string]float64{
		"source":   g.Source,
		"linear":   g.Linear,
		"power":    g.Power,
		"exponent": g.Exponent,
	}
}

func (g *Growth) SetParam(name string, value float64) error {
	switch name {
	case "source":
		g.Source = value
	case "linear":
		g.Linear = value
	case "power":
		g.Power = value
	case "exponent":
		g.Exponent = value
	default:
		return fmt.Errorf("growth: unknown parameter %q", name)
	}
	return nil
}
