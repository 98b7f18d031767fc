package models

import (
	"fmt"
	"math"
)

// Cooling is Newton's law of cooling, dy/dt = -K*(y - Ambient), plus an
// optional sinusoidal drive so the time argument matters:
// dy/dt = -K*(y - Ambient) + Drive*sin(t).
type Cooling struct {
	K       float64
	Ambient float64
	Drive   float64
}

func NewCooling() *Cooling {
	return &Cooling{K: 0.5, Ambient: 20.0}
}

func (c *Cooling) Name() string { return "cooling" }

func (c *Cooling) Derive(t, y float64) float64 {
	return -c.K*(y-c.Ambient) + c.Drive*math.Sin(t)
}

// Exact solves the linear equation in closed form, drive term included.
func (c *Cooling) Exact(y0, t0, t float64) float64 {
	decay := math.Exp(-c.K * (t - t0))
	// particular solution of y' + K*y = Drive*sin(t)
	denom := c.K*c.K + 1
	particular := func(s float64) float64 {
		return c.Drive * (c.K*math.Sin(s) - math.Cos(s)) / denom
	}
	return c.Ambient + particular(t) + (y0-c.Ambient-particular(t0))*decay
}

func (c *Cooling) GetParams() map[string]float64 {
	return map[string]float64{
		"k":       c.K,
		"ambient": c.Ambient,
		"drive":   c.Drive,
	}
}

func (c *Cooling) SetParam(name string, value float64) error {
	switch name {
	case "k":
		c.K = value
	case "ambient":
		c.Ambient = value
	case "drive":
		c.Drive = value
	default:
		return fmt.Errorf("cooling: unknown parameter %q", name)
	}
	return nil
}
