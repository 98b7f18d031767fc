package ode

import (
	"fmt"
	"math"
	"time"
)

// Func evaluates dy/dt at (t, y).
type Func func(t, y float64) float64

// System is implemented by models; the method value Derive is a Func.
type System interface {
	Derive(t, y float64) float64
	Name() string
}

// Exact is implemented by models with a closed-form solution.
type Exact interface {
	Exact(y0, t0, t float64) float64
}

// Span is an interval [T0, TEnd] walked with fixed step H. When N is
// positive it is the step count and TEnd is informational only.
type Span struct {
	T0   float64
	TEnd float64
	H    float64
	N    int
}

// SpanFromSteps builds the span of exactly n steps of size h from t0.
func SpanFromSteps(t0 float64, n int, h float64) Span {
	return Span{T0: t0, TEnd: t0 + float64(n)*h, H: h, N: n}
}

// Steps is N when set, otherwise round((TEnd-T0)/H). It is only
// meaningful for a valid span.
func (s Span) Steps() int {
	if s.N > 0 {
		return s.N
	}
	return int(math.Round((s.TEnd - s.T0) / s.H))
}

func (s Span) Validate() error {
	if math.IsNaN(s.H) || math.IsInf(s.H, 0) || s.H <= 0 {
		return fmt.Errorf("%w: step size must be positive, got %g", ErrInvalidConfig, s.H)
	}
	if s.N < 0 {
		return fmt.Errorf("%w: step count must not be negative, got %d", ErrInvalidConfig, s.N)
	}
	if s.N > 0 {
		if !IsFinite(s.T0) {
			return fmt.Errorf("%w: start time must be finite, got %g", ErrInvalidConfig, s.T0)
		}
		if s.N > MaxSteps {
			return fmt.Errorf("%w: %d steps exceeds limit of %d", ErrInvalidConfig, s.N, MaxSteps)
		}
		return nil
	}
	if !IsFinite(s.T0) || !IsFinite(s.TEnd) {
		return fmt.Errorf("%w: interval bounds must be finite, got [%g, %g]", ErrInvalidConfig, s.T0, s.TEnd)
	}
	if s.TEnd <= s.T0 {
		return fmt.Errorf("%w: end time %g must be after start time %g", ErrInvalidConfig, s.TEnd, s.T0)
	}
	n := math.Round((s.TEnd - s.T0) / s.H)
	if n < 1 {
		return fmt.Errorf("%w: step size %g is wider than twice the interval", ErrInvalidConfig, s.H)
	}
	if n > MaxSteps {
		return fmt.Errorf("%w: %g steps exceeds limit of %d", ErrInvalidConfig, n, MaxSteps)
	}
	return nil
}

// MaxSteps bounds the step count a span may derive.
const MaxSteps = 1 << 40

// Problem is everything an integrator needs for one run.
type Problem struct {
	F    Func
	Y0   float64
	Span Span
}

func (p Problem) Validate() error {
	if p.F == nil {
		return fmt.Errorf("%w: derivative function is nil", ErrInvalidConfig)
	}
	if !IsFinite(p.Y0) {
		return fmt.Errorf("%w: initial value must be finite, got %g", ErrInvalidConfig, p.Y0)
	}
	return p.Span.Validate()
}

// Result is the outcome of one integration run.
type Result struct {
	Value   float64
	Elapsed time.Duration
	Steps   int
}

// IsFinite reports whether v is neither NaN nor infinite.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
