package analysis

import (
	"context"
	"fmt"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/odebench/internal/integrators"
	"github.com/san-kum/odebench/internal/ode"
)

// Model is a derivative with a closed-form solution.
type Model interface {
	ode.System
	ode.Exact
}

// Level is one step size of a study.
type Level struct {
	H     float64
	Steps int
	Value float64
	Error float64
	// Rate is log2(previous error / this error); zero on the first level.
	Rate float64
}

// Convergence is the study result for one method.
type Convergence struct {
	Method string
	Order  int
	Levels []Level
	// Observed is the least-squares slope of log2(error) against log2(h).
	Observed float64
}

// ConvergenceStudy runs every method at h0, h0/2, ... (levels values) over
// [t0, tEnd] and compares against m.Exact. Runs are spread over GOMAXPROCS
// goroutines.
func ConvergenceStudy(ctx context.Context, methods []integrators.Integrator, m Model, y0, t0, tEnd, h0 float64, levels int) ([]Convergence, error) {
	if levels < 2 {
		return nil, fmt.Errorf("%w: need at least two levels, got %d", ode.ErrInvalidConfig, levels)
	}
	if len(methods) == 0 {
		return nil, fmt.Errorf("%w: no integration methods selected", ode.ErrInvalidConfig)
	}
	for i := 0; i < levels; i++ {
		span := ode.Span{T0: t0, TEnd: tEnd, H: h0 / math.Pow(2, float64(i))}
		if err := span.Validate(); err != nil {
			return nil, err
		}
	}

	exact := m.Exact(y0, t0, tEnd)
	out := make([]Convergence, len(methods))
	for i, in := range methods {
		out[i] = Convergence{Method: in.Name(), Order: in.Order(), Levels: make([]Level, levels)}
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, in := range methods {
		for j := 0; j < levels; j++ {
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				h := h0 / math.Pow(2, float64(j))
				res, err := integrators.Timed(in, ode.Problem{
					F:    m.Derive,
					Y0:   y0,
					Span: ode.Span{T0: t0, TEnd: tEnd, H: h},
				})
				if err != nil {
					return fmt.Errorf("%s at h=%g: %w", in.Name(), h, err)
				}
				out[i].Levels[j] = Level{
					H:     h,
					Steps: res.Steps,
					Value: res.Value,
					Error: math.Abs(res.Value - exact),
				}
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i := range out {
		lv := out[i].Levels
		for j := 1; j < len(lv); j++ {
			if lv[j].Error > 0 && lv[j-1].Error > 0 {
				lv[j].Rate = math.Log2(lv[j-1].Error / lv[j].Error)
			}
		}
		out[i].Observed = fitSlope(lv)
	}
	return out, nil
}

// fitSlope regresses log2(error) on log2(h), skipping exact hits.
func fitSlope(levels []Level) float64 {
	var n, sx, sy, sxx, sxy float64
	for _, l := range levels {
		if l.Error <= 0 || !ode.IsFinite(l.Error) {
			continue
		}
		x, y := math.Log2(l.H), math.Log2(l.Error)
		n++
		sx += x
		sy += y
		sxx += x * x
		sxy += x * y
	}
	den := n*sxx - sx*sx
	if n < 2 || den == 0 {
		return math.NaN()
	}
	return (n*sxy - sx*sy) / den
}
