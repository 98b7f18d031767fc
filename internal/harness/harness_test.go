package harness

import (
	"context"
	"errors"
	"math"
	"runtime"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/odebench/internal/integrators"
	"github.com/san-kum/odebench/internal/models"
	"github.com/san-kum/odebench/internal/ode"
)

// panicky wraps an integrator and panics inside Integrate.
type panicky struct {
	integrators.Integrator
}

func (p panicky) Integrate(f ode.Func, y0, t0 float64, n int, h float64) float64 {
	panic("integrator exploded")
}

// quitter wraps an integrator and leaves its goroutine without returning.
type quitter struct {
	integrators.Integrator
}

func (q quitter) Integrate(f ode.Func, y0, t0 float64, n int, h float64) float64 {
	runtime.Goexit()
	return 0
}

func growthProblem(h float64) ode.Problem {
	return ode.Problem{
		F:    models.NewGrowth().Derive,
		Y0:   0,
		Span: ode.Span{T0: 0, TEnd: 5, H: h},
	}
}

var _ = Describe("Harness", func() {
	var (
		h   *Harness
		ctx context.Context
	)

	BeforeEach(func() {
		h = New(integrators.Defaults(), nil)
		ctx = context.Background()
	})

	Describe("RunConcurrent", func() {
		It("reports every method in registration order", func() {
			pol, err := h.RunConcurrent(ctx, growthProblem(0.01))
			Expect(err).NotTo(HaveOccurred())
			Expect(pol.Name).To(Equal(PolicyConcurrent))
			Expect(pol.Err()).NotTo(HaveOccurred())

			names := make([]string, 0, len(pol.Outcomes))
			for _, o := range pol.Outcomes {
				names = append(names, o.Method)
				Expect(o.Result.Steps).To(Equal(500))
				Expect(ode.IsFinite(o.Result.Value)).To(BeTrue())
			}
			Expect(names).To(Equal([]string{"euler", "heun", "rk4"}))
		})

		It("measures at least as long as its slowest worker", func() {
			pol, err := h.RunConcurrent(ctx, growthProblem(1e-4))
			Expect(err).NotTo(HaveOccurred())
			for _, o := range pol.Outcomes {
				Expect(pol.Total).To(BeNumerically(">=", o.Result.Elapsed))
			}
		})

		It("shares one derivative function between all workers", func() {
			var mu sync.Mutex
			calls := 0
			g := models.NewGrowth()
			p := growthProblem(0.01)
			p.F = func(t, y float64) float64 {
				mu.Lock()
				calls++
				mu.Unlock()
				return g.Derive(t, y)
			}

			_, err := h.RunConcurrent(ctx, p)
			Expect(err).NotTo(HaveOccurred())
			Expect(calls).To(Equal(500 * (1 + 2 + 4)))
		})

		It("surfaces a panicking worker without losing the others", func() {
			h = New([]integrators.Integrator{
				integrators.NewEuler(),
				panicky{integrators.NewHeun()},
				integrators.NewRK4(),
			}, nil)

			pol, err := h.RunConcurrent(ctx, growthProblem(0.01))
			Expect(err).NotTo(HaveOccurred())
			Expect(pol.Err()).To(MatchError(ode.ErrWorkerFailed))

			failed, ok := pol.Outcome("heun")
			Expect(ok).To(BeTrue())
			Expect(failed.OK()).To(BeFalse())
			var we *ode.WorkerError
			Expect(errors.As(failed.Err, &we)).To(BeTrue())
			Expect(we.Policy).To(Equal(PolicyConcurrent))
			Expect(we.Value).To(Equal("integrator exploded"))
			Expect(we.Stack).NotTo(BeEmpty())

			for _, name := range []string{"euler", "rk4"} {
				o, _ := pol.Outcome(name)
				Expect(o.OK()).To(BeTrue(), name)
			}
		})

		It("surfaces a worker that exits without a result", func() {
			h = New([]integrators.Integrator{
				quitter{integrators.NewEuler()},
				integrators.NewRK4(),
			}, nil)

			pol, err := h.RunConcurrent(ctx, growthProblem(0.01))
			Expect(err).NotTo(HaveOccurred())

			o, _ := pol.Outcome("euler")
			Expect(o.Err).To(MatchError(ode.ErrWorkerFailed))
			Expect(o.Result.Value).To(BeZero())

			o, _ = pol.Outcome("rk4")
			Expect(o.OK()).To(BeTrue())
		})

		It("notifies observers once per method", func() {
			var mu sync.Mutex
			seen := map[string]string{}
			h.AddObserver(func(policy string, o Outcome) {
				mu.Lock()
				defer mu.Unlock()
				seen[o.Method] = policy
			})

			_, err := h.RunConcurrent(ctx, growthProblem(0.01))
			Expect(err).NotTo(HaveOccurred())
			Expect(seen).To(HaveLen(3))
			Expect(seen).To(HaveKeyWithValue("rk4", PolicyConcurrent))
		})
	})

	Describe("RunSerial", func() {
		It("sums the individual durations", func() {
			pol, err := h.RunSerial(ctx, growthProblem(1e-3))
			Expect(err).NotTo(HaveOccurred())

			var sum time.Duration
			for _, o := range pol.Outcomes {
				sum += o.Result.Elapsed
			}
			Expect(pol.Total).To(Equal(sum))
		})

		It("surfaces a panicking method", func() {
			h = New([]integrators.Integrator{panicky{integrators.NewRK4()}}, nil)

			pol, err := h.RunSerial(ctx, growthProblem(0.01))
			Expect(err).NotTo(HaveOccurred())
			Expect(pol.Err()).To(MatchError(ode.ErrWorkerFailed))
			Expect(pol.Total).To(BeZero())
		})

		It("does not return when a method exits the calling goroutine", func() {
			h = New([]integrators.Integrator{quitter{integrators.NewEuler()}}, nil)

			exited := make(chan struct{})
			returned := false
			go func() {
				defer close(exited)
				_, _ = h.RunSerial(ctx, growthProblem(0.01))
				returned = true
			}()

			Eventually(exited).Should(BeClosed())
			Expect(returned).To(BeFalse())
		})
	})

	Describe("Compare", func() {
		It("produces bit-identical values under both policies", func() {
			cmp, err := h.Compare(ctx, growthProblem(1e-3), growthProblem(1e-3))
			Expect(err).NotTo(HaveOccurred())
			Expect(cmp.Err()).NotTo(HaveOccurred())
			Expect(cmp.Mismatches()).To(BeEmpty())

			for _, co := range cmp.Concurrent.Outcomes {
				so, ok := cmp.Serial.Outcome(co.Method)
				Expect(ok).To(BeTrue())
				Expect(math.Float64bits(co.Result.Value)).To(Equal(math.Float64bits(so.Result.Value)))
			}
			Expect(cmp.Benefit()).To(Equal(cmp.Serial.Total - cmp.Concurrent.Total))
		})

		It("flags methods whose values diverge", func() {
			serial := growthProblem(1e-3)
			serial.Y0 = 1
			cmp, err := h.Compare(ctx, growthProblem(1e-3), serial)
			Expect(err).NotTo(HaveOccurred())
			Expect(cmp.Mismatches()).To(ConsistOf("euler", "heun", "rk4"))
		})

		It("keeps the concurrent total near the slowest method on a multi-core host", func() {
			if runtime.NumCPU() < 4 {
				Skip("needs at least four CPUs")
			}
			cmp, err := h.Compare(ctx, growthProblem(2.5e-5), growthProblem(2.5e-5))
			Expect(err).NotTo(HaveOccurred())

			var slowest time.Duration
			for _, o := range cmp.Serial.Outcomes {
				if o.Result.Elapsed > slowest {
					slowest = o.Result.Elapsed
				}
			}
			Expect(cmp.Concurrent.Total).To(BeNumerically("<", 2*slowest+100*time.Millisecond))
		})
	})

	DescribeTable("rejects invalid configuration before dispatch",
		func(p ode.Problem) {
			dispatched := false
			h.AddObserver(func(string, Outcome) { dispatched = true })

			_, err := h.Compare(ctx, growthProblem(0.01), p)
			Expect(err).To(MatchError(ode.ErrInvalidConfig))
			Expect(dispatched).To(BeFalse())
		},
		Entry("zero step", ode.Problem{F: models.NewGrowth().Derive, Span: ode.Span{T0: 0, TEnd: 5, H: 0}}),
		Entry("negative step", ode.Problem{F: models.NewGrowth().Derive, Span: ode.Span{T0: 0, TEnd: 5, H: -1}}),
		Entry("end before start", ode.Problem{F: models.NewGrowth().Derive, Span: ode.Span{T0: 5, TEnd: 0, H: 0.1}}),
		Entry("nil derivative", ode.Problem{Span: ode.Span{T0: 0, TEnd: 5, H: 0.1}}),
	)

	It("rejects an empty method list", func() {
		h = New(nil, nil)
		_, err := h.RunConcurrent(ctx, growthProblem(0.01))
		Expect(err).To(MatchError(ode.ErrInvalidConfig))
	})

	It("rejects duplicate methods", func() {
		h = New([]integrators.Integrator{integrators.NewRK4(), integrators.NewRK4()}, nil)
		_, err := h.RunSerial(ctx, growthProblem(0.01))
		Expect(err).To(MatchError(ode.ErrInvalidConfig))
	})

	It("does not dispatch on a canceled context", func() {
		canceled, cancel := context.WithCancel(ctx)
		cancel()
		_, err := h.RunConcurrent(canceled, growthProblem(0.01))
		Expect(err).To(MatchError(context.Canceled))
	})
})
