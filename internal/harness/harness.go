package harness

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"

	"github.com/san-kum/odebench/internal/integrators"
	"github.com/san-kum/odebench/internal/ode"
)

const (
	PolicyConcurrent = "concurrent"
	PolicySerial     = "serial"
)

// Outcome is one integrator's run under one policy. Result is only
// meaningful when Err is nil.
type Outcome struct {
	Method string
	Result ode.Result
	Err    error
}

func (o Outcome) OK() bool { return o.Err == nil }

// Policy holds the outcomes of one policy in method order.
type Policy struct {
	Name     string
	Outcomes []Outcome
	Total    time.Duration
}

// Err joins the failures of every method, or returns nil.
func (p *Policy) Err() error {
	var errs []error
	for _, o := range p.Outcomes {
		if o.Err != nil {
			errs = append(errs, o.Err)
		}
	}
	return errors.Join(errs...)
}

func (p *Policy) Outcome(method string) (Outcome, bool) {
	for _, o := range p.Outcomes {
		if o.Method == method {
			return o, true
		}
	}
	return Outcome{}, false
}

// Observer is notified as each method finishes. Under the concurrent policy
// it is called from worker goroutines, in completion order.
type Observer func(policy string, o Outcome)

type Harness struct {
	methods   []integrators.Integrator
	logger    *slog.Logger
	observers []Observer
}

func New(methods []integrators.Integrator, logger *slog.Logger) *Harness {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Harness{
		methods:   methods,
		logger:    logger,
		observers: make([]Observer, 0),
	}
}

func (h *Harness) AddObserver(o Observer) { h.observers = append(h.observers, o) }

func (h *Harness) Methods() []string {
	names := make([]string, len(h.methods))
	for i, m := range h.methods {
		names[i] = m.Name()
	}
	return names
}

// RunConcurrent runs every method on its own goroutine over p.
func (h *Harness) RunConcurrent(ctx context.Context, p ode.Problem) (*Policy, error) {
	if err := h.validate(p); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	outcomes := make([]Outcome, len(h.methods))
	for i, m := range h.methods {
		outcomes[i] = Outcome{
			Method: m.Name(),
			Err: &ode.WorkerError{
				Method: m.Name(),
				Policy: PolicyConcurrent,
				Value:  "worker exited before producing a result",
			},
		}
	}

	h.logger.Debug("dispatching workers", "policy", PolicyConcurrent, "workers", len(h.methods), "steps", p.Span.Steps())

	var wg conc.WaitGroup
	start := time.Now()
	for i, m := range h.methods {
		wg.Go(func() {
			outcomes[i] = h.runOne(PolicyConcurrent, m, p)
		})
	}
	wg.Wait()
	total := time.Since(start)

	pol := &Policy{Name: PolicyConcurrent, Outcomes: outcomes, Total: total}
	h.logDone(pol)
	return pol, nil
}

// RunSerial runs every method on the calling goroutine, one after another.
// Total is the sum of the per-method durations.
func (h *Harness) RunSerial(ctx context.Context, p ode.Problem) (*Policy, error) {
	if err := h.validate(p); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pol := &Policy{Name: PolicySerial, Outcomes: make([]Outcome, 0, len(h.methods))}
	for _, m := range h.methods {
		o := h.runOne(PolicySerial, m, p)
		pol.Outcomes = append(pol.Outcomes, o)
		pol.Total += o.Result.Elapsed
	}

	h.logDone(pol)
	return pol, nil
}

// Compare runs the concurrent policy over concurrent, then the serial
// policy over serial. Both problems are validated before anything runs.
func (h *Harness) Compare(ctx context.Context, concurrent, serial ode.Problem) (*Comparison, error) {
	if err := h.validate(concurrent); err != nil {
		return nil, err
	}
	if err := h.validate(serial); err != nil {
		return nil, err
	}

	c, err := h.RunConcurrent(ctx, concurrent)
	if err != nil {
		return nil, err
	}
	s, err := h.RunSerial(ctx, serial)
	if err != nil {
		return nil, err
	}

	cmp := &Comparison{Concurrent: c, Serial: s}
	h.logger.Info("comparison finished",
		"concurrent", c.Total,
		"serial", s.Total,
		"benefit", cmp.Benefit(),
	)
	for _, m := range cmp.Mismatches() {
		h.logger.Warn("policies disagree", "method", m)
	}
	return cmp, nil
}

func (h *Harness) runOne(policy string, m integrators.Integrator, p ode.Problem) Outcome {
	out := Outcome{Method: m.Name()}

	var pc panics.Catcher
	pc.Try(func() {
		out.Result, out.Err = integrators.Timed(m, p)
	})
	if r := pc.Recovered(); r != nil {
		out.Result = ode.Result{}
		out.Err = &ode.WorkerError{
			Method: m.Name(),
			Policy: policy,
			Value:  r.Value,
			Stack:  r.Stack,
		}
	}

	if out.Err != nil {
		h.logger.Error("method failed", "policy", policy, "method", out.Method, "err", out.Err)
	} else {
		h.logger.Debug("method finished",
			"policy", policy,
			"method", out.Method,
			"value", out.Result.Value,
			"elapsed", out.Result.Elapsed,
		)
	}

	for _, obs := range h.observers {
		obs(policy, out)
	}
	return out
}

func (h *Harness) validate(p ode.Problem) error {
	if len(h.methods) == 0 {
		return fmt.Errorf("%w: no integration methods selected", ode.ErrInvalidConfig)
	}
	seen := make(map[string]bool, len(h.methods))
	for _, m := range h.methods {
		if m == nil {
			return fmt.Errorf("%w: nil integrator", ode.ErrInvalidConfig)
		}
		if seen[m.Name()] {
			return fmt.Errorf("%w: method %q selected twice", ode.ErrInvalidConfig, m.Name())
		}
		seen[m.Name()] = true
	}
	return p.Validate()
}

func (h *Harness) logDone(p *Policy) {
	if err := p.Err(); err != nil {
		h.logger.Warn("policy finished with failures", "policy", p.Name, "total", p.Total, "err", err)
		return
	}
	h.logger.Debug("policy finished", "policy", p.Name, "total", p.Total)
}
