package ode

import (
	"errors"
	"math"
	"testing"
)

func TestSpan_Steps(t *testing.T) {
	tests := []struct {
		name string
		span Span
		want int
	}{
		{"exact", Span{T0: 0, TEnd: 5, H: 0.01}, 500},
		{"single step", Span{T0: 0, TEnd: 5, H: 5}, 1},
		{"drifting division", Span{T0: 0, TEnd: 1, H: 0.1}, 10},
		{"offset start", Span{T0: 2, TEnd: 3, H: 0.25}, 4},
		{"tiny step", Span{T0: 0, TEnd: 5, H: 1e-7}, 50000000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.span.Steps(); got != tt.want {
				t.Errorf("Steps() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSpanFromSteps(t *testing.T) {
	s := SpanFromSteps(1, 40, 0.25)
	if s.TEnd != 11 {
		t.Errorf("TEnd = %g, want 11", s.TEnd)
	}
	if s.Steps() != 40 {
		t.Errorf("Steps() = %d, want 40", s.Steps())
	}
}

func TestSpanFromStepsLargeStart(t *testing.T) {
	tests := []struct {
		t0 float64
		n  int
		h  float64
	}{
		{1e9, 3, 1e-7},
		{1e9, 1, 1e-8},
		{1e6, 7, 1e-10},
	}
	for _, tt := range tests {
		s := SpanFromSteps(tt.t0, tt.n, tt.h)
		if err := s.Validate(); err != nil {
			t.Errorf("SpanFromSteps(%g, %d, %g): unexpected error: %v", tt.t0, tt.n, tt.h, err)
		}
		if s.Steps() != tt.n {
			t.Errorf("SpanFromSteps(%g, %d, %g).Steps() = %d", tt.t0, tt.n, tt.h, s.Steps())
		}
	}
}

func TestSpan_ValidateCounted(t *testing.T) {
	if err := (Span{T0: 0, H: 0.1, N: -1}).Validate(); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("negative count: got %v", err)
	}
	if err := (Span{T0: math.NaN(), H: 0.1, N: 2}).Validate(); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("nan start: got %v", err)
	}
	if err := (Span{T0: 0, H: 0.1, N: MaxSteps + 1}).Validate(); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("too many steps: got %v", err)
	}
}

func TestSpan_Validate(t *testing.T) {
	tests := []struct {
		name string
		span Span
		ok   bool
	}{
		{"valid", Span{T0: 0, TEnd: 5, H: 0.01}, true},
		{"zero step", Span{T0: 0, TEnd: 5, H: 0}, false},
		{"negative step", Span{T0: 0, TEnd: 5, H: -0.1}, false},
		{"nan step", Span{T0: 0, TEnd: 5, H: math.NaN()}, false},
		{"inf step", Span{T0: 0, TEnd: 5, H: math.Inf(1)}, false},
		{"end equals start", Span{T0: 1, TEnd: 1, H: 0.1}, false},
		{"end before start", Span{T0: 2, TEnd: 1, H: 0.1}, false},
		{"infinite end", Span{T0: 0, TEnd: math.Inf(1), H: 0.1}, false},
		{"step too wide", Span{T0: 0, TEnd: 1, H: 3}, false},
		{"step slightly wide", Span{T0: 0, TEnd: 1, H: 1.5}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.span.Validate()
			if tt.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.ok {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !errors.Is(err, ErrInvalidConfig) {
					t.Errorf("error %v does not wrap ErrInvalidConfig", err)
				}
			}
		})
	}
}

func TestProblem_Validate(t *testing.T) {
	span := Span{T0: 0, TEnd: 1, H: 0.1}
	f := func(t, y float64) float64 { return y }

	if err := (Problem{F: f, Y0: 1, Span: span}).Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := (Problem{Y0: 1, Span: span}).Validate(); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("nil func: got %v", err)
	}
	if err := (Problem{F: f, Y0: math.NaN(), Span: span}).Validate(); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("nan y0: got %v", err)
	}
}

func TestWorkerError(t *testing.T) {
	err := &WorkerError{Method: "rk4", Policy: "concurrent", Value: "boom"}
	expected := "concurrent/rk4: ode: worker failed: boom"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
	if !errors.Is(err, ErrWorkerFailed) {
		t.Error("WorkerError should unwrap to ErrWorkerFailed")
	}
}

func TestIsFinite(t *testing.T) {
	if !IsFinite(1.5) {
		t.Error("1.5 should be finite")
	}
	if IsFinite(math.NaN()) || IsFinite(math.Inf(-1)) {
		t.Error("NaN and Inf should not be finite")
	}
}
