package automation

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/san-kum/odebench/internal/config"
	"github.com/san-kum/odebench/internal/experiment"
	"github.com/san-kum/odebench/internal/ode"
	"github.com/san-kum/odebench/internal/storage"
)

const scenarioYAML = `
name: smoke
description: quick checks
steps:
  - name: demo growth
    preset: demo
    save: true
  - preset: cooling
    h: 0.01
    t_end: 1
    params:
      drive: 0
  - model: exponential
    y0: 1
    t_end: 1
    h: 0.001
    methods: [rk4]
`

func TestParseScenario(t *testing.T) {
	sc, err := ParseScenario([]byte(scenarioYAML))
	require.NoError(t, err)
	require.Equal(t, "smoke", sc.Name)
	require.Len(t, sc.Steps, 3)

	demo := sc.Steps[0]
	require.Equal(t, "demo growth", demo.Name)
	require.True(t, demo.Save)
	require.Equal(t, 0.01, demo.Config.H)
	require.Equal(t, "growth", demo.Config.Model)

	cooling := sc.Steps[1]
	require.Equal(t, "step 2", cooling.Name)
	require.Equal(t, 0.01, cooling.Config.H)
	require.Equal(t, 1.0, cooling.Config.TEnd)
	require.Equal(t, 90.0, cooling.Config.Y0)
	require.Equal(t, 0.0, cooling.Config.Params["drive"])
	require.Equal(t, 0.5, cooling.Config.Params["k"])
	require.Equal(t, 2.0, config.Presets["cooling"].Params["drive"], "preset must not be modified")

	exp := sc.Steps[2]
	require.Equal(t, "exponential", exp.Config.Model)
	require.Equal(t, []string{"rk4"}, exp.Config.Methods)
}

func TestParseScenarioUnknownPreset(t *testing.T) {
	_, err := ParseScenario([]byte("steps:\n  - preset: nope\n"))
	require.ErrorContains(t, err, "unknown preset")
}

func TestLoadScenario(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(scenarioYAML), 0644))

	sc, err := LoadScenario(path)
	require.NoError(t, err)
	require.Len(t, sc.Steps, 3)

	_, err = LoadScenario(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestRunScenario(t *testing.T) {
	sc, err := ParseScenario([]byte(scenarioYAML))
	require.NoError(t, err)

	st := storage.New(t.TempDir())
	results, err := RunScenario(context.Background(), sc, experiment.NewRegistry(), nil, st)
	require.NoError(t, err)
	require.Len(t, results, 3)

	require.NotEmpty(t, results[0].ReportID)
	require.Empty(t, results[1].ReportID)
	for _, r := range results {
		require.NoError(t, r.Comparison.Err())
		require.Empty(t, r.Comparison.Mismatches())
	}
	require.Len(t, results[2].Comparison.Serial.Outcomes, 1)

	runs, err := st.List()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	require.Equal(t, results[0].ReportID, runs[0].ID)
}

func TestRunScenarioStopsOnBadStep(t *testing.T) {
	sc, err := ParseScenario([]byte(`
steps:
  - preset: demo
  - preset: demo
    methods: [euler, midpoint]
`))
	require.NoError(t, err)

	results, err := RunScenario(context.Background(), sc, experiment.NewRegistry(), nil, nil)
	require.Error(t, err)
	require.True(t, errors.Is(err, ode.ErrUnknownMethod))
	require.Len(t, results, 1)
}

func TestSweepValues(t *testing.T) {
	lin := &ParameterSweep{Param: "y0", From: 0, To: 1, Count: 5}
	v, err := lin.Values()
	require.NoError(t, err)
	require.Equal(t, []float64{0, 0.25, 0.5, 0.75, 1}, v)

	geo := &ParameterSweep{Param: "h", From: 1e-2, To: 1e-4, Count: 3, Log: true}
	v, err = geo.Values()
	require.NoError(t, err)
	require.Len(t, v, 3)
	require.InDelta(t, 1e-3, v[1], 1e-15)
	require.Equal(t, 1e-4, v[2])

	one := &ParameterSweep{Param: "h", From: 0.1, To: 0.2, Count: 1}
	v, err = one.Values()
	require.NoError(t, err)
	require.Equal(t, []float64{0.1}, v)

	_, err = (&ParameterSweep{Count: 0}).Values()
	require.ErrorIs(t, err, ode.ErrInvalidConfig)
	_, err = (&ParameterSweep{From: -1, To: 1, Count: 2, Log: true}).Values()
	require.ErrorIs(t, err, ode.ErrInvalidConfig)
}

func TestSweepApply(t *testing.T) {
	base := config.GetPreset("demo")
	s := &ParameterSweep{Base: base}

	s.Param = "steps"
	require.Equal(t, 100, s.apply(99.6).Steps)

	s.Param = "source"
	cfg := s.apply(12)
	require.Equal(t, 12.0, cfg.Params["source"])
	require.Nil(t, base.Params, "base must not be modified")
}

func TestRunSweep(t *testing.T) {
	sweep := &ParameterSweep{
		Base:  config.GetPreset("demo"),
		Param: "h",
		From:  0.01,
		To:    0.005,
		Count: 2,
	}

	results, err := RunSweep(context.Background(), sweep, experiment.NewRegistry(), nil)
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.Equal(t, 500, results[0].Comparison.Serial.Outcomes[0].Result.Steps)
	require.Equal(t, 1000, results[1].Comparison.Serial.Outcomes[0].Result.Steps)
}

func TestRunSweepBadParam(t *testing.T) {
	sweep := &ParameterSweep{
		Base:  config.GetPreset("demo"),
		Param: "gravity",
		From:  1,
		To:    2,
		Count: 2,
	}

	_, err := RunSweep(context.Background(), sweep, experiment.NewRegistry(), nil)
	require.ErrorIs(t, err, ode.ErrInvalidConfig)
}
