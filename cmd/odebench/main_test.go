package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/odebench/internal/config"
)

func newTestCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	preset, configFile = "", ""

	cmd := &cobra.Command{Use: "test"}
	addProblemFlags(cmd)
	require.NoError(t, cmd.ParseFlags(args))
	return cmd
}

func TestResolveConfigDefaults(t *testing.T) {
	cfg, err := resolveConfig(newTestCmd(t))
	require.NoError(t, err)
	require.Equal(t, config.DefaultConfig(), cfg)
}

func TestResolveConfigPresetThenFlags(t *testing.T) {
	cfg, err := resolveConfig(newTestCmd(t, "--preset", "cooling", "--h", "0.5", "--methods", "rk4,euler", "--param", "drive=0"))
	require.NoError(t, err)
	require.Equal(t, "cooling", cfg.Model)
	require.Equal(t, 90.0, cfg.Y0)
	require.Equal(t, 0.5, cfg.H)
	require.Equal(t, []string{"rk4", "euler"}, cfg.Methods)
	require.Equal(t, 0.0, cfg.Params["drive"])
	require.Equal(t, 0.5, cfg.Params["k"])
}

func TestResolveConfigFileOverridesPreset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte("model: exponential\ny0: 2\nt_end: 1\nh: 0.001\n"), 0644))

	cfg, err := resolveConfig(newTestCmd(t, "--preset", "demo", "--config", path, "--y0", "3"))
	require.NoError(t, err)
	require.Equal(t, "exponential", cfg.Model)
	require.Equal(t, 3.0, cfg.Y0)
	require.Equal(t, 0.001, cfg.H)
}

func TestResolveConfigModelFlagDropsParams(t *testing.T) {
	cfg, err := resolveConfig(newTestCmd(t, "--preset", "cooling", "--model", "growth"))
	require.NoError(t, err)
	require.Equal(t, "growth", cfg.Model)
	require.Nil(t, cfg.Params)
}

func TestResolveConfigErrors(t *testing.T) {
	_, err := resolveConfig(newTestCmd(t, "--preset", "nope"))
	require.ErrorContains(t, err, "unknown preset")

	_, err = resolveConfig(newTestCmd(t, "--param", "k=abc"))
	require.Error(t, err)

	_, err = resolveConfig(newTestCmd(t, "--config", filepath.Join(t.TempDir(), "missing.yaml")))
	require.ErrorContains(t, err, "failed to load config")
}
