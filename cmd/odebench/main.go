package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/odebench/internal/analysis"
	"github.com/san-kum/odebench/internal/automation"
	"github.com/san-kum/odebench/internal/config"
	"github.com/san-kum/odebench/internal/experiment"
	"github.com/san-kum/odebench/internal/export"
	"github.com/san-kum/odebench/internal/harness"
	"github.com/san-kum/odebench/internal/integrators"
	"github.com/san-kum/odebench/internal/logging"
	"github.com/san-kum/odebench/internal/storage"
	"github.com/san-kum/odebench/internal/tui"
	"github.com/san-kum/odebench/internal/viz"
)

var (
	dataDir  string
	logLevel string

	modelName  string
	y0         float64
	t0         float64
	tEnd       float64
	h          float64
	steps      int
	methods    []string
	params     map[string]string
	configFile string
	preset     string
	save       bool

	// plot
	samples int
	svgPath string
	// order
	h0     float64
	levels int
	// show
	asJSON bool
	// sweep
	sweepParam string
	sweepFrom  float64
	sweepTo    float64
	sweepCount int
	sweepLog   bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "odebench",
		Short:        "concurrent vs serial fixed-step ODE integration",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".odebench", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "compare concurrent and serial execution",
		Args:  cobra.NoArgs,
		RunE:  runComparison,
	}
	addProblemFlags(runCmd)
	runCmd.Flags().BoolVar(&save, "save", false, "store the report under the data directory")

	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "run the comparison with a live view",
		Args:  cobra.NoArgs,
		RunE:  watchComparison,
	}
	addProblemFlags(watchCmd)
	watchCmd.Flags().BoolVar(&save, "save", false, "store the report under the data directory")

	plotCmd := &cobra.Command{
		Use:   "plot",
		Short: "plot each method's trajectory",
		Args:  cobra.NoArgs,
		RunE:  plotTrajectories,
	}
	addProblemFlags(plotCmd)
	plotCmd.Flags().IntVar(&samples, "samples", 200, "points per trajectory")
	plotCmd.Flags().StringVar(&svgPath, "svg", "", "also write the trajectories to an svg file")

	orderCmd := &cobra.Command{
		Use:   "order",
		Short: "measure convergence order against an analytic solution",
		Args:  cobra.NoArgs,
		RunE:  convergenceOrder,
	}
	addProblemFlags(orderCmd)
	orderCmd.Flags().Float64Var(&h0, "h0", 0.1, "coarsest step size")
	orderCmd.Flags().IntVar(&levels, "levels", 6, "number of step halvings")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored reports",
		Args:  cobra.NoArgs,
		RunE:  listReports,
	}

	showCmd := &cobra.Command{
		Use:   "show [report_id]",
		Short: "show a stored report",
		Args:  cobra.ExactArgs(1),
		RunE:  showReport,
	}
	showCmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tMODEL\tY0\tT_END\tH")
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				fmt.Fprintf(w, "%s\t%s\t%g\t%g\t%g\n", name, p.Model, p.Y0, p.EndTime(), p.H)
			}
			return w.Flush()
		},
	}

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a scripted sequence of comparisons",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "repeat the comparison while one value varies",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	addProblemFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepParam, "vary", "h", "value to vary (h, y0, t0, t_end, steps or a model parameter)")
	sweepCmd.Flags().Float64Var(&sweepFrom, "from", 1e-5, "first value")
	sweepCmd.Flags().Float64Var(&sweepTo, "to", 1e-7, "last value")
	sweepCmd.Flags().IntVar(&sweepCount, "count", 5, "number of values")
	sweepCmd.Flags().BoolVar(&sweepLog, "log", true, "space values geometrically")

	rootCmd.AddCommand(runCmd, watchCmd, plotCmd, orderCmd, listCmd, showCmd, presetsCmd, scenarioCmd, sweepCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addProblemFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&modelName, "model", config.DefaultModel, "model name")
	cmd.Flags().Float64Var(&y0, "y0", config.DefaultY0, "initial value")
	cmd.Flags().Float64Var(&t0, "t0", config.DefaultT0, "start time")
	cmd.Flags().Float64Var(&tEnd, "t-end", config.DefaultTEnd, "end time")
	cmd.Flags().Float64Var(&h, "h", config.DefaultH, "step size")
	cmd.Flags().IntVar(&steps, "steps", 0, "step count (overrides t-end)")
	cmd.Flags().StringSliceVar(&methods, "methods", config.DefaultMethods, "integration methods")
	cmd.Flags().StringToStringVar(&params, "param", nil, "model parameter (name=value)")
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
}

// resolveConfig layers defaults, the preset, the config file and finally
// the flags the user actually set.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("model") && modelName != cfg.Model {
		cfg.Model = modelName
		cfg.Params = nil
	}
	if flags.Changed("y0") {
		cfg.Y0 = y0
	}
	if flags.Changed("t0") {
		cfg.T0 = t0
	}
	if flags.Changed("t-end") {
		cfg.TEnd = tEnd
	}
	if flags.Changed("h") {
		cfg.H = h
	}
	if flags.Changed("steps") {
		cfg.Steps = steps
	}
	if flags.Changed("methods") {
		cfg.Methods = methods
	}
	if flags.Changed("param") {
		if cfg.Params == nil {
			cfg.Params = make(map[string]float64, len(params))
		}
		for k, v := range params {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return nil, fmt.Errorf("param %s: %w", k, err)
			}
			cfg.Params[k] = f
		}
	}
	return cfg, nil
}

func setup(cmd *cobra.Command) (*experiment.Experiment, error) {
	logger, err := logging.NewStderr(logLevel)
	if err != nil {
		return nil, err
	}
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return nil, err
	}
	exp := experiment.New(cfg, experiment.NewRegistry(), logger)
	if err := exp.Setup(); err != nil {
		return nil, err
	}
	return exp, nil
}

func title(cfg *config.Config) string {
	return fmt.Sprintf("%s  y0=%g  t=[%g, %g]  h=%g", cfg.Model, cfg.Y0, cfg.T0, cfg.EndTime(), cfg.H)
}

func runComparison(cmd *cobra.Command, args []string) error {
	exp, err := setup(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	cmp, err := exp.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Println(viz.RenderReport(title(exp.Config()), cmp))

	if save {
		if err := saveReport(exp.Config(), cmp); err != nil {
			return err
		}
	}
	return cmp.Err()
}

func watchComparison(cmd *cobra.Command, args []string) error {
	exp, err := setup(cmd)
	if err != nil {
		return err
	}

	cmp, err := tui.Watch(cmd.Context(), title(exp.Config()), exp.Harness(), exp.Run)
	if err != nil {
		if errors.Is(err, tui.ErrInterrupted) {
			fmt.Println("interrupted")
			return nil
		}
		return err
	}

	if save {
		if err := saveReport(exp.Config(), cmp); err != nil {
			return err
		}
	}
	return cmp.Err()
}

func saveReport(cfg *config.Config, cmp *harness.Comparison) error {
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(cfg, cmp, storage.DetectHost())
	if err != nil {
		return err
	}
	fmt.Printf("report id: %s\n", runID)
	return nil
}

func plotTrajectories(cmd *cobra.Command, args []string) error {
	exp, err := setup(cmd)
	if err != nil {
		return err
	}
	p, err := exp.Problem()
	if err != nil {
		return err
	}

	series := make([][]float64, len(exp.Methods()))
	svgSeries := make([]export.Series, len(exp.Methods()))
	ref := 0
	for i, in := range exp.Methods() {
		times, values, err := integrators.Trajectory(in, p, samples)
		if err != nil {
			return err
		}
		series[i] = values
		svgSeries[i] = export.Series{Name: in.Name(), Times: times, Values: values}
		if in.Order() > exp.Methods()[ref].Order() {
			ref = i
		}
	}

	fmt.Println(viz.Title.Render(title(exp.Config())))
	fmt.Println()
	for i, in := range exp.Methods() {
		fmt.Println(viz.PlotTrajectory(in.Name()+" y(t)", series[i]))
		fmt.Println()
	}

	refName := exp.Methods()[ref].Name()
	for i, in := range exp.Methods() {
		if i == ref {
			continue
		}
		graph, err := viz.PlotDeviation(fmt.Sprintf("%s - %s", in.Name(), refName), series[i], series[ref])
		if err != nil {
			return err
		}
		fmt.Println(graph)
		fmt.Println()
	}

	if svgPath != "" {
		if err := export.WriteSVG(svgPath, svgSeries, 800, 400); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", svgPath)
	}
	return nil
}

func convergenceOrder(cmd *cobra.Command, args []string) error {
	exp, err := setup(cmd)
	if err != nil {
		return err
	}
	cfg := exp.Config()

	sys, err := experiment.NewRegistry().GetModel(cfg.Model, cfg.Params)
	if err != nil {
		return err
	}
	m, ok := sys.(analysis.Model)
	if !ok {
		return fmt.Errorf("model %s has no analytic solution (try --preset exponential or --preset cooling)", cfg.Model)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	results, err := analysis.ConvergenceStudy(ctx, exp.Methods(), m, cfg.Y0, cfg.T0, cfg.EndTime(), h0, levels)
	if err != nil {
		return err
	}

	fmt.Println(viz.Title.Render(fmt.Sprintf("%s  y0=%g  t=[%g, %g]", cfg.Model, cfg.Y0, cfg.T0, cfg.EndTime())))
	fmt.Println()
	fmt.Print(viz.RenderConvergence(results))
	return nil
}

func listReports(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no reports found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMODEL\tTIME\tH\tSTEPS\tCONCURRENT\tSERIAL\tBENEFIT\tCPUS")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%g\t%d\t%s\t%s\t%s\t%d\n",
			run.ID,
			run.Model,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.H,
			run.Steps,
			viz.FormatDuration(run.ConcurrentTotal),
			viz.FormatDuration(run.SerialTotal),
			viz.FormatDuration(run.Benefit),
			run.Host.LogicalCPUs,
		)
	}

	return w.Flush()
}

func showReport(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	outcomes, err := st.LoadOutcomes(runID)
	if err != nil {
		return err
	}

	if asJSON {
		return storage.ExportJSON(os.Stdout, meta, outcomes)
	}

	fmt.Printf("report: %s\n", meta.ID)
	fmt.Printf("time: %s\n", meta.Timestamp.Format("2006-01-02 15:04:05"))
	fmt.Printf("model: %s %v\n", meta.Model, meta.Params)
	fmt.Printf("y0=%g  t=[%g, %g]  h=%g  steps=%d\n", meta.Y0, meta.T0, meta.TEnd, meta.H, meta.Steps)
	fmt.Printf("host: %d logical / %d physical cpus, GOMAXPROCS=%d, %s/%s %s\n\n",
		meta.Host.LogicalCPUs, meta.Host.PhysicalCPUs, meta.Host.GOMAXPROCS, meta.Host.GOOS, meta.Host.GOARCH, meta.Host.CPUModel)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "POLICY\tMETHOD\tVALUE\tELAPSED\tERROR")
	for _, o := range outcomes {
		value := viz.FormatValue(o.Value)
		if o.Error != "" {
			value = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", o.Policy, o.Method, value, viz.FormatDuration(o.Elapsed), o.Error)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\nconcurrent total: %s\n", viz.FormatDuration(meta.ConcurrentTotal))
	fmt.Printf("serial total:     %s\n", viz.FormatDuration(meta.SerialTotal))
	fmt.Printf("benefit:          %s\n", viz.FormatDuration(meta.Benefit))
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	logger, err := logging.NewStderr(logLevel)
	if err != nil {
		return err
	}
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	if sc.Name != "" {
		fmt.Println(viz.Title.Render(sc.Name))
		if sc.Description != "" {
			fmt.Println(viz.Subtle.Render(sc.Description))
		}
		fmt.Println()
	}

	results, runErr := automation.RunScenario(ctx, sc, experiment.NewRegistry(), logger, st)
	var failed error
	for _, r := range results {
		fmt.Println(viz.RenderReport(r.Name+"  "+title(r.Config), r.Comparison))
		if r.ReportID != "" {
			fmt.Printf("report id: %s\n", r.ReportID)
		}
		fmt.Println()
		failed = errors.Join(failed, r.Comparison.Err())
	}
	return errors.Join(runErr, failed)
}

func runSweep(cmd *cobra.Command, args []string) error {
	logger, err := logging.NewStderr(logLevel)
	if err != nil {
		return err
	}
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	sweep := &automation.ParameterSweep{
		Base:  cfg,
		Param: sweepParam,
		From:  sweepFrom,
		To:    sweepTo,
		Count: sweepCount,
		Log:   sweepLog,
	}
	results, err := automation.RunSweep(ctx, sweep, experiment.NewRegistry(), logger)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tCONCURRENT\tSERIAL\tBENEFIT\tSPEEDUP\tFAILURES\n", sweepParam)
	for _, r := range results {
		failures := 0
		for _, pol := range []*harness.Policy{r.Comparison.Concurrent, r.Comparison.Serial} {
			for _, o := range pol.Outcomes {
				if !o.OK() {
					failures++
				}
			}
		}
		fmt.Fprintf(w, "%g\t%s\t%s\t%s\t%.2fx\t%d\n",
			r.ParamValue,
			viz.FormatDuration(r.Comparison.Concurrent.Total),
			viz.FormatDuration(r.Comparison.Serial.Total),
			viz.FormatDuration(r.Comparison.Benefit()),
			r.Comparison.Speedup(),
			failures,
		)
	}
	if ferr := w.Flush(); ferr != nil {
		return ferr
	}
	return err
}
