package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/stat"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/swarmlab/internal/analysis"
	"github.com/san-kum/swarmlab/internal/config"
	"github.com/san-kum/swarmlab/internal/experiment"
	"github.com/san-kum/swarmlab/internal/metrics"
	"github.com/san-kum/swarmlab/internal/simulator"
	"github.com/san-kum/swarmlab/internal/viz"
)

var (
	verbose  bool
	preset   string
	duration float64
	seed     uint64
	runs     int
	csvPath  string
	savePath string
	// Plot shape
	metricName string
	plotHeight int
	plotWidth  int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "swarmlab",
		Short: "stochastic multi-population simulation lab",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log run diagnostics")

	runCmd := &cobra.Command{
		Use:   "run [config.yaml]",
		Short: "run a simulation headless and print its metrics",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	runCmd.Flags().StringVar(&preset, "preset", "", "use a named preset instead of a config file")
	runCmd.Flags().Float64Var(&duration, "duration", 0, "override the simulated duration in seconds")
	runCmd.Flags().Uint64Var(&seed, "seed", 0, "override the random seed")
	runCmd.Flags().IntVar(&runs, "runs", 1, "independent realizations (seeds seed..seed+runs-1)")
	runCmd.Flags().StringVar(&csvPath, "csv", "", "write per-step metric series to a CSV file")

	liveCmd := &cobra.Command{
		Use:   "live [config.yaml]",
		Short: "run a simulation with a live terminal view",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	liveCmd.Flags().StringVar(&preset, "preset", "", "use a named preset instead of a config file")
	liveCmd.Flags().Float64Var(&duration, "duration", 0, "override the simulated duration in seconds")
	liveCmd.Flags().Uint64Var(&seed, "seed", 0, "override the random seed")

	presetsCmd := &cobra.Command{
		Use:   "presets [name]",
		Short: "list presets, or show one as YAML",
		Args:  cobra.MaximumNArgs(1),
		RunE:  showPresets,
	}
	presetsCmd.Flags().StringVar(&savePath, "save", "", "write the shown preset to a config file")

	plotCmd := &cobra.Command{
		Use:   "plot [config.yaml]",
		Short: "run a simulation and plot its metric series",
		Args:  cobra.MaximumNArgs(1),
		RunE:  plotMetrics,
	}
	plotCmd.Flags().StringVar(&preset, "preset", "", "use a named preset instead of a config file")
	plotCmd.Flags().Float64Var(&duration, "duration", 0, "override the simulated duration in seconds")
	plotCmd.Flags().Uint64Var(&seed, "seed", 0, "override the random seed")
	plotCmd.Flags().StringVar(&metricName, "metric", "", "plot only the named metric")
	plotCmd.Flags().IntVar(&plotHeight, "height", 10, "plot height in rows")
	plotCmd.Flags().IntVar(&plotWidth, "width", 80, "plot width in columns")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [config.yaml]",
		Short: "run a simulation and analyze a metric's frequency content",
		Args:  cobra.MaximumNArgs(1),
		RunE:  analyzeMetric,
	}
	analyzeCmd.Flags().StringVar(&preset, "preset", "", "use a named preset instead of a config file")
	analyzeCmd.Flags().Float64Var(&duration, "duration", 0, "override the simulated duration in seconds")
	analyzeCmd.Flags().Uint64Var(&seed, "seed", 0, "override the random seed")
	analyzeCmd.Flags().StringVar(&metricName, "metric", "", "analyze the named metric (default: the first)")
	analyzeCmd.Flags().IntVar(&plotHeight, "height", 10, "plot height in rows")
	analyzeCmd.Flags().IntVar(&plotWidth, "width", 80, "plot width in columns")

	rootCmd.AddCommand(runCmd, liveCmd, presetsCmd, plotCmd, analyzeCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig resolves the configuration for a command: a config file argument
// or a --preset, with --duration and --seed taking precedence over both.
func loadConfig(cmd *cobra.Command, args []string) (*config.Config, string, error) {
	var cfg *config.Config
	var name string

	switch {
	case len(args) == 1:
		c, err := config.Load(args[0])
		if err != nil {
			return nil, "", err
		}
		cfg, name = c, args[0]
	case preset != "":
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, "", fmt.Errorf("unknown preset %q (available: %s)",
				preset, strings.Join(config.ListPresets(), ", "))
		}
		name = preset
	default:
		return nil, "", fmt.Errorf("a config file or --preset is required")
	}

	if cmd.Flags().Changed("duration") {
		cfg.Simulator.Duration = duration
	}
	if cmd.Flags().Changed("seed") {
		cfg.Simulator.Seed = seed
	}
	return cfg, name, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, name, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}

	reg := experiment.NewRegistry()
	if runs > 1 {
		return runEnsemble(reg, cfg, name)
	}

	sim, err := experiment.Build(reg, cfg)
	if err != nil {
		return err
	}
	sim.SetLogger(slog.Default())

	fmt.Printf("running %s (seed %d)...\n", name, cfg.Simulator.Seed)
	start := time.Now()
	res, err := sim.Run(context.Background(), experiment.RunConfig(cfg))
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("steps: %d  simulated: %.2fs\n", res.Steps, res.Time)
	if res.Steps < int(cfg.Simulator.Duration/cfg.Integrator.Dt) {
		fmt.Println("stopped early")
	}

	if len(res.Metrics) > 0 {
		fmt.Println()
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "METRIC\tVALUE")
		for _, mn := range sortedMetricNames(res.Metrics) {
			fmt.Fprintf(w, "%s\t%.6g\n", mn, res.Metrics[mn])
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}

	if csvPath != "" {
		if err := writeSeriesCSV(csvPath, sim); err != nil {
			return err
		}
		fmt.Printf("\nmetric series written to %s\n", csvPath)
	}
	return nil
}

func runEnsemble(reg *experiment.Registry, cfg *config.Config, name string) error {
	ens, err := simulator.NewEnsemble(experiment.Factory(reg, cfg), runs, cfg.Simulator.Seed)
	if err != nil {
		return err
	}

	fmt.Printf("running %s, %d realizations (seeds %d..%d)...\n",
		name, runs, cfg.Simulator.Seed, cfg.Simulator.Seed+uint64(runs)-1)
	start := time.Now()
	results, err := ens.Run(context.Background(), experiment.RunConfig(cfg))
	if err != nil {
		return err
	}
	fmt.Printf("completed in %v\n\n", time.Since(start))

	byMetric := make(map[string][]float64)
	for _, res := range results {
		for mn, v := range res.Metrics {
			byMetric[mn] = append(byMetric[mn], v)
		}
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "METRIC\tMEAN\tSTDDEV\tRUNS")
	for _, mn := range sortedMetricNames(byMetric) {
		vals := byMetric[mn]
		fmt.Fprintf(w, "%s\t%.6g\t%.6g\t%d\n", mn, stat.Mean(vals, nil), stat.StdDev(vals, nil), len(vals))
	}
	return w.Flush()
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, name, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}

	sim, err := experiment.Build(experiment.NewRegistry(), cfg)
	if err != nil {
		return err
	}

	p := tea.NewProgram(viz.NewModel(sim, name, experiment.RunConfig(cfg)))
	_, err = p.Run()
	return err
}

func showPresets(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tPOPULATIONS\tDURATION\tBOUNDARY")
		for _, name := range config.ListPresets() {
			cfg := config.GetPreset(name)
			pops := make([]string, len(cfg.Populations))
			for i, p := range cfg.Populations {
				pops[i] = fmt.Sprintf("%s(%d)", p.ID, p.N)
			}
			fmt.Fprintf(w, "%s\t%s\t%.0fs\t%s\n",
				name, strings.Join(pops, " "), cfg.Simulator.Duration, cfg.Environment.Boundary)
		}
		return w.Flush()
	}

	cfg := config.GetPreset(args[0])
	if cfg == nil {
		return fmt.Errorf("unknown preset %q (available: %s)",
			args[0], strings.Join(config.ListPresets(), ", "))
	}
	if savePath != "" {
		if err := config.Save(savePath, cfg); err != nil {
			return err
		}
		fmt.Printf("preset %s written to %s\n", args[0], savePath)
		return nil
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	fmt.Print(string(data))
	return nil
}

func plotMetrics(cmd *cobra.Command, args []string) error {
	cfg, name, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}

	sim, err := experiment.Build(experiment.NewRegistry(), cfg)
	if err != nil {
		return err
	}

	res, err := sim.Run(context.Background(), experiment.RunConfig(cfg))
	if err != nil {
		return err
	}
	fmt.Printf("%s: %d steps, %.2fs simulated (seed %d)\n\n",
		name, res.Steps, res.Time, cfg.Simulator.Seed)

	plotted := 0
	for _, mt := range sim.Metrics() {
		if metricName != "" && mt.Name() != metricName {
			continue
		}
		sm, ok := mt.(metrics.SeriesMetric)
		if !ok || len(sm.Series()) < 2 {
			continue
		}
		fmt.Println(asciigraph.Plot(sm.Series(),
			asciigraph.Height(plotHeight),
			asciigraph.Width(plotWidth),
			asciigraph.Caption(mt.Name()),
		))
		fmt.Println()
		plotted++
	}
	if plotted == 0 {
		if metricName != "" {
			return fmt.Errorf("no metric series named %q", metricName)
		}
		return fmt.Errorf("the configuration declares no metrics to plot")
	}
	return nil
}

func analyzeMetric(cmd *cobra.Command, args []string) error {
	cfg, name, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}

	sim, err := experiment.Build(experiment.NewRegistry(), cfg)
	if err != nil {
		return err
	}
	if _, err := sim.Run(context.Background(), experiment.RunConfig(cfg)); err != nil {
		return err
	}

	var target metrics.SeriesMetric
	for _, mt := range sim.Metrics() {
		sm, ok := mt.(metrics.SeriesMetric)
		if !ok {
			continue
		}
		if metricName == "" || mt.Name() == metricName {
			target = sm
			break
		}
	}
	if target == nil {
		if metricName != "" {
			return fmt.Errorf("no metric series named %q", metricName)
		}
		return fmt.Errorf("the configuration declares no metrics to analyze")
	}

	_, amps, err := analysis.Spectrum(target.Series(), cfg.Integrator.Dt)
	if err != nil {
		return err
	}

	// The interesting structure sits in the low-frequency quarter.
	view := amps[1:]
	if len(view) > len(amps)/4 {
		view = view[:len(amps)/4]
	}
	fmt.Printf("%s: spectrum of %s\n\n", name, target.Name())
	fmt.Println(asciigraph.Plot(view,
		asciigraph.Height(plotHeight),
		asciigraph.Width(plotWidth),
		asciigraph.Caption(fmt.Sprintf("amplitude spectrum, %s", target.Name())),
	))

	freq, amp, err := analysis.DominantFrequency(target.Series(), cfg.Integrator.Dt)
	if err != nil {
		return err
	}
	fmt.Printf("\ndominant frequency: %.3f hz (amplitude %.4g)\n", freq, amp)
	if freq > 0 {
		fmt.Printf("period: %.3f s\n", 1/freq)
	}
	return nil
}

// writeSeriesCSV exports every metric series as one CSV column, with the
// sample time in the first column.
func writeSeriesCSV(path string, sim *simulator.Simulator) error {
	header := []string{"time"}
	var cols [][]float64
	for _, mt := range sim.Metrics() {
		sm, ok := mt.(metrics.SeriesMetric)
		if !ok {
			continue
		}
		header = append(header, mt.Name())
		cols = append(cols, sm.Series())
	}
	if len(cols) == 0 {
		return fmt.Errorf("the configuration declares no metrics to export")
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	n := 0
	for _, c := range cols {
		if len(c) > n {
			n = len(c)
		}
	}
	dt := sim.Dt()
	for i := 0; i < n; i++ {
		row := make([]string, 0, len(cols)+1)
		row = append(row, strconv.FormatFloat(float64(i+1)*dt, 'f', 6, 64))
		for _, c := range cols {
			if i < len(c) {
				row = append(row, strconv.FormatFloat(c[i], 'f', 6, 64))
			} else {
				row = append(row, "")
			}
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func sortedMetricNames[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for n := range m {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
