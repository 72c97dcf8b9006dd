package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/uber-go/tally/v4"

	sim "github.com/cloudlet-sim/cloudlet-sim/sim"
	"github.com/cloudlet-sim/cloudlet-sim/sim/report"
	"github.com/cloudlet-sim/cloudlet-sim/sim/scenario"
)

var (
	logLevel        string        // Log verbosity level
	metricsEnabled  bool          // Report run metrics through the log reporter
	metricsInterval time.Duration // Flush interval of the metrics root scope
	outputDir       string        // Directory for compare output files
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "cloudlet-sim",
	Short: "Discrete-event simulator for cloudlets on VMs on hosts",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)
	},
}

// runCmd executes one scenario and prints its simulation log
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one scenario and print its simulation log",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := resolveConfig(cmd)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		scope, closer := initMetricScope(metricsEnabled, cmd.ErrOrStderr(), metricsInterval)
		err = runScenario(ctx, cfg, scope, cmd.OutOrStdout())
		_ = closer.Close()
		if err != nil {
			logrus.Fatalf("Simulation failed: %v", err)
		}
		logrus.Info("Simulation complete.")
	},
}

// compareCmd runs the scenario under both sharing policies and writes the
// per-strategy logs and the comparison report
var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Run time-shared and space-shared variants and write a comparison report",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := resolveConfig(cmd)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		scope, closer := initMetricScope(metricsEnabled, cmd.ErrOrStderr(), metricsInterval)
		files, err := compareScenarios(ctx, cfg, scope, outputDir)
		_ = closer.Close()
		if err != nil {
			logrus.Fatalf("Comparison failed: %v", err)
		}
		for _, f := range files {
			fmt.Fprintf(cmd.OutOrStdout(), "Report generated: %s\n", f)
		}
	},
}

func runScenario(ctx context.Context, cfg scenario.Config, scope tally.Scope, w io.Writer) error {
	res, err := scenario.Run(ctx, cfg, scope)
	if err != nil {
		return err
	}
	return report.WriteSimulationLog(w, res)
}

// compareScenarios returns the paths it wrote: one log per strategy, then the
// comparison report.
func compareScenarios(ctx context.Context, base scenario.Config, scope tally.Scope, dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output dir: %w", err)
	}
	results, err := scenario.Compare(ctx, scenario.SharingComparison(base), scope)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, res := range results {
		path := filepath.Join(dir, report.LogFileName(res.Name))
		if err := writeFile(path, func(w io.Writer) error { return report.WriteSimulationLog(w, res) }); err != nil {
			return files, err
		}
		files = append(files, path)
	}
	path := filepath.Join(dir, report.ComparisonFileName)
	if err := writeFile(path, func(w io.Writer) error { return report.WriteComparisonReport(w, results) }); err != nil {
		return files, err
	}
	return append(files, path), nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

// resolveConfig picks the base scenario and applies the flags the user set.
// Precedence: --config file, then the --preset entry of --defaults, then the
// built-in default scenario when no defaults file exists.
func resolveConfig(cmd *cobra.Command) (scenario.Config, error) {
	flags := cmd.Flags()
	configPath, _ := flags.GetString("config")
	defaultsPath, _ := flags.GetString("defaults")
	preset, _ := flags.GetString("preset")

	if configPath != "" {
		cfg, err := scenario.LoadConfig(configPath)
		if err != nil {
			return cfg, err
		}
		return applyOverrides(cmd, cfg)
	}

	d, err := loadDefaults(defaultsPath)
	if errors.Is(err, fs.ErrNotExist) && !flags.Changed("defaults") && !flags.Changed("preset") {
		logrus.Infof("%s not found, using the built-in default scenario", defaultsPath)
		return applyOverrides(cmd, scenario.DefaultConfig())
	}
	if err != nil {
		return scenario.Config{}, err
	}
	cfg, err := d.Preset(preset)
	if err != nil {
		return cfg, err
	}
	return applyOverrides(cmd, cfg)
}

// applyOverrides copies every explicitly set flag onto cfg. Unset flags never
// overwrite values from the scenario file.
func applyOverrides(cmd *cobra.Command, cfg scenario.Config) (scenario.Config, error) {
	flags := cmd.Flags()
	if flags.Changed("name") {
		cfg.Name, _ = flags.GetString("name")
	}
	if flags.Changed("seed") {
		cfg.Seed, _ = flags.GetInt64("seed")
	}
	if flags.Changed("policy") {
		policy, _ := flags.GetString("policy")
		cfg.Policies.VMScheduler = policy
		cfg.Policies.CloudletScheduler = policy
	}
	if flags.Changed("vm-scheduler") {
		cfg.Policies.VMScheduler, _ = flags.GetString("vm-scheduler")
	}
	if flags.Changed("cloudlet-scheduler") {
		cfg.Policies.CloudletScheduler, _ = flags.GetString("cloudlet-scheduler")
	}
	if flags.Changed("allocation") {
		cfg.Policies.Allocation, _ = flags.GetString("allocation")
	}
	if flags.Changed("binding") {
		cfg.Binding, _ = flags.GetString("binding")
	}
	if flags.Changed("trace-level") {
		cfg.TraceLevel, _ = flags.GetString("trace-level")
	}

	groupFlags := []string{"cloudlets", "cloudlet-length", "cloudlet-length-stdev"}
	for _, name := range groupFlags {
		if flags.Changed(name) && len(cfg.Cloudlets) != 1 {
			return cfg, fmt.Errorf("--%s needs exactly one cloudlet group, scenario has %d", name, len(cfg.Cloudlets))
		}
	}
	if flags.Changed("vms") && len(cfg.VMs) != 1 {
		return cfg, fmt.Errorf("--vms needs exactly one VM group, scenario has %d", len(cfg.VMs))
	}
	if flags.Changed("hosts") && len(cfg.Hosts) != 1 {
		return cfg, fmt.Errorf("--hosts needs exactly one host group, scenario has %d", len(cfg.Hosts))
	}

	// Group slices may be shared with a preset; copy before writing.
	if flags.Changed("cloudlets") || flags.Changed("cloudlet-length") || flags.Changed("cloudlet-length-stdev") {
		cfg.Cloudlets = append([]scenario.CloudletGroup(nil), cfg.Cloudlets...)
	}
	if flags.Changed("cloudlets") {
		cfg.Cloudlets[0].Count, _ = flags.GetInt("cloudlets")
	}
	if flags.Changed("cloudlet-length") {
		cfg.Cloudlets[0].Length, _ = flags.GetFloat64("cloudlet-length")
	}
	if flags.Changed("cloudlet-length-stdev") {
		cfg.Cloudlets[0].LengthStdev, _ = flags.GetFloat64("cloudlet-length-stdev")
	}
	if flags.Changed("vms") {
		cfg.VMs = append([]scenario.VMGroup(nil), cfg.VMs...)
		cfg.VMs[0].Count, _ = flags.GetInt("vms")
	}
	if flags.Changed("hosts") {
		cfg.Hosts = append([]scenario.HostGroup(nil), cfg.Hosts...)
		cfg.Hosts[0].Count, _ = flags.GetInt("hosts")
	}
	return cfg, nil
}

// addScenarioFlags registers the scenario-selection and override flags.
// Values are read back through cmd.Flags() so each command keeps its own.
func addScenarioFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("config", "", "Scenario YAML file (overrides --preset)")
	f.String("defaults", "defaults.yaml", "File holding named scenario presets")
	f.String("preset", DefaultPreset, "Preset name in the defaults file")
	f.String("name", "", "Scenario name used in report headers and file names")
	f.Int64("seed", 42, "Seed for cloudlet length jitter")

	// Policies
	f.String("policy", sim.VMSchedulerTimeShared, "Sharing policy at both layers (time-shared, space-shared)")
	f.String("vm-scheduler", sim.VMSchedulerTimeShared, "VM scheduler policy (time-shared, space-shared)")
	f.String("cloudlet-scheduler", sim.CloudletSchedulerTimeShared, "Cloudlet scheduler policy (time-shared, space-shared)")
	f.String("allocation", sim.AllocationFirstFit, "VM allocation policy (first-fit, most-free-pes)")
	f.String("binding", sim.BindingStatic, "Cloudlet to VM binding (static, dynamic)")
	f.String("trace-level", "none", "Decision trace verbosity (none, decisions)")

	// Single-group workload overrides
	f.Int("hosts", 2, "Number of hosts")
	f.Int("vms", 4, "Number of VMs")
	f.Int("cloudlets", 10, "Number of cloudlets")
	f.Float64("cloudlet-length", 40000, "Cloudlet length in MI")
	f.Float64("cloudlet-length-stdev", 0, "Standard deviation of cloudlet length")
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "error", "Log level (trace, debug, info, warn, error, fatal, panic)")
	rootCmd.PersistentFlags().BoolVar(&metricsEnabled, "metrics", false, "Log run metrics (counters, gauges, timers) to stderr")
	rootCmd.PersistentFlags().DurationVar(&metricsInterval, "metrics-interval", time.Second, "Flush interval for run metrics")

	addScenarioFlags(runCmd)
	addScenarioFlags(compareCmd)
	compareCmd.Flags().StringVar(&outputDir, "output-dir", ".", "Directory for the simulation logs and comparison report")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(compareCmd)
}
