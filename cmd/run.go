package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"parallel-bench/internal/config"
	"parallel-bench/internal/host"
	"parallel-bench/internal/kernels"
	"parallel-bench/internal/logging"
	"parallel-bench/internal/sweep"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	var configFile string
	var noExport bool

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run a benchmark sweep",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runBenchmark(ctx, configFile, !noExport)
		},
	}
	runCmd.Flags().StringVarP(&configFile, "config", "c", "", "Path to benchmark configuration file")
	runCmd.Flags().BoolVar(&noExport, "no-export", false, "Skip the exporters configured in the file")
	runCmd.MarkFlagRequired("config")
	return runCmd
}

func newValidateCmd() *cobra.Command {
	var configFile string

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a benchmark configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return validateConfig(configFile)
		},
	}
	validateCmd.Flags().StringVarP(&configFile, "config", "c", "", "Path to benchmark configuration file")
	validateCmd.MarkFlagRequired("config")
	return validateCmd
}

func newKernelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "kernels",
		Short: "List the built-in kernels",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tDATASET\tDESCRIPTION")
			for _, k := range kernels.All() {
				fmt.Fprintf(w, "%s\t%s\t%s\n", k.Name, k.Kind, k.Description)
			}
			return w.Flush()
		},
	}
}

func validateConfig(configFile string) error {
	logger := logging.GetLogger()

	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		logger.WithField("config_file", configFile).WithError(err).Error("Configuration validation failed")
		return err
	}
	if _, err := cfg.BenchmarkOptions(); err != nil {
		logger.WithField("config_file", configFile).WithError(err).Error("Configuration validation failed")
		return err
	}
	if _, err := kernels.Bind(cfg); err != nil {
		logger.WithField("config_file", configFile).WithError(err).Error("Configuration validation failed")
		return err
	}
	logger.WithField("config_file", configFile).Info("Configuration is valid")
	return nil
}

func runBenchmark(ctx context.Context, configFile string, export bool) error {
	logger := logging.GetLogger()

	cfg, _, err := config.LoadConfigWithContent(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.Benchmark.LogLevel != "" {
		if err := logging.SetLogLevel(cfg.Benchmark.LogLevel); err != nil {
			logger.WithField("log_level", cfg.Benchmark.LogLevel).WithError(err).Warn("Invalid log level in config, using INFO")
			logging.SetLogLevel("info")
		}
	}

	if cfg.Benchmark.SweepLogLevel != "" {
		if err := logging.SetSweepLogLevel(cfg.Benchmark.SweepLogLevel); err != nil {
			logger.WithField("sweep_log_level", cfg.Benchmark.SweepLogLevel).WithError(err).Warn("Invalid sweep log level, using default")
		}
	}

	opts, err := cfg.BenchmarkOptions()
	if err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}

	runner, err := kernels.Bind(cfg)
	if err != nil {
		return err
	}

	checksum, err := config.ConfigChecksum(cfg)
	if err != nil {
		return fmt.Errorf("failed to checksum config: %w", err)
	}

	hostInfo, err := host.Detect(cfg.Options.RDTProbe)
	if err != nil {
		logger.WithError(err).Warn("Host detection incomplete")
	}

	logger.WithFields(logrus.Fields{
		"benchmark": cfg.Benchmark.Name,
		"kernel":    cfg.Kernel.Name,
		"datasets":  len(cfg.Datasets),
		"threads":   opts.Threads(),
		"checksum":  checksum,
	}).Info("Starting benchmark")

	result, err := runner(ctx, cfg, opts, sweep.Environment{
		Benchmark: cfg.Benchmark.Name,
		Checksum:  checksum,
		Host:      hostInfo,
	})
	if err != nil {
		logger.WithError(err).Error("Benchmark failed")
		return fmt.Errorf("benchmark failed: %w", err)
	}

	fmt.Println(result.Report.Tree())

	if result.ReportPath != "" {
		logger.WithField("report", result.ReportPath).Info("Report written")
	}

	if export {
		if err := exportReport(ctx, cfg.Export, result.Report); err != nil {
			return err
		}
	}

	logger.Info("Benchmark completed successfully")
	return nil
}
