package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"parallel-bench/internal/logging"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const Version = "1.0.0"

func loadEnvironment() {
	logger := logging.GetLogger()

	envFile := ".env"
	if _, err := os.Stat(envFile); err != nil {
		execPath, err := os.Executable()
		if err != nil {
			return
		}
		envFile = filepath.Join(filepath.Dir(execPath), ".env")
		if _, err := os.Stat(envFile); err != nil {
			return
		}
	}
	if err := godotenv.Load(envFile); err != nil {
		logger.WithField("file", envFile).WithError(err).Warn("Error loading .env file")
		return
	}
	logger.WithField("file", envFile).Debug("Loaded environment variables")
}

func newRootCmd() *cobra.Command {
	var logLevel, sweepLogLevel, logFormat string

	rootCmd := &cobra.Command{
		Use:           "parallel-bench",
		Short:         "Scaling benchmarks for shared-memory parallel functions",
		Long:          "Runs a function over datasets, argument sets and thread counts and reports confidence-filtered times with speedup and efficiency",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if logLevel != "" {
				if err := logging.SetLogLevel(logLevel); err != nil {
					return fmt.Errorf("invalid log level: %w", err)
				}
			}
			if sweepLogLevel != "" {
				if err := logging.SetSweepLogLevel(sweepLogLevel); err != nil {
					return fmt.Errorf("invalid sweep log level: %w", err)
				}
			}
			return logging.SetFormat(logFormat)
		},
	}
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Set log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&sweepLogLevel, "sweep-log-level", "", "Set the level of per-repetition sweep logging")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format (text, json)")

	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newValidateCmd())
	rootCmd.AddCommand(newKernelsCmd())
	rootCmd.AddCommand(newPlotCmd())
	rootCmd.AddCommand(newExportCmd())
	return rootCmd
}

// Execute runs the command line.
func Execute() error {
	loadEnvironment()
	return newRootCmd().ExecuteContext(context.Background())
}
