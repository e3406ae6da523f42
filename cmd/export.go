package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"parallel-bench/internal/config"
	"parallel-bench/internal/database"
	"parallel-bench/internal/logging"
	"parallel-bench/internal/metrics"
	"parallel-bench/internal/report"

	"github.com/spf13/cobra"
)

const influxMaxWait = 30 * time.Second

func newExportCmd() *cobra.Command {
	var reportPath string

	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Export a stored report",
	}

	var influx config.InfluxDBConfig
	influxCmd := &cobra.Command{
		Use:   "influxdb",
		Short: "Write the report to InfluxDB",
		Long:  "Write the report to InfluxDB. Connection flags default to INFLUXDB_HOST, INFLUXDB_TOKEN, INFLUXDB_ORG and INFLUXDB_BUCKET.",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := report.Load(reportPath)
			if err != nil {
				return err
			}
			for _, v := range []string{influx.Host, influx.Token, influx.Org, influx.Bucket} {
				if v == "" {
					return fmt.Errorf("influxdb host, token, org and bucket are required")
				}
			}
			return exportInfluxDB(cmd.Context(), influx, r)
		},
	}
	influxCmd.Flags().StringVarP(&reportPath, "report", "r", "", "Report file or run directory")
	influxCmd.Flags().StringVar(&influx.Host, "host", os.Getenv("INFLUXDB_HOST"), "InfluxDB URL")
	influxCmd.Flags().StringVar(&influx.Token, "token", os.Getenv("INFLUXDB_TOKEN"), "InfluxDB token")
	influxCmd.Flags().StringVar(&influx.Org, "org", os.Getenv("INFLUXDB_ORG"), "InfluxDB organization")
	influxCmd.Flags().StringVar(&influx.Bucket, "bucket", os.Getenv("INFLUXDB_BUCKET"), "InfluxDB bucket")
	influxCmd.MarkFlagRequired("report")

	var textfile string
	promCmd := &cobra.Command{
		Use:   "prometheus",
		Short: "Write the report as a node exporter textfile",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := report.Load(reportPath)
			if err != nil {
				return err
			}
			return exportPrometheus(textfile, r)
		},
	}
	promCmd.Flags().StringVarP(&reportPath, "report", "r", "", "Report file or run directory")
	promCmd.Flags().StringVar(&textfile, "textfile", "parallel_bench.prom", "Output textfile")
	promCmd.MarkFlagRequired("report")

	exportCmd.AddCommand(influxCmd)
	exportCmd.AddCommand(promCmd)
	return exportCmd
}

// exportReport runs every exporter present in the configuration.
func exportReport(ctx context.Context, cfg config.ExportConfig, r *report.Report) error {
	if cfg.InfluxDB != nil {
		if err := exportInfluxDB(ctx, *cfg.InfluxDB, r); err != nil {
			return err
		}
	}
	if cfg.Prometheus != nil {
		if err := exportPrometheus(cfg.Prometheus.Textfile, r); err != nil {
			return err
		}
	}
	return nil
}

func exportInfluxDB(ctx context.Context, cfg config.InfluxDBConfig, r *report.Report) error {
	logger := logging.GetLogger()

	client, err := database.NewInfluxDBClient(ctx, cfg, influxMaxWait)
	if err != nil {
		logger.WithError(err).Error("Failed to create database client")
		return fmt.Errorf("failed to create database client: %w", err)
	}
	defer client.Close()

	if err := client.WriteReport(ctx, r); err != nil {
		return fmt.Errorf("failed to write report to influxdb: %w", err)
	}
	return nil
}

func exportPrometheus(path string, r *report.Report) error {
	if err := metrics.WriteTextfile(path, r); err != nil {
		return fmt.Errorf("failed to write prometheus textfile: %w", err)
	}
	logging.GetLogger().WithField("textfile", path).Info("Report exported as Prometheus textfile")
	return nil
}
