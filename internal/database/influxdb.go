// Package database exports sweep reports to InfluxDB v2.
package database

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"parallel-bench/internal/config"
	"parallel-bench/internal/logging"
	"parallel-bench/internal/report"

	"github.com/cenkalti/backoff/v4"
	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/sirupsen/logrus"
)

const (
	measurement     = "parallel_bench"
	metaMeasurement = "parallel_bench_meta"
)

type InfluxDBClient struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	bucket   string
	org      string
}

// NewInfluxDBClient connects and waits for the server to report healthy,
// retrying with exponential backoff for up to maxWait.
func NewInfluxDBClient(ctx context.Context, cfg config.InfluxDBConfig, maxWait time.Duration) (*InfluxDBClient, error) {
	logger := logging.GetLogger()

	client := influxdb2.NewClient(cfg.Host, cfg.Token)

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 200 * time.Millisecond
	policy.MaxElapsedTime = maxWait

	attempt := 0
	err := backoff.Retry(func() error {
		attempt++
		checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		health, err := client.Health(checkCtx)
		if err != nil {
			logger.WithFields(logrus.Fields{
				"host":    cfg.Host,
				"attempt": attempt,
			}).WithError(err).Debug("InfluxDB not reachable yet")
			return err
		}
		if health.Status != "pass" {
			message := ""
			if health.Message != nil {
				message = *health.Message
			}
			return fmt.Errorf("health check status %s: %s", health.Status, message)
		}
		return nil
	}, backoff.WithContext(policy, ctx))
	if err != nil {
		client.Close()
		logger.WithField("host", cfg.Host).WithError(err).Error("Failed to connect to InfluxDB")
		return nil, fmt.Errorf("connecting to InfluxDB at %s: %w", cfg.Host, err)
	}

	logger.WithFields(logrus.Fields{
		"host":   cfg.Host,
		"bucket": cfg.Bucket,
		"org":    cfg.Org,
	}).Info("Connected to InfluxDB")

	return &InfluxDBClient{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		bucket:   cfg.Bucket,
		org:      cfg.Org,
	}, nil
}

// WriteReport writes one point per thread-count record plus one metadata
// point for the run.
func (idb *InfluxDBClient) WriteReport(ctx context.Context, r *report.Report) error {
	points := BuildPoints(r)
	if len(points) == 0 {
		return nil
	}
	if err := idb.writeAPI.WritePoint(ctx, points...); err != nil {
		return fmt.Errorf("failed to write data points: %w", err)
	}
	logging.GetLogger().WithFields(logrus.Fields{
		"run_id": r.Metadata.RunID,
		"points": len(points),
		"bucket": idb.bucket,
	}).Info("Report exported to InfluxDB")
	return nil
}

func (idb *InfluxDBClient) Close() {
	idb.client.Close()
}

// BuildPoints converts a report to InfluxDB points, timestamped with the
// end of the run.
func BuildPoints(r *report.Report) []*write.Point {
	meta := r.Metadata
	ts := meta.EndTime
	if ts.IsZero() {
		ts = time.Now()
	}

	var points []*write.Point
	for di, d := range r.Datasets {
		for _, a := range d.Data {
			for _, rec := range a.Performance {
				fields := map[string]interface{}{
					"time_seconds":       rec.Time,
					"speedup":            rec.Speedup,
					"efficiency":         rec.Efficiency,
					"cost":               rec.Cost,
					"amdahl_fraction":    rec.AmdahlFraction,
					"gustafson_fraction": rec.GustafsonFraction,
					"kept_samples":       rec.Kept,
				}
				if rec.Raw != nil {
					fields["raw_min"] = rec.Raw.Min
					fields["raw_p50"] = rec.Raw.P50
					fields["raw_p90"] = rec.Raw.P90
					fields["raw_max"] = rec.Raw.Max
				}
				if rec.Counters != nil {
					fields["instructions"] = rec.Counters.Instructions
					fields["cycles"] = rec.Counters.Cycles
					fields["cache_misses"] = rec.Counters.CacheMisses
				}

				points = append(points, influxdb2.NewPoint(measurement,
					tags(
						"run_id", meta.RunID,
						"function", meta.Function,
						"dataset_index", strconv.Itoa(di),
						"dataset", d.Title,
						"args_index", strconv.Itoa(a.Index),
						"args", a.Args,
						"threads", strconv.Itoa(rec.Threads),
					),
					fields,
					ts))
			}
		}
	}

	metaFields := map[string]interface{}{
		"driver_version":   meta.DriverVersion,
		"duration_seconds": meta.EndTime.Sub(meta.StartTime).Seconds(),
		"benchmark_start":  meta.StartTime.Format(time.RFC3339Nano),
		"repetitions":      meta.Options.Repetitions,
		"confidence_level": meta.Options.Level,
		"method":           meta.Options.Method,
		"tendency":         meta.Options.Tendency,
	}
	if meta.Host != nil {
		metaFields["hostname"] = meta.Host.Hostname
		metaFields["cpu_model"] = meta.Host.CPUModel
		metaFields["logical_cores"] = meta.Host.LogicalCores
		metaFields["kernel_version"] = meta.Host.KernelVersion
	}
	points = append(points, influxdb2.NewPoint(metaMeasurement,
		tags("run_id", meta.RunID, "function", meta.Function, "benchmark", meta.Benchmark),
		metaFields,
		ts))

	return points
}

// tags builds a tag set from key/value pairs, leaving out empty values.
func tags(kv ...string) map[string]string {
	out := make(map[string]string, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		if kv[i+1] != "" {
			out[kv[i]] = kv[i+1]
		}
	}
	return out
}
