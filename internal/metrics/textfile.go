// Package metrics publishes a report as Prometheus gauges in the textfile
// format read by node_exporter's textfile collector.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"parallel-bench/internal/report"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "parallel_bench"

var recordLabels = []string{"function", "dataset", "args", "threads"}

type gauges struct {
	time       *prometheus.GaugeVec
	speedup    *prometheus.GaugeVec
	efficiency *prometheus.GaugeVec
	cost       *prometheus.GaugeVec
	amdahl     *prometheus.GaugeVec
	gustafson  *prometheus.GaugeVec
	info       *prometheus.GaugeVec
}

func newGauge(name, help string, labels []string) *prometheus.GaugeVec {
	return prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      name,
		Help:      help,
	}, labels)
}

// Registry builds a fresh registry holding the gauges of one report.
func Registry(r *report.Report) (*prometheus.Registry, error) {
	g := gauges{
		time:       newGauge("time_seconds", "Stabilized time of one invocation.", recordLabels),
		speedup:    newGauge("speedup", "Single-thread time divided by the time at this thread count, -1 without baseline.", recordLabels),
		efficiency: newGauge("efficiency", "Speedup divided by thread count, -1 without baseline.", recordLabels),
		cost:       newGauge("cost_seconds", "Thread count times stabilized time.", recordLabels),
		amdahl:     newGauge("amdahl_fraction", "Parallel fraction estimated with Amdahl's law.", recordLabels),
		gustafson:  newGauge("gustafson_fraction", "Parallel fraction estimated with Gustafson's law.", recordLabels),
		info:       newGauge("run_info", "Run metadata, value is the run end as unix seconds.", []string{"run_id", "function", "benchmark", "driver_version"}),
	}

	reg := prometheus.NewRegistry()
	for _, c := range []prometheus.Collector{g.time, g.speedup, g.efficiency, g.cost, g.amdahl, g.gustafson, g.info} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	fn := r.Metadata.Function
	for _, d := range r.Datasets {
		for _, a := range d.Data {
			for _, rec := range a.Performance {
				labels := prometheus.Labels{
					"function": fn,
					"dataset":  d.Title,
					"args":     a.Label(),
					"threads":  strconv.Itoa(rec.Threads),
				}
				g.time.With(labels).Set(rec.Time)
				g.speedup.With(labels).Set(rec.Speedup)
				g.efficiency.With(labels).Set(rec.Efficiency)
				g.cost.With(labels).Set(rec.Cost)
				g.amdahl.With(labels).Set(rec.AmdahlFraction)
				g.gustafson.With(labels).Set(rec.GustafsonFraction)
			}
		}
	}

	g.info.With(prometheus.Labels{
		"run_id":         r.Metadata.RunID,
		"function":       fn,
		"benchmark":      r.Metadata.Benchmark,
		"driver_version": r.Metadata.DriverVersion,
	}).Set(float64(r.Metadata.EndTime.Unix()))

	return reg, nil
}

// WriteTextfile writes the report's gauges to path, creating the parent
// directory. The file is replaced atomically.
func WriteTextfile(path string, r *report.Report) error {
	reg, err := Registry(r)
	if err != nil {
		return fmt.Errorf("building metrics: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return prometheus.WriteToTextfile(path, reg)
}
