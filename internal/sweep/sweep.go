// Package sweep drives the benchmark: every dataset, argument set, thread
// count and repetition, timing one invocation at a time and building the
// report as it goes.
package sweep

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"parallel-bench/internal/benchmark"
	"parallel-bench/internal/confidence"
	"parallel-bench/internal/config"
	"parallel-bench/internal/counters"
	"parallel-bench/internal/dataset"
	"parallel-bench/internal/host"
	"parallel-bench/internal/logging"
	"parallel-bench/internal/parallel"
	"parallel-bench/internal/performance"
	"parallel-bench/internal/report"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// DriverVersion is recorded in every report.
const DriverVersion = "1.0.0"

var (
	// ErrResource wraps dataset read, copy and save failures and run
	// directory or report file errors.
	ErrResource = errors.New("resource error")
	// ErrInvocation wraps failures returned by the function under test.
	ErrInvocation = errors.New("invocation error")
)

// ThreadSetter applies the thread-count hint. parallel.Runtime is the
// default.
type ThreadSetter interface {
	SetThreads(n int)
	Restore()
}

// CounterSet measures hardware counters around one invocation.
type CounterSet interface {
	Start() error
	Stop() (counters.Sample, error)
	Close()
}

// Environment carries everything around the sweep that is not part of the
// options: report metadata and the hooks tests replace.
type Environment struct {
	Benchmark string
	Checksum  string
	Host      *host.Info

	// Now defaults to time.Now.
	Now func() time.Time
	// Threads defaults to a fresh parallel.Runtime.
	Threads ThreadSetter
	// OpenCounters defaults to counters.Open when counters are enabled.
	OpenCounters func() (CounterSet, error)
}

type Result struct {
	Report *report.Report
	// RunDir is empty when nothing was written to disk.
	RunDir     string
	ReportPath string
}

type Orchestrator[W, A any] struct {
	opts     *config.BenchmarkOptions
	fn       *benchmark.Function[W, A]
	datasets *dataset.Collection[W]
	env      Environment
	logger   *logrus.Logger
}

func New[W, A any](opts *config.BenchmarkOptions, fn *benchmark.Function[W, A], datasets *dataset.Collection[W], env Environment) *Orchestrator[W, A] {
	if env.Now == nil {
		env.Now = time.Now
	}
	if env.Threads == nil {
		env.Threads = parallel.NewRuntime()
	}
	if env.OpenCounters == nil {
		env.OpenCounters = func() (CounterSet, error) {
			set, err := counters.Open()
			if err != nil {
				return nil, err
			}
			return set, nil
		}
	}
	return &Orchestrator[W, A]{
		opts:     opts,
		fn:       fn,
		datasets: datasets,
		env:      env,
		logger:   logging.GetSweepLogger(),
	}
}

// run is the state of one Run call.
type run struct {
	runDir    string
	estimator *confidence.Estimator
	counters  CounterSet
	report    *report.Report
}

// Run executes the sweep. Any failure aborts it and no report file is
// written; the working copy and primary data of the dataset in flight are
// released first.
func (o *Orchestrator[W, A]) Run(ctx context.Context) (*Result, error) {
	if o.opts == nil || o.fn == nil || o.datasets == nil {
		return nil, fmt.Errorf("sweep needs options, a function and datasets")
	}

	start := o.env.Now()
	r := &run{}

	if o.opts.NeedRunDir() {
		r.runDir = filepath.Join(o.opts.OutputDir(), dataset.TimestampName(start))
		if err := os.MkdirAll(r.runDir, 0o755); err != nil {
			return nil, fmt.Errorf("%w: creating run directory %s: %w", ErrResource, r.runDir, err)
		}
	}

	estimator, err := o.opts.NewEstimator()
	if err != nil {
		return nil, err
	}
	r.estimator = estimator

	if o.opts.Counters() {
		set, err := o.env.OpenCounters()
		if err != nil {
			o.logger.WithError(err).Warn("Hardware counters unavailable, continuing without them")
		} else {
			r.counters = set
			defer set.Close()
		}
	}

	defer o.env.Threads.Restore()

	r.report = report.New(report.Metadata{
		RunID:         uuid.NewString(),
		RunDir:        r.runDir,
		Benchmark:     o.env.Benchmark,
		Function:      o.fn.Name(),
		Checksum:      o.env.Checksum,
		DriverVersion: DriverVersion,
		StartTime:     start,
		Host:          o.env.Host,
		Options:       o.reportOptions(),
	})

	o.logger.WithFields(logrus.Fields{
		"run_id":   r.report.Metadata.RunID,
		"function": o.fn.Name(),
		"datasets": o.datasets.Len(),
		"threads":  o.opts.Threads(),
		"run_dir":  r.runDir,
	}).Info("Starting sweep")

	for i, ds := range o.datasets.Items() {
		if err := o.runDataset(ctx, r, ds); err != nil {
			o.logger.WithField("dataset", i).WithError(err).Error("Sweep aborted")
			return nil, err
		}
	}

	r.report.Metadata.EndTime = o.env.Now()
	result := &Result{Report: r.report, RunDir: r.runDir}

	if o.opts.NeedReportFile() {
		path, err := r.report.WriteFile(r.runDir)
		if err != nil {
			return nil, fmt.Errorf("%w: writing report: %w", ErrResource, err)
		}
		result.ReportPath = path
		o.logger.WithField("path", path).Info("Report written")
	}

	o.logger.WithField("duration", r.report.Metadata.EndTime.Sub(start)).Info("Sweep completed")
	return result, nil
}

func (o *Orchestrator[W, A]) runDataset(ctx context.Context, r *run, ds dataset.Dataset[W]) error {
	if err := ds.Read(); err != nil {
		return fmt.Errorf("%w: reading dataset: %w", ErrResource, err)
	}
	defer ds.Clear()
	defer ds.ClearCopy()

	node := r.report.AddDataset(ds.Title())
	o.logger.WithField("dataset", node.Title).Info("Benchmarking dataset")

	for i, args := range o.fn.Arguments() {
		if err := o.runArguments(ctx, r, ds, node, i+1, args); err != nil {
			return err
		}
	}
	return nil
}

func (o *Orchestrator[W, A]) runArguments(ctx context.Context, r *run, ds dataset.Dataset[W], node *report.DatasetNode, index int, args A) error {
	defer ds.ClearCopy()

	eval := performance.NewEvaluator()
	argNode := node.AddArguments(index, benchmark.Describe(args))
	logger := o.logger.WithFields(logrus.Fields{
		"dataset": node.Title,
		"args":    index,
	})

	records := make([]report.ThreadRecord, 0, len(o.opts.Threads()))
	for _, threads := range o.opts.Threads() {
		o.env.Threads.SetThreads(threads)

		rec, err := o.measure(ctx, r, ds, args, threads)
		if err != nil {
			return fmt.Errorf("dataset %q, argument set %d, %d threads: %w", node.Title, index, threads, err)
		}
		if rec.Kept == 0 {
			logger.WithField("threads", threads).Warn("No sample survived the confidence trim, stabilized time is 0")
		}
		eval.Record(threads, rec.Time)

		if o.opts.SavePolicy() == config.SaveEveryThreadCount {
			name, err := ds.SaveCopy(r.runDir, index, threads)
			if err != nil {
				return fmt.Errorf("%w: saving working copy: %w", ErrResource, err)
			}
			rec.Artifact = name
		}

		logger.WithFields(logrus.Fields{
			"threads": threads,
			"time":    rec.Time,
			"kept":    rec.Kept,
		}).Info("Thread count measured")
		records = append(records, rec)
	}

	// Derived metrics need the single-thread baseline, which may come at
	// any position in the thread order.
	for _, rec := range records {
		rec.Speedup = eval.Speedup(rec.Threads)
		rec.Efficiency = eval.Efficiency(rec.Threads)
		rec.Cost = eval.Cost(rec.Threads)
		rec.AmdahlFraction = performance.AmdahlFraction(rec.Threads, rec.Speedup)
		rec.GustafsonFraction = performance.GustafsonFraction(rec.Threads, rec.Speedup)
		argNode.Append(rec)
	}

	if o.opts.SavePolicy() == config.SaveOncePerArguments {
		name, err := ds.SaveCopy(r.runDir, index, 0)
		if err != nil {
			return fmt.Errorf("%w: saving working copy: %w", ErrResource, err)
		}
		argNode.Artifact = name
	}
	return nil
}

// measure fills the estimator with one timed invocation per repetition.
// Copying and counter bookkeeping stay outside the timed interval.
func (o *Orchestrator[W, A]) measure(ctx context.Context, r *run, ds dataset.Dataset[W], args A, threads int) (report.ThreadRecord, error) {
	reps := r.estimator.Size()
	raw := make([]float64, 0, reps)
	var total counters.Sample
	counted := 0

	for i := 0; i < reps; i++ {
		if err := ctx.Err(); err != nil {
			return report.ThreadRecord{}, err
		}

		work, err := ds.Copy()
		if err != nil {
			return report.ThreadRecord{}, fmt.Errorf("%w: copying dataset: %w", ErrResource, err)
		}

		counting := r.counters != nil && r.counters.Start() == nil

		start := o.env.Now()
		callErr := o.fn.Call(work, args)
		elapsed := o.env.Now().Sub(start).Seconds()

		if counting {
			if sample, err := r.counters.Stop(); err == nil {
				total.Add(sample)
				counted++
			}
		}
		if callErr != nil {
			return report.ThreadRecord{}, fmt.Errorf("%w: %s, repetition %d: %w", ErrInvocation, o.fn.Name(), i, callErr)
		}

		if err := r.estimator.SetSample(i, elapsed); err != nil {
			return report.ThreadRecord{}, err
		}
		raw = append(raw, elapsed)

		o.logger.WithFields(logrus.Fields{
			"threads":    threads,
			"repetition": i,
			"seconds":    elapsed,
		}).Debug("Invocation timed")
	}

	value, kept, err := r.estimator.ComputeTrimmed()
	if err != nil {
		return report.ThreadRecord{}, err
	}

	rec := report.ThreadRecord{
		Threads: threads,
		Time:    value,
		Kept:    kept,
		Raw:     summarize(raw),
	}
	if counted > 0 {
		mean := total.Div(counted)
		rec.Counters = &report.Counters{
			Instructions: mean.Instructions,
			Cycles:       mean.Cycles,
			CacheMisses:  mean.CacheMisses,
		}
	}
	return rec, nil
}

func (o *Orchestrator[W, A]) reportOptions() report.Options {
	return report.Options{
		Threads:     o.opts.Threads(),
		Repetitions: o.opts.Repetitions(),
		Level:       o.opts.Level().String(),
		Method:      o.opts.Method().String(),
		Tendency:    o.opts.Tendency().String(),
		Save:        o.opts.SavePolicy().String(),
		Counters:    o.opts.Counters(),
	}
}
