package config

import (
	"fmt"
	"strings"

	"parallel-bench/internal/confidence"
)

type SavePolicy int

const (
	SaveNothing SavePolicy = iota
	// SaveEveryThreadCount persists the working copy after each thread-count block.
	SaveEveryThreadCount
	// SaveOncePerArguments persists the last working copy once per argument set.
	SaveOncePerArguments
)

func (p SavePolicy) String() string {
	switch p {
	case SaveNothing:
		return "none"
	case SaveEveryThreadCount:
		return "all"
	case SaveOncePerArguments:
		return "args"
	}
	return fmt.Sprintf("SavePolicy(%d)", int(p))
}

func ParseSavePolicy(s string) (SavePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none", "nothing":
		return SaveNothing, nil
	case "all", "every", "threads":
		return SaveEveryThreadCount, nil
	case "args", "arguments", "once":
		return SaveOncePerArguments, nil
	}
	return 0, fmt.Errorf("unknown save policy %q (want none, all or args)", s)
}

// BenchmarkOptions is the immutable configuration of one sweep.
type BenchmarkOptions struct {
	threads     []int
	repetitions int
	level       confidence.Level
	method      confidence.Method
	tendency    confidence.Tendency
	save        SavePolicy
	reportFile  bool
	outputDir   string
	counters    bool
}

type Option func(*BenchmarkOptions) error

// Thread counts are deduplicated keeping the first occurrence, so the sweep
// order is the order given here.
func WithThreads(threads ...int) Option {
	return func(o *BenchmarkOptions) error {
		if len(threads) == 0 {
			return fmt.Errorf("at least one thread count is required")
		}
		seen := make(map[int]bool, len(threads))
		o.threads = nil
		for _, t := range threads {
			if t < 1 {
				return fmt.Errorf("thread count must be positive, got %d", t)
			}
			if !seen[t] {
				seen[t] = true
				o.threads = append(o.threads, t)
			}
		}
		return nil
	}
}

func WithRepetitions(n int) Option {
	return func(o *BenchmarkOptions) error {
		if n < 2 {
			return fmt.Errorf("repetitions must be at least 2, got %d", n)
		}
		o.repetitions = n
		return nil
	}
}

func WithConfidence(level confidence.Level, method confidence.Method, tendency confidence.Tendency) Option {
	return func(o *BenchmarkOptions) error {
		o.level = level
		o.method = method
		o.tendency = tendency
		return nil
	}
}

func WithSavePolicy(p SavePolicy) Option {
	return func(o *BenchmarkOptions) error {
		o.save = p
		return nil
	}
}

func WithReportFile(enabled bool) Option {
	return func(o *BenchmarkOptions) error {
		o.reportFile = enabled
		return nil
	}
}

func WithOutputDir(dir string) Option {
	return func(o *BenchmarkOptions) error {
		if strings.TrimSpace(dir) == "" {
			return fmt.Errorf("output directory must not be empty")
		}
		o.outputDir = dir
		return nil
	}
}

func WithCounters(enabled bool) Option {
	return func(o *BenchmarkOptions) error {
		o.counters = enabled
		return nil
	}
}

// NewBenchmarkOptions starts from threads {1, 2}, two repetitions, a 90%
// range-trim around the mean, no saving and no report file.
func NewBenchmarkOptions(opts ...Option) (*BenchmarkOptions, error) {
	o := &BenchmarkOptions{
		threads:     []int{1, 2},
		repetitions: 2,
		level:       confidence.Level90,
		method:      confidence.RangeTrim,
		tendency:    confidence.Mean,
		save:        SaveNothing,
		outputDir:   "results",
	}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

func (o *BenchmarkOptions) Threads() []int {
	out := make([]int, len(o.threads))
	copy(out, o.threads)
	return out
}

func (o *BenchmarkOptions) Repetitions() int { return o.repetitions }
func (o *BenchmarkOptions) Level() confidence.Level { return o.level }
func (o *BenchmarkOptions) Method() confidence.Method { return o.method }
func (o *BenchmarkOptions) Tendency() confidence.Tendency { return o.tendency }
func (o *BenchmarkOptions) SavePolicy() SavePolicy { return o.save }
func (o *BenchmarkOptions) NeedReportFile() bool { return o.reportFile }
func (o *BenchmarkOptions) OutputDir() string { return o.outputDir }
func (o *BenchmarkOptions) Counters() bool { return o.counters }

// NewEstimator builds the confidence estimator these options describe.
func (o *BenchmarkOptions) NewEstimator() (*confidence.Estimator, error) {
	return confidence.NewEstimator(o.repetitions, o.level, o.method, o.tendency)
}

// NeedRunDir reports whether the sweep writes anything to disk.
func (o *BenchmarkOptions) NeedRunDir() bool {
	return o.reportFile || o.save != SaveNothing
}
