package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"parallel-bench/internal/confidence"
)

const sampleConfig = `
benchmark:
  name: sum-scaling
  description: parallel reduction over a random array
  log_level: debug

options:
  threads: "1,2,4-6"
  repetitions: 5
  confidence_level: "95"
  method: t-interval
  tendency: median
  save: args
  report: true
  output_dir: ${PB_TEST_OUTPUT}

kernel:
  name: scale
  arguments:
    - factor: 2
    - factor: 3

datasets:
  - kind: array
    element: float64
    generate:
      size: 1000
      fill: random
      min: 0
      max: 1
  - kind: text
    path: ./corpus.txt
`

func TestLoadConfig(t *testing.T) {
	t.Setenv("PB_TEST_OUTPUT", "/tmp/pb-out")

	tmp := t.TempDir()
	path := filepath.Join(tmp, "bench.yml")
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, content, err := LoadConfigWithContent(path)
	if err != nil {
		t.Fatalf("LoadConfigWithContent: %v", err)
	}
	if content != sampleConfig {
		t.Fatalf("expected original content to be returned unexpanded")
	}

	if cfg.Benchmark.Name != "sum-scaling" {
		t.Fatalf("unexpected name %q", cfg.Benchmark.Name)
	}
	if got, want := []int(cfg.Options.Threads), []int{1, 2, 4, 5, 6}; !reflect.DeepEqual(got, want) {
		t.Fatalf("threads = %v, want %v", got, want)
	}
	if cfg.Options.OutputDir != "/tmp/pb-out" {
		t.Fatalf("env var not expanded: %q", cfg.Options.OutputDir)
	}
	if len(cfg.Kernel.Arguments) != 2 {
		t.Fatalf("expected 2 argument sets, got %d", len(cfg.Kernel.Arguments))
	}
	if len(cfg.Datasets) != 2 || cfg.Datasets[0].Generate == nil || cfg.Datasets[0].Generate.Size != 1000 {
		t.Fatalf("datasets not decoded: %+v", cfg.Datasets)
	}

	opts, err := cfg.BenchmarkOptions()
	if err != nil {
		t.Fatalf("BenchmarkOptions: %v", err)
	}
	if opts.Repetitions() != 5 {
		t.Fatalf("repetitions = %d", opts.Repetitions())
	}
	if opts.Level() != confidence.Level95 || opts.Method() != confidence.TInterval || opts.Tendency() != confidence.Median {
		t.Fatalf("unexpected estimator options: %v %v %v", opts.Level(), opts.Method(), opts.Tendency())
	}
	if opts.SavePolicy() != SaveOncePerArguments {
		t.Fatalf("save policy = %v", opts.SavePolicy())
	}
	if !opts.NeedReportFile() || !opts.NeedRunDir() {
		t.Fatalf("expected report file and run dir")
	}
}

func TestThreadListAcceptsSequence(t *testing.T) {
	cfg, err := ParseConfig(`
benchmark:
  name: seq
options:
  threads: [8, 1, 8, 2]
kernel:
  name: sum
datasets:
  - kind: array
    path: a.array
`)
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	opts, err := cfg.BenchmarkOptions()
	if err != nil {
		t.Fatalf("BenchmarkOptions: %v", err)
	}
	if got, want := opts.Threads(), []int{8, 1, 2}; !reflect.DeepEqual(got, want) {
		t.Fatalf("threads = %v, want %v", got, want)
	}
}

func TestDefaults(t *testing.T) {
	cfg, err := ParseConfig(`
benchmark:
  name: defaults
kernel:
  name: sum
datasets:
  - kind: array
    path: a.array
`)
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	opts, err := cfg.BenchmarkOptions()
	if err != nil {
		t.Fatalf("BenchmarkOptions: %v", err)
	}
	if !reflect.DeepEqual(opts.Threads(), []int{1, 2}) || opts.Repetitions() != 2 {
		t.Fatalf("unexpected defaults: threads=%v reps=%d", opts.Threads(), opts.Repetitions())
	}
	if opts.SavePolicy() != SaveNothing || opts.NeedReportFile() || opts.NeedRunDir() {
		t.Fatalf("expected nothing written by default")
	}
	if opts.OutputDir() != "results" {
		t.Fatalf("output dir = %q", opts.OutputDir())
	}
}

func TestInvalidConfigs(t *testing.T) {
	base := `
benchmark:
  name: bad
kernel:
  name: sum
`
	tests := []struct {
		name   string
		config string
		want   string
	}{
		{"no datasets", base, "Datasets"},
		{"unknown kind", base + "datasets:\n  - kind: video\n    path: x\n", "oneof"},
		{"no source", base + "datasets:\n  - kind: array\n", "either path or generate"},
		{"empty generator", base + "datasets:\n  - kind: matrix\n    generate:\n      rows: 2\n", "rows and generate.cols"},
		{"bad save", base + "options:\n  save: sometimes\ndatasets:\n  - kind: array\n    path: x\n", "save policy"},
		{"bad method", base + "options:\n  method: bootstrap\ndatasets:\n  - kind: array\n    path: x\n", "interval method"},
		{"one repetition", base + "options:\n  repetitions: 1\ndatasets:\n  - kind: array\n    path: x\n", "Repetitions"},
		{"zero threads", base + "options:\n  threads: \"0-2\"\ndatasets:\n  - kind: array\n    path: x\n", "start at 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig(tt.config)
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestParseThreadSpec(t *testing.T) {
	tests := []struct {
		spec    string
		want    []int
		wantErr bool
	}{
		{"1", []int{1}, false},
		{"1,2,4", []int{1, 2, 4}, false},
		{"4, 1-3", []int{4, 1, 2, 3}, false},
		{"2-4,3", []int{2, 3, 4}, false},
		{"", nil, true},
		{"4-2", nil, true},
		{"a", nil, true},
		{"0", nil, true},
		{"1-2-3", nil, true},
	}
	for _, tt := range tests {
		got, err := ParseThreadSpec(tt.spec)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("ParseThreadSpec(%q): expected error, got %v", tt.spec, got)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseThreadSpec(%q): %v", tt.spec, err)
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Fatalf("ParseThreadSpec(%q) = %v, want %v", tt.spec, got, tt.want)
		}
	}
}

func TestConfigChecksum(t *testing.T) {
	cfg, err := ParseConfig(sampleConfig)
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	s1, err := ConfigChecksum(cfg)
	if err != nil {
		t.Fatalf("ConfigChecksum: %v", err)
	}
	if len(s1) != 6 {
		t.Fatalf("expected 6-char checksum, got %q", s1)
	}

	cfg.Benchmark.Description = "renamed"
	s2, _ := ConfigChecksum(cfg)
	if s1 != s2 {
		t.Fatalf("description must not affect checksum: %q vs %q", s1, s2)
	}

	cfg.Options.Repetitions = 7
	s3, _ := ConfigChecksum(cfg)
	if s3 == s1 {
		t.Fatalf("expected checksum to change when options change")
	}
}

func TestOptionsValidation(t *testing.T) {
	if _, err := NewBenchmarkOptions(WithThreads()); err == nil {
		t.Fatalf("expected error for empty thread list")
	}
	if _, err := NewBenchmarkOptions(WithThreads(1, -2)); err == nil {
		t.Fatalf("expected error for negative thread count")
	}
	if _, err := NewBenchmarkOptions(WithRepetitions(1)); err == nil {
		t.Fatalf("expected error for a single repetition")
	}
	if _, err := NewBenchmarkOptions(WithOutputDir(" ")); err == nil {
		t.Fatalf("expected error for blank output dir")
	}

	opts, err := NewBenchmarkOptions(WithThreads(4, 2, 4, 1), WithSavePolicy(SaveEveryThreadCount))
	if err != nil {
		t.Fatalf("NewBenchmarkOptions: %v", err)
	}
	threads := opts.Threads()
	if !reflect.DeepEqual(threads, []int{4, 2, 1}) {
		t.Fatalf("threads = %v", threads)
	}
	threads[0] = 99
	if opts.Threads()[0] != 4 {
		t.Fatalf("Threads must return a copy")
	}
	if !opts.NeedRunDir() {
		t.Fatalf("saving requires a run dir")
	}
}
