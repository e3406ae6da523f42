package config

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

type BenchmarkConfig struct {
	Benchmark BenchmarkInfo   `yaml:"benchmark" validate:"required"`
	Options   OptionsConfig   `yaml:"options"`
	Kernel    KernelConfig    `yaml:"kernel" validate:"required"`
	Datasets  []DatasetConfig `yaml:"datasets" validate:"required,min=1,dive"`
	Export    ExportConfig    `yaml:"export"`
}

type BenchmarkInfo struct {
	Name          string `yaml:"name" validate:"required"`
	Description   string `yaml:"description"`
	LogLevel      string `yaml:"log_level" validate:"omitempty,oneof=trace debug info warn warning error fatal panic"`
	SweepLogLevel string `yaml:"sweep_log_level" validate:"omitempty,oneof=trace debug info warn warning error fatal panic"`
}

type OptionsConfig struct {
	Threads         ThreadList `yaml:"threads"`
	Repetitions     int        `yaml:"repetitions" validate:"omitempty,min=2"`
	ConfidenceLevel string     `yaml:"confidence_level"`
	Method          string     `yaml:"method"`
	Tendency        string     `yaml:"tendency"`
	Save            string     `yaml:"save"`
	Report          bool       `yaml:"report"`
	OutputDir       string     `yaml:"output_dir"`
	Counters        bool       `yaml:"counters"`
	RDTProbe        bool       `yaml:"rdt_probe"`
}

// KernelConfig names a built-in kernel and the argument sets to sweep, in order.
type KernelConfig struct {
	Name      string           `yaml:"name" validate:"required"`
	Arguments []map[string]any `yaml:"arguments"`
}

type DatasetConfig struct {
	Kind     string           `yaml:"kind" validate:"required,oneof=array matrix text"`
	Element  string           `yaml:"element" validate:"omitempty,oneof=int32 int64 float32 float64"`
	Path     string           `yaml:"path"`
	Generate *GeneratorConfig `yaml:"generate"`
}

type GeneratorConfig struct {
	Size         int     `yaml:"size" validate:"omitempty,min=1"`
	Rows         int     `yaml:"rows" validate:"omitempty,min=1"`
	Cols         int     `yaml:"cols" validate:"omitempty,min=1"`
	Fill         string  `yaml:"fill" validate:"omitempty,oneof=random ascending descending"`
	Min          float64 `yaml:"min"`
	Max          float64 `yaml:"max"`
	Start        float64 `yaml:"start"`
	Step         float64 `yaml:"step"`
	StepInterval int     `yaml:"step_interval" validate:"omitempty,min=1"`
	Seed         int64   `yaml:"seed"`
	Text         string  `yaml:"text"`
}

type ExportConfig struct {
	InfluxDB   *InfluxDBConfig   `yaml:"influxdb"`
	Prometheus *PrometheusConfig `yaml:"prometheus"`
}

type InfluxDBConfig struct {
	Host   string `yaml:"host" validate:"required,url"`
	Token  string `yaml:"token" validate:"required"`
	Org    string `yaml:"org" validate:"required"`
	Bucket string `yaml:"bucket" validate:"required"`
}

type PrometheusConfig struct {
	Textfile string `yaml:"textfile" validate:"required"`
}

// ThreadList accepts either a YAML sequence of integers or a spec string
// such as "1,2,4-8".
type ThreadList []int

func (t *ThreadList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.SequenceNode:
		var threads []int
		if err := value.Decode(&threads); err != nil {
			return err
		}
		*t = threads
		return nil
	case yaml.ScalarNode:
		threads, err := ParseThreadSpec(value.Value)
		if err != nil {
			return err
		}
		*t = threads
		return nil
	}
	return fmt.Errorf("line %d: threads must be a list or a spec string", value.Line)
}

func (t ThreadList) String() string {
	parts := make([]string, len(t))
	for i, n := range t {
		parts[i] = fmt.Sprintf("%d", n)
	}
	return strings.Join(parts, ",")
}

// BenchmarkOptions converts the options section, applying defaults for
// everything left out.
func (c *BenchmarkConfig) BenchmarkOptions() (*BenchmarkOptions, error) {
	o := c.Options
	opts := []Option{
		WithReportFile(o.Report),
		WithCounters(o.Counters),
	}
	if len(o.Threads) > 0 {
		opts = append(opts, WithThreads(o.Threads...))
	}
	if o.Repetitions != 0 {
		opts = append(opts, WithRepetitions(o.Repetitions))
	}
	if o.OutputDir != "" {
		opts = append(opts, WithOutputDir(o.OutputDir))
	}

	save, err := ParseSavePolicy(o.Save)
	if err != nil {
		return nil, err
	}
	opts = append(opts, WithSavePolicy(save))

	level, method, tendency, err := o.confidence()
	if err != nil {
		return nil, err
	}
	opts = append(opts, WithConfidence(level, method, tendency))

	return NewBenchmarkOptions(opts...)
}
