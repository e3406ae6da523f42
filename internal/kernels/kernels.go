// Package kernels holds the built-in functions the command line can
// benchmark and binds them, with their datasets, to a typed sweep.
package kernels

import (
	"context"
	"fmt"
	"sort"

	"parallel-bench/internal/benchmark"
	"parallel-bench/internal/config"
	"parallel-bench/internal/dataset"
	"parallel-bench/internal/sweep"
)

const (
	KindArray  = "array"
	KindMatrix = "matrix"
	KindText   = "text"
)

// DefaultElement is used when a numeric dataset does not name its element
// type.
const DefaultElement = "float64"

// Runner runs one configured sweep.
type Runner func(ctx context.Context, cfg *config.BenchmarkConfig, opts *config.BenchmarkOptions, env sweep.Environment) (*sweep.Result, error)

type builder func(args []map[string]any) (Runner, error)

type Kernel struct {
	Name        string
	Kind        string
	Description string
	build       func(element string, args []map[string]any) (Runner, error)
}

var registry = map[string]Kernel{}

func register(k Kernel) {
	registry[k.Name] = k
}

func init() {
	register(Kernel{
		Name:        "sum",
		Kind:        KindArray,
		Description: "parallel reduction of all elements",
		build: perElement(
			noArgs(arrayRunner("sum", sumKernel[int32])),
			noArgs(arrayRunner("sum", sumKernel[int64])),
			noArgs(arrayRunner("sum", sumKernel[float32])),
			noArgs(arrayRunner("sum", sumKernel[float64])),
		),
	})
	register(Kernel{
		Name:        "sort",
		Kind:        KindArray,
		Description: "parallel merge sort, in place",
		build: perElement(
			noArgs(arrayRunner("sort", sortKernel[int32])),
			noArgs(arrayRunner("sort", sortKernel[int64])),
			noArgs(arrayRunner("sort", sortKernel[float32])),
			noArgs(arrayRunner("sort", sortKernel[float64])),
		),
	})
	register(Kernel{
		Name:        "scale",
		Kind:        KindArray,
		Description: "multiplies every element by factor",
		build:       perElement(scaleBuilder[int32], scaleBuilder[int64], scaleBuilder[float32], scaleBuilder[float64]),
	})
	register(Kernel{
		Name:        "matmul-square",
		Kind:        KindMatrix,
		Description: "replaces a square matrix by its square",
		build: perElement(
			noArgs(matrixRunner("matmul-square", matmulSquareKernel[int32])),
			noArgs(matrixRunner("matmul-square", matmulSquareKernel[int64])),
			noArgs(matrixRunner("matmul-square", matmulSquareKernel[float32])),
			noArgs(matrixRunner("matmul-square", matmulSquareKernel[float64])),
		),
	})
	register(Kernel{
		Name:        "transpose",
		Kind:        KindMatrix,
		Description: "transposes a square matrix in place",
		build: perElement(
			noArgs(matrixRunner("transpose", transposeKernel[int32])),
			noArgs(matrixRunner("transpose", transposeKernel[int64])),
			noArgs(matrixRunner("transpose", transposeKernel[float32])),
			noArgs(matrixRunner("transpose", transposeKernel[float64])),
		),
	})
	register(Kernel{
		Name:        "wordcount",
		Kind:        KindText,
		Description: "counts whitespace separated words",
		build:       textOnly(noArgs(textRunner("wordcount", wordCountKernel))),
	})
	register(Kernel{
		Name:        "upper",
		Kind:        KindText,
		Description: "upper-cases ASCII letters in place",
		build:       textOnly(noArgs(textRunner("upper", upperKernel))),
	})
}

func Lookup(name string) (Kernel, bool) {
	k, ok := registry[name]
	return k, ok
}

// All returns the registered kernels sorted by name.
func All() []Kernel {
	out := make([]Kernel, 0, len(registry))
	for _, k := range registry {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Bind checks the configured datasets against the kernel and returns the
// runner for them.
func Bind(cfg *config.BenchmarkConfig) (Runner, error) {
	k, ok := Lookup(cfg.Kernel.Name)
	if !ok {
		return nil, fmt.Errorf("unknown kernel %q", cfg.Kernel.Name)
	}
	if len(cfg.Datasets) == 0 {
		return nil, fmt.Errorf("kernel %s needs at least one dataset", k.Name)
	}

	element := cfg.Datasets[0].Element
	for i, ds := range cfg.Datasets {
		if ds.Kind != k.Kind {
			return nil, fmt.Errorf("dataset %d is a %s, kernel %s works on %s datasets", i, ds.Kind, k.Name, k.Kind)
		}
		if ds.Element != element {
			return nil, fmt.Errorf("dataset %d has element type %q, expected %q like the first dataset", i, ds.Element, element)
		}
	}
	if element == "" && k.Kind != KindText {
		element = DefaultElement
	}
	return k.build(element, cfg.Kernel.Arguments)
}

func perElement(i32, i64, f32, f64 builder) func(string, []map[string]any) (Runner, error) {
	return func(element string, args []map[string]any) (Runner, error) {
		switch element {
		case "int32":
			return i32(args)
		case "int64":
			return i64(args)
		case "float32":
			return f32(args)
		case "float64":
			return f64(args)
		}
		return nil, fmt.Errorf("unsupported element type %q", element)
	}
}

func textOnly(b builder) func(string, []map[string]any) (Runner, error) {
	return func(element string, args []map[string]any) (Runner, error) {
		if element != "" {
			return nil, fmt.Errorf("text datasets have no element type, got %q", element)
		}
		return b(args)
	}
}

// noArgs binds a kernel that takes only the working copy.
func noArgs(bind func(args []benchmark.NoArgs) Runner) builder {
	return func(args []map[string]any) (Runner, error) {
		if len(args) > 0 {
			return nil, fmt.Errorf("kernel takes no arguments, got %d argument sets", len(args))
		}
		return bind(nil), nil
	}
}

func arrayRunner[T dataset.Number, A any](name string, fn func([]T, A) error) func([]A) Runner {
	return func(args []A) Runner {
		return func(ctx context.Context, cfg *config.BenchmarkConfig, opts *config.BenchmarkOptions, env sweep.Environment) (*sweep.Result, error) {
			datasets, err := arrayDatasets[T](cfg.Datasets)
			if err != nil {
				return nil, err
			}
			f := benchmark.NewFunction(name, fn).AddArguments(args...)
			return sweep.New(opts, f, datasets, env).Run(ctx)
		}
	}
}

func matrixRunner[T dataset.Number, A any](name string, fn func(dataset.Grid[T], A) error) func([]A) Runner {
	return func(args []A) Runner {
		return func(ctx context.Context, cfg *config.BenchmarkConfig, opts *config.BenchmarkOptions, env sweep.Environment) (*sweep.Result, error) {
			datasets, err := matrixDatasets[T](cfg.Datasets)
			if err != nil {
				return nil, err
			}
			f := benchmark.NewFunction(name, fn).AddArguments(args...)
			return sweep.New(opts, f, datasets, env).Run(ctx)
		}
	}
}

func textRunner[A any](name string, fn func([]byte, A) error) func([]A) Runner {
	return func(args []A) Runner {
		return func(ctx context.Context, cfg *config.BenchmarkConfig, opts *config.BenchmarkOptions, env sweep.Environment) (*sweep.Result, error) {
			datasets, err := textDatasets(cfg.Datasets)
			if err != nil {
				return nil, err
			}
			f := benchmark.NewFunction(name, fn).AddArguments(args...)
			return sweep.New(opts, f, datasets, env).Run(ctx)
		}
	}
}
