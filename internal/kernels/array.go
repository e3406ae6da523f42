package kernels

import (
	"fmt"
	"slices"
	"strconv"
	"sync"

	"parallel-bench/internal/benchmark"
	"parallel-bench/internal/dataset"
	"parallel-bench/internal/parallel"
)

func sumKernel[T dataset.Number](work []T, _ benchmark.NoArgs) error {
	_ = Sum(work)
	return nil
}

// Sum adds the elements with one partial sum per team member.
func Sum[T dataset.Number](data []T) T {
	var mu sync.Mutex
	var total T
	parallel.ForRange(len(data), func(lo, hi int) {
		var partial T
		for _, v := range data[lo:hi] {
			partial += v
		}
		mu.Lock()
		total += partial
		mu.Unlock()
	})
	return total
}

func sortKernel[T dataset.Number](work []T, _ benchmark.NoArgs) error {
	Sort(work)
	return nil
}

// Sort sorts data ascending: each team member sorts one chunk, then runs
// are merged pairwise until one is left.
func Sort[T dataset.Number](data []T) {
	n := len(data)
	workers := parallel.NumThreads()
	if workers > n {
		workers = n
	}
	if workers <= 1 {
		slices.Sort(data)
		return
	}

	bounds := make([]int, workers+1)
	for w := 0; w <= workers; w++ {
		bounds[w] = w * n / workers
	}

	tasks := make([]func() error, 0, workers)
	for w := 0; w < workers; w++ {
		run := data[bounds[w]:bounds[w+1]]
		tasks = append(tasks, func() error {
			slices.Sort(run)
			return nil
		})
	}
	_ = parallel.Go(tasks...)

	src, dst := data, make([]T, n)
	for len(bounds) > 2 {
		next := []int{0}
		tasks = tasks[:0]
		i := 0
		for ; i+2 < len(bounds); i += 2 {
			lo, mid, hi := bounds[i], bounds[i+1], bounds[i+2]
			out, left, right := dst[lo:hi], src[lo:mid], src[mid:hi]
			tasks = append(tasks, func() error {
				merge(out, left, right)
				return nil
			})
			next = append(next, hi)
		}
		if i+1 < len(bounds) {
			lo, hi := bounds[i], bounds[i+1]
			copy(dst[lo:hi], src[lo:hi])
			next = append(next, hi)
		}
		_ = parallel.Go(tasks...)
		bounds = next
		src, dst = dst, src
	}
	if &src[0] != &data[0] {
		copy(data, src)
	}
}

func merge[T dataset.Number](out, left, right []T) {
	i, j, k := 0, 0, 0
	for i < len(left) && j < len(right) {
		if right[j] < left[i] {
			out[k] = right[j]
			j++
		} else {
			out[k] = left[i]
			i++
		}
		k++
	}
	k += copy(out[k:], left[i:])
	copy(out[k:], right[j:])
}

// ScaleArgs is the argument set of the scale kernel.
type ScaleArgs struct {
	Factor float64
}

func (a ScaleArgs) String() string {
	return "factor=" + strconv.FormatFloat(a.Factor, 'g', -1, 64)
}

func scaleKernel[T dataset.Number](work []T, a ScaleArgs) error {
	parallel.ForRange(len(work), func(lo, hi int) {
		for i := lo; i < hi; i++ {
			work[i] = T(float64(work[i]) * a.Factor)
		}
	})
	return nil
}

func scaleBuilder[T dataset.Number](args []map[string]any) (Runner, error) {
	parsed, err := parseScaleArgs(args)
	if err != nil {
		return nil, err
	}
	return arrayRunner("scale", scaleKernel[T])(parsed), nil
}

func parseScaleArgs(args []map[string]any) ([]ScaleArgs, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("scale needs at least one argument set with a factor")
	}
	out := make([]ScaleArgs, 0, len(args))
	for i, m := range args {
		raw, ok := m["factor"]
		if !ok {
			return nil, fmt.Errorf("argument set %d: factor is required", i+1)
		}
		if len(m) != 1 {
			return nil, fmt.Errorf("argument set %d: scale only takes factor", i+1)
		}
		factor, err := toFloat(raw)
		if err != nil {
			return nil, fmt.Errorf("argument set %d: factor: %w", i+1, err)
		}
		out = append(out, ScaleArgs{Factor: factor})
	}
	return out, nil
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case float64:
		return n, nil
	case string:
		return strconv.ParseFloat(n, 64)
	}
	return 0, fmt.Errorf("%v is not a number", v)
}
