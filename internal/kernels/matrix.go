package kernels

import (
	"fmt"

	"parallel-bench/internal/benchmark"
	"parallel-bench/internal/dataset"
	"parallel-bench/internal/parallel"
)

func matmulSquareKernel[T dataset.Number](g dataset.Grid[T], _ benchmark.NoArgs) error {
	if g.Rows != g.Cols {
		return fmt.Errorf("matmul-square needs a square matrix, got %dx%d", g.Rows, g.Cols)
	}
	copy(g.Data, Square(g).Data)
	return nil
}

// Square returns g·g for a square grid; rows of the result are split over
// the team.
func Square[T dataset.Number](g dataset.Grid[T]) dataset.Grid[T] {
	n := g.Rows
	out := dataset.NewGrid[T](n, n)
	parallel.For(n, func(i int) {
		row := out.Row(i)
		for k := 0; k < n; k++ {
			a := g.At(i, k)
			src := g.Row(k)
			for j := range row {
				row[j] += a * src[j]
			}
		}
	})
	return out
}

// transposeKernel swaps across the diagonal; row i owns the pairs (i, j>i).
func transposeKernel[T dataset.Number](g dataset.Grid[T], _ benchmark.NoArgs) error {
	if g.Rows != g.Cols {
		return fmt.Errorf("transpose works in place and needs a square matrix, got %dx%d", g.Rows, g.Cols)
	}
	n := g.Rows
	parallel.For(n, func(i int) {
		for j := i + 1; j < n; j++ {
			a, b := g.At(i, j), g.At(j, i)
			g.Set(i, j, b)
			g.Set(j, i, a)
		}
	})
	return nil
}
