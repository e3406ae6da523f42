package kernels

import (
	"sync/atomic"

	"parallel-bench/internal/benchmark"
	"parallel-bench/internal/parallel"
)

func wordCountKernel(work []byte, _ benchmark.NoArgs) error {
	_ = WordCount(work)
	return nil
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}

// WordCount counts word starts; each chunk looks one byte back so words
// crossing a chunk border are counted once.
func WordCount(text []byte) int {
	var count atomic.Int64
	parallel.ForRange(len(text), func(lo, hi int) {
		n := 0
		for i := lo; i < hi; i++ {
			if !isSpace(text[i]) && (i == 0 || isSpace(text[i-1])) {
				n++
			}
		}
		count.Add(int64(n))
	})
	return int(count.Load())
}

func upperKernel(work []byte, _ benchmark.NoArgs) error {
	parallel.ForRange(len(work), func(lo, hi int) {
		for i := lo; i < hi; i++ {
			if 'a' <= work[i] && work[i] <= 'z' {
				work[i] -= 'a' - 'A'
			}
		}
	})
	return nil
}
