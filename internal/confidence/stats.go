package confidence

import (
	"math"
	"sort"

	"github.com/aclements/go-moremath/mathx"
)

func mean(xs []float64) float64 {
	sum := 0.0
	for _, v := range xs {
		sum += v
	}
	return sum / float64(len(xs))
}

// median takes the element at len/2 of the sorted samples, which is the
// upper median for even lengths.
func median(xs []float64) float64 {
	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)
	return sorted[len(sorted)/2]
}

// mode counts occurrences of each value from its first position onwards.
// The earliest value reaching a new maximum wins ties.
func mode(xs []float64) float64 {
	best := xs[0]
	bestCount := 0
	for i, v := range xs {
		count := 0
		for _, w := range xs[i:] {
			if w == v {
				count++
			}
		}
		if count > bestCount {
			best = v
			bestCount = count
		}
	}
	return best
}

// stdDev is the Bessel-corrected sample standard deviation. A single sample
// has no spread.
func stdDev(xs []float64, m float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	sum := 0.0
	for _, v := range xs {
		d := v - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(xs)-1))
}

// StudentTail is the two-sided tail probability P(|T| > t) of Student's t
// distribution with df degrees of freedom.
func StudentTail(t float64, df int) float64 {
	if df < 1 {
		return math.NaN()
	}
	nu := float64(df)
	return mathx.BetaInc(nu/(nu+t*t), nu/2, 0.5)
}

// StudentCoefficient finds the two-sided critical value t with
// P(|T| > t) = alpha by bisection over v in (0, 1), t = 1/v - 1.
// With no degrees of freedom there is no interval and 0 is returned.
func StudentCoefficient(alpha float64, df int) float64 {
	if df < 1 {
		return 0
	}
	v, dv, t := 0.5, 0.5, 0.0
	for dv > 1e-10 {
		t = 1/v - 1
		dv /= 2
		if StudentTail(t, df) > alpha {
			v -= dv
		} else {
			v += dv
		}
	}
	return t
}
