package performance

import "sort"

// Undefined is returned for metrics that cannot be derived, typically
// because no single-thread baseline has been recorded.
const Undefined = -1.0

// ThreadTime is one entry of the thread-time map.
type ThreadTime struct {
	Threads int
	Seconds float64
}

// Evaluator derives scalability metrics from stabilized times keyed by
// thread count.
type Evaluator struct {
	times map[int]float64
}

func NewEvaluator() *Evaluator {
	return &Evaluator{times: make(map[int]float64)}
}

// Record stores the time for a thread count, replacing any earlier value.
func (e *Evaluator) Record(threads int, seconds float64) {
	e.times[threads] = seconds
}

func (e *Evaluator) Has(threads int) bool {
	_, ok := e.times[threads]
	return ok
}

func (e *Evaluator) Time(threads int) (float64, bool) {
	v, ok := e.times[threads]
	return v, ok
}

// Times returns the map entries in ascending thread order.
func (e *Evaluator) Times() []ThreadTime {
	out := make([]ThreadTime, 0, len(e.times))
	for th, s := range e.times {
		out = append(out, ThreadTime{Threads: th, Seconds: s})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Threads < out[j].Threads })
	return out
}

// ratio is serial/time for threads, or false when either is missing or the
// time is not positive. A zero time is what an empty confidence trim leaves.
func (e *Evaluator) ratio(threads int) (float64, bool) {
	serial, ok := e.times[1]
	if !ok {
		return 0, false
	}
	t, ok := e.times[threads]
	if !ok || t <= 0 {
		return 0, false
	}
	return serial / t, true
}

func (e *Evaluator) Speedup(threads int) float64 {
	s, ok := e.ratio(threads)
	if !ok {
		return Undefined
	}
	return s
}

func (e *Evaluator) Efficiency(threads int) float64 {
	s, ok := e.ratio(threads)
	if !ok || threads < 1 {
		return Undefined
	}
	return s / float64(threads)
}

func (e *Evaluator) Cost(threads int) float64 {
	return float64(threads) * e.times[threads]
}

// AmdahlFraction estimates the parallel fraction of the work from a measured
// speedup under Amdahl's law.
func AmdahlFraction(threads int, speedup float64) float64 {
	if speedup <= 0 || threads <= 1 {
		return Undefined
	}
	t := float64(threads)
	return t * (speedup - 1) / (speedup * (t - 1))
}

// GustafsonFraction estimates the parallel fraction under Gustafson's law.
func GustafsonFraction(threads int, speedup float64) float64 {
	if speedup <= 0 || threads <= 1 {
		return Undefined
	}
	return (speedup - 1) / float64(threads-1)
}
