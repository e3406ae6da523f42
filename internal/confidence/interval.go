// Package confidence turns a buffer of repeated timing samples into a single
// stabilized estimate by trimming the samples that fall outside an interval
// around the central value and averaging the rest.
package confidence

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	ErrNotConfigured = errors.New("confidence estimator is not configured")
	ErrOutOfRange    = errors.New("sample index out of range")
)

// Failed is returned by Compute when no estimate can be produced.
const Failed = -1.0

type Level int

const (
	Level90 Level = iota
	Level95
	Level99
)

// Alpha is the two-sided significance for the level.
func (l Level) Alpha() float64 {
	switch l {
	case Level90:
		return 0.10
	case Level95:
		return 0.05
	case Level99:
		return 0.01
	}
	return math.NaN()
}

func (l Level) String() string {
	switch l {
	case Level90:
		return "90"
	case Level95:
		return "95"
	case Level99:
		return "99"
	}
	return fmt.Sprintf("Level(%d)", int(l))
}

func ParseLevel(s string) (Level, error) {
	switch strings.TrimSuffix(strings.TrimSpace(s), "%") {
	case "90":
		return Level90, nil
	case "95":
		return Level95, nil
	case "99":
		return Level99, nil
	}
	return 0, fmt.Errorf("unknown confidence level %q (want 90, 95 or 99)", s)
}

type Method int

const (
	// RangeTrim keeps samples within one standard deviation of the central value.
	RangeTrim Method = iota
	// TInterval keeps samples within the Student t half-width of the central value.
	TInterval
)

func (m Method) String() string {
	switch m {
	case RangeTrim:
		return "range-trim"
	case TInterval:
		return "t-interval"
	}
	return fmt.Sprintf("Method(%d)", int(m))
}

func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "range-trim", "cd":
		return RangeTrim, nil
	case "t-interval", "student":
		return TInterval, nil
	}
	return 0, fmt.Errorf("unknown interval method %q (want range-trim or t-interval)", s)
}

type Tendency int

const (
	Mean Tendency = iota
	Median
	Mode
)

func (t Tendency) String() string {
	switch t {
	case Mean:
		return "mean"
	case Median:
		return "median"
	case Mode:
		return "mode"
	}
	return fmt.Sprintf("Tendency(%d)", int(t))
}

func ParseTendency(s string) (Tendency, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mean":
		return Mean, nil
	case "median":
		return Median, nil
	case "mode":
		return Mode, nil
	}
	return 0, fmt.Errorf("unknown central tendency %q (want mean, median or mode)", s)
}

// Estimator holds a fixed-capacity sample buffer. The zero value is
// unconfigured; Configure must be called before samples are stored.
type Estimator struct {
	samples    []float64
	level      Level
	method     Method
	tendency   Tendency
	configured bool
}

func NewEstimator(capacity int, level Level, method Method, tendency Tendency) (*Estimator, error) {
	e := &Estimator{}
	if err := e.Configure(capacity, level, method, tendency); err != nil {
		return nil, err
	}
	return e, nil
}

// Configure discards any stored samples and allocates a new buffer.
func (e *Estimator) Configure(capacity int, level Level, method Method, tendency Tendency) error {
	if capacity < 1 {
		return fmt.Errorf("capacity must be at least 1, got %d", capacity)
	}
	e.samples = make([]float64, capacity)
	for i := range e.samples {
		e.samples[i] = math.NaN()
	}
	e.level = level
	e.method = method
	e.tendency = tendency
	e.configured = true
	return nil
}

func (e *Estimator) SetSample(index int, value float64) error {
	if !e.configured {
		return ErrNotConfigured
	}
	if index < 0 || index >= len(e.samples) {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrOutOfRange, index, len(e.samples))
	}
	e.samples[index] = value
	return nil
}

// Size is the buffer capacity, or 0 when unconfigured.
func (e *Estimator) Size() int {
	if !e.configured {
		return 0
	}
	return len(e.samples)
}

func (e *Estimator) Configured() bool {
	return e.configured
}

func (e *Estimator) Level() Level { return e.level }
func (e *Estimator) Method() Method { return e.method }
func (e *Estimator) Tendency() Tendency { return e.tendency }

// Samples returns a copy of the buffer.
func (e *Estimator) Samples() []float64 {
	out := make([]float64, len(e.samples))
	copy(out, e.samples)
	return out
}

// Compute returns the stabilized estimate. When no sample survives the trim
// the result is 0; use ComputeTrimmed to tell that case apart.
func (e *Estimator) Compute() (float64, error) {
	value, _, err := e.ComputeTrimmed()
	return value, err
}

// ComputeTrimmed is Compute plus the number of samples kept by the trim.
func (e *Estimator) ComputeTrimmed() (float64, int, error) {
	if !e.configured {
		return Failed, 0, ErrNotConfigured
	}

	x, err := e.central()
	if err != nil {
		return Failed, 0, err
	}
	sd := stdDev(e.samples, mean(e.samples))

	var halfWidth float64
	switch e.method {
	case RangeTrim:
		halfWidth = sd
	case TInterval:
		alpha := e.level.Alpha()
		if math.IsNaN(alpha) {
			return Failed, 0, fmt.Errorf("unsupported confidence level %v", e.level)
		}
		t := StudentCoefficient(alpha, len(e.samples)-1)
		halfWidth = sd / math.Sqrt(float64(len(e.samples))) * t
	default:
		return Failed, 0, fmt.Errorf("unsupported interval method %v", e.method)
	}

	value, kept := trimmedMean(e.samples, x-halfWidth, x+halfWidth)
	return value, kept, nil
}

func (e *Estimator) central() (float64, error) {
	switch e.tendency {
	case Mean:
		return mean(e.samples), nil
	case Median:
		return median(e.samples), nil
	case Mode:
		return mode(e.samples), nil
	}
	return Failed, fmt.Errorf("unsupported central tendency %v", e.tendency)
}

// trimmedMean averages the samples in [lo, hi]; 0 when none qualify.
func trimmedMean(samples []float64, lo, hi float64) (float64, int) {
	sum := 0.0
	kept := 0
	for _, v := range samples {
		if lo <= v && v <= hi {
			sum += v
			kept++
		}
	}
	if kept == 0 {
		return 0, 0
	}
	return sum / float64(kept), kept
}
