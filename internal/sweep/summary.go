package sweep

import (
	"time"

	"parallel-bench/internal/report"

	"github.com/HdrHistogram/hdrhistogram-go"
)

const (
	minTrackable = int64(time.Nanosecond)
	maxTrackable = int64(time.Hour)
)

// summarize describes the raw samples before trimming. Values are binned
// in nanoseconds with three significant digits.
func summarize(samples []float64) *report.RawSummary {
	if len(samples) == 0 {
		return nil
	}
	hist := hdrhistogram.New(minTrackable, maxTrackable, 3)
	for _, s := range samples {
		ns := int64(s * float64(time.Second))
		if ns < minTrackable {
			ns = minTrackable
		}
		if ns > maxTrackable {
			ns = maxTrackable
		}
		_ = hist.RecordValue(ns)
	}
	return &report.RawSummary{
		Min: seconds(hist.Min()),
		P50: seconds(hist.ValueAtQuantile(50.0)),
		P90: seconds(hist.ValueAtQuantile(90.0)),
		Max: seconds(hist.Max()),
	}
}

func seconds(ns int64) float64 {
	return time.Duration(ns).Seconds()
}
