package performance

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func scalingEvaluator() *Evaluator {
	e := NewEvaluator()
	e.Record(1, 10.0)
	e.Record(2, 6.0)
	e.Record(4, 4.0)
	return e
}

func TestDerivedMetrics(t *testing.T) {
	e := scalingEvaluator()

	assert.InDelta(t, 1.667, e.Speedup(2), 1e-3)
	assert.InDelta(t, 0.833, e.Efficiency(2), 1e-3)
	assert.InDelta(t, 12.0, e.Cost(2), 1e-12)

	assert.InDelta(t, 2.5, e.Speedup(4), 1e-12)
	assert.InDelta(t, 0.625, e.Efficiency(4), 1e-12)
	assert.InDelta(t, 16.0, e.Cost(4), 1e-12)

	assert.Equal(t, 1.0, e.Speedup(1))
	assert.Equal(t, 1.0, e.Efficiency(1))
}

func TestMissingBaseline(t *testing.T) {
	e := NewEvaluator()
	e.Record(2, 6.0)

	assert.Equal(t, Undefined, e.Speedup(2))
	assert.Equal(t, Undefined, e.Efficiency(2))
	assert.Equal(t, 12.0, e.Cost(2))
}

func TestRecordOverwrites(t *testing.T) {
	e := NewEvaluator()
	e.Record(1, 3.0)
	e.Record(1, 2.0)

	v, ok := e.Time(1)
	assert.True(t, ok)
	assert.Equal(t, 2.0, v)
	assert.Len(t, e.Times(), 1)
}

func TestTimesAscending(t *testing.T) {
	e := NewEvaluator()
	e.Record(8, 1)
	e.Record(1, 4)
	e.Record(2, 2)

	assert.Equal(t, []ThreadTime{{1, 4}, {2, 2}, {8, 1}}, e.Times())
	assert.True(t, e.Has(8))
	assert.False(t, e.Has(4))
}

func TestParallelFractions(t *testing.T) {
	assert.InDelta(t, 0.8, AmdahlFraction(4, 2.5), 1e-12)
	assert.InDelta(t, 0.5, GustafsonFraction(4, 2.5), 1e-12)

	for _, s := range []float64{0.5, 1, 2, 100} {
		assert.Equal(t, Undefined, AmdahlFraction(1, s))
		assert.Equal(t, Undefined, GustafsonFraction(1, s))
	}
	assert.Equal(t, Undefined, AmdahlFraction(4, Undefined))
	assert.Equal(t, Undefined, GustafsonFraction(4, Undefined))
}

func TestZeroTimeIsUndefined(t *testing.T) {
	e := NewEvaluator()
	e.Record(1, 2.0)
	e.Record(4, 0)

	assert.Equal(t, Undefined, e.Speedup(4))
	assert.Equal(t, Undefined, e.Efficiency(4))
	assert.Equal(t, 0.0, e.Cost(4))
	assert.Equal(t, Undefined, e.Speedup(8), "unrecorded thread count")

	e.Record(1, 0)
	assert.Equal(t, Undefined, e.Speedup(1))

	assert.Equal(t, Undefined, AmdahlFraction(4, 0))
	assert.Equal(t, Undefined, GustafsonFraction(4, 0))
}
