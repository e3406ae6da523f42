package html

import (
	"bytes"
	"testing"

	"parallel-bench/internal/report"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	r := report.New(report.Metadata{RunID: "r7", Function: "sort"})
	a := r.AddDataset("Array x.array").AddArguments(1, "")
	a.Append(report.ThreadRecord{Threads: 1, Time: 2, Speedup: 1, Efficiency: 1, Cost: 2, AmdahlFraction: -1, GustafsonFraction: -1})
	a.Append(report.ThreadRecord{Threads: 2, Time: 1.25, Speedup: 1.6, Efficiency: 0.8, Cost: 2.5, AmdahlFraction: 0.75, GustafsonFraction: 0.6})

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, r, "speedup", "amdahl_fraction"))
	out := buf.String()
	assert.Contains(t, out, "sort [r7]")
	assert.Contains(t, out, "Speedup")
	assert.Contains(t, out, "ideal")
	assert.Contains(t, out, "args 1")
}

func TestRenderErrors(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, Render(&buf, report.New(report.Metadata{RunID: "empty"})))

	r := report.New(report.Metadata{RunID: "x"})
	r.AddDataset("d").AddArguments(1, "").Append(report.ThreadRecord{Threads: 1})
	assert.ErrorContains(t, Render(&buf, r, "nope"), "unknown field")
}

func TestThreadAxisSortsAndDeduplicates(t *testing.T) {
	r := report.New(report.Metadata{})
	d := r.AddDataset("d")
	d.AddArguments(1, "").Append(report.ThreadRecord{Threads: 4})
	b := d.AddArguments(2, "")
	b.Append(report.ThreadRecord{Threads: 1})
	b.Append(report.ThreadRecord{Threads: 4})
	assert.Equal(t, []int{1, 4}, threadAxis(r))
}
