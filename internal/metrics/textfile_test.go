package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"parallel-bench/internal/report"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport() *report.Report {
	r := report.New(report.Metadata{RunID: "r1", Function: "sort", DriverVersion: "1.0.0", EndTime: time.Unix(1700000000, 0)})
	a := r.AddDataset("Array x.array").AddArguments(1, "")
	a.Append(report.ThreadRecord{Threads: 1, Time: 4, Speedup: 1, Efficiency: 1, Cost: 4, AmdahlFraction: -1, GustafsonFraction: -1})
	a.Append(report.ThreadRecord{Threads: 4, Time: 1.25, Speedup: 3.2, Efficiency: 0.8, Cost: 5, AmdahlFraction: 0.9375, GustafsonFraction: 0.7333})
	return r
}

func TestRegistry(t *testing.T) {
	reg, err := Registry(sampleReport())
	require.NoError(t, err)

	count, err := testutil.GatherAndCount(reg, "parallel_bench_speedup")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	count, err = testutil.GatherAndCount(reg, "parallel_bench_run_info")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestWriteTextfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "collector", "parallel_bench.prom")
	require.NoError(t, WriteTextfile(path, sampleReport()))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(raw)
	assert.Contains(t, out, "# TYPE parallel_bench_speedup gauge")
	assert.Contains(t, out, `parallel_bench_speedup{args="args 1",dataset="Array x.array",function="sort",threads="4"} 3.2`)
	assert.Contains(t, out, `parallel_bench_efficiency{args="args 1",dataset="Array x.array",function="sort",threads="4"} 0.8`)
	assert.Contains(t, out, `driver_version="1.0.0",function="sort",run_id="r1"} 1.7e+09`)
}
