package database

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"parallel-bench/internal/config"
	"parallel-bench/internal/report"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport() *report.Report {
	r := report.New(report.Metadata{
		RunID:     "abc",
		Function:  "sum",
		StartTime: time.Unix(100, 0),
		EndTime:   time.Unix(160, 0),
		Options:   report.Options{Repetitions: 3, Level: "90", Method: "range-trim", Tendency: "mean"},
	})
	a := r.AddDataset("Array in.array").AddArguments(1, "")
	a.Append(report.ThreadRecord{Threads: 1, Time: 2, Speedup: 1, Efficiency: 1, Cost: 2, AmdahlFraction: -1, GustafsonFraction: -1, Kept: 3})
	a.Append(report.ThreadRecord{Threads: 2, Time: 1, Speedup: 2, Efficiency: 1, Cost: 2, AmdahlFraction: 1, GustafsonFraction: 1, Kept: 3,
		Counters: &report.Counters{Instructions: 10, Cycles: 20, CacheMisses: 1}})
	return r
}

func TestBuildPoints(t *testing.T) {
	points := BuildPoints(sampleReport())
	require.Len(t, points, 3)

	line := write.PointToLineProtocol(points[1], time.Second)
	assert.True(t, strings.HasPrefix(line, "parallel_bench,"), line)
	assert.Contains(t, line, "threads=2")
	assert.Contains(t, line, "run_id=abc")
	assert.Contains(t, line, "speedup=2")
	assert.Contains(t, line, "instructions=10u")
	assert.NotContains(t, line, "args=", "empty tags are left out")
	assert.True(t, strings.HasSuffix(strings.TrimSpace(line), " 160"), line)

	meta := write.PointToLineProtocol(points[2], time.Second)
	assert.True(t, strings.HasPrefix(meta, "parallel_bench_meta,"), meta)
	assert.Contains(t, meta, "duration_seconds=60")
}

func TestTags(t *testing.T) {
	assert.Equal(t, map[string]string{"a": "1"}, tags("a", "1", "b", ""))
}

func TestWriteReport(t *testing.T) {
	var mu sync.Mutex
	var body string
	healthCalls := 0

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/health":
			mu.Lock()
			healthCalls++
			calls := healthCalls
			mu.Unlock()
			w.Header().Set("Content-Type", "application/json")
			if calls == 1 {
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(`{"name":"influxdb","message":"starting","status":"fail","checks":[]}`))
				return
			}
			_, _ = w.Write([]byte(`{"name":"influxdb","message":"ready for queries and writes","status":"pass","checks":[],"version":"2.7.1","commit":"x"}`))
		case "/api/v2/write":
			b, _ := io.ReadAll(r.Body)
			mu.Lock()
			body = string(b)
			mu.Unlock()
			w.WriteHeader(http.StatusNoContent)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	client, err := NewInfluxDBClient(context.Background(), config.InfluxDBConfig{
		Host: srv.URL, Token: "t", Org: "o", Bucket: "b",
	}, 10*time.Second)
	require.NoError(t, err)
	defer client.Close()

	require.NoError(t, client.WriteReport(context.Background(), sampleReport()))

	mu.Lock()
	defer mu.Unlock()
	assert.GreaterOrEqual(t, healthCalls, 2, "unhealthy server is retried")
	assert.Contains(t, body, "parallel_bench,")
	assert.Contains(t, body, "parallel_bench_meta,")
}

func TestConnectGivesUp(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewInfluxDBClient(context.Background(), config.InfluxDBConfig{
		Host: srv.URL, Token: "t", Org: "o", Bucket: "b",
	}, 500*time.Millisecond)
	assert.Error(t, err)
}
