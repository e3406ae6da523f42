package plot

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"parallel-bench/internal/report"
)

func writeReport(t *testing.T) string {
	t.Helper()
	r := report.New(report.Metadata{RunID: "abc", Function: "scale"})
	a := r.AddDataset("Array v.array").AddArguments(1, "factor=2")
	a.Append(report.ThreadRecord{Threads: 1, Time: 1, Speedup: 1, Efficiency: 1, Cost: 1, AmdahlFraction: -1, GustafsonFraction: -1})
	a.Append(report.ThreadRecord{Threads: 2, Time: 0.6, Speedup: 1.67, Efficiency: 0.83, Cost: 1.2, AmdahlFraction: 0.8, GustafsonFraction: 0.67})
	dir := filepath.Join(t.TempDir(), "run")
	if _, err := r.WriteFile(dir); err != nil {
		t.Fatalf("write report: %v", err)
	}
	return dir
}

func TestWriteScalingPlot(t *testing.T) {
	runDir := writeReport(t)
	out := t.TempDir()

	files, err := NewPlotManager().WriteScalingPlot(runDir, out, "efficiency", -1, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected plot and wrapper, got %v", files)
	}
	wrapper, err := os.ReadFile(files[1])
	if err != nil {
		t.Fatalf("read wrapper: %v", err)
	}
	if !strings.Contains(string(wrapper), filepath.Base(files[0])) {
		t.Fatalf("wrapper does not reference %s", filepath.Base(files[0]))
	}
}

func TestGenerateHTML(t *testing.T) {
	var buf bytes.Buffer
	if err := NewPlotManager().GenerateHTML(writeReport(t), &buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "scale [abc]") {
		t.Fatalf("page title missing")
	}
}

func TestMissingReport(t *testing.T) {
	_, _, _, err := NewPlotManager().GenerateScalingPlot(filepath.Join(t.TempDir(), "none"), "time", -1, nil, nil, false)
	if err == nil {
		t.Fatalf("expected load error")
	}
}
