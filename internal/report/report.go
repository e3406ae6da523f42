// Package report holds the result tree of a sweep: datasets, then argument
// sets, then one record per thread count.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"parallel-bench/internal/host"

	"github.com/xlab/treeprint"
)

// FileName is the name of the report inside a run directory.
const FileName = "result.json"

type Report struct {
	Metadata Metadata       `json:"metadata"`
	Datasets []*DatasetNode `json:"datasets"`
}

type Metadata struct {
	RunID         string     `json:"run_id"`
	RunDir        string     `json:"run_dir,omitempty"`
	Benchmark     string     `json:"benchmark,omitempty"`
	Function      string     `json:"function"`
	Checksum      string     `json:"config_checksum,omitempty"`
	DriverVersion string     `json:"driver_version"`
	StartTime     time.Time  `json:"start_time"`
	EndTime       time.Time  `json:"end_time"`
	Host          *host.Info `json:"host,omitempty"`
	Options       Options    `json:"options"`
}

// Options is the effective sweep configuration as recorded in the report.
type Options struct {
	Threads     []int  `json:"threads"`
	Repetitions int    `json:"repetitions"`
	Level       string `json:"confidence_level"`
	Method      string `json:"method"`
	Tendency    string `json:"tendency"`
	Save        string `json:"save"`
	Counters    bool   `json:"counters"`
}

type DatasetNode struct {
	Title string          `json:"title"`
	Data  []*ArgumentNode `json:"data"`
}

type ArgumentNode struct {
	Index       int            `json:"index"`
	Args        string         `json:"args"`
	Performance []ThreadRecord `json:"performance"`
	// Artifact is set when the working copy is saved once per argument set.
	Artifact string `json:"artifact,omitempty"`
}

type ThreadRecord struct {
	Threads           int     `json:"threads"`
	Time              float64 `json:"time"`
	Speedup           float64 `json:"speedup"`
	Efficiency        float64 `json:"efficiency"`
	Cost              float64 `json:"cost"`
	AmdahlFraction    float64 `json:"amdahl_fraction"`
	GustafsonFraction float64 `json:"gustafson_fraction"`
	// Kept is the number of samples that survived the confidence trim.
	Kept     int         `json:"kept"`
	Raw      *RawSummary `json:"raw,omitempty"`
	Counters *Counters   `json:"counters,omitempty"`
	Artifact string      `json:"artifact,omitempty"`
}

// RawSummary describes the unfiltered samples, in seconds.
type RawSummary struct {
	Min float64 `json:"min"`
	P50 float64 `json:"p50"`
	P90 float64 `json:"p90"`
	Max float64 `json:"max"`
}

// Counters are mean hardware counter values per invocation.
type Counters struct {
	Instructions uint64 `json:"instructions"`
	Cycles       uint64 `json:"cycles"`
	CacheMisses  uint64 `json:"cache_misses"`
}

func New(meta Metadata) *Report {
	return &Report{Metadata: meta}
}

func (r *Report) AddDataset(title string) *DatasetNode {
	d := &DatasetNode{Title: title}
	r.Datasets = append(r.Datasets, d)
	return d
}

func (d *DatasetNode) AddArguments(index int, args string) *ArgumentNode {
	a := &ArgumentNode{Index: index, Args: args}
	d.Data = append(d.Data, a)
	return a
}

func (a *ArgumentNode) Append(rec ThreadRecord) {
	a.Performance = append(a.Performance, rec)
}

// Label names an argument set inside a dataset, for plot legends and
// exporter tags.
func (a *ArgumentNode) Label() string {
	if a.Args == "" {
		return fmt.Sprintf("args %d", a.Index)
	}
	return fmt.Sprintf("args %d (%s)", a.Index, a.Args)
}

// WriteFile stores the report as dir/result.json, replacing any previous
// file atomically, and returns the path.
func (r *Report) WriteFile(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	finalPath := filepath.Join(dir, FileName)

	tmp, err := os.CreateTemp(dir, FileName+".tmp.*")
	if err != nil {
		return "", err
	}
	tmpPath := tmp.Name()

	ok := false
	defer func() {
		_ = tmp.Close()
		if !ok {
			_ = os.Remove(tmpPath)
		}
	}()

	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "    ")
	if err := enc.Encode(r); err != nil {
		return "", err
	}
	if err := tmp.Sync(); err != nil {
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}

	if err := os.Rename(tmpPath, finalPath); err != nil {
		return "", err
	}
	ok = true
	return finalPath, nil
}

// Load reads a report written by WriteFile. A directory is taken to be a
// run directory holding result.json.
func Load(path string) (*Report, error) {
	if fi, err := os.Stat(path); err == nil && fi.IsDir() {
		path = filepath.Join(path, FileName)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decoding report %s: %w", path, err)
	}
	return &r, nil
}

// Tree renders the report for the console.
func (r *Report) Tree() string {
	root := r.Metadata.Function
	if r.Metadata.Benchmark != "" {
		root = r.Metadata.Benchmark + ": " + root
	}
	if r.Metadata.RunID != "" {
		root += " [" + r.Metadata.RunID + "]"
	}
	tree := treeprint.NewWithRoot(root)

	for _, d := range r.Datasets {
		db := tree.AddBranch(d.Title)
		for _, a := range d.Data {
			label := a.Label()
			if a.Artifact != "" {
				label += " -> " + a.Artifact
			}
			ab := db.AddBranch(label)
			for _, rec := range a.Performance {
				ab.AddNode(formatRecord(rec))
			}
		}
	}
	return tree.String()
}

func formatRecord(rec ThreadRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "threads=%d time=%.6fs speedup=%s efficiency=%s cost=%.6f",
		rec.Threads, rec.Time, formatMetric(rec.Speedup), formatMetric(rec.Efficiency), rec.Cost)
	if rec.Artifact != "" {
		fmt.Fprintf(&b, " -> %s", rec.Artifact)
	}
	return b.String()
}

func formatMetric(v float64) string {
	if v < 0 {
		return "n/a"
	}
	return fmt.Sprintf("%.3f", v)
}
