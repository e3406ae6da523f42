package mappings

import "parallel-bench/internal/report"

// FieldMapping describes how a record field is labelled and bounded on an
// axis. Min and Max are either a float64 or "auto".
type FieldMapping struct {
	Label      string
	ShortLabel string
	Min        interface{}
	Max        interface{}
	value      func(report.ThreadRecord) float64
}

var fieldMappings = map[string]FieldMapping{
	"threads": {
		Label: "Threads", ShortLabel: "threads", Min: "auto", Max: "auto",
		value: func(r report.ThreadRecord) float64 { return float64(r.Threads) },
	},
	"time": {
		Label: "Stabilized time (s)", ShortLabel: "time", Min: 0.0, Max: "auto",
		value: func(r report.ThreadRecord) float64 { return r.Time },
	},
	"speedup": {
		Label: "Speedup", ShortLabel: "speedup", Min: 0.0, Max: "auto",
		value: func(r report.ThreadRecord) float64 { return r.Speedup },
	},
	"efficiency": {
		Label: "Parallel efficiency", ShortLabel: "efficiency", Min: 0.0, Max: "auto",
		value: func(r report.ThreadRecord) float64 { return r.Efficiency },
	},
	"cost": {
		Label: "Cost (thread-seconds)", ShortLabel: "cost", Min: 0.0, Max: "auto",
		value: func(r report.ThreadRecord) float64 { return r.Cost },
	},
	"amdahl_fraction": {
		Label: "Parallel fraction (Amdahl)", ShortLabel: "Amdahl fraction", Min: 0.0, Max: 1.0,
		value: func(r report.ThreadRecord) float64 { return r.AmdahlFraction },
	},
	"gustafson_fraction": {
		Label: "Parallel fraction (Gustafson)", ShortLabel: "Gustafson fraction", Min: 0.0, Max: 1.0,
		value: func(r report.ThreadRecord) float64 { return r.GustafsonFraction },
	},
}

func GetFieldMapping(field string) (FieldMapping, bool) {
	m, ok := fieldMappings[field]
	return m, ok
}

// Value extracts the field from a record. Derived metrics carry -1 when
// undefined, so negative values report false.
func (m FieldMapping) Value(rec report.ThreadRecord) (float64, bool) {
	v := m.value(rec)
	return v, v >= 0
}

// Fields lists the plottable metrics.
func Fields() []string {
	return []string{"time", "speedup", "efficiency", "cost", "amdahl_fraction", "gustafson_fraction"}
}
