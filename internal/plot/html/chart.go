// Package html renders a sweep report as an interactive ECharts page.
package html

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"parallel-bench/internal/plot/scaling/mappings"
	"parallel-bench/internal/report"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// missing is how ECharts marks a gap in a line series.
const missing = "-"

// Render writes one line chart per field to w. With no fields all
// plottable metrics are drawn.
func Render(w io.Writer, r *report.Report, fields ...string) error {
	if len(fields) == 0 {
		fields = mappings.Fields()
	}

	page := components.NewPage()
	page.PageTitle = fmt.Sprintf("%s [%s]", r.Metadata.Function, r.Metadata.RunID)

	threads := threadAxis(r)
	if len(threads) == 0 {
		return fmt.Errorf("run %s has no records", r.Metadata.RunID)
	}

	for _, field := range fields {
		line, err := lineChart(r, field, threads)
		if err != nil {
			return err
		}
		page.AddCharts(line)
	}
	return page.Render(w)
}

func lineChart(r *report.Report, field string, threads []int) (*charts.Line, error) {
	mapping, ok := mappings.GetFieldMapping(field)
	if !ok {
		return nil, fmt.Errorf("unknown field: %s", field)
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    mapping.Label,
			Subtitle: r.Metadata.Function,
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Bottom: "0"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "threads"}),
		charts.WithYAxisOpts(opts.YAxis{Name: mapping.ShortLabel}),
	)

	labels := make([]string, len(threads))
	column := make(map[int]int, len(threads))
	for i, t := range threads {
		labels[i] = strconv.Itoa(t)
		column[t] = i
	}
	line.SetXAxis(labels)

	for di, d := range r.Datasets {
		for _, a := range d.Data {
			points := make([]opts.LineData, len(threads))
			for i := range points {
				points[i] = opts.LineData{Value: missing}
			}
			for _, rec := range a.Performance {
				if v, ok := mapping.Value(rec); ok {
					points[column[rec.Threads]] = opts.LineData{Value: v}
				}
			}
			name := a.Label()
			if len(r.Datasets) > 1 {
				name = fmt.Sprintf("dataset %d, %s", di, name)
			}
			line.AddSeries(name, points)
		}
	}

	if field == "speedup" {
		ideal := make([]opts.LineData, len(threads))
		for i, t := range threads {
			ideal[i] = opts.LineData{Value: t}
		}
		line.AddSeries("ideal", ideal,
			charts.WithLineStyleOpts(opts.LineStyle{Type: "dashed"}))
	}
	return line, nil
}

func threadAxis(r *report.Report) []int {
	set := map[int]struct{}{}
	for _, d := range r.Datasets {
		for _, a := range d.Data {
			for _, rec := range a.Performance {
				set[rec.Threads] = struct{}{}
			}
		}
	}
	threads := make([]int, 0, len(set))
	for t := range set {
		threads = append(threads, t)
	}
	sort.Ints(threads)
	return threads
}
