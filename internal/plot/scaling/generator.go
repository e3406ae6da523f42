// Package scaling renders pgfplots figures of a sweep report with the
// thread count on the x axis.
package scaling

import (
	"bytes"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"text/template"
	"time"

	"parallel-bench/internal/plot/scaling/mappings"
	plotTemplate "parallel-bench/internal/plot/scaling/templates/plot"
	wrapperTemplate "parallel-bench/internal/plot/scaling/templates/wrapper"
	"parallel-bench/internal/report"

	"github.com/sirupsen/logrus"
)

type ScalingPlotGenerator struct {
	logger *logrus.Logger
	now    func() time.Time
}

func NewScalingPlotGenerator(logger *logrus.Logger) *ScalingPlotGenerator {
	return &ScalingPlotGenerator{logger: logger, now: time.Now}
}

type PlotOptions struct {
	YField string
	// Dataset restricts the plot to one dataset index; -1 plots all of them.
	Dataset     int
	MinOverride *float64
	MaxOverride *float64
	// Ideal adds the linear reference curve to speedup plots.
	Ideal bool
}

// Generate returns the tikzpicture and the LaTeX figure wrapper that
// includes it.
func (g *ScalingPlotGenerator) Generate(r *report.Report, opts PlotOptions) (string, string, error) {
	g.logger.WithFields(logrus.Fields{
		"run_id":  r.Metadata.RunID,
		"y_field": opts.YField,
		"dataset": opts.Dataset,
	}).Info("Generating scaling plot")

	xMapping, _ := mappings.GetFieldMapping("threads")
	yMapping, ok := mappings.GetFieldMapping(opts.YField)
	if !ok {
		return "", "", fmt.Errorf("unknown Y field: %s", opts.YField)
	}
	if opts.Dataset >= len(r.Datasets) {
		return "", "", fmt.Errorf("dataset %d out of range, report has %d", opts.Dataset, len(r.Datasets))
	}

	plotData, err := g.preparePlotData(r, opts, xMapping, yMapping)
	if err != nil {
		return "", "", fmt.Errorf("failed to prepare plot data: %w", err)
	}

	plotOutput, err := g.renderPlot(plotData)
	if err != nil {
		return "", "", fmt.Errorf("failed to render plot: %w", err)
	}

	wrapperOutput, err := g.renderWrapper(g.prepareWrapperData(r, opts, yMapping))
	if err != nil {
		return "", "", fmt.Errorf("failed to render wrapper: %w", err)
	}

	g.logger.WithField("series", len(plotData.Plots)).Info("Scaling plot generated successfully")
	return plotOutput, wrapperOutput, nil
}

func (g *ScalingPlotGenerator) preparePlotData(
	r *report.Report,
	opts PlotOptions,
	xMapping, yMapping mappings.FieldMapping,
) (*plotTemplate.PlotData, error) {
	var plotSeries []plotTemplate.PlotSeries
	yMin, yMax := math.Inf(1), math.Inf(-1)
	threadSet := map[int]struct{}{}

	styleIndex := 0
	for di, d := range r.Datasets {
		if opts.Dataset >= 0 && di != opts.Dataset {
			continue
		}
		for _, a := range d.Data {
			series := plotTemplate.PlotSeries{
				DatasetIndex: di,
				ArgsLabel:    a.Label(),
				Style:        mappings.GetSeriesStyle(styleIndex).ToTikzOptions(),
				LegendEntry:  legendEntry(r, di, a),
			}
			styleIndex++

			for _, rec := range a.Performance {
				y, ok := yMapping.Value(rec)
				if !ok {
					continue
				}
				x, _ := xMapping.Value(rec)
				series.Coordinates = append(series.Coordinates, fmt.Sprintf("(%d,%.6f)", int(x), y))
				threadSet[rec.Threads] = struct{}{}
				yMin = math.Min(yMin, y)
				yMax = math.Max(yMax, y)
			}
			if len(series.Coordinates) > 0 {
				plotSeries = append(plotSeries, series)
			}
		}
	}
	if len(plotSeries) == 0 {
		return nil, fmt.Errorf("no %s values in run %s", opts.YField, r.Metadata.RunID)
	}

	threads := make([]int, 0, len(threadSet))
	for t := range threadSet {
		threads = append(threads, t)
	}
	sort.Ints(threads)

	if opts.Ideal && opts.YField == "speedup" {
		ideal := plotTemplate.PlotSeries{
			DatasetIndex: -1,
			ArgsLabel:    "linear speedup",
			Style:        mappings.IdealStyle.ToTikzOptions(),
			LegendEntry:  "ideal",
		}
		for _, t := range threads {
			ideal.Coordinates = append(ideal.Coordinates, fmt.Sprintf("(%d,%d)", t, t))
		}
		plotSeries = append(plotSeries, ideal)
		yMax = math.Max(yMax, float64(threads[len(threads)-1]))
	}

	ticks := make([]string, len(threads))
	for i, t := range threads {
		ticks[i] = strconv.Itoa(t)
	}

	yMinStr, yMaxStr := g.determineAxisLimits(yMapping, opts.MinOverride, opts.MaxOverride, yMin, yMax)

	meta := r.Metadata
	data := &plotTemplate.PlotData{
		GeneratedDate:   g.now().Format("2006-01-02 15:04:05"),
		RunID:           meta.RunID,
		BenchmarkName:   meta.Benchmark,
		Function:        meta.Function,
		Started:         meta.StartTime.Format(time.RFC3339),
		Finished:        meta.EndTime.Format(time.RFC3339),
		DurationSeconds: meta.EndTime.Sub(meta.StartTime).Seconds(),
		Repetitions:     meta.Options.Repetitions,
		Level:           meta.Options.Level,
		Method:          meta.Options.Method,
		Tendency:        meta.Options.Tendency,
		DriverVersion:   meta.DriverVersion,
		Title:           yMapping.Label,
		XLabel:          xMapping.Label,
		YLabel:          yMapping.Label,
		Fieldname:       opts.YField,
		XMin:            ticks[0],
		XMax:            ticks[len(ticks)-1],
		YMin:            yMinStr,
		YMax:            yMaxStr,
		XTicks:          strings.Join(ticks, ","),
		LegendPos:       legendPos(opts.YField),
		Plots:           plotSeries,
	}
	if h := meta.Host; h != nil {
		data.Hostname = h.Hostname
		data.CPUVendor = h.CPUVendor
		data.CPUModel = h.CPUModel
		data.LogicalCores = h.LogicalCores
		data.Sockets = h.Sockets
		data.L3Cache = h.L3Cache
		data.KernelVersion = h.KernelVersion
		data.OSInfo = h.OS
	}
	return data, nil
}

func legendEntry(r *report.Report, datasetIndex int, a *report.ArgumentNode) string {
	entry := a.Label()
	if len(r.Datasets) > 1 {
		entry = fmt.Sprintf("dataset %d, %s", datasetIndex, entry)
	}
	return escapeLatex(entry)
}

// Time and cost fall with more threads, the rest rise.
func legendPos(field string) string {
	switch field {
	case "time", "cost":
		return "north east"
	}
	return "north west"
}

var latexEscaper = strings.NewReplacer(
	`\`, `\textbackslash{}`,
	"_", `\_`,
	"%", `\%`,
	"&", `\&`,
	"#", `\#`,
	"$", `\$`,
	"{", `\{`,
	"}", `\}`,
)

func escapeLatex(s string) string {
	return latexEscaper.Replace(s)
}

func (g *ScalingPlotGenerator) determineAxisLimits(
	mapping mappings.FieldMapping,
	minOverride, maxOverride *float64,
	dataMin, dataMax float64,
) (string, string) {
	var minStr, maxStr string

	if minOverride != nil {
		minStr = fmt.Sprintf("%.2f", *minOverride)
	} else if minVal, ok := mapping.Min.(float64); ok {
		minStr = fmt.Sprintf("%.2f", minVal)
	} else if mapping.Min == "auto" {
		minStr = fmt.Sprintf("%.2f", dataMin*0.95)
	} else {
		minStr = "0"
	}

	if maxOverride != nil {
		maxStr = fmt.Sprintf("%.2f", *maxOverride)
	} else if maxVal, ok := mapping.Max.(float64); ok {
		maxStr = fmt.Sprintf("%.2f", maxVal)
	} else if mapping.Max == "auto" {
		maxStr = fmt.Sprintf("%.2f", dataMax*1.05)
	} else {
		maxStr = "1"
	}

	return minStr, maxStr
}

func (g *ScalingPlotGenerator) prepareWrapperData(r *report.Report, opts PlotOptions, yMapping mappings.FieldMapping) *wrapperTemplate.WrapperData {
	label := fmt.Sprintf("%s-%s", r.Metadata.RunID, opts.YField)
	return &wrapperTemplate.WrapperData{
		GeneratedDate: g.now().Format("2006-01-02 15:04:05"),
		RunID:         r.Metadata.RunID,
		YField:        opts.YField,
		PlotFileName:  PlotFileName(r.Metadata.RunID, opts.YField),
		ShortCaption:  yMapping.ShortLabel,
		Caption:       fmt.Sprintf("%s of %s over the thread count", yMapping.Label, escapeLatex(r.Metadata.Function)),
		Label:         label,
	}
}

// PlotFileName is the name the wrapper expects the tikzpicture under.
func PlotFileName(runID, field string) string {
	return fmt.Sprintf("run-%s-%s.tikz", runID, field)
}

func (g *ScalingPlotGenerator) renderPlot(data *plotTemplate.PlotData) (string, error) {
	tmpl, err := template.New("plot").Parse(plotTemplate.PlotTemplate)
	if err != nil {
		return "", fmt.Errorf("failed to parse plot template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute plot template: %w", err)
	}

	return buf.String(), nil
}

func (g *ScalingPlotGenerator) renderWrapper(data *wrapperTemplate.WrapperData) (string, error) {
	tmpl, err := template.New("wrapper").Parse(wrapperTemplate.WrapperTemplate)
	if err != nil {
		return "", fmt.Errorf("failed to parse wrapper template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute wrapper template: %w", err)
	}

	return buf.String(), nil
}
