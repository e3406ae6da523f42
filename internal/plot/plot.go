// Package plot turns stored sweep reports into figures.
package plot

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"parallel-bench/internal/logging"
	"parallel-bench/internal/plot/html"
	"parallel-bench/internal/plot/scaling"
	"parallel-bench/internal/report"

	"github.com/sirupsen/logrus"
)

type PlotType string

const (
	PlotTypeTikz PlotType = "tikz"
	PlotTypeHTML PlotType = "html"
)

type PlotManager struct {
	scalingGenerator *scaling.ScalingPlotGenerator
	logger           *logrus.Logger
}

func NewPlotManager() *PlotManager {
	logger := logging.GetLogger()
	return &PlotManager{
		scalingGenerator: scaling.NewScalingPlotGenerator(logger),
		logger:           logger,
	}
}

// GenerateScalingPlot loads the report at reportPath, a result file or a run
// directory, and renders one metric over the thread count.
func (pm *PlotManager) GenerateScalingPlot(
	reportPath string,
	yField string,
	dataset int,
	minOverride, maxOverride *float64,
	ideal bool,
) (r *report.Report, plotTikz, wrapperTex string, err error) {
	r, err = report.Load(reportPath)
	if err != nil {
		return nil, "", "", fmt.Errorf("failed to load report: %w", err)
	}

	opts := scaling.PlotOptions{
		YField:      yField,
		Dataset:     dataset,
		MinOverride: minOverride,
		MaxOverride: maxOverride,
		Ideal:       ideal,
	}
	plotTikz, wrapperTex, err = pm.scalingGenerator.Generate(r, opts)
	return r, plotTikz, wrapperTex, err
}

// WriteScalingPlot renders the plot and stores both files in outDir under
// the names the wrapper refers to.
func (pm *PlotManager) WriteScalingPlot(reportPath, outDir, yField string, dataset int, ideal bool) ([]string, error) {
	r, plotTikz, wrapperTex, err := pm.GenerateScalingPlot(reportPath, yField, dataset, nil, nil, ideal)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, err
	}

	plotPath := filepath.Join(outDir, scaling.PlotFileName(r.Metadata.RunID, yField))
	wrapperPath := filepath.Join(outDir, fmt.Sprintf("run-%s-%s.tex", r.Metadata.RunID, yField))
	if err := os.WriteFile(plotPath, []byte(plotTikz), 0o644); err != nil {
		return nil, err
	}
	if err := os.WriteFile(wrapperPath, []byte(wrapperTex), 0o644); err != nil {
		return nil, err
	}

	pm.logger.WithFields(logrus.Fields{
		"plot":    plotPath,
		"wrapper": wrapperPath,
	}).Info("Wrote scaling plot")
	return []string{plotPath, wrapperPath}, nil
}

// GenerateHTML writes an interactive page with one chart per field.
func (pm *PlotManager) GenerateHTML(reportPath string, w io.Writer, fields ...string) error {
	r, err := report.Load(reportPath)
	if err != nil {
		return fmt.Errorf("failed to load report: %w", err)
	}
	if err := html.Render(w, r, fields...); err != nil {
		return fmt.Errorf("failed to render html: %w", err)
	}
	pm.logger.WithField("run_id", r.Metadata.RunID).Info("Rendered html report")
	return nil
}
