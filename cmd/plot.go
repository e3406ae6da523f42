package cmd

import (
	"fmt"
	"os"

	"parallel-bench/internal/logging"
	"parallel-bench/internal/plot"
	"parallel-bench/internal/plot/scaling/mappings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newPlotCmd() *cobra.Command {
	var reportPath, yField, outDir, htmlOut string
	var dataset int
	var minVal, maxVal float64
	var minSet, maxSet bool
	var ideal, onlyPlot, onlyWrapper bool

	plotCmd := &cobra.Command{
		Use:   "plot",
		Short: "Generate plots from a stored report",
		Long:  "Generate LaTeX/TikZ or HTML plots from a result.json written by run",
	}

	tikzCmd := &cobra.Command{
		Use:   "tikz",
		Short: "Generate a scaling plot over the thread count",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			minSet = cmd.Flags().Changed("min")
			maxSet = cmd.Flags().Changed("max")
			if _, ok := mappings.GetFieldMapping(yField); !ok {
				return fmt.Errorf("unknown field %q, expected one of %v", yField, mappings.Fields())
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			var minPtr, maxPtr *float64
			if minSet {
				minPtr = &minVal
			}
			if maxSet {
				maxPtr = &maxVal
			}
			return generateScalingPlot(reportPath, yField, dataset, minPtr, maxPtr, ideal, outDir, onlyPlot, onlyWrapper)
		},
	}
	tikzCmd.Flags().StringVarP(&reportPath, "report", "r", "", "Report file or run directory")
	tikzCmd.Flags().StringVar(&yField, "y", "speedup", "Y-axis field")
	tikzCmd.Flags().IntVar(&dataset, "dataset", -1, "Only plot this dataset index (-1 = all)")
	tikzCmd.Flags().Float64Var(&minVal, "min", 0, "Minimum Y-axis value")
	tikzCmd.Flags().Float64Var(&maxVal, "max", 0, "Maximum Y-axis value")
	tikzCmd.Flags().BoolVar(&ideal, "ideal", true, "Draw the linear speedup reference")
	tikzCmd.Flags().StringVarP(&outDir, "out", "o", "", "Write the plot and wrapper files to this directory instead of stdout")
	tikzCmd.Flags().BoolVar(&onlyPlot, "plot", false, "Print only the plot file (TikZ)")
	tikzCmd.Flags().BoolVar(&onlyWrapper, "wrapper", false, "Print only the wrapper file (LaTeX)")
	tikzCmd.MarkFlagRequired("report")

	htmlCmd := &cobra.Command{
		Use:   "html [fields...]",
		Short: "Render an interactive HTML page with one chart per field",
		RunE: func(cmd *cobra.Command, args []string) error {
			return generateHTML(reportPath, htmlOut, args)
		},
	}
	htmlCmd.Flags().StringVarP(&reportPath, "report", "r", "", "Report file or run directory")
	htmlCmd.Flags().StringVarP(&htmlOut, "out", "o", "scaling.html", "Output file")
	htmlCmd.MarkFlagRequired("report")

	plotCmd.AddCommand(tikzCmd)
	plotCmd.AddCommand(htmlCmd)
	return plotCmd
}

func generateScalingPlot(reportPath, yField string, dataset int, minPtr, maxPtr *float64, ideal bool, outDir string, onlyPlot, onlyWrapper bool) error {
	logger := logging.GetLogger()
	logger.WithFields(logrus.Fields{
		"report":  reportPath,
		"y_field": yField,
		"dataset": dataset,
	}).Debug("Generating scaling plot")

	plotMgr := plot.NewPlotManager()

	if outDir != "" {
		_, err := plotMgr.WriteScalingPlot(reportPath, outDir, yField, dataset, ideal)
		return err
	}

	_, plotTikz, wrapperTex, err := plotMgr.GenerateScalingPlot(reportPath, yField, dataset, minPtr, maxPtr, ideal)
	if err != nil {
		logger.WithError(err).Error("Failed to generate plot")
		return fmt.Errorf("failed to generate plot: %w", err)
	}

	showPlot := !onlyWrapper
	showWrapper := !onlyPlot

	if showPlot {
		fmt.Println(plotTikz)
		if showWrapper {
			fmt.Println()
		}
	}
	if showWrapper {
		fmt.Println(wrapperTex)
	}
	return nil
}

func generateHTML(reportPath, out string, fields []string) error {
	f, err := os.Create(out)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := plot.NewPlotManager().GenerateHTML(reportPath, f, fields...); err != nil {
		return err
	}
	logging.GetLogger().WithField("file", out).Info("HTML report written")
	return f.Close()
}
