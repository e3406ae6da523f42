package templates

const PlotTemplate = `% Generated on {{.GeneratedDate}}
%
% Run ID: {{.RunID}}
% Benchmark: {{.BenchmarkName}}
% Function: {{.Function}}
% Started: {{.Started}}
% Finished: {{.Finished}}
% Duration: {{.DurationSeconds}}s
% Repetitions: {{.Repetitions}} (confidence {{.Level}}%, {{.Method}} around the {{.Tendency}})
% Driver Version: {{.DriverVersion}}
%
% Host Information:
% Hostname: {{.Hostname}}
% CPU: {{.CPUVendor}} {{.CPUModel}} ({{.LogicalCores}} logical cores, {{.Sockets}} sockets)
% L3 Cache: {{.L3Cache}}
% Kernel: {{.KernelVersion}}
% OS: {{.OSInfo}}
%
\begin{tikzpicture}
	\begin{axis}[
		% title={ {{.Title}} },
		xlabel={ {{.XLabel}} },
		ylabel={ {{.YLabel}} },
		width=\textwidth,
		height=0.75\textwidth,
		xmin={{.XMin}}, xmax={{.XMax}},
		ymin={{.YMin}}, ymax={{.YMax}},
		xtick={ {{.XTicks}} },
		ymajorgrids,
		grid style=dashed,
		legend columns=1,
		legend pos={{.LegendPos}},
		legend style={font=\scriptsize},
	]

{{range .Plots}}
% Series: dataset {{.DatasetIndex}}, {{.ArgsLabel}}
% addplot source: run_id={{$.RunID}} field={{$.Fieldname}}
\addplot+[{{.Style}}]
  coordinates {
{{range .Coordinates}}    {{.}}
{{end}}  };
\addlegendentry{ {{.LegendEntry}} }

{{end}}
	\end{axis}
\end{tikzpicture}
`

type PlotData struct {
	GeneratedDate   string
	RunID           string
	BenchmarkName   string
	Function        string
	Started         string
	Finished        string
	DurationSeconds float64
	Repetitions     int
	Level           string
	Method          string
	Tendency        string
	DriverVersion   string
	Hostname        string
	CPUVendor       string
	CPUModel        string
	LogicalCores    int
	Sockets         int
	L3Cache         string
	KernelVersion   string
	OSInfo          string
	Title           string
	XLabel          string
	YLabel          string
	Fieldname       string
	XMin            string
	XMax            string
	YMin            string
	YMax            string
	XTicks          string
	LegendPos       string
	Plots           []PlotSeries
}

type PlotSeries struct {
	DatasetIndex int
	ArgsLabel    string
	Style        string
	LegendEntry  string
	Coordinates  []string
}
