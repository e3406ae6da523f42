package mappings

type PlotStyle struct {
	Color       string
	LineStyle   string
	LineWidth   string
	Mark        string
	MarkOptions string
}

var (
	seriesColors = []string{"red", "blue", "green!70!black", "orange", "purple", "brown", "black", "cyan", "magenta", "teal"}
	seriesMarks  = []string{"triangle*", "square", "*", "diamond*", "pentagon*", "x", "o", "star"}
	seriesLines  = []string{"solid", "densely dashed", "densely dotted", "dashdotted"}
)

// SeriesStyles pairs every color with a mark; the line style changes each
// time the colors wrap around.
var SeriesStyles = buildSeriesStyles()

func buildSeriesStyles() []PlotStyle {
	styles := make([]PlotStyle, 0, len(seriesColors)*len(seriesLines))
	for l, line := range seriesLines {
		for c, color := range seriesColors {
			mark := seriesMarks[(c+l)%len(seriesMarks)]
			markOpts := "scale=0.5"
			if mark[len(mark)-1] == '*' {
				markOpts += ",fill=" + color
			}
			styles = append(styles, PlotStyle{
				Color:       color,
				LineStyle:   line,
				LineWidth:   "thick",
				Mark:        mark,
				MarkOptions: markOpts,
			})
		}
	}
	return styles
}

// IdealStyle draws reference curves such as linear speedup.
var IdealStyle = PlotStyle{Color: "gray", LineStyle: "dashed", LineWidth: "thin", Mark: "none"}

// GetSeriesStyle cycles through SeriesStyles.
func GetSeriesStyle(index int) PlotStyle {
	if index < 0 {
		index = 0
	}
	return SeriesStyles[index%len(SeriesStyles)]
}

func (ps PlotStyle) ToTikzOptions() string {
	options := ps.Color
	if ps.LineStyle != "" {
		options += "," + ps.LineStyle
	}
	if ps.LineWidth != "" {
		options += "," + ps.LineWidth
	}
	switch ps.Mark {
	case "":
	case "none":
		options += ",mark=none"
	default:
		options += ",mark=" + ps.Mark
		if ps.MarkOptions != "" {
			options += ",mark options={" + ps.MarkOptions + "}"
		}
	}
	return options
}