package report

import (
	"bytes"
	"fmt"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/lucasjlepore/gait-analyzer/config"
	"github.com/lucasjlepore/gait-analyzer/cycle"
	"github.com/lucasjlepore/gait-analyzer/phase"
	"github.com/lucasjlepore/gait-analyzer/rom"
)

// Dashboard is the input of RenderDashboard.
type Dashboard struct {
	Title    string
	Mode     config.Mode
	Averages cycle.Averages
	Catalog  phase.Catalog
	ROM      []rom.Analysis
}

// RenderDashboard renders a self-contained HTML page: one curve chart per
// joint with phase starts labelled on the x axis, a left/right ROM bar chart
// and the phase layout of the mode.
func RenderDashboard(d Dashboard) ([]byte, error) {
	page := components.NewPage()
	page.PageTitle = d.Title

	xAxis := cycleAxis(d.Averages.Points, d.Catalog)
	for _, joint := range config.Joints() {
		page.AddCharts(jointChart(d, joint, xAxis))
	}
	page.AddCharts(romChart(d), phaseChart(d.Catalog))

	var buf bytes.Buffer
	if err := page.Render(&buf); err != nil {
		return nil, fmt.Errorf("render dashboard: %w", err)
	}
	return buf.Bytes(), nil
}

// cycleAxis labels each normalized point by its percent, appending the phase
// tag where a phase begins.
func cycleAxis(points int, cat phase.Catalog) []string {
	starts := make(map[string]phase.Tag, 8)
	for _, p := range cat.Phases() {
		starts[formatPercent(p.Start)] = p.Tag
	}
	out := make([]string, points)
	for i := range out {
		label := formatPercent(phase.PercentAt(i, points))
		if tag, ok := starts[label]; ok {
			label = fmt.Sprintf("%s %s", label, tag)
		}
		out[i] = label
	}
	return out
}

func jointChart(d Dashboard, joint config.Joint, xAxis []string) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "360px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("%s angle", titleCase(string(joint))),
			Subtitle: fmt.Sprintf("mode=%s cycles L=%d R=%d", d.Mode, d.Averages.Cycles[cycle.LegLeft], d.Averages.Cycles[cycle.LegRight]),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Right: "10%"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Gait cycle (%)", NameLocation: "middle", NameGap: 30}),
		charts.WithYAxisOpts(opts.YAxis{Name: "deg"}),
	)
	line.SetXAxis(xAxis)
	for _, leg := range cycle.Legs() {
		series := d.Averages.Series(leg, joint)
		data := make([]opts.LineData, len(series))
		for i, v := range series {
			data[i] = opts.LineData{Value: roundTo(v, 1)}
		}
		line.AddSeries(titleCase(string(leg)), data)
	}
	return line
}

func romChart(d Dashboard) *charts.Bar {
	x := make([]string, 0, len(d.ROM))
	left := make([]opts.BarData, 0, len(d.ROM))
	right := make([]opts.BarData, 0, len(d.ROM))
	for _, a := range d.ROM {
		x = append(x, fmt.Sprintf("%s (%s)", titleCase(string(a.Joint)), a.DataQuality))
		left = append(left, opts.BarData{Value: a.Left.TotalROM})
		right = append(right, opts.BarData{Value: a.Right.TotalROM})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "360px"}),
		charts.WithTitleOpts(opts.Title{Title: "Range of motion", Subtitle: "total ROM per leg (deg)"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Right: "10%"}),
	)
	bar.SetXAxis(x).
		AddSeries("Left", left, charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"})).
		AddSeries("Right", right, charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}))
	return bar
}

func phaseChart(cat phase.Catalog) *charts.Bar {
	phases := cat.Phases()
	x := make([]string, 0, len(phases))
	widths := make([]opts.BarData, 0, len(phases))
	for _, p := range phases {
		x = append(x, string(p.Tag))
		widths = append(widths, opts.BarData{
			Name:      p.Name,
			Value:     p.Width(),
			ItemStyle: &opts.ItemStyle{Color: p.Color},
		})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "300px"}),
		charts.WithTitleOpts(opts.Title{Title: "Gait phases", Subtitle: "share of cycle (%)"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(x).
		AddSeries("width", widths, charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}))
	return bar
}
