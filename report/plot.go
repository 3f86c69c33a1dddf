package report

import (
	"bytes"
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/lucasjlepore/gait-analyzer/config"
	"github.com/lucasjlepore/gait-analyzer/cycle"
	"github.com/lucasjlepore/gait-analyzer/phase"
)

var jointColors = map[config.Joint]color.RGBA{
	config.JointHip:   {R: 0x34, G: 0x98, B: 0xdb, A: 0xff},
	config.JointKnee:  {R: 0xe7, G: 0x4c, B: 0x3c, A: 0xff},
	config.JointAnkle: {R: 0x27, G: 0xae, B: 0x60, A: 0xff},
}

var markerColor = color.RGBA{R: 0x9e, G: 0x9e, B: 0x9e, A: 0xff}

// RenderCyclePlot draws the averaged cycle of every joint and leg against
// cycle percent, with dashed verticals at each phase start, and returns PNG
// bytes. Right-leg curves are dashed.
func RenderCyclePlot(avg cycle.Averages, cat phase.Catalog, title string) ([]byte, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Gait cycle (%)"
	p.Y.Label.Text = "Angle (deg)"
	p.X.Min, p.X.Max = 0, 100

	lo, hi := 0.0, 0.0
	for _, joint := range config.Joints() {
		for _, leg := range cycle.Legs() {
			series := avg.Series(leg, joint)
			if len(series) == 0 {
				continue
			}
			pts := make(plotter.XYs, len(series))
			for i, v := range series {
				pts[i] = plotter.XY{X: phase.PercentAt(i, len(series)), Y: v}
				lo, hi = min(lo, v), max(hi, v)
			}
			line, err := plotter.NewLine(pts)
			if err != nil {
				return nil, fmt.Errorf("%s %s line: %w", leg, joint, err)
			}
			line.Color = jointColors[joint]
			line.Width = vg.Points(1.5)
			if leg == cycle.LegRight {
				line.Dashes = []vg.Length{vg.Points(5), vg.Points(3)}
			}
			p.Add(line)
			p.Legend.Add(fmt.Sprintf("%s %s", titleCase(string(leg)), joint), line)
		}
	}

	for _, m := range cat.Markers() {
		marker, err := plotter.NewLine(plotter.XYs{{X: m.Percent, Y: lo}, {X: m.Percent, Y: hi}})
		if err != nil {
			return nil, fmt.Errorf("phase marker %s: %w", m.Tag, err)
		}
		marker.Color = markerColor
		marker.Width = vg.Points(0.5)
		marker.Dashes = []vg.Length{vg.Points(2), vg.Points(2)}
		p.Add(marker)
	}

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10

	wt, err := p.WriterTo(10*vg.Inch, 5*vg.Inch, "png")
	if err != nil {
		return nil, fmt.Errorf("plot writer: %w", err)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("render png: %w", err)
	}
	return buf.Bytes(), nil
}
