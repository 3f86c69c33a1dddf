// Package report renders analysis results as CSV exports, a PNG of the
// averaged cycle and an HTML dashboard.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/lucasjlepore/gait-analyzer/config"
	"github.com/lucasjlepore/gait-analyzer/phase"
	"github.com/lucasjlepore/gait-analyzer/rom"
)

// CycleTable is one joint's normalized cycle for both legs. Row i sits at
// i/(N-1) of the cycle.
type CycleTable struct {
	Mode          config.Mode
	Joint         config.Joint
	CycleDuration float64
	Catalog       phase.Catalog
	Left          []float64
	Right         []float64
}

func (t CycleTable) validate() error {
	if len(t.Left) != len(t.Right) {
		return &config.ValidationError{
			Field:  string(t.Joint),
			Reason: fmt.Sprintf("left has %d rows, right has %d", len(t.Left), len(t.Right)),
		}
	}
	return nil
}

func (t CycleTable) percent(i int) float64 { return phase.PercentAt(i, len(t.Left)) }

func (t CycleTable) time(i int) float64 { return t.percent(i) / 100 * t.CycleDuration }

// WriteJointCSV writes the per-frame export used for knee (and any joint):
// GaitCyclePercent,Phase,Time(s),<Joint>Left(deg),<Joint>Right(deg),GaitMode.
func WriteJointCSV(w io.Writer, t CycleTable) error {
	if err := t.validate(); err != nil {
		return err
	}
	label := titleCase(string(t.Joint))
	cw := csv.NewWriter(w)
	header := []string{
		"GaitCyclePercent", "Phase", "Time(s)",
		label + "Left(deg)", label + "Right(deg)", "GaitMode",
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for i := range t.Left {
		pct := t.percent(i)
		row := []string{
			formatPercent(pct),
			t.Catalog.TagAt(pct).Name(),
			formatTime(t.time(i)),
			formatAngle(t.Left[i]),
			formatAngle(t.Right[i]),
			string(t.Mode),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteKneeCSV is WriteJointCSV for the knee.
func WriteKneeCSV(w io.Writer, t CycleTable) error {
	t.Joint = config.JointKnee
	return WriteJointCSV(w, t)
}

// WriteHipCSV writes the hip export, which relates each frame to that leg's
// ROM: ROM(%) places the angle between max extension (0) and max flexion (100);
// Flexion/Extension split the angle around the anatomical zero.
func WriteHipCSV(w io.Writer, t CycleTable, left, right rom.Result) error {
	if err := t.validate(); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	header := []string{
		"Frame", "Time(s)", "GaitCycle(%)", "LeftHip(deg)", "RightHip(deg)",
		"LeftROM(%)", "RightROM(%)", "LeftFlexion(deg)", "RightFlexion(deg)",
		"LeftExtension(deg)", "RightExtension(deg)",
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for i := range t.Left {
		l, r := t.Left[i], t.Right[i]
		row := []string{
			strconv.Itoa(i),
			formatTime(t.time(i)),
			formatPercent(t.percent(i)),
			formatAngle(l),
			formatAngle(r),
			formatAngle(romPercent(l, left)),
			formatAngle(romPercent(r, right)),
			formatAngle(math.Max(0, l-left.AnatomicalZero)),
			formatAngle(math.Max(0, r-right.AnatomicalZero)),
			formatAngle(math.Min(0, l-left.AnatomicalZero)),
			formatAngle(math.Min(0, r-right.AnatomicalZero)),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteAnkleCSV writes a one-row ROM summary block, a blank line, then the
// per-frame rows.
func WriteAnkleCSV(w io.Writer, t CycleTable, a rom.Analysis) error {
	if err := t.validate(); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	summary := [][]string{
		{
			"LeftMaxDorsiflexion", "LeftMaxPlantarflexion", "LeftROM",
			"RightMaxDorsiflexion", "RightMaxPlantarflexion", "RightROM",
			"Asymmetry", "AverageROM",
		},
		{
			formatAngle(a.Left.MaxFlexion), formatAngle(a.Left.MaxExtension), formatAngle(a.Left.TotalROM),
			formatAngle(a.Right.MaxFlexion), formatAngle(a.Right.MaxExtension), formatAngle(a.Right.TotalROM),
			formatAngle(a.Asymmetry), formatAngle(a.AverageROM),
		},
		{},
		{"GaitCyclePercent", "Phase", "AnkleLeft", "AnkleRight", "Time"},
	}
	if err := cw.WriteAll(summary); err != nil {
		return err
	}
	for i := range t.Left {
		pct := t.percent(i)
		row := []string{
			formatPercent(pct),
			t.Catalog.TagAt(pct).Name(),
			formatAngle(t.Left[i]),
			formatAngle(t.Right[i]),
			formatTime(t.time(i)),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func romPercent(angle float64, r rom.Result) float64 {
	if r.TotalROM <= 0 {
		return 0
	}
	return (angle - r.MaxExtension) / r.TotalROM * 100
}

func formatAngle(v float64) string { return formatFixed(v, 1) }

func formatTime(v float64) string { return formatFixed(v, 3) }

func formatPercent(v float64) string {
	v = math.Round(v*100) / 100
	if v == 0 {
		v = 0
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatFixed(v float64, places int) string {
	s := strconv.FormatFloat(v, 'f', places, 64)
	// Drop the sign of values that round to zero.
	if strings.Trim(s, "-0.") == "" {
		return strings.TrimPrefix(s, "-")
	}
	return s
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func roundTo(v float64, places int) float64 {
	ratio := math.Pow(10, float64(places))
	return math.Round(v*ratio) / ratio
}
