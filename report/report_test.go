package report

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucasjlepore/gait-analyzer/config"
	"github.com/lucasjlepore/gait-analyzer/cycle"
	"github.com/lucasjlepore/gait-analyzer/phase"
	"github.com/lucasjlepore/gait-analyzer/rom"
)

func threeFrameTable(joint config.Joint, left, right []float64) CycleTable {
	return CycleTable{
		Mode:          config.ModeWalk,
		Joint:         joint,
		CycleDuration: 1.1,
		Catalog:       phase.DefaultCatalog(),
		Left:          left,
		Right:         right,
	}
}

func readCSV(t *testing.T, data []byte) [][]string {
	t.Helper()
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	require.NoError(t, err)
	return rows
}

func TestWriteKneeCSVThreeFrames(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	table := threeFrameTable(config.JointHip, []float64{10.04, 20.06, -0.04}, []float64{1, 2, 3})
	require.NoError(t, WriteKneeCSV(&buf, table))

	want := [][]string{
		{"GaitCyclePercent", "Phase", "Time(s)", "KneeLeft(deg)", "KneeRight(deg)", "GaitMode"},
		{"0", "Initial Contact", "0.000", "10.0", "1.0", "walk"},
		{"50", "Pre-Swing", "0.550", "20.1", "2.0", "walk"},
		{"100", "Terminal Swing", "1.100", "0.0", "3.0", "walk"},
	}
	if diff := cmp.Diff(want, readCSV(t, buf.Bytes())); diff != "" {
		t.Fatalf("knee csv mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteJointCSVUsesJointLabel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, WriteJointCSV(&buf, threeFrameTable(config.JointAnkle, []float64{1, 2, 3}, []float64{1, 2, 3})))
	rows := readCSV(t, buf.Bytes())
	require.Len(t, rows, 4)
	assert.Equal(t, "AnkleLeft(deg)", rows[0][3])
}

func TestWriteHipCSVThreeFrames(t *testing.T) {
	t.Parallel()

	left := rom.Result{MaxFlexion: 30, MaxExtension: -10, TotalROM: 40}
	var buf bytes.Buffer
	table := threeFrameTable(config.JointHip, []float64{30, 10, -10}, []float64{5, 5, 5})
	require.NoError(t, WriteHipCSV(&buf, table, left, rom.Result{AnatomicalZero: 5}))

	want := [][]string{
		{"Frame", "Time(s)", "GaitCycle(%)", "LeftHip(deg)", "RightHip(deg)", "LeftROM(%)", "RightROM(%)", "LeftFlexion(deg)", "RightFlexion(deg)", "LeftExtension(deg)", "RightExtension(deg)"},
		{"0", "0.000", "0", "30.0", "5.0", "100.0", "0.0", "30.0", "0.0", "0.0", "0.0"},
		{"1", "0.550", "50", "10.0", "5.0", "50.0", "0.0", "10.0", "0.0", "0.0", "0.0"},
		{"2", "1.100", "100", "-10.0", "5.0", "0.0", "0.0", "0.0", "0.0", "-10.0", "0.0"},
	}
	if diff := cmp.Diff(want, readCSV(t, buf.Bytes())); diff != "" {
		t.Fatalf("hip csv mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteAnkleCSVSummaryBlock(t *testing.T) {
	t.Parallel()

	a := rom.Analysis{
		Joint:      config.JointAnkle,
		Left:       rom.Result{MaxFlexion: 12.04, MaxExtension: -18.2, TotalROM: 30.2},
		Right:      rom.Result{MaxFlexion: 11, MaxExtension: -17, TotalROM: 28},
		Asymmetry:  2.2,
		AverageROM: 29.1,
	}
	var buf bytes.Buffer
	table := threeFrameTable(config.JointAnkle, []float64{-2, 12, -18.2}, []float64{-1, 11, -17})
	require.NoError(t, WriteAnkleCSV(&buf, table, a))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	want := []string{
		"LeftMaxDorsiflexion,LeftMaxPlantarflexion,LeftROM,RightMaxDorsiflexion,RightMaxPlantarflexion,RightROM,Asymmetry,AverageROM",
		"12.0,-18.2,30.2,11.0,-17.0,28.0,2.2,29.1",
		"",
		"GaitCyclePercent,Phase,AnkleLeft,AnkleRight,Time",
		"0,Initial Contact,-2.0,-1.0,0.000",
		"50,Pre-Swing,12.0,11.0,0.550",
		"100,Terminal Swing,-18.2,-17.0,1.100",
	}
	if diff := cmp.Diff(want, lines); diff != "" {
		t.Fatalf("ankle csv mismatch (-want +got):\n%s", diff)
	}
}

func TestCSVRejectsMismatchedLegs(t *testing.T) {
	t.Parallel()

	table := threeFrameTable(config.JointKnee, []float64{1, 2}, []float64{1})
	var verr *config.ValidationError
	assert.ErrorAs(t, WriteKneeCSV(&bytes.Buffer{}, table), &verr)
	assert.ErrorAs(t, WriteHipCSV(&bytes.Buffer{}, table, rom.Result{}, rom.Result{}), &verr)
	assert.ErrorAs(t, WriteAnkleCSV(&bytes.Buffer{}, table, rom.Analysis{}), &verr)
}

func TestFormatters(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "0.0", formatAngle(-0.04))
	assert.Equal(t, "-0.1", formatAngle(-0.06))
	assert.Equal(t, "12.5", formatPercent(12.5))
	assert.Equal(t, "33.33", formatPercent(100.0/3))
	assert.Equal(t, "0.000", formatTime(-0.0001))
}

func sampleAverages() cycle.Averages {
	normalized := []cycle.NormalizedCycle{
		{Leg: cycle.LegLeft, Points: 5, Angles: map[config.Joint][]float64{
			config.JointHip:   {30, 10, -10, 5, 30},
			config.JointKnee:  {5, 15, 5, 60, 5},
			config.JointAnkle: {0, 10, -15, 0, 0},
		}},
		{Leg: cycle.LegRight, Points: 5, Angles: map[config.Joint][]float64{
			config.JointHip:   {28, 9, -9, 5, 28},
			config.JointKnee:  {5, 14, 5, 58, 5},
			config.JointAnkle: {0, 9, -14, 0, 0},
		}},
	}
	return cycle.AverageAngles(normalized, 5)
}

func TestRenderCyclePlotPNG(t *testing.T) {
	t.Parallel()

	png, err := RenderCyclePlot(sampleAverages(), phase.DefaultCatalog(), "walk averaged cycle")
	require.NoError(t, err)
	require.Greater(t, len(png), 8)
	assert.Equal(t, "\x89PNG", string(png[:4]))
}

func TestRenderDashboardHTML(t *testing.T) {
	t.Parallel()

	html, err := RenderDashboard(Dashboard{
		Title:    "Gait dashboard",
		Mode:     config.ModeWalk,
		Averages: sampleAverages(),
		Catalog:  phase.DefaultCatalog(),
		ROM: []rom.Analysis{
			{Joint: config.JointKnee, Left: rom.Result{TotalROM: 55}, Right: rom.Result{TotalROM: 53}, DataQuality: rom.QualityGood},
		},
	})
	require.NoError(t, err)
	page := string(html)
	assert.Contains(t, page, "<html")
	assert.Contains(t, page, "Knee angle")
	assert.Contains(t, page, "Range of motion")
	assert.Contains(t, page, "Gait phases")
}

func TestCycleAxisMarksPhaseStarts(t *testing.T) {
	t.Parallel()

	axis := cycleAxis(101, phase.DefaultCatalog())
	require.Len(t, axis, 101)
	assert.Equal(t, "0 IC", axis[0])
	assert.Equal(t, "1", axis[1])
	assert.Equal(t, "12 MSt", axis[12])
	assert.Equal(t, "100", axis[100])
}
