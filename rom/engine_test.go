package rom

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucasjlepore/gait-analyzer/config"
)

func engineFor(t *testing.T, mode config.Mode, j config.Joint) *Engine {
	t.Helper()
	cfg, err := config.DefaultTable().Get(mode)
	require.NoError(t, err)
	e, err := NewEngineForMode(cfg, j)
	require.NoError(t, err)
	return e
}

func spikeSeries() []float64 {
	s := make([]float64, 101)
	s[75] = 70
	s[95] = -5
	return s
}

func sineSeries(n int, amp float64) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = amp * math.Sin(2*math.Pi*float64(i)/float64(n-1))
	}
	return s
}

func TestCalculateSpikeSeries(t *testing.T) {
	t.Parallel()
	e := engineFor(t, config.ModeWalk, config.JointKnee)

	res := e.Calculate(spikeSeries())
	assert.Equal(t, 70.0, res.MaxFlexion)
	assert.Equal(t, -5.0, res.MaxExtension)
	assert.Equal(t, 75.0, res.TotalROM)
	assert.Equal(t, MethodPeakDetection, res.Method)
	assert.Equal(t, 0.0, res.AnatomicalZero)
	assert.Equal(t, 1, res.PositivePeaks)
	assert.Equal(t, 1, res.NegativePeaks)
	assert.InDelta(t, 0.75, res.Confidence, 1e-9)
}

func TestBilateralFlatSeriesIsPoor(t *testing.T) {
	t.Parallel()
	e := engineFor(t, config.ModeWalk, config.JointKnee)

	a, err := e.Bilateral(make([]float64, 101), make([]float64, 101))
	require.NoError(t, err)
	assert.Equal(t, 0.0, a.Asymmetry)
	assert.Equal(t, 0.0, a.AverageROM)
	assert.Equal(t, QualityPoor, a.DataQuality)
	assert.Equal(t, MethodPercentileFallback, a.Left.Method)
	assert.Equal(t, 0.0, a.Left.Confidence)
}

func TestBilateralIdenticalSeriesIsAtLeastGood(t *testing.T) {
	t.Parallel()
	for _, j := range config.Joints() {
		t.Run(string(j), func(t *testing.T) {
			t.Parallel()
			e := engineFor(t, config.ModeWalk, j)
			s := sineSeries(101, 20)
			a, err := e.Bilateral(s, s)
			require.NoError(t, err)
			assert.Equal(t, 0.0, a.Asymmetry)
			assert.GreaterOrEqual(t, a.DataQuality.Rank(), QualityGood.Rank())
		})
	}
}

func TestBilateralLengthMismatch(t *testing.T) {
	t.Parallel()
	e := engineFor(t, config.ModeRun, config.JointHip)

	_, err := e.Bilateral(make([]float64, 10), make([]float64, 11))
	require.Error(t, err)
	var verr *config.ValidationError
	assert.True(t, errors.As(err, &verr))
}

func TestCalculateDegenerateInputs(t *testing.T) {
	t.Parallel()
	e := engineFor(t, config.ModeWalk, config.JointHip)

	cases := map[string][]float64{
		"empty":  nil,
		"single": {12.5},
		"short":  {1, 5, 2},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			res := e.Calculate(in)
			assert.GreaterOrEqual(t, res.TotalROM, 0.0)
			assert.Equal(t, MethodPercentileFallback, res.Method)
		})
	}

	empty := e.Calculate(nil)
	assert.Equal(t, Result{Method: MethodPercentileFallback}, empty)
}

func TestAnatomicalZero(t *testing.T) {
	t.Parallel()

	s := make([]float64, 40)
	for i := range s {
		if i < 15 {
			s[i] = 4
		} else {
			s[i] = 100
		}
	}
	assert.Equal(t, 4.0, AnatomicalZero(s, 15))
	assert.Equal(t, 2.0, AnatomicalZero([]float64{1, 3}, 15))
	assert.Equal(t, 0.0, AnatomicalZero(nil, 15))

	assert.InDelta(t, 0.0, AnatomicalZero(sineSeries(101, 10), 101), 0.05)
}

func TestFindPeaksRejectsPlateaus(t *testing.T) {
	t.Parallel()
	e := engineFor(t, config.ModeWalk, config.JointKnee)

	s := make([]float64, 30)
	s[10], s[11] = 40, 40
	s[20] = -8
	peaks := e.FindPeaks(s, 0)
	assert.Empty(t, peaks.Positive)
	require.Len(t, peaks.Negative, 1)
	assert.Equal(t, 20, peaks.Negative[0].Index)
}

func TestPeakConfidenceOnSmoothCurves(t *testing.T) {
	t.Parallel()
	e := engineFor(t, config.ModeWalk, config.JointKnee)

	tests := []struct {
		amp  float64
		want float64
	}{
		{20, 1},
		{4, 0.4},
	}
	for _, tc := range tests {
		angles := sineSeries(101, tc.amp)
		// Neighbours inside the peak window differ from the crest by well under
		// a degree; confidence must come from the surrounding troughs instead.
		assert.Less(t, angles[25]-angles[24], 0.1)

		peaks := e.FindPeaks(angles, e.AnatomicalZero(angles))
		require.Len(t, peaks.Positive, 1)
		require.Len(t, peaks.Negative, 1)
		assert.Equal(t, 25, peaks.Positive[0].Index)
		assert.Equal(t, 75, peaks.Negative[0].Index)
		assert.InDelta(t, tc.want, peaks.Positive[0].Confidence, 1e-9, "amp %g", tc.amp)
		assert.InDelta(t, tc.want, peaks.Negative[0].Confidence, 1e-9, "amp %g", tc.amp)
	}
}

func TestFindPeaksIgnoresEdges(t *testing.T) {
	t.Parallel()
	e := engineFor(t, config.ModeWalk, config.JointKnee)

	s := make([]float64, 20)
	s[1] = 50
	s[18] = -50
	peaks := e.FindPeaks(s, 0)
	assert.Empty(t, peaks.Positive)
	assert.Empty(t, peaks.Negative)
}

func TestAnkleUsesZeroRelativeFormula(t *testing.T) {
	t.Parallel()
	e := engineFor(t, config.ModeWalk, config.JointAnkle)

	s := make([]float64, 101)
	for i := range s {
		s[i] = 2
	}
	s[40] = 14
	s[70] = -18

	res := e.Calculate(s)
	assert.Equal(t, 2.0, res.AnatomicalZero)
	assert.Equal(t, MethodPeakDetection, res.Method)
	assert.Equal(t, 14.0, res.MaxFlexion)
	assert.Equal(t, -18.0, res.MaxExtension)
	assert.Equal(t, 32.0, res.TotalROM)

	knee := engineFor(t, config.ModeWalk, config.JointKnee).Calculate(s)
	assert.Equal(t, 32.0, knee.TotalROM)
}

func TestAnkleZeroRelativeDiffersWhenBothPeaksShareASide(t *testing.T) {
	t.Parallel()
	ankle := engineFor(t, config.ModeWalk, config.JointAnkle)
	knee := engineFor(t, config.ModeWalk, config.JointKnee)

	// Monotonic ramp: no peaks, and the leading dip pulls the zero below both percentiles.
	s := make([]float64, 101)
	for i := range s {
		s[i] = 10 + float64(i)/10
	}
	s[0], s[1], s[2] = -100, -100, -100
	a := ankle.Calculate(s)
	k := knee.Calculate(s)
	require.Equal(t, MethodPercentileFallback, a.Method)
	assert.Equal(t, a.MaxFlexion, k.MaxFlexion)
	assert.Equal(t, a.MaxExtension, k.MaxExtension)
	assert.NotEqual(t, a.TotalROM, k.TotalROM)
	assert.InDelta(t, PercentileConfidence, a.Confidence, 1e-9)
}

func TestQualityBuckets(t *testing.T) {
	t.Parallel()
	e := engineFor(t, config.ModeWalk, config.JointKnee)

	cases := []struct {
		name       string
		confidence float64
		asymmetry  float64
		want       DataQuality
	}{
		{"excellent", 0.9, 1, QualityExcellent},
		{"asymmetry drops to good", 0.9, 4, QualityGood},
		{"confidence drops to fair", 0.6, 1, QualityFair},
		{"poor", 0.2, 0, QualityPoor},
		{"large asymmetry", 1, 20, QualityPoor},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, e.Quality(tc.confidence, tc.asymmetry))
		})
	}
}

func TestRecommendations(t *testing.T) {
	t.Parallel()
	e := engineFor(t, config.ModeWalk, config.JointKnee)

	normal := Analysis{
		Joint:       config.JointKnee,
		Left:        Result{TotalROM: 62},
		Right:       Result{TotalROM: 62},
		AverageROM:  62,
		DataQuality: QualityExcellent,
	}
	recs := e.Recommendations(normal)
	require.Len(t, recs, 1)
	assert.Contains(t, recs[0], "within normal limits")

	reduced := Analysis{
		Joint:       config.JointKnee,
		Left:        Result{TotalROM: 30},
		Right:       Result{TotalROM: 42},
		Asymmetry:   12,
		AverageROM:  36,
		DataQuality: QualityPoor,
	}
	recs = e.Recommendations(reduced)
	require.Len(t, recs, 3)
	assert.True(t, strings.HasPrefix(recs[0], "Reduced knee"))
	assert.True(t, strings.HasPrefix(recs[1], "High knee asymmetry"))
	assert.Contains(t, recs[2], "data quality is poor")

	moderate := normal
	moderate.Left.TotalROM = 58
	moderate.Asymmetry = 6
	moderate.DataQuality = QualityGood
	recs = e.Recommendations(moderate)
	require.Len(t, recs, 1)
	assert.Contains(t, recs[0], "left side")
}

func TestProfileForUnknownJoint(t *testing.T) {
	t.Parallel()
	_, err := ProfileFor("elbow")
	assert.ErrorIs(t, err, config.ErrUnknownJoint)
}
