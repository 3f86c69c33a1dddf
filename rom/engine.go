package rom

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/lucasjlepore/gait-analyzer/config"
)

// Engine computes ROM for one joint under one mode's constants.
// It holds no mutable state and is safe for concurrent use.
type Engine struct {
	profile Profile
	joint   config.JointConfig
}

// NewEngine builds an engine from a profile and the joint's mode constants.
func NewEngine(p Profile, jc config.JointConfig) *Engine {
	return &Engine{profile: p.withDefaults(), joint: jc}
}

// NewEngineForMode builds the built-in engine of joint j for cfg.
func NewEngineForMode(cfg config.ModeConfig, j config.Joint) (*Engine, error) {
	p, err := ProfileFor(j)
	if err != nil {
		return nil, err
	}
	jc, err := cfg.Joint(j)
	if err != nil {
		return nil, err
	}
	return NewEngine(p, jc), nil
}

// AnatomicalZero is the mean of the first ZeroFrames samples rounded to 0.1°.
func (e *Engine) AnatomicalZero(angles []float64) float64 {
	return AnatomicalZero(angles, e.profile.ZeroFrames)
}

// AnatomicalZero is the mean of the first min(frames, len(angles)) samples,
// rounded to one decimal. Empty input yields 0.
func AnatomicalZero(angles []float64, frames int) float64 {
	if frames <= 0 {
		frames = defaultZeroFrames
	}
	n := min(frames, len(angles))
	if n == 0 {
		return 0
	}
	return round(stat.Mean(angles[:n], nil), 1)
}

// FindPeaks scans for strict local extremes. A sample at index i is a positive
// peak when it lies above zero and is strictly greater than every other sample
// within Window on both sides; negative peaks mirror this below zero. Samples
// closer than Window to either end are never peaks, so plateaus and short
// series produce none.
func (e *Engine) FindPeaks(angles []float64, zero float64) Peaks {
	w := e.profile.Window
	var peaks Peaks
	for i := w; i < len(angles)-w; i++ {
		v := angles[i]
		switch {
		case v > zero && dominates(angles, i, w, func(center, other float64) bool { return center > other }):
			peaks.Positive = append(peaks.Positive, Peak{Index: i, Value: v, Confidence: e.prominence(angles, i, true)})
		case v < zero && dominates(angles, i, w, func(center, other float64) bool { return center < other }):
			peaks.Negative = append(peaks.Negative, Peak{Index: i, Value: v, Confidence: e.prominence(angles, i, false)})
		}
	}
	return peaks
}

func dominates(angles []float64, i, w int, beats func(center, other float64) bool) bool {
	for k := i - w; k <= i+w; k++ {
		if k == i {
			continue
		}
		if !beats(angles[i], angles[k]) {
			return false
		}
	}
	return true
}

// prominence scores a peak by how far it rises above (or dips below) the
// higher of the two surrounding troughs within ProminenceWindow, scaled so that
// StrongPeak degrees gives 1. Measuring against troughs rather than the
// immediate peak window is deliberate: on smooth curves the neighbours inside the
// window sit within a fraction of a degree of the peak and would score near zero.
func (e *Engine) prominence(angles []float64, i int, positive bool) float64 {
	pw := e.profile.ProminenceWindow
	before := angles[max(0, i-pw):i]
	after := angles[i+1 : min(len(angles), i+pw+1)]
	if len(before) == 0 || len(after) == 0 {
		return 0
	}
	var prom float64
	if positive {
		prom = angles[i] - math.Max(floats.Min(before), floats.Min(after))
	} else {
		prom = math.Min(floats.Max(before), floats.Max(after)) - angles[i]
	}
	if prom <= 0 {
		return 0
	}
	return math.Min(1, prom/e.profile.StrongPeak)
}

// ROM derives the result from detected peaks, falling back to the 5th/95th
// percentiles of the whole series when either direction has no peak.
func (e *Engine) ROM(angles []float64, peaks Peaks, zero float64) Result {
	res := Result{
		AnatomicalZero: zero,
		Method:         MethodPercentileFallback,
		PositivePeaks:  len(peaks.Positive),
		NegativePeaks:  len(peaks.Negative),
	}
	if len(angles) == 0 {
		res.AnatomicalZero = 0
		return res
	}

	var hi, lo, confidence float64
	if len(peaks.Positive) > 0 && len(peaks.Negative) > 0 {
		top := peaks.Positive[0]
		for _, p := range peaks.Positive[1:] {
			if p.Value > top.Value {
				top = p
			}
		}
		bottom := peaks.Negative[0]
		for _, p := range peaks.Negative[1:] {
			if p.Value < bottom.Value {
				bottom = p
			}
		}
		hi, lo = top.Value, bottom.Value
		confidence = (top.Confidence + bottom.Confidence) / 2
		res.Method = MethodPeakDetection
	} else {
		sorted := append([]float64(nil), angles...)
		sort.Float64s(sorted)
		hi = stat.Quantile(upperPercentile, stat.Empirical, sorted, nil)
		lo = stat.Quantile(lowerPercentile, stat.Empirical, sorted, nil)
		if hi > lo {
			confidence = PercentileConfidence
		}
	}

	res.MaxFlexion = round(hi, 1)
	res.MaxExtension = round(lo, 1)
	res.TotalROM = round(e.total(hi, lo, zero), 1)
	res.Confidence = round(confidence, 2)
	return res
}

func (e *Engine) total(hi, lo, zero float64) float64 {
	if e.profile.Formula == ZeroRelative {
		return math.Abs(hi-zero) + math.Abs(lo-zero)
	}
	return math.Max(0, hi-lo)
}

// Calculate runs zero estimation, peak detection and ROM on one leg.
func (e *Engine) Calculate(angles []float64) Result {
	zero := e.AnatomicalZero(angles)
	return e.ROM(angles, e.FindPeaks(angles, zero), zero)
}

// Bilateral analyzes both legs independently and compares them. Series of
// different lengths are rejected.
func (e *Engine) Bilateral(left, right []float64) (Analysis, error) {
	if len(left) != len(right) {
		return Analysis{}, &config.ValidationError{
			Field:  string(e.profile.Joint),
			Reason: fmt.Sprintf("left has %d samples, right has %d", len(left), len(right)),
		}
	}
	a := Analysis{
		Joint: e.profile.Joint,
		Left:  e.Calculate(left),
		Right: e.Calculate(right),
	}
	a.Asymmetry = round(math.Abs(a.Left.TotalROM-a.Right.TotalROM), 1)
	a.AverageROM = round((a.Left.TotalROM+a.Right.TotalROM)/2, 1)
	a.DataQuality = e.Quality(math.Min(a.Left.Confidence, a.Right.Confidence), a.Asymmetry)
	return a, nil
}

// Quality returns the first bucket, checked from excellent down, whose
// confidence floor and asymmetry ceiling are both met.
func (e *Engine) Quality(confidence, asymmetry float64) DataQuality {
	q := e.joint.Quality
	buckets := []struct {
		rating DataQuality
		cutoff config.QualityCutoff
	}{
		{QualityExcellent, q.Excellent},
		{QualityGood, q.Good},
		{QualityFair, q.Fair},
	}
	for _, b := range buckets {
		if confidence >= b.cutoff.MinConfidence && asymmetry <= b.cutoff.MaxAsymmetry {
			return b.rating
		}
	}
	return QualityPoor
}

func round(v float64, places int) float64 {
	ratio := math.Pow(10, float64(places))
	return math.Round(v*ratio) / ratio
}
