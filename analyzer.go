// Package gaitnotes turns a bilateral joint-angle capture into a gait analysis:
// cycles, averaged curves, per-joint ROM, phase structure and readable notes.
package gaitnotes

import (
	"fmt"

	"gonum.org/v1/gonum/stat"

	"github.com/lucasjlepore/gait-analyzer/config"
	"github.com/lucasjlepore/gait-analyzer/cycle"
	"github.com/lucasjlepore/gait-analyzer/phase"
	"github.com/lucasjlepore/gait-analyzer/rom"
)

const analysisSchemaVersion = "gait_analysis_v1"

// Options control optional parts of the analysis.
type Options struct {
	// Points is the normalized cycle length; values below 2 use cycle.DefaultPoints.
	Points int
	// CycleBounds overrides the mode's cycle duration window.
	CycleBounds *cycle.Bounds
	// Source is a free-form label of where the stream came from.
	Source string
}

// Analysis is the complete result of one capture.
type Analysis struct {
	SchemaVersion   string                `json:"schema_version"`
	Mode            config.Mode           `json:"mode"`
	Source          string                `json:"source,omitempty"`
	FrameRate       float64               `json:"frame_rate_hz"`
	Frames          int                   `json:"frames"`
	DurationSeconds float64               `json:"duration_seconds"`
	CycleBounds     cycle.Bounds          `json:"cycle_bounds"`
	InitialContacts []cycle.Event         `json:"initial_contacts,omitempty"`
	PhaseEvents     []cycle.Event         `json:"phase_events,omitempty"`
	Cycles          []cycle.Cycle         `json:"cycles,omitempty"`
	CycleStats      CycleStats            `json:"cycle_stats"`
	Averages        cycle.Averages        `json:"averages"`
	Phases          []phase.Phase         `json:"phases"`
	PhaseLabels     []phase.Tag           `json:"phase_labels"`
	ROM             []rom.Analysis        `json:"rom"`
	Recommendations []JointRecommendation `json:"recommendations"`
	OverallQuality  rom.DataQuality       `json:"overall_quality"`
	Structure       PhaseStructure        `json:"phase_structure"`
	Warnings        []string              `json:"warnings,omitempty"`
	Notes           string                `json:"notes"`

	catalog phase.Catalog
}

// CycleStats summarizes accepted cycle durations.
type CycleStats struct {
	Left                int     `json:"left"`
	Right               int     `json:"right"`
	Rejected            int     `json:"rejected"`
	MeanDurationSeconds float64 `json:"mean_duration_seconds"`
	StdDurationSeconds  float64 `json:"std_duration_seconds"`
	CadenceSPM          float64 `json:"cadence_strides_per_min"`
}

// JointRecommendation groups advisory strings by joint.
type JointRecommendation struct {
	Joint config.Joint `json:"joint"`
	Items []string     `json:"items"`
}

// Catalog returns the phase catalog the analysis was labelled with.
func (a *Analysis) Catalog() phase.Catalog { return a.catalog }

// JointROM returns the bilateral result for j.
func (a *Analysis) JointROM(j config.Joint) (rom.Analysis, bool) {
	for _, r := range a.ROM {
		if r.Joint == j {
			return r, true
		}
	}
	return rom.Analysis{}, false
}

// Analyze runs the whole chain on a capture: initial contacts, cycle
// extraction, normalization, averaging, ROM on the averaged curves, phase
// labels and notes. Only invalid configuration or malformed streams fail;
// thin data is reported through Warnings and quality ratings.
func Analyze(s cycle.Stream, cfg config.ModeConfig, opts Options) (*Analysis, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s, clamped := clampStream(s, cfg)
	events, err := cycle.DetectInitialContacts(s)
	if err != nil {
		return nil, fmt.Errorf("detect initial contacts: %w", err)
	}

	bounds := cycle.BoundsForMode(cfg)
	if opts.CycleBounds != nil {
		bounds = *opts.CycleBounds
	}
	if bounds.Min <= 0 || bounds.Max <= bounds.Min {
		return nil, &config.ConfigurationError{Field: "cycle_bounds", Reason: fmt.Sprintf("invalid window [%g, %g]", bounds.Min, bounds.Max)}
	}
	cycles, err := cycle.ExtractCyclesWithin(s, events, bounds)
	if err != nil {
		return nil, fmt.Errorf("extract cycles: %w", err)
	}

	points := opts.Points
	if points < 2 {
		points = cycle.DefaultPoints
	}
	avg := cycle.AverageAngles(cycle.Normalize(cycles, points), points)

	a, err := AnalyzeAverages(avg, cfg)
	if err != nil {
		return nil, err
	}
	a.Source = opts.Source
	a.FrameRate = s.FrameRate
	a.Frames = s.Frames()
	a.DurationSeconds = s.Duration()
	a.CycleBounds = bounds
	a.InitialContacts = events
	a.Cycles = cycles
	for _, c := range cycles {
		a.PhaseEvents = append(a.PhaseEvents, cycle.PhaseEvents(c, a.catalog, s.FrameRate)...)
	}
	a.CycleStats = summarizeCycles(cycles, events)

	var warnings []string
	for _, j := range config.Joints() {
		if n := clamped[j]; n > 0 {
			jc, _ := cfg.Joint(j)
			warnings = append(warnings, fmt.Sprintf("%d %s sample(s) clamped to %s bounds [%g, %g]", n, j, cfg.Mode, jc.Bounds.Min, jc.Bounds.Max))
		}
	}
	if s.FrameRate != cfg.FrameRate {
		warnings = append(warnings, fmt.Sprintf("stream frame rate %.0f Hz differs from %s mode rate %.0f Hz", s.FrameRate, cfg.Mode, cfg.FrameRate))
	}
	for _, leg := range cycle.Legs() {
		n := avg.Cycles[leg]
		switch {
		case n == 0:
			warnings = append(warnings, fmt.Sprintf("no valid %s cycles within %.2f-%.2f s; %s ROM is unreliable", leg, bounds.Min, bounds.Max, leg))
		case n < cfg.MinCycles:
			warnings = append(warnings, fmt.Sprintf("only %d valid %s cycles (want at least %d)", n, leg, cfg.MinCycles))
		}
	}
	if a.CycleStats.Rejected > 0 {
		warnings = append(warnings, fmt.Sprintf("%d stride(s) rejected outside %.2f-%.2f s", a.CycleStats.Rejected, bounds.Min, bounds.Max))
	}
	a.Warnings = append(warnings, a.Warnings...)
	a.Notes = BuildGaitNotes(a)
	return a, nil
}

// AnalyzeAverages scores already averaged (or directly synthesized) cycles.
func AnalyzeAverages(avg cycle.Averages, cfg config.ModeConfig) (*Analysis, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cat, err := phase.ForMode(cfg)
	if err != nil {
		return nil, err
	}
	if avg.Points < 2 {
		avg.Points = cycle.DefaultPoints
	}

	a := &Analysis{
		SchemaVersion: analysisSchemaVersion,
		Mode:          cfg.Mode,
		Averages:      avg,
		Phases:        cat.Phases(),
		PhaseLabels:   cat.Label(avg.Points),
		catalog:       cat,
	}

	overall := rom.QualityExcellent
	for _, joint := range config.Joints() {
		engine, err := rom.NewEngineForMode(cfg, joint)
		if err != nil {
			return nil, err
		}
		left := avg.Series(cycle.LegLeft, joint)
		right := avg.Series(cycle.LegRight, joint)
		result, err := engine.Bilateral(left, right)
		if err != nil {
			return nil, fmt.Errorf("%s ROM: %w", joint, err)
		}
		a.ROM = append(a.ROM, result)
		a.Recommendations = append(a.Recommendations, JointRecommendation{
			Joint: joint,
			Items: engine.Recommendations(result),
		})
		if result.DataQuality.Rank() < overall.Rank() {
			overall = result.DataQuality
		}
		if result.Left.Method == rom.MethodPercentileFallback || result.Right.Method == rom.MethodPercentileFallback {
			a.Warnings = append(a.Warnings, fmt.Sprintf("%s ROM used percentile fallback (peaks L=%d/%d R=%d/%d)",
				joint, result.Left.PositivePeaks, result.Left.NegativePeaks, result.Right.PositivePeaks, result.Right.NegativePeaks))
		}
	}
	a.OverallQuality = overall
	a.Structure = InferPhaseStructure(avg, cat)
	a.Notes = BuildGaitNotes(a)
	return a, nil
}

// clampStream returns a copy of s with every joint series limited to the mode's
// joint bounds, counting the samples that moved per joint. Joints the mode does
// not configure pass through unchanged.
func clampStream(s cycle.Stream, cfg config.ModeConfig) (cycle.Stream, map[config.Joint]int) {
	clamped := map[config.Joint]int{}
	clampLeg := func(ls cycle.LegSeries) cycle.LegSeries {
		out := cycle.LegSeries{Contact: ls.Contact, Angles: make(map[config.Joint][]float64, len(ls.Angles))}
		for j, values := range ls.Angles {
			jc, err := cfg.Joint(j)
			if err != nil {
				out.Angles[j] = values
				continue
			}
			for _, v := range values {
				if !jc.Bounds.Contains(v) {
					clamped[j]++
				}
			}
			out.Angles[j] = jc.Bounds.ClampSeries(values)
		}
		return out
	}
	s.Left = clampLeg(s.Left)
	s.Right = clampLeg(s.Right)
	return s, clamped
}

func summarizeCycles(cycles []cycle.Cycle, events []cycle.Event) CycleStats {
	var st CycleStats
	durations := make([]float64, 0, len(cycles))
	for _, c := range cycles {
		durations = append(durations, c.Duration)
		if c.Leg == cycle.LegRight {
			st.Right++
		} else {
			st.Left++
		}
	}
	pairs := 0
	perLeg := map[cycle.Leg]int{}
	for _, e := range events {
		perLeg[e.Leg]++
	}
	for _, n := range perLeg {
		if n > 1 {
			pairs += n - 1
		}
	}
	st.Rejected = max(0, pairs-len(cycles))
	if len(durations) == 0 {
		return st
	}
	st.MeanDurationSeconds, st.StdDurationSeconds = stat.MeanStdDev(durations, nil)
	if len(durations) == 1 {
		st.StdDurationSeconds = 0
	}
	if st.MeanDurationSeconds > 0 {
		st.CadenceSPM = 60 / st.MeanDurationSeconds
	}
	return st
}
