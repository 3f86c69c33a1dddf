package config

import (
	"fmt"
	"math"
	"strings"
)

// Mode selects the bundle of constants used for one kind of locomotion.
type Mode string

const (
	ModeWalk   Mode = "walk"
	ModeRun    Mode = "run"
	ModeSprint Mode = "sprint"
)

// Joint names a lower-limb joint tracked by the analyzer.
type Joint string

const (
	JointHip   Joint = "hip"
	JointKnee  Joint = "knee"
	JointAnkle Joint = "ankle"
)

// Modes lists the supported modes in display order.
func Modes() []Mode { return []Mode{ModeWalk, ModeRun, ModeSprint} }

// Joints lists the tracked joints in display order.
func Joints() []Joint { return []Joint{JointHip, JointKnee, JointAnkle} }

// ParseMode resolves a case-insensitive mode name.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Modes() {
		if m == known {
			return m, nil
		}
	}
	return "", &ConfigurationError{Field: "mode", Reason: fmt.Sprintf("%q (expected walk|run|sprint)", s), Err: ErrUnknownMode}
}

// ParseJoint resolves a case-insensitive joint name.
func ParseJoint(s string) (Joint, error) {
	j := Joint(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Joints() {
		if j == known {
			return j, nil
		}
	}
	return "", &ConfigurationError{Field: "joint", Reason: fmt.Sprintf("%q (expected hip|knee|ankle)", s), Err: ErrUnknownJoint}
}

// Range is a closed interval in degrees.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Clamp limits v to the range.
func (r Range) Clamp(v float64) float64 {
	return math.Max(r.Min, math.Min(r.Max, v))
}

// ClampSeries returns a clamped copy of values.
func (r Range) ClampSeries(values []float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = r.Clamp(v)
	}
	return out
}

// Contains reports whether v lies inside the range.
func (r Range) Contains(v float64) bool { return v >= r.Min && v <= r.Max }

// QualityCutoff is one data-quality bucket: both conditions must hold.
type QualityCutoff struct {
	MinConfidence float64 `json:"min_confidence"`
	MaxAsymmetry  float64 `json:"max_asymmetry"`
}

// QualityThresholds are checked in order excellent, good, fair; anything else is poor.
type QualityThresholds struct {
	Excellent QualityCutoff `json:"excellent"`
	Good      QualityCutoff `json:"good"`
	Fair      QualityCutoff `json:"fair"`
}

// JointConfig holds the per-mode constants for one joint.
type JointConfig struct {
	Bounds            Range             `json:"bounds"`
	NormalROM         Range             `json:"normal_rom"`
	Quality           QualityThresholds `json:"quality"`
	ModerateAsymmetry float64           `json:"moderate_asymmetry"`
	HighAsymmetry     float64           `json:"high_asymmetry"`
}

// ModeConfig is the coherent bundle of constants swapped in by a gait mode.
type ModeConfig struct {
	Mode            Mode                  `json:"mode"`
	FrameRate       float64               `json:"frame_rate"`
	CycleDuration   float64               `json:"cycle_duration_s"`
	CycleTolerance  float64               `json:"cycle_tolerance"` // fraction of CycleDuration
	StanceFraction  float64               `json:"stance_fraction"`
	MinCycles       int                   `json:"min_cycles"`
	PhaseBoundaries []float64             `json:"phase_boundaries"` // 9 edges of the 8 sub-phases, 0..100
	Joints          map[Joint]JointConfig `json:"joints"`
}

// Joint returns the constants for j.
func (c ModeConfig) Joint(j Joint) (JointConfig, error) {
	jc, ok := c.Joints[j]
	if !ok {
		return JointConfig{}, &ConfigurationError{Field: "joints." + string(j), Reason: "not configured for mode " + string(c.Mode), Err: ErrUnknownJoint}
	}
	return jc, nil
}

// WithStride returns a copy with the nominal cycle duration and stance fraction
// replaced. Non-positive values keep the current setting.
func (c ModeConfig) WithStride(cycleDuration, stanceFraction float64) ModeConfig {
	out := c.clone()
	if cycleDuration > 0 {
		out.CycleDuration = cycleDuration
	}
	if stanceFraction > 0 && stanceFraction < 1 {
		out.StanceFraction = stanceFraction
	}
	return out
}

func (c ModeConfig) clone() ModeConfig {
	out := c
	out.PhaseBoundaries = append([]float64(nil), c.PhaseBoundaries...)
	out.Joints = make(map[Joint]JointConfig, len(c.Joints))
	for k, v := range c.Joints {
		out.Joints[k] = v
	}
	return out
}

// Validate checks the invariants every component relies on.
func (c ModeConfig) Validate() error {
	prefix := string(c.Mode)
	if c.FrameRate <= 0 || math.IsNaN(c.FrameRate) {
		return &ConfigurationError{Field: prefix + ".frame_rate", Reason: "must be positive"}
	}
	if c.CycleDuration <= 0 {
		return &ConfigurationError{Field: prefix + ".cycle_duration_s", Reason: "must be positive"}
	}
	if c.CycleTolerance < 0 || c.CycleTolerance >= 1 {
		return &ConfigurationError{Field: prefix + ".cycle_tolerance", Reason: "must be in [0,1)"}
	}
	if c.StanceFraction <= 0 || c.StanceFraction >= 1 {
		return &ConfigurationError{Field: prefix + ".stance_fraction", Reason: "must be in (0,1)"}
	}
	if c.MinCycles < 0 {
		return &ConfigurationError{Field: prefix + ".min_cycles", Reason: "must not be negative"}
	}
	if err := ValidateBoundaries(c.PhaseBoundaries); err != nil {
		return &ConfigurationError{Field: prefix + ".phase_boundaries", Reason: err.Error()}
	}
	for _, j := range Joints() {
		jc, ok := c.Joints[j]
		if !ok {
			return &ConfigurationError{Field: prefix + ".joints." + string(j), Reason: "missing", Err: ErrUnknownJoint}
		}
		if jc.Bounds.Min >= jc.Bounds.Max {
			return &ConfigurationError{Field: prefix + ".joints." + string(j) + ".bounds", Reason: "min must be below max"}
		}
		if jc.NormalROM.Min > jc.NormalROM.Max {
			return &ConfigurationError{Field: prefix + ".joints." + string(j) + ".normal_rom", Reason: "min must not exceed max"}
		}
		if jc.ModerateAsymmetry > jc.HighAsymmetry {
			return &ConfigurationError{Field: prefix + ".joints." + string(j) + ".moderate_asymmetry", Reason: "must not exceed high_asymmetry"}
		}
	}
	return nil
}

// ValidateBoundaries checks that edges start at 0, end at 100 and strictly increase.
func ValidateBoundaries(b []float64) error {
	if len(b) != 9 {
		return fmt.Errorf("expected 9 edges, got %d", len(b))
	}
	if b[0] != 0 || b[len(b)-1] != 100 {
		return fmt.Errorf("edges must span 0..100, got %g..%g", b[0], b[len(b)-1])
	}
	for i := 1; i < len(b); i++ {
		if !(b[i] > b[i-1]) {
			return fmt.Errorf("edge %d (%g) does not increase on %g", i, b[i], b[i-1])
		}
	}
	return nil
}

// Table maps each mode to its configuration.
type Table map[Mode]ModeConfig

// Get returns the configuration for mode or a ConfigurationError.
func (t Table) Get(mode Mode) (ModeConfig, error) {
	cfg, ok := t[mode]
	if !ok {
		return ModeConfig{}, &ConfigurationError{Field: "mode", Reason: fmt.Sprintf("%q not configured", mode), Err: ErrUnknownMode}
	}
	return cfg.clone(), nil
}

// DefaultTable returns a freshly built copy of the compiled-in mode table.
func DefaultTable() Table {
	return Table{
		ModeWalk: {
			Mode:            ModeWalk,
			FrameRate:       100,
			CycleDuration:   1.1,
			CycleTolerance:  0.35,
			StanceFraction:  0.6,
			MinCycles:       3,
			PhaseBoundaries: []float64{0, 2, 12, 31, 50, 62, 75, 87, 100},
			Joints: map[Joint]JointConfig{
				JointHip: {
					Bounds:            Range{Min: -20, Max: 40},
					NormalROM:         Range{Min: 35, Max: 50},
					Quality:           hipQuality,
					ModerateAsymmetry: 5,
					HighAsymmetry:     10,
				},
				JointKnee: {
					Bounds:            Range{Min: -5, Max: 75},
					NormalROM:         Range{Min: 55, Max: 70},
					Quality:           kneeQuality,
					ModerateAsymmetry: 5,
					HighAsymmetry:     10,
				},
				JointAnkle: {
					Bounds:            Range{Min: -25, Max: 20},
					NormalROM:         Range{Min: 25, Max: 35},
					Quality:           ankleQuality,
					ModerateAsymmetry: 4,
					HighAsymmetry:     8,
				},
			},
		},
		ModeRun: {
			Mode:            ModeRun,
			FrameRate:       200,
			CycleDuration:   0.75,
			CycleTolerance:  0.3,
			StanceFraction:  0.4,
			MinCycles:       4,
			PhaseBoundaries: []float64{0, 2, 8, 20, 32, 40, 60, 80, 100},
			Joints: map[Joint]JointConfig{
				JointHip: {
					Bounds:            Range{Min: -25, Max: 55},
					NormalROM:         Range{Min: 45, Max: 65},
					Quality:           hipQuality,
					ModerateAsymmetry: 5,
					HighAsymmetry:     10,
				},
				JointKnee: {
					Bounds:            Range{Min: -5, Max: 110},
					NormalROM:         Range{Min: 80, Max: 105},
					Quality:           kneeQuality,
					ModerateAsymmetry: 5,
					HighAsymmetry:     10,
				},
				JointAnkle: {
					Bounds:            Range{Min: -30, Max: 30},
					NormalROM:         Range{Min: 30, Max: 45},
					Quality:           ankleQuality,
					ModerateAsymmetry: 4,
					HighAsymmetry:     8,
				},
			},
		},
		ModeSprint: {
			Mode:            ModeSprint,
			FrameRate:       200,
			CycleDuration:   0.6,
			CycleTolerance:  0.3,
			StanceFraction:  0.3,
			MinCycles:       4,
			PhaseBoundaries: []float64{0, 2, 6, 15, 24, 30, 55, 78, 100},
			Joints: map[Joint]JointConfig{
				JointHip: {
					Bounds:            Range{Min: -30, Max: 80},
					NormalROM:         Range{Min: 60, Max: 95},
					Quality:           hipQuality,
					ModerateAsymmetry: 6,
					HighAsymmetry:     12,
				},
				JointKnee: {
					Bounds:            Range{Min: -5, Max: 130},
					NormalROM:         Range{Min: 100, Max: 130},
					Quality:           kneeQuality,
					ModerateAsymmetry: 6,
					HighAsymmetry:     12,
				},
				JointAnkle: {
					Bounds:            Range{Min: -35, Max: 35},
					NormalROM:         Range{Min: 35, Max: 55},
					Quality:           ankleQuality,
					ModerateAsymmetry: 5,
					HighAsymmetry:     10,
				},
			},
		},
	}
}

var (
	hipQuality = QualityThresholds{
		Excellent: QualityCutoff{MinConfidence: 0.8, MaxAsymmetry: 3},
		Good:      QualityCutoff{MinConfidence: 0.6, MaxAsymmetry: 6},
		Fair:      QualityCutoff{MinConfidence: 0.4, MaxAsymmetry: 10},
	}
	kneeQuality = QualityThresholds{
		Excellent: QualityCutoff{MinConfidence: 0.85, MaxAsymmetry: 3},
		Good:      QualityCutoff{MinConfidence: 0.7, MaxAsymmetry: 5},
		Fair:      QualityCutoff{MinConfidence: 0.5, MaxAsymmetry: 10},
	}
	ankleQuality = QualityThresholds{
		Excellent: QualityCutoff{MinConfidence: 0.8, MaxAsymmetry: 2},
		Good:      QualityCutoff{MinConfidence: 0.65, MaxAsymmetry: 4},
		Fair:      QualityCutoff{MinConfidence: 0.45, MaxAsymmetry: 8},
	}
)
