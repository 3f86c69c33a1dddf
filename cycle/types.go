// Package cycle slices a continuous per-frame joint angle stream into gait
// cycles, resamples them to a fixed length and averages them per leg.
package cycle

import (
	"fmt"

	"github.com/lucasjlepore/gait-analyzer/config"
	"github.com/lucasjlepore/gait-analyzer/phase"
)

// DefaultPoints is the normalized cycle length: 0..100% in 1% steps.
const DefaultPoints = 101

// Leg identifies the left or right limb.
type Leg string

const (
	LegLeft  Leg = "left"
	LegRight Leg = "right"
)

// Legs lists both legs, left first.
func Legs() []Leg { return []Leg{LegLeft, LegRight} }

// LegSeries holds one leg's per-frame foot contact flags and joint angles.
// Contact[i] is true while the foot is on the ground.
type LegSeries struct {
	Contact []bool                     `json:"contact"`
	Angles  map[config.Joint][]float64 `json:"angles"`
}

// Stream is a bilateral capture sampled at FrameRate. Frame i is at i/FrameRate seconds.
type Stream struct {
	FrameRate float64   `json:"frame_rate"`
	Left      LegSeries `json:"left"`
	Right     LegSeries `json:"right"`
}

// Leg returns the series for l.
func (s Stream) Leg(l Leg) LegSeries {
	if l == LegRight {
		return s.Right
	}
	return s.Left
}

// Frames is the number of frames in the stream.
func (s Stream) Frames() int { return len(s.Left.Contact) }

// Duration is the capture length in seconds.
func (s Stream) Duration() float64 {
	if s.FrameRate <= 0 {
		return 0
	}
	return float64(s.Frames()) / s.FrameRate
}

// Validate checks the frame rate and that every series shares one frame index.
func (s Stream) Validate() error {
	if s.FrameRate <= 0 {
		return &config.ConfigurationError{Field: "frame_rate", Reason: fmt.Sprintf("must be positive, got %g", s.FrameRate)}
	}
	n := len(s.Left.Contact)
	for _, leg := range Legs() {
		ls := s.Leg(leg)
		if len(ls.Contact) != n {
			return &config.ValidationError{Field: string(leg) + ".contact", Reason: fmt.Sprintf("length %d does not match left contact length %d", len(ls.Contact), n)}
		}
		for joint, angles := range ls.Angles {
			if len(angles) != n {
				return &config.ValidationError{Field: fmt.Sprintf("%s.%s", leg, joint), Reason: fmt.Sprintf("length %d does not match contact length %d", len(angles), n)}
			}
		}
	}
	return nil
}

// Event is a gait event for one leg. Only initial contacts are detected from
// contact flags; the other phase events are derived from detected cycles.
type Event struct {
	Frame int       `json:"frame"`
	Time  float64   `json:"time_s"`
	Type  phase.Tag `json:"type"`
	Leg   Leg       `json:"leg"`
}

// Cycle is one stride of a leg, from an initial contact to the next one.
// Angles include both boundary frames.
type Cycle struct {
	Leg        Leg                        `json:"leg"`
	StartFrame int                        `json:"start_frame"`
	EndFrame   int                        `json:"end_frame"`
	StartTime  float64                    `json:"start_time_s"`
	EndTime    float64                    `json:"end_time_s"`
	Duration   float64                    `json:"duration_s"`
	Angles     map[config.Joint][]float64 `json:"-"`
}

// NormalizedCycle is a Cycle resampled to Points equally spaced positions.
type NormalizedCycle struct {
	Leg      Leg                        `json:"leg"`
	Duration float64                    `json:"duration_s"`
	Points   int                        `json:"points"`
	Angles   map[config.Joint][]float64 `json:"angles"`
}

// Bounds is the accepted cycle duration interval in seconds, inclusive.
type Bounds struct {
	Min float64 `json:"min_s"`
	Max float64 `json:"max_s"`
}

// DefaultBounds is the fixed walking validity window.
var DefaultBounds = Bounds{Min: 0.8, Max: 1.5}

// Contains reports whether d lies within the bounds.
func (b Bounds) Contains(d float64) bool { return d >= b.Min && d <= b.Max }

// BoundsFromNominal derives a window of nominal ± tolerance (fraction of nominal).
func BoundsFromNominal(nominal, tolerance float64) Bounds {
	return Bounds{Min: nominal * (1 - tolerance), Max: nominal * (1 + tolerance)}
}

// BoundsForMode keeps the fixed window for walking and derives one from the
// nominal cycle duration for faster modes, whose strides are shorter than 0.8s.
func BoundsForMode(cfg config.ModeConfig) Bounds {
	if cfg.Mode == config.ModeWalk && DefaultBounds.Contains(cfg.CycleDuration) {
		return DefaultBounds
	}
	return BoundsFromNominal(cfg.CycleDuration, cfg.CycleTolerance)
}
