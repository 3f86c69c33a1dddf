// Package fitstride derives stride timing from a FIT walking or running
// activity so synthetic captures can be paced like a real session.
package fitstride

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"time"

	"github.com/tormoder/fit"
	"gonum.org/v1/gonum/stat"

	"github.com/lucasjlepore/gait-analyzer/config"
)

// ErrNoCadence is returned when neither records nor the session carry cadence.
var ErrNoCadence = errors.New("activity has no usable cadence")

const (
	walkCadenceCeiling = 68.0 // strides/min
	runCadenceCeiling  = 90.0

	minStanceFraction = 0.1
	maxStanceFraction = 0.9
)

// Profile summarizes stride timing of one activity. Cadence is in strides
// (full cycles of one leg) per minute, which is how FIT stores running cadence.
type Profile struct {
	Sport          string    `json:"sport"`
	StartTime      time.Time `json:"start_time"`
	Cadence        float64   `json:"cadence_spm"`
	CycleDuration  float64   `json:"cycle_duration_s"`
	StanceFraction float64   `json:"stance_fraction,omitempty"`
	Samples        int       `json:"samples"`
	StanceSamples  int       `json:"stance_samples"`
}

// Read decodes the FIT file at path.
func Read(path string) (*Profile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open FIT file: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// ReadBytes decodes an in-memory FIT file.
func ReadBytes(data []byte) (*Profile, error) {
	return Decode(bytes.NewReader(data))
}

// Decode reads a FIT activity from r.
func Decode(r io.Reader) (*Profile, error) {
	decoded, err := fit.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode FIT file: %w", err)
	}
	activity, err := decoded.Activity()
	if err != nil {
		return nil, fmt.Errorf("activity FIT expected: %w", err)
	}
	return FromActivity(activity)
}

// FromActivity builds a profile from decoded activity messages. Record-level
// cadence wins over the session average; invalid-value sentinels are skipped.
func FromActivity(activity *fit.ActivityFile) (*Profile, error) {
	if activity == nil {
		return nil, fmt.Errorf("nil activity")
	}
	p := &Profile{}
	var sessionCadence float64
	if len(activity.Sessions) > 0 {
		session := activity.Sessions[0]
		p.Sport = fmt.Sprint(session.Sport)
		p.StartTime = validTimeOrZero(session.StartTime)
		sessionCadence = cadenceFromAny(session.GetAvgCadence())
	}

	cadences := make([]float64, 0, len(activity.Records))
	stances := make([]float64, 0, len(activity.Records))
	for _, rec := range activity.Records {
		if rec == nil {
			continue
		}
		cad, ok := extractCadence(rec)
		if !ok {
			continue
		}
		cadences = append(cadences, cad)
		if frac, ok := extractStanceFraction(rec, cad); ok {
			stances = append(stances, frac)
		}
	}

	p.Samples = len(cadences)
	p.StanceSamples = len(stances)
	switch {
	case len(cadences) > 0:
		p.Cadence = median(cadences)
	case sessionCadence > 0:
		p.Cadence = sessionCadence
	default:
		return nil, ErrNoCadence
	}
	p.CycleDuration = 60 / p.Cadence
	if len(stances) > 0 {
		p.StanceFraction = median(stances)
	}
	if p.StartTime.IsZero() && len(activity.Records) > 0 && activity.Records[0] != nil {
		p.StartTime = validTimeOrZero(activity.Records[0].Timestamp)
	}
	return p, nil
}

// SuggestMode maps cadence onto the closest gait mode.
func (p *Profile) SuggestMode() config.Mode {
	switch {
	case p.Cadence < walkCadenceCeiling:
		return config.ModeWalk
	case p.Cadence < runCadenceCeiling:
		return config.ModeRun
	default:
		return config.ModeSprint
	}
}

// Apply paces cfg with the measured stride; unmeasured values keep the defaults.
func (p *Profile) Apply(cfg config.ModeConfig) config.ModeConfig {
	return cfg.WithStride(p.CycleDuration, p.StanceFraction)
}

func extractCadence(rec *fit.RecordMsg) (float64, bool) {
	if rec.Cadence == math.MaxUint8 || rec.Cadence == 0 {
		return 0, false
	}
	cad := float64(rec.Cadence)
	if rec.FractionalCadence != math.MaxUint8 {
		cad += float64(rec.FractionalCadence) / 128
	}
	return cad, true
}

// extractStanceFraction prefers the device's stance percentage and otherwise
// divides stance time by the cycle period implied by cadence.
func extractStanceFraction(rec *fit.RecordMsg, cadence float64) (float64, bool) {
	var frac float64
	switch {
	case rec.StanceTimePercent != math.MaxUint16 && rec.StanceTimePercent != 0:
		frac = float64(rec.StanceTimePercent) / 100 / 100
	case rec.StanceTime != math.MaxUint16 && rec.StanceTime != 0 && cadence > 0:
		stanceMs := float64(rec.StanceTime) / 10
		frac = stanceMs / (60000 / cadence)
	default:
		return 0, false
	}
	if frac < minStanceFraction || frac > maxStanceFraction {
		return 0, false
	}
	return frac, true
}

func median(values []float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	return stat.Quantile(0.5, stat.Empirical, sorted, nil)
}

func validTimeOrZero(t time.Time) time.Time {
	if t.IsZero() || fit.IsBaseTime(t) {
		return time.Time{}
	}
	return t
}

func cadenceFromAny(v any) float64 {
	switch x := v.(type) {
	case uint8:
		if x == math.MaxUint8 {
			return 0
		}
		return float64(x)
	case uint16:
		if x == math.MaxUint16 {
			return 0
		}
		return float64(x)
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) || x <= 0 {
			return 0
		}
		return x
	default:
		return 0
	}
}
