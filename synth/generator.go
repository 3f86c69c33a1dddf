// Package synth produces plausible bilateral joint-angle streams for each gait
// mode: a deterministic waveform per joint plus bounded noise drawn from an
// injected random source.
package synth

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/lucasjlepore/gait-analyzer/config"
	"github.com/lucasjlepore/gait-analyzer/cycle"
)

// Options tune the generated data.
type Options struct {
	// Noise is the half-width in degrees of the uniform noise added per frame.
	Noise float64 `json:"noise_deg"`
	// Asymmetry shrinks the right leg's excursion by this fraction (0..0.5).
	Asymmetry float64 `json:"asymmetry"`
	// CycleJitter varies each stride's duration by up to ± this fraction.
	CycleJitter float64 `json:"cycle_jitter"`
	// StartPhase is the left leg's cycle fraction at frame 0. Starting in swing
	// makes the first initial contact fall inside the capture.
	StartPhase float64 `json:"start_phase"`
}

// DefaultOptions are used by the CLIs.
func DefaultOptions() Options {
	return Options{Noise: 0.5, CycleJitter: 0.03, StartPhase: 0.75}
}

// Generator synthesizes angles for one mode. It is not safe for concurrent use
// because it draws from a shared *rand.Rand.
type Generator struct {
	cfg  config.ModeConfig
	opts Options
	rng  *rand.Rand
}

// NewRand returns a deterministic source for seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// New builds a generator. A nil rng draws a fresh random seed.
func New(cfg config.ModeConfig, opts Options, rng *rand.Rand) (*Generator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if opts.Noise < 0 {
		return nil, &config.ConfigurationError{Field: "noise_deg", Reason: fmt.Sprintf("must be >= 0, got %g", opts.Noise)}
	}
	if opts.Asymmetry < 0 || opts.Asymmetry > 0.5 {
		return nil, &config.ConfigurationError{Field: "asymmetry", Reason: fmt.Sprintf("must be within [0, 0.5], got %g", opts.Asymmetry)}
	}
	if opts.CycleJitter < 0 || opts.CycleJitter >= 0.5 {
		return nil, &config.ConfigurationError{Field: "cycle_jitter", Reason: fmt.Sprintf("must be within [0, 0.5), got %g", opts.CycleJitter)}
	}
	if rng == nil {
		rng = NewRand(rand.Uint64())
	}
	return &Generator{cfg: cfg, opts: opts, rng: rng}, nil
}

func (g *Generator) gain(leg cycle.Leg) float64 {
	if leg == cycle.LegRight {
		return 1 - g.opts.Asymmetry
	}
	return 1
}

func (g *Generator) noise() float64 {
	if g.opts.Noise == 0 {
		return 0
	}
	return (g.rng.Float64()*2 - 1) * g.opts.Noise
}

// Angle is one noisy sample of joint for leg at cycle fraction phi, clamped to
// the joint's physiological bounds.
func (g *Generator) Angle(leg cycle.Leg, joint config.Joint, phi float64) float64 {
	v := Waveform(g.cfg.Mode, joint, phi, g.gain(leg)) + g.noise()
	jc, err := g.cfg.Joint(joint)
	if err != nil {
		return v
	}
	return jc.Bounds.Clamp(v)
}

// Cycle synthesizes one already-normalized cycle of joint for both legs,
// skipping detection. points < 2 uses cycle.DefaultPoints.
func (g *Generator) Cycle(joint config.Joint, points int) (left, right []float64) {
	if points < 2 {
		points = cycle.DefaultPoints
	}
	left = make([]float64, points)
	right = make([]float64, points)
	for i := range points {
		phi := float64(i) / float64(points-1)
		left[i] = g.Angle(cycle.LegLeft, joint, phi)
		right[i] = g.Angle(cycle.LegRight, joint, phi)
	}
	return left, right
}

// Stream synthesizes duration seconds of bilateral data at the mode's frame
// rate. The right leg runs half a cycle behind the left; each stride's length
// is jittered around the nominal cycle duration.
func (g *Generator) Stream(duration float64) (cycle.Stream, error) {
	if duration <= 0 || math.IsNaN(duration) {
		return cycle.Stream{}, &config.ConfigurationError{Field: "duration_s", Reason: fmt.Sprintf("must be positive, got %g", duration)}
	}
	rate := g.cfg.FrameRate
	frames := int(math.Round(duration * rate))
	stream := cycle.Stream{
		FrameRate: rate,
		Left:      newLegSeries(frames),
		Right:     newLegSeries(frames),
	}

	phases := g.leftPhases(frames)
	for i, phi := range phases {
		for _, leg := range cycle.Legs() {
			p := phi
			series := stream.Left
			if leg == cycle.LegRight {
				p = math.Mod(phi+0.5, 1)
				series = stream.Right
			}
			series.Contact[i] = p < g.cfg.StanceFraction
			for _, joint := range config.Joints() {
				series.Angles[joint][i] = g.Angle(leg, joint, p)
			}
		}
	}
	return stream, nil
}

// leftPhases walks stride by stride, advancing the cycle fraction by the frame
// period over that stride's (jittered) duration.
func (g *Generator) leftPhases(frames int) []float64 {
	out := make([]float64, frames)
	dt := 1 / g.cfg.FrameRate
	phi := g.opts.StartPhase - math.Floor(g.opts.StartPhase)
	stride := g.strideDuration()
	for i := range out {
		out[i] = phi
		phi += dt / stride
		if phi >= 1 {
			phi--
			stride = g.strideDuration()
		}
	}
	return out
}

func (g *Generator) strideDuration() float64 {
	j := g.opts.CycleJitter
	if j == 0 {
		return g.cfg.CycleDuration
	}
	return g.cfg.CycleDuration * (1 + (g.rng.Float64()*2-1)*j)
}

func newLegSeries(frames int) cycle.LegSeries {
	ls := cycle.LegSeries{
		Contact: make([]bool, frames),
		Angles:  make(map[config.Joint][]float64, len(config.Joints())),
	}
	for _, j := range config.Joints() {
		ls.Angles[j] = make([]float64, frames)
	}
	return ls
}
