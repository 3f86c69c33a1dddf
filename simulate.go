package gaitnotes

import (
	"math/rand/v2"

	"github.com/lucasjlepore/gait-analyzer/config"
	"github.com/lucasjlepore/gait-analyzer/cycle"
	"github.com/lucasjlepore/gait-analyzer/synth"
)

// SimOptions describe a synthetic capture.
type SimOptions struct {
	DurationSeconds float64
	Synth           synth.Options
}

// DefaultSimOptions is a ten second capture with the generator defaults.
func DefaultSimOptions() SimOptions {
	return SimOptions{DurationSeconds: 10, Synth: synth.DefaultOptions()}
}

// Simulate generates a ready-to-analyze stream for cfg. A nil rng is seeded
// randomly.
func Simulate(cfg config.ModeConfig, opts SimOptions, rng *rand.Rand) (cycle.Stream, error) {
	g, err := synth.New(cfg, opts.Synth, rng)
	if err != nil {
		return cycle.Stream{}, err
	}
	return g.Stream(opts.DurationSeconds)
}

// SimulateCycle synthesizes one normalized cycle per joint and leg directly,
// bypassing cycle detection.
func SimulateCycle(cfg config.ModeConfig, opts synth.Options, rng *rand.Rand, points int) (cycle.Averages, error) {
	g, err := synth.New(cfg, opts, rng)
	if err != nil {
		return cycle.Averages{}, err
	}
	if points < 2 {
		points = cycle.DefaultPoints
	}
	avg := cycle.Averages{
		Points: points,
		Cycles: map[cycle.Leg]int{cycle.LegLeft: 1, cycle.LegRight: 1},
		Angles: map[cycle.Leg]map[config.Joint][]float64{
			cycle.LegLeft:  {},
			cycle.LegRight: {},
		},
	}
	for _, joint := range config.Joints() {
		left, right := g.Cycle(joint, points)
		avg.Angles[cycle.LegLeft][joint] = left
		avg.Angles[cycle.LegRight][joint] = right
	}
	return avg, nil
}
