package cycle

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/lucasjlepore/gait-analyzer/config"
)

// Resample linearly interpolates values onto points equally spaced positions
// spanning the whole input. A single sample is broadcast; an empty input
// yields zeros. points below 2 falls back to DefaultPoints.
func Resample(values []float64, points int) []float64 {
	if points < 2 {
		points = DefaultPoints
	}
	out := make([]float64, points)
	switch len(values) {
	case 0:
		return out
	case 1:
		for i := range out {
			out[i] = values[0]
		}
		return out
	}

	last := len(values) - 1
	positions := floats.Span(make([]float64, points), 0, float64(last))
	for i, x := range positions {
		lo := int(math.Floor(x))
		if lo >= last || i == points-1 {
			out[i] = values[last]
			continue
		}
		frac := x - float64(lo)
		out[i] = values[lo] + (values[lo+1]-values[lo])*frac
	}
	return out
}

// Normalize resamples every joint series of every cycle to points entries.
func Normalize(cycles []Cycle, points int) []NormalizedCycle {
	if points < 2 {
		points = DefaultPoints
	}
	out := make([]NormalizedCycle, 0, len(cycles))
	for _, c := range cycles {
		angles := make(map[config.Joint][]float64, len(c.Angles))
		for joint, values := range c.Angles {
			angles[joint] = Resample(values, points)
		}
		out = append(out, NormalizedCycle{
			Leg:      c.Leg,
			Duration: c.Duration,
			Points:   points,
			Angles:   angles,
		})
	}
	return out
}

// Averages holds the position-wise mean normalized cycle per leg and joint.
type Averages struct {
	Points int                                `json:"points"`
	Cycles map[Leg]int                        `json:"cycles"`
	Angles map[Leg]map[config.Joint][]float64 `json:"angles"`
}

// Series returns the averaged curve for one leg and joint; missing entries
// are returned as zeros of length Points.
func (a Averages) Series(leg Leg, joint config.Joint) []float64 {
	if s, ok := a.Angles[leg][joint]; ok {
		return s
	}
	return make([]float64, a.Points)
}

// AverageAngles averages normalized cycles position by position for each leg
// and joint. A leg or joint without cycles yields an all-zero series.
func AverageAngles(cycles []NormalizedCycle, points int) Averages {
	if points < 2 {
		points = DefaultPoints
	}
	avg := Averages{
		Points: points,
		Cycles: make(map[Leg]int, 2),
		Angles: make(map[Leg]map[config.Joint][]float64, 2),
	}
	for _, leg := range Legs() {
		sums := make(map[config.Joint][]float64, 3)
		counts := make(map[config.Joint]int, 3)
		for _, joint := range config.Joints() {
			sums[joint] = make([]float64, points)
		}
		for _, c := range cycles {
			if c.Leg != leg {
				continue
			}
			avg.Cycles[leg]++
			for joint, values := range c.Angles {
				if _, ok := sums[joint]; !ok {
					sums[joint] = make([]float64, points)
				}
				if len(values) != points {
					values = Resample(values, points)
				}
				floats.Add(sums[joint], values)
				counts[joint]++
			}
		}
		for joint, sum := range sums {
			if n := counts[joint]; n > 0 {
				floats.Scale(1/float64(n), sum)
			}
		}
		avg.Angles[leg] = sums
	}
	return avg
}
