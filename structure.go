package gaitnotes

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/lucasjlepore/gait-analyzer/config"
	"github.com/lucasjlepore/gait-analyzer/cycle"
	"github.com/lucasjlepore/gait-analyzer/phase"
)

const phaseStructureSchemaVersion = "phase_structure_v1"

// PhaseStructure describes joint behaviour inside each gait sub-phase of the
// averaged cycle.
type PhaseStructure struct {
	SchemaVersion string       `json:"schema_version"`
	Points        int          `json:"points"`
	Blocks        []PhaseBlock `json:"blocks"`
	Peaks         []JointPeak  `json:"peaks"`
}

// PhaseBlock is one sub-phase with per joint and leg statistics. A block that
// no normalized point falls into has Points == 0 and no stats.
type PhaseBlock struct {
	Tag      phase.Tag    `json:"tag"`
	Name     string       `json:"name"`
	StartPct float64      `json:"start_pct"`
	EndPct   float64      `json:"end_pct"`
	Stance   bool         `json:"stance"`
	Points   int          `json:"points"`
	Stats    []PhaseStats `json:"stats,omitempty"`
}

// PhaseStats summarizes one joint of one leg over a phase block.
type PhaseStats struct {
	Joint     config.Joint `json:"joint"`
	Leg       cycle.Leg    `json:"leg"`
	Mean      float64      `json:"mean_deg"`
	Min       float64      `json:"min_deg"`
	Max       float64      `json:"max_deg"`
	Excursion float64      `json:"excursion_deg"`
}

// JointPeak locates the largest angle of a curve within the cycle.
type JointPeak struct {
	Joint   config.Joint `json:"joint"`
	Leg     cycle.Leg    `json:"leg"`
	Value   float64      `json:"value_deg"`
	Percent float64      `json:"percent"`
	Phase   phase.Tag    `json:"phase"`
}

// InferPhaseStructure groups the averaged curves by the phase each normalized
// point falls into.
func InferPhaseStructure(avg cycle.Averages, cat phase.Catalog) PhaseStructure {
	points := avg.Points
	if points < 2 {
		points = cycle.DefaultPoints
	}
	labels := cat.Label(points)

	ps := PhaseStructure{
		SchemaVersion: phaseStructureSchemaVersion,
		Points:        points,
	}
	for _, p := range cat.Phases() {
		block := PhaseBlock{
			Tag:      p.Tag,
			Name:     p.Name,
			StartPct: p.Start,
			EndPct:   p.End,
			Stance:   p.Tag.Stance(),
		}
		idx := indicesOf(labels, p.Tag)
		block.Points = len(idx)
		if len(idx) > 0 {
			for _, joint := range config.Joints() {
				for _, leg := range cycle.Legs() {
					block.Stats = append(block.Stats, blockStats(avg.Series(leg, joint), idx, joint, leg))
				}
			}
		}
		ps.Blocks = append(ps.Blocks, block)
	}

	for _, joint := range config.Joints() {
		for _, leg := range cycle.Legs() {
			series := avg.Series(leg, joint)
			if len(series) == 0 {
				continue
			}
			i := floats.MaxIdx(series)
			pct := phase.PercentAt(i, len(series))
			ps.Peaks = append(ps.Peaks, JointPeak{
				Joint:   joint,
				Leg:     leg,
				Value:   round1(series[i]),
				Percent: round1(pct),
				Phase:   cat.TagAt(pct),
			})
		}
	}
	return ps
}

func indicesOf(labels []phase.Tag, tag phase.Tag) []int {
	var out []int
	for i, l := range labels {
		if l == tag {
			out = append(out, i)
		}
	}
	return out
}

func blockStats(series []float64, idx []int, joint config.Joint, leg cycle.Leg) PhaseStats {
	values := make([]float64, 0, len(idx))
	for _, i := range idx {
		if i < len(series) {
			values = append(values, series[i])
		}
	}
	st := PhaseStats{Joint: joint, Leg: leg}
	if len(values) == 0 {
		return st
	}
	st.Mean = round1(stat.Mean(values, nil))
	st.Min = round1(floats.Min(values))
	st.Max = round1(floats.Max(values))
	st.Excursion = round1(st.Max - st.Min)
	return st
}
