package gaitnotes

import (
	"fmt"
	"math"
	"strings"

	"github.com/lucasjlepore/gait-analyzer/config"
	"github.com/lucasjlepore/gait-analyzer/cycle"
	"github.com/lucasjlepore/gait-analyzer/rom"
)

// BuildGaitNotes turns an analysis into a markdown summary.
func BuildGaitNotes(a *Analysis) string {
	if a == nil {
		return ""
	}

	var b strings.Builder

	fmt.Fprintf(&b, "# Gait analysis: %s\n\n", a.Mode)
	if a.Source != "" {
		fmt.Fprintf(&b, "Source: %s\n", a.Source)
	}
	if a.Frames > 0 {
		fmt.Fprintf(
			&b,
			"Capture %.1f s at %.0f Hz | %d frames | cycle window %.2f-%.2f s\n",
			a.DurationSeconds,
			a.FrameRate,
			a.Frames,
			a.CycleBounds.Min,
			a.CycleBounds.Max,
		)
		st := a.CycleStats
		fmt.Fprintf(
			&b,
			"Cycles L %d / R %d (rejected %d) | duration %.2f ± %.2f s | cadence %.1f strides/min\n",
			st.Left,
			st.Right,
			st.Rejected,
			st.MeanDurationSeconds,
			st.StdDurationSeconds,
			st.CadenceSPM,
		)
	} else {
		fmt.Fprintf(&b, "Single synthesized cycle (%d points)\n", a.Averages.Points)
	}
	fmt.Fprintf(&b, "Overall data quality: %s\n", a.OverallQuality)

	if len(a.ROM) > 0 {
		b.WriteString("\n## Range of motion\n\n")
		b.WriteString("| Joint | Left | Right | Asymmetry | Average | Quality | Method |\n")
		b.WriteString("|---|---|---|---|---|---|---|\n")
		for _, r := range a.ROM {
			fmt.Fprintf(
				&b,
				"| %s | %.1f° | %.1f° | %.1f° | %.1f° | %s | %s |\n",
				r.Joint,
				r.Left.TotalROM,
				r.Right.TotalROM,
				r.Asymmetry,
				r.AverageROM,
				r.DataQuality,
				methodLabel(r),
			)
		}
		b.WriteString("\n")
		for _, r := range a.ROM {
			pos, neg := directionNames(r.Joint)
			fmt.Fprintf(
				&b,
				"- %s: zero L %.1f° / R %.1f°, max %s L %.1f° / R %.1f°, max %s L %.1f° / R %.1f°\n",
				titleCase(string(r.Joint)),
				r.Left.AnatomicalZero, r.Right.AnatomicalZero,
				pos, r.Left.MaxFlexion, r.Right.MaxFlexion,
				neg, r.Left.MaxExtension, r.Right.MaxExtension,
			)
		}
	}

	if len(a.Structure.Blocks) > 0 {
		b.WriteString("\n## Phases\n\n")
		for _, blk := range a.Structure.Blocks {
			side := "swing"
			if blk.Stance {
				side = "stance"
			}
			fmt.Fprintf(&b, "- %s %s (%g-%g%%, %s)", blk.Tag, blk.Name, blk.StartPct, blk.EndPct, side)
			if means := blockMeans(blk, cycle.LegLeft); means != "" {
				fmt.Fprintf(&b, ": left %s", means)
			}
			b.WriteString("\n")
		}
		if len(a.Structure.Peaks) > 0 {
			b.WriteString("\nPeak angles:\n")
			for _, p := range a.Structure.Peaks {
				fmt.Fprintf(&b, "- %s %s %.1f° at %.0f%% (%s)\n", p.Leg, p.Joint, p.Value, p.Percent, p.Phase)
			}
		}
	}

	if len(a.Recommendations) > 0 {
		b.WriteString("\n## Recommendations\n\n")
		for _, jr := range a.Recommendations {
			for _, item := range jr.Items {
				fmt.Fprintf(&b, "- %s\n", item)
			}
		}
	}

	if len(a.Warnings) > 0 {
		b.WriteString("\n## Warnings\n\n")
		for _, w := range a.Warnings {
			fmt.Fprintf(&b, "- %s\n", w)
		}
	}
	return b.String()
}

func methodLabel(r rom.Analysis) string {
	if r.Left.Method == r.Right.Method {
		return string(r.Left.Method)
	}
	return fmt.Sprintf("%s / %s", r.Left.Method, r.Right.Method)
}

func directionNames(j config.Joint) (string, string) {
	p, err := rom.ProfileFor(j)
	if err != nil {
		return "flexion", "extension"
	}
	return p.Positive, p.Negative
}

func blockMeans(blk PhaseBlock, leg cycle.Leg) string {
	parts := make([]string, 0, 3)
	for _, st := range blk.Stats {
		if st.Leg != leg {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s %.1f°", st.Joint, st.Mean))
	}
	return strings.Join(parts, ", ")
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
