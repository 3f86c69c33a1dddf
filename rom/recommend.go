package rom

import (
	"fmt"
	"strings"

	"github.com/lucasjlepore/gait-analyzer/config"
)

// Recommendations turns an analysis into advisory strings. Range checks come
// first, then asymmetry, then data quality.
func (e *Engine) Recommendations(a Analysis) []string {
	p := e.profile
	jc := e.joint
	name := titleJoint(a.Joint)
	out := make([]string, 0, 4)

	switch {
	case a.AverageROM < jc.NormalROM.Min:
		out = append(out, fmt.Sprintf(
			"Reduced %s range of motion (%.1f° vs normal %.0f-%.0f°): consider mobility work targeting %s and %s.",
			strings.ToLower(name), a.AverageROM, jc.NormalROM.Min, jc.NormalROM.Max, p.Positive, p.Negative,
		))
	case a.AverageROM > jc.NormalROM.Max:
		out = append(out, fmt.Sprintf(
			"Excessive %s range of motion (%.1f° vs normal %.0f-%.0f°): check for joint laxity or compensatory %s.",
			strings.ToLower(name), a.AverageROM, jc.NormalROM.Min, jc.NormalROM.Max, p.Positive,
		))
	}

	switch {
	case a.Asymmetry >= jc.HighAsymmetry:
		out = append(out, fmt.Sprintf(
			"High %s asymmetry (%.1f°; left %.1f° vs right %.1f°): a clinical gait assessment is recommended.",
			strings.ToLower(name), a.Asymmetry, a.Left.TotalROM, a.Right.TotalROM,
		))
	case a.Asymmetry >= jc.ModerateAsymmetry:
		out = append(out, fmt.Sprintf(
			"Moderate %s asymmetry (%.1f°): monitor and consider unilateral work on the %s side.",
			strings.ToLower(name), a.Asymmetry, weakerSide(a),
		))
	}

	if a.DataQuality == QualityPoor || a.DataQuality == QualityFair {
		out = append(out, fmt.Sprintf(
			"%s data quality is %s: capture additional gait cycles before drawing conclusions.",
			name, a.DataQuality,
		))
	}

	if len(out) == 0 {
		out = append(out, fmt.Sprintf("%s range of motion and symmetry are within normal limits.", name))
	}
	return out
}

func weakerSide(a Analysis) string {
	if a.Left.TotalROM < a.Right.TotalROM {
		return "left"
	}
	return "right"
}

func titleJoint(j config.Joint) string {
	s := string(j)
	if s == "" {
		return "Joint"
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
