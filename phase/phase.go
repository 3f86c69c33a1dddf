// Package phase maps positions within a normalized gait cycle (0-100%) to the
// eight canonical sub-phases.
package phase

import (
	"fmt"
	"sort"

	"github.com/lucasjlepore/gait-analyzer/config"
)

// Tag is the abbreviation of a gait sub-phase.
type Tag string

const (
	InitialContact  Tag = "IC"
	LoadingResponse Tag = "LR"
	MidStance       Tag = "MSt"
	TerminalStance  Tag = "TSt"
	PreSwing        Tag = "PSw"
	InitialSwing    Tag = "ISw"
	MidSwing        Tag = "MSw"
	TerminalSwing   Tag = "TSw"
)

// Width limits applied by ValidateTransitions, in cycle percent.
const (
	minTransitionPct = 5.0
	maxTransitionPct = 40.0
)

// Tags lists the sub-phases in cycle order.
func Tags() []Tag {
	return []Tag{InitialContact, LoadingResponse, MidStance, TerminalStance, PreSwing, InitialSwing, MidSwing, TerminalSwing}
}

var names = map[Tag]string{
	InitialContact:  "Initial Contact",
	LoadingResponse: "Loading Response",
	MidStance:       "Mid Stance",
	TerminalStance:  "Terminal Stance",
	PreSwing:        "Pre-Swing",
	InitialSwing:    "Initial Swing",
	MidSwing:        "Mid Swing",
	TerminalSwing:   "Terminal Swing",
}

var colors = map[Tag]string{
	InitialContact:  "#e74c3c",
	LoadingResponse: "#e67e22",
	MidStance:       "#f1c40f",
	TerminalStance:  "#2ecc71",
	PreSwing:        "#1abc9c",
	InitialSwing:    "#3498db",
	MidSwing:        "#9b59b6",
	TerminalSwing:   "#34495e",
}

// Name returns the long name of the tag.
func (t Tag) Name() string { return names[t] }

// Stance reports whether the tag belongs to the stance half of the cycle.
func (t Tag) Stance() bool {
	switch t {
	case InitialContact, LoadingResponse, MidStance, TerminalStance, PreSwing:
		return true
	}
	return false
}

// Phase is one entry of the catalog, covering [Start, End) percent of the cycle.
type Phase struct {
	Tag   Tag     `json:"tag"`
	Name  string  `json:"name"`
	Start float64 `json:"start_pct"`
	End   float64 `json:"end_pct"`
	Color string  `json:"color"`
}

// Width is the share of the cycle covered by the phase, in percent.
func (p Phase) Width() float64 { return p.End - p.Start }

// Catalog is the ordered, gap-free list of the eight phases.
type Catalog struct {
	phases []Phase
}

// DefaultCatalog builds the walking catalog from a fresh copy of the
// compiled-in mode table.
func DefaultCatalog() Catalog {
	cfg, err := config.DefaultTable().Get(config.ModeWalk)
	if err != nil {
		return Catalog{}
	}
	c, _ := ForMode(cfg)
	return c
}

// NewCatalog builds a catalog from 9 strictly increasing edges spanning 0..100.
func NewCatalog(boundaries []float64) (Catalog, error) {
	if err := config.ValidateBoundaries(boundaries); err != nil {
		return Catalog{}, &config.ConfigurationError{Field: "phase_boundaries", Reason: err.Error()}
	}
	tags := Tags()
	phases := make([]Phase, len(tags))
	for i, tag := range tags {
		phases[i] = Phase{
			Tag:   tag,
			Name:  tag.Name(),
			Start: boundaries[i],
			End:   boundaries[i+1],
			Color: colors[tag],
		}
	}
	return Catalog{phases: phases}, nil
}

// ForMode builds the catalog from the mode's phase boundaries.
func ForMode(cfg config.ModeConfig) (Catalog, error) {
	return NewCatalog(cfg.PhaseBoundaries)
}

// Phases returns a copy of the catalog entries.
func (c Catalog) Phases() []Phase {
	return append([]Phase(nil), c.phases...)
}

// At returns the phase containing percent. Intervals are half-open [start, end)
// except the last, which also owns 100.
func (c Catalog) At(percent float64) (Phase, bool) {
	n := len(c.phases)
	if n == 0 || percent < c.phases[0].Start || percent > c.phases[n-1].End {
		return Phase{}, false
	}
	for i, p := range c.phases {
		if percent >= p.Start && (percent < p.End || (i == n-1 && percent == p.End)) {
			return p, true
		}
	}
	return Phase{}, false
}

// TagAt is At reduced to the tag; positions outside the cycle yield "".
func (c Catalog) TagAt(percent float64) Tag {
	p, ok := c.At(percent)
	if !ok {
		return ""
	}
	return p.Tag
}

// Label tags each of points equally spaced positions spanning 0..100%.
func (c Catalog) Label(points int) []Tag {
	if points <= 0 {
		return nil
	}
	out := make([]Tag, points)
	for i := range out {
		out[i] = c.TagAt(PercentAt(i, points))
	}
	return out
}

// PercentAt converts index i of an n-point normalized cycle to a cycle percentage.
func PercentAt(i, n int) float64 {
	if n <= 1 {
		return 0
	}
	return float64(i) * 100 / float64(n-1)
}

// Marker is an overlay line at the start of a phase.
type Marker struct {
	Percent float64 `json:"percent"`
	Tag     Tag     `json:"tag"`
	Label   string  `json:"label"`
	Color   string  `json:"color"`
}

// Markers returns one marker per phase start, skipping the one at 0% which
// coincides with the cycle start.
func (c Catalog) Markers() []Marker {
	out := make([]Marker, 0, len(c.phases))
	for _, p := range c.phases {
		if p.Start == 0 {
			continue
		}
		out = append(out, Marker{
			Percent: p.Start,
			Tag:     p.Tag,
			Label:   fmt.Sprintf("%s (%g%%)", p.Tag, p.Start),
			Color:   p.Color,
		})
	}
	return out
}

// ValidateTransitions corrects empirically detected boundary percentages: the
// input is sorted ascending, then each boundary is clamped so that its distance
// to the previous (already corrected) boundary is between 5% and 40%.
// The input slice is not modified.
func ValidateTransitions(boundaries []float64) []float64 {
	out := append([]float64(nil), boundaries...)
	sort.Float64s(out)
	for i := 1; i < len(out); i++ {
		width := out[i] - out[i-1]
		switch {
		case width < minTransitionPct:
			out[i] = out[i-1] + minTransitionPct
		case width > maxTransitionPct:
			out[i] = out[i-1] + maxTransitionPct
		}
	}
	return out
}
