package cycle

import (
	"math"
	"sort"

	"github.com/lucasjlepore/gait-analyzer/config"
	"github.com/lucasjlepore/gait-analyzer/phase"
)

// DetectInitialContacts emits an IC event at every false->true contact
// transition of either leg, ordered by frame (left before right on ties).
func DetectInitialContacts(s Stream) ([]Event, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	events := make([]Event, 0, 16)
	for _, leg := range Legs() {
		contact := s.Leg(leg).Contact
		for i := 1; i < len(contact); i++ {
			if contact[i] && !contact[i-1] {
				events = append(events, Event{
					Frame: i,
					Time:  float64(i) / s.FrameRate,
					Type:  phase.InitialContact,
					Leg:   leg,
				})
			}
		}
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Frame < events[j].Frame
	})
	return events, nil
}

// ExtractCycles pairs consecutive IC events of each leg into cycles, keeping
// only those whose duration falls within DefaultBounds.
func ExtractCycles(s Stream, events []Event) ([]Cycle, error) {
	return ExtractCyclesWithin(s, events, DefaultBounds)
}

// ExtractCyclesWithin is ExtractCycles with an explicit duration window.
// Cycles outside the window are dropped silently; callers that need a minimum
// count must check the length of the result.
func ExtractCyclesWithin(s Stream, events []Event, bounds Bounds) ([]Cycle, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	frames := s.Frames()
	cycles := make([]Cycle, 0, len(events))
	for _, leg := range Legs() {
		ics := make([]Event, 0, len(events))
		for _, e := range events {
			if e.Leg == leg && e.Type == phase.InitialContact {
				ics = append(ics, e)
			}
		}
		sort.SliceStable(ics, func(i, j int) bool { return ics[i].Frame < ics[j].Frame })

		series := s.Leg(leg)
		for k := 0; k+1 < len(ics); k++ {
			start, end := ics[k].Frame, ics[k+1].Frame
			if start < 0 || end <= start || end >= frames {
				continue
			}
			duration := float64(end-start) / s.FrameRate
			if !bounds.Contains(duration) {
				continue
			}
			angles := make(map[config.Joint][]float64, len(series.Angles))
			for joint, values := range series.Angles {
				angles[joint] = append([]float64(nil), values[start:end+1]...)
			}
			cycles = append(cycles, Cycle{
				Leg:        leg,
				StartFrame: start,
				EndFrame:   end,
				StartTime:  float64(start) / s.FrameRate,
				EndTime:    float64(end) / s.FrameRate,
				Duration:   duration,
				Angles:     angles,
			})
		}
	}
	return cycles, nil
}

// PhaseEvents derives one event per catalog phase for a detected cycle, placing
// each at the frame nearest to the phase start.
func PhaseEvents(c Cycle, cat phase.Catalog, frameRate float64) []Event {
	span := float64(c.EndFrame - c.StartFrame)
	phases := cat.Phases()
	out := make([]Event, 0, len(phases))
	for _, p := range phases {
		frame := c.StartFrame + int(math.Round(p.Start/100*span))
		ev := Event{Frame: frame, Type: p.Tag, Leg: c.Leg}
		if frameRate > 0 {
			ev.Time = float64(frame) / frameRate
		}
		out = append(out, ev)
	}
	return out
}
