package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// ModeOverride mirrors ModeConfig with optional fields. Only fields present in the
// JSON file replace the compiled-in defaults, so partial files are safe.
type ModeOverride struct {
	FrameRate       *float64                `json:"frame_rate,omitempty"`
	CycleDuration   *float64                `json:"cycle_duration_s,omitempty"`
	CycleTolerance  *float64                `json:"cycle_tolerance,omitempty"`
	StanceFraction  *float64                `json:"stance_fraction,omitempty"`
	MinCycles       *int                    `json:"min_cycles,omitempty"`
	PhaseBoundaries []float64               `json:"phase_boundaries,omitempty"`
	Joints          map[Joint]JointOverride `json:"joints,omitempty"`
}

// JointOverride mirrors JointConfig with optional fields.
type JointOverride struct {
	Bounds            *Range             `json:"bounds,omitempty"`
	NormalROM         *Range             `json:"normal_rom,omitempty"`
	Quality           *QualityThresholds `json:"quality,omitempty"`
	ModerateAsymmetry *float64           `json:"moderate_asymmetry,omitempty"`
	HighAsymmetry     *float64           `json:"high_asymmetry,omitempty"`
}

// OverrideFile is the root of a mode override document, keyed by mode name.
type OverrideFile map[Mode]ModeOverride

const maxConfigFileSize = 1 * 1024 * 1024

// LoadTable reads a JSON override file and merges it onto DefaultTable.
// An empty path returns the defaults.
func LoadTable(path string) (Table, error) {
	table := DefaultTable()
	if path == "" {
		return table, nil
	}

	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, &ConfigurationError{Field: "config", Reason: fmt.Sprintf("file must have .json extension, got %q", ext)}
	}
	info, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("stat config file: %w", err)
	}
	if info.Size() > maxConfigFileSize {
		return nil, &ConfigurationError{Field: "config", Reason: fmt.Sprintf("file too large: %d bytes (max %d)", info.Size(), maxConfigFileSize)}
	}
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	table, err = ParseTable(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", cleanPath, err)
	}
	return table, nil
}

// ParseTable merges an in-memory JSON override document onto DefaultTable.
// Empty input returns the defaults.
func ParseTable(data []byte) (Table, error) {
	table := DefaultTable()
	if len(data) == 0 {
		return table, nil
	}
	if len(data) > maxConfigFileSize {
		return nil, &ConfigurationError{Field: "config", Reason: fmt.Sprintf("document too large: %d bytes (max %d)", len(data), maxConfigFileSize)}
	}
	var overrides OverrideFile
	if err := json.Unmarshal(data, &overrides); err != nil {
		return nil, &ConfigurationError{Field: "config", Reason: fmt.Sprintf("parse overrides: %v", err)}
	}
	if err := table.Apply(overrides); err != nil {
		return nil, err
	}
	return table, nil
}

// Apply merges overrides into the table in place and validates every touched mode.
func (t Table) Apply(overrides OverrideFile) error {
	for mode, o := range overrides {
		base, ok := t[mode]
		if !ok {
			return &ConfigurationError{Field: "mode", Reason: fmt.Sprintf("%q not configured", mode), Err: ErrUnknownMode}
		}
		merged := base.clone()
		if o.FrameRate != nil {
			merged.FrameRate = *o.FrameRate
		}
		if o.CycleDuration != nil {
			merged.CycleDuration = *o.CycleDuration
		}
		if o.CycleTolerance != nil {
			merged.CycleTolerance = *o.CycleTolerance
		}
		if o.StanceFraction != nil {
			merged.StanceFraction = *o.StanceFraction
		}
		if o.MinCycles != nil {
			merged.MinCycles = *o.MinCycles
		}
		if o.PhaseBoundaries != nil {
			merged.PhaseBoundaries = append([]float64(nil), o.PhaseBoundaries...)
		}
		for joint, jo := range o.Joints {
			jc, ok := merged.Joints[joint]
			if !ok {
				return &ConfigurationError{Field: string(mode) + ".joints", Reason: fmt.Sprintf("%q not recognised", joint), Err: ErrUnknownJoint}
			}
			if jo.Bounds != nil {
				jc.Bounds = *jo.Bounds
			}
			if jo.NormalROM != nil {
				jc.NormalROM = *jo.NormalROM
			}
			if jo.Quality != nil {
				jc.Quality = *jo.Quality
			}
			if jo.ModerateAsymmetry != nil {
				jc.ModerateAsymmetry = *jo.ModerateAsymmetry
			}
			if jo.HighAsymmetry != nil {
				jc.HighAsymmetry = *jo.HighAsymmetry
			}
			merged.Joints[joint] = jc
		}
		if err := merged.Validate(); err != nil {
			return err
		}
		t[mode] = merged
	}
	return nil
}
