// Package rom estimates joint range of motion from a single leg's angle series
// and compares both legs. One Engine serves every joint; the differences between
// hip, knee and ankle live in a Profile.
package rom

import (
	"github.com/lucasjlepore/gait-analyzer/config"
)

// Formula selects how total ROM is derived from the two extreme angles.
type Formula int

const (
	// NetExcursion reports ROM as maxPositive - maxNegative (hip, knee).
	NetExcursion Formula = iota
	// ZeroRelative reports ROM as |maxPositive - zero| + |maxNegative - zero|
	// for joints that move both ways around a true neutral (ankle).
	ZeroRelative
)

func (f Formula) String() string {
	if f == ZeroRelative {
		return "zero_relative"
	}
	return "net_excursion"
}

// Profile parameterizes the engine for one joint.
type Profile struct {
	Joint config.Joint
	// Window is the number of samples on each side a peak must dominate.
	Window int
	// ProminenceWindow is the context on each side used to score peak strength.
	ProminenceWindow int
	// StrongPeak is the prominence in degrees that earns full confidence.
	StrongPeak float64
	// ZeroFrames is how many leading samples define the anatomical zero.
	ZeroFrames int
	Formula    Formula
	// Positive and Negative name the motion directions ("flexion"/"extension").
	Positive string
	Negative string
}

const (
	defaultWindow           = 3
	defaultProminenceWindow = 25
	defaultStrongPeak       = 10.0
	defaultZeroFrames       = 15

	// PercentileConfidence is reported when ROM comes from the 5th/95th percentiles.
	PercentileConfidence = 0.7
	upperPercentile      = 0.95
	lowerPercentile      = 0.05
)

// HipProfile is the sagittal hip profile.
func HipProfile() Profile {
	return Profile{
		Joint:            config.JointHip,
		Window:           defaultWindow,
		ProminenceWindow: defaultProminenceWindow,
		StrongPeak:       defaultStrongPeak,
		ZeroFrames:       defaultZeroFrames,
		Formula:          NetExcursion,
		Positive:         "flexion",
		Negative:         "extension",
	}
}

// KneeProfile is the sagittal knee profile.
func KneeProfile() Profile {
	p := HipProfile()
	p.Joint = config.JointKnee
	return p
}

// AnkleProfile uses dorsiflexion/plantarflexion and the zero-relative formula.
func AnkleProfile() Profile {
	return Profile{
		Joint:            config.JointAnkle,
		Window:           defaultWindow,
		ProminenceWindow: defaultProminenceWindow,
		StrongPeak:       defaultStrongPeak,
		ZeroFrames:       defaultZeroFrames,
		Formula:          ZeroRelative,
		Positive:         "dorsiflexion",
		Negative:         "plantarflexion",
	}
}

// ProfileFor returns the built-in profile of j.
func ProfileFor(j config.Joint) (Profile, error) {
	switch j {
	case config.JointHip:
		return HipProfile(), nil
	case config.JointKnee:
		return KneeProfile(), nil
	case config.JointAnkle:
		return AnkleProfile(), nil
	}
	return Profile{}, &config.ConfigurationError{Field: "joint", Reason: string(j), Err: config.ErrUnknownJoint}
}

func (p Profile) withDefaults() Profile {
	if p.Window <= 0 {
		p.Window = defaultWindow
	}
	if p.ProminenceWindow <= 0 {
		p.ProminenceWindow = defaultProminenceWindow
	}
	if p.StrongPeak <= 0 {
		p.StrongPeak = defaultStrongPeak
	}
	if p.ZeroFrames <= 0 {
		p.ZeroFrames = defaultZeroFrames
	}
	if p.Positive == "" {
		p.Positive = "flexion"
	}
	if p.Negative == "" {
		p.Negative = "extension"
	}
	return p
}
