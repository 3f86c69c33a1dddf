package synth

import (
	"math"

	"github.com/lucasjlepore/gait-analyzer/config"
)

// bump is a Gaussian pulse on the cycle circle: amplitude at Center, width Sigma
// (both fractions of a cycle).
type bump struct {
	Amplitude float64
	Center    float64
	Sigma     float64
}

func (b bump) at(phi float64) float64 {
	d := phi - b.Center
	d -= math.Round(d)
	return b.Amplitude * math.Exp(-(d*d)/(2*b.Sigma*b.Sigma))
}

// shape holds the noiseless waveform parameters of one mode.
type shape struct {
	hipMean  float64
	hipAmp   float64
	hipPeak  float64
	knee     float64
	kneeBump []bump
	ankle    float64
	ankleBmp []bump
}

var shapes = map[config.Mode]shape{
	config.ModeWalk: {
		hipMean: 10, hipAmp: 21, hipPeak: 0.85,
		knee:     3,
		kneeBump: []bump{{15, 0.15, 0.06}, {58, 0.72, 0.1}},
		ankleBmp: []bump{{-6, 0.07, 0.04}, {12, 0.45, 0.1}, {-18, 0.63, 0.06}},
	},
	config.ModeRun: {
		hipMean: 15, hipAmp: 27, hipPeak: 0.85,
		knee:     5,
		kneeBump: []bump{{35, 0.15, 0.06}, {88, 0.68, 0.1}},
		ankleBmp: []bump{{-8, 0.05, 0.03}, {20, 0.3, 0.08}, {-22, 0.5, 0.07}},
	},
	config.ModeSprint: {
		hipMean: 22, hipAmp: 38, hipPeak: 0.83,
		knee:     5,
		kneeBump: []bump{{45, 0.12, 0.05}, {112, 0.65, 0.1}},
		ankleBmp: []bump{{-10, 0.04, 0.03}, {22, 0.22, 0.07}, {-26, 0.4, 0.07}},
	},
}

// Waveform is the noiseless angle of joint at cycle fraction phi (0 = initial
// contact) for mode, scaled by gain around the joint's neutral.
func Waveform(mode config.Mode, joint config.Joint, phi, gain float64) float64 {
	s, ok := shapes[mode]
	if !ok {
		s = shapes[config.ModeWalk]
	}
	phi -= math.Floor(phi)
	switch joint {
	case config.JointHip:
		return s.hipMean + gain*s.hipAmp*math.Cos(2*math.Pi*(phi-s.hipPeak))
	case config.JointKnee:
		v := 0.0
		for _, b := range s.kneeBump {
			v += b.at(phi)
		}
		return s.knee + gain*v
	case config.JointAnkle:
		v := 0.0
		for _, b := range s.ankleBmp {
			v += b.at(phi)
		}
		return s.ankle + gain*v
	}
	return 0
}
