package rom

import "github.com/lucasjlepore/gait-analyzer/config"

// Method records which estimator produced a Result.
type Method string

const (
	MethodPeakDetection      Method = "peak_detection"
	MethodPercentileFallback Method = "percentile_fallback"
)

// DataQuality is the categorical trust rating of a bilateral analysis.
type DataQuality string

const (
	QualityExcellent DataQuality = "excellent"
	QualityGood      DataQuality = "good"
	QualityFair      DataQuality = "fair"
	QualityPoor      DataQuality = "poor"
)

// Rank orders qualities from poor (0) to excellent (3).
func (q DataQuality) Rank() int {
	switch q {
	case QualityExcellent:
		return 3
	case QualityGood:
		return 2
	case QualityFair:
		return 1
	}
	return 0
}

// Peak is a local extreme of an angle series.
type Peak struct {
	Index      int     `json:"index"`
	Value      float64 `json:"value"`
	Confidence float64 `json:"confidence"`
}

// Peaks splits detected extremes by direction relative to the anatomical zero.
// For the ankle Positive holds dorsiflexion and Negative plantarflexion.
type Peaks struct {
	Positive []Peak `json:"positive"`
	Negative []Peak `json:"negative"`
}

// Result is the ROM estimate of one leg. For the ankle MaxFlexion holds the
// maximum dorsiflexion and MaxExtension the maximum plantarflexion.
type Result struct {
	AnatomicalZero float64 `json:"anatomical_zero"`
	MaxFlexion     float64 `json:"max_flexion"`
	MaxExtension   float64 `json:"max_extension"`
	TotalROM       float64 `json:"total_rom"`
	Method         Method  `json:"method"`
	Confidence     float64 `json:"confidence"`
	PositivePeaks  int     `json:"positive_peaks"`
	NegativePeaks  int     `json:"negative_peaks"`
}

// Analysis compares the two legs of one joint.
type Analysis struct {
	Joint       config.Joint `json:"joint"`
	Left        Result       `json:"left"`
	Right       Result       `json:"right"`
	Asymmetry   float64      `json:"asymmetry"`
	AverageROM  float64      `json:"average_rom"`
	DataQuality DataQuality  `json:"data_quality"`
}
