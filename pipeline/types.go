package pipeline

import (
	"time"

	"github.com/lucasjlepore/gait-analyzer/config"
	"github.com/lucasjlepore/gait-analyzer/fitstride"
)

const manifestSchemaVersion = "gait_run_v1"

// Artifact names produced by every run.
const (
	KneeCSVName    = "knee_angles.csv"
	HipCSVName     = "hip_angles.csv"
	AnkleCSVName   = "ankle_angles.csv"
	FramesBaseName = "frames"
	AnalysisName   = "analysis.json"
	SummaryName    = "gait_summary.md"
	PlotName       = "averaged_cycle.png"
	DashboardName  = "dashboard.html"
	ManifestName   = "manifest.json"
)

// Options configures the gait_analyze pipeline.
type Options struct {
	Mode       string // walk|run|sprint; empty uses the FIT suggestion or walk
	OutDir     string
	Format     string // parquet|csv
	Seed       uint64 // 0 draws a random seed, recorded in the manifest
	DurationS  float64
	Asymmetry  float64
	FITPath    string // optional activity used to pace the capture
	ConfigPath string // optional JSON mode overrides
	Overwrite  bool
}

// BytesOptions is Options for in-memory callers such as the wasm entry point.
type BytesOptions struct {
	Mode       string
	Format     string
	Seed       uint64
	DurationS  float64
	Asymmetry  float64
	FITName    string
	FITData    []byte
	ConfigJSON []byte
}

// Result returns generated output paths.
type Result struct {
	OutputDir     string   `json:"output_dir"`
	RunID         string   `json:"run_id"`
	Mode          string   `json:"mode"`
	Seed          uint64   `json:"seed"`
	ManifestPath  string   `json:"manifest_path"`
	KneeCSVPath   string   `json:"knee_csv_path"`
	HipCSVPath    string   `json:"hip_csv_path"`
	AnkleCSVPath  string   `json:"ankle_csv_path"`
	FramesPath    string   `json:"frames_path"`
	AnalysisPath  string   `json:"analysis_path"`
	SummaryPath   string   `json:"summary_path"`
	PlotPath      string   `json:"plot_path"`
	DashboardPath string   `json:"dashboard_path"`
	Warnings      []string `json:"warnings,omitempty"`
}

// BytesResult holds every artifact keyed by file name.
type BytesResult struct {
	RunID    string            `json:"run_id"`
	Mode     string            `json:"mode"`
	Seed     uint64            `json:"seed"`
	Files    map[string][]byte `json:"-"`
	Warnings []string          `json:"warnings,omitempty"`
}

// Manifest describes one run and fingerprints its artifacts.
type Manifest struct {
	SchemaVersion string             `json:"schema_version"`
	RunID         string             `json:"run_id"`
	CreatedAt     time.Time          `json:"created_at"`
	Mode          config.Mode        `json:"mode"`
	Seed          uint64             `json:"seed"`
	DurationS     float64            `json:"duration_s"`
	FrameRate     float64            `json:"frame_rate_hz"`
	CycleDuration float64            `json:"cycle_duration_s"`
	Format        string             `json:"format"`
	Source        string             `json:"source"`
	Stride        *fitstride.Profile `json:"stride,omitempty"`
	Files         []ManifestFile     `json:"files"`
	Warnings      []string           `json:"warnings,omitempty"`
}

// ManifestFile is one artifact entry of the manifest.
type ManifestFile struct {
	Name   string `json:"name"`
	Bytes  int    `json:"bytes"`
	SHA256 string `json:"sha256"`
}

// FrameSample is one row of the per-frame export. Phase is the sub-phase of
// the frame within its leg's accepted cycle; frames outside any accepted
// cycle carry an empty phase and cycle -1.
type FrameSample struct {
	Frame        int     `json:"frame"`
	TimeS        float64 `json:"time_s"`
	LeftContact  bool    `json:"left_contact"`
	RightContact bool    `json:"right_contact"`
	LeftHip      float64 `json:"left_hip_deg"`
	LeftKnee     float64 `json:"left_knee_deg"`
	LeftAnkle    float64 `json:"left_ankle_deg"`
	RightHip     float64 `json:"right_hip_deg"`
	RightKnee    float64 `json:"right_knee_deg"`
	RightAnkle   float64 `json:"right_ankle_deg"`
	LeftPhase    string  `json:"left_phase"`
	RightPhase   string  `json:"right_phase"`
	LeftCycle    int     `json:"left_cycle"`
	RightCycle   int     `json:"right_cycle"`
}
