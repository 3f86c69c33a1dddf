// Package pipeline runs a complete gait capture end to end and writes every
// artifact: per-joint CSVs, per-frame samples, analysis JSON, notes, a plot,
// an HTML dashboard and a manifest.
package pipeline

import (
	"bytes"
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	gaitnotes "github.com/lucasjlepore/gait-analyzer"
	"github.com/lucasjlepore/gait-analyzer/config"
	"github.com/lucasjlepore/gait-analyzer/cycle"
	"github.com/lucasjlepore/gait-analyzer/fitstride"
	"github.com/lucasjlepore/gait-analyzer/phase"
	"github.com/lucasjlepore/gait-analyzer/report"
	"github.com/lucasjlepore/gait-analyzer/synth"
)

const defaultDurationS = 10.0

// Run executes the full gait_analyze pipeline and writes all artifacts to OutDir.
func Run(opts Options) (*Result, error) {
	if strings.TrimSpace(opts.OutDir) == "" {
		return nil, fmt.Errorf("output directory is required")
	}
	if err := prepareOutDir(opts.OutDir, opts.Overwrite); err != nil {
		return nil, err
	}

	req := BytesOptions{
		Mode:      opts.Mode,
		Format:    opts.Format,
		Seed:      opts.Seed,
		DurationS: opts.DurationS,
		Asymmetry: opts.Asymmetry,
	}
	if strings.TrimSpace(opts.FITPath) != "" {
		data, err := os.ReadFile(opts.FITPath)
		if err != nil {
			return nil, fmt.Errorf("read FIT file: %w", err)
		}
		req.FITName = filepath.Base(opts.FITPath)
		req.FITData = data
	}
	if strings.TrimSpace(opts.ConfigPath) != "" {
		if _, err := config.LoadTable(opts.ConfigPath); err != nil {
			return nil, err
		}
		data, err := os.ReadFile(opts.ConfigPath)
		if err != nil {
			return nil, fmt.Errorf("read mode overrides: %w", err)
		}
		req.ConfigJSON = data
	}

	built, err := RunBytes(req)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(built.Files))
	for name := range built.Files {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(opts.OutDir, name), built.Files[name], 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", name, err)
		}
	}

	format := normalizeFormat(opts.Format)
	path := func(name string) string { return filepath.Join(opts.OutDir, name) }
	return &Result{
		OutputDir:     opts.OutDir,
		RunID:         built.RunID,
		Mode:          built.Mode,
		Seed:          built.Seed,
		ManifestPath:  path(ManifestName),
		KneeCSVPath:   path(KneeCSVName),
		HipCSVPath:    path(HipCSVName),
		AnkleCSVPath:  path(AnkleCSVName),
		FramesPath:    path(framesName(format)),
		AnalysisPath:  path(AnalysisName),
		SummaryPath:   path(SummaryName),
		PlotPath:      path(PlotName),
		DashboardPath: path(DashboardName),
		Warnings:      built.Warnings,
	}, nil
}

// RunBytes executes the pipeline in memory and returns the artifacts keyed by
// file name.
func RunBytes(opts BytesOptions) (*BytesResult, error) {
	format := normalizeFormat(opts.Format)
	if format != "parquet" && format != "csv" {
		return nil, fmt.Errorf("unsupported format %q (expected parquet|csv)", opts.Format)
	}
	if format == "parquet" && !parquetSupported() {
		return nil, fmt.Errorf("parquet output is not available in this build; use format csv")
	}
	duration := opts.DurationS
	if duration == 0 {
		duration = defaultDurationS
	}

	table, err := config.ParseTable(opts.ConfigJSON)
	if err != nil {
		return nil, fmt.Errorf("load mode table: %w", err)
	}

	var stride *fitstride.Profile
	source := "synthetic"
	if len(opts.FITData) > 0 {
		stride, err = fitstride.ReadBytes(opts.FITData)
		if err != nil {
			return nil, fmt.Errorf("read stride profile: %w", err)
		}
		source = "synthetic paced by " + nonEmpty(opts.FITName, "FIT activity")
	}

	mode, err := resolveMode(opts.Mode, stride)
	if err != nil {
		return nil, err
	}
	cfg, err := table.Get(mode)
	if err != nil {
		return nil, err
	}
	if stride != nil {
		cfg = stride.Apply(cfg)
	}

	seed := opts.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	simOpts := gaitnotes.DefaultSimOptions()
	simOpts.DurationSeconds = duration
	simOpts.Synth.Asymmetry = opts.Asymmetry
	stream, err := gaitnotes.Simulate(cfg, simOpts, synth.NewRand(seed))
	if err != nil {
		return nil, fmt.Errorf("simulate capture: %w", err)
	}

	analysis, err := gaitnotes.Analyze(stream, cfg, gaitnotes.Options{Source: source})
	if err != nil {
		return nil, fmt.Errorf("analyze capture: %w", err)
	}

	files, err := buildArtifacts(analysis, stream, cfg, format)
	if err != nil {
		return nil, err
	}

	warnings := append([]string(nil), analysis.Warnings...)
	if stride != nil && stride.StanceSamples == 0 {
		warnings = append(warnings, "FIT activity has no stance timing; using the mode's default stance fraction")
	}

	manifest := Manifest{
		SchemaVersion: manifestSchemaVersion,
		RunID:         uuid.NewString(),
		CreatedAt:     time.Now().UTC(),
		Mode:          mode,
		Seed:          seed,
		DurationS:     duration,
		FrameRate:     cfg.FrameRate,
		CycleDuration: cfg.CycleDuration,
		Format:        format,
		Source:        source,
		Stride:        stride,
		Files:         fingerprint(files),
		Warnings:      warnings,
	}
	data, err := marshalJSON(manifest)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", ManifestName, err)
	}
	files[ManifestName] = data

	return &BytesResult{
		RunID:    manifest.RunID,
		Mode:     string(mode),
		Seed:     seed,
		Files:    files,
		Warnings: warnings,
	}, nil
}

func buildArtifacts(a *gaitnotes.Analysis, stream cycle.Stream, cfg config.ModeConfig, format string) (map[string][]byte, error) {
	files := make(map[string][]byte, 10)
	cat := a.Catalog()

	cycleDuration := a.CycleStats.MeanDurationSeconds
	if cycleDuration <= 0 {
		cycleDuration = cfg.CycleDuration
	}
	table := func(j config.Joint) report.CycleTable {
		return report.CycleTable{
			Mode:          cfg.Mode,
			Joint:         j,
			CycleDuration: cycleDuration,
			Catalog:       cat,
			Left:          a.Averages.Series(cycle.LegLeft, j),
			Right:         a.Averages.Series(cycle.LegRight, j),
		}
	}

	var buf bytes.Buffer
	if err := report.WriteKneeCSV(&buf, table(config.JointKnee)); err != nil {
		return nil, fmt.Errorf("write %s: %w", KneeCSVName, err)
	}
	files[KneeCSVName] = cloneBytes(&buf)

	hip, _ := a.JointROM(config.JointHip)
	if err := report.WriteHipCSV(&buf, table(config.JointHip), hip.Left, hip.Right); err != nil {
		return nil, fmt.Errorf("write %s: %w", HipCSVName, err)
	}
	files[HipCSVName] = cloneBytes(&buf)

	ankle, _ := a.JointROM(config.JointAnkle)
	if err := report.WriteAnkleCSV(&buf, table(config.JointAnkle), ankle); err != nil {
		return nil, fmt.Errorf("write %s: %w", AnkleCSVName, err)
	}
	files[AnkleCSVName] = cloneBytes(&buf)

	samples := buildFrameSamples(stream, a.Cycles, cat)
	switch format {
	case "csv":
		if err := writeFramesCSV(&buf, samples); err != nil {
			return nil, fmt.Errorf("write frames csv: %w", err)
		}
		files[framesName(format)] = cloneBytes(&buf)
	case "parquet":
		data, err := marshalFramesParquet(samples)
		if err != nil {
			return nil, fmt.Errorf("write frames parquet: %w", err)
		}
		files[framesName(format)] = data
	}

	data, err := marshalJSON(a)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", AnalysisName, err)
	}
	files[AnalysisName] = data
	files[SummaryName] = []byte(a.Notes)

	png, err := report.RenderCyclePlot(a.Averages, cat, fmt.Sprintf("%s: averaged gait cycle", cfg.Mode))
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", PlotName, err)
	}
	files[PlotName] = png

	html, err := report.RenderDashboard(report.Dashboard{
		Title:    fmt.Sprintf("Gait analysis (%s)", cfg.Mode),
		Mode:     cfg.Mode,
		Averages: a.Averages,
		Catalog:  cat,
		ROM:      a.ROM,
	})
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", DashboardName, err)
	}
	files[DashboardName] = html
	return files, nil
}

// buildFrameSamples flattens the stream, tagging each frame with the phase it
// occupies inside its leg's accepted cycle.
func buildFrameSamples(s cycle.Stream, cycles []cycle.Cycle, cat phase.Catalog) []FrameSample {
	n := s.Frames()
	samples := make([]FrameSample, n)
	for i := range samples {
		samples[i] = FrameSample{
			Frame:        i,
			TimeS:        float64(i) / s.FrameRate,
			LeftContact:  s.Left.Contact[i],
			RightContact: s.Right.Contact[i],
			LeftHip:      angleAt(s.Left, config.JointHip, i),
			LeftKnee:     angleAt(s.Left, config.JointKnee, i),
			LeftAnkle:    angleAt(s.Left, config.JointAnkle, i),
			RightHip:     angleAt(s.Right, config.JointHip, i),
			RightKnee:    angleAt(s.Right, config.JointKnee, i),
			RightAnkle:   angleAt(s.Right, config.JointAnkle, i),
			LeftCycle:    -1,
			RightCycle:   -1,
		}
	}

	index := map[cycle.Leg]int{}
	for _, c := range cycles {
		k := index[c.Leg]
		index[c.Leg]++
		span := float64(c.EndFrame - c.StartFrame)
		for f := c.StartFrame; f < c.EndFrame && f < n; f++ {
			tag := string(cat.TagAt(float64(f-c.StartFrame) / span * 100))
			if c.Leg == cycle.LegRight {
				samples[f].RightPhase, samples[f].RightCycle = tag, k
			} else {
				samples[f].LeftPhase, samples[f].LeftCycle = tag, k
			}
		}
	}
	return samples
}

func angleAt(ls cycle.LegSeries, j config.Joint, i int) float64 {
	values := ls.Angles[j]
	if i >= len(values) {
		return 0
	}
	return values[i]
}

func writeFramesCSV(buf *bytes.Buffer, samples []FrameSample) error {
	w := csv.NewWriter(buf)
	header := []string{
		"frame", "time_s", "left_contact", "right_contact",
		"left_hip_deg", "left_knee_deg", "left_ankle_deg",
		"right_hip_deg", "right_knee_deg", "right_ankle_deg",
		"left_phase", "right_phase", "left_cycle", "right_cycle",
	}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, s := range samples {
		row := []string{
			strconv.Itoa(s.Frame),
			strconv.FormatFloat(s.TimeS, 'f', 4, 64),
			strconv.FormatBool(s.LeftContact),
			strconv.FormatBool(s.RightContact),
			formatFloat(s.LeftHip),
			formatFloat(s.LeftKnee),
			formatFloat(s.LeftAnkle),
			formatFloat(s.RightHip),
			formatFloat(s.RightKnee),
			formatFloat(s.RightAnkle),
			s.LeftPhase,
			s.RightPhase,
			strconv.Itoa(s.LeftCycle),
			strconv.Itoa(s.RightCycle),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func fingerprint(files map[string][]byte) []ManifestFile {
	out := make([]ManifestFile, 0, len(files))
	for name, data := range files {
		sum := sha256.Sum256(data)
		out = append(out, ManifestFile{Name: name, Bytes: len(data), SHA256: hex.EncodeToString(sum[:])})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// maxExactSeed is the largest integer a float64 (and so a JS number) holds exactly.
const maxExactSeed = 1 << 53

// SeedFromFloat converts a seed received as a floating-point number, as from a
// JS caller, rejecting values that are not exact non-negative integers.
func SeedFromFloat(v float64) (uint64, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("seed must be a finite number, got %v", v)
	}
	if v < 0 || v != math.Trunc(v) {
		return 0, fmt.Errorf("seed must be a non-negative integer, got %v", v)
	}
	if v > maxExactSeed {
		return 0, fmt.Errorf("seed %v exceeds %d and cannot be represented exactly", v, uint64(maxExactSeed))
	}
	return uint64(v), nil
}

func resolveMode(raw string, stride *fitstride.Profile) (config.Mode, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, "auto") {
		if stride != nil {
			return stride.SuggestMode(), nil
		}
		return config.ModeWalk, nil
	}
	return config.ParseMode(raw)
}

// prepareOutDir creates dir, refusing to write into a non-empty directory
// unless overwrite is set.
func prepareOutDir(dir string, overwrite bool) error {
	entries, err := os.ReadDir(dir)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
		return nil
	case err != nil:
		return fmt.Errorf("read output directory: %w", err)
	}
	if len(entries) > 0 && !overwrite {
		return fmt.Errorf("output directory %s is not empty (use overwrite)", dir)
	}
	return nil
}

func normalizeFormat(format string) string {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		return "parquet"
	}
	return format
}

func framesName(format string) string {
	if format == "csv" {
		return FramesBaseName + ".csv"
	}
	return FramesBaseName + ".parquet"
}

func marshalJSON(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

func cloneBytes(buf *bytes.Buffer) []byte {
	out := append([]byte(nil), buf.Bytes()...)
	buf.Reset()
	return out
}

func nonEmpty(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}
