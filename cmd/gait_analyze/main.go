package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lucasjlepore/gait-analyzer/pipeline"
)

func main() {
	var (
		mode      = flag.String("mode", "", "Gait mode: walk|run|sprint (default: suggested by --fit, else walk)")
		outDir    = flag.String("out", "", "Output directory")
		format    = flag.String("format", "parquet", "Per-frame sample format: parquet|csv")
		seed      = flag.Uint64("seed", 0, "Synthesis seed (0 picks one and records it in the manifest)")
		duration  = flag.Float64("duration", 10, "Capture length in seconds")
		asymmetry = flag.Float64("asymmetry", 0, "Right-leg amplitude reduction, 0-0.5")
		fitPath   = flag.String("fit", "", "Optional .fit activity whose cadence paces the capture")
		cfgPath   = flag.String("config", "", "Optional JSON mode overrides")
		overwrite = flag.Bool("overwrite", true, "Allow writing into non-empty output directories")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s --out outdir [--mode walk|run|sprint] [--fit activity.fit] [--format parquet|csv]\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	if strings.TrimSpace(*outDir) == "" {
		flag.Usage()
		os.Exit(2)
	}

	result, err := pipeline.Run(pipeline.Options{
		Mode:       *mode,
		OutDir:     *outDir,
		Format:     *format,
		Seed:       *seed,
		DurationS:  *duration,
		Asymmetry:  *asymmetry,
		FITPath:    *fitPath,
		ConfigPath: *cfgPath,
		Overwrite:  *overwrite,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "gait_analyze failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("gait_analyze complete (%s, seed %d)\n", result.Mode, result.Seed)
	fmt.Printf("Output dir:        %s\n", result.OutputDir)
	fmt.Printf("manifest.json:     %s\n", result.ManifestPath)
	fmt.Printf("knee angles:       %s\n", result.KneeCSVPath)
	fmt.Printf("hip angles:        %s\n", result.HipCSVPath)
	fmt.Printf("ankle angles:      %s\n", result.AnkleCSVPath)
	fmt.Printf("frames:            %s\n", result.FramesPath)
	fmt.Printf("analysis:          %s\n", result.AnalysisPath)
	fmt.Printf("summary:           %s\n", result.SummaryPath)
	fmt.Printf("plot:              %s\n", result.PlotPath)
	fmt.Printf("dashboard:         %s\n", result.DashboardPath)
	for _, w := range result.Warnings {
		fmt.Printf("warning:           %s\n", w)
	}
}
