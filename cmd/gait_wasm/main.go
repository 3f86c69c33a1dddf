//go:build js && wasm

package main

import (
	"archive/zip"
	"bytes"
	"fmt"
	"sort"
	"syscall/js"
	"time"

	"github.com/lucasjlepore/gait-analyzer/pipeline"
)

func main() {
	js.Global().Set("analyzeGait", js.FuncOf(analyzeGait))
	select {}
}

// analyzeGait(options, fitBytes?) runs the pipeline and returns a zip of all
// artifacts. fitBytes is an optional Uint8Array used to pace the capture.
func analyzeGait(_ js.Value, args []js.Value) any {
	if len(args) < 1 {
		return failure("expected arguments: options(object), fitBytes(Uint8Array, optional)")
	}
	optsArg := args[0]

	seed, err := pipeline.SeedFromFloat(getFloat(optsArg, "seed"))
	if err != nil {
		return failure(err.Error())
	}
	opts := pipeline.BytesOptions{
		Mode:      getString(optsArg, "mode", ""),
		Format:    getString(optsArg, "format", "csv"),
		Seed:      seed,
		DurationS: getFloat(optsArg, "duration_s"),
		Asymmetry: getFloat(optsArg, "asymmetry"),
		FITName:   getString(optsArg, "fit_file_name", "activity.fit"),
	}
	if cfg := getString(optsArg, "config_json", ""); cfg != "" {
		opts.ConfigJSON = []byte(cfg)
	}
	if len(args) > 1 {
		fitArg := args[1]
		if !fitArg.IsUndefined() && !fitArg.IsNull() && fitArg.Get("length").Int() > 0 {
			opts.FITData = make([]byte, fitArg.Get("length").Int())
			if n := js.CopyBytesToGo(opts.FITData, fitArg); n == 0 {
				return failure("failed to read FIT bytes from JS input")
			}
		}
	}

	result, err := pipeline.RunBytes(opts)
	if err != nil {
		return failure(err.Error())
	}

	zipBytes, err := zipArtifacts(result.Files)
	if err != nil {
		return failure(fmt.Sprintf("create zip: %v", err))
	}
	payload := js.Global().Get("Uint8Array").New(len(zipBytes))
	js.CopyBytesToJS(payload, zipBytes)

	return map[string]any{
		"ok":       true,
		"run_id":   result.RunID,
		"mode":     result.Mode,
		"seed":     float64(result.Seed),
		"zip":      payload,
		"warnings": stringsToAny(result.Warnings),
		"files":    stringsToAny(sortedNames(result.Files)),
	}
}

func failure(msg string) map[string]any {
	return map[string]any{"ok": false, "error": msg}
}

func zipArtifacts(files map[string][]byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	epoch := time.Unix(0, 0).UTC()

	for _, name := range sortedNames(files) {
		h := &zip.FileHeader{Name: name, Method: zip.Deflate}
		h.SetModTime(epoch)
		w, err := zw.CreateHeader(h)
		if err != nil {
			return nil, err
		}
		if _, err := w.Write(files[name]); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func sortedNames(files map[string][]byte) []string {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func getString(v js.Value, key, fallback string) string {
	if v.IsUndefined() || v.IsNull() {
		return fallback
	}
	out := v.Get(key)
	if out.IsUndefined() || out.IsNull() || out.Type() != js.TypeString {
		return fallback
	}
	if s := out.String(); s != "" {
		return s
	}
	return fallback
}

func getFloat(v js.Value, key string) float64 {
	if v.IsUndefined() || v.IsNull() {
		return 0
	}
	out := v.Get(key)
	if out.IsUndefined() || out.IsNull() || out.Type() != js.TypeNumber {
		return 0
	}
	return out.Float()
}

func stringsToAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
