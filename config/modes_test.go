package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTableIsValid(t *testing.T) {
	t.Parallel()

	table := DefaultTable()
	for _, mode := range Modes() {
		cfg, err := table.Get(mode)
		require.NoError(t, err)
		assert.Equal(t, mode, cfg.Mode)
		assert.NoError(t, cfg.Validate(), "mode %s", mode)
	}
}

func TestTableGetReturnsIndependentCopies(t *testing.T) {
	t.Parallel()

	table := DefaultTable()
	a, err := table.Get(ModeWalk)
	require.NoError(t, err)
	a.PhaseBoundaries[1] = 7
	a.Joints[JointKnee] = JointConfig{}

	b, err := table.Get(ModeWalk)
	require.NoError(t, err)
	assert.Equal(t, 2.0, b.PhaseBoundaries[1])
	assert.Equal(t, 75.0, b.Joints[JointKnee].Bounds.Max)
}

func TestUnknownModeFailsFast(t *testing.T) {
	t.Parallel()

	_, err := ParseMode("hop")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownMode))

	var cfgErr *ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "mode", cfgErr.Field)

	_, err = DefaultTable().Get(Mode("crawl"))
	assert.True(t, errors.Is(err, ErrUnknownMode))
}

func TestParseModeAndJoint(t *testing.T) {
	t.Parallel()

	m, err := ParseMode(" Sprint ")
	require.NoError(t, err)
	assert.Equal(t, ModeSprint, m)

	j, err := ParseJoint("ANKLE")
	require.NoError(t, err)
	assert.Equal(t, JointAnkle, j)

	_, err = ParseJoint("elbow")
	assert.True(t, errors.Is(err, ErrUnknownJoint))
}

func TestValidateBoundaries(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		edges   []float64
		wantErr bool
	}{
		{name: "valid", edges: []float64{0, 2, 12, 31, 50, 62, 75, 87, 100}},
		{name: "wrong count", edges: []float64{0, 50, 100}, wantErr: true},
		{name: "not starting at zero", edges: []float64{1, 2, 12, 31, 50, 62, 75, 87, 100}, wantErr: true},
		{name: "not ending at 100", edges: []float64{0, 2, 12, 31, 50, 62, 75, 87, 99}, wantErr: true},
		{name: "repeated edge", edges: []float64{0, 2, 12, 12, 50, 62, 75, 87, 100}, wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateBoundaries(tc.edges)
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRangeClamp(t *testing.T) {
	t.Parallel()

	r := Range{Min: -5, Max: 75}
	assert.Equal(t, -5.0, r.Clamp(-40))
	assert.Equal(t, 75.0, r.Clamp(90))
	assert.Equal(t, 12.5, r.Clamp(12.5))
	assert.Equal(t, []float64{-5, 0, 75}, r.ClampSeries([]float64{-10, 0, 100}))
}

func TestWithStride(t *testing.T) {
	t.Parallel()

	cfg, err := DefaultTable().Get(ModeRun)
	require.NoError(t, err)

	out := cfg.WithStride(0.7, 0.35)
	assert.Equal(t, 0.7, out.CycleDuration)
	assert.Equal(t, 0.35, out.StanceFraction)

	kept := cfg.WithStride(0, 1.5)
	assert.Equal(t, cfg.CycleDuration, kept.CycleDuration)
	assert.Equal(t, cfg.StanceFraction, kept.StanceFraction)
}

func TestLoadTableMergesPartialOverrides(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "modes.json")
	doc := `{
  "walk": {
    "frame_rate": 120,
    "joints": {"knee": {"normal_rom": {"min": 50, "max": 65}}}
  }
}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	table, err := LoadTable(path)
	require.NoError(t, err)

	walk, err := table.Get(ModeWalk)
	require.NoError(t, err)
	assert.Equal(t, 120.0, walk.FrameRate)
	assert.Equal(t, Range{Min: 50, Max: 65}, walk.Joints[JointKnee].NormalROM)
	assert.Equal(t, Range{Min: -5, Max: 75}, walk.Joints[JointKnee].Bounds)
	assert.Equal(t, 1.1, walk.CycleDuration)
}

func TestLoadTableRejectsInvalidOverrides(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	t.Run("bad boundaries", func(t *testing.T) {
		path := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"run":{"phase_boundaries":[0,10,5,30,40,50,60,70,100]}}`), 0o644))
		_, err := LoadTable(path)
		var cfgErr *ConfigurationError
		require.True(t, errors.As(err, &cfgErr))
		assert.Equal(t, "run.phase_boundaries", cfgErr.Field)
	})

	t.Run("unknown mode", func(t *testing.T) {
		path := filepath.Join(dir, "mode.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"skip":{"frame_rate":50}}`), 0o644))
		_, err := LoadTable(path)
		assert.True(t, errors.Is(err, ErrUnknownMode))
	})

	t.Run("wrong extension", func(t *testing.T) {
		_, err := LoadTable(filepath.Join(dir, "modes.yaml"))
		assert.Error(t, err)
	})

	t.Run("empty path returns defaults", func(t *testing.T) {
		table, err := LoadTable("")
		require.NoError(t, err)
		assert.Len(t, table, 3)
	})
}

func TestParseTable(t *testing.T) {
	t.Parallel()

	table, err := ParseTable(nil)
	require.NoError(t, err)
	assert.Len(t, table, 3)

	table, err = ParseTable([]byte(`{"sprint":{"min_cycles":6}}`))
	require.NoError(t, err)
	sprint, err := table.Get(ModeSprint)
	require.NoError(t, err)
	assert.Equal(t, 6, sprint.MinCycles)

	_, err = ParseTable([]byte(`{"walk":`))
	var cfgErr *ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)
}
