package fitstride

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tormoder/fit"

	"github.com/lucasjlepore/gait-analyzer/config"
)

var fixtureStart = time.Date(2026, 3, 14, 7, 30, 0, 0, time.UTC)

func encodeActivity(t *testing.T, fill func(*fit.ActivityFile)) []byte {
	t.Helper()

	header := fit.NewHeader(fit.V20, true)
	file, err := fit.NewFile(fit.FileTypeActivity, header)
	require.NoError(t, err)
	activity, err := file.Activity()
	require.NoError(t, err)

	fill(activity)

	var buf bytes.Buffer
	require.NoError(t, fit.Encode(&buf, file, binary.LittleEndian))
	return buf.Bytes()
}

func record(offset time.Duration, cadence uint8) *fit.RecordMsg {
	rec := fit.NewRecordMsg()
	rec.Timestamp = fixtureStart.Add(offset)
	rec.Cadence = cadence
	return rec
}

func TestReadWalkingStancePercent(t *testing.T) {
	t.Parallel()

	data := encodeActivity(t, func(a *fit.ActivityFile) {
		for i, cad := range []uint8{54, 55, 55, 56, 55} {
			rec := record(time.Duration(i)*time.Second, cad)
			rec.StanceTimePercent = 6000
			a.Records = append(a.Records, rec)
		}
	})

	path := filepath.Join(t.TempDir(), "walk.fit")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	p, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, 5, p.Samples)
	assert.Equal(t, 5, p.StanceSamples)
	assert.InDelta(t, 55, p.Cadence, 1e-9)
	assert.InDelta(t, 60.0/55, p.CycleDuration, 1e-9)
	assert.InDelta(t, 0.6, p.StanceFraction, 1e-9)
	assert.Equal(t, config.ModeWalk, p.SuggestMode())
	assert.True(t, p.StartTime.Equal(fixtureStart))
}

func TestStanceFromStanceTime(t *testing.T) {
	t.Parallel()

	data := encodeActivity(t, func(a *fit.ActivityFile) {
		rec := record(0, 88)
		rec.StanceTime = 2500 // 250.0 ms
		a.Records = append(a.Records, rec)
	})

	p, err := ReadBytes(data)
	require.NoError(t, err)
	assert.InDelta(t, 250/(60000.0/88), p.StanceFraction, 1e-9)
	assert.Equal(t, config.ModeRun, p.SuggestMode())
}

func TestSessionCadenceFallback(t *testing.T) {
	t.Parallel()

	data := encodeActivity(t, func(a *fit.ActivityFile) {
		a.Records = append(a.Records, record(0, 0xFF))
		session := fit.NewSessionMsg()
		session.Timestamp = fixtureStart.Add(time.Minute)
		session.StartTime = fixtureStart
		session.Sport = fit.SportRunning
		session.AvgCadence = 95
		a.Sessions = append(a.Sessions, session)
	})

	p, err := ReadBytes(data)
	require.NoError(t, err)
	assert.Equal(t, 0, p.Samples)
	assert.InDelta(t, 95, p.Cadence, 1e-9)
	assert.Zero(t, p.StanceFraction)
	assert.Equal(t, config.ModeSprint, p.SuggestMode())
}

func TestNoCadence(t *testing.T) {
	t.Parallel()

	data := encodeActivity(t, func(a *fit.ActivityFile) {
		a.Records = append(a.Records, record(0, 0xFF))
	})
	_, err := ReadBytes(data)
	assert.ErrorIs(t, err, ErrNoCadence)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	t.Parallel()
	_, err := ReadBytes([]byte("not a fit file"))
	assert.Error(t, err)

	_, err = Read(filepath.Join(t.TempDir(), "missing.fit"))
	assert.Error(t, err)
}

func TestApplyKeepsDefaultsForMissingStance(t *testing.T) {
	t.Parallel()
	cfg, err := config.DefaultTable().Get(config.ModeRun)
	require.NoError(t, err)

	p := &Profile{Cadence: 80, CycleDuration: 0.75}
	got := p.Apply(cfg)
	assert.InDelta(t, 0.75, got.CycleDuration, 1e-9)
	assert.Equal(t, cfg.StanceFraction, got.StanceFraction)

	p.StanceFraction = 0.35
	assert.InDelta(t, 0.35, p.Apply(cfg).StanceFraction, 1e-9)
}
