package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blaubaer/voice-recorder/pkg/artifact"
	"github.com/blaubaer/voice-recorder/pkg/assess"
	"github.com/blaubaer/voice-recorder/pkg/audio"
	"github.com/blaubaer/voice-recorder/pkg/session"
	"github.com/blaubaer/voice-recorder/pkg/transcribe"
)

func TestConfiguration_saveTo_loadFrom(t *testing.T) {
	given := NewConfiguration()
	given.Duration = 30
	given.Audio.Source = audio.SourceSynthetic
	given.Audio.Device = "headset"
	given.Artifacts.Type = artifact.TypeDirectory
	given.Transcription.Type = transcribe.TypeHTTP
	given.Transcription.HTTP.URL = "http://localhost:9000/asr"
	given.Transcription.HTTP.Fields = map[string]string{"task": "transcribe"}
	given.Transcription.Timestamps = true
	given.Assessment.URL = "http://localhost:6000/assess"
	given.Assessment.Auto = true
	require.NoError(t, given.Audio.Exclude.Set("^Monitor of "))

	var buf strings.Builder
	require.NoError(t, given.saveTo(&buf))
	assert.Contains(t, buf.String(), "duration: \"30\"")
	assert.Contains(t, buf.String(), "source: synthetic")

	actual := NewConfiguration()
	require.NoError(t, actual.loadFrom(strings.NewReader(buf.String())))

	assert.Equal(t, given.Duration, actual.Duration)
	assert.Equal(t, given.Audio.Source, actual.Audio.Source)
	assert.Equal(t, given.Audio.Device, actual.Audio.Device)
	assert.Equal(t, "^Monitor of ", actual.Audio.Exclude.String())
	assert.Equal(t, given.Artifacts, actual.Artifacts)
	assert.Equal(t, given.Transcription, actual.Transcription)
	assert.Equal(t, given.Assessment, actual.Assessment)
	assert.Equal(t, given.Server, actual.Server)
	assert.Equal(t, given.Analysis, actual.Analysis)
}

func TestConfiguration_loadFrom_empty(t *testing.T) {
	actual := NewConfiguration()

	require.NoError(t, actual.loadFrom(strings.NewReader("")))

	assert.Equal(t, NewConfiguration(), actual)
}

func TestConfiguration_loadFrom_unknownField(t *testing.T) {
	actual := NewConfiguration()

	assert.Error(t, actual.loadFrom(strings.NewReader("foo: bar\n")))
}

func TestConfiguration_loadFrom_illegalDuration(t *testing.T) {
	actual := NewConfiguration()

	assert.Error(t, actual.loadFrom(strings.NewReader("duration: soon\n")))
}

func TestApp_SetupConfiguration(t *testing.T) {
	instance := NewApp()
	cmd := kingpin.New("test", "")
	instance.SetupConfiguration(cmd)

	_, err := cmd.Parse([]string{
		"-c", "my.yml",
		"-d", "15",
		"--audio.source=synthetic",
		"--audio.exclude=^Monitor",
		"--transcription.type=http",
		"--transcription.timestamps",
		"--assessment.url=http://localhost:6000/assess",
		"--server.listen=:9090",
	})
	require.NoError(t, err)

	assert.Equal(t, "my.yml", instance.ConfigurationFile)
	assert.Equal(t, session.Duration(15), instance.configFromFlags.Duration)
	assert.Equal(t, audio.SourceSynthetic, instance.configFromFlags.Audio.Source)
	assert.Equal(t, "^Monitor", instance.configFromFlags.Audio.Exclude.String())
	assert.Equal(t, transcribe.TypeHTTP, instance.configFromFlags.Transcription.Type)
	assert.True(t, instance.configFromFlags.Transcription.Timestamps)
	assert.Equal(t, "http://localhost:6000/assess", instance.configFromFlags.Assessment.URL)
	assert.Equal(t, ":9090", instance.configFromFlags.Server.Listen)
}

func newTestApp(t *testing.T, configuration string) *App {
	t.Helper()
	fn := filepath.Join(t.TempDir(), "configuration.yml")
	if configuration != "" {
		require.NoError(t, os.WriteFile(fn, []byte(configuration), 0600))
	}
	result := NewApp()
	result.ConfigurationFile = fn
	result.configFromFlags.Audio.Source = audio.SourceSynthetic
	result.configFromFlags.Audio.Synthetic.FragmentInterval = 5 * time.Millisecond
	return result
}

func TestApp_Initialize_savesAbsentConfiguration(t *testing.T) {
	instance := newTestApp(t, "")

	require.NoError(t, instance.Initialize())
	defer func() { assert.NoError(t, instance.Dispose()) }()

	saved := NewConfiguration()
	require.NoError(t, saved.loadFromFile(instance.ConfigurationFile, false))
	assert.Equal(t, audio.SourceSynthetic, saved.Audio.Source)
	assert.Equal(t, 5*time.Millisecond, saved.Audio.Synthetic.FragmentInterval)
}

func TestApp_Initialize_mergesFlagsOverFile(t *testing.T) {
	instance := newTestApp(t, `
duration: "10"
audio:
  source: device
  device: headset
  exclude: "^Monitor"
artifacts:
  type: memory
  memory:
    capacity: 3
`)
	instance.configFromFlags.Duration = 20

	require.NoError(t, instance.Initialize())
	defer func() { assert.NoError(t, instance.Dispose()) }()

	actual := instance.Configuration()
	assert.Equal(t, session.Duration(20), actual.Duration)
	assert.Equal(t, audio.SourceSynthetic, actual.Audio.Source)
	assert.Equal(t, "headset", actual.Audio.Device)
	assert.Equal(t, "^Monitor", actual.Audio.Exclude.String())
	assert.Equal(t, 3, actual.Artifacts.Memory.Capacity)
}

func TestApp_Initialize_preventAutoSave(t *testing.T) {
	instance := newTestApp(t, "")
	instance.configFromFlags.PreventAutoSave = true

	require.NoError(t, instance.Initialize())
	defer func() { assert.NoError(t, instance.Dispose()) }()

	_, err := os.Stat(instance.ConfigurationFile)
	assert.True(t, os.IsNotExist(err))
}

func TestApp_Initialize_illegalConfiguration(t *testing.T) {
	instance := newTestApp(t, "analysis:\n  fftSize: 1000\n")

	assert.Error(t, instance.Initialize())
}

func TestApp_recordAndTranscribe(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"text": "hello there"})
	}))
	defer server.Close()

	instance := newTestApp(t, "")
	instance.configFromFlags.PreventAutoSave = true
	instance.configFromFlags.Transcription.Type = transcribe.TypeHTTP
	instance.configFromFlags.Transcription.HTTP.URL = server.URL
	require.NoError(t, instance.Initialize())

	transcribed := make(chan transcribe.Result, 1)
	instance.OnTranscription(func(result transcribe.Result, err error) {
		assert.NoError(t, err)
		transcribed <- result
	})

	require.NoError(t, instance.Controller.Start(context.Background(), 0))
	require.Eventually(t, func() bool {
		return instance.Controller.Snapshot().Fragments > 0
	}, 2*time.Second, 5*time.Millisecond)
	a, err := instance.Controller.Stop()
	require.NoError(t, err)
	require.NotNil(t, a)

	stored, ok := instance.Artifacts.Get(a.ID)
	require.True(t, ok)
	assert.Equal(t, a.URL, stored.URL)

	select {
	case result := <-transcribed:
		assert.Equal(t, a.ID, result.ArtifactID)
		assert.Equal(t, "hello there", result.Text)
	case <-time.After(5 * time.Second):
		assert.Fail(t, "recording was not transcribed")
	}

	assert.NoError(t, instance.Dispose())
	assert.ErrorIs(t, instance.Controller.Start(context.Background(), 0), session.ErrClosed)
}

func TestApp_recordAndAssess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"score": 2.71828})
	}))
	defer server.Close()

	instance := newTestApp(t, "")
	instance.configFromFlags.PreventAutoSave = true
	instance.configFromFlags.Transcription.Type = transcribe.TypeNone
	instance.configFromFlags.Assessment.URL = server.URL
	instance.configFromFlags.Assessment.Auto = true
	require.NoError(t, instance.Initialize())
	defer func() { assert.NoError(t, instance.Dispose()) }()

	assessed := make(chan assess.Result, 1)
	instance.OnAssessment(func(result assess.Result, err error) {
		assert.NoError(t, err)
		assessed <- result
	})

	require.NoError(t, instance.Controller.Start(context.Background(), 0))
	require.Eventually(t, func() bool {
		return instance.Controller.Snapshot().Fragments > 0
	}, 2*time.Second, 5*time.Millisecond)
	a, err := instance.Controller.Stop()
	require.NoError(t, err)

	select {
	case result := <-assessed:
		assert.Equal(t, a.ID, result.ArtifactID)
		assert.Equal(t, 2.7183, result.Score)
	case <-time.After(5 * time.Second):
		assert.Fail(t, "recording was not assessed")
	}
}

func TestApp_ListDevices_synthetic(t *testing.T) {
	instance := newTestApp(t, "")
	instance.configFromFlags.PreventAutoSave = true
	require.NoError(t, instance.Initialize())
	defer func() { assert.NoError(t, instance.Dispose()) }()

	var buf strings.Builder
	require.NoError(t, instance.ListDevices(&buf))

	assert.Equal(t, "Audio source is synthetic. No devices to list.\n", buf.String())
}
