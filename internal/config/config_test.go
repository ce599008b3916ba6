package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, float64(300), cfg.Session.MaxDurationSec)
	assert.Equal(t, []string{"that's all", "goodbye"}, cfg.Session.StopPhrases)
	assert.Equal(t, 16000, cfg.Session.VAD.SampleRate)
	assert.Equal(t, 30, cfg.Session.VAD.FrameDurationMs)
	assert.Equal(t, 3, cfg.Session.VAD.Aggressiveness)
	assert.InDelta(t, 2.0, cfg.Session.VAD.SilenceThresholdSec, 1e-9)
	assert.Equal(t, "mock", cfg.STT.Provider)
	assert.Equal(t, "echo", cfg.Response.Provider)
	assert.Equal(t, 1000, cfg.Latency.MaxHistory)
	assert.InDelta(t, 10.0, cfg.Latency.TargetTotalSec, 1e-9)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default().Server.Port, cfg.Server.Port)
}

func TestLoadYAMLOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9100
session:
  stop_phrases: ["we're done"]
  vad:
    silence_threshold_sec: 1.0
stt:
  provider: whisper_server
  whisper_server_url: http://localhost:8080
latency:
  report_to_client: true
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, []string{"we're done"}, cfg.Session.StopPhrases)
	assert.InDelta(t, 1.0, cfg.Session.VAD.SilenceThresholdSec, 1e-9)
	assert.Equal(t, "whisper_server", cfg.STT.Provider)
	assert.Equal(t, "http://localhost:8080", cfg.STT.WhisperServerURL)
	assert.True(t, cfg.Latency.ReportToClient)

	// untouched values keep their defaults
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 16000, cfg.Session.VAD.SampleRate)
}

func TestLoadMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [not a map"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("GATEWAY_PORT", "9200")
	t.Setenv("STT_PROVIDER", "openai_whisper")
	t.Setenv("MAX_CONCURRENT_SESSIONS", "7")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "sk-env", cfg.STT.APIKey)
	assert.Equal(t, "sk-env", cfg.TTS.APIKey)
	assert.Equal(t, "sk-env", cfg.Response.APIKey)
	assert.Equal(t, 9200, cfg.Server.Port)
	assert.Equal(t, "openai_whisper", cfg.STT.Provider)
	assert.Equal(t, 7, cfg.Session.MaxConcurrent)
}

func TestEnvIntIgnoresGarbage(t *testing.T) {
	t.Setenv("GATEWAY_PORT", "not-a-number")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 8000, cfg.Server.Port)
}
