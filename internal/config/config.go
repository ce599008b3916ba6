// Package config loads the gateway configuration from a YAML file with
// environment variable overrides. Configuration is read once at startup and
// treated as immutable for the lifetime of the server.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the complete gateway configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Session  SessionConfig  `yaml:"session"`
	STT      STTConfig      `yaml:"stt"`
	TTS      TTSConfig      `yaml:"tts"`
	Response ResponseConfig `yaml:"response"`
	Latency  LatencyConfig  `yaml:"latency"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// SessionConfig controls session lifecycle and voice activity detection.
// Durations are expressed in seconds to match the wire-facing metrics.
type SessionConfig struct {
	MaxDurationSec  float64   `yaml:"max_duration_sec"`
	StartTimeoutSec float64   `yaml:"start_timeout_sec"`
	CleanupEverySec float64   `yaml:"cleanup_every_sec"`
	MaxConcurrent   int       `yaml:"max_concurrent"`
	StopPhrases     []string  `yaml:"stop_phrases"`
	VAD             VADConfig `yaml:"vad"`
}

type VADConfig struct {
	SampleRate          int     `yaml:"sample_rate"`
	FrameDurationMs     int     `yaml:"frame_duration_ms"`
	Aggressiveness      int     `yaml:"aggressiveness"`
	SilenceThresholdSec float64 `yaml:"silence_threshold_sec"`
}

// STTConfig selects and configures the speech-to-text provider.
type STTConfig struct {
	Provider         string  `yaml:"provider"`
	APIKey           string  `yaml:"-"`
	Model            string  `yaml:"model"`
	Language         string  `yaml:"language"`
	Temperature      float64 `yaml:"temperature"`
	WhisperServerURL string  `yaml:"whisper_server_url"`
	MockLatencySec   float64 `yaml:"mock_latency_sec"`
	MockText         string  `yaml:"mock_text"`
	MockConfidence   float64 `yaml:"mock_confidence"`
}

// TTSConfig selects and configures the text-to-speech provider.
type TTSConfig struct {
	Provider       string  `yaml:"provider"`
	APIKey         string  `yaml:"-"`
	Model          string  `yaml:"model"`
	Voice          string  `yaml:"voice"`
	Speed          float64 `yaml:"speed"`
	PiperURL       string  `yaml:"piper_url"`
	MockLatencySec float64 `yaml:"mock_latency_sec"`
	MockFormat     string  `yaml:"mock_format"`
	MockSampleRate int     `yaml:"mock_sample_rate"`
}

// ResponseConfig selects the reply generator: "echo" (deterministic
// placeholder) or "openai" (chat completion).
type ResponseConfig struct {
	Provider     string `yaml:"provider"`
	APIKey       string `yaml:"-"`
	Model        string `yaml:"model"`
	SystemPrompt string `yaml:"system_prompt"`
	MaxTokens    int    `yaml:"max_tokens"`
}

// LatencyConfig controls the tracker history, advisory targets, and the
// optional latency_report message to clients.
type LatencyConfig struct {
	MaxHistory       int                `yaml:"max_history"`
	TargetTotalSec   float64            `yaml:"target_total_sec"`
	ComponentTargets map[string]float64 `yaml:"component_targets"`
	ReportToClient   bool               `yaml:"report_to_client"`
	PostgresDSN      string             `yaml:"-"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Default returns the built-in configuration used when no file is present.
func Default() Config {
	return Config{
		Server: ServerConfig{Host: "0.0.0.0", Port: 8000},
		Session: SessionConfig{
			MaxDurationSec:  300,
			StartTimeoutSec: 10,
			CleanupEverySec: 30,
			MaxConcurrent:   100,
			StopPhrases:     []string{"that's all", "goodbye"},
			VAD: VADConfig{
				SampleRate:          16000,
				FrameDurationMs:     30,
				Aggressiveness:      3,
				SilenceThresholdSec: 2.0,
			},
		},
		STT: STTConfig{
			Provider:       "mock",
			Model:          "whisper-1",
			Language:       "en",
			MockText:       "Mock transcription",
			MockConfidence: 0.95,
		},
		TTS: TTSConfig{
			Provider:       "mock",
			Model:          "tts-1",
			Voice:          "nova",
			Speed:          1.0,
			MockFormat:     "mp3",
			MockSampleRate: 24000,
		},
		Response: ResponseConfig{
			Provider:     "echo",
			Model:        "gpt-5-mini",
			SystemPrompt: "You are a helpful voice assistant. Keep responses concise and conversational.",
			MaxTokens:    150,
		},
		Latency: LatencyConfig{
			MaxHistory:     1000,
			TargetTotalSec: 10.0,
			ReportToClient: false,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load reads the YAML file at path (if it exists), applies .env and
// environment overrides, and returns the resulting configuration.
func Load(path string) (Config, error) {
	// .env is optional; a missing file is not an error.
	_ = godotenv.Load()

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err = yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w", path, err)
			}
		case !os.IsNotExist(err):
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

// applyEnv overrides file values with environment variables. Secrets are
// env-only and never read from the YAML file.
func applyEnv(cfg *Config) {
	apiKey := envStr("OPENAI_API_KEY", "")
	cfg.STT.APIKey = apiKey
	cfg.TTS.APIKey = apiKey
	cfg.Response.APIKey = apiKey

	cfg.Server.Host = envStr("GATEWAY_HOST", cfg.Server.Host)
	cfg.Server.Port = envInt("GATEWAY_PORT", cfg.Server.Port)
	cfg.Logging.Level = envStr("LOG_LEVEL", cfg.Logging.Level)
	cfg.STT.Provider = envStr("STT_PROVIDER", cfg.STT.Provider)
	cfg.TTS.Provider = envStr("TTS_PROVIDER", cfg.TTS.Provider)
	cfg.Response.Provider = envStr("RESPONSE_PROVIDER", cfg.Response.Provider)
	cfg.Session.MaxConcurrent = envInt("MAX_CONCURRENT_SESSIONS", cfg.Session.MaxConcurrent)
	cfg.Latency.PostgresDSN = envStr("LATENCY_POSTGRES_DSN", "")
}

func envStr(key, fallback string) string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	return val
}

func envInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return n
}
