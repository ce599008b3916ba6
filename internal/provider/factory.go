package provider

import (
	"fmt"
	"sort"

	"github.com/voicekit/voicegate/internal/config"
)

// STTFactory builds an STT provider from configuration.
type STTFactory func(cfg config.STTConfig) (STTProvider, error)

// TTSFactory builds a TTS provider from configuration.
type TTSFactory func(cfg config.TTSConfig) (TTSProvider, error)

var sttFactories = map[string]STTFactory{
	"openai_whisper": func(cfg config.STTConfig) (STTProvider, error) {
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("openai_whisper: OPENAI_API_KEY not set")
		}
		return NewOpenAISTT(cfg.APIKey, cfg.Model, cfg.Language, cfg.Temperature), nil
	},
	"whisper_server": func(cfg config.STTConfig) (STTProvider, error) {
		if cfg.WhisperServerURL == "" {
			return nil, fmt.Errorf("whisper_server: whisper_server_url not set")
		}
		return NewWhisperServerSTT(cfg.WhisperServerURL), nil
	},
	"mock": func(cfg config.STTConfig) (STTProvider, error) {
		return NewMockSTT(cfg.MockText, cfg.MockConfidence, cfg.MockLatencySec), nil
	},
}

var ttsFactories = map[string]TTSFactory{
	"openai_tts": func(cfg config.TTSConfig) (TTSProvider, error) {
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("openai_tts: OPENAI_API_KEY not set")
		}
		return NewOpenAITTS(cfg.APIKey, cfg.Model, cfg.Voice, cfg.Speed), nil
	},
	"piper": func(cfg config.TTSConfig) (TTSProvider, error) {
		if cfg.PiperURL == "" {
			return nil, fmt.Errorf("piper: piper_url not set")
		}
		return NewPiperTTS(cfg.PiperURL, cfg.Voice), nil
	},
	"mock": func(cfg config.TTSConfig) (TTSProvider, error) {
		return NewMockTTS(cfg.MockFormat, cfg.MockSampleRate, cfg.MockLatencySec), nil
	},
}

// NewSTT builds the STT provider named by cfg.Provider.
func NewSTT(cfg config.STTConfig) (STTProvider, error) {
	factory, ok := sttFactories[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown stt provider %q (available: %v)", cfg.Provider, AvailableSTT())
	}
	return factory(cfg)
}

// NewTTS builds the TTS provider named by cfg.Provider.
func NewTTS(cfg config.TTSConfig) (TTSProvider, error) {
	factory, ok := ttsFactories[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown tts provider %q (available: %v)", cfg.Provider, AvailableTTS())
	}
	return factory(cfg)
}

// RegisterSTT adds or replaces a named STT factory.
func RegisterSTT(name string, factory STTFactory) {
	sttFactories[name] = factory
}

// RegisterTTS adds or replaces a named TTS factory.
func RegisterTTS(name string, factory TTSFactory) {
	ttsFactories[name] = factory
}

// AvailableSTT returns the registered STT provider names, sorted.
func AvailableSTT() []string {
	names := make([]string, 0, len(sttFactories))
	for name := range sttFactories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AvailableTTS returns the registered TTS provider names, sorted.
func AvailableTTS() []string {
	names := make([]string, 0, len(ttsFactories))
	for name := range ttsFactories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
