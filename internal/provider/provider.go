// Package provider defines the speech-to-text and text-to-speech backend
// interfaces and their implementations. Backends are selected by name
// through the factory so a config change swaps providers without touching
// the session pipeline.
package provider

import (
	"context"
	"net/http"
	"time"
)

// TranscriptionResult holds the output of one transcription call.
type TranscriptionResult struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	Language   string  `json:"language"`
	Duration   float64 `json:"duration"`
}

// SynthesisResult holds synthesized audio with its format metadata.
type SynthesisResult struct {
	Audio      []byte  `json:"-"`
	Format     string  `json:"format"`
	SampleRate int     `json:"sample_rate"`
	Duration   float64 `json:"duration"`
}

// STTProvider transcribes a complete WAV utterance.
type STTProvider interface {
	Name() string
	Transcribe(ctx context.Context, wav []byte) (*TranscriptionResult, error)
}

// TTSProvider synthesizes speech for a text response.
type TTSProvider interface {
	Name() string
	Synthesize(ctx context.Context, text string) (*SynthesisResult, error)
}

// newPooledHTTPClient creates an http.Client with connection pooling tuned
// for repeated calls to a single backend host.
func newPooledHTTPClient(poolSize int, timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:          poolSize,
			MaxIdleConnsPerHost:   poolSize,
			IdleConnTimeout:       90 * time.Second,
			ResponseHeaderTimeout: 30 * time.Second,
			ForceAttemptHTTP2:     true,
		},
	}
}
