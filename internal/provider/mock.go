package provider

import (
	"context"
	"time"
)

const wavHeaderSize = 44

// MockSTT returns a fixed transcript after an optional simulated delay.
// Used in tests and for running the gateway without any speech backend.
type MockSTT struct {
	text       string
	confidence float64
	latency    time.Duration
}

// NewMockSTT creates a mock transcriber. latencySec simulates processing
// time and is interruptible by context cancellation.
func NewMockSTT(text string, confidence, latencySec float64) *MockSTT {
	if text == "" {
		text = "Mock transcription"
	}
	return &MockSTT{
		text:       text,
		confidence: confidence,
		latency:    time.Duration(latencySec * float64(time.Second)),
	}
}

func (m *MockSTT) Name() string { return "mock" }

// Transcribe reports the fixed text with a duration derived from the PCM
// payload length at 16kHz mono.
func (m *MockSTT) Transcribe(ctx context.Context, wav []byte) (*TranscriptionResult, error) {
	if err := sleepCtx(ctx, m.latency); err != nil {
		return nil, err
	}
	pcmBytes := len(wav) - wavHeaderSize
	if pcmBytes < 0 {
		pcmBytes = 0
	}
	return &TranscriptionResult{
		Text:       m.text,
		Confidence: m.confidence,
		Language:   "en",
		Duration:   float64(pcmBytes) / 32000.0,
	}, nil
}

// MockTTS returns a placeholder audio payload sized from the input text.
type MockTTS struct {
	format     string
	sampleRate int
	latency    time.Duration
}

func NewMockTTS(format string, sampleRate int, latencySec float64) *MockTTS {
	if format == "" {
		format = "mp3"
	}
	if sampleRate <= 0 {
		sampleRate = 24000
	}
	return &MockTTS{
		format:     format,
		sampleRate: sampleRate,
		latency:    time.Duration(latencySec * float64(time.Second)),
	}
}

func (m *MockTTS) Name() string { return "mock" }

// Synthesize returns zeroed audio bytes, roughly 50ms of speech per
// character of input text.
func (m *MockTTS) Synthesize(ctx context.Context, text string) (*SynthesisResult, error) {
	if err := sleepCtx(ctx, m.latency); err != nil {
		return nil, err
	}
	duration := float64(len(text)) * 0.05
	size := int(duration * float64(m.sampleRate) / 10)
	if size < 64 {
		size = 64
	}
	return &SynthesisResult{
		Audio:      make([]byte, size),
		Format:     m.format,
		SampleRate: m.sampleRate,
		Duration:   duration,
	}, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
