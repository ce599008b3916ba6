// Package latency measures per-stage pipeline durations, keeps a bounded
// rolling history with aggregate statistics, and produces optimization
// suggestions against configured targets.
package latency

import (
	"fmt"
	"time"
)

// Metrics records the stage durations for one utterance-processing cycle.
// All durations are in seconds. Field names form the stable wire contract of
// the latency_report message; records are copied on insert and never mutated
// after being recorded.
type Metrics struct {
	VADProcessing    float64 `json:"vad_processing"`
	SilenceDetection float64 `json:"silence_detection"`

	STTNetworkUpload float64 `json:"stt_network_upload"`
	STTProcessing    float64 `json:"stt_processing"`
	STTTotal         float64 `json:"stt_total"`

	LLMNetwork      float64 `json:"llm_network"`
	LLMProcessing   float64 `json:"llm_processing"`
	LLMTotal        float64 `json:"llm_total"`
	LLMModelVariant string  `json:"llm_model_variant"`

	TTSNetwork    float64 `json:"tts_network"`
	TTSProcessing float64 `json:"tts_processing"`
	TTSTotal      float64 `json:"tts_total"`

	WebsocketTransmission float64 `json:"websocket_transmission"`
	TotalPipeline         float64 `json:"total_pipeline"`

	STTProvider string `json:"stt_provider"`
	TTSProvider string `json:"tts_provider"`

	Timestamp        time.Time `json:"timestamp"`
	SessionID        string    `json:"session_id"`
	TranscriptLength int       `json:"transcript_length"`
	ResponseLength   int       `json:"response_length"`
}

// NewMetrics returns a zeroed record stamped with the current time.
func NewMetrics(sessionID string) Metrics {
	return Metrics{
		Timestamp:       time.Now(),
		SessionID:       sessionID,
		LLMModelVariant: "none",
		STTProvider:     "unknown",
		TTSProvider:     "unknown",
	}
}

// Summary returns a one-line description for logging.
func (m Metrics) Summary() string {
	return fmt.Sprintf("total: %.2fs (stt: %.2fs, llm: %.2fs [%s], tts: %.2fs)",
		m.TotalPipeline, m.STTTotal, m.LLMTotal, m.LLMModelVariant, m.TTSTotal)
}

// OverTarget reports whether the total pipeline exceeds the target.
func (m Metrics) OverTarget(target float64) bool {
	return m.TotalPipeline > target
}

// SlowestComponent names the stage with the largest recorded duration.
func (m Metrics) SlowestComponent() string {
	components := []struct {
		name string
		dur  float64
	}{
		{"vad", m.VADProcessing},
		{"silence_detection", m.SilenceDetection},
		{"stt", m.STTTotal},
		{"llm", m.LLMTotal},
		{"tts", m.TTSTotal},
		{"websocket", m.WebsocketTransmission},
	}
	slowest := components[0]
	for _, c := range components[1:] {
		if c.dur > slowest.dur {
			slowest = c
		}
	}
	return slowest.name
}
