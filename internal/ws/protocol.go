package ws

import "github.com/voicekit/voicegate/internal/latency"

// ClientMessage is any structured message received from the client.
type ClientMessage struct {
	Type     string `json:"type"`
	DeviceID string `json:"device_id,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

// ServerMessage is any structured message sent to the client. Binary audio
// travels as raw websocket binary frames, never inside this envelope.
type ServerMessage struct {
	Type          string               `json:"type"`
	SessionID     string               `json:"session_id,omitempty"`
	State         string               `json:"state,omitempty"`
	Text          string               `json:"text,omitempty"`
	Message       string               `json:"message,omitempty"`
	Reason        string               `json:"reason,omitempty"`
	MatchedPhrase string               `json:"matched_phrase,omitempty"`
	Metrics       *latency.Metrics     `json:"metrics,omitempty"`
	Suggestions   []latency.Suggestion `json:"suggestions,omitempty"`
}
