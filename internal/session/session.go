// Package session holds per-connection voice session state, the registry of
// live sessions, and stop-phrase detection over transcripts.
package session

import "time"

// State is the lifecycle state of a session.
type State string

const (
	StateIdle       State = "idle"
	StateListening  State = "listening"
	StateProcessing State = "processing"
	StateResponding State = "responding"
)

// Session is the per-connection state for one voice session. It is owned by
// the registry and mutated only by the handler goroutine for its connection,
// so its methods take no lock.
type Session struct {
	ID       string
	DeviceID string
	State    State

	StartTime    time.Time
	LastActivity time.Time

	audioBuffer []byte

	// diagnostic fields, last completed utterance
	Transcript string
	Response   string
}

func newSession(id, deviceID string) *Session {
	now := time.Now()
	return &Session{
		ID:           id,
		DeviceID:     deviceID,
		State:        StateIdle,
		StartTime:    now,
		LastActivity: now,
	}
}

// AppendAudio adds a chunk to the utterance buffer and refreshes activity.
func (s *Session) AppendAudio(chunk []byte) {
	s.audioBuffer = append(s.audioBuffer, chunk...)
	s.LastActivity = time.Now()
}

// AudioBuffer returns the accumulated PCM bytes for the current utterance.
func (s *Session) AudioBuffer() []byte {
	return s.audioBuffer
}

// ClearAudioBuffer drops the accumulated audio after an utterance is
// consumed. Called exactly once per utterance cycle, alongside the VAD reset.
func (s *Session) ClearAudioBuffer() {
	s.audioBuffer = s.audioBuffer[:0]
}

// Duration reports how long the session has existed.
func (s *Session) Duration() time.Duration {
	return time.Since(s.StartTime)
}

// Expired reports whether the session has exceeded the maximum duration.
func (s *Session) Expired(maxDuration time.Duration) bool {
	return s.Duration() >= maxDuration
}
