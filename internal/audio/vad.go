package audio

import (
	"errors"
	"fmt"
	"math"
)

var (
	validSampleRates    = map[int]bool{8000: true, 16000: true, 32000: true, 48000: true}
	validFrameDurations = map[int]bool{10: true, 20: true, 30: true}
)

// ErrInvalidFrameSize is returned by ProcessFrame when the frame length does
// not match the configured frame byte size.
var ErrInvalidFrameSize = errors.New("invalid frame size")

// Classifier decides whether a single PCM16 frame contains speech.
type Classifier interface {
	IsSpeech(frame []byte, sampleRate int) bool
}

// VADConfig holds the immutable detector parameters.
type VADConfig struct {
	SampleRate          int     // 8000, 16000, 32000, or 48000 Hz
	FrameDurationMs     int     // 10, 20, or 30 ms
	Aggressiveness      int     // 0-3, higher requires louder audio to count as speech
	SilenceThresholdSec float64 // seconds of silence that end an utterance
}

// VAD detects end-of-utterance over a stream of fixed-size PCM16 frames.
// One instance serves exactly one session; no internal locking, never share
// across sessions.
type VAD struct {
	cfg        VADConfig
	classifier Classifier

	frameSize              int
	silenceThresholdFrames int

	consecutiveSilentFrames int
	speechStarted           bool
}

// NewVAD creates a detector with the default energy classifier.
func NewVAD(cfg VADConfig) (*VAD, error) {
	cls, err := NewEnergyClassifier(cfg.Aggressiveness)
	if err != nil {
		return nil, err
	}
	return NewVADWithClassifier(cfg, cls)
}

// NewVADWithClassifier creates a detector with an injected frame classifier.
func NewVADWithClassifier(cfg VADConfig, cls Classifier) (*VAD, error) {
	if !validSampleRates[cfg.SampleRate] {
		return nil, fmt.Errorf("invalid sample rate: %d", cfg.SampleRate)
	}
	if !validFrameDurations[cfg.FrameDurationMs] {
		return nil, fmt.Errorf("invalid frame duration: %dms", cfg.FrameDurationMs)
	}

	samplesPerFrame := cfg.SampleRate * cfg.FrameDurationMs / 1000
	return &VAD{
		cfg:                    cfg,
		classifier:             cls,
		frameSize:              samplesPerFrame * 2, // PCM16, 2 bytes per sample
		silenceThresholdFrames: int(math.Ceil(cfg.SilenceThresholdSec * 1000 / float64(cfg.FrameDurationMs))),
	}, nil
}

// FrameSize returns the expected frame length in bytes.
func (v *VAD) FrameSize() int {
	return v.frameSize
}

// ProcessFrame classifies one frame and updates the silence-run state.
//
// endOfSpeech is level-triggered: once the silent-frame run reaches the
// configured threshold after speech has started, it stays true on every call
// until Reset.
func (v *VAD) ProcessFrame(frame []byte) (isSpeech, endOfSpeech bool, err error) {
	if len(frame) != v.frameSize {
		return false, false, fmt.Errorf("%w: %d bytes (expected %d)", ErrInvalidFrameSize, len(frame), v.frameSize)
	}

	isSpeech = v.classifier.IsSpeech(frame, v.cfg.SampleRate)
	if isSpeech {
		v.consecutiveSilentFrames = 0
		v.speechStarted = true
	} else if v.speechStarted {
		v.consecutiveSilentFrames++
	}

	endOfSpeech = v.speechStarted && v.consecutiveSilentFrames >= v.silenceThresholdFrames
	return isSpeech, endOfSpeech, nil
}

// Reset clears the silence counter and the speech-started flag. Callers must
// invoke it after consuming an utterance, before feeding further frames.
func (v *VAD) Reset() {
	v.consecutiveSilentFrames = 0
	v.speechStarted = false
}
