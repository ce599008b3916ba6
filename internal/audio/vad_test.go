package audio

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedClassifier returns a fixed sequence of speech decisions.
type scriptedClassifier struct {
	decisions []bool
	pos       int
}

func (c *scriptedClassifier) IsSpeech(_ []byte, _ int) bool {
	if c.pos >= len(c.decisions) {
		return false
	}
	d := c.decisions[c.pos]
	c.pos++
	return d
}

// fixedClassifier always returns the same decision.
type fixedClassifier struct{ speech bool }

func (c fixedClassifier) IsSpeech(_ []byte, _ int) bool { return c.speech }

func testVADConfig() VADConfig {
	return VADConfig{
		SampleRate:          16000,
		FrameDurationMs:     30,
		Aggressiveness:      3,
		SilenceThresholdSec: 0.3, // 10 frames at 30ms
	}
}

func toneFrame(size int, amplitude float64) []byte {
	frame := make([]byte, size)
	for i := 0; i < size/2; i++ {
		v := int16(amplitude * math.MaxInt16 * math.Sin(2*math.Pi*440*float64(i)/16000))
		binary.LittleEndian.PutUint16(frame[i*2:], uint16(v))
	}
	return frame
}

func TestNewVADValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*VADConfig)
		wantErr string
	}{
		{"valid", func(*VADConfig) {}, ""},
		{"bad sample rate", func(c *VADConfig) { c.SampleRate = 44100 }, "invalid sample rate"},
		{"bad frame duration", func(c *VADConfig) { c.FrameDurationMs = 25 }, "invalid frame duration"},
		{"bad aggressiveness", func(c *VADConfig) { c.Aggressiveness = 7 }, "invalid aggressiveness"},
		{"negative aggressiveness", func(c *VADConfig) { c.Aggressiveness = -1 }, "invalid aggressiveness"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testVADConfig()
			tt.mutate(&cfg)
			v, err := NewVAD(cfg)
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, 960, v.FrameSize())
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestProcessFrameSizeCheck(t *testing.T) {
	v, err := NewVADWithClassifier(testVADConfig(), fixedClassifier{speech: true})
	require.NoError(t, err)

	for _, size := range []int{0, 1, 959, 961, 1920} {
		_, _, err = v.ProcessFrame(make([]byte, size))
		assert.ErrorIs(t, err, ErrInvalidFrameSize, "size %d", size)
	}

	_, _, err = v.ProcessFrame(make([]byte, 960))
	assert.NoError(t, err)
}

func TestEndOfSpeechThreshold(t *testing.T) {
	// One speech frame, then silence. SilenceThresholdSec 0.3 at 30ms
	// frames means the end-of-speech condition trips on exactly the 10th
	// consecutive silent frame.
	decisions := append([]bool{true}, make([]bool, 15)...)
	v, err := NewVADWithClassifier(testVADConfig(), &scriptedClassifier{decisions: decisions})
	require.NoError(t, err)

	frame := make([]byte, v.FrameSize())

	isSpeech, end, err := v.ProcessFrame(frame)
	require.NoError(t, err)
	assert.True(t, isSpeech)
	assert.False(t, end)

	for i := 1; i <= 9; i++ {
		_, end, err = v.ProcessFrame(frame)
		require.NoError(t, err)
		assert.False(t, end, "silent frame %d", i)
	}

	_, end, err = v.ProcessFrame(frame)
	require.NoError(t, err)
	assert.True(t, end, "10th silent frame must signal end of speech")

	// Level-triggered: stays true on subsequent calls until Reset.
	for i := 0; i < 3; i++ {
		_, end, err = v.ProcessFrame(frame)
		require.NoError(t, err)
		assert.True(t, end)
	}
}

func TestSilenceWithoutSpeechNeverEnds(t *testing.T) {
	v, err := NewVADWithClassifier(testVADConfig(), fixedClassifier{speech: false})
	require.NoError(t, err)

	frame := make([]byte, v.FrameSize())
	for i := 0; i < 50; i++ {
		isSpeech, end, err := v.ProcessFrame(frame)
		require.NoError(t, err)
		assert.False(t, isSpeech)
		assert.False(t, end, "frame %d", i)
	}
}

func TestResetMatchesFreshDetector(t *testing.T) {
	// speech, then silence past the threshold, observed on both detectors
	sequence := append([]bool{true, true}, make([]bool, 12)...)

	run := func(v *VAD, cls *scriptedClassifier) []bool {
		frame := make([]byte, v.FrameSize())
		ends := make([]bool, 0, len(sequence))
		for range sequence {
			_, end, err := v.ProcessFrame(frame)
			require.NoError(t, err)
			ends = append(ends, end)
		}
		return ends
	}

	// Dirty a detector well past end-of-speech, then reset it.
	dirtyScript := append(append([]bool{true}, make([]bool, 20)...), sequence...)
	dirtyCls := &scriptedClassifier{decisions: dirtyScript}
	dirty, err := NewVADWithClassifier(testVADConfig(), dirtyCls)
	require.NoError(t, err)
	frame := make([]byte, dirty.FrameSize())
	for i := 0; i < 21; i++ {
		_, _, err = dirty.ProcessFrame(frame)
		require.NoError(t, err)
	}
	dirty.Reset()

	freshCls := &scriptedClassifier{decisions: sequence}
	fresh, err := NewVADWithClassifier(testVADConfig(), freshCls)
	require.NoError(t, err)

	assert.Equal(t, run(fresh, freshCls), run(dirty, dirtyCls))
}

func TestEnergyClassifier(t *testing.T) {
	cls, err := NewEnergyClassifier(3)
	require.NoError(t, err)

	silence := make([]byte, 960)
	assert.False(t, cls.IsSpeech(silence, 16000))

	tone := toneFrame(960, 0.5)
	assert.True(t, cls.IsSpeech(tone, 16000))

	// A very quiet tone passes only at low aggressiveness.
	quiet := toneFrame(960, 0.005)
	assert.False(t, cls.IsSpeech(quiet, 16000))
	lax, err := NewEnergyClassifier(0)
	require.NoError(t, err)
	assert.True(t, lax.IsSpeech(quiet, 16000))
}
