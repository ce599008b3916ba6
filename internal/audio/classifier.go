package audio

import (
	"fmt"
	"math"
)

// aggressivenessThresholdDB maps the 0-3 aggressiveness setting to the RMS
// energy (in dBFS) a frame must reach to count as speech. Higher settings
// require louder audio, trading missed quiet speech for fewer false
// positives from background noise.
var aggressivenessThresholdDB = [4]float64{-60, -50, -40, -30}

// EnergyClassifier is a pure-Go speech/silence classifier based on RMS
// energy. Any implementation of Classifier with comparable semantics (e.g. a
// zero-crossing or statistical model) can replace it.
type EnergyClassifier struct {
	thresholdDB float64
}

// NewEnergyClassifier builds a classifier for the given aggressiveness (0-3).
func NewEnergyClassifier(aggressiveness int) (*EnergyClassifier, error) {
	if aggressiveness < 0 || aggressiveness >= len(aggressivenessThresholdDB) {
		return nil, fmt.Errorf("invalid aggressiveness: %d", aggressiveness)
	}
	return &EnergyClassifier{thresholdDB: aggressivenessThresholdDB[aggressiveness]}, nil
}

// IsSpeech reports whether the frame's RMS energy clears the threshold.
func (c *EnergyClassifier) IsSpeech(frame []byte, _ int) bool {
	return energyDB(DecodePCM(frame)) >= c.thresholdDB
}

// energyDB computes RMS energy in dBFS for normalized samples.
func energyDB(samples []float32) float64 {
	if len(samples) == 0 {
		return -100
	}
	var sum float64
	for _, s := range samples {
		sum += float64(s) * float64(s)
	}
	rms := math.Sqrt(sum / float64(len(samples)))
	if rms < 1e-10 {
		return -100
	}
	return 20 * math.Log10(rms)
}
