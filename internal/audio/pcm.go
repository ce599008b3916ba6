package audio

import (
	"encoding/binary"
	"math"
)

// DecodePCM converts little-endian PCM16 bytes to float32 samples in [-1, 1].
func DecodePCM(data []byte) []float32 {
	n := len(data) / 2
	samples := make([]float32, n)
	for i := 0; i < n; i++ {
		s := int16(binary.LittleEndian.Uint16(data[i*2:]))
		samples[i] = float32(s) / math.MaxInt16
	}
	return samples
}
