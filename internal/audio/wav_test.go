package audio

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPCMToWAV(t *testing.T) {
	pcm := []byte{0x01, 0x02, 0x03, 0x04}
	wav := PCMToWAV(pcm, 16000)

	require.Len(t, wav, 44+len(pcm))
	assert.Equal(t, "RIFF", string(wav[0:4]))
	assert.Equal(t, "WAVE", string(wav[8:12]))
	assert.Equal(t, uint32(len(wav)-8), binary.LittleEndian.Uint32(wav[4:8]))
	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(wav[20:22]), "PCM format")
	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(wav[22:24]), "mono")
	assert.Equal(t, uint32(16000), binary.LittleEndian.Uint32(wav[24:28]))
	assert.Equal(t, uint32(32000), binary.LittleEndian.Uint32(wav[28:32]), "byte rate")
	assert.Equal(t, uint16(16), binary.LittleEndian.Uint16(wav[34:36]), "bits per sample")
	assert.Equal(t, uint32(len(pcm)), binary.LittleEndian.Uint32(wav[40:44]))
	assert.Equal(t, pcm, wav[44:])
}

func TestPCMToWAVEmpty(t *testing.T) {
	wav := PCMToWAV(nil, 16000)
	require.Len(t, wav, 44)
	assert.Equal(t, uint32(0), binary.LittleEndian.Uint32(wav[40:44]))
}

func TestDecodePCM(t *testing.T) {
	data := make([]byte, 6)
	binary.LittleEndian.PutUint16(data[0:], uint16(int16(0)))
	binary.LittleEndian.PutUint16(data[2:], uint16(int16(32767)))
	neg := int16(-32767)
	binary.LittleEndian.PutUint16(data[4:], uint16(neg))

	samples := DecodePCM(data)
	require.Len(t, samples, 3)
	assert.InDelta(t, 0, samples[0], 1e-6)
	assert.InDelta(t, 1, samples[1], 1e-4)
	assert.InDelta(t, -1, samples[2], 1e-4)
}
