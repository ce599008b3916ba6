package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStopPhraseDetector(t *testing.T) {
	d := NewStopPhraseDetector([]string{"that's all", "goodbye"})

	tests := []struct {
		text    string
		matched string
		ok      bool
	}{
		{"I think that's all for today", "that's all", true},
		{"THAT'S ALL", "that's all", true},
		{"Goodbye now", "goodbye", true},
		{"  goodbye  ", "goodbye", true},
		{"keep going please", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			phrase, ok := d.MatchedPhrase(tt.text)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.matched, phrase)
			assert.Equal(t, tt.ok, d.IsStopPhrase(tt.text))
		})
	}
}

func TestStopPhraseFirstMatchWins(t *testing.T) {
	d := NewStopPhraseDetector([]string{"all done", "done"})
	phrase, ok := d.MatchedPhrase("we are all done here")
	assert.True(t, ok)
	assert.Equal(t, "all done", phrase)
}

func TestStopPhraseEmptyList(t *testing.T) {
	d := NewStopPhraseDetector(nil)
	assert.False(t, d.IsStopPhrase("goodbye"))
}
