package session

import "strings"

// StopPhraseDetector matches configured session-ending phrases in
// transcripts. Matching is a case-insensitive substring check; the first
// configured phrase that matches wins.
type StopPhraseDetector struct {
	phrases []string
}

// NewStopPhraseDetector lowercases and stores the phrase list.
func NewStopPhraseDetector(phrases []string) *StopPhraseDetector {
	lowered := make([]string, 0, len(phrases))
	for _, p := range phrases {
		lowered = append(lowered, strings.ToLower(p))
	}
	return &StopPhraseDetector{phrases: lowered}
}

// IsStopPhrase reports whether text contains any configured phrase.
func (d *StopPhraseDetector) IsStopPhrase(text string) bool {
	_, ok := d.MatchedPhrase(text)
	return ok
}

// MatchedPhrase returns the first configured phrase contained in text.
func (d *StopPhraseDetector) MatchedPhrase(text string) (string, bool) {
	lower := strings.ToLower(strings.TrimSpace(text))
	for _, p := range d.phrases {
		if strings.Contains(lower, p) {
			return p, true
		}
	}
	return "", false
}
