package latency

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdvisorUnderTargetIsQuiet(t *testing.T) {
	a := NewAdvisor(10.0)

	m := record("s", 9.9, 6, 2, 1.5)
	assert.Empty(t, a.Analyze(m))

	m.TotalPipeline = 10.0
	assert.Empty(t, a.Analyze(m))
}

func TestAdvisorSuggestsFasterModel(t *testing.T) {
	a := NewAdvisor(10.0)

	m := record("s", 12, 1, 5, 1)
	m.LLMModelVariant = "gpt-5"

	got := a.Analyze(m)
	require.NotEmpty(t, got)

	var models []string
	for _, s := range got {
		assert.Equal(t, "llm", s.Component)
		models = append(models, s.Recommendation)
	}
	joined := models[0]
	for _, r := range models[1:] {
		joined += " " + r
	}
	assert.Contains(t, joined, "gpt-5-nano")
	assert.Contains(t, joined, "gpt-5-mini")
	// never suggests switching to the model already in use
	assert.NotContains(t, joined, "switch to gpt-5 (")
}

func TestAdvisorSortsByPriorityThenSavings(t *testing.T) {
	a := NewAdvisor(10.0)

	m := record("s", 15, 6, 5, 4)
	m.LLMModelVariant = "gpt-5"
	m.STTNetworkUpload = 2.5

	got := a.Analyze(m)
	require.True(t, len(got) >= 3)

	lastRank := -1
	for _, s := range got {
		rank := priorityRank[s.Priority]
		assert.GreaterOrEqual(t, rank, lastRank)
		lastRank = rank
	}
	for i := 1; i < len(got); i++ {
		if got[i].Priority == got[i-1].Priority {
			assert.LessOrEqual(t, got[i].PotentialSavings, got[i-1].PotentialSavings)
		}
	}
}

func TestAdvisorSTTNetworkUpload(t *testing.T) {
	a := NewAdvisor(10.0)

	m := record("s", 12, 6, 1, 1)
	m.STTNetworkUpload = 2.0

	got := a.Analyze(m)
	require.NotEmpty(t, got)
	assert.Equal(t, "high", got[0].Priority)
	assert.Equal(t, "stt", got[0].Component)
	assert.Contains(t, got[0].Recommendation, "local whisper")
}

func TestAdvisorUnknownModelFallback(t *testing.T) {
	a := NewAdvisor(10.0)

	m := record("s", 12, 1, 5, 1)
	m.LLMModelVariant = "some-custom-model"

	got := a.Analyze(m)
	require.Len(t, got, 1)
	assert.Equal(t, "llm", got[0].Component)
	assert.Contains(t, got[0].Recommendation, "tokens")
}

func TestAdvisorSilenceDetection(t *testing.T) {
	a := NewAdvisor(10.0)

	m := record("s", 11, 1, 1, 1)
	m.SilenceDetection = 2.5

	got := a.Analyze(m)
	require.Len(t, got, 1)
	assert.Equal(t, "low", got[0].Priority)
	assert.Equal(t, "silence_detection", got[0].Component)
}

func TestAdvisorQuickWins(t *testing.T) {
	a := NewAdvisor(10.0)

	m := record("s", 15, 6, 5, 1)
	m.LLMModelVariant = "gpt-5"
	m.STTNetworkUpload = 2.0

	for _, s := range a.QuickWins(m) {
		assert.Equal(t, "high", s.Priority)
	}
	require.NotEmpty(t, a.QuickWins(m))
}
