package latency

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(sessionID string, total, stt, llm, tts float64) Metrics {
	m := NewMetrics(sessionID)
	m.TotalPipeline = total
	m.STTTotal = stt
	m.LLMTotal = llm
	m.TTSTotal = tts
	return m
}

func TestTrackerBoundedHistory(t *testing.T) {
	tr := NewTracker(10, nil, nil)

	for i := 0; i < 15; i++ {
		tr.Record(record(fmt.Sprintf("s%d", i), float64(i), 0, 0, 0))
	}

	assert.Equal(t, 10, tr.Len())

	recent := tr.Recent(10)
	require.Len(t, recent, 10)
	// oldest five were evicted; survivors are s5..s14 in insertion order
	assert.Equal(t, "s5", recent[0].SessionID)
	assert.Equal(t, "s14", recent[9].SessionID)
}

func TestTrackerRecentSmallerThanHistory(t *testing.T) {
	tr := NewTracker(10, nil, nil)
	tr.Record(record("a", 1, 0, 0, 0))
	tr.Record(record("b", 2, 0, 0, 0))
	tr.Record(record("c", 3, 0, 0, 0))

	recent := tr.Recent(2)
	require.Len(t, recent, 2)
	assert.Equal(t, "b", recent[0].SessionID)
	assert.Equal(t, "c", recent[1].SessionID)

	assert.Len(t, tr.Recent(50), 3)
}

func TestTrackerStatisticsEmpty(t *testing.T) {
	tr := NewTracker(10, nil, nil)
	stats := tr.Statistics()
	assert.Equal(t, 0, stats.SampleCount)
	assert.Zero(t, stats.Total.Mean)
}

func TestTrackerStatistics(t *testing.T) {
	tr := NewTracker(100, nil, nil)
	for _, total := range []float64{1, 2, 3, 4, 5} {
		tr.Record(record("s", total, total/2, total/4, total/8))
	}

	stats := tr.Statistics()
	assert.Equal(t, 5, stats.SampleCount)
	assert.InDelta(t, 3.0, stats.Total.Mean, 1e-9)
	assert.InDelta(t, 3.0, stats.Total.Median, 1e-9)
	assert.InDelta(t, 1.0, stats.Total.Min, 1e-9)
	assert.InDelta(t, 5.0, stats.Total.Max, 1e-9)
	// linear interpolation: p90 of [1..5] = 4.6
	assert.InDelta(t, 4.6, stats.Total.P90, 1e-9)
	assert.InDelta(t, 1.5, stats.STT.Mean, 1e-9)
}

func TestTrackerBottlenecksNeedSamples(t *testing.T) {
	tr := NewTracker(100, nil, nil)
	tr.Record(record("s", 20, 10, 5, 5))

	got := tr.Bottlenecks()
	require.Len(t, got, 1)
	assert.Contains(t, got[0], "not enough data")
}

func TestTrackerBottlenecks(t *testing.T) {
	tr := NewTracker(100, nil, nil)
	for i := 0; i < 5; i++ {
		tr.Record(record("s", 15, 6, 4, 4))
	}

	got := tr.Bottlenecks()
	joined := fmt.Sprint(got)
	assert.Contains(t, joined, "stt")
	assert.Contains(t, joined, "llm")
	assert.Contains(t, joined, "tts")
	assert.Contains(t, joined, "total pipeline")
}

func TestTrackerBottlenecksWithinTargets(t *testing.T) {
	tr := NewTracker(100, nil, nil)
	for i := 0; i < 5; i++ {
		tr.Record(record("s", 4, 1.5, 1, 1))
	}

	got := tr.Bottlenecks()
	require.Len(t, got, 1)
	assert.Contains(t, got[0], "within targets")
}

func TestTrackerModelComparison(t *testing.T) {
	tr := NewTracker(100, nil, nil)

	fast := record("s", 5, 1, 1.0, 1)
	fast.LLMModelVariant = "gpt-5-nano"
	tr.Record(fast)
	fast.LLMTotal = 1.2
	tr.Record(fast)

	slow := record("s", 8, 1, 4.0, 1)
	slow.LLMModelVariant = "gpt-5"
	tr.Record(slow)

	unset := record("s", 3, 1, 1, 1)
	tr.Record(unset)

	cmp := tr.ModelComparison()
	require.Len(t, cmp, 2)
	assert.Equal(t, 2, cmp["gpt-5-nano"].SampleCount)
	assert.InDelta(t, 1.1, cmp["gpt-5-nano"].Mean, 1e-9)
	assert.Equal(t, 1, cmp["gpt-5"].SampleCount)
	assert.InDelta(t, 4.0, cmp["gpt-5"].Max, 1e-9)
}

func TestPercentileInterpolation(t *testing.T) {
	xs := []float64{1, 2, 3, 4}
	assert.InDelta(t, 2.5, percentile(xs, 50), 1e-9)
	assert.InDelta(t, 3.7, percentile(xs, 90), 1e-9)
	assert.InDelta(t, 1.0, percentile(xs, 0), 1e-9)
	assert.InDelta(t, 4.0, percentile(xs, 100), 1e-9)
	assert.InDelta(t, 7.0, percentile([]float64{7}, 90), 1e-9)
}
