package latency

import (
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// DefaultTargets are the per-stage latency budgets (seconds) used when none
// are configured.
var DefaultTargets = map[string]float64{
	"vad":               0.1,
	"silence_detection": 1.5,
	"stt":               4.0,
	"llm":               3.0,
	"tts":               3.0,
	"websocket":         0.5,
	"total":             10.0,
}

// bottleneckWindow bounds how many recent samples feed the bottleneck scan.
const bottleneckWindow = 100

// minBottleneckSamples is the minimum history before bottleneck analysis is
// meaningful.
const minBottleneckSamples = 5

// StatSummary aggregates one duration series.
type StatSummary struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	P50    float64 `json:"p50"`
	P90    float64 `json:"p90"`
	P99    float64 `json:"p99"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// StageStats is the reduced summary kept per pipeline stage.
type StageStats struct {
	Mean float64 `json:"mean"`
	P90  float64 `json:"p90"`
}

// Statistics is the aggregate view over the retained history.
type Statistics struct {
	SampleCount int        `json:"sample_count"`
	Total       StatSummary `json:"total"`
	STT         StageStats  `json:"stt"`
	LLM         StageStats  `json:"llm"`
	TTS         StageStats  `json:"tts"`
}

// ModelStats summarizes LLM latency per model variant.
type ModelStats struct {
	Mean        float64 `json:"mean"`
	Median      float64 `json:"median"`
	Min         float64 `json:"min"`
	Max         float64 `json:"max"`
	SampleCount int     `json:"sample_count"`
}

// Tracker keeps a bounded FIFO history of metrics records. Safe for
// concurrent use by all session handlers; operations are pure data work
// under a short-held lock.
type Tracker struct {
	mu         sync.Mutex
	history    []Metrics
	maxHistory int
	targets    map[string]float64
	logger     *zap.Logger
}

// NewTracker creates a tracker retaining at most maxHistory records. Targets
// missing from the map fall back to DefaultTargets.
func NewTracker(maxHistory int, targets map[string]float64, logger *zap.Logger) *Tracker {
	if maxHistory <= 0 {
		maxHistory = 1000
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	merged := make(map[string]float64, len(DefaultTargets))
	for k, v := range DefaultTargets {
		merged[k] = v
	}
	for k, v := range targets {
		merged[k] = v
	}
	return &Tracker{
		maxHistory: maxHistory,
		targets:    merged,
		logger:     logger,
	}
}

// Record appends a metrics record, evicting the oldest when over capacity.
func (t *Tracker) Record(m Metrics) {
	t.mu.Lock()
	t.history = append(t.history, m)
	if len(t.history) > t.maxHistory {
		t.history = t.history[len(t.history)-t.maxHistory:]
	}
	t.mu.Unlock()

	t.logger.Info("latency recorded",
		zap.String("session_id", m.SessionID),
		zap.String("summary", m.Summary()),
	)
}

// Recent returns the most recent n records, oldest first.
func (t *Tracker) Recent(n int) []Metrics {
	t.mu.Lock()
	defer t.mu.Unlock()
	if n > len(t.history) {
		n = len(t.history)
	}
	out := make([]Metrics, n)
	copy(out, t.history[len(t.history)-n:])
	return out
}

// Len returns the number of retained records.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.history)
}

// Statistics computes aggregates across the full retained history. An empty
// history yields a zero-valued result, not an error.
func (t *Tracker) Statistics() Statistics {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.history) == 0 {
		return Statistics{}
	}

	totals := make([]float64, 0, len(t.history))
	stt := make([]float64, 0, len(t.history))
	llm := make([]float64, 0, len(t.history))
	tts := make([]float64, 0, len(t.history))
	for _, m := range t.history {
		totals = append(totals, m.TotalPipeline)
		stt = append(stt, m.STTTotal)
		llm = append(llm, m.LLMTotal)
		tts = append(tts, m.TTSTotal)
	}

	return Statistics{
		SampleCount: len(t.history),
		Total: StatSummary{
			Mean:   mean(totals),
			Median: percentile(totals, 50),
			P50:    percentile(totals, 50),
			P90:    percentile(totals, 90),
			P99:    percentile(totals, 99),
			Min:    minOf(totals),
			Max:    maxOf(totals),
		},
		STT: StageStats{Mean: mean(stt), P90: percentile(stt, 90)},
		LLM: StageStats{Mean: mean(llm), P90: percentile(llm, 90)},
		TTS: StageStats{Mean: mean(tts), P90: percentile(tts, 90)},
	}
}

// Bottlenecks flags stages whose recent mean exceeds its configured target.
// Requires at least 5 samples; scans at most the most recent 100.
func (t *Tracker) Bottlenecks() []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.history) < minBottleneckSamples {
		return []string{"not enough data to identify bottlenecks"}
	}

	recent := t.history
	if len(recent) > bottleneckWindow {
		recent = recent[len(recent)-bottleneckWindow:]
	}

	var sttSum, llmSum, ttsSum, totalSum float64
	for _, m := range recent {
		sttSum += m.STTTotal
		llmSum += m.LLMTotal
		ttsSum += m.TTSTotal
		totalSum += m.TotalPipeline
	}
	n := float64(len(recent))
	avgSTT, avgLLM, avgTTS, avgTotal := sttSum/n, llmSum/n, ttsSum/n, totalSum/n

	var bottlenecks []string
	if avgSTT > t.targets["stt"] {
		bottlenecks = append(bottlenecks, fmt.Sprintf(
			"stt averaging %.1fs (target: %.1fs) - consider a local whisper provider", avgSTT, t.targets["stt"]))
	}
	if avgLLM > t.targets["llm"] {
		bottlenecks = append(bottlenecks, fmt.Sprintf(
			"llm averaging %.1fs (target: %.1fs) - consider a faster model variant", avgLLM, t.targets["llm"]))
	}
	if avgTTS > t.targets["tts"] {
		bottlenecks = append(bottlenecks, fmt.Sprintf(
			"tts averaging %.1fs (target: %.1fs) - consider local synthesis or streaming", avgTTS, t.targets["tts"]))
	}
	if avgTotal > t.targets["total"] {
		bottlenecks = append(bottlenecks, fmt.Sprintf(
			"total pipeline averaging %.1fs (target: %.1fs)", avgTotal, t.targets["total"]))
	}
	if len(bottlenecks) == 0 {
		bottlenecks = append(bottlenecks, fmt.Sprintf("performance is within targets (avg: %.1fs)", avgTotal))
	}
	return bottlenecks
}

// ModelComparison groups LLM latency by model variant across the history.
func (t *Tracker) ModelComparison() map[string]ModelStats {
	t.mu.Lock()
	defer t.mu.Unlock()

	byModel := make(map[string][]float64)
	for _, m := range t.history {
		if m.LLMModelVariant == "" || m.LLMModelVariant == "none" {
			continue
		}
		byModel[m.LLMModelVariant] = append(byModel[m.LLMModelVariant], m.LLMTotal)
	}

	out := make(map[string]ModelStats, len(byModel))
	for model, times := range byModel {
		out[model] = ModelStats{
			Mean:        mean(times),
			Median:      percentile(times, 50),
			Min:         minOf(times),
			Max:         maxOf(times),
			SampleCount: len(times),
		}
	}
	return out
}

func mean(xs []float64) float64 {
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// percentile uses linear interpolation between closest ranks.
func percentile(xs []float64, p float64) float64 {
	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)

	if len(sorted) == 1 {
		return sorted[0]
	}
	rank := p / 100 * float64(len(sorted)-1)
	lo := int(rank)
	hi := lo + 1
	if hi >= len(sorted) {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

func minOf(xs []float64) float64 {
	m := xs[0]
	for _, x := range xs[1:] {
		if x < m {
			m = x
		}
	}
	return m
}

func maxOf(xs []float64) float64 {
	m := xs[0]
	for _, x := range xs[1:] {
		if x > m {
			m = x
		}
	}
	return m
}
