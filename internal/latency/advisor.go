package latency

import (
	"fmt"
	"sort"
)

// Suggestion is one actionable optimization recommendation.
type Suggestion struct {
	Priority         string  `json:"priority"`
	Component        string  `json:"component"`
	Issue            string  `json:"issue"`
	Recommendation   string  `json:"recommendation"`
	PotentialSavings float64 `json:"potential_savings"`
}

// modelLatency holds typical chat-completion latency per model (seconds).
type modelLatency struct {
	Fast    float64
	Typical float64
	Slow    float64
}

// modelLatencyTable drives model-switch recommendations. Values are typical
// end-to-end completion times observed for short conversational turns.
var modelLatencyTable = map[string]modelLatency{
	"gpt-5":      {Fast: 3.0, Typical: 4.5, Slow: 6.0},
	"gpt-5-mini": {Fast: 2.0, Typical: 2.5, Slow: 3.5},
	"gpt-5-nano": {Fast: 0.5, Typical: 1.0, Slow: 1.5},
	"gpt-4o":     {Fast: 2.5, Typical: 3.5, Slow: 4.5},
}

var priorityRank = map[string]int{"high": 0, "medium": 1, "low": 2}

// Advisor turns a metrics record into prioritized optimization suggestions.
type Advisor struct {
	// TargetLatency is the end-to-end budget in seconds. Records at or
	// under it produce no suggestions.
	TargetLatency float64

	// ComponentTargets are per-stage budgets in seconds.
	ComponentTargets map[string]float64
}

// NewAdvisor creates an advisor with the given total budget and the default
// per-stage targets.
func NewAdvisor(targetLatency float64) *Advisor {
	if targetLatency <= 0 {
		targetLatency = DefaultTargets["total"]
	}
	targets := make(map[string]float64, len(DefaultTargets))
	for k, v := range DefaultTargets {
		targets[k] = v
	}
	return &Advisor{
		TargetLatency:    targetLatency,
		ComponentTargets: targets,
	}
}

// Analyze inspects one record and returns suggestions ordered by priority,
// then by descending potential savings. Returns nil when the pipeline met
// the total budget.
func (a *Advisor) Analyze(m Metrics) []Suggestion {
	if m.TotalPipeline <= a.TargetLatency {
		return nil
	}

	var suggestions []Suggestion
	suggestions = append(suggestions, a.analyzeLLM(m)...)
	suggestions = append(suggestions, a.analyzeSTT(m)...)
	suggestions = append(suggestions, a.analyzeTTS(m)...)
	suggestions = append(suggestions, a.analyzeVAD(m)...)

	sort.SliceStable(suggestions, func(i, j int) bool {
		pi, pj := priorityRank[suggestions[i].Priority], priorityRank[suggestions[j].Priority]
		if pi != pj {
			return pi < pj
		}
		return suggestions[i].PotentialSavings > suggestions[j].PotentialSavings
	})
	return suggestions
}

func (a *Advisor) analyzeLLM(m Metrics) []Suggestion {
	target := a.ComponentTargets["llm"]
	if m.LLMTotal <= target {
		return nil
	}

	var out []Suggestion
	current, known := modelLatencyTable[m.LLMModelVariant]
	if known {
		for model, profile := range modelLatencyTable {
			if model == m.LLMModelVariant {
				continue
			}
			savings := current.Typical - profile.Typical
			if savings <= 0.5 {
				continue
			}
			priority := "medium"
			if savings >= 2.0 {
				priority = "high"
			}
			out = append(out, Suggestion{
				Priority:  priority,
				Component: "llm",
				Issue:     fmt.Sprintf("%s averaging %.1fs per response", m.LLMModelVariant, m.LLMTotal),
				Recommendation: fmt.Sprintf("switch to %s (typical: %.1fs vs %.1fs)",
					model, profile.Typical, current.Typical),
				PotentialSavings: savings,
			})
		}
	}
	if len(out) == 0 {
		out = append(out, Suggestion{
			Priority:         "medium",
			Component:        "llm",
			Issue:            fmt.Sprintf("llm took %.1fs (target: %.1fs)", m.LLMTotal, target),
			Recommendation:   "reduce max response tokens or shorten the system prompt",
			PotentialSavings: m.LLMTotal - target,
		})
	}
	return out
}

func (a *Advisor) analyzeSTT(m Metrics) []Suggestion {
	target := a.ComponentTargets["stt"]
	if m.STTTotal <= target {
		return nil
	}

	var out []Suggestion
	if m.STTNetworkUpload > 1.0 {
		out = append(out, Suggestion{
			Priority:         "high",
			Component:        "stt",
			Issue:            fmt.Sprintf("audio upload took %.1fs", m.STTNetworkUpload),
			Recommendation:   "switch to a local whisper server to eliminate the upload",
			PotentialSavings: m.STTNetworkUpload,
		})
	}
	out = append(out, Suggestion{
		Priority:         "medium",
		Component:        "stt",
		Issue:            fmt.Sprintf("transcription took %.1fs (target: %.1fs)", m.STTTotal, target),
		Recommendation:   "use a smaller whisper model or trim leading silence before upload",
		PotentialSavings: m.STTTotal - target,
	})
	return out
}

func (a *Advisor) analyzeTTS(m Metrics) []Suggestion {
	target := a.ComponentTargets["tts"]
	if m.TTSTotal <= target {
		return nil
	}
	return []Suggestion{{
		Priority:         "medium",
		Component:        "tts",
		Issue:            fmt.Sprintf("synthesis took %.1fs (target: %.1fs)", m.TTSTotal, target),
		Recommendation:   "stream synthesis output or switch to a local piper voice",
		PotentialSavings: m.TTSTotal - target,
	}}
}

func (a *Advisor) analyzeVAD(m Metrics) []Suggestion {
	target := a.ComponentTargets["silence_detection"]
	if m.SilenceDetection <= target {
		return nil
	}
	return []Suggestion{{
		Priority:         "low",
		Component:        "silence_detection",
		Issue:            fmt.Sprintf("waited %.1fs for end of speech (target: %.1fs)", m.SilenceDetection, target),
		Recommendation:   "lower the silence threshold for snappier turn-taking",
		PotentialSavings: m.SilenceDetection - target,
	}}
}

// QuickWins returns only the high-priority suggestions for a record.
func (a *Advisor) QuickWins(m Metrics) []Suggestion {
	var wins []Suggestion
	for _, s := range a.Analyze(m) {
		if s.Priority == "high" {
			wins = append(wins, s)
		}
	}
	return wins
}
