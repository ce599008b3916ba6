// Package metrics exposes Prometheus instruments for the gateway.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "voicegate_sessions_active",
		Help: "Currently active voice sessions",
	})

	SessionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "voicegate_sessions_total",
		Help: "Total voice sessions started",
	})

	SessionsRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "voicegate_sessions_rejected_total",
		Help: "Sessions rejected at the concurrency limit",
	})

	FramesReceived = promauto.NewCounter(prometheus.CounterOpts{
		Name: "voicegate_audio_frames_total",
		Help: "Total audio frames received",
	})

	Utterances = promauto.NewCounter(prometheus.CounterOpts{
		Name: "voicegate_utterances_total",
		Help: "Utterances processed end to end",
	})

	StageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "voicegate_stage_duration_seconds",
		Help:    "Per-stage latency",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.0, 3.0, 5.0, 8.0},
	}, []string{"stage"})

	E2EDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "voicegate_e2e_duration_seconds",
		Help:    "End-to-end latency from end of speech to audio delivery",
		Buckets: []float64{0.5, 1.0, 2.0, 3.0, 5.0, 8.0, 10.0, 15.0, 30.0},
	})

	Errors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "voicegate_errors_total",
		Help: "Error counts by stage",
	}, []string{"stage", "error_type"})

	StopPhrases = promauto.NewCounter(prometheus.CounterOpts{
		Name: "voicegate_stop_phrases_total",
		Help: "Sessions ended by a spoken stop phrase",
	})
)
