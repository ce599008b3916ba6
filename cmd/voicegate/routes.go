package main

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/voicekit/voicegate/internal/config"
	"github.com/voicekit/voicegate/internal/latency"
	"github.com/voicekit/voicegate/internal/provider"
	"github.com/voicekit/voicegate/internal/session"
)

type routeDeps struct {
	cfg      config.Config
	registry *session.Registry
	tracker  *latency.Tracker
	handler  http.Handler
	stt      provider.STTProvider
	tts      provider.TTSProvider
}

// registerRoutes wires all HTTP endpoints to the shared router.
func registerRoutes(r *mux.Router, d routeDeps) {
	r.Handle("/ws/audio-stream", d.handler)
	r.HandleFunc("/", d.handleRoot).Methods("GET")
	r.HandleFunc("/health", d.handleHealth).Methods("GET")
	r.HandleFunc("/api/latency/stats", d.handleLatencyStats).Methods("GET")
	r.HandleFunc("/api/latency/bottlenecks", d.handleBottlenecks).Methods("GET")
	r.HandleFunc("/api/latency/models", d.handleModelComparison).Methods("GET")
	r.Handle("/metrics", promhttp.Handler())
}

func (d routeDeps) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"service": "voicegate",
		"status":  "running",
	})
}

func (d routeDeps) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"status":          "healthy",
		"active_sessions": d.registry.Count(),
		"components": map[string]any{
			"stt":       d.stt.Name(),
			"tts":       d.tts.Name(),
			"vad":       true,
			"websocket": true,
		},
	})
}

func (d routeDeps) handleLatencyStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, d.tracker.Statistics())
}

func (d routeDeps) handleBottlenecks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"bottlenecks": d.tracker.Bottlenecks(),
	})
}

func (d routeDeps) handleModelComparison(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, d.tracker.ModelComparison())
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
