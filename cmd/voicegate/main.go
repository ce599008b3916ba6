package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/voicekit/voicegate/internal/audio"
	"github.com/voicekit/voicegate/internal/config"
	"github.com/voicekit/voicegate/internal/history"
	"github.com/voicekit/voicegate/internal/latency"
	"github.com/voicekit/voicegate/internal/logging"
	"github.com/voicekit/voicegate/internal/provider"
	"github.com/voicekit/voicegate/internal/responder"
	"github.com/voicekit/voicegate/internal/session"
	"github.com/voicekit/voicegate/internal/ws"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging.Level)
	defer logger.Sync()

	stt, err := provider.NewSTT(cfg.STT)
	if err != nil {
		logger.Fatal("stt provider", zap.Error(err))
	}
	tts, err := provider.NewTTS(cfg.TTS)
	if err != nil {
		logger.Fatal("tts provider", zap.Error(err))
	}
	respond, err := responder.New(cfg.Response)
	if err != nil {
		logger.Fatal("responder", zap.Error(err))
	}

	maxDuration := time.Duration(cfg.Session.MaxDurationSec * float64(time.Second))
	registry := session.NewRegistry(maxDuration, logger)

	tracker := latency.NewTracker(cfg.Latency.MaxHistory, cfg.Latency.ComponentTargets, logger)
	advisor := latency.NewAdvisor(cfg.Latency.TargetTotalSec)

	var recorder *history.Recorder
	if cfg.Latency.PostgresDSN != "" {
		store, err := history.Open(cfg.Latency.PostgresDSN)
		if err != nil {
			logger.Fatal("history store", zap.Error(err))
		}
		defer store.Close()
		recorder = history.NewRecorder(store, logger)
		defer recorder.Close()
		logger.Info("latency history persistence enabled")
	}

	handler := ws.NewHandler(ws.HandlerConfig{
		Registry:    registry,
		STT:         stt,
		TTS:         tts,
		Responder:   respond,
		StopPhrases: session.NewStopPhraseDetector(cfg.Session.StopPhrases),
		VADConfig: audio.VADConfig{
			SampleRate:          cfg.Session.VAD.SampleRate,
			FrameDurationMs:     cfg.Session.VAD.FrameDurationMs,
			Aggressiveness:      cfg.Session.VAD.Aggressiveness,
			SilenceThresholdSec: cfg.Session.VAD.SilenceThresholdSec,
		},
		Tracker:       tracker,
		Advisor:       advisor,
		History:       recorder,
		StartTimeout:  time.Duration(cfg.Session.StartTimeoutSec * float64(time.Second)),
		MaxConcurrent: cfg.Session.MaxConcurrent,
		ReportLatency: cfg.Latency.ReportToClient,
		Logger:        logger,
	})

	// periodic sweep for sessions past the maximum duration
	sweepCtx, sweepCancel := context.WithCancel(context.Background())
	defer sweepCancel()
	go runCleanupSweeper(sweepCtx, registry, time.Duration(cfg.Session.CleanupEverySec*float64(time.Second)))

	router := mux.NewRouter()
	registerRoutes(router, routeDeps{
		cfg:      cfg,
		registry: registry,
		tracker:  tracker,
		handler:  handler,
		stt:      stt,
		tts:      tts,
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{Addr: addr, Handler: router}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		logger.Info("shutting down", zap.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}()

	logger.Info("gateway starting",
		zap.String("addr", addr),
		zap.String("stt", stt.Name()),
		zap.String("tts", tts.Name()),
		zap.String("responder", respond.Name()),
		zap.Int("max_concurrent", cfg.Session.MaxConcurrent),
	)

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server failed", zap.Error(err))
	}

	logger.Info("gateway stopped")
}

func runCleanupSweeper(ctx context.Context, registry *session.Registry, every time.Duration) {
	if every <= 0 {
		every = 30 * time.Second
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			registry.CleanupExpired()
		}
	}
}
