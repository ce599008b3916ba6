// Package ws implements the streaming voice endpoint: one websocket
// connection per session, binary PCM frames in, structured events and
// synthesized audio out.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/voicekit/voicegate/internal/audio"
	"github.com/voicekit/voicegate/internal/history"
	"github.com/voicekit/voicegate/internal/latency"
	"github.com/voicekit/voicegate/internal/metrics"
	"github.com/voicekit/voicegate/internal/provider"
	"github.com/voicekit/voicegate/internal/responder"
	"github.com/voicekit/voicegate/internal/session"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  16384,
	WriteBufferSize: 16384,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// errSessionEnding signals that a stop phrase ended the session mid-cycle.
// Not an error condition; it short-circuits the rest of the utterance.
var errSessionEnding = errors.New("session ending")

// HandlerConfig holds the shared collaborators for all voice sessions.
type HandlerConfig struct {
	Registry    *session.Registry
	STT         provider.STTProvider
	TTS         provider.TTSProvider
	Responder   responder.Responder
	StopPhrases *session.StopPhraseDetector
	VADConfig   audio.VADConfig

	Tracker *latency.Tracker
	Advisor *latency.Advisor
	History *history.Recorder

	StartTimeout  time.Duration
	MaxConcurrent int
	ReportLatency bool
	Logger        *zap.Logger
}

// Handler manages websocket voice sessions with admission control.
type Handler struct {
	cfg HandlerConfig
	sem chan struct{}
}

// NewHandler creates the shared session handler with a concurrency limit.
func NewHandler(cfg HandlerConfig) *Handler {
	maxConc := cfg.MaxConcurrent
	if maxConc <= 0 {
		maxConc = 100
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.StartTimeout <= 0 {
		cfg.StartTimeout = 10 * time.Second
	}
	return &Handler{
		cfg: cfg,
		sem: make(chan struct{}, maxConc),
	}
}

// ServeHTTP upgrades the connection and runs the session loop.
// Returns 503 when at capacity.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	select {
	case h.sem <- struct{}{}:
		defer func() { <-h.sem }()
	default:
		metrics.SessionsRejected.Inc()
		http.Error(w, "at capacity", http.StatusServiceUnavailable)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.cfg.Logger.Error("websocket upgrade failed", zap.Error(err))
		return
	}

	h.runSession(conn)
}

// voiceSession bundles the per-connection state owned by one handler
// goroutine.
type voiceSession struct {
	sess   *session.Session
	vad    *audio.VAD
	conn   *websocket.Conn
	send   func(ServerMessage) error
	logger *zap.Logger

	// accumulated VAD compute time for the in-flight utterance
	vadSeconds float64
	// when the most recent speech frame arrived, for measuring the
	// actual silence wait
	lastSpeechAt time.Time
}

func (h *Handler) runSession(conn *websocket.Conn) {
	// teardown runs exactly once on every exit path
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	msg, err := h.awaitSessionStart(conn)
	if err != nil {
		h.cfg.Logger.Warn("session rejected", zap.Error(err))
		conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "session_start required"),
			time.Now().Add(time.Second),
		)
		return
	}

	vad, err := audio.NewVAD(h.cfg.VADConfig)
	if err != nil {
		h.cfg.Logger.Error("vad init failed", zap.Error(err))
		return
	}

	sessionID := uuid.NewString()
	sess := h.cfg.Registry.Create(sessionID, msg.DeviceID)
	defer h.cfg.Registry.End(sessionID)

	metrics.SessionsActive.Inc()
	metrics.SessionsTotal.Inc()
	defer metrics.SessionsActive.Dec()

	logger := h.cfg.Logger.With(
		zap.String("session_id", sessionID),
		zap.String("device_id", sess.DeviceID),
	)
	logger.Info("session started")

	vs := &voiceSession{
		sess:   sess,
		vad:    vad,
		conn:   conn,
		send:   newSender(conn, logger),
		logger: logger,
	}

	sess.State = session.StateListening
	if err = vs.send(ServerMessage{Type: "session_started", SessionID: sessionID}); err != nil {
		return
	}

	h.loop(ctx, vs)
	logger.Info("session closed")
}

// awaitSessionStart reads the first message under a deadline and requires it
// to be a session_start.
func (h *Handler) awaitSessionStart(conn *websocket.Conn) (*ClientMessage, error) {
	conn.SetReadDeadline(time.Now().Add(h.cfg.StartTimeout))
	defer conn.SetReadDeadline(time.Time{})

	msgType, data, err := conn.ReadMessage()
	if err != nil {
		return nil, fmt.Errorf("read first message: %w", err)
	}
	if msgType != websocket.TextMessage {
		return nil, errors.New("first message must be session_start")
	}
	var msg ClientMessage
	if err = json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("parse first message: %w", err)
	}
	if msg.Type != "session_start" {
		return nil, fmt.Errorf("first message type %q, want session_start", msg.Type)
	}
	return &msg, nil
}

// loop processes inbound messages strictly in arrival order until the client
// ends the session or the transport drops.
func (h *Handler) loop(ctx context.Context, vs *voiceSession) {
	for {
		msgType, data, err := vs.conn.ReadMessage()
		if err != nil {
			vs.logger.Info("connection closed", zap.Error(err))
			return
		}

		switch msgType {
		case websocket.BinaryMessage:
			if done := h.handleFrame(ctx, vs, data); done {
				return
			}
		case websocket.TextMessage:
			var msg ClientMessage
			if err = json.Unmarshal(data, &msg); err != nil {
				vs.logger.Warn("malformed client message", zap.Error(err))
				continue
			}
			if msg.Type == "session_end" {
				vs.logger.Info("client ended session", zap.String("reason", msg.Reason))
				return
			}
		}
	}
}

// handleFrame appends one binary chunk and feeds standard-size frames to the
// VAD. Returns true when the session should end.
func (h *Handler) handleFrame(ctx context.Context, vs *voiceSession, frame []byte) bool {
	metrics.FramesReceived.Inc()
	vs.sess.AppendAudio(frame)

	// non-standard sizes are kept as raw audio but cannot be classified
	if len(frame) != vs.vad.FrameSize() {
		return false
	}

	vadStart := time.Now()
	isSpeech, endOfSpeech, err := vs.vad.ProcessFrame(frame)
	vs.vadSeconds += time.Since(vadStart).Seconds()
	if err != nil {
		vs.logger.Warn("vad rejected frame", zap.Error(err))
		return false
	}
	if isSpeech {
		vs.lastSpeechAt = time.Now()
	}
	if !endOfSpeech {
		return false
	}

	err = h.processUtterance(ctx, vs)
	if errors.Is(err, errSessionEnding) {
		return true
	}
	if err != nil {
		// utterance failures are contained; the session keeps listening
		metrics.Errors.WithLabelValues("utterance", "provider").Inc()
		vs.logger.Error("utterance failed", zap.Error(err))
		vs.send(ServerMessage{Type: "error", Message: err.Error()})
	}
	h.resumeListening(vs)
	return false
}

// resumeListening resets the per-utterance state and tells the client the
// session is listening again.
func (h *Handler) resumeListening(vs *voiceSession) {
	vs.sess.ClearAudioBuffer()
	vs.vad.Reset()
	vs.vadSeconds = 0
	vs.lastSpeechAt = time.Time{}
	vs.sess.State = session.StateListening
	vs.send(ServerMessage{Type: "status", State: "listening"})
}

// processUtterance runs the full STT -> respond -> TTS cycle for the
// buffered audio. Returns errSessionEnding when a stop phrase matched.
func (h *Handler) processUtterance(ctx context.Context, vs *voiceSession) error {
	pipelineStart := time.Now()
	m := latency.NewMetrics(vs.sess.ID)
	m.STTProvider = h.cfg.STT.Name()
	m.TTSProvider = h.cfg.TTS.Name()
	m.VADProcessing = vs.vadSeconds
	if !vs.lastSpeechAt.IsZero() {
		m.SilenceDetection = time.Since(vs.lastSpeechAt).Seconds()
	}

	vs.sess.State = session.StateProcessing
	if err := vs.send(ServerMessage{Type: "status", State: "processing"}); err != nil {
		return err
	}

	wav := audio.PCMToWAV(vs.sess.AudioBuffer(), h.cfg.VADConfig.SampleRate)

	sttStart := time.Now()
	transcription, err := h.cfg.STT.Transcribe(ctx, wav)
	m.STTTotal = time.Since(sttStart).Seconds()
	if err != nil {
		return fmt.Errorf("transcription: %w", err)
	}
	metrics.StageDuration.WithLabelValues("stt").Observe(m.STTTotal)

	vs.sess.Transcript = transcription.Text
	m.TranscriptLength = len(transcription.Text)
	if err = vs.send(ServerMessage{Type: "transcript", Text: transcription.Text}); err != nil {
		return err
	}

	if phrase, ok := h.cfg.StopPhrases.MatchedPhrase(transcription.Text); ok {
		metrics.StopPhrases.Inc()
		vs.logger.Info("stop phrase detected", zap.String("phrase", phrase))
		vs.send(ServerMessage{
			Type:          "session_ending",
			Reason:        "stop phrase detected",
			MatchedPhrase: phrase,
		})
		return errSessionEnding
	}

	llmStart := time.Now()
	reply, err := h.cfg.Responder.Respond(ctx, transcription.Text)
	m.LLMTotal = time.Since(llmStart).Seconds()
	if err != nil {
		return fmt.Errorf("response generation: %w", err)
	}
	metrics.StageDuration.WithLabelValues("llm").Observe(m.LLMTotal)
	m.LLMModelVariant = reply.Model

	vs.sess.Response = reply.Text
	m.ResponseLength = len(reply.Text)
	if err = vs.send(ServerMessage{Type: "response_text", Text: reply.Text}); err != nil {
		return err
	}

	vs.sess.State = session.StateResponding
	ttsStart := time.Now()
	synthesis, err := h.cfg.TTS.Synthesize(ctx, reply.Text)
	m.TTSTotal = time.Since(ttsStart).Seconds()
	if err != nil {
		return fmt.Errorf("synthesis: %w", err)
	}
	metrics.StageDuration.WithLabelValues("tts").Observe(m.TTSTotal)

	sendStart := time.Now()
	if err = vs.conn.WriteMessage(websocket.BinaryMessage, synthesis.Audio); err != nil {
		return fmt.Errorf("send audio: %w", err)
	}
	m.WebsocketTransmission = time.Since(sendStart).Seconds()
	metrics.StageDuration.WithLabelValues("websocket").Observe(m.WebsocketTransmission)

	m.TotalPipeline = time.Since(pipelineStart).Seconds()
	metrics.E2EDuration.Observe(m.TotalPipeline)
	metrics.Utterances.Inc()

	h.cfg.Tracker.Record(m)
	h.cfg.History.Record(m)

	if suggestions := h.cfg.Advisor.Analyze(m); len(suggestions) > 0 {
		vs.logger.Info("optimization suggestions",
			zap.Int("count", len(suggestions)),
			zap.String("slowest", m.SlowestComponent()),
		)
		if h.cfg.ReportLatency {
			vs.send(ServerMessage{Type: "latency_report", Metrics: &m, Suggestions: suggestions})
		}
	} else if h.cfg.ReportLatency {
		vs.send(ServerMessage{Type: "latency_report", Metrics: &m})
	}

	return nil
}

// newSender serializes all structured writes on the connection. Binary audio
// writes happen on the same goroutine as the session loop, so the mutex only
// guards against overlap between structured messages.
func newSender(conn *websocket.Conn, logger *zap.Logger) func(ServerMessage) error {
	var mu sync.Mutex
	return func(msg ServerMessage) error {
		mu.Lock()
		defer mu.Unlock()

		data, err := json.Marshal(msg)
		if err != nil {
			return fmt.Errorf("marshal %s: %w", msg.Type, err)
		}
		if err = conn.WriteMessage(websocket.TextMessage, data); err != nil {
			logger.Warn("write failed", zap.String("type", msg.Type), zap.Error(err))
			return err
		}
		return nil
	}
}
