// Package history persists latency records to PostgreSQL for offline
// analysis. Persistence is optional; a nil Recorder makes every write a
// no-op so the gateway runs without a database.
package history

import (
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx" driver

	"github.com/voicekit/voicegate/internal/latency"
)

// maxRows bounds the table size; the oldest rows are pruned on insert.
const maxRows = 100000

// Store persists latency records to PostgreSQL.
type Store struct {
	db *sql.DB
}

// Open connects to the latency database at connStr and ensures the schema.
func Open(connStr string) (*Store, error) {
	db, err := sql.Open("pgx", connStr)
	if err != nil {
		return nil, fmt.Errorf("history open: %w", err)
	}
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("history ping: %w", err)
	}
	if err = migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("history migrate: %w", err)
	}
	return &Store{db: db}, nil
}

func migrate(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS latency_records (
			id                BIGSERIAL PRIMARY KEY,
			session_id        TEXT NOT NULL,
			recorded_at       TIMESTAMPTZ NOT NULL,
			vad_processing    DOUBLE PRECISION NOT NULL,
			silence_detection DOUBLE PRECISION NOT NULL,
			stt_total         DOUBLE PRECISION NOT NULL,
			llm_total         DOUBLE PRECISION NOT NULL,
			llm_model_variant TEXT NOT NULL,
			tts_total         DOUBLE PRECISION NOT NULL,
			websocket         DOUBLE PRECISION NOT NULL,
			total_pipeline    DOUBLE PRECISION NOT NULL,
			stt_provider      TEXT NOT NULL,
			tts_provider      TEXT NOT NULL,
			transcript_length INTEGER NOT NULL,
			response_length   INTEGER NOT NULL
		)`)
	if err != nil {
		return err
	}
	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_latency_session ON latency_records (session_id)`)
	return err
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// InsertMetrics writes one latency record and prunes rows beyond maxRows.
func (s *Store) InsertMetrics(m latency.Metrics) error {
	_, err := s.db.Exec(`
		INSERT INTO latency_records (
			session_id, recorded_at, vad_processing, silence_detection,
			stt_total, llm_total, llm_model_variant, tts_total,
			websocket, total_pipeline, stt_provider, tts_provider,
			transcript_length, response_length
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		m.SessionID, m.Timestamp.UTC(), m.VADProcessing, m.SilenceDetection,
		m.STTTotal, m.LLMTotal, m.LLMModelVariant, m.TTSTotal,
		m.WebsocketTransmission, m.TotalPipeline, m.STTProvider, m.TTSProvider,
		m.TranscriptLength, m.ResponseLength,
	)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`
		DELETE FROM latency_records
		WHERE id NOT IN (SELECT id FROM latency_records ORDER BY id DESC LIMIT $1)`,
		maxRows,
	)
	return err
}

// SessionMetrics returns the persisted totals for one session, oldest first.
func (s *Store) SessionMetrics(sessionID string) ([]latency.Metrics, error) {
	rows, err := s.db.Query(`
		SELECT session_id, recorded_at, vad_processing, silence_detection,
		       stt_total, llm_total, llm_model_variant, tts_total,
		       websocket, total_pipeline, stt_provider, tts_provider,
		       transcript_length, response_length
		FROM latency_records WHERE session_id = $1 ORDER BY id ASC`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []latency.Metrics
	for rows.Next() {
		var m latency.Metrics
		if err = rows.Scan(
			&m.SessionID, &m.Timestamp, &m.VADProcessing, &m.SilenceDetection,
			&m.STTTotal, &m.LLMTotal, &m.LLMModelVariant, &m.TTSTotal,
			&m.WebsocketTransmission, &m.TotalPipeline, &m.STTProvider, &m.TTSProvider,
			&m.TranscriptLength, &m.ResponseLength,
		); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
