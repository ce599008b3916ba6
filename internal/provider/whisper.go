package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

// WhisperServerSTT sends WAV audio as multipart form data to a local
// whisper.cpp-compatible server's /inference endpoint.
type WhisperServerSTT struct {
	url    string
	client *http.Client
}

func NewWhisperServerSTT(url string) *WhisperServerSTT {
	return &WhisperServerSTT{
		url:    url,
		client: newPooledHTTPClient(10, 30*time.Second),
	}
}

func (w *WhisperServerSTT) Name() string { return "whisper_server" }

func (w *WhisperServerSTT) Transcribe(ctx context.Context, wav []byte) (*TranscriptionResult, error) {
	body, contentType, err := buildMultipartWAV(wav, nil)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", w.url+"/inference", body)
	if err != nil {
		return nil, fmt.Errorf("create whisper request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := w.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("whisper request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("whisper status %d: %s", resp.StatusCode, string(respBody))
	}

	var result struct {
		Text string `json:"text"`
	}
	if err = json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode whisper response: %w", err)
	}

	return &TranscriptionResult{
		Text:     result.Text,
		Language: "en",
		Duration: wavDurationSeconds(wav),
	}, nil
}

// buildMultipartWAV packs WAV bytes into a multipart body with the given
// extra form fields.
func buildMultipartWAV(wav []byte, fields map[string]string) (*bytes.Buffer, string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", "audio.wav")
	if err != nil {
		return nil, "", fmt.Errorf("create form file: %w", err)
	}
	if _, err = part.Write(wav); err != nil {
		return nil, "", fmt.Errorf("write wav data: %w", err)
	}
	for key, val := range fields {
		if err = writer.WriteField(key, val); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", key, err)
		}
	}
	if err = writer.Close(); err != nil {
		return nil, "", fmt.Errorf("close writer: %w", err)
	}

	return &body, writer.FormDataContentType(), nil
}

// wavDurationSeconds derives the clip length from the payload size,
// assuming 16kHz mono PCM16 past the 44-byte header.
func wavDurationSeconds(wav []byte) float64 {
	pcmBytes := len(wav) - wavHeaderSize
	if pcmBytes <= 0 {
		return 0
	}
	return float64(pcmBytes) / 32000.0
}
