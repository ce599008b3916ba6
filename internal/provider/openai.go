package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

const openaiBaseURL = "https://api.openai.com"

// OpenAISTT transcribes WAV audio via the OpenAI audio transcription API.
type OpenAISTT struct {
	apiKey      string
	model       string
	language    string
	temperature float64
	baseURL     string
	client      *http.Client
}

func NewOpenAISTT(apiKey, model, language string, temperature float64) *OpenAISTT {
	if model == "" {
		model = "whisper-1"
	}
	return &OpenAISTT{
		apiKey:      apiKey,
		model:       model,
		language:    language,
		temperature: temperature,
		baseURL:     openaiBaseURL,
		client:      newPooledHTTPClient(10, 60*time.Second),
	}
}

func (o *OpenAISTT) Name() string { return "openai_whisper" }

func (o *OpenAISTT) Transcribe(ctx context.Context, wav []byte) (*TranscriptionResult, error) {
	fields := map[string]string{
		"model":           o.model,
		"response_format": "verbose_json",
		"temperature":     strconv.FormatFloat(o.temperature, 'f', -1, 64),
	}
	if o.language != "" {
		fields["language"] = o.language
	}
	body, contentType, err := buildMultipartWAV(wav, fields)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", o.baseURL+"/v1/audio/transcriptions", body)
	if err != nil {
		return nil, fmt.Errorf("create transcription request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("transcription request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("transcription status %d: %s", resp.StatusCode, string(respBody))
	}

	var result struct {
		Text     string  `json:"text"`
		Language string  `json:"language"`
		Duration float64 `json:"duration"`
	}
	if err = json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode transcription response: %w", err)
	}

	return &TranscriptionResult{
		Text:     result.Text,
		Language: result.Language,
		Duration: result.Duration,
	}, nil
}

// OpenAITTS synthesizes speech via the OpenAI /v1/audio/speech API.
// Returns MP3 audio.
type OpenAITTS struct {
	apiKey  string
	model   string
	voice   string
	speed   float64
	baseURL string
	client  *http.Client
}

func NewOpenAITTS(apiKey, model, voice string, speed float64) *OpenAITTS {
	if model == "" {
		model = "tts-1"
	}
	if voice == "" {
		voice = "nova"
	}
	if speed <= 0 {
		speed = 1.0
	}
	return &OpenAITTS{
		apiKey:  apiKey,
		model:   model,
		voice:   voice,
		speed:   speed,
		baseURL: openaiBaseURL,
		client:  newPooledHTTPClient(10, 60*time.Second),
	}
}

func (o *OpenAITTS) Name() string { return "openai_tts" }

func (o *OpenAITTS) Synthesize(ctx context.Context, text string) (*SynthesisResult, error) {
	body, err := json.Marshal(struct {
		Model          string  `json:"model"`
		Input          string  `json:"input"`
		Voice          string  `json:"voice"`
		Speed          float64 `json:"speed"`
		ResponseFormat string  `json:"response_format"`
	}{Model: o.model, Input: text, Voice: o.voice, Speed: o.speed, ResponseFormat: "mp3"})
	if err != nil {
		return nil, fmt.Errorf("marshal speech request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", o.baseURL+"/v1/audio/speech", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create speech request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("speech request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("speech status %d: %s", resp.StatusCode, string(respBody))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read speech response: %w", err)
	}

	return &SynthesisResult{
		Audio:      audio,
		Format:     "mp3",
		SampleRate: 24000,
	}, nil
}
