package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// PiperTTS synthesizes speech via a local piper-tts HTTP server.
// Returns WAV audio at the server's native rate.
type PiperTTS struct {
	url    string
	voice  string
	client *http.Client
}

func NewPiperTTS(url, voice string) *PiperTTS {
	return &PiperTTS{
		url:    url,
		voice:  voice,
		client: newPooledHTTPClient(10, 30*time.Second),
	}
}

func (p *PiperTTS) Name() string { return "piper" }

func (p *PiperTTS) Synthesize(ctx context.Context, text string) (*SynthesisResult, error) {
	body, err := json.Marshal(struct {
		Text  string `json:"text"`
		Voice string `json:"voice,omitempty"`
	}{Text: text, Voice: p.voice})
	if err != nil {
		return nil, fmt.Errorf("marshal piper request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", p.url+"/synthesize", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create piper request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("piper request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("piper status %d: %s", resp.StatusCode, string(respBody))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read piper response: %w", err)
	}

	return &SynthesisResult{
		Audio:      audio,
		Format:     "wav",
		SampleRate: 22050,
	}, nil
}
