// Package responder generates the assistant reply for a transcribed
// utterance. The echo responder keeps the pipeline fully offline; the
// OpenAI responder produces a real chat completion.
package responder

import (
	"context"
	"fmt"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"github.com/voicekit/voicegate/internal/config"
)

// Result holds a generated reply and the model that produced it.
type Result struct {
	Text  string `json:"text"`
	Model string `json:"model"`
}

// Responder turns a transcript into a reply.
type Responder interface {
	Name() string
	Respond(ctx context.Context, transcript string) (*Result, error)
}

// New builds the responder named by cfg.Provider.
func New(cfg config.ResponseConfig) (Responder, error) {
	switch cfg.Provider {
	case "echo", "":
		return &EchoResponder{}, nil
	case "openai":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("openai responder: OPENAI_API_KEY not set")
		}
		return NewOpenAIResponder(cfg), nil
	default:
		return nil, fmt.Errorf("unknown response provider %q", cfg.Provider)
	}
}

// EchoResponder mirrors the transcript back. Deterministic, no network.
type EchoResponder struct{}

func (e *EchoResponder) Name() string { return "echo" }

func (e *EchoResponder) Respond(_ context.Context, transcript string) (*Result, error) {
	return &Result{
		Text:  fmt.Sprintf("You said: %s", transcript),
		Model: "none",
	}, nil
}

// OpenAIResponder generates replies with a chat completion.
type OpenAIResponder struct {
	client       openai.Client
	model        string
	systemPrompt string
	maxTokens    int
}

func NewOpenAIResponder(cfg config.ResponseConfig) *OpenAIResponder {
	return &OpenAIResponder{
		client:       openai.NewClient(option.WithAPIKey(cfg.APIKey)),
		model:        cfg.Model,
		systemPrompt: cfg.SystemPrompt,
		maxTokens:    cfg.MaxTokens,
	}
}

func (o *OpenAIResponder) Name() string { return "openai" }

func (o *OpenAIResponder) Respond(ctx context.Context, transcript string) (*Result, error) {
	completion, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(o.systemPrompt),
			openai.UserMessage(transcript),
		},
		MaxCompletionTokens: openai.Int(int64(o.maxTokens)),
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("chat completion: empty choices")
	}
	return &Result{
		Text:  completion.Choices[0].Message.Content,
		Model: o.model,
	}, nil
}
