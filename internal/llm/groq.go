package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/FranksOps/scout/pkg/httpclient"
)

// Groq talks to any OpenAI-compatible /chat/completions endpoint, Groq by
// default. It only serves ShapeMessages.
type Groq struct {
	cfg    Config
	client *httpclient.Client
	logger *slog.Logger
}

var _ Client = (*Groq)(nil)

// NewGroq creates a Groq client. cfg.APIKey is required.
func NewGroq(cfg Config, logger *slog.Logger) (*Groq, error) {
	cfg.Provider = ProviderGroq
	cfg = cfg.withDefaults()
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("groq: %w", ErrMissingAPIKey)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Groq{
		cfg:    cfg,
		client: httpclient.New(httpclient.Config{Timeout: cfg.Timeout}),
		logger: logger,
	}, nil
}

func (g *Groq) Name() string { return ProviderGroq }

func (g *Groq) Shapes() []Shape { return []Shape{ShapeMessages} }

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float64   `json:"temperature"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// Chat implements Client.
func (g *Groq) Chat(ctx context.Context, messages []Message) (*Response, error) {
	_, body, err := g.client.PostJSON(ctx, g.cfg.BaseURL+"/chat/completions", chatRequest{
		Model:       g.cfg.Model,
		Messages:    messages,
		MaxTokens:   g.cfg.MaxTokens,
		Temperature: g.cfg.Temperature,
	}, map[string]string{
		"Authorization": "Bearer " + g.cfg.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("groq chat: %w", err)
	}

	var resp chatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("groq chat: unmarshal response: %w", err)
	}

	out := &Response{HasContent: true, Model: resp.Model, Raw: body}
	if len(resp.Choices) > 0 {
		out.Content = resp.Choices[0].Message.Content
		g.logger.Debug("chat completed", "model", resp.Model, "finish_reason", resp.Choices[0].FinishReason)
	}
	return out, nil
}

// Complete implements Client. Chat completion endpoints take no bare prompt.
func (g *Groq) Complete(context.Context, string) (*Response, error) {
	return nil, ErrUnsupportedShape
}
