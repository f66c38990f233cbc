package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/FranksOps/scout/pkg/httpclient"
)

// Ollama uses the native /api/generate endpoint, which takes a single
// prompt. No credential is needed.
type Ollama struct {
	cfg    Config
	client *httpclient.Client
	logger *slog.Logger
}

var _ Client = (*Ollama)(nil)

// NewOllama creates an Ollama client.
func NewOllama(cfg Config, logger *slog.Logger) *Ollama {
	cfg.Provider = ProviderOllama
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = slog.Default()
	}
	return &Ollama{
		cfg:    cfg,
		client: httpclient.New(httpclient.Config{Timeout: cfg.Timeout}),
		logger: logger,
	}
}

func (o *Ollama) Name() string { return ProviderOllama }

func (o *Ollama) Shapes() []Shape { return []Shape{ShapePrompt} }

type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type generateResponse struct {
	Model    string `json:"model"`
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// Chat implements Client.
func (o *Ollama) Chat(context.Context, []Message) (*Response, error) {
	return nil, ErrUnsupportedShape
}

// Complete implements Client.
func (o *Ollama) Complete(ctx context.Context, prompt string) (*Response, error) {
	_, body, err := o.client.PostJSON(ctx, o.cfg.BaseURL+"/api/generate", generateRequest{
		Model:  o.cfg.Model,
		Prompt: prompt,
		Options: generateOptions{
			Temperature: o.cfg.Temperature,
			NumPredict:  o.cfg.MaxTokens,
		},
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("ollama generate: %w", err)
	}

	var resp generateResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("ollama generate: unmarshal response: %w", err)
	}
	o.logger.Debug("generate completed", "model", resp.Model, "done", resp.Done)

	return &Response{Content: resp.Response, HasContent: true, Model: resp.Model, Raw: body}, nil
}
