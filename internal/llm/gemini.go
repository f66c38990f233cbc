package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/genai"

	"github.com/FranksOps/scout/pkg/httpclient"
)

// Gemini serves both shapes through the Gemini API.
type Gemini struct {
	cfg    Config
	client *genai.Client
	logger *slog.Logger
}

var _ Client = (*Gemini)(nil)

// NewGemini creates a Gemini client. cfg.APIKey is required.
func NewGemini(ctx context.Context, cfg Config, logger *slog.Logger) (*Gemini, error) {
	cfg.Provider = ProviderGemini
	cfg = cfg.withDefaults()
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini: %w", ErrMissingAPIKey)
	}
	if logger == nil {
		logger = slog.Default()
	}

	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpclient.New(httpclient.Config{Timeout: cfg.Timeout}).Client,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}

	return &Gemini{cfg: cfg, client: client, logger: logger}, nil
}

func (g *Gemini) Name() string { return ProviderGemini }

func (g *Gemini) Shapes() []Shape { return []Shape{ShapeMessages, ShapePrompt} }

func (g *Gemini) generateConfig() *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(g.cfg.Temperature)),
		MaxOutputTokens: int32(g.cfg.MaxTokens),
	}
}

// Chat implements Client. System messages become the system instruction.
func (g *Gemini) Chat(ctx context.Context, messages []Message) (*Response, error) {
	config := g.generateConfig()

	var system []string
	contents := make([]*genai.Content, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			system = append(system, m.Content)
		case RoleAssistant:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
		}
	}
	if len(system) > 0 {
		config.SystemInstruction = genai.NewContentFromText(strings.Join(system, "\n\n"), genai.RoleUser)
	}

	return g.generate(ctx, contents, config)
}

// Complete implements Client.
func (g *Gemini) Complete(ctx context.Context, prompt string) (*Response, error) {
	return g.generate(ctx, genai.Text(prompt), g.generateConfig())
}

func (g *Gemini) generate(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (*Response, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.cfg.Model, contents, config)
	if err != nil {
		return nil, fmt.Errorf("gemini generate: %w", err)
	}

	raw, err := json.Marshal(resp)
	if err != nil {
		g.logger.Debug("could not encode gemini response", "err", err)
	}
	g.logger.Debug("generate completed", "model", g.cfg.Model, "candidates", len(resp.Candidates))

	return &Response{Content: resp.Text(), HasContent: true, Model: resp.ModelVersion, Raw: raw}, nil
}
