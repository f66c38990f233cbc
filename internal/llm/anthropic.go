package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/FranksOps/scout/pkg/httpclient"
)

// Anthropic serves ShapeMessages through the Messages API.
type Anthropic struct {
	cfg    Config
	client anthropic.Client
	logger *slog.Logger
}

var _ Client = (*Anthropic)(nil)

// NewAnthropic creates an Anthropic client. cfg.APIKey is required.
func NewAnthropic(cfg Config, logger *slog.Logger) (*Anthropic, error) {
	cfg.Provider = ProviderAnthropic
	cfg = cfg.withDefaults()
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic: %w", ErrMissingAPIKey)
	}
	if logger == nil {
		logger = slog.Default()
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(httpclient.New(httpclient.Config{Timeout: cfg.Timeout}).Client),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &Anthropic{
		cfg:    cfg,
		client: anthropic.NewClient(opts...),
		logger: logger,
	}, nil
}

func (a *Anthropic) Name() string { return ProviderAnthropic }

func (a *Anthropic) Shapes() []Shape { return []Shape{ShapeMessages} }

// Chat implements Client. System messages become the request's system prompt.
func (a *Anthropic) Chat(ctx context.Context, messages []Message) (*Response, error) {
	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(a.cfg.Model),
		MaxTokens:   int64(a.cfg.MaxTokens),
		Temperature: anthropic.Float(a.cfg.Temperature),
	}

	var system []string
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			system = append(system, m.Content)
		case RoleAssistant:
			params.Messages = append(params.Messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		default:
			params.Messages = append(params.Messages, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		}
	}
	if len(system) > 0 {
		params.System = []anthropic.TextBlockParam{{Text: strings.Join(system, "\n\n")}}
	}

	resp, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("anthropic messages: %w", err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	a.logger.Debug("messages completed",
		"model", string(resp.Model),
		"stop_reason", string(resp.StopReason),
		"input_tokens", resp.Usage.InputTokens,
		"output_tokens", resp.Usage.OutputTokens,
	)

	return &Response{
		Content:    text.String(),
		HasContent: true,
		Model:      string(resp.Model),
		Raw:        []byte(resp.RawJSON()),
	}, nil
}

// Complete implements Client.
func (a *Anthropic) Complete(context.Context, string) (*Response, error) {
	return nil, ErrUnsupportedShape
}
