package llm

import (
	"context"
	"fmt"
	"log/slog"
)

// New constructs the provider named by cfg.Provider behind a circuit breaker.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (Client, error) {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("llm_provider", cfg.Provider, "llm_model", cfg.Model)

	var (
		client Client
		err    error
	)
	switch cfg.Provider {
	case ProviderGroq:
		client, err = NewGroq(cfg, logger)
	case ProviderAnthropic:
		client, err = NewAnthropic(cfg, logger)
	case ProviderGemini:
		client, err = NewGemini(ctx, cfg, logger)
	case ProviderOllama:
		client = NewOllama(cfg, logger)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}
	if err != nil {
		return nil, err
	}

	logger.Info("language model client ready", "shapes", client.Shapes())
	return NewBreaker(client, cfg.Breaker, logger), nil
}
