package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/FranksOps/scout/internal/config"
	"github.com/FranksOps/scout/internal/fingerprint"
	"github.com/FranksOps/scout/internal/llm"
	"github.com/FranksOps/scout/internal/logging"
	"github.com/FranksOps/scout/internal/pipeline"
	"github.com/FranksOps/scout/internal/scraper"
	"github.com/FranksOps/scout/internal/serp"
	"github.com/FranksOps/scout/internal/synth"
	"github.com/FranksOps/scout/pkg/proxy"
	"github.com/FranksOps/scout/pkg/ratelimit"
	"github.com/FranksOps/scout/pkg/useragent"
)

// deps is everything a command needs, built once from config.
type deps struct {
	cfg      *config.Config
	logger   *slog.Logger
	pipeline *pipeline.Pipeline
	sync     func() error
}

func newDeps(cfgPath string) (*deps, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}

	logger, sync, err := logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)
	for _, w := range cfg.Warnings() {
		logger.Warn(w)
	}

	fetcher, err := newFetcher(cfg.Fetch, logger)
	if err != nil {
		return nil, err
	}

	search := serp.NewSerper(serp.SerperConfig{
		Endpoint: cfg.Search.Endpoint,
		APIKey:   cfg.Search.APIKey,
		Timeout:  cfg.Search.Timeout,
	}, logger)

	// The model client is built on first use so a missing key fails the
	// first answer instead of startup.
	source := llm.NewLazy(llm.Config{
		Provider:    cfg.LLM.Provider,
		Model:       cfg.LLM.Model,
		BaseURL:     cfg.LLM.BaseURL,
		APIKey:      cfg.LLM.APIKey,
		MaxTokens:   cfg.LLM.MaxTokens,
		Temperature: cfg.LLM.Temperature,
		Timeout:     cfg.LLM.Timeout,
		Breaker: llm.BreakerConfig{
			MaxFailures: cfg.LLM.Breaker.MaxFailures,
			Timeout:     cfg.LLM.Breaker.Timeout,
		},
	}, logger)

	p := pipeline.New(search, fetcher, synth.New(source, logger), pipeline.Config{
		MaxResults:  cfg.Search.MaxResults,
		Concurrency: cfg.Fetch.Concurrency,
	}, logger)

	return &deps{cfg: cfg, logger: logger, pipeline: p, sync: sync}, nil
}

func newFetcher(cfg config.FetchConfig, logger *slog.Logger) (*scraper.Fetcher, error) {
	profile, err := fingerprint.ParseProfile(cfg.Fingerprint)
	if err != nil {
		return nil, err
	}

	var proxies *proxy.Pool
	if len(cfg.Proxies) > 0 {
		proxies = proxy.NewPool(proxy.Config{MaxFailures: 3, Cooldown: 5 * time.Minute})
		if err := proxies.Add(cfg.Proxies...); err != nil {
			return nil, fmt.Errorf("fetch proxies: %w", err)
		}
	}

	return scraper.NewFetcher(scraper.FetchConfig{
		Timeout:       cfg.Timeout,
		MaxRedirects:  cfg.MaxRedirects,
		MaxChars:      cfg.MaxContentChars,
		RespectRobots: cfg.RespectRobots,
		ProxyPool:     proxies,
		UAPool:        useragent.NewPool(cfg.UserAgents),
		Fingerprint:   profile,
		Limiter:       ratelimit.NewLimiter(cfg.RequestsPerSecond, cfg.Jitter),
	}, logger)
}

func (d *deps) close() {
	_ = d.sync()
}

// withDeps adapts a command body that needs deps.
func withDeps(cfgPath *string, run func(ctx context.Context, d *deps, args []string) error) func(ctx context.Context, args []string) error {
	return func(ctx context.Context, args []string) error {
		d, err := newDeps(*cfgPath)
		if err != nil {
			return fmt.Errorf("failed to initialize: %w", err)
		}
		defer d.close()
		return run(ctx, d, args)
	}
}
