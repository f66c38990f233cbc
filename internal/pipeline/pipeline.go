// Package pipeline answers a query end to end: search, fetch the top
// results, aggregate their text and have a language model write the answer.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/FranksOps/scout/internal/logging"
	"github.com/FranksOps/scout/internal/metrics"
	"github.com/FranksOps/scout/internal/serp"
)

const (
	// DefaultMaxResults is how many search hits are fetched.
	DefaultMaxResults = 3
	// DefaultConcurrency is how many articles are fetched at once.
	DefaultConcurrency = 3
)

// ArticleFetcher returns the plain text of a page, or "" when it has none.
type ArticleFetcher interface {
	FetchArticle(ctx context.Context, url string) string
}

// Synthesizer writes the answer. It must not fail; problems are expressed
// in the returned text.
type Synthesizer interface {
	Synthesize(ctx context.Context, document, query string) string
}

// Answer is the result of a successful run.
type Answer struct {
	Answer  string   `json:"answer"`
	Sources []string `json:"sources"`
}

// Config tunes a Pipeline.
type Config struct {
	MaxResults  int
	Concurrency int
}

// Pipeline is safe for concurrent use; it holds no per-request state.
type Pipeline struct {
	search  serp.Provider
	fetcher ArticleFetcher
	synth   Synthesizer
	cfg     Config
	logger  *slog.Logger
}

// New wires a Pipeline.
func New(search serp.Provider, fetcher ArticleFetcher, synth Synthesizer, cfg Config, logger *slog.Logger) *Pipeline {
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = DefaultMaxResults
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConcurrency
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{search: search, fetcher: fetcher, synth: synth, cfg: cfg, logger: logger}
}

// Answer runs the pipeline for query. Errors are always *Error.
func (p *Pipeline) Answer(ctx context.Context, query string) (answer *Answer, err error) {
	start := time.Now()
	logger := logging.FromContext(ctx, p.logger)

	defer func() {
		if r := recover(); r != nil {
			err = &Error{Kind: KindInternal, Message: fmt.Sprint(r)}
			answer = nil
		}
		outcome := "success"
		if err != nil {
			outcome = KindOf(err).String()
			if KindOf(err) == KindInternal {
				logger.Error("error processing query", "err", err)
			}
		}
		metrics.RecordQuery(outcome, time.Since(start))
	}()

	if strings.TrimSpace(query) == "" {
		logger.Warn("no query provided")
		return nil, &Error{Kind: KindBadRequest, Message: MsgNoQuery}
	}
	logger = logger.With("query", query)
	logger.Info("received query")

	results, err := p.search.Search(ctx, query, p.cfg.MaxResults)
	if err != nil {
		// Search failures are already logged by the provider and count as "no results".
		logger.Debug("search failed", "provider", p.search.Name(), "err", err)
		results = nil
	}
	if len(results) > p.cfg.MaxResults {
		results = results[:p.cfg.MaxResults]
	}
	if len(results) == 0 {
		logger.Info("no articles found")
		return nil, &Error{Kind: KindNotFound, Message: MsgNoArticles}
	}

	articles := p.fetchAll(ctx, logger, serp.URLs(results))
	if len(articles) == 0 {
		logger.Warn("could not fetch any content from the articles", "candidates", len(results))
		return nil, &Error{Kind: KindNotFound, Message: MsgNoContent}
	}

	document := Aggregate(articles)
	text := p.synth.Synthesize(ctx, document, query)

	sources := make([]string, len(articles))
	for i, a := range articles {
		sources[i] = a.URL
	}

	logger.Info("answer generated",
		"sources", len(sources),
		"candidates", len(results),
		"duration", time.Since(start),
	)
	return &Answer{Answer: text, Sources: sources}, nil
}

// fetchAll fetches every URL concurrently and returns the non-empty ones in
// input order. A failure, or a panic, on one URL only drops that URL.
func (p *Pipeline) fetchAll(ctx context.Context, logger *slog.Logger, urls []string) []Article {
	contents := make([]string, len(urls))

	var g errgroup.Group
	g.SetLimit(p.cfg.Concurrency)
	for i, u := range urls {
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					logger.Error("error fetching content", "url", u, "err", fmt.Sprint(r))
				}
			}()
			contents[i] = p.fetcher.FetchArticle(ctx, u)
			return nil
		})
	}
	_ = g.Wait()

	articles := make([]Article, 0, len(urls))
	for i, content := range contents {
		if content == "" {
			continue
		}
		articles = append(articles, Article{URL: urls[i], Content: content})
	}
	return articles
}
