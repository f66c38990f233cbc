package scraper

import (
	"context"
	"errors"
	"log/slog"

	"github.com/FranksOps/scout/internal/logging"
)

// FetchArticle downloads targetURL and returns its article text, or "" when
// anything goes wrong. Failures are logged, never returned: one bad URL must
// not stop the caller from trying the rest.
func (f *Fetcher) FetchArticle(ctx context.Context, targetURL string) string {
	logger := logging.FromContext(ctx, f.logger).With("url", targetURL)

	if f.robots != nil {
		allowed, err := f.robots.IsAllowed(ctx, targetURL, robotsAgent)
		if err != nil {
			logger.Warn("robots.txt check failed", "err", err)
		} else if !allowed {
			logger.Info("skipping article", "err", ErrDisallowed)
			return ""
		}
	}

	page, err := f.Fetch(ctx, targetURL)
	if err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) && statusErr.BlockedBy != "" {
			logger.Warn("article blocked by bot protection",
				"status", statusErr.StatusCode, "vendor", statusErr.BlockedBy)
		}
		logger.Error("error fetching article content", "err", err)
		return ""
	}

	text, err := Extract(page.Body, page.ContentType, f.config.MaxChars)
	if err != nil {
		logger.Error("error extracting article content", "err", err)
		return ""
	}

	logger.Debug("fetched article",
		slog.String("id", page.ID),
		slog.Int("status", page.StatusCode),
		slog.Duration("duration", page.Duration),
		slog.Int("chars", len([]rune(text))),
	)
	return text
}
