package serp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/FranksOps/scout/internal/metrics"
	"github.com/FranksOps/scout/pkg/httpclient"
)

const (
	// DefaultSerperEndpoint is the Serper Google search API.
	DefaultSerperEndpoint = "https://google.serper.dev/search"
	// DefaultTimeout bounds one search call.
	DefaultTimeout = 30 * time.Second
)

// SerperConfig configures the Serper provider.
type SerperConfig struct {
	Endpoint string
	APIKey   string
	Timeout  time.Duration
}

// Serper queries google.serper.dev and returns the organic result links.
type Serper struct {
	endpoint string
	apiKey   string
	client   *httpclient.Client
	logger   *slog.Logger
}

var _ Provider = (*Serper)(nil)

// NewSerper creates a Serper provider.
func NewSerper(cfg SerperConfig, logger *slog.Logger) *Serper {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultSerperEndpoint
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Serper{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		client:   httpclient.New(httpclient.Config{Timeout: cfg.Timeout}),
		logger:   logger.With("provider", "serper"),
	}
}

// Name implements Provider.
func (s *Serper) Name() string { return "serper" }

type serperRequest struct {
	Q string `json:"q"`
}

type serperResponse struct {
	Organic []struct {
		Title string `json:"title"`
		Link  string `json:"link"`
	} `json:"organic"`
}

// Search implements Provider. Entries without a link are skipped. Any
// non-200 answer or transport failure is logged and returned as an error
// with no results; callers treat that the same as an empty search.
func (s *Serper) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	if limit < 0 {
		return nil, fmt.Errorf("limit cannot be negative: %d", limit)
	}
	if limit == 0 {
		limit = DefaultMaxResults
	}
	if s.apiKey == "" {
		s.logger.Error("search skipped", "err", ErrMissingAPIKey)
		metrics.RecordSearch(s.Name(), 0)
		return nil, ErrMissingAPIKey
	}

	status, body, err := s.client.PostJSON(ctx, s.endpoint, serperRequest{Q: query}, map[string]string{
		"X-API-KEY": s.apiKey,
	})
	metrics.RecordSearch(s.Name(), status)
	if err != nil {
		var statusErr *httpclient.StatusError
		if errors.As(err, &statusErr) {
			s.logger.Error("search api error", "status", status, "body", strings.TrimSpace(statusErr.Body))
		} else {
			s.logger.Error("search request failed", "err", err)
		}
		return nil, fmt.Errorf("serper search: %w", err)
	}

	var resp serperResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		s.logger.Error("search response malformed", "status", status, "err", err)
		return nil, fmt.Errorf("decode serper response: %w", err)
	}

	results := make([]Result, 0, limit)
	for _, o := range resp.Organic {
		if o.Link == "" {
			continue
		}
		if len(results) == limit {
			break
		}
		results = append(results, Result{URL: o.Link, Title: o.Title})
	}

	s.logger.Info("search completed", "status", status, "organic", len(resp.Organic), "results", len(results))
	return results, nil
}
