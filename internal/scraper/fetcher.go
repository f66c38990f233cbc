package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/FranksOps/scout/internal/bypass"
	"github.com/FranksOps/scout/internal/fingerprint"
	"github.com/FranksOps/scout/internal/metrics"
	"github.com/FranksOps/scout/pkg/httpclient"
	"github.com/FranksOps/scout/pkg/proxy"
	"github.com/FranksOps/scout/pkg/ratelimit"
	"github.com/FranksOps/scout/pkg/useragent"
	"github.com/google/uuid"
)

type contextKey string

const proxyKey contextKey = "proxy_url"

const (
	// DefaultTimeout bounds a single article download.
	DefaultTimeout = 50 * time.Second
	// DefaultMaxChars caps extracted article text.
	DefaultMaxChars = 5000
	// DefaultMaxBodyBytes caps how much HTML is read from one page.
	DefaultMaxBodyBytes = 10 << 20
)

// FetchConfig configures article downloads.
type FetchConfig struct {
	Timeout      time.Duration
	MaxRedirects int
	MaxBodyBytes int64
	// MaxChars truncates extracted text. Zero selects DefaultMaxChars.
	MaxChars int
	// RespectRobots skips URLs disallowed by the host's robots.txt.
	RespectRobots bool
	ProxyPool     *proxy.Pool
	UAPool        *useragent.Pool
	Fingerprint   fingerprint.Profile
	Limiter       *ratelimit.Limiter
	// InsecureSkipVerify disables TLS verification. Tests only.
	InsecureSkipVerify bool
}

// Page is a successfully downloaded document.
type Page struct {
	ID          string
	URL         string
	StatusCode  int
	ContentType string
	Body        []byte
	Duration    time.Duration
	FetchedAt   time.Time
}

// StatusError reports a non-2xx article response.
type StatusError struct {
	StatusCode int
	// BlockedBy names the bot-protection vendor when the response was a challenge page.
	BlockedBy string
}

func (e *StatusError) Error() string {
	if e.BlockedBy != "" {
		return fmt.Sprintf("status %d (blocked by %s)", e.StatusCode, e.BlockedBy)
	}
	return fmt.Sprintf("status %d", e.StatusCode)
}

// ErrDisallowed is returned when robots.txt forbids the URL.
var ErrDisallowed = errors.New("disallowed by robots.txt")

// Fetcher downloads article pages and turns them into plain text.
// A single Fetcher is shared by all requests; it keeps no per-request state.
type Fetcher struct {
	config FetchConfig
	client *httpclient.Client
	robots *RobotsTxtAuditor
	logger *slog.Logger
}

// NewFetcher builds a Fetcher. The transport is created once so connections
// are pooled across queries.
func NewFetcher(cfg FetchConfig, logger *slog.Logger) (*Fetcher, error) {
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxChars == 0 {
		cfg.MaxChars = DefaultMaxChars
	}
	if cfg.MaxBodyBytes == 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if cfg.UAPool == nil {
		cfg.UAPool = useragent.NewPool(nil)
	}
	if cfg.Fingerprint == "" {
		cfg.Fingerprint = fingerprint.ProfileGo
	}
	if logger == nil {
		logger = slog.Default()
	}

	// The proxy for a request travels in its context so one transport can
	// rotate proxies per fetch.
	proxyFunc := func(req *http.Request) (*url.URL, error) {
		if u, ok := req.Context().Value(proxyKey).(*url.URL); ok && u != nil {
			return u, nil
		}
		return http.ProxyFromEnvironment(req)
	}

	transport, err := fingerprint.Transport(cfg.Fingerprint, fingerprint.Options{
		Proxy:              proxyFunc,
		InsecureSkipVerify: cfg.InsecureSkipVerify,
	})
	if err != nil {
		return nil, fmt.Errorf("setup transport: %w", err)
	}

	f := &Fetcher{
		config: cfg,
		client: httpclient.New(httpclient.Config{
			Timeout:      cfg.Timeout,
			MaxRedirects: cfg.MaxRedirects,
			Transport:    transport,
		}),
		logger: logger,
	}
	if cfg.RespectRobots {
		f.robots = NewRobotsTxtAuditor(f, logger)
	}
	return f, nil
}

// Fetch issues a browser-like GET for targetURL. Transport failures and
// non-2xx responses are returned as errors; a non-2xx response that looks
// like a bot challenge carries the vendor in *StatusError.
func (f *Fetcher) Fetch(ctx context.Context, targetURL string) (*Page, error) {
	if err := f.config.Limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	var activeProxy *url.URL
	if f.config.ProxyPool != nil {
		if activeProxy = f.config.ProxyPool.Next(); activeProxy != nil {
			req = req.WithContext(context.WithValue(req.Context(), proxyKey, activeProxy))
		}
	}

	req.Header.Set("User-Agent", f.config.UAPool.Next())
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := f.client.Do(req.Context(), req)
	if err != nil {
		if activeProxy != nil {
			_ = f.config.ProxyPool.MarkFailure(activeProxy)
			metrics.ProxyFailures.WithLabelValues(activeProxy.String()).Inc()
		}
		metrics.RecordFetch(0, "", 0, time.Since(start))
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if activeProxy != nil {
		_ = f.config.ProxyPool.MarkSuccess(activeProxy)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.config.MaxBodyBytes))
	elapsed := time.Since(start)
	if err != nil {
		metrics.RecordFetch(resp.StatusCode, "", len(body), elapsed)
		return nil, fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		vendor, _ := bypass.Identify(bypass.Response{
			StatusCode: resp.StatusCode,
			Header:     resp.Header,
			Body:       body,
		}, bypass.DefaultDetectors())
		metrics.RecordFetch(resp.StatusCode, vendor, len(body), elapsed)
		return nil, &StatusError{StatusCode: resp.StatusCode, BlockedBy: vendor}
	}

	metrics.RecordFetch(resp.StatusCode, "", len(body), elapsed)

	return &Page{
		ID:          uuid.New().String(),
		URL:         targetURL,
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
		Duration:    elapsed,
		FetchedAt:   start.UTC(),
	}, nil
}
