package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultTimeout applies when Config.Timeout is zero.
const DefaultTimeout = 30 * time.Second

// DefaultMaxRedirects applies when Config.MaxRedirects is zero.
const DefaultMaxRedirects = 10

// maxErrorBody caps how much of a failed response body is kept in a StatusError.
const maxErrorBody = 4096

// ErrNilContext is returned by Do when called without a context.
var ErrNilContext = errors.New("httpclient: context cannot be nil")

// Config defines the setup for the HTTP Client.
type Config struct {
	Timeout time.Duration
	// MaxRedirects caps followed redirects. Zero selects DefaultMaxRedirects;
	// negative disables redirects entirely.
	MaxRedirects int
	// Transport overrides the default round tripper, e.g. for proxies or uTLS.
	Transport http.RoundTripper
}

// StatusError reports a response outside the 2xx range.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

// Client wraps http.Client with a timeout, a redirect policy and JSON helpers
// shared by the article fetcher, the search provider and the LLM providers.
type Client struct {
	*http.Client
}

// New creates a client based on the provided configuration.
func New(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxRedirects == 0 {
		cfg.MaxRedirects = DefaultMaxRedirects
	}

	c := &http.Client{Timeout: cfg.Timeout}

	if cfg.MaxRedirects >= 0 {
		limit := cfg.MaxRedirects
		c.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			if len(via) >= limit {
				return fmt.Errorf("httpclient: stopped after %d redirects", limit)
			}
			return nil
		}
	} else {
		c.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}

	if cfg.Transport != nil {
		c.Transport = cfg.Transport
	}

	return &Client{Client: c}
}

// Do executes req bound to ctx. ctx controls cancellation independently of
// the client timeout.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}

	resp, err := c.Client.Do(req.Clone(ctx))
	if err != nil {
		return nil, fmt.Errorf("httpclient: %w", err)
	}
	return resp, nil
}

// PostJSON marshals payload, posts it to url with the given headers and
// returns the raw response body. Non-2xx responses yield a *StatusError
// alongside the status code.
func (c *Client) PostJSON(ctx context.Context, url string, payload any, headers map[string]string) (int, []byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.Do(ctx, req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet := respBody
		if len(snippet) > maxErrorBody {
			snippet = snippet[:maxErrorBody]
		}
		return resp.StatusCode, respBody, &StatusError{StatusCode: resp.StatusCode, Body: string(snippet)}
	}

	return resp.StatusCode, respBody, nil
}
