package proxy

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"
)

// ErrUnknownProxy is returned when marking a proxy the pool does not hold.
var ErrUnknownProxy = errors.New("proxy: not in pool")

type entry struct {
	url           *url.URL
	failures      int
	disabledUntil time.Time
}

// Pool rotates outbound fetches across proxies and benches the ones that
// keep failing. It is safe for concurrent use.
type Pool struct {
	mu          sync.Mutex
	entries     []*entry
	cursor      int
	maxFailures int
	cooldown    time.Duration
}

// Config defines settings for the proxy pool.
type Config struct {
	// MaxFailures before a proxy is benched.
	MaxFailures int
	// Cooldown is how long a benched proxy sits out.
	Cooldown time.Duration
}

// NewPool creates an empty pool. Zero config values get defaults of 3
// failures and a five minute cooldown.
func NewPool(cfg Config) *Pool {
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = 3
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 5 * time.Minute
	}
	return &Pool{
		maxFailures: cfg.MaxFailures,
		cooldown:    cfg.Cooldown,
	}
}

// Add parses raw proxy addresses and appends them. A missing scheme
// defaults to http. Blank entries are ignored.
func (p *Pool) Add(raw ...string) error {
	parsed := make([]*entry, 0, len(raw))
	for _, r := range raw {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		if !strings.Contains(r, "://") {
			r = "http://" + r
		}
		u, err := url.Parse(r)
		if err != nil {
			return fmt.Errorf("parse proxy %q: %w", r, err)
		}
		parsed = append(parsed, &entry{url: u})
	}

	p.mu.Lock()
	p.entries = append(p.entries, parsed...)
	p.mu.Unlock()
	return nil
}

// Len returns the number of proxies, benched or not.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.entries)
}

// Next returns the next usable proxy, or nil when the pool is empty or
// every proxy is benched.
func (p *Pool) Next() *url.URL {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := time.Now()
	for range p.entries {
		e := p.entries[p.cursor]
		p.cursor = (p.cursor + 1) % len(p.entries)

		if e.disabledUntil.IsZero() || now.After(e.disabledUntil) {
			if !e.disabledUntil.IsZero() {
				e.disabledUntil = time.Time{}
				e.failures = 0
			}
			return e.url
		}
	}
	return nil
}

// MarkSuccess forgives one prior failure of u.
func (p *Pool) MarkSuccess(u *url.URL) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	e, err := p.find(u)
	if err != nil {
		return err
	}
	if e.failures > 0 {
		e.failures--
	}
	return nil
}

// MarkFailure records a failure of u and benches it once MaxFailures is reached.
func (p *Pool) MarkFailure(u *url.URL) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	e, err := p.find(u)
	if err != nil {
		return err
	}
	e.failures++
	if e.failures >= p.maxFailures {
		e.disabledUntil = time.Now().Add(p.cooldown)
	}
	return nil
}

// find must be called with mu held.
func (p *Pool) find(u *url.URL) (*entry, error) {
	if u == nil {
		return nil, ErrUnknownProxy
	}
	target := u.String()
	for _, e := range p.entries {
		if e.url.String() == target {
			return e, nil
		}
	}
	return nil, ErrUnknownProxy
}
