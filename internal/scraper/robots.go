package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"

	"github.com/temoto/robotstxt"
	"golang.org/x/sync/singleflight"
)

// robotsAgent is the product token matched against robots.txt groups.
const robotsAgent = "scout"

// RobotsTxtAuditor answers whether an article URL may be fetched. Rules are
// kept per host for the life of the process once the host has answered;
// hosts whose robots.txt is missing or unparseable allow everything.
type RobotsTxtAuditor struct {
	fetcher *Fetcher
	logger  *slog.Logger
	group   singleflight.Group

	mu    sync.RWMutex
	rules map[string]*robotstxt.RobotsData
}

// NewRobotsTxtAuditor creates an auditor that downloads robots.txt through fetcher.
func NewRobotsTxtAuditor(fetcher *Fetcher, logger *slog.Logger) *RobotsTxtAuditor {
	if logger == nil {
		logger = slog.Default()
	}
	return &RobotsTxtAuditor{
		fetcher: fetcher,
		logger:  logger,
		rules:   make(map[string]*robotstxt.RobotsData),
	}
}

// IsAllowed reports whether userAgent may fetch targetURL.
func (r *RobotsTxtAuditor) IsAllowed(ctx context.Context, targetURL, userAgent string) (bool, error) {
	u, err := url.Parse(targetURL)
	if err != nil {
		return false, fmt.Errorf("invalid url: %w", err)
	}

	data, err := r.rulesFor(ctx, u.Scheme+"://"+u.Host)
	if err != nil {
		return true, err
	}
	if data == nil {
		return true, nil
	}

	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	return data.FindGroup(userAgent).Test(path), nil
}

func (r *RobotsTxtAuditor) rulesFor(ctx context.Context, host string) (*robotstxt.RobotsData, error) {
	r.mu.RLock()
	data, ok := r.rules[host]
	r.mu.RUnlock()
	if ok {
		return data, nil
	}

	v, err, _ := r.group.Do(host, func() (any, error) {
		data, err := r.download(ctx, host)
		if err != nil {
			// Not cached: the next fetch for this host asks again.
			r.logger.Debug("robots.txt unavailable, allowing url", "host", host, "err", err)
			return nil, err
		}
		r.mu.Lock()
		r.rules[host] = data
		r.mu.Unlock()
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	data, _ = v.(*robotstxt.RobotsData)
	return data, nil
}

func (r *RobotsTxtAuditor) download(ctx context.Context, host string) (*robotstxt.RobotsData, error) {
	page, err := r.fetcher.Fetch(ctx, host+"/robots.txt")
	if err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) {
			// 4xx/5xx robots.txt means no rules
			return nil, nil
		}
		return nil, err
	}

	data, err := robotstxt.FromBytes(page.Body)
	if err != nil {
		r.logger.Debug("unparseable robots.txt, allowing host", "host", host, "err", err)
		return nil, nil
	}
	return data, nil
}
