package llm

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
)

// Source hands out the shared Client.
type Source interface {
	Get(ctx context.Context) (Client, error)
}

// Lazy builds its Client on the first Get and returns the same Client, or
// the same construction error, on every later call. A missing credential
// therefore fails the first synthesis rather than process start.
type Lazy struct {
	build func(context.Context) (Client, error)

	done   atomic.Bool
	mu     sync.Mutex
	client Client
	err    error
}

// NewLazy returns a Source that constructs the client described by cfg.
func NewLazy(cfg Config, logger *slog.Logger) *Lazy {
	return LazyFunc(func(ctx context.Context) (Client, error) {
		return New(ctx, cfg, logger)
	})
}

// LazyFunc returns a Source that calls build at most once.
func LazyFunc(build func(context.Context) (Client, error)) *Lazy {
	return &Lazy{build: build}
}

// Get implements Source. It is safe for concurrent use.
func (l *Lazy) Get(ctx context.Context) (Client, error) {
	if l.done.Load() {
		return l.client, l.err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.done.Load() {
		// The client outlives the request that happens to build it.
		l.client, l.err = l.build(context.WithoutCancel(ctx))
		l.done.Store(true)
	}
	return l.client, l.err
}

// Static is a Source for an already constructed Client.
type Static struct {
	Client Client
}

func (s Static) Get(context.Context) (Client, error) {
	return s.Client, nil
}
