package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"
)

const (
	defaultBreakerMaxFailures uint32 = 5
	defaultBreakerTimeout            = 30 * time.Second
	defaultBreakerInterval           = 60 * time.Second
)

// BreakerConfig configures the circuit breaker placed in front of a provider.
type BreakerConfig struct {
	// MaxFailures is the number of consecutive failures that opens the circuit.
	MaxFailures uint32
	// Timeout is how long the circuit stays open before probing again.
	Timeout time.Duration
	// Interval clears failure counts while closed. Zero uses a minute.
	Interval time.Duration
}

// Breaker fails fast while the wrapped provider keeps failing.
// ErrUnsupportedShape is a capability answer, not an outage, and never
// counts against the provider.
type Breaker struct {
	inner   Client
	breaker *gobreaker.CircuitBreaker[*Response]
}

var _ Client = (*Breaker)(nil)

// NewBreaker wraps inner with a circuit breaker.
func NewBreaker(inner Client, cfg BreakerConfig, logger *slog.Logger) *Breaker {
	if cfg.MaxFailures == 0 {
		cfg.MaxFailures = defaultBreakerMaxFailures
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultBreakerTimeout
	}
	if cfg.Interval == 0 {
		cfg.Interval = defaultBreakerInterval
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Breaker{
		inner: inner,
		breaker: gobreaker.NewCircuitBreaker[*Response](gobreaker.Settings{
			Name:        "llm:" + inner.Name(),
			MaxRequests: 1,
			Interval:    cfg.Interval,
			Timeout:     cfg.Timeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= cfg.MaxFailures
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.Warn("circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
			},
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, ErrUnsupportedShape)
			},
		}),
	}
}

func (b *Breaker) Name() string { return b.inner.Name() }

func (b *Breaker) Shapes() []Shape { return b.inner.Shapes() }

// State reports the current breaker state.
func (b *Breaker) State() gobreaker.State { return b.breaker.State() }

func (b *Breaker) Chat(ctx context.Context, messages []Message) (*Response, error) {
	return b.execute(func() (*Response, error) { return b.inner.Chat(ctx, messages) })
}

func (b *Breaker) Complete(ctx context.Context, prompt string) (*Response, error) {
	return b.execute(func() (*Response, error) { return b.inner.Complete(ctx, prompt) })
}

func (b *Breaker) execute(call func() (*Response, error)) (*Response, error) {
	resp, err := b.breaker.Execute(call)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("provider %q circuit open: %w", b.inner.Name(), err)
	}
	return resp, err
}
