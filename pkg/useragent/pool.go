package useragent

import (
	"crypto/rand"
	"math/big"
	"strings"
	"sync/atomic"
)

// Browsers is the default rotation used for article fetches. Publishers
// routinely refuse the Go default agent, so every entry is a current desktop browser.
var Browsers = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/129.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/130.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/130.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:131.0) Gecko/20100101 Firefox/131.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 14.7; rv:131.0) Gecko/20100101 Firefox/131.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/18.0 Safari/605.1.15",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/130.0.0.0 Safari/537.36 Edg/130.0.0.0",
}

// Pool hands out User-Agent strings. It is safe for concurrent use.
type Pool struct {
	agents []string
	next   atomic.Uint64
}

// NewPool builds a pool from agents, skipping blank entries. An empty
// result falls back to Browsers.
func NewPool(agents []string) *Pool {
	kept := make([]string, 0, len(agents))
	for _, a := range agents {
		if a = strings.TrimSpace(a); a != "" {
			kept = append(kept, a)
		}
	}
	if len(kept) == 0 {
		kept = append(kept, Browsers...)
	}
	return &Pool{agents: kept}
}

// Next returns agents round-robin.
func (p *Pool) Next() string {
	if len(p.agents) == 0 {
		return ""
	}
	idx := p.next.Add(1) - 1
	return p.agents[idx%uint64(len(p.agents))]
}

// Random picks an agent uniformly using crypto/rand, falling back to Next
// if the random source fails.
func (p *Pool) Random() string {
	if len(p.agents) == 0 {
		return ""
	}
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(p.agents))))
	if err != nil {
		return p.Next()
	}
	return p.agents[n.Int64()]
}

// Len reports how many agents the pool rotates through.
func (p *Pool) Len() int {
	return len(p.agents)
}
