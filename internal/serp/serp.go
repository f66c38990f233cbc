package serp

import (
	"context"
	"errors"
)

// DefaultMaxResults caps how many ranked URLs a search yields.
const DefaultMaxResults = 3

// ErrMissingAPIKey is returned when a provider has no credential configured.
var ErrMissingAPIKey = errors.New("search api key not configured")

// Result is one ranked search hit. Only the URL is used downstream.
type Result struct {
	URL   string `json:"url"`
	Title string `json:"title,omitempty"`
}

// Provider abstracts a web search API returning ranked results for a query.
// Implementations keep the provider's order and cap the list at limit.
type Provider interface {
	Name() string
	Search(ctx context.Context, query string, limit int) ([]Result, error)
}

// URLs flattens results into their links, keeping order.
func URLs(results []Result) []string {
	urls := make([]string, 0, len(results))
	for _, r := range results {
		urls = append(urls, r.URL)
	}
	return urls
}
