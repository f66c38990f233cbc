package llm

import (
	"strings"
	"time"
)

// Provider names accepted by New.
const (
	ProviderGroq      = "groq"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
	ProviderOllama    = "ollama"
)

const (
	DefaultMaxTokens   = 2048
	DefaultTemperature = 0.2
	DefaultTimeout     = 2 * time.Minute
)

var defaultModels = map[string]string{
	ProviderGroq:      "llama-3.3-70b-versatile",
	ProviderAnthropic: "claude-sonnet-4-5",
	ProviderGemini:    "gemini-2.5-flash",
	ProviderOllama:    "llama3.2",
}

var defaultBaseURLs = map[string]string{
	ProviderGroq:   "https://api.groq.com/openai/v1",
	ProviderOllama: "http://localhost:11434",
}

// Config selects and configures one provider.
type Config struct {
	Provider    string
	Model       string
	BaseURL     string
	APIKey      string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
	Breaker     BreakerConfig
}

func (c Config) withDefaults() Config {
	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
	if c.Provider == "" {
		c.Provider = ProviderGroq
	}
	if c.Model == "" {
		c.Model = defaultModels[c.Provider]
	}
	if c.BaseURL == "" {
		c.BaseURL = defaultBaseURLs[c.Provider]
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.MaxTokens == 0 {
		c.MaxTokens = DefaultMaxTokens
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	return c
}
