// Package config loads service settings from defaults, an optional YAML
// file, a .env file and the environment, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the full service configuration.
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Search SearchConfig `mapstructure:"search"`
	Fetch  FetchConfig  `mapstructure:"fetch"`
	LLM    LLMConfig    `mapstructure:"llm"`
	Log    LogConfig    `mapstructure:"log"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port" validate:"min=1,max=65535"`
	Debug           bool          `mapstructure:"debug"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" validate:"gte=0"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" validate:"gte=0"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gte=0"`
}

// Address is the listen address for the HTTP server.
func (s ServerConfig) Address() string {
	return fmt.Sprintf(":%d", s.Port)
}

type SearchConfig struct {
	Provider   string        `mapstructure:"provider" validate:"oneof=serper"`
	Endpoint   string        `mapstructure:"endpoint" validate:"required,url"`
	APIKey     string        `mapstructure:"api_key"`
	MaxResults int           `mapstructure:"max_results" validate:"min=1,max=10"`
	Timeout    time.Duration `mapstructure:"timeout" validate:"gt=0"`
}

type FetchConfig struct {
	Timeout           time.Duration `mapstructure:"timeout" validate:"gt=0"`
	MaxContentChars   int           `mapstructure:"max_content_chars" validate:"min=1"`
	Concurrency       int           `mapstructure:"concurrency" validate:"min=1"`
	Fingerprint       string        `mapstructure:"fingerprint" validate:"oneof=go chrome firefox safari random"`
	MaxRedirects      int           `mapstructure:"max_redirects"`
	UserAgents        []string      `mapstructure:"user_agents"`
	Proxies           []string      `mapstructure:"proxies"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second" validate:"gte=0"`
	Jitter            float64       `mapstructure:"jitter" validate:"gte=0,lte=1"`
	RespectRobots     bool          `mapstructure:"respect_robots"`
}

type LLMConfig struct {
	Provider    string        `mapstructure:"provider" validate:"oneof=groq anthropic gemini ollama"`
	Model       string        `mapstructure:"model"`
	BaseURL     string        `mapstructure:"base_url" validate:"omitempty,url"`
	APIKey      string        `mapstructure:"api_key"`
	MaxTokens   int           `mapstructure:"max_tokens" validate:"min=1"`
	Temperature float64       `mapstructure:"temperature" validate:"gte=0,lte=2"`
	Timeout     time.Duration `mapstructure:"timeout" validate:"gt=0"`
	Breaker     BreakerConfig `mapstructure:"breaker"`
}

type BreakerConfig struct {
	MaxFailures uint32        `mapstructure:"max_failures" validate:"min=1"`
	Timeout     time.Duration `mapstructure:"timeout" validate:"gt=0"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn warning error"`
	Format string `mapstructure:"format" validate:"oneof=json console text"`
}

// providerKeyEnv lists the conventional credential variables per provider,
// consulted when llm.api_key is unset.
var providerKeyEnv = map[string][]string{
	"groq":      {"GROQ_API_KEY"},
	"anthropic": {"ANTHROPIC_API_KEY"},
	"gemini":    {"GEMINI_API_KEY", "GOOGLE_API_KEY"},
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 5001)
	v.SetDefault("server.debug", false)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "5m")
	v.SetDefault("server.shutdown_timeout", "30s")

	v.SetDefault("search.provider", "serper")
	v.SetDefault("search.endpoint", "https://google.serper.dev/search")
	v.SetDefault("search.api_key", "")
	v.SetDefault("search.max_results", 3)
	v.SetDefault("search.timeout", "30s")

	v.SetDefault("fetch.timeout", "50s")
	v.SetDefault("fetch.max_content_chars", 5000)
	v.SetDefault("fetch.concurrency", 3)
	v.SetDefault("fetch.fingerprint", "go")
	v.SetDefault("fetch.max_redirects", 10)
	v.SetDefault("fetch.user_agents", []string{})
	v.SetDefault("fetch.proxies", []string{})
	v.SetDefault("fetch.requests_per_second", 0)
	v.SetDefault("fetch.jitter", 0)
	v.SetDefault("fetch.respect_robots", false)

	v.SetDefault("llm.provider", "groq")
	v.SetDefault("llm.model", "")
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.max_tokens", 2048)
	v.SetDefault("llm.temperature", 0.2)
	v.SetDefault("llm.timeout", "2m")
	v.SetDefault("llm.breaker.max_failures", 5)
	v.SetDefault("llm.breaker.timeout", "30s")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

func bindEnv(v *viper.Viper) error {
	bindings := map[string][]string{
		"search.api_key": {"SERPER_API_KEY", "SEARCH_API_KEY"},
		"llm.api_key":    {"LLM_API_KEY"},
		"server.port":    {"PORT", "SERVER_PORT"},
		"log.level":      {"LOG_LEVEL"},
		"log.format":     {"LOG_FORMAT"},
	}
	for key, envs := range bindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return fmt.Errorf("bind %s: %w", key, err)
		}
	}
	return nil
}

// Load reads the configuration. path names an explicit config file; empty
// searches for config.yaml in . and ./config and tolerates its absence.
func Load(path string) (*Config, error) {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := bindEnv(v); err != nil {
		return nil, err
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	cfg.LLM.Provider = strings.ToLower(strings.TrimSpace(cfg.LLM.Provider))
	cfg.Fetch.Fingerprint = strings.ToLower(strings.TrimSpace(cfg.Fetch.Fingerprint))
	if cfg.LLM.APIKey == "" {
		for _, env := range providerKeyEnv[cfg.LLM.Provider] {
			if key := os.Getenv(env); key != "" {
				cfg.LLM.APIKey = key
				break
			}
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints. Credentials are not required here: a
// missing language model key only surfaces at the first synthesis.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Warnings lists settings that allow startup but degrade answers.
func (c *Config) Warnings() []string {
	var w []string
	if c.Search.APIKey == "" {
		w = append(w, "search api key not set (SERPER_API_KEY); every query will report no articles")
	}
	if c.LLM.APIKey == "" && c.LLM.Provider != "ollama" {
		w = append(w, fmt.Sprintf("llm api key not set for provider %q; answers will fall back to an apology", c.LLM.Provider))
	}
	return w
}
