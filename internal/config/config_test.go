package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate runs the test in an empty directory with the credential
// variables cleared so no local .env or config.yaml leaks in.
func isolate(t *testing.T) {
	t.Helper()
	t.Chdir(t.TempDir())
	for _, env := range []string{
		"SERPER_API_KEY", "SEARCH_API_KEY", "LLM_API_KEY", "GROQ_API_KEY",
		"ANTHROPIC_API_KEY", "GEMINI_API_KEY", "GOOGLE_API_KEY", "PORT", "SERVER_PORT",
		"LOG_LEVEL", "LOG_FORMAT", "LLM_PROVIDER", "FETCH_CONCURRENCY",
	} {
		t.Setenv(env, "")
		require.NoError(t, os.Unsetenv(env))
	}
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 5001, cfg.Server.Port)
	assert.Equal(t, ":5001", cfg.Server.Address())
	assert.Equal(t, 5*time.Minute, cfg.Server.WriteTimeout)
	assert.Equal(t, "https://google.serper.dev/search", cfg.Search.Endpoint)
	assert.Equal(t, 3, cfg.Search.MaxResults)
	assert.Equal(t, 30*time.Second, cfg.Search.Timeout)
	assert.Equal(t, 50*time.Second, cfg.Fetch.Timeout)
	assert.Equal(t, 5000, cfg.Fetch.MaxContentChars)
	assert.Equal(t, "go", cfg.Fetch.Fingerprint)
	assert.Equal(t, "groq", cfg.LLM.Provider)
	assert.InDelta(t, 0.2, cfg.LLM.Temperature, 1e-9)
	assert.Equal(t, uint32(5), cfg.LLM.Breaker.MaxFailures)
	assert.Equal(t, "info", cfg.Log.Level)

	assert.Len(t, cfg.Warnings(), 2)
}

func TestLoadEnvironment(t *testing.T) {
	isolate(t)
	t.Setenv("SERPER_API_KEY", "serper-key")
	t.Setenv("GROQ_API_KEY", "groq-key")
	t.Setenv("PORT", "8080")
	t.Setenv("FETCH_CONCURRENCY", "5")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "serper-key", cfg.Search.APIKey)
	assert.Equal(t, "groq-key", cfg.LLM.APIKey)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 5, cfg.Fetch.Concurrency)
	assert.Empty(t, cfg.Warnings())
}

func TestLoadFileAndKeyPrecedence(t *testing.T) {
	isolate(t)
	t.Setenv("LLM_API_KEY", "explicit")
	t.Setenv("ANTHROPIC_API_KEY", "conventional")

	path := filepath.Join(t.TempDir(), "scout.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
llm:
  provider: Anthropic
  model: claude-haiku-4-5
fetch:
  fingerprint: chrome
  proxies: ["http://10.0.0.1:3128"]
  max_content_chars: 2000
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "anthropic", cfg.LLM.Provider)
	assert.Equal(t, "claude-haiku-4-5", cfg.LLM.Model)
	assert.Equal(t, "explicit", cfg.LLM.APIKey)
	assert.Equal(t, "chrome", cfg.Fetch.Fingerprint)
	assert.Equal(t, []string{"http://10.0.0.1:3128"}, cfg.Fetch.Proxies)
	assert.Equal(t, 2000, cfg.Fetch.MaxContentChars)
}

func TestLoadDotEnv(t *testing.T) {
	isolate(t)
	require.NoError(t, os.WriteFile(".env", []byte("SERPER_API_KEY=from-dotenv\n"), 0o600))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.Search.APIKey)
}

func TestLoadInvalid(t *testing.T) {
	isolate(t)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("llm:\n  provider: openai\n"), 0o600))
	_, err := Load(path)
	assert.ErrorContains(t, err, "invalid config")

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
