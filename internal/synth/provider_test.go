package synth

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FranksOps/scout/internal/llm"
	"github.com/FranksOps/scout/internal/logging"
	"github.com/FranksOps/scout/internal/metrics"
)

func TestSynthesize_GroqEmptyContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"chatcmpl-123","object":"chat.completion","model":"llama-3.3-70b-versatile",` +
			`"choices":[{"index":0,"message":{"role":"assistant","content":""},"finish_reason":"length"}],` +
			`"usage":{"prompt_tokens":4000,"completion_tokens":2048}}`))
	}))
	defer server.Close()

	g, err := llm.NewGroq(llm.Config{APIKey: "gsk", BaseURL: server.URL}, quietLogger())
	require.NoError(t, err)

	got := synthesize(t, g)
	assert.Equal(t, FallbackAnswer, got)
	assert.NotContains(t, got, "chatcmpl-123")
}

func TestSynthesize_GeminiBlockedFallsBackToPrompt(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		w.Header().Set("Content-Type", "application/json")
		if _, ok := body["systemInstruction"]; ok {
			_, _ = w.Write([]byte(`{"candidates":[{"finishReason":"SAFETY","safetyRatings":[{"category":"HARM_CATEGORY_DANGEROUS_CONTENT","probability":"HIGH","blocked":true}]}],"modelVersion":"gemini-2.5-flash"}`))
			return
		}
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"prompt shape answer"}]},"finishReason":"STOP"}],"modelVersion":"gemini-2.5-flash"}`))
	}))
	defer server.Close()

	g, err := llm.NewGemini(context.Background(), llm.Config{APIKey: "g", BaseURL: server.URL}, quietLogger())
	require.NoError(t, err)

	assert.Equal(t, "prompt shape answer", synthesize(t, g))
}

func TestSynthesize_PanicLogsRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	reqLogger := slog.New(slog.NewJSONHandler(&buf, nil)).With("request_id", "req-42")
	ctx := logging.WithContext(context.Background(), reqLogger)

	c := &fakeClient{
		shapes: []llm.Shape{llm.ShapeMessages},
		chat:   func([]llm.Message) (*llm.Response, error) { panic("nil map") },
	}

	got := New(llm.Static{Client: c}, quietLogger()).Synthesize(ctx, "doc", "q")
	assert.Equal(t, FallbackAnswer, got)
	assert.Contains(t, buf.String(), `"request_id":"req-42"`)
	assert.Contains(t, buf.String(), "nil map")
}

func TestSynthesize_ExhaustedIsCounted(t *testing.T) {
	counter := metrics.SynthesisTotal.WithLabelValues("fake", "", "exhausted")
	before := testutil.ToFloat64(counter)

	c := &fakeClient{shapes: []llm.Shape{llm.ShapeMessages, llm.ShapePrompt}}
	assert.Equal(t, FallbackAnswer, synthesize(t, c))

	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}
