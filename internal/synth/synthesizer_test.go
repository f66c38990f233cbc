package synth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FranksOps/scout/internal/llm"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeClient records calls and answers each shape from a table.
type fakeClient struct {
	shapes   []llm.Shape
	chat     func([]llm.Message) (*llm.Response, error)
	complete func(string) (*llm.Response, error)

	chatCalls     int
	completeCalls int
}

func (f *fakeClient) Name() string        { return "fake" }
func (f *fakeClient) Shapes() []llm.Shape { return f.shapes }

func (f *fakeClient) Chat(_ context.Context, msgs []llm.Message) (*llm.Response, error) {
	f.chatCalls++
	if f.chat == nil {
		return nil, llm.ErrUnsupportedShape
	}
	return f.chat(msgs)
}

func (f *fakeClient) Complete(_ context.Context, prompt string) (*llm.Response, error) {
	f.completeCalls++
	if f.complete == nil {
		return nil, llm.ErrUnsupportedShape
	}
	return f.complete(prompt)
}

type failingSource struct{ err error }

func (f failingSource) Get(context.Context) (llm.Client, error) { return nil, f.err }

func synthesize(t *testing.T, c llm.Client) string {
	t.Helper()
	return New(llm.Static{Client: c}, quietLogger()).
		Synthesize(context.Background(), "Article 1:\nQi2 adds magnets.\n\n", "wireless charging")
}

func TestSynthesize_PrefersMessages(t *testing.T) {
	c := &fakeClient{
		shapes: []llm.Shape{llm.ShapeMessages, llm.ShapePrompt},
		chat: func(msgs []llm.Message) (*llm.Response, error) {
			require.Len(t, msgs, 2)
			assert.Equal(t, llm.RoleSystem, msgs[0].Role)
			assert.Equal(t, SystemPrompt, msgs[0].Content)
			assert.Equal(t, llm.RoleUser, msgs[1].Role)
			assert.Contains(t, msgs[1].Content, "please answer this question: wireless charging")
			assert.Contains(t, msgs[1].Content, "Qi2 adds magnets.")
			return &llm.Response{Content: "structured answer"}, nil
		},
		complete: func(string) (*llm.Response, error) {
			t.Fatal("prompt shape must not be used when messages succeed")
			return nil, nil
		},
	}

	assert.Equal(t, "structured answer", synthesize(t, c))
	assert.Equal(t, 1, c.chatCalls)
}

func TestSynthesize_PromptOnlyClient(t *testing.T) {
	c := &fakeClient{
		shapes: []llm.Shape{llm.ShapePrompt},
		complete: func(prompt string) (*llm.Response, error) {
			assert.Equal(t, UserPrompt("wireless charging", "Article 1:\nQi2 adds magnets.\n\n"), prompt)
			assert.NotContains(t, prompt, SystemPrompt)
			return &llm.Response{Content: "prompt answer"}, nil
		},
	}

	assert.Equal(t, "prompt answer", synthesize(t, c))
	assert.Zero(t, c.chatCalls, "undeclared shape must not be attempted")
}

func TestSynthesize_UnsupportedShapeFallsThrough(t *testing.T) {
	c := &fakeClient{
		shapes: []llm.Shape{llm.ShapeMessages, llm.ShapePrompt},
		complete: func(string) (*llm.Response, error) {
			return &llm.Response{Content: "second shape"}, nil
		},
	}

	assert.Equal(t, "second shape", synthesize(t, c))
	assert.Equal(t, 1, c.chatCalls)
	assert.Equal(t, 1, c.completeCalls)
}

func TestSynthesize_UnusableResponseFallsThrough(t *testing.T) {
	c := &fakeClient{
		shapes: []llm.Shape{llm.ShapeMessages, llm.ShapePrompt},
		chat: func([]llm.Message) (*llm.Response, error) {
			return &llm.Response{Raw: []byte(`{}`)}, nil
		},
		complete: func(string) (*llm.Response, error) {
			return &llm.Response{Raw: []byte(`{"text":"from raw payload"}`)}, nil
		},
	}

	assert.Equal(t, "from raw payload", synthesize(t, c))
}

func TestSynthesize_Fallbacks(t *testing.T) {
	tests := []struct {
		name   string
		client *fakeClient
	}{
		{
			name: "transient error stops the chain",
			client: &fakeClient{
				shapes: []llm.Shape{llm.ShapeMessages, llm.ShapePrompt},
				chat:   func([]llm.Message) (*llm.Response, error) { return nil, errors.New("503 from upstream") },
				complete: func(string) (*llm.Response, error) {
					return &llm.Response{Content: "should not be reached"}, nil
				},
			},
		},
		{
			name:   "every shape unsupported",
			client: &fakeClient{shapes: []llm.Shape{llm.ShapeMessages, llm.ShapePrompt}},
		},
		{
			name:   "no declared shapes",
			client: &fakeClient{},
		},
		{
			name: "panicking client",
			client: &fakeClient{
				shapes: []llm.Shape{llm.ShapeMessages},
				chat:   func([]llm.Message) (*llm.Response, error) { panic("nil map") },
			},
		},
		{
			name: "all responses unusable",
			client: &fakeClient{
				shapes: []llm.Shape{llm.ShapeMessages, llm.ShapePrompt},
				chat:   func([]llm.Message) (*llm.Response, error) { return &llm.Response{}, nil },
				complete: func(string) (*llm.Response, error) {
					return &llm.Response{Content: "   "}, nil
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, FallbackAnswer, synthesize(t, tt.client))
		})
	}

	t.Run("client unavailable", func(t *testing.T) {
		s := New(failingSource{err: llm.ErrMissingAPIKey}, quietLogger())
		assert.Equal(t, FallbackAnswer, s.Synthesize(context.Background(), "doc", "q"))
	})
}

func TestUserPrompt(t *testing.T) {
	p := UserPrompt("why is the sky blue", "Article 1:\nRayleigh scattering.\n\n")
	assert.True(t, strings.HasPrefix(p, "Based on the following articles, please answer this question: why is the sky blue"))
	assert.Contains(t, p, "Articles:\nArticle 1:\nRayleigh scattering.")
	assert.True(t, strings.HasSuffix(p, "please say so."))
}
