// Package llm is the language model boundary: a small client interface that
// declares the call shapes it supports, the providers behind it and the
// process-wide lazy source the synthesizer draws clients from.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"slices"
	"strings"
)

// Shape is an invocation style a Client can serve.
type Shape string

const (
	// ShapeMessages sends a role-tagged message list (system + user).
	ShapeMessages Shape = "messages"
	// ShapePrompt sends a single text prompt.
	ShapePrompt Shape = "prompt"
)

// Role of a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

var (
	// ErrUnsupportedShape is returned when a Client is called in a shape it
	// did not declare in Shapes.
	ErrUnsupportedShape = errors.New("llm: call shape not supported by client")
	// ErrMissingAPIKey is returned when a hosted provider has no credential.
	ErrMissingAPIKey = errors.New("llm: api key not configured")
	// ErrUnknownProvider is returned for an unrecognised provider name.
	ErrUnknownProvider = errors.New("llm: unknown provider")
)

// Message is one entry of a ShapeMessages call.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Response is a model reply. Content holds the generated text when the
// provider exposes it directly; Raw keeps the provider payload.
type Response struct {
	Content string
	// HasContent is set by providers that decoded their own content field.
	// An empty Content is then final and Raw is never used as the answer.
	HasContent bool
	Model      string
	Raw        []byte
}

// textFields are payload keys that carry generated text across providers.
var textFields = []string{"content", "text", "response", "output"}

// Text returns the usable answer text. Content wins; when the provider
// reported its content field, an empty Content is unusable. Otherwise the raw
// payload is searched for a text field and, failing that, used verbatim.
// ok is false when nothing usable is found.
func (r *Response) Text() (string, bool) {
	if r == nil {
		return "", false
	}
	if strings.TrimSpace(r.Content) != "" {
		return r.Content, true
	}
	if r.HasContent {
		return "", false
	}

	raw := bytes.TrimSpace(r.Raw)
	if len(raw) == 0 {
		return "", false
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err == nil {
		for _, key := range textFields {
			var s string
			if json.Unmarshal(fields[key], &s) == nil && strings.TrimSpace(s) != "" {
				return s, true
			}
		}
		if len(fields) == 0 {
			return "", false
		}
		return string(raw), true
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, strings.TrimSpace(s) != ""
	}
	switch string(raw) {
	case "null", "[]", `""`:
		return "", false
	}
	return string(raw), true
}

// Client is a language model provider.
type Client interface {
	// Name identifies the provider in logs and metrics.
	Name() string
	// Shapes lists the call shapes the client accepts.
	Shapes() []Shape
	// Chat performs a ShapeMessages call.
	Chat(ctx context.Context, messages []Message) (*Response, error)
	// Complete performs a ShapePrompt call.
	Complete(ctx context.Context, prompt string) (*Response, error)
}

// Supports reports whether c declares shape.
func Supports(c Client, shape Shape) bool {
	return slices.Contains(c.Shapes(), shape)
}
