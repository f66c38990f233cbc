// Package synth turns aggregated article text into an answer using whichever
// call shape the configured language model supports.
package synth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/FranksOps/scout/internal/llm"
	"github.com/FranksOps/scout/internal/logging"
	"github.com/FranksOps/scout/internal/metrics"
)

// FallbackAnswer is returned whenever no answer could be generated.
const FallbackAnswer = "Sorry, I couldn't generate an answer at this time."

// preference is the order in which call shapes are tried.
var preference = []llm.Shape{llm.ShapeMessages, llm.ShapePrompt}

// Synthesizer asks a language model to answer a query from article text.
type Synthesizer struct {
	source llm.Source
	logger *slog.Logger
}

// New creates a Synthesizer drawing its client from source.
func New(source llm.Source, logger *slog.Logger) *Synthesizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Synthesizer{source: source, logger: logger}
}

// Synthesize returns the model's answer for query over document. It never
// fails: every error ends in FallbackAnswer.
func (s *Synthesizer) Synthesize(ctx context.Context, document, query string) (answer string) {
	logger := logging.FromContext(ctx, s.logger)
	defer func() {
		if r := recover(); r != nil {
			logger.Error("error generating answer", "err", fmt.Sprint(r))
			answer = FallbackAnswer
		}
	}()

	client, err := s.source.Get(ctx)
	if err != nil {
		logger.Error("error generating answer", "err", err)
		metrics.RecordSynthesis("unavailable", "", "error")
		return FallbackAnswer
	}

	user := UserPrompt(query, document)
	logger = logger.With("llm_provider", client.Name())

	for _, shape := range preference {
		if !llm.Supports(client, shape) {
			continue
		}

		resp, err := invoke(ctx, client, shape, user)
		if errors.Is(err, llm.ErrUnsupportedShape) {
			logger.Debug("call shape rejected, trying next", "shape", shape)
			metrics.RecordSynthesis(client.Name(), string(shape), "unsupported")
			continue
		}
		if err != nil {
			logger.Error("error generating answer", "shape", shape, "err", err)
			metrics.RecordSynthesis(client.Name(), string(shape), "error")
			return FallbackAnswer
		}

		text, ok := resp.Text()
		if !ok {
			logger.Warn("response carried no usable text, trying next", "shape", shape)
			metrics.RecordSynthesis(client.Name(), string(shape), "unusable")
			continue
		}

		logger.Info("answer generated", "shape", shape, "model", resp.Model)
		metrics.RecordSynthesis(client.Name(), string(shape), "success")
		return text
	}

	logger.Error("error generating answer", "err", "no call shape produced an answer", "shapes", client.Shapes())
	metrics.RecordSynthesis(client.Name(), "", "exhausted")
	return FallbackAnswer
}

func invoke(ctx context.Context, client llm.Client, shape llm.Shape, user string) (*llm.Response, error) {
	switch shape {
	case llm.ShapeMessages:
		return client.Chat(ctx, []llm.Message{
			{Role: llm.RoleSystem, Content: SystemPrompt},
			{Role: llm.RoleUser, Content: user},
		})
	case llm.ShapePrompt:
		return client.Complete(ctx, user)
	default:
		return nil, llm.ErrUnsupportedShape
	}
}
