package pipeline

import (
	"errors"
	"fmt"
)

// Kind classifies a pipeline failure for the caller.
type Kind int

const (
	// KindInternal is an unexpected failure.
	KindInternal Kind = iota
	// KindBadRequest is invalid input.
	KindBadRequest
	// KindNotFound means the pipeline ran but produced nothing to answer from.
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindBadRequest:
		return "bad_request"
	case KindNotFound:
		return "not_found"
	default:
		return "internal"
	}
}

// Messages reported to callers.
const (
	MsgNoQuery    = "No query provided"
	MsgNoArticles = "No articles found"
	MsgNoContent  = "Could not fetch any article content"
)

// Error is returned by Pipeline.Answer.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Message == "" {
		return e.Err.Error()
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the Kind carried by err, or KindInternal when err is not
// a pipeline error.
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindInternal
}
