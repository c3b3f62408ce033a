package llm

import (
	"context"
	"errors"
	"fmt"
)

// SoftKind classifies why an answer was degraded.
type SoftKind string

const (
	SoftNetwork SoftKind = "network"
	SoftTimeout SoftKind = "timeout"
	SoftStatus  SoftKind = "status"
	SoftDecode  SoftKind = "decode"
	SoftEmpty   SoftKind = "empty"
)

// SoftError is an upstream failure that was absorbed into a fallback
// answer.
type SoftError struct {
	Backend string
	Kind    SoftKind
	Status  int
	Err     error
}

func (e *SoftError) Error() string {
	switch {
	case e.Status != 0:
		return fmt.Sprintf("%s: %s (http %d)", e.Backend, e.Kind, e.Status)
	case e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Backend, e.Kind, e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Backend, e.Kind)
	}
}

func (e *SoftError) Unwrap() error { return e.Err }

// Result is the outcome of Ask. Soft is nil when Text came from the model.
type Result struct {
	Text  string
	Model string
	Soft  *SoftError
}

// Degraded reports whether Text is the fallback.
func (r Result) Degraded() bool { return r.Soft != nil }

func classify(backend string, err error) *SoftError {
	kind := SoftNetwork
	if errors.Is(err, context.DeadlineExceeded) {
		kind = SoftTimeout
	}
	var se *SoftError
	if errors.As(err, &se) {
		return se
	}
	return &SoftError{Backend: backend, Kind: kind, Err: err}
}
