package engine

import (
	"errors"
	"fmt"
)

// ErrSearchActive is returned when the model is changed during a search.
var ErrSearchActive = errors.New("model cannot change while a search is active")

// ErrClosed is returned by an engine used after Close.
var ErrClosed = errors.New("engine closed")

// EngineError wraps any failure reported by an engine.
type EngineError struct {
	Op  string
	Err error
}

func (e *EngineError) Error() string { return fmt.Sprintf("engine %s: %v", e.Op, e.Err) }

func (e *EngineError) Unwrap() error { return e.Err }

// Wrap returns err as an *EngineError for op. Nil stays nil and existing
// engine errors are returned unchanged.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	var ee *EngineError
	if errors.As(err, &ee) {
		return err
	}
	return &EngineError{Op: op, Err: err}
}
