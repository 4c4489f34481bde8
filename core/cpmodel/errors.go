package cpmodel

import (
	"errors"
	"fmt"
)

var (
	ErrDanglingCategory   = errors.New("no resource matches the requirement categories")
	ErrTooFewCandidates   = errors.New("not enough compatible resources for requirement")
	ErrUnknownLocation    = errors.New("unknown location")
	ErrUnknownPredecessor = errors.New("unknown predecessor")
	ErrCyclicPrecedence   = errors.New("precedence graph contains a cycle")
)

// ModelBuildError reports an instance that cannot be encoded. It is raised
// before any engine is created.
type ModelBuildError struct {
	Instance string
	Err      error
}

func (e *ModelBuildError) Error() string {
	return fmt.Sprintf("build model for %q: %v", e.Instance, e.Err)
}

func (e *ModelBuildError) Unwrap() error { return e.Err }
