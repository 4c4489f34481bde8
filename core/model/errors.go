package model

import (
	"errors"
	"fmt"
)

// ErrVersionMismatch is wrapped by Validate when the instance schema
// version is not SchemaVersion.
var ErrVersionMismatch = errors.New("incompatible instance version")

// InputError reports an instance, solution or log that could not be read.
type InputError struct {
	Path string
	Err  error
}

func (e *InputError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("input: %v", e.Err)
	}
	return fmt.Sprintf("input %s: %v", e.Path, e.Err)
}

func (e *InputError) Unwrap() error { return e.Err }
