package model

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var validate = validator.New()

// Validate checks the schema version and the field constraints of inst.
// Cross references (locations, precedences, categories) are checked by the
// model builder.
func (inst *Instance) Validate() error {
	if inst.Version != SchemaVersion {
		return fmt.Errorf("%w: instance version is %q, must be %q", ErrVersionMismatch, inst.Version, SchemaVersion)
	}
	if err := validate.Struct(inst); err != nil {
		return fmt.Errorf("invalid instance %q: %w", inst.Name, err)
	}
	return nil
}

// DecodeInstance reads an instance in the given format ("json" or "yaml")
// and validates it. Every failure is returned as an *InputError.
func DecodeInstance(r io.Reader, format string) (*Instance, error) {
	var inst Instance
	if err := decode(r, format, &inst); err != nil {
		return nil, &InputError{Err: fmt.Errorf("decode instance: %w", err)}
	}
	if err := inst.Validate(); err != nil {
		return nil, &InputError{Err: err}
	}
	return &inst, nil
}

// DecodeSolution reads a solution and validates its embedded instance.
func DecodeSolution(r io.Reader, format string) (*Solution, error) {
	var sol Solution
	if err := decode(r, format, &sol); err != nil {
		return nil, &InputError{Err: fmt.Errorf("decode solution: %w", err)}
	}
	if sol.Instance == nil {
		return nil, &InputError{Err: fmt.Errorf("solution has no instance")}
	}
	if err := sol.Instance.Validate(); err != nil {
		return nil, &InputError{Err: err}
	}
	return &sol, nil
}

// DecodeLog reads a search log.
func DecodeLog(r io.Reader, format string) (*Log, error) {
	var l Log
	if err := decode(r, format, &l); err != nil {
		return nil, &InputError{Err: fmt.Errorf("decode log: %w", err)}
	}
	return &l, nil
}

func decode(r io.Reader, format string, v any) error {
	switch strings.ToLower(format) {
	case "yaml", "yml":
		return yaml.NewDecoder(r).Decode(v)
	case "json", "":
		return json.NewDecoder(r).Decode(v)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}
