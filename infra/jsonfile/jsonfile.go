// Package jsonfile reads instances, solutions and logs from disk and writes
// run outputs under an output directory.
package jsonfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kilianp07/adsp/core/model"
)

// Output sub directories.
const (
	LogsDir      = "logs"
	SolutionsDir = "solutions"
)

// Format returns the decoding format of path from its extension.
func Format(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	default:
		return "json"
	}
}

func read[T any](path string, decode func(f *os.File, format string) (*T, error)) (*T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &model.InputError{Path: path, Err: err}
	}
	defer func() { _ = f.Close() }()
	v, err := decode(f, Format(path))
	if err != nil {
		var in *model.InputError
		if errors.As(err, &in) {
			in.Path = path
			return nil, in
		}
		return nil, &model.InputError{Path: path, Err: err}
	}
	return v, nil
}

// ReadInstance loads and validates an instance file.
func ReadInstance(path string) (*model.Instance, error) {
	return read(path, func(f *os.File, format string) (*model.Instance, error) {
		return model.DecodeInstance(f, format)
	})
}

// ReadSolution loads a solution file and validates its instance.
func ReadSolution(path string) (*model.Solution, error) {
	return read(path, func(f *os.File, format string) (*model.Solution, error) {
		return model.DecodeSolution(f, format)
	})
}

// ReadLog loads a search log file.
func ReadLog(path string) (*model.Log, error) {
	return read(path, func(f *os.File, format string) (*model.Log, error) {
		return model.DecodeLog(f, format)
	})
}

// Write encodes v as indented JSON into path, creating parent directories.
func Write(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return os.WriteFile(path, append(b, '\n'), 0o644)
}

// LogPath returns <dir>/logs/<instance>.json.
func LogPath(dir, instance string) string {
	return filepath.Join(dir, LogsDir, instance+".json")
}

// SolutionPath returns <dir>/solutions/<instance>.json.
func SolutionPath(dir, instance string) string {
	return filepath.Join(dir, SolutionsDir, instance+".json")
}

// WriteRun writes the log and, when a solution was found, the solution of
// a completed run. It returns the written paths.
func WriteRun(dir string, log model.Log, best *model.Solution) ([]string, error) {
	paths := []string{LogPath(dir, log.Instance)}
	if err := Write(paths[0], log); err != nil {
		return nil, err
	}
	if best == nil {
		return paths, nil
	}
	p := SolutionPath(dir, log.Instance)
	if err := Write(p, best); err != nil {
		return paths, err
	}
	return append(paths, p), nil
}
