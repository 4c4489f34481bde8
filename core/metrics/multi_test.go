package metrics

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type recordSink struct {
	count int
	err   error
}

func (r *recordSink) RecordSolution(SolutionRecord) error {
	r.count++
	return r.err
}

func (r *recordSink) RecordPhase(PhaseRecord) error {
	r.count++
	return nil
}

// solutionOnly does not implement the optional recorders.
type solutionOnly struct{ count int }

func (s *solutionOnly) RecordSolution(SolutionRecord) error {
	s.count++
	return nil
}

func TestMultiSink(t *testing.T) {
	s1 := &recordSink{}
	s2 := &solutionOnly{}
	m := NewMultiSink(s1, s2)
	assert.NoError(t, m.RecordSolution(SolutionRecord{}))
	assert.NoError(t, m.RecordPhase(PhaseRecord{}))
	assert.NoError(t, m.RecordRun(RunRecord{}))
	assert.Equal(t, 2, s1.count)
	assert.Equal(t, 1, s2.count)
}

func TestMultiSinkStopsOnError(t *testing.T) {
	boom := errors.New("boom")
	s1 := &recordSink{err: boom}
	s2 := &recordSink{}
	m := NewMultiSink(s1, s2)
	assert.ErrorIs(t, m.RecordSolution(SolutionRecord{}), boom)
	assert.Zero(t, s2.count)
}
