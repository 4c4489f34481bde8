package search

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/adsp/core/cpmodel"
	"github.com/kilianp07/adsp/core/engine"
)

func TestParseStrategy(t *testing.T) {
	tests := []struct {
		id        string
		primary   cpmodel.Objective
		lex       bool
		searchTyp engine.SearchType
		fd        bool
	}{
		{"LEX-AUTO", cpmodel.Makespan, true, engine.SearchAuto, false},
		{"lex-df", cpmodel.Makespan, true, engine.SearchDepthFirst, false},
		{"ILEX-FD", cpmodel.Cost, true, engine.SearchAuto, true},
		{"MK-DF", cpmodel.Makespan, false, engine.SearchDepthFirst, false},
		{"CST-AUTO", cpmodel.Cost, false, engine.SearchAuto, false},
		{"", cpmodel.Makespan, true, engine.SearchAuto, false},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			s, err := ParseStrategy(tt.id)
			require.NoError(t, err)
			assert.Equal(t, tt.primary, s.Primary)
			assert.NotEqual(t, s.Primary, s.Secondary)
			assert.Equal(t, tt.lex, s.Lexicographic)
			assert.Equal(t, tt.searchTyp, s.SearchType)
			assert.Equal(t, tt.fd, s.FailureDirected)
		})
	}
	for _, id := range Strategies {
		_, err := ParseStrategy(id)
		assert.NoError(t, err, id)
	}
}

func TestParseStrategyFallsBack(t *testing.T) {
	for _, id := range []string{"LEX", "FOO-DF", "MK-XX", "LEX-DF-2"} {
		s, err := ParseStrategy(id)
		assert.ErrorIs(t, err, ErrUnknownStrategy, id)
		assert.Equal(t, DefaultStrategy, s.ID)
		assert.True(t, s.Lexicographic)
	}
}

func TestConfigDefaults(t *testing.T) {
	var c Config
	c.SetDefaults()
	assert.Equal(t, 60*time.Second, c.TimeLimit)
	assert.Equal(t, 60*time.Second, c.SecondTimeLimit)
	assert.Equal(t, 4, c.Workers)
	assert.Zero(t, c.FailLimit)
	assert.NoError(t, c.Validate())

	c.FailLimit = -1
	assert.Error(t, c.Validate())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "phase2_running", Phase2Running.String())
	assert.True(t, Phase1Running.Running())
	assert.False(t, Phase1Done.Running())
	assert.Equal(t, "unknown", State(42).String())
}
