package search

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kilianp07/adsp/core/cpmodel"
	"github.com/kilianp07/adsp/core/engine"
	"github.com/kilianp07/adsp/core/model"
)

// Defaults applied by SetDefaults.
const (
	DefaultTimeLimit       = 60 * time.Second
	DefaultSecondTimeLimit = 60 * time.Second
	DefaultWorkers         = 4
	// FailureDirectedMaxMemory caps the failure statistics, in bytes.
	FailureDirectedMaxMemory = 314572800
)

// Config holds the settings of one run.
type Config struct {
	TimeLimit time.Duration `json:"time_limit"`
	// SecondTimeLimit is the extra budget of the second lexicographic phase.
	SecondTimeLimit time.Duration     `json:"second_time_limit"`
	FailLimit       int               `json:"fail_limit"` // 0 means unbounded
	Workers         int               `json:"workers"`
	SearchType      engine.SearchType `json:"-"`
	FailureDirected bool              `json:"failure_directed"`

	WarmStart bool            `json:"-"`
	Prior     *model.Solution `json:"-"`
	// Silent drops the per-solution progress lines.
	Silent bool `json:"silent"`

	// OnSolution is called synchronously for every improving solution. It
	// must not touch the engine.
	OnSolution func(*model.Solution) `json:"-"`
}

// SetDefaults fills unset fields.
func (c *Config) SetDefaults() {
	if c.TimeLimit == 0 {
		c.TimeLimit = DefaultTimeLimit
	}
	if c.SecondTimeLimit == 0 {
		c.SecondTimeLimit = DefaultSecondTimeLimit
	}
	if c.Workers == 0 {
		c.Workers = DefaultWorkers
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.TimeLimit <= 0 {
		return fmt.Errorf("time limit must be positive")
	}
	if c.SecondTimeLimit < 0 {
		return fmt.Errorf("second time limit must not be negative")
	}
	if c.FailLimit < 0 {
		return fmt.Errorf("fail limit must not be negative")
	}
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be positive")
	}
	if c.WarmStart && c.Prior == nil {
		return errors.New("warm start requires a prior solution")
	}
	return nil
}

// Strategy selects the objectives and the engine settings of a run.
type Strategy struct {
	ID              string
	Primary         cpmodel.Objective
	Secondary       cpmodel.Objective
	Lexicographic   bool
	SearchType      engine.SearchType
	FailureDirected bool
}

// DefaultStrategy optimises makespan then cost with the automatic search.
const DefaultStrategy = "LEX-AUTO"

// Strategies lists the known strategy ids.
var Strategies = []string{
	"LEX-AUTO", "LEX-DF", "LEX-FD",
	"ILEX-AUTO", "ILEX-DF", "ILEX-FD",
	"MK-AUTO", "MK-DF", "MK-FD",
	"CST-AUTO", "CST-DF", "CST-FD",
}

// ErrUnknownStrategy is returned by ParseStrategy, together with the
// default strategy.
var ErrUnknownStrategy = errors.New("unknown search strategy")

// ParseStrategy decodes ids such as "LEX-DF" or "CST-FD". Unknown ids yield
// the default strategy and ErrUnknownStrategy so callers can warn and go on.
func ParseStrategy(id string) (Strategy, error) {
	id = strings.ToUpper(strings.TrimSpace(id))
	if id == "" {
		id = DefaultStrategy
	}
	family, mode, ok := strings.Cut(id, "-")
	s := Strategy{ID: id}
	switch family {
	case "LEX":
		s.Primary, s.Secondary, s.Lexicographic = cpmodel.Makespan, cpmodel.Cost, true
	case "ILEX":
		s.Primary, s.Secondary, s.Lexicographic = cpmodel.Cost, cpmodel.Makespan, true
	case "MK":
		s.Primary, s.Secondary = cpmodel.Makespan, cpmodel.Cost
	case "CST":
		s.Primary, s.Secondary = cpmodel.Cost, cpmodel.Makespan
	default:
		ok = false
	}
	switch mode {
	case "AUTO":
	case "DF":
		s.SearchType = engine.SearchDepthFirst
	case "FD":
		s.FailureDirected = true
	default:
		ok = false
	}
	if !ok {
		def, _ := ParseStrategy(DefaultStrategy)
		return def, fmt.Errorf("%w %q, using %s", ErrUnknownStrategy, id, DefaultStrategy)
	}
	return s, nil
}

// Apply copies the engine settings of s into c.
func (s Strategy) Apply(c *Config) {
	c.SearchType = s.SearchType
	c.FailureDirected = s.FailureDirected
}
