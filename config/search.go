package config

import (
	"fmt"
	"time"

	"github.com/kilianp07/adsp/core/factory"
	"github.com/kilianp07/adsp/core/search"
)

// DefaultBackend is the engine used when none is configured.
const DefaultBackend = "sgs"

// SearchConfig holds the default search settings. CLI flags override them.
type SearchConfig struct {
	TimeLimitSeconds       float64 `json:"time_limit_seconds"`
	SecondTimeLimitSeconds float64 `json:"second_time_limit_seconds"`
	FailLimit              int     `json:"fail_limit"`
	Workers                int     `json:"workers"`
	Strategy               string  `json:"strategy"`
	// Seed makes the reference engine deterministic when non zero.
	Seed int64 `json:"seed"`
	// Backend selects the constraint engine and its settings.
	Backend factory.ModuleConfig `json:"backend"`
}

// SetDefaults applies the search defaults.
func (c *SearchConfig) SetDefaults() {
	if c.TimeLimitSeconds == 0 {
		c.TimeLimitSeconds = search.DefaultTimeLimit.Seconds()
	}
	if c.SecondTimeLimitSeconds == 0 {
		c.SecondTimeLimitSeconds = search.DefaultSecondTimeLimit.Seconds()
	}
	if c.Workers == 0 {
		c.Workers = search.DefaultWorkers
	}
	if c.Strategy == "" {
		c.Strategy = search.DefaultStrategy
	}
	if c.Backend.Type == "" {
		c.Backend.Type = DefaultBackend
	}
}

// Validate checks the limits.
func (c SearchConfig) Validate() error {
	if c.TimeLimitSeconds <= 0 || c.SecondTimeLimitSeconds < 0 {
		return fmt.Errorf("time limits must be positive")
	}
	if c.FailLimit < 0 {
		return fmt.Errorf("fail limit must not be negative")
	}
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be positive")
	}
	return nil
}

// Engine converts the section into a run configuration.
func (c SearchConfig) Engine() search.Config {
	return search.Config{
		TimeLimit:       seconds(c.TimeLimitSeconds),
		SecondTimeLimit: seconds(c.SecondTimeLimitSeconds),
		FailLimit:       c.FailLimit,
		Workers:         c.Workers,
	}
}

func seconds(s float64) time.Duration { return time.Duration(s * float64(time.Second)) }
