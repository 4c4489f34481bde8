// Package scenarios runs benchmark scenarios: sets of instances solved with
// several strategies and checked against expected objective values.
package scenarios

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Expected bounds the outcome of each run. Zero values are not checked.
type Expected struct {
	MaxMakespan int  `yaml:"max_makespan"`
	MaxCost     int  `yaml:"max_cost"`
	Solved      bool `yaml:"solved"`
}

// RunDef solves one instance with every listed strategy.
type RunDef struct {
	Instance   string   `yaml:"instance"`
	Strategies []string `yaml:"strategies"`
	Expected   Expected `yaml:"expected"`
}

type Scenario struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description,omitempty"`
	Runs        []RunDef `yaml:"runs"`
	// Dir resolves relative instance paths. It defaults to the directory of
	// the scenario file.
	Dir string `yaml:"-"`
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	if len(sc.Runs) == 0 {
		return nil, fmt.Errorf("scenario %s: no runs", path)
	}
	sc.Dir = filepath.Dir(path)
	return &sc, nil
}

func (sc *Scenario) path(p string) string {
	if filepath.IsAbs(p) || sc.Dir == "" {
		return p
	}
	return filepath.Join(sc.Dir, p)
}
