// Package plugins holds the registry of constraint engines selectable from
// the configuration.
package plugins

import (
	"github.com/kilianp07/adsp/core/engine"
	"github.com/kilianp07/adsp/core/factory"
)

var engines = factory.NewRegistry[engine.Factory]()

// RegisterEngine adds an engine implementation identified by name.
func RegisterEngine(name string, f factory.Factory[engine.Factory]) error {
	return engines.Register(name, f)
}

// Engines lists the registered engine types.
func Engines() []string { return engines.Names() }

// NewEngine returns the engine factory described by cfg.
func NewEngine(cfg factory.ModuleConfig) (engine.Factory, error) {
	return engines.Create(cfg)
}
