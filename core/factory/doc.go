// Package factory instantiates pluggable modules, such as metrics sinks and
// engine backends, from configuration. A module is selected by its type
// name; its raw settings are decoded into a typed struct by the factory.
//
//	engines := factory.NewRegistry[engine.Factory]()
//	engines.Register("sgs", func(conf map[string]any) (engine.Factory, error) {
//	    var c struct{ Seed int64 `json:"seed"` }
//	    if err := factory.Decode(conf, &c); err != nil {
//	        return nil, err
//	    }
//	    return sgs.Factory(sgs.Options{Seed: c.Seed}), nil
//	})
//	f, err := engines.Create(factory.ModuleConfig{Type: "sgs", Conf: map[string]any{"seed": 7}})
package factory
