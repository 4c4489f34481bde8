package plugins

import (
	"github.com/kilianp07/adsp/core/engine"
	"github.com/kilianp07/adsp/core/factory"
	"github.com/kilianp07/adsp/infra/logger"
	"github.com/kilianp07/adsp/infra/sgs"
)

func init() {
	_ = RegisterEngine("sgs", func(conf map[string]any) (engine.Factory, error) {
		var c struct {
			Seed int64 `json:"seed"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return sgs.Factory(sgs.Options{Seed: c.Seed, Logger: logger.New("sgs")}), nil
	})
}
