package factory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	A     int
	Flush time.Duration
}

type sampleConf struct {
	A     int           `json:"a"`
	Flush time.Duration `json:"flush"`
}

// Test registry registration and instantiation using Decode.
func TestRegistry_Create(t *testing.T) {
	reg := NewRegistry[*sample]()
	require.NoError(t, reg.Register("s", func(conf map[string]any) (*sample, error) {
		var c sampleConf
		if err := Decode(conf, &c); err != nil {
			return nil, err
		}
		return &sample{A: c.A, Flush: c.Flush}, nil
	}))
	inst, err := reg.Create(ModuleConfig{Type: "s", Conf: map[string]any{"a": "3", "flush": "2s"}})
	require.NoError(t, err)
	assert.Equal(t, 3, inst.A)
	assert.Equal(t, 2*time.Second, inst.Flush)
}

func TestRegistry_Errors(t *testing.T) {
	reg := NewRegistry[int]()
	assert.Error(t, reg.Register("nil", nil))
	require.NoError(t, reg.Register("b", func(map[string]any) (int, error) { return 2, nil }))
	require.NoError(t, reg.Register("a", func(map[string]any) (int, error) { return 1, nil }))
	assert.Error(t, reg.Register("a", func(map[string]any) (int, error) { return 1, nil }))
	assert.Equal(t, []string{"a", "b"}, reg.Names())

	_, err := reg.Create(ModuleConfig{Type: "c"})
	assert.ErrorContains(t, err, `unknown module type "c"`)
}
