package lifecycle

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type hookPlugin map[string]Hook

func (p hookPlugin) Hooks() map[string]Hook { return p }

func TestRegistry_RunOrder(t *testing.T) {
	reg := NewRegistry()
	var calls []string

	require.NoError(t, reg.Register("first", hookPlugin{
		EventCompileFunctions: func() error { calls = append(calls, "first"); return nil },
	}))
	require.NoError(t, reg.Register("second", hookPlugin{
		EventCompileFunctions: func() error { calls = append(calls, "second"); return nil },
		EventFinalize:         func() error { calls = append(calls, "finalize"); return nil },
	}))

	require.NoError(t, reg.RunAll(PackageEvents...))
	assert.Equal(t, []string{"first", "second", "finalize"}, calls)
	assert.Equal(t, []string{EventCompileFunctions, EventFinalize}, reg.Events())
}

func TestRegistry_RunStopsAtFirstError(t *testing.T) {
	reg := NewRegistry()
	boom := errors.New("boom")
	ranSecond := false

	require.NoError(t, reg.Register("failing", hookPlugin{
		EventCompileFunctions: func() error { return boom },
	}))
	require.NoError(t, reg.Register("after", hookPlugin{
		EventCompileFunctions: func() error { ranSecond = true; return nil },
	}))

	err := reg.Run(EventCompileFunctions)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "package:compileFunctions hook of plugin failing")
	assert.False(t, ranSecond)
}

func TestRegistry_UnboundEventIsNoop(t *testing.T) {
	reg := NewRegistry()
	assert.NoError(t, reg.Run("deploy:deploy"))
	assert.Empty(t, reg.Events())
}

func TestRegistry_DuplicatePlugin(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register("loop", hookPlugin{}))
	assert.Error(t, reg.Register("loop", hookPlugin{}))
}

func TestRegistry_EventsOrder(t *testing.T) {
	reg := NewRegistry()
	noop := func() error { return nil }

	require.NoError(t, reg.Register("custom", hookPlugin{
		"deploy:deploy":      noop,
		"after:deploy:check": noop,
		EventFinalize:        noop,
		"before:package":     noop,
		EventInitialize:      noop,
	}))

	want := []string{EventInitialize, EventFinalize, "after:deploy:check", "before:package", "deploy:deploy"}
	for i := 0; i < 10; i++ {
		assert.Equal(t, want, reg.Events())
	}
}
