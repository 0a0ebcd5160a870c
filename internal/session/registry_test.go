package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hubwatch/panelhost/internal/bootstrap"
	"github.com/hubwatch/panelhost/internal/infrastructure/logging"
	"github.com/hubwatch/panelhost/internal/infrastructure/monitoring"
	"github.com/hubwatch/panelhost/internal/router"
	"github.com/hubwatch/panelhost/internal/shared/types"
	"github.com/hubwatch/panelhost/internal/statestore"
)

func newTestRegistry(t *testing.T) (*Registry, *stubFactory) {
	t.Helper()

	factory := &stubFactory{}
	store := statestore.NewAdapter(&memStorage{})
	metrics := monitoring.NewMetrics()
	log := logging.NewNop()
	r := router.New(store, noopDialog{}, noopNotifier{}, nil, metrics, log)

	registry := NewRegistry(func(hub string, onDispose func()) *Session {
		return New(hub, Deps{
			Factory: factory,
			Store:   store,
			Builder: bootstrap.NewBuilder(pathResolver{}, nil),
			Router:  r,
			Config:  types.RuntimeConfig{},
			Metrics: metrics,
			Log:     log,
		}, onDispose)
	}, metrics)
	return registry, factory
}

func TestObtainReusesSession(t *testing.T) {
	registry, _ := newTestRegistry(t)

	first := registry.Obtain("hub-a")
	second := registry.Obtain("hub-a")

	assert.Same(t, first, second)
	assert.Equal(t, []string{"hub-a"}, registry.Hubs())
}

func TestDisposedSessionLeavesRegistry(t *testing.T) {
	registry, _ := newTestRegistry(t)

	s := registry.Obtain("hub-a")
	require.NoError(t, s.Show(context.Background()))
	s.Cleanup()

	_, ok := registry.Get("hub-a")
	assert.False(t, ok)

	// A later Obtain starts a fresh session.
	fresh := registry.Obtain("hub-a")
	assert.NotSame(t, s, fresh)
}

func TestCleanupAll(t *testing.T) {
	registry, factory := newTestRegistry(t)

	require.NoError(t, registry.Obtain("hub-a").Show(context.Background()))
	require.NoError(t, registry.Obtain("hub-b").Show(context.Background()))

	registry.CleanupAll()

	assert.Empty(t, registry.Hubs())
	for _, surface := range factory.created {
		assert.True(t, surface.Disposed())
	}
}
